package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Slinky-86/anyones-IDE-everyomes-IDE/internal/providers/terminal"
	"github.com/Slinky-86/anyones-IDE-everyomes-IDE/internal/service"
	"github.com/Slinky-86/anyones-IDE-everyomes-IDE/internal/shared/types"
)

// Handlers contains all HTTP handlers
type Handlers struct {
	registry  *service.Registry
	terminal  *terminal.Provider
	startTime time.Time
}

// NewHandlers creates a new handler set
func NewHandlers(registry *service.Registry, terminalProvider *terminal.Provider) *Handlers {
	return &Handlers{
		registry:  registry,
		terminal:  terminalProvider,
		startTime: time.Now(),
	}
}

// Root handles health check
func (h *Handlers) Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "online",
		"service": "Terminal Service (Go)",
		"version": "1.0.0",
	})
}

// Health handles detailed health check
func (h *Handlers) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":           "healthy",
		"service_registry": h.registry.Stats(),
		"sessions":         len(h.terminal.Manager().ListSessions()),
		"uptime_seconds":   time.Since(h.startTime).Seconds(),
	})
}

// ListServices lists all available services
func (h *Handlers) ListServices(c *gin.Context) {
	categoryStr := c.Query("category")

	var category *types.Category
	if categoryStr != "" {
		cat := types.Category(categoryStr)
		category = &cat
	}

	services := h.registry.List(category)
	stats := h.registry.Stats()

	c.JSON(http.StatusOK, gin.H{
		"services": services,
		"stats":    stats,
	})
}

// DiscoverServices discovers relevant services for an intent
func (h *Handlers) DiscoverServices(c *gin.Context) {
	var req struct {
		Query string `json:"query" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	services := h.registry.Discover(req.Query, 5)

	c.JSON(http.StatusOK, gin.H{
		"query":    req.Query,
		"services": services,
	})
}

// ExecuteService executes a service tool
func (h *Handlers) ExecuteService(c *gin.Context) {
	var req types.ExecuteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	reqCtx := requestContext(c)
	result, err := h.registry.Execute(c.Request.Context(), req.ToolID, req.Params, reqCtx)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, result)
}

// CreateSession creates a new terminal session
func (h *Handlers) CreateSession(c *gin.Context) {
	var req struct {
		WorkingDir string `json:"working_dir"`
	}
	// Body is optional; an empty body means default working directory.
	_ = c.ShouldBindJSON(&req)

	h.execTool(c, "terminal.create_session", map[string]interface{}{
		"working_dir": req.WorkingDir,
	})
}

// ListSessions lists all terminal sessions
func (h *Handlers) ListSessions(c *gin.Context) {
	h.execTool(c, "terminal.list_sessions", nil)
}

// GetSession returns a snapshot of one session
func (h *Handlers) GetSession(c *gin.Context) {
	result, err := h.terminal.Execute(c.Request.Context(), "terminal.session_info", map[string]interface{}{
		"session_id": c.Param("id"),
	}, requestContext(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if !result.Success {
		c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
		return
	}

	c.JSON(http.StatusOK, result.Data)
}

// CloseSession closes a terminal session
func (h *Handlers) CloseSession(c *gin.Context) {
	h.execTool(c, "terminal.close_session", map[string]interface{}{
		"session_id": c.Param("id"),
	})
}

// ExecuteCommand runs a one-shot command
func (h *Handlers) ExecuteCommand(c *gin.Context) {
	var req struct {
		Command    string `json:"command" binding:"required"`
		WorkingDir string `json:"working_dir"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	h.execTool(c, "terminal.execute", map[string]interface{}{
		"command":     req.Command,
		"working_dir": req.WorkingDir,
	})
}

// ExecuteRootCommand runs a one-shot command as root
func (h *Handlers) ExecuteRootCommand(c *gin.Context) {
	var req struct {
		Command string `json:"command" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	h.execTool(c, "terminal.execute_root", map[string]interface{}{
		"command": req.Command,
	})
}

// StartShell starts an interactive shell in a session
func (h *Handlers) StartShell(c *gin.Context) {
	var req struct {
		PTY  bool `json:"pty"`
		Cols int  `json:"cols"`
		Rows int  `json:"rows"`
	}
	_ = c.ShouldBindJSON(&req)

	h.execTool(c, "terminal.start_shell", map[string]interface{}{
		"session_id": c.Param("id"),
		"pty":        req.PTY,
		"cols":       float64(req.Cols),
		"rows":       float64(req.Rows),
	})
}

// SendInput sends a line of input to a session's shell
func (h *Handlers) SendInput(c *gin.Context) {
	var req struct {
		Input string `json:"input" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	h.execTool(c, "terminal.send_input", map[string]interface{}{
		"session_id": c.Param("id"),
		"input":      req.Input,
	})
}

// ReadOutput collects shell output produced within a timeout window
func (h *Handlers) ReadOutput(c *gin.Context) {
	params := map[string]interface{}{
		"session_id": c.Param("id"),
	}
	if ms, err := time.ParseDuration(c.Query("timeout")); err == nil && ms > 0 {
		params["timeout_ms"] = float64(ms.Milliseconds())
	}

	h.execTool(c, "terminal.read_output", params)
}

// StopProcess stops the process running in a session
func (h *Handlers) StopProcess(c *gin.Context) {
	h.execTool(c, "terminal.stop", map[string]interface{}{
		"session_id": c.Param("id"),
	})
}

// ResizeShell resizes a PTY-backed shell
func (h *Handlers) ResizeShell(c *gin.Context) {
	var req struct {
		Cols int `json:"cols" binding:"required"`
		Rows int `json:"rows" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	h.execTool(c, "terminal.resize", map[string]interface{}{
		"session_id": c.Param("id"),
		"cols":       float64(req.Cols),
		"rows":       float64(req.Rows),
	})
}

// ChangeDirectory changes a session's working directory
func (h *Handlers) ChangeDirectory(c *gin.Context) {
	var req struct {
		Directory string `json:"directory" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	h.execTool(c, "terminal.change_dir", map[string]interface{}{
		"session_id": c.Param("id"),
		"directory":  req.Directory,
	})
}

// GetHistory returns a session's input history
func (h *Handlers) GetHistory(c *gin.Context) {
	h.execTool(c, "terminal.history", map[string]interface{}{
		"session_id": c.Param("id"),
	})
}

// CleanupSessions closes sessions idle longer than a threshold
func (h *Handlers) CleanupSessions(c *gin.Context) {
	var req struct {
		MaxIdleSeconds float64 `json:"max_idle_seconds"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	h.execTool(c, "terminal.cleanup", map[string]interface{}{
		"max_idle_seconds": req.MaxIdleSeconds,
	})
}

// TerminalInfo returns terminal capabilities and host information
func (h *Handlers) TerminalInfo(c *gin.Context) {
	h.execTool(c, "terminal.info", nil)
}

// execTool dispatches a terminal tool and maps the structured result onto
// HTTP. Tool-level failures are 200s carrying success=false, matching the
// service execution endpoint; transport errors are 500s.
func (h *Handlers) execTool(c *gin.Context, toolID string, params map[string]interface{}) {
	result, err := h.terminal.Execute(c.Request.Context(), toolID, params, requestContext(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, result)
}

func requestContext(c *gin.Context) *types.Context {
	if requestID := c.GetString("request_id"); requestID != "" {
		return &types.Context{RequestID: &requestID}
	}
	return nil
}
