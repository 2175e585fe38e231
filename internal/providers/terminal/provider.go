package terminal

import (
	"context"
	"fmt"
	"time"

	"github.com/Slinky-86/anyones-IDE-everyomes-IDE/internal/infrastructure/logging"
	"github.com/Slinky-86/anyones-IDE-everyomes-IDE/internal/infrastructure/monitoring"
	"github.com/Slinky-86/anyones-IDE-everyomes-IDE/internal/shared/types"
)

const defaultReadTimeout = 100 * time.Millisecond

// Provider exposes terminal sessions and command execution as a service.
type Provider struct {
	manager  *Manager
	executor *Executor
	logger   *logging.Logger
}

// NewProvider creates a terminal provider.
func NewProvider(opts Options, logger *logging.Logger, metrics *monitoring.Metrics) *Provider {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Provider{
		manager:  NewManager(opts, logger, metrics),
		executor: NewExecutor(logger, metrics),
		logger:   logger,
	}
}

// Manager exposes the session manager for transports that stream directly.
func (p *Provider) Manager() *Manager {
	return p.manager
}

// Executor exposes the one-shot executor.
func (p *Provider) Executor() *Executor {
	return p.executor
}

// Definition returns service metadata
func (p *Provider) Definition() types.Service {
	return types.Service{
		ID:          "terminal",
		Name:        "Terminal Service",
		Description: "Terminal sessions, command execution, and interactive shells",
		Category:    types.CategoryTerminal,
		Capabilities: []string{
			"sessions",
			"command_execution",
			"interactive_shell",
			"root_execution",
			"command_history",
			"environment",
		},
		Tools: []types.Tool{
			{
				ID:          "terminal.create_session",
				Name:        "Create Session",
				Description: "Create a new terminal session",
				Parameters: []types.Parameter{
					{Name: "working_dir", Type: "string", Description: "Initial working directory", Required: false},
				},
				Returns: "object",
			},
			{
				ID:          "terminal.close_session",
				Name:        "Close Session",
				Description: "Close a terminal session and kill its process",
				Parameters: []types.Parameter{
					{Name: "session_id", Type: "string", Description: "Session ID", Required: true},
				},
				Returns: "object",
			},
			{
				ID:          "terminal.execute",
				Name:        "Execute Command",
				Description: "Run a one-shot shell command",
				Parameters: []types.Parameter{
					{Name: "command", Type: "string", Description: "Command line", Required: true},
					{Name: "working_dir", Type: "string", Description: "Working directory", Required: false},
				},
				Returns: "object",
			},
			{
				ID:          "terminal.execute_root",
				Name:        "Execute as Root",
				Description: "Run a one-shot command with root privileges via su",
				Parameters: []types.Parameter{
					{Name: "command", Type: "string", Description: "Command line", Required: true},
				},
				Returns: "object",
			},
			{
				ID:          "terminal.root_available",
				Name:        "Root Available",
				Description: "Check whether root execution is available",
				Parameters:  []types.Parameter{},
				Returns:     "object",
			},
			{
				ID:          "terminal.get_cwd",
				Name:        "Get Working Directory",
				Description: "Get a session's current working directory",
				Parameters: []types.Parameter{
					{Name: "session_id", Type: "string", Description: "Session ID", Required: true},
				},
				Returns: "object",
			},
			{
				ID:          "terminal.change_dir",
				Name:        "Change Directory",
				Description: "Change a session's working directory",
				Parameters: []types.Parameter{
					{Name: "session_id", Type: "string", Description: "Session ID", Required: true},
					{Name: "directory", Type: "string", Description: "Target directory (supports ~ and $HOME)", Required: true},
				},
				Returns: "object",
			},
			{
				ID:          "terminal.set_env",
				Name:        "Set Environment Variable",
				Description: "Set an environment variable across all sessions",
				Parameters: []types.Parameter{
					{Name: "name", Type: "string", Description: "Variable name", Required: true},
					{Name: "value", Type: "string", Description: "Variable value", Required: true},
				},
				Returns: "object",
			},
			{
				ID:          "terminal.env",
				Name:        "Environment Variables",
				Description: "Get a session's environment snapshot",
				Parameters: []types.Parameter{
					{Name: "session_id", Type: "string", Description: "Session ID", Required: false},
				},
				Returns: "object",
			},
			{
				ID:          "terminal.start_shell",
				Name:        "Start Interactive Shell",
				Description: "Start an interactive shell in a session",
				Parameters: []types.Parameter{
					{Name: "session_id", Type: "string", Description: "Session ID", Required: true},
					{Name: "pty", Type: "boolean", Description: "Run under a pseudo-terminal", Required: false},
					{Name: "cols", Type: "number", Description: "PTY columns", Required: false},
					{Name: "rows", Type: "number", Description: "PTY rows", Required: false},
				},
				Returns: "object",
			},
			{
				ID:          "terminal.send_input",
				Name:        "Send Input",
				Description: "Send a line of input to a session's shell",
				Parameters: []types.Parameter{
					{Name: "session_id", Type: "string", Description: "Session ID", Required: true},
					{Name: "input", Type: "string", Description: "Input line", Required: true},
				},
				Returns: "object",
			},
			{
				ID:          "terminal.read_output",
				Name:        "Read Output",
				Description: "Collect shell output produced within a timeout window",
				Parameters: []types.Parameter{
					{Name: "session_id", Type: "string", Description: "Session ID", Required: true},
					{Name: "timeout_ms", Type: "number", Description: "Read window in milliseconds", Required: false},
				},
				Returns: "object",
			},
			{
				ID:          "terminal.shell_running",
				Name:        "Shell Running",
				Description: "Check whether a session's shell is alive",
				Parameters: []types.Parameter{
					{Name: "session_id", Type: "string", Description: "Session ID", Required: true},
				},
				Returns: "object",
			},
			{
				ID:          "terminal.stop",
				Name:        "Stop Process",
				Description: "Stop the process running in a session",
				Parameters: []types.Parameter{
					{Name: "session_id", Type: "string", Description: "Session ID", Required: true},
				},
				Returns: "object",
			},
			{
				ID:          "terminal.resize",
				Name:        "Resize PTY",
				Description: "Resize a PTY-backed shell",
				Parameters: []types.Parameter{
					{Name: "session_id", Type: "string", Description: "Session ID", Required: true},
					{Name: "cols", Type: "number", Description: "Columns", Required: true},
					{Name: "rows", Type: "number", Description: "Rows", Required: true},
				},
				Returns: "object",
			},
			{
				ID:          "terminal.history",
				Name:        "Command History",
				Description: "Get a session's input history",
				Parameters: []types.Parameter{
					{Name: "session_id", Type: "string", Description: "Session ID", Required: true},
				},
				Returns: "array",
			},
			{
				ID:          "terminal.save_history",
				Name:        "Save History",
				Description: "Write a session's history to a file",
				Parameters: []types.Parameter{
					{Name: "session_id", Type: "string", Description: "Session ID", Required: true},
					{Name: "path", Type: "string", Description: "Destination file", Required: true},
				},
				Returns: "object",
			},
			{
				ID:          "terminal.load_history",
				Name:        "Load History",
				Description: "Replace a session's history from a file",
				Parameters: []types.Parameter{
					{Name: "session_id", Type: "string", Description: "Session ID", Required: true},
					{Name: "path", Type: "string", Description: "Source file", Required: true},
				},
				Returns: "object",
			},
			{
				ID:          "terminal.session_info",
				Name:        "Session Info",
				Description: "Get a snapshot of one session",
				Parameters: []types.Parameter{
					{Name: "session_id", Type: "string", Description: "Session ID", Required: true},
				},
				Returns: "object",
			},
			{
				ID:          "terminal.list_sessions",
				Name:        "List Sessions",
				Description: "List snapshots of all sessions",
				Parameters:  []types.Parameter{},
				Returns:     "array",
			},
			{
				ID:          "terminal.cleanup",
				Name:        "Cleanup Inactive",
				Description: "Close sessions idle longer than a threshold",
				Parameters: []types.Parameter{
					{Name: "max_idle_seconds", Type: "number", Description: "Idle threshold in seconds", Required: true},
				},
				Returns: "object",
			},
			{
				ID:          "terminal.info",
				Name:        "Terminal Info",
				Description: "Get terminal capabilities and host information",
				Parameters:  []types.Parameter{},
				Returns:     "object",
			},
		},
	}
}

// Execute runs a terminal operation
func (p *Provider) Execute(ctx context.Context, toolID string, params map[string]interface{}, reqCtx *types.Context) (*types.Result, error) {
	switch toolID {
	case "terminal.create_session":
		return p.createSession(params)
	case "terminal.close_session":
		return p.closeSession(params)
	case "terminal.execute":
		return p.execute(ctx, params)
	case "terminal.execute_root":
		return p.executeRoot(ctx, params)
	case "terminal.root_available":
		return p.rootAvailable(ctx)
	case "terminal.get_cwd":
		return p.getCwd(params)
	case "terminal.change_dir":
		return p.changeDir(params)
	case "terminal.set_env":
		return p.setEnv(params)
	case "terminal.env":
		return p.env(params)
	case "terminal.start_shell":
		return p.startShell(params)
	case "terminal.send_input":
		return p.sendInput(params)
	case "terminal.read_output":
		return p.readOutput(params)
	case "terminal.shell_running":
		return p.shellRunning(params)
	case "terminal.stop":
		return p.stop(params)
	case "terminal.resize":
		return p.resize(params)
	case "terminal.history":
		return p.history(params)
	case "terminal.save_history":
		return p.saveHistory(params)
	case "terminal.load_history":
		return p.loadHistory(params)
	case "terminal.session_info":
		return p.sessionInfo(params)
	case "terminal.list_sessions":
		return p.listSessions()
	case "terminal.cleanup":
		return p.cleanup(params)
	case "terminal.info":
		return p.info(ctx)
	default:
		return failure(fmt.Sprintf("unknown tool: %s", toolID))
	}
}

func (p *Provider) createSession(params map[string]interface{}) (*types.Result, error) {
	workingDir, _ := params["working_dir"].(string)
	sessionID := p.manager.CreateSession(workingDir)

	return success(map[string]interface{}{
		"session_id":        sessionID,
		"working_directory": p.manager.WorkingDirectory(sessionID),
	})
}

func (p *Provider) closeSession(params map[string]interface{}) (*types.Result, error) {
	sessionID, ok := params["session_id"].(string)
	if !ok || sessionID == "" {
		return failure("session_id required")
	}

	closed := p.manager.CloseSession(sessionID)
	return success(map[string]interface{}{"closed": closed})
}

func (p *Provider) execute(ctx context.Context, params map[string]interface{}) (*types.Result, error) {
	command, ok := params["command"].(string)
	if !ok || command == "" {
		return failure("command required")
	}

	workingDir, _ := params["working_dir"].(string)
	if workingDir == "" {
		workingDir = DefaultRoot
	}

	res := p.executor.Execute(ctx, command, workingDir)
	return &types.Result{Success: res.Success, Data: res.asMap()}, nil
}

func (p *Provider) executeRoot(ctx context.Context, params map[string]interface{}) (*types.Result, error) {
	command, ok := params["command"].(string)
	if !ok || command == "" {
		return failure("command required")
	}

	res := p.executor.ExecuteRoot(ctx, command)
	return &types.Result{Success: res.Success, Data: res.asMap()}, nil
}

func (p *Provider) rootAvailable(ctx context.Context) (*types.Result, error) {
	return success(map[string]interface{}{
		"available": p.executor.RootAvailable(ctx),
	})
}

func (p *Provider) getCwd(params map[string]interface{}) (*types.Result, error) {
	sessionID, ok := params["session_id"].(string)
	if !ok || sessionID == "" {
		return failure("session_id required")
	}

	return success(map[string]interface{}{
		"working_directory": p.manager.WorkingDirectory(sessionID),
	})
}

func (p *Provider) changeDir(params map[string]interface{}) (*types.Result, error) {
	sessionID, ok := params["session_id"].(string)
	if !ok || sessionID == "" {
		return failure("session_id required")
	}
	directory, ok := params["directory"].(string)
	if !ok || directory == "" {
		return failure("directory required")
	}

	if !p.manager.ChangeDirectory(sessionID, directory) {
		return failure(fmt.Sprintf("cd: %s: No such file or directory", directory))
	}

	return success(map[string]interface{}{
		"working_directory": p.manager.WorkingDirectory(sessionID),
	})
}

func (p *Provider) setEnv(params map[string]interface{}) (*types.Result, error) {
	name, ok := params["name"].(string)
	if !ok || name == "" {
		return failure("name required")
	}
	value, ok := params["value"].(string)
	if !ok {
		return failure("value required")
	}

	p.manager.SetEnv(name, value)
	return success(map[string]interface{}{"set": true})
}

func (p *Provider) env(params map[string]interface{}) (*types.Result, error) {
	sessionID, _ := params["session_id"].(string)
	return success(map[string]interface{}{
		"env": p.manager.EnvVars(sessionID),
	})
}

func (p *Provider) startShell(params map[string]interface{}) (*types.Result, error) {
	sessionID, ok := params["session_id"].(string)
	if !ok || sessionID == "" {
		return failure("session_id required")
	}

	opts := StartShellOptions{}
	if usePTY, ok := params["pty"].(bool); ok {
		opts.PTY = usePTY
	}
	if cols, ok := params["cols"].(float64); ok {
		opts.Cols = int(cols)
	}
	if rows, ok := params["rows"].(float64); ok {
		opts.Rows = int(rows)
	}

	shellPath, err := p.manager.StartShell(sessionID, opts)
	if err != nil {
		return failure(err.Error())
	}

	return success(map[string]interface{}{
		"message":    "Interactive shell started",
		"shell_path": shellPath,
	})
}

func (p *Provider) sendInput(params map[string]interface{}) (*types.Result, error) {
	sessionID, ok := params["session_id"].(string)
	if !ok || sessionID == "" {
		return failure("session_id required")
	}
	input, ok := params["input"].(string)
	if !ok {
		return failure("input required")
	}

	if err := p.manager.SendInput(sessionID, input); err != nil {
		return failure(err.Error())
	}

	return success(map[string]interface{}{"sent": true})
}

func (p *Provider) readOutput(params map[string]interface{}) (*types.Result, error) {
	sessionID, ok := params["session_id"].(string)
	if !ok || sessionID == "" {
		return failure("session_id required")
	}

	timeout := defaultReadTimeout
	if ms, ok := params["timeout_ms"].(float64); ok && ms > 0 {
		timeout = time.Duration(ms) * time.Millisecond
	}

	stdout, stderr, err := p.manager.ReadOutput(sessionID, timeout)
	if err != nil {
		return failure(err.Error())
	}

	return success(map[string]interface{}{
		"stdout":    stdout,
		"stderr":    stderr,
		"timestamp": nowMillis(),
	})
}

func (p *Provider) shellRunning(params map[string]interface{}) (*types.Result, error) {
	sessionID, ok := params["session_id"].(string)
	if !ok || sessionID == "" {
		return failure("session_id required")
	}

	return success(map[string]interface{}{
		"running": p.manager.IsShellRunning(sessionID),
	})
}

func (p *Provider) stop(params map[string]interface{}) (*types.Result, error) {
	sessionID, ok := params["session_id"].(string)
	if !ok || sessionID == "" {
		return failure("session_id required")
	}

	return success(map[string]interface{}{
		"stopped": p.manager.StopCommand(sessionID),
	})
}

func (p *Provider) resize(params map[string]interface{}) (*types.Result, error) {
	sessionID, ok := params["session_id"].(string)
	if !ok || sessionID == "" {
		return failure("session_id required")
	}
	cols, ok := params["cols"].(float64)
	if !ok || cols <= 0 {
		return failure("cols required")
	}
	rows, ok := params["rows"].(float64)
	if !ok || rows <= 0 {
		return failure("rows required")
	}

	if err := p.manager.Resize(sessionID, int(cols), int(rows)); err != nil {
		return failure(err.Error())
	}

	return success(map[string]interface{}{"resized": true})
}

func (p *Provider) history(params map[string]interface{}) (*types.Result, error) {
	sessionID, ok := params["session_id"].(string)
	if !ok || sessionID == "" {
		return failure("session_id required")
	}

	history, err := p.manager.History(sessionID)
	if err != nil {
		return failure(err.Error())
	}

	return success(map[string]interface{}{
		"history": history,
		"count":   len(history),
	})
}

func (p *Provider) saveHistory(params map[string]interface{}) (*types.Result, error) {
	sessionID, ok := params["session_id"].(string)
	if !ok || sessionID == "" {
		return failure("session_id required")
	}
	path, ok := params["path"].(string)
	if !ok || path == "" {
		return failure("path required")
	}

	return success(map[string]interface{}{
		"saved": p.manager.SaveHistory(sessionID, path),
	})
}

func (p *Provider) loadHistory(params map[string]interface{}) (*types.Result, error) {
	sessionID, ok := params["session_id"].(string)
	if !ok || sessionID == "" {
		return failure("session_id required")
	}
	path, ok := params["path"].(string)
	if !ok || path == "" {
		return failure("path required")
	}

	return success(map[string]interface{}{
		"loaded": p.manager.LoadHistory(sessionID, path),
	})
}

func (p *Provider) sessionInfo(params map[string]interface{}) (*types.Result, error) {
	sessionID, ok := params["session_id"].(string)
	if !ok || sessionID == "" {
		return failure("session_id required")
	}

	summary, ok := p.manager.SessionInfo(sessionID)
	if !ok {
		return failure(ErrSessionNotFound.Error())
	}

	return success(map[string]interface{}{"session": summary})
}

func (p *Provider) listSessions() (*types.Result, error) {
	sessions := p.manager.ListSessions()
	return success(map[string]interface{}{
		"sessions": sessions,
		"count":    len(sessions),
	})
}

func (p *Provider) cleanup(params map[string]interface{}) (*types.Result, error) {
	seconds, ok := params["max_idle_seconds"].(float64)
	if !ok || seconds < 0 {
		return failure("max_idle_seconds required")
	}

	removed, remaining := p.manager.CleanupInactive(time.Duration(seconds * float64(time.Second)))
	return success(map[string]interface{}{
		"removed":   removed,
		"count":     len(removed),
		"remaining": remaining,
	})
}

func (p *Provider) info(ctx context.Context) (*types.Result, error) {
	return success(map[string]interface{}{
		"info": p.manager.Info(ctx, p.executor),
	})
}

func success(data map[string]interface{}) (*types.Result, error) {
	return &types.Result{Success: true, Data: data}, nil
}

func failure(message string) (*types.Result, error) {
	msg := message
	return &types.Result{
		Success: false,
		Data:    map[string]interface{}{"message": message},
		Error:   &msg,
	}, nil
}
