package ws

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/Slinky-86/anyones-IDE-everyomes-IDE/internal/infrastructure/logging"
	"github.com/Slinky-86/anyones-IDE-everyomes-IDE/internal/infrastructure/monitoring"
	"github.com/Slinky-86/anyones-IDE-everyomes-IDE/internal/providers/terminal"
	"github.com/Slinky-86/anyones-IDE-everyomes-IDE/internal/shared/types"
)

const streamInterval = 100 * time.Millisecond

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins in dev
	},
}

// Handler manages WebSocket connections to terminal sessions.
type Handler struct {
	manager *terminal.Manager
	logger  *logging.Logger
	metrics *monitoring.Metrics
}

// NewHandler creates a new WebSocket handler
func NewHandler(manager *terminal.Manager, logger *logging.Logger, metrics *monitoring.Metrics) *Handler {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Handler{
		manager: manager,
		logger:  logger,
		metrics: metrics,
	}
}

// HandleConnection upgrades to WebSocket and attaches to a terminal session.
// The session id comes from the session_id query parameter; output produced
// by the session's shell streams to the client while input messages feed it.
func (h *Handler) HandleConnection(c *gin.Context) {
	sessionID := c.Query("session_id")
	if sessionID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "session_id required"})
		return
	}
	if _, ok := h.manager.SessionInfo(sessionID); !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	if h.metrics != nil {
		h.metrics.WSConnections.Inc()
		defer h.metrics.WSConnections.Dec()
	}
	h.logger.Info("websocket attached", zap.String("session_id", sessionID))

	h.send(conn, map[string]interface{}{
		"type":       "system",
		"message":    "Attached to terminal session",
		"session_id": sessionID,
	})

	// writes is the single writer for the connection; gorilla connections
	// do not allow concurrent WriteJSON calls.
	writes := make(chan map[string]interface{}, 64)
	done := make(chan struct{})

	go h.streamOutput(sessionID, writes, done)

	go func() {
		for msg := range writes {
			if err := conn.WriteJSON(msg); err != nil {
				return
			}
		}
	}()

	for {
		var msg types.WSMessage
		if err := conn.ReadJSON(&msg); err != nil {
			break
		}

		switch msg.Type {
		case "input":
			if err := h.manager.SendInput(sessionID, msg.Data); err != nil {
				h.enqueueError(writes, err.Error())
			}
		case "start_shell":
			if _, err := h.manager.StartShell(sessionID, terminal.StartShellOptions{}); err != nil {
				h.enqueueError(writes, err.Error())
			}
		case "stop":
			h.manager.StopCommand(sessionID)
		case "ping":
			h.enqueue(writes, map[string]interface{}{"type": "pong"})
		default:
			h.enqueueError(writes, "unknown message type")
		}
	}

	close(done)
	h.logger.Info("websocket detached", zap.String("session_id", sessionID))
}

// streamOutput polls the session for shell output and forwards it. The poll
// window doubles as the flush interval; no shell means nothing to forward.
func (h *Handler) streamOutput(sessionID string, writes chan<- map[string]interface{}, done <-chan struct{}) {
	defer close(writes)

	for {
		select {
		case <-done:
			return
		default:
		}

		stdout, stderr, err := h.manager.ReadOutput(sessionID, streamInterval)
		if err != nil {
			// No shell yet; idle until the client starts one.
			select {
			case <-done:
				return
			case <-time.After(streamInterval):
			}
			continue
		}

		if len(stdout) == 0 && len(stderr) == 0 {
			continue
		}

		select {
		case <-done:
			return
		case writes <- map[string]interface{}{
			"type":      "output",
			"stdout":    stdout,
			"stderr":    stderr,
			"timestamp": time.Now().UnixMilli(),
		}:
		}
	}
}

func (h *Handler) send(conn *websocket.Conn, data map[string]interface{}) {
	_ = conn.WriteJSON(data)
}

func (h *Handler) enqueue(writes chan<- map[string]interface{}, data map[string]interface{}) {
	select {
	case writes <- data:
	default:
	}
}

func (h *Handler) enqueueError(writes chan<- map[string]interface{}, msg string) {
	h.enqueue(writes, map[string]interface{}{
		"type":      "error",
		"message":   msg,
		"timestamp": time.Now().UnixMilli(),
	})
}
