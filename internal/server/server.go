package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	apihttp "github.com/Slinky-86/anyones-IDE-everyomes-IDE/internal/api/http"
	"github.com/Slinky-86/anyones-IDE-everyomes-IDE/internal/api/middleware"
	"github.com/Slinky-86/anyones-IDE-everyomes-IDE/internal/infrastructure/config"
	"github.com/Slinky-86/anyones-IDE-everyomes-IDE/internal/infrastructure/logging"
	"github.com/Slinky-86/anyones-IDE-everyomes-IDE/internal/infrastructure/monitoring"
	"github.com/Slinky-86/anyones-IDE-everyomes-IDE/internal/providers/terminal"
	"github.com/Slinky-86/anyones-IDE-everyomes-IDE/internal/service"
	"github.com/Slinky-86/anyones-IDE-everyomes-IDE/internal/ws"
)

// Server wraps the HTTP server and dependencies
type Server struct {
	cfg      *config.Config
	logger   *logging.Logger
	metrics  *monitoring.Metrics
	registry *service.Registry
	terminal *terminal.Provider
	router   *gin.Engine
	httpSrv  *http.Server

	reaperStop chan struct{}
}

// New creates a server instance wired from configuration.
func New(cfg *config.Config, logger *logging.Logger) *Server {
	if cfg == nil {
		cfg = config.Default()
	}
	if logger == nil {
		logger = logging.NewNop()
	}

	metrics := monitoring.NewMetrics()

	terminalProvider := terminal.NewProvider(terminal.Options{
		Shell:               cfg.Terminal.Shell,
		OutputBuffer:        cfg.Terminal.OutputBuffer,
		GracefulStop:        cfg.Terminal.GracefulStop,
		GracefulStopTimeout: cfg.Terminal.GracefulStopTimeout,
	}, logger, metrics)

	registry := service.NewRegistry()
	if err := registry.Register(terminalProvider); err != nil {
		logger.Error("failed to register terminal provider", zap.Error(err))
	}

	srv := &Server{
		cfg:        cfg,
		logger:     logger,
		metrics:    metrics,
		registry:   registry,
		terminal:   terminalProvider,
		reaperStop: make(chan struct{}),
	}
	srv.router = srv.buildRouter()

	return srv
}

func (s *Server) buildRouter() *gin.Engine {
	if !s.cfg.Logging.Development {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.CORS(middleware.DefaultCORSConfig()))
	router.Use(monitoring.Middleware(s.metrics))
	if s.cfg.RateLimit.Enabled {
		router.Use(middleware.RateLimit(middleware.RateLimitConfig{
			RequestsPerSecond: s.cfg.RateLimit.RequestsPerSecond,
			Burst:             s.cfg.RateLimit.Burst,
		}))
	}

	handlers := apihttp.NewHandlers(s.registry, s.terminal)
	wsHandler := ws.NewHandler(s.terminal.Manager(), s.logger, s.metrics)

	router.GET("/", handlers.Root)
	router.GET("/health", handlers.Health)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Service management
	router.GET("/services", handlers.ListServices)
	router.POST("/services/discover", handlers.DiscoverServices)
	router.POST("/services/execute", handlers.ExecuteService)

	// One-shot execution
	router.POST("/execute", handlers.ExecuteCommand)
	router.POST("/execute/root", handlers.ExecuteRootCommand)

	// Terminal info
	router.GET("/terminal/info", handlers.TerminalInfo)

	// Session endpoints
	router.POST("/sessions", handlers.CreateSession)
	router.GET("/sessions", handlers.ListSessions)
	router.POST("/sessions/cleanup", handlers.CleanupSessions)
	router.GET("/sessions/:id", handlers.GetSession)
	router.DELETE("/sessions/:id", handlers.CloseSession)
	router.POST("/sessions/:id/shell", handlers.StartShell)
	router.POST("/sessions/:id/input", handlers.SendInput)
	router.GET("/sessions/:id/output", handlers.ReadOutput)
	router.POST("/sessions/:id/stop", handlers.StopProcess)
	router.POST("/sessions/:id/resize", handlers.ResizeShell)
	router.POST("/sessions/:id/cd", handlers.ChangeDirectory)
	router.GET("/sessions/:id/history", handlers.GetHistory)

	// WebSocket
	router.GET("/stream", wsHandler.HandleConnection)

	return router
}

// Router exposes the configured engine, mainly for tests.
func (s *Server) Router() *gin.Engine {
	return s.router
}

// Run starts the HTTP server and the idle-session reaper. Blocks until the
// listener stops.
func (s *Server) Run() error {
	addr := fmt.Sprintf("%s:%s", s.cfg.Server.Host, s.cfg.Server.Port)
	s.httpSrv = &http.Server{
		Addr:    addr,
		Handler: s.router,
	}

	if s.cfg.Terminal.ReapInterval > 0 {
		go s.runReaper()
	}
	go s.trackUptime()

	s.logger.Info("server starting", zap.String("addr", addr))
	if err := s.httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown drains the HTTP server and closes every terminal session.
func (s *Server) Shutdown(ctx context.Context) error {
	close(s.reaperStop)

	var err error
	if s.httpSrv != nil {
		err = s.httpSrv.Shutdown(ctx)
	}
	s.terminal.Manager().Shutdown()

	s.logger.Info("server stopped")
	return err
}

func (s *Server) runReaper() {
	ticker := time.NewTicker(s.cfg.Terminal.ReapInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.reaperStop:
			return
		case <-ticker.C:
			s.terminal.Manager().CleanupInactive(s.cfg.Terminal.MaxIdle)
		}
	}
}

func (s *Server) trackUptime() {
	ticker := time.NewTicker(15 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-s.reaperStop:
			return
		case <-ticker.C:
			s.metrics.UpdateUptime()
		}
	}
}
