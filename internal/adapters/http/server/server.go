package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	loggeradapter "ecert/internal/adapters/logger"
)

// Server represents the HTTP server
type Server struct {
	echo   *echo.Echo
	config Config
	logger *loggeradapter.Logger
}

// Config holds server configuration
type Config struct {
	Host            string
	Port            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
}

// NewServer creates a new HTTP server with Echo
func NewServer(cfg Config, handler *HandlerAdapter, logger *loggeradapter.Logger) *Server {
	if logger == nil {
		logger = loggeradapter.NewNopLogger()
	}
	logger = logger.Named("http")

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// Middleware
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogURI:     true,
		LogStatus:  true,
		LogMethod:  true,
		LogLatency: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			logger.Info("request",
				zap.String("method", v.Method),
				zap.String("uri", v.URI),
				zap.Int("status", v.Status),
				zap.Duration("latency", v.Latency),
			)
			return nil
		},
	}))
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())

	// Register routes
	registerRoutes(e, handler)

	// Configure server
	addr := fmt.Sprintf("%s:%s", cfg.Host, cfg.Port)
	if addr == ":" {
		addr = ":8080"
	}
	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = 10 * time.Second
	}

	e.Server.Addr = addr
	e.Server.ReadTimeout = cfg.ReadTimeout
	e.Server.WriteTimeout = cfg.WriteTimeout
	e.Server.IdleTimeout = cfg.IdleTimeout

	return &Server{
		echo:   e,
		config: cfg,
		logger: logger,
	}
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.echo
}

// Start starts the HTTP server
func (s *Server) Start() error {
	s.logger.Info("Starting HTTP server", zap.String("address", s.echo.Server.Addr))
	return s.echo.Start(s.echo.Server.Addr)
}

// StartWithGracefulShutdown starts the server and shuts it down when ctx is
// cancelled or the process receives SIGINT or SIGTERM.
func (s *Server) StartWithGracefulShutdown(ctx context.Context) error {
	// Channel to listen for errors
	errChan := make(chan error, 1)

	// Start server in a goroutine
	go func() {
		if err := s.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- fmt.Errorf("server failed to start: %w", err)
		}
	}()

	// Channel to listen for interrupt signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	// Wait for an error, a signal or cancellation
	select {
	case err := <-errChan:
		return err
	case sig := <-sigChan:
		s.logger.Info("Received signal, starting graceful shutdown", zap.String("signal", sig.String()))
	case <-ctx.Done():
		s.logger.Info("Context cancelled, starting graceful shutdown")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.config.ShutdownTimeout)
	defer cancel()
	return s.Shutdown(shutdownCtx)
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down HTTP server")
	return s.echo.Shutdown(ctx)
}
