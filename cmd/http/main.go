package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"ecert/config"
	"ecert/internal/adapters/events"
	httpserver "ecert/internal/adapters/http/server"
	loggeradapter "ecert/internal/adapters/logger"
	"ecert/internal/app"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Configuration error: %v\n", err)
		os.Exit(1)
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Configuration error: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger based on environment
	logger, err := loggeradapter.NewLogger(cfg.IsDevelopment())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		// Ignore sync errors on exit
		_ = logger.Sync()
	}()

	logger.Info("Starting application",
		zap.String("environment", cfg.App.Environment),
		zap.String("version", "1.0.0"),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	application, err := app.New(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("Failed to initialize application", zap.Error(err))
	}
	defer application.Close()

	// Push settled journal entries to websocket subscribers
	hub := events.NewHub(logger)
	go hub.Run(ctx)
	application.Certificates.SetPublisher(hub)

	// Initialize HTTP handler adapter
	handlerAdapter := httpserver.NewHandlerAdapter(
		application.Certificates,
		application.Network,
		application.Transactions,
		application.Chain(),
		application.Contract,
		hub,
		logger,
	)

	// Initialize HTTP server
	serverConfig := httpserver.Config{
		Host:         cfg.Server.Host,
		Port:         cfg.Server.Port,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	server := httpserver.NewServer(serverConfig, handlerAdapter, logger)

	// Log server configuration
	logger.Info("Server configured",
		zap.String("host", cfg.Server.Host),
		zap.String("port", cfg.Server.Port),
		zap.String("contract", application.Contract.Hex()),
		zap.String("chain", cfg.Network.ChainName),
	)

	// Start server with graceful shutdown
	if err := server.StartWithGracefulShutdown(ctx); err != nil {
		logger.Error("Server failed", zap.Error(err))
		return
	}

	logger.Info("Application stopped gracefully")
}
