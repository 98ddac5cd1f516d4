package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"
	"whatsapp-clone/auth"
	grpc2 "whatsapp-clone/grpc"
	"whatsapp-clone/internal"
	"whatsapp-clone/moderation"
	"whatsapp-clone/observability"
	"whatsapp-clone/repositories"
	"whatsapp-clone/runtime"
	"whatsapp-clone/runtime/workers"
	"whatsapp-clone/services"
	"whatsapp-clone/sink"

	"github.com/Netflix/go-env"
	"github.com/dgraph-io/badger/v4"
	"github.com/joho/godotenv"
	"github.com/mama165/sdk-go/logs"
	"google.golang.org/grpc"
)

// Exit codes for the server.
const (
	exitOK      = 0
	exitRuntime = 1
	exitConfig  = 2
)

const shutdownGracePeriod = 5 * time.Second

func main() {
	code, err := run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Fatal error: %v\n", err)
	}
	os.Exit(code)
}

// run initializes all components, manages the server lifecycle, and centralizes error reporting.
// Returning instead of exiting lets every defer (database, debug server) run before main exits.
func run() (int, error) {
	// 1. Configuration & Logger
	// A missing .env file is fine, the environment may already be set.
	_ = godotenv.Load()
	var config internal.Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return exitConfig, fmt.Errorf("config error: %w", err)
	}
	if err := config.Validate(); err != nil {
		return exitConfig, fmt.Errorf("config error: %w", err)
	}
	logger := logs.GetLoggerFromString(config.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 2. Database (BadgerDB)
	db, err := badger.Open(buildBadgerOpts(ctx, config, logger))
	if err != nil {
		return exitRuntime, fmt.Errorf("database opening failed: %w", err)
	}
	defer func() {
		// Releases the database lock and flushes buffers before returning.
		logger.Info("Closing BadgerDB...")
		_ = db.Close()
	}()

	userRepository := repositories.NewUserRepository(db)
	chatRepository := repositories.NewChatRepository(db)
	messageRepository := repositories.NewMessageRepository(db, logger, config.LimitMessages)

	// 3. Supervision & Orchestration
	supervisor := workers.NewSupervisor(logger, config.RestartInterval)
	registry := runtime.NewRegistry()
	monitoring := observability.NewMonitoringManager(logger)
	orchestrator := runtime.NewOrchestrator(logger, supervisor, registry,
		config.NumberOfWorkers, config.BufferSize, config.SinkTimeout)
	orchestrator.RegisterSinks(
		sink.NewDiskSink(messageRepository, chatRepository, logger),
		sink.NewPresenceSink(userRepository, logger),
		sink.NewMetricsSink(monitoring),
	)
	if config.CensoredDir != "" {
		dictionaries, err := moderation.LoadDictionaries(os.DirFS(config.CensoredDir), ".")
		if err != nil {
			return exitConfig, fmt.Errorf("censored words loading failed: %w", err)
		}
		moderator, err := moderation.NewModerator(dictionaries.Words, config.CensoredRune(), logger)
		if err != nil {
			return exitConfig, fmt.Errorf("moderator build failed: %w", err)
		}
		orchestrator.SetCensor(moderator)
		logger.Info("Moderation enabled",
			"languages", dictionaries.Languages, "words", len(dictionaries.Words))
	}
	supervisor.Add(workers.NewHeartbeatWorker(logger, monitoring,
		orchestrator.Channels(), registry.Sessions, config.MetricInterval))

	if logger.Enabled(ctx, slog.LevelDebug) {
		debugServer := internal.NewDebugServer(logger, db, config.DebugPort,
			internal.InspectPrefixes, internal.EntryMapper,
			func() any { return monitoring.GetLatest() })
		debugServer.Start()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			_ = debugServer.Shutdown(shutdownCtx)
		}()
	}

	errChan := make(chan error, 2)
	orchestratorDone := make(chan struct{})
	go func() {
		defer close(orchestratorDone)
		if err := orchestrator.Start(ctx); err != nil {
			errChan <- fmt.Errorf("orchestrator error: %w", err)
		}
	}()

	// 4. gRPC Server Setup
	tokens := auth.NewTokenManager(config.AuthSecret, config.AuthTokenDuration)
	userService := services.NewUserService(userRepository, config.PresenceWindow)
	chatService := services.NewChatService(logger, orchestrator,
		chatRepository, messageRepository, userRepository,
		config.MaxContentLength, config.PresenceWindow)
	authService := services.NewAuthService(logger, userRepository, tokens)
	s := grpc2.NewServer(logger, tokens, grpc2.Services{
		Auth: authService,
		Chat: chatService,
		User: userService,
	}, config.ConnectionBufferSize)

	address := fmt.Sprintf("%s:%d", config.Host, config.Port)
	listener, err := net.Listen("tcp", address)
	if err != nil {
		return exitRuntime, fmt.Errorf("failed to listen on %s: %w", address, err)
	}

	go func() {
		logger.Info("Starting gRPC server", "address", address, "at", time.Now().UTC())
		for serviceName := range s.GetServiceInfo() {
			logger.Debug("gRPC exposed service", "name", serviceName)
		}
		if err := s.Serve(listener); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
			errChan <- fmt.Errorf("gRPC server error: %w", err)
		}
	}()

	// 5. Wait for Stop or Error
	code := exitOK
	select {
	case <-ctx.Done():
		logger.Info("Shutdown signal received")
	case err = <-errChan:
		code = exitRuntime
	}

	// 6. Final Cleanup
	// Watch streams never end on their own, they are cut after the grace period.
	logger.Info("Shutting down gracefully...")
	stopped := make(chan struct{})
	go func() {
		s.GracefulStop()
		close(stopped)
	}()
	select {
	case <-stopped:
	case <-time.After(shutdownGracePeriod):
		logger.Warn("Grace period elapsed, closing remaining streams")
		s.Stop()
	}
	orchestrator.Stop()
	<-orchestratorDone
	logger.Info("Program stopped cleanly")
	return code, err
}

func buildBadgerOpts(ctx context.Context, config internal.Config, logger *slog.Logger) badger.Options {
	options := badger.DefaultOptions(config.BadgerFilepath)
	if logger.Enabled(ctx, slog.LevelDebug) {
		return options.WithLoggingLevel(badger.DEBUG)
	}
	return options.WithLoggingLevel(badger.INFO)
}
