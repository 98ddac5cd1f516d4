package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"
	"whatsapp-clone/internal"

	"github.com/Netflix/go-env"
	"github.com/dgraph-io/badger/v4"
	"github.com/joho/godotenv"
	"github.com/mama165/sdk-go/logs"
)

func main() {
	// 1. Load config
	_ = godotenv.Load()
	var config internal.Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		log.Fatalf("Config error: %v", err)
	}
	logger := logs.GetLoggerFromString(config.LogLevel)

	// 2. Open Badger in Read-Only mode
	// BypassLockGuard allows opening while the server holds the lock
	opts := badger.DefaultOptions(config.BadgerFilepath).
		WithReadOnly(true).
		WithBypassLockGuard(true).
		WithLoggingLevel(badger.WARNING)

	db, err := badger.Open(opts)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	// 3. Start Debug Server Only
	// No orchestrator runs here, the stats only describe the viewer
	viewerStats := func() any {
		return map[string]any{
			"Status": "Viewer Mode (Read-Only)",
			"Time":   time.Now().Format(time.RFC822),
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	debugServer := internal.NewDebugServer(logger, db, config.DebugPort,
		internal.InspectPrefixes, internal.EntryMapper, viewerStats)
	debugServer.Start()
	fmt.Printf("Viewer started at http://localhost:%d/inspect\n", config.DebugPort)

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_ = debugServer.Shutdown(shutdownCtx)
}
