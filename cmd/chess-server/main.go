// Package main implements the chess server: a JSON API over the rules
// engine with optional SQLite persistence of board snapshots.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"chessgame/cmd/chess-server/cli"
	"chessgame/internal/server/http"
	"chessgame/internal/server/processor"
	"chessgame/internal/server/service"
	"chessgame/internal/server/storage"
)

const (
	gracefulShutdownTimeout = time.Second * 5
)

func main() {
	// Check for CLI database commands
	if len(os.Args) > 1 && os.Args[1] == "db" {
		if err := cli.Run(os.Args[2:]); err != nil {
			log.Fatalf("CLI error: %v", err)
		}
		os.Exit(0)
	}

	var (
		apiHost     = flag.String("api-host", "localhost", "API server host")
		apiPort     = flag.Int("api-port", 8080, "API server port")
		dev         = flag.Bool("dev", false, "Development mode (relaxed rate limits, WAL journal)")
		storagePath = flag.String("storage-path", "", "Path to SQLite database file (disables persistence if empty)")
		strict      = flag.Bool("strict", false, "Reject moves that leave the mover's king attacked in every new game")
		pidPath     = flag.String("pid", "", "Write the server PID to this file")
		pidLock     = flag.Bool("pid-lock", false, "Hold an exclusive lock on the PID file, refusing to start if another server holds it")
	)
	flag.Parse()

	if *pidLock && *pidPath == "" {
		log.Fatalf("-pid-lock requires -pid")
	}
	if *pidPath != "" {
		release, err := acquirePIDFile(*pidPath, *pidLock)
		if err != nil {
			log.Fatalf("PID file: %v", err)
		}
		defer release()
	}

	// 1. Initialize Storage (optional)
	var store *storage.Store
	if *storagePath != "" {
		log.Printf("Initializing persistent storage at: %s", *storagePath)
		var err error
		store, err = storage.NewStore(*storagePath, *dev)
		if err != nil {
			log.Fatalf("Failed to initialize storage: %v", err)
		}
		if err := store.InitDB(); err != nil {
			log.Fatalf("Failed to initialize schema: %v", err)
		}
	} else {
		log.Printf("Persistent storage disabled (use -storage-path to enable)")
	}

	// 2. Service owns the store from here and closes it on shutdown
	svc := service.New(store)

	cleanupCtx, cleanupCancel := context.WithCancel(context.Background())
	go svc.RunCleanupJob(cleanupCtx, service.CleanupJobInterval)

	// 3. Processor and HTTP app
	proc := processor.New(svc, *strict)
	app := http.NewFiberApp(proc, svc, *dev)

	apiAddr := fmt.Sprintf("%s:%d", *apiHost, *apiPort)

	go func() {
		log.Printf("Chess API Server starting...")
		log.Printf("API Listening on: http://%s", apiAddr)
		log.Printf("API Version: v1")
		if *dev {
			log.Printf("Rate Limit: 20 requests/second per IP (DEV MODE)")
		} else {
			log.Printf("Rate Limit: 10 requests/second per IP")
		}
		if *strict {
			log.Printf("Self-check prevention: enabled for all games")
		}
		log.Printf("API Endpoints: http://%s/api/v1/games", apiAddr)
		log.Printf("Health: http://%s/health", apiAddr)

		if err := app.Listen(apiAddr); err != nil {
			log.Printf("API server listen error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), gracefulShutdownTimeout)
	defer shutdownCancel()

	// Long-polls are released first so draining requests return promptly;
	// storage closes only after the app has stopped issuing writes
	cleanupCancel()
	if err := svc.ReleaseWaiters(gracefulShutdownTimeout); err != nil {
		log.Printf("Wait registry shutdown error: %v", err)
	}

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}

	if err := svc.Shutdown(gracefulShutdownTimeout); err != nil {
		log.Printf("Service shutdown error: %v", err)
	}

	log.Println("Server exited")
}
