package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/ironsheep/plate-service/internal/config"
	"github.com/ironsheep/plate-service/internal/logging"
	"github.com/ironsheep/plate-service/internal/server"
	"github.com/ironsheep/plate-service/internal/service"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "--version", "-v", "version":
			fmt.Printf("plate-mcp %s\n", Version)
			fmt.Printf("  Build time: %s\n", BuildTime)
			fmt.Printf("  Git commit: %s\n", GitCommit)
			return
		case "--help", "-h", "help":
			fmt.Println("plate-mcp - MCP server for vehicle number plate detection")
			fmt.Println()
			fmt.Println("Usage: plate-mcp [options]")
			fmt.Println()
			fmt.Println("Options:")
			fmt.Println("  --version, -v    Print version information")
			fmt.Println("  --help, -h       Print this help message")
			fmt.Println()
			fmt.Println("Environment variables:")
			fmt.Println("  PLATE_LOG_LEVEL=debug    Enable debug logging")
			fmt.Println("  PLATE_READER, PLATE_LOCALIZER select the backends as for plate-service")
			fmt.Println()
			fmt.Println("This server communicates via MCP protocol over stdin/stdout.")
			return
		}
	}

	// stdout carries the protocol
	log.SetOutput(os.Stderr)
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)

	cfg := config.Load()
	logging.SetDebug(cfg.Debug())
	if logging.DebugEnabled() {
		log.Printf("Plate MCP Server v%s (built %s, commit %s)", Version, BuildTime, GitCommit)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	svc, err := service.New(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to initialize detectors: %v", err)
	}

	if logging.DebugEnabled() {
		info := svc.ReaderInfo()
		log.Printf("Reader %s %s", info.Backend, info.Version)
	}

	srv := server.New(svc, Version)

	// The stdin read blocks, so a signal is not seen by Run until the next line.
	errCh := make(chan error, 1)
	go func() { errCh <- srv.Run(ctx) }()

	select {
	case err := <-errCh:
		if err != nil {
			log.Fatalf("Server error: %v", err)
		}
	case <-ctx.Done():
		log.Println("Shutting down")
	}
}
