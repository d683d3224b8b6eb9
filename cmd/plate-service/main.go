package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ironsheep/plate-service/internal/api"
	"github.com/ironsheep/plate-service/internal/config"
	"github.com/ironsheep/plate-service/internal/logging"
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
			fmt.Printf("plate-service %s\n", Version)
			fmt.Printf("  Build time: %s\n", BuildTime)
			fmt.Printf("  Git commit: %s\n", GitCommit)
			return
		case "--help", "-h", "help":
			fmt.Println("plate-service - HTTP service for vehicle number plate detection")
			fmt.Println()
			fmt.Println("Usage: plate-service [options]")
			fmt.Println()
			fmt.Println("Options:")
			fmt.Println("  --version, -v    Print version information")
			fmt.Println("  --help, -h       Print this help message")
			fmt.Println()
			fmt.Println("Configuration is read from the environment and an optional .env file:")
			fmt.Printf("  PORT=%s                     Listen port\n", config.DefaultPort)
			fmt.Println("  PLATE_READER=tesseract        tesseract or rekognition")
			fmt.Println("  PLATE_LOCALIZER=edge          edge, remote or rekognition")
			fmt.Println("  PLATE_LOG_LEVEL=debug         Enable strategy traces")
			return
		}
	}

	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)

	cfg := config.Load()
	logging.SetDebug(cfg.Debug())
	gin.SetMode(cfg.GinMode)

	log.Printf("Plate service v%s (built %s, commit %s)", Version, BuildTime, GitCommit)

	svc, err := service.New(context.Background(), cfg)
	if err != nil {
		log.Fatalf("Failed to initialize detectors: %v", err)
	}
	reader, localizer := svc.Backends()
	info := svc.ReaderInfo()
	log.Printf("Detectors ready: reader=%s (%s %s) localizer=%s", reader, info.Backend, info.Version, localizer)

	router := api.SetupRouter(api.NewHandler(svc), cfg.MaxImageBytes)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		log.Printf("Listening on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("ListenAndServe: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("Forced shutdown: %v", err)
	}
	log.Println("Server stopped")
}
