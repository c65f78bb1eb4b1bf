package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/spf13/afero"
	"gopkg.in/natefinch/lumberjack.v2"

	"shelflog/api"
	"shelflog/config"
	"shelflog/handlers"
	"shelflog/services/actions"
	"shelflog/services/entries"
	"shelflog/services/metadata"
	"shelflog/services/uploads"
	"shelflog/services/users"
)

func main() {
	portOverride := flag.Int("port", 0, "override server port from config")
	flag.Parse()

	fmt.Println("shelflog backend starting...")

	configPath := os.Getenv("SHELFLOG_CONFIG")
	if configPath == "" {
		configPath = filepath.Join("data", "settings.json")
	}

	cfgManager := config.NewManager(configPath)
	settings, err := cfgManager.Load()
	if err != nil {
		log.Fatalf("failed to load settings: %v", err)
	}

	// Set up file logging with rotation
	if settings.Log.File != "" {
		logDir := filepath.Dir(settings.Log.File)
		if err := os.MkdirAll(logDir, 0o755); err != nil {
			log.Printf("Warning: could not create log directory %s: %v", logDir, err)
		} else {
			fileWriter := &lumberjack.Logger{
				Filename:   settings.Log.File,
				MaxSize:    settings.Log.MaxSizeMB,
				MaxBackups: settings.Log.MaxBackups,
				MaxAge:     settings.Log.MaxAgeDays,
			}
			log.SetOutput(io.MultiWriter(os.Stdout, fileWriter))
			log.SetFlags(log.LstdFlags | log.Lshortfile)
			log.Printf("Logging to file: %s", settings.Log.File)
		}
	}

	if *portOverride > 0 {
		settings.Server.Port = *portOverride
	}

	entriesSvc, err := entries.NewService(settings.Storage.Directory)
	if err != nil {
		log.Fatalf("failed to init entries service: %v", err)
	}

	usersSvc, err := users.NewService(settings.Storage.Directory)
	if err != nil {
		log.Fatalf("failed to init users service: %v", err)
	}

	uploadsSvc, err := uploads.NewService(afero.NewOsFs(), settings.Uploads.Directory, settings.Uploads.MaxSizeMB)
	if err != nil {
		log.Fatalf("failed to init uploads service: %v", err)
	}

	metadataSvc := metadata.NewService(settings.Metadata.OMDBAPIKey, settings.Metadata.BooksAPIKey, nil)
	actionsSvc := actions.NewService(entriesSvc)

	if settings.Metadata.OMDBAPIKey == "" {
		log.Println("Warning: OMDB API key not configured; movie/TV lookups will fail")
	}
	if settings.Metadata.BooksAPIKey == "" {
		log.Println("Warning: Google Books API key not configured; book lookups will fail")
	}

	r := mux.NewRouter()
	api.Register(
		r,
		handlers.NewMetadataHandler(metadataSvc),
		handlers.NewActionsHandler(actionsSvc, metadataSvc),
		handlers.NewEntriesHandler(entriesSvc),
		handlers.NewUploadHandler(uploadsSvc),
		handlers.NewUsersHandler(usersSvc),
	)

	addr := fmt.Sprintf("%s:%d", settings.Server.Host, settings.Server.Port)
	fmt.Printf("Server starting on %s\n", addr)

	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	shutdownChan := make(chan os.Signal, 1)
	signal.Notify(shutdownChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	<-shutdownChan
	log.Println("Shutdown signal received, cleaning up...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}

	log.Println("Shutdown complete")
}
