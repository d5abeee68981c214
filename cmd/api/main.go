package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/calebdray/storywalk/internal/config"
	"github.com/calebdray/storywalk/internal/handlers"
	"github.com/calebdray/storywalk/internal/logger"
	"github.com/calebdray/storywalk/internal/middleware"
	"github.com/calebdray/storywalk/internal/storage"
	"github.com/calebdray/storywalk/pkg/progression"
)

func main() {
	cfg := config.Load()
	log := logger.Setup(cfg)

	log.Info("Starting storywalk API",
		"port", cfg.Port,
		"environment", cfg.Environment,
		"redis_url", cfg.RedisURL,
		"data_dir", cfg.DataDir)

	catalog, err := storage.LoadCatalog(cfg.DataDir)
	if err != nil {
		log.Error("Failed to load exchange catalog", "error", err)
		os.Exit(1)
	}

	store := storage.NewRedisStorage(cfg.RedisURL, cfg.DataDir, log)
	defer func() {
		if err := store.Close(); err != nil {
			log.Error("Failed to close storage", "error", err)
		}
	}()

	storageCtx, storageCancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer storageCancel()
	if err := store.WaitForConnection(storageCtx); err != nil {
		log.Error("Failed to connect to storage", "error", err)
		os.Exit(1)
	}

	service := progression.NewService(store, catalog, log)

	mux := http.NewServeMux()

	mux.Handle("/health", handlers.NewHealthHandler(store, log))

	ticketsHandler := handlers.NewTicketsHandler(service, log)
	mux.Handle("/v1/tickets", ticketsHandler)
	mux.Handle("/v1/tickets/", ticketsHandler)

	puzzlesHandler := handlers.NewPuzzlesHandler(service, store, log)
	mux.Handle("/v1/puzzles", puzzlesHandler)
	mux.Handle("/v1/puzzles/", puzzlesHandler)

	storiesHandler := handlers.NewStoriesHandler(service, store, log)
	mux.Handle("/v1/stories", storiesHandler)
	mux.Handle("/v1/stories/", storiesHandler)

	progressHandler := handlers.NewProgressHandler(service, log)
	mux.Handle("/v1/progress", progressHandler)
	mux.Handle("/v1/progress/", progressHandler)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      middleware.Logger(mux),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info("API server listening", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("Server failed", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down API server")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("Graceful shutdown failed", "error", err)
	}
}
