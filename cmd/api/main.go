package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hollowayink/wayfarer/internal/config"
	"github.com/hollowayink/wayfarer/internal/handlers"
	"github.com/hollowayink/wayfarer/internal/logger"
	"github.com/hollowayink/wayfarer/internal/middleware"
	"github.com/hollowayink/wayfarer/internal/services"
	"github.com/hollowayink/wayfarer/internal/storage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	log := logger.Setup(cfg)

	log.Info("Starting Wayfarer API",
		"port", cfg.Port,
		"environment", cfg.Environment,
		"provider", cfg.Provider,
		"narrative_model", cfg.NarrativeModel)

	var narrative services.NarrativeService
	var media services.MediaService
	switch cfg.Provider {
	case "gemini":
		gemini, err := services.NewGeminiService(context.Background(), cfg.GeminiAPIKey, cfg.NarrativeModel, log)
		if err != nil {
			log.Error("Failed to initialize Gemini narrative service", "error", err)
			os.Exit(1)
		}
		defer func() {
			if err := gemini.Close(); err != nil {
				log.Error("Error closing Gemini client", "error", err)
			}
		}()
		narrative = gemini
		media = services.NewGeminiMediaService(cfg.GeminiAPIKey, log)
		log.Info("Using Gemini provider")
	case "mock":
		// Canned responses for local development without an API key.
		narrative = services.NewMockNarrativeService()
		media = services.NewMockMediaService()
		log.Warn("Using mock provider; narrative and media are canned")
	}

	var store storage.Storage = storage.NewRedisStorage(cfg.RedisURL, log)
	storageCtx, storageCancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer storageCancel()

	if err := store.WaitForConnection(storageCtx); err != nil {
		log.Error("Failed to connect to storage", "error", err)
		os.Exit(1)
	}
	log.Info("Storage connection established successfully")

	mux := http.NewServeMux()

	healthHandler := handlers.NewHealthHandler(store, log)
	mux.Handle("/health", healthHandler)

	gameHandler := handlers.NewGameHandler(narrative, media, store, log)
	mux.Handle("/v1/games", gameHandler)
	mux.Handle("/v1/games/", gameHandler)

	handler := middleware.Logger(mux)
	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 5 * time.Minute, // turns wait on narrative and image generation
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info("Server starting", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Server is shutting down...")

	if err := store.Close(); err != nil {
		log.Error("Error closing storage connection", "error", err)
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", "error", err)
		os.Exit(1)
	}

	log.Info("Server exited")
}
