// Command sectoolboxd is the main executable for the Security Toolbox backend
// service. It initializes the results ledger, the tool engines, and the HTTP
// API server, and handles graceful shutdown when terminated.
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"sectoolbox/internal/api"
	"sectoolbox/internal/config"
	"sectoolbox/internal/ledger"
	"sectoolbox/internal/toolkit"
)

// Global variables for command line flags
var logLevelFlag string

// parseFlags parses command line flags and returns the config path
func parseFlags() string {
	configPath := flag.String("config", "configs/config.yaml", "Path to configuration file")
	flag.StringVar(&logLevelFlag, "log-level", "info", "Log level (debug, info, warn, error)")
	flag.Parse()
	return *configPath
}

func main() {
	// Parse command line flags
	configPath := parseFlags()

	// Configure logging
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	level, err := zerolog.ParseLevel(logLevelFlag)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	// Use colored console output for development
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	log.Info().Msg("Starting Security Toolbox service")

	// Load configuration; a missing file means run on defaults
	cfg := config.GetConfig()
	if _, statErr := os.Stat(configPath); os.IsNotExist(statErr) {
		log.Warn().Str("path", configPath).Msg("Configuration file not found, using defaults")
	} else if err := cfg.LoadConfig(configPath); err != nil {
		log.Fatal().Err(err).Str("path", configPath).Msg("Failed to load configuration")
	}

	// Initialize results ledger
	log.Info().Str("path", cfg.Ledger.DatabasePath).Msg("Initializing results ledger")
	store, err := ledger.Open(cfg.Ledger.DatabasePath, cfg.Ledger.Capacity)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize results ledger")
	}
	defer store.Close()

	// Initialize toolkit service
	log.Info().Msg("Initializing toolkit service")
	service := toolkit.New(cfg, store)

	// Initialize router and API handlers
	router := mux.NewRouter()

	// Create API handlers
	toolHandler := api.NewToolHandler(service)
	resultHandler := api.NewResultHandler(store)
	statusHandler := api.NewStatusHandler(store, service, cfg)

	// Register API routes
	toolHandler.RegisterRoutes(router)
	resultHandler.RegisterRoutes(router)
	statusHandler.RegisterRoutes(router)

	// Set up CORS
	corsMiddleware := handlers.CORS(
		handlers.AllowedOrigins(cfg.Server.AllowedOrigins),
		handlers.AllowedMethods([]string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}),
		handlers.AllowedHeaders([]string{"Content-Type", "Authorization"}),
	)

	// Set up HTTP server
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      corsMiddleware(router),
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	// Start the server in a goroutine
	go func() {
		log.Info().Str("addr", addr).Msg("Starting HTTP server")
		if err := server.ListenAndServe(); err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	// Set up signal handling for graceful shutdown
	signalChan := make(chan os.Signal, 1)
	signal.Notify(signalChan, syscall.SIGINT, syscall.SIGTERM)

	// Wait for termination signal
	sig := <-signalChan
	log.Info().Str("signal", sig.String()).Msg("Received termination signal")

	// Begin graceful shutdown
	log.Info().Msg("Shutting down...")

	// Create a shutdown context with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(
		context.Background(),
		time.Duration(cfg.Server.ShutdownTimeout)*time.Second,
	)
	defer shutdownCancel()

	// Shutdown HTTP server
	log.Info().Msg("Shutting down HTTP server")
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown failed")
	}

	// Cancel any in-flight simulated scan
	service.Scanner().Cancel()

	log.Info().Msg("Security Toolbox has been shut down gracefully")
}
