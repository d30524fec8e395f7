// internal/api/status_handlers.go
package api

import (
	"net/http"
	"runtime"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"

	"sectoolbox/internal/config"
	"sectoolbox/internal/ledger"
	"sectoolbox/internal/toolkit"
)

// Version is the service version reported by the status endpoint.
const Version = "1.0.0"

// StatusHandler handles service status endpoints
type StatusHandler struct {
	store     *ledger.Store
	service   *toolkit.Service
	cfg       *config.Config
	startTime time.Time
}

// NewStatusHandler creates a new status handler
func NewStatusHandler(store *ledger.Store, service *toolkit.Service, cfg *config.Config) *StatusHandler {
	return &StatusHandler{
		store:     store,
		service:   service,
		cfg:       cfg,
		startTime: time.Now(),
	}
}

// RegisterRoutes registers the status routes
func (h *StatusHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/api/status", h.getServiceStatus).Methods("GET")
	r.HandleFunc("/api/health", h.getHealthCheck).Methods("GET")
}

// getServiceStatus returns the overall service status
func (h *StatusHandler) getServiceStatus(w http.ResponseWriter, r *http.Request) {
	logger := log.With().Str("handler", "getServiceStatus").Logger()

	count, err := h.store.Count()
	if err != nil {
		logger.Error().Err(err).Msg("Failed to count ledger entries")
	}

	snapshot := h.service.Scanner().Snapshot()
	uptime := time.Since(h.startTime)

	response := map[string]interface{}{
		"status":    "ok",
		"version":   Version,
		"uptime":    uptime.String(),
		"startTime": h.startTime,
		"system": map[string]interface{}{
			"goVersion":    runtime.Version(),
			"goOS":         runtime.GOOS,
			"numGoroutine": runtime.NumGoroutine(),
		},
		"ledger": map[string]interface{}{
			"count":    count,
			"capacity": h.store.Capacity(),
			"path":     h.cfg.Ledger.DatabasePath,
		},
		"scanner": map[string]interface{}{
			"state":   snapshot.State,
			"scanned": snapshot.Scanned,
			"total":   snapshot.Total,
		},
		"timestamp": time.Now(),
	}

	writeJSON(w, http.StatusOK, response)
}

// getHealthCheck returns a simple health check response
func (h *StatusHandler) getHealthCheck(w http.ResponseWriter, r *http.Request) {
	logger := log.With().Str("handler", "getHealthCheck").Logger()

	// Simple health check - check ledger DB connection
	status := "healthy"
	if err := h.store.Ping(); err != nil {
		status = "unhealthy"
		logger.Error().Err(err).Msg("Ledger database ping failed")
	}

	response := map[string]interface{}{
		"status":    status,
		"timestamp": time.Now(),
		"uptime":    time.Since(h.startTime).String(),
	}

	writeJSON(w, http.StatusOK, response)
}
