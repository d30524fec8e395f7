// internal/api/result_handlers.go
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"

	"sectoolbox/internal/ledger"
	"sectoolbox/internal/models"
)

// ResultHandler handles saved-results ledger endpoints
type ResultHandler struct {
	store *ledger.Store
}

// NewResultHandler creates a new result handler
func NewResultHandler(store *ledger.Store) *ResultHandler {
	return &ResultHandler{
		store: store,
	}
}

// RegisterRoutes registers the result routes
func (h *ResultHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/api/results", h.getResults).Methods("GET")
	r.HandleFunc("/api/results", h.saveResult).Methods("POST")
	r.HandleFunc("/api/results/export", h.exportResults).Methods("GET")
	r.HandleFunc("/api/results/{id}", h.deleteResult).Methods("DELETE")
	r.HandleFunc("/api/results", h.clearResults).Methods("DELETE")
}

// getResults returns saved results, newest first
func (h *ResultHandler) getResults(w http.ResponseWriter, r *http.Request) {
	logger := log.With().Str("handler", "getResults").Logger()

	// Parse query parameters
	limit := 0 // 0 means ledger capacity
	if limitParam := r.URL.Query().Get("limit"); limitParam != "" {
		parsedLimit, err := strconv.Atoi(limitParam)
		if err == nil && parsedLimit > 0 {
			limit = parsedLimit
		}
	}

	results, err := h.store.List(limit)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to retrieve results")
		http.Error(w, "Failed to retrieve results", http.StatusInternalServerError)
		return
	}

	if results == nil {
		results = []*models.ToolResult{}
	}

	writeJSON(w, http.StatusOK, results)
}

// saveResult persists a tool result into the ledger
func (h *ResultHandler) saveResult(w http.ResponseWriter, r *http.Request) {
	logger := log.With().Str("handler", "saveResult").Logger()

	var req models.SaveResultRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Error().Err(err).Msg("Failed to parse save request")
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if req.ToolName == "" || req.Result == "" {
		http.Error(w, "toolName and result are required", http.StatusBadRequest)
		return
	}

	entry, err := h.store.Save(req.ToolName, req.Input, req.Result, req.Metadata)
	if err != nil {
		logger.Error().Err(err).Str("tool", req.ToolName).Msg("Failed to save result")
		http.Error(w, "Failed to save result", http.StatusInternalServerError)
		return
	}

	logger.Info().Str("id", entry.ID).Str("tool", entry.ToolName).Msg("Result saved")
	writeJSON(w, http.StatusCreated, entry)
}

// deleteResult removes exactly one saved result by ID
func (h *ResultHandler) deleteResult(w http.ResponseWriter, r *http.Request) {
	logger := log.With().Str("handler", "deleteResult").Logger()

	vars := mux.Vars(r)
	id := vars["id"]

	if err := h.store.Delete(id); err != nil {
		if errors.Is(err, ledger.ErrNotFound) {
			http.Error(w, "Result not found", http.StatusNotFound)
			return
		}
		logger.Error().Err(err).Str("id", id).Msg("Failed to delete result")
		http.Error(w, "Failed to delete result", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// clearResults empties the ledger
func (h *ResultHandler) clearResults(w http.ResponseWriter, r *http.Request) {
	logger := log.With().Str("handler", "clearResults").Logger()

	if err := h.store.Clear(); err != nil {
		logger.Error().Err(err).Msg("Failed to clear results")
		http.Error(w, "Failed to clear results", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// exportResults streams the full ledger as a JSON file download
func (h *ResultHandler) exportResults(w http.ResponseWriter, r *http.Request) {
	logger := log.With().Str("handler", "exportResults").Logger()

	filename := h.store.ExportFilename()
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))

	if err := h.store.Export(w); err != nil {
		// Export failures are best-effort; the headers may already be sent.
		logger.Error().Err(err).Msg("Failed to export results")
		return
	}

	logger.Info().Str("filename", filename).Msg("Ledger exported")
}
