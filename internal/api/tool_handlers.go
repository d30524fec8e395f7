// Package api provides HTTP handlers for the Security Toolbox REST API.
// It includes handlers for running the analysis tools, managing the saved
// results ledger, and reporting service status.
package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"sectoolbox/internal/cipher"
	"sectoolbox/internal/models"
	"sectoolbox/internal/portscan"
	"sectoolbox/internal/toolkit"
	"sectoolbox/internal/urltool"
)

// ToolHandler handles tool invocation endpoints
type ToolHandler struct {
	service *toolkit.Service
}

// NewToolHandler creates a new tool handler
func NewToolHandler(service *toolkit.Service) *ToolHandler {
	return &ToolHandler{
		service: service,
	}
}

// RegisterRoutes registers the tool routes
func (h *ToolHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/api/tools/hash", h.runTool(toolkit.ToolHash)).Methods("POST")
	r.HandleFunc("/api/tools/password", h.runTool(toolkit.ToolPassword)).Methods("POST")
	r.HandleFunc("/api/tools/url", h.runTool(toolkit.ToolURL)).Methods("POST")
	r.HandleFunc("/api/tools/xss", h.runTool(toolkit.ToolXSS)).Methods("POST")
	r.HandleFunc("/api/tools/json", h.runTool(toolkit.ToolJSON)).Methods("POST")
	r.HandleFunc("/api/tools/cipher/encrypt", h.runCipher(false)).Methods("POST")
	r.HandleFunc("/api/tools/cipher/decrypt", h.runCipher(true)).Methods("POST")
	r.HandleFunc("/api/tools/portscan", h.startPortScan).Methods("POST")
	r.HandleFunc("/api/tools/portscan/status", h.getPortScanStatus).Methods("GET")
	r.HandleFunc("/api/tools/portscan", h.cancelPortScan).Methods("DELETE")
}

// runTool builds a handler for the single-input tools.
func (h *ToolHandler) runTool(tool toolkit.Tool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		logger := log.With().Str("handler", "runTool").Stringer("tool", tool).Logger()

		var input models.ToolInput
		if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
			logger.Error().Err(err).Msg("Failed to parse tool input")
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}

		resp, err := h.service.Run(toolkit.Request{Tool: tool, Input: input.Input})
		if err != nil {
			h.writeToolError(w, logger, err)
			return
		}

		writeJSON(w, http.StatusOK, resp)
	}
}

// runCipher builds a handler for the encrypt and decrypt endpoints.
func (h *ToolHandler) runCipher(decrypt bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		logger := log.With().Str("handler", "runCipher").Bool("decrypt", decrypt).Logger()

		var input models.CipherInput
		if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
			logger.Error().Err(err).Msg("Failed to parse cipher input")
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}

		text := input.Text
		if decrypt {
			text = input.Ciphertext
		}

		resp, err := h.service.Run(toolkit.Request{
			Tool:       toolkit.ToolCipher,
			Input:      text,
			Passphrase: input.Passphrase,
			Decrypt:    decrypt,
		})
		if err != nil {
			h.writeToolError(w, logger, err)
			return
		}

		writeJSON(w, http.StatusOK, resp)
	}
}

// startPortScan begins a simulated scan; a scan already in flight is
// superseded, not rejected.
func (h *ToolHandler) startPortScan(w http.ResponseWriter, r *http.Request) {
	logger := log.With().Str("handler", "startPortScan").Logger()

	var target models.ScanTarget
	if err := json.NewDecoder(r.Body).Decode(&target); err != nil {
		logger.Error().Err(err).Msg("Failed to parse scan target")
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	resp, err := h.service.Run(toolkit.Request{Tool: toolkit.ToolPortScan, Input: target.Host})
	if err != nil {
		h.writeToolError(w, logger, err)
		return
	}

	logger.Info().Str("host", target.Host).Msg("Simulated scan requested")
	writeJSON(w, http.StatusAccepted, resp)
}

// getPortScanStatus returns the scan state and the results computed so far.
func (h *ToolHandler) getPortScanStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.service.Scanner().Snapshot())
}

// cancelPortScan stops the in-flight scan, if any.
func (h *ToolHandler) cancelPortScan(w http.ResponseWriter, r *http.Request) {
	h.service.Scanner().Cancel()
	w.WriteHeader(http.StatusNoContent)
}

// writeToolError maps engine errors onto HTTP statuses. Blank input is a
// caller mistake; malformed structured input and failed decryption are
// reported as unprocessable values with an inline message.
func (h *ToolHandler) writeToolError(w http.ResponseWriter, logger zerolog.Logger, err error) {
	logger.Warn().Err(err).Msg("Tool invocation failed")

	switch {
	case errors.Is(err, toolkit.ErrEmptyInput):
		http.Error(w, "Input is required", http.StatusBadRequest)
	case errors.Is(err, portscan.ErrBlankHost):
		http.Error(w, "Target host is required", http.StatusBadRequest)
	case errors.Is(err, urltool.ErrInvalidURL):
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"error": "invalid URL"})
	case errors.Is(err, cipher.ErrDecryptFailed):
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"error": cipher.ErrDecryptFailed.Error()})
	default:
		http.Error(w, "Tool execution failed", http.StatusInternalServerError)
	}
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Error().Err(err).Msg("Failed to encode response")
	}
}
