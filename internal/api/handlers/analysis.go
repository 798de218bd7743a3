package handlers

import (
	"encoding/json"
	"net/http"
	"sync"

	"stockwatch/internal/engine"
	"stockwatch/pkg/logger"
)

// AnalysisHandler exposes the analysis engine over HTTP.
type AnalysisHandler struct {
	engine *engine.Engine
	logger *logger.Logger

	mu         sync.Mutex
	running    bool
	lastResult *engine.Result
}

// NewAnalysisHandler creates a new analysis handler
func NewAnalysisHandler(eng *engine.Engine, log *logger.Logger) *AnalysisHandler {
	return &AnalysisHandler{
		engine: eng,
		logger: log,
	}
}

// Run triggers a synchronous analysis run.
// POST /api/run
func (h *AnalysisHandler) Run(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	if h.running {
		h.mu.Unlock()
		respondError(w, http.StatusConflict, "A run is already in progress")
		return
	}
	h.running = true
	h.mu.Unlock()

	defer func() {
		h.mu.Lock()
		h.running = false
		h.mu.Unlock()
	}()

	result, err := h.engine.Run(r.Context(), engine.Request{Source: "api"})
	if err != nil {
		h.logger.WithError(err).Error("Analysis run failed")
		respondJSON(w, http.StatusUnprocessableEntity, map[string]interface{}{
			"success": false,
			"data":    result,
		})
		return
	}

	h.mu.Lock()
	h.lastResult = result
	h.mu.Unlock()

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"data":    result,
	})
}

// GetReport returns the most recent run result.
// GET /api/report
func (h *AnalysisHandler) GetReport(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	result := h.lastResult
	h.mu.Unlock()

	if result == nil {
		respondError(w, http.StatusNotFound, "No report available yet")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"data":    result,
	})
}

// GetState returns the engine's lifecycle state.
// GET /api/state
func (h *AnalysisHandler) GetState(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"data": map[string]string{
			"state": string(h.engine.State()),
		},
	})
}

// respondJSON writes a JSON response
func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

// respondError writes a JSON error response
func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]interface{}{
		"success": false,
		"error":   message,
	})
}
