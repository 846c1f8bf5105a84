package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/wonny/aegis/momentum/internal/audit"
	"github.com/wonny/aegis/momentum/pkg/logger"
)

// RunHandler serves persisted backtest runs
// ⭐ SSOT: 실행 기록 API 핸들러는 이 구조체에서만
type RunHandler struct {
	store  audit.RunStore
	logger *logger.Logger
}

// NewRunHandler creates a new run handler
func NewRunHandler(store audit.RunStore, log *logger.Logger) *RunHandler {
	return &RunHandler{
		store:  store,
		logger: log,
	}
}

// ListRuns returns the latest runs
// GET /api/runs?limit=20
func (h *RunHandler) ListRuns(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			RespondError(w, http.StatusBadRequest, "Invalid 'limit' (expected non-negative integer)")
			return
		}
		limit = n
	}

	runs, err := h.store.ListRuns(r.Context(), limit)
	if err != nil {
		h.logger.WithError(err).Error("Failed to list runs")
		RespondError(w, http.StatusInternalServerError, "Failed to retrieve runs")
		return
	}

	RespondJSON(w, http.StatusOK, map[string]interface{}{
		"count": len(runs),
		"runs":  runs,
	})
}

// GetRun returns one run
// GET /api/runs/{id}
func (h *RunHandler) GetRun(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	run, err := h.store.GetRun(r.Context(), id)
	if errors.Is(err, audit.ErrRunNotFound) {
		RespondError(w, http.StatusNotFound, "Run not found")
		return
	}
	if err != nil {
		h.logger.WithError(err).WithField("run_id", id).Error("Failed to get run")
		RespondError(w, http.StatusInternalServerError, "Failed to retrieve run")
		return
	}

	RespondJSON(w, http.StatusOK, run)
}

// Health returns server health status
func Health(w http.ResponseWriter, r *http.Request) {
	RespondJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "ok",
		"service": "momentum-backtest-api",
	})
}

// RespondJSON writes data as a JSON body
func RespondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// RespondError writes {"error": message}
func RespondError(w http.ResponseWriter, status int, message string) {
	RespondJSON(w, status, map[string]string{
		"error": message,
	})
}
