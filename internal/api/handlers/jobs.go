package handlers

import (
	"errors"
	"net/http"
	"sort"

	"github.com/gorilla/mux"

	"github.com/wonny/aegis/momentum/internal/scheduler"
	"github.com/wonny/aegis/momentum/pkg/logger"
)

// JobHandler exposes scheduler state
type JobHandler struct {
	scheduler *scheduler.Scheduler
	logger    *logger.Logger
}

// NewJobHandler creates a new job handler
func NewJobHandler(s *scheduler.Scheduler, log *logger.Logger) *JobHandler {
	return &JobHandler{
		scheduler: s,
		logger:    log,
	}
}

// ListJobs returns stats for every job, sorted by name
// GET /api/jobs
func (h *JobHandler) ListJobs(w http.ResponseWriter, r *http.Request) {
	stats := h.scheduler.GetJobStats()
	out := make([]scheduler.JobStats, 0, len(stats))
	for _, st := range stats {
		out = append(out, st)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].JobName < out[j].JobName })

	RespondJSON(w, http.StatusOK, map[string]interface{}{
		"jobs": out,
	})
}

// TriggerJob starts a job outside its schedule
// POST /api/jobs/{name}/run
func (h *JobHandler) TriggerJob(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]

	if err := h.scheduler.RunJob(name); err != nil {
		if errors.Is(err, scheduler.ErrJobNotFound) {
			RespondError(w, http.StatusNotFound, "Job not found")
			return
		}
		h.logger.WithError(err).Error("Failed to trigger job")
		RespondError(w, http.StatusInternalServerError, "Failed to trigger job")
		return
	}

	RespondJSON(w, http.StatusAccepted, map[string]string{
		"status": "started",
		"job":    name,
	})
}
