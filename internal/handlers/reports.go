package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/timecop-bot/timecop/internal/queue"
)

// ReportHandler enqueues monthly-report jobs over HTTP
type ReportHandler struct {
	jobs   queue.JobQueue
	logger *zap.Logger
}

// NewReportHandler creates a new report handler
func NewReportHandler(jobs queue.JobQueue, logger *zap.Logger) *ReportHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReportHandler{jobs: jobs, logger: logger}
}

type reportRequest struct {
	UserID int64 `json:"user_id"`
	Year   int   `json:"year"`
	Month  int   `json:"month"`
}

// EnqueueMonthly handles POST /reports/monthly
func (h *ReportHandler) EnqueueMonthly(w http.ResponseWriter, r *http.Request) {
	var req reportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSONError(w, http.StatusBadRequest, "invalid_request", "request body must be JSON")
		return
	}
	if req.UserID == 0 {
		respondJSONError(w, http.StatusBadRequest, "invalid_request", "user_id is required")
		return
	}
	if req.Year < 2000 || req.Year > 2200 || req.Month < 1 || req.Month > 12 {
		respondJSONError(w, http.StatusBadRequest, "invalid_request", "year and month must name a valid calendar month")
		return
	}

	job := queue.NewMonthlyReportJob(req.UserID, req.Year, time.Month(req.Month))
	if err := h.jobs.Enqueue(r.Context(), job); err != nil {
		h.logger.Error("report_enqueue_failed",
			zap.Int64("user_id", req.UserID),
			zap.Error(err),
		)
		respondJSONError(w, http.StatusServiceUnavailable, "queue_unavailable", "failed to enqueue report job")
		return
	}

	respondJSON(w, http.StatusAccepted, map[string]string{"job_id": job.ID.String()})
}
