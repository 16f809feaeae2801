package handler

import (
	"net/http"

	"github.com/issuetracker/backend/internal/service"
)

// ReportHandler serves /api/reports.
type ReportHandler struct {
	svc service.ReportService
}

func NewReportHandler(svc service.ReportService) *ReportHandler {
	return &ReportHandler{svc: svc}
}

// TopAssignees handles GET /api/reports/top-assignees.
func (h *ReportHandler) TopAssignees(w http.ResponseWriter, r *http.Request) {
	counts, err := h.svc.TopAssignees(r.Context())
	if err != nil {
		writeServiceError(w, r, err, "report")
		return
	}
	writeJSON(w, http.StatusOK, counts)
}

type latencyResponse struct {
	AverageResolutionTime    *string  `json:"average_resolution_time"`
	AverageResolutionSeconds *float64 `json:"average_resolution_seconds"`
	ResolvedCount            int      `json:"resolved_count"`
}

// Latency handles GET /api/reports/latency. Both averages are null until an
// issue has been resolved.
func (h *ReportHandler) Latency(w http.ResponseWriter, r *http.Request) {
	stats, err := h.svc.AverageResolutionTime(r.Context())
	if err != nil {
		writeServiceError(w, r, err, "report")
		return
	}

	resp := latencyResponse{ResolvedCount: stats.ResolvedCount}
	if stats.Average != nil {
		text := stats.Average.String()
		secs := stats.Average.Seconds()
		resp.AverageResolutionTime = &text
		resp.AverageResolutionSeconds = &secs
	}
	writeJSON(w, http.StatusOK, resp)
}
