package http

import (
	"net/http"
	"time"

	"go.uber.org/zap"

	"salarypredict/charts"
	"salarypredict/logging"
)

type dashboardResponse struct {
	Summary   charts.Summary    `json:"summary"`
	Charts    map[string]string `json:"charts"`
	Timestamp time.Time         `json:"timestamp"`
}

// handleDashboard aggregates every stored submission and renders the
// dashboard charts as PNG data URIs.
func (h *Handlers) handleDashboard(w http.ResponseWriter, r *http.Request) {
	rows, err := h.store.ListPredictions(r.Context(), 0)
	if err != nil {
		logging.FromContext(r.Context()).Error("load dashboard data failed", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "failed to load dashboard data")
		return
	}

	samples := make([]charts.Sample, len(rows))
	for i, row := range rows {
		samples[i] = charts.Sample{Record: row.Record, Salary: row.PredictedSalary}
	}
	summary := charts.Summarize(samples, charts.DefaultBins)

	respondJSON(w, http.StatusOK, dashboardResponse{
		Summary:   summary,
		Charts:    h.charts.Render(summary),
		Timestamp: time.Now().UTC(),
	})
}
