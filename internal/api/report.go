package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/futureproofai/futureproof/internal/inference"
)

type ReportRequest struct {
	Name        string `json:"name"`
	Skills      string `json:"skills"`
	WeeklyHours int    `json:"weekly_hours"`
}

func handleReport(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
		defer r.Body.Close()

		var req ReportRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "invalid request body: %v", err)
			return
		}

		report, err := deps.Orchestrator.BuildReport(r.Context(), inference.Request{
			Name:        req.Name,
			RawSkills:   req.Skills,
			WeeklyHours: req.WeeklyHours,
		})
		if errors.Is(err, inference.ErrMissingInput) {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "name and skills are required")
			return
		}
		if err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "failed to build report: %v", err)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(report)
	}
}
