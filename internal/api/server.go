// Package api exposes the inference engine over HTTP (and MCP, see mcp.go).
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/futureproofai/futureproof/internal/assessment"
	"github.com/futureproofai/futureproof/internal/inference"
	"github.com/futureproofai/futureproof/internal/storage"
)

const maxRequestBodySize = 1 << 20 // 1MB

// AssessmentService abstracts assessment generation and scoring for the API
// and MCP layers.
type AssessmentService interface {
	Generate(ctx context.Context, skillSet []string, difficulty string) (*assessment.Quiz, error)
	Submit(id string, answers []string) (*assessment.Quiz, assessment.Score, error)
}

// AppDeps carries everything the HTTP handlers need. Token is optional;
// when empty the API is open (local single-user deployments).
type AppDeps struct {
	Orchestrator *inference.Orchestrator
	Assessments  AssessmentService
	Store        *storage.Store
	Token        string
}

// NewAppHandler builds the full HTTP surface.
func NewAppHandler(deps AppDeps) http.Handler {
	r := chi.NewRouter()

	r.Get("/healthz", handleHealth)

	r.Group(func(r chi.Router) {
		if deps.Token != "" {
			r.Use(BearerAuth(deps.Token))
		}
		r.Post("/report", handleReport(deps))
		r.Post("/assessments", handleCreateAssessment(deps))
		r.Post("/assessments/{id}/answers", handleSubmitAssessment(deps))
		r.Post("/feedback", handleFeedback(deps))
		r.Get("/usage", handleUsage(deps))
	})

	return r
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}

func handleUsage(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		summaries, err := deps.Store.UsageSummaries()
		if err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "failed to read usage journal: %v", err)
			return
		}

		type row struct {
			Model   string `json:"model"`
			Outcome string `json:"outcome"`
			Count   int    `json:"count"`
		}
		rows := make([]row, 0, len(summaries))
		for _, s := range summaries {
			rows = append(rows, row{Model: s.Model, Outcome: s.Outcome, Count: s.Count})
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(rows)
	}
}

func httpError(w http.ResponseWriter, code int, errType string, format string, args ...any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	msg := fmt.Sprintf(format, args...)
	json.NewEncoder(w).Encode(map[string]any{
		"error": map[string]any{
			"message": msg,
			"type":    errType,
		},
	})
}
