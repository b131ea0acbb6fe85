package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/futureproofai/futureproof/internal/assessment"
	"github.com/futureproofai/futureproof/internal/skills"
	"github.com/futureproofai/futureproof/internal/storage"
)

type CreateAssessmentRequest struct {
	Name       string `json:"name"`
	Skills     string `json:"skills"`
	Difficulty string `json:"difficulty"`
}

// AssessmentQuestion is an Item with the answer stripped: the key never
// leaves the service before scoring.
type AssessmentQuestion struct {
	Question string   `json:"question"`
	Options  []string `json:"options"`
}

type CreateAssessmentResponse struct {
	ID         string               `json:"id"`
	Difficulty string               `json:"difficulty"`
	Questions  []AssessmentQuestion `json:"questions"`
}

type SubmitAnswersRequest struct {
	Name    string   `json:"name"`
	Answers []string `json:"answers"`
}

type SubmitAnswersResponse struct {
	ID         string  `json:"id"`
	Correct    int     `json:"correct"`
	Total      int     `json:"total"`
	Percentage float64 `json:"percentage"`
}

func handleCreateAssessment(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
		defer r.Body.Close()

		var req CreateAssessmentRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "invalid request body: %v", err)
			return
		}

		skillSet := skills.Normalize(req.Skills)
		if len(skillSet) == 0 {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "skills are required")
			return
		}

		quiz, err := deps.Assessments.Generate(r.Context(), skillSet, req.Difficulty)
		if errors.Is(err, assessment.ErrGenerationFailed) {
			httpError(w, http.StatusBadGateway, "api_error", "assessment generation failed")
			return
		}
		if err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "failed to generate assessment: %v", err)
			return
		}

		resp := CreateAssessmentResponse{
			ID:         quiz.ID,
			Difficulty: quiz.Difficulty,
			Questions:  make([]AssessmentQuestion, len(quiz.Items)),
		}
		for i, item := range quiz.Items {
			resp.Questions[i] = AssessmentQuestion{Question: item.Question, Options: item.Options}
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(resp)
	}
}

func handleSubmitAssessment(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
		defer r.Body.Close()

		id := chi.URLParam(r, "id")

		var req SubmitAnswersRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "invalid request body: %v", err)
			return
		}

		quiz, score, err := deps.Assessments.Submit(id, req.Answers)
		if errors.Is(err, assessment.ErrSessionNotFound) {
			httpError(w, http.StatusNotFound, "not_found", "assessment not found")
			return
		}
		if errors.Is(err, assessment.ErrAnswerCountMismatch) {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "%v", err)
			return
		}
		if err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "failed to score assessment: %v", err)
			return
		}

		if deps.Store != nil {
			result := storage.AssessmentResult{
				ID:         quiz.ID,
				CreatedAt:  time.Now().UTC(),
				Name:       strings.TrimSpace(req.Name),
				Skills:     strings.Join(quiz.Skills, ","),
				Difficulty: quiz.Difficulty,
				Correct:    score.Correct,
				Total:      score.Total,
				Percentage: score.Percentage,
			}
			if err := deps.Store.SaveAssessmentResult(result); err != nil {
				httpError(w, http.StatusInternalServerError, "api_error", "failed to save result: %v", err)
				return
			}
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(SubmitAnswersResponse{
			ID:         quiz.ID,
			Correct:    score.Correct,
			Total:      score.Total,
			Percentage: score.Percentage,
		})
	}
}
