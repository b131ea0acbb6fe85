package api

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/futureproofai/futureproof/internal/skills"
	"github.com/futureproofai/futureproof/internal/storage"
)

type FeedbackRequest struct {
	Name      string `json:"name"`
	Rating    int    `json:"rating"`
	Education string `json:"education"`
	Skills    string `json:"skills"`
	Comment   string `json:"comment"`
}

func handleFeedback(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
		defer r.Body.Close()

		var req FeedbackRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "invalid request body: %v", err)
			return
		}

		if strings.TrimSpace(req.Name) == "" {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "name is required")
			return
		}
		if req.Rating < 1 || req.Rating > 5 {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "rating must be between 1 and 5")
			return
		}

		f := storage.Feedback{
			ID:        uuid.NewString(),
			CreatedAt: time.Now().UTC(),
			Name:      strings.TrimSpace(req.Name),
			Rating:    req.Rating,
			Education: strings.TrimSpace(req.Education),
			Skills:    strings.Join(skills.Normalize(req.Skills), ","),
			Comment:   strings.TrimSpace(req.Comment),
		}
		if err := deps.Store.SaveFeedback(f); err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "failed to save feedback: %v", err)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(map[string]string{"id": f.ID, "status": "saved"})
	}
}
