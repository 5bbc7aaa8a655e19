package httpadapter

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/ishro/aura-pipeline/internal/core/domain"
)

const reviewerIDHeader = "X-Reviewer-Id"

func (rt *Router) getPrediction(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "prediction id is required"})
		return
	}

	prediction, err := rt.reviews.GetPrediction(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, prediction)
}

func (rt *Router) getPredictionByDocument(w http.ResponseWriter, r *http.Request) {
	documentID := r.PathValue("documentID")
	if documentID == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "document id is required"})
		return
	}

	prediction, err := rt.reviews.GetPredictionByDocument(r.Context(), documentID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, prediction)
}

func (rt *Router) reviewPrediction(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "prediction id is required"})
		return
	}

	var req struct {
		ReviewStatus string `json:"review_status"`
		Notes        string `json:"notes"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}

	status, err := domain.ParseReviewStatus(req.ReviewStatus)
	if err != nil {
		writeError(w, err)
		return
	}

	prediction, err := rt.reviews.SetReview(r.Context(), id, status, req.Notes, r.Header.Get(reviewerIDHeader))
	if err != nil {
		writeError(w, err)
		return
	}
	if rt.metrics != nil {
		rt.metrics.RecordReview("api", string(status))
	}
	writeJSON(w, http.StatusOK, prediction)
}

func (rt *Router) exportWorklist(w http.ResponseWriter, r *http.Request) {
	payload, err := rt.exporter.Export(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	filename := fmt.Sprintf("worklist_%s.xlsx", time.Now().UTC().Format("2006-01-02"))
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(payload)
}
