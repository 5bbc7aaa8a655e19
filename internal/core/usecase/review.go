package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ishro/aura-pipeline/internal/core/domain"
	"github.com/ishro/aura-pipeline/internal/core/ports"
)

// ReviewUseCase mutates coordinator review state. It never touches the
// pipeline: stage rows and document status are out of its reach.
type ReviewUseCase struct {
	preds ports.PredictionRepository
}

func NewReviewUseCase(preds ports.PredictionRepository) *ReviewUseCase {
	return &ReviewUseCase{preds: preds}
}

func (uc *ReviewUseCase) SetReview(ctx context.Context, predictionID string, status domain.ReviewStatus, notes, reviewerID string) (*domain.Prediction, error) {
	if _, err := domain.ParseReviewStatus(string(status)); err != nil {
		return nil, err
	}
	if reviewerID == "" {
		return nil, domain.WrapError(domain.ErrInvalidInput, "set review", errors.New("reviewer id is required"))
	}

	prediction, err := uc.preds.GetByID(ctx, predictionID)
	if err != nil {
		return nil, fmt.Errorf("fetch prediction by id: %w", err)
	}

	now := time.Now().UTC()
	prediction.ReviewStatus = status
	prediction.ReviewerNotes = notes
	prediction.ReviewedBy = reviewerID
	prediction.ReviewedAt = &now
	prediction.UpdatedAt = now

	if err := uc.preds.UpdateReview(ctx, prediction); err != nil {
		return nil, fmt.Errorf("update review: %w", err)
	}
	return prediction, nil
}

func (uc *ReviewUseCase) GetPrediction(ctx context.Context, predictionID string) (*domain.Prediction, error) {
	prediction, err := uc.preds.GetByID(ctx, predictionID)
	if err != nil {
		return nil, fmt.Errorf("fetch prediction by id: %w", err)
	}
	return prediction, nil
}

func (uc *ReviewUseCase) GetPredictionByDocument(ctx context.Context, documentID string) (*domain.Prediction, error) {
	prediction, err := uc.preds.GetByDocumentID(ctx, documentID)
	if err != nil {
		return nil, fmt.Errorf("fetch prediction by document: %w", err)
	}
	return prediction, nil
}
