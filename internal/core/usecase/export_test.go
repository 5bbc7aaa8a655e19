package usecase

import (
	"context"
	"testing"

	"github.com/ishro/aura-pipeline/internal/core/domain"
)

type rendererFake struct {
	rendered []domain.Prediction
	out      []byte
	err      error
}

func (f *rendererFake) Render(predictions []domain.Prediction) ([]byte, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.rendered = predictions
	return f.out, nil
}

func TestExportRendersAllPredictions(t *testing.T) {
	preds := newPredRepoFake(
		newReviewedPrediction(),
		&domain.Prediction{ID: "pred-2", DocumentID: "doc-2", PredictedBirads: "2", RiskLevel: domain.RiskLow},
	)
	renderer := &rendererFake{out: []byte("xlsx-bytes")}
	uc := NewExportWorklistUseCase(preds, renderer)

	out, err := uc.Export(context.Background())
	if err != nil {
		t.Fatalf("Export() error = %v", err)
	}
	if string(out) != "xlsx-bytes" {
		t.Fatalf("out = %q", out)
	}
	if len(renderer.rendered) != 2 {
		t.Fatalf("rendered %d predictions, want 2", len(renderer.rendered))
	}
}
