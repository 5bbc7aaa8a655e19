package usecase

import (
	"context"
	"fmt"

	"github.com/ishro/aura-pipeline/internal/core/ports"
)

// ExportWorklistUseCase renders the full prediction worklist for
// coordinator triage.
type ExportWorklistUseCase struct {
	preds    ports.PredictionRepository
	renderer ports.WorklistRenderer
}

func NewExportWorklistUseCase(preds ports.PredictionRepository, renderer ports.WorklistRenderer) *ExportWorklistUseCase {
	return &ExportWorklistUseCase{preds: preds, renderer: renderer}
}

func (uc *ExportWorklistUseCase) Export(ctx context.Context) ([]byte, error) {
	predictions, err := uc.preds.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list predictions: %w", err)
	}
	out, err := uc.renderer.Render(predictions)
	if err != nil {
		return nil, fmt.Errorf("render worklist: %w", err)
	}
	return out, nil
}
