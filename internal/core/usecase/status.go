package usecase

import (
	"context"
	"fmt"

	"github.com/ishro/aura-pipeline/internal/core/domain"
	"github.com/ishro/aura-pipeline/internal/core/ports"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// LifecycleUseCase serves the aggregated status view. Reads only, no
// external calls, cheap enough for dashboard polling.
type LifecycleUseCase struct {
	docs   ports.DocumentRepository
	stages ports.StageResultRepository
}

func NewLifecycleUseCase(docs ports.DocumentRepository, stages ports.StageResultRepository) *LifecycleUseCase {
	return &LifecycleUseCase{docs: docs, stages: stages}
}

func (uc *LifecycleUseCase) Lifecycle(ctx context.Context, documentID string) (*ports.DocumentLifecycle, error) {
	doc, err := uc.docs.GetByID(ctx, documentID)
	if err != nil {
		return nil, fmt.Errorf("fetch document by id: %w", err)
	}
	results, err := uc.stages.ListByDocument(ctx, documentID)
	if err != nil {
		return nil, fmt.Errorf("list stage results: %w", err)
	}

	completions := map[string]bool{"ingestion": true}
	for _, stage := range domain.AllStages() {
		completions[string(stage)] = false
	}
	for _, r := range results {
		if r.Status == domain.StageCompleted {
			completions[string(r.Stage)] = true
		}
	}

	status, errMessage := domain.DeriveStatus(results)
	return &ports.DocumentLifecycle{
		Document:         *doc,
		Status:           status,
		StageCompletions: completions,
		Error:            errMessage,
	}, nil
}

func (uc *LifecycleUseCase) List(ctx context.Context, page, pageSize int, status domain.DocumentStatus) ([]domain.Document, int, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = defaultPageSize
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}
	if status != "" && !status.Valid() {
		return nil, 0, domain.WrapError(domain.ErrInvalidInput, "list documents",
			fmt.Errorf("unknown status %q", status))
	}
	docs, total, err := uc.docs.List(ctx, page, pageSize, status)
	if err != nil {
		return nil, 0, fmt.Errorf("list documents: %w", err)
	}
	return docs, total, nil
}

func (uc *LifecycleUseCase) StageResult(ctx context.Context, documentID string, stage domain.Stage) (*domain.StageResult, error) {
	if _, err := uc.docs.GetByID(ctx, documentID); err != nil {
		return nil, fmt.Errorf("fetch document by id: %w", err)
	}
	result, err := uc.stages.Get(ctx, documentID, stage)
	if err != nil {
		return nil, fmt.Errorf("fetch stage result: %w", err)
	}
	return result, nil
}
