package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ishro/aura-pipeline/internal/core/domain"
	"github.com/ishro/aura-pipeline/internal/core/ports"
)

// Predictions below this confidence are routed to manual assessment
// regardless of the predicted category.
const minPredictionConfidence = 0.5

// ParsingPayload is the stored output of the parsing stage.
type ParsingPayload struct {
	Text  string `json:"text"`
	Chars int    `json:"chars"`
}

type RunStageUseCase struct {
	docs       ports.DocumentRepository
	stages     ports.StageResultRepository
	preds      ports.PredictionRepository
	storage    ports.ObjectStorage
	queue      ports.MessageQueue
	extractor  ports.TextExtractor
	structurer ports.ReportStructurer
	classifier ports.RiskClassifier
	timeout    time.Duration
}

func NewRunStageUseCase(
	docs ports.DocumentRepository,
	stages ports.StageResultRepository,
	preds ports.PredictionRepository,
	storage ports.ObjectStorage,
	queue ports.MessageQueue,
	extractor ports.TextExtractor,
	structurer ports.ReportStructurer,
	classifier ports.RiskClassifier,
	timeout time.Duration,
) *RunStageUseCase {
	return &RunStageUseCase{
		docs:       docs,
		stages:     stages,
		preds:      preds,
		storage:    storage,
		queue:      queue,
		extractor:  extractor,
		structurer: structurer,
		classifier: classifier,
		timeout:    timeout,
	}
}

// Run executes one stage for one document: prerequisite check, pending row,
// exactly one external call, one terminal row (completed or failed). The
// repository recomputes the document status from the row set on every write,
// so the status never needs a separate update here.
func (uc *RunStageUseCase) Run(ctx context.Context, documentID string, stage domain.Stage) (*domain.StageResult, error) {
	doc, err := uc.docs.GetByID(ctx, documentID)
	if err != nil {
		return nil, fmt.Errorf("fetch document by id: %w", err)
	}

	if err := uc.checkPrerequisite(ctx, documentID, stage); err != nil {
		return nil, err
	}

	result, err := uc.markPending(ctx, documentID, stage)
	if err != nil {
		return nil, fmt.Errorf("mark stage pending: %w", err)
	}

	stageCtx, cancel := context.WithTimeout(ctx, uc.timeout)
	defer cancel()

	payload, execErr := uc.execute(stageCtx, doc, stage)
	if execErr != nil {
		result.Status = domain.StageFailed
		// The error surfaces on the dashboard, which must name the
		// failed stage.
		result.Error = fmt.Sprintf("%s stage: %v", stage, execErr)
		result.UpdatedAt = time.Now().UTC()
		if upsertErr := uc.stages.Upsert(ctx, result); upsertErr != nil {
			return nil, fmt.Errorf("%w; mark stage failed: %v", execErr, upsertErr)
		}
		return result, execErr
	}

	result.Status = domain.StageCompleted
	result.Payload = payload
	result.Error = ""
	result.UpdatedAt = time.Now().UTC()
	if err := uc.stages.Upsert(ctx, result); err != nil {
		return nil, fmt.Errorf("mark stage completed: %w", err)
	}

	if next, ok := stage.Next(); ok {
		job := ports.StageJob{DocumentID: documentID, Stage: next, EnqueuedAt: time.Now().UTC()}
		if err := uc.queue.PublishStageJob(ctx, job); err != nil {
			return result, domain.WrapError(domain.ErrTemporary, "publish next stage job", err)
		}
	}

	return result, nil
}

func (uc *RunStageUseCase) checkPrerequisite(ctx context.Context, documentID string, stage domain.Stage) error {
	pre, ok := stage.Prerequisite()
	if !ok {
		return nil
	}
	prev, err := uc.stages.Get(ctx, documentID, pre)
	if err != nil {
		if domain.IsKind(err, domain.ErrNotFound) {
			return domain.WrapError(domain.ErrInvalidInput, "check prerequisite",
				fmt.Errorf("stage %s requires a completed %s result", stage, pre))
		}
		return fmt.Errorf("fetch prerequisite result: %w", err)
	}
	if prev.Status != domain.StageCompleted {
		return domain.WrapError(domain.ErrInvalidInput, "check prerequisite",
			fmt.Errorf("stage %s requires a completed %s result, found %s", stage, pre, prev.Status))
	}
	return nil
}

func (uc *RunStageUseCase) markPending(ctx context.Context, documentID string, stage domain.Stage) (*domain.StageResult, error) {
	now := time.Now().UTC()
	result := &domain.StageResult{
		ID:         uuid.NewString(),
		DocumentID: documentID,
		Stage:      stage,
		Status:     domain.StagePending,
		Attempts:   1,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if existing, err := uc.stages.Get(ctx, documentID, stage); err == nil {
		result.ID = existing.ID
		result.Attempts = existing.Attempts + 1
		result.CreatedAt = existing.CreatedAt
	} else if !domain.IsKind(err, domain.ErrNotFound) {
		return nil, err
	}
	if err := uc.stages.Upsert(ctx, result); err != nil {
		return nil, err
	}
	return result, nil
}

func (uc *RunStageUseCase) execute(ctx context.Context, doc *domain.Document, stage domain.Stage) (json.RawMessage, error) {
	switch stage {
	case domain.StageParsing:
		return uc.runParsing(ctx, doc)
	case domain.StageStructuring:
		return uc.runStructuring(ctx, doc)
	case domain.StagePrediction:
		return uc.runPrediction(ctx, doc)
	}
	return nil, domain.WrapError(domain.ErrInvalidInput, "execute stage", fmt.Errorf("unknown stage %q", stage))
}

func (uc *RunStageUseCase) runParsing(ctx context.Context, doc *domain.Document) (json.RawMessage, error) {
	body, err := uc.storage.Open(ctx, doc.StoragePath)
	if err != nil {
		return nil, fmt.Errorf("open stored object: %w", err)
	}
	defer body.Close()

	text, err := uc.extractor.Extract(ctx, doc.Filename, body)
	if err != nil {
		return nil, fmt.Errorf("extract text: %w", err)
	}
	if text == "" {
		return nil, domain.WrapError(domain.ErrInvalidInput, "extract text", errors.New("empty extracted text"))
	}
	return json.Marshal(ParsingPayload{Text: text, Chars: len(text)})
}

func (uc *RunStageUseCase) runStructuring(ctx context.Context, doc *domain.Document) (json.RawMessage, error) {
	var parsed ParsingPayload
	if err := uc.loadPayload(ctx, doc.ID, domain.StageParsing, &parsed); err != nil {
		return nil, err
	}

	report, err := uc.structurer.Structure(ctx, parsed.Text)
	if err != nil {
		return nil, fmt.Errorf("structure report: %w", err)
	}
	report.Normalize()
	return json.Marshal(report)
}

func (uc *RunStageUseCase) runPrediction(ctx context.Context, doc *domain.Document) (json.RawMessage, error) {
	var report domain.StructuredReport
	if err := uc.loadPayload(ctx, doc.ID, domain.StageStructuring, &report); err != nil {
		return nil, err
	}

	prediction, err := uc.classifier.Classify(ctx, report.ModelInput())
	if err != nil {
		return nil, fmt.Errorf("classify risk: %w", err)
	}

	now := time.Now().UTC()
	prediction.ID = uuid.NewString()
	prediction.DocumentID = doc.ID
	prediction.RiskLevel = domain.RiskLevelForBirads(prediction.PredictedBirads)
	if prediction.Confidence < minPredictionConfidence {
		prediction.RiskLevel = domain.RiskNeedsAssessment
	}
	prediction.ReviewStatus = domain.ReviewNew
	prediction.CreatedAt = now
	prediction.UpdatedAt = now

	if existing, err := uc.preds.GetByDocumentID(ctx, doc.ID); err == nil {
		prediction.ID = existing.ID
		prediction.CreatedAt = existing.CreatedAt
	} else if !domain.IsKind(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("fetch existing prediction: %w", err)
	}

	if err := uc.preds.Upsert(ctx, &prediction); err != nil {
		return nil, fmt.Errorf("save prediction: %w", err)
	}
	return json.Marshal(prediction)
}

func (uc *RunStageUseCase) loadPayload(ctx context.Context, documentID string, stage domain.Stage, out any) error {
	result, err := uc.stages.Get(ctx, documentID, stage)
	if err != nil {
		return fmt.Errorf("fetch %s result: %w", stage, err)
	}
	if err := json.Unmarshal(result.Payload, out); err != nil {
		return fmt.Errorf("decode %s payload: %w", stage, err)
	}
	return nil
}
