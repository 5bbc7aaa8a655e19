package ports

import (
	"context"
	"io"
	"time"

	"github.com/ishro/aura-pipeline/internal/core/domain"
)

// DocumentRepository persists and reads document state.
type DocumentRepository interface {
	Create(ctx context.Context, doc *domain.Document) error
	GetByID(ctx context.Context, id string) (*domain.Document, error)
	List(ctx context.Context, page, pageSize int, status domain.DocumentStatus) ([]domain.Document, int, error)
	UpdateStatus(ctx context.Context, id string, status domain.DocumentStatus, errMessage string) error
	Delete(ctx context.Context, id string) error
}

// StageResultRepository upserts the one row per (document, stage) and keeps
// the parent document status derived from the full row set.
type StageResultRepository interface {
	Upsert(ctx context.Context, result *domain.StageResult) error
	Get(ctx context.Context, documentID string, stage domain.Stage) (*domain.StageResult, error)
	ListByDocument(ctx context.Context, documentID string) ([]domain.StageResult, error)
}

// PredictionRepository persists risk predictions and review state.
type PredictionRepository interface {
	Upsert(ctx context.Context, prediction *domain.Prediction) error
	GetByID(ctx context.Context, id string) (*domain.Prediction, error)
	GetByDocumentID(ctx context.Context, documentID string) (*domain.Prediction, error)
	List(ctx context.Context) ([]domain.Prediction, error)
	UpdateReview(ctx context.Context, prediction *domain.Prediction) error
}

// ObjectStorage stores source documents.
type ObjectStorage interface {
	Save(ctx context.Context, key string, data io.Reader) error
	Open(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
}

// StageJob is the unit of work queued between pipeline stages. EnqueuedAt
// feeds the worker's queue-lag histogram.
type StageJob struct {
	DocumentID string       `json:"document_id"`
	Stage      domain.Stage `json:"stage"`
	EnqueuedAt time.Time    `json:"enqueued_at"`
}

// MessageQueue publishes/consumes stage jobs.
type MessageQueue interface {
	PublishStageJob(ctx context.Context, job StageJob) error
	SubscribeStageJobs(ctx context.Context, handler func(context.Context, StageJob) error) error
}

// TextExtractor turns stored document bytes into plain text.
type TextExtractor interface {
	Extract(ctx context.Context, filename string, data io.Reader) (string, error)
}

// ReportStructurer converts raw report text into the typed report.
type ReportStructurer interface {
	Structure(ctx context.Context, text string) (domain.StructuredReport, error)
}

// RiskClassifier scores a structured report.
type RiskClassifier interface {
	Classify(ctx context.Context, input string) (domain.Prediction, error)
}

// WorklistRenderer turns predictions into a downloadable worklist file.
type WorklistRenderer interface {
	Render(predictions []domain.Prediction) ([]byte, error)
}
