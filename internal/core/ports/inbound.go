package ports

import (
	"context"
	"io"

	"github.com/ishro/aura-pipeline/internal/core/domain"
)

// DocumentIngestor is the inbound contract for document upload orchestration.
type DocumentIngestor interface {
	Upload(ctx context.Context, upload UploadRequest) (*domain.Document, error)
	Delete(ctx context.Context, documentID string) error
}

// UploadRequest carries one multipart upload.
type UploadRequest struct {
	Filename  string
	MimeType  string
	SizeBytes int64
	ClinicID  string
	PatientID string
	Body      io.Reader
}

// StageRunner executes one pipeline stage against one document.
type StageRunner interface {
	Run(ctx context.Context, documentID string, stage domain.Stage) (*domain.StageResult, error)
}

// LifecycleReader is the inbound read model for document state.
type LifecycleReader interface {
	Lifecycle(ctx context.Context, documentID string) (*DocumentLifecycle, error)
	List(ctx context.Context, page, pageSize int, status domain.DocumentStatus) ([]domain.Document, int, error)
	StageResult(ctx context.Context, documentID string, stage domain.Stage) (*domain.StageResult, error)
}

// DocumentLifecycle is the aggregated status view served to pollers.
type DocumentLifecycle struct {
	Document         domain.Document       `json:"document"`
	Status           domain.DocumentStatus `json:"status"`
	StageCompletions map[string]bool       `json:"stage_completions"`
	Error            string                `json:"error,omitempty"`
}

// ReviewService mutates coordinator review state on predictions.
type ReviewService interface {
	SetReview(ctx context.Context, predictionID string, status domain.ReviewStatus, notes, reviewerID string) (*domain.Prediction, error)
	GetPrediction(ctx context.Context, predictionID string) (*domain.Prediction, error)
	GetPredictionByDocument(ctx context.Context, documentID string) (*domain.Prediction, error)
}

// WorklistExporter renders the prediction worklist for coordinators.
type WorklistExporter interface {
	Export(ctx context.Context) ([]byte, error)
}
