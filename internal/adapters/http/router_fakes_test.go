package httpadapter

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/ishro/aura-pipeline/internal/config"
	"github.com/ishro/aura-pipeline/internal/core/domain"
	"github.com/ishro/aura-pipeline/internal/core/ports"
)

type ingestFake struct {
	err     error
	lastReq ports.UploadRequest
}

func (f *ingestFake) Upload(_ context.Context, req ports.UploadRequest) (*domain.Document, error) {
	if f.err != nil {
		return nil, f.err
	}
	raw, err := io.ReadAll(req.Body)
	if err != nil {
		return nil, err
	}
	if len(raw) == 0 {
		return nil, domain.WrapError(domain.ErrInvalidInput, "upload", io.EOF)
	}
	f.lastReq = req

	now := time.Now().UTC()
	return &domain.Document{
		ID:          "doc-1",
		Filename:    req.Filename,
		MimeType:    req.MimeType,
		StoragePath: "doc-1_report.pdf",
		SizeBytes:   int64(len(raw)),
		ClinicID:    req.ClinicID,
		PatientID:   req.PatientID,
		Status:      domain.StatusUploaded,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

func (f *ingestFake) Delete(context.Context, string) error {
	return f.err
}

type runnerFake struct {
	err error
}

func (f runnerFake) Run(_ context.Context, documentID string, stage domain.Stage) (*domain.StageResult, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &domain.StageResult{
		ID:         "sr-1",
		DocumentID: documentID,
		Stage:      stage,
		Status:     domain.StageCompleted,
		Attempts:   1,
	}, nil
}

type readerFake struct {
	err error
}

func (f readerFake) Lifecycle(_ context.Context, documentID string) (*ports.DocumentLifecycle, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &ports.DocumentLifecycle{
		Document: domain.Document{ID: documentID, Status: domain.StatusParsed},
		Status:   domain.StatusParsed,
		StageCompletions: map[string]bool{
			"ingestion":   true,
			"parsing":     true,
			"structuring": false,
			"prediction":  false,
		},
	}, nil
}

func (f readerFake) List(context.Context, int, int, domain.DocumentStatus) ([]domain.Document, int, error) {
	if f.err != nil {
		return nil, 0, f.err
	}
	return []domain.Document{{ID: "doc-1", Status: domain.StatusPredicted}}, 1, nil
}

func (f readerFake) StageResult(_ context.Context, documentID string, stage domain.Stage) (*domain.StageResult, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &domain.StageResult{ID: "sr-1", DocumentID: documentID, Stage: stage, Status: domain.StageCompleted}, nil
}

type reviewFake struct {
	err error
}

func (f reviewFake) SetReview(_ context.Context, predictionID string, status domain.ReviewStatus, notes, reviewerID string) (*domain.Prediction, error) {
	if f.err != nil {
		return nil, f.err
	}
	now := time.Now().UTC()
	return &domain.Prediction{
		ID:            predictionID,
		DocumentID:    "doc-1",
		ReviewStatus:  status,
		ReviewerNotes: notes,
		ReviewedBy:    reviewerID,
		ReviewedAt:    &now,
	}, nil
}

func (f reviewFake) GetPrediction(_ context.Context, predictionID string) (*domain.Prediction, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &domain.Prediction{ID: predictionID, DocumentID: "doc-1", PredictedBirads: "4", RiskLevel: domain.RiskHigh}, nil
}

func (f reviewFake) GetPredictionByDocument(_ context.Context, documentID string) (*domain.Prediction, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &domain.Prediction{ID: "pred-1", DocumentID: documentID, PredictedBirads: "2", RiskLevel: domain.RiskLow}, nil
}

type exporterFake struct {
	err error
}

func (f exporterFake) Export(context.Context) ([]byte, error) {
	if f.err != nil {
		return nil, f.err
	}
	return []byte("xlsx-bytes"), nil
}

func newTestHandler(cfg config.Config) http.Handler {
	return NewRouter(cfg, &ingestFake{}, runnerFake{}, readerFake{}, reviewFake{}, exporterFake{}).Handler()
}

func defaultTestConfig() config.Config {
	return config.Config{
		MaxUploadBytes:    10 << 20,
		APIRateLimitRPS:   1000,
		APIRateLimitBurst: 1000,
	}
}
