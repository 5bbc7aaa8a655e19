package usecase

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ishro/aura-pipeline/internal/core/domain"
	"github.com/ishro/aura-pipeline/internal/core/ports"
)

type IngestDocumentUseCase struct {
	repo        ports.DocumentRepository
	storage     ports.ObjectStorage
	queue       ports.MessageQueue
	maxBytes    int64
	allowedExts map[string]struct{}
}

func NewIngestDocumentUseCase(
	repo ports.DocumentRepository,
	storage ports.ObjectStorage,
	queue ports.MessageQueue,
	maxBytes int64,
	allowedExts []string,
) *IngestDocumentUseCase {
	exts := make(map[string]struct{}, len(allowedExts))
	for _, ext := range allowedExts {
		exts[strings.ToLower(ext)] = struct{}{}
	}
	return &IngestDocumentUseCase{
		repo:        repo,
		storage:     storage,
		queue:       queue,
		maxBytes:    maxBytes,
		allowedExts: exts,
	}
}

func (uc *IngestDocumentUseCase) Upload(ctx context.Context, upload ports.UploadRequest) (*domain.Document, error) {
	if err := uc.validate(upload); err != nil {
		return nil, err
	}

	id := uuid.NewString()
	storageKey := fmt.Sprintf("%s_%s", id, sanitizeFilename(upload.Filename))
	now := time.Now().UTC()

	if err := uc.storage.Save(ctx, storageKey, upload.Body); err != nil {
		return nil, fmt.Errorf("save to object storage: %w", err)
	}

	doc := &domain.Document{
		ID:          id,
		Filename:    upload.Filename,
		MimeType:    upload.MimeType,
		StoragePath: storageKey,
		SizeBytes:   upload.SizeBytes,
		ClinicID:    upload.ClinicID,
		PatientID:   upload.PatientID,
		Status:      domain.StatusUploaded,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := uc.repo.Create(ctx, doc); err != nil {
		return nil, fmt.Errorf("create document metadata: %w", err)
	}

	job := ports.StageJob{DocumentID: doc.ID, Stage: domain.StageParsing, EnqueuedAt: time.Now().UTC()}
	if err := uc.queue.PublishStageJob(ctx, job); err != nil {
		return nil, fmt.Errorf("publish parsing job: %w", err)
	}

	return doc, nil
}

func (uc *IngestDocumentUseCase) Delete(ctx context.Context, documentID string) error {
	doc, err := uc.repo.GetByID(ctx, documentID)
	if err != nil {
		return fmt.Errorf("fetch document by id: %w", err)
	}
	if err := uc.storage.Delete(ctx, doc.StoragePath); err != nil {
		return fmt.Errorf("delete stored object: %w", err)
	}
	// Stage results and predictions go with the document row.
	if err := uc.repo.Delete(ctx, documentID); err != nil {
		return fmt.Errorf("delete document metadata: %w", err)
	}
	return nil
}

func (uc *IngestDocumentUseCase) validate(upload ports.UploadRequest) error {
	if upload.ClinicID == "" {
		return domain.WrapError(domain.ErrInvalidInput, "validate upload", fmt.Errorf("clinic_id is required"))
	}
	if upload.SizeBytes <= 0 {
		return domain.WrapError(domain.ErrInvalidInput, "validate upload", fmt.Errorf("empty file"))
	}
	if upload.SizeBytes > uc.maxBytes {
		return domain.WrapError(domain.ErrInvalidInput, "validate upload",
			fmt.Errorf("file size %d exceeds limit %d", upload.SizeBytes, uc.maxBytes))
	}
	ext := strings.ToLower(filepath.Ext(upload.Filename))
	if _, ok := uc.allowedExts[ext]; !ok {
		return domain.WrapError(domain.ErrInvalidInput, "validate upload",
			fmt.Errorf("extension %q is not allowed", ext))
	}
	return nil
}

func sanitizeFilename(name string) string {
	base := filepath.Base(name)
	base = strings.ReplaceAll(base, " ", "_")
	base = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z':
			return r
		case r >= 'A' && r <= 'Z':
			return r
		case r >= '0' && r <= '9':
			return r
		case r == '.', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, base)
	if base == "" {
		return "document.bin"
	}
	return base
}
