package bootstrap

import (
	"context"
	"fmt"
	"time"

	"github.com/ishro/aura-pipeline/internal/config"
	"github.com/ishro/aura-pipeline/internal/core/ports"
	"github.com/ishro/aura-pipeline/internal/core/usecase"
	"github.com/ishro/aura-pipeline/internal/infrastructure/extractor/localtext"
	"github.com/ishro/aura-pipeline/internal/infrastructure/llm/gemini"
	"github.com/ishro/aura-pipeline/internal/infrastructure/model/biogpt"
	"github.com/ishro/aura-pipeline/internal/infrastructure/ocr/docling"
	"github.com/ishro/aura-pipeline/internal/infrastructure/queue/nats"
	"github.com/ishro/aura-pipeline/internal/infrastructure/report/xlsx"
	"github.com/ishro/aura-pipeline/internal/infrastructure/repository/postgres"
	"github.com/ishro/aura-pipeline/internal/infrastructure/resilience"
	"github.com/ishro/aura-pipeline/internal/infrastructure/storage/localfs"
	"github.com/ishro/aura-pipeline/internal/infrastructure/storage/minio"
)

type App struct {
	Config config.Config

	Queue ports.MessageQueue

	IngestUC    ports.DocumentIngestor
	StageUC     ports.StageRunner
	LifecycleUC ports.LifecycleReader
	ReviewUC    ports.ReviewService
	ExportUC    ports.WorklistExporter

	closeFn func()
}

func New(ctx context.Context, cfg config.Config) (*App, error) {
	db, err := postgres.OpenDB(cfg.PostgresDSN)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	docs := postgres.NewDocumentRepository(db)
	if err := docs.EnsureSchema(ctx); err != nil {
		return nil, fmt.Errorf("ensure schema: %w", err)
	}
	stages := postgres.NewStageResultRepository(db)
	preds := postgres.NewPredictionRepository(db)

	storage, err := newObjectStorage(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("init object storage: %w", err)
	}

	executor := resilience.NewExecutor(resilience.DefaultConfig())

	queue, err := nats.NewWithOptions(cfg.NATSURL, cfg.NATSSubject, nats.Options{
		ResilienceExecutor: executor,
	})
	if err != nil {
		return nil, fmt.Errorf("init message queue: %w", err)
	}

	var extractor ports.TextExtractor
	if cfg.DoclingURL != "" {
		extractor = docling.New(cfg.DoclingURL, docling.WithExecutor(executor))
	} else {
		extractor = localtext.New()
	}
	structurer := gemini.New(cfg.GeminiAPIURL, cfg.GeminiAPIKey, cfg.GeminiModel, gemini.WithExecutor(executor))
	classifier := biogpt.New(cfg.HFAPIURL, cfg.HFToken, cfg.HFModelRepo, biogpt.WithExecutor(executor))

	ingestUC := usecase.NewIngestDocumentUseCase(docs, storage, queue, cfg.MaxUploadBytes, cfg.AllowedExtensions)
	stageUC := usecase.NewRunStageUseCase(
		docs,
		stages,
		preds,
		storage,
		queue,
		extractor,
		structurer,
		classifier,
		time.Duration(cfg.StageTimeoutSeconds)*time.Second,
	)
	lifecycleUC := usecase.NewLifecycleUseCase(docs, stages)
	reviewUC := usecase.NewReviewUseCase(preds)
	exportUC := usecase.NewExportWorklistUseCase(preds, xlsx.New())

	return &App{
		Config: cfg,
		Queue:  queue,

		IngestUC:    ingestUC,
		StageUC:     stageUC,
		LifecycleUC: lifecycleUC,
		ReviewUC:    reviewUC,
		ExportUC:    exportUC,

		closeFn: func() {
			queue.Close()
			_ = db.Close()
		},
	}, nil
}

func newObjectStorage(ctx context.Context, cfg config.Config) (ports.ObjectStorage, error) {
	switch cfg.StorageBackend {
	case "minio":
		return minio.New(ctx, minio.Config{
			Endpoint:  cfg.MinIOEndpoint,
			AccessKey: cfg.MinIOAccessKey,
			SecretKey: cfg.MinIOSecretKey,
			Bucket:    cfg.MinIOBucket,
			UseSSL:    cfg.MinIOUseSSL,
		})
	case "local", "":
		return localfs.New(cfg.StoragePath)
	}
	return nil, fmt.Errorf("unknown storage backend %q", cfg.StorageBackend)
}

func (a *App) Close() {
	if a.closeFn != nil {
		a.closeFn()
	}
}
