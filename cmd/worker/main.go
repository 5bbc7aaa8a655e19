package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/joho/godotenv/autoload"

	"github.com/ishro/aura-pipeline/internal/bootstrap"
	"github.com/ishro/aura-pipeline/internal/config"
	"github.com/ishro/aura-pipeline/internal/core/ports"
	"github.com/ishro/aura-pipeline/internal/observability/logging"
	"github.com/ishro/aura-pipeline/internal/observability/metrics"
)

func main() {
	cfg := config.Load()
	logger := logging.NewJSONLogger("worker", cfg.LogLevel)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.New(ctx, cfg)
	if err != nil {
		slog.Error("bootstrap failed", "error", err)
		os.Exit(1)
	}
	defer app.Close()

	workerMetrics := metrics.NewWorkerMetrics("worker")
	metricsServer := &http.Server{
		Addr:    ":" + cfg.WorkerMetricsPort,
		Handler: metricsMux(workerMetrics),
	}
	go func() {
		slog.Info("worker metrics listening", "port", cfg.WorkerMetricsPort)
		if err := metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("worker metrics server failed", "error", err)
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = metricsServer.Shutdown(shutdownCtx)
	}()

	slog.Info("worker subscribed", "subject", cfg.NATSSubject)
	err = app.Queue.SubscribeStageJobs(ctx, func(handlerCtx context.Context, job ports.StageJob) error {
		if !job.EnqueuedAt.IsZero() {
			workerMetrics.ObserveQueueLag("worker", time.Since(job.EnqueuedAt))
		}
		workerMetrics.StartStage()
		start := time.Now()

		_, runErr := app.StageUC.Run(handlerCtx, job.DocumentID, job.Stage)

		workerMetrics.FinishStage("worker", string(job.Stage), time.Since(start), runErr)
		if runErr != nil {
			slog.Error("stage run failed",
				"document_id", job.DocumentID,
				"stage", job.Stage,
				"error", runErr,
			)
		}
		return runErr
	})
	if err != nil {
		slog.Error("worker subscribe failed", "error", err)
		os.Exit(1)
	}
}

func metricsMux(m *metrics.WorkerMetrics) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	return mux
}
