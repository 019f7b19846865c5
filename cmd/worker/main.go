package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rebelsai/docusight/internal/bootstrap"
	"github.com/rebelsai/docusight/internal/config"
	"github.com/rebelsai/docusight/internal/observability/logging"
	"github.com/rebelsai/docusight/internal/observability/metrics"
)

const serviceName = "docusight-worker"

func main() {
	cfg := config.Load()
	logging.Setup(serviceName, cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.New(ctx, cfg)
	if err != nil {
		slog.Error("bootstrap_failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer app.Close()

	workerMetrics := metrics.NewWorkerMetrics(serviceName)
	metricsServer := &http.Server{
		Addr:    ":" + cfg.WorkerMetricsPort,
		Handler: metricsHandler(workerMetrics),
	}
	go func() {
		slog.Info("worker_metrics_listening", slog.String("port", cfg.WorkerMetricsPort))
		if err := metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("worker_metrics_server_failed", slog.String("error", err.Error()))
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = metricsServer.Shutdown(shutdownCtx)
	}()

	slog.Info("worker_subscribed", slog.String("subject", cfg.NATSSubject))
	err = app.Queue.SubscribeFolderIngested(ctx, func(handlerCtx context.Context, folderID string) error {
		classifyCtx, cancel := context.WithTimeout(handlerCtx, 15*time.Minute)
		defer cancel()

		if folder, err := app.Folders.GetByID(classifyCtx, folderID); err == nil {
			workerMetrics.ObserveQueueLag(serviceName, time.Since(folder.ScannedAt))
		}

		workerMetrics.StartFolder()
		start := time.Now()
		outcomes, err := app.ClassifyUC.ClassifyFolder(classifyCtx, folderID)
		workerMetrics.FinishFolder(serviceName, time.Since(start), err)
		if err != nil {
			return err
		}

		for _, outcome := range outcomes {
			disposition := "classified"
			if outcome.Skipped {
				disposition = dispositionLabel(outcome.SkipReason)
			}
			workerMetrics.RecordDocument(serviceName, disposition)
		}
		slog.Info("folder_classified",
			slog.String("folder_id", folderID),
			slog.Int("documents", len(outcomes)),
		)
		return nil
	})
	if err != nil {
		slog.Error("worker_subscribe_failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func metricsHandler(m *metrics.WorkerMetrics) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	return mux
}

// dispositionLabel folds a skip reason into a metric label value.
func dispositionLabel(skipReason string) string {
	if skipReason == "" {
		return "skipped"
	}
	return strings.ReplaceAll(skipReason, " ", "_")
}
