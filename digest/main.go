package main

import (
	"context"
	"digest/digest/config"
	"digest/digest/controllers"
	"digest/digest/routes"
	"digest/digest/services/article"
	"digest/digest/services/nlp"
	"digest/digest/services/summarizer"
	"digest/digest/services/worker"
	"digest/digest/sources/psql"
	"digest/digest/sources/psql/dao"
	"digest/digest/sources/storage"
	"digest/digest/utils/logging"
	"digest/digest/utils/validation"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"
)

const shutdownTimeout = 30 * time.Second

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config error:", err)
		os.Exit(1)
	}
	if err := logging.InitLogger(cfg.LogDir); err != nil {
		fmt.Fprintln(os.Stderr, "logger error:", err)
		os.Exit(1)
	}
	defer logging.Sync()

	if err := run(cfg); err != nil {
		logging.ErrorLogger.Error("server exited", zap.Error(err))
		logging.AppLogger.Error("server exited", zap.Error(err))
		logging.Sync()
		os.Exit(1)
	}
}

func run(cfg config.Config) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	db, err := psql.NewDatabase(ctx, cfg)
	if err != nil {
		return fmt.Errorf("database connection: %w", err)
	}
	defer db.Close()

	// The tokenizer data must be present before the first job runs.
	punktPath, err := nlp.NewResource(cfg.TokenizerDataDir, cfg.TokenizerDataURL).Ensure(ctx)
	if err != nil {
		return fmt.Errorf("tokenizer data: %w", err)
	}
	splitter, err := nlp.LoadTokenizer(punktPath)
	if err != nil {
		return err
	}

	fetcher, closeFetcher, err := article.NewFetcher(cfg.FetchMode, cfg.FetchTimeout, cfg.UserAgent)
	if err != nil {
		return err
	}
	defer closeFetcher()

	summaryDAO := dao.NewSummaryDAO(db.DB)
	svc := summarizer.NewService(fetcher, nlp.NewSummarizer(splitter), summaryDAO, cfg.SummarySentences)

	var archive *storage.MinIOClient
	if cfg.ArchiveEnabled() {
		archive, err = storage.NewMinIOClient(ctx, cfg)
		if err != nil {
			return fmt.Errorf("minio connection: %w", err)
		}
		svc.WithArchive(archive)
		logging.AppLogger.Info("article archive enabled", zap.String("bucket", cfg.MinIOBucket))
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	pool := worker.NewPool(svc, worker.Options{
		Workers:    cfg.WorkerCount,
		QueueSize:  cfg.WorkerQueueSize,
		JobTimeout: cfg.SummarizeTimeout,
		Metrics:    worker.NewMetrics(reg),
	})
	pool.Start()

	summariesCtrl := controllers.NewSummariesController(summaryDAO, pool)
	if archive != nil {
		summariesCtrl.WithArticles(archive)
	}

	srv := &http.Server{
		Addr: ":" + cfg.Port,
		Handler: routes.NewRouter(routes.Handlers{
			Summaries: summariesCtrl,
			Health:    controllers.NewHealthController(db),
			Validator: validation.New(cfg.AllowedURLSchemes),
			Metrics:   reg,
		}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logging.AppLogger.Info("server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	select {
	case sig := <-sigCh:
		logging.AppLogger.Info("shutting down", zap.String("signal", sig.String()))
	case err := <-errCh:
		if serr := stopWithin(pool.Stop, shutdownTimeout); serr != nil {
			logging.ErrorLogger.Error("worker pool stop error", zap.Error(serr))
		}
		return fmt.Errorf("server listen: %w", err)
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logging.ErrorLogger.Error("server shutdown error", zap.Error(err))
	}
	if err := pool.Stop(shutdownCtx); err != nil {
		logging.ErrorLogger.Error("worker pool stop error", zap.Error(err))
	}
	logging.AppLogger.Info("server shutdown complete")
	return nil
}

// stopWithin calls stop with a context that expires after d.
func stopWithin(stop func(context.Context) error, d time.Duration) error {
	ctx, cancel := context.WithTimeout(context.Background(), d)
	defer cancel()
	return stop(ctx)
}
