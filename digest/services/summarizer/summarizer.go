package summarizer

import (
	"context"
	"digest/digest/services/article"
	"digest/digest/services/worker"
	"digest/digest/sources/psql/models"
	"digest/digest/utils/logging"
	"fmt"

	"go.uber.org/zap"
)

type SummaryStore interface {
	UpdateSummary(ctx context.Context, id int, updates map[string]interface{}) (*models.TextSummary, error)
}

type ArticleArchive interface {
	UploadArticle(ctx context.Context, summaryID int, a *article.Article) (string, error)
}

type TextSummarizer interface {
	Summarize(title, text string, maxSentences int) string
}

// Service downloads an article, summarizes it and stores the result on the
// summary record. It implements worker.Processor.
type Service struct {
	fetcher      article.Fetcher
	summarizer   TextSummarizer
	store        SummaryStore
	archive      ArticleArchive
	maxSentences int
}

func NewService(fetcher article.Fetcher, summarizer TextSummarizer, store SummaryStore, maxSentences int) *Service {
	return &Service{
		fetcher:      fetcher,
		summarizer:   summarizer,
		store:        store,
		maxSentences: maxSentences,
	}
}

// WithArchive uploads every extracted article to archive.
func (s *Service) WithArchive(archive ArticleArchive) *Service {
	s.archive = archive
	return s
}

// Summarize runs fetch, extract and summarize without touching storage.
func (s *Service) Summarize(ctx context.Context, targetURL string) (*article.Article, string, error) {
	defer logging.LogDuration(ctx, "summarize_article")()

	page, err := s.fetcher.Fetch(ctx, targetURL)
	if err != nil {
		return nil, "", err
	}
	a, err := article.Extract(page.URL, page.HTML)
	if err != nil {
		return a, "", fmt.Errorf("extract %s: %w", page.URL, err)
	}
	summary := s.summarizer.Summarize(a.Title, a.Text, s.maxSentences)
	if summary == "" {
		return a, "", fmt.Errorf("summarize %s: %w", page.URL, article.ErrNoContent)
	}
	return a, summary, nil
}

// Process summarizes job.URL into record job.SummaryID. A failure is written
// to the record as status failed before being returned.
func (s *Service) Process(ctx context.Context, job worker.Job) (err error) {
	defer func() {
		if r := recover(); r != nil {
			logging.ErrorLogger.Error("summarization panicked", zap.Int("summary_id", job.SummaryID), zap.Any("panic", r))
			err = fmt.Errorf("summarization panicked: %v", r)
			s.markFailed(job.SummaryID, err)
		}
	}()

	a, summary, err := s.Summarize(ctx, job.URL)
	if err != nil {
		s.markFailed(job.SummaryID, err)
		return err
	}

	if s.archive != nil {
		if key, err := s.archive.UploadArticle(ctx, job.SummaryID, a); err != nil {
			logging.ErrorLogger.Error("article archive upload failed", zap.Int("summary_id", job.SummaryID), zap.Error(err))
		} else {
			logging.AppLogger.Info("article archived", zap.Int("summary_id", job.SummaryID), zap.String("key", key))
		}
	}

	updated, err := s.store.UpdateSummary(ctx, job.SummaryID, map[string]interface{}{
		"summary":       summary,
		"status":        models.StatusCompleted,
		"error_message": nil,
	})
	if err != nil {
		err = fmt.Errorf("store summary %d: %w", job.SummaryID, err)
		s.markFailed(job.SummaryID, err)
		return err
	}
	if updated == nil {
		logging.AppLogger.Info("summary deleted before completion", zap.Int("summary_id", job.SummaryID))
	}
	return nil
}

// markFailed uses a fresh context so a cancelled job can still record why.
func (s *Service) markFailed(id int, cause error) {
	_, err := s.store.UpdateSummary(context.Background(), id, map[string]interface{}{
		"status":        models.StatusFailed,
		"error_message": cause.Error(),
	})
	if err != nil {
		logging.ErrorLogger.Error("failed to mark summary failed", zap.Int("summary_id", id), zap.Error(err))
	}
}
