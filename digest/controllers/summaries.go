package controllers

import (
	"context"
	"digest/digest/services/worker"
	"digest/digest/sources/psql/models"
	"digest/digest/sources/storage"
	"digest/digest/utils/logging"
	"errors"
	"fmt"

	"go.uber.org/zap"
)

var (
	ErrSummaryNotFound = errors.New("Summary not found")
	ErrArticleNotFound = errors.New("Article not found")
)

type SummaryStore interface {
	CreateSummary(ctx context.Context, summary *models.TextSummary) error
	GetSummaryByID(ctx context.Context, id int) (*models.TextSummary, error)
	GetAllSummaries(ctx context.Context) ([]models.TextSummary, error)
	UpdateSummary(ctx context.Context, id int, updates map[string]interface{}) (*models.TextSummary, error)
	DeleteSummary(ctx context.Context, id int) (*models.TextSummary, error)
}

// Scheduler queues summarization jobs.
type Scheduler interface {
	Submit(job worker.Job) (*worker.Task, error)
}

// ArticleStore reads and removes archived articles.
type ArticleStore interface {
	GetArticle(ctx context.Context, summaryID int) (*storage.ArticleObject, error)
	DeleteArticle(ctx context.Context, summaryID int) error
}

type SummariesController struct {
	store     SummaryStore
	scheduler Scheduler
	articles  ArticleStore
}

func NewSummariesController(store SummaryStore, scheduler Scheduler) *SummariesController {
	return &SummariesController{store: store, scheduler: scheduler}
}

// WithArticles enables the archived article endpoint and archive cleanup on delete.
func (c *SummariesController) WithArticles(articles ArticleStore) *SummariesController {
	c.articles = articles
	return c
}

// CreateSummary stores a pending record and queues its summarization. The
// record is returned even when the job could not be queued; it is then
// marked failed.
func (c *SummariesController) CreateSummary(ctx context.Context, url string) (*models.TextSummary, error) {
	summary := &models.TextSummary{URL: url, Status: models.StatusPending}
	if err := c.store.CreateSummary(ctx, summary); err != nil {
		return nil, fmt.Errorf("create summary: %w", err)
	}

	task, err := c.scheduler.Submit(worker.Job{SummaryID: summary.ID, URL: summary.URL})
	if err != nil {
		logging.ErrorLogger.Error("failed to queue summarization", zap.Int("summary_id", summary.ID), zap.Error(err))
		msg := err.Error()
		if _, uerr := c.store.UpdateSummary(ctx, summary.ID, map[string]interface{}{
			"status":        models.StatusFailed,
			"error_message": msg,
		}); uerr != nil {
			return nil, fmt.Errorf("mark summary %d failed: %w", summary.ID, uerr)
		}
		summary.Status, summary.ErrorMessage = models.StatusFailed, &msg
		return summary, nil
	}
	logging.AppLogger.Info("summarization queued",
		zap.Int("summary_id", summary.ID),
		zap.String("task_id", task.ID.String()),
	)
	return summary, nil
}

func (c *SummariesController) GetSummary(ctx context.Context, id int) (*models.TextSummary, error) {
	summary, err := c.store.GetSummaryByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if summary == nil {
		return nil, ErrSummaryNotFound
	}
	return summary, nil
}

func (c *SummariesController) ListSummaries(ctx context.Context) ([]models.TextSummary, error) {
	return c.store.GetAllSummaries(ctx)
}

// UpdateSummary replaces url and summary. A client supplied summary counts as
// completed.
func (c *SummariesController) UpdateSummary(ctx context.Context, id int, url, text string) (*models.TextSummary, error) {
	summary, err := c.store.UpdateSummary(ctx, id, map[string]interface{}{
		"url":           url,
		"summary":       text,
		"status":        models.StatusCompleted,
		"error_message": nil,
	})
	if err != nil {
		return nil, err
	}
	if summary == nil {
		return nil, ErrSummaryNotFound
	}
	return summary, nil
}

func (c *SummariesController) DeleteSummary(ctx context.Context, id int) (*models.TextSummary, error) {
	summary, err := c.store.DeleteSummary(ctx, id)
	if err != nil {
		return nil, err
	}
	if summary == nil {
		return nil, ErrSummaryNotFound
	}
	if c.articles != nil {
		if err := c.articles.DeleteArticle(ctx, id); err != nil {
			logging.ErrorLogger.Error("failed to delete archived article", zap.Int("summary_id", id), zap.Error(err))
		}
	}
	return summary, nil
}

// GetArticle returns the archived article of an existing summary.
func (c *SummariesController) GetArticle(ctx context.Context, id int) (*storage.ArticleObject, error) {
	if _, err := c.GetSummary(ctx, id); err != nil {
		return nil, err
	}
	if c.articles == nil {
		return nil, ErrArticleNotFound
	}
	obj, err := c.articles.GetArticle(ctx, id)
	if err != nil {
		return nil, err
	}
	if obj == nil {
		return nil, ErrArticleNotFound
	}
	return obj, nil
}
