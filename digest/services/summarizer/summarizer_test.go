package summarizer

import (
	"context"
	"digest/digest/services/article"
	"digest/digest/services/nlp"
	"digest/digest/services/worker"
	"digest/digest/sources/psql/dao"
	"digest/digest/sources/psql/models"
	"digest/digest/sources/psql/psqltest"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubFetcher struct {
	pages map[string]string
	err   error
}

func (f *stubFetcher) Fetch(ctx context.Context, targetURL string) (*article.Page, error) {
	if f.err != nil {
		return nil, f.err
	}
	html, ok := f.pages[targetURL]
	if !ok {
		return nil, errors.New("download " + targetURL + ": bad status 404")
	}
	return &article.Page{URL: targetURL, HTML: html}, nil
}

type stubArchive struct {
	uploaded map[int]*article.Article
	err      error
}

func (a *stubArchive) UploadArticle(ctx context.Context, summaryID int, art *article.Article) (string, error) {
	if a.err != nil {
		return "", a.err
	}
	if a.uploaded == nil {
		a.uploaded = map[int]*article.Article{}
	}
	a.uploaded[summaryID] = art
	return "articles/x.json", nil
}

// sentenceSplitter splits on ". " which is enough for the fixtures below.
type sentenceSplitter struct{}

func (sentenceSplitter) Split(text string) []string {
	var out []string
	for _, s := range strings.Split(strings.ReplaceAll(text, "\n\n", " "), ". ") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

const storyHTML = `<html><head><title>Solar farm opens</title></head><body><article>
<p>The largest solar farm in the region opened on Friday after two years of construction work.</p>
<p>The solar farm will supply power to forty thousand homes across the northern valley towns.</p>
</article></body></html>`

func setup(t *testing.T, fetcher article.Fetcher) (*Service, *dao.SummaryDAO) {
	t.Helper()
	d := dao.NewSummaryDAO(psqltest.NewDatabase(t).DB)
	svc := NewService(fetcher, nlp.NewSummarizer(sentenceSplitter{}), d, 5)
	return svc, d
}

func pending(t *testing.T, d *dao.SummaryDAO, url string) *models.TextSummary {
	t.Helper()
	s := &models.TextSummary{URL: url, Status: models.StatusPending}
	require.NoError(t, d.CreateSummary(context.Background(), s))
	return s
}

func TestProcessStoresSummary(t *testing.T) {
	svc, d := setup(t, &stubFetcher{pages: map[string]string{"https://news.example/solar": storyHTML}})
	archive := &stubArchive{}
	svc.WithArchive(archive)
	rec := pending(t, d, "https://news.example/solar")

	err := svc.Process(context.Background(), worker.Job{SummaryID: rec.ID, URL: rec.URL})
	require.NoError(t, err)

	got, err := d.GetSummaryByID(context.Background(), rec.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusCompleted, got.Status)
	assert.Contains(t, got.Summary, "largest solar farm")
	assert.Nil(t, got.ErrorMessage)

	require.Contains(t, archive.uploaded, rec.ID)
	assert.Equal(t, "Solar farm opens", archive.uploaded[rec.ID].Title)
}

func TestProcessMarksFetchFailure(t *testing.T) {
	svc, d := setup(t, &stubFetcher{err: errors.New("connection refused")})
	rec := pending(t, d, "https://down.example")

	err := svc.Process(context.Background(), worker.Job{SummaryID: rec.ID, URL: rec.URL})
	require.Error(t, err)

	got, err := d.GetSummaryByID(context.Background(), rec.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusFailed, got.Status)
	assert.Empty(t, got.Summary)
	require.NotNil(t, got.ErrorMessage)
	assert.Contains(t, *got.ErrorMessage, "connection refused")
}

func TestProcessMarksEmptyPage(t *testing.T) {
	svc, d := setup(t, &stubFetcher{pages: map[string]string{"https://empty.example": "<html><body></body></html>"}})
	rec := pending(t, d, "https://empty.example")

	err := svc.Process(context.Background(), worker.Job{SummaryID: rec.ID, URL: rec.URL})
	assert.ErrorIs(t, err, article.ErrNoContent)

	got, err := d.GetSummaryByID(context.Background(), rec.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusFailed, got.Status)
}

func TestProcessToleratesDeletedRecord(t *testing.T) {
	svc, _ := setup(t, &stubFetcher{pages: map[string]string{"https://news.example/solar": storyHTML}})

	err := svc.Process(context.Background(), worker.Job{SummaryID: 999, URL: "https://news.example/solar"})
	assert.NoError(t, err)
}

func TestProcessIgnoresArchiveFailure(t *testing.T) {
	svc, d := setup(t, &stubFetcher{pages: map[string]string{"https://news.example/solar": storyHTML}})
	svc.WithArchive(&stubArchive{err: errors.New("bucket gone")})
	rec := pending(t, d, "https://news.example/solar")

	require.NoError(t, svc.Process(context.Background(), worker.Job{SummaryID: rec.ID, URL: rec.URL}))

	got, err := d.GetSummaryByID(context.Background(), rec.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusCompleted, got.Status)
}

func TestSummarizeWithoutStorage(t *testing.T) {
	svc, _ := setup(t, &stubFetcher{pages: map[string]string{"https://news.example/solar": storyHTML}})

	a, summary, err := svc.Summarize(context.Background(), "https://news.example/solar")
	require.NoError(t, err)
	assert.Equal(t, "Solar farm opens", a.Title)
	assert.NotEmpty(t, summary)
}

type panickingSummarizer struct{}

func (panickingSummarizer) Summarize(title, text string, maxSentences int) string {
	panic("tokenizer exploded")
}

func TestProcessMarksFailedWhenStoreUpdateFails(t *testing.T) {
	svc, d := setup(t, &stubFetcher{pages: map[string]string{"https://news.example/solar": storyHTML}})
	rec := pending(t, d, "https://news.example/solar")

	// the fetcher ignores ctx, so only the final write sees the cancellation
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := svc.Process(ctx, worker.Job{SummaryID: rec.ID, URL: rec.URL})
	require.ErrorIs(t, err, context.Canceled)

	got, err := d.GetSummaryByID(context.Background(), rec.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusFailed, got.Status)
	require.NotNil(t, got.ErrorMessage)
	assert.Contains(t, *got.ErrorMessage, "context canceled")
}

func TestProcessMarksFailedOnPanic(t *testing.T) {
	d := dao.NewSummaryDAO(psqltest.NewDatabase(t).DB)
	svc := NewService(&stubFetcher{pages: map[string]string{"https://news.example/solar": storyHTML}}, panickingSummarizer{}, d, 5)
	rec := pending(t, d, "https://news.example/solar")

	err := svc.Process(context.Background(), worker.Job{SummaryID: rec.ID, URL: rec.URL})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "tokenizer exploded")

	got, err := d.GetSummaryByID(context.Background(), rec.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusFailed, got.Status)
	require.NotNil(t, got.ErrorMessage)
	assert.Contains(t, *got.ErrorMessage, "summarization panicked")
}

func TestPoolPanicLeavesRecordFailed(t *testing.T) {
	d := dao.NewSummaryDAO(psqltest.NewDatabase(t).DB)
	svc := NewService(&stubFetcher{pages: map[string]string{"https://news.example/solar": storyHTML}}, panickingSummarizer{}, d, 5)
	rec := pending(t, d, "https://news.example/solar")

	pool := worker.NewPool(svc, worker.Options{Workers: 1, QueueSize: 1})
	pool.Start()
	task, err := pool.Submit(worker.Job{SummaryID: rec.ID, URL: rec.URL})
	require.NoError(t, err)

	select {
	case <-task.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("task did not finish")
	}
	assert.Error(t, task.Err())

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, pool.Stop(ctx))

	got, err := d.GetSummaryByID(context.Background(), rec.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusFailed, got.Status)
}
