package dao_test

import (
	"context"
	"digest/digest/sources/psql/dao"
	"digest/digest/sources/psql/models"
	"digest/digest/sources/psql/psqltest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newDAO(t *testing.T) *dao.SummaryDAO {
	return dao.NewSummaryDAO(psqltest.NewDatabase(t).DB)
}

func create(t *testing.T, d *dao.SummaryDAO, url string) *models.TextSummary {
	t.Helper()
	s := &models.TextSummary{URL: url, Status: models.StatusPending}
	require.NoError(t, d.CreateSummary(context.Background(), s))
	return s
}

func TestCreateAndGet(t *testing.T) {
	d := newDAO(t)
	ctx := context.Background()

	s := create(t, d, "https://foo.bar")
	require.Positive(t, s.ID)
	assert.False(t, s.CreatedAt.IsZero())

	got, err := d.GetSummaryByID(ctx, s.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "https://foo.bar", got.URL)
	assert.Empty(t, got.Summary)
	assert.Equal(t, models.StatusPending, got.Status)

	missing, err := d.GetSummaryByID(ctx, s.ID+100)
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestGetAllOrderedByID(t *testing.T) {
	d := newDAO(t)

	empty, err := d.GetAllSummaries(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)

	a := create(t, d, "https://foo1.bar")
	b := create(t, d, "https://foo2.bar")

	all, err := d.GetAllSummaries(context.Background())
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, a.ID, all[0].ID)
	assert.Equal(t, b.ID, all[1].ID)
}

func TestUpdateSummary(t *testing.T) {
	d := newDAO(t)
	ctx := context.Background()
	s := create(t, d, "https://foo.bar")
	before, err := d.GetSummaryByID(ctx, s.ID)
	require.NoError(t, err)

	updated, err := d.UpdateSummary(ctx, s.ID, map[string]interface{}{
		"summary": "A short summary.",
		"status":  models.StatusCompleted,
	})
	require.NoError(t, err)
	require.NotNil(t, updated)
	assert.Equal(t, "A short summary.", updated.Summary)
	assert.Equal(t, models.StatusCompleted, updated.Status)
	assert.Equal(t, "https://foo.bar", updated.URL)
	assert.True(t, before.CreatedAt.Equal(updated.CreatedAt))

	missing, err := d.UpdateSummary(ctx, s.ID+1, map[string]interface{}{"summary": "x"})
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestUpdateClearsErrorMessage(t *testing.T) {
	d := newDAO(t)
	ctx := context.Background()
	s := create(t, d, "https://foo.bar")

	failed, err := d.UpdateSummary(ctx, s.ID, map[string]interface{}{
		"status":        models.StatusFailed,
		"error_message": "fetch failed",
	})
	require.NoError(t, err)
	require.NotNil(t, failed.ErrorMessage)
	assert.Equal(t, "fetch failed", *failed.ErrorMessage)

	fixed, err := d.UpdateSummary(ctx, s.ID, map[string]interface{}{
		"summary":       "ok",
		"status":        models.StatusCompleted,
		"error_message": nil,
	})
	require.NoError(t, err)
	assert.Nil(t, fixed.ErrorMessage)
}

func TestDeleteSummary(t *testing.T) {
	d := newDAO(t)
	ctx := context.Background()
	s := create(t, d, "https://foo.bar")

	deleted, err := d.DeleteSummary(ctx, s.ID)
	require.NoError(t, err)
	require.NotNil(t, deleted)
	assert.Equal(t, s.ID, deleted.ID)
	assert.Equal(t, "https://foo.bar", deleted.URL)

	got, err := d.GetSummaryByID(ctx, s.ID)
	require.NoError(t, err)
	assert.Nil(t, got)

	again, err := d.DeleteSummary(ctx, s.ID)
	require.NoError(t, err)
	assert.Nil(t, again)
}

func TestConcurrentUpdateAndRead(t *testing.T) {
	d := newDAO(t)
	ctx := context.Background()
	s := create(t, d, "https://foo.bar")
	const text = "The complete summary text."

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, err := d.UpdateSummary(ctx, s.ID, map[string]interface{}{"summary": text, "status": models.StatusCompleted})
		assert.NoError(t, err)
	}()
	for i := 0; i < 20; i++ {
		got, err := d.GetSummaryByID(ctx, s.ID)
		require.NoError(t, err)
		assert.Contains(t, []string{"", text}, got.Summary)
	}
	wg.Wait()
}
