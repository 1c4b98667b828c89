package logging

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestInitLoggerWritesFiles(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "logs")
	t.Cleanup(func() {
		AppLogger, RequestLogger, TimerLogger, ErrorLogger = zap.NewNop(), zap.NewNop(), zap.NewNop(), zap.NewNop()
	})

	require.NoError(t, InitLogger(dir))

	ctx := context.WithValue(context.Background(), middleware.RequestIDKey, "req-1")
	LogDuration(ctx, "unit")()
	ErrorLogger.Error("boom")
	Sync()

	timer, err := os.ReadFile(filepath.Join(dir, "timer.log"))
	require.NoError(t, err)
	assert.Contains(t, string(timer), `"func":"unit"`)
	assert.Contains(t, string(timer), `"request_id":"req-1"`)

	errs, err := os.ReadFile(filepath.Join(dir, "error.log"))
	require.NoError(t, err)
	assert.Contains(t, string(errs), "boom")
}

func TestDefaultLoggersAreUsable(t *testing.T) {
	assert.NotPanics(t, func() {
		AppLogger.Info("no-op")
		LogDuration(context.Background(), "noop")()
	})
}
