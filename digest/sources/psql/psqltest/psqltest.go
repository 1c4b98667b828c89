// Package psqltest opens throwaway SQLite databases for tests.
package psqltest

import (
	"context"
	"digest/digest/config"
	"digest/digest/sources/psql"
	"testing"

	"github.com/stretchr/testify/require"
)

func NewDatabase(t testing.TB) *psql.Database {
	t.Helper()
	cfg := config.Defaults()
	cfg.DBDriver = "sqlite"
	cfg.DBPath = ":memory:"

	db, err := psql.NewDatabase(context.Background(), cfg)
	require.NoError(t, err)
	t.Cleanup(db.Close)
	return db
}
