package sqlite

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := NewDB(context.Background(), filepath.Join(t.TempDir(), "mnemo.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}
