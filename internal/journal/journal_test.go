package journal

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/boardlink/boardlink/internal/storage"
)

func newTestJournal(t *testing.T) *Journal {
	t.Helper()
	db, err := storage.OpenSQLite(context.Background(), filepath.Join(t.TempDir(), "journal.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return New(db)
}

func TestRecordAndListByLink(t *testing.T) {
	t.Parallel()
	j := newTestJournal(t)
	ctx := context.Background()

	require.NoError(t, j.Record(ctx, 1, ActionCopy, "code.py", ""))
	require.NoError(t, j.Record(ctx, 1, ActionDelete, "old.py", ""))
	require.NoError(t, j.Record(ctx, 2, ActionCopy, "other.py", ""))

	got, err := j.ListByLink(ctx, 1, 10)
	require.NoError(t, err)
	require.Len(t, got, 2)

	// Newest first.
	assert.Equal(t, ActionDelete, got[0].Action)
	assert.Equal(t, "old.py", got[0].Path)
	assert.Equal(t, ActionCopy, got[1].Action)

	all, err := j.List(ctx, 10)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestRecordFaultDetail(t *testing.T) {
	t.Parallel()
	j := newTestJournal(t)
	ctx := context.Background()

	require.NoError(t, j.Record(ctx, 3, ActionFault, "/media/board", "device unreachable"))

	got, err := j.ListByLink(ctx, 3, 1)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "device unreachable", got[0].Detail)
	assert.WithinDuration(t, time.Now(), got[0].CreatedAt, time.Minute)
}

func TestRecordValidation(t *testing.T) {
	t.Parallel()
	j := newTestJournal(t)
	ctx := context.Background()

	assert.Error(t, j.Record(ctx, 0, ActionCopy, "x", ""))
	assert.Error(t, j.Record(ctx, 1, "", "x", ""))
}

func TestPrune(t *testing.T) {
	t.Parallel()
	j := newTestJournal(t)
	ctx := context.Background()

	require.NoError(t, j.Record(ctx, 1, ActionCopy, "code.py", ""))

	// Nothing is older than an hour yet.
	n, err := j.Prune(ctx, time.Hour)
	require.NoError(t, err)
	assert.Zero(t, n)

	// A zero retention prunes everything recorded so far.
	n, err = j.Prune(ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	got, err := j.List(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, got)
}
