package scanlog_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kestrel-tools/volscan/internal/scanlog"
)

func TestInsertAndRecent(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "history.sqlite")
	db, err := scanlog.Open(dbPath)
	require.NoError(t, err)
	defer db.Close()

	ctx := context.Background()
	now := time.Now().Truncate(time.Second)

	first := scanlog.Record{
		RunID:      scanlog.NewRunID(),
		RootPath:   "/vol",
		SourceKind: "directory enumeration (portable)",
		StartedAt:  now,
		Duration:   2 * time.Second,
		FilesTotal: 100,
		DirsTotal:  10,
		BytesTotal: 4096,
	}
	require.NoError(t, db.Insert(ctx, first))

	second := first
	second.RunID = scanlog.NewRunID()
	second.StartedAt = now.Add(time.Minute)
	require.NoError(t, db.Insert(ctx, second))

	recent, err := db.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, second.RunID, recent[0].RunID) // newest first
	assert.Equal(t, first.RunID, recent[1].RunID)
	assert.Equal(t, int64(100), recent[1].FilesTotal)
}

func TestNewRunID_Unique(t *testing.T) {
	a := scanlog.NewRunID()
	b := scanlog.NewRunID()
	assert.NotEqual(t, a, b)
}
