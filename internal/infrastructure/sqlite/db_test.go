package sqlite

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewDB_CreatesDirectory(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "subdir", "nested", "drafts.db")

	db, err := NewDB(dbPath)
	require.NoError(t, err, "NewDB should create nested directories")
	defer func() { _ = db.Close() }()

	info, err := os.Stat(filepath.Dir(dbPath))
	require.NoError(t, err)
	require.True(t, info.IsDir())

	if runtime.GOOS != "windows" {
		require.Equal(t, os.FileMode(0700), info.Mode().Perm())
	}
}

func TestNewDB_ReopenKeepsData(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "drafts.db")

	db, err := NewDB(dbPath)
	require.NoError(t, err)
	saved, err := db.DraftRepository().Save(Draft{ProgramName: "Spring Soccer", Snapshot: sampleSnapshot()})
	require.NoError(t, err)
	require.NoError(t, db.Close())

	db, err = NewDB(dbPath)
	require.NoError(t, err, "schema application must be idempotent")
	defer func() { _ = db.Close() }()

	found, err := db.DraftRepository().Find(saved.ID)
	require.NoError(t, err)
	require.Equal(t, "Spring Soccer", found.ProgramName)
}
