package sqlite

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/seaswell/rollcall/internal/api"
	"github.com/seaswell/rollcall/internal/flow"
	"github.com/seaswell/rollcall/internal/schema"
)

func setupTestRepo(t *testing.T) *DraftRepository {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "drafts.db")
	db, err := NewDB(dbPath)
	require.NoError(t, err, "Failed to create test database")
	t.Cleanup(func() { _ = db.Close() })
	return db.DraftRepository()
}

func sampleSnapshot() flow.Snapshot {
	store := flow.NewStore()
	store.Advance(flow.Patch{
		Program:        &api.Program{ID: "p1", Name: "Spring Soccer"},
		RegistrationID: "reg-1",
	})
	store.Patch(flow.Patch{FormValues: schema.ValueMap{
		"first_name": schema.Text("Ada"),
		"waiver":     schema.Flag(true),
	}})
	return store.Snapshot()
}

func TestDraftRepository_SaveAssignsID(t *testing.T) {
	repo := setupTestRepo(t)

	saved, err := repo.Save(Draft{
		ServerURL:   "https://reg.example.com",
		ProgramName: "Spring Soccer",
		Snapshot:    sampleSnapshot(),
	})
	require.NoError(t, err)
	require.NotEmpty(t, saved.ID)
	require.False(t, saved.UpdatedAt.IsZero())
}

func TestDraftRepository_RoundTrip(t *testing.T) {
	repo := setupTestRepo(t)

	saved, err := repo.Save(Draft{ProgramName: "Spring Soccer", Snapshot: sampleSnapshot()})
	require.NoError(t, err)

	found, err := repo.Find(saved.ID)
	require.NoError(t, err)
	require.Equal(t, "Spring Soccer", found.ProgramName)
	require.Equal(t, "reg-1", found.Snapshot.RegistrationID)
	require.Equal(t, "Ada", found.Snapshot.FormValues["first_name"].String())
	require.True(t, found.Snapshot.FormValues["waiver"].Bool())

	restored := flow.NewStore()
	restored.Restore(found.Snapshot)
	require.Equal(t, flow.StepForm, restored.Current())
	require.True(t, restored.IsCompleted(flow.StepProgram))
}

func TestDraftRepository_SaveUpdatesExisting(t *testing.T) {
	repo := setupTestRepo(t)

	saved, err := repo.Save(Draft{ProgramName: "Spring Soccer", Snapshot: sampleSnapshot()})
	require.NoError(t, err)

	saved.ProgramName = "Summer Camp"
	updated, err := repo.Save(saved)
	require.NoError(t, err)
	require.Equal(t, saved.ID, updated.ID)

	drafts, err := repo.List()
	require.NoError(t, err)
	require.Len(t, drafts, 1, "upsert must not create a second row")
	require.Equal(t, "Summer Camp", drafts[0].ProgramName)
}

func TestDraftRepository_ListNewestFirst(t *testing.T) {
	repo := setupTestRepo(t)

	first, err := repo.Save(Draft{ProgramName: "First", Snapshot: sampleSnapshot()})
	require.NoError(t, err)
	_, err = repo.Save(Draft{ProgramName: "Second", Snapshot: sampleSnapshot()})
	require.NoError(t, err)

	// Touch the first draft so it becomes the most recent.
	_, err = repo.Save(first)
	require.NoError(t, err)

	drafts, err := repo.List()
	require.NoError(t, err)
	require.Len(t, drafts, 2)
	require.Equal(t, "First", drafts[0].ProgramName)
}

func TestDraftRepository_FindMissing(t *testing.T) {
	repo := setupTestRepo(t)

	_, err := repo.Find("nope")
	require.ErrorIs(t, err, ErrDraftNotFound)
}

func TestDraftRepository_Delete(t *testing.T) {
	repo := setupTestRepo(t)

	saved, err := repo.Save(Draft{ProgramName: "Doomed", Snapshot: sampleSnapshot()})
	require.NoError(t, err)

	require.NoError(t, repo.Delete(saved.ID))
	_, err = repo.Find(saved.ID)
	require.ErrorIs(t, err, ErrDraftNotFound)

	require.NoError(t, repo.Delete(saved.ID), "deleting twice is fine")
}
