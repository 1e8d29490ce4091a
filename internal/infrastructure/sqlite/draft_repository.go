package sqlite

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ErrDraftNotFound is returned when no draft exists for the given id.
var ErrDraftNotFound = errors.New("draft not found")

const draftColumns = `id, server_url, program_name, snapshot, created_at, updated_at`

// DraftRepository stores flow snapshots keyed by draft id.
type DraftRepository struct {
	db *sql.DB
}

// NewDraftRepository creates a repository over the given handle.
func NewDraftRepository(db *sql.DB) *DraftRepository {
	return &DraftRepository{db: db}
}

func scanDraft(scanner interface{ Scan(...any) error }) (DraftModel, error) {
	var model DraftModel
	err := scanner.Scan(
		&model.ID, &model.ServerURL, &model.ProgramName,
		&model.Snapshot, &model.CreatedAt, &model.UpdatedAt,
	)
	return model, err
}

// Save upserts the draft. An empty ID gets a fresh one; the returned
// draft carries the assigned ID and refreshed UpdatedAt.
func (r *DraftRepository) Save(draft Draft) (Draft, error) {
	now := time.Now()
	if draft.ID == "" {
		draft.ID = uuid.NewString()
		draft.CreatedAt = now
	}
	draft.UpdatedAt = now

	model, err := toDraftModel(draft)
	if err != nil {
		return Draft{}, err
	}

	_, err = r.db.Exec(
		`INSERT INTO drafts (`+draftColumns+`) VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			server_url = excluded.server_url,
			program_name = excluded.program_name,
			snapshot = excluded.snapshot,
			updated_at = excluded.updated_at`,
		model.ID, model.ServerURL, model.ProgramName,
		model.Snapshot, model.CreatedAt, model.UpdatedAt,
	)
	if err != nil {
		return Draft{}, fmt.Errorf("failed to save draft: %w", err)
	}
	return draft, nil
}

// Find retrieves one draft by id.
func (r *DraftRepository) Find(id string) (Draft, error) {
	row := r.db.QueryRow(`SELECT `+draftColumns+` FROM drafts WHERE id = ?`, id)
	model, err := scanDraft(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Draft{}, ErrDraftNotFound
	}
	if err != nil {
		return Draft{}, fmt.Errorf("failed to find draft: %w", err)
	}
	return model.toDraft()
}

// List returns all drafts, most recently updated first.
func (r *DraftRepository) List() ([]Draft, error) {
	rows, err := r.db.Query(`SELECT ` + draftColumns + ` FROM drafts ORDER BY updated_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list drafts: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var drafts []Draft
	for rows.Next() {
		model, err := scanDraft(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan draft: %w", err)
		}
		draft, err := model.toDraft()
		if err != nil {
			return nil, err
		}
		drafts = append(drafts, draft)
	}
	return drafts, rows.Err()
}

// Delete removes the draft. Deleting a missing draft is not an error.
func (r *DraftRepository) Delete(id string) error {
	if _, err := r.db.Exec(`DELETE FROM drafts WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete draft: %w", err)
	}
	return nil
}
