package sqlite

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/seaswell/rollcall/internal/flow"
)

// DraftModel is the database row for the drafts table. The flow snapshot
// is stored as a JSON column; timestamps are Unix nanoseconds so listing
// by recency never ties.
type DraftModel struct {
	ID          string
	ServerURL   string
	ProgramName string
	Snapshot    string
	CreatedAt   int64
	UpdatedAt   int64
}

// Draft is the decoded form handed to callers.
type Draft struct {
	ID          string
	ServerURL   string
	ProgramName string
	Snapshot    flow.Snapshot
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (m DraftModel) toDraft() (Draft, error) {
	var snap flow.Snapshot
	if err := json.Unmarshal([]byte(m.Snapshot), &snap); err != nil {
		return Draft{}, fmt.Errorf("failed to decode draft snapshot: %w", err)
	}
	return Draft{
		ID:          m.ID,
		ServerURL:   m.ServerURL,
		ProgramName: m.ProgramName,
		Snapshot:    snap,
		CreatedAt:   time.Unix(0, m.CreatedAt),
		UpdatedAt:   time.Unix(0, m.UpdatedAt),
	}, nil
}

func toDraftModel(draft Draft) (DraftModel, error) {
	encoded, err := json.Marshal(draft.Snapshot)
	if err != nil {
		return DraftModel{}, fmt.Errorf("failed to encode draft snapshot: %w", err)
	}
	return DraftModel{
		ID:          draft.ID,
		ServerURL:   draft.ServerURL,
		ProgramName: draft.ProgramName,
		Snapshot:    string(encoded),
		CreatedAt:   draft.CreatedAt.UnixNano(),
		UpdatedAt:   draft.UpdatedAt.UnixNano(),
	}, nil
}
