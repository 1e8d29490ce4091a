package flow

import (
	"encoding/json"

	"github.com/seaswell/rollcall/internal/api"
	"github.com/seaswell/rollcall/internal/schema"
)

// Snapshot is a serializable capture of flow state for the draft store.
// Completed is a sorted slice because JSON has no set type.
type Snapshot struct {
	Current        int             `json:"current"`
	RegistrationID string          `json:"registration_id,omitempty"`
	Program        *api.Program    `json:"program,omitempty"`
	FormValues     schema.ValueMap `json:"form_values,omitempty"`
	PaymentIntent  json.RawMessage `json:"payment_intent,omitempty"`
	Completed      []int           `json:"completed,omitempty"`
	Finalized      bool            `json:"finalized,omitempty"`
}

// Snapshot captures the resumable parts of the state. The fee summary is
// deliberately excluded: it is a fetch cache and must be re-fetched on
// resume, never trusted across sessions.
func (s *Store) Snapshot() Snapshot {
	state := s.state
	completed := make([]int, 0, len(state.Completed))
	for step := range Steps() {
		if state.Completed[Step(step)] {
			completed = append(completed, step)
		}
	}
	return Snapshot{
		Current:        int(state.Current),
		RegistrationID: state.RegistrationID,
		Program:        state.Program,
		FormValues:     state.FormValues.Clone(),
		PaymentIntent:  state.PaymentIntent,
		Completed:      completed,
		Finalized:      state.Finalized,
	}
}

// Restore replaces the store's state with the snapshot's. Steps outside
// the valid range are clamped so a corrupt draft cannot strand the flow.
func (s *Store) Restore(snap Snapshot) {
	current := snap.Current
	if current < 0 {
		current = 0
	}
	if current >= stepCount {
		current = stepCount - 1
	}

	values := snap.FormValues
	if values == nil {
		values = make(schema.ValueMap)
	}
	completed := make(map[Step]bool, len(snap.Completed))
	for _, step := range snap.Completed {
		if step >= 0 && step < stepCount {
			completed[Step(step)] = true
		}
	}

	s.state = State{
		Current:        Step(current),
		RegistrationID: snap.RegistrationID,
		Program:        snap.Program,
		FormValues:     values,
		PaymentIntent:  snap.PaymentIntent,
		Completed:      completed,
		Finalized:      snap.Finalized,
	}
}
