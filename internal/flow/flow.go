// Package flow holds the registration workflow's cross-step state: the
// current step, the registration identity, accumulated form values, and
// the set of server-acknowledged steps. The orchestrator owns the Store;
// step components request changes through it and never keep a private
// copy of the state.
package flow

import (
	"encoding/json"

	"github.com/seaswell/rollcall/internal/api"
	"github.com/seaswell/rollcall/internal/log"
	"github.com/seaswell/rollcall/internal/schema"
)

// Step identifies a position in the fixed registration sequence.
type Step int

const (
	StepProgram Step = iota
	StepForm
	StepFees
	StepPayment
	StepConfirm

	stepCount = int(StepConfirm) + 1
)

// String returns the step's display name.
func (s Step) String() string {
	switch s {
	case StepProgram:
		return "Program"
	case StepForm:
		return "Details"
	case StepFees:
		return "Fees"
	case StepPayment:
		return "Payment"
	case StepConfirm:
		return "Confirmation"
	default:
		return "Unknown"
	}
}

// Steps returns every step in order, for progress rendering.
func Steps() []Step {
	return []Step{StepProgram, StepForm, StepFees, StepPayment, StepConfirm}
}

// State is the workflow's shared mutable state. FeeSummary is a cache of
// the last fetch, never computed locally; PaymentIntent is opaque and
// owned by the payment collaborator.
type State struct {
	Current        Step
	RegistrationID string
	Program        *api.Program
	FormValues     schema.ValueMap
	FeeSummary     *api.FinancialSummary
	PaymentIntent  json.RawMessage
	Completed      map[Step]bool

	// Finalized guards against a double advance when finalize is
	// requested twice for the same registration.
	Finalized bool
}

// Patch is a partial state update. Nil/zero members leave the current
// value alone; FormValues merge key-by-key rather than replacing the map.
type Patch struct {
	RegistrationID string
	Program        *api.Program
	FormValues     schema.ValueMap
	FeeSummary     *api.FinancialSummary
	PaymentIntent  json.RawMessage
	Finalized      bool
}

// Store owns a State and exposes the three permitted mutations.
type Store struct {
	state State
}

// NewStore creates a store positioned at the first step.
func NewStore() *Store {
	return &Store{state: State{
		Current:    StepProgram,
		FormValues: make(schema.ValueMap),
		Completed:  make(map[Step]bool),
	}}
}

// State returns a read view of the current state. The maps are shared;
// callers must mutate only through the store.
func (s *Store) State() State { return s.state }

// Current returns the active step.
func (s *Store) Current() Step { return s.state.Current }

// IsCompleted reports whether the step has been server-acknowledged.
func (s *Store) IsCompleted(step Step) bool { return s.state.Completed[step] }

// Advance merges the patch, marks the current step completed, and moves
// forward. It is the only mutation that grows the completed set, so a
// step completes exactly when its data was acknowledged by the server.
func (s *Store) Advance(patch Patch) {
	s.apply(patch)
	s.state.Completed[s.state.Current] = true
	if int(s.state.Current) < stepCount-1 {
		s.state.Current++
	}
	log.Debug(log.CatFlow, "Advanced", "step", s.state.Current.String())
}

// Retreat moves back one step. Completed steps and entered form values
// survive, so revisiting a step shows prior answers.
func (s *Store) Retreat() {
	if s.state.Current > StepProgram {
		s.state.Current--
		log.Debug(log.CatFlow, "Retreated", "step", s.state.Current.String())
	}
}

// Patch shallow-merges without touching the step or the completed set.
// Used for incremental edits that must not mark a step complete.
func (s *Store) Patch(patch Patch) {
	s.apply(patch)
}

func (s *Store) apply(patch Patch) {
	if patch.RegistrationID != "" {
		s.state.RegistrationID = patch.RegistrationID
	}
	if patch.Program != nil {
		s.state.Program = patch.Program
	}
	if patch.FormValues != nil {
		if s.state.FormValues == nil {
			s.state.FormValues = make(schema.ValueMap)
		}
		for name, value := range patch.FormValues {
			s.state.FormValues[name] = value
		}
	}
	if patch.FeeSummary != nil {
		s.state.FeeSummary = patch.FeeSummary
	}
	if patch.PaymentIntent != nil {
		s.state.PaymentIntent = patch.PaymentIntent
	}
	if patch.Finalized {
		s.state.Finalized = true
	}
}
