package app

import (
	"context"
	"encoding/json"
	"errors"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/seaswell/rollcall/internal/api"
	"github.com/seaswell/rollcall/internal/cachemanager"
	"github.com/seaswell/rollcall/internal/schema"
)

// Results of the backend commands. Each carries the error inline; the
// orchestrator decides how a failure surfaces on the active step.
type (
	programsLoadedMsg struct {
		programs []api.Program
		err      error
	}

	registrationCreatedMsg struct {
		program api.Program
		id      string
		err     error
	}

	schemaLoadedMsg struct {
		seq    int
		form   schema.Form
		noForm bool
		err    error
	}

	formSubmittedMsg struct {
		values schema.ValueMap
		err    error
	}

	feesLoadedMsg struct {
		seq    int
		record api.RegistrationRecord
		err    error
	}

	finalizedMsg struct {
		intent json.RawMessage
		err    error
	}

	statusLoadedMsg struct {
		seq    int
		record api.RegistrationRecord
		err    error
	}

	draftSavedMsg struct {
		id  string
		err error
	}

	draftDeletedMsg struct {
		deleted bool
		err     error
	}
)

func (m Model) loadProgramsCmd() tea.Cmd {
	client := m.client
	return func() tea.Msg {
		programs, err := client.ListPrograms(context.Background())
		return programsLoadedMsg{programs: programs, err: err}
	}
}

func (m Model) createRegistrationCmd(program api.Program) tea.Cmd {
	client := m.client
	return func() tea.Msg {
		id, err := client.CreateRegistration(context.Background(), program.ID)
		return registrationCreatedMsg{program: program, id: id, err: err}
	}
}

func (m Model) fetchSchemaCmd(seq int) tea.Cmd {
	schemas := m.schemas
	programID := ""
	if p := m.store.State().Program; p != nil {
		programID = p.ID
	}
	return func() tea.Msg {
		form, err := schemas.Get(context.Background(), programID, programID, cachemanager.DefaultExpiration)
		if errors.Is(err, api.ErrNoForm) {
			return schemaLoadedMsg{seq: seq, noForm: true}
		}
		return schemaLoadedMsg{seq: seq, form: form, err: err}
	}
}

func (m Model) submitFormCmd(values schema.ValueMap) tea.Cmd {
	client := m.client
	registrationID := m.store.State().RegistrationID
	return func() tea.Msg {
		err := client.SubmitForm(context.Background(), registrationID, values)
		return formSubmittedMsg{values: values, err: err}
	}
}

func (m Model) fetchFeesCmd(seq int) tea.Cmd {
	client := m.client
	registrationID := m.store.State().RegistrationID
	return func() tea.Msg {
		record, err := client.Status(context.Background(), registrationID)
		return feesLoadedMsg{seq: seq, record: record, err: err}
	}
}

func (m Model) finalizeCmd() tea.Cmd {
	client := m.client
	registrationID := m.store.State().RegistrationID
	return func() tea.Msg {
		result, err := client.Finalize(context.Background(), registrationID)
		if err != nil {
			return finalizedMsg{err: err}
		}
		intent, err := json.Marshal(result)
		return finalizedMsg{intent: intent, err: err}
	}
}

func (m Model) fetchStatusCmd(seq int) tea.Cmd {
	client := m.client
	registrationID := m.store.State().RegistrationID
	return func() tea.Msg {
		record, err := client.Status(context.Background(), registrationID)
		return statusLoadedMsg{seq: seq, record: record, err: err}
	}
}

// saveDraftCmd persists the current snapshot. A nil repository (drafts
// disabled) or a finished flow produces no command.
func (m Model) saveDraftCmd() tea.Cmd {
	if m.drafts == nil {
		return nil
	}

	drafts := m.drafts
	draftID := m.draftID
	serverURL := m.cfg.ServerURL
	programName := m.programName()
	snapshot := m.store.Snapshot()
	return func() tea.Msg {
		saved, err := drafts.Save(sqliteDraft(draftID, serverURL, programName, snapshot))
		return draftSavedMsg{id: saved.ID, err: err}
	}
}

func (m Model) deleteDraftCmd() tea.Cmd {
	if m.drafts == nil || m.draftID == "" {
		return nil
	}

	drafts := m.drafts
	draftID := m.draftID
	return func() tea.Msg {
		err := drafts.Delete(draftID)
		return draftDeletedMsg{deleted: err == nil, err: err}
	}
}
