// Package app contains the root application model: the step
// orchestrator that owns the flow store, routes messages to the active
// step component, and talks to the registration backend.
package app

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
	zone "github.com/lrstanley/bubblezone"

	"github.com/seaswell/rollcall/internal/api"
	"github.com/seaswell/rollcall/internal/cachemanager"
	"github.com/seaswell/rollcall/internal/config"
	"github.com/seaswell/rollcall/internal/flow"
	"github.com/seaswell/rollcall/internal/infrastructure/sqlite"
	"github.com/seaswell/rollcall/internal/log"
	"github.com/seaswell/rollcall/internal/schema"
	"github.com/seaswell/rollcall/internal/ui/confirmation"
	"github.com/seaswell/rollcall/internal/ui/feesummary"
	"github.com/seaswell/rollcall/internal/ui/payment"
	"github.com/seaswell/rollcall/internal/ui/programpicker"
	"github.com/seaswell/rollcall/internal/ui/regform"
	"github.com/seaswell/rollcall/internal/ui/statusbar"
	"github.com/seaswell/rollcall/internal/validate"
)

// Model is the root application state.
type Model struct {
	cfg    config.Config
	client *api.Client
	engine *validate.Engine
	store  *flow.Store

	// drafts is nil when draft persistence is disabled.
	drafts  *sqlite.DraftRepository
	draftID string

	// schemas caches fetched form schemas per program, so re-selecting
	// a program does not refetch an unchanged form.
	schemas *cachemanager.ReadThroughCache[string, schema.Form, string]

	picker  programpicker.Model
	form    regform.Model
	fees    feesummary.Model
	pay     payment.Model
	confirm confirmation.Model
	bar     statusbar.Model

	// formReady is false while the form schema is in flight; formErr
	// holds the fetch failure shown on the form step.
	formReady bool
	formErr   string

	// lastChosen lets the picker's retry re-run registration creation
	// rather than the program list fetch.
	lastChosen *api.Program

	// Sequence tokens for last-request-wins. A response whose token no
	// longer matches is stale and dropped.
	schemaSeq int
	feeSeq    int
	statusSeq int

	width  int
	height int
}

// New creates an application model starting a fresh registration.
func New(cfg config.Config, client *api.Client, engine *validate.Engine, drafts *sqlite.DraftRepository) Model {
	m := Model{
		cfg:    cfg,
		client: client,
		engine: engine,
		store:  flow.NewStore(),
		drafts: drafts,
		picker: programpicker.New(cfg.UI.MarkdownStyle),
		bar:    statusbar.New(),
		schemas: cachemanager.NewReadThroughCache(
			cachemanager.NewInMemoryCacheManager[string, schema.Form](
				"form-schema", cachemanager.DefaultExpiration, cachemanager.DefaultCleanupInterval),
			func(ctx context.Context, programID string) (schema.Form, error) {
				return client.FetchForm(ctx, programID)
			},
			false,
		),
	}
	m.bar = m.bar.SetProgress(m.store.Current(), m.store.State().Completed)
	return m
}

// Resume creates an application model from a saved draft. The flow
// store is restored; the step's server data is re-fetched on Init.
func Resume(cfg config.Config, client *api.Client, engine *validate.Engine, drafts *sqlite.DraftRepository, draft sqlite.Draft) Model {
	m := New(cfg, client, engine, drafts)
	m.store.Restore(draft.Snapshot)
	m.draftID = draft.ID

	state := m.store.State()
	switch state.Current {
	case flow.StepPayment:
		m.pay = payment.New(state.PaymentIntent)
	case flow.StepConfirm:
		m.confirm = confirmation.New(m.programName(), state.FormValues)
	case flow.StepFees:
		m.fees = feesummary.New()
	}
	m.bar = m.bar.SetProgress(m.store.Current(), state.Completed)
	log.Info(log.CatFlow, "Resumed draft", "draft", draft.ID, "step", state.Current.String())
	return m
}

// Init kicks off the fetch the current step depends on. It issues the
// fetch under the current sequence tokens: nothing can have superseded
// a request made before the first Update runs.
func (m Model) Init() tea.Cmd {
	switch m.store.Current() {
	case flow.StepProgram:
		return m.loadProgramsCmd()
	case flow.StepForm:
		return m.fetchSchemaCmd(m.schemaSeq)
	case flow.StepFees:
		return m.fetchFeesCmd(m.feeSeq)
	case flow.StepConfirm:
		return m.fetchStatusCmd(m.statusSeq)
	}
	return nil
}

// Store exposes the flow store for tests.
func (m Model) Store() *flow.Store { return m.store }

func (m Model) programName() string {
	if p := m.store.State().Program; p != nil {
		return p.Name
	}
	return ""
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit
		case "q":
			if m.quitAllowed() {
				return m, tea.Quit
			}
		case "esc":
			return m.handleEscape()
		case "r":
			if m.store.Current() == flow.StepForm && m.formErr != "" {
				m.formErr = ""
				m.schemaSeq++
				return m, m.fetchSchemaCmd(m.schemaSeq)
			}
		}
		return m.routeToStep(msg)

	case tea.MouseMsg:
		return m.routeToStep(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.picker = m.picker.SetSize(msg.Width, msg.Height)
		m.form = m.form.SetSize(msg.Width, msg.Height)
		m.fees = m.fees.SetSize(msg.Width, msg.Height)
		m.pay = m.pay.SetSize(msg.Width, msg.Height)
		m.confirm = m.confirm.SetSize(msg.Width, msg.Height)
		m.bar = m.bar.SetWidth(msg.Width)
		return m, nil
	}

	return m.handleAppMsg(msg)
}

// quitAllowed reports whether plain q quits. It never does on the form
// step, where q is a character being typed.
func (m Model) quitAllowed() bool {
	switch m.store.Current() {
	case flow.StepProgram, flow.StepPayment, flow.StepConfirm:
		return true
	default:
		return false
	}
}

// handleEscape retreats one step. Re-entering the fee step always
// re-fetches; the cached summary is display state, not truth.
func (m Model) handleEscape() (tea.Model, tea.Cmd) {
	if m.store.Current() == flow.StepProgram {
		return m, nil
	}
	if m.busy() {
		return m, nil
	}

	m.store.Retreat()
	m.bar = m.bar.SetProgress(m.store.Current(), m.store.State().Completed)

	if m.store.Current() == flow.StepFees {
		m.fees = feesummary.New()
		m.feeSeq++
		return m, m.fetchFeesCmd(m.feeSeq)
	}
	return m, nil
}

// busy reports whether the active step has a request in flight.
func (m Model) busy() bool {
	switch m.store.Current() {
	case flow.StepForm:
		return m.formReady && m.form.IsLoading()
	case flow.StepFees:
		return m.fees.IsLoading() && m.fees.Summary() != nil
	default:
		return false
	}
}

// routeToStep forwards input to the active step component.
func (m Model) routeToStep(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.store.Current() {
	case flow.StepProgram:
		m.picker, cmd = m.picker.Update(msg)
	case flow.StepForm:
		if m.formReady {
			m.form, cmd = m.form.Update(msg)
		}
	case flow.StepFees:
		m.fees, cmd = m.fees.Update(msg)
	case flow.StepPayment:
		m.pay, cmd = m.pay.Update(msg)
	case flow.StepConfirm:
		m.confirm, cmd = m.confirm.Update(msg)
	}
	return m, cmd
}

// handleAppMsg processes step component messages and command results.
func (m Model) handleAppMsg(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	// Program step

	case programsLoadedMsg:
		if msg.err != nil {
			m.picker = m.picker.SetError(msg.err.Error())
			return m, nil
		}
		m.picker = m.picker.SetPrograms(msg.programs)
		return m, nil

	case programpicker.ChosenMsg:
		program := msg.Program
		m.lastChosen = &program
		m.picker = m.picker.SetLoading()
		return m, m.createRegistrationCmd(program)

	case programpicker.RetryMsg:
		if m.lastChosen != nil {
			return m, m.createRegistrationCmd(*m.lastChosen)
		}
		return m, m.loadProgramsCmd()

	case registrationCreatedMsg:
		if msg.err != nil {
			m.picker = m.picker.SetError(msg.err.Error())
			return m, nil
		}
		program := msg.program
		m.store.Advance(flow.Patch{RegistrationID: msg.id, Program: &program})
		m.bar = m.bar.SetProgress(m.store.Current(), m.store.State().Completed)
		m.formReady = false
		m.formErr = ""
		m.schemaSeq++
		return m, tea.Batch(m.fetchSchemaCmd(m.schemaSeq), m.saveDraftCmd())

	// Form step

	case schemaLoadedMsg:
		if msg.seq != m.schemaSeq {
			log.Debug(log.CatFlow, "Dropped stale schema response", "seq", msg.seq)
			return m, nil
		}
		if msg.err != nil {
			m.formErr = msg.err.Error()
			return m, nil
		}
		if msg.noForm {
			m.form = regform.NewNoForm()
		} else {
			m.form = regform.New(msg.form, m.engine, m.store.State().FormValues)
		}
		m.form = m.form.SetSize(m.width, m.height)
		m.formReady = true
		return m, m.form.Init()

	case regform.ValueChangedMsg:
		m.store.Patch(flow.Patch{FormValues: schema.ValueMap{msg.Field: msg.Value}})
		return m, nil

	case regform.SubmitMsg:
		m.form = m.form.SetLoading("Submitting...")
		return m, m.submitFormCmd(msg.Values)

	case regform.BackMsg:
		return m.handleEscape()

	case formSubmittedMsg:
		if msg.err != nil {
			m.form = m.form.SetGeneralError(msg.err.Error())
			return m, nil
		}
		m.form = m.form.SetGeneralError("")
		m.store.Advance(flow.Patch{FormValues: msg.values})
		m.bar = m.bar.SetProgress(m.store.Current(), m.store.State().Completed)
		m.fees = feesummary.New()
		m.feeSeq++
		return m, tea.Batch(m.fetchFeesCmd(m.feeSeq), m.saveDraftCmd())

	// Fee step

	case feesLoadedMsg:
		if msg.seq != m.feeSeq {
			log.Debug(log.CatFlow, "Dropped stale fee response", "seq", msg.seq)
			return m, nil
		}
		if msg.err != nil {
			m.fees = m.fees.SetError(msg.err.Error())
			return m, nil
		}
		if msg.record.FinancialSummary == nil {
			m.fees = m.fees.SetError("The server returned no fee information.")
			return m, nil
		}
		m.store.Patch(flow.Patch{FeeSummary: msg.record.FinancialSummary})
		m.fees = m.fees.SetSummary(msg.record.FinancialSummary)
		return m, nil

	case feesummary.RefreshRequestMsg:
		m.feeSeq++
		return m, m.fetchFeesCmd(m.feeSeq)

	case feesummary.FinalizeRequestMsg:
		if m.store.State().Finalized {
			// Already finalized server-side; move on without a second call.
			return m.enterPayment(m.store.State().PaymentIntent)
		}
		m.fees = m.fees.SetLoading("Finalizing...")
		return m, m.finalizeCmd()

	case feesummary.BackMsg:
		return m.handleEscape()

	case finalizedMsg:
		if msg.err != nil {
			m.fees = m.fees.SetError(msg.err.Error())
			return m, nil
		}
		return m.enterPayment(msg.intent)

	// Payment step

	case payment.ContinueMsg:
		m.store.Advance(flow.Patch{})
		m.bar = m.bar.SetProgress(m.store.Current(), m.store.State().Completed)
		m.confirm = confirmation.New(m.programName(), m.store.State().FormValues)
		m.statusSeq++
		return m, tea.Batch(m.fetchStatusCmd(m.statusSeq), m.saveDraftCmd())

	// Confirmation step

	case statusLoadedMsg:
		if msg.seq != m.statusSeq {
			log.Debug(log.CatFlow, "Dropped stale status response", "seq", msg.seq)
			return m, nil
		}
		if msg.err != nil {
			m.confirm = m.confirm.SetError(msg.err.Error())
			return m, nil
		}
		record := msg.record
		m.confirm = m.confirm.SetRecord(&record)
		if confirmation.Classify(&record) == confirmation.OutcomeSuccessful {
			return m, m.deleteDraftCmd()
		}
		return m, nil

	case confirmation.RetryMsg:
		m.statusSeq++
		return m, m.fetchStatusCmd(m.statusSeq)

	// Drafts

	case draftSavedMsg:
		if msg.err != nil {
			log.ErrorErr(log.CatDB, "Draft save failed", msg.err)
			return m, nil
		}
		m.draftID = msg.id
		m.bar = m.bar.SetNote("draft saved")
		return m, nil

	case draftDeletedMsg:
		if msg.err != nil {
			log.ErrorErr(log.CatDB, "Draft delete failed", msg.err)
		} else if msg.deleted {
			m.draftID = ""
			m.bar = m.bar.SetNote("")
		}
		return m, nil
	}

	return m, nil
}

// enterPayment advances into the payment step with the given intent.
func (m Model) enterPayment(intent []byte) (tea.Model, tea.Cmd) {
	m.store.Advance(flow.Patch{PaymentIntent: intent, Finalized: true})
	m.bar = m.bar.SetProgress(m.store.Current(), m.store.State().Completed)
	m.pay = payment.New(intent)
	m.pay = m.pay.SetSize(m.width, m.height)
	return m, m.saveDraftCmd()
}

// View renders the active step above the status bar.
func (m Model) View() string {
	var body string
	switch m.store.Current() {
	case flow.StepProgram:
		body = m.picker.View()
	case flow.StepForm:
		body = m.formView()
	case flow.StepFees:
		body = m.fees.View()
	case flow.StepPayment:
		body = m.pay.View()
	case flow.StepConfirm:
		body = m.confirm.View()
	}
	if !m.cfg.UI.ShowStatusBar {
		return zone.Scan(body)
	}
	return zone.Scan(body + "\n\n" + m.bar.View())
}

func (m Model) formView() string {
	if m.formErr != "" {
		return errorStepView("Registration Details", m.formErr)
	}
	if !m.formReady {
		return loadingStepView("Registration Details", "Loading form...")
	}
	return m.form.View()
}
