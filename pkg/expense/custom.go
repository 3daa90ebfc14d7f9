package expense

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/goliatone/go-stepform/pkg/api"
	"github.com/goliatone/go-stepform/pkg/submit"
)

// ErrNoExpense is returned for an out of range expense index.
var ErrNoExpense = errors.New("expense: no such expense")

// noFocus marks the editor as adding a new expense.
const noFocus = -1

// CustomManager edits the custom expense list. The editor targets one
// expense at a time; errors from a failed save stay until the editor closes.
type CustomManager struct {
	mu   sync.Mutex
	svc  Service
	year string
	opts options

	expenses        []api.CustomExpense
	loaded          bool
	focused         int
	editorOpen      bool
	generalError    string
	validationError map[string][]string
	saveDisabled    bool
	deleteDisabled  bool
}

// NewCustomManager builds a manager for year.
func NewCustomManager(svc Service, year string, options ...Option) (*CustomManager, error) {
	if svc == nil {
		return nil, errors.New("expense: service is required")
	}
	return &CustomManager{svc: svc, year: year, opts: buildOptions(options), focused: noFocus}, nil
}

// CustomState is a render-ready view.
type CustomState struct {
	Expenses        []api.CustomExpense
	Loaded          bool
	Editing         *api.CustomExpense
	EditorOpen      bool
	GeneralError    string
	ValidationError map[string][]string
	SaveDisabled    bool
	DeleteDisabled  bool
	Frozen          bool
}

// Empty reports whether the loaded list has no expenses.
func (s CustomState) Empty() bool { return s.Loaded && len(s.Expenses) == 0 }

// Load fetches the list.
func (m *CustomManager) Load(ctx context.Context) error {
	expenses, err := m.svc.CustomExpenses(ctx, m.year)
	if err != nil {
		m.opts.logger.Warn().Err(err).Str("year", m.year).Msg("fetch custom expenses failed")
		return fmt.Errorf("expense: load custom: %w", err)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.expenses = expenses
	m.loaded = true
	return nil
}

// State returns a copy of the current state.
func (m *CustomManager) State() CustomState {
	m.mu.Lock()
	defer m.mu.Unlock()
	state := CustomState{
		Expenses:       append([]api.CustomExpense(nil), m.expenses...),
		Loaded:         m.loaded,
		EditorOpen:     m.editorOpen,
		GeneralError:   m.generalError,
		SaveDisabled:   m.saveDisabled,
		DeleteDisabled: m.deleteDisabled,
		Frozen:         m.opts.frozen,
	}
	if len(m.validationError) > 0 {
		state.ValidationError = make(map[string][]string, len(m.validationError))
		for key, messages := range m.validationError {
			state.ValidationError[key] = append([]string(nil), messages...)
		}
	}
	if m.focused >= 0 && m.focused < len(m.expenses) {
		editing := m.expenses[m.focused]
		state.Editing = &editing
	}
	return state
}

// OpenNew opens the editor for a new expense.
func (m *CustomManager) OpenNew() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.focused = noFocus
	m.editorOpen = true
}

// Open opens the editor on the expense at index.
func (m *CustomManager) Open(index int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if index < 0 || index >= len(m.expenses) {
		return fmt.Errorf("%w: %d", ErrNoExpense, index)
	}
	m.focused = index
	m.editorOpen = true
	return nil
}

// Close hides the editor and clears its errors.
func (m *CustomManager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closeLocked()
}

func (m *CustomManager) closeLocked() {
	m.focused = noFocus
	m.editorOpen = false
	m.generalError = ""
	m.validationError = nil
}

// Save stores the editor contents. The focused expense is patched, or a new
// one is created when the editor was opened with OpenNew. On failure the
// editor stays open with the returned errors.
func (m *CustomManager) Save(ctx context.Context, amount, notes, kind string) error {
	m.mu.Lock()
	if m.opts.frozen {
		m.mu.Unlock()
		return ErrFrozen
	}
	if m.saveDisabled {
		m.mu.Unlock()
		return submit.ErrInFlight
	}
	focused := m.focused
	expense := api.CustomExpense{Amount: api.Amount(amount), Notes: notes, Type: kind}
	if focused != noFocus {
		expense.ID = m.expenses[focused].ID
	}
	m.saveDisabled = true
	m.mu.Unlock()

	saved, err := m.svc.SaveExpense(ctx, m.year, expense)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.saveDisabled = false
	if err != nil {
		reqErr := submit.AsRequestError(err)
		m.generalError = reqErr.General
		m.validationError = reqErr.Validation
		return reqErr
	}
	if focused != noFocus && focused < len(m.expenses) {
		m.expenses[focused] = saved
	} else {
		m.expenses = append(m.expenses, saved)
	}
	m.closeLocked()
	return nil
}

// Delete removes the expense at index and reloads the list.
func (m *CustomManager) Delete(ctx context.Context, index int) error {
	m.mu.Lock()
	if m.opts.frozen {
		m.mu.Unlock()
		return ErrFrozen
	}
	if index < 0 || index >= len(m.expenses) {
		m.mu.Unlock()
		return fmt.Errorf("%w: %d", ErrNoExpense, index)
	}
	target := m.expenses[index]
	m.deleteDisabled = true
	m.mu.Unlock()

	err := m.svc.DeleteExpense(ctx, m.year, target.ID)

	m.mu.Lock()
	m.deleteDisabled = false
	if err != nil {
		m.mu.Unlock()
		m.opts.logger.Warn().Err(err).Int64("expense", target.ID).Msg("delete expense failed")
		return fmt.Errorf("expense: delete %d: %w", target.ID, err)
	}
	for i, expense := range m.expenses {
		if expense.ID == target.ID {
			m.expenses = append(m.expenses[:i], m.expenses[i+1:]...)
			break
		}
	}
	m.focused = noFocus
	m.mu.Unlock()
	return m.Load(ctx)
}
