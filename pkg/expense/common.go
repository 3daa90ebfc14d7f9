package expense

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/goliatone/go-stepform/pkg/api"
)

// ErrFrozen is returned when a frozen return is edited.
var ErrFrozen = errors.New("expense: return is frozen")

// CommonManager edits the common expenses record. Saving is skipped when
// nothing changed since the last save.
type CommonManager struct {
	mu   sync.Mutex
	svc  Service
	year string
	opts options

	id       string
	expenses []api.CommonExpense
	dirty    bool
	modified bool
	saving   bool
}

// NewCommonManager builds a manager for year.
func NewCommonManager(svc Service, year string, options ...Option) (*CommonManager, error) {
	if svc == nil {
		return nil, errors.New("expense: service is required")
	}
	return &CommonManager{svc: svc, year: year, opts: buildOptions(options)}, nil
}

// CommonState is a render-ready view.
type CommonState struct {
	Expenses []api.CommonExpense
	Dirty    bool
	Modified bool
	Saving   bool
	Frozen   bool
}

// InputValue is the value an input shows; zero amounts render empty.
func InputValue(e api.CommonExpense) string {
	if e.Value == "0.00" {
		return ""
	}
	return e.Value
}

// Load fetches the record.
func (m *CommonManager) Load(ctx context.Context) error {
	record, err := m.svc.CommonExpenses(ctx, m.year)
	if err != nil {
		m.opts.logger.Warn().Err(err).Str("year", m.year).Msg("fetch common expenses failed")
		return fmt.Errorf("expense: load common: %w", err)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.id = record.ID
	m.expenses = record.Expenses
	return nil
}

// State returns a copy of the current state.
func (m *CommonManager) State() CommonState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return CommonState{
		Expenses: append([]api.CommonExpense(nil), m.expenses...),
		Dirty:    m.dirty,
		Modified: m.modified,
		Saving:   m.saving,
		Frozen:   m.opts.frozen,
	}
}

// Touch records an input change.
func (m *CommonManager) Touch() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.dirty = true
	m.modified = true
}

// Save patches the record with values. It reports saved=false without a
// network call when nothing was modified or a save is already running.
func (m *CommonManager) Save(ctx context.Context, values api.Form) (saved bool, err error) {
	m.mu.Lock()
	if m.opts.frozen {
		m.mu.Unlock()
		return false, ErrFrozen
	}
	if !m.modified || m.saving {
		m.mu.Unlock()
		return false, nil
	}
	m.saving = true
	id := m.id
	m.mu.Unlock()

	err = m.svc.SaveCommonExpenses(ctx, m.year, id, values)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.saving = false
	if err != nil {
		return false, fmt.Errorf("expense: save common: %w", err)
	}
	m.modified = false
	for i := range m.expenses {
		if value, ok := values[m.expenses[i].Name]; ok {
			m.expenses[i].Value = value
		}
	}
	return true, nil
}
