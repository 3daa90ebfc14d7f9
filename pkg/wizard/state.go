package wizard

import (
	"github.com/goliatone/go-stepform/pkg/field"
)

// State is the externally visible wizard state.
type State struct {
	ActiveIndex int
	Values      field.Values
}

// StepSnapshot describes one step for rendering.
type StepSnapshot struct {
	Index         int
	ID            string
	Title         string
	Fields        []field.Descriptor
	Validity      map[string]field.Validity
	Focused       bool
	HasBackButton bool
	HasNextButton bool
}

// Snapshot is everything a renderer needs to draw the wizard.
type Snapshot struct {
	Name         string
	ActiveIndex  int
	Steps        []StepSnapshot
	Values       field.Values
	Disabled     bool
	WasValidated bool
	Submitted    bool
	// HasError is set after a failed submission even when the failure carried
	// neither a general nor a validation message.
	HasError        bool
	GeneralError    string
	ValidationError map[string][]string
}

// Snapshot captures the controller state for rendering.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	snap := Snapshot{
		Name:            c.name,
		ActiveIndex:     c.active,
		Steps:           make([]StepSnapshot, 0, len(c.steps)),
		Values:          c.values.Clone(),
		Disabled:        c.disabled,
		WasValidated:    c.wasValidated,
		Submitted:       c.submitted,
		HasError:        c.requestFailed,
		GeneralError:    c.generalError,
		ValidationError: cloneErrors(c.validationError),
	}
	for _, step := range c.steps {
		validity := make(map[string]field.Validity, len(step.fields))
		for _, desc := range step.fields {
			name := desc.Base().Name
			validity[name] = step.Validity(name)
		}
		snap.Steps = append(snap.Steps, StepSnapshot{
			Index:         step.index,
			ID:            step.ID(),
			Title:         step.title,
			Fields:        step.Fields(),
			Validity:      validity,
			Focused:       step.focused,
			HasBackButton: step.index > 0,
			HasNextButton: step.HasNextButton(),
		})
	}
	return snap
}
