package wizard

import "errors"

var (
	// ErrEmptyStep is returned when a step has no fields, which would render
	// no controls at all.
	ErrEmptyStep = errors.New("wizard: step has no fields")
	// ErrNoSteps is returned when a wizard is built without steps.
	ErrNoSteps = errors.New("wizard: at least one step is required")
	// ErrIndexOutOfRange is returned for step indices outside [0, N).
	ErrIndexOutOfRange = errors.New("wizard: step index out of range")
	// ErrNotActive is returned for an action on a step other than the
	// active one, e.g. a stale or forged page.
	ErrNotActive = errors.New("wizard: step is not active")
	// ErrUnknownField is returned when a binary choice targets a field the
	// step does not own.
	ErrUnknownField = errors.New("wizard: unknown field")
	// ErrDisabled is returned while a submission is in flight.
	ErrDisabled = errors.New("wizard: controls are disabled")
	// ErrClosed is returned once the wizard has been submitted or closed.
	ErrClosed = errors.New("wizard: wizard is closed")
	// ErrInvalid is returned by Advance when the step failed validation.
	ErrInvalid = errors.New("wizard: step has invalid fields")
)
