package wizard

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/goliatone/go-stepform/pkg/field"
	"github.com/goliatone/go-stepform/pkg/submit"
)

// Submitter receives the merged values once the last step advances.
// *submit.Adapter satisfies it.
type Submitter interface {
	Submit(ctx context.Context, values field.Values) error
}

// SubmitterFunc adapts a function into a Submitter.
type SubmitterFunc func(ctx context.Context, values field.Values) error

// Submit calls the underlying function.
func (fn SubmitterFunc) Submit(ctx context.Context, values field.Values) error {
	return fn(ctx, values)
}

// FocusFunc is invoked whenever a step gains focus.
type FocusFunc func(index int)

// Option configures a Controller.
type Option func(*Controller)

// WithFocusHook registers a callback for focus transfers.
func WithFocusHook(fn FocusFunc) Option {
	return func(c *Controller) {
		c.onFocus = fn
	}
}

// WithLogger attaches a logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(c *Controller) {
		c.logger = logger
	}
}

// WithName labels log lines with the wizard name.
func WithName(name string) Option {
	return func(c *Controller) {
		c.name = name
	}
}

// Controller owns the ordered steps, the active index and the values
// collected so far. Methods are safe for concurrent use; the submitter is
// called without holding the lock and the controller is disabled meanwhile.
type Controller struct {
	mu sync.Mutex

	name      string
	steps     []*Step
	active    int
	values    field.Values
	submitter Submitter
	onFocus   FocusFunc
	logger    zerolog.Logger

	generalError    string
	validationError map[string][]string
	requestFailed   bool
	wasValidated    bool
	disabled        bool
	submitted       bool
	closed          bool
}

// New builds a controller positioned on the first step.
func New(steps []StepDescriptor, submitter Submitter, options ...Option) (*Controller, error) {
	if len(steps) == 0 {
		return nil, ErrNoSteps
	}
	if submitter == nil {
		return nil, errors.New("wizard: submitter is required")
	}
	c := &Controller{
		steps:     make([]*Step, 0, len(steps)),
		values:    make(field.Values),
		submitter: submitter,
		logger:    zerolog.Nop(),
	}
	for i, desc := range steps {
		if err := desc.validate(i); err != nil {
			return nil, err
		}
		c.steps = append(c.steps, newStep(i, desc))
	}
	for _, opt := range options {
		if opt != nil {
			opt(c)
		}
	}
	c.steps[0].focused = true
	return c, nil
}

// Mount fires the focus hook for the active step. Renderers call it once the
// wizard is displayed.
func (c *Controller) Mount() {
	c.mu.Lock()
	active := c.active
	hook := c.onFocus
	c.mu.Unlock()
	if hook != nil {
		hook(active)
	}
}

// Close releases the collected values; further actions return ErrClosed.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	c.values = nil
}

// Len returns the number of steps.
func (c *Controller) Len() int { return len(c.steps) }

// Active returns the focused step index.
func (c *Controller) Active() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.active
}

// State returns a copy of the wizard state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return State{ActiveIndex: c.active, Values: c.values.Clone()}
}

// Advance validates inputs on step index. On success the values are merged and
// the wizard moves on; the last step submits. Validation failures return
// ErrInvalid, submission failures the *submit.RequestError.
func (c *Controller) Advance(ctx context.Context, index int, inputs map[string]string) error {
	c.mu.Lock()
	if err := c.usableLocked(index); err != nil {
		c.mu.Unlock()
		return err
	}
	values, ok := c.steps[index].Advance(inputs)
	if !ok {
		c.wasValidated = true
		invalid := c.steps[index].InvalidFields()
		c.mu.Unlock()
		c.logger.Debug().Str("wizard", c.name).Int("step", index).Strs("invalid", invalid).Msg("step validation failed")
		return ErrInvalid
	}
	c.values.Merge(values)
	return c.nextLocked(ctx, index)
}

// Choose handles a click on a binary button. A custom handler runs instead of
// the default behaviour; otherwise {name: bool} is stored and the wizard
// advances.
func (c *Controller) Choose(ctx context.Context, index int, name string, choice int) error {
	c.mu.Lock()
	if err := c.usableLocked(index); err != nil {
		c.mu.Unlock()
		return err
	}
	binary, ok := c.steps[index].binary(name)
	if !ok || choice < 0 || choice > 1 {
		c.mu.Unlock()
		return fmt.Errorf("%w: %q on step %d", ErrUnknownField, name, index)
	}
	if handler := binary.Choice(choice).OnClick; handler != nil {
		c.mu.Unlock()
		return handler(ctx)
	}
	c.values[name] = binary.Value(choice)
	return c.nextLocked(ctx, index)
}

// Back moves to the previous step. It is a no-op on the first step.
func (c *Controller) Back(index int) error {
	c.mu.Lock()
	if err := c.usableLocked(index); err != nil {
		c.mu.Unlock()
		return err
	}
	if index == 0 {
		c.mu.Unlock()
		return nil
	}
	c.clearErrorsLocked()
	hook := c.focusLocked(index - 1)
	c.mu.Unlock()
	if hook != nil {
		hook()
	}
	return nil
}

// nextLocked runs the advance transition. It is entered with c.mu held and
// always releases it.
func (c *Controller) nextLocked(ctx context.Context, index int) error {
	c.clearErrorsLocked()
	if index < len(c.steps)-1 {
		hook := c.focusLocked(index + 1)
		c.mu.Unlock()
		if hook != nil {
			hook()
		}
		return nil
	}

	values := c.values.Clone()
	c.disabled = true
	c.mu.Unlock()

	c.logger.Debug().Str("wizard", c.name).Int("fields", len(values)).Msg("submitting wizard")
	err := c.submitter.Submit(ctx, values)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.disabled = false
	if err != nil {
		reqErr := submit.AsRequestError(err)
		c.requestFailed = true
		c.generalError = reqErr.General
		c.validationError = cloneErrors(reqErr.Validation)
		return reqErr
	}
	c.submitted = true
	c.closed = true
	c.values = nil
	return nil
}

func (c *Controller) usableLocked(index int) error {
	if c.closed {
		return ErrClosed
	}
	if c.disabled {
		return ErrDisabled
	}
	if index < 0 || index >= len(c.steps) {
		return fmt.Errorf("%w: %d", ErrIndexOutOfRange, index)
	}
	if index != c.active {
		return fmt.Errorf("%w: %d (active %d)", ErrNotActive, index, c.active)
	}
	return nil
}

func (c *Controller) focusLocked(index int) func() {
	c.steps[c.active].focused = false
	c.active = index
	c.steps[index].focused = true
	if c.onFocus == nil {
		return nil
	}
	hook := c.onFocus
	return func() { hook(index) }
}

func (c *Controller) clearErrorsLocked() {
	c.requestFailed = false
	c.generalError = ""
	c.validationError = nil
}

func cloneErrors(src map[string][]string) map[string][]string {
	if len(src) == 0 {
		return nil
	}
	out := make(map[string][]string, len(src))
	for key, messages := range src {
		out[key] = append([]string(nil), messages...)
	}
	return out
}

// AdvanceOnEnter is the enter-key path; it behaves exactly like Advance.
func (c *Controller) AdvanceOnEnter(ctx context.Context, index int, inputs map[string]string) error {
	return c.Advance(ctx, index, inputs)
}
