// Package tui drives a wizard from the terminal. Each step is shown as a
// sequence of survey prompts; the runner feeds the answers into the wizard
// controller the same way the HTML form posts do.
package tui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"github.com/goliatone/go-stepform/pkg/field"
	"github.com/goliatone/go-stepform/pkg/render"
	"github.com/goliatone/go-stepform/pkg/submit"
	"github.com/goliatone/go-stepform/pkg/wizard"
)

// Navigation labels offered after the inputs of a step.
const (
	NextLabel = "Next"
	BackLabel = "← Back"
)

// Session is one terminal run of a wizard.
type Session struct {
	Flow       string
	Title      string
	Notes      []string
	Controller *wizard.Controller
}

// Runner prompts through a wizard until it submits or a choice handler
// navigates away. It doubles as the submit.Navigator of the wizards it runs.
type Runner struct {
	driver PromptDriver
	out    io.Writer
	theme  Theme
	logger zerolog.Logger

	mu        sync.Mutex
	target    string
	navigated bool
}

var _ submit.Navigator = (*Runner)(nil)

// New constructs a runner with the survey driver writing to stdout.
func New(options ...Option) *Runner {
	r := &Runner{logger: zerolog.Nop()}
	for _, opt := range options {
		if opt != nil {
			opt(r)
		}
	}
	if r.driver == nil {
		if r.out == nil {
			r.out = os.Stdout
		}
		r.driver = newSurveyDriver(r.out)
	}
	return r
}

// Navigate records target; the running session ends once it returns.
func (r *Runner) Navigate(_ context.Context, target string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.target = target
	r.navigated = true
	return nil
}

func (r *Runner) navigation() (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.target, r.navigated
}

func (r *Runner) reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.target = ""
	r.navigated = false
}

// Run prompts through s and returns the navigation target the wizard ended
// on. A failed submission shows the errors and prompts the last step again.
func (r *Runner) Run(ctx context.Context, s Session) (string, error) {
	if ctx == nil {
		return "", errors.New("tui: context is required")
	}
	if s.Controller == nil {
		return "", ErrNoController
	}
	r.reset()

	if s.Title != "" {
		if err := r.driver.Info(ctx, s.Title); err != nil {
			return "", err
		}
	}
	for _, note := range s.Notes {
		if err := r.info(ctx, note); err != nil {
			return "", err
		}
	}
	s.Controller.Mount()

	for {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		if target, ok := r.navigation(); ok {
			r.logger.Info().Str("flow", s.Flow).Str("target", target).Msg("wizard finished")
			return target, nil
		}
		snap := s.Controller.Snapshot()
		if snap.Submitted {
			return "", nil
		}
		if snap.ActiveIndex < 0 || snap.ActiveIndex >= len(snap.Steps) {
			return "", fmt.Errorf("tui: active step %d out of range", snap.ActiveIndex)
		}
		step := snap.Steps[snap.ActiveIndex]
		if snap.HasError {
			if err := r.banner(ctx, render.Page{Flow: s.Flow, Wizard: snap}); err != nil {
				return "", err
			}
		}
		if step.Title != "" {
			if err := r.info(ctx, step.Title); err != nil {
				return "", err
			}
		}

		inputs, err := r.promptInputs(ctx, snap, step)
		if err != nil {
			return "", err
		}
		act, err := r.promptAction(ctx, step)
		if err != nil {
			return "", err
		}

		err = act.apply(ctx, s.Controller, step.Index, inputs)
		var reqErr *submit.RequestError
		switch {
		case err == nil:
		case errors.Is(err, wizard.ErrInvalid):
			r.logger.Debug().Str("flow", s.Flow).Int("step", step.Index).Msg("step rejected")
		case errors.As(err, &reqErr):
			r.logger.Warn().Str("flow", s.Flow).Int("status", reqErr.Status).Msg("submission failed")
		default:
			return "", err
		}
	}
}

func (r *Runner) info(ctx context.Context, msg string) error {
	return r.driver.Info(ctx, r.theme.InfoPrefix+msg)
}

func (r *Runner) warn(ctx context.Context, msg string) error {
	return r.driver.Info(ctx, r.theme.ErrorPrefix+msg)
}

// banner prints the failure of the last submission: the generic message for
// a general error or a bare failure, then every server message.
func (r *Runner) banner(ctx context.Context, page render.Page) error {
	messages := render.MapErrorPayload(page.FieldNames(), page.Wizard.ValidationError).All()
	if page.Wizard.GeneralError != "" || len(messages) == 0 {
		if err := r.warn(ctx, submit.GenericMessage); err != nil {
			return err
		}
	}
	if len(messages) == 0 {
		return nil
	}
	if err := r.warn(ctx, "Please fix the following errors:"); err != nil {
		return err
	}
	for _, message := range messages {
		if err := r.warn(ctx, "  - "+message); err != nil {
			return err
		}
	}
	return nil
}

func (r *Runner) promptInputs(ctx context.Context, snap wizard.Snapshot, step wizard.StepSnapshot) (map[string]string, error) {
	inputs := make(map[string]string, len(step.Fields))
	for _, desc := range step.Fields {
		var (
			value string
			err   error
		)
		switch f := desc.(type) {
		case field.Binary:
			continue
		case field.Select:
			value, err = r.promptSelect(ctx, f, currentValue(desc, snap))
		default:
			value, err = r.promptText(ctx, desc, currentValue(desc, snap))
		}
		if err != nil {
			return nil, err
		}
		inputs[desc.Base().Name] = value
	}
	return inputs, nil
}

func (r *Runner) promptText(ctx context.Context, desc field.Descriptor, current string) (string, error) {
	props := desc.Base()
	validate := func(value string) error {
		if field.Check(desc, value) == field.Invalid {
			return errors.New(field.Feedback(desc))
		}
		return nil
	}
	for {
		value, err := r.driver.Input(ctx, InputConfig{
			Message:   label(props),
			Default:   current,
			Help:      help(desc),
			Validator: validate,
		})
		if err != nil {
			return "", err
		}
		value = strings.TrimSpace(value)
		if err := validate(value); err != nil {
			if err := r.warn(ctx, err.Error()); err != nil {
				return "", err
			}
			continue
		}
		return value, nil
	}
}

func (r *Runner) promptSelect(ctx context.Context, f field.Select, current string) (string, error) {
	options := make([]string, len(f.Choices))
	defaultIndex := 0
	for i, choice := range f.Choices {
		options[i] = choice.Text
		if choice.Value == current {
			defaultIndex = i
		}
	}
	for {
		idx, err := r.driver.Select(ctx, SelectConfig{
			Message:      label(f.Props),
			Options:      options,
			DefaultIndex: defaultIndex,
			PageSize:     10,
		})
		if err != nil {
			return "", err
		}
		if idx < 0 || idx >= len(f.Choices) {
			continue
		}
		value := f.Choices[idx].Value
		if field.Check(f, value) == field.Invalid {
			if err := r.warn(ctx, field.Feedback(f)); err != nil {
				return "", err
			}
			defaultIndex = idx
			continue
		}
		return value, nil
	}
}

type actionKind int

const (
	actionNext actionKind = iota
	actionChoose
	actionBack
)

type action struct {
	kind   actionKind
	label  string
	name   string
	choice int
}

func (a action) apply(ctx context.Context, ctrl *wizard.Controller, index int, inputs map[string]string) error {
	switch a.kind {
	case actionChoose:
		return ctrl.Choose(ctx, index, a.name, a.choice)
	case actionBack:
		return ctrl.Back(index)
	default:
		return ctrl.Advance(ctx, index, inputs)
	}
}

// promptAction asks how to leave the step. Binary choices are offered as
// actions; a step with a single possible action does not prompt.
func (r *Runner) promptAction(ctx context.Context, step wizard.StepSnapshot) (action, error) {
	var (
		actions []action
		message = "Continue"
	)
	if step.HasNextButton {
		actions = append(actions, action{kind: actionNext, label: NextLabel})
	}
	for _, desc := range step.Fields {
		b, ok := desc.(field.Binary)
		if !ok {
			continue
		}
		if !step.HasNextButton {
			message = label(b.Props)
		}
		for i := 0; i < 2; i++ {
			text := b.Choice(i).Text
			if step.HasNextButton {
				text = b.Label + ": " + text
			}
			actions = append(actions, action{kind: actionChoose, label: text, name: b.Name, choice: i})
		}
	}
	if step.HasBackButton {
		actions = append(actions, action{kind: actionBack, label: BackLabel})
	}
	if len(actions) == 1 {
		return actions[0], nil
	}

	options := make([]string, len(actions))
	for i, a := range actions {
		options[i] = a.label
	}
	for {
		idx, err := r.driver.Select(ctx, SelectConfig{Message: message, Options: options})
		if err != nil {
			return action{}, err
		}
		if idx >= 0 && idx < len(actions) {
			return actions[idx], nil
		}
	}
}

// currentValue prefers what the wizard collected, then the descriptor's
// initial value.
func currentValue(desc field.Descriptor, snap wizard.Snapshot) string {
	name := desc.Base().Name
	if _, ok := snap.Values[name]; ok {
		collected := snap.Values.String(name)
		if _, isDate := desc.(field.Date); isDate {
			return field.FormatDateOutput(collected)
		}
		return collected
	}
	return field.DisplayValue(desc)
}

func label(props field.Props) string {
	if props.Required {
		return props.Label + " *"
	}
	return props.Label
}

func help(desc field.Descriptor) string {
	placeholder := desc.Base().Placeholder
	switch desc.(type) {
	case field.Date:
		if placeholder == "" {
			placeholder = "MM/DD/YYYY"
		}
	case field.SSN:
		if placeholder == "" {
			placeholder = "9 digits, no dashes"
		}
	}
	if placeholder == "" {
		return ""
	}
	return "Format: " + placeholder
}
