package submit

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/rs/zerolog"

	"github.com/goliatone/go-stepform/pkg/field"
)

// Action performs the backend call for a finished wizard.
type Action func(ctx context.Context, values field.Values) error

// NextPage computes the navigation target from the submitted values.
type NextPage func(values field.Values) string

// StaticPage returns a NextPage that always resolves to target.
func StaticPage(target string) NextPage {
	return func(field.Values) string { return target }
}

// Option configures an Adapter.
type Option func(*Adapter)

// WithLogger attaches a logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(a *Adapter) {
		a.logger = logger
	}
}

// Adapter runs the injected action and navigates on success. It is safe for
// concurrent use; overlapping calls are rejected with ErrInFlight.
type Adapter struct {
	action    Action
	nextPage  NextPage
	navigator Navigator
	logger    zerolog.Logger

	inFlight atomic.Bool
}

// NewAdapter validates its collaborators and builds an Adapter.
func NewAdapter(action Action, nextPage NextPage, navigator Navigator, options ...Option) (*Adapter, error) {
	if action == nil {
		return nil, errors.New("submit: action is required")
	}
	if nextPage == nil {
		return nil, errors.New("submit: next page resolver is required")
	}
	if navigator == nil {
		return nil, errors.New("submit: navigator is required")
	}
	adapter := &Adapter{
		action:    action,
		nextPage:  nextPage,
		navigator: navigator,
		logger:    zerolog.Nop(),
	}
	for _, opt := range options {
		if opt != nil {
			opt(adapter)
		}
	}
	return adapter, nil
}

// InFlight reports whether a submission is running.
func (a *Adapter) InFlight() bool {
	return a.inFlight.Load()
}

// Submit runs the action with values. Failures are returned as
// *RequestError; on success the adapter navigates to the computed target.
func (a *Adapter) Submit(ctx context.Context, values field.Values) error {
	if !a.inFlight.CompareAndSwap(false, true) {
		return ErrInFlight
	}
	defer a.inFlight.Store(false)

	if err := a.action(ctx, values); err != nil {
		reqErr := AsRequestError(err)
		a.logger.Warn().
			Int("status", reqErr.Status).
			Bool("general", reqErr.HasGeneral()).
			Bool("validation", reqErr.HasValidation()).
			Msg("submission failed")
		return reqErr
	}

	target := a.nextPage(values)
	a.logger.Info().Str("target", target).Msg("submission succeeded")
	if err := a.navigator.Navigate(ctx, target); err != nil {
		return fmt.Errorf("submit: navigate to %q: %w", target, err)
	}
	return nil
}
