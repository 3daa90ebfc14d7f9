// Package expense holds the editing state of a return's expenses: the single
// common expenses record and the list of custom expense lines.
package expense

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/goliatone/go-stepform/pkg/api"
)

// Service is the subset of api.ExpenseService the managers need.
type Service interface {
	CommonExpenses(ctx context.Context, year string) (api.CommonExpenses, error)
	SaveCommonExpenses(ctx context.Context, year, id string, values api.Form) error
	CustomExpenses(ctx context.Context, year string) ([]api.CustomExpense, error)
	SaveExpense(ctx context.Context, year string, expense api.CustomExpense) (api.CustomExpense, error)
	DeleteExpense(ctx context.Context, year string, id int64) error
}

// Option configures a manager.
type Option func(*options)

type options struct {
	logger zerolog.Logger
	frozen bool
}

// WithLogger attaches a logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithFrozen marks the return as read-only.
func WithFrozen(frozen bool) Option {
	return func(o *options) {
		o.frozen = frozen
	}
}

func buildOptions(opts []Option) options {
	o := options{logger: zerolog.Nop()}
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	return o
}
