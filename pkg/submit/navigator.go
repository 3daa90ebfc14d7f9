package submit

import "context"

// Navigator performs a page navigation. Browser-backed sessions redirect,
// terminal sessions print the target, tests record it.
type Navigator interface {
	Navigate(ctx context.Context, target string) error
}

// NavigatorFunc adapts a function into a Navigator.
type NavigatorFunc func(ctx context.Context, target string) error

// Navigate calls the underlying function.
func (fn NavigatorFunc) Navigate(ctx context.Context, target string) error {
	return fn(ctx, target)
}
