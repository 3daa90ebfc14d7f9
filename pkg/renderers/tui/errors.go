package tui

import "errors"

var (
	// ErrAborted signals the user aborted input (e.g., Ctrl+C).
	ErrAborted = errors.New("tui: aborted")
	// ErrNoController is returned when a session carries no wizard.
	ErrNoController = errors.New("tui: wizard controller is required")
)
