package render

import "github.com/goliatone/go-stepform/pkg/timeout"

// RenderOptions carry per-request data that is not part of the wizard
// state.
type RenderOptions struct {
	// Action is the URL prefix of the flow; forms post to Action+"/advance",
	// Action+"/back" and Action+"/choice".
	Action string
	// Inputs re-populates controls with what was typed on a step that failed
	// validation. Keys are field names.
	Inputs map[string]string
	// Hidden fields are emitted in every form, e.g. the CSRF token.
	Hidden map[string]string
	// Session, when set, renders the inactivity prompt for a guard in the
	// warning or logged out state.
	Session *timeout.Status
}
