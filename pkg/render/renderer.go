package render

import (
	"context"

	"github.com/goliatone/go-stepform/pkg/wizard"
)

// Renderer converts a wizard page into a byte representation (HTML, JSON).
type Renderer interface {
	Name() string
	ContentType() string
	Render(ctx context.Context, page Page, options RenderOptions) ([]byte, error)
}

// Page is one rendering of a flow: its heading plus the wizard state.
type Page struct {
	Flow   string
	Title  string
	Notes  []string
	Wizard wizard.Snapshot
}

// FieldNames lists the names of every field of the wizard in step order.
func (p Page) FieldNames() []string {
	var names []string
	for _, step := range p.Wizard.Steps {
		for _, desc := range step.Fields {
			names = append(names, desc.Base().Name)
		}
	}
	return names
}

// Errors maps the wizard's failure state into inline and banner messages.
// The general error leads the banner, followed by server messages that
// target no known field.
func (p Page) Errors() ErrorMapping {
	mapping := MapErrorPayload(p.FieldNames(), p.Wizard.ValidationError)
	if p.Wizard.GeneralError != "" {
		mapping.Form = MergeFormErrors([]string{p.Wizard.GeneralError}, mapping.Form...)
	}
	return mapping
}
