// Package jsonview renders wizard pages as JSON for script and API
// clients. The payload carries the active step, collected values and
// error state; it is what the HTML page would show, without markup.
package jsonview

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/goliatone/go-stepform/pkg/field"
	"github.com/goliatone/go-stepform/pkg/render"
	"github.com/goliatone/go-stepform/pkg/timeout"
)

// Payload is the document a page renders to.
type Payload struct {
	Flow         string            `json:"flow"`
	Title        string            `json:"title,omitempty"`
	Notes        []string          `json:"notes,omitempty"`
	ActiveIndex  int               `json:"active_index"`
	StepCount    int               `json:"step_count"`
	Step         Step              `json:"step"`
	Values       field.Values      `json:"values,omitempty"`
	Disabled     bool              `json:"disabled"`
	WasValidated bool              `json:"was_validated"`
	Submitted    bool              `json:"submitted"`
	Errors       *Errors           `json:"errors,omitempty"`
	Hidden       map[string]string `json:"hidden,omitempty"`
	Links        map[string]string `json:"links,omitempty"`
	Session      *timeout.Status   `json:"session,omitempty"`
}

// Step describes the active step.
type Step struct {
	ID            string       `json:"id"`
	Title         string       `json:"title,omitempty"`
	HasBackButton bool         `json:"has_back_button"`
	HasNextButton bool         `json:"has_next_button"`
	Fields        []field.Spec `json:"fields"`
	Invalid       []string     `json:"invalid,omitempty"`
}

// Errors is the failure state of the last submission.
type Errors struct {
	General string              `json:"general,omitempty"`
	Form    []string            `json:"form,omitempty"`
	Fields  map[string][]string `json:"fields,omitempty"`
}

type Renderer struct {
	indent string
}

// Option customises the renderer.
type Option func(*Renderer)

// WithIndent pretty-prints the payload.
func WithIndent(indent string) Option {
	return func(r *Renderer) {
		r.indent = indent
	}
}

// New constructs the renderer.
func New(options ...Option) *Renderer {
	r := &Renderer{}
	for _, opt := range options {
		if opt != nil {
			opt(r)
		}
	}
	return r
}

func (r *Renderer) Name() string {
	return "json"
}

func (r *Renderer) ContentType() string {
	return "application/json"
}

// Render encodes the page payload.
func (r *Renderer) Render(_ context.Context, page render.Page, options render.RenderOptions) ([]byte, error) {
	payload, err := Build(page, options)
	if err != nil {
		return nil, err
	}
	var out []byte
	if r.indent != "" {
		out, err = json.MarshalIndent(payload, "", r.indent)
	} else {
		out, err = json.Marshal(payload)
	}
	if err != nil {
		return nil, fmt.Errorf("json renderer: encode: %w", err)
	}
	return out, nil
}

// Build assembles the payload without encoding it.
func Build(page render.Page, options render.RenderOptions) (Payload, error) {
	snap := page.Wizard
	if snap.ActiveIndex < 0 || snap.ActiveIndex >= len(snap.Steps) {
		return Payload{}, fmt.Errorf("json renderer: active step %d out of range", snap.ActiveIndex)
	}
	active := snap.Steps[snap.ActiveIndex]

	step := Step{
		ID:            active.ID,
		Title:         active.Title,
		HasBackButton: active.HasBackButton,
		HasNextButton: active.HasNextButton,
	}
	for _, desc := range active.Fields {
		spec := field.SpecOf(desc)
		spec.Initial = field.DisplayValue(desc)
		step.Fields = append(step.Fields, spec)
		if active.Validity[spec.Name] == field.Invalid {
			step.Invalid = append(step.Invalid, spec.Name)
		}
	}

	payload := Payload{
		Flow:         page.Flow,
		Title:        page.Title,
		Notes:        page.Notes,
		ActiveIndex:  snap.ActiveIndex,
		StepCount:    len(snap.Steps),
		Step:         step,
		Values:       snap.Values,
		Disabled:     snap.Disabled,
		WasValidated: snap.WasValidated,
		Submitted:    snap.Submitted,
		Hidden:       render.MergeHiddenFields(options.Hidden),
		Session:      options.Session,
	}
	if options.Action != "" {
		payload.Links = map[string]string{
			"advance": options.Action + "/advance",
			"back":    options.Action + "/back",
			"choice":  options.Action + "/choice",
		}
	}
	if snap.HasError {
		mapping := page.Errors()
		payload.Errors = &Errors{
			General: snap.GeneralError,
			Form:    mapping.Form,
			Fields:  mapping.Fields,
		}
	}
	return payload, nil
}
