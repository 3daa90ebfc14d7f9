// Package html renders wizard pages as server-side HTML forms. Only the
// active step is drawn; navigation happens through form posts.
package html

import (
	"bytes"
	"context"
	"fmt"
	"io/fs"
	"os"

	"github.com/microcosm-cc/bluemonday"

	"github.com/goliatone/go-stepform/pkg/render"
	rendertemplate "github.com/goliatone/go-stepform/pkg/render/template"
	"github.com/goliatone/go-stepform/pkg/render/template/pongo"
	"github.com/goliatone/go-stepform/pkg/renderers/html/components"
)

// Default button and prompt settings.
const (
	DefaultNextText = "Next"
	DefaultPrevText = "← Back"
	DefaultAckURL   = "/session/ack"
)

type Option func(*config)

type config struct {
	templateFS       fs.FS
	templateRenderer rendertemplate.TemplateRenderer
	registry         *components.Registry
	policy           *bluemonday.Policy
	stylesheet       string
	ackURL           string
	nextText         string
	prevText         string
}

// WithTemplatesFS supplies an alternate template bundle.
func WithTemplatesFS(files fs.FS) Option {
	return func(cfg *config) {
		cfg.templateFS = files
	}
}

// WithTemplatesDir loads templates from a directory on disk.
func WithTemplatesDir(path string) Option {
	return func(cfg *config) {
		if path == "" {
			return
		}
		cfg.templateFS = os.DirFS(path)
	}
}

// WithTemplateRenderer injects a custom template renderer implementation.
func WithTemplateRenderer(renderer rendertemplate.TemplateRenderer) Option {
	return func(cfg *config) {
		if renderer != nil {
			cfg.templateRenderer = renderer
		}
	}
}

// WithComponentRegistry replaces the field component registry.
func WithComponentRegistry(registry *components.Registry) Option {
	return func(cfg *config) {
		if registry != nil {
			cfg.registry = registry
		}
	}
}

// WithPolicy sets the bluemonday policy applied to server messages. The
// default is bluemonday.UGCPolicy.
func WithPolicy(policy *bluemonday.Policy) Option {
	return func(cfg *config) {
		if policy != nil {
			cfg.policy = policy
		}
	}
}

// WithStylesheet links href from the page head.
func WithStylesheet(href string) Option {
	return func(cfg *config) {
		cfg.stylesheet = href
	}
}

// WithAckURL sets where the inactivity prompt posts.
func WithAckURL(url string) Option {
	return func(cfg *config) {
		if url != "" {
			cfg.ackURL = url
		}
	}
}

// WithButtonText overrides the next and back button labels.
func WithButtonText(next, prev string) Option {
	return func(cfg *config) {
		if next != "" {
			cfg.nextText = next
		}
		if prev != "" {
			cfg.prevText = prev
		}
	}
}

type Renderer struct {
	templates rendertemplate.TemplateRenderer
	registry  *components.Registry
	policy    *bluemonday.Policy
	cfg       config
}

// New constructs the renderer applying any provided options.
func New(options ...Option) (*Renderer, error) {
	cfg := config{
		templateFS: TemplatesFS(),
		ackURL:     DefaultAckURL,
		nextText:   DefaultNextText,
		prevText:   DefaultPrevText,
	}
	for _, opt := range options {
		if opt != nil {
			opt(&cfg)
		}
	}

	templates := cfg.templateRenderer
	if templates == nil {
		engine, err := pongo.New(
			pongo.WithFS(cfg.templateFS),
			pongo.WithExtension(".tmpl"),
		)
		if err != nil {
			return nil, fmt.Errorf("html renderer: configure template renderer: %w", err)
		}
		templates = engine
	}
	registry := cfg.registry
	if registry == nil {
		registry = components.NewDefaultRegistry()
	}
	policy := cfg.policy
	if policy == nil {
		policy = bluemonday.UGCPolicy()
	}

	return &Renderer{templates: templates, registry: registry, policy: policy, cfg: cfg}, nil
}

func (r *Renderer) Name() string {
	return "html"
}

func (r *Renderer) ContentType() string {
	return "text/html; charset=utf-8"
}

// Render draws the active step of page.
func (r *Renderer) Render(_ context.Context, page render.Page, options render.RenderOptions) ([]byte, error) {
	if r.templates == nil {
		return nil, fmt.Errorf("html renderer: template renderer is nil")
	}
	view, err := r.buildPage(page, options)
	if err != nil {
		return nil, err
	}
	step, err := r.buildStep(page, options)
	if err != nil {
		return nil, err
	}

	result, err := r.templates.RenderTemplate("templates/page.tmpl", map[string]any{
		"page": view,
		"step": step,
	})
	if err != nil {
		return nil, fmt.Errorf("html renderer: render template: %w", err)
	}
	return []byte(result), nil
}

func (r *Renderer) renderField(fieldView components.Field) (string, error) {
	name := componentFor(fieldView.Kind)
	descriptor, ok := r.registry.Descriptor(name)
	if !ok {
		return "", fmt.Errorf("html renderer: component %q not registered for field %q", name, fieldView.Name)
	}

	var control bytes.Buffer
	if err := descriptor.Renderer(&control, fieldView, components.ComponentData{Template: r.templates}); err != nil {
		return "", fmt.Errorf("html renderer: component %q for field %q: %w", name, fieldView.Name, err)
	}

	markup, err := r.templates.RenderTemplate("templates/field.tmpl", map[string]any{
		"field":   fieldView,
		"control": control.String(),
	})
	if err != nil {
		return "", fmt.Errorf("html renderer: field %q: %w", fieldView.Name, err)
	}
	return markup, nil
}
