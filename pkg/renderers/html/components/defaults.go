package components

import (
	"bytes"
	"fmt"
)

const templatePrefix = "templates/components/"

// NewDefaultRegistry returns a registry with a template-backed component
// for every field kind. Text, date and SSN fields share the input template.
func NewDefaultRegistry() *Registry {
	registry := New()
	input := TemplateRenderer(templatePrefix + "input.tmpl")
	registry.MustRegister(NameText, Descriptor{Renderer: input})
	registry.MustRegister(NameDate, Descriptor{Renderer: input})
	registry.MustRegister(NameSSN, Descriptor{Renderer: input})
	registry.MustRegister(NameSelect, Descriptor{Renderer: TemplateRenderer(templatePrefix + "select.tmpl")})
	registry.MustRegister(NameBinary, Descriptor{Renderer: TemplateRenderer(templatePrefix + "binary.tmpl")})
	return registry
}

// TemplateRenderer renders templateName with the field bound to "field".
func TemplateRenderer(templateName string) Renderer {
	return func(buf *bytes.Buffer, field Field, data ComponentData) error {
		if data.Template == nil {
			return fmt.Errorf("components: template renderer not configured for %q", templateName)
		}
		rendered, err := data.Template.RenderTemplate(templateName, map[string]any{"field": field})
		if err != nil {
			return fmt.Errorf("components: render template %q: %w", templateName, err)
		}
		buf.WriteString(rendered)
		return nil
	}
}
