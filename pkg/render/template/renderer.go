package template

import (
	"io"
)

// TemplateRenderer is the engine seam renderers depend on. Templates are
// addressed by name without extension; data is any value the engine can
// turn into a template context.
type TemplateRenderer interface {
	RenderTemplate(name string, data any, out ...io.Writer) (string, error)
	RenderString(templateContent string, data any, out ...io.Writer) (string, error)
	RegisterFilter(name string, fn func(input any, param any) (any, error)) error
	GlobalContext(data any) error
}
