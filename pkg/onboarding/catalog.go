package onboarding

import (
	"context"
	"fmt"
	"sort"

	"github.com/rs/zerolog"
)

// CatalogOption customises a Catalog.
type CatalogOption func(*Catalog)

// WithDefinitions registers declarative flows. A definition named like a
// built-in flow replaces it.
func WithDefinitions(defs ...Definition) CatalogOption {
	return func(c *Catalog) {
		for _, def := range defs {
			c.definitions[def.Name] = def
		}
	}
}

// WithCatalogLogger sets the logger used when flows are built.
func WithCatalogLogger(logger zerolog.Logger) CatalogOption {
	return func(c *Catalog) {
		c.logger = logger
	}
}

// Catalog resolves flow names to built flows.
type Catalog struct {
	backend     Backend
	requester   Requester
	definitions map[string]Definition
	logger      zerolog.Logger
}

// NewCatalog binds the built-in flows to backend and declarative flows to
// requester. Either may be nil when the corresponding flows are not used.
func NewCatalog(backend Backend, requester Requester, options ...CatalogOption) *Catalog {
	c := &Catalog{
		backend:     backend,
		requester:   requester,
		definitions: make(map[string]Definition),
		logger:      zerolog.Nop(),
	}
	for _, opt := range options {
		if opt != nil {
			opt(c)
		}
	}
	return c
}

// Names lists every known flow in lexical order.
func (c *Catalog) Names() []string {
	seen := make(map[string]struct{}, len(builtins)+len(c.definitions))
	if c.backend != nil {
		for name := range builtins {
			seen[name] = struct{}{}
		}
	}
	for name := range c.definitions {
		seen[name] = struct{}{}
	}
	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Has reports whether name resolves to a flow.
func (c *Catalog) Has(name string) bool {
	if _, ok := c.definitions[name]; ok {
		return true
	}
	_, ok := builtins[name]
	return ok && c.backend != nil
}

// Build assembles the flow called name for p.
func (c *Catalog) Build(ctx context.Context, name string, p Params) (Flow, error) {
	if def, ok := c.definitions[name]; ok {
		c.logger.Debug().Str("flow", name).Msg("building declarative flow")
		return def.Flow(ctx, c.requester, p)
	}
	build, ok := builtins[name]
	if !ok || c.backend == nil {
		return Flow{}, fmt.Errorf("%w: %q", ErrUnknownFlow, name)
	}
	c.logger.Debug().Str("flow", name).Msg("building flow")
	return build(ctx, c.backend, p)
}
