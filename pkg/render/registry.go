package render

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"
)

// Registry stores renderers by name and picks one for a request's Accept
// header. The first registered renderer is the default.
type Registry struct {
	mu        sync.RWMutex
	renderers map[string]Renderer
	fallback  string
}

// NewRegistry creates an empty registry instance.
func NewRegistry() *Registry {
	return &Registry{
		renderers: make(map[string]Renderer),
	}
}

// Register adds a renderer by its Name(). Duplicate names return an error.
func (r *Registry) Register(renderer Renderer) error {
	if renderer == nil {
		return fmt.Errorf("render: renderer is required")
	}
	name := renderer.Name()
	if name == "" {
		return fmt.Errorf("render: renderer name is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.renderers[name]; exists {
		return fmt.Errorf("render: renderer %q already registered", name)
	}

	r.renderers[name] = renderer
	if r.fallback == "" {
		r.fallback = name
	}
	return nil
}

// SetDefault makes the named renderer the Negotiate fallback.
func (r *Registry) SetDefault(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.renderers[name]; !ok {
		return fmt.Errorf("render: renderer %q not found", name)
	}
	r.fallback = name
	return nil
}

// Negotiate returns the renderer matching the most preferred media type in
// accept, honouring q-values and type/* wildcards. Types with q=0 are
// refused. Without a match it returns the default renderer.
func (r *Registry) Negotiate(accept string) (Renderer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.renderers))
	for name := range r.renderers {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, mediaType := range acceptedTypes(accept) {
		if mediaType == "*/*" {
			continue
		}
		for _, name := range names {
			if mediaMatches(mediaType, r.renderers[name].ContentType()) {
				return r.renderers[name], nil
			}
		}
	}
	if renderer, ok := r.renderers[r.fallback]; ok {
		return renderer, nil
	}
	return nil, fmt.Errorf("render: no renderer registered")
}

// acceptedTypes lists the media types of an Accept header by descending
// q-value; ties keep header order. Types with q=0 are dropped.
func acceptedTypes(accept string) []string {
	type entry struct {
		mediaType string
		q         float64
	}
	var entries []entry
	for _, part := range strings.Split(accept, ",") {
		params := strings.Split(part, ";")
		mediaType := strings.ToLower(strings.TrimSpace(params[0]))
		if mediaType == "" {
			continue
		}
		q := 1.0
		for _, param := range params[1:] {
			key, value, ok := strings.Cut(strings.TrimSpace(param), "=")
			if !ok || strings.TrimSpace(strings.ToLower(key)) != "q" {
				continue
			}
			if parsed, err := strconv.ParseFloat(strings.TrimSpace(value), 64); err == nil {
				q = parsed
			}
		}
		if q <= 0 {
			continue
		}
		entries = append(entries, entry{mediaType: mediaType, q: q})
	}
	sort.SliceStable(entries, func(i, j int) bool { return entries[i].q > entries[j].q })

	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.mediaType
	}
	return out
}

func mediaMatches(accepted, contentType string) bool {
	offered := strings.ToLower(strings.TrimSpace(strings.SplitN(contentType, ";", 2)[0]))
	if accepted == offered {
		return true
	}
	if prefix, ok := strings.CutSuffix(accepted, "/*"); ok {
		return strings.HasPrefix(offered, prefix+"/")
	}
	return false
}

// MustRegister panics on registration failure. Useful for init-time wiring.
func (r *Registry) MustRegister(renderer Renderer) {
	if err := r.Register(renderer); err != nil {
		panic(err)
	}
}

// Get retrieves a renderer by name.
func (r *Registry) Get(name string) (Renderer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	renderer, ok := r.renderers[name]
	if !ok {
		return nil, fmt.Errorf("render: renderer %q not found", name)
	}
	return renderer, nil
}

// MustGet panics if the renderer is missing.
func (r *Registry) MustGet(name string) Renderer {
	renderer, err := r.Get(name)
	if err != nil {
		panic(err)
	}
	return renderer
}

// List returns a sorted list of renderer names.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.renderers))
	for name := range r.renderers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Has reports whether a renderer is registered.
func (r *Registry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.renderers[name]
	return ok
}
