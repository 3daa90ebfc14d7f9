package render

import (
	"sort"
	"strconv"
	"strings"
)

// ErrorMapping splits a server error payload into inline messages keyed by
// field name and form-level messages for the banner.
type ErrorMapping struct {
	Fields map[string][]string
	Form   []string
}

// All returns every message, form-level first, then field messages ordered
// by field name. The banner of a failed submission lists them.
func (m ErrorMapping) All() []string {
	names := make([]string, 0, len(m.Fields))
	for name := range m.Fields {
		names = append(names, name)
	}
	sort.Strings(names)

	out := append([]string(nil), m.Form...)
	for _, name := range names {
		out = append(out, m.Fields[name]...)
	}
	return normalizeMessages(out)
}

// MergeFormErrors concatenates form-level messages, trimming whitespace and
// dropping blanks and duplicates while keeping order.
func MergeFormErrors(existing []string, extras ...string) []string {
	combined := make([]string, 0, len(existing)+len(extras))
	combined = append(combined, existing...)
	combined = append(combined, extras...)
	return normalizeMessages(combined)
}

// MapErrorPayload assigns server messages to the known field names. Keys
// may be dotted ("address.zip"), bracketed ("dependents[0].ssn") or JSON
// pointers ("/body/ssn"); request wrappers and list indices are ignored and
// the longest known prefix wins. Keys that match no field, and the
// non_field_errors/__all__ keys, become form-level messages.
func MapErrorPayload(fields []string, payload map[string][]string) ErrorMapping {
	var mapping ErrorMapping
	if len(payload) == 0 {
		return mapping
	}

	known := make(map[string]struct{}, len(fields))
	for _, name := range fields {
		if name = strings.TrimSpace(name); name != "" {
			known[name] = struct{}{}
		}
	}

	keys := make([]string, 0, len(payload))
	for key := range payload {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		messages := normalizeMessages(payload[key])
		if len(messages) == 0 {
			continue
		}
		target := resolveErrorKey(key, known)
		if target == "" {
			mapping.Form = append(mapping.Form, messages...)
			continue
		}
		if mapping.Fields == nil {
			mapping.Fields = make(map[string][]string)
		}
		mapping.Fields[target] = append(mapping.Fields[target], messages...)
	}
	mapping.Form = normalizeMessages(mapping.Form)
	return mapping
}

var wrapperSegments = map[string]struct{}{
	"body": {}, "request": {}, "payload": {}, "data": {}, "attributes": {},
}

func resolveErrorKey(key string, known map[string]struct{}) string {
	if isFormLevelKey(key) {
		return ""
	}
	segments := splitErrorKey(key)
	for len(segments) > 0 {
		if _, wrapper := wrapperSegments[strings.ToLower(segments[0])]; !wrapper {
			break
		}
		segments = segments[1:]
	}

	var named []string
	for _, segment := range segments {
		if _, err := strconv.Atoi(segment); err == nil {
			continue
		}
		named = append(named, segment)
	}

	for end := len(named); end > 0; end-- {
		if candidate := strings.Join(named[:end], "."); candidate != "" {
			if _, ok := known[candidate]; ok {
				return candidate
			}
		}
	}
	// Nested keys fall back to their last segment, which is how flat wizard
	// fields are usually addressed by nested serializers.
	if len(named) > 1 {
		if _, ok := known[named[len(named)-1]]; ok {
			return named[len(named)-1]
		}
	}
	return ""
}

func splitErrorKey(key string) []string {
	clean := strings.NewReplacer("[", ".", "]", "").Replace(strings.TrimSpace(key))
	parts := strings.FieldsFunc(clean, func(r rune) bool {
		return r == '.' || r == '/' || r == '#' || r == '$'
	})
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		part = strings.ReplaceAll(part, "~1", "/")
		part = strings.ReplaceAll(part, "~0", "~")
		out = append(out, part)
	}
	return out
}

func isFormLevelKey(key string) bool {
	switch strings.ToLower(strings.TrimSpace(key)) {
	case "", ".", "/", "#", "$", "form", "__all__", "non_field_errors", "non-field-errors", "error", "detail":
		return true
	default:
		return false
	}
}

func normalizeMessages(messages []string) []string {
	if len(messages) == 0 {
		return nil
	}
	out := make([]string, 0, len(messages))
	seen := make(map[string]struct{}, len(messages))
	for _, message := range messages {
		trimmed := strings.TrimSpace(message)
		if trimmed == "" {
			continue
		}
		if _, dup := seen[trimmed]; dup {
			continue
		}
		seen[trimmed] = struct{}{}
		out = append(out, trimmed)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
