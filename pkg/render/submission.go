package render

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Hidden form field names understood by the web handlers.
const (
	// CSRFFieldName carries the CSRF token of the session.
	CSRFFieldName = "csrfmiddlewaretoken"
	// StepFieldName carries the index of the step a form belongs to.
	StepFieldName = "step"
	// ChoiceFieldName carries the index of the clicked binary button.
	ChoiceFieldName = "choice"
	// NameFieldName carries the binary field a choice belongs to.
	NameFieldName = "name"
)

// HiddenField is a hidden input emitted alongside the visible controls.
type HiddenField struct {
	Name  string
	Value string
}

// Hidden returns a HiddenField for an arbitrary name/value pair.
func Hidden(name string, value any) HiddenField {
	return HiddenField{Name: strings.TrimSpace(name), Value: fmt.Sprint(value)}
}

// CSRFToken returns the hidden CSRF field for token.
func CSRFToken(token string) HiddenField {
	return Hidden(CSRFFieldName, token)
}

// StepField returns the hidden step index field.
func StepField(index int) HiddenField {
	return HiddenField{Name: StepFieldName, Value: strconv.Itoa(index)}
}

// MergeHiddenFields returns a copy of base with fields applied. Empty names
// are ignored; later fields win on collisions.
func MergeHiddenFields(base map[string]string, fields ...HiddenField) map[string]string {
	out := make(map[string]string, len(base)+len(fields))
	for key, value := range base {
		if trimmed := strings.TrimSpace(key); trimmed != "" {
			out[trimmed] = value
		}
	}
	for _, f := range fields {
		if f.Name = strings.TrimSpace(f.Name); f.Name != "" {
			out[f.Name] = f.Value
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// SortedHiddenFields orders fields by name for deterministic output.
func SortedHiddenFields(fields map[string]string) []HiddenField {
	merged := MergeHiddenFields(fields)
	if len(merged) == 0 {
		return nil
	}
	names := make([]string, 0, len(merged))
	for name := range merged {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make([]HiddenField, 0, len(names))
	for _, name := range names {
		out = append(out, HiddenField{Name: name, Value: merged[name]})
	}
	return out
}
