package parser

import (
	"encoding/json"
	"strconv"
)

// Vendor extensions read from request body properties.
const (
	StepExtension        = "x-step"
	OrderExtension       = "x-order"
	LabelExtension       = "x-label"
	PlaceholderExtension = "x-placeholder"
)

// Schema is the subset of a JSON schema that maps onto wizard fields.
type Schema struct {
	Type        string
	Format      string
	Pattern     string
	Title       string
	Description string
	Enum        []string
	Properties  []Property
}

// Property is a named member of an object schema, sorted by step, order and
// name.
type Property struct {
	Name        string
	Schema      Schema
	Required    bool
	Step        int
	Order       int
	Label       string
	Placeholder string
}

func intExtension(ext map[string]any, key string) int {
	switch v := ext[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	case json.Number:
		n, _ := v.Int64()
		return int(n)
	case json.RawMessage:
		n, _ := strconv.Atoi(string(v))
		return n
	case string:
		n, _ := strconv.Atoi(v)
		return n
	default:
		return 0
	}
}

func stringExtension(ext map[string]any, key string) string {
	switch v := ext[key].(type) {
	case string:
		return v
	case json.RawMessage:
		var s string
		if err := json.Unmarshal(v, &s); err == nil {
			return s
		}
	}
	return ""
}
