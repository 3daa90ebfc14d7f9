package onboarding

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/goliatone/go-stepform/internal/openapi/parser"
	"github.com/goliatone/go-stepform/pkg/field"
)

// FromOpenAPI derives a definition from the request body of operationID.
// Properties are grouped into steps by their x-step extension; booleans get
// a step of their own since a binary field advances by itself. The
// operation path is used verbatim, so documents meant for wizards name their
// path parameters after the flow placeholders ({user_id}, {return_id}, ...).
func FromOpenAPI(ctx context.Context, raw []byte, operationID string) (Definition, error) {
	op, err := parser.New(parser.Options{}).Operation(ctx, raw, operationID)
	if err != nil {
		return Definition{}, fmt.Errorf("onboarding: %w", err)
	}

	method := op.Method
	switch method {
	case http.MethodPost, http.MethodPatch:
	default:
		return Definition{}, fmt.Errorf("onboarding: operation %q uses unsupported method %s", operationID, method)
	}

	def := Definition{
		Name:   operationID,
		Title:  op.Summary,
		Submit: SubmitDefinition{Method: method, Path: op.Path},
	}

	var current *StepDefinition
	currentStep := 0
	for _, prop := range op.Request.Properties {
		spec := specFromProperty(prop)
		if spec.Kind == field.KindBinary {
			def.Steps = append(def.Steps, StepDefinition{Fields: []field.Spec{spec}})
			current = nil
			continue
		}
		if current == nil || prop.Step != currentStep {
			def.Steps = append(def.Steps, StepDefinition{})
			current = &def.Steps[len(def.Steps)-1]
			currentStep = prop.Step
		}
		current.Fields = append(current.Fields, spec)
	}
	if len(def.Steps) == 0 {
		return Definition{}, fmt.Errorf("onboarding: operation %q has no form properties", operationID)
	}
	return def, nil
}

func specFromProperty(prop parser.Property) field.Spec {
	label := prop.Label
	if label == "" {
		label = prop.Schema.Title
	}
	spec := field.Spec{
		Kind:        field.KindText,
		Name:        prop.Name,
		Label:       label,
		Required:    prop.Required,
		Placeholder: prop.Placeholder,
	}

	schema := prop.Schema
	switch {
	case schema.Type == "boolean":
		spec.Kind = field.KindBinary
	case len(schema.Enum) > 0:
		spec.Kind = field.KindSelect
		spec.Choices = append(spec.Choices, Blank)
		for _, value := range schema.Enum {
			spec.Choices = append(spec.Choices, field.Choice{Text: DefaultLabel(strings.ToLower(value)), Value: value})
		}
	case schema.Format == "date":
		spec.Kind = field.KindDate
		if spec.Placeholder == "" {
			spec.Placeholder = "MM/DD/YYYY"
		}
	case prop.Name == "ssn" || schema.Pattern == field.SSNPattern:
		spec.Kind = field.KindSSN
	default:
		spec.Pattern = schema.Pattern
		switch {
		case schema.Format == "email":
			spec.InputType = "email"
		case schema.Type == "integer" || schema.Type == "number":
			spec.InputType = "number"
		}
	}
	return spec
}
