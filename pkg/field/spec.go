package field

import (
	"fmt"
	"strings"
)

// Spec is the declarative (YAML/JSON) shape of a descriptor. Binary click
// handlers cannot be expressed declaratively; callers attach them after
// conversion.
type Spec struct {
	Kind          Kind     `json:"kind" yaml:"kind"`
	Name          string   `json:"name" yaml:"name"`
	Label         string   `json:"label,omitempty" yaml:"label,omitempty"`
	Required      bool     `json:"required,omitempty" yaml:"required,omitempty"`
	Placeholder   string   `json:"placeholder,omitempty" yaml:"placeholder,omitempty"`
	Initial       string   `json:"initial,omitempty" yaml:"initial,omitempty"`
	Pattern       string   `json:"pattern,omitempty" yaml:"pattern,omitempty"`
	InputType     string   `json:"inputType,omitempty" yaml:"input_type,omitempty"`
	Choices       []Choice `json:"choices,omitempty" yaml:"choices,omitempty"`
	BinaryChoices []string `json:"binaryChoices,omitempty" yaml:"binary_choices,omitempty"`
}

// Descriptor converts the spec into its concrete descriptor.
func (s Spec) Descriptor() (Descriptor, error) {
	name := strings.TrimSpace(s.Name)
	if name == "" {
		return nil, fmt.Errorf("field: name is required")
	}
	props := Props{
		Name:        name,
		Label:       s.Label,
		Required:    s.Required,
		Placeholder: s.Placeholder,
		Initial:     s.Initial,
	}

	switch Kind(strings.ToUpper(string(s.Kind))) {
	case KindText, "":
		if s.Pattern != "" {
			if _, err := CompilePattern(s.Pattern); err != nil {
				return nil, err
			}
		}
		return Text{Props: props, Pattern: s.Pattern, InputType: s.InputType}, nil
	case KindDate:
		return Date{Props: props}, nil
	case KindSSN:
		return SSN{Props: props}, nil
	case KindSelect:
		if len(s.Choices) == 0 {
			return nil, fmt.Errorf("field: select %q has no choices", name)
		}
		return Select{Props: props, Choices: append([]Choice(nil), s.Choices...)}, nil
	case KindBinary:
		if len(s.BinaryChoices) > 2 {
			return nil, fmt.Errorf("field: binary %q accepts at most two choices", name)
		}
		choices := make([]BinaryChoice, 0, len(s.BinaryChoices))
		for _, text := range s.BinaryChoices {
			choices = append(choices, BinaryChoice{Text: text})
		}
		return Binary{Props: props, Choices: choices}, nil
	default:
		return nil, fmt.Errorf("field: unknown kind %q for %q", s.Kind, name)
	}
}

// SpecOf converts a descriptor back into its declarative form.
func SpecOf(d Descriptor) Spec {
	props := d.Base()
	spec := Spec{
		Kind:        d.Kind(),
		Name:        props.Name,
		Label:       props.Label,
		Required:    props.Required,
		Placeholder: props.Placeholder,
		Initial:     props.Initial,
	}
	switch f := d.(type) {
	case Text:
		spec.Pattern = f.Pattern
		spec.InputType = f.InputType
	case Select:
		spec.Choices = append([]Choice(nil), f.Choices...)
	case Binary:
		for _, choice := range f.Choices {
			spec.BinaryChoices = append(spec.BinaryChoices, choice.Text)
		}
	}
	return spec
}
