package wizard

import (
	"fmt"
	"sort"

	"github.com/goliatone/go-stepform/pkg/field"
)

// StepDescriptor is the ordered field list of one wizard page.
type StepDescriptor struct {
	Title  string             `json:"title,omitempty"`
	Fields []field.Descriptor `json:"-"`
}

// HasNextButton reports whether the step renders an explicit next button. A
// step made of a single binary field advances through the choice itself.
func (d StepDescriptor) HasNextButton() bool {
	if len(d.Fields) != 1 {
		return true
	}
	_, binary := d.Fields[0].(field.Binary)
	return !binary
}

func (d StepDescriptor) validate(index int) error {
	if len(d.Fields) == 0 {
		return fmt.Errorf("%w: step %d", ErrEmptyStep, index)
	}
	seen := make(map[string]struct{}, len(d.Fields))
	for _, desc := range d.Fields {
		if desc == nil {
			return fmt.Errorf("wizard: step %d has a nil field", index)
		}
		name := desc.Base().Name
		if name == "" {
			return fmt.Errorf("wizard: step %d has a field without a name", index)
		}
		if _, dup := seen[name]; dup {
			return fmt.Errorf("wizard: step %d declares %q twice", index, name)
		}
		seen[name] = struct{}{}
		if pattern := field.Pattern(desc); pattern != "" {
			if _, err := field.CompilePattern(pattern); err != nil {
				return fmt.Errorf("wizard: step %d: %w", index, err)
			}
		}
	}
	return nil
}

// Step is one page of a wizard. It owns the focus flag and the set of field
// names that failed the last advance.
type Step struct {
	index   int
	title   string
	fields  []field.Descriptor
	invalid map[string]struct{}
	focused bool
}

func newStep(index int, desc StepDescriptor) *Step {
	return &Step{
		index:   index,
		title:   desc.Title,
		fields:  append([]field.Descriptor(nil), desc.Fields...),
		invalid: make(map[string]struct{}),
	}
}

// Index returns the position of the step in its wizard.
func (s *Step) Index() int { return s.index }

// ID returns the DOM-style identifier of the step.
func (s *Step) ID() string { return fmt.Sprintf("step-%d", s.index) }

// Fields returns a copy of the step's descriptors.
func (s *Step) Fields() []field.Descriptor {
	return append([]field.Descriptor(nil), s.fields...)
}

// Focused reports whether the step is the active one.
func (s *Step) Focused() bool { return s.focused }

// HasNextButton mirrors StepDescriptor.HasNextButton.
func (s *Step) HasNextButton() bool {
	return StepDescriptor{Fields: s.fields}.HasNextButton()
}

// Validity reports the highlight state of a field. Only failures are
// surfaced; fields that passed stay Unknown so they are not styled as valid.
func (s *Step) Validity(name string) field.Validity {
	if _, ok := s.invalid[name]; ok {
		return field.Invalid
	}
	return field.Unknown
}

// InvalidFields lists the names that failed the last advance, sorted.
func (s *Step) InvalidFields() []string {
	names := make([]string, 0, len(s.invalid))
	for name := range s.invalid {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Advance validates inputs against every non-binary field. When a field is
// invalid the names are recorded and ok is false; otherwise the invalid set is
// cleared and the converted values are returned.
func (s *Step) Advance(inputs map[string]string) (values field.Values, ok bool) {
	invalid := make(map[string]struct{})
	values = make(field.Values, len(s.fields))
	for _, desc := range s.fields {
		if _, binary := desc.(field.Binary); binary {
			continue
		}
		name := desc.Base().Name
		raw := inputs[name]
		if field.Check(desc, raw) == field.Invalid {
			invalid[name] = struct{}{}
			continue
		}
		values[name] = field.StoredValue(desc, raw)
	}

	if len(invalid) > 0 {
		s.invalid = invalid
		return nil, false
	}
	s.invalid = make(map[string]struct{})
	return values, true
}

func (s *Step) binary(name string) (field.Binary, bool) {
	for _, desc := range s.fields {
		if b, ok := desc.(field.Binary); ok && b.Name == name {
			return b, true
		}
	}
	return field.Binary{}, false
}
