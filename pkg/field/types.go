package field

import "context"

// Kind identifies a descriptor variant.
type Kind string

const (
	KindText   Kind = "TEXT"
	KindDate   Kind = "DATE"
	KindSSN    Kind = "SSN"
	KindSelect Kind = "SELECT"
	KindBinary Kind = "BINARY"
)

// Props holds the properties shared by every descriptor.
type Props struct {
	Name        string `json:"name" yaml:"name"`
	Label       string `json:"label,omitempty" yaml:"label,omitempty"`
	Required    bool   `json:"required" yaml:"required,omitempty"`
	Placeholder string `json:"placeholder,omitempty" yaml:"placeholder,omitempty"`
	// Initial pre-populates the control. Date initials use the storage
	// format (YYYY-MM-DD).
	Initial string `json:"initial,omitempty" yaml:"initial,omitempty"`
}

// Descriptor is implemented by Text, Date, SSN, Select and Binary only.
type Descriptor interface {
	Kind() Kind
	Base() Props
	sealed()
}

// Text is a free-text input with an optional pattern.
type Text struct {
	Props
	Pattern string
	// InputType overrides the HTML input type (text by default).
	InputType string
}

// Date is a MM/DD/YYYY input stored as YYYY-MM-DD.
type Date struct {
	Props
}

// SSN is a nine digit social security number input without separators.
type SSN struct {
	Props
}

// Choice is a single select option.
type Choice struct {
	Text  string `json:"text" yaml:"text"`
	Value string `json:"value" yaml:"value"`
}

// Select is a dropdown whose first option is a disabled blank placeholder.
type Select struct {
	Props
	Choices []Choice
}

// ChoiceHandler replaces the default "store boolean and advance" behaviour of
// a binary button.
type ChoiceHandler func(ctx context.Context) error

// BinaryChoice customises one of the two buttons of a Binary field.
type BinaryChoice struct {
	Text    string
	OnClick ChoiceHandler
}

// Binary renders two buttons. Choices[0] stores true, Choices[1] stores false
// unless the choice overrides OnClick.
type Binary struct {
	Props
	Choices []BinaryChoice
}

func (Text) Kind() Kind   { return KindText }
func (Date) Kind() Kind   { return KindDate }
func (SSN) Kind() Kind    { return KindSSN }
func (Select) Kind() Kind { return KindSelect }
func (Binary) Kind() Kind { return KindBinary }

func (f Text) Base() Props   { return f.Props }
func (f Date) Base() Props   { return f.Props }
func (f SSN) Base() Props    { return f.Props }
func (f Select) Base() Props { return f.Props }
func (f Binary) Base() Props { return f.Props }

func (Text) sealed()   {}
func (Date) sealed()   {}
func (SSN) sealed()    {}
func (Select) sealed() {}
func (Binary) sealed() {}

var defaultBinaryText = [2]string{"Yes", "No"}

// Choice returns the button at index (0 or 1), filling in the default label.
func (f Binary) Choice(index int) BinaryChoice {
	var choice BinaryChoice
	if index >= 0 && index < len(f.Choices) {
		choice = f.Choices[index]
	}
	if choice.Text == "" && index >= 0 && index < len(defaultBinaryText) {
		choice.Text = defaultBinaryText[index]
	}
	return choice
}

// Value reports the boolean stored when the button at index is clicked.
func (Binary) Value(index int) bool {
	return index == 0
}
