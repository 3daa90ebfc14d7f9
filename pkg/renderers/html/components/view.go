package components

// Field is the view model a component renders: a descriptor combined with
// its current value, validity and the form it posts through.
type Field struct {
	Kind        string
	Name        string
	ID          string
	Label       string
	Required    bool
	Placeholder string
	Value       string
	InputType   string
	Pattern     string
	// Invalid mirrors the tri-state validity: only a definite invalid result
	// highlights the control.
	Invalid  bool
	Messages []string
	// Autofocus is set on the first control of the focused step.
	Autofocus bool
	Disabled  bool
	// Help is guidance shown below the control.
	Help    string
	Choices []Choice
	Buttons []Button
	// ChoiceURL is where binary buttons post.
	ChoiceURL string
}

// Choice is a select option.
type Choice struct {
	Text     string
	Value    string
	Selected bool
	// Placeholder marks the disabled blank first option.
	Placeholder bool
}

// Button is one of the two binary buttons. Value is posted as the choice
// field ("name:index").
type Button struct {
	Text  string
	Value string
}
