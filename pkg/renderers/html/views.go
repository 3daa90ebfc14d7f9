package html

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/goliatone/go-stepform/pkg/field"
	"github.com/goliatone/go-stepform/pkg/render"
	"github.com/goliatone/go-stepform/pkg/renderers/html/components"
	"github.com/goliatone/go-stepform/pkg/submit"
	"github.com/goliatone/go-stepform/pkg/timeout"
	"github.com/goliatone/go-stepform/pkg/wizard"
)

// Client-side feedback per field kind.
const (
	RequiredMessage = field.RequiredMessage
	DateMessage     = field.DateMessage
	SSNMessage      = field.SSNMessage
	SSNHelp         = "Please enter a 9 digit number without dashes. We comply with federal standards to protect access to your personal information."
)

type pageView struct {
	Flow         string
	Title        string
	Notes        []string
	Stylesheet   string
	Banner       *bannerView
	WasValidated bool
	Disabled     bool
	Hidden       []render.HiddenField
	CSRFField    string
	AdvanceURL   string
	BackURL      string
	NextText     string
	PrevText     string
	Session      *sessionView
}

type bannerView struct {
	General  string
	Messages []string
}

type sessionView struct {
	State   string
	Seconds int64
	Title   string
	Body    string
	Button  string
	AckURL  string
}

type stepView struct {
	ID            string
	Title         string
	HasBackButton bool
	HasNextButton bool
	// Fields holds the rendered markup of every field.
	Fields []string
}

func (r *Renderer) buildPage(page render.Page, options render.RenderOptions) (pageView, error) {
	snap := page.Wizard
	if snap.ActiveIndex < 0 || snap.ActiveIndex >= len(snap.Steps) {
		return pageView{}, fmt.Errorf("html renderer: active step %d out of range", snap.ActiveIndex)
	}
	action := strings.TrimSuffix(options.Action, "/")
	view := pageView{
		Flow:         page.Flow,
		Title:        page.Title,
		Notes:        page.Notes,
		Stylesheet:   r.cfg.stylesheet,
		WasValidated: snap.WasValidated,
		Disabled:     snap.Disabled,
		CSRFField:    render.CSRFFieldName,
		AdvanceURL:   action + "/advance",
		BackURL:      action + "/back",
		NextText:     r.cfg.nextText,
		PrevText:     r.cfg.prevText,
		Hidden: render.SortedHiddenFields(
			render.MergeHiddenFields(options.Hidden, render.StepField(snap.ActiveIndex)),
		),
	}

	if snap.HasError {
		banner := &bannerView{}
		for _, message := range render.MapErrorPayload(page.FieldNames(), snap.ValidationError).All() {
			banner.Messages = append(banner.Messages, r.policy.Sanitize(message))
		}
		if snap.GeneralError != "" || len(banner.Messages) == 0 {
			banner.General = submit.GenericMessage
		}
		view.Banner = banner
	}

	if status := options.Session; status != nil && status.State != timeout.Active {
		view.Session = &sessionView{
			State:   status.State.String(),
			Seconds: status.Seconds(),
			Title:   timeout.PromptTitle,
			Body:    timeout.PromptBody,
			Button:  timeout.PromptButton,
			AckURL:  r.cfg.ackURL,
		}
	}
	return view, nil
}

func (r *Renderer) buildStep(page render.Page, options render.RenderOptions) (stepView, error) {
	snap := page.Wizard
	step := snap.Steps[snap.ActiveIndex]
	serverErrors := render.MapErrorPayload(page.FieldNames(), snap.ValidationError).Fields
	choiceURL := strings.TrimSuffix(options.Action, "/") + "/choice"

	view := stepView{
		ID:            step.ID,
		Title:         step.Title,
		HasBackButton: step.HasBackButton,
		HasNextButton: step.HasNextButton,
	}
	for i, desc := range step.Fields {
		fieldView := r.fieldView(desc, step, snap, options, serverErrors[desc.Base().Name])
		fieldView.Autofocus = step.Focused && i == 0
		fieldView.ChoiceURL = choiceURL
		markup, err := r.renderField(fieldView)
		if err != nil {
			return stepView{}, err
		}
		view.Fields = append(view.Fields, markup)
	}
	return view, nil
}

func (r *Renderer) fieldView(desc field.Descriptor, step wizard.StepSnapshot, snap wizard.Snapshot, options render.RenderOptions, serverMessages []string) components.Field {
	props := desc.Base()
	view := components.Field{
		Kind:        string(desc.Kind()),
		Name:        props.Name,
		ID:          "input_" + props.Name,
		Label:       props.Label,
		Required:    props.Required,
		Placeholder: props.Placeholder,
		Value:       currentValue(desc, snap, options),
		InputType:   "text",
		Pattern:     field.Pattern(desc),
		Disabled:    snap.Disabled,
	}

	switch f := desc.(type) {
	case field.Text:
		if f.InputType != "" {
			view.InputType = f.InputType
		}
	case field.SSN:
		view.Help = SSNHelp
	case field.Select:
		for i, choice := range f.Choices {
			view.Choices = append(view.Choices, components.Choice{
				Text:        choice.Text,
				Value:       choice.Value,
				Selected:    choice.Value == view.Value,
				Placeholder: i == 0 && choice.Value == "",
			})
		}
	case field.Binary:
		for i := 0; i < 2; i++ {
			view.Buttons = append(view.Buttons, components.Button{
				Text:  f.Choice(i).Text,
				Value: props.Name + ":" + strconv.Itoa(i),
			})
		}
	}

	switch {
	case len(serverMessages) > 0:
		view.Invalid = true
		for _, message := range serverMessages {
			view.Messages = append(view.Messages, r.policy.Sanitize(message))
		}
	case step.Validity[props.Name] == field.Invalid:
		view.Invalid = true
		view.Messages = []string{field.Feedback(desc)}
	}
	return view
}

// currentValue prefers what was just typed, then what the wizard collected,
// then the descriptor's initial value.
func currentValue(desc field.Descriptor, snap wizard.Snapshot, options render.RenderOptions) string {
	name := desc.Base().Name
	if raw, ok := options.Inputs[name]; ok {
		return raw
	}
	if _, ok := snap.Values[name]; ok {
		collected := snap.Values.String(name)
		if _, isDate := desc.(field.Date); isDate {
			return field.FormatDateOutput(collected)
		}
		return collected
	}
	return field.DisplayValue(desc)
}

func componentFor(kind string) string {
	switch field.Kind(kind) {
	case field.KindDate:
		return components.NameDate
	case field.KindSSN:
		return components.NameSSN
	case field.KindSelect:
		return components.NameSelect
	case field.KindBinary:
		return components.NameBinary
	default:
		return components.NameText
	}
}
