package onboarding

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/goliatone/go-stepform/pkg/field"
	"github.com/goliatone/go-stepform/pkg/submit"
	"github.com/goliatone/go-stepform/pkg/wizard"
)

// Built-in flow names.
const (
	FlowInfo       = "info"
	FlowAddress    = "address"
	FlowSpouse     = "spouse"
	FlowStatus     = "status"
	FlowDependents = "dependents"
	FlowMisc       = "misc"
)

// ErrUnknownFlow is returned for a flow name the catalog does not know.
var ErrUnknownFlow = errors.New("onboarding: unknown flow")

// Backend is what the built-in flows read from and submit to.
// *api.OnboardingService satisfies it.
type Backend interface {
	User(ctx context.Context, id string) (field.Values, error)
	UpdateUser(ctx context.Context, id string, values field.Values) error
	Address(ctx context.Context, id string) (field.Values, error)
	SaveAddress(ctx context.Context, id string, values field.Values) error
	Spouse(ctx context.Context, id string) (field.Values, error)
	UpdateSpouse(ctx context.Context, id string, values field.Values) error
	CreateReturn(ctx context.Context, values field.Values) error
	Return(ctx context.Context, id string) (field.Values, error)
	UpdateReturn(ctx context.Context, id string, values field.Values) error
	Dependents(ctx context.Context, year string) ([]field.Values, error)
	AddDependent(ctx context.Context, year string, values field.Values) error
}

// Params identifies the records a flow works on and where it goes next.
type Params struct {
	UserID     string
	AddressID  string
	SpouseID   string
	ReturnID   string
	ReturnYear string

	// NextPage is the navigation target after a successful submission.
	NextPage string
	// NextPageAlt is the filing status target when not filing jointly.
	NextPageAlt string
	// Self is the flow's own page; the dependents flow returns to it after
	// each dependent.
	Self string

	// Navigator serves custom binary handlers that leave the wizard.
	Navigator submit.Navigator
}

// Flow is a ready-to-run wizard: steps, backend action and next page.
type Flow struct {
	Name  string
	Title string
	// Notes are lines shown above the wizard, e.g. dependents already added.
	Notes    []string
	Steps    []wizard.StepDescriptor
	Action   submit.Action
	NextPage submit.NextPage
}

// Controller wires the flow's action into a submission adapter that
// navigates through navigator and returns a fresh wizard over its steps.
func (f Flow) Controller(navigator submit.Navigator, logger zerolog.Logger) (*wizard.Controller, error) {
	adapter, err := submit.NewAdapter(f.Action, f.NextPage, navigator, submit.WithLogger(logger))
	if err != nil {
		return nil, fmt.Errorf("onboarding: flow %q: %w", f.Name, err)
	}
	ctrl, err := wizard.New(f.Steps, adapter, wizard.WithName(f.Name), wizard.WithLogger(logger))
	if err != nil {
		return nil, fmt.Errorf("onboarding: flow %q: %w", f.Name, err)
	}
	return ctrl, nil
}

type builder func(ctx context.Context, backend Backend, p Params) (Flow, error)

var builtins = map[string]builder{
	FlowInfo:       buildInfo,
	FlowAddress:    buildAddress,
	FlowSpouse:     buildSpouse,
	FlowStatus:     buildStatus,
	FlowDependents: buildDependents,
	FlowMisc:       buildMisc,
}

func text(name, label string, required bool, placeholder, initial string) field.Text {
	return field.Text{Props: field.Props{
		Name: name, Label: label, Required: required, Placeholder: placeholder, Initial: initial,
	}}
}

func personSteps(prefix string, record field.Values) []wizard.StepDescriptor {
	return []wizard.StepDescriptor{
		{Fields: []field.Descriptor{
			text("first_name", prefix+"First Name", true, "", record.String("first_name")),
			text("last_name", prefix+"Last Name", true, "", record.String("last_name")),
			text("middle_name", prefix+"Middle Name", false, "(optional)", record.String("middle_name")),
		}},
		{Fields: []field.Descriptor{
			field.Date{Props: field.Props{
				Name: "dob", Label: prefix + "Date of birth", Required: true,
				Placeholder: "MM/DD/YYYY", Initial: record.String("dob"),
			}},
			field.SSN{Props: field.Props{
				Name: "ssn", Label: prefix + "Social security number", Required: true,
				Placeholder: "123456789", Initial: record.String("ssn"),
			}},
		}},
	}
}

func buildInfo(ctx context.Context, backend Backend, p Params) (Flow, error) {
	user, err := backend.User(ctx, p.UserID)
	if err != nil {
		return Flow{}, fmt.Errorf("onboarding: fetch user: %w", err)
	}
	return Flow{
		Name:  FlowInfo,
		Title: "Tell us about yourself",
		Steps: personSteps("", user),
		Action: func(ctx context.Context, values field.Values) error {
			return backend.UpdateUser(ctx, p.UserID, values)
		},
		NextPage: submit.StaticPage(p.NextPage),
	}, nil
}

func buildAddress(ctx context.Context, backend Backend, p Params) (Flow, error) {
	address, err := backend.Address(ctx, p.AddressID)
	if err != nil {
		return Flow{}, fmt.Errorf("onboarding: fetch address: %w", err)
	}
	return Flow{
		Name:  FlowAddress,
		Title: "Where do you live?",
		Steps: []wizard.StepDescriptor{
			{Fields: []field.Descriptor{
				text("address1", "Street Address", true, "Street and number", address.String("address1")),
				text("address2", "Street Address Line 2", false, "Apartment, suite, unit, building, floor, etc", address.String("address2")),
			}},
			{Fields: []field.Descriptor{
				text("city", "City", true, "", address.String("city")),
				field.Select{
					Props:   field.Props{Name: "state", Label: "State", Required: true, Initial: address.String("state")},
					Choices: withBlank(States),
				},
				text("zip", "Zip Code", true, "", address.String("zip")),
			}},
		},
		Action: func(ctx context.Context, values field.Values) error {
			return backend.SaveAddress(ctx, p.AddressID, values)
		},
		NextPage: submit.StaticPage(p.NextPage),
	}, nil
}

func buildSpouse(ctx context.Context, backend Backend, p Params) (Flow, error) {
	spouse, err := backend.Spouse(ctx, p.SpouseID)
	if err != nil {
		return Flow{}, fmt.Errorf("onboarding: fetch spouse: %w", err)
	}
	return Flow{
		Name:  FlowSpouse,
		Title: "Tell us about your spouse",
		Steps: personSteps("Spouse's ", spouse),
		Action: func(ctx context.Context, values field.Values) error {
			return backend.UpdateSpouse(ctx, p.SpouseID, values)
		},
		NextPage: submit.StaticPage(p.NextPage),
	}, nil
}

func buildStatus(ctx context.Context, backend Backend, p Params) (Flow, error) {
	var record field.Values
	action := func(ctx context.Context, values field.Values) error {
		return backend.CreateReturn(ctx, values)
	}
	if p.ReturnID != "" {
		var err error
		record, err = backend.Return(ctx, p.ReturnID)
		if err != nil {
			return Flow{}, fmt.Errorf("onboarding: fetch return: %w", err)
		}
		action = func(ctx context.Context, values field.Values) error {
			return backend.UpdateReturn(ctx, p.ReturnID, values)
		}
	}
	next, alt := p.NextPage, p.NextPageAlt
	return Flow{
		Name:  FlowStatus,
		Title: "What is your filing status?",
		Steps: []wizard.StepDescriptor{
			{Fields: []field.Descriptor{
				field.Select{
					Props:   field.Props{Name: "filing_status", Label: "Filing Status", Required: true, Initial: record.String("filing_status")},
					Choices: withBlank(FilingStatuses),
				},
			}},
		},
		Action: action,
		NextPage: func(values field.Values) string {
			if values.String("filing_status") == MarriedJoint {
				return next
			}
			return alt
		},
	}, nil
}

func buildDependents(ctx context.Context, backend Backend, p Params) (Flow, error) {
	if p.Navigator == nil {
		return Flow{}, errors.New("onboarding: dependents flow needs a navigator")
	}
	dependents, err := backend.Dependents(ctx, p.ReturnYear)
	if err != nil {
		return Flow{}, fmt.Errorf("onboarding: fetch dependents: %w", err)
	}
	var notes []string
	if len(dependents) > 0 {
		notes = append(notes, "You have added the following dependents:")
		for _, dependent := range dependents {
			name := strings.TrimSpace(dependent.String("first_name") + " " + dependent.String("last_name"))
			notes = append(notes, name)
		}
	}

	navigator, nextPage := p.Navigator, p.NextPage
	steps := []wizard.StepDescriptor{
		{Fields: []field.Descriptor{
			field.Binary{
				Props: field.Props{Name: "has_dependents", Label: "Would you like to add dependents?"},
				Choices: []field.BinaryChoice{
					{Text: "Add a dependent"},
					{Text: "Done adding dependents", OnClick: func(ctx context.Context) error {
						return navigator.Navigate(ctx, nextPage)
					}},
				},
			},
		}},
	}
	person := personSteps("Dependent's ", nil)
	steps = append(steps, person...)
	steps = append(steps, wizard.StepDescriptor{Fields: []field.Descriptor{
		field.Select{
			Props:   field.Props{Name: "relationship", Label: "Relationship", Required: true},
			Choices: withBlank(Relationships),
		},
	}})

	return Flow{
		Name:  FlowDependents,
		Title: "Do you have dependents?",
		Notes: notes,
		Steps: steps,
		Action: func(ctx context.Context, values field.Values) error {
			return backend.AddDependent(ctx, p.ReturnYear, values)
		},
		NextPage: submit.StaticPage(p.Self),
	}, nil
}

func buildMisc(ctx context.Context, backend Backend, p Params) (Flow, error) {
	record, err := backend.Return(ctx, p.ReturnID)
	if err != nil {
		return Flow{}, fmt.Errorf("onboarding: fetch return: %w", err)
	}
	question := func(name, label string) wizard.StepDescriptor {
		return wizard.StepDescriptor{Fields: []field.Descriptor{
			field.Binary{Props: field.Props{Name: name, Label: label, Required: true, Initial: record.String(name)}},
		}}
	}
	return Flow{
		Name:  FlowMisc,
		Title: "A few more questions",
		Steps: []wizard.StepDescriptor{
			{Fields: []field.Descriptor{text("county", "County", false, "", record.String("county"))}},
			question("has_health", "Do you have health insurance?"),
			question("is_dependent", "Are you a dependant of another?"),
			question("is_first_time", "Is this your first time filing a tax return?"),
		},
		Action: func(ctx context.Context, values field.Values) error {
			return backend.UpdateReturn(ctx, p.ReturnID, values)
		},
		NextPage: submit.StaticPage(p.NextPage),
	}, nil
}
