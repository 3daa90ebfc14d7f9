package onboarding

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"net/url"
	"path"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-stepform/pkg/api"
	"github.com/goliatone/go-stepform/pkg/field"
	"github.com/goliatone/go-stepform/pkg/submit"
	"github.com/goliatone/go-stepform/pkg/wizard"
)

// Requester is the API surface declarative flows use. *api.Client
// satisfies it.
type Requester interface {
	Get(ctx context.Context, path string, out any) error
	Post(ctx context.Context, path string, form api.Form, out any) error
	Patch(ctx context.Context, path string, form api.Form, out any) error
}

// Definition is the declarative form of a flow, read from YAML or derived
// from an OpenAPI operation. Paths may contain the placeholders {user_id},
// {address_id}, {spouse_id}, {return_id}, {year} and {self}.
type Definition struct {
	Name        string           `yaml:"name"`
	Title       string           `yaml:"title,omitempty"`
	Prefill     string           `yaml:"prefill,omitempty"`
	Submit      SubmitDefinition `yaml:"submit"`
	NextPage    string           `yaml:"next_page,omitempty"`
	NextPageAlt string           `yaml:"next_page_alt,omitempty"`
	Branch      *Branch          `yaml:"branch,omitempty"`
	Steps       []StepDefinition `yaml:"steps"`
}

// SubmitDefinition names the request that receives the merged values.
type SubmitDefinition struct {
	Method string `yaml:"method,omitempty"`
	Path   string `yaml:"path"`
}

// Branch sends the wizard to NextPage when Field equals Equals and to
// NextPageAlt otherwise.
type Branch struct {
	Field  string `yaml:"field"`
	Equals string `yaml:"equals"`
}

// StepDefinition is one page of a declarative flow.
type StepDefinition struct {
	Title  string       `yaml:"title,omitempty"`
	Fields []field.Spec `yaml:"fields"`
}

// Validate reports structural problems without building descriptors.
func (d Definition) Validate() error {
	if strings.TrimSpace(d.Name) == "" {
		return errors.New("onboarding: definition name is required")
	}
	if d.Submit.Path == "" {
		return fmt.Errorf("onboarding: definition %q has no submit path", d.Name)
	}
	switch d.method() {
	case http.MethodPost, http.MethodPatch:
	default:
		return fmt.Errorf("onboarding: definition %q uses unsupported method %q", d.Name, d.Submit.Method)
	}
	if len(d.Steps) == 0 {
		return fmt.Errorf("onboarding: definition %q has no steps", d.Name)
	}
	if d.Branch != nil && d.Branch.Field == "" {
		return fmt.Errorf("onboarding: definition %q branch has no field", d.Name)
	}
	return nil
}

func (d Definition) method() string {
	if d.Submit.Method == "" {
		return http.MethodPost
	}
	return strings.ToUpper(d.Submit.Method)
}

// Flow builds the wizard described by d. Fields without a label get one
// derived from their name; fields without an initial value are prefilled
// from the Prefill record when one is configured.
func (d Definition) Flow(ctx context.Context, requester Requester, p Params) (Flow, error) {
	if err := d.Validate(); err != nil {
		return Flow{}, err
	}
	if requester == nil {
		return Flow{}, fmt.Errorf("onboarding: definition %q needs a requester", d.Name)
	}
	expand := placeholders(p)

	var record field.Values
	if d.Prefill != "" {
		if err := requester.Get(ctx, expand.Replace(d.Prefill), &record); err != nil {
			return Flow{}, fmt.Errorf("onboarding: prefill %q: %w", d.Name, err)
		}
	}

	steps := make([]wizard.StepDescriptor, 0, len(d.Steps))
	for i, step := range d.Steps {
		fields := make([]field.Descriptor, 0, len(step.Fields))
		for _, spec := range step.Fields {
			if spec.Label == "" {
				spec.Label = DefaultLabel(spec.Name)
			}
			if spec.Initial == "" {
				spec.Initial = record.String(spec.Name)
			}
			desc, err := spec.Descriptor()
			if err != nil {
				return Flow{}, fmt.Errorf("onboarding: definition %q step %d: %w", d.Name, i, err)
			}
			fields = append(fields, desc)
		}
		steps = append(steps, wizard.StepDescriptor{Title: step.Title, Fields: fields})
	}

	target := expand.Replace(d.Submit.Path)
	method := d.method()
	action := func(ctx context.Context, values field.Values) error {
		if method == http.MethodPatch {
			return requester.Patch(ctx, target, values.Form(), nil)
		}
		return requester.Post(ctx, target, values.Form(), nil)
	}

	next := expand.Replace(d.NextPage)
	if next == "" {
		next = p.NextPage
	}
	nextPage := submit.StaticPage(next)
	if d.Branch != nil {
		alt := expand.Replace(d.NextPageAlt)
		if alt == "" {
			alt = p.NextPageAlt
		}
		branch := *d.Branch
		nextPage = func(values field.Values) string {
			if values.String(branch.Field) == branch.Equals {
				return next
			}
			return alt
		}
	}

	return Flow{
		Name:     d.Name,
		Title:    d.Title,
		Steps:    steps,
		Action:   action,
		NextPage: nextPage,
	}, nil
}

func placeholders(p Params) *strings.Replacer {
	return strings.NewReplacer(
		"{user_id}", url.PathEscape(p.UserID),
		"{address_id}", url.PathEscape(p.AddressID),
		"{spouse_id}", url.PathEscape(p.SpouseID),
		"{return_id}", url.PathEscape(p.ReturnID),
		"{year}", url.PathEscape(p.ReturnYear),
		"{self}", p.Self,
	)
}

// LoadFlows decodes every *.yml and *.yaml file at the root of fsys. Each
// file holds one definition; unknown keys are rejected.
func LoadFlows(fsys fs.FS) ([]Definition, error) {
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return nil, fmt.Errorf("onboarding: read flows: %w", err)
	}
	var names []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		switch path.Ext(entry.Name()) {
		case ".yml", ".yaml":
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)

	defs := make([]Definition, 0, len(names))
	seen := make(map[string]string, len(names))
	for _, name := range names {
		def, err := loadDefinition(fsys, name)
		if err != nil {
			return nil, err
		}
		if prev, dup := seen[def.Name]; dup {
			return nil, fmt.Errorf("onboarding: flow %q defined in %s and %s", def.Name, prev, name)
		}
		seen[def.Name] = name
		defs = append(defs, def)
	}
	return defs, nil
}

func loadDefinition(fsys fs.FS, name string) (Definition, error) {
	file, err := fsys.Open(name)
	if err != nil {
		return Definition{}, fmt.Errorf("onboarding: open %s: %w", name, err)
	}
	defer file.Close()

	decoder := yaml.NewDecoder(file)
	decoder.KnownFields(true)
	var def Definition
	if err := decoder.Decode(&def); err != nil {
		return Definition{}, fmt.Errorf("onboarding: decode %s: %w", name, err)
	}
	if err := def.Validate(); err != nil {
		return Definition{}, fmt.Errorf("%w (%s)", err, name)
	}
	return def, nil
}

// MarshalDefinition renders def as YAML, the inverse of LoadFlows.
func MarshalDefinition(def Definition) ([]byte, error) {
	return yaml.Marshal(def)
}
