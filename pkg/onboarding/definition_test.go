package onboarding_test

import (
	"context"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-stepform/pkg/api"
	"github.com/goliatone/go-stepform/pkg/field"
	"github.com/goliatone/go-stepform/pkg/onboarding"
	"github.com/goliatone/go-stepform/pkg/testsupport"
)

type request struct {
	Method string
	Path   string
	Form   api.Form
}

type fakeRequester struct {
	prefill  map[string]any
	requests []request
}

func (f *fakeRequester) Get(_ context.Context, path string, out any) error {
	f.requests = append(f.requests, request{Method: "GET", Path: path})
	if values, ok := out.(*field.Values); ok {
		*values = field.Values(f.prefill)
	}
	return nil
}

func (f *fakeRequester) Post(_ context.Context, path string, form api.Form, _ any) error {
	f.requests = append(f.requests, request{Method: "POST", Path: path, Form: form})
	return nil
}

func (f *fakeRequester) Patch(_ context.Context, path string, form api.Form, _ any) error {
	f.requests = append(f.requests, request{Method: "PATCH", Path: path, Form: form})
	return nil
}

const employmentFlow = `
name: employment
title: Where do you work?
prefill: /api/returns/{return_id}/
submit:
  method: patch
  path: /api/returns/{return_id}/
next_page: /onboarding/misc
branch:
  field: self_employed
  equals: "true"
next_page_alt: /onboarding/expenses
steps:
  - fields:
      - kind: TEXT
        name: employer_name
        required: true
      - kind: SELECT
        name: pay_schedule
        choices:
          - {text: "---------", value: ""}
          - {text: Weekly, value: WEEKLY}
          - {text: Monthly, value: MONTHLY}
  - fields:
      - kind: BINARY
        name: self_employed
        label: Are you self employed?
`

func TestLoadFlowsAndRun(t *testing.T) {
	fsys := fstest.MapFS{
		"employment.yml": {Data: []byte(employmentFlow)},
		"README.md":      {Data: []byte("ignored")},
	}
	defs, err := onboarding.LoadFlows(fsys)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(defs) != 1 || defs[0].Name != "employment" {
		t.Fatalf("unexpected definitions %+v", defs)
	}

	requester := &fakeRequester{prefill: map[string]any{"employer_name": "Acme"}}
	catalog := onboarding.NewCatalog(nil, requester, onboarding.WithDefinitions(defs...))
	nav := &testsupport.RecordingNavigator{}

	flow, err := catalog.Build(context.Background(), "employment", onboarding.Params{ReturnID: "12"})
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	employer := flow.Steps[0].Fields[0]
	if employer.Base().Label != "Employer Name" || employer.Base().Initial != "Acme" {
		t.Fatalf("unexpected employer field %+v", employer.Base())
	}

	ctx := context.Background()
	ctrl := run(t, flow, nav)
	if err := ctrl.Advance(ctx, 0, map[string]string{"employer_name": "Acme", "pay_schedule": "WEEKLY"}); err != nil {
		t.Fatalf("advance: %v", err)
	}
	if err := ctrl.Choose(ctx, 1, "self_employed", 1); err != nil {
		t.Fatalf("choose: %v", err)
	}

	want := []request{
		{Method: "GET", Path: "/api/returns/12/"},
		{Method: "PATCH", Path: "/api/returns/12/", Form: api.Form{
			"employer_name": "Acme", "pay_schedule": "WEEKLY", "self_employed": "false",
		}},
	}
	if diff := cmp.Diff(want, requester.requests); diff != "" {
		t.Fatalf("requests mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"/onboarding/expenses"}, nav.Targets()); diff != "" {
		t.Fatalf("navigation mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadFlowsRejectsBadFiles(t *testing.T) {
	cases := map[string]struct {
		files fstest.MapFS
		want  string
	}{
		"unknown key": {
			files: fstest.MapFS{"a.yml": {Data: []byte("name: a\nsubmit: {path: /x/}\nsteps: [{fields: [{name: x}]}]\ncolour: red\n")}},
			want:  "field colour not found",
		},
		"no steps": {
			files: fstest.MapFS{"a.yaml": {Data: []byte("name: a\nsubmit: {path: /x/}\n")}},
			want:  "has no steps",
		},
		"bad method": {
			files: fstest.MapFS{"a.yml": {Data: []byte("name: a\nsubmit: {method: DELETE, path: /x/}\nsteps: [{fields: [{name: x}]}]\n")}},
			want:  "unsupported method",
		},
		"duplicate": {
			files: fstest.MapFS{
				"a.yml": {Data: []byte("name: a\nsubmit: {path: /x/}\nsteps: [{fields: [{name: x}]}]\n")},
				"b.yml": {Data: []byte("name: a\nsubmit: {path: /y/}\nsteps: [{fields: [{name: y}]}]\n")},
			},
			want: "defined in a.yml and b.yml",
		},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := onboarding.LoadFlows(tc.files)
			if err == nil || !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("expected error containing %q, got %v", tc.want, err)
			}
		})
	}
}

func TestDefinitionFlowRejectsBadField(t *testing.T) {
	def := onboarding.Definition{
		Name:   "broken",
		Submit: onboarding.SubmitDefinition{Path: "/x/"},
		Steps:  []onboarding.StepDefinition{{Fields: []field.Spec{{Kind: field.KindSelect, Name: "empty"}}}},
	}
	if _, err := def.Flow(context.Background(), &fakeRequester{}, onboarding.Params{}); err == nil {
		t.Fatalf("expected select without choices to fail")
	}
}

func TestMarshalDefinitionRoundTrip(t *testing.T) {
	defs, err := onboarding.LoadFlows(fstest.MapFS{"employment.yml": {Data: []byte(employmentFlow)}})
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	raw, err := onboarding.MarshalDefinition(defs[0])
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	again, err := onboarding.LoadFlows(fstest.MapFS{"employment.yml": {Data: raw}})
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if diff := cmp.Diff(defs, again); diff != "" {
		t.Fatalf("definition changed on round trip (-want +got):\n%s", diff)
	}
}
