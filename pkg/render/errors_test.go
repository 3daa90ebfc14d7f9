package render_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-stepform/pkg/field"
	"github.com/goliatone/go-stepform/pkg/render"
	"github.com/goliatone/go-stepform/pkg/wizard"
)

func TestMapErrorPayloadKeyShapes(t *testing.T) {
	fields := []string{"first_name", "ssn", "address.zip", "dob"}
	payload := map[string][]string{
		"/body/first_name":     {"This field is required."},
		"body.address.zip.0":   {"Enter a valid zip code."},
		"dependents[0].ssn":    {"SSN already used", " SSN already used "},
		"$.data.dob":           {"Date has wrong format."},
		"non_field_errors":     {"Return already filed."},
		"request/body/unknown": {"Should fall back to the banner"},
		"":                     {"Unscoped"},
		"first_name.~1extra":   {"  "},
	}

	mapped := render.MapErrorPayload(fields, payload)

	wantFields := map[string][]string{
		"first_name":  {"This field is required."},
		"address.zip": {"Enter a valid zip code."},
		"ssn":         {"SSN already used"},
		"dob":         {"Date has wrong format."},
	}
	if diff := cmp.Diff(wantFields, mapped.Fields); diff != "" {
		t.Fatalf("field errors mismatch (-want +got):\n%s", diff)
	}
	wantForm := []string{"Unscoped", "Return already filed.", "Should fall back to the banner"}
	if diff := cmp.Diff(wantForm, mapped.Form); diff != "" {
		t.Fatalf("form errors mismatch (-want +got):\n%s", diff)
	}
}

func TestMapErrorPayloadEmpty(t *testing.T) {
	if diff := cmp.Diff(render.ErrorMapping{}, render.MapErrorPayload([]string{"a"}, nil)); diff != "" {
		t.Fatalf("expected empty mapping:\n%s", diff)
	}
}

func TestMergeFormErrors(t *testing.T) {
	merged := render.MergeFormErrors([]string{" First ", "Second"}, "Second", "third", "  ")
	want := []string{"First", "Second", "third"}
	if diff := cmp.Diff(want, merged); diff != "" {
		t.Fatalf("merged form errors mismatch (-want +got):\n%s", diff)
	}
}

func TestPageErrorsLeadWithGeneralMessage(t *testing.T) {
	page := render.Page{Wizard: wizard.Snapshot{
		Steps: []wizard.StepSnapshot{{Fields: []field.Descriptor{
			field.Text{Props: field.Props{Name: "city"}},
			field.Text{Props: field.Props{Name: "zip"}},
		}}},
		HasError:        true,
		GeneralError:    "Whoops, something went wrong. Please try again.",
		ValidationError: map[string][]string{"zip": {"Invalid zip."}, "county": {"Unknown county."}, "city": {"Required."}},
	}}

	errs := page.Errors()
	want := []string{"Whoops, something went wrong. Please try again.", "Unknown county."}
	if diff := cmp.Diff(want, errs.Form); diff != "" {
		t.Fatalf("banner mismatch (-want +got):\n%s", diff)
	}
	wantAll := []string{"Whoops, something went wrong. Please try again.", "Unknown county.", "Required.", "Invalid zip."}
	if diff := cmp.Diff(wantAll, errs.All()); diff != "" {
		t.Fatalf("all messages mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"city", "zip"}, page.FieldNames()); diff != "" {
		t.Fatalf("field names mismatch (-want +got):\n%s", diff)
	}
}
