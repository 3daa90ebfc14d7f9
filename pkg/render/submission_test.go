package render_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-stepform/pkg/render"
)

func TestMergeAndSortHiddenFields(t *testing.T) {
	base := map[string]string{
		" existing ": "keep",
		"":           "ignored",
	}

	merged := render.MergeHiddenFields(base,
		render.CSRFToken("token123"),
		render.StepField(2),
		render.Hidden(" flow ", "info"),
		render.Hidden("  ", "skip"),
	)

	wantMerged := map[string]string{
		"existing":            "keep",
		"csrfmiddlewaretoken": "token123",
		"step":                "2",
		"flow":                "info",
	}
	if diff := cmp.Diff(wantMerged, merged); diff != "" {
		t.Fatalf("merged hidden fields mismatch (-want +got):\n%s", diff)
	}

	sorted := render.SortedHiddenFields(merged)
	wantSorted := []render.HiddenField{
		{Name: "csrfmiddlewaretoken", Value: "token123"},
		{Name: "existing", Value: "keep"},
		{Name: "flow", Value: "info"},
		{Name: "step", Value: "2"},
	}
	if diff := cmp.Diff(wantSorted, sorted); diff != "" {
		t.Fatalf("sorted hidden fields mismatch (-want +got):\n%s", diff)
	}
	if render.SortedHiddenFields(nil) != nil {
		t.Fatalf("expected nil for no fields")
	}
}
