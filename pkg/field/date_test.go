package field_test

import (
	"testing"

	"github.com/goliatone/go-stepform/pkg/field"
)

func TestFormatDateInput(t *testing.T) {
	if got := field.FormatDateInput("10/01/2017"); got != "2017-10-01" {
		t.Fatalf("expected 2017-10-01, got %q", got)
	}
}

func TestFormatDateOutput(t *testing.T) {
	if got := field.FormatDateOutput("2017-10-01"); got != "10/01/2017" {
		t.Fatalf("expected 10/01/2017, got %q", got)
	}
}

func TestFormatDateOutputEmpty(t *testing.T) {
	if got := field.FormatDateOutput(""); got != "" {
		t.Fatalf("expected empty output for missing value, got %q", got)
	}
}

func TestFormatDateMalformedPassesThroughEmpty(t *testing.T) {
	for _, value := range []string{"2017", "10-01-2017", "garbage"} {
		if got := field.FormatDateInput(value); got != "" {
			t.Fatalf("FormatDateInput(%q) = %q, want empty", value, got)
		}
	}
	if got := field.FormatDateOutput("20171001"); got != "" {
		t.Fatalf("FormatDateOutput malformed = %q, want empty", got)
	}
}

func TestFormatDateRoundTrip(t *testing.T) {
	inputs := []string{"01/15/1980", "12/31/1999", "02/29/2000", "10/01/2017", "07/04/2076"}
	for _, input := range inputs {
		if !field.IsDate(input) {
			t.Fatalf("fixture %q must be a valid date", input)
		}
		stored := field.FormatDateInput(input)
		again := field.FormatDateInput(field.FormatDateOutput(stored))
		if again != stored {
			t.Fatalf("round trip mismatch for %q: %q != %q", input, again, stored)
		}
		if display := field.FormatDateOutput(stored); display != input {
			t.Fatalf("display mismatch for %q: got %q", input, display)
		}
	}
}
