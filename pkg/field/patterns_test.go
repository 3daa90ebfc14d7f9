package field_test

import (
	"testing"

	"github.com/goliatone/go-stepform/pkg/field"
)

func TestSSNPattern(t *testing.T) {
	cases := []struct {
		value string
		want  bool
	}{
		{"123456789", true},
		{"12345678", false},
		{"1234567890", false},
		{"123-45-6789", false},
		{"", false},
	}
	for _, tc := range cases {
		if got := field.IsSSN(tc.value); got != tc.want {
			t.Fatalf("IsSSN(%q) = %v, want %v", tc.value, got, tc.want)
		}
	}
}

func TestDatePattern(t *testing.T) {
	cases := []struct {
		value string
		want  bool
	}{
		{"10/01/2017", true},
		{"01/15/1980", true},
		{"10-01-2017", false},
		{"10/1/2017", false},
		{"10/01/17", false},
		{"13/01/2017", false},
		{"10/01/1817", false},
	}
	for _, tc := range cases {
		if got := field.IsDate(tc.value); got != tc.want {
			t.Fatalf("IsDate(%q) = %v, want %v", tc.value, got, tc.want)
		}
	}
}

func TestStatePattern(t *testing.T) {
	for _, value := range []string{"ny", "NY", "nY"} {
		if !field.IsState(value) {
			t.Fatalf("expected %q to be a state code", value)
		}
	}
	for _, value := range []string{"N", "NYC", "N1"} {
		if field.IsState(value) {
			t.Fatalf("expected %q to be rejected", value)
		}
	}
}

func TestCompilePatternRejectsInvalidExpression(t *testing.T) {
	if _, err := field.CompilePattern("(["); err == nil {
		t.Fatalf("expected compile error")
	}
}
