package onboarding

import "testing"

func TestDefaultLabel(t *testing.T) {
	cases := map[string]string{
		"":              "",
		"first_name":    "First Name",
		"zipCode":       "Zip Code",
		"address2":      "Address 2",
		"is-first-time": "Is First Time",
		"married_joint": "Married Joint",
	}
	for in, want := range cases {
		if got := DefaultLabel(in); got != want {
			t.Errorf("DefaultLabel(%q) = %q, want %q", in, got, want)
		}
	}
}
