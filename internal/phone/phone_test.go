package phone

import (
	"slices"
	"testing"
)

func TestClean(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"+1 (555) 000-1111", "+15550001111"},
		{"+15550001111", "+15550001111"},
		{"555 000 1111", "5550001111"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := Clean(tt.in); got != tt.want {
			t.Errorf("Clean(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestVariants(t *testing.T) {
	got := Variants("+1 (555) 000-1111")

	for _, want := range []string{"+1 (555) 000-1111", "+15550001111", "15550001111", "5550001111"} {
		if !slices.Contains(got, want) {
			t.Errorf("Variants missing %q, got %v", want, got)
		}
	}
}

func TestVariants_NoCountryCode(t *testing.T) {
	got := Variants("5550001111")

	if !slices.Contains(got, "+5550001111") {
		t.Errorf("expected + prefixed variant, got %v", got)
	}
	// 10 digits: no last-10 fallback beyond the number itself.
	if len(got) != 2 {
		t.Errorf("len(Variants) = %d, want 2 (%v)", len(got), got)
	}
}

func TestVariants_Empty(t *testing.T) {
	if got := Variants(""); got != nil {
		t.Errorf("Variants(\"\") = %v, want nil", got)
	}
}

func TestMatches(t *testing.T) {
	tests := []struct {
		a, b string
		want bool
	}{
		{"+15550001111", "15550001111", true},
		{"+1 555-000-1111", "+15550001111", true},
		{"+15550001111", "5550001111", true}, // last-10 fallback
		{"+15550001111", "+15550002222", false},
		{"", "+15550001111", false},
	}
	for _, tt := range tests {
		if got := Matches(tt.a, tt.b); got != tt.want {
			t.Errorf("Matches(%q, %q) = %v, want %v", tt.a, tt.b, got, tt.want)
		}
	}
}
