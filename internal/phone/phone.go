// Package phone provides phone-number normalization helpers shared by the
// gatekeeper exclusion check and the AI context user filters.
package phone

import "strings"

// Clean strips spaces, dashes, and parentheses from a phone number.
func Clean(number string) string {
	r := strings.NewReplacer(" ", "", "-", "", "(", "", ")", "")
	return r.Replace(number)
}

// Variants returns the lookup variants of a phone number: the raw input,
// the separator-stripped form, the form with the opposite "+" prefix, and
// the last 10 digits when the number carries a country code. Duplicates
// are removed, order of first appearance is preserved.
func Variants(number string) []string {
	if number == "" {
		return nil
	}

	clean := Clean(number)
	variants := []string{number, clean}

	if strings.HasPrefix(clean, "+") {
		variants = append(variants, clean[1:])
	} else {
		variants = append(variants, "+"+clean)
	}

	digits := strings.TrimPrefix(clean, "+")
	if len(digits) > 10 {
		variants = append(variants, digits[len(digits)-10:])
	}

	seen := make(map[string]bool, len(variants))
	out := variants[:0]
	for _, v := range variants {
		if !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	return out
}

// Matches reports whether two phone numbers refer to the same line under
// any normalization variant.
func Matches(a, b string) bool {
	if a == "" || b == "" {
		return false
	}
	bv := make(map[string]bool)
	for _, v := range Variants(b) {
		bv[v] = true
	}
	for _, v := range Variants(a) {
		if bv[v] {
			return true
		}
	}
	return false
}
