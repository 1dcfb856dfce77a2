package importer

import (
	"strings"
	"unicode"
)

// noBreakSpaces are the no-break space variants that schedule pages emit between tokens.
var noBreakSpaces = strings.NewReplacer(
	"\u00a0", " ",
	"\u2007", " ",
	"\u202f", " ",
	"\u2060", " ",
)

// Normalize replaces no-break spaces, collapses whitespace runs to one space and trims.
func Normalize(s string) string {
	if s == "" {
		return ""
	}
	return strings.Join(strings.FieldsFunc(noBreakSpaces.Replace(s), unicode.IsSpace), " ")
}

// Fold normalizes and lower-cases text for header matching.
func Fold(s string) string {
	return strings.ToLower(Normalize(s))
}

// EqualFold reports whether two texts match after normalization, ignoring case.
func EqualFold(a, b string) bool {
	return strings.EqualFold(Normalize(a), Normalize(b))
}

// optional returns nil for blank text and a pointer to the normalized text otherwise.
func optional(s string) *string {
	s = Normalize(s)
	if s == "" {
		return nil
	}
	return &s
}

// stripSeparators removes spaces and dots: "9:00 a.m." becomes "9:00am".
func stripSeparators(s string) string {
	return strings.Map(func(r rune) rune {
		if r == '.' || unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
}
