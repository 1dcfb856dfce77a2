package service

import (
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

var campusCodePattern = regexp.MustCompile(`^[A-Za-z]{1,16}$`)

// NormalizeCampus maps campus names to their codes. Blank input yields fallback;
// unknown values pass through trimmed.
func NormalizeCampus(raw, fallback string) string {
	value := strings.TrimSpace(raw)
	switch {
	case value == "":
		return fallback
	case strings.EqualFold(value, "v"), strings.EqualFold(value, "vancouver"):
		return "V"
	case strings.EqualFold(value, "o"), strings.EqualFold(value, "okanagan"):
		return "O"
	default:
		return value
	}
}

// withExamRules registers the custom validation tags used by exam payloads.
func withExamRules(v *validator.Validate) *validator.Validate {
	if v == nil {
		v = validator.New()
	}
	_ = v.RegisterValidation("campus", func(fl validator.FieldLevel) bool {
		return campusCodePattern.MatchString(NormalizeCampus(fl.Field().String(), ""))
	})
	return v
}
