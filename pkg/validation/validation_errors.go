package validation

import (
	"errors"

	"github.com/go-playground/validator/v10"
)

// FailedTag returns the tag that should be reported for a validation
// failure. A "required" failure on any field wins over every other tag,
// otherwise the first failing tag is returned. ok is false when err is
// not a validation error.
func FailedTag(err error) (tag string, ok bool) {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) || len(validationErrors) == 0 {
		return "", false
	}

	for _, e := range validationErrors {
		if e.Tag() == "required" {
			return "required", true
		}
	}
	return validationErrors[0].Tag(), true
}
