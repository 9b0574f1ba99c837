package validation

import (
	"regexp"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// Regex patterns
var (
	// Whitespace as browsers' \s sees it: RE2's \s plus \v and the Unicode
	// space separators.
	emailSpace = `\s\v\x{00a0}\x{1680}\x{2000}-\x{200a}\x{2028}\x{2029}\x{202f}\x{205f}\x{3000}\x{feff}`
	emailPart  = `[^` + emailSpace + `@]+`

	// local@domain.tld where each part is a run of non-space, non-@ characters.
	// Deliberately looser than RFC 5322.
	contactEmailRegex = regexp.MustCompile(`^` + emailPart + `@` + emailPart + `\.` + emailPart + `$`)
)

// TagContactEmail is the struct tag that applies ContactEmail.
const TagContactEmail = "contact_email"

// RegisterValidators registers custom validators to the validator instance
func RegisterValidators(v *validator.Validate) {
	_ = v.RegisterValidation(TagContactEmail, ContactEmail)
}

// RegisterBindingValidators registers the custom validators on gin's
// binding engine so they apply to ShouldBind* calls.
func RegisterBindingValidators() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		RegisterValidators(v)
	}
}

// ContactEmail validates the shape of a contact email address
func ContactEmail(fl validator.FieldLevel) bool {
	return IsContactEmail(fl.Field().String())
}

// IsContactEmail reports whether s looks like local@domain.tld.
func IsContactEmail(s string) bool {
	return contactEmailRegex.MatchString(s)
}
