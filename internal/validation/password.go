package validation

import (
	"fmt"
	"regexp"
)

var specialChar = regexp.MustCompile(`[!@#$%^&*(),.?":{}|<>_\-+=/\\\[\]~;']`)

// Password enforces the account password policy: bcrypt-safe length and at
// least one special character.
func (v *Validator) Password(field, password string) {
	v.Check(len(password) >= MinPasswordLength, field, fmt.Sprintf("must be at least %d characters long", MinPasswordLength))
	v.Check(len(password) <= MaxPasswordLength, field, fmt.Sprintf("must not be more than %d bytes long", MaxPasswordLength))
	v.Check(specialChar.MatchString(password), field, "must contain at least one special character")
}
