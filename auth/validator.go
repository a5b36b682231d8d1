package auth

import (
	"fmt"
	"regexp"

	"github.com/go-playground/validator/v10"

	"messenger-lab/errors"
)

var validate = validator.New()

// usernamePattern is the character class accepted at registration.
// Case-sensitive: "Alice" and "alice" are distinct accounts.
var usernamePattern = regexp.MustCompile(`^[A-Za-z0-9_]+$`)

type RegisterRequest struct {
	Username string `validate:"required"`
	Password string `validate:"required"`
}

// ValidateRegister checks a registration request: both fields present,
// username restricted to letters, digits and underscore.
func ValidateRegister(req RegisterRequest) error {
	if err := validate.Struct(req); err != nil {
		return fmt.Errorf("%w: %v", errors.ErrMissingField, err)
	}
	if !usernamePattern.MatchString(req.Username) {
		return errors.ErrInvalidFormat
	}
	return nil
}

// ValidateLogin only requires both fields to be present; format rules do
// not apply at login so pre-existing accounts always stay reachable.
func ValidateLogin(req RegisterRequest) error {
	if err := validate.Struct(req); err != nil {
		return fmt.Errorf("%w: %v", errors.ErrMissingField, err)
	}
	return nil
}
