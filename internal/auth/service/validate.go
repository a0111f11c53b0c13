package service

import (
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

const (
	minPasswordLength = 8
	maxPasswordLength = 128
)

var (
	validate = validator.New(validator.WithRequiredStructEnabled())

	flagNamePattern = regexp.MustCompile(`^[a-z0-9_]{1,64}$`)
)

// NormalizeEmail trims and lower-cases an address. Lookups are case
// insensitive already, this keeps what we store tidy.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func checkEmail(email string) error {
	if err := validate.Var(email, "required,email,max=254"); err != nil {
		return ErrInvalidEmail
	}
	return nil
}

func checkPassword(password string) error {
	if len(password) < minPasswordLength || len(password) > maxPasswordLength {
		return ErrWeakPassword
	}
	return nil
}

// ValidFlagName reports whether name can be used as a feature flag key. The
// name ends up inside a JSON path expression, so the alphabet is tight.
func ValidFlagName(name string) bool {
	return flagNamePattern.MatchString(name)
}
