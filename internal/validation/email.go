package validation

import (
	"errors"
	"net/mail"
)

// ValidateEmail checks the address with the stdlib RFC 5322 parser. Callers
// normalize case and whitespace before storing; this only decides valid or
// not.
func ValidateEmail(email string) error {
	if email == "" {
		return errors.New("email address is required")
	}

	// RFC 5321 caps the full address at 254 characters.
	if len(email) > 254 {
		return errors.New("email address is too long (max 254 characters)")
	}

	_, err := mail.ParseAddress(email)
	if err != nil {
		return errors.New("invalid email address format")
	}

	return nil
}
