package validation

import (
	"errors"
	"strings"
)

// weakSubstrings are rejected anywhere in a password, case-insensitively.
var weakSubstrings = []string{
	"password", "123456", "qwerty", "admin", "letmein",
	"welcome", "monkey", "dragon", "master", "sunshine",
}

// ValidatePassword enforces a 12-character minimum and rejects well-known
// weak substrings. The upper bound exists because bcrypt silently truncates
// input beyond 72 bytes.
func ValidatePassword(password string) error {
	if len(password) < 12 {
		return errors.New("password must be at least 12 characters")
	}
	if len(password) > 72 {
		return errors.New("password must not exceed 72 characters")
	}

	lower := strings.ToLower(password)
	for _, weak := range weakSubstrings {
		if strings.Contains(lower, weak) {
			return errors.New("password is too common, please choose a stronger one")
		}
	}

	return nil
}
