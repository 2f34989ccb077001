package api

import (
	"regexp"
	"strings"
)

var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9_.+-]+@[a-zA-Z0-9-]+\.[a-zA-Z0-9-.]+$`)

const passwordSpecials = "!\"#$%&'()*+,-./:;<=>?@[\\]^_`{|}~"

// ValidEmail reports whether the address matches the signup format rule.
func ValidEmail(email string) bool {
	return emailPattern.MatchString(email)
}

// ValidPassword enforces the signup password rule: 8-32 characters with at
// least one letter, one digit and one special character.
func ValidPassword(password string) bool {
	if len(password) < 8 || len(password) > 32 {
		return false
	}
	var hasLetter, hasDigit, hasSpecial bool
	for _, c := range password {
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z':
			hasLetter = true
		case c >= '0' && c <= '9':
			hasDigit = true
		case strings.ContainsRune(passwordSpecials, c):
			hasSpecial = true
		default:
			return false
		}
	}
	return hasLetter && hasDigit && hasSpecial
}
