package api

import (
	"errors"
	"fmt"
	"unicode"
)

// Passwords gate project ownership, so registration enforces complexity
// server-side instead of trusting client hints. Length is capped because
// bcrypt ignores input beyond 72 bytes.
const (
	passwordMinLen = 8
	passwordMaxLen = 72
)

var (
	ErrPasswordTooShort       = fmt.Errorf("password must be at least %d characters long", passwordMinLen)
	ErrPasswordTooLong        = fmt.Errorf("password must be at most %d characters long", passwordMaxLen)
	ErrPasswordNoUppercase    = errors.New("password must contain at least one uppercase letter")
	ErrPasswordNoLowercase    = errors.New("password must contain at least one lowercase letter")
	ErrPasswordNoDigit        = errors.New("password must contain at least one digit")
	ErrPasswordNoSpecial      = errors.New("password must contain at least one special character")
	ErrPasswordContainsSpaces = errors.New("password must not contain spaces")
)

// passwordRules lists each required character class with the error returned
// when the class is absent. Adding a rule means adding one entry.
var passwordRules = []struct {
	match func(rune) bool
	err   error
}{
	{unicode.IsUpper, ErrPasswordNoUppercase},
	{unicode.IsLower, ErrPasswordNoLowercase},
	{unicode.IsDigit, ErrPasswordNoDigit},
	{func(r rune) bool { return unicode.IsPunct(r) || unicode.IsSymbol(r) }, ErrPasswordNoSpecial},
}

// ValidatePassword reports the first complexity rule a candidate password
// breaks: length bounds, no whitespace, then at least one character from
// every class in passwordRules.
func ValidatePassword(password string) error {
	if len(password) < passwordMinLen {
		return ErrPasswordTooShort
	}
	if len(password) > passwordMaxLen {
		return ErrPasswordTooLong
	}
	seen := make([]bool, len(passwordRules))
	for _, r := range password {
		if unicode.IsSpace(r) {
			return ErrPasswordContainsSpaces
		}
		for i, rule := range passwordRules {
			if rule.match(r) {
				seen[i] = true
			}
		}
	}
	for i, rule := range passwordRules {
		if !seen[i] {
			return rule.err
		}
	}
	return nil
}
