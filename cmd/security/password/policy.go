package password

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

var commonPasswords = map[string]struct{}{
	"password":    {},
	"password1":   {},
	"password123": {},
	"12345678":    {},
	"123456789":   {},
	"qwertyuiop":  {},
	"iloveyou":    {},
	"letmein1":    {},
}

// Validate checks password against the policy. Length is counted in runes.
func (c Config) Validate(password string) error {
	n := utf8.RuneCountInString(password)
	if n < c.Policy.MinLength {
		return ErrPasswordTooShort
	}
	if n > c.Policy.MaxLength {
		return ErrPasswordTooLong
	}
	if c.Policy.RejectVeryWeak && veryWeak(password) {
		return ErrWeakPassword
	}
	return nil
}

// veryWeak rejects a single repeated character, short all-digit PINs and a
// handful of well known passwords. It is not a strength estimator.
func veryWeak(pw string) bool {
	s := strings.TrimSpace(pw)
	if s == "" {
		return true
	}
	if _, ok := commonPasswords[strings.ToLower(s)]; ok {
		return true
	}

	first, _ := utf8.DecodeRuneInString(s)
	repeated, digits := true, true
	for _, r := range s {
		if r != first {
			repeated = false
		}
		if !unicode.IsDigit(r) {
			digits = false
		}
	}
	return repeated || (digits && utf8.RuneCountInString(s) < 12)
}
