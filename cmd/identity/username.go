package identity

import (
	"strings"
	"unicode/utf8"
)

const (
	minUsernameLen = 3
	maxUsernameLen = 32
)

// ValidateUsername checks a username at registration time. Usernames are
// stored and matched exactly, so surrounding whitespace is rejected rather
// than trimmed.
func ValidateUsername(username string) error {
	const op = "identity.ValidateUsername"

	n := utf8.RuneCountInString(username)
	if n < minUsernameLen || n > maxUsernameLen {
		return invalid(op, "username must be 3 to 32 characters")
	}
	if strings.TrimSpace(username) != username {
		return invalid(op, "username must not start or end with whitespace")
	}
	for _, r := range username {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		case r == '_' || r == '-' || r == '.':
		default:
			return invalid(op, "username may only contain letters, digits, '.', '_' and '-'")
		}
	}
	return nil
}
