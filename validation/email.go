package validation

import (
	"regexp"
	"strings"
)

// Characters never allowed anywhere in an address. Checked before any
// structural rule so the caller gets the most specific message first.
var emailForbiddenChars = []struct {
	chars   string
	message string
}{
	{" \t\r\n", "email must not contain whitespace"},
	{"<>", "email must not contain angle brackets"},
	{"[]", "email must not contain square brackets"},
	{"()", "email must not contain parentheses"},
	{",;:", "email must not contain separator punctuation"},
	{"\"'", "email must not contain quotes"},
	{"\\", "email must not contain backslashes"},
}

var emailPattern = regexp.MustCompile(`^[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}$`)

// ValidateEmail checks an address and returns the first violated rule,
// or "" when the address is acceptable.
func ValidateEmail(email string) string {
	if strings.TrimSpace(email) == "" {
		return "email is required"
	}

	for _, rule := range emailForbiddenChars {
		if strings.ContainsAny(email, rule.chars) {
			return rule.message
		}
	}

	switch strings.Count(email, "@") {
	case 0:
		return "email must contain @"
	case 1:
		// ok
	default:
		return "email must contain exactly one @"
	}

	if strings.Contains(email, "..") {
		return "email must not contain consecutive dots"
	}

	if !emailPattern.MatchString(email) {
		return "email format is invalid"
	}

	return ""
}

// IsValidEmail is a convenience wrapper for callers that only need a boolean.
func IsValidEmail(email string) bool {
	return ValidateEmail(email) == ""
}
