package validation

import "unicode"

// PasswordChecks reports each password requirement independently so the UI
// can show live feedback per rule.
type PasswordChecks struct {
	MinLength bool `json:"min_length"`
	Lowercase bool `json:"lowercase"`
	Uppercase bool `json:"uppercase"`
	Digit     bool `json:"digit"`
	Symbol    bool `json:"symbol"`
}

// Valid is true only when every individual requirement holds.
func (c PasswordChecks) Valid() bool {
	return c.MinLength && c.Lowercase && c.Uppercase && c.Digit && c.Symbol
}

// CheckPassword evaluates the five password requirements.
func CheckPassword(password string) PasswordChecks {
	checks := PasswordChecks{
		MinLength: len(password) >= 8,
	}

	for _, r := range password {
		switch {
		case unicode.IsLower(r):
			checks.Lowercase = true
		case unicode.IsUpper(r):
			checks.Uppercase = true
		case unicode.IsDigit(r):
			checks.Digit = true
		case unicode.IsPunct(r) || unicode.IsSymbol(r):
			checks.Symbol = true
		}
	}

	return checks
}

// IsValidPassword is a convenience wrapper for callers that only need a boolean.
func IsValidPassword(password string) bool {
	return CheckPassword(password).Valid()
}
