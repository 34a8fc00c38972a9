package validation

import "testing"

func TestCheckPasswordAllRequirements(t *testing.T) {
	checks := CheckPassword("Abcdef1!")
	if !checks.MinLength || !checks.Lowercase || !checks.Uppercase || !checks.Digit || !checks.Symbol {
		t.Fatalf("expected all checks to pass, got %+v", checks)
	}
	if !checks.Valid() {
		t.Fatalf("expected overall validity")
	}
}

func TestCheckPasswordEachRequirementIndependent(t *testing.T) {
	tests := []struct {
		password string
		want     PasswordChecks
	}{
		{"abcdefg1", PasswordChecks{MinLength: true, Lowercase: true, Digit: true}},
		{"ABCDEFG1", PasswordChecks{MinLength: true, Uppercase: true, Digit: true}},
		{"Abc1!", PasswordChecks{Lowercase: true, Uppercase: true, Digit: true, Symbol: true}},
		{"Abcdefgh", PasswordChecks{MinLength: true, Lowercase: true, Uppercase: true}},
		{"", PasswordChecks{}},
	}

	for _, tt := range tests {
		got := CheckPassword(tt.password)
		if got != tt.want {
			t.Fatalf("CheckPassword(%q) = %+v, want %+v", tt.password, got, tt.want)
		}
		if got.Valid() {
			t.Fatalf("CheckPassword(%q) unexpectedly valid", tt.password)
		}
	}
}

func TestPasswordValidityFlipsWithAnyRequirement(t *testing.T) {
	base := PasswordChecks{MinLength: true, Lowercase: true, Uppercase: true, Digit: true, Symbol: true}
	if !base.Valid() {
		t.Fatalf("expected base to be valid")
	}

	flips := []PasswordChecks{
		{false, true, true, true, true},
		{true, false, true, true, true},
		{true, true, false, true, true},
		{true, true, true, false, true},
		{true, true, true, true, false},
	}
	for i, c := range flips {
		if c.Valid() {
			t.Fatalf("flip %d: expected invalid", i)
		}
	}
}
