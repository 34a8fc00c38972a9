package validation

import (
	"fmt"
	"testing"
)

func TestValidatePhoneSpain(t *testing.T) {
	// 9-digit numbers starting 6 or 7 pass; other leading digits fail.
	for lead := 0; lead <= 9; lead++ {
		phone := fmt.Sprintf("%d12345678", lead)
		msg := ValidatePhone("ES", phone)
		wantOK := lead == 6 || lead == 7
		if wantOK && msg != "" {
			t.Fatalf("ValidatePhone(ES, %q) = %q, want ok", phone, msg)
		}
		if !wantOK && msg == "" {
			t.Fatalf("ValidatePhone(ES, %q) = ok, want rejection", phone)
		}
	}
}

func TestValidatePhoneSpainLength(t *testing.T) {
	if msg := ValidatePhone("ES", "61234567"); msg == "" {
		t.Fatalf("expected rejection for 8 digits")
	}
	if msg := ValidatePhone("ES", "6123456789"); msg == "" {
		t.Fatalf("expected rejection for 10 digits")
	}
}

func TestValidatePhoneStripsSeparatorsAndDialCode(t *testing.T) {
	tests := []string{
		"712 345 678",
		"712-345-678",
		"+34 712345678",
		"0034712345678",
	}
	for _, phone := range tests {
		if msg := ValidatePhone("ES", phone); msg != "" {
			t.Fatalf("ValidatePhone(ES, %q) = %q, want ok", phone, msg)
		}
	}
}

func TestValidatePhoneNonDigits(t *testing.T) {
	if msg := ValidatePhone("ES", "71234567a"); msg == "" {
		t.Fatalf("expected rejection for letters")
	}
}

func TestValidatePhoneUnsupportedCountry(t *testing.T) {
	if msg := ValidatePhone("XX", "712345678"); msg != "unsupported country code" {
		t.Fatalf("unexpected message: %q", msg)
	}
}

func TestValidatePhoneOtherCountries(t *testing.T) {
	tests := []struct {
		country string
		phone   string
		wantOK  bool
	}{
		{"PT", "912345678", true},
		{"PT", "812345678", false},
		{"GB", "7123456789", true},
		{"GB", "6123456789", false},
		{"US", "2125551234", true},
		{"US", "1125551234", false},
		{"DE", "15712345678", true},
	}

	for _, tt := range tests {
		msg := ValidatePhone(tt.country, tt.phone)
		if tt.wantOK && msg != "" {
			t.Fatalf("ValidatePhone(%s, %q) = %q, want ok", tt.country, tt.phone, msg)
		}
		if !tt.wantOK && msg == "" {
			t.Fatalf("ValidatePhone(%s, %q) = ok, want rejection", tt.country, tt.phone)
		}
	}
}
