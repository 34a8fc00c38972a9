package validation

import (
	"regexp"
	"strings"
)

// PhoneRule describes the national-number shape for one country.
// Static data, not logic: dial code, accepted digit lengths and the
// pattern the leading digits must match.
type PhoneRule struct {
	DialCode     string
	Lengths      []int
	LeadingDigit *regexp.Regexp
}

var phoneRules = map[string]PhoneRule{
	"ES": {DialCode: "+34", Lengths: []int{9}, LeadingDigit: regexp.MustCompile(`^[67]`)},
	"PT": {DialCode: "+351", Lengths: []int{9}, LeadingDigit: regexp.MustCompile(`^9`)},
	"FR": {DialCode: "+33", Lengths: []int{9}, LeadingDigit: regexp.MustCompile(`^[67]`)},
	"DE": {DialCode: "+49", Lengths: []int{10, 11}, LeadingDigit: regexp.MustCompile(`^1[5-7]`)},
	"IT": {DialCode: "+39", Lengths: []int{9, 10}, LeadingDigit: regexp.MustCompile(`^3`)},
	"GB": {DialCode: "+44", Lengths: []int{10}, LeadingDigit: regexp.MustCompile(`^7`)},
	"US": {DialCode: "+1", Lengths: []int{10}, LeadingDigit: regexp.MustCompile(`^[2-9]`)},
}

// PhoneRuleFor returns the validation rule for an ISO country code.
func PhoneRuleFor(country string) (PhoneRule, bool) {
	rule, ok := phoneRules[strings.ToUpper(strings.TrimSpace(country))]
	return rule, ok
}

// normalizePhone strips spaces and hyphens and an optional dial-code prefix.
func normalizePhone(phone string, rule PhoneRule) string {
	cleaned := strings.NewReplacer(" ", "", "-", "").Replace(strings.TrimSpace(phone))
	if strings.HasPrefix(cleaned, rule.DialCode) {
		cleaned = cleaned[len(rule.DialCode):]
	} else if strings.HasPrefix(cleaned, "00"+rule.DialCode[1:]) {
		cleaned = cleaned[len(rule.DialCode)+1:]
	}
	return cleaned
}

// ValidatePhone checks a national number against the country rule:
// length first, then the leading-digit pattern. Returns the first violated
// rule, or "" when the number is acceptable.
func ValidatePhone(country, phone string) string {
	if strings.TrimSpace(phone) == "" {
		return "phone is required"
	}

	rule, ok := PhoneRuleFor(country)
	if !ok {
		return "unsupported country code"
	}

	cleaned := normalizePhone(phone, rule)

	for _, r := range cleaned {
		if r < '0' || r > '9' {
			return "phone must contain only digits"
		}
	}

	lengthOK := false
	for _, l := range rule.Lengths {
		if len(cleaned) == l {
			lengthOK = true
			break
		}
	}
	if !lengthOK {
		return "phone has wrong number of digits"
	}

	if !rule.LeadingDigit.MatchString(cleaned) {
		return "phone starts with an invalid digit"
	}

	return ""
}
