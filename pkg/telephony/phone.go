package telephony

import "strings"

// NormalizeNumber converts operator input to E.164 for North American numbers.
// Formatting punctuation is stripped first; then:
//
//	4355550123    -> +14355550123
//	14355550123   -> +14355550123
//	+14355550123  -> +14355550123
//
// Anything that cannot be normalized without guessing is rejected.
func NormalizeNumber(input string) (string, error) {
	stripped := strings.Map(func(r rune) rune {
		switch r {
		case ' ', '-', '.', '(', ')':
			return -1
		}
		return r
	}, input)

	if stripped == "" {
		return "", &InvalidPhoneNumberError{Input: input, Reason: "empty"}
	}

	hasPlus := strings.HasPrefix(stripped, "+")
	digits := strings.TrimPrefix(stripped, "+")
	for _, r := range digits {
		if r < '0' || r > '9' {
			return "", &InvalidPhoneNumberError{Input: input, Reason: "non-digit characters"}
		}
	}

	switch {
	case hasPlus && len(digits) == 11 && digits[0] == '1':
		// already E.164
	case !hasPlus && len(digits) == 11 && digits[0] == '1':
		// country code present, plus missing
	case !hasPlus && len(digits) == 10:
		digits = "1" + digits
	default:
		return "", &InvalidPhoneNumberError{Input: input, Reason: "not a 10-digit North American number"}
	}

	// NANP: area code and exchange cannot start with 0 or 1.
	if digits[1] == '0' || digits[1] == '1' || digits[4] == '0' || digits[4] == '1' {
		return "", &InvalidPhoneNumberError{Input: input, Reason: "not a valid North American number"}
	}

	return "+" + digits, nil
}
