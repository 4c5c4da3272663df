package telephony

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeNumber(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"ten digits", "4355550123", "+14355550123"},
		{"eleven digits with country code", "14355550123", "+14355550123"},
		{"already E.164", "+14355550123", "+14355550123"},
		{"dashes", "435-555-0123", "+14355550123"},
		{"parens and spaces", "(435) 555-0123", "+14355550123"},
		{"dots", "435.555.0123", "+14355550123"},
		{"plus one with spaces", "+1 435 555 0123", "+14355550123"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NormalizeNumber(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNormalizeNumberRejects(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"too short", "555"},
		{"seven digits", "5550123"},
		{"empty", ""},
		{"letters", "call-me-maybe"},
		{"twelve digits", "443555501234"},
		{"eleven digits not starting with one", "24355501234"},
		{"area code starts with zero", "0355550123"},
		{"area code starts with one", "1355550123"},
		{"exchange starts with one", "4351550123"},
		{"foreign country code", "+442071234567"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NormalizeNumber(tt.input)
			var invalid *InvalidPhoneNumberError
			require.ErrorAs(t, err, &invalid)
			assert.Equal(t, tt.input, invalid.Input)
		})
	}
}
