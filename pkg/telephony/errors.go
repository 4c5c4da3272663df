package telephony

import "fmt"

// InvalidPhoneNumberError reports input that cannot be normalized to a dialable
// number without guessing.
type InvalidPhoneNumberError struct {
	Input  string
	Reason string
}

func (e *InvalidPhoneNumberError) Error() string {
	return fmt.Sprintf("invalid phone number %q: %s", e.Input, e.Reason)
}

// ErrCallNotFound is returned by call log lookups for unknown call SIDs.
var ErrCallNotFound = fmt.Errorf("telephony: call not found")
