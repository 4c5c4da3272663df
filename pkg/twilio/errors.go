package twilio

import "fmt"

// AuthError reports rejected account credentials. It is permanent until the
// operator fixes the configured account SID or auth token.
type AuthError struct {
	StatusCode int
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("twilio: authentication rejected (HTTP %d)", e.StatusCode)
}

// RequestError is a structured error returned by the Twilio API, carrying the
// vendor error code so callers can branch on specific failures such as an
// unreachable destination number.
type RequestError struct {
	Code       int    `json:"code"`
	Message    string `json:"message"`
	MoreInfo   string `json:"more_info,omitempty"`
	StatusCode int    `json:"status"`
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("twilio: error %d: %s (HTTP %d)", e.Code, e.Message, e.StatusCode)
}

// TransportError wraps network-level failures reaching the API, as opposed to
// the API itself rejecting a request.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("twilio: request failed: %v", e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }
