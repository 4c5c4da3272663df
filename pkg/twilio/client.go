// Package twilio is a minimal client for the Twilio Voice REST API covering
// what the call bridge needs: creating outbound calls and hanging them up.
package twilio

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/go-resty/resty/v2"
)

// DefaultBaseURL is the production Twilio API endpoint. Tests point the
// client at an httptest server instead.
const DefaultBaseURL = "https://api.twilio.com/2010-04-01"

// Client talks to the Twilio Voice REST API for one account.
type Client struct {
	accountSID string
	http       *resty.Client
}

// Call is the API representation of a call resource.
type Call struct {
	SID       string `json:"sid"`
	From      string `json:"from"`
	To        string `json:"to"`
	Status    string `json:"status"`
	Direction string `json:"direction"`
}

// CreateCallParams describes one outbound call.
type CreateCallParams struct {
	From           string
	To             string
	AnswerURL      string // webhook returning TwiML when the callee picks up
	StatusCallback string // webhook receiving call progress events
	Timeout        int    // seconds to let the call ring, 0 for carrier default
}

// NewClient creates a Twilio client. baseURL is normally DefaultBaseURL.
func NewClient(accountSID, authToken, baseURL string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		accountSID: accountSID,
		http: resty.New().
			SetBaseURL(baseURL).
			SetBasicAuth(accountSID, authToken).
			SetTimeout(30 * time.Second),
	}
}

// CreateCall places an outbound call. The returned Call carries the carrier's
// SID and initial status, normally "queued".
func (c *Client) CreateCall(ctx context.Context, params CreateCallParams) (*Call, error) {
	form := url.Values{}
	form.Set("From", params.From)
	form.Set("To", params.To)
	form.Set("Url", params.AnswerURL)
	form.Set("Method", "POST")
	if params.StatusCallback != "" {
		form.Set("StatusCallback", params.StatusCallback)
		form.Set("StatusCallbackMethod", "POST")
		for _, event := range []string{"initiated", "ringing", "answered", "completed"} {
			form.Add("StatusCallbackEvent", event)
		}
	}
	if params.Timeout > 0 {
		form.Set("Timeout", fmt.Sprintf("%d", params.Timeout))
	}

	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/x-www-form-urlencoded").
		SetBody(form.Encode()).
		Post(fmt.Sprintf("/Accounts/%s/Calls.json", c.accountSID))
	if err != nil {
		return nil, &TransportError{Err: err}
	}
	if err := checkResponse(resp); err != nil {
		return nil, err
	}

	var call Call
	if err := json.Unmarshal(resp.Body(), &call); err != nil {
		return nil, fmt.Errorf("twilio: decode call response: %w", err)
	}
	return &call, nil
}

// Hangup moves an in-flight call to completed, ending it.
func (c *Client) Hangup(ctx context.Context, callSID string) error {
	form := url.Values{}
	form.Set("Status", "completed")

	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/x-www-form-urlencoded").
		SetBody(form.Encode()).
		Post(fmt.Sprintf("/Accounts/%s/Calls/%s.json", c.accountSID, callSID))
	if err != nil {
		return &TransportError{Err: err}
	}
	return checkResponse(resp)
}

// checkResponse maps non-2xx API responses to typed errors.
func checkResponse(resp *resty.Response) error {
	status := resp.StatusCode()
	if status >= 200 && status < 300 {
		return nil
	}
	if status == http.StatusUnauthorized || status == http.StatusForbidden {
		return &AuthError{StatusCode: status}
	}

	reqErr := RequestError{StatusCode: status}
	if err := json.Unmarshal(resp.Body(), &reqErr); err != nil || reqErr.Message == "" {
		reqErr.Message = string(resp.Body())
	}
	reqErr.StatusCode = status
	return &reqErr
}
