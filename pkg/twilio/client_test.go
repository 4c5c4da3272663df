package twilio

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateCall(t *testing.T) {
	var gotForm map[string][]string
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, pass, ok := r.BasicAuth()
		require.True(t, ok)
		assert.Equal(t, "AC123", user)
		assert.Equal(t, "secret", pass)

		require.NoError(t, r.ParseForm())
		gotForm = r.PostForm
		gotPath = r.URL.Path

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"sid":"CA001","from":"+14355550100","to":"+14355550123","status":"queued","direction":"outbound-api"}`))
	}))
	defer srv.Close()

	client := NewClient("AC123", "secret", srv.URL)
	call, err := client.CreateCall(context.Background(), CreateCallParams{
		From:           "+14355550100",
		To:             "+14355550123",
		AnswerURL:      "https://bridge.example.com/api/voice/answer?settings=abc",
		StatusCallback: "https://bridge.example.com/api/voice/status",
		Timeout:        30,
	})
	require.NoError(t, err)

	assert.Equal(t, "CA001", call.SID)
	assert.Equal(t, "queued", call.Status)
	assert.Equal(t, "/Accounts/AC123/Calls.json", gotPath)
	assert.Equal(t, "+14355550123", gotForm["To"][0])
	assert.Equal(t, "https://bridge.example.com/api/voice/answer?settings=abc", gotForm["Url"][0])
	assert.Equal(t, "https://bridge.example.com/api/voice/status", gotForm["StatusCallback"][0])
	assert.ElementsMatch(t,
		[]string{"initiated", "ringing", "answered", "completed"},
		gotForm["StatusCallbackEvent"])
	assert.Equal(t, "30", gotForm["Timeout"][0])
}

func TestCreateCallAuthError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"code":20003,"message":"Authenticate","status":401}`))
	}))
	defer srv.Close()

	client := NewClient("AC123", "wrong", srv.URL)
	_, err := client.CreateCall(context.Background(), CreateCallParams{From: "+1", To: "+1", AnswerURL: "https://x"})

	var authErr *AuthError
	require.ErrorAs(t, err, &authErr)
	assert.Equal(t, http.StatusUnauthorized, authErr.StatusCode)
}

func TestCreateCallRequestError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"code":21211,"message":"Invalid 'To' Phone Number","more_info":"https://www.twilio.com/docs/errors/21211","status":400}`))
	}))
	defer srv.Close()

	client := NewClient("AC123", "secret", srv.URL)
	_, err := client.CreateCall(context.Background(), CreateCallParams{From: "+1", To: "bogus", AnswerURL: "https://x"})

	var reqErr *RequestError
	require.ErrorAs(t, err, &reqErr)
	assert.Equal(t, 21211, reqErr.Code)
	assert.Equal(t, http.StatusBadRequest, reqErr.StatusCode)
	assert.Contains(t, reqErr.Message, "Invalid 'To'")
}

func TestCreateCallTransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // connection refused from here on

	client := NewClient("AC123", "secret", srv.URL)
	_, err := client.CreateCall(context.Background(), CreateCallParams{From: "+1", To: "+1", AnswerURL: "https://x"})

	var transportErr *TransportError
	require.ErrorAs(t, err, &transportErr)
}

func TestHangup(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "/Accounts/AC123/Calls/CA001.json", r.URL.Path)
		assert.Equal(t, "completed", r.PostForm.Get("Status"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"sid":"CA001","status":"completed"}`))
	}))
	defer srv.Close()

	client := NewClient("AC123", "secret", srv.URL)
	require.NoError(t, client.Hangup(context.Background(), "CA001"))
}
