package telephony

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ridgelineroofing/voicebridge/pkg/agentconfig"
	"github.com/ridgelineroofing/voicebridge/pkg/twilio"
)

func newTestHandlers(t *testing.T, carrierURL string) (*Handlers, *MemoryCallLogStore) {
	t.Helper()
	callLog := NewMemoryCallLogStore()
	initiator := NewInitiator(
		newTestResolver(t),
		twilio.NewClient("AC123", "secret", carrierURL),
		callLog,
		"https://bridge.example.com",
		"+14355550100",
		zap.NewNop())
	statusLogger := NewStatusLogger(callLog, zap.NewNop())
	return NewHandlers(initiator, statusLogger, callLog, "https://bridge.example.com", zap.NewNop()), callLog
}

func validToken(t *testing.T) string {
	t.Helper()
	settings, err := newTestResolver(t).Resolve(context.Background(), nil, "", nil)
	require.NoError(t, err)
	token, err := agentconfig.EncodeToken(settings)
	require.NoError(t, err)
	return token
}

func TestHandleAnswerReturnsConnectStream(t *testing.T) {
	handlers, _ := newTestHandlers(t, "http://127.0.0.1:0")
	mux := http.NewServeMux()
	handlers.RegisterRoutes(mux)

	token := validToken(t)
	req := httptest.NewRequest(http.MethodPost, "/api/voice/answer?settings="+url.QueryEscape(token), nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/xml", rec.Header().Get("Content-Type"))
	body := rec.Body.String()
	assert.Contains(t, body, `<Connect>`)
	assert.Contains(t, body, `wss://bridge.example.com/api/voice/stream`)
	assert.Contains(t, body, `name="settings"`)
	assert.Contains(t, body, token)
	assert.NotContains(t, body, "<Hangup>")
}

func TestHandleAnswerHangsUpWithoutToken(t *testing.T) {
	handlers, _ := newTestHandlers(t, "http://127.0.0.1:0")
	mux := http.NewServeMux()
	handlers.RegisterRoutes(mux)

	for name, target := range map[string]string{
		"missing token": "/api/voice/answer",
		"garbage token": "/api/voice/answer?settings=%25%25garbage",
	} {
		t.Run(name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, target, nil))
			require.Equal(t, http.StatusOK, rec.Code)
			assert.Contains(t, rec.Body.String(), "<Hangup>")
			assert.NotContains(t, rec.Body.String(), "<Connect>")
		})
	}
}

func TestHandleStatusUpdatesEntry(t *testing.T) {
	handlers, callLog := newTestHandlers(t, "http://127.0.0.1:0")
	mux := http.NewServeMux()
	handlers.RegisterRoutes(mux)
	seedEntry(t, callLog, "CA200")

	form := url.Values{}
	form.Set("CallSid", "CA200")
	form.Set("CallStatus", "completed")
	form.Set("CallDuration", "73")

	req := httptest.NewRequest(http.MethodPost, "/api/voice/status", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Body.String())

	entry, err := callLog.GetByCallSID(context.Background(), "CA200")
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, entry.Status)
	assert.Equal(t, 73, entry.DurationSeconds)
	assert.NotNil(t, entry.ClosedAt)
}

func TestHandleStatusAlwaysAnswers200(t *testing.T) {
	handlers, _ := newTestHandlers(t, "http://127.0.0.1:0")
	mux := http.NewServeMux()
	handlers.RegisterRoutes(mux)

	form := url.Values{}
	form.Set("CallSid", "CA-unknown")
	form.Set("CallStatus", "ringing")

	req := httptest.NewRequest(http.MethodPost, "/api/voice/status", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestHandlePlaceCallErrorMapping(t *testing.T) {
	carrier := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"code":20003,"message":"Authenticate","status":401}`))
	}))
	defer carrier.Close()

	tests := []struct {
		name       string
		carrierURL string
		body       string
		wantStatus int
	}{
		{"bad json", "http://127.0.0.1:0", `{not json`, http.StatusBadRequest},
		{"invalid number", "http://127.0.0.1:0", `{"to":"555"}`, http.StatusBadRequest},
		{"unknown preset", "http://127.0.0.1:0", `{"to":"4355550123","preset_id":"nope"}`, http.StatusUnprocessableEntity},
		{"carrier auth failure", carrier.URL, `{"to":"4355550123"}`, http.StatusBadGateway},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handlers, _ := newTestHandlers(t, tt.carrierURL)
			mux := http.NewServeMux()
			handlers.RegisterRoutes(mux)

			req := httptest.NewRequest(http.MethodPost, "/api/voice/calls", strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
		})
	}
}

func TestHandlePlaceCallSuccess(t *testing.T) {
	carrier := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"sid":"CA300","status":"queued"}`))
	}))
	defer carrier.Close()

	handlers, _ := newTestHandlers(t, carrier.URL)
	mux := http.NewServeMux()
	handlers.RegisterRoutes(mux)

	req := httptest.NewRequest(http.MethodPost, "/api/voice/calls",
		strings.NewReader(`{"to":"4355550123","contact_id":"lead-7"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Contains(t, rec.Body.String(), `"call_sid":"CA300"`)

	// Listing surfaces the entry.
	listRec := httptest.NewRecorder()
	mux.ServeHTTP(listRec, httptest.NewRequest(http.MethodGet, "/api/voice/calls", nil))
	require.Equal(t, http.StatusOK, listRec.Code)
	assert.Contains(t, listRec.Body.String(), "CA300")
}
