package telephony

import (
	"encoding/json"
	"encoding/xml"
	"errors"
	"net/http"
	"strings"

	"github.com/spf13/cast"
	"go.uber.org/zap"

	"github.com/ridgelineroofing/voicebridge/pkg/agentconfig"
	"github.com/ridgelineroofing/voicebridge/pkg/twilio"
)

// Handlers serves the call-placement API and the carrier's HTTP callbacks.
type Handlers struct {
	initiator    *Initiator
	statusLogger *StatusLogger
	callLog      CallLogStore
	publicURL    string
	log          *zap.Logger
}

// NewHandlers creates the HTTP handlers for call placement and carrier
// callbacks.
func NewHandlers(initiator *Initiator, statusLogger *StatusLogger, callLog CallLogStore, publicURL string, log *zap.Logger) *Handlers {
	return &Handlers{
		initiator:    initiator,
		statusLogger: statusLogger,
		callLog:      callLog,
		publicURL:    publicURL,
		log:          log,
	}
}

// RegisterRoutes attaches the handlers to the mux.
func (h *Handlers) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/voice/calls", h.handlePlaceCall)
	mux.HandleFunc("GET /api/voice/calls", h.handleListCalls)
	mux.HandleFunc("POST /api/voice/answer", h.handleAnswer)
	mux.HandleFunc("POST /api/voice/status", h.handleStatus)
}

// TwiML response document returned to the carrier's answer callback.
type twimlResponse struct {
	XMLName xml.Name      `xml:"Response"`
	Connect *twimlConnect `xml:"Connect,omitempty"`
	Hangup  *struct{}     `xml:"Hangup,omitempty"`
}

type twimlConnect struct {
	Stream twimlStream `xml:"Stream"`
}

type twimlStream struct {
	URL        string           `xml:"url,attr"`
	Parameters []twimlParameter `xml:"Parameter"`
}

type twimlParameter struct {
	Name  string `xml:"name,attr"`
	Value string `xml:"value,attr"`
}

// handlePlaceCall is the operator-facing RPC: place a call to contact X using
// agent configuration Y.
func (h *Handlers) handlePlaceCall(w http.ResponseWriter, r *http.Request) {
	var req PlaceCallRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	entry, err := h.initiator.PlaceCall(r.Context(), req)
	if err != nil {
		h.writePlaceCallError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(entry)
}

// writePlaceCallError maps the error taxonomy onto HTTP so a client can tell
// setup problems from carrier problems.
func (h *Handlers) writePlaceCallError(w http.ResponseWriter, err error) {
	var (
		invalidNumber *InvalidPhoneNumberError
		missingCred   *agentconfig.MissingCredentialError
		presetErr     *agentconfig.PresetError
		authErr       *twilio.AuthError
		reqErr        *twilio.RequestError
		transportErr  *twilio.TransportError
	)
	switch {
	case errors.As(err, &invalidNumber):
		writeError(w, http.StatusBadRequest, invalidNumber.Error())
	case errors.As(err, &missingCred), errors.As(err, &presetErr):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.As(err, &authErr):
		writeError(w, http.StatusBadGateway, "carrier rejected account credentials")
	case errors.As(err, &reqErr):
		writeError(w, http.StatusBadGateway, reqErr.Error())
	case errors.As(err, &transportErr):
		writeError(w, http.StatusGatewayTimeout, "carrier unreachable, retry later")
	default:
		h.log.Error("place call failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func (h *Handlers) handleListCalls(w http.ResponseWriter, r *http.Request) {
	entries, err := h.callLog.List(r.Context(), 100)
	if err != nil {
		h.log.Error("list calls failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(entries)
}

// handleAnswer is the carrier's connect callback. It echoes the settings
// token into the media stream's custom parameters so the bridge session can
// recover the resolved configuration without a store read.
func (h *Handlers) handleAnswer(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("settings")

	doc := twimlResponse{}
	if token == "" {
		h.log.Error("answer callback without settings token")
		doc.Hangup = &struct{}{}
	} else if _, err := agentconfig.DecodeToken(token); err != nil {
		h.log.Error("answer callback with undecodable settings token", zap.Error(err))
		doc.Hangup = &struct{}{}
	} else {
		doc.Connect = &twimlConnect{
			Stream: twimlStream{
				URL: streamURL(h.publicURL),
				Parameters: []twimlParameter{
					{Name: "settings", Value: token},
				},
			},
		}
	}

	w.Header().Set("Content-Type", "text/xml")
	w.Write([]byte(xml.Header))
	xml.NewEncoder(w).Encode(doc)
}

// handleStatus is the carrier's status webhook. It always answers 200 with an
// empty body; a non-2xx here only makes the carrier retry events we have
// already decided to drop.
func (h *Handlers) handleStatus(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		w.WriteHeader(http.StatusOK)
		return
	}

	callSID := r.PostForm.Get("CallSid")
	status := CallStatus(r.PostForm.Get("CallStatus"))
	duration := cast.ToInt(r.PostForm.Get("CallDuration"))

	if callSID != "" {
		if err := h.statusLogger.OnStatusEvent(r.Context(), callSID, status, duration); err != nil {
			h.log.Error("status event failed",
				zap.String("call_sid", callSID), zap.Error(err))
		}
	}
	w.WriteHeader(http.StatusOK)
}

// streamURL derives the media-stream WebSocket URL from the public base URL.
func streamURL(publicURL string) string {
	ws := publicURL
	switch {
	case strings.HasPrefix(ws, "https://"):
		ws = "wss://" + strings.TrimPrefix(ws, "https://")
	case strings.HasPrefix(ws, "http://"):
		ws = "ws://" + strings.TrimPrefix(ws, "http://")
	}
	return ws + "/api/voice/stream"
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
