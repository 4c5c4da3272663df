// Package telephony places outbound calls through the carrier and tracks
// their lifecycle in the call log.
package telephony

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ridgelineroofing/voicebridge/pkg/agentconfig"
	"github.com/ridgelineroofing/voicebridge/pkg/twilio"
)

// Initiator places outbound calls: it resolves agent settings, dispatches the
// call through the carrier REST API, and opens a call log entry.
type Initiator struct {
	resolver   *agentconfig.Resolver
	carrier    *twilio.Client
	callLog    CallLogStore
	publicURL  string
	fromNumber string
	log        *zap.Logger
}

// PlaceCallRequest describes one outbound call to place.
type PlaceCallRequest struct {
	To        string               `json:"to"`
	From      string               `json:"from,omitempty"` // defaults to the configured caller id
	ContactID string               `json:"contact_id,omitempty"`
	PresetID  string               `json:"preset_id,omitempty"`
	Overrides *agentconfig.Overlay `json:"overrides,omitempty"`
}

// NewInitiator creates a call initiator. publicURL is the externally
// reachable base URL the carrier calls back on; fromNumber is the default
// caller id.
func NewInitiator(resolver *agentconfig.Resolver, carrier *twilio.Client, callLog CallLogStore, publicURL, fromNumber string, log *zap.Logger) *Initiator {
	return &Initiator{
		resolver:   resolver,
		carrier:    carrier,
		callLog:    callLog,
		publicURL:  publicURL,
		fromNumber: fromNumber,
		log:        log,
	}
}

// PlaceCall validates and dispatches one outbound call. On success the
// returned entry is in queued status with the carrier's call SID. Nothing is
// written to the call log when dispatch fails.
func (i *Initiator) PlaceCall(ctx context.Context, req PlaceCallRequest) (*CallLogEntry, error) {
	to, err := NormalizeNumber(req.To)
	if err != nil {
		return nil, err
	}
	from := req.From
	if from == "" {
		from = i.fromNumber
	}
	from, err = NormalizeNumber(from)
	if err != nil {
		return nil, err
	}

	settings, err := i.resolver.Resolve(ctx, nil, req.PresetID, req.Overrides)
	if err != nil {
		return nil, err
	}
	// Resolve validates already; a settings object must never reach the
	// carrier without credentials regardless of where it came from.
	if err := settings.Validate(); err != nil {
		return nil, err
	}

	token, err := agentconfig.EncodeToken(settings)
	if err != nil {
		return nil, err
	}

	call, err := i.carrier.CreateCall(ctx, twilio.CreateCallParams{
		From:           from,
		To:             to,
		AnswerURL:      fmt.Sprintf("%s/api/voice/answer?settings=%s", i.publicURL, url.QueryEscape(token)),
		StatusCallback: i.publicURL + "/api/voice/status",
		Timeout:        30,
	})
	if err != nil {
		i.log.Error("carrier rejected call dispatch",
			zap.String("to", to), zap.Error(err))
		return nil, err
	}

	now := time.Now().UTC()
	entry := &CallLogEntry{
		ID:         uuid.NewString(),
		CallSID:    call.SID,
		ContactID:  req.ContactID,
		ToNumber:   to,
		FromNumber: from,
		Status:     StatusQueued,
		PresetID:   req.PresetID,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := i.callLog.Create(ctx, entry); err != nil {
		return nil, fmt.Errorf("record dispatched call %s: %w", call.SID, err)
	}

	i.log.Info("call dispatched",
		zap.String("call_sid", call.SID),
		zap.String("to", to),
		zap.String("preset_id", req.PresetID))
	return entry, nil
}

// Hangup ends an in-flight call through the carrier.
func (i *Initiator) Hangup(ctx context.Context, callSID string) error {
	return i.carrier.Hangup(ctx, callSID)
}
