package bridge

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/ridgelineroofing/voicebridge/pkg/agentconfig"
)

// ServiceDialer opens agent-service WebSocket connections.
type ServiceDialer struct {
	url string
	log *zap.Logger
}

// NewServiceDialer creates a dialer for the agent service at url.
func NewServiceDialer(url string, log *zap.Logger) *ServiceDialer {
	return &ServiceDialer{url: url, log: log}
}

// DialAgent connects to the agent service, authenticating with the resolved
// Deepgram key. Sections pointed at custom endpoints authenticate through the
// headers inside the settings document instead.
func (d *ServiceDialer) DialAgent(ctx context.Context, settings agentconfig.AgentSettings) (Conn, error) {
	header := http.Header{}
	if key := serviceKey(settings); key != "" {
		header.Set("Authorization", "Token "+key)
	}

	conn, resp, err := websocket.DefaultDialer.DialContext(ctx, d.url, header)
	if err != nil {
		if resp != nil {
			return nil, fmt.Errorf("dial agent service: %w (HTTP %d)", err, resp.StatusCode)
		}
		return nil, fmt.Errorf("dial agent service: %w", err)
	}
	d.log.Debug("agent service connected", zap.String("url", d.url))
	return conn, nil
}

// serviceKey picks the connection credential: the listen key when Deepgram
// does transcription, otherwise the Deepgram speak key.
func serviceKey(s agentconfig.AgentSettings) string {
	if s.Listen.Provider == agentconfig.ProviderDeepgram && s.Listen.Deepgram != nil {
		return s.Listen.Deepgram.APIKey
	}
	if s.Speak.Provider == agentconfig.ProviderDeepgram && s.Speak.Deepgram != nil {
		return s.Speak.Deepgram.APIKey
	}
	return ""
}
