package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	t.Setenv("VOICEBRIDGE_PUBLIC_URL", "https://voice.example.com")
	t.Setenv("TWILIO_ACCOUNT_SID", "AC123")
	t.Setenv("TWILIO_AUTH_TOKEN", "secret")
	t.Setenv("TWILIO_FROM_NUMBER", "+14355550100")
	t.Setenv("SETTINGS_CACHE_TTL_SECONDS", "45")
	t.Setenv("LOG_LEVEL", "info")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Addr)
	assert.Equal(t, "https://voice.example.com", cfg.PublicURL)
	assert.Equal(t, "wss://agent.deepgram.com/v1/agent/converse", cfg.AgentServiceURL)
	assert.Equal(t, 45*time.Second, cfg.SettingsCacheTTL)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestLoadRequiresCarrierSettings(t *testing.T) {
	t.Setenv("VOICEBRIDGE_PUBLIC_URL", "https://voice.example.com")
	t.Setenv("TWILIO_ACCOUNT_SID", "")
	t.Setenv("TWILIO_AUTH_TOKEN", "")
	t.Setenv("TWILIO_FROM_NUMBER", "")

	_, err := Load()
	require.Error(t, err)
}
