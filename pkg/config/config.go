package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cast"
)

// Config holds process-level configuration, loaded from the environment.
type Config struct {
	// HTTP server
	Addr      string // listen address, e.g. ":8080"
	PublicURL string // externally reachable base URL for carrier callbacks, e.g. "https://voice.example.com"

	// Persistence. Empty DSN selects the in-memory stores (development only).
	DatabaseURL string

	// Carrier credentials
	TwilioAccountSID string
	TwilioAuthToken  string
	TwilioBaseURL    string // override for testing; empty uses the public API
	TwilioFromNumber string // default caller id for outbound calls

	// Agent service
	AgentServiceURL string // WebSocket URL of the speech-agent service

	// Resolver
	SettingsCacheTTL time.Duration

	// Logging
	LogLevel    string
	Development bool
}

// Load reads configuration from the environment. A .env file is loaded first
// if present; a missing file is not an error.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Addr:             getEnv("VOICEBRIDGE_ADDR", ":8080"),
		PublicURL:        os.Getenv("VOICEBRIDGE_PUBLIC_URL"),
		DatabaseURL:      os.Getenv("DATABASE_URL"),
		TwilioAccountSID: os.Getenv("TWILIO_ACCOUNT_SID"),
		TwilioAuthToken:  os.Getenv("TWILIO_AUTH_TOKEN"),
		TwilioBaseURL:    os.Getenv("TWILIO_BASE_URL"),
		TwilioFromNumber: os.Getenv("TWILIO_FROM_NUMBER"),
		AgentServiceURL:  getEnv("AGENT_SERVICE_URL", "wss://agent.deepgram.com/v1/agent/converse"),
		SettingsCacheTTL: time.Duration(cast.ToInt(getEnv("SETTINGS_CACHE_TTL_SECONDS", "30"))) * time.Second,
		LogLevel:         getEnv("LOG_LEVEL", "info"),
		Development:      cast.ToBool(os.Getenv("DEV_MODE")),
	}

	if cfg.PublicURL == "" {
		return nil, fmt.Errorf("VOICEBRIDGE_PUBLIC_URL is required")
	}
	if cfg.TwilioAccountSID == "" || cfg.TwilioAuthToken == "" {
		return nil, fmt.Errorf("TWILIO_ACCOUNT_SID and TWILIO_AUTH_TOKEN are required")
	}
	if cfg.TwilioFromNumber == "" {
		return nil, fmt.Errorf("TWILIO_FROM_NUMBER is required")
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
