package agentconfig

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
)

// Provider identifies an external speech or reasoning vendor.
type Provider string

const (
	ProviderDeepgram   Provider = "deepgram"
	ProviderOpenAI     Provider = "openai"
	ProviderAnthropic  Provider = "anthropic"
	ProviderElevenLabs Provider = "elevenlabs"
	ProviderPolly      Provider = "aws_polly"
	ProviderCustom     Provider = "custom"
)

// AudioFormat describes the audio negotiated with the agent service. Input is
// the caller's audio (carrier side), output is the synthesized reply.
type AudioFormat struct {
	InputEncoding    string `json:"input_encoding"`
	InputSampleRate  int    `json:"input_sample_rate"`
	OutputEncoding   string `json:"output_encoding"`
	OutputSampleRate int    `json:"output_sample_rate"`
	OutputContainer  string `json:"output_container,omitempty"`
}

// AgentSettings is the complete, call-ready configuration for one
// conversation. It is value data: copied per call and never mutated after
// resolution.
type AgentSettings struct {
	Language string       `json:"language"`
	Listen   ListenConfig `json:"listen"`
	Think    ThinkConfig  `json:"think"`
	Speak    SpeakConfig  `json:"speak"`
	Greeting string       `json:"greeting,omitempty"`
	Audio    AudioFormat  `json:"audio"`
}

// ListenConfig selects the speech-recognition provider. Exactly the variant
// matching Provider is populated.
type ListenConfig struct {
	Provider Provider        `json:"provider"`
	Deepgram *DeepgramListen `json:"deepgram,omitempty"`
}

// DeepgramListen carries the Deepgram transcription settings.
type DeepgramListen struct {
	Model  string `json:"model"`
	APIKey string `json:"api_key"`
}

// ThinkConfig selects the reasoning provider. Temperature and Prompt apply to
// whichever variant is active.
type ThinkConfig struct {
	Provider    Provider        `json:"provider"`
	Temperature float64         `json:"temperature,omitempty"`
	Prompt      string          `json:"prompt,omitempty"`
	OpenAI      *OpenAIThink    `json:"openai,omitempty"`
	Anthropic   *AnthropicThink `json:"anthropic,omitempty"`
	Custom      *CustomEndpoint `json:"custom,omitempty"`
}

// OpenAIThink carries the OpenAI reasoning settings.
type OpenAIThink struct {
	Model  string `json:"model"`
	APIKey string `json:"api_key"`
}

// AnthropicThink carries the Anthropic reasoning settings.
type AnthropicThink struct {
	Model  string `json:"model"`
	APIKey string `json:"api_key"`
}

// CustomEndpoint points a section at a self-hosted or proxied service.
// Authentication travels in the headers.
type CustomEndpoint struct {
	URL     string            `json:"url"`
	Headers map[string]string `json:"headers,omitempty"`
}

// SpeakConfig selects the text-to-speech provider.
type SpeakConfig struct {
	Provider   Provider         `json:"provider"`
	Deepgram   *DeepgramSpeak   `json:"deepgram,omitempty"`
	OpenAI     *OpenAISpeak     `json:"openai,omitempty"`
	ElevenLabs *ElevenLabsSpeak `json:"elevenlabs,omitempty"`
	Polly      *PollySpeak      `json:"aws_polly,omitempty"`
	Custom     *CustomEndpoint  `json:"custom,omitempty"`
}

// DeepgramSpeak carries the Deepgram voice settings.
type DeepgramSpeak struct {
	Voice  string `json:"voice"`
	APIKey string `json:"api_key"`
}

// OpenAISpeak carries the OpenAI voice settings.
type OpenAISpeak struct {
	Voice  string `json:"voice"`
	Model  string `json:"model"`
	APIKey string `json:"api_key"`
}

// ElevenLabsSpeak carries the ElevenLabs voice settings.
type ElevenLabsSpeak struct {
	VoiceID string `json:"voice_id"`
	ModelID string `json:"model_id,omitempty"`
	APIKey  string `json:"api_key"`
}

// PollySpeak carries the Amazon Polly voice settings.
type PollySpeak struct {
	Voice  string `json:"voice"`
	Engine string `json:"engine,omitempty"`
	Region string `json:"region"`
	APIKey string `json:"api_key"`
}

// credential returns the section's auth material, empty when unresolved.
func (l ListenConfig) credential() string {
	if l.Provider == ProviderDeepgram && l.Deepgram != nil {
		return l.Deepgram.APIKey
	}
	return ""
}

func (t ThinkConfig) credential() string {
	switch t.Provider {
	case ProviderOpenAI:
		if t.OpenAI != nil {
			return t.OpenAI.APIKey
		}
	case ProviderAnthropic:
		if t.Anthropic != nil {
			return t.Anthropic.APIKey
		}
	case ProviderCustom:
		if t.Custom != nil {
			return headerCredential(t.Custom.Headers)
		}
	}
	return ""
}

func (s SpeakConfig) credential() string {
	switch s.Provider {
	case ProviderDeepgram:
		if s.Deepgram != nil {
			return s.Deepgram.APIKey
		}
	case ProviderOpenAI:
		if s.OpenAI != nil {
			return s.OpenAI.APIKey
		}
	case ProviderElevenLabs:
		if s.ElevenLabs != nil {
			return s.ElevenLabs.APIKey
		}
	case ProviderPolly:
		if s.Polly != nil {
			return s.Polly.APIKey
		}
	case ProviderCustom:
		if s.Custom != nil {
			return headerCredential(s.Custom.Headers)
		}
	}
	return ""
}

// headerCredential treats any non-empty header value as auth material.
func headerCredential(headers map[string]string) string {
	for _, v := range headers {
		if v != "" {
			return v
		}
	}
	return ""
}

// Validate checks that every active provider section carries a non-empty
// credential. Callers must treat failure as fatal: a call placed with an
// unresolved credential fails silently mid-conversation.
func (s AgentSettings) Validate() error {
	if s.Listen.credential() == "" {
		return &MissingCredentialError{Section: "listen", Provider: s.Listen.Provider}
	}
	if s.Think.credential() == "" {
		return &MissingCredentialError{Section: "think", Provider: s.Think.Provider}
	}
	if s.Speak.credential() == "" {
		return &MissingCredentialError{Section: "speak", Provider: s.Speak.Provider}
	}
	return nil
}

// EncodeToken serializes settings into the opaque URL-safe token passed
// through the carrier's connect callback.
func EncodeToken(s AgentSettings) (string, error) {
	raw, err := json.Marshal(s)
	if err != nil {
		return "", fmt.Errorf("encode settings token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(raw), nil
}

// DecodeToken reverses EncodeToken.
func DecodeToken(token string) (AgentSettings, error) {
	var s AgentSettings
	raw, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return s, fmt.Errorf("decode settings token: %w", err)
	}
	if err := json.Unmarshal(raw, &s); err != nil {
		return s, fmt.Errorf("decode settings token: %w", err)
	}
	return s, nil
}
