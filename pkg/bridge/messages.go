package bridge

import (
	"github.com/ridgelineroofing/voicebridge/pkg/agentconfig"
)

// Carrier media-stream events. The carrier sends JSON text frames with an
// event discriminant; audio payloads are base64.

type carrierEvent struct {
	Event          string        `json:"event"`
	SequenceNumber string        `json:"sequenceNumber,omitempty"`
	StreamSid      string        `json:"streamSid,omitempty"`
	Start          *startPayload `json:"start,omitempty"`
	Media          *mediaPayload `json:"media,omitempty"`
	Stop           *stopPayload  `json:"stop,omitempty"`
}

type startPayload struct {
	StreamSid        string            `json:"streamSid"`
	CallSid          string            `json:"callSid"`
	Tracks           []string          `json:"tracks"`
	CustomParameters map[string]string `json:"customParameters"`
}

type mediaPayload struct {
	Track     string `json:"track"`
	Chunk     string `json:"chunk,omitempty"`
	Timestamp string `json:"timestamp,omitempty"`
	Payload   string `json:"payload"`
}

type stopPayload struct {
	CallSid string `json:"callSid"`
}

// Carrier-bound messages.

type outboundMedia struct {
	Event     string       `json:"event"`
	StreamSid string       `json:"streamSid"`
	Media     mediaPayload `json:"media"`
}

type clearMessage struct {
	Event     string `json:"event"`
	StreamSid string `json:"streamSid"`
}

// Agent-service messages. The first frame on the agent socket is the JSON
// settings document; afterwards binary frames carry audio and text frames
// carry control JSON with a type discriminant.

type agentControl struct {
	Type        string `json:"type"`
	Description string `json:"description,omitempty"`
	Role        string `json:"role,omitempty"`
	Content     string `json:"content,omitempty"`
}

const (
	agentUserStartedSpeaking = "UserStartedSpeaking"
	agentSettingsApplied     = "SettingsApplied"
	agentWelcome             = "Welcome"
	agentError               = "Error"
)

type agentSettingsMessage struct {
	Type  string     `json:"type"`
	Audio agentAudio `json:"audio"`
	Agent agentBlock `json:"agent"`
}

type agentAudio struct {
	Input  agentAudioFormat `json:"input"`
	Output agentAudioFormat `json:"output"`
}

type agentAudioFormat struct {
	Encoding   string `json:"encoding"`
	SampleRate int    `json:"sample_rate"`
	Container  string `json:"container,omitempty"`
}

type agentBlock struct {
	Language string         `json:"language"`
	Listen   map[string]any `json:"listen"`
	Think    map[string]any `json:"think"`
	Speak    map[string]any `json:"speak"`
	Greeting string         `json:"greeting,omitempty"`
}

// newSettingsMessage maps resolved call settings onto the agent service's
// settings document. Provider blocks are built per active variant; custom
// endpoints carry their own URL and headers.
func newSettingsMessage(s agentconfig.AgentSettings) agentSettingsMessage {
	return agentSettingsMessage{
		Type: "Settings",
		Audio: agentAudio{
			Input: agentAudioFormat{
				Encoding:   s.Audio.InputEncoding,
				SampleRate: s.Audio.InputSampleRate,
			},
			Output: agentAudioFormat{
				Encoding:   s.Audio.OutputEncoding,
				SampleRate: s.Audio.OutputSampleRate,
				Container:  s.Audio.OutputContainer,
			},
		},
		Agent: agentBlock{
			Language: s.Language,
			Listen:   listenBlock(s.Listen),
			Think:    thinkBlock(s.Think),
			Speak:    speakBlock(s.Speak),
			Greeting: s.Greeting,
		},
	}
}

func listenBlock(l agentconfig.ListenConfig) map[string]any {
	provider := map[string]any{"type": string(l.Provider)}
	if l.Deepgram != nil {
		provider["model"] = l.Deepgram.Model
	}
	return map[string]any{"provider": provider}
}

func thinkBlock(t agentconfig.ThinkConfig) map[string]any {
	provider := map[string]any{"type": string(t.Provider)}
	block := map[string]any{"provider": provider}
	if t.Temperature != 0 {
		provider["temperature"] = t.Temperature
	}
	if t.Prompt != "" {
		block["prompt"] = t.Prompt
	}
	switch t.Provider {
	case agentconfig.ProviderOpenAI:
		if t.OpenAI != nil {
			provider["model"] = t.OpenAI.Model
		}
	case agentconfig.ProviderAnthropic:
		if t.Anthropic != nil {
			provider["model"] = t.Anthropic.Model
		}
	case agentconfig.ProviderCustom:
		if t.Custom != nil {
			block["endpoint"] = map[string]any{
				"url":     t.Custom.URL,
				"headers": t.Custom.Headers,
			}
		}
	}
	return block
}

func speakBlock(s agentconfig.SpeakConfig) map[string]any {
	provider := map[string]any{"type": string(s.Provider)}
	block := map[string]any{"provider": provider}
	switch s.Provider {
	case agentconfig.ProviderDeepgram:
		if s.Deepgram != nil {
			provider["model"] = s.Deepgram.Voice
		}
	case agentconfig.ProviderOpenAI:
		if s.OpenAI != nil {
			provider["voice"] = s.OpenAI.Voice
			provider["model"] = s.OpenAI.Model
		}
	case agentconfig.ProviderElevenLabs:
		if s.ElevenLabs != nil {
			provider["voice_id"] = s.ElevenLabs.VoiceID
			if s.ElevenLabs.ModelID != "" {
				provider["model_id"] = s.ElevenLabs.ModelID
			}
		}
	case agentconfig.ProviderPolly:
		if s.Polly != nil {
			provider["voice"] = s.Polly.Voice
			provider["engine"] = s.Polly.Engine
			provider["region"] = s.Polly.Region
		}
	case agentconfig.ProviderCustom:
		if s.Custom != nil {
			block["endpoint"] = map[string]any{
				"url":     s.Custom.URL,
				"headers": s.Custom.Headers,
			}
		}
	}
	return block
}
