package agentconfig

// Overlay is a partial settings layer. Nil fields leave lower-precedence
// layers untouched; merging is field-level, never whole-object replacement.
type Overlay struct {
	Language *string        `json:"language,omitempty"`
	Greeting *string        `json:"greeting,omitempty"`
	Listen   *ListenOverlay `json:"listen,omitempty"`
	Think    *ThinkOverlay  `json:"think,omitempty"`
	Speak    *SpeakOverlay  `json:"speak,omitempty"`
	Audio    *AudioOverlay  `json:"audio,omitempty"`
}

// ListenOverlay adjusts the speech-recognition section.
type ListenOverlay struct {
	Provider *Provider `json:"provider,omitempty"`
	Model    *string   `json:"model,omitempty"`
	APIKey   *string   `json:"api_key,omitempty"`
}

// ThinkOverlay adjusts the reasoning section.
type ThinkOverlay struct {
	Provider    *Provider       `json:"provider,omitempty"`
	Model       *string         `json:"model,omitempty"`
	APIKey      *string         `json:"api_key,omitempty"`
	Temperature *float64        `json:"temperature,omitempty"`
	Prompt      *string         `json:"prompt,omitempty"`
	Endpoint    *CustomEndpoint `json:"endpoint,omitempty"`
}

// SpeakOverlay adjusts the text-to-speech section.
type SpeakOverlay struct {
	Provider *Provider       `json:"provider,omitempty"`
	Voice    *string         `json:"voice,omitempty"`
	Model    *string         `json:"model,omitempty"`
	APIKey   *string         `json:"api_key,omitempty"`
	Endpoint *CustomEndpoint `json:"endpoint,omitempty"`
}

// AudioOverlay adjusts the negotiated audio format.
type AudioOverlay struct {
	InputEncoding    *string `json:"input_encoding,omitempty"`
	InputSampleRate  *int    `json:"input_sample_rate,omitempty"`
	OutputEncoding   *string `json:"output_encoding,omitempty"`
	OutputSampleRate *int    `json:"output_sample_rate,omitempty"`
	OutputContainer  *string `json:"output_container,omitempty"`
}

// apply merges the overlay onto s, field by field.
func (o *Overlay) apply(s *AgentSettings) {
	if o == nil {
		return
	}
	if o.Language != nil {
		s.Language = *o.Language
	}
	if o.Greeting != nil {
		s.Greeting = *o.Greeting
	}
	o.Listen.apply(&s.Listen)
	o.Think.apply(&s.Think)
	o.Speak.apply(&s.Speak)
	o.Audio.apply(&s.Audio)
}

func (o *ListenOverlay) apply(l *ListenConfig) {
	if o == nil {
		return
	}
	if o.Provider != nil {
		l.Provider = *o.Provider
	}
	if l.Provider == ProviderDeepgram && l.Deepgram == nil {
		l.Deepgram = &DeepgramListen{}
	}
	if l.Deepgram != nil {
		if o.Model != nil {
			l.Deepgram.Model = *o.Model
		}
		if o.APIKey != nil {
			l.Deepgram.APIKey = *o.APIKey
		}
	}
}

func (o *ThinkOverlay) apply(t *ThinkConfig) {
	if o == nil {
		return
	}
	if o.Provider != nil {
		t.Provider = *o.Provider
	}
	if o.Temperature != nil {
		t.Temperature = *o.Temperature
	}
	if o.Prompt != nil {
		t.Prompt = *o.Prompt
	}
	if o.Endpoint != nil {
		t.Custom = o.Endpoint
	}
	switch t.Provider {
	case ProviderOpenAI:
		if t.OpenAI == nil {
			t.OpenAI = &OpenAIThink{}
		}
		if o.Model != nil {
			t.OpenAI.Model = *o.Model
		}
		if o.APIKey != nil {
			t.OpenAI.APIKey = *o.APIKey
		}
	case ProviderAnthropic:
		if t.Anthropic == nil {
			t.Anthropic = &AnthropicThink{}
		}
		if o.Model != nil {
			t.Anthropic.Model = *o.Model
		}
		if o.APIKey != nil {
			t.Anthropic.APIKey = *o.APIKey
		}
	}
}

func (o *SpeakOverlay) apply(s *SpeakConfig) {
	if o == nil {
		return
	}
	if o.Provider != nil {
		s.Provider = *o.Provider
	}
	if o.Endpoint != nil {
		s.Custom = o.Endpoint
	}
	switch s.Provider {
	case ProviderDeepgram:
		if s.Deepgram == nil {
			s.Deepgram = &DeepgramSpeak{}
		}
		if o.Voice != nil {
			s.Deepgram.Voice = *o.Voice
		}
		if o.APIKey != nil {
			s.Deepgram.APIKey = *o.APIKey
		}
	case ProviderOpenAI:
		if s.OpenAI == nil {
			s.OpenAI = &OpenAISpeak{}
		}
		if o.Voice != nil {
			s.OpenAI.Voice = *o.Voice
		}
		if o.Model != nil {
			s.OpenAI.Model = *o.Model
		}
		if o.APIKey != nil {
			s.OpenAI.APIKey = *o.APIKey
		}
	case ProviderElevenLabs:
		if s.ElevenLabs == nil {
			s.ElevenLabs = &ElevenLabsSpeak{}
		}
		if o.Voice != nil {
			s.ElevenLabs.VoiceID = *o.Voice
		}
		if o.Model != nil {
			s.ElevenLabs.ModelID = *o.Model
		}
		if o.APIKey != nil {
			s.ElevenLabs.APIKey = *o.APIKey
		}
	case ProviderPolly:
		if s.Polly == nil {
			s.Polly = &PollySpeak{}
		}
		if o.Voice != nil {
			s.Polly.Voice = *o.Voice
		}
		if o.APIKey != nil {
			s.Polly.APIKey = *o.APIKey
		}
	}
}

func (o *AudioOverlay) apply(a *AudioFormat) {
	if o == nil {
		return
	}
	if o.InputEncoding != nil {
		a.InputEncoding = *o.InputEncoding
	}
	if o.InputSampleRate != nil {
		a.InputSampleRate = *o.InputSampleRate
	}
	if o.OutputEncoding != nil {
		a.OutputEncoding = *o.OutputEncoding
	}
	if o.OutputSampleRate != nil {
		a.OutputSampleRate = *o.OutputSampleRate
	}
	if o.OutputContainer != nil {
		a.OutputContainer = *o.OutputContainer
	}
}
