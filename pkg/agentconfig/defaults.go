package agentconfig

// Compiled-in provider defaults, the lowest-precedence merge layer. Telephony
// audio is companded narrowband on both legs; everything else here is the
// stack the service runs with an operator key and nothing else configured.
func defaultSettings() AgentSettings {
	return AgentSettings{
		Language: "en-US",
		Listen: ListenConfig{
			Provider: ProviderDeepgram,
			Deepgram: &DeepgramListen{Model: "nova-2"},
		},
		Think: ThinkConfig{
			Provider:    ProviderOpenAI,
			Temperature: 0.7,
			OpenAI:      &OpenAIThink{Model: "gpt-4o-mini"},
		},
		Speak: SpeakConfig{
			Provider: ProviderDeepgram,
			Deepgram: &DeepgramSpeak{Voice: "aura-asteria-en"},
		},
		Audio: AudioFormat{
			InputEncoding:    "mulaw",
			InputSampleRate:  8000,
			OutputEncoding:   "mulaw",
			OutputSampleRate: 8000,
			OutputContainer:  "none",
		},
	}
}
