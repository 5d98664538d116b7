package config

// Documented credential placeholders shipped with the default configuration.
const (
	PlaceholderOpenAIKey = "your-openai-api-key-here"
	PlaceholderClaudeKey = "your-claude-api-key-here"
)

// Default returns the canonical configuration. It performs no I/O and always
// returns a fully populated value.
func Default() Config {
	return Config{
		OpenAI: OpenAIConfig{
			APIKey:      PlaceholderOpenAIKey,
			Model:       "gpt-3.5-turbo",
			MaxTokens:   150,
			Temperature: 0.7,
		},
		Claude: ClaudeConfig{
			APIKey:    PlaceholderClaudeKey,
			Model:     "claude-3-sonnet-20240229",
			MaxTokens: 150,
		},
		Speech: SpeechConfig{
			Recognition: RecognitionConfig{
				Language:       "ja-JP",
				Continuous:     false,
				InterimResults: true,
			},
			Synthesis: SynthesisConfig{
				Language:  "ja-JP",
				VoiceName: "",
				Rate:      1.0,
				Pitch:     1.0,
				Volume:    1.0,
			},
		},
		User: UserConfig{
			MaxHistory:     10,
			SessionTimeout: 30,
		},
		Debug: DebugConfig{
			Enabled:  true,
			LogLevel: LogLevelInfo,
		},
	}
}
