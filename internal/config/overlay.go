package config

import "strings"

// fileConfig is the sparse on-disk shape shared by the JSONC and YAML parsers.
// Nil fields leave the base value untouched.
type fileConfig struct {
	OpenAI *fileOpenAI `json:"OPENAI" yaml:"OPENAI"`
	Claude *fileClaude `json:"CLAUDE" yaml:"CLAUDE"`
	Speech *fileSpeech `json:"SPEECH" yaml:"SPEECH"`
	User   *fileUser   `json:"USER" yaml:"USER"`
	Debug  *fileDebug  `json:"DEBUG" yaml:"DEBUG"`
}

type fileOpenAI struct {
	APIKey      *string  `json:"API_KEY" yaml:"API_KEY"`
	Model       *string  `json:"MODEL" yaml:"MODEL"`
	MaxTokens   *int     `json:"MAX_TOKENS" yaml:"MAX_TOKENS"`
	Temperature *float64 `json:"TEMPERATURE" yaml:"TEMPERATURE"`
}

type fileClaude struct {
	APIKey    *string `json:"API_KEY" yaml:"API_KEY"`
	Model     *string `json:"MODEL" yaml:"MODEL"`
	MaxTokens *int    `json:"MAX_TOKENS" yaml:"MAX_TOKENS"`
}

type fileSpeech struct {
	Recognition *fileRecognition `json:"RECOGNITION" yaml:"RECOGNITION"`
	Synthesis   *fileSynthesis   `json:"SYNTHESIS" yaml:"SYNTHESIS"`
}

type fileRecognition struct {
	Language       *string `json:"LANGUAGE" yaml:"LANGUAGE"`
	Continuous     *bool   `json:"CONTINUOUS" yaml:"CONTINUOUS"`
	InterimResults *bool   `json:"INTERIM_RESULTS" yaml:"INTERIM_RESULTS"`
}

type fileSynthesis struct {
	Language  *string  `json:"LANGUAGE" yaml:"LANGUAGE"`
	VoiceName *string  `json:"VOICE_NAME" yaml:"VOICE_NAME"`
	Rate      *float64 `json:"RATE" yaml:"RATE"`
	Pitch     *float64 `json:"PITCH" yaml:"PITCH"`
	Volume    *float64 `json:"VOLUME" yaml:"VOLUME"`
}

type fileUser struct {
	MaxHistory     *int `json:"MAX_HISTORY" yaml:"MAX_HISTORY"`
	SessionTimeout *int `json:"SESSION_TIMEOUT" yaml:"SESSION_TIMEOUT"`
}

type fileDebug struct {
	Enabled  *bool   `json:"ENABLED" yaml:"ENABLED"`
	LogLevel *string `json:"LOG_LEVEL" yaml:"LOG_LEVEL"`
}

func (payload fileConfig) applyTo(cfg *Config) {
	if o := payload.OpenAI; o != nil {
		if o.APIKey != nil {
			cfg.OpenAI.APIKey = strings.TrimSpace(*o.APIKey)
		}
		if o.Model != nil {
			cfg.OpenAI.Model = strings.TrimSpace(*o.Model)
		}
		if o.MaxTokens != nil {
			cfg.OpenAI.MaxTokens = *o.MaxTokens
		}
		if o.Temperature != nil {
			cfg.OpenAI.Temperature = *o.Temperature
		}
	}

	if c := payload.Claude; c != nil {
		if c.APIKey != nil {
			cfg.Claude.APIKey = strings.TrimSpace(*c.APIKey)
		}
		if c.Model != nil {
			cfg.Claude.Model = strings.TrimSpace(*c.Model)
		}
		if c.MaxTokens != nil {
			cfg.Claude.MaxTokens = *c.MaxTokens
		}
	}

	if s := payload.Speech; s != nil {
		if r := s.Recognition; r != nil {
			if r.Language != nil {
				cfg.Speech.Recognition.Language = strings.TrimSpace(*r.Language)
			}
			if r.Continuous != nil {
				cfg.Speech.Recognition.Continuous = *r.Continuous
			}
			if r.InterimResults != nil {
				cfg.Speech.Recognition.InterimResults = *r.InterimResults
			}
		}
		if syn := s.Synthesis; syn != nil {
			if syn.Language != nil {
				cfg.Speech.Synthesis.Language = strings.TrimSpace(*syn.Language)
			}
			if syn.VoiceName != nil {
				cfg.Speech.Synthesis.VoiceName = *syn.VoiceName
			}
			if syn.Rate != nil {
				cfg.Speech.Synthesis.Rate = *syn.Rate
			}
			if syn.Pitch != nil {
				cfg.Speech.Synthesis.Pitch = *syn.Pitch
			}
			if syn.Volume != nil {
				cfg.Speech.Synthesis.Volume = *syn.Volume
			}
		}
	}

	if u := payload.User; u != nil {
		if u.MaxHistory != nil {
			cfg.User.MaxHistory = *u.MaxHistory
		}
		if u.SessionTimeout != nil {
			cfg.User.SessionTimeout = *u.SessionTimeout
		}
	}

	if d := payload.Debug; d != nil {
		if d.Enabled != nil {
			cfg.Debug.Enabled = *d.Enabled
		}
		if d.LogLevel != nil {
			cfg.Debug.LogLevel = normalizeLogLevel(*d.LogLevel)
		}
	}
}

func normalizeLogLevel(raw string) LogLevel {
	return LogLevel(strings.ToLower(strings.TrimSpace(raw)))
}
