// Package config builds, layers, validates, and redacts koe configuration.
package config

// Config is the fully populated voice-assistant configuration.
//
// Serialized names match the browser CONFIG object so a published payload can
// be read back as a config file.
type Config struct {
	OpenAI OpenAIConfig `json:"OPENAI" yaml:"OPENAI"`
	Claude ClaudeConfig `json:"CLAUDE" yaml:"CLAUDE"`
	Speech SpeechConfig `json:"SPEECH" yaml:"SPEECH"`
	User   UserConfig   `json:"USER" yaml:"USER"`
	Debug  DebugConfig  `json:"DEBUG" yaml:"DEBUG"`
}

// OpenAIConfig holds the primary LLM provider credential and generation parameters.
type OpenAIConfig struct {
	APIKey      string  `json:"API_KEY" yaml:"API_KEY"`
	Model       string  `json:"MODEL" yaml:"MODEL"`
	MaxTokens   int     `json:"MAX_TOKENS" yaml:"MAX_TOKENS"`
	Temperature float64 `json:"TEMPERATURE" yaml:"TEMPERATURE"`
}

// ClaudeConfig holds the optional alternate LLM provider.
type ClaudeConfig struct {
	APIKey    string `json:"API_KEY" yaml:"API_KEY"`
	Model     string `json:"MODEL" yaml:"MODEL"`
	MaxTokens int    `json:"MAX_TOKENS" yaml:"MAX_TOKENS"`
}

// SpeechConfig groups recognition and synthesis engine options.
type SpeechConfig struct {
	Recognition RecognitionConfig `json:"RECOGNITION" yaml:"RECOGNITION"`
	Synthesis   SynthesisConfig   `json:"SYNTHESIS" yaml:"SYNTHESIS"`
}

// RecognitionConfig controls the speech recognition engine.
type RecognitionConfig struct {
	Language       string `json:"LANGUAGE" yaml:"LANGUAGE"`
	Continuous     bool   `json:"CONTINUOUS" yaml:"CONTINUOUS"`
	InterimResults bool   `json:"INTERIM_RESULTS" yaml:"INTERIM_RESULTS"`
}

// SynthesisConfig controls the speech synthesis engine.
// An empty VoiceName selects the engine default voice.
type SynthesisConfig struct {
	Language  string  `json:"LANGUAGE" yaml:"LANGUAGE"`
	VoiceName string  `json:"VOICE_NAME" yaml:"VOICE_NAME"`
	Rate      float64 `json:"RATE" yaml:"RATE"`
	Pitch     float64 `json:"PITCH" yaml:"PITCH"`
	Volume    float64 `json:"VOLUME" yaml:"VOLUME"`
}

// UserConfig is the session policy.
type UserConfig struct {
	MaxHistory int `json:"MAX_HISTORY" yaml:"MAX_HISTORY"`
	// SessionTimeout is expressed in minutes.
	SessionTimeout int `json:"SESSION_TIMEOUT" yaml:"SESSION_TIMEOUT"`
}

// DebugConfig is the diagnostics policy.
type DebugConfig struct {
	Enabled  bool     `json:"ENABLED" yaml:"ENABLED"`
	LogLevel LogLevel `json:"LOG_LEVEL" yaml:"LOG_LEVEL"`
}

// LogLevel is one of error, warn, info, debug.
type LogLevel string

const (
	LogLevelError LogLevel = "error"
	LogLevelWarn  LogLevel = "warn"
	LogLevelInfo  LogLevel = "info"
	LogLevelDebug LogLevel = "debug"
)

// Valid reports whether l is a known log level.
func (l LogLevel) Valid() bool {
	switch l {
	case LogLevelError, LogLevelWarn, LogLevelInfo, LogLevelDebug:
		return true
	default:
		return false
	}
}

// Warning is a non-fatal load/validation message.
type Warning struct {
	Line    int
	Message string
}
