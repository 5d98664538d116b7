package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestApplyEnvOverridesEveryKind(t *testing.T) {
	cfg := Default()
	applied, err := ApplyEnv(&cfg, MapLookup(map[string]string{
		"KOE_OPENAI_API_KEY":                 " sk-live ",
		"KOE_OPENAI_MAX_TOKENS":              "512",
		"KOE_OPENAI_TEMPERATURE":             "1.25",
		"KOE_SPEECH_RECOGNITION_CONTINUOUS":  "true",
		"KOE_SPEECH_SYNTHESIS_VOICE_NAME":    "Otoya",
		"KOE_USER_SESSION_TIMEOUT":           "5",
		"KOE_DEBUG_LOG_LEVEL":                "WARN",
		"KOE_SPEECH_RECOGNITION_LANGUAGE":    "en-GB",
		"UNRELATED_VARIABLE_IS_IGNORED_HERE": "x",
	}))
	require.NoError(t, err)

	require.Equal(t, "sk-live", cfg.OpenAI.APIKey)
	require.Equal(t, 512, cfg.OpenAI.MaxTokens)
	require.InDelta(t, 1.25, cfg.OpenAI.Temperature, 1e-9)
	require.True(t, cfg.Speech.Recognition.Continuous)
	require.Equal(t, "Otoya", cfg.Speech.Synthesis.VoiceName)
	require.Equal(t, 5, cfg.User.SessionTimeout)
	require.Equal(t, LogLevelWarn, cfg.Debug.LogLevel)
	require.Equal(t, "en-GB", cfg.Speech.Recognition.Language)
	require.Len(t, applied, 8)
	require.Equal(t, "KOE_OPENAI_API_KEY", applied[0])
}

func TestApplyEnvAliasesYieldToPrefixedNames(t *testing.T) {
	cfg := Default()
	applied, err := ApplyEnv(&cfg, MapLookup(map[string]string{
		"OPENAI_API_KEY":     "sk-alias",
		"KOE_CLAUDE_API_KEY": "sk-ant-prefixed",
		"ANTHROPIC_API_KEY":  "sk-ant-alias",
	}))
	require.NoError(t, err)
	require.Equal(t, "sk-alias", cfg.OpenAI.APIKey)
	require.Equal(t, "sk-ant-prefixed", cfg.Claude.APIKey)
	require.Equal(t, []string{"OPENAI_API_KEY", "KOE_CLAUDE_API_KEY"}, applied)
}

func TestApplyEnvInvalidValueNamesVariable(t *testing.T) {
	tests := map[string]string{
		"KOE_USER_MAX_HISTORY":        "many",
		"KOE_SPEECH_SYNTHESIS_PITCH":  "high",
		"KOE_DEBUG_ENABLED":           "sometimes",
		"KOE_CLAUDE_MAX_TOKENS":       "1.5",
		"KOE_SPEECH_SYNTHESIS_VOLUME": "",
	}
	for name, value := range tests {
		t.Run(name, func(t *testing.T) {
			cfg := Default()
			_, err := ApplyEnv(&cfg, MapLookup(map[string]string{name: value}))
			require.Error(t, err)
			require.Contains(t, err.Error(), name)
		})
	}
}

func TestChainLookupFirstHitWins(t *testing.T) {
	lookup := ChainLookup(
		nil,
		MapLookup(map[string]string{"A": "first"}),
		MapLookup(map[string]string{"A": "second", "B": "only"}),
	)

	value, ok := lookup("A")
	require.True(t, ok)
	require.Equal(t, "first", value)

	value, ok = lookup("B")
	require.True(t, ok)
	require.Equal(t, "only", value)

	_, ok = lookup("C")
	require.False(t, ok)
}

func TestProcessLookupTreatsBlankAsUnset(t *testing.T) {
	t.Setenv("KOE_TEST_BLANK", "  ")
	t.Setenv("KOE_TEST_SET", "value")

	_, ok := processLookup("KOE_TEST_BLANK")
	require.False(t, ok)

	value, ok := processLookup("KOE_TEST_SET")
	require.True(t, ok)
	require.Equal(t, "value", value)
}

func TestProcessLookupKeepsBlankVoiceName(t *testing.T) {
	t.Setenv("KOE_SPEECH_SYNTHESIS_VOICE_NAME", "")
	t.Setenv("KOE_OPENAI_MODEL", "")

	value, ok := processLookup("KOE_SPEECH_SYNTHESIS_VOICE_NAME")
	require.True(t, ok)
	require.Empty(t, value)

	_, ok = processLookup("KOE_OPENAI_MODEL")
	require.False(t, ok)
}

func TestLoadBlankProcessVoiceNameResetsToEngineDefault(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.jsonc")
	require.NoError(t, os.WriteFile(path, []byte(`{"OPENAI": {"MODEL": "gpt-4o"}, "SPEECH": {"SYNTHESIS": {"VOICE_NAME": "Kyoko"}}}`), 0o600))
	t.Setenv("KOE_SPEECH_SYNTHESIS_VOICE_NAME", "")
	t.Setenv("KOE_OPENAI_MODEL", "  ")

	loaded, err := Load(Options{ConfigPath: path})
	require.NoError(t, err)
	require.Empty(t, loaded.Config.Speech.Synthesis.VoiceName)
	require.Equal(t, "gpt-4o", loaded.Config.OpenAI.Model)
	require.Contains(t, loaded.Sources, "env:KOE_SPEECH_SYNTHESIS_VOICE_NAME")
}

func TestReadDotenv(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("# secrets\nKOE_OPENAI_API_KEY=sk-from-file\nexport ANTHROPIC_API_KEY=\"sk-ant-file\"\n"), 0o600))

	values, err := ReadDotenv(path)
	require.NoError(t, err)
	require.Equal(t, "sk-from-file", values["KOE_OPENAI_API_KEY"])
	require.Equal(t, "sk-ant-file", values["ANTHROPIC_API_KEY"])

	_, err = ReadDotenv(filepath.Join(t.TempDir(), "missing.env"))
	require.Error(t, err)
	require.Contains(t, err.Error(), "read env file")
}
