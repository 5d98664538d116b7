package config

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNormalizeJSONCRemovesCommentsAndTrailingCommas(t *testing.T) {
	input := `
{
  // line comment
  "items": [
    "one", /* block comment */
    "two",
  ],
  "nested": {
    "enabled": true,
  },
}
`

	normalized, err := normalizeJSONC(input)
	require.NoError(t, err)
	require.NotContains(t, normalized, "//")
	require.NotContains(t, normalized, "/*")
	require.NotContains(t, normalized, ",]")
	require.NotContains(t, normalized, ",}")
}

func TestNormalizeJSONCRetainsCommentLikeTextInsideStrings(t *testing.T) {
	input := `{"value":"contains // and /* comment-like */ text",}`
	normalized, err := normalizeJSONC(input)
	require.NoError(t, err)
	require.Contains(t, normalized, "// and /* comment-like */")
}

func TestNormalizeJSONCUnterminatedBlockCommentFails(t *testing.T) {
	_, err := normalizeJSONC("{ /* unterminated ")
	require.Error(t, err)
	require.Contains(t, err.Error(), "unterminated block comment")
}

func TestEnsureSingleJSONValueRejectsExtraPayload(t *testing.T) {
	decoder := json.NewDecoder(strings.NewReader(`{"one":1}{"two":2}`))
	var payload map[string]any
	require.NoError(t, decoder.Decode(&payload))

	err := ensureSingleJSONValue(decoder)
	require.Error(t, err)
	require.Contains(t, err.Error(), "multiple JSON values")
}

func TestOffsetToLineCol(t *testing.T) {
	content := "line1\nline2\nline3"
	line, col := offsetToLineCol(content, 1)
	require.Equal(t, 1, line)
	require.Equal(t, 1, col)

	line, col = offsetToLineCol(content, 8) // line2, col2
	require.Equal(t, 2, line)
	require.Equal(t, 2, col)

	line, col = offsetToLineCol(content, 999)
	require.Equal(t, 3, line)
	require.Equal(t, 5, col)
}

func TestParseJSONCOverlaysOnlyNamedFields(t *testing.T) {
	cfg, warnings, err := parseJSONC(`{
  // secrets come from the environment
  "OPENAI": {"MODEL": " gpt-4o-mini ", "TEMPERATURE": 0.2,},
  "SPEECH": {"SYNTHESIS": {"RATE": 1.5, "VOICE_NAME": "Kyoko"}},
  "DEBUG": {"LOG_LEVEL": " DEBUG "},
}`, Default())
	require.NoError(t, err)
	require.Empty(t, warnings)

	want := Default()
	want.OpenAI.Model = "gpt-4o-mini"
	want.OpenAI.Temperature = 0.2
	want.Speech.Synthesis.Rate = 1.5
	want.Speech.Synthesis.VoiceName = "Kyoko"
	want.Debug.LogLevel = LogLevelDebug
	require.Equal(t, want, cfg)
}

func TestParseJSONCRejectsUnknownField(t *testing.T) {
	_, _, err := parseJSONC(`{"OPENAI": {"ORGANIZATION": "acme"}}`, Default())
	require.Error(t, err)
	require.ErrorIs(t, err, ErrUnknownField)
	require.Contains(t, err.Error(), "ORGANIZATION")
}

func TestParseJSONCRejectsMultipleTopLevelValues(t *testing.T) {
	_, _, err := parseJSONC(`{"USER":{"MAX_HISTORY":1}}{"USER":{"MAX_HISTORY":2}}`, Default())
	require.Error(t, err)
	require.Contains(t, err.Error(), "multiple JSON values")
	require.NotErrorIs(t, err, ErrUnknownField)

	for _, trailing := range []string{`{}`, `[1, 2]`, `"extra"`, `{"NOT_A_SECTION": true}`} {
		_, _, err := parseJSONC(`{"USER": {"MAX_HISTORY": 1}}`+"\n"+trailing, Default())
		require.Error(t, err, trailing)
		require.Contains(t, err.Error(), "multiple JSON values", trailing)
	}
}

func TestEnsureSingleJSONValueIgnoresStrictFieldChecks(t *testing.T) {
	decoder := json.NewDecoder(strings.NewReader(`{"USER":{}} {"USER":{"MAX_HISTORY":2}}`))
	decoder.DisallowUnknownFields()
	var payload fileConfig
	require.NoError(t, decoder.Decode(&payload))

	err := ensureSingleJSONValue(decoder)
	require.EqualError(t, err, "multiple JSON values are not allowed")
}

func TestParseJSONCTypeErrorIncludesLocation(t *testing.T) {
	_, _, err := parseJSONC(`{
  "USER": {"MAX_HISTORY": "ten"}
}`, Default())
	require.Error(t, err)
	require.Contains(t, err.Error(), "line 2")
	require.Contains(t, err.Error(), "column")
}
