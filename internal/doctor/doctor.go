// Package doctor runs readiness diagnostics for config, credentials, audio
// devices, and (optionally) the LLM providers.
package doctor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/rbright/koe/internal/audio"
	"github.com/rbright/koe/internal/config"
)

const (
	// DefaultClaudeBaseURL is the Anthropic API root.
	DefaultClaudeBaseURL = "https://api.anthropic.com"
	anthropicVersion     = "2023-06-01"
	probeTimeout         = 5 * time.Second
)

// Check is one doctor assertion result.
type Check struct {
	Name    string
	Pass    bool
	Message string
}

// Report is the full doctor output contract.
type Report struct {
	Checks []Check
}

// OK returns true when all checks pass.
func (r Report) OK() bool {
	for _, check := range r.Checks {
		if !check.Pass {
			return false
		}
	}
	return true
}

// String renders the report as user-facing text output.
func (r Report) String() string {
	var b strings.Builder
	for _, check := range r.Checks {
		status := "OK"
		if !check.Pass {
			status = "FAIL"
		}
		b.WriteString(fmt.Sprintf("[%s] %s: %s\n", status, check.Name, check.Message))
	}
	return strings.TrimSuffix(b.String(), "\n")
}

// Options tunes which checks run and where they connect.
type Options struct {
	// Online enables the provider model probes.
	Online bool
	// OpenAIBaseURL overrides the go-openai default API root.
	OpenAIBaseURL string
	// ClaudeBaseURL overrides DefaultClaudeBaseURL.
	ClaudeBaseURL string
	HTTPClient    *http.Client
	// Devices lists audio devices; nil uses the live Pulse server.
	Devices func(context.Context) (audio.Inventory, error)
}

func (o Options) httpClient() *http.Client {
	if o.HTTPClient != nil {
		return o.HTTPClient
	}
	return &http.Client{Timeout: probeTimeout}
}

// Run executes the checks for a loaded config.
func Run(ctx context.Context, loaded config.Loaded, opts Options) Report {
	cfg := loaded.Config
	checks := []Check{checkConfig(loaded)}
	checks = append(checks, checkValidation(cfg)...)
	checks = append(checks, checkOpenAICredential(cfg), checkClaudeCredential(cfg))

	devices := opts.Devices
	if devices == nil {
		devices = audio.ListDevices
	}
	inv, err := devices(ctx)
	checks = append(checks, checkInput(inv, err), checkOutput(inv, err))

	if opts.Online {
		checks = append(checks, checkOpenAIModel(ctx, cfg.OpenAI, opts))
		checks = append(checks, checkClaudeModel(ctx, cfg, opts))
	}
	return Report{Checks: checks}
}

func checkConfig(loaded config.Loaded) Check {
	if !loaded.Exists {
		return Check{Name: "config", Pass: true, Message: fmt.Sprintf("%q not found; using defaults", loaded.Path)}
	}
	return Check{Name: "config", Pass: true, Message: fmt.Sprintf("loaded %q", loaded.Path)}
}

func checkValidation(cfg config.Config) []Check {
	_, err := config.Validate(cfg)
	if err == nil {
		return []Check{{Name: "validation", Pass: true, Message: "all fields valid"}}
	}

	var cfgErr *config.Error
	if !errors.As(err, &cfgErr) {
		return []Check{{Name: "validation", Pass: false, Message: err.Error()}}
	}
	checks := make([]Check, 0, len(cfgErr.Issues))
	for _, issue := range cfgErr.Issues {
		checks = append(checks, Check{Name: "validation", Pass: false, Message: issue.String()})
	}
	return checks
}

func checkOpenAICredential(cfg config.Config) Check {
	if config.IsPlaceholderCredential(cfg.OpenAI.APIKey) {
		return Check{Name: "credentials.openai", Pass: false, Message: "OPENAI.API_KEY is empty or a placeholder"}
	}
	return Check{Name: "credentials.openai", Pass: true, Message: "configured " + config.Redact(cfg).OpenAI.APIKey}
}

func checkClaudeCredential(cfg config.Config) Check {
	if !config.ClaudeEnabled(cfg) {
		return Check{Name: "credentials.claude", Pass: true, Message: "disabled (no credential)"}
	}
	return Check{Name: "credentials.claude", Pass: true, Message: "configured " + config.Redact(cfg).Claude.APIKey}
}

func checkInput(inv audio.Inventory, listErr error) Check {
	const name = "speech.recognition.input"
	if listErr != nil {
		return Check{Name: name, Pass: false, Message: listErr.Error()}
	}
	source, ok := inv.DefaultSource()
	if !ok {
		return Check{Name: name, Pass: false, Message: "no default audio source"}
	}
	if !source.Usable() {
		reason := "muted"
		if !source.Available {
			reason = "not available"
		}
		return Check{Name: name, Pass: false, Message: fmt.Sprintf("default source %q is %s", source.ID, reason)}
	}
	return Check{Name: name, Pass: true, Message: fmt.Sprintf("default source %q (%s)", source.ID, source.Description)}
}

func checkOutput(inv audio.Inventory, listErr error) Check {
	const name = "speech.synthesis.output"
	if listErr != nil {
		return Check{Name: name, Pass: false, Message: listErr.Error()}
	}
	sink, ok := inv.DefaultSink()
	if !ok {
		return Check{Name: name, Pass: false, Message: "no default audio sink"}
	}
	if !sink.Available {
		return Check{Name: name, Pass: false, Message: fmt.Sprintf("default sink %q is not available", sink.ID)}
	}
	message := fmt.Sprintf("default sink %q (%s)", sink.ID, sink.Description)
	if sink.Muted {
		message += " is muted"
	}
	return Check{Name: name, Pass: true, Message: message}
}

// checkOpenAIModel lists models with the configured key and looks for OPENAI.MODEL.
func checkOpenAIModel(ctx context.Context, cfg config.OpenAIConfig, opts Options) Check {
	const name = "openai.model"
	if config.IsPlaceholderCredential(cfg.APIKey) {
		return Check{Name: name, Pass: false, Message: "cannot probe without a credential"}
	}

	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if base := strings.TrimSpace(opts.OpenAIBaseURL); base != "" {
		clientCfg.BaseURL = strings.TrimRight(base, "/")
	}
	clientCfg.HTTPClient = opts.httpClient()
	client := openai.NewClientWithConfig(clientCfg)

	ctx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()

	models, err := client.ListModels(ctx)
	if err != nil {
		var apiErr *openai.APIError
		if errors.As(err, &apiErr) {
			return Check{Name: name, Pass: false, Message: fmt.Sprintf("HTTP %d: %s", apiErr.HTTPStatusCode, apiErr.Message)}
		}
		return Check{Name: name, Pass: false, Message: fmt.Sprintf("list models: %v", err)}
	}
	for _, model := range models.Models {
		if model.ID == cfg.Model {
			return Check{Name: name, Pass: true, Message: fmt.Sprintf("model %q is available", cfg.Model)}
		}
	}
	return Check{Name: name, Pass: false, Message: fmt.Sprintf("model %q not offered to this key", cfg.Model)}
}

// checkClaudeModel retrieves CLAUDE.MODEL from the Anthropic models API.
func checkClaudeModel(ctx context.Context, cfg config.Config, opts Options) Check {
	const name = "claude.model"
	if !config.ClaudeEnabled(cfg) {
		return Check{Name: name, Pass: true, Message: "skipped (claude disabled)"}
	}

	base := strings.TrimSpace(opts.ClaudeBaseURL)
	if base == "" {
		base = DefaultClaudeBaseURL
	}
	endpoint := strings.TrimRight(base, "/") + "/v1/models/" + url.PathEscape(cfg.Claude.Model)

	ctx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return Check{Name: name, Pass: false, Message: fmt.Sprintf("build request: %v", err)}
	}
	req.Header.Set("x-api-key", cfg.Claude.APIKey)
	req.Header.Set("anthropic-version", anthropicVersion)

	resp, err := opts.httpClient().Do(req)
	if err != nil {
		return Check{Name: name, Pass: false, Message: fmt.Sprintf("request failed: %v", err)}
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		message := fmt.Sprintf("HTTP %d", resp.StatusCode)
		if detail := anthropicErrorMessage(body); detail != "" {
			message += ": " + detail
		}
		return Check{Name: name, Pass: false, Message: message}
	}
	return Check{Name: name, Pass: true, Message: fmt.Sprintf("model %q is available", cfg.Claude.Model)}
}

func anthropicErrorMessage(body []byte) string {
	var payload struct {
		Error struct {
			Type    string `json:"type"`
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}
	return strings.TrimSpace(payload.Error.Message)
}
