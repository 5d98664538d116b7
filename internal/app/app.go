// Package app dispatches koe commands.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/rbright/koe/internal/audio"
	"github.com/rbright/koe/internal/cli"
	"github.com/rbright/koe/internal/config"
	"github.com/rbright/koe/internal/doctor"
	"github.com/rbright/koe/internal/ipc"
	"github.com/rbright/koe/internal/logging"
	"github.com/rbright/koe/internal/publish"
	"github.com/rbright/koe/internal/version"
)

const (
	defaultScriptPath = "config.js"
	resolveTimeout    = 500 * time.Millisecond
)

type Runner struct {
	Stdout io.Writer
	Stderr io.Writer
	Logger *slog.Logger

	// Devices replaces the live Pulse device listing.
	Devices func(context.Context) (audio.Inventory, error)
	// Doctor seeds doctor options; Online and Devices are filled per run.
	Doctor doctor.Options
}

func Execute(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	r := Runner{Stdout: stdout, Stderr: stderr}
	return r.Execute(ctx, args)
}

func (r Runner) Execute(ctx context.Context, args []string) int {
	parsed, err := cli.Parse(args)
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n\n", err)
		fmt.Fprint(r.Stderr, cli.HelpText("koe"))
		return 2
	}

	if parsed.ShowHelp {
		fmt.Fprint(r.Stdout, cli.HelpText("koe"))
		return 0
	}

	if parsed.Command == cli.CommandVersion {
		fmt.Fprintln(r.Stdout, version.String())
		return 0
	}

	logRuntime, err := logging.New()
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: setup logging: %v\n", err)
		return 1
	}
	defer func() { _ = logRuntime.Close() }()

	logger := r.Logger
	if logger == nil {
		logger = logRuntime.Logger
	}

	if parsed.Command == cli.CommandGet {
		return r.commandGet(ctx, parsed, logger)
	}

	cfgLoaded, err := config.Load(config.Options{ConfigPath: parsed.ConfigPath, EnvFile: parsed.EnvFile})
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		logger.Error("load config failed", "error", err.Error())
		return 1
	}
	logRuntime.Configure(cfgLoaded.Config.Debug)
	r.printWarnings(logger, cfgLoaded.Warnings)

	logger.Debug("config sources", "sources", cfgLoaded.Sources)
	logger.Info("command start",
		"command", parsed.Command,
		"config", cfgLoaded.Path,
		"log", logRuntime.Path,
	)

	switch parsed.Command {
	case cli.CommandShow:
		return r.commandShow(parsed, cfgLoaded.Config)
	case cli.CommandCheck:
		if err := r.validate(logger, parsed, cfgLoaded.Config); err != nil {
			return 1
		}
		fmt.Fprintf(r.Stdout, "config ok: %s\n", describeSource(cfgLoaded))
		return 0
	case cli.CommandDoctor:
		opts := r.Doctor
		opts.Online = parsed.Online
		opts.Devices = r.Devices
		report := doctor.Run(ctx, cfgLoaded, opts)
		fmt.Fprintln(r.Stdout, report.String())
		if report.OK() {
			return 0
		}
		return 1
	case cli.CommandRender:
		return r.commandRender(logger, parsed, cfgLoaded.Config)
	case cli.CommandServe:
		return r.commandServe(ctx, logger, parsed, cfgLoaded.Config)
	case cli.CommandDevices:
		return r.commandDevices(ctx)
	default:
		fmt.Fprintf(r.Stderr, "error: unsupported command %q\n", parsed.Command)
		return 2
	}
}

func (r Runner) printWarnings(logger *slog.Logger, warnings []config.Warning) {
	for _, w := range warnings {
		msg := w.Message
		if w.Line > 0 {
			msg = fmt.Sprintf("line %d: %s", w.Line, w.Message)
		}
		fmt.Fprintf(r.Stderr, "warning: %s\n", msg)
		logger.Warn("config warning", "line", w.Line, "message", w.Message)
	}
}

// validate prints validation warnings and issues. With --allow-placeholders
// missing credentials are reported as warnings instead.
func (r Runner) validate(logger *slog.Logger, parsed cli.Parsed, cfg config.Config) error {
	warnings, err := config.Validate(cfg)
	r.printWarnings(logger, warnings)
	if err == nil {
		return nil
	}

	var cfgErr *config.Error
	if !errors.As(err, &cfgErr) {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		return err
	}

	if parsed.AllowPlaceholders {
		for _, field := range cfgErr.Fields(config.KindMissingCredential) {
			fmt.Fprintf(r.Stderr, "warning: %s is empty or a placeholder\n", field)
		}
		cfgErr = cfgErr.Without(config.KindMissingCredential)
		if cfgErr == nil {
			return nil
		}
	}

	for _, issue := range cfgErr.Issues {
		fmt.Fprintf(r.Stderr, "invalid: %s\n", issue)
	}
	logger.Error("config invalid", "issues", len(cfgErr.Issues), "error", cfgErr.Error())
	return cfgErr
}

func (r Runner) commandShow(parsed cli.Parsed, cfg config.Config) int {
	if !parsed.Reveal {
		cfg = config.Redact(cfg)
	}

	var node any = cfg
	if strings.TrimSpace(parsed.Section) != "" {
		section, err := config.Section(cfg, parsed.Section)
		if err != nil {
			fmt.Fprintf(r.Stderr, "error: %v\n", err)
			return 1
		}
		node = section
	}

	if err := encode(r.Stdout, parsed.Format, node); err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		return 1
	}
	return 0
}

func (r Runner) commandRender(logger *slog.Logger, parsed cli.Parsed, cfg config.Config) int {
	if err := r.validate(logger, parsed, cfg); err != nil {
		return 1
	}

	out := parsed.Out
	if strings.TrimSpace(out) == "" {
		out = defaultScriptPath
	}

	result, err := publish.Publish(publish.NewScriptFile(out).Host(parsed.Target), cfg)
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		logger.Error("render failed", "path", out, "error", err.Error())
		return 1
	}

	logger.Info("script rendered", "path", out, "target", parsed.Target, "bindings", result.Bindings)
	fmt.Fprintf(r.Stdout, "wrote %s (%s)\n", out, strings.Join(result.Bindings, ", "))
	return 0
}

func (r Runner) commandServe(ctx context.Context, logger *slog.Logger, parsed cli.Parsed, cfg config.Config) int {
	if err := r.validate(logger, parsed, cfg); err != nil {
		return 1
	}

	socketPath, err := ipc.RuntimeSocketPath()
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		return 1
	}

	result, err := publish.Publish(publish.Process(), cfg)
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		return 1
	}
	if strings.TrimSpace(parsed.Out) != "" {
		scriptResult, err := publish.Publish(publish.NewScriptFile(parsed.Out).Host(parsed.Target), cfg)
		if err != nil {
			fmt.Fprintf(r.Stderr, "error: %v\n", err)
			return 1
		}
		logger.Info("script rendered", "path", parsed.Out, "bindings", scriptResult.Bindings)
	}

	listener, err := ipc.Acquire(ctx, socketPath, 180*time.Millisecond, 8)
	if err != nil {
		if errors.Is(err, ipc.ErrAlreadyRunning) {
			fmt.Fprintf(r.Stderr, "error: %v on %s\n", err, socketPath)
		} else {
			fmt.Fprintf(r.Stderr, "error: %v\n", err)
		}
		return 1
	}
	defer func() {
		_ = listener.Close()
		_ = os.Remove(socketPath)
	}()

	logger.Info("serving config", "socket", socketPath, "bindings", result.Bindings)
	fmt.Fprintf(r.Stdout, "serving %s on %s\n", publish.ModuleName, socketPath)

	if err := ipc.Serve(ctx, listener, publish.ResolveHandler(publish.ProcessRegistry())); err != nil {
		fmt.Fprintf(r.Stderr, "error: ipc server failed: %v\n", err)
		logger.Error("ipc server failed", "error", err.Error())
		return 1
	}
	logger.Info("server stopped")
	return 0
}

func (r Runner) commandGet(ctx context.Context, parsed cli.Parsed, logger *slog.Logger) int {
	socketPath, err := ipc.RuntimeSocketPath()
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		return 1
	}

	payload, err := ipc.Resolve(ctx, socketPath, publish.ModuleName, parsed.Section, resolveTimeout)
	if err != nil {
		if ipc.IsUnreachable(err) {
			fmt.Fprintln(r.Stderr, "error: no koe server running")
		} else {
			fmt.Fprintf(r.Stderr, "error: %v\n", err)
		}
		logger.Error("resolve failed", "socket", socketPath, "error", err.Error())
		return 1
	}

	node, err := decodePayload(payload)
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		return 1
	}
	if !parsed.Reveal {
		node = redactTree(node)
		if key, ok := node.(string); ok && strings.HasSuffix(strings.ToUpper(parsed.Section), "API_KEY") {
			node = config.MaskCredential(key)
		}
	}
	if err := encode(r.Stdout, parsed.Format, node); err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		return 1
	}
	return 0
}

func (r Runner) commandDevices(ctx context.Context) int {
	list := r.Devices
	if list == nil {
		list = audio.ListDevices
	}

	inv, err := list(ctx)
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		return 1
	}
	if len(inv.Sources) == 0 && len(inv.Sinks) == 0 {
		fmt.Fprintln(r.Stdout, "no audio devices found")
		return 1
	}

	for _, device := range inv.Sources {
		fmt.Fprintln(r.Stdout, device.String())
	}
	for _, device := range inv.Sinks {
		fmt.Fprintln(r.Stdout, device.String())
	}
	return 0
}

func describeSource(loaded config.Loaded) string {
	if !loaded.Exists {
		return "defaults"
	}
	return loaded.Path
}
