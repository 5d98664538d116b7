// Package cli parses koe command-line arguments.
package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/rbright/koe/internal/publish"
)

type Command string

const (
	CommandShow    Command = "show"
	CommandCheck   Command = "check"
	CommandDoctor  Command = "doctor"
	CommandRender  Command = "render"
	CommandServe   Command = "serve"
	CommandGet     Command = "get"
	CommandDevices Command = "devices"
	CommandVersion Command = "version"
	CommandHelp    Command = "help"
)

var validCommands = map[Command]struct{}{
	CommandShow:    {},
	CommandCheck:   {},
	CommandDoctor:  {},
	CommandRender:  {},
	CommandServe:   {},
	CommandGet:     {},
	CommandDevices: {},
	CommandVersion: {},
	CommandHelp:    {},
}

// Format is the output encoding for show and get.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

type Parsed struct {
	Command    Command
	ConfigPath string
	EnvFile    string
	ShowHelp   bool

	Format            Format
	Reveal            bool
	Section           string
	Online            bool
	Out               string
	Target            publish.Target
	AllowPlaceholders bool
}

// valueFlags take an argument, as "--flag VALUE" or "--flag=VALUE".
var valueFlags = map[string]string{
	"--config":   "a path",
	"--env-file": "a path",
	"--format":   "json or yaml",
	"--section":  "a section path",
	"--out":      "a path",
	"--target":   "dual, global, or module",
}

func Parse(args []string) (Parsed, error) {
	parsed := Parsed{Command: CommandHelp, ShowHelp: true, Format: FormatJSON, Target: publish.TargetDual}
	sawCommand := false

	for i := 0; i < len(args); i++ {
		arg := args[i]

		name, value, hasValue := strings.Cut(arg, "=")
		if want, ok := valueFlags[name]; ok {
			if !hasValue {
				i++
				if i >= len(args) {
					return Parsed{}, fmt.Errorf("%s requires %s", name, want)
				}
				value = args[i]
			}
			if err := parsed.setValue(name, value); err != nil {
				return Parsed{}, err
			}
			continue
		}

		switch arg {
		case "-h", "--help":
			parsed.ShowHelp = true
			parsed.Command = CommandHelp
		case "--version":
			parsed.ShowHelp = false
			parsed.Command = CommandVersion
		case "--reveal":
			parsed.Reveal = true
		case "--online":
			parsed.Online = true
		case "--allow-placeholders":
			parsed.AllowPlaceholders = true
		default:
			if strings.HasPrefix(arg, "-") {
				return Parsed{}, fmt.Errorf("unknown flag: %s", arg)
			}
			if sawCommand {
				return Parsed{}, fmt.Errorf("unexpected arguments after command %q", parsed.Command)
			}

			cmd := Command(arg)
			if _, ok := validCommands[cmd]; !ok {
				return Parsed{}, fmt.Errorf("unknown command: %s", arg)
			}

			sawCommand = true
			parsed.Command = cmd
			parsed.ShowHelp = cmd == CommandHelp
		}
	}

	return parsed, nil
}

func (p *Parsed) setValue(name, value string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("%s requires %s", name, valueFlags[name])
	}

	switch name {
	case "--config":
		p.ConfigPath = value
	case "--env-file":
		p.EnvFile = value
	case "--format":
		switch Format(strings.ToLower(value)) {
		case FormatJSON:
			p.Format = FormatJSON
		case FormatYAML, "yml":
			p.Format = FormatYAML
		default:
			return fmt.Errorf("unknown format %q (want json or yaml)", value)
		}
	case "--section":
		p.Section = value
	case "--out":
		p.Out = value
	case "--target":
		target, err := publish.ParseTarget(value)
		if err != nil {
			return err
		}
		p.Target = target
	default:
		return errors.New("unhandled flag " + name)
	}
	return nil
}

func HelpText(binaryName string) string {
	return fmt.Sprintf(`Usage:
  %[1]s [--config PATH] [--env-file PATH] [flags] <command>

Commands:
  show      Print the resolved configuration (secrets redacted)
  check     Validate the configuration
  doctor    Run configuration, credential, and audio checks
  render    Write a browser config.js publishing CONFIG
  serve     Publish in-process and answer resolve requests on the socket
  get       Resolve the configuration from a running server
  devices   List audio sources and sinks
  version   Print version information
  help      Show this help

Flags:
  --config PATH          Config file path (default: $XDG_CONFIG_HOME/koe/config.jsonc)
  --env-file PATH        Dotenv file with secrets (default: .env beside the config file)
  --format json|yaml     Output format for show and get (default: json)
  --reveal               Show full API keys in show output
  --section PATH         Limit show and get to a section, e.g. SPEECH.SYNTHESIS
  --online               Let doctor probe the OpenAI and Claude model APIs
  --out PATH             Script path for render and serve (default: config.js for render)
  --target TARGET        Script bindings: dual, global, or module (default: dual)
  --allow-placeholders   Accept placeholder API keys in check, render, and serve
  -h, --help             Show help
  --version              Show version
`, binaryName)
}
