package publish

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/google/renameio/v2"

	"github.com/rbright/koe/internal/config"
)

// Target selects which bindings a generated script carries.
type Target string

const (
	TargetDual   Target = "dual"
	TargetGlobal Target = "global"
	TargetModule Target = "module"
)

// ParseTarget validates a target name; empty means dual.
func ParseTarget(raw string) (Target, error) {
	switch Target(raw) {
	case "", TargetDual:
		return TargetDual, nil
	case TargetGlobal, TargetModule:
		return Target(raw), nil
	default:
		return "", fmt.Errorf("unknown script target %q (want dual, global, or module)", raw)
	}
}

// ScriptFile is a browser script sink. Bound as a Scope it emits a
// window.<name> assignment; bound as a ModuleSystem it emits a module.exports
// assignment. Each binding is guarded by a probe for its host capability, so
// the same file works from a script tag and from a bundler.
//
// The file is rewritten atomically once every binding its target asks for has
// been staged, so a dual publish produces a single write.
type ScriptFile struct {
	Path string
	Perm os.FileMode

	mu         sync.Mutex
	target     Target
	value      config.Config
	globalName string
	exported   bool
}

// NewScriptFile returns a sink writing to path with mode 0644.
func NewScriptFile(path string) *ScriptFile {
	return &ScriptFile{Path: path, Perm: 0o644}
}

// Host returns a host exposing the capabilities selected by target. It resets
// the staged bindings, so the next publish writes exactly the guards of target.
func (f *ScriptFile) Host(target Target) Host {
	if target != TargetGlobal && target != TargetModule {
		target = TargetDual
	}

	f.mu.Lock()
	f.target = target
	f.globalName = ""
	f.exported = false
	f.mu.Unlock()

	switch target {
	case TargetGlobal:
		return Host{Scope: f}
	case TargetModule:
		return Host{Modules: f}
	default:
		return Host{Scope: f, Modules: f}
	}
}

func (f *ScriptFile) Bind(name string, cfg config.Config) error {
	if !isIdentifier(name) {
		return fmt.Errorf("global name %q is not a valid identifier", name)
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.value = cfg
	f.globalName = name
	if !f.readyLocked() {
		return nil
	}
	return f.flushLocked()
}

func (f *ScriptFile) Export(_ string, cfg config.Config) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.value = cfg
	f.exported = true
	if !f.readyLocked() {
		return nil
	}
	return f.flushLocked()
}

// readyLocked reports whether every binding of the target is staged. Without a
// target each binding is written as it arrives.
func (f *ScriptFile) readyLocked() bool {
	switch f.target {
	case TargetDual:
		return f.globalName != "" && f.exported
	case TargetGlobal:
		return f.globalName != ""
	case TargetModule:
		return f.exported
	default:
		return true
	}
}

func (f *ScriptFile) flushLocked() error {
	var buf bytes.Buffer
	if err := renderScript(&buf, f.value, f.globalName, f.exported); err != nil {
		return err
	}

	perm := f.Perm
	if perm == 0 {
		perm = 0o644
	}
	pending, err := renameio.NewPendingFile(f.Path, renameio.WithPermissions(perm))
	if err != nil {
		return fmt.Errorf("create pending script %s: %w", f.Path, err)
	}
	defer func() { _ = pending.Cleanup() }()

	if _, err := pending.Write(buf.Bytes()); err != nil {
		return fmt.Errorf("write script %s: %w", f.Path, err)
	}
	if err := pending.CloseAtomicallyReplace(); err != nil {
		return fmt.Errorf("replace script %s: %w", f.Path, err)
	}
	return nil
}

// RenderScript writes the script for target to w.
func RenderScript(w io.Writer, cfg config.Config, target Target) error {
	globalName := ""
	if target != TargetModule {
		globalName = GlobalName
	}
	return renderScript(w, cfg, globalName, target != TargetGlobal)
}

func renderScript(w io.Writer, cfg config.Config, globalName string, exported bool) error {
	literal, err := json.MarshalIndent(cfg, "", "    ")
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}

	constName := globalName
	if constName == "" {
		constName = GlobalName
	}

	var buf bytes.Buffer
	buf.WriteString("// Generated by koe. Edit the koe configuration and re-render instead.\n\n")
	fmt.Fprintf(&buf, "const %s = %s;\n", constName, literal)
	if globalName != "" {
		fmt.Fprintf(&buf, "\nif (typeof window !== 'undefined') {\n    window.%s = %s;\n}\n", globalName, constName)
	}
	if exported {
		fmt.Fprintf(&buf, "\nif (typeof module !== 'undefined' && module.exports) {\n    module.exports = %s;\n}\n", constName)
	}

	_, err = w.Write(buf.Bytes())
	return err
}

func isIdentifier(name string) bool {
	if name == "" {
		return false
	}
	for i, r := range name {
		switch {
		case r == '_' || r == '$':
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case i > 0 && r >= '0' && r <= '9':
		default:
			return false
		}
	}
	return true
}
