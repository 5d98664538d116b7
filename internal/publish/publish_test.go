package publish

import (
	"errors"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/rbright/koe/internal/config"
)

type failingScope struct{}

func (failingScope) Bind(string, config.Config) error { return errors.New("scope is read-only") }

func TestPublishBrowserLikeContextBindsGlobalOnly(t *testing.T) {
	cfg := config.Default()
	scope := NewGlobalScope()

	result, err := Publish(Host{Scope: scope}, cfg)
	require.NoError(t, err)
	require.Equal(t, Capabilities{GlobalScope: true}, result.Capabilities)
	require.Equal(t, []string{"global:CONFIG"}, result.Bindings)

	bound, ok := scope.Lookup(GlobalName)
	require.True(t, ok)
	if diff := cmp.Diff(cfg, bound); diff != "" {
		t.Fatalf("global binding mismatch (-want +got):\n%s", diff)
	}
}

func TestPublishModuleContextExportsOnly(t *testing.T) {
	cfg := config.Default()
	cfg.Speech.Recognition.Language = "en-US"
	registry := NewRegistry()

	result, err := Publish(Host{Modules: registry}, cfg)
	require.NoError(t, err)
	require.Equal(t, Capabilities{ModuleSystem: true}, result.Capabilities)
	require.Equal(t, []string{"module:config"}, result.Bindings)

	resolved, ok := registry.Resolve(ModuleName)
	require.True(t, ok)
	if diff := cmp.Diff(cfg, resolved); diff != "" {
		t.Fatalf("module export mismatch (-want +got):\n%s", diff)
	}
}

func TestPublishBothCapabilities(t *testing.T) {
	cfg := config.Default()
	scope := NewGlobalScope()
	registry := NewRegistry()

	result, err := Publish(Host{Scope: scope, Modules: registry}, cfg)
	require.NoError(t, err)
	require.Equal(t, []string{"global:CONFIG", "module:config"}, result.Bindings)

	bound, _ := scope.Lookup(GlobalName)
	resolved, _ := registry.Resolve(ModuleName)
	require.Equal(t, cfg, bound)
	require.Equal(t, cfg, resolved)
}

func TestPublishWithoutCapabilitiesIsNoop(t *testing.T) {
	result, err := Publish(Host{}, config.Default())
	require.NoError(t, err)
	require.Empty(t, result.Bindings)
	require.Equal(t, Capabilities{}, result.Capabilities)
}

func TestPublishAgainOverwrites(t *testing.T) {
	scope := NewGlobalScope()
	host := Host{Scope: scope}

	first := config.Default()
	_, err := Publish(host, first)
	require.NoError(t, err)
	_, err = Publish(host, first)
	require.NoError(t, err)
	bound, _ := scope.Lookup(GlobalName)
	require.Equal(t, first, bound)

	second := config.Default()
	second.User.MaxHistory = 99
	_, err = Publish(host, second)
	require.NoError(t, err)
	bound, _ = scope.Lookup(GlobalName)
	require.Equal(t, 99, bound.User.MaxHistory)
}

func TestPublishBindingIsACopy(t *testing.T) {
	cfg := config.Default()
	registry := NewRegistry()
	_, err := Publish(Host{Modules: registry}, cfg)
	require.NoError(t, err)

	cfg.OpenAI.Model = "mutated-after-publish"
	resolved, _ := registry.Resolve(ModuleName)
	require.Equal(t, "gpt-3.5-turbo", resolved.OpenAI.Model)
}

func TestPublishReportsSinkFailureAndContinues(t *testing.T) {
	registry := NewRegistry()
	result, err := Publish(Host{Scope: failingScope{}, Modules: registry}, config.Default())
	require.Error(t, err)
	require.Contains(t, err.Error(), "bind global CONFIG")
	require.Equal(t, []string{"module:config"}, result.Bindings)

	_, ok := registry.Resolve(ModuleName)
	require.True(t, ok)
}

func TestProcessHostPublication(t *testing.T) {
	cfg := config.Default()
	cfg.Debug.LogLevel = config.LogLevelDebug

	_, err := Publish(Process(), cfg)
	require.NoError(t, err)

	global, ok := Global()
	require.True(t, ok)
	require.Equal(t, cfg, global)

	resolved, ok := Resolve(ModuleName)
	require.True(t, ok)
	require.Equal(t, cfg, resolved)

	_, ok = Resolve("missing")
	require.False(t, ok)
}

func TestConcurrentReadersDuringPublish(t *testing.T) {
	scope := NewGlobalScope()
	host := Host{Scope: scope}
	_, err := Publish(host, config.Default())
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				cfg, ok := scope.Lookup(GlobalName)
				if !ok || cfg.OpenAI.Model == "" {
					t.Error("binding disappeared")
					return
				}
			}
		}()
	}
	for i := 0; i < 20; i++ {
		_, _ = Publish(host, config.Default())
	}
	wg.Wait()
}
