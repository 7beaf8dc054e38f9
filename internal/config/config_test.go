package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("OPENAI_API_KEY", "sk-env")

	cfg, err := Load("")
	require.NoError(t, err)
	require.Equal(t, "sk-env", cfg.Upstream.APIKey)
	require.Equal(t, "https://openrouter.ai/api/v1", cfg.Upstream.BaseURL)
	require.Equal(t, "openai/gpt-3.5-turbo", cfg.Upstream.Model)
	require.Equal(t, "https://worldtriplink.com", cfg.Upstream.Referer)
	require.Equal(t, "WTL Tourism", cfg.Upstream.Title)
	require.Equal(t, 30*time.Second, cfg.Upstream.Timeout)
	require.Equal(t, ":8080", cfg.Relay.ListenAddr)
	require.Zero(t, cfg.Relay.MaxContextMessages)
	require.Equal(t, "http://localhost:8080/api/chat", cfg.Widget.RelayURL)
	require.True(t, cfg.Upstream.HasCredential())
}

func TestLoad_YAMLFileThenEnvOverrides(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	path := filepath.Join(dir, "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(`
upstream:
  api_key_param: /wtl/openrouter-key
  model: openai/gpt-4o-mini
relay:
  max_context_messages: 12
`), 0o600))
	t.Setenv("MAX_CONTEXT_MESSAGES", "20")

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "/wtl/openrouter-key", cfg.Upstream.APIKeyParam)
	require.Equal(t, "openai/gpt-4o-mini", cfg.Upstream.Model)
	require.Equal(t, 20, cfg.Relay.MaxContextMessages)
	require.True(t, cfg.Upstream.HasCredential())
}

func TestLoad_DotEnvFile(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("RELAY_URL=http://relay.test/api/chat\n"), 0o600))
	t.Cleanup(func() { _ = os.Unsetenv("RELAY_URL") })

	cfg, err := Load("")
	require.NoError(t, err)
	require.Equal(t, "http://relay.test/api/chat", cfg.Widget.RelayURL)
}

func TestLoad_RejectsNegativeWindow(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("MAX_CONTEXT_MESSAGES", "-1")

	_, err := Load("")
	require.ErrorContains(t, err, "max context")
}

func TestLoad_MissingFile(t *testing.T) {
	t.Chdir(t.TempDir())
	_, err := Load("does-not-exist.yml")
	require.Error(t, err)
}

func TestHasCredential(t *testing.T) {
	require.False(t, Upstream{}.HasCredential())
	require.False(t, Upstream{APIKey: "  "}.HasCredential())
	require.True(t, Upstream{APIKeyParam: "/p"}.HasCredential())
}
