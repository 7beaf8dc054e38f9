package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"wtl-assistant/internal/config"
)

func TestLoadConfig_ReadsFileFromConfigPath(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	path := filepath.Join(dir, "relay.yaml")
	require.NoError(t, os.WriteFile(path, []byte("relay:\n  listen_addr: \":9090\"\n"), 0o600))
	t.Setenv("CONFIG_PATH", path)

	cfg, err := loadConfig()
	require.NoError(t, err)
	require.Equal(t, ":9090", cfg.Relay.ListenAddr)
}

func TestLoadConfig_EnvOnly(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("CONFIG_PATH", "")
	t.Setenv("LISTEN_ADDR", ":7070")

	cfg, err := loadConfig()
	require.NoError(t, err)
	require.Equal(t, ":7070", cfg.Relay.ListenAddr)
}

func TestResolveAPIKey_PrefersEnvironment(t *testing.T) {
	key, err := resolveAPIKey(context.Background(), config.Upstream{APIKey: "sk-env", APIKeyParam: "/wtl/openai"})
	require.NoError(t, err)
	require.Equal(t, "sk-env", key)
}

func TestResolveAPIKey_NoSource(t *testing.T) {
	_, err := resolveAPIKey(context.Background(), config.Upstream{})
	require.Error(t, err)
}
