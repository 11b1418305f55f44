package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/pelletier/go-toml/v2"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	require.Equal(t, "https://dev.azure.com", cfg.Azdo.BaseURL)
	require.Equal(t, "AZDO_PAT", cfg.Azdo.PatEnv)
	require.Equal(t, 4, cfg.Clone.Concurrency)
}

func TestConfigUnmarshal(t *testing.T) {
	data := []byte(`
[azdo]
org = "contoso"
pat_env = "MY_PAT"

[clone]
dest = "~/src"
concurrency = 8
`)

	cfg := DefaultConfig()
	require.NoError(t, toml.Unmarshal(data, cfg))

	require.Equal(t, "contoso", cfg.Azdo.Org)
	require.Equal(t, "MY_PAT", cfg.Azdo.PatEnv)
	// Unset keys keep their defaults
	require.Equal(t, "https://dev.azure.com", cfg.Azdo.BaseURL)
	require.Equal(t, 8, cfg.Clone.Concurrency)
}

func TestDestPathExpandsTilde(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	cfg := DefaultConfig()
	cfg.Clone.Dest = "~/src/clones"
	require.Equal(t, filepath.Join(home, "src", "clones"), cfg.DestPath())

	cfg.Clone.Dest = "/abs/path"
	require.Equal(t, "/abs/path", cfg.DestPath())
}
