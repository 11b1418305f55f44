package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

type Config struct {
	Azdo  AzdoConfig  `toml:"azdo"`
	Clone CloneConfig `toml:"clone"`
}

type AzdoConfig struct {
	Org         string `toml:"org"`
	BaseURL     string `toml:"base_url"`
	PatEnv      string `toml:"pat_env"`
	PatUsername string `toml:"pat_username"`
}

type CloneConfig struct {
	Dest        string `toml:"dest"`
	Concurrency int    `toml:"concurrency"`
}

func DefaultConfig() *Config {
	return &Config{
		Azdo: AzdoConfig{
			BaseURL:     "https://dev.azure.com",
			PatEnv:      "AZDO_PAT",
			PatUsername: "azdo",
		},
		Clone: CloneConfig{
			Dest:        ".",
			Concurrency: 4,
		},
	}
}

// Path returns the config file location
func Path() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "attclone.toml"), nil
}

func Load() (*Config, error) {
	path, err := Path()
	if err != nil {
		return DefaultConfig(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg := DefaultConfig()
			_ = cfg.Save() // Best effort save
			return cfg, nil
		}
		return nil, err
	}

	cfg := DefaultConfig()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) Save() error {
	path, err := Path()
	if err != nil {
		return err
	}

	// Ensure config directory exists
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	data, err := toml.Marshal(c)
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// DestPath returns the clone destination with tilde expanded
func (c *Config) DestPath() string {
	return expandTilde(c.Clone.Dest)
}

func expandTilde(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[2:])
	}
	return path
}
