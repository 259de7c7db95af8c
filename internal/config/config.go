package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
)

type Config struct {
	Backend       BackendConfig  `toml:"backend"`
	Extract       ExtractConfig  `toml:"extract"`
	AI            AIConfig       `toml:"ai"`
	Calendar      CalendarConfig `toml:"calendar"`
	Notifications NotifyConfig   `toml:"notifications"`
	Watch         WatchConfig    `toml:"watch"`
}

type BackendConfig struct {
	BaseURL string `toml:"base_url"`
	APIKey  string `toml:"api_key"`
}

type ExtractConfig struct {
	// MaxEvents caps mined follow-up candidates per meeting. Zero means
	// the built-in default.
	MaxEvents int `toml:"max_events"`
}

type AIConfig struct {
	Enabled bool   `toml:"enabled"`
	Model   string `toml:"model"`
	APIKey  string `toml:"api_key"`
}

type CalendarConfig struct {
	// Source is "relay" for the backend's connected calendar, or an ICS
	// URL / file path for read-only listing.
	Source   string `toml:"source"`
	Timezone string `toml:"timezone"`
}

type NotifyConfig struct {
	Enabled bool `toml:"enabled"`
}

type WatchConfig struct {
	IntervalSeconds int `toml:"interval_seconds"`
}

func DefaultConfig() Config {
	return Config{
		Backend: BackendConfig{
			BaseURL: "http://localhost:8000",
		},
		AI: AIConfig{
			Enabled: false,
			Model:   "gpt-4o-mini",
		},
		Calendar: CalendarConfig{
			Source: "relay",
		},
		Notifications: NotifyConfig{
			Enabled: true,
		},
		Watch: WatchConfig{
			IntervalSeconds: 30,
		},
	}
}

func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("finding home directory: %w", err)
	}
	return filepath.Join(home, ".config", "summariser"), nil
}

func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

func Load() (*Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg := DefaultConfig()
			applyEnvOverrides(&cfg)
			return &cfg, nil
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg := DefaultConfig()
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	applyEnvOverrides(&cfg)

	return &cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("SUMMARISER_BACKEND_URL"); v != "" {
		cfg.Backend.BaseURL = v
	}
	if v := os.Getenv("SUMMARISER_API_KEY"); v != "" {
		cfg.Backend.APIKey = v
	}
	if v := os.Getenv("OPENAI_API_KEY"); v != "" {
		cfg.AI.APIKey = v
	}
	if v := os.Getenv("SUMMARISER_CALENDAR_SOURCE"); v != "" {
		cfg.Calendar.Source = v
	}
}

func EnsureConfigDir() error {
	dir, err := ConfigDir()
	if err != nil {
		return err
	}
	return os.MkdirAll(dir, 0755)
}

// Save writes the full config back out, creating the directory on first
// use.
func Save(cfg *Config) error {
	if err := EnsureConfigDir(); err != nil {
		return err
	}
	path, err := ConfigPath()
	if err != nil {
		return err
	}

	out, err := toml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	return os.WriteFile(path, out, 0644)
}
