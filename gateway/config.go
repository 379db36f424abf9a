package gateway

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds the remote wallet service connection settings.
type Config struct {
	BaseURL   string        `yaml:"base_url"`
	ClientID  string        `yaml:"client_id"`
	Timeout   time.Duration `yaml:"timeout"`
	UserAgent string        `yaml:"user_agent"`
}

func Defaults() Config {
	return Config{
		BaseURL:   "https://api.sandbox.walletpay.dev",
		Timeout:   30 * time.Second,
		UserAgent: "walletpay-go",
	}
}

// Load reads a yaml config file (optional, path may be empty) on top of the
// defaults, then applies WALLETPAY_* environment overrides.
func Load(path string) (Config, error) {
	cfg := Defaults()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("gateway: read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("gateway: parse config: %w", err)
		}
	}

	if v := os.Getenv("WALLETPAY_BASE_URL"); v != "" {
		cfg.BaseURL = v
	}
	if v := os.Getenv("WALLETPAY_CLIENT_ID"); v != "" {
		cfg.ClientID = v
	}
	if v := os.Getenv("WALLETPAY_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return cfg, fmt.Errorf("gateway: parse WALLETPAY_TIMEOUT: %w", err)
		}
		cfg.Timeout = d
	}

	return cfg, nil
}
