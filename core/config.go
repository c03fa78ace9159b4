package core

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

type VaultConfig struct {
	Driver string `koanf:"driver" mapstructure:"driver"`
	DSN    string `koanf:"dsn" mapstructure:"dsn"`
}

type SyncConfig struct {
	RefreshJobID string `koanf:"refresh_job_id" mapstructure:"refresh_job_id"`
}

type Config struct {
	ClientName      string        `koanf:"client_name" mapstructure:"client_name"`
	BaseURL         string        `koanf:"base_url" mapstructure:"base_url"`
	ConnectEmbedURL string        `koanf:"connect_embed_url" mapstructure:"connect_embed_url"`
	HTTPTimeout     time.Duration `koanf:"http_timeout" mapstructure:"http_timeout"`
	Vault           VaultConfig   `koanf:"vault" mapstructure:"vault"`
	Sync            SyncConfig    `koanf:"sync" mapstructure:"sync"`
}

func DefaultConfig() Config {
	return Config{
		ClientName:      "finsnap",
		BaseURL:         "https://api.finsnap.cl",
		ConnectEmbedURL: "https://connect.finsnap.cl/embed",
		HTTPTimeout:     30 * time.Second,
		Sync: SyncConfig{
			RefreshJobID: "finsnap.sync.refresh",
		},
	}
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.ClientName) == "" {
		return fmt.Errorf("core: client_name is required")
	}
	base := strings.TrimSpace(c.BaseURL)
	if base == "" {
		return fmt.Errorf("core: base_url is required")
	}
	if _, err := url.Parse(base); err != nil {
		return fmt.Errorf("core: base_url is not a valid url: %w", err)
	}
	if c.HTTPTimeout < 0 {
		return fmt.Errorf("core: http_timeout must not be negative")
	}
	return nil
}
