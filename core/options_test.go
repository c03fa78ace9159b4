package core

import (
	"context"
	"testing"
	"time"
)

func TestCfgxConfigProviderAppliesDefaults(t *testing.T) {
	provider := NewCfgxConfigProvider(StaticRawConfigLoader(map[string]any{
		"base_url": "https://api.staging.finsnap.cl",
	}))

	cfg, err := provider.Load(context.Background(), DefaultConfig())
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.BaseURL != "https://api.staging.finsnap.cl" {
		t.Fatalf("expected raw layer to win for base_url, got %q", cfg.BaseURL)
	}
	if cfg.ClientName != "finsnap" {
		t.Fatalf("expected default client name, got %q", cfg.ClientName)
	}
	if cfg.Sync.RefreshJobID != "finsnap.sync.refresh" {
		t.Fatalf("expected default refresh job id, got %q", cfg.Sync.RefreshJobID)
	}
}

func TestGoOptionsResolverLayerPrecedence(t *testing.T) {
	defaults := DefaultConfig()
	loaded := Config{
		BaseURL:     "https://api.staging.finsnap.cl",
		HTTPTimeout: 10 * time.Second,
	}
	runtime := Config{
		BaseURL: "http://localhost:8000",
	}

	resolved, err := (GoOptionsResolver{}).Resolve(defaults, loaded, runtime)
	if err != nil {
		t.Fatalf("resolve options: %v", err)
	}
	if resolved.BaseURL != "http://localhost:8000" {
		t.Fatalf("expected runtime layer to win for base_url, got %q", resolved.BaseURL)
	}
	if resolved.HTTPTimeout != 10*time.Second {
		t.Fatalf("expected config layer to win for http_timeout, got %s", resolved.HTTPTimeout)
	}
	if resolved.ClientName != "finsnap" {
		t.Fatalf("expected default client name to survive merge, got %q", resolved.ClientName)
	}
}

func TestGoOptionsResolverRejectsInvalidMerge(t *testing.T) {
	runtime := Config{ClientName: " "}
	defaults := DefaultConfig()
	defaults.ClientName = ""
	if _, err := (GoOptionsResolver{}).Resolve(defaults, Config{}, runtime); err == nil {
		t.Fatalf("expected validation failure for blank client name")
	}
}
