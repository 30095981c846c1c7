package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(context.Background())
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.Port != "8080" {
		t.Errorf("Port = %s, want 8080", cfg.Port)
	}
	if cfg.Environment != "development" {
		t.Errorf("Environment = %s, want development", cfg.Environment)
	}
	base, ok := cfg.Platform.BaseURL("apidev")
	if !ok || base != "https://apidev.tecopos.com" {
		t.Errorf("BaseURL(apidev) = %q, %v", base, ok)
	}
	if cfg.Platform.DefaultRegion != "apidev" {
		t.Errorf("DefaultRegion = %s, want apidev", cfg.Platform.DefaultRegion)
	}
	if !cfg.Platform.AutoCategories {
		t.Error("AutoCategories should default to true")
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("PLATFORM_DEFAULT_CURRENCY", "CUP")
	t.Setenv("AUTO_CATEGORIES", "false")

	cfg, err := Load(context.Background())
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.Port != "9090" {
		t.Errorf("Port = %s, want 9090", cfg.Port)
	}
	if cfg.Platform.DefaultCurrency != "CUP" {
		t.Errorf("DefaultCurrency = %s, want CUP", cfg.Platform.DefaultCurrency)
	}
	if cfg.Platform.AutoCategories {
		t.Error("AutoCategories should be disabled")
	}
}

func TestLoadBadAutoCategories(t *testing.T) {
	t.Setenv("AUTO_CATEGORIES", "nope")
	if _, err := Load(context.Background()); err == nil {
		t.Error("expected error for malformed AUTO_CATEGORIES")
	}
}

func TestLoadRegionsJSON(t *testing.T) {
	t.Setenv("PLATFORM_REGIONS", `{"apidev":"https://apidev.tecopos.com","prod":"https://api.tecopos.com"}`)

	cfg, err := Load(context.Background())
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if base, ok := cfg.Platform.BaseURL("prod"); !ok || base != "https://api.tecopos.com" {
		t.Errorf("BaseURL(prod) = %q, %v", base, ok)
	}
}

func TestLoadInvalidRegionURL(t *testing.T) {
	t.Setenv("PLATFORM_REGIONS", `{"apidev":"not a url"}`)

	if _, err := Load(context.Background()); err == nil {
		t.Error("expected error for invalid region base URL")
	}
}

func TestLoadDefaultRegionMustExist(t *testing.T) {
	t.Setenv("PLATFORM_REGIONS", `{"prod":"https://api.tecopos.com"}`)

	if _, err := Load(context.Background()); err == nil {
		t.Error("expected error when default region is not configured")
	}
}

func TestLoadFromFile(t *testing.T) {
	content := `{
		"port": "9999",
		"log_level": "debug",
		"min_agent_version": "1.2.0",
		"platform": {
			"regions": {"apidev": "https://apidev.tecopos.com"},
			"default_region": "apidev",
			"default_currency": "EUR",
			"auto_categories": true
		}
	}`
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("CONFIG_FILE", path)

	cfg, err := Load(context.Background())
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.Port != "9999" {
		t.Errorf("Port = %s, want 9999", cfg.Port)
	}
	if cfg.MinAgentVersion != "1.2.0" {
		t.Errorf("MinAgentVersion = %s, want 1.2.0", cfg.MinAgentVersion)
	}
	if cfg.Platform.DefaultCurrency != "EUR" {
		t.Errorf("DefaultCurrency = %s, want EUR", cfg.Platform.DefaultCurrency)
	}
	// Identification headers fall back to built-in defaults
	if cfg.Platform.AppOrigin != "Tecopos-Admin" {
		t.Errorf("AppOrigin = %s, want Tecopos-Admin", cfg.Platform.AppOrigin)
	}
}

func TestLoadFromFileMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte("{nope"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("CONFIG_FILE", path)

	if _, err := Load(context.Background()); err == nil {
		t.Error("expected error for malformed config file")
	}
}

func TestBaseURLNormalizesRegion(t *testing.T) {
	p := defaultPlatform()

	if _, ok := p.BaseURL("  APIDEV "); !ok {
		t.Error("region lookup should trim and lowercase")
	}
	if _, ok := p.BaseURL("mars"); ok {
		t.Error("unknown region should not resolve")
	}
}
