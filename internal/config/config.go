// Package config handles loading and validation of service configuration.
// Supports both development (env vars) and production (Secret Manager) modes.
package config

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"

	secretmanager "cloud.google.com/go/secretmanager/apiv1"
	"cloud.google.com/go/secretmanager/apiv1/secretmanagerpb"
)

// Config holds all service configuration.
// Environment determines whether the platform block loads from env vars
// (development) or Secret Manager (production).
type Config struct {
	// Server settings
	Port        string
	Environment string // "development" or "production"
	LogLevel    string // "debug", "info", "warn", "error"

	// Minimum client agent version accepted by the X-Client-Agent gate.
	// Empty disables the version check.
	MinAgentVersion string

	// GCP settings (required in production)
	GCPProject     string
	PlatformSecret string

	// Tecopos platform settings (loaded from secrets in production)
	Platform PlatformConfig
}

// PlatformConfig contains the Tecopos platform settings: which regions are
// reachable and the fixed identification headers the platform expects on
// every request. In production this block is loaded from Secret Manager as
// JSON; in development from env vars or CONFIG_FILE.
type PlatformConfig struct {
	// Regions maps a logical region name to its API base URL.
	Regions       map[string]string `json:"regions"`
	DefaultRegion string            `json:"default_region"`

	// Fixed identification headers required by the platform.
	Origin    string `json:"origin"`
	Referer   string `json:"referer"`
	AppOrigin string `json:"app_origin"`
	UserAgent string `json:"user_agent"`

	// Defaults applied to product payloads when the caller omits them.
	DefaultCurrency string `json:"default_currency"`

	// AutoCategories enables category inference during smart stock entry.
	AutoCategories bool `json:"auto_categories"`
}

// defaultPlatform returns the built-in platform settings: the single
// supported development region and the admin-frontend identification
// block the API expects.
func defaultPlatform() PlatformConfig {
	return PlatformConfig{
		Regions: map[string]string{
			"apidev": "https://apidev.tecopos.com",
		},
		DefaultRegion:   "apidev",
		Origin:          "https://admindev.tecopos.com",
		Referer:         "https://admindev.tecopos.com/",
		AppOrigin:       "Tecopos-Admin",
		UserAgent:       "Mozilla/5.0",
		DefaultCurrency: "USD",
		AutoCategories:  true,
	}
}

// Load reads configuration from file, environment, or Secret Manager.
// Priority: CONFIG_FILE (if set) → ENV vars / Secret Manager.
// Validates all required fields and returns an error if any are missing.
func Load(ctx context.Context) (*Config, error) {
	// If CONFIG_FILE is set, load everything from the JSON file
	if configPath := os.Getenv("CONFIG_FILE"); configPath != "" {
		return loadFromFile(configPath)
	}

	cfg := &Config{
		Port:            envOrDefault("PORT", "8080"),
		Environment:     envOrDefault("ENVIRONMENT", "development"),
		LogLevel:        envOrDefault("LOG_LEVEL", "info"),
		MinAgentVersion: os.Getenv("MIN_AGENT_VERSION"),
		GCPProject:      os.Getenv("GCP_PROJECT"),
		PlatformSecret:  os.Getenv("PLATFORM_SECRET"),
	}

	if cfg.Environment == "production" && cfg.GCPProject != "" && cfg.PlatformSecret != "" {
		if err := cfg.loadFromSecretManager(ctx); err != nil {
			return nil, err
		}
	} else {
		if err := cfg.loadFromEnv(); err != nil {
			return nil, err
		}
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// loadFromFile reads all configuration from a JSON file.
// Used for local development to avoid multiple ENV vars.
func loadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	// Use a struct that matches the JSON structure
	var fileConfig struct {
		Port            string          `json:"port"`
		Environment     string          `json:"environment"`
		LogLevel        string          `json:"log_level"`
		MinAgentVersion string          `json:"min_agent_version"`
		Platform        *PlatformConfig `json:"platform"`
	}

	if err := json.Unmarshal(data, &fileConfig); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	cfg := &Config{
		Port:            withDefault(fileConfig.Port, "8080"),
		Environment:     withDefault(fileConfig.Environment, "development"),
		LogLevel:        withDefault(fileConfig.LogLevel, "info"),
		MinAgentVersion: fileConfig.MinAgentVersion,
		Platform:        defaultPlatform(),
	}

	if fileConfig.Platform != nil {
		cfg.Platform.merge(*fileConfig.Platform)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// loadFromSecretManager fetches the platform block from GCP Secret Manager.
// Secret name format: projects/{project}/secrets/{name}/versions/latest
func (c *Config) loadFromSecretManager(ctx context.Context) error {
	client, err := secretmanager.NewClient(ctx)
	if err != nil {
		return fmt.Errorf("creating secret manager client: %w", err)
	}
	defer client.Close()

	secretName := fmt.Sprintf("projects/%s/secrets/%s/versions/latest",
		c.GCPProject, c.PlatformSecret)

	result, err := client.AccessSecretVersion(ctx, &secretmanagerpb.AccessSecretVersionRequest{
		Name: secretName,
	})
	if err != nil {
		return fmt.Errorf("accessing secret %s: %w", secretName, err)
	}

	var platform PlatformConfig
	if err := json.Unmarshal(result.Payload.Data, &platform); err != nil {
		return fmt.Errorf("parsing secret JSON: %w", err)
	}

	c.Platform = defaultPlatform()
	c.Platform.merge(platform)
	return nil
}

// loadFromEnv reads platform overrides from individual environment
// variables on top of the built-in defaults. Used in development mode.
func (c *Config) loadFromEnv() error {
	c.Platform = defaultPlatform()

	if regionsJSON := os.Getenv("PLATFORM_REGIONS"); regionsJSON != "" {
		regions := map[string]string{}
		if err := json.Unmarshal([]byte(regionsJSON), &regions); err != nil {
			return fmt.Errorf("parsing PLATFORM_REGIONS JSON: %w", err)
		}
		c.Platform.Regions = regions
	}
	if v := os.Getenv("PLATFORM_DEFAULT_REGION"); v != "" {
		c.Platform.DefaultRegion = v
	}
	if v := os.Getenv("PLATFORM_ORIGIN"); v != "" {
		c.Platform.Origin = v
	}
	if v := os.Getenv("PLATFORM_REFERER"); v != "" {
		c.Platform.Referer = v
	}
	if v := os.Getenv("PLATFORM_APP_ORIGIN"); v != "" {
		c.Platform.AppOrigin = v
	}
	if v := os.Getenv("PLATFORM_DEFAULT_CURRENCY"); v != "" {
		c.Platform.DefaultCurrency = v
	}
	if v := os.Getenv("AUTO_CATEGORIES"); v != "" {
		enabled, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("parsing AUTO_CATEGORIES: %w", err)
		}
		c.Platform.AutoCategories = enabled
	}

	return nil
}

// merge overlays non-empty fields of other onto p. AutoCategories is taken
// from other as-is so a JSON block can disable it.
func (p *PlatformConfig) merge(other PlatformConfig) {
	if len(other.Regions) > 0 {
		p.Regions = other.Regions
	}
	if other.DefaultRegion != "" {
		p.DefaultRegion = other.DefaultRegion
	}
	if other.Origin != "" {
		p.Origin = other.Origin
	}
	if other.Referer != "" {
		p.Referer = other.Referer
	}
	if other.AppOrigin != "" {
		p.AppOrigin = other.AppOrigin
	}
	if other.UserAgent != "" {
		p.UserAgent = other.UserAgent
	}
	if other.DefaultCurrency != "" {
		p.DefaultCurrency = other.DefaultCurrency
	}
	p.AutoCategories = other.AutoCategories
}

// BaseURL resolves a logical region name to its API base URL.
// Region matching is case-insensitive and trims surrounding whitespace.
func (p PlatformConfig) BaseURL(region string) (string, bool) {
	base, ok := p.Regions[strings.ToLower(strings.TrimSpace(region))]
	return base, ok
}

// validate checks required fields and region URLs.
func (c *Config) validate() error {
	if len(c.Platform.Regions) == 0 {
		return fmt.Errorf("at least one platform region is required")
	}
	for region, base := range c.Platform.Regions {
		u, err := url.Parse(base)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("region %s: invalid base URL %q", region, base)
		}
	}
	if _, ok := c.Platform.BaseURL(c.Platform.DefaultRegion); !ok {
		return fmt.Errorf("default region %q is not configured", c.Platform.DefaultRegion)
	}
	return nil
}

// envOrDefault returns the env value or defaultVal if unset.
func envOrDefault(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

// withDefault returns val if non-empty, otherwise defaultVal.
func withDefault(val, defaultVal string) string {
	if val != "" {
		return val
	}
	return defaultVal
}
