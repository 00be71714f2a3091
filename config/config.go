// Package config provides configuration loading and validation.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/artpar/mailcraft/domain/export"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "MAILCRAFT_"

// Config is the root configuration structure.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	IDs      IDConfig       `yaml:"ids"`
	Export   ExportConfig   `yaml:"export"`
	Catalog  CatalogConfig  `yaml:"catalog"`
	Logging  LoggingConfig  `yaml:"logging"`
	Metrics  MetricsConfig  `yaml:"metrics"`
	OpenAPI  OpenAPIConfig  `yaml:"openapi"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Host           string        `yaml:"host"`
	Port           int           `yaml:"port"`
	ReadTimeout    time.Duration `yaml:"read_timeout"`
	WriteTimeout   time.Duration `yaml:"write_timeout"`
	RequestTimeout time.Duration `yaml:"request_timeout"`
}

// Addr returns host:port.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// DatabaseConfig configures the export archive.
type DatabaseConfig struct {
	Driver string `yaml:"driver"` // "sqlite" or "memory"
	DSN    string `yaml:"dsn"`
}

// IDConfig configures module id generation.
type IDConfig struct {
	Mode   string `yaml:"mode"`   // "sequential" or "uuid"
	Prefix string `yaml:"prefix"` // default: mod_
}

// ExportConfig configures the export compiler.
type ExportConfig struct {
	ElsePolicy      string `yaml:"else_policy"` // "omit" or "primary"
	FallbackColor   string `yaml:"fallback_color"`
	Separator       string `yaml:"separator"`
	CountryVariable string `yaml:"country_variable"`
}

// Options converts the section to compiler options.
func (e ExportConfig) Options() (export.Options, error) {
	policy, err := export.ParseElsePolicy(e.ElsePolicy)
	if err != nil {
		return export.Options{}, err
	}
	return export.Options{
		ElsePolicy:      policy,
		FallbackColor:   e.FallbackColor,
		Separator:       e.Separator,
		CountryVariable: e.CountryVariable,
	}, nil
}

// CatalogConfig configures the module catalog.
type CatalogConfig struct {
	ImageBaseURL string `yaml:"image_base_url"`
}

// LoggingConfig configures logging.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // "debug", "info", "warn", "error"
	Format string `yaml:"format"` // "json" or "console"
}

// MetricsConfig configures Prometheus metrics.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"` // Enable /metrics endpoint
	Path    string `yaml:"path"`    // Custom path (default: /metrics)
}

// OpenAPIConfig configures OpenAPI/Swagger documentation.
type OpenAPIConfig struct {
	Enabled bool `yaml:"enabled"` // Enable OpenAPI endpoints
}

// Load reads configuration from a YAML file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	// Expand environment variables
	data = []byte(os.ExpandEnv(string(data)))

	cfg := Config{
		Metrics: MetricsConfig{Enabled: true},
		OpenAPI: OpenAPIConfig{Enabled: true},
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	applyEnvOverrides(&cfg)
	setDefaults(&cfg)

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &cfg, nil
}

// LoadFromEnv creates configuration entirely from environment variables.
//
// Environment variables:
//
//	MAILCRAFT_SERVER_HOST             - Server host (default: 0.0.0.0)
//	MAILCRAFT_SERVER_PORT             - Server port (default: 8080)
//	MAILCRAFT_DATABASE_DRIVER         - sqlite or memory (default: sqlite)
//	MAILCRAFT_DATABASE_DSN            - Database path (default: mailcraft.db)
//	MAILCRAFT_IDS_MODE                - sequential or uuid (default: sequential)
//	MAILCRAFT_EXPORT_ELSE_POLICY      - omit or primary (default: omit)
//	MAILCRAFT_EXPORT_FALLBACK_COLOR   - Table background fallback (default: #FFFFFF)
//	MAILCRAFT_CATALOG_IMAGE_BASE_URL  - CDN base for relative image paths
//	MAILCRAFT_LOG_LEVEL               - Log level: debug, info, warn, error (default: info)
//	MAILCRAFT_LOG_FORMAT              - Log format: json or console (default: json)
//	MAILCRAFT_METRICS_ENABLED         - Enable /metrics endpoint (default: true)
//	MAILCRAFT_OPENAPI_ENABLED         - Enable OpenAPI/Swagger (default: true)
func LoadFromEnv() (*Config, error) {
	cfg := Config{
		Metrics: MetricsConfig{Enabled: true},
		OpenAPI: OpenAPIConfig{Enabled: true},
	}

	applyEnvOverrides(&cfg)
	setDefaults(&cfg)

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &cfg, nil
}

// LoadWithFallback loads from path when the file exists, otherwise from the
// environment and defaults.
func LoadWithFallback(path string) (*Config, error) {
	if path != "" {
		if _, err := os.Stat(path); err == nil {
			return Load(path)
		}
	}
	return LoadFromEnv()
}

// HasEnvConfig returns true if any MAILCRAFT_* variable is set.
func HasEnvConfig() bool {
	for _, kv := range os.Environ() {
		if strings.HasPrefix(kv, EnvPrefix) {
			return true
		}
	}
	return false
}

// applyEnvOverrides applies MAILCRAFT_* environment variables to the config.
// Environment variables always override file-based configuration.
func applyEnvOverrides(cfg *Config) {
	env := func(name string) string { return os.Getenv(EnvPrefix + name) }

	// Server configuration
	if v := env("SERVER_HOST"); v != "" {
		cfg.Server.Host = v
	}
	if v := env("SERVER_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := env("SERVER_READ_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Server.ReadTimeout = d
		}
	}
	if v := env("SERVER_WRITE_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Server.WriteTimeout = d
		}
	}

	// Database configuration
	if v := env("DATABASE_DRIVER"); v != "" {
		cfg.Database.Driver = v
	}
	if v := env("DATABASE_DSN"); v != "" {
		cfg.Database.DSN = v
	}

	// ID configuration
	if v := env("IDS_MODE"); v != "" {
		cfg.IDs.Mode = v
	}
	if v := env("IDS_PREFIX"); v != "" {
		cfg.IDs.Prefix = v
	}

	// Export configuration
	if v := env("EXPORT_ELSE_POLICY"); v != "" {
		cfg.Export.ElsePolicy = v
	}
	if v := env("EXPORT_FALLBACK_COLOR"); v != "" {
		cfg.Export.FallbackColor = v
	}
	if v := env("EXPORT_COUNTRY_VARIABLE"); v != "" {
		cfg.Export.CountryVariable = v
	}

	// Catalog configuration
	if v := env("CATALOG_IMAGE_BASE_URL"); v != "" {
		cfg.Catalog.ImageBaseURL = v
	}

	// Logging configuration
	if v := env("LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := env("LOG_FORMAT"); v != "" {
		cfg.Logging.Format = v
	}

	// Metrics configuration
	if v := env("METRICS_ENABLED"); v != "" {
		cfg.Metrics.Enabled = parseBool(v)
	}
	if v := env("METRICS_PATH"); v != "" {
		cfg.Metrics.Path = v
	}

	// OpenAPI configuration
	if v := env("OPENAPI_ENABLED"); v != "" {
		cfg.OpenAPI.Enabled = parseBool(v)
	}
}

// parseBool parses a boolean from common string values.
func parseBool(v string) bool {
	v = strings.ToLower(strings.TrimSpace(v))
	return v == "true" || v == "1" || v == "yes" || v == "on"
}

func setDefaults(cfg *Config) {
	if cfg.Server.Host == "" {
		cfg.Server.Host = "0.0.0.0"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = 15 * time.Second
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = 30 * time.Second
	}
	if cfg.Server.RequestTimeout == 0 {
		cfg.Server.RequestTimeout = 10 * time.Second
	}

	if cfg.Database.Driver == "" {
		cfg.Database.Driver = "sqlite"
	}
	if cfg.Database.DSN == "" && cfg.Database.Driver == "sqlite" {
		cfg.Database.DSN = "mailcraft.db"
	}

	if cfg.IDs.Mode == "" {
		cfg.IDs.Mode = "sequential"
	}
	if cfg.IDs.Prefix == "" {
		cfg.IDs.Prefix = "mod_"
	}

	if cfg.Export.ElsePolicy == "" {
		cfg.Export.ElsePolicy = string(export.ElseOmit)
	}
	if cfg.Export.FallbackColor == "" {
		cfg.Export.FallbackColor = export.DefaultFallbackColor
	}
	if cfg.Export.Separator == "" {
		cfg.Export.Separator = export.DefaultSeparator
	}
	if cfg.Export.CountryVariable == "" {
		cfg.Export.CountryVariable = export.DefaultCountryVariable
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}

	if cfg.Metrics.Path == "" {
		cfg.Metrics.Path = "/metrics"
	}
}

func validate(cfg *Config) error {
	if cfg.Server.Port < 1 || cfg.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535, got %d", cfg.Server.Port)
	}

	validDrivers := map[string]bool{"sqlite": true, "memory": true}
	if !validDrivers[cfg.Database.Driver] {
		return fmt.Errorf("database.driver must be 'sqlite' or 'memory', got %q", cfg.Database.Driver)
	}

	validIDModes := map[string]bool{"sequential": true, "uuid": true}
	if !validIDModes[cfg.IDs.Mode] {
		return fmt.Errorf("ids.mode must be 'sequential' or 'uuid', got %q", cfg.IDs.Mode)
	}

	if _, err := export.ParseElsePolicy(cfg.Export.ElsePolicy); err != nil {
		return fmt.Errorf("export.else_policy: %w", err)
	}
	if _, ok := export.NormalizeColor(cfg.Export.FallbackColor); !ok {
		return fmt.Errorf("export.fallback_color must be a 6-digit hex color, got %q", cfg.Export.FallbackColor)
	}
	if !strings.HasPrefix(cfg.Export.CountryVariable, "@") {
		return fmt.Errorf("export.country_variable must start with '@', got %q", cfg.Export.CountryVariable)
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[strings.ToLower(cfg.Logging.Level)] {
		return fmt.Errorf("logging.level must be one of: debug, info, warn, error")
	}
	validFormats := map[string]bool{"json": true, "console": true}
	if !validFormats[cfg.Logging.Format] {
		return fmt.Errorf("logging.format must be 'json' or 'console', got %q", cfg.Logging.Format)
	}

	return nil
}
