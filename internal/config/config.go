// Package config handles propcalc configuration.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"

	"github.com/ashutoshrp06/propcalc/internal/types"
)

// EnvPrefix prefixes environment overrides, e.g. PROPCALC_DEFAULTS_COUNTRY.
const EnvPrefix = "PROPCALC"

// Config holds all propcalc configuration.
type Config struct {
	Session  SessionConfig  `mapstructure:"session" yaml:"session"`
	Logging  LoggingConfig  `mapstructure:"logging" yaml:"logging"`
	Defaults DefaultsConfig `mapstructure:"defaults" yaml:"defaults"`
	MCP      MCPConfig      `mapstructure:"mcp" yaml:"mcp"`
}

type SessionConfig struct {
	RevealDelayMS int  `mapstructure:"reveal_delay_ms" yaml:"reveal_delay_ms"`
	ShowWelcome   bool `mapstructure:"show_welcome" yaml:"show_welcome"`
}

type LoggingConfig struct {
	Level       string `mapstructure:"level" yaml:"level"`
	Development bool   `mapstructure:"development" yaml:"development"`
}

// DefaultsConfig overrides calculator form defaults.
type DefaultsConfig struct {
	ConfidenceLevel int    `mapstructure:"confidence_level" yaml:"confidence_level"`
	Country         string `mapstructure:"country" yaml:"country"`
	QuotaType       string `mapstructure:"quota_type" yaml:"quota_type"`
}

type MCPConfig struct {
	ServerName string `mapstructure:"server_name" yaml:"server_name"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Session: SessionConfig{
			RevealDelayMS: 600,
			ShowWelcome:   true,
		},
		Logging: LoggingConfig{
			Level:       "info",
			Development: false,
		},
		Defaults: DefaultsConfig{
			ConfidenceLevel: 95,
			Country:         "turkey",
			QuotaType:       "census",
		},
		MCP: MCPConfig{
			ServerName: "propcalc",
		},
	}
}

func newViper() *viper.Viper {
	v := viper.New()
	d := DefaultConfig()

	v.SetDefault("session.reveal_delay_ms", d.Session.RevealDelayMS)
	v.SetDefault("session.show_welcome", d.Session.ShowWelcome)
	v.SetDefault("logging.level", d.Logging.Level)
	v.SetDefault("logging.development", d.Logging.Development)
	v.SetDefault("defaults.confidence_level", d.Defaults.ConfidenceLevel)
	v.SetDefault("defaults.country", d.Defaults.Country)
	v.SetDefault("defaults.quota_type", d.Defaults.QuotaType)
	v.SetDefault("mcp.server_name", d.MCP.ServerName)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

func decode(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Load reads configuration from path. Environment variables override file values.
func Load(path string) (*Config, error) {
	v := newViper()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	return decode(v)
}

// LoadFromPaths loads the first existing file in paths. When none exists
// the defaults are used, still subject to environment overrides.
func LoadFromPaths(paths ...string) (*Config, error) {
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			return Load(p)
		}
	}
	return decode(newViper())
}

// Save writes the configuration to path as YAML.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}

	return nil
}

// Validate checks that every setting is usable.
func (c *Config) Validate() error {
	if c.Session.RevealDelayMS < 0 {
		return fmt.Errorf("session.reveal_delay_ms must not be negative, got %d", c.Session.RevealDelayMS)
	}
	if _, err := zapcore.ParseLevel(c.Logging.Level); err != nil {
		return fmt.Errorf("logging.level: %w", err)
	}
	switch c.Defaults.ConfidenceLevel {
	case 90, 95, 99:
	default:
		return fmt.Errorf("defaults.confidence_level must be 90, 95 or 99, got %d", c.Defaults.ConfidenceLevel)
	}
	if strings.TrimSpace(c.Defaults.Country) == "" {
		return fmt.Errorf("defaults.country must not be empty")
	}
	switch c.Defaults.QuotaType {
	case "census", "equal":
	default:
		return fmt.Errorf("defaults.quota_type must be census or equal, got %q", c.Defaults.QuotaType)
	}
	if c.MCP.ServerName == "" {
		return fmt.Errorf("mcp.server_name must not be empty")
	}
	return nil
}

// RevealDelay returns the reply reveal delay. Zero disables it.
func (c *Config) RevealDelay() time.Duration {
	return time.Duration(c.Session.RevealDelayMS) * time.Millisecond
}

// LogLevel returns the parsed logging level, falling back to info.
func (c *Config) LogLevel() zapcore.Level {
	level, err := zapcore.ParseLevel(c.Logging.Level)
	if err != nil {
		return zapcore.InfoLevel
	}
	return level
}

// FormDefaults returns the configured defaults keyed by calculator field name.
func (c *Config) FormDefaults() types.FormValues {
	return types.FormValues{
		"confidenceLevel": types.String(fmt.Sprint(c.Defaults.ConfidenceLevel)),
		"country":         types.String(strings.ToLower(c.Defaults.Country)),
		"quotaType":       types.String(c.Defaults.QuotaType),
	}
}
