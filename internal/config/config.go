// Package config provides YAML-based configuration loading for Bellhop.
package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config is the top-level Bellhop configuration, loaded from config.yaml.
type Config struct {
	Account  string         `yaml:"account"` // channel account identifier
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Channel  ChannelConfig  `yaml:"channel"`
	Session  SessionConfig  `yaml:"session"`
	AI       AIConfig       `yaml:"ai"`
}

// ServerConfig holds settings for the webhook/management HTTP server.
type ServerConfig struct {
	Port int `yaml:"port"`
}

// DatabaseConfig holds connection settings for the MySQL database.
type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Database string `yaml:"database"`
}

// ChannelConfig holds settings for the outbound WhatsApp channel.
// Twilio credentials come from TWILIO_ACCOUNT_SID / TWILIO_AUTH_TOKEN.
type ChannelConfig struct {
	From string `yaml:"from"` // e.g. "whatsapp:+14155238886"
}

// SessionConfig controls session lifecycle.
type SessionConfig struct {
	TTLMinutes int    `yaml:"ttl_minutes"`
	SweepCron  string `yaml:"sweep_cron"` // 5-field cron expression
}

// AIConfig holds fallback-responder settings. The API key comes from the
// BELLHOP_AI_API_KEY environment variable, never from the file.
type AIConfig struct {
	Provider    string  `yaml:"provider"` // "openai", "anthropic"; empty disables
	BaseURL     string  `yaml:"base_url"`
	Model       string  `yaml:"model"`
	MaxRetries  int     `yaml:"max_retries"`
	TimeoutSecs int     `yaml:"timeout_secs"`
	Temperature float64 `yaml:"temperature"`
}

// Load reads a YAML config file from path and returns a validated Config.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	return Parse(data)
}

// Parse unmarshals YAML bytes into a validated Config.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config: parse: %w", err)
	}
	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// applyDefaults fills in derived and default values.
func (c *Config) applyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Database.Host == "" {
		c.Database.Host = "127.0.0.1"
	}
	if c.Database.Port == 0 {
		c.Database.Port = 3306
	}
	if c.Database.User == "" {
		c.Database.User = "root"
	}
	if c.Database.Database == "" && c.Account != "" {
		c.Database.Database = "bellhop_" + strings.ToLower(c.Account)
	}
	if c.Session.TTLMinutes == 0 {
		c.Session.TTLMinutes = 60
	}
	if c.Session.SweepCron == "" {
		c.Session.SweepCron = "*/5 * * * *"
	}
	if c.AI.MaxRetries == 0 {
		c.AI.MaxRetries = 3
	}
	if c.AI.TimeoutSecs == 0 {
		c.AI.TimeoutSecs = 60
	}
	if c.AI.Temperature == 0 {
		c.AI.Temperature = 0.7
	}
}

// validate checks that all required fields are present and consistent.
func (c *Config) validate() error {
	var errs []string
	if c.Account == "" {
		errs = append(errs, "account is required")
	}
	if c.Database.Database == "" {
		errs = append(errs, "database.database is required")
	}
	switch c.AI.Provider {
	case "", "openai", "anthropic":
	default:
		errs = append(errs, fmt.Sprintf("ai.provider %q is not supported", c.AI.Provider))
	}
	if len(errs) > 0 {
		return fmt.Errorf("config: validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}
