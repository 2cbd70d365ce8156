// Package config loads the coldreach YAML configuration.
//
// Secrets never live here: the sender app password is read from the
// environment (optionally via a .env file) by the CLI, kept in memory for
// the session, and discarded on exit.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/jobreach/coldreach/internal/contact"
	"github.com/jobreach/coldreach/internal/template"
)

// Config is the main configuration structure.
type Config struct {
	API        APIConfig        `yaml:"api"`
	Sender     SenderConfig     `yaml:"sender"`
	Campaign   CampaignConfig   `yaml:"campaign"`
	Simulation SimulationConfig `yaml:"simulation"`
	History    HistoryConfig    `yaml:"history"`
	Relay      RelayConfig      `yaml:"relay"`
	Metrics    MetricsConfig    `yaml:"metrics"`
	Logging    LoggingConfig    `yaml:"logging"`
}

// APIConfig points at the remote mail-dispatch service.
type APIConfig struct {
	BaseURL string `yaml:"base_url"`
	// RelayURL is the CORS-relay prefix for read-only fallback calls;
	// the encoded target URL is appended.
	RelayURL string `yaml:"relay_url"`
	// RestrictedOrigin marks networks where direct calls are known to be
	// blocked, so read-only requests go relay-first.
	RestrictedOrigin bool          `yaml:"restricted_origin"`
	Timeout          time.Duration `yaml:"timeout"`
	ProbeTimeout     time.Duration `yaml:"probe_timeout"`
	SettleDelay      time.Duration `yaml:"settle_delay"`
	// WarmUp enables the health probe before the real submission.
	WarmUp bool `yaml:"warm_up"`
}

// SenderConfig is the sender identity used for personalization.
type SenderConfig struct {
	Name  string `yaml:"name"`
	Email string `yaml:"email"`
}

// CampaignConfig holds the campaign inputs.
type CampaignConfig struct {
	ContactsFile string `yaml:"contacts_file"`
	ResumeFile   string `yaml:"resume_file"`
	Subject      string `yaml:"subject"`
	Body         string `yaml:"body"`
	BodyFile     string `yaml:"body_file"` // overrides Body when set
}

// SimulationConfig tunes the non-delivering fallback.
type SimulationConfig struct {
	ContactDelay time.Duration `yaml:"contact_delay"`
	SuccessRate  float64       `yaml:"success_rate"`
}

// HistoryConfig locates the local campaign history database.
type HistoryConfig struct {
	Path string `yaml:"path"`
}

// RelayConfig configures the bundled relay server.
type RelayConfig struct {
	ListenAddr   string        `yaml:"listen_addr"`
	AllowedHosts []string      `yaml:"allowed_hosts"`
	FetchTimeout time.Duration `yaml:"fetch_timeout"`
}

// MetricsConfig controls the optional Prometheus endpoint.
type MetricsConfig struct {
	Enabled    bool   `yaml:"enabled"`
	ListenAddr string `yaml:"listen_addr"`
	Path       string `yaml:"path"`
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // json, text
}

// Load loads configuration from a YAML file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config file: %w", err)
	}

	cfg.setDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	cfg := &Config{}
	cfg.setDefaults()
	return cfg
}

func (c *Config) setDefaults() {
	if c.API.Timeout == 0 {
		c.API.Timeout = 30 * time.Second
	}
	if c.API.ProbeTimeout == 0 {
		c.API.ProbeTimeout = 10 * time.Second
	}
	if c.API.SettleDelay == 0 {
		c.API.SettleDelay = time.Second
	}
	if c.Campaign.Subject == "" {
		c.Campaign.Subject = template.DefaultSubject
	}
	if c.Campaign.Body == "" && c.Campaign.BodyFile == "" {
		c.Campaign.Body = template.DefaultBody
	}
	if c.Simulation.ContactDelay == 0 {
		c.Simulation.ContactDelay = 2 * time.Second
	}
	if c.Simulation.SuccessRate == 0 {
		c.Simulation.SuccessRate = 0.95
	}
	if c.History.Path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			home = "."
		}
		c.History.Path = filepath.Join(home, ".coldreach", "history.db")
	}
	if c.Relay.ListenAddr == "" {
		c.Relay.ListenAddr = ":8787"
	}
	if c.Relay.FetchTimeout == 0 {
		c.Relay.FetchTimeout = 30 * time.Second
	}
	if c.Metrics.ListenAddr == "" {
		c.Metrics.ListenAddr = ":9090"
	}
	if c.Metrics.Path == "" {
		c.Metrics.Path = "/metrics"
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "text"
	}
}

// Validate checks the configuration for consistency.
func (c *Config) Validate() error {
	if c.API.BaseURL != "" && !strings.HasPrefix(c.API.BaseURL, "http://") && !strings.HasPrefix(c.API.BaseURL, "https://") {
		return fmt.Errorf("api.base_url must be an http(s) URL, got %q", c.API.BaseURL)
	}
	if c.API.RelayURL != "" && !strings.HasPrefix(c.API.RelayURL, "http://") && !strings.HasPrefix(c.API.RelayURL, "https://") {
		return fmt.Errorf("api.relay_url must be an http(s) URL prefix, got %q", c.API.RelayURL)
	}
	if c.Sender.Email != "" && !contact.ValidEmail(c.Sender.Email) {
		return fmt.Errorf("sender.email %q is not a valid email address", c.Sender.Email)
	}
	if c.Simulation.SuccessRate < 0 || c.Simulation.SuccessRate > 1 {
		return fmt.Errorf("simulation.success_rate must be within [0,1], got %v", c.Simulation.SuccessRate)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be one of debug, info, warn, error; got %q", c.Logging.Level)
	}
	switch c.Logging.Format {
	case "json", "text":
	default:
		return fmt.Errorf("logging.format must be json or text, got %q", c.Logging.Format)
	}
	return nil
}

// SetupLogger builds the process logger from the logging section.
func SetupLogger(cfg LoggingConfig) *slog.Logger {
	level := slog.LevelInfo
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}
	return slog.New(handler)
}
