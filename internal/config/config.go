// ABOUTME: Configuration loading and parsing for remind-gateway
// ABOUTME: Supports YAML or TOML files with environment variable expansion and duration parsing

package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// Defaults
const (
	DefaultHTTPAddr        = "0.0.0.0:8085"
	DefaultToolTimeout     = 30 * time.Second
	DefaultMailHost        = "smtp.gmail.com"
	DefaultMailPort        = 465
	DefaultMailTimeout     = 30 * time.Second
	DefaultReminderLogPath = "reminder_log.txt"
)

// Environment variables read by ApplyEnv
const (
	EnvToken         = "REMIND_TOKEN"
	EnvHTTPAddr      = "REMIND_HTTP_ADDR"
	EnvEmailAddress  = "EMAIL_ADDRESS"
	EnvEmailPassword = "EMAIL_PASSWORD"
)

// Config represents the complete remind-gateway configuration
type Config struct {
	Server    ServerConfig    `yaml:"server" toml:"server"`
	Auth      AuthConfig      `yaml:"auth" toml:"auth"`
	Mail      MailConfig      `yaml:"mail" toml:"mail"`
	Reminders RemindersConfig `yaml:"reminders" toml:"reminders"`
	Logging   LoggingConfig   `yaml:"logging" toml:"logging"`
}

// ServerConfig holds server address configuration
type ServerConfig struct {
	HTTPAddr string `yaml:"http_addr" toml:"http_addr"`

	ToolTimeout    time.Duration `yaml:"-" toml:"-"`
	ToolTimeoutRaw string        `yaml:"tool_timeout" toml:"tool_timeout"`
}

// AuthConfig holds the shared bearer secret
type AuthConfig struct {
	Token string `yaml:"token" toml:"token"`
}

// MailConfig holds outbound mail configuration. Address and Password may be
// empty; send_email then reports that credentials are missing.
type MailConfig struct {
	Address  string `yaml:"address" toml:"address"`
	Password string `yaml:"password" toml:"password"`
	Host     string `yaml:"host" toml:"host"`
	Port     int    `yaml:"port" toml:"port"`

	Timeout    time.Duration `yaml:"-" toml:"-"`
	TimeoutRaw string        `yaml:"timeout" toml:"timeout"`
}

// RemindersConfig holds reminder delivery configuration
type RemindersConfig struct {
	LogPath string `yaml:"log_path" toml:"log_path"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `yaml:"level" toml:"level"`
	Format string `yaml:"format" toml:"format"`
}

// Default returns a Config populated with default values. The auth token is
// left empty and must be supplied.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			HTTPAddr:    DefaultHTTPAddr,
			ToolTimeout: DefaultToolTimeout,
		},
		Mail: MailConfig{
			Host:    DefaultMailHost,
			Port:    DefaultMailPort,
			Timeout: DefaultMailTimeout,
		},
		Reminders: RemindersConfig{
			LogPath: DefaultReminderLogPath,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load reads a configuration file from the given path and returns a parsed Config.
// Files ending in .toml are parsed as TOML, anything else as YAML.
// Environment variables in the format ${VAR_NAME} are expanded, then the
// variables read by ApplyEnv override the file.
// Duration strings are parsed into time.Duration values.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	// Expand environment variables in the raw content
	expanded := expandEnvVars(string(data))

	cfg := Default()
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		if _, err := toml.Decode(expanded, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	} else {
		if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := parseDurations(cfg); err != nil {
		return nil, fmt.Errorf("parsing durations: %w", err)
	}

	cfg.ApplyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// FromEnv builds a Config from defaults and environment variables only.
func FromEnv() (*Config, error) {
	cfg := Default()
	cfg.ApplyEnv()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}
	return cfg, nil
}

// ApplyEnv overrides fields from REMIND_TOKEN, REMIND_HTTP_ADDR,
// EMAIL_ADDRESS and EMAIL_PASSWORD when they are set and non-empty.
func (c *Config) ApplyEnv() {
	if v := os.Getenv(EnvToken); v != "" {
		c.Auth.Token = v
	}
	if v := os.Getenv(EnvHTTPAddr); v != "" {
		c.Server.HTTPAddr = v
	}
	if v := os.Getenv(EnvEmailAddress); v != "" {
		c.Mail.Address = v
	}
	if v := os.Getenv(EnvEmailPassword); v != "" {
		c.Mail.Password = v
	}
}

// expandEnvVars replaces ${VAR_NAME} patterns with the corresponding environment variable values.
// If the environment variable is not set, it is replaced with an empty string.
func expandEnvVars(s string) string {
	re := regexp.MustCompile(`\$\{([^}]+)\}`)

	return re.ReplaceAllStringFunc(s, func(match string) string {
		varName := re.FindStringSubmatch(match)[1]
		return os.Getenv(varName)
	})
}

// Validate checks that all required configuration fields are present and valid.
// Returns an error describing the first validation failure encountered.
func (c *Config) Validate() error {
	if c.Auth.Token == "" {
		return fmt.Errorf("auth.token is required (or set %s)", EnvToken)
	}
	if c.Server.HTTPAddr == "" {
		return fmt.Errorf("server.http_addr is required")
	}
	if c.Server.ToolTimeout <= 0 {
		return fmt.Errorf("server.tool_timeout must be positive")
	}
	if c.Mail.Host == "" {
		return fmt.Errorf("mail.host is required")
	}
	if c.Mail.Port < 1 || c.Mail.Port > 65535 {
		return fmt.Errorf("mail.port %d is out of range", c.Mail.Port)
	}
	if c.Reminders.LogPath == "" {
		return fmt.Errorf("reminders.log_path is required")
	}
	if _, err := ParseLevel(c.Logging.Level); err != nil {
		return err
	}
	switch c.Logging.Format {
	case "", "text", "json":
	default:
		return fmt.Errorf("logging.format %q must be text or json", c.Logging.Format)
	}
	return nil
}

// MailConfigured reports whether both sender credentials are set.
func (c *Config) MailConfigured() bool {
	return c.Mail.Address != "" && c.Mail.Password != ""
}

// MailAddr returns host:port for the outbound mail endpoint.
func (c *Config) MailAddr() string {
	return c.Mail.Host + ":" + strconv.Itoa(c.Mail.Port)
}

// ParseLevel maps a logging.level value to a slog level. Empty means info.
func ParseLevel(level string) (slog.Level, error) {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("logging.level %q is not one of debug, info, warn, error", level)
	}
}

// parseDurations converts the raw duration strings into time.Duration values
func parseDurations(cfg *Config) error {
	var err error

	if cfg.Server.ToolTimeoutRaw != "" {
		cfg.Server.ToolTimeout, err = time.ParseDuration(cfg.Server.ToolTimeoutRaw)
		if err != nil {
			return fmt.Errorf("parsing tool_timeout %q: %w", cfg.Server.ToolTimeoutRaw, err)
		}
	}

	if cfg.Mail.TimeoutRaw != "" {
		cfg.Mail.Timeout, err = time.ParseDuration(cfg.Mail.TimeoutRaw)
		if err != nil {
			return fmt.Errorf("parsing mail timeout %q: %w", cfg.Mail.TimeoutRaw, err)
		}
	}

	return nil
}
