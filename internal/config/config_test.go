// ABOUTME: Tests for configuration loading and parsing
// ABOUTME: Covers YAML and TOML loading, env var expansion, overrides, and duration parsing

package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// writeConfig writes content to name inside a temp dir and returns the path.
func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}
	return path
}

// clearEnv blanks the variables ApplyEnv reads so the host environment
// cannot leak into a test.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{EnvToken, EnvHTTPAddr, EnvEmailAddress, EnvEmailPassword} {
		t.Setenv(k, "")
	}
}

func TestLoad_ValidYAML(t *testing.T) {
	clearEnv(t)
	configPath := writeConfig(t, "config.yaml", `
server:
  http_addr: "127.0.0.1:9000"
  tool_timeout: "10s"

auth:
  token: "my-secret-token"

mail:
  address: "me@example.com"
  password: "app-password"
  host: "smtp.example.com"
  port: 2465
  timeout: "5s"

reminders:
  log_path: "/tmp/reminders.txt"

logging:
  level: "debug"
  format: "json"
`)

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.HTTPAddr != "127.0.0.1:9000" {
		t.Errorf("Server.HTTPAddr = %q, want %q", cfg.Server.HTTPAddr, "127.0.0.1:9000")
	}
	if cfg.Server.ToolTimeout != 10*time.Second {
		t.Errorf("Server.ToolTimeout = %v, want %v", cfg.Server.ToolTimeout, 10*time.Second)
	}
	if cfg.Auth.Token != "my-secret-token" {
		t.Errorf("Auth.Token = %q, want %q", cfg.Auth.Token, "my-secret-token")
	}
	if cfg.Mail.Address != "me@example.com" {
		t.Errorf("Mail.Address = %q, want %q", cfg.Mail.Address, "me@example.com")
	}
	if cfg.Mail.Host != "smtp.example.com" || cfg.Mail.Port != 2465 {
		t.Errorf("Mail endpoint = %s, want smtp.example.com:2465", cfg.MailAddr())
	}
	if cfg.Mail.Timeout != 5*time.Second {
		t.Errorf("Mail.Timeout = %v, want %v", cfg.Mail.Timeout, 5*time.Second)
	}
	if cfg.Reminders.LogPath != "/tmp/reminders.txt" {
		t.Errorf("Reminders.LogPath = %q, want %q", cfg.Reminders.LogPath, "/tmp/reminders.txt")
	}
	if cfg.Logging.Level != "debug" || cfg.Logging.Format != "json" {
		t.Errorf("Logging = %+v, want debug/json", cfg.Logging)
	}
	if !cfg.MailConfigured() {
		t.Error("MailConfigured() = false, want true")
	}
}

func TestLoad_ValidTOML(t *testing.T) {
	clearEnv(t)
	configPath := writeConfig(t, "config.toml", `
[server]
http_addr = "127.0.0.1:9001"

[auth]
token = "toml-token"

[mail]
port = 587
timeout = "1m"

[logging]
level = "warn"
`)

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.HTTPAddr != "127.0.0.1:9001" {
		t.Errorf("Server.HTTPAddr = %q, want %q", cfg.Server.HTTPAddr, "127.0.0.1:9001")
	}
	if cfg.Auth.Token != "toml-token" {
		t.Errorf("Auth.Token = %q, want %q", cfg.Auth.Token, "toml-token")
	}
	if cfg.Mail.Port != 587 {
		t.Errorf("Mail.Port = %d, want 587", cfg.Mail.Port)
	}
	if cfg.Mail.Host != DefaultMailHost {
		t.Errorf("Mail.Host = %q, want default %q", cfg.Mail.Host, DefaultMailHost)
	}
	if cfg.Mail.Timeout != time.Minute {
		t.Errorf("Mail.Timeout = %v, want 1m", cfg.Mail.Timeout)
	}
	if cfg.Logging.Level != "warn" {
		t.Errorf("Logging.Level = %q, want warn", cfg.Logging.Level)
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)
	configPath := writeConfig(t, "config.yaml", `
auth:
  token: "only-token"
`)

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.HTTPAddr != DefaultHTTPAddr {
		t.Errorf("Server.HTTPAddr = %q, want %q", cfg.Server.HTTPAddr, DefaultHTTPAddr)
	}
	if cfg.Server.ToolTimeout != DefaultToolTimeout {
		t.Errorf("Server.ToolTimeout = %v, want %v", cfg.Server.ToolTimeout, DefaultToolTimeout)
	}
	if cfg.MailAddr() != "smtp.gmail.com:465" {
		t.Errorf("MailAddr() = %q, want smtp.gmail.com:465", cfg.MailAddr())
	}
	if cfg.Reminders.LogPath != DefaultReminderLogPath {
		t.Errorf("Reminders.LogPath = %q, want %q", cfg.Reminders.LogPath, DefaultReminderLogPath)
	}
	if cfg.MailConfigured() {
		t.Error("MailConfigured() = true, want false without credentials")
	}
}

func TestLoad_EnvVarExpansion(t *testing.T) {
	clearEnv(t)
	t.Setenv("TEST_REMIND_SECRET", "expanded-secret")
	t.Setenv("TEST_MAIL_USER", "bot@example.com")

	configPath := writeConfig(t, "config.yaml", `
auth:
  token: "${TEST_REMIND_SECRET}"
mail:
  address: "${TEST_MAIL_USER}"
  password: "${TEST_UNSET_VARIABLE}"
`)

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Auth.Token != "expanded-secret" {
		t.Errorf("Auth.Token = %q, want %q", cfg.Auth.Token, "expanded-secret")
	}
	if cfg.Mail.Address != "bot@example.com" {
		t.Errorf("Mail.Address = %q, want %q", cfg.Mail.Address, "bot@example.com")
	}
	if cfg.Mail.Password != "" {
		t.Errorf("Mail.Password = %q, want empty for unset variable", cfg.Mail.Password)
	}
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	clearEnv(t)
	t.Setenv(EnvToken, "env-token")
	t.Setenv(EnvEmailAddress, "env@example.com")
	t.Setenv(EnvEmailPassword, "env-password")

	configPath := writeConfig(t, "config.yaml", `
auth:
  token: "file-token"
mail:
  address: "file@example.com"
`)

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Auth.Token != "env-token" {
		t.Errorf("Auth.Token = %q, want %q", cfg.Auth.Token, "env-token")
	}
	if cfg.Mail.Address != "env@example.com" {
		t.Errorf("Mail.Address = %q, want %q", cfg.Mail.Address, "env@example.com")
	}
	if cfg.Mail.Password != "env-password" {
		t.Errorf("Mail.Password = %q, want %q", cfg.Mail.Password, "env-password")
	}
}

func TestFromEnv(t *testing.T) {
	clearEnv(t)

	if _, err := FromEnv(); err == nil {
		t.Fatal("FromEnv() expected error without token")
	}

	t.Setenv(EnvToken, "env-only")
	t.Setenv(EnvHTTPAddr, "127.0.0.1:18085")

	cfg, err := FromEnv()
	if err != nil {
		t.Fatalf("FromEnv() error = %v", err)
	}
	if cfg.Auth.Token != "env-only" {
		t.Errorf("Auth.Token = %q, want %q", cfg.Auth.Token, "env-only")
	}
	if cfg.Server.HTTPAddr != "127.0.0.1:18085" {
		t.Errorf("Server.HTTPAddr = %q, want %q", cfg.Server.HTTPAddr, "127.0.0.1:18085")
	}
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
		wantErr string
	}{
		{
			name:    "missing token",
			file:    "config.yaml",
			content: "server:\n  http_addr: \"0.0.0.0:8085\"\n",
			wantErr: "auth.token is required",
		},
		{
			name:    "invalid duration",
			file:    "config.yaml",
			content: "auth:\n  token: t\nserver:\n  tool_timeout: \"soon\"\n",
			wantErr: "parsing tool_timeout",
		},
		{
			name:    "invalid yaml",
			file:    "config.yaml",
			content: "auth: [unclosed\n",
			wantErr: "parsing config file",
		},
		{
			name:    "invalid toml",
			file:    "config.toml",
			content: "[auth\ntoken = 1\n",
			wantErr: "parsing config file",
		},
		{
			name:    "bad port",
			file:    "config.yaml",
			content: "auth:\n  token: t\nmail:\n  port: 70000\n",
			wantErr: "mail.port",
		},
		{
			name:    "bad log level",
			file:    "config.yaml",
			content: "auth:\n  token: t\nlogging:\n  level: loud\n",
			wantErr: "logging.level",
		},
		{
			name:    "bad log format",
			file:    "config.yaml",
			content: "auth:\n  token: t\nlogging:\n  format: xml\n",
			wantErr: "logging.format",
		},
		{
			name:    "empty http addr",
			file:    "config.yaml",
			content: "auth:\n  token: t\nserver:\n  http_addr: \"\"\n",
			wantErr: "server.http_addr is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			_, err := Load(writeConfig(t, tt.file, tt.content))
			if err == nil {
				t.Fatal("Load() expected error, got nil")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Load() error = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err == nil || !strings.Contains(err.Error(), "reading config file") {
		t.Errorf("Load() error = %v, want reading config file error", err)
	}
}

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"":        slog.LevelInfo,
		"info":    slog.LevelInfo,
		"DEBUG":   slog.LevelDebug,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
	}
	for in, want := range tests {
		got, err := ParseLevel(in)
		if err != nil {
			t.Errorf("ParseLevel(%q) error = %v", in, err)
		}
		if got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}
