package config

import (
	"os"
	"testing"

	"imap-telegram-forwarder/internal/models"

	"github.com/cockroachdb/errors"
)

func writeTempConfig(t *testing.T, content string) string {
	t.Helper()

	tmpFile, err := os.CreateTemp(t.TempDir(), "config-*.yaml")
	if err != nil {
		t.Fatalf("Failed to create temp file: %v", err)
	}
	if _, err := tmpFile.Write([]byte(content)); err != nil {
		t.Fatalf("Failed to write temp file: %v", err)
	}
	_ = tmpFile.Close()
	return tmpFile.Name()
}

func TestLoad(t *testing.T) {
	yamlContent := `listen: "127.0.0.1:9000"
logLevel: debug
forwarder:
  imap_host: "imap.test.com"
  imap_port: 1993
  email_user: "test@example.com"
  email_pass: "testpass"
  telegram_bot_token: "123:ABC"
  telegram_chat_id: "42"
  poll_interval: 10
`

	cfg, err := Load(writeTempConfig(t, yamlContent))
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.Listen != "127.0.0.1:9000" {
		t.Errorf("Expected listen '127.0.0.1:9000', got '%s'", cfg.Listen)
	}

	if cfg.LogLevel != "debug" {
		t.Errorf("Expected logLevel 'debug', got '%s'", cfg.LogLevel)
	}

	if cfg.Forwarder == nil {
		t.Fatal("Expected forwarder section to be loaded")
	}

	if cfg.Forwarder.ImapHost != "imap.test.com" {
		t.Errorf("Expected imap_host 'imap.test.com', got '%s'", cfg.Forwarder.ImapHost)
	}

	if cfg.Forwarder.ImapPort != 1993 {
		t.Errorf("Expected imap_port 1993, got %d", cfg.Forwarder.ImapPort)
	}

	if cfg.Forwarder.PollInterval != 10 {
		t.Errorf("Expected poll_interval 10, got %d", cfg.Forwarder.PollInterval)
	}

	if cfg.Forwarder.Mailbox != models.DefaultMailbox {
		t.Errorf("Expected default mailbox '%s', got '%s'", models.DefaultMailbox, cfg.Forwarder.Mailbox)
	}

	if cfg.Forwarder.TelegramAPIURL != models.DefaultTelegramAPIURL {
		t.Errorf("Expected default API URL, got '%s'", cfg.Forwarder.TelegramAPIURL)
	}
}

func TestLoad_WithoutForwarder(t *testing.T) {
	cfg, err := Load(writeTempConfig(t, "logLevel: warn\n"))
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.Forwarder != nil {
		t.Error("Expected no forwarder section")
	}

	if cfg.Listen != models.DefaultListenAddress {
		t.Errorf("Expected default listen address, got '%s'", cfg.Listen)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load("does-not-exist.yaml")
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("Expected os.ErrNotExist, got %v", err)
	}
}

func TestLoad_InvalidForwarder(t *testing.T) {
	_, err := Load(writeTempConfig(t, "forwarder:\n  imap_host: imap.test.com\n"))
	if !errors.Is(err, models.ErrInvalidConfig) {
		t.Errorf("Expected ErrInvalidConfig, got %v", err)
	}
}

func TestValidate(t *testing.T) {
	valid := func() *models.ForwarderConfig {
		return &models.ForwarderConfig{
			ImapHost:         "imap.test.com",
			ImapPort:         993,
			EmailUser:        "user@test.com",
			EmailPass:        "secret",
			TelegramBotToken: "123:ABC",
			TelegramChatID:   "42",
			PollInterval:     30,
		}
	}

	tests := []struct {
		name    string
		mutate  func(c *models.ForwarderConfig)
		wantErr bool
	}{
		{name: "Valid", mutate: func(c *models.ForwarderConfig) {}},
		{name: "Missing host", mutate: func(c *models.ForwarderConfig) { c.ImapHost = "" }, wantErr: true},
		{name: "Bad port", mutate: func(c *models.ForwarderConfig) { c.ImapPort = 70000 }, wantErr: true},
		{name: "Missing user", mutate: func(c *models.ForwarderConfig) { c.EmailUser = "" }, wantErr: true},
		{name: "Missing password", mutate: func(c *models.ForwarderConfig) { c.EmailPass = "" }, wantErr: true},
		{name: "Missing token", mutate: func(c *models.ForwarderConfig) { c.TelegramBotToken = "" }, wantErr: true},
		{name: "Missing chat", mutate: func(c *models.ForwarderConfig) { c.TelegramChatID = "" }, wantErr: true},
		{name: "Negative interval", mutate: func(c *models.ForwarderConfig) { c.PollInterval = -1 }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := Validate(cfg)
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, models.ErrInvalidConfig) {
				t.Errorf("Validate() error not marked ErrInvalidConfig: %v", err)
			}
		})
	}
}

func TestApplyDefaults(t *testing.T) {
	cfg := &models.ForwarderConfig{}
	ApplyDefaults(cfg)

	if cfg.ImapPort != models.DefaultIMAPPort {
		t.Errorf("Expected default port %d, got %d", models.DefaultIMAPPort, cfg.ImapPort)
	}
	if cfg.PollInterval != models.DefaultPollInterval {
		t.Errorf("Expected default interval %d, got %d", models.DefaultPollInterval, cfg.PollInterval)
	}
}
