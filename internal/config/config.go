package config

import (
	"os"

	"imap-telegram-forwarder/internal/models"

	"github.com/cockroachdb/errors"
	"gopkg.in/yaml.v2"
)

// Load reads the configuration from the specified YAML file and returns a Config struct with defaults applied
func Load(filepath string) (*models.Config, error) {
	configFile, err := os.ReadFile(filepath)
	if err != nil {
		return nil, errors.Wrap(err, "read config file")
	}

	var config models.Config
	if err := yaml.Unmarshal(configFile, &config); err != nil {
		return nil, errors.Wrap(err, "parse config file")
	}

	if config.Listen == "" {
		config.Listen = models.DefaultListenAddress
	}
	if config.LogLevel == "" {
		config.LogLevel = models.DefaultLogLevel
	}

	if config.Forwarder != nil {
		ApplyDefaults(config.Forwarder)
		if err := Validate(config.Forwarder); err != nil {
			return nil, err
		}
	}

	return &config, nil
}

// ApplyDefaults fills the optional forwarder fields left empty
func ApplyDefaults(cfg *models.ForwarderConfig) {
	if cfg.ImapPort == 0 {
		cfg.ImapPort = models.DefaultIMAPPort
	}
	if cfg.Mailbox == "" {
		cfg.Mailbox = models.DefaultMailbox
	}
	if cfg.TelegramAPIURL == "" {
		cfg.TelegramAPIURL = models.DefaultTelegramAPIURL
	}
	if cfg.PollInterval == 0 {
		cfg.PollInterval = models.DefaultPollInterval
	}
}

// Validate checks that a forwarder configuration can drive a worker run
func Validate(cfg *models.ForwarderConfig) error {
	var problem string
	switch {
	case cfg.ImapHost == "":
		problem = "imap_host is required"
	case cfg.ImapPort <= 0 || cfg.ImapPort > 65535:
		problem = "imap_port must be between 1 and 65535"
	case cfg.EmailUser == "":
		problem = "email_user is required"
	case cfg.EmailPass == "":
		problem = "email_pass is required"
	case cfg.TelegramBotToken == "":
		problem = "telegram_bot_token is required"
	case cfg.TelegramChatID == "":
		problem = "telegram_chat_id is required"
	case cfg.PollInterval <= 0:
		problem = "poll_interval must be greater than zero"
	default:
		return nil
	}
	return errors.Mark(errors.New(problem), models.ErrInvalidConfig)
}
