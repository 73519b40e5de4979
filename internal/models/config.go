package models

import "time"

const (
	DefaultIMAPPort       = 993
	DefaultMailbox        = "INBOX"
	DefaultTelegramAPIURL = "https://api.telegram.org"
	DefaultPollInterval   = 30
	DefaultListenAddress  = ":8000"
	DefaultLogLevel       = "info"
)

// Config represents the process configuration file
type Config struct {
	Listen    string           `yaml:"listen"`
	LogLevel  string           `yaml:"logLevel"`
	Forwarder *ForwarderConfig `yaml:"forwarder"`
}

// ForwarderConfig holds everything one worker run needs: the mailbox to poll and the Telegram chat to post to.
type ForwarderConfig struct {
	ImapHost         string `yaml:"imap_host" json:"imap_host"`
	ImapPort         int    `yaml:"imap_port" json:"imap_port"`
	EmailUser        string `yaml:"email_user" json:"email_user"`
	EmailPass        string `yaml:"email_pass" json:"email_pass"`
	Mailbox          string `yaml:"mailbox" json:"mailbox"`
	TelegramBotToken string `yaml:"telegram_bot_token" json:"telegram_bot_token"`
	TelegramChatID   string `yaml:"telegram_chat_id" json:"telegram_chat_id"`
	TelegramAPIURL   string `yaml:"telegram_api_url" json:"telegram_api_url"`
	PollInterval     int    `yaml:"poll_interval" json:"poll_interval"` // seconds
}

// Interval returns the poll interval as a time.Duration
func (c *ForwarderConfig) Interval() time.Duration {
	return time.Duration(c.PollInterval) * time.Second
}
