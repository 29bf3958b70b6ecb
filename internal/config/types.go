// Package config holds the web dashboard daemon's own configuration.
//
// The daemon config is a YAML file decoded strictly (unknown keys are
// rejected) and watched for changes, so logging settings can be adjusted
// without restarting. Notification configs are a separate concern; see
// package configstore.
package config

import "strings"

type Config struct {
	// Listen is the dashboard bind address. Defaults to loopback; set
	// "0.0.0.0:8080" for LAN access (trusted-network assumption, no auth).
	Listen string `json:"listen"`

	// ConfigsDir holds the notification YAML files.
	ConfigsDir string `json:"configs_dir"`

	// ErrorWebhookFile overrides the error-webhook config location.
	// Empty means error_webhook.yaml beside ConfigsDir.
	ErrorWebhookFile string `json:"error_webhook_file,omitempty"`

	// HistoryFile is the send-history JSONL path.
	HistoryFile string `json:"history_file,omitempty"`

	// NotifyBin is the absolute path of the CLI sender written into crontab
	// lines. Cron runs with a minimal environment, so relative paths or
	// $PATH lookups are not an option. Empty means "discordnotify-send"
	// next to the running dashboard binary.
	NotifyBin string `json:"notify_bin,omitempty"`

	Logging LoggingConfig `json:"logging"`
}

type LoggingConfig struct {
	Level   string         `json:"level"`
	Console bool           `json:"console"`
	File    LoggingFile    `json:"file"`
	Webhook LoggingWebhook `json:"webhook"`
}

type LoggingFile struct {
	Enabled bool   `json:"enabled"`
	Path    string `json:"path"`
}

// LoggingWebhook forwards warn+ dashboard log records to the error webhook.
type LoggingWebhook struct {
	Enabled    bool   `json:"enabled"`
	MinLevel   string `json:"min_level"`
	RatePerSec int    `json:"rate_per_sec"`
}

// Default returns the built-in config used when no file exists.
func Default() *Config {
	return &Config{
		Listen:     "127.0.0.1:8080",
		ConfigsDir: "./configs",
		Logging: LoggingConfig{
			Level:   "INFO",
			Console: true,
			Webhook: LoggingWebhook{MinLevel: "WARN", RatePerSec: 1},
		},
	}
}

// withDefaults fills zero fields in place.
func (c *Config) withDefaults() {
	if strings.TrimSpace(c.Listen) == "" {
		c.Listen = "127.0.0.1:8080"
	}
	if strings.TrimSpace(c.ConfigsDir) == "" {
		c.ConfigsDir = "./configs"
	}
	if strings.TrimSpace(c.Logging.Level) == "" {
		c.Logging.Level = "INFO"
	}
	if strings.TrimSpace(c.Logging.Webhook.MinLevel) == "" {
		c.Logging.Webhook.MinLevel = "WARN"
	}
	if c.Logging.Webhook.RatePerSec <= 0 {
		c.Logging.Webhook.RatePerSec = 1
	}
}
