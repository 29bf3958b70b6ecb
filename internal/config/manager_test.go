package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "webui.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestParseStrict(t *testing.T) {
	t.Parallel()

	m := NewManager(writeFile(t, `
listen: "0.0.0.0:9000"
configs_dir: /etc/discordnotify/configs
logging:
  level: DEBUG
  console: true
  file:
    enabled: true
    path: /var/log/discordnotify.log
  webhook:
    enabled: true
    min_level: ERROR
    rate_per_sec: 2
`))
	cfg, err := m.Parse()
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if cfg.Listen != "0.0.0.0:9000" {
		t.Fatalf("Listen = %q", cfg.Listen)
	}
	if !cfg.Logging.File.Enabled || cfg.Logging.File.Path != "/var/log/discordnotify.log" {
		t.Fatalf("file logging = %+v", cfg.Logging.File)
	}
	if cfg.Logging.Webhook.RatePerSec != 2 {
		t.Fatalf("rate = %d", cfg.Logging.Webhook.RatePerSec)
	}
}

func TestParseRejectsUnknownKeys(t *testing.T) {
	t.Parallel()
	m := NewManager(writeFile(t, "listen: \":8080\"\nbogus_key: 1\n"))
	_, err := m.Parse()
	if err == nil || !strings.Contains(err.Error(), "bogus_key") {
		t.Fatalf("err = %v, want unknown-field error naming bogus_key", err)
	}
}

func TestParseAppliesDefaults(t *testing.T) {
	t.Parallel()
	m := NewManager(writeFile(t, "logging:\n  console: true\n"))
	cfg, err := m.Parse()
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if cfg.Listen != "127.0.0.1:8080" {
		t.Fatalf("Listen default = %q", cfg.Listen)
	}
	if cfg.Logging.Level != "INFO" || cfg.Logging.Webhook.MinLevel != "WARN" {
		t.Fatalf("logging defaults = %+v", cfg.Logging)
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	t.Parallel()
	m := NewManager(filepath.Join(t.TempDir(), "absent.yaml"))
	cfg, err := m.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Listen != "127.0.0.1:8080" || cfg.ConfigsDir != "./configs" {
		t.Fatalf("defaults = %+v", cfg)
	}
	if m.Get() != cfg {
		t.Fatal("Load did not commit")
	}
}

func TestSubscribePublish(t *testing.T) {
	t.Parallel()
	m := NewManager("unused")
	ch := m.Subscribe(1)
	defer m.Unsubscribe(ch)

	cfg := Default()
	m.publish(cfg)
	select {
	case got := <-ch:
		if got != cfg {
			t.Fatal("wrong config delivered")
		}
	default:
		t.Fatal("no config delivered")
	}

	// A second publish into a full buffer must replace, not block.
	first, second := Default(), Default()
	m.publish(first)
	m.publish(second)
	if got := <-ch; got != second {
		t.Fatal("expected newest config after overflow")
	}
}
