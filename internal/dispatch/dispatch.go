// Package dispatch loads one notification config, formats its message, and
// delivers it to the configured Discord webhook.
//
// There are no retries and no backoff: one POST per invocation, and cron's
// next scheduled run is the retry mechanism. Failures are forwarded to the
// error webhook when one is configured, and always surface to the caller so
// the CLI can exit non-zero for cron's own logging.
package dispatch

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"discordnotify/internal/configstore"
	"discordnotify/internal/discord"
	"discordnotify/internal/history"
	"discordnotify/internal/placeholder"
	"discordnotify/pkg/logx"
)

// TestPrefix marks dashboard-triggered test sends.
const TestPrefix = "🧪 **TEST NOTIFICATION**\n\n"

const previewLen = 80

// Dispatcher sends notifications from config files.
type Dispatcher struct {
	client *discord.Client

	// errorWebhook resolves the error-webhook URL at failure time, so edits
	// made in the dashboard apply to the very next send. Returns "" when no
	// error webhook is configured.
	errorWebhook func() string

	hist *history.Log // optional
	log  logx.Logger
}

func New(client *discord.Client, errorWebhook func() string, hist *history.Log, log logx.Logger) *Dispatcher {
	if client == nil {
		client = discord.New(nil)
	}
	if errorWebhook == nil {
		errorWebhook = func() string { return "" }
	}
	if log.IsZero() {
		log = logx.Nop()
	}
	return &Dispatcher{client: client, errorWebhook: errorWebhook, hist: hist, log: log}
}

// Send loads the config at path, validates it, substitutes date placeholders
// using now, and posts the result. On failure it notifies the error webhook
// (best-effort) and records the outcome before returning the primary error.
func (d *Dispatcher) Send(ctx context.Context, path string, now time.Time) error {
	return d.send(ctx, path, now, "", false)
}

// SendTest behaves like Send but prefixes the message with TestPrefix so the
// receiving channel can tell test traffic apart.
func (d *Dispatcher) SendTest(ctx context.Context, path string, now time.Time) error {
	return d.send(ctx, path, now, TestPrefix, true)
}

func (d *Dispatcher) send(ctx context.Context, path string, now time.Time, prefix string, test bool) error {
	cfg, err := configstore.LoadFile(path)
	if err != nil {
		cerr := &ConfigError{Path: path, Reason: err.Error()}
		d.fail(ctx, path, now, cerr, "config", "", test)
		return cerr
	}

	if cerr := validate(path, cfg); cerr != nil {
		d.fail(ctx, path, now, cerr, "config", "", test)
		return cerr
	}

	msg := prefix + placeholder.Format(cfg.Message, now)

	if err := d.client.Send(ctx, cfg.WebhookURL, msg); err != nil {
		serr := &SendError{Path: path, Cause: err}
		d.fail(ctx, path, now, serr, "send", msg, test)
		return serr
	}

	d.log.Info("notification sent", logx.String("config", path), logx.Bool("test", test))
	d.record(history.Entry{Time: now, Config: path, OK: true, Preview: preview(msg), Test: test})
	return nil
}

// Post sends content straight to a webhook URL, bypassing config loading and
// placeholder substitution. The dashboard's "test error webhook" uses it.
func (d *Dispatcher) Post(ctx context.Context, url, content string) error {
	return d.client.Send(ctx, url, content)
}

func validate(path string, cfg configstore.Notification) *ConfigError {
	if strings.TrimSpace(cfg.WebhookURL) == "" {
		return &ConfigError{Path: path, Reason: "missing required field: webhook_url"}
	}
	if strings.TrimSpace(cfg.Message) == "" {
		return &ConfigError{Path: path, Reason: "missing required field: message"}
	}
	return nil
}

// fail logs the primary error, forwards it to the error webhook when
// configured, and appends a history entry. It never returns an error of its
// own; the primary error is what the caller reports.
func (d *Dispatcher) fail(ctx context.Context, path string, now time.Time, primary error, kind, msg string, test bool) {
	d.log.Error("notification failed",
		logx.String("config", path),
		logx.String("kind", kind),
		logx.Err(primary),
	)
	d.record(history.Entry{
		Time: now, Config: path, OK: false,
		Kind: kind, Error: primary.Error(), Preview: preview(msg), Test: test,
	})

	url := d.errorWebhook()
	if url == "" {
		d.log.Warn("no error webhook configured, failure not forwarded", logx.String("config", path))
		return
	}

	// The primary failure may be the caller's own deadline expiring; the
	// error report gets a fresh deadline so it still goes out.
	notifyCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), discord.DefaultTimeout)
	defer cancel()

	content := errorContent(path, now, kind, primary)
	if err := d.client.Send(notifyCtx, url, content); err != nil {
		nerr := &NotifyError{Cause: err}
		d.log.Error("error-webhook notification failed", logx.Err(nerr))
	}
}

// errorContent mirrors the structured failure report channels expect: config
// path, timestamp, error kind, error message.
func errorContent(path string, now time.Time, kind string, primary error) string {
	var b strings.Builder
	b.WriteString("❌ **Discord Notifier Error**\n\n")
	fmt.Fprintf(&b, "Config file: `%s`\n", path)
	fmt.Fprintf(&b, "Time: %s\n", now.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(&b, "Kind: %s\n", kind)
	fmt.Fprintf(&b, "Error: %v", primary)
	return b.String()
}

func (d *Dispatcher) record(e history.Entry) {
	if d.hist == nil {
		return
	}
	if err := d.hist.Append(e); err != nil {
		d.log.Warn("history append failed", logx.Err(err))
	}
}

func preview(msg string) string {
	msg = strings.ReplaceAll(msg, "\n", " ")
	if len(msg) > previewLen {
		return msg[:previewLen] + "..."
	}
	return msg
}

// IsConfigError reports whether err is (or wraps) a ConfigError.
func IsConfigError(err error) bool {
	var ce *ConfigError
	return errors.As(err, &ce)
}
