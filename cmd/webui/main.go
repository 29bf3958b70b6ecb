// Command discordnotify-webui serves the local dashboard for managing
// notification configs and their crontab schedules.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	sd "github.com/coreos/go-systemd/v22/daemon"
	"github.com/joho/godotenv"

	"discordnotify/internal/config"
	"discordnotify/internal/configstore"
	"discordnotify/internal/discord"
	"discordnotify/internal/dispatch"
	"discordnotify/internal/history"
	"discordnotify/internal/schedule"
	"discordnotify/internal/web"
	"discordnotify/pkg/logx"
)

// defaultConfigPath is used when neither the -config flag nor
// DISCORDNOTIFY_CONFIG names a config file.
const defaultConfigPath = "./webui.yaml"

func main() {
	var cfgPath, addr string
	flag.StringVar(&cfgPath, "config", "", "path to dashboard config yaml (default "+defaultConfigPath+", env DISCORDNOTIFY_CONFIG)")
	flag.StringVar(&addr, "addr", "", "listen address override (env DISCORDNOTIFY_ADDR)")
	flag.Parse()

	// .env is optional; flags beat env, env beats the config file.
	_ = godotenv.Load()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, resolveConfigPath(cfgPath), resolveAddr(addr)); err != nil {
		fmt.Fprintln(os.Stderr, "fatal:", err)
		os.Exit(1)
	}
}

func resolveConfigPath(flagVal string) string {
	if flagVal != "" {
		return flagVal
	}
	if v := strings.TrimSpace(os.Getenv("DISCORDNOTIFY_CONFIG")); v != "" {
		return v
	}
	return defaultConfigPath
}

// resolveAddr picks the listen-address override. Empty means the config
// file's listen setting applies.
func resolveAddr(flagVal string) string {
	if flagVal != "" {
		return flagVal
	}
	return strings.TrimSpace(os.Getenv("DISCORDNOTIFY_ADDR"))
}

func run(ctx context.Context, cfgPath, addrOverride string) error {
	mgr := config.NewManager(cfgPath)
	cfg, err := mgr.Load()
	if err != nil {
		return err
	}

	sender := discord.New(nil)
	svc, log := logx.New(toLogx(cfg.Logging), sender)
	defer svc.Close()
	mgr.SetLogger(log.With(logx.String("comp", "config")))

	configsDir, err := filepath.Abs(cfg.ConfigsDir)
	if err != nil {
		return fmt.Errorf("resolving configs dir: %w", err)
	}
	base := filepath.Dir(configsDir)
	errFile := cfg.ErrorWebhookFile
	if errFile == "" {
		errFile = filepath.Join(base, configstore.ErrorWebhookFile)
	}
	histFile := cfg.HistoryFile
	if histFile == "" {
		histFile = filepath.Join(base, "history.jsonl")
	}
	notifyBin, err := resolveNotifyBin(cfg.NotifyBin)
	if err != nil {
		return err
	}

	store := configstore.New(configsDir, errFile)
	svc.SetWebhookTarget(store.ReadErrorWebhook())

	hist := history.New(histFile)
	disp := dispatch.New(sender, store.ReadErrorWebhook, hist, log.With(logx.String("comp", "dispatch")))
	crontab := schedule.NewCrontab(nil, log.With(logx.String("comp", "crontab")))
	srv := web.NewServer(store, crontab, disp, hist, notifyBin, log.With(logx.String("comp", "web")))

	addr := cfg.Listen
	if addrOverride != "" {
		addr = addrOverride
	}
	var handler http.Handler = srv
	if !isLoopback(addr) {
		log.Warn("listening beyond loopback with no authentication", logx.String("addr", addr))
		handler = web.CORSMiddleware()(srv)
	}

	httpSrv := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Hot reload: logging changes apply in place, and the webhook sink
	// re-reads its target since the settings page may have changed it.
	go func() {
		if err := mgr.Watch(ctx); err != nil {
			log.Warn("config watch stopped", logx.Err(err))
		}
	}()
	sub := mgr.Subscribe(4)
	defer mgr.Unsubscribe(sub)
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case c := <-sub:
				svc.Apply(toLogx(c.Logging))
				svc.SetWebhookTarget(store.ReadErrorWebhook())
				log.Info("configuration reloaded")
			}
		}
	}()

	errCh := make(chan error, 1)
	go func() {
		log.Info("dashboard listening",
			logx.String("addr", addr),
			logx.String("configs_dir", configsDir),
			logx.String("notify_bin", notifyBin),
		)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()
	_, _ = sd.SdNotify(false, sd.SdNotifyReady)

	select {
	case <-ctx.Done():
	case err := <-errCh:
		return err
	}
	_, _ = sd.SdNotify(false, sd.SdNotifyStopping)
	log.Info("shutting down")

	shutCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return httpSrv.Shutdown(shutCtx)
}

// resolveNotifyBin picks the CLI sender path written into crontab lines.
// Cron jobs run with a minimal PATH, so the path must be absolute.
func resolveNotifyBin(configured string) (string, error) {
	if configured != "" {
		return filepath.Abs(configured)
	}
	exe, err := os.Executable()
	if err != nil {
		return "", fmt.Errorf("locating sender binary: %w", err)
	}
	return filepath.Join(filepath.Dir(exe), "discordnotify-send"), nil
}

func isLoopback(addr string) bool {
	host, _, err := net.SplitHostPort(addr)
	if err != nil {
		host = addr
	}
	// An empty host (":8080") binds every interface.
	if host == "" {
		return false
	}
	if strings.EqualFold(host, "localhost") {
		return true
	}
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}

func toLogx(c config.LoggingConfig) logx.Config {
	return logx.Config{
		Level:   c.Level,
		Console: c.Console,
		File: logx.FileConfig{
			Enabled: c.File.Enabled,
			Path:    c.File.Path,
		},
		Webhook: logx.WebhookConfig{
			Enabled:    c.Webhook.Enabled,
			MinLevel:   c.Webhook.MinLevel,
			RatePerSec: c.Webhook.RatePerSec,
		},
	}
}
