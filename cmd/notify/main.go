// Command discordnotify-send delivers one notification config to Discord.
//
// It is the binary cron invokes, so it stays deliberately small: read the
// YAML config, expand date placeholders, POST the webhook, record history,
// and forward failures to the error webhook. Exit code 0 on success, 1 on
// any failure.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"discordnotify/internal/configstore"
	"discordnotify/internal/discord"
	"discordnotify/internal/dispatch"
	"discordnotify/internal/history"
	"discordnotify/pkg/logx"
)

const sendTimeout = 10 * time.Second

func main() {
	var (
		errorWebhook string
		historyFile  string
		logLevel     string
		testSend     bool
	)
	flag.StringVar(&errorWebhook, "error-webhook", "", "error webhook yaml path (default: error_webhook.yaml beside the configs dir)")
	flag.StringVar(&historyFile, "history", "", "send history jsonl path (default: history.jsonl beside the configs dir)")
	flag.StringVar(&logLevel, "log-level", "INFO", "log level (TRACE..ERROR)")
	flag.BoolVar(&testSend, "test", false, "prefix the message with a test banner")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "usage: %s [flags] <config.yaml>\n", filepath.Base(os.Args[0]))
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(1)
	}

	log := logx.NewConsole(logLevel)

	cfgPath, err := filepath.Abs(flag.Arg(0))
	if err != nil {
		log.Error("resolving config path", logx.String("config", flag.Arg(0)), logx.Err(err))
		os.Exit(1)
	}

	// Configs live in their own directory; the error webhook and history
	// files sit beside that directory unless overridden.
	base := filepath.Dir(filepath.Dir(cfgPath))
	if errorWebhook == "" {
		errorWebhook = filepath.Join(base, configstore.ErrorWebhookFile)
	}
	if historyFile == "" {
		historyFile = filepath.Join(base, "history.jsonl")
	}

	store := configstore.New(filepath.Dir(cfgPath), errorWebhook)
	disp := dispatch.New(discord.New(nil), store.ReadErrorWebhook, history.New(historyFile), log)

	ctx, cancel := context.WithTimeout(context.Background(), sendTimeout)
	defer cancel()

	send := disp.Send
	if testSend {
		send = disp.SendTest
	}
	if err := send(ctx, cfgPath, time.Now()); err != nil {
		msg := "delivery failed"
		if dispatch.IsConfigError(err) {
			msg = "invalid config"
		}
		log.Error(msg, logx.String("config", cfgPath), logx.Err(err))
		os.Exit(1)
	}
	log.Info("notification sent", logx.String("config", cfgPath))
}
