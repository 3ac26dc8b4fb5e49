package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"

	"spincube/app"
	"spincube/internal/buildinfo"
	"spincube/internal/logging"
)

func main() {
	flags := app.RegisterFlags(flag.CommandLine)
	flag.Parse()

	cfg, err := app.LoadConfig(flags.ConfigPath)
	if err != nil {
		fail(err)
	}
	flags.Apply(&cfg)
	if err := cfg.Validate(); err != nil {
		fail(err)
	}

	log, err := logging.New(os.Stderr, cfg.LogLevel)
	if err != nil {
		fail(err)
	}
	log.Info("spincube starting", "version", buildinfo.Short(), "commit", buildinfo.Commit, "date", buildinfo.Date,
		"driver", cfg.Driver, "headless", cfg.Headless.Enabled)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := app.Run(ctx, cfg, log); err != nil {
		stop()
		fail(err)
	}
}

func fail(err error) {
	fmt.Fprintln(os.Stderr, err)
	os.Exit(1)
}
