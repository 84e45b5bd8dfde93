package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"

	"github.com/five82/modedeck/internal/app"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	opts, err := parseFlags(args)
	if err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return 0
		}
		fmt.Fprintf(os.Stderr, "modedeck: %v\n", err)
		return 1
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := app.Run(ctx, opts); err != nil {
		fmt.Fprintf(os.Stderr, "modedeck: %v\n", err)
		return 1
	}
	return 0
}

func parseFlags(args []string) (app.Options, error) {
	var opts app.Options

	flags := pflag.NewFlagSet("modedeck", pflag.ContinueOnError)
	flags.StringVar(&opts.ConfigPath, "config", "", "config file path (default ~/.config/modedeck/config.toml)")
	flags.StringVar(&opts.PrefsPath, "prefs", "", "preferences file path (default ~/.config/modedeck/prefs.toml)")
	flags.StringVar(&opts.APIBind, "api", "", "backend host:port, overrides api_bind")
	flags.IntVar(&opts.PollEvery, "poll", 0, "snapshot poll interval in seconds, overrides poll_seconds")
	flags.StringVar(&opts.LogLevel, "log-level", "", "debug, info, warn or error; overrides log_level")

	if err := flags.Parse(args); err != nil {
		return app.Options{}, err
	}
	if flags.NArg() > 0 {
		return app.Options{}, fmt.Errorf("unexpected arguments: %v", flags.Args())
	}
	if opts.PollEvery < 0 {
		return app.Options{}, fmt.Errorf("--poll must not be negative")
	}
	return opts, nil
}
