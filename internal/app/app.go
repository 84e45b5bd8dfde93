package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/five82/modedeck/internal/backend"
	"github.com/five82/modedeck/internal/config"
	"github.com/five82/modedeck/internal/prefs"
	"github.com/five82/modedeck/internal/ui"
)

// Options configure the modedeck application. Non-zero fields override the
// config file.
type Options struct {
	ConfigPath string
	PrefsPath  string // empty uses default ~/.config/modedeck/prefs.toml
	APIBind    string
	PollEvery  int // seconds
	LogLevel   string
}

// Run boots the sync session and the TUI until the user quits or the
// context is cancelled.
func Run(ctx context.Context, opts Options) error {
	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}

	logger, logFile, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer logFile.Close()
	slog.SetDefault(logger)

	userPrefs := prefs.Load(opts.PrefsPath)

	client, err := backend.NewClient(cfg.APIBind)
	if err != nil {
		return fmt.Errorf("init backend client: %w", err)
	}

	session := NewSession(client, SessionOptions{
		QueueSize: cfg.QueueSize,
		PollEvery: cfg.PollEvery,
		Logger:    logger,
	})
	logger.Info("modedeck starting", "api", cfg.APIBind, "poll", cfg.PollEvery, "queue_size", cfg.QueueSize)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	sessionErr := make(chan error, 1)
	go func() {
		sessionErr <- session.Run(ctx)
	}()

	uiErr := ui.Run(ui.Options{
		Context:    ctx,
		Store:      session.Store,
		Dispatcher: session.Dispatcher,
		Registry:   session.Registry,
		LogFile:    cfg.LogFile,
		PollTick:   time.Second,
		ThemeName:  userPrefs.Theme,
		LastMode:   userPrefs.LastMode,
		PrefsPath:  opts.PrefsPath,
		Logger:     logger.With("component", "ui"),
	})

	cancel()
	err = errors.Join(uiErr, <-sessionErr)
	logger.Info("modedeck stopped", "err", err)
	return err
}

func loadConfig(opts Options) (config.Config, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return config.Config{}, fmt.Errorf("load config: %w", err)
	}
	if v := strings.TrimSpace(opts.APIBind); v != "" {
		cfg.APIBind = v
	}
	if opts.PollEvery > 0 {
		cfg.PollEvery = time.Duration(opts.PollEvery) * time.Second
	}
	if v := strings.ToLower(strings.TrimSpace(opts.LogLevel)); v != "" {
		cfg.LogLevel = v
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}
