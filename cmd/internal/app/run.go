package app

import (
	"context"
	"os/signal"
	"syscall"
)

// Serve is the entrypoint of "avian serve". It returns an error instead of
// calling os.Exit so deferred cleanup runs.
func Serve(envFile string) error {
	cfg, err := LoadConfig(envFile)
	if err != nil {
		return err
	}
	log := NewLogger(cfg.LogLevel, cfg.LogFormat)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	a, err := New(ctx, cfg, log)
	if err != nil {
		return err
	}
	return a.Run(ctx)
}
