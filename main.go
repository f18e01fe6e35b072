package main

import (
	"log/slog"
	"os"
	"time"

	"github.com/getsentry/sentry-go"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	env, err := loadEnv()
	if err != nil {
		logger.Error("[main] invalid environment", "error", err)
		os.Exit(1)
	}

	if env.SentryDSN != "" {
		err := sentry.Init(sentry.ClientOptions{
			Dsn:              env.SentryDSN,
			EnableTracing:    true,
			TracesSampleRate: 1.0,
		})
		if err != nil {
			logger.Error("[main] sentry init failed", "error", err)
			os.Exit(1)
		}
		defer sentry.Flush(2 * time.Second)
	}

	app := NewApp(NewConfig(env))
	if err := app.start(); err != nil {
		sentry.CaptureException(err)
		logger.Error("[main] app stopped", "error", err)
		os.Exit(1)
	}
}
