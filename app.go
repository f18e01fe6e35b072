package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-co-op/gocron/v2"

	"github.com/aipulse/aipulse/archivist"
	"github.com/aipulse/aipulse/composer"
	"github.com/aipulse/aipulse/jobs"
	"github.com/aipulse/aipulse/journalist"
	"github.com/aipulse/aipulse/scavenger"
	"github.com/aipulse/aipulse/server"
)

// App wires the stores, the ingestion job and the HTTP server together.
type App struct {
	cfg    *Config
	logger *slog.Logger
}

func NewApp(cfg *Config) *App {
	return &App{
		cfg:    cfg,
		logger: slog.Default(),
	}
}

// start blocks serving HTTP until the listener fails.
func (a *App) start() error {
	ctx := context.Background()

	arch, err := archivist.NewArchivist(a.cfg.env.PostgresDSN)
	if err != nil {
		return fmt.Errorf("connect archivist: %w", err)
	}

	if err := arch.SeedSources(ctx, a.cfg.seedSources); err != nil {
		return fmt.Errorf("seed sources: %w", err)
	}

	client, err := a.genAiClient(ctx)
	if err != nil {
		return err
	}

	comp := composer.NewComposer(client)
	fetcher := journalist.NewRssFetcher(a.cfg.feedUserAgent)
	scav := scavenger.NewScavenger(comp, nil)

	job := jobs.NewIngestJob(
		arch.Entities.Articles,
		arch.Entities.Sources,
		fetcher,
		scav,
		comp,
		jobs.NewRunCoordinator(),
	).Pace(time.Duration(a.cfg.env.PaceSeconds) * time.Second)

	if a.cfg.env.FetchIntervalMinutes > 0 {
		scheduler, err := a.schedulePeriodicRuns(job)
		if err != nil {
			return fmt.Errorf("schedule periodic ingestion: %w", err)
		}
		defer func() {
			if err := scheduler.Shutdown(); err != nil {
				a.logger.Error("[app] scheduler shutdown failed", "error", err)
			}
		}()
	}

	srv := server.NewServer(arch.Entities.Articles, arch.Entities.Sources, job, job.Coordinator())

	addr := fmt.Sprintf(":%d", a.cfg.env.Port)
	a.logger.Info("[app] listening", "addr", addr)

	if err := http.ListenAndServe(addr, srv.Handler()); err != nil {
		return fmt.Errorf("http server: %w", err)
	}

	return nil
}

// genAiClient picks the configured backend: Gemini when its key is set,
// OpenAI otherwise. With no key at all the classifier runs in bypass mode
// and every fetched entry is stored as-is.
func (a *App) genAiClient(ctx context.Context) (composer.GenAiClient, error) {
	if a.cfg.env.GeminiAPIKey != "" {
		client, err := composer.NewGeminiClient(ctx, a.cfg.env.GeminiAPIKey, a.cfg.geminiModel)
		if err != nil {
			return nil, fmt.Errorf("create gemini client: %w", err)
		}
		return client, nil
	}

	if a.cfg.env.OpenAiAPIKey != "" {
		return composer.NewOpenAiClient(a.cfg.env.OpenAiAPIKey, a.cfg.openAiModel), nil
	}

	a.logger.Warn("[app] no generative API key set, relevance filtering disabled")
	return nil, nil
}

// schedulePeriodicRuns starts a background ticker that triggers a full
// ingestion run. A run still in progress simply skips the tick.
func (a *App) schedulePeriodicRuns(job *jobs.IngestJob) (gocron.Scheduler, error) {
	scheduler, err := gocron.NewScheduler()
	if err != nil {
		return nil, err
	}

	interval := time.Duration(a.cfg.env.FetchIntervalMinutes) * time.Minute
	_, err = scheduler.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(func() {
			if err := job.TryRun(nil); err != nil {
				a.logger.Info("[app] scheduled run skipped", "reason", err)
			}
		}),
	)
	if err != nil {
		return nil, err
	}

	scheduler.Start()
	a.logger.Info("[app] periodic ingestion enabled", "interval", interval)

	return scheduler, nil
}
