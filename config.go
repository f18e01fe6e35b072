package main

import (
	"errors"
	"fmt"

	"github.com/spf13/viper"

	"github.com/aipulse/aipulse/archivist"
)

// Env holds all the environment variables the app reads on start.
type Env struct {
	PostgresDSN          string `mapstructure:"POSTGRES_DSN"`
	GeminiAPIKey         string `mapstructure:"GEMINI_API_KEY"`
	OpenAiAPIKey         string `mapstructure:"OPENAI_API_KEY"`
	SentryDSN            string `mapstructure:"SENTRY_DSN"`
	Port                 int    `mapstructure:"PORT"`
	FetchIntervalMinutes int    `mapstructure:"FETCH_INTERVAL_MINUTES"`
	PaceSeconds          int    `mapstructure:"PACE_SECONDS"`
}

// Config is the full application configuration: the environment plus the
// defaults that are not worth an environment variable.
type Config struct {
	env           *Env
	geminiModel   string
	openAiModel   string
	feedUserAgent string
	seedSources   []archivist.SeedSource
}

// NewConfig creates a Config with the given Env and default values from
// DefaultConfig.
func NewConfig(env *Env) *Config {
	c := DefaultConfig()
	c.env = env
	return c
}

// DefaultConfig creates a Config with default values. The seed set is
// registered once, on first start against an empty database.
func DefaultConfig() *Config {
	return &Config{
		env:           &Env{},
		geminiModel:   "gemini-1.5-flash",
		openAiModel:   "gpt-4o-mini",
		feedUserAgent: "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/108.0.0.0 Safari/537.36",
		seedSources: []archivist.SeedSource{
			{Key: "TC-AI", URL: "https://techcrunch.com/category/artificial-intelligence/feed/"},
			{Key: "testingcatalog", URL: "https://www.testingcatalog.com/rss/"},
			{Key: "机器之心", URL: "https://wechat2rss.xlab.app/feed/51e92aad2728acdd1fda7314be32b16639353001.xml"},
			{Key: "新智元", URL: "https://wechat2rss.xlab.app/feed/ede30346413ea70dbef5d485ea5cbb95cca446e7.xml"},
			{Key: "Theverge", URL: "https://www.theverge.com/rss/index.xml"},
		},
	}
}

// loadEnv reads the environment into an Env and validates required values.
func loadEnv() (*Env, error) {
	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("POSTGRES_DSN", "")
	v.SetDefault("GEMINI_API_KEY", "")
	v.SetDefault("OPENAI_API_KEY", "")
	v.SetDefault("SENTRY_DSN", "")
	v.SetDefault("PORT", 8080)
	v.SetDefault("FETCH_INTERVAL_MINUTES", 0)
	v.SetDefault("PACE_SECONDS", 5)

	var env Env
	if err := v.Unmarshal(&env); err != nil {
		return nil, fmt.Errorf("unmarshal environment: %w", err)
	}

	if env.PostgresDSN == "" {
		return nil, errors.New("POSTGRES_DSN is required")
	}
	if env.Port <= 0 {
		return nil, fmt.Errorf("PORT must be positive, got %d", env.Port)
	}
	if env.PaceSeconds < 0 {
		return nil, fmt.Errorf("PACE_SECONDS must not be negative, got %d", env.PaceSeconds)
	}

	return &env, nil
}
