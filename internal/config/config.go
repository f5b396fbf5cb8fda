// Package config loads per-service configuration from environment variables.
package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// ImageFeed configures the largest-image feed service. ExternalHost is the
// public hostname embedded in derived feed links; the service refuses to
// start without it.
type ImageFeed struct {
	Port         int    `env:"PORT" envDefault:"8080"`
	ExternalHost string `env:"EXTERNAL_HOSTNAME,required"`
	StorePath    string `env:"STORE_PATH" envDefault:"data/imagefeed.json"`
}

// RecapFeed configures the day-recap feed service and its chat-completions
// upstream.
type RecapFeed struct {
	Port       int    `env:"PORT" envDefault:"8081"`
	StorePath  string `env:"STORE_PATH" envDefault:"data/recapfeed.json"`
	LLMBaseURL string `env:"LLM_BASE_URL" envDefault:"https://api.openai.com/v1"`
	LLMModel   string `env:"LLM_MODEL" envDefault:"gpt-4o-mini"`
	LLMKey     string `env:"LLM_API_KEY,required"`
}

// ReaderFeed configures the full-text reader feed service.
type ReaderFeed struct {
	Port int `env:"PORT" envDefault:"8082"`
}

// Parse loads configuration from environment variables into target.
func Parse(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}
