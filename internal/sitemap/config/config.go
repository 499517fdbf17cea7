package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v6"
)

// Config holds the sitemap generator settings.
type Config struct {
	// SiteBaseURL is the public origin prefixed onto every sitemap entry.
	SiteBaseURL string `env:"SITE_BASE_URL" envDefault:"http://localhost:3000"`

	// BuildTimeout bounds one sitemap build; a slow store must not hold the
	// request open indefinitely.
	BuildTimeout time.Duration `env:"SITEMAP_BUILD_TIMEOUT" envDefault:"5s"`

	// StaticPaths lists site pages included ahead of the record entries,
	// comma-separated.
	StaticPaths []string `env:"SITEMAP_STATIC_PATHS" envSeparator:"," envDefault:"/,/people,/research,/contact"`

	// MaxEntriesPerCollection caps how many records one collection can
	// contribute.
	MaxEntriesPerCollection int `env:"SITEMAP_MAX_ENTRIES" envDefault:"5000"`
}

// LoadConfig reads the sitemap configuration from the environment.
func LoadConfig() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse sitemap config: %w", err)
	}
	cfg.SiteBaseURL = strings.TrimRight(cfg.SiteBaseURL, "/")
	if cfg.BuildTimeout <= 0 {
		cfg.BuildTimeout = 5 * time.Second
	}
	return cfg, nil
}
