// Package config holds the sampler configuration. All knobs live in one
// struct passed into the pipeline entry point; there is no package-level
// mutable state.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Configuration validation errors.
var (
	ErrMissingAPIKey    = errors.New("api_key is required (set it in the config file or via YOUTUBE_API_KEY)")
	ErrNoQueries        = errors.New("at least one query is required")
	ErrInvalidWindow    = errors.New("window_start must be before window_end")
	ErrInvalidDate      = errors.New("window dates must be formatted as YYYY-MM-DD")
	ErrInvalidCap       = errors.New("max_results must be between 1 and 50")
	ErrInvalidBatchSize = errors.New("batch_size must be between 1 and 50")
	ErrNoLanguages      = errors.New("at least one language code is required")
)

// Config drives the Candidate Sampler and the Transcript Fetcher.
type Config struct {
	APIKey      string   `yaml:"api_key"`
	Queries     []string `yaml:"queries"`
	WindowStart string   `yaml:"window_start"` // YYYY-MM-DD, inclusive
	WindowEnd   string   `yaml:"window_end"`   // YYYY-MM-DD, exclusive
	MaxResults  int      `yaml:"max_results"`
	BatchSize   int      `yaml:"batch_size"`
	Languages   []string `yaml:"languages"`
	Output      string   `yaml:"output"`
}

// Default returns the built-in configuration used when no config file is
// given. The queries and window match the current collection round.
func Default() *Config {
	return &Config{
		Queries: []string{
			"AI tools for content creation",
			"AI tools for content creators",
			"AI workflow for content creation",
		},
		WindowStart: "2025-08-01",
		WindowEnd:   "2025-11-22",
		MaxResults:  40,
		BatchSize:   50,
		Languages:   []string{"en", "en-US", "en-GB"},
		Output:      "youtube_candidates_basic.csv",
	}
}

// Load reads path over the defaults. A missing file is not an error: the
// defaults plus the YOUTUBE_API_KEY environment variable are a complete
// configuration on their own.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		// defaults only
	case err != nil:
		return nil, fmt.Errorf("read config: %w", err)
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	if key := os.Getenv("YOUTUBE_API_KEY"); key != "" {
		cfg.APIKey = key
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the configuration and returns the first problem found.
func (c *Config) Validate() error {
	if c.APIKey == "" {
		return ErrMissingAPIKey
	}
	if len(c.Queries) == 0 {
		return ErrNoQueries
	}
	start, err := time.Parse("2006-01-02", c.WindowStart)
	if err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidDate, c.WindowStart)
	}
	end, err := time.Parse("2006-01-02", c.WindowEnd)
	if err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidDate, c.WindowEnd)
	}
	if !start.Before(end) {
		return ErrInvalidWindow
	}
	if c.MaxResults < 1 || c.MaxResults > 50 {
		return ErrInvalidCap
	}
	if c.BatchSize < 1 || c.BatchSize > 50 {
		return ErrInvalidBatchSize
	}
	if len(c.Languages) == 0 {
		return ErrNoLanguages
	}
	return nil
}

// PublishedAfter returns the window start in the RFC3339 Z form the Data API
// expects.
func (c *Config) PublishedAfter() string {
	return isoDate(c.WindowStart)
}

// PublishedBefore returns the window end in the RFC3339 Z form the Data API
// expects.
func (c *Config) PublishedBefore() string {
	return isoDate(c.WindowEnd)
}

func isoDate(d string) string {
	t, err := time.Parse("2006-01-02", d)
	if err != nil {
		return d
	}
	return t.UTC().Format("2006-01-02T15:04:05") + "Z"
}
