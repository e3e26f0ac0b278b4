package app

import (
	"errors"
	"time"
)

// DefaultTickInterval is how often the owner loop delivers asynchronous
// render results and performs delayed deletions.
const DefaultTickInterval = 50 * time.Millisecond

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	ProjectPath string // project .hcl file or directory
	OutDir      string // PNG export directory, empty disables export

	LogFormat  string
	LogLevel   string
	StatusPort int
	Watch      bool

	// Backend and Workers override the project's renderer block when set.
	Backend string
	Workers int

	// Strict makes a package reimport that detaches instances fail.
	Strict       bool
	TickInterval time.Duration
}

func NewConfig(cfg Config) (*Config, error) {
	if cfg.ProjectPath == "" {
		return nil, errors.New("ProjectPath is a required configuration field and cannot be empty")
	}
	if cfg.Workers < 0 {
		return nil, errors.New("Workers cannot be negative")
	}
	if cfg.TickInterval <= 0 {
		cfg.TickInterval = DefaultTickInterval
	}
	return &cfg, nil
}
