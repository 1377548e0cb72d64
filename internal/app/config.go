package app

import (
	"errors"
	"fmt"

	"github.com/specialistvlad/palladiogo/internal/rulectx"
)

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	JobPaths []string // hcl job files or directories
	// Scene and Output override the scene paths of the job when set.
	Scene  string
	Output string

	LogFormat       string
	LogLevel        string
	HealthcheckPort int

	Engine rulectx.Config
}

// NewConfig validates cfg.
func NewConfig(cfg Config) (*Config, error) {
	if cfg.LogFormat == "" {
		cfg.LogFormat = "text"
	}
	if cfg.LogFormat != "text" && cfg.LogFormat != "json" {
		return nil, fmt.Errorf("invalid log-format %q: must be 'text' or 'json'", cfg.LogFormat)
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	if _, err := parseLevel(cfg.LogLevel); err != nil {
		return nil, err
	}
	if cfg.HealthcheckPort < 0 {
		return nil, errors.New("healthcheck-port must not be negative")
	}
	return &cfg, nil
}
