package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/viant/vecscore/cosine"
	"gopkg.in/yaml.v3"
)

// Config holds the scoring settings read from the YAML config file.
type Config struct {
	// ParallelThreshold is the batch size from which scoring runs in parallel.
	ParallelThreshold int `yaml:"parallel_threshold"`
	// Workers caps parallel scoring goroutines; 1 forces sequential scoring.
	Workers  int    `yaml:"workers"`
	LogLevel string `yaml:"log_level"`
}

// Default returns the configuration used when no file is present.
func Default() Config {
	o := cosine.DefaultOptions()
	return Config{
		ParallelThreshold: o.ParallelThreshold,
		Workers:           o.Workers,
		LogLevel:          "info",
	}
}

// LoadConfig reads path over the defaults. A missing file yields the defaults.
func LoadConfig(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	if cfg.Workers <= 0 {
		cfg.Workers = Default().Workers
	}
	return cfg, nil
}

// Options converts the config into kernel options.
func (c Config) Options() []cosine.Option {
	return []cosine.Option{
		cosine.WithParallelThreshold(c.ParallelThreshold),
		cosine.WithWorkers(c.Workers),
	}
}

// Level parses LogLevel, defaulting to info.
func (c Config) Level() zerolog.Level {
	level, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(c.LogLevel)))
	if err != nil || level == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return level
}
