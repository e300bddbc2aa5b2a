package main

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

const defaultAddr = ":8080"

// config is the sample's YAML configuration file.
type config struct {
	Addr        string        `yaml:"addr"`
	Title       string        `yaml:"title"`
	Version     string        `yaml:"version"`
	SpecRefresh time.Duration `yaml:"spec_refresh"`
	LogLevel    slog.Level    `yaml:"log_level"`
}

func defaultConfig() config {
	return config{
		Addr:        defaultAddr,
		Title:       "Todo API",
		Version:     "1.0.0",
		SpecRefresh: 5 * time.Second,
		LogLevel:    slog.LevelInfo,
	}
}

// loadConfig reads path over the defaults. An empty path uses the defaults.
func loadConfig(path string) (config, error) {
	cfg := defaultConfig()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path) //nolint:gosec // user-provided CLI flag
	if errors.Is(err, fs.ErrNotExist) {
		return cfg, fmt.Errorf("config %s: %w", path, err)
	}
	if err != nil {
		return cfg, err
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}
