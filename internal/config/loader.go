package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Override adjusts a loaded config before validation, typically from a
// command-line flag.
type Override func(*Config)

// WithSurface forces display.surface. An empty name keeps the file's value.
func WithSurface(name string) Override {
	return func(c *Config) {
		if name != "" {
			c.Display.Surface = name
		}
	}
}

// WithFeedURL forces feed.url. An empty URL keeps the file's value.
func WithFeedURL(url string) Override {
	return func(c *Config) {
		if url != "" {
			c.Feed.URL = url
		}
	}
}

// Load reads a YAML feedwatch config and expands ${VAR} references before
// parsing. Unknown keys are rejected so a misspelled section does not
// silently fall back to defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	dec := yaml.NewDecoder(strings.NewReader(os.ExpandEnv(string(data))))
	dec.KnownFields(true)

	var cfg Config
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parse config yaml: %w", err)
	}

	return &cfg, nil
}

// LoadWithDefaults loads config and applies default values. An empty path
// yields the defaults alone.
func LoadWithDefaults(path string) (*Config, error) {
	if path == "" {
		return Default(), nil
	}
	cfg, err := Load(path)
	if err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	return cfg, nil
}

// LoadAndValidate loads config, applies defaults, then the overrides in
// order, and validates the result.
func LoadAndValidate(path string, overrides ...Override) (*Config, error) {
	cfg, err := LoadWithDefaults(path)
	if err != nil {
		return nil, err
	}
	for _, o := range overrides {
		o(cfg)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return cfg, nil
}
