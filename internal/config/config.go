package config

import (
	"log/slog"
	"time"
)

// Config is the top-level feedwatch configuration.
type Config struct {
	Feed    FeedConfig    `yaml:"feed"`
	Audio   AudioConfig   `yaml:"audio"`
	Display DisplayConfig `yaml:"display"`
	Log     LogConfig     `yaml:"log"`
}

// FeedConfig holds the WebSocket endpoint and reconnect timing.
type FeedConfig struct {
	URL            string        `yaml:"url"`
	Backoff        time.Duration `yaml:"backoff"`
	ConnectTimeout time.Duration `yaml:"connect_timeout"`
	PingInterval   time.Duration `yaml:"ping_interval"`
	PingTimeout    time.Duration `yaml:"ping_timeout"`
	WriteTimeout   time.Duration `yaml:"write_timeout"`
	BufferSize     int           `yaml:"buffer_size"`
}

// AudioConfig selects the connection cue.
type AudioConfig struct {
	Asset   string   `yaml:"asset"`
	Player  string   `yaml:"player"`  // beep, command, none
	Command []string `yaml:"command"` // argv for the command player; asset path is appended
}

// DisplayConfig selects the output surface.
type DisplayConfig struct {
	Surface    string `yaml:"surface"` // tui, text, json
	TimeFormat string `yaml:"time_format"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"` // used when the TUI owns the terminal
}

// SlogLevel parses Level. Unknown values fall back to info.
func (l LogConfig) SlogLevel() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(l.Level)); err != nil {
		return slog.LevelInfo
	}
	return level
}
