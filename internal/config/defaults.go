package config

import "time"

// Default values for optional configuration fields.
const (
	DefaultFeedURL        = "ws://192.168.1.2:8765"
	DefaultBackoff        = 5000 * time.Millisecond
	DefaultConnectTimeout = 10 * time.Second
	DefaultPingInterval   = 30 * time.Second
	DefaultPingTimeout    = 90 * time.Second
	DefaultWriteTimeout   = 5 * time.Second
	DefaultBufferSize     = 1000
	DefaultAsset          = "guitar.mp3"
	DefaultPlayer         = "beep"
	DefaultSurface        = "tui"
	DefaultTimeFormat     = "15:04:05"
	DefaultLogLevel       = "info"
	DefaultLogFile        = "feedwatch.log"
)

// Default returns a configuration with every field at its default.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

func (c *Config) applyDefaults() {
	// Feed defaults
	if c.Feed.URL == "" {
		c.Feed.URL = DefaultFeedURL
	}
	if c.Feed.Backoff == 0 {
		c.Feed.Backoff = DefaultBackoff
	}
	if c.Feed.ConnectTimeout == 0 {
		c.Feed.ConnectTimeout = DefaultConnectTimeout
	}
	if c.Feed.PingInterval == 0 {
		c.Feed.PingInterval = DefaultPingInterval
	}
	if c.Feed.PingTimeout == 0 {
		c.Feed.PingTimeout = DefaultPingTimeout
	}
	if c.Feed.WriteTimeout == 0 {
		c.Feed.WriteTimeout = DefaultWriteTimeout
	}
	if c.Feed.BufferSize == 0 {
		c.Feed.BufferSize = DefaultBufferSize
	}

	// Audio defaults
	if c.Audio.Asset == "" {
		c.Audio.Asset = DefaultAsset
	}
	if c.Audio.Player == "" {
		c.Audio.Player = DefaultPlayer
	}

	// Display defaults
	if c.Display.Surface == "" {
		c.Display.Surface = DefaultSurface
	}
	if c.Display.TimeFormat == "" {
		c.Display.TimeFormat = DefaultTimeFormat
	}

	// Log defaults
	if c.Log.Level == "" {
		c.Log.Level = DefaultLogLevel
	}
	if c.Log.File == "" {
		c.Log.File = DefaultLogFile
	}
}
