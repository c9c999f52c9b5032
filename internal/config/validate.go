package config

import (
	"errors"
	"fmt"
	"log/slog"
	"net/url"
)

// Validate checks that all required fields are set and values are valid.
func (c *Config) Validate() error {
	if err := c.Feed.validate(); err != nil {
		return err
	}

	switch c.Audio.Player {
	case "beep", "none":
	case "command":
		if len(c.Audio.Command) == 0 {
			return errors.New("audio.command is required when audio.player is command")
		}
	default:
		return fmt.Errorf("audio.player must be beep, command or none, got %q", c.Audio.Player)
	}
	if c.Audio.Player != "none" && c.Audio.Asset == "" {
		return errors.New("audio.asset is required")
	}

	switch c.Display.Surface {
	case "tui", "text", "json":
	default:
		return fmt.Errorf("display.surface must be tui, text or json, got %q", c.Display.Surface)
	}

	var level slog.Level
	if err := level.UnmarshalText([]byte(c.Log.Level)); err != nil {
		return fmt.Errorf("log.level: %w", err)
	}

	return nil
}

func (f *FeedConfig) validate() error {
	if f.URL == "" {
		return errors.New("feed.url is required")
	}
	u, err := url.Parse(f.URL)
	if err != nil {
		return fmt.Errorf("feed.url: %w", err)
	}
	if u.Scheme != "ws" && u.Scheme != "wss" {
		return fmt.Errorf("feed.url scheme must be ws or wss, got %q", u.Scheme)
	}
	if u.Host == "" {
		return errors.New("feed.url host is required")
	}

	if f.Backoff <= 0 {
		return errors.New("feed.backoff must be > 0")
	}
	if f.ConnectTimeout <= 0 {
		return errors.New("feed.connect_timeout must be > 0")
	}
	if f.PingInterval <= 0 {
		return errors.New("feed.ping_interval must be > 0")
	}
	if f.PingTimeout <= f.PingInterval {
		return fmt.Errorf("feed.ping_timeout (%s) must exceed feed.ping_interval (%s)", f.PingTimeout, f.PingInterval)
	}
	if f.WriteTimeout <= 0 {
		return errors.New("feed.write_timeout must be > 0")
	}
	if f.BufferSize < 1 {
		return errors.New("feed.buffer_size must be >= 1")
	}
	return nil
}
