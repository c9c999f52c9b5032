package audio

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"sync/atomic"
)

// DefaultAsset is the default cue reference, resolved relative to the
// working directory. When no such file exists the bundled cue plays instead.
const DefaultAsset = "guitar.mp3"

// Errors
var (
	ErrPlaybackRejected = errors.New("playback rejected")
	ErrAssetEmpty       = errors.New("audio asset is empty")
)

// Asset is a fully buffered audio resource.
type Asset struct {
	Path string
	Data []byte
}

// Player plays a buffered asset.
type Player interface {
	Play(ctx context.Context, asset Asset) error
}

// Loader buffers the asset at path.
type Loader func(ctx context.Context, path string) (Asset, error)

// LoadFile reads the whole asset into memory.
func LoadFile(ctx context.Context, path string) (Asset, error) {
	if err := ctx.Err(); err != nil {
		return Asset{}, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Asset{}, fmt.Errorf("read audio asset: %w", err)
	}
	if len(data) == 0 {
		return Asset{}, fmt.Errorf("%s: %w", path, ErrAssetEmpty)
	}
	return Asset{Path: path, Data: data}, nil
}

// Cue is the audio resource of one connection lifecycle. Its ready signal
// is one-shot: playback is attempted at most once per Cue no matter how many
// times Ready fires.
type Cue struct {
	path   string
	player Player
	load   Loader
	logger *slog.Logger

	startOnce sync.Once
	playOnce  sync.Once
	doneOnce  sync.Once
	done      chan struct{}

	played atomic.Bool
	err    atomic.Pointer[error]
}

// CueOption configures a Cue.
type CueOption func(*Cue)

// WithLoader replaces the asset loader.
func WithLoader(load Loader) CueOption {
	return func(c *Cue) {
		c.load = load
	}
}

// NewCue creates a cue for the asset at path, or DefaultAsset when path is
// empty. DefaultAsset falls back to Bundled; any other path must exist.
func NewCue(path string, player Player, logger *slog.Logger, opts ...CueOption) *Cue {
	if path == "" {
		path = DefaultAsset
	}
	if logger == nil {
		logger = slog.Default()
	}
	if player == nil {
		player = NopPlayer{}
	}
	load := LoadFile
	if path == DefaultAsset {
		load = LoadDefault
	}
	c := &Cue{
		path:   path,
		player: player,
		load:   load,
		logger: logger,
		done:   make(chan struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Start buffers the asset in the background and fires Ready once it is
// fully loaded. Calling Start again has no effect. Failures are logged and
// never returned.
func (c *Cue) Start(ctx context.Context) {
	c.startOnce.Do(func() {
		go func() {
			asset, err := c.load(ctx, c.path)
			if err != nil {
				c.fail(err)
				return
			}
			c.Ready(ctx, asset)
		}()
	})
}

// Ready is the one-shot "can play through" signal. Only the first call
// plays.
func (c *Cue) Ready(ctx context.Context, asset Asset) {
	c.playOnce.Do(func() {
		c.played.Store(true)
		if err := c.player.Play(ctx, asset); err != nil {
			c.fail(err)
			return
		}
		c.logger.Debug("audio cue played", "asset", asset.Path)
		c.finish()
	})
}

// Played reports whether playback was attempted.
func (c *Cue) Played() bool {
	return c.played.Load()
}

// Err returns the failure that ended the cue, if any.
func (c *Cue) Err() error {
	if p := c.err.Load(); p != nil {
		return *p
	}
	return nil
}

// Done is closed once the cue has played or failed.
func (c *Cue) Done() <-chan struct{} {
	return c.done
}

func (c *Cue) fail(err error) {
	c.err.Store(&err)
	if errors.Is(err, context.Canceled) {
		c.logger.Debug("audio cue cancelled", "asset", c.path)
	} else {
		c.logger.Warn("audio cue failed", "asset", c.path, "error", err)
	}
	c.finish()
}

func (c *Cue) finish() {
	c.doneOnce.Do(func() { close(c.done) })
}
