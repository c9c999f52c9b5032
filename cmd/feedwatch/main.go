// feedwatch keeps a WebSocket feed connected and shows every message it
// receives, chiming once per successful connection.
// Usage: go run ./cmd/feedwatch --config configs/feedwatch.example.yaml
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/gdamore/tcell/v2"
	"golang.org/x/sync/errgroup"

	"github.com/rickgao/feedwatch/internal/audio"
	"github.com/rickgao/feedwatch/internal/config"
	"github.com/rickgao/feedwatch/internal/connection"
	"github.com/rickgao/feedwatch/internal/display"
	"github.com/rickgao/feedwatch/internal/supervisor"
	"github.com/rickgao/feedwatch/internal/version"
)

func main() {
	configPath := flag.String("config", "", "path to config file (defaults only when empty)")
	surface := flag.String("surface", "", "output surface: tui, text or json (overrides config)")
	feedURL := flag.String("url", "", "feed WebSocket URL (overrides config)")
	showVersion := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println("feedwatch", version.String())
		return
	}

	// Load config
	cfg, err := config.LoadAndValidate(*configPath,
		config.WithSurface(*surface),
		config.WithFeedURL(*feedURL),
	)
	if err != nil {
		fmt.Fprintf(os.Stderr, "feedwatch: %v\n", err)
		os.Exit(1)
	}

	// Setup logger. The TUI owns the terminal, so its log goes to a file.
	logOut := io.Writer(os.Stderr)
	if cfg.Display.Surface == "tui" {
		f, err := os.OpenFile(cfg.Log.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			fmt.Fprintf(os.Stderr, "feedwatch: open log file: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()
		logOut = f
	}
	logger := slog.New(slog.NewTextHandler(logOut, &slog.HandlerOptions{
		Level: cfg.Log.SlogLevel(),
	}))
	slog.SetDefault(logger)

	logger.Info("starting feedwatch",
		"version", version.String(),
		"endpoint", cfg.Feed.URL,
		"surface", cfg.Display.Surface,
		"player", cfg.Audio.Player,
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		select {
		case <-sigCh:
			logger.Info("received shutdown signal")
			cancel()
		case <-ctx.Done():
		}
	}()

	// The display list lives for the whole process and spans every connection
	list := display.NewList()

	var tui *display.TUI
	var out display.Surface
	switch cfg.Display.Surface {
	case "tui":
		screen, err := tcell.NewScreen()
		if err != nil {
			logger.Error("failed to create screen", "error", err)
			os.Exit(1)
		}
		tui = display.NewTUI(screen, list, cfg.Display.TimeFormat)
		tui.SetStatus(display.Status{State: supervisor.StateIdle.String(), Endpoint: cfg.Feed.URL})
		out = tui
	case "json":
		out = display.NewJSONSurface(os.Stdout)
	default:
		out = display.NewTextSurface(os.Stdout, cfg.Display.TimeFormat)
	}
	renderer := display.NewRenderer(list, out, logger.With("component", "display"))

	// Audio cue, one per opened connection
	player, err := audio.NewPlayer(cfg.Audio.Player, cfg.Audio.Command)
	if err != nil {
		logger.Error("failed to create audio player", "error", err)
		os.Exit(1)
	}
	audioLogger := logger.With("component", "audio")
	newCue := func() supervisor.Cue {
		return audio.NewCue(cfg.Audio.Asset, player, audioLogger)
	}

	// Connection supervisor
	clientCfg := connection.DefaultClientConfig()
	clientCfg.URL = cfg.Feed.URL
	clientCfg.HandshakeTimeout = cfg.Feed.ConnectTimeout
	clientCfg.PingInterval = cfg.Feed.PingInterval
	clientCfg.PingTimeout = cfg.Feed.PingTimeout
	clientCfg.WriteTimeout = cfg.Feed.WriteTimeout
	clientCfg.BufferSize = cfg.Feed.BufferSize

	supLogger := logger.With("component", "supervisor")
	opts := []supervisor.Option{
		supervisor.WithLogger(supLogger),
		supervisor.WithCue(newCue),
	}
	if tui != nil {
		opts = append(opts, supervisor.WithStateHook(func(st supervisor.Stats) {
			tui.SetStatus(statusFor(cfg.Feed.URL, st))
		}))
	}

	sup := supervisor.New(supervisor.Config{
		Endpoint:       cfg.Feed.URL,
		Backoff:        cfg.Feed.Backoff,
		ConnectTimeout: cfg.Feed.ConnectTimeout,
	}, supervisor.WebSocketDialer(clientCfg, logger.With("component", "connection")), renderer, opts...)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := sup.Run(gctx); !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	})
	if tui != nil {
		g.Go(func() error {
			// Quitting the TUI shuts everything down
			defer cancel()
			return tui.Run(gctx)
		})
	}

	if err := g.Wait(); err != nil {
		logger.Error("feedwatch stopped with error", "error", err)
		os.Exit(1)
	}

	stats := sup.Stats()
	logger.Info("shutdown complete",
		"iterations", stats.Iterations,
		"opens", stats.Opens,
		"messages", stats.MessagesRendered,
		"entries", list.Len(),
	)
}

func statusFor(endpoint string, st supervisor.Stats) display.Status {
	status := display.Status{
		State:    st.State.String(),
		Endpoint: endpoint,
		Attempts: st.Iterations,
		Opens:    st.Opens,
	}
	if st.LastError != nil {
		status.LastError = st.LastError.Error()
	}
	return status
}
