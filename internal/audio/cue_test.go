package audio

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

type countingPlayer struct {
	calls atomic.Int32
	err   error
}

func (p *countingPlayer) Play(context.Context, Asset) error {
	p.calls.Add(1)
	return p.err
}

func writeAsset(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cue.mp3")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write asset: %v", err)
	}
	return path
}

func waitDone(t *testing.T, c *Cue) {
	t.Helper()
	select {
	case <-c.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for cue")
	}
}

func TestCue_PlaysOnceWhenReady(t *testing.T) {
	player := &countingPlayer{}
	cue := NewCue(writeAsset(t, "ID3"), player, nil)

	cue.Start(context.Background())
	waitDone(t, cue)

	if got := player.calls.Load(); got != 1 {
		t.Errorf("Play called %d times, want 1", got)
	}
	if !cue.Played() {
		t.Error("expected Played to be true")
	}
	if err := cue.Err(); err != nil {
		t.Errorf("Err = %v, want nil", err)
	}
}

func TestCue_RepeatedReadySignals(t *testing.T) {
	player := &countingPlayer{}
	cue := NewCue("unused", player, nil)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			cue.Ready(context.Background(), Asset{Path: "unused"})
		}()
	}
	wg.Wait()

	if got := player.calls.Load(); got != 1 {
		t.Errorf("Play called %d times, want 1", got)
	}
}

func TestCue_StartTwice(t *testing.T) {
	var loads atomic.Int32
	player := &countingPlayer{}
	cue := NewCue("x", player, nil, WithLoader(func(ctx context.Context, path string) (Asset, error) {
		loads.Add(1)
		return Asset{Path: path, Data: []byte{1}}, nil
	}))

	cue.Start(context.Background())
	cue.Start(context.Background())
	waitDone(t, cue)

	if got := loads.Load(); got != 1 {
		t.Errorf("asset loaded %d times, want 1", got)
	}
	if got := player.calls.Load(); got != 1 {
		t.Errorf("Play called %d times, want 1", got)
	}
}

func TestCue_MissingAsset(t *testing.T) {
	player := &countingPlayer{}
	cue := NewCue(filepath.Join(t.TempDir(), "missing.mp3"), player, nil)

	cue.Start(context.Background())
	waitDone(t, cue)

	if player.calls.Load() != 0 {
		t.Error("expected no playback without an asset")
	}
	if cue.Played() {
		t.Error("expected Played to be false")
	}
	if !errors.Is(cue.Err(), os.ErrNotExist) {
		t.Errorf("Err = %v, want os.ErrNotExist", cue.Err())
	}
}

func TestCue_EmptyAsset(t *testing.T) {
	cue := NewCue(writeAsset(t, ""), &countingPlayer{}, nil)

	cue.Start(context.Background())
	waitDone(t, cue)

	if !errors.Is(cue.Err(), ErrAssetEmpty) {
		t.Errorf("Err = %v, want ErrAssetEmpty", cue.Err())
	}
}

func TestCue_PlaybackRejectedIsSwallowed(t *testing.T) {
	player := &countingPlayer{err: ErrPlaybackRejected}
	cue := NewCue(writeAsset(t, "ID3"), player, nil)

	cue.Start(context.Background())
	waitDone(t, cue)

	if !cue.Played() {
		t.Error("expected playback to be attempted")
	}
	if !errors.Is(cue.Err(), ErrPlaybackRejected) {
		t.Errorf("Err = %v, want ErrPlaybackRejected", cue.Err())
	}

	// A later ready signal does not retry
	cue.Ready(context.Background(), Asset{Path: "again"})
	if got := player.calls.Load(); got != 1 {
		t.Errorf("Play called %d times, want 1", got)
	}
}

func TestCue_CancelledBeforeLoad(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	player := &countingPlayer{}
	cue := NewCue(writeAsset(t, "ID3"), player, nil)
	cue.Start(ctx)
	waitDone(t, cue)

	if player.calls.Load() != 0 {
		t.Error("expected no playback after cancellation")
	}
	if !errors.Is(cue.Err(), context.Canceled) {
		t.Errorf("Err = %v, want context.Canceled", cue.Err())
	}
}

func TestBeepPlayer(t *testing.T) {
	var freqs []float64
	p := NewBeepPlayer()
	p.Gap = 0
	p.beep = func(freq float64, duration int) error {
		freqs = append(freqs, freq)
		return nil
	}

	if err := p.Play(context.Background(), Asset{}); err != nil {
		t.Fatalf("Play failed: %v", err)
	}
	if len(freqs) != 2 || freqs[0] != 600 || freqs[1] != 800 {
		t.Errorf("beeped %v, want [600 800]", freqs)
	}
}

func TestBeepPlayer_Rejected(t *testing.T) {
	p := NewBeepPlayer()
	p.beep = func(float64, int) error { return errors.New("no speaker") }

	err := p.Play(context.Background(), Asset{})
	if !errors.Is(err, ErrPlaybackRejected) {
		t.Errorf("Play error = %v, want ErrPlaybackRejected", err)
	}
}

func TestCommandPlayer(t *testing.T) {
	if _, err := exec.LookPath("true"); err != nil {
		t.Skip("true not available")
	}

	p := &CommandPlayer{Command: []string{"true"}}
	if err := p.Play(context.Background(), Asset{Path: "cue.mp3"}); err != nil {
		t.Errorf("Play failed: %v", err)
	}

	p = &CommandPlayer{}
	if err := p.Play(context.Background(), Asset{Path: "cue.mp3"}); !errors.Is(err, ErrPlaybackRejected) {
		t.Errorf("Play without command error = %v, want ErrPlaybackRejected", err)
	}
}

func TestCommandPlayer_NonZeroExit(t *testing.T) {
	if _, err := exec.LookPath("false"); err != nil {
		t.Skip("false not available")
	}

	p := &CommandPlayer{Command: []string{"false"}}
	if err := p.Play(context.Background(), Asset{Path: "cue.mp3"}); !errors.Is(err, ErrPlaybackRejected) {
		t.Errorf("Play error = %v, want ErrPlaybackRejected", err)
	}
}

func TestNewPlayer(t *testing.T) {
	tests := []struct {
		name    string
		kind    string
		command []string
		wantErr bool
	}{
		{name: "default", kind: ""},
		{name: "beep", kind: PlayerBeep},
		{name: "command", kind: PlayerCommand, command: []string{"afplay"}},
		{name: "command without args", kind: PlayerCommand, wantErr: true},
		{name: "none", kind: PlayerNone},
		{name: "unknown", kind: "speaker", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := NewPlayer(tt.kind, tt.command)
			if tt.wantErr {
				if err == nil {
					t.Errorf("NewPlayer(%q) expected error", tt.kind)
				}
				return
			}
			if err != nil || p == nil {
				t.Errorf("NewPlayer(%q) = %v, %v", tt.kind, p, err)
			}
		})
	}
}

func TestNewCue_DefaultAsset(t *testing.T) {
	var loaded string
	cue := NewCue("", &countingPlayer{}, nil, WithLoader(func(ctx context.Context, path string) (Asset, error) {
		loaded = path
		return Asset{Path: path}, nil
	}))

	cue.Start(context.Background())
	waitDone(t, cue)

	if loaded != DefaultAsset {
		t.Errorf("loaded %q, want %q", loaded, DefaultAsset)
	}
}

func TestNewCue_PlaysBundledByDefault(t *testing.T) {
	// No guitar.mp3 exists in the package directory
	if _, err := os.Stat(DefaultAsset); !errors.Is(err, os.ErrNotExist) {
		t.Skipf("%s present in working directory", DefaultAsset)
	}

	var got Asset
	var calls atomic.Int32
	player := playerFunc(func(ctx context.Context, a Asset) error {
		calls.Add(1)
		got = a
		return nil
	})

	cue := NewCue("", player, nil)
	cue.Start(context.Background())
	waitDone(t, cue)

	if calls.Load() != 1 {
		t.Fatalf("Play called %d times, want 1", calls.Load())
	}
	if err := cue.Err(); err != nil {
		t.Errorf("Err = %v, want nil", err)
	}
	if len(got.Data) == 0 || string(got.Data[:4]) != "RIFF" {
		t.Errorf("played %d bytes, want the bundled wav", len(got.Data))
	}
	if got.Path == "" {
		t.Fatal("bundled asset should be written to a temp file")
	}
	onDisk, err := os.ReadFile(got.Path)
	if err != nil || len(onDisk) != len(got.Data) {
		t.Errorf("temp copy = %d bytes, %v; want %d bytes", len(onDisk), err, len(got.Data))
	}
}

func TestLoadDefault_PrefersFileOnDisk(t *testing.T) {
	path := writeAsset(t, "ID3 custom")

	asset, err := LoadDefault(context.Background(), path)
	if err != nil {
		t.Fatalf("LoadDefault failed: %v", err)
	}
	if string(asset.Data) != "ID3 custom" || asset.Path != path {
		t.Errorf("asset = %q at %q, want the file on disk", asset.Data, asset.Path)
	}

	// Other failures are not masked by the bundled cue
	if _, err := LoadDefault(context.Background(), writeAsset(t, "")); !errors.Is(err, ErrAssetEmpty) {
		t.Errorf("LoadDefault(empty) = %v, want ErrAssetEmpty", err)
	}
}

func TestNewCue_CustomPathHasNoFallback(t *testing.T) {
	player := &countingPlayer{}
	cue := NewCue(filepath.Join(t.TempDir(), "guitar.mp3"), player, nil)

	cue.Start(context.Background())
	waitDone(t, cue)

	if player.calls.Load() != 0 {
		t.Error("a missing custom asset should not fall back")
	}
}

func TestCommandPlayer_NoPath(t *testing.T) {
	p := &CommandPlayer{Command: []string{"true"}}
	if err := p.Play(context.Background(), Asset{Data: []byte{1}}); !errors.Is(err, ErrPlaybackRejected) {
		t.Errorf("Play error = %v, want ErrPlaybackRejected", err)
	}
}

type playerFunc func(ctx context.Context, a Asset) error

func (f playerFunc) Play(ctx context.Context, a Asset) error { return f(ctx, a) }
