package audio

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"time"

	"github.com/gen2brain/beeep"
)

// Player kinds accepted by NewPlayer.
const (
	PlayerBeep    = "beep"
	PlayerCommand = "command"
	PlayerNone    = "none"
)

// Tone is one beep of a chime.
type Tone struct {
	Freq     float64 // Hz
	Duration int     // ms
}

// DefaultChime is an ascending two-tone success melody.
var DefaultChime = []Tone{
	{Freq: 600, Duration: 150},
	{Freq: 800, Duration: 150},
}

// BeepPlayer plays a fixed chime through the system speaker. The asset only
// gates playback; its content is not decoded.
type BeepPlayer struct {
	Tones []Tone
	Gap   time.Duration

	beep func(freq float64, duration int) error
}

// NewBeepPlayer creates a player for DefaultChime.
func NewBeepPlayer() *BeepPlayer {
	return &BeepPlayer{
		Tones: DefaultChime,
		Gap:   50 * time.Millisecond,
		beep:  beeep.Beep,
	}
}

// Play beeps each tone in order.
func (p *BeepPlayer) Play(ctx context.Context, asset Asset) error {
	for i, tone := range p.Tones {
		if i > 0 && p.Gap > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(p.Gap):
			}
		}
		if err := p.beep(tone.Freq, tone.Duration); err != nil {
			return fmt.Errorf("%w: beep: %v", ErrPlaybackRejected, err)
		}
	}
	return nil
}

// CommandPlayer runs an external player with the asset path appended, for
// example ["mpg123", "-q"] or ["afplay"].
type CommandPlayer struct {
	Command []string
}

// Play runs the command and waits for it to exit.
func (p *CommandPlayer) Play(ctx context.Context, asset Asset) error {
	if len(p.Command) == 0 {
		return fmt.Errorf("%w: no player command configured", ErrPlaybackRejected)
	}

	if asset.Path == "" {
		return fmt.Errorf("%w: asset has no file path", ErrPlaybackRejected)
	}

	args := append(append([]string{}, p.Command[1:]...), asset.Path)
	cmd := exec.CommandContext(ctx, p.Command[0], args...)

	if out, err := cmd.CombinedOutput(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return fmt.Errorf("%w: %s exited %d: %s", ErrPlaybackRejected, p.Command[0], exitErr.ExitCode(), out)
		}
		return fmt.Errorf("run %s: %w", p.Command[0], err)
	}
	return nil
}

// NopPlayer accepts every asset and plays nothing.
type NopPlayer struct{}

// Play does nothing.
func (NopPlayer) Play(context.Context, Asset) error {
	return nil
}

// NewPlayer builds the player named by kind.
func NewPlayer(kind string, command []string) (Player, error) {
	switch kind {
	case PlayerBeep, "":
		return NewBeepPlayer(), nil
	case PlayerCommand:
		if len(command) == 0 {
			return nil, errors.New("command player requires a command")
		}
		return &CommandPlayer{Command: command}, nil
	case PlayerNone:
		return NopPlayer{}, nil
	default:
		return nil, fmt.Errorf("unknown audio player %q", kind)
	}
}
