package audio

import (
	"context"
	_ "embed"
	"errors"
	"os"
	"sync"
)

// bundledCue is a short strummed-guitar chord compiled into the binary.
//
//go:embed assets/guitar.wav
var bundledCue []byte

var (
	bundledOnce sync.Once
	bundledPath string
)

// Bundled returns the cue compiled into the binary. Its Path names a copy in
// the temp directory so external players can open it; Path is empty if that
// copy could not be written.
func Bundled() Asset {
	bundledOnce.Do(func() {
		f, err := os.CreateTemp("", "feedwatch-cue-*.wav")
		if err != nil {
			return
		}
		defer f.Close()
		if _, err := f.Write(bundledCue); err != nil {
			os.Remove(f.Name())
			return
		}
		bundledPath = f.Name()
	})
	return Asset{Path: bundledPath, Data: bundledCue}
}

// LoadDefault reads path like LoadFile and falls back to the bundled cue
// when the file does not exist.
func LoadDefault(ctx context.Context, path string) (Asset, error) {
	asset, err := LoadFile(ctx, path)
	if errors.Is(err, os.ErrNotExist) {
		return Bundled(), nil
	}
	return asset, err
}
