package display

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode"
)

// Errors
var (
	ErrTargetMissing = errors.New("display target missing")
)

// Surface shows entries to the user. Append is called after the entry is
// already in the List.
type Surface interface {
	Append(e Entry) error
}

// Renderer turns inbound payloads into display entries.
type Renderer struct {
	list    *List
	surface Surface
	logger  *slog.Logger
}

// NewRenderer creates a renderer writing to list and, if non-nil, surface.
func NewRenderer(list *List, surface Surface, logger *slog.Logger) *Renderer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Renderer{
		list:    list,
		surface: surface,
		logger:  logger,
	}
}

// List returns the backing list.
func (r *Renderer) List() *List {
	return r.list
}

// Render appends payload as a new entry. The payload is stored verbatim and
// never interpreted. Returns ErrTargetMissing when there is no list to
// append to; surface failures are returned wrapped but the entry is kept.
func (r *Renderer) Render(sessionID string, payload []byte, receivedAt time.Time) (err error) {
	if r == nil || r.list == nil {
		return ErrTargetMissing
	}

	entry := r.list.Append(Entry{
		SessionID:  sessionID,
		ReceivedAt: receivedAt,
		Text:       string(payload),
	})

	if r.surface == nil {
		return nil
	}

	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("surface panic on entry %d: %v", entry.Seq, p)
		}
	}()

	if err := r.surface.Append(entry); err != nil {
		return fmt.Errorf("surface append entry %d: %w", entry.Seq, err)
	}
	return nil
}

// inert replaces control characters so payloads cannot drive the terminal.
func inert(s string) string {
	return strings.Map(func(r rune) rune {
		if r == '\t' {
			return ' '
		}
		if unicode.IsControl(r) {
			return unicode.ReplacementChar
		}
		return r
	}, s)
}
