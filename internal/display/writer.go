package display

import (
	"fmt"
	"io"
	"sync"
	"time"

	json "github.com/goccy/go-json"
)

// DefaultTimeFormat is used when no time format is configured.
const DefaultTimeFormat = "15:04:05"

// TextSurface writes one line per entry.
type TextSurface struct {
	mu         sync.Mutex
	w          io.Writer
	timeFormat string
}

// NewTextSurface creates a line-oriented surface.
func NewTextSurface(w io.Writer, timeFormat string) *TextSurface {
	if timeFormat == "" {
		timeFormat = DefaultTimeFormat
	}
	return &TextSurface{w: w, timeFormat: timeFormat}
}

// Append writes "[time] text".
func (s *TextSurface) Append(e Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := fmt.Fprintf(s.w, "[%s] %s\n", e.ReceivedAt.Format(s.timeFormat), inert(e.Text))
	return err
}

// jsonEntry is the wire shape of a JSONSurface line.
type jsonEntry struct {
	Seq        int       `json:"seq"`
	SessionID  string    `json:"session_id"`
	ReceivedAt time.Time `json:"received_at"`
	Text       string    `json:"text"`
}

// JSONSurface writes one JSON object per entry, for piping into other tools.
type JSONSurface struct {
	mu  sync.Mutex
	enc *json.Encoder
}

// NewJSONSurface creates a JSON lines surface.
func NewJSONSurface(w io.Writer) *JSONSurface {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	return &JSONSurface{enc: enc}
}

// Append encodes the entry followed by a newline.
func (s *JSONSurface) Append(e Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.enc.Encode(jsonEntry{
		Seq:        e.Seq,
		SessionID:  e.SessionID,
		ReceivedAt: e.ReceivedAt,
		Text:       e.Text,
	})
}
