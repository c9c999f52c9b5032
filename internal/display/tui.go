package display

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/uniseg"
)

// Status is the connection summary shown in the TUI status bar.
type Status struct {
	State     string
	Endpoint  string
	Attempts  int64
	Opens     int64
	LastError string
}

var (
	headerStyle = tcell.StyleDefault.Bold(true).Background(tcell.ColorNavy).Foreground(tcell.ColorWhite)
	entryStyle  = tcell.StyleDefault.Foreground(tcell.ColorWhite).Background(tcell.ColorBlack)
	timeStyle   = tcell.StyleDefault.Foreground(tcell.ColorGray).Background(tcell.ColorBlack)
	openStyle   = tcell.StyleDefault.Background(tcell.ColorDarkGreen).Foreground(tcell.ColorWhite)
	downStyle   = tcell.StyleDefault.Background(tcell.ColorDarkRed).Foreground(tcell.ColorWhite)
)

// TUI is a full-screen surface: a scrolling message list between a header
// line and a status bar. It follows the newest entry until the user scrolls.
type TUI struct {
	screen     tcell.Screen
	list       *List
	timeFormat string

	mu     sync.Mutex
	status Status
	offset int // first visible entry when not following
	follow bool

	redraw chan struct{}
}

// NewTUI creates a TUI over list. The screen is initialized by Run.
func NewTUI(screen tcell.Screen, list *List, timeFormat string) *TUI {
	if timeFormat == "" {
		timeFormat = DefaultTimeFormat
	}
	return &TUI{
		screen:     screen,
		list:       list,
		timeFormat: timeFormat,
		follow:     true,
		redraw:     make(chan struct{}, 1),
	}
}

// Append schedules a redraw; the entry is read back from the list.
func (t *TUI) Append(Entry) error {
	t.requestRedraw()
	return nil
}

// SetStatus replaces the status bar contents.
func (t *TUI) SetStatus(st Status) {
	t.mu.Lock()
	t.status = st
	t.mu.Unlock()
	t.requestRedraw()
}

func (t *TUI) requestRedraw() {
	select {
	case t.redraw <- struct{}{}:
	default:
	}
}

// Run takes over the terminal until the user quits or ctx is cancelled.
func (t *TUI) Run(ctx context.Context) error {
	if err := t.screen.Init(); err != nil {
		return fmt.Errorf("init screen: %w", err)
	}
	defer t.screen.Fini()

	t.screen.SetStyle(entryStyle)

	events := make(chan tcell.Event, 16)
	quit := make(chan struct{})
	defer close(quit)

	go func() {
		for {
			ev := t.screen.PollEvent()
			if ev == nil {
				// Screen finalized
				return
			}
			select {
			case events <- ev:
			case <-quit:
				return
			}
		}
	}()

	t.draw()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-t.redraw:
			t.draw()
		case ev := <-events:
			switch ev := ev.(type) {
			case *tcell.EventKey:
				if t.handleKey(ev) {
					return nil
				}
				t.draw()
			case *tcell.EventResize:
				t.screen.Sync()
				t.draw()
			}
		}
	}
}

// rows returns how many entries fit between header and status bar.
func (t *TUI) rows() int {
	_, h := t.screen.Size()
	if h < 3 {
		return 0
	}
	return h - 2
}

// top returns the index of the first visible entry. Caller holds mu.
func (t *TUI) top(total, rows int) int {
	maxTop := total - rows
	if maxTop < 0 {
		maxTop = 0
	}
	if t.follow {
		return maxTop
	}
	if t.offset > maxTop {
		return maxTop
	}
	if t.offset < 0 {
		return 0
	}
	return t.offset
}

// handleKey applies a key press and reports whether the user asked to quit.
func (t *TUI) handleKey(ev *tcell.EventKey) bool {
	switch ev.Key() {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		return true
	case tcell.KeyRune:
		if ev.Rune() == 'q' || ev.Rune() == 'Q' {
			return true
		}
		return false
	}

	rows := t.rows()
	total := t.list.Len()

	t.mu.Lock()
	defer t.mu.Unlock()

	current := t.top(total, rows)
	switch ev.Key() {
	case tcell.KeyUp:
		t.scrollTo(current-1, total, rows)
	case tcell.KeyDown:
		t.scrollTo(current+1, total, rows)
	case tcell.KeyPgUp:
		t.scrollTo(current-rows, total, rows)
	case tcell.KeyPgDn:
		t.scrollTo(current+rows, total, rows)
	case tcell.KeyHome:
		t.scrollTo(0, total, rows)
	case tcell.KeyEnd:
		t.follow = true
	}
	return false
}

// scrollTo moves the viewport; reaching the bottom resumes following.
// Caller holds mu.
func (t *TUI) scrollTo(offset, total, rows int) {
	maxTop := total - rows
	if maxTop < 0 {
		maxTop = 0
	}
	if offset < 0 {
		offset = 0
	}
	if offset >= maxTop {
		t.follow = true
		t.offset = maxTop
		return
	}
	t.follow = false
	t.offset = offset
}

func (t *TUI) draw() {
	t.mu.Lock()
	st := t.status
	follow := t.follow
	w, h := t.screen.Size()
	rows := t.rows()
	total := t.list.Len()
	top := t.top(total, rows)
	t.mu.Unlock()

	t.screen.Clear()

	drawText(t.screen, 0, 0, w, headerStyle, " feedwatch  "+st.Endpoint)

	for i, e := range t.list.Window(top, top+rows) {
		y := 1 + i
		stamp := e.ReceivedAt.Format(t.timeFormat) + "  "
		sw := uniseg.StringWidth(stamp)
		drawText(t.screen, 0, y, sw, timeStyle, stamp)
		drawText(t.screen, sw, y, w-sw, entryStyle, inert(e.Text))
	}

	parts := []string{
		" " + strings.ToUpper(st.State),
		fmt.Sprintf("attempts %d", st.Attempts),
		fmt.Sprintf("opened %d", st.Opens),
		fmt.Sprintf("%d messages", total),
	}
	if !follow {
		parts = append(parts, "scrolled (End to follow)")
	}
	if st.LastError != "" {
		parts = append(parts, st.LastError)
	}

	style := downStyle
	if st.State == "open" {
		style = openStyle
	}
	if h > 1 {
		drawText(t.screen, 0, h-1, w, style, strings.Join(parts, " | "))
	}

	t.screen.Show()
}

// drawText draws text one grapheme cluster at a time, advancing by its
// display width, and pads the rest of width with blanks. A wide cluster
// that would straddle the edge is left out.
func drawText(s tcell.Screen, x, y, width int, style tcell.Style, text string) {
	col := 0

	gr := uniseg.NewGraphemes(text)
	for gr.Next() {
		runes := gr.Runes()
		cw := gr.Width()
		if cw == 0 {
			continue
		}
		if col+cw > width {
			break
		}
		s.SetContent(x+col, y, runes[0], runes[1:], style)
		col += cw
	}

	for col < width {
		s.SetContent(x+col, y, ' ', nil, style)
		col++
	}
}
