package terminal

import (
	"errors"
)

// ErrSessionOrder is returned when a session is closed while a session
// begun after it is still open
var ErrSessionOrder = errors.New("terminal: session closed out of order")

// Session is a saved snapshot of colors, cursor position and cursor
// visibility, restored by Close
// Sessions nest strictly: the innermost open session closes first
type Session struct {
	t     *Terminal
	depth int

	colors  colorState
	left    int
	top     int
	visible bool

	closed bool
}

// BeginSession captures the current terminal state
func (t *Terminal) BeginSession() *Session {
	left, top := t.CursorPosition()

	t.mu.Lock()
	defer t.mu.Unlock()

	t.sessionDepth++
	return &Session{
		t:       t,
		depth:   t.sessionDepth,
		colors:  t.writer.state,
		left:    left,
		top:     top,
		visible: t.cursorVisible,
	}
}

// Close restores the captured state
// Closing twice is a no-op; closing out of order restores nothing and
// returns ErrSessionOrder
func (s *Session) Close() error {
	t := s.t
	t.mu.Lock()
	defer t.mu.Unlock()

	if s.closed {
		return nil
	}
	if s.depth != t.sessionDepth {
		return ErrSessionOrder
	}
	s.closed = true
	t.sessionDepth--

	t.writer.restoreLocked(s.colors)
	if t.caps.CursorVisibility {
		t.setCursorVisibleLocked(s.visible)
	}
	// setCursorLocked flushes the restored colors with the move
	t.setCursorLocked(s.left, s.top)
	return nil
}

// WithSession runs fn inside a session that is closed on every exit path,
// including a panic unwinding through fn
func (t *Terminal) WithSession(fn func() error) (err error) {
	s := t.BeginSession()
	defer func() {
		if cerr := s.Close(); err == nil {
			err = cerr
		}
	}()
	return fn()
}
