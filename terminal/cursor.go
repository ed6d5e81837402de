package terminal

import (
	"bytes"
	"time"
)

// cursorQueryTimeout bounds the wait for a DSR cursor report
const cursorQueryTimeout = 100 * time.Millisecond

// cursorSetter is implemented by platforms that position the cursor
// natively in buffer coordinates
type cursorSetter interface {
	SetCursor(left, top int) error
}

// SetCursorPosition moves the cursor to a 0-indexed buffer cell
// Coordinates are clamped; a row past the buffer grows it when the platform
// allows, else clamps to the last row. Never fails
func (t *Terminal) SetCursorPosition(left, top int) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.setCursorLocked(left, top)
}

func (t *Terminal) setCursorLocked(left, top int) {
	left, top = t.clampCursor(left, top)

	if cs, ok := t.platform.(cursorSetter); ok {
		// Pending output must land before the cursor moves
		if t.writer.flush() == nil {
			if err := cs.SetCursor(left, top); err == nil {
				t.cursorLeft, t.cursorTop = left, top
				return
			}
		}
	}

	writeCursorPos(t.out, left, top)
	if err := t.writer.flush(); err != nil {
		t.log.Debug("cursor move failed", "error", err)
	}
	t.cursorLeft, t.cursorTop = left, top
}

// clampCursor bounds a position to the buffer
func (t *Terminal) clampCursor(left, top int) (int, int) {
	left = max(left, 0)
	top = max(top, 0)

	w, h := t.platform.BufferSize()
	if left >= w {
		left = w - 1
	}
	if top >= h {
		if !t.caps.BufferResize {
			return left, h - 1
		}
		if err := t.platform.SetBufferSize(w, top+1); err != nil {
			t.log.Debug("buffer resize failed, clamping row", "row", top, "height", h, "error", err)
			return left, h - 1
		}
	}
	return left, top
}

// CursorPosition returns the 0-indexed cursor cell
// Order: native platform query, DSR round trip, last position set
func (t *Terminal) CursorPosition() (left, top int) {
	if t.caps.CursorQuery {
		if l, tp, err := t.platform.CursorPosition(); err == nil {
			return l, tp
		}
	}
	if l, tp, ok := t.queryCursor(); ok {
		return l, tp
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	return t.cursorLeft, t.cursorTop
}

// queryCursor asks the terminal with DSR and waits briefly for the report
// Input that arrives ahead of the report is pushed back for ReadKey
func (t *Terminal) queryCursor() (int, int, bool) {
	if !t.Raw() {
		// Cooked input would hold the reply until Enter
		return 0, 0, false
	}

	t.mu.Lock()
	t.out.Write(csiCursorQuery)
	err := t.writer.flush()
	t.mu.Unlock()
	if err != nil {
		return 0, 0, false
	}

	in := t.decoder.in
	var held [inputBufferSize]byte
	n := 0
	deadline := time.Now().Add(cursorQueryTimeout)
	for n < len(held) {
		remaining := time.Until(deadline)
		if remaining <= 0 {
			break
		}
		c, ok, err := in.readByteWithin(remaining)
		if err != nil || !ok {
			break
		}
		held[n] = c
		n++
		if c != 'R' {
			continue
		}
		if start, row, col, ok := parseCursorReport(held[:n]); ok {
			in.unread(held[:start])
			t.mu.Lock()
			t.cursorLeft, t.cursorTop = col-1, row-1
			t.mu.Unlock()
			return col - 1, row - 1, true
		}
	}
	in.unread(held[:n])
	t.log.Debug("no cursor position report", "bytes", n)
	return 0, 0, false
}

// parseCursorReport finds "ESC [ row ; col R" at the end of b
// Returns the offset where the report starts
func parseCursorReport(b []byte) (start, row, col int, ok bool) {
	start = bytes.LastIndexByte(b, 0x1b)
	if start < 0 || len(b)-start < 6 || b[start+1] != '[' || b[len(b)-1] != 'R' {
		return 0, 0, 0, false
	}
	body := b[start+2 : len(b)-1]
	sep := bytes.IndexByte(body, ';')
	if sep <= 0 || sep == len(body)-1 {
		return 0, 0, 0, false
	}
	row, ok = parseDecimal(body[:sep])
	if !ok {
		return 0, 0, 0, false
	}
	col, ok = parseDecimal(body[sep+1:])
	if !ok || row < 1 || col < 1 {
		return 0, 0, 0, false
	}
	return start, row, col, true
}

// parseDecimal parses a bounded run of ASCII digits
func parseDecimal(b []byte) (int, bool) {
	if len(b) == 0 || len(b) > 5 {
		return 0, false
	}
	n := 0
	for _, c := range b {
		if c < '0' || c > '9' {
			return 0, false
		}
		n = n*10 + int(c-'0')
	}
	return n, true
}

// SetCursorVisible shows or hides the cursor
// No-op when the platform cannot change visibility
func (t *Terminal) SetCursorVisible(visible bool) {
	if !t.caps.CursorVisibility {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()

	t.setCursorVisibleLocked(visible)
}

func (t *Terminal) setCursorVisibleLocked(visible bool) {
	if t.cursorVisible == visible {
		return
	}
	if visible {
		t.out.Write(csiCursorShow)
	} else {
		t.out.Write(csiCursorHide)
	}
	if err := t.writer.flush(); err != nil {
		t.log.Debug("cursor visibility change failed", "error", err)
		return
	}
	t.cursorVisible = visible
}

// CursorVisible reports the last visibility set through this Terminal
func (t *Terminal) CursorVisible() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.cursorVisible
}
