// @lixen: #focus{sys[term,io,output]}
// @lixen: #interact{trigger[output,ansi]}
package terminal

import (
	"bufio"
	"fmt"
	"sync"
	"unicode"
)

// DefaultOutputBufferSize is the default size of the output staging buffer
const DefaultOutputBufferSize = 4096

// ColorWriter emits text preceded by only the SGR sequences needed to move
// from the last emitted colors to the requested ones
//
// Its color cache is the single source of truth for ambient color state;
// it stays correct only while every write goes through the writer. After
// anything else changes terminal colors, call Sync.
type ColorWriter struct {
	mu       *sync.Mutex // shared output lock
	w        *bufio.Writer
	platform Platform
	state    colorState
}

// newColorWriter creates a writer staging output for p
func newColorWriter(mu *sync.Mutex, p Platform, size int) *ColorWriter {
	if size < maxEscapeLen*2 {
		size = DefaultOutputBufferSize
	}
	return &ColorWriter{
		mu:       mu,
		w:        bufio.NewWriterSize(p, size),
		platform: p,
	}
}

// WriteChar writes r in the given colors
// When both colors match the cache only the encoded character is emitted
func (cw *ColorWriter) WriteChar(r rune, fg, bg Color) error {
	cw.mu.Lock()
	defer cw.mu.Unlock()

	cw.writeColors(fg, bg)
	writeRune(cw.w, r)
	return cw.flush()
}

// WriteString writes s in the given colors, diffing colors once per call
func (cw *ColorWriter) WriteString(s string, fg, bg Color) error {
	cw.mu.Lock()
	defer cw.mu.Unlock()

	cw.writeColors(fg, bg)
	writeText(cw.w, s)
	return cw.flush()
}

// WriteRaw writes an opaque pre-encoded payload (e.g. SIXEL)
// The color cache is not touched; payloads must not change SGR state
func (cw *ColorWriter) WriteRaw(p []byte) error {
	cw.mu.Lock()
	defer cw.mu.Unlock()

	cw.w.Write(p)
	return cw.flush()
}

// EraseToEndOfLine clears from the cursor to the end of the line
func (cw *ColorWriter) EraseToEndOfLine() error {
	cw.mu.Lock()
	defer cw.mu.Unlock()

	cw.w.Write(csiEraseEOL)
	return cw.flush()
}

// Sync replaces the cache with the platform-reported colors
// Channels the platform cannot report become unknown, forcing emission on
// the next write
func (cw *ColorWriter) Sync() {
	cw.mu.Lock()
	defer cw.mu.Unlock()

	cw.syncLocked()
}

func (cw *ColorWriter) syncLocked() {
	fg, bg, ok := cw.platform.ConsoleColors()
	if !ok {
		cw.state = colorState{}
		return
	}
	cw.state = colorState{fg: fg, bg: bg, fgKnown: true, bgKnown: true}
}

// Foreground returns the cached foreground, ColorIgnored when unknown
func (cw *ColorWriter) Foreground() Color {
	cw.mu.Lock()
	defer cw.mu.Unlock()
	return cw.state.foreground()
}

// Background returns the cached background, ColorIgnored when unknown
func (cw *ColorWriter) Background() Color {
	cw.mu.Lock()
	defer cw.mu.Unlock()
	return cw.state.background()
}

// writeColors emits SGR only for the channels that changed
// Caller holds mu
func (cw *ColorWriter) writeColors(fg, bg Color) {
	if cw.state.fgChanged(fg) {
		writeFg(cw.w, fg)
		cw.state.fg = fg
		cw.state.fgKnown = true
	}
	if cw.state.bgChanged(bg) {
		writeBg(cw.w, bg)
		cw.state.bg = bg
		cw.state.bgKnown = true
	}
}

// restoreLocked returns terminal and cache to a saved state
// Unknown channels are reset to the terminal default
func (cw *ColorWriter) restoreLocked(saved colorState) {
	if saved.fgKnown {
		cw.writeColors(saved.fg, ColorIgnored)
	} else if cw.state.fgKnown {
		cw.w.Write(csiDefaultFg)
	}
	if saved.bgKnown {
		cw.writeColors(ColorIgnored, saved.bg)
	} else if cw.state.bgKnown {
		cw.w.Write(csiDefaultBg)
	}
	cw.state = saved
}

// eraseLocked writes n back-blank-back triples
func (cw *ColorWriter) eraseLocked(n int) {
	for range n {
		cw.w.Write(eraseTriple)
	}
}

// flush pushes staged bytes to the platform
// A failed flush may have lost SGR bytes, so the cache is invalidated
func (cw *ColorWriter) flush() error {
	if err := cw.w.Flush(); err != nil {
		cw.w.Reset(cw.platform)
		cw.state = colorState{}
		return fmt.Errorf("terminal write: %w", err)
	}
	return nil
}

// echoKey renders a decoded key the way a cooked terminal echoes it
func (cw *ColorWriter) echoKey(ev KeyEvent, seq []byte) error {
	cw.mu.Lock()
	defer cw.mu.Unlock()

	switch ev.Key {
	case KeyNoName:
		return nil
	case KeyCharacter:
		switch {
		case ev.Control && ev.Rune == ' ':
			cw.w.WriteString("^@")
		case ev.Control:
			cw.w.WriteByte('^')
			writeRune(cw.w, unicode.ToUpper(ev.Rune))
		default:
			writeRune(cw.w, ev.Rune)
		}
	case KeyEnter:
		cw.w.Write(crlf)
	case KeyEscape:
		cw.w.WriteString("^[")
	case KeyBackspace:
		cw.w.WriteByte('\b')
	default:
		// Navigation and function keys: the sequence itself
		cw.w.Write(seq)
	}
	return cw.flush()
}
