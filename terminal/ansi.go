package terminal

import (
	"bufio"
)

// maxEscapeLen bounds every escape sequence this package emits or accepts.
// Longest emitted: "\x1b[38;2;255;255;255m" (19 bytes).
const maxEscapeLen = 32

// Pre-allocated ANSI sequence fragments (avoid allocations on the write path)
var (
	csi     = []byte("\x1b[")
	csiSGR0 = []byte("\x1b[0m")
	csiRIS  = []byte("\x1bc") // Reset to Initial State (emergency)

	// Color prefixes
	csiFgRGB     = []byte("\x1b[38;2;") // followed by R;G;Bm
	csiBgRGB     = []byte("\x1b[48;2;") // followed by R;G;Bm
	csiDefaultFg = []byte("\x1b[39m")
	csiDefaultBg = []byte("\x1b[49m")

	// Cursor control
	csiCursorHide  = []byte("\x1b[?25l")
	csiCursorShow  = []byte("\x1b[?25h")
	csiCursorQuery = []byte("\x1b[6n") // DSR, answered with ESC [ row ; col R

	// Line control
	csiEraseEOL = []byte("\x1b[K")

	// DECBKM: Backarrow Key Mode
	// ?67h makes Backspace send BS (0x08), leaving DEL (0x7F) to Ctrl+Backspace
	csiBackspaceBS  = []byte("\x1b[?67h")
	csiBackspaceDEL = []byte("\x1b[?67l")

	// Line editor erase triple: back, blank, back
	eraseTriple = []byte("\b \b")
	crlf        = []byte("\r\n")
)

// AppendByteDecimal appends the decimal ASCII form of v (1-3 digits) to dst
func AppendByteDecimal(dst []byte, v uint8) []byte {
	if v < 10 {
		return append(dst, v+'0')
	}
	if v < 100 {
		return append(dst, v/10+'0', v%10+'0')
	}
	return append(dst, v/100+'0', v/10%10+'0', v%10+'0')
}

// writeInt writes an integer without allocation
// Optimized for terminal values (0-255 common, 0-9999 for rows and columns)
func writeInt(w *bufio.Writer, n int) {
	if n < 0 {
		n = 0
	}
	if n < 256 {
		var buf [3]byte
		w.Write(AppendByteDecimal(buf[:0], uint8(n)))
		return
	}
	var buf [20]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte(n%10) + '0'
		n /= 10
	}
	w.Write(buf[i:])
}

// writeRGB writes "R;G;B" without allocation
func writeRGB(w *bufio.Writer, c Color) {
	var buf [11]byte
	b := AppendByteDecimal(buf[:0], c.R)
	b = append(b, ';')
	b = AppendByteDecimal(b, c.G)
	b = append(b, ';')
	b = AppendByteDecimal(b, c.B)
	w.Write(b)
}

// writeFg writes a complete truecolor foreground sequence
func writeFg(w *bufio.Writer, c Color) {
	w.Write(csiFgRGB)
	writeRGB(w, c)
	w.WriteByte('m')
}

// writeBg writes a complete truecolor background sequence
func writeBg(w *bufio.Writer, c Color) {
	w.Write(csiBgRGB)
	writeRGB(w, c)
	w.WriteByte('m')
}

// writeCursorPos writes cursor positioning sequence (0-indexed input)
func writeCursorPos(w *bufio.Writer, x, y int) {
	w.Write(csi)
	writeInt(w, y+1)
	w.WriteByte(';')
	writeInt(w, x+1)
	w.WriteByte('H')
}
