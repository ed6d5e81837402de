// @lixen: #focus{sys[term,io,input]}
package terminal

import (
	"context"
	"io"
	"log/slog"
	"time"
)

// Escape coalescing defaults
// A lone ESC press is told apart from a sequence by the idle gap after it
const (
	DefaultEscapeTimeout  = 2 * time.Millisecond
	DefaultEscapeMaxBytes = 8
)

// inputBufferSize is the read-ahead size for one platform Read
const inputBufferSize = 64

// maxParamValue caps numeric CSI parameters
const maxParamValue = 9999

// inputBuffer is a fixed read-ahead over the platform input
type inputBuffer struct {
	p    Platform
	buf  [inputBufferSize]byte
	r, w int
}

// buffered returns the number of unread bytes held
func (b *inputBuffer) buffered() int {
	return b.w - b.r
}

// ReadByte blocks until a byte is available
func (b *inputBuffer) ReadByte() (byte, error) {
	if b.r == b.w {
		if err := b.fill(); err != nil {
			return 0, err
		}
	}
	c := b.buf[b.r]
	b.r++
	return c, nil
}

// UnreadByte steps back over the byte just returned by ReadByte
func (b *inputBuffer) UnreadByte() error {
	if b.r == 0 {
		return io.ErrNoProgress
	}
	b.r--
	return nil
}

// fill performs one blocking platform read into the empty buffer
func (b *inputBuffer) fill() error {
	b.r, b.w = 0, 0
	n, err := b.p.Read(b.buf[:])
	if n > 0 {
		b.w = n
		return nil
	}
	if err == nil {
		err = io.EOF
	}
	return err
}

// readByteWithin returns the next byte if one arrives within timeout
// A zero timeout only consumes input that is already available
func (b *inputBuffer) readByteWithin(timeout time.Duration) (byte, bool, error) {
	if b.r == b.w {
		ok, err := b.p.Poll(timeout)
		if err != nil || !ok {
			return 0, false, err
		}
	}
	c, err := b.ReadByte()
	if err != nil {
		return 0, false, err
	}
	return c, true, nil
}

// available reports whether a read would not block
func (b *inputBuffer) available() bool {
	if b.r < b.w {
		return true
	}
	ok, err := b.p.Poll(0)
	return ok || err != nil
}

// unread pushes p back in front of the buffered input
// Bytes that do not fit are dropped
func (b *inputBuffer) unread(p []byte) {
	if len(p) == 0 {
		return
	}
	if b.r >= len(p) {
		b.r -= len(p)
		copy(b.buf[b.r:], p)
		return
	}
	held := b.buffered()
	if len(p)+held > len(b.buf) {
		held = max(len(b.buf)-len(p), 0)
	}
	copy(b.buf[len(p):], b.buf[b.r:b.r+held])
	n := copy(b.buf[:], p)
	b.r, b.w = 0, n+held
}

// keyEchoer renders decoded input when the caller does not intercept it
type keyEchoer interface {
	echoKey(ev KeyEvent, seq []byte) error
}

// Decoder turns raw input bytes into KeyEvents
// Not safe for concurrent use: input belongs to one foreground reader
type Decoder struct {
	in   *inputBuffer
	echo keyEchoer
	log  *slog.Logger

	escapeTimeout  time.Duration
	escapeMaxBytes int

	// Bytes of the sequence being decoded
	seq    [maxEscapeLen]byte
	seqLen int
}

// newDecoder creates a decoder over the platform input
func newDecoder(p Platform, echo keyEchoer, log *slog.Logger, timeout time.Duration, maxBytes int) *Decoder {
	if timeout <= 0 {
		timeout = DefaultEscapeTimeout
	}
	if maxBytes < 3 {
		maxBytes = DefaultEscapeMaxBytes
	}
	if maxBytes > maxEscapeLen {
		maxBytes = maxEscapeLen
	}
	return &Decoder{
		in:             &inputBuffer{p: p},
		echo:           echo,
		log:            log,
		escapeTimeout:  timeout,
		escapeMaxBytes: maxBytes,
	}
}

// ReadKey blocks until one key is decoded
// With intercept false the key is also echoed to the terminal; a failed
// echo returns the decoded key together with the write error
func (d *Decoder) ReadKey(intercept bool) (KeyEvent, error) {
	ev, err := d.next()
	if err != nil {
		return KeyEvent{}, err
	}
	if !intercept && d.echo != nil {
		if err := d.echo.echoKey(ev, d.seq[:d.seqLen]); err != nil {
			return ev, err
		}
	}
	return ev, nil
}

// KeyAvailable reports whether ReadKey would return without blocking on input
func (d *Decoder) KeyAvailable() bool {
	return d.in.available()
}

// record appends b to the current sequence, dropping bytes past the bound
func (d *Decoder) record(b byte) {
	if d.seqLen < len(d.seq) {
		d.seq[d.seqLen] = b
		d.seqLen++
	}
}

// next decodes one event from the input
func (d *Decoder) next() (KeyEvent, error) {
	d.seqLen = 0
	b, err := d.in.ReadByte()
	if err != nil {
		return KeyEvent{}, err
	}
	d.record(b)

	switch {
	// Fast path: printable ASCII
	case b >= 0x20 && b < 0x7f:
		return KeyEvent{Key: KeyCharacter, Rune: rune(b)}, nil

	case b == 0x1b:
		return d.decodeEscape(), nil

	case b == '\r':
		// Swallow an LF already queued behind CR (pasted CRLF)
		if d.in.buffered() > 0 && d.in.buf[d.in.r] == '\n' {
			d.in.r++
		}
		return KeyEvent{Key: KeyEnter, Rune: '\r'}, nil

	case b < 0x20 || b == 0x7f:
		return controlEvent(b), nil
	}

	// UTF-8 multibyte: re-read the lead byte through the codec
	d.in.UnreadByte()
	d.seqLen = 0
	r, err := DecodeNext(d.in)
	if err != nil {
		return KeyEvent{}, err
	}
	return KeyEvent{Key: KeyCharacter, Rune: r}, nil
}

// controlEvent maps C0 controls and DEL to keys
// DECBKM makes Backspace send BS and Ctrl+Backspace send DEL
func controlEvent(b byte) KeyEvent {
	switch b {
	case 0x08:
		return KeyEvent{Key: KeyBackspace, Rune: '\b'}
	case 0x7f:
		return KeyEvent{Key: KeyBackspace, Rune: 0x7f, Control: true}
	case '\t':
		return KeyEvent{Key: KeyCharacter, Rune: '\t'}
	case '\r', '\n':
		return KeyEvent{Key: KeyEnter, Rune: '\r'}
	case 0x1b:
		return KeyEvent{Key: KeyEscape, Rune: 0x1b}
	case 0x00: // Ctrl+Space or Ctrl+@
		return KeyEvent{Key: KeyCharacter, Rune: ' ', Control: true}
	case 0x1c, 0x1d, 0x1e, 0x1f: // Ctrl+\ Ctrl+] Ctrl+^ Ctrl+_
		return KeyEvent{Key: KeyCharacter, Rune: rune(b) + '@', Control: true}
	}
	// Ctrl+letter (Ctrl+A = 0x01, Ctrl+Z = 0x1A)
	return KeyEvent{Key: KeyCharacter, Rune: rune(b) + 'a' - 1, Control: true}
}

// nextSeqByte reads the next byte of a sequence
// The timed window covers escapeMaxBytes; past it only bytes already
// delivered are drained, up to maxEscapeLen
func (d *Decoder) nextSeqByte() (byte, bool) {
	if d.seqLen >= maxEscapeLen {
		return 0, false
	}
	timeout := d.escapeTimeout
	if d.seqLen >= d.escapeMaxBytes {
		timeout = 0
	}
	c, ok, err := d.in.readByteWithin(timeout)
	if err != nil || !ok {
		return 0, false
	}
	d.record(c)
	return c, true
}

// decodeEscape resolves the burst following ESC
func (d *Decoder) decodeEscape() KeyEvent {
	c, ok := d.nextSeqByte()
	if !ok {
		// Empty burst: standalone Escape press
		return KeyEvent{Key: KeyEscape, Rune: 0x1b}
	}

	switch {
	case c == '[':
		return d.decodeCSI()
	case c == 'O':
		return d.decodeSS3()
	case c == 0x1b:
		// ESC ESC -> Alt+Escape
		return KeyEvent{Key: KeyEscape, Rune: 0x1b, Alt: true}
	case c < 0x20 || c == 0x7f:
		// Alt+Control character
		ev := controlEvent(c)
		ev.Alt = true
		return ev
	case c < 0x80:
		// Alt+printable
		return KeyEvent{Key: KeyCharacter, Rune: rune(c), Alt: true}
	}

	d.in.UnreadByte()
	d.seqLen--
	r, err := DecodeNext(d.in)
	if err != nil {
		return KeyEvent{Key: KeyEscape, Rune: 0x1b}
	}
	return KeyEvent{Key: KeyCharacter, Rune: r, Alt: true}
}

// decodeCSI parses ESC [ params final without allocation
// Unknown or malformed sequences are consumed and resolve to KeyNoName
func (d *Decoder) decodeCSI() KeyEvent {
	var params [4]int
	n := 0
	cur := 0
	private := false

	for {
		c, ok := d.nextSeqByte()
		if !ok {
			d.logSequence("truncated escape sequence")
			return KeyEvent{Key: KeyNoName}
		}

		switch {
		case c >= '0' && c <= '9':
			cur = cur*10 + int(c-'0')
			if cur > maxParamValue {
				cur = maxParamValue
			}

		case c == ';':
			if n < len(params) {
				params[n] = cur
				n++
			}
			cur = 0

		case c >= 0x20 && c <= 0x3f:
			// Private markers (<=>?) and intermediates
			private = true

		case c >= 0x40 && c <= 0x7e:
			if n < len(params) {
				params[n] = cur
				n++
			}
			if private {
				d.logSequence("unrecognized escape sequence")
				return KeyEvent{Key: KeyNoName}
			}
			return d.resolveCSI(c, params[:n])

		default:
			// Control byte inside a sequence: abandon it
			d.logSequence("malformed escape sequence")
			return KeyEvent{Key: KeyNoName}
		}
	}
}

// resolveCSI maps a complete CSI sequence to a key
func (d *Decoder) resolveCSI(final byte, params []int) KeyEvent {
	// Shift+Tab
	if final == 'Z' {
		return KeyEvent{Key: KeyCharacter, Rune: '\t', Shift: true}
	}

	ev := KeyEvent{Key: lookupCSI(final, params[0])}
	if ev.Key == KeyNoName {
		d.logSequence("unrecognized escape sequence")
		return ev
	}
	if len(params) > 1 {
		ev.applyModParam(params[1])
	}
	return ev
}

// decodeSS3 parses ESC O final
func (d *Decoder) decodeSS3() KeyEvent {
	c, ok := d.nextSeqByte()
	if !ok {
		// Nothing followed: this was Alt+O
		return KeyEvent{Key: KeyCharacter, Rune: 'O', Alt: true}
	}
	ev := KeyEvent{Key: lookupSS3(c)}
	if ev.Key == KeyNoName {
		d.logSequence("unrecognized escape sequence")
	}
	return ev
}

// logSequence records a discarded sequence at debug level
func (d *Decoder) logSequence(msg string) {
	if d.log == nil || !d.log.Enabled(context.Background(), slog.LevelDebug) {
		return
	}
	d.log.Debug(msg, "bytes", string(d.seq[:d.seqLen]))
}
