package terminal

import (
	"bufio"
	"errors"
	"log/slog"
	"sync"
	"time"
)

// ErrNotInitialized is returned by operations that need Init first
var ErrNotInitialized = errors.New("terminal: not initialized")

// Console is the surface higher layers (pickers, highlighters, SIXEL
// renderers) build on
type Console interface {
	WriteChar(r rune, fg, bg Color) error
	WriteString(s string, fg, bg Color) error
	WriteRaw(p []byte) error
	ReadKey(intercept bool) (KeyEvent, error)
	KeyAvailable() bool
	ReadLine(restoreOnExit bool) (string, error)
	SetCursorPosition(left, top int)
	CursorPosition() (left, top int)
	SetCursorVisible(visible bool)
	ForegroundColor() Color
	BackgroundColor() Color
	BeginSession() *Session
	WithSession(fn func() error) error
}

var _ Console = (*Terminal)(nil)

// Options configures a Terminal
// Start from DefaultOptions; zero timing and size fields select defaults
type Options struct {
	// Platform to drive; nil opens the process console with NewPlatform
	Platform Platform

	// Logger receives diagnostics; nil discards them
	// The terminal owns the screen and never logs to stdout or stderr
	Logger *slog.Logger

	EscapeTimeout  time.Duration
	EscapeMaxBytes int

	// BackspaceMode writes DECBKM at Init so Backspace sends BS and
	// Ctrl+Backspace sends DEL
	BackspaceMode bool

	// RestoreOnSignal restores the console mode before termination signals
	RestoreOnSignal bool

	OutputBufferSize int

	// Colors used by ReadLine to echo typed characters
	EchoForeground Color
	EchoBackground Color
}

// DefaultOptions returns the options used when none are configured
func DefaultOptions() Options {
	return Options{
		EscapeTimeout:    DefaultEscapeTimeout,
		EscapeMaxBytes:   DefaultEscapeMaxBytes,
		BackspaceMode:    true,
		RestoreOnSignal:  true,
		OutputBufferSize: DefaultOutputBufferSize,
		EchoForeground:   ColorIgnored,
		EchoBackground:   ColorIgnored,
	}
}

// Terminal owns one console: its raw-mode state, input decoder, color
// cache, cursor state and session stack
type Terminal struct {
	platform Platform
	caps     Capabilities
	log      *slog.Logger
	opts     Options

	// mu serializes all output and guards the cursor and session fields
	mu      sync.Mutex
	writer  *ColorWriter
	out     *bufio.Writer
	decoder *Decoder

	cursorVisible bool
	cursorLeft    int
	cursorTop     int
	sessionDepth  int

	stateMu     sync.Mutex
	initialized bool
	finalized   bool
	raw         bool
	suspended   bool
	hook        *exitHook
}

// New creates a Terminal over opts.Platform, opening the process console
// when none is given
func New(opts Options) (*Terminal, error) {
	p := opts.Platform
	if p == nil {
		var err error
		if p, err = NewPlatform(); err != nil {
			return nil, err
		}
	}

	log := opts.Logger
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}

	t := &Terminal{
		platform:      p,
		caps:          p.Capabilities(),
		log:           log,
		opts:          opts,
		cursorVisible: true,
	}
	t.writer = newColorWriter(&t.mu, p, opts.OutputBufferSize)
	t.out = t.writer.w
	t.decoder = newDecoder(p, t.writer, log, opts.EscapeTimeout, opts.EscapeMaxBytes)
	t.writer.Sync()
	return t, nil
}

// Init enters raw mode and applies the configured console modes
// A console that refuses raw mode keeps its prior mode; that is logged,
// not returned. Safe to call multiple times
func (t *Terminal) Init() error {
	t.stateMu.Lock()
	defer t.stateMu.Unlock()

	if t.initialized {
		return nil
	}

	if t.caps.RawMode {
		if err := t.platform.EnableRaw(); err != nil {
			t.log.Warn("raw mode unavailable, keeping prior input mode", "error", err)
		} else {
			t.raw = true
		}
	}

	if t.opts.BackspaceMode {
		if err := t.writer.WriteRaw(csiBackspaceBS); err != nil {
			// Not initialized, so Fini would skip the restore
			if t.raw {
				err = errors.Join(err, t.platform.DisableRaw())
				t.raw = false
			}
			return err
		}
	}

	if t.opts.RestoreOnSignal {
		t.hook = installExitHook(t.EmergencyReset, t.log)
	}

	t.initialized = true
	t.finalized = false
	return nil
}

// Fini restores everything Init changed. Safe to call multiple times
func (t *Terminal) Fini() error {
	t.stateMu.Lock()
	defer t.stateMu.Unlock()

	if !t.initialized || t.finalized {
		return nil
	}
	t.finalized = true
	t.initialized = false

	if t.hook != nil {
		t.hook.stop()
		t.hook = nil
	}

	t.mu.Lock()
	if t.opts.BackspaceMode {
		t.out.Write(csiBackspaceDEL)
	}
	if t.caps.CursorVisibility && !t.cursorVisible {
		t.out.Write(csiCursorShow)
		t.cursorVisible = true
	}
	werr := t.writer.flush()
	t.mu.Unlock()

	var rerr error
	if t.raw {
		rerr = t.platform.DisableRaw()
		t.raw = false
	}
	t.suspended = false
	return errors.Join(werr, rerr)
}

// Close finalizes the terminal and releases the platform
func (t *Terminal) Close() error {
	ferr := t.Fini()
	return errors.Join(ferr, t.platform.Close())
}

// Raw reports whether raw input mode is active
func (t *Terminal) Raw() bool {
	t.stateMu.Lock()
	defer t.stateMu.Unlock()
	return t.raw
}

// Capabilities returns what the underlying platform supports
func (t *Terminal) Capabilities() Capabilities {
	return t.caps
}

// Size returns the buffer dimensions
func (t *Terminal) Size() (width, height int) {
	return t.platform.BufferSize()
}

// Writer returns the color-diffing writer
func (t *Terminal) Writer() *ColorWriter {
	return t.writer
}

// WriteChar writes r in the given colors
func (t *Terminal) WriteChar(r rune, fg, bg Color) error {
	return t.writer.WriteChar(r, fg, bg)
}

// WriteString writes s in the given colors
func (t *Terminal) WriteString(s string, fg, bg Color) error {
	return t.writer.WriteString(s, fg, bg)
}

// WriteRaw writes a pre-encoded payload without touching color state
func (t *Terminal) WriteRaw(p []byte) error {
	return t.writer.WriteRaw(p)
}

// EraseToEndOfLine clears from the cursor to the end of the line
func (t *Terminal) EraseToEndOfLine() error {
	return t.writer.EraseToEndOfLine()
}

// ForegroundColor returns the cached foreground, ColorIgnored when unknown
func (t *Terminal) ForegroundColor() Color {
	return t.writer.Foreground()
}

// BackgroundColor returns the cached background, ColorIgnored when unknown
func (t *Terminal) BackgroundColor() Color {
	return t.writer.Background()
}

// Sync re-reads the ambient colors from the platform
func (t *Terminal) Sync() {
	t.writer.Sync()
}

// ReadKey blocks until one key is decoded
// With intercept false the key is echoed the way a cooked terminal would
func (t *Terminal) ReadKey(intercept bool) (KeyEvent, error) {
	return t.decoder.ReadKey(intercept)
}

// KeyAvailable reports whether ReadKey would return without waiting for input
func (t *Terminal) KeyAvailable() bool {
	return t.decoder.KeyAvailable()
}
