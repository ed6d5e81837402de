package terminal

import (
	"errors"
	"time"
)

// ErrUnsupported is returned by Platform operations the host cannot perform
var ErrUnsupported = errors.New("terminal: operation not supported on this platform")

// Capabilities describes what a Platform can do
// Callers check these instead of relying on errors for expected absence
type Capabilities struct {
	RawMode          bool // EnableRaw can change input discipline
	CursorVisibility bool // ESC[?25h/l is honored
	CursorQuery      bool // CursorPosition reports natively (no DSR round trip)
	BufferResize     bool // SetBufferSize can grow the scroll buffer
	ConsoleColors    bool // ConsoleColors reports the ambient colors
}

// Platform abstracts the OS console
// Implementations: posix (termios), windows (console modes), stream (plain io)
type Platform interface {
	// Lifecycle
	// EnableRaw snapshots the current input mode and switches to raw input
	EnableRaw() error
	// DisableRaw restores the snapshot taken by EnableRaw; no-op if not enabled
	DisableRaw() error
	Close() error

	// Capabilities
	Capabilities() Capabilities

	// I/O
	// Read blocks until at least one byte is available
	Read(p []byte) (int, error)
	// Poll waits up to timeout for readable input; zero timeout never blocks
	Poll(timeout time.Duration) (bool, error)
	// Write writes raw bytes to the terminal output
	Write(p []byte) (int, error)

	// Geometry
	BufferSize() (width, height int)
	SetBufferSize(width, height int) error
	CursorPosition() (left, top int, err error)

	// ConsoleColors returns the ambient colors when the host can report them
	ConsoleColors() (fg, bg Color, ok bool)
}

// Fallback geometry when the host cannot report it
const (
	defaultWidth  = 80
	defaultHeight = 24
)
