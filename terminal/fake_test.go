package terminal

import (
	"bytes"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// fakePlatform is an in-memory Platform
// Input is fed up front; an exhausted input reads as io.EOF
type fakePlatform struct {
	mu  sync.Mutex
	in  []byte
	out bytes.Buffer

	caps          Capabilities
	width, height int

	fg, bg   Color
	colorsOK bool

	raw        bool
	enableErr  error
	enableHits int
	resizeErr  error
	resizes    [][2]int

	cursorLeft, cursorTop int
	cursorErr             error

	writeErr error
}

func newFakePlatform() *fakePlatform {
	return &fakePlatform{width: 80, height: 24}
}

func (f *fakePlatform) feed(s string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.in = append(f.in, s...)
}

// output returns and clears everything written so far
func (f *fakePlatform) output() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	s := f.out.String()
	f.out.Reset()
	return s
}

func (f *fakePlatform) EnableRaw() error {
	f.enableHits++
	if f.enableErr != nil {
		return f.enableErr
	}
	f.raw = true
	return nil
}

func (f *fakePlatform) DisableRaw() error {
	f.raw = false
	return nil
}

func (f *fakePlatform) Close() error { return nil }

func (f *fakePlatform) Capabilities() Capabilities { return f.caps }

func (f *fakePlatform) Read(p []byte) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.in) == 0 {
		return 0, io.EOF
	}
	n := copy(p, f.in)
	f.in = f.in[n:]
	return n, nil
}

func (f *fakePlatform) Poll(time.Duration) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.in) > 0, nil
}

func (f *fakePlatform) Write(p []byte) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.writeErr != nil {
		return 0, f.writeErr
	}
	return f.out.Write(p)
}

func (f *fakePlatform) BufferSize() (int, int) { return f.width, f.height }

func (f *fakePlatform) SetBufferSize(w, h int) error {
	if f.resizeErr != nil {
		return f.resizeErr
	}
	f.resizes = append(f.resizes, [2]int{w, h})
	f.width, f.height = w, h
	return nil
}

func (f *fakePlatform) CursorPosition() (int, int, error) {
	if f.cursorErr != nil {
		return 0, 0, f.cursorErr
	}
	return f.cursorLeft, f.cursorTop, nil
}

func (f *fakePlatform) ConsoleColors() (Color, Color, bool) {
	if !f.colorsOK {
		return ColorIgnored, ColorIgnored, false
	}
	return f.fg, f.bg, true
}

// testOptions disables everything that touches process state
func testOptions(p Platform) Options {
	opts := DefaultOptions()
	opts.Platform = p
	opts.BackspaceMode = false
	opts.RestoreOnSignal = false
	return opts
}

// newTestTerminal creates a terminal over a fresh fake platform
func newTestTerminal(t testing.TB, configure ...func(*fakePlatform)) (*Terminal, *fakePlatform) {
	t.Helper()
	fp := newFakePlatform()
	for _, fn := range configure {
		fn(fp)
	}
	term, err := New(testOptions(fp))
	require.NoError(t, err)
	return term, fp
}
