//go:build unix

package terminal

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"
	"github.com/pkg/term/termios"
	"golang.org/x/sys/unix"
	"golang.org/x/term"
)

type posixPlatform struct {
	in     *os.File
	out    io.Writer
	inFd   int
	outFd  int
	ownsIn bool

	mu    sync.Mutex
	saved *unix.Termios

	// Injectable for tests
	getattr func(fd uintptr) (*unix.Termios, error)
	setattr func(fd uintptr, t *unix.Termios) error
	poll    func(fds []unix.PollFd, timeout int) (int, error)
	read    func(fd int, p []byte) (int, error)
	getSize func(fd int) (int, int, error)
}

// NewPlatform opens the controlling terminal
// Input comes from /dev/tty (stdin when unavailable); when neither is a
// terminal a stream platform over stdin/stdout is returned instead
func NewPlatform() (Platform, error) {
	in, err := os.OpenFile("/dev/tty", os.O_RDONLY, 0)
	owns := true
	if err != nil {
		in = os.Stdin
		owns = false
	}
	if !isatty.IsTerminal(in.Fd()) && !isatty.IsCygwinTerminal(in.Fd()) {
		if owns {
			in.Close()
		}
		return NewStreamPlatform(os.Stdin, colorable.NewColorableStdout()), nil
	}
	return newPosixPlatform(in, os.Stdout, owns), nil
}

// newPosixPlatform wraps an input terminal and an output file
func newPosixPlatform(in, out *os.File, ownsIn bool) *posixPlatform {
	return &posixPlatform{
		in:      in,
		out:     colorable.NewColorable(out),
		inFd:    int(in.Fd()),
		outFd:   int(out.Fd()),
		ownsIn:  ownsIn,
		getattr: termios.Tcgetattr,
		setattr: func(fd uintptr, t *unix.Termios) error {
			return termios.Tcsetattr(fd, termios.TCSANOW, t)
		},
		poll:    unix.Poll,
		read:    unix.Read,
		getSize: term.GetSize,
	}
}

// makeRaw derives the raw-input attributes from a saved snapshot
// ISIG and OPOST stay set: Ctrl+C still signals and "\n" still maps to CRLF
func makeRaw(t unix.Termios) unix.Termios {
	t.Lflag &^= unix.ICANON | unix.ECHO
	t.Iflag &^= unix.ICRNL | unix.IXON
	t.Cc[unix.VMIN] = 1
	t.Cc[unix.VTIME] = 0
	return t
}

func (p *posixPlatform) EnableRaw() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.saved != nil {
		return nil
	}

	cur, err := p.getattr(uintptr(p.inFd))
	if err != nil {
		return fmt.Errorf("tcgetattr: %w", err)
	}
	saved := *cur
	raw := makeRaw(saved)
	if err := p.setattr(uintptr(p.inFd), &raw); err != nil {
		return fmt.Errorf("tcsetattr: %w", err)
	}
	p.saved = &saved
	return nil
}

func (p *posixPlatform) DisableRaw() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.saved == nil {
		return nil
	}
	saved := p.saved
	p.saved = nil
	if err := p.setattr(uintptr(p.inFd), saved); err != nil {
		return fmt.Errorf("tcsetattr restore: %w", err)
	}
	return nil
}

func (p *posixPlatform) Close() error {
	err := p.DisableRaw()
	if p.ownsIn {
		if cerr := p.in.Close(); err == nil {
			err = cerr
		}
	}
	return err
}

func (p *posixPlatform) Capabilities() Capabilities {
	return Capabilities{
		RawMode:          true,
		CursorVisibility: true,
	}
}

func (p *posixPlatform) Read(buf []byte) (int, error) {
	for {
		n, err := p.read(p.inFd, buf)
		if err != nil {
			if err == unix.EINTR {
				continue
			}
			if err == unix.EAGAIN {
				// Non-blocking fd: wait for readiness instead of spinning
				fds := []unix.PollFd{{Fd: int32(p.inFd), Events: unix.POLLIN}}
				if _, perr := p.poll(fds, -1); perr != nil && perr != unix.EINTR {
					return 0, perr
				}
				continue
			}
			return 0, err
		}
		if n == 0 {
			return 0, io.EOF
		}
		return n, nil
	}
}

func (p *posixPlatform) Poll(timeout time.Duration) (bool, error) {
	ms := 0
	if timeout > 0 {
		// Round sub-millisecond waits up so they still wait
		ms = int((timeout + time.Millisecond - 1) / time.Millisecond)
	}
	fds := []unix.PollFd{
		{Fd: int32(p.inFd), Events: unix.POLLIN},
	}
	n, err := p.poll(fds, ms)
	if err != nil {
		if err == unix.EINTR {
			return false, nil
		}
		return false, err
	}
	// POLLHUP/POLLERR also count: the following Read reports the condition
	return n > 0 && fds[0].Revents != 0, nil
}

func (p *posixPlatform) Write(b []byte) (int, error) {
	return p.out.Write(b)
}

func (p *posixPlatform) BufferSize() (int, int) {
	if w, h, err := p.getSize(p.outFd); err == nil && w > 0 && h > 0 {
		return w, h
	}
	if w, h, err := p.getSize(p.inFd); err == nil && w > 0 && h > 0 {
		return w, h
	}
	return defaultWidth, defaultHeight
}

// SetBufferSize is unsupported: the scrollback belongs to the emulator
func (p *posixPlatform) SetBufferSize(int, int) error {
	return ErrUnsupported
}

// CursorPosition is unsupported natively; Terminal falls back to DSR
func (p *posixPlatform) CursorPosition() (int, int, error) {
	return 0, 0, ErrUnsupported
}

func (p *posixPlatform) ConsoleColors() (Color, Color, bool) {
	return ColorIgnored, ColorIgnored, false
}

// resetTerminalMode attempts to restore terminal to cooked mode
// Best-effort for crash recovery; errors ignored
func resetTerminalMode() {
	// Try to restore via /dev/tty (works even if stdin redirected)
	if tty, err := os.OpenFile("/dev/tty", os.O_RDWR, 0); err == nil {
		defer tty.Close()
		fd := tty.Fd()
		if t, err := termios.Tcgetattr(fd); err == nil {
			t.Lflag |= unix.ECHO | unix.ICANON | unix.ISIG | unix.IEXTEN
			t.Iflag |= unix.ICRNL | unix.IXON
			termios.Tcsetattr(fd, termios.TCSANOW, t)
		}
	}
}
