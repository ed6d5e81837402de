//go:build windows

package terminal

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"
	"unsafe"

	"github.com/mattn/go-colorable"
	"github.com/mattn/go-tty"
	"golang.org/x/sys/windows"
)

var kernel32 = windows.NewLazySystemDLL("kernel32.dll")

var (
	procGetNumberOfConsoleInputEvents = kernel32.NewProc("GetNumberOfConsoleInputEvents")
	procSetConsoleScreenBufferSize    = kernel32.NewProc("SetConsoleScreenBufferSize")
	procGetConsoleCP                  = kernel32.NewProc("GetConsoleCP")
	procSetConsoleCP                  = kernel32.NewProc("SetConsoleCP")
	procGetConsoleOutputCP            = kernel32.NewProc("GetConsoleOutputCP")
	procSetConsoleOutputCP            = kernel32.NewProc("SetConsoleOutputCP")
)

const codePageUTF8 = 65001

type windowsPlatform struct {
	tty *tty.TTY
	in  windows.Handle
	out windows.Handle
	w   io.Writer

	mu            sync.Mutex
	raw           bool
	savedInMode   uint32
	savedOutMode  uint32
	savedInCP     uintptr
	savedOutCP    uintptr
	consoleColors bool
}

// NewPlatform opens the console input and output handles
// Falls back to a stream platform when no console is attached
func NewPlatform() (Platform, error) {
	t, err := tty.Open()
	if err != nil {
		return NewStreamPlatform(os.Stdin, colorable.NewColorableStdout()), nil
	}
	p := &windowsPlatform{
		tty: t,
		in:  windows.Handle(t.Input().Fd()),
		out: windows.Handle(t.Output().Fd()),
		w:   colorable.NewColorable(t.Output()),
	}
	var info windows.ConsoleScreenBufferInfo
	p.consoleColors = windows.GetConsoleScreenBufferInfo(p.out, &info) == nil
	return p, nil
}

func (p *windowsPlatform) EnableRaw() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.raw {
		return nil
	}

	var inMode, outMode uint32
	if err := windows.GetConsoleMode(p.in, &inMode); err != nil {
		return fmt.Errorf("get input console mode: %w", err)
	}
	if err := windows.GetConsoleMode(p.out, &outMode); err != nil {
		return fmt.Errorf("get output console mode: %w", err)
	}

	if err := windows.SetConsoleMode(p.out, outMode|windows.ENABLE_VIRTUAL_TERMINAL_PROCESSING); err != nil {
		return fmt.Errorf("enable virtual terminal processing: %w", err)
	}

	raw := inMode
	raw |= windows.ENABLE_EXTENDED_FLAGS
	raw &^= windows.ENABLE_LINE_INPUT | windows.ENABLE_ECHO_INPUT | windows.ENABLE_QUICK_EDIT_MODE
	raw |= windows.ENABLE_PROCESSED_INPUT | windows.ENABLE_VIRTUAL_TERMINAL_INPUT
	if err := windows.SetConsoleMode(p.in, raw); err != nil {
		windows.SetConsoleMode(p.out, outMode)
		return fmt.Errorf("set input console mode: %w", err)
	}

	// VT input arrives in the input code page; pin both to UTF-8
	p.savedInCP, _, _ = procGetConsoleCP.Call()
	p.savedOutCP, _, _ = procGetConsoleOutputCP.Call()
	procSetConsoleCP.Call(codePageUTF8)
	procSetConsoleOutputCP.Call(codePageUTF8)

	p.savedInMode = inMode
	p.savedOutMode = outMode
	p.raw = true
	return nil
}

func (p *windowsPlatform) DisableRaw() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.raw {
		return nil
	}
	p.raw = false

	if p.savedInCP != 0 {
		procSetConsoleCP.Call(p.savedInCP)
	}
	if p.savedOutCP != 0 {
		procSetConsoleOutputCP.Call(p.savedOutCP)
	}
	errIn := windows.SetConsoleMode(p.in, p.savedInMode)
	errOut := windows.SetConsoleMode(p.out, p.savedOutMode)
	if errIn != nil {
		return fmt.Errorf("restore input console mode: %w", errIn)
	}
	if errOut != nil {
		return fmt.Errorf("restore output console mode: %w", errOut)
	}
	return nil
}

// Close restores raw mode, then lets go-tty restore the mode it found at open
func (p *windowsPlatform) Close() error {
	err := p.DisableRaw()
	if cerr := p.tty.Close(); err == nil {
		err = cerr
	}
	return err
}

func (p *windowsPlatform) Capabilities() Capabilities {
	return Capabilities{
		RawMode:          true,
		CursorVisibility: true,
		CursorQuery:      true,
		BufferResize:     true,
		ConsoleColors:    p.consoleColors,
	}
}

func (p *windowsPlatform) Read(buf []byte) (int, error) {
	n, err := p.tty.Input().Read(buf)
	if n == 0 && err == nil {
		return 0, io.EOF
	}
	return n, err
}

// Poll waits on the console input handle
// The handle also signals for focus and mouse records, so a positive poll
// may still be followed by a blocking Read
func (p *windowsPlatform) Poll(timeout time.Duration) (bool, error) {
	ms := uint32(0)
	if timeout > 0 {
		ms = uint32((timeout + time.Millisecond - 1) / time.Millisecond)
	}
	ev, err := windows.WaitForSingleObject(p.in, ms)
	if err != nil {
		return false, err
	}
	if ev != windows.WAIT_OBJECT_0 {
		return false, nil
	}
	var count uint32
	r0, _, callErr := procGetNumberOfConsoleInputEvents.Call(uintptr(p.in), uintptr(unsafe.Pointer(&count)))
	if r0 == 0 {
		return false, callErr
	}
	return count > 0, nil
}

func (p *windowsPlatform) Write(b []byte) (int, error) {
	return p.w.Write(b)
}

func (p *windowsPlatform) BufferSize() (int, int) {
	var info windows.ConsoleScreenBufferInfo
	if err := windows.GetConsoleScreenBufferInfo(p.out, &info); err != nil {
		return defaultWidth, defaultHeight
	}
	return int(info.Size.X), int(info.Size.Y)
}

func (p *windowsPlatform) SetBufferSize(width, height int) error {
	if width <= 0 || height <= 0 || width > 0x7fff || height > 0x7fff {
		return fmt.Errorf("buffer size %dx%d out of range", width, height)
	}
	coord := uintptr(uint32(uint16(width)) | uint32(uint16(height))<<16)
	r0, _, err := procSetConsoleScreenBufferSize.Call(uintptr(p.out), coord)
	if r0 == 0 {
		return fmt.Errorf("set console screen buffer size: %w", err)
	}
	return nil
}

func (p *windowsPlatform) CursorPosition() (int, int, error) {
	var info windows.ConsoleScreenBufferInfo
	if err := windows.GetConsoleScreenBufferInfo(p.out, &info); err != nil {
		return 0, 0, err
	}
	return int(info.CursorPosition.X), int(info.CursorPosition.Y), nil
}

// SetCursor positions the cursor in buffer coordinates
// VT cursor movement is relative to the visible window instead
func (p *windowsPlatform) SetCursor(left, top int) error {
	return windows.SetConsoleCursorPosition(p.out, windows.Coord{X: int16(left), Y: int16(top)})
}

func (p *windowsPlatform) ConsoleColors() (Color, Color, bool) {
	var info windows.ConsoleScreenBufferInfo
	if err := windows.GetConsoleScreenBufferInfo(p.out, &info); err != nil {
		return ColorIgnored, ColorIgnored, false
	}
	return paletteColor(info.Attributes), paletteColor(info.Attributes >> 4), true
}

// resetTerminalMode is a no-op on Windows: console modes are per-process
// and revert when the process exits
func resetTerminalMode() {}
