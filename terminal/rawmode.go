package terminal

import (
	"fmt"
	"io"
	"os"
)

// EmergencyReset attempts to restore the terminal to a sane state
// Call this from panic recovery when Fini cannot run normally
func EmergencyReset(w io.Writer) {
	w.Write(csiCursorShow)
	w.Write(csiBackspaceDEL)
	w.Write(csiSGR0)
	w.Write(csiRIS)

	// Flush if it's a file
	if f, ok := w.(*os.File); ok {
		f.Sync()
	}

	// Escape sequences alone don't restore input discipline
	// Best-effort; errors ignored in crash context
	resetTerminalMode()
}

// EmergencyReset restores this terminal's modes without taking its locks
func (t *Terminal) EmergencyReset() {
	t.platform.Write(csiCursorShow)
	t.platform.Write(csiSGR0)
	if t.opts.BackspaceMode {
		t.platform.Write(csiBackspaceDEL)
	}
	t.platform.DisableRaw()
}

// Suspend leaves raw mode while the terminal stays initialized, e.g. to
// hand the console to a child process
func (t *Terminal) Suspend() error {
	t.stateMu.Lock()
	defer t.stateMu.Unlock()

	if !t.initialized {
		return ErrNotInitialized
	}
	if !t.raw {
		return nil
	}
	if err := t.platform.DisableRaw(); err != nil {
		return fmt.Errorf("suspend: %w", err)
	}
	t.raw = false
	t.suspended = true
	return nil
}

// Resume re-enters raw mode after Suspend
func (t *Terminal) Resume() error {
	t.stateMu.Lock()
	defer t.stateMu.Unlock()

	if !t.initialized {
		return ErrNotInitialized
	}
	if !t.suspended {
		return nil
	}
	if err := t.platform.EnableRaw(); err != nil {
		return fmt.Errorf("resume: %w", err)
	}
	t.raw = true
	t.suspended = false
	return nil
}
