package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/lixenwraith/vtio/terminal"
)

var cursorCmd = &cobra.Command{
	Use:   "cursor",
	Short: "Move a marker with the arrow keys until q or Escape",
	RunE: func(cmd *cobra.Command, args []string) error {
		term, err := openTerminal()
		if err != nil {
			return err
		}
		defer term.Close()

		return term.WithSession(func() error {
			return runCursor(term, term)
		})
	},
}

// sizer reports the console buffer size
type sizer interface {
	Size() (width, height int)
}

// runCursor moves a marker around, leaving a trail
func runCursor(term terminal.Console, sz sizer) error {
	marker := terminal.RGB(255, 220, 0)
	trail := terminal.RGB(60, 60, 90)
	status := terminal.RGB(140, 140, 160)

	term.SetCursorVisible(false)
	left, top := term.CursorPosition()
	term.WriteChar('@', marker, terminal.ColorIgnored)

	for {
		ev, err := term.ReadKey(true)
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}

		nl, nt := left, top
		switch ev.Key {
		case terminal.KeyUp:
			nt--
		case terminal.KeyDown:
			nt++
		case terminal.KeyLeft:
			nl--
		case terminal.KeyRight:
			nl++
		case terminal.KeyHome:
			nl = 0
		case terminal.KeyEscape:
			return nil
		case terminal.KeyCharacter:
			if ev.Rune == 'q' {
				return nil
			}
			continue
		default:
			continue
		}

		term.SetCursorPosition(left, top)
		term.WriteChar('.', trail, terminal.ColorIgnored)
		term.SetCursorPosition(nl, nt)
		left, top = term.CursorPosition()
		if err := term.WriteChar('@', marker, terminal.ColorIgnored); err != nil {
			return err
		}

		w, h := sz.Size()
		term.SetCursorPosition(0, h-1)
		term.WriteString(fmt.Sprintf("(%d,%d) of %dx%d ", left, top, w, h), status, terminal.ColorIgnored)
	}
}
