package terminal

import (
	"errors"
	"io"
	"unicode"
	"unicode/utf16"

	"github.com/mattn/go-runewidth"
	"github.com/rivo/uniseg"
)

// widthCondition measures cells independently of the locale environment
var widthCondition = func() *runewidth.Condition {
	c := runewidth.NewCondition()
	c.EastAsianWidth = false
	return c
}()

// lineBuffer holds the text of one ReadLine call
// The cursor always sits at the end; editing is append and delete-backward
type lineBuffer struct {
	text []rune
}

// Value returns current text as string
func (b *lineBuffer) Value() string {
	return string(b.text)
}

// Insert appends r
func (b *lineBuffer) Insert(r rune) {
	b.text = append(b.text, r)
}

// DeleteBackward removes the last rune and returns how many UTF-16 code
// units it occupied, so a surrogate pair counts two
func (b *lineBuffer) DeleteBackward() (units int, ok bool) {
	if len(b.text) == 0 {
		return 0, false
	}
	r := b.text[len(b.text)-1]
	b.text = b.text[:len(b.text)-1]
	return max(utf16.RuneLen(r), 1), true
}

// DeleteWordBackward removes trailing whitespace and the word before it
// Returns the number of characters removed
func (b *lineBuffer) DeleteWordBackward() int {
	end := len(b.text)
	start := end
	// Skip trailing whitespace
	for start > 0 && unicode.IsSpace(b.text[start-1]) {
		start--
	}
	// Skip the non-whitespace run
	for start > 0 && !unicode.IsSpace(b.text[start-1]) {
		start--
	}
	b.text = b.text[:start]
	return end - start
}

// Clear empties the buffer and returns its display width
func (b *lineBuffer) Clear() int {
	cells := widthCondition.StringWidth(string(b.text))
	b.text = b.text[:0]
	return cells
}

// Width returns the display width of the buffer in cells
func (b *lineBuffer) Width() int {
	return uniseg.StringWidth(string(b.text))
}

// ReadLine reads one line of input with cooked-mode editing
//
// Backspace removes one character; Ctrl+Backspace and Ctrl+W remove the
// previous word; Ctrl+U clears the line; Ctrl+D on an empty line returns
// io.EOF. Enter ends the line: with restoreOnExit the echoed text is erased
// so the cursor returns to where it started, otherwise CRLF is written.
func (t *Terminal) ReadLine(restoreOnExit bool) (string, error) {
	var line lineBuffer

	for {
		ev, err := t.decoder.ReadKey(true)
		if err != nil {
			if errors.Is(err, io.EOF) && len(line.text) > 0 {
				return line.Value(), nil
			}
			return line.Value(), err
		}

		switch ev.Key {
		case KeyEnter:
			if restoreOnExit {
				err = t.eraseCells(line.Width())
			} else {
				err = t.WriteRaw(crlf)
			}
			return line.Value(), err

		case KeyBackspace:
			if ev.Control {
				err = t.eraseCells(line.DeleteWordBackward())
			} else if units, ok := line.DeleteBackward(); ok {
				err = t.eraseCells(units)
			}

		case KeyCharacter:
			switch {
			case ev.Control && ev.Rune == 'w':
				err = t.eraseCells(line.DeleteWordBackward())
			case ev.Control && ev.Rune == 'u':
				err = t.eraseCells(line.Clear())
			case ev.Control && ev.Rune == 'd':
				if len(line.text) == 0 {
					return "", io.EOF
				}
			case ev.Control || unicode.IsControl(ev.Rune):
				// Ignored
			default:
				line.Insert(ev.Rune)
				err = t.writer.WriteChar(ev.Rune, t.opts.EchoForeground, t.opts.EchoBackground)
			}
		}

		if err != nil {
			return line.Value(), err
		}
	}
}

// eraseCells writes n back-blank-back triples
func (t *Terminal) eraseCells(n int) error {
	if n <= 0 {
		return nil
	}
	t.mu.Lock()
	defer t.mu.Unlock()

	t.writer.eraseLocked(n)
	return t.writer.flush()
}
