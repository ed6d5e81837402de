package terminal

import (
	"strings"
)

// keyToName maps Key constants to canonical config string names
var keyToName = map[Key]string{
	KeyNoName:    "noname",
	KeyCharacter: "character",
	KeyEnter:     "enter",
	KeyEscape:    "escape",
	KeyBackspace: "backspace",
	KeyDelete:    "delete",
	KeyInsert:    "insert",

	KeyUp:       "up",
	KeyDown:     "down",
	KeyLeft:     "left",
	KeyRight:    "right",
	KeyHome:     "home",
	KeyEnd:      "end",
	KeyPageUp:   "page_up",
	KeyPageDown: "page_down",

	KeyF1: "f1",
	KeyF2: "f2",
	KeyF3: "f3",
	KeyF4: "f4",
}

// nameToKey is the reverse lookup, built from keyToName
var nameToKey map[string]Key

func init() {
	nameToKey = make(map[string]Key, len(keyToName))
	for k, v := range keyToName {
		nameToKey[v] = k
	}
	// Aliases
	nameToKey["esc"] = KeyEscape
	nameToKey["return"] = KeyEnter
	nameToKey["pgup"] = KeyPageUp
	nameToKey["pgdn"] = KeyPageDown
}

// KeyName returns the canonical string name for a Key constant
func KeyName(k Key) string {
	return keyToName[k]
}

// KeyByName resolves a canonical name or alias to a Key constant
// Returns KeyNoName and false if name is unknown
func KeyByName(name string) (Key, bool) {
	k, ok := nameToKey[strings.ToLower(name)]
	return k, ok
}

// String implements fmt.Stringer
func (k Key) String() string {
	if s, ok := keyToName[k]; ok {
		return s
	}
	return "unknown"
}

// String renders the event as "ctrl+alt+shift+name", with printable
// characters quoted
func (e KeyEvent) String() string {
	var sb strings.Builder
	if e.Control {
		sb.WriteString("ctrl+")
	}
	if e.Alt {
		sb.WriteString("alt+")
	}
	if e.Shift {
		sb.WriteString("shift+")
	}
	if e.Key == KeyCharacter {
		sb.WriteByte('\'')
		if e.Rune < 0x20 || e.Rune == 0x7f {
			sb.WriteString(caretNotation(e.Rune))
		} else {
			sb.WriteRune(e.Rune)
		}
		sb.WriteByte('\'')
		return sb.String()
	}
	sb.WriteString(e.Key.String())
	return sb.String()
}

// caretNotation renders a C0 control or DEL as ^X
func caretNotation(r rune) string {
	if r == 0x7f {
		return "^?"
	}
	return string([]byte{'^', byte(r) + '@'})
}
