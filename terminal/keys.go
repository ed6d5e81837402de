// @focus: #sys { io } #input { keys }
package terminal

// Key represents a resolved input key
type Key uint8

// Key constants form a closed set; anything unrecognized resolves to KeyNoName
const (
	KeyNoName    Key = iota // Consumed sequence with no mapping
	KeyCharacter            // Printable or control character (check KeyEvent.Rune)

	// Editing
	KeyEnter
	KeyEscape
	KeyBackspace // Control set when the terminal sent DEL (Ctrl+Backspace under DECBKM)
	KeyDelete
	KeyInsert

	// Navigation
	KeyUp
	KeyDown
	KeyLeft
	KeyRight
	KeyHome
	KeyEnd
	KeyPageUp
	KeyPageDown

	// Function keys
	KeyF1
	KeyF2
	KeyF3
	KeyF4
)

// KeyEvent is one decoded keypress
type KeyEvent struct {
	Rune    rune // 0 when the key carries no character
	Key     Key
	Control bool
	Alt     bool
	Shift   bool
}

// xterm modifier parameter bits (parameter value is bits+1)
const (
	modParamShift = 1 << 0
	modParamAlt   = 1 << 1
	modParamCtrl  = 1 << 2
)

// CSI final byte → key (ESC [ ... final)
var csiFinalKeys = map[byte]Key{
	'A': KeyUp,
	'B': KeyDown,
	'C': KeyRight,
	'D': KeyLeft,
	'H': KeyHome,
	'F': KeyEnd,
}

// CSI '~' leading parameter → key (ESC [ n ~)
var csiTildeKeys = map[int]Key{
	1:  KeyHome,
	2:  KeyInsert,
	3:  KeyDelete,
	4:  KeyEnd,
	5:  KeyPageUp,
	6:  KeyPageDown,
	11: KeyF1,
	12: KeyF2,
	13: KeyF3,
	14: KeyF4,
}

// SS3 final byte → key (ESC O final)
var ss3Keys = map[byte]Key{
	'A': KeyUp,
	'B': KeyDown,
	'C': KeyRight,
	'D': KeyLeft,
	'H': KeyHome,
	'F': KeyEnd,
	'P': KeyF1,
	'Q': KeyF2,
	'R': KeyF3,
	'S': KeyF4,
}

// lookupCSI resolves a CSI final byte and its first parameter
func lookupCSI(final byte, param int) Key {
	if final == '~' {
		return csiTildeKeys[param] // zero value is KeyNoName
	}
	return csiFinalKeys[final]
}

// lookupSS3 resolves an SS3 final byte
func lookupSS3(final byte) Key {
	return ss3Keys[final]
}

// applyModParam sets modifier flags from an xterm modifier parameter
func (e *KeyEvent) applyModParam(param int) {
	if param < 2 {
		return
	}
	bits := param - 1
	e.Shift = bits&modParamShift != 0
	e.Alt = bits&modParamAlt != 0
	e.Control = bits&modParamCtrl != 0
}
