// @focus: #sys { term }
// Package terminal is a byte-exact ANSI/VT console engine.
//
// Features:
//   - Raw input mode over termios (POSIX) or console modes (Windows)
//   - Streaming UTF-8 codec with '?' substitution
//   - Escape-sequence decoder producing KeyEvents (CSI, SS3, xterm modifiers)
//   - Truecolor writer emitting SGR only when a channel changes
//   - Cursor positioning, visibility and DSR position queries
//   - Cooked line editor with word and line erase
//   - Nested sessions restoring colors, cursor position and visibility
//
// All state belongs to a Terminal instance over a Platform. Backspace
// decoding assumes DECBKM (ESC [ ? 67 h), written by Init when
// Options.BackspaceMode is set: Backspace then sends BS and Ctrl+Backspace
// sends DEL.
//
// This package bypasses terminfo/termcap entirely, emitting direct ANSI sequences.
package terminal
