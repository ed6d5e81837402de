package terminal

import (
	"io"
	"strings"
	"testing"
	"unicode/utf16"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// readLine runs ReadLine over input and returns the line and what was
// echoed after the typed text
func readLine(t *testing.T, input string, restore bool) (string, string, error) {
	t.Helper()
	term, fp := newTestTerminal(t)
	fp.feed(input)
	fp.output()

	line, err := term.ReadLine(restore)
	return line, fp.output(), err
}

func TestReadLine_Basic(t *testing.T) {
	line, out, err := readLine(t, "hello\r", false)
	require.NoError(t, err)
	assert.Equal(t, "hello", line)
	assert.Equal(t, "hello\r\n", out)
}

func TestReadLine_RestoreOnExitErasesEcho(t *testing.T) {
	line, out, err := readLine(t, "abc\r", true)
	require.NoError(t, err)
	assert.Equal(t, "abc", line)
	assert.Equal(t, "abc"+strings.Repeat("\b \b", 3), out)
}

func TestReadLine_RestoreOnExitCountsCells(t *testing.T) {
	line, out, err := readLine(t, "世a\r", true)
	require.NoError(t, err)
	assert.Equal(t, "世a", line)
	assert.Equal(t, 3, strings.Count(out, "\b \b"))
}

func TestReadLine_Backspace(t *testing.T) {
	line, out, err := readLine(t, "abx\b\r", false)
	require.NoError(t, err)
	assert.Equal(t, "ab", line)
	assert.Equal(t, "abx\b \b\r\n", out)
}

func TestReadLine_BackspaceOnEmptyLine(t *testing.T) {
	line, out, err := readLine(t, "\b\ba\r", false)
	require.NoError(t, err)
	assert.Equal(t, "a", line)
	assert.Equal(t, "a\r\n", out)
}

func TestReadLine_BackspaceRemovesWholeScalar(t *testing.T) {
	tests := []struct {
		name string
		r    rune
	}{
		{"emoji", '\U0001F600'},
		{"gothic", '\U00010348'},
		{"math bold", '\U0001D400'},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, 2, utf16.RuneLen(tt.r))

			line, out, err := readLine(t, "a"+string(tt.r)+"\b\r", false)
			require.NoError(t, err)
			assert.Equal(t, "a", line)
			// One triple per UTF-16 code unit of the removed scalar
			assert.Equal(t, 2, strings.Count(out, "\b \b"))
		})
	}
}

func TestReadLine_BackspaceWideBMPRune(t *testing.T) {
	line, out, err := readLine(t, "a世\b\r", false)
	require.NoError(t, err)
	assert.Equal(t, "a", line)
	assert.Equal(t, 1, strings.Count(out, "\b \b"))
}

func TestReadLine_WordEraseCountsCharacters(t *testing.T) {
	line, out, err := readLine(t, "a 世界\x17\r", false)
	require.NoError(t, err)
	assert.Equal(t, "a ", line)
	assert.Equal(t, 2, strings.Count(out, "\b \b"))
}

func TestReadLine_WordErase(t *testing.T) {
	for name, key := range map[string]string{
		"ctrl+backspace": "\x7f",
		"ctrl+w":         "\x17",
	} {
		t.Run(name, func(t *testing.T) {
			line, out, err := readLine(t, "hello world  "+key+"\r", false)
			require.NoError(t, err)
			assert.Equal(t, "hello ", line)
			assert.Equal(t, 7, strings.Count(out, "\b \b"))
		})
	}
}

func TestReadLine_WordEraseAllWhitespace(t *testing.T) {
	line, out, err := readLine(t, "   \x17\r", false)
	require.NoError(t, err)
	assert.Equal(t, "", line)
	assert.Equal(t, 3, strings.Count(out, "\b \b"))
}

func TestReadLine_ClearLine(t *testing.T) {
	line, out, err := readLine(t, "junk\x15ok\r", false)
	require.NoError(t, err)
	assert.Equal(t, "ok", line)
	assert.Equal(t, "junk"+strings.Repeat("\b \b", 4)+"ok\r\n", out)
}

func TestReadLine_CtrlDOnEmptyLine(t *testing.T) {
	line, _, err := readLine(t, "\x04", false)
	assert.ErrorIs(t, err, io.EOF)
	assert.Empty(t, line)
}

func TestReadLine_CtrlDWithTextIsIgnored(t *testing.T) {
	line, _, err := readLine(t, "ab\x04\r", false)
	require.NoError(t, err)
	assert.Equal(t, "ab", line)
}

func TestReadLine_EndOfInput(t *testing.T) {
	line, _, err := readLine(t, "partial", false)
	require.NoError(t, err)
	assert.Equal(t, "partial", line)

	line, _, err = readLine(t, "", false)
	assert.ErrorIs(t, err, io.EOF)
	assert.Empty(t, line)
}

func TestReadLine_IgnoresNavigationAndControls(t *testing.T) {
	line, out, err := readLine(t, "a\x1b[A\x01\tb\r", false)
	require.NoError(t, err)
	assert.Equal(t, "ab", line)
	assert.Equal(t, "ab\r\n", out)
}

func TestReadLine_EchoColors(t *testing.T) {
	fp := newFakePlatform()
	opts := testOptions(fp)
	opts.EchoForeground = RGB(0, 255, 0)
	term, err := New(opts)
	require.NoError(t, err)

	fp.feed("ok\r")
	line, err := term.ReadLine(false)
	require.NoError(t, err)
	assert.Equal(t, "ok", line)
	assert.Equal(t, "\x1b[38;2;0;255;0mok\r\n", fp.output())
}

func TestLineBuffer_DeleteWordBackward(t *testing.T) {
	tests := []struct {
		text      string
		wantText  string
		wantCount int
	}{
		{"hello world  ", "hello ", 7},
		{"hello", "", 5},
		{"", "", 0},
		{"a 世界", "a ", 2},
		{"x \U0001F600\U0001F600", "x ", 2},
	}
	for _, tt := range tests {
		b := lineBuffer{text: []rune(tt.text)}
		n := b.DeleteWordBackward()
		assert.Equal(t, tt.wantText, b.Value(), tt.text)
		assert.Equal(t, tt.wantCount, n, tt.text)
	}
}

func TestLineBuffer_Clear(t *testing.T) {
	b := lineBuffer{text: []rune("a世")}
	assert.Equal(t, 3, b.Clear())
	assert.Empty(t, b.Value())
}
