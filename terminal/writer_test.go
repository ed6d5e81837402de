package terminal

import (
	"errors"
	"strings"
	"testing"

	"github.com/charmbracelet/x/ansi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	testRed   = RGB(255, 0, 0)
	testBlack = RGB(0, 0, 0)
	testBlue  = RGB(0, 0, 255)
)

func TestWriteChar_FirstWriteEmitsBothChannels(t *testing.T) {
	term, fp := newTestTerminal(t)

	require.NoError(t, term.WriteChar('A', testRed, testBlack))
	assert.Equal(t, "\x1b[38;2;255;0;0m\x1b[48;2;0;0;0mA", fp.output())
	assert.Equal(t, testRed, term.ForegroundColor())
	assert.Equal(t, testBlack, term.BackgroundColor())
}

func TestWriteChar_UnchangedColorsEmitOnlyText(t *testing.T) {
	term, fp := newTestTerminal(t)
	require.NoError(t, term.WriteChar('A', testRed, testBlack))
	fp.output()

	require.NoError(t, term.WriteChar('B', testRed, testBlack))
	assert.Equal(t, "B", fp.output())
}

func TestWriteChar_SingleChannelChange(t *testing.T) {
	term, fp := newTestTerminal(t)
	require.NoError(t, term.WriteChar('A', testRed, testBlack))
	fp.output()

	require.NoError(t, term.WriteChar('B', testBlue, testBlack))
	assert.Equal(t, "\x1b[38;2;0;0;255mB", fp.output())

	require.NoError(t, term.WriteChar('C', testBlue, testRed))
	assert.Equal(t, "\x1b[48;2;255;0;0mC", fp.output())
}

func TestWriteChar_IgnoredLeavesChannelAlone(t *testing.T) {
	term, fp := newTestTerminal(t)

	require.NoError(t, term.WriteChar('x', ColorIgnored, ColorIgnored))
	assert.Equal(t, "x", fp.output())
	assert.True(t, term.ForegroundColor().Ignored())

	require.NoError(t, term.WriteChar('y', testRed, ColorIgnored))
	assert.Equal(t, "\x1b[38;2;255;0;0my", fp.output())
	assert.True(t, term.BackgroundColor().Ignored())
}

func TestWriteString_DiffsOncePerCall(t *testing.T) {
	term, fp := newTestTerminal(t)

	require.NoError(t, term.WriteString("héllo", testRed, ColorIgnored))
	require.NoError(t, term.WriteString(" world", testRed, ColorIgnored))
	out := fp.output()

	assert.Equal(t, 1, strings.Count(out, "\x1b[38;2;"))
	assert.Equal(t, "héllo world", ansi.Strip(out))
}

func TestWriteString_InvalidBytesBecomeQuestionMarks(t *testing.T) {
	term, fp := newTestTerminal(t)

	require.NoError(t, term.WriteString("a\xffb", ColorIgnored, ColorIgnored))
	assert.Equal(t, "a?b", fp.output())
}

func TestWriteRaw_LeavesColorCache(t *testing.T) {
	term, fp := newTestTerminal(t)
	require.NoError(t, term.WriteChar('A', testRed, testBlack))
	fp.output()

	sixel := []byte("\x1bPq#0;2;0;0;0~-\x1b\\")
	require.NoError(t, term.WriteRaw(sixel))
	assert.Equal(t, string(sixel), fp.output())

	require.NoError(t, term.WriteChar('B', testRed, testBlack))
	assert.Equal(t, "B", fp.output())
}

func TestEraseToEndOfLine(t *testing.T) {
	term, fp := newTestTerminal(t)

	require.NoError(t, term.EraseToEndOfLine())
	assert.Equal(t, "\x1b[K", fp.output())
}

func TestSync_Idempotent(t *testing.T) {
	term, fp := newTestTerminal(t, func(fp *fakePlatform) {
		fp.colorsOK = true
		fp.fg, fp.bg = Gray, Black
	})

	term.Sync()
	fg1, bg1 := term.ForegroundColor(), term.BackgroundColor()
	term.Sync()
	assert.Equal(t, fg1, term.ForegroundColor())
	assert.Equal(t, bg1, term.BackgroundColor())
	assert.Equal(t, Gray, fg1)

	// Synced colors are known: writing them emits no SGR
	fp.output()
	require.NoError(t, term.WriteChar('z', Gray, Black))
	assert.Equal(t, "z", fp.output())
}

func TestSync_UnreportableColorsBecomeUnknown(t *testing.T) {
	term, fp := newTestTerminal(t)
	require.NoError(t, term.WriteChar('A', testRed, testBlack))

	term.Sync()
	assert.True(t, term.ForegroundColor().Ignored())
	assert.True(t, term.BackgroundColor().Ignored())

	fp.output()
	require.NoError(t, term.WriteChar('B', testRed, testBlack))
	assert.Equal(t, "\x1b[38;2;255;0;0m\x1b[48;2;0;0;0mB", fp.output())
}

func TestWrite_ErrorInvalidatesCache(t *testing.T) {
	term, fp := newTestTerminal(t)
	fp.writeErr = errors.New("broken pipe")

	err := term.WriteChar('A', testRed, testBlack)
	require.Error(t, err)
	assert.ErrorIs(t, err, fp.writeErr)
	assert.True(t, term.ForegroundColor().Ignored())

	// After recovery the colors are emitted again
	fp.writeErr = nil
	require.NoError(t, term.WriteChar('A', testRed, testBlack))
	assert.Equal(t, "\x1b[38;2;255;0;0m\x1b[48;2;0;0;0mA", fp.output())
}

func TestColor_String(t *testing.T) {
	assert.Equal(t, "#ff8000", RGB(255, 128, 0).String())
	assert.Equal(t, "ignored", ColorIgnored.String())
	assert.Equal(t, int32(0xff8000), RGB(255, 128, 0).Hex())
	assert.Equal(t, int32(-1), ColorIgnored.Hex())
}

func TestPaletteColor(t *testing.T) {
	// Light gray on blue: attribute 0x17
	assert.Equal(t, Gray, paletteColor(0x17))
	assert.Equal(t, DarkBlue, paletteColor(0x17>>4))
	assert.Equal(t, White, paletteColor(0x0f))
}
