package terminal

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSession_RestoresState(t *testing.T) {
	term, fp := newTestTerminal(t, func(fp *fakePlatform) {
		fp.caps.CursorVisibility = true
	})
	require.NoError(t, term.WriteChar('a', testRed, testBlack))
	term.SetCursorPosition(4, 2)

	s := term.BeginSession()
	require.NoError(t, term.WriteChar('b', testBlue, testRed))
	term.SetCursorPosition(10, 10)
	term.SetCursorVisible(false)
	fp.output()

	require.NoError(t, s.Close())
	assert.Equal(t, "\x1b[38;2;255;0;0m\x1b[48;2;0;0;0m\x1b[?25h\x1b[3;5H", fp.output())
	assert.Equal(t, testRed, term.ForegroundColor())
	assert.Equal(t, testBlack, term.BackgroundColor())
	assert.True(t, term.CursorVisible())
}

func TestSession_RestoresUnknownColorsToDefault(t *testing.T) {
	term, fp := newTestTerminal(t)

	s := term.BeginSession()
	require.NoError(t, term.WriteChar('b', testBlue, testRed))
	fp.output()

	require.NoError(t, s.Close())
	assert.Equal(t, "\x1b[39m\x1b[49m\x1b[1;1H", fp.output())
	assert.True(t, term.ForegroundColor().Ignored())
}

func TestSession_CloseTwiceIsNoop(t *testing.T) {
	term, fp := newTestTerminal(t)

	s := term.BeginSession()
	require.NoError(t, s.Close())
	fp.output()

	require.NoError(t, s.Close())
	assert.Empty(t, fp.output())
}

func TestSession_OutOfOrderClose(t *testing.T) {
	term, fp := newTestTerminal(t)

	outer := term.BeginSession()
	inner := term.BeginSession()
	require.NoError(t, term.WriteChar('x', testRed, ColorIgnored))
	fp.output()

	err := outer.Close()
	assert.ErrorIs(t, err, ErrSessionOrder)
	assert.Empty(t, fp.output())
	assert.Equal(t, testRed, term.ForegroundColor())

	require.NoError(t, inner.Close())
	require.NoError(t, outer.Close())
}

func TestWithSession_RestoresOnError(t *testing.T) {
	term, _ := newTestTerminal(t)
	require.NoError(t, term.WriteChar('a', testRed, testBlack))

	failure := errors.New("failed")
	err := term.WithSession(func() error {
		term.WriteChar('b', testBlue, testBlue)
		return failure
	})
	assert.ErrorIs(t, err, failure)
	assert.Equal(t, testRed, term.ForegroundColor())
	assert.Equal(t, testBlack, term.BackgroundColor())
}

func TestWithSession_RestoresOnPanic(t *testing.T) {
	term, _ := newTestTerminal(t)
	require.NoError(t, term.WriteChar('a', testRed, testBlack))

	assert.Panics(t, func() {
		term.WithSession(func() error {
			term.WriteChar('b', testBlue, testBlue)
			panic("boom")
		})
	})
	assert.Equal(t, testRed, term.ForegroundColor())

	// The stack is balanced again
	s := term.BeginSession()
	assert.NoError(t, s.Close())
}

func TestWithSession_Nested(t *testing.T) {
	term, _ := newTestTerminal(t)

	err := term.WithSession(func() error {
		term.WriteChar('a', testRed, ColorIgnored)
		return term.WithSession(func() error {
			return term.WriteChar('b', testBlue, ColorIgnored)
		})
	})
	require.NoError(t, err)
	assert.True(t, term.ForegroundColor().Ignored())
}
