package terminal

import (
	"bytes"
	"io"
	"strconv"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeScalar(t *testing.T) {
	tests := []struct {
		name string
		r    rune
		want []byte
	}{
		{"ascii", 'A', []byte("A")},
		{"two byte", 'é', []byte("é")},
		{"three byte", '世', []byte("世")},
		{"four byte", '😀', []byte("😀")},
		{"surrogate half", 0xD800, []byte("?")},
		{"out of range", 0x110000, []byte("?")},
		{"negative", -1, []byte("?")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf [utf8.UTFMax]byte
			n := EncodeScalar(buf[:], tt.r)
			assert.Equal(t, tt.want, buf[:n])
		})
	}
}

func TestDecodeNext(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []rune
	}{
		{"ascii", "ab", []rune{'a', 'b'}},
		{"mixed widths", "aé世😀", []rune{'a', 'é', '世', '😀'}},
		{"lone continuation", "\x80a", []rune{'?', 'a'}},
		{"bad lead", "\xffz", []rune{'?', 'z'}},
		{"truncated at end", "\xe4\xb8", []rune{'?'}},
		{"interrupted sequence", "\xe4A", []rune{'?', 'A'}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := strings.NewReader(tt.in)
			var got []rune
			for {
				c, err := DecodeNext(r)
				if err == io.EOF {
					break
				}
				require.NoError(t, err)
				got = append(got, c)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDecodeNext_EmptyReturnsEOF(t *testing.T) {
	_, err := DecodeNext(strings.NewReader(""))
	assert.ErrorIs(t, err, io.EOF)
}

// countingWriter records the size of each Write call
type countingWriter struct {
	bytes.Buffer
	calls []int
}

func (w *countingWriter) Write(p []byte) (int, error) {
	w.calls = append(w.calls, len(p))
	return w.Buffer.Write(p)
}

func TestEncodeString(t *testing.T) {
	var w countingWriter
	n, err := EncodeString(&w, "ok\xffé")
	require.NoError(t, err)
	assert.Equal(t, "ok?é", w.String())
	assert.Equal(t, len("ok?é"), n)
}

func TestEncodeString_Chunks(t *testing.T) {
	var w countingWriter
	s := strings.Repeat("世", encodeChunkRunes*2+3)
	n, err := EncodeString(&w, s)
	require.NoError(t, err)
	assert.Equal(t, len(s), n)
	assert.Equal(t, s, w.String())
	assert.Equal(t, []int{encodeChunkRunes * 3, encodeChunkRunes * 3, 9}, w.calls)
}

func TestAppendByteDecimal_RoundTrip(t *testing.T) {
	for v := 0; v <= 255; v++ {
		got := AppendByteDecimal(nil, uint8(v))
		parsed, err := strconv.Atoi(string(got))
		require.NoError(t, err)
		assert.Equal(t, v, parsed)
		assert.Equal(t, strconv.Itoa(v), string(got))
	}
}
