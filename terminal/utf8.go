package terminal

import (
	"bufio"
	"io"
	"unicode/utf8"
)

// encodeChunkRunes bounds the working buffer of EncodeString
const encodeChunkRunes = 256

// replacementByte stands in for anything that cannot be encoded or decoded
const replacementByte = '?'

// EncodeScalar writes the UTF-8 form of r into dst and returns the byte count
// Surrogate halves and out-of-range values encode as '?'
// dst must hold at least utf8.UTFMax bytes
func EncodeScalar(dst []byte, r rune) int {
	// Fast path: ASCII
	if r >= 0 && r < utf8.RuneSelf {
		dst[0] = byte(r)
		return 1
	}
	if !utf8.ValidRune(r) {
		dst[0] = replacementByte
		return 1
	}
	return utf8.EncodeRune(dst, r)
}

// DecodeNext reads one scalar from src
//
// Bytes are accumulated (at most utf8.UTFMax) and a decode is attempted after
// each one, returning as soon as a scalar completes. A malformed or truncated
// sequence yields '?' so a bad lead byte can never block the caller waiting
// for continuation bytes that will not come. When src is an io.ByteScanner
// the byte that broke the sequence is pushed back. io.EOF (or the source error) is
// returned only when no byte was read.
func DecodeNext(src io.ByteReader) (rune, error) {
	var buf [utf8.UTFMax]byte
	n := 0
	for n < len(buf) {
		b, err := src.ReadByte()
		if err != nil {
			if n == 0 {
				return 0, err
			}
			return replacementByte, nil
		}
		buf[n] = b
		n++

		if n == 1 && b < utf8.RuneSelf {
			return rune(b), nil
		}
		if !utf8.FullRune(buf[:n]) {
			continue
		}
		r, size := utf8.DecodeRune(buf[:n])
		if r == utf8.RuneError && size <= 1 {
			// A byte that cannot continue the sequence may start the next one
			if n > 1 && !isContinuation(b) {
				if s, ok := src.(io.ByteScanner); ok {
					s.UnreadByte()
				}
			}
			return replacementByte, nil
		}
		return r, nil
	}
	return replacementByte, nil
}

// isContinuation reports whether b is a UTF-8 continuation byte
func isContinuation(b byte) bool {
	return b&0xc0 == 0x80
}

// EncodeString writes s to w applying the EncodeScalar rules per character
// Invalid bytes in s become '?'. Output is produced in chunks of at most
// encodeChunkRunes characters through a fixed buffer.
func EncodeString(w io.Writer, s string) (int, error) {
	var buf [encodeChunkRunes * utf8.UTFMax]byte
	total, n, count := 0, 0, 0

	flush := func() error {
		wn, err := w.Write(buf[:n])
		total += wn
		n, count = 0, 0
		return err
	}

	for i := 0; i < len(s); {
		r, size := utf8.DecodeRuneInString(s[i:])
		if r == utf8.RuneError && size == 1 {
			buf[n] = replacementByte
			n++
		} else {
			n += EncodeScalar(buf[n:], r)
		}
		i += size
		count++
		if count == encodeChunkRunes {
			if err := flush(); err != nil {
				return total, err
			}
		}
	}
	if n > 0 {
		if err := flush(); err != nil {
			return total, err
		}
	}
	return total, nil
}

// writeRune encodes r into w without allocation
func writeRune(w *bufio.Writer, r rune) {
	if r >= 0 && r < utf8.RuneSelf {
		w.WriteByte(byte(r))
		return
	}
	var buf [utf8.UTFMax]byte
	n := EncodeScalar(buf[:], r)
	w.Write(buf[:n])
}

// writeText writes s into w, replacing invalid bytes with '?'
func writeText(w *bufio.Writer, s string) {
	// Fast path: well-formed input is already its own encoding
	if utf8.ValidString(s) {
		w.WriteString(s)
		return
	}
	for i := 0; i < len(s); {
		r, size := utf8.DecodeRuneInString(s[i:])
		if r == utf8.RuneError && size == 1 {
			w.WriteByte(replacementByte)
		} else {
			w.WriteString(s[i : i+size])
		}
		i += size
	}
}
