package terminal

import (
	"io"
	"sync"
	"time"
)

// streamPlatform adapts plain io streams (pipes, files, sockets) to Platform
// Input is pumped by one goroutine so Poll can honor timeouts
type streamPlatform struct {
	r io.Reader
	w io.Writer

	startOnce sync.Once
	inputCh   chan []byte
	readErr   error // set by pump before it closes inputCh
	stopCh    chan struct{}
	closeOnce sync.Once

	pending []byte
	err     error

	width, height int
}

// NewStreamPlatform wraps r and w without any terminal mode control
// Raw mode, cursor queries and buffer resizing are unavailable
func NewStreamPlatform(r io.Reader, w io.Writer) Platform {
	return &streamPlatform{
		r:       r,
		w:       w,
		inputCh: make(chan []byte, 16),
		stopCh:  make(chan struct{}),
		width:   defaultWidth,
		height:  defaultHeight,
	}
}

func (s *streamPlatform) start() {
	s.startOnce.Do(func() {
		go s.pump()
	})
}

// pump copies input chunks to inputCh until error or Close
// The read error is published by closing inputCh, so every chunk read
// before it is delivered first
func (s *streamPlatform) pump() {
	defer close(s.inputCh)
	buf := make([]byte, 256)
	for {
		n, err := s.r.Read(buf)
		if n > 0 {
			chunk := make([]byte, n)
			copy(chunk, buf[:n])
			select {
			case s.inputCh <- chunk:
			case <-s.stopCh:
				s.readErr = io.ErrClosedPipe
				return
			}
		}
		if err != nil {
			s.readErr = err
			return
		}
	}
}

func (s *streamPlatform) EnableRaw() error  { return ErrUnsupported }
func (s *streamPlatform) DisableRaw() error { return nil }

func (s *streamPlatform) Close() error {
	s.closeOnce.Do(func() {
		close(s.stopCh)
	})
	return nil
}

func (s *streamPlatform) Capabilities() Capabilities {
	return Capabilities{}
}

// receive waits for the next chunk or error; returns false on timeout
func (s *streamPlatform) receive(timer <-chan time.Time) bool {
	select {
	case chunk, ok := <-s.inputCh:
		s.accept(chunk, ok)
		return true
	case <-timer:
		return false
	}
}

// accept records one receive from inputCh
func (s *streamPlatform) accept(chunk []byte, ok bool) {
	if ok {
		s.pending = chunk
		return
	}
	s.err = s.readErr
	if s.err == nil {
		s.err = io.EOF
	}
}

func (s *streamPlatform) Read(p []byte) (int, error) {
	s.start()
	if len(s.pending) == 0 && s.err == nil {
		s.receive(nil)
	}
	if len(s.pending) > 0 {
		n := copy(p, s.pending)
		s.pending = s.pending[n:]
		return n, nil
	}
	return 0, s.err
}

func (s *streamPlatform) Poll(timeout time.Duration) (bool, error) {
	s.start()
	if len(s.pending) > 0 || s.err != nil {
		return true, nil
	}
	if timeout <= 0 {
		select {
		case chunk, ok := <-s.inputCh:
			s.accept(chunk, ok)
			return true, nil
		default:
			return false, nil
		}
	}
	timer := time.NewTimer(timeout)
	defer timer.Stop()
	return s.receive(timer.C), nil
}

func (s *streamPlatform) Write(p []byte) (int, error) {
	return s.w.Write(p)
}

func (s *streamPlatform) BufferSize() (int, int) {
	return s.width, s.height
}

func (s *streamPlatform) SetBufferSize(int, int) error {
	return ErrUnsupported
}

func (s *streamPlatform) CursorPosition() (int, int, error) {
	return 0, 0, ErrUnsupported
}

func (s *streamPlatform) ConsoleColors() (Color, Color, bool) {
	return ColorIgnored, ColorIgnored, false
}
