package serial

import (
	"bytes"
	"errors"
	"io"
)

// ErrTimeout reports a read that returned no complete line before the port
// timed out. Callers retry.
var ErrTimeout = errors.New("serial: read timeout")

const (
	readChunk   = 256
	maxLineSize = 4096
)

// LineSource splits a byte stream into '\n' terminated lines. Unlike
// bufio.Reader it treats an empty read as a timeout instead of a broken
// reader, and keeps the partial line buffered across timeouts.
type LineSource struct {
	r       io.Reader
	pending []byte
	buf     []byte
}

func NewLineSource(r io.Reader) *LineSource {
	return &LineSource{r: r, buf: make([]byte, readChunk)}
}

// ReadLine returns the next line with its terminator. It returns ErrTimeout
// when the underlying read yields no data, and io.EOF once the stream is
// exhausted. A trailing unterminated line is returned before io.EOF.
func (s *LineSource) ReadLine() (string, error) {
	for {
		if i := bytes.IndexByte(s.pending, '\n'); i >= 0 {
			line := string(s.pending[:i+1])
			s.pending = s.pending[i+1:]
			return line, nil
		}
		if len(s.pending) > maxLineSize {
			// No terminator in sight: hand the garbage to the decoder, which
			// rejects it, rather than growing without bound.
			line := string(s.pending)
			s.pending = nil
			return line, nil
		}

		n, err := s.r.Read(s.buf)
		if n > 0 {
			s.pending = append(s.pending, s.buf[:n]...)
			continue
		}
		if err == nil {
			return "", ErrTimeout
		}
		if errors.Is(err, io.EOF) && len(s.pending) > 0 {
			line := string(s.pending)
			s.pending = nil
			return line, nil
		}
		return "", err
	}
}
