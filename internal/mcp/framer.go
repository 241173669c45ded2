package mcp

import (
	"bytes"
	"io"
)

// Framer turns an arbitrarily chunked byte stream into complete
// newline-delimited lines. Bytes after the last newline of a chunk are
// carried over until the rest of the line arrives. Blank lines are
// skipped. There is no cap on line length, so input that never contains
// a newline grows the carry-over buffer without bound.
type Framer struct {
	r     io.Reader
	buf   []byte
	lines [][]byte
	chunk []byte
	err   error
}

func NewFramer(r io.Reader) *Framer {
	return &Framer{r: r, chunk: make([]byte, 4096)}
}

// Next returns the next complete non-blank line, without its newline.
// Once the stream ends it returns io.EOF; an unterminated trailing
// fragment is discarded with the stream.
func (f *Framer) Next() ([]byte, error) {
	for {
		for len(f.lines) > 0 {
			line := f.lines[0]
			f.lines = f.lines[1:]
			if len(bytes.TrimSpace(line)) == 0 {
				continue
			}
			return line, nil
		}

		if f.err != nil {
			return nil, f.err
		}

		n, err := f.r.Read(f.chunk)
		if n > 0 {
			f.buf = append(f.buf, f.chunk[:n]...)
			for {
				i := bytes.IndexByte(f.buf, '\n')
				if i < 0 {
					break
				}
				line := make([]byte, i)
				copy(line, f.buf[:i])
				f.lines = append(f.lines, line)
				f.buf = f.buf[i+1:]
			}
		}
		if err != nil {
			f.err = err
		}
	}
}
