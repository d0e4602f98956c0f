package pgm

import (
	"bufio"
	"errors"
	"io"
)

// maxTokenLen bounds the bytes kept for a single token. Leading zeros of a
// number are dropped as they are read and do not count toward it, so only a
// token whose significant part exceeds the limit fails.
const maxTokenLen = 32

// ErrTokenTooLong reports a token longer than maxTokenLen bytes.
var ErrTokenTooLong = errors.New("token too long")

// tokenizer splits a netpbm plain stream into whitespace-delimited tokens,
// dropping '#' comments up to the end of the line. It reuses one small
// buffer for every token.
type tokenizer struct {
	r   *bufio.Reader
	buf []byte
}

func newTokenizer(r io.Reader) *tokenizer {
	br, ok := r.(*bufio.Reader)
	if !ok {
		br = bufio.NewReader(r)
	}
	return &tokenizer{r: br, buf: make([]byte, 0, maxTokenLen)}
}

// next returns the next token. The slice is only valid until the following
// call. io.EOF is returned once the stream holds no more tokens.
func (t *tokenizer) next() ([]byte, error) {
	t.buf = t.buf[:0]
	for {
		c, err := t.r.ReadByte()
		if err != nil {
			if err == io.EOF && len(t.buf) > 0 {
				return t.buf, nil
			}
			return nil, err
		}

		switch {
		case c == '#':
			err := t.skipLine()
			if len(t.buf) > 0 && (err == nil || err == io.EOF) {
				return t.buf, nil
			}
			if err != nil {
				return nil, err
			}
		case isSpace(c):
			if len(t.buf) > 0 {
				return t.buf, nil
			}
		case len(t.buf) == 1 && t.buf[0] == '0' && isDigit(c):
			t.buf[0] = c
		default:
			if len(t.buf) == maxTokenLen {
				return nil, ErrTokenTooLong
			}
			t.buf = append(t.buf, c)
		}
	}
}

func (t *tokenizer) skipLine() error {
	for {
		c, err := t.r.ReadByte()
		if err != nil {
			return err
		}
		if c == '\n' || c == '\r' {
			return nil
		}
	}
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func isSpace(c byte) bool {
	switch c {
	case ' ', '\t', '\n', '\r', '\v', '\f':
		return true
	}
	return false
}

// parseUint reads a non-negative decimal integer. It rejects signs, empty
// tokens and values that would not fit a 32-bit int.
func parseUint(tok []byte) (int, bool) {
	if len(tok) == 0 {
		return 0, false
	}
	n := 0
	for _, c := range tok {
		if c < '0' || c > '9' {
			return 0, false
		}
		n = n*10 + int(c-'0')
		if n > 1<<31-1 {
			return 0, false
		}
	}
	return n, true
}
