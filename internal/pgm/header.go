package pgm

import (
	"errors"
	"fmt"
	"io"

	"micro-otsu/internal/models"
)

const (
	// Magic is the format tag of a plain (ASCII) PGM file.
	Magic = "P2"
	// MaxSampleValue is the largest maxval netpbm allows.
	MaxSampleValue = 65535
)

var ErrOutOfRange = errors.New("value out of range")

// Header describes the source stream.
type Header struct {
	Width  int
	Height int
	MaxVal int
}

func readHeader(t *tokenizer) (Header, error) {
	tag, err := t.next()
	if err == io.EOF {
		return Header{}, &models.FormatError{Want: Magic}
	}
	if errors.Is(err, ErrTokenTooLong) {
		return Header{}, &models.FormatError{Tag: string(t.buf) + "...", Want: Magic}
	}
	if err != nil {
		return Header{}, fmt.Errorf("read format tag: %w", err)
	}
	if string(tag) != Magic {
		return Header{}, &models.FormatError{Tag: string(tag), Want: Magic}
	}

	var h Header
	fields := []struct {
		name string
		dst  *int
	}{
		{"width", &h.Width},
		{"height", &h.Height},
		{"maxval", &h.MaxVal},
	}
	for _, f := range fields {
		v, err := readInt(t, f.name, -1)
		if err != nil {
			return Header{}, err
		}
		*f.dst = v
	}

	if h.MaxVal < 1 || h.MaxVal > MaxSampleValue {
		return Header{}, &models.ParseError{
			Field: "maxval",
			Token: fmt.Sprint(h.MaxVal),
			Index: -1,
			Err:   ErrOutOfRange,
		}
	}

	return h, nil
}

// readInt reads the next token as a non-negative integer, converting every
// failure into a ParseError except I/O errors from the underlying reader.
func readInt(t *tokenizer, field string, index int) (int, error) {
	tok, err := t.next()
	switch {
	case err == io.EOF:
		return 0, &models.ParseError{Field: field, Index: index, Err: io.ErrUnexpectedEOF}
	case errors.Is(err, ErrTokenTooLong):
		return 0, &models.ParseError{Field: field, Index: index, Err: err}
	case err != nil:
		return 0, fmt.Errorf("read %s: %w", field, err)
	}

	v, ok := parseUint(tok)
	if !ok {
		return 0, &models.ParseError{Field: field, Token: string(tok), Index: index}
	}
	return v, nil
}
