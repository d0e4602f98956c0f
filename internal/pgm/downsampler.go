// Package pgm decodes plain (P2) grayscale bitmaps in a single forward pass,
// keeping only a fixed-stride subset of the pixels. The full-resolution image
// is never held in memory: the only buffers are the output grid, allocated
// once at the target size, and one pending row of the same width.
package pgm

import (
	"fmt"
	"image"
	"io"

	"micro-otsu/internal/models"
)

// Downsampler is the streaming state of one decode. Each call to Next
// consumes exactly one pixel token; Done reports when the reduced grid is
// complete.
type Downsampler struct {
	tok    *tokenizer
	header Header
	target image.Point

	colStride int
	rowStride int

	// Position of the next token in the source, and pixels consumed so far.
	col, row int
	consumed int

	pending []uint8
	out     *image.Gray
	stored  int
}

// NewDownsampler reads the header from r and prepares a decode that reduces
// the image to targetW x targetH. It fails with a ConfigError when either
// stride would be zero.
func NewDownsampler(r io.Reader, targetW, targetH int) (*Downsampler, error) {
	if err := checkTarget(targetW, targetH); err != nil {
		return nil, err
	}

	tok := newTokenizer(r)
	h, err := readHeader(tok)
	if err != nil {
		return nil, err
	}

	d := &Downsampler{
		tok:       tok,
		header:    h,
		target:    image.Pt(targetW, targetH),
		colStride: h.Width / targetW,
		rowStride: h.Height / targetH,
		pending:   make([]uint8, 0, targetW),
	}
	if d.colStride == 0 {
		return nil, &models.ConfigError{
			Field:  "target width",
			Reason: fmt.Sprintf("%d exceeds source width %d", targetW, h.Width),
		}
	}
	if d.rowStride == 0 {
		return nil, &models.ConfigError{
			Field:  "target height",
			Reason: fmt.Sprintf("%d exceeds source height %d", targetH, h.Height),
		}
	}

	d.out = image.NewGray(image.Rect(0, 0, targetW, targetH))
	return d, nil
}

func checkTarget(w, h int) error {
	if w < 1 {
		return &models.ConfigError{Field: "target width", Reason: fmt.Sprintf("must be at least 1, got %d", w)}
	}
	if h < 1 {
		return &models.ConfigError{Field: "target height", Reason: fmt.Sprintf("must be at least 1, got %d", h)}
	}
	return nil
}

func (d *Downsampler) Header() Header { return d.header }

// Strides returns the column and row strides.
func (d *Downsampler) Strides() (col, row int) { return d.colStride, d.rowStride }

// Consumed returns the number of pixel tokens read so far.
func (d *Downsampler) Consumed() int { return d.consumed }

// Done reports whether every target row has been stored.
func (d *Downsampler) Done() bool { return d.stored == d.target.Y }

// Next consumes one pixel token. It returns io.EOF once the grid is
// complete, without reading any further from the source.
func (d *Downsampler) Next() error {
	if d.Done() {
		return io.EOF
	}

	v, err := readInt(d.tok, "pixel", d.consumed)
	if err != nil {
		return err
	}
	if v > d.header.MaxVal {
		return &models.ParseError{
			Field: "pixel",
			Token: fmt.Sprint(v),
			Index: d.consumed,
			Err:   ErrOutOfRange,
		}
	}
	d.consumed++

	// Keeping only the first target.X retained columns is the same as
	// keeping them all and truncating the row when it is stored.
	if d.col%d.colStride == 0 && len(d.pending) < d.target.X {
		d.pending = append(d.pending, d.scale(v))
	}

	d.col++
	if d.col == d.header.Width {
		d.col = 0
		if d.row%d.rowStride == 0 {
			copy(d.out.Pix[d.stored*d.out.Stride:], d.pending)
			d.stored++
		}
		d.pending = d.pending[:0]
		d.row++
	}

	return nil
}

// scale maps a sample onto 8 bits. Samples of images with maxval <= 255 are
// kept as they are.
func (d *Downsampler) scale(v int) uint8 {
	if d.header.MaxVal <= 255 {
		return uint8(v)
	}
	return uint8((v*255 + d.header.MaxVal/2) / d.header.MaxVal)
}

// Grid returns the reduced grid. It is only available once Done is true.
func (d *Downsampler) Grid() (*models.ReducedGrid, error) {
	if !d.Done() {
		return nil, fmt.Errorf("grid incomplete: %d of %d rows stored", d.stored, d.target.Y)
	}
	maxVal := d.header.MaxVal
	if maxVal > 255 {
		maxVal = 255
	}
	return models.NewReducedGrid(d.out, maxVal), nil
}

// Downsample decodes r and reduces it to targetW x targetH in one pass.
func Downsample(r io.Reader, targetW, targetH int) (*models.ReducedGrid, Header, error) {
	d, err := NewDownsampler(r, targetW, targetH)
	if err != nil {
		return nil, Header{}, err
	}
	g, err := d.Run()
	return g, d.Header(), err
}

// Run drives Next until the grid is complete and returns it.
func (d *Downsampler) Run() (*models.ReducedGrid, error) {
	for {
		err := d.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
	}
	return d.Grid()
}
