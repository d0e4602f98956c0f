package models

import (
	"image"
	"image/color"
)

// ReducedGrid is the downsampled intensity grid produced by the decoder.
// Cells are 8-bit; the decoder rescales wider samples before storing them.
type ReducedGrid struct {
	gray   *image.Gray
	maxVal int
}

// NewReducedGrid wraps gray as a ReducedGrid. gray must be anchored at the
// origin. The grid takes ownership of gray; callers must not modify it
// afterwards.
func NewReducedGrid(gray *image.Gray, maxVal int) *ReducedGrid {
	return &ReducedGrid{gray: gray, maxVal: maxVal}
}

// GridFromRows builds a ReducedGrid from a rectangular slice of rows.
func GridFromRows(rows [][]uint8, maxVal int) (*ReducedGrid, error) {
	h := len(rows)
	w := 0
	if h > 0 {
		w = len(rows[0])
	}

	gray := image.NewGray(image.Rect(0, 0, w, h))
	for y, row := range rows {
		if len(row) != w {
			return nil, &ShapeError{
				Want: image.Pt(w, h),
				Got:  image.Pt(len(row), h),
			}
		}
		copy(gray.Pix[y*gray.Stride:], row)
	}
	return &ReducedGrid{gray: gray, maxVal: maxVal}, nil
}

func (g *ReducedGrid) Width() int  { return g.gray.Rect.Dx() }
func (g *ReducedGrid) Height() int { return g.gray.Rect.Dy() }
func (g *ReducedGrid) MaxVal() int { return g.maxVal }

// Size returns the grid dimensions as a point (width, height).
func (g *ReducedGrid) Size() image.Point { return g.gray.Rect.Size() }

// At returns the intensity at column x, row y.
func (g *ReducedGrid) At(x, y int) uint8 {
	return g.gray.Pix[y*g.gray.Stride+x]
}

// Row returns a copy of row y.
func (g *ReducedGrid) Row(y int) []uint8 {
	row := make([]uint8, g.Width())
	copy(row, g.gray.Pix[y*g.gray.Stride:])
	return row
}

// Palette returns the two-colour palette used by BinaryGrid: index 0 is
// black, index 1 is white.
func Palette() color.Palette {
	return color.Palette{color.Black, color.White}
}

// BinaryGrid is a two-level grid whose cells are 0 or 1.
type BinaryGrid struct {
	p *image.Paletted
}

// Make sure we implement PalettedImage, so the grid can be handed to any
// encoder that understands 1-bit images.
var _ image.PalettedImage = &BinaryGrid{}

func NewBinaryGrid(width, height int) *BinaryGrid {
	return &BinaryGrid{
		p: image.NewPaletted(image.Rect(0, 0, width, height), Palette()),
	}
}

// BinaryFromRows builds a BinaryGrid from rows of 0/1 values. Any non-zero
// value is stored as 1.
func BinaryFromRows(rows [][]uint8) (*BinaryGrid, error) {
	h := len(rows)
	w := 0
	if h > 0 {
		w = len(rows[0])
	}

	b := NewBinaryGrid(w, h)
	for y, row := range rows {
		if len(row) != w {
			return nil, &ShapeError{
				Want: image.Pt(w, h),
				Got:  image.Pt(len(row), h),
			}
		}
		for x, v := range row {
			b.Set(x, y, v != 0)
		}
	}
	return b, nil
}

func (b *BinaryGrid) Width() int        { return b.p.Rect.Dx() }
func (b *BinaryGrid) Height() int       { return b.p.Rect.Dy() }
func (b *BinaryGrid) Size() image.Point { return b.p.Rect.Size() }

// Bit returns the cell value at column x, row y: 0 or 1.
func (b *BinaryGrid) Bit(x, y int) uint8 {
	return b.p.Pix[y*b.p.Stride+x]
}

// Set stores 1 when on is true and 0 otherwise.
func (b *BinaryGrid) Set(x, y int, on bool) {
	if on {
		b.p.Pix[y*b.p.Stride+x] = 1
	} else {
		b.p.Pix[y*b.p.Stride+x] = 0
	}
}

// Ones counts the cells set to 1.
func (b *BinaryGrid) Ones() int {
	n := 0
	for _, v := range b.p.Pix {
		n += int(v)
	}
	return n
}

// Equal reports whether both grids have the same shape and cells.
func (b *BinaryGrid) Equal(o *BinaryGrid) bool {
	if b.Size() != o.Size() {
		return false
	}
	for y := 0; y < b.Height(); y++ {
		for x := 0; x < b.Width(); x++ {
			if b.Bit(x, y) != o.Bit(x, y) {
				return false
			}
		}
	}
	return true
}

func (b *BinaryGrid) ColorModel() color.Model { return b.p.ColorModel() }
func (b *BinaryGrid) Bounds() image.Rectangle { return b.p.Bounds() }
func (b *BinaryGrid) At(x, y int) color.Color { return b.p.At(x, y) }
func (b *BinaryGrid) ColorIndexAt(x, y int) uint8 {
	return b.p.ColorIndexAt(x, y)
}
