package threshold

import (
	"micro-otsu/internal/models"
)

// Apply binarizes g: a cell becomes 1 when its intensity is >= t and 0
// otherwise. t may lie outside [0,255]; 0 yields all ones and 256 all zeros.
func Apply(g *models.ReducedGrid, t int) *models.BinaryGrid {
	dst := models.NewBinaryGrid(g.Width(), g.Height())

	for y := 0; y < g.Height(); y++ {
		for x := 0; x < g.Width(); x++ {
			dst.Set(x, y, int(g.At(x, y)) >= t)
		}
	}

	return dst
}
