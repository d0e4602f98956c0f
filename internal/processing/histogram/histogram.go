package histogram

import (
	"micro-otsu/internal/models"
)

// Bins is the number of intensity buckets.
const Bins = 256

// Histogram counts how many cells of a grid hold each intensity.
type Histogram [Bins]int

// Build tabulates the intensities of g in a single pass.
func Build(g *models.ReducedGrid) Histogram {
	var h Histogram
	for y := 0; y < g.Height(); y++ {
		for x := 0; x < g.Width(); x++ {
			h[g.At(x, y)]++
		}
	}
	return h
}

// Total returns the number of cells counted.
func (h *Histogram) Total() int {
	total := 0
	for _, n := range h {
		total += n
	}
	return total
}

// WeightedSum returns the sum of intensity * count over all buckets.
func (h *Histogram) WeightedSum() int {
	sum := 0
	for i, n := range h {
		sum += i * n
	}
	return sum
}

// Populated returns the number of non-empty buckets.
func (h *Histogram) Populated() int {
	n := 0
	for _, c := range h {
		if c > 0 {
			n++
		}
	}
	return n
}
