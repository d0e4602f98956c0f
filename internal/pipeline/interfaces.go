package pipeline

import (
	"io"
	"time"

	"micro-otsu/internal/models"
	"micro-otsu/internal/pgm"
	"micro-otsu/internal/processing/histogram"
	"micro-otsu/internal/processing/threshold"
)

// FileProcessor runs the whole pipeline on one input.
type FileProcessor interface {
	ProcessFile(path string) (*Result, error)
	Process(name string, r io.Reader) (*Result, error)
}

// Options tune a Coordinator.
type Options struct {
	TargetWidth  int
	TargetHeight int
	// Extended enables the optional metrics in Result.Extended.
	Extended bool
}

// Result holds every value produced for one input. It is only returned when
// all stages succeed.
type Result struct {
	Name      string
	Header    pgm.Header
	Grid      *models.ReducedGrid
	Histogram histogram.Histogram
	Otsu      threshold.Result
	Binary    *models.BinaryGrid
	// Elapsed covers decode through binarization.
	Elapsed  time.Duration
	PSNR     float64
	Extended *ExtendedMetrics
}

// Threshold is shorthand for r.Otsu.Threshold.
func (r *Result) Threshold() int { return r.Otsu.Threshold }
