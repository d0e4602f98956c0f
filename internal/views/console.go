// Package views renders pipeline results for the terminal.
package views

import (
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"micro-otsu/internal/models"
	"micro-otsu/internal/pipeline"
	"micro-otsu/internal/timing"
)

// Renderer writes one Result to w.
type Renderer interface {
	Render(w io.Writer, res *pipeline.Result) error
}

// Preview draws a BinaryGrid one character per cell.
type Preview struct {
	On, Off string
}

// Rows returns the preview lines of b, top to bottom.
func (p Preview) Rows(b *models.BinaryGrid) []string {
	rows := make([]string, b.Height())
	var sb strings.Builder
	for y := 0; y < b.Height(); y++ {
		sb.Reset()
		for x := 0; x < b.Width(); x++ {
			if b.Bit(x, y) == 1 {
				sb.WriteString(p.On)
			} else {
				sb.WriteString(p.Off)
			}
		}
		rows[y] = sb.String()
	}
	return rows
}

// FormatPSNR prints +Inf as "inf" and finite values in shortest form.
func FormatPSNR(v float64) string {
	if math.IsInf(v, 1) {
		return "inf"
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// TextRenderer prints the classic report.
type TextRenderer struct {
	Preview Preview
}

func NewTextRenderer(p Preview) *TextRenderer {
	return &TextRenderer{Preview: p}
}

func (r *TextRenderer) Render(w io.Writer, res *pipeline.Result) error {
	ew := &errWriter{w: w}
	size := res.Binary.Size()

	ew.printf("Image size: %d x %d\n", size.X, size.Y)
	ew.printf("Computed Otsu threshold: %d\n", res.Threshold())
	ew.printf("Execution time (ms): %d\n", timing.Millis(res.Elapsed))
	ew.printf("Binarized %dx%d image preview:\n", size.X, size.Y)
	for _, row := range r.Preview.Rows(res.Binary) {
		ew.printf("%s\n", row)
	}
	ew.printf("PSNR (compared to threshold %d binarization): %s\n", pipeline.ReferenceThreshold, FormatPSNR(res.PSNR))

	if ext := res.Extended; ext != nil {
		seg := ext.Segmentation
		ew.printf("Gray PSNR: %.2f dB\n", ext.GrayPSNR)
		ew.printf("SSIM: %.4f\n", ext.SSIM)
		ew.printf("IoU: %.4f  Dice: %.4f  Misclassification: %.4f\n", seg.IoU, seg.DiceCoefficient, seg.MisclassificationError)
	}

	return ew.err
}

type errWriter struct {
	w   io.Writer
	err error
}

func (e *errWriter) printf(format string, args ...interface{}) {
	if e.err != nil {
		return
	}
	_, e.err = fmt.Fprintf(e.w, format, args...)
}
