package threshold

import (
	"micro-otsu/internal/processing/histogram"
)

// FallbackThreshold is returned when the histogram has no two populated
// classes to separate.
const FallbackThreshold = 0

// Result is the outcome of an Otsu search.
type Result struct {
	Threshold int
	// Variance is the winning between-class variance, wB*wF*(mB-mF)^2.
	Variance float64
	// Degenerate is set when no split was possible (empty histogram or a
	// single populated bucket) and Threshold holds FallbackThreshold.
	Degenerate bool
}

// Otsu returns the intensity that maximises the between-class variance of h.
// https://en.wikipedia.org/wiki/Otsu%27s_method
func Otsu(h histogram.Histogram) Result {
	total := h.Total()
	sum1 := float64(h.WeightedSum())

	var (
		wB      int
		sumB    float64
		maximum float64
	)
	res := Result{Threshold: FallbackThreshold, Degenerate: true}

	for i := 0; i < histogram.Bins; i++ {
		wB += h[i]
		if wB == 0 {
			continue
		}
		wF := total - wB
		if wF == 0 {
			break
		}

		sumB += float64(i * h[i])
		mB := sumB / float64(wB)
		mF := (sum1 - sumB) / float64(wF)

		between := float64(wB) * float64(wF) * (mB - mF) * (mB - mF)

		// Compatibility: ties move the threshold forward to the last index
		// of an equal run (empty buckets between the classes). Changing this
		// to > shifts every threshold computed on sparse histograms.
		if between >= maximum {
			maximum = between
			res = Result{Threshold: i, Variance: between}
		}
	}

	return res
}
