package pipeline

import (
	"math"

	"micro-otsu/internal/models"
)

// ReferenceThreshold is the fixed cut used to build the comparison
// binarization for PSNR.
const ReferenceThreshold = 128

// GrayPSNRCeiling is reported by GrayPSNR when the two images are identical.
const GrayPSNRCeiling = 100.0

// PSNR compares binary against the ReferenceThreshold binarization of
// original, treating both as 0/1 signals with a peak of 1. It returns +Inf
// exactly when the two binarizations agree on every cell.
func PSNR(original *models.ReducedGrid, binary *models.BinaryGrid) (float64, error) {
	if err := models.CheckShape(original.Size(), binary.Size()); err != nil {
		return 0, err
	}

	var diff int
	for y := 0; y < original.Height(); y++ {
		for x := 0; x < original.Width(); x++ {
			if reference(original, x, y) != binary.Bit(x, y) {
				// (1-0)^2 and (0-1)^2 are both 1.
				diff++
			}
		}
	}

	if diff == 0 {
		return math.Inf(1), nil
	}
	mse := float64(diff) / float64(original.Width()*original.Height())
	return 10 * math.Log10(1/mse), nil
}

func reference(g *models.ReducedGrid, x, y int) uint8 {
	if g.At(x, y) >= ReferenceThreshold {
		return 1
	}
	return 0
}

// SegmentationMetrics contains quality evaluation metrics for thresholding
// against the ReferenceThreshold binarization.
type SegmentationMetrics struct {
	TruePositive  int `json:"true_positive"`
	FalsePositive int `json:"false_positive"`
	FalseNegative int `json:"false_negative"`
	TrueNegative  int `json:"true_negative"`

	IoU                    float64 `json:"iou"`
	DiceCoefficient        float64 `json:"dice"`
	MisclassificationError float64 `json:"misclassification_error"`
}

// CalculateSegmentationMetrics computes confusion counts of binary against
// the reference binarization of original, and the IoU, Dice and error rates
// derived from them.
func CalculateSegmentationMetrics(original *models.ReducedGrid, binary *models.BinaryGrid) (*SegmentationMetrics, error) {
	if err := models.CheckShape(original.Size(), binary.Size()); err != nil {
		return nil, err
	}

	m := &SegmentationMetrics{}
	for y := 0; y < original.Height(); y++ {
		for x := 0; x < original.Width(); x++ {
			ref := reference(original, x, y)
			seg := binary.Bit(x, y)

			switch {
			case ref == 1 && seg == 1:
				m.TruePositive++
			case ref == 0 && seg == 1:
				m.FalsePositive++
			case ref == 1 && seg == 0:
				m.FalseNegative++
			default:
				m.TrueNegative++
			}
		}
	}

	union := m.TruePositive + m.FalsePositive + m.FalseNegative
	if union > 0 {
		m.IoU = float64(m.TruePositive) / float64(union)
		m.DiceCoefficient = 2 * float64(m.TruePositive) / float64(union+m.TruePositive)
	} else {
		// Perfect match when both are empty
		m.IoU = 1
		m.DiceCoefficient = 1
	}

	if total := union + m.TrueNegative; total > 0 {
		m.MisclassificationError = float64(m.FalsePositive+m.FalseNegative) / float64(total)
	}

	return m, nil
}

// GrayPSNR measures how far binary, scaled to {0,255}, is from the
// intensities of original. Identical inputs report GrayPSNRCeiling.
func GrayPSNR(original *models.ReducedGrid, binary *models.BinaryGrid) (float64, error) {
	if err := models.CheckShape(original.Size(), binary.Size()); err != nil {
		return 0, err
	}

	var sum float64
	for y := 0; y < original.Height(); y++ {
		for x := 0; x < original.Width(); x++ {
			d := float64(original.At(x, y)) - scaled(binary, x, y)
			sum += d * d
		}
	}

	mse := sum / float64(original.Width()*original.Height())
	if mse == 0 {
		return GrayPSNRCeiling, nil
	}
	return 10 * math.Log10(255*255/mse), nil
}

// SSIM stabilisers for an 8-bit dynamic range: (0.01*255)^2 and (0.03*255)^2.
const (
	ssimC1 = 6.5025
	ssimC2 = 58.5225
)

// SSIM computes the structural similarity of original and binary (scaled to
// {0,255}) over a single window covering the whole grid.
func SSIM(original *models.ReducedGrid, binary *models.BinaryGrid) (float64, error) {
	if err := models.CheckShape(original.Size(), binary.Size()); err != nil {
		return 0, err
	}

	n := float64(original.Width() * original.Height())

	var meanO, meanB float64
	for y := 0; y < original.Height(); y++ {
		for x := 0; x < original.Width(); x++ {
			meanO += float64(original.At(x, y))
			meanB += scaled(binary, x, y)
		}
	}
	meanO /= n
	meanB /= n

	var varO, varB, covar float64
	for y := 0; y < original.Height(); y++ {
		for x := 0; x < original.Width(); x++ {
			o := float64(original.At(x, y)) - meanO
			b := scaled(binary, x, y) - meanB
			varO += o * o
			varB += b * b
			covar += o * b
		}
	}
	varO /= n
	varB /= n
	covar /= n

	num := (2*meanO*meanB + ssimC1) * (2*covar + ssimC2)
	den := (meanO*meanO + meanB*meanB + ssimC1) * (varO + varB + ssimC2)
	return num / den, nil
}

func scaled(b *models.BinaryGrid, x, y int) float64 {
	return float64(b.Bit(x, y)) * 255
}

// ExtendedMetrics groups the optional quality measures.
type ExtendedMetrics struct {
	Segmentation *SegmentationMetrics `json:"segmentation"`
	GrayPSNR     float64              `json:"gray_psnr"`
	SSIM         float64              `json:"ssim"`
}

// CalculateExtendedMetrics runs every optional measure.
func CalculateExtendedMetrics(original *models.ReducedGrid, binary *models.BinaryGrid) (*ExtendedMetrics, error) {
	seg, err := CalculateSegmentationMetrics(original, binary)
	if err != nil {
		return nil, err
	}
	gray, err := GrayPSNR(original, binary)
	if err != nil {
		return nil, err
	}
	ssim, err := SSIM(original, binary)
	if err != nil {
		return nil, err
	}
	return &ExtendedMetrics{Segmentation: seg, GrayPSNR: gray, SSIM: ssim}, nil
}
