package views

import (
	"encoding/json"
	"io"
	"math"

	"micro-otsu/internal/pipeline"
	"micro-otsu/internal/timing"
)

// Report is the JSON document emitted per input.
type Report struct {
	Source       string                    `json:"source"`
	SourceWidth  int                       `json:"source_width"`
	SourceHeight int                       `json:"source_height"`
	MaxVal       int                       `json:"maxval"`
	Width        int                       `json:"width"`
	Height       int                       `json:"height"`
	Threshold    int                       `json:"threshold"`
	Degenerate   bool                      `json:"degenerate,omitempty"`
	ElapsedMS    int64                     `json:"elapsed_ms"`
	Preview      []string                  `json:"preview"`
	PSNR         *float64                  `json:"psnr"`
	PSNRInfinite bool                      `json:"psnr_infinite"`
	Extended     *pipeline.ExtendedMetrics `json:"extended,omitempty"`
}

// NewReport flattens res. An infinite PSNR is reported as a null value with
// PSNRInfinite set, since JSON has no infinity.
func NewReport(res *pipeline.Result, p Preview) Report {
	rep := Report{
		Source:       res.Name,
		SourceWidth:  res.Header.Width,
		SourceHeight: res.Header.Height,
		MaxVal:       res.Header.MaxVal,
		Width:        res.Binary.Width(),
		Height:       res.Binary.Height(),
		Threshold:    res.Threshold(),
		Degenerate:   res.Otsu.Degenerate,
		ElapsedMS:    timing.Millis(res.Elapsed),
		Preview:      p.Rows(res.Binary),
		Extended:     res.Extended,
	}
	if math.IsInf(res.PSNR, 1) {
		rep.PSNRInfinite = true
	} else {
		v := res.PSNR
		rep.PSNR = &v
	}
	return rep
}

// JSONRenderer writes one JSON object per line.
type JSONRenderer struct {
	Preview Preview
}

func NewJSONRenderer(p Preview) *JSONRenderer {
	return &JSONRenderer{Preview: p}
}

func (r *JSONRenderer) Render(w io.Writer, res *pipeline.Result) error {
	return json.NewEncoder(w).Encode(NewReport(res, r.Preview))
}
