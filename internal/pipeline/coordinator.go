package pipeline

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"micro-otsu/internal/processing/histogram"
	"micro-otsu/internal/processing/threshold"
)

// TimedOperation names the span recorded on the tracker for each input.
const TimedOperation = "pipeline"

type Coordinator struct {
	logger        Logger
	timingTracker TimingTracker
	loader        *gridLoader
	opts          Options
}

func NewCoordinator(log Logger, tracker TimingTracker, opts Options) *Coordinator {
	return &Coordinator{
		logger:        log,
		timingTracker: tracker,
		loader:        &gridLoader{logger: log, width: opts.TargetWidth, height: opts.TargetHeight, open: openFile},
		opts:          opts,
	}
}

// ProcessFile runs Process on the file at path.
func (c *Coordinator) ProcessFile(path string) (*Result, error) {
	var res *Result
	err := c.loader.loadFile(path, func(r io.Reader) error {
		var err error
		res, err = c.Process(path, r)
		return err
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

// Process decodes r, solves and applies the Otsu threshold and evaluates
// the result. name only labels logs and the Result.
func (c *Coordinator) Process(name string, r io.Reader) (*Result, error) {
	ctx := c.timingTracker.StartTiming(context.Background(), TimedOperation)

	grid, header, err := c.loader.load(name, r)
	if err != nil {
		return nil, err
	}

	hist := histogram.Build(grid)
	otsu := threshold.Otsu(hist)
	binary := threshold.Apply(grid, otsu.Threshold)

	elapsed := c.timingTracker.EndTiming(ctx)

	if otsu.Degenerate {
		c.logger.Warning("Coordinator", "histogram has a single class, using fallback threshold", map[string]interface{}{
			"source":    name,
			"threshold": otsu.Threshold,
			"populated": hist.Populated(),
		})
	}

	psnr, err := PSNR(grid, binary)
	if err != nil {
		return nil, fmt.Errorf("PSNR calculation failed: %w", err)
	}

	res := &Result{
		Name:      name,
		Header:    header,
		Grid:      grid,
		Histogram: hist,
		Otsu:      otsu,
		Binary:    binary,
		Elapsed:   elapsed,
		PSNR:      psnr,
	}

	if c.opts.Extended {
		ext, err := CalculateExtendedMetrics(grid, binary)
		if err != nil {
			return nil, fmt.Errorf("extended metrics calculation failed: %w", err)
		}
		res.Extended = ext
	}

	c.logger.Info("Coordinator", "image processed", map[string]interface{}{
		"source":     name,
		"threshold":  otsu.Threshold,
		"elapsed_ms": elapsed.Milliseconds(),
		"psnr":       strconv.FormatFloat(psnr, 'f', 4, 64),
	})

	return res, nil
}
