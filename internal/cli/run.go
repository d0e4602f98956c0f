package cli

import (
	"errors"
	"fmt"
	"io"
	"time"

	"micro-otsu/internal/config"
	"micro-otsu/internal/logger"
	"micro-otsu/internal/pipeline"
	"micro-otsu/internal/shutdown"
	"micro-otsu/internal/timing"
	"micro-otsu/internal/views"
)

// ErrInterrupted is returned when a signal stops a batch before every input
// was processed.
var ErrInterrupted = errors.New("interrupted")

func run(stdout, stderr io.Writer, cfg config.Config, cfgUsed string, paths []string) error {
	log := logger.New(stderr, cfg.Log.ParsedFormat, cfg.Log.ParsedLevel)

	if cfgUsed != "" {
		log.Debug("CLI", "using config file", map[string]interface{}{"path": cfgUsed})
	}

	mgr := shutdown.NewManager(log)
	mgr.Listen()
	defer mgr.Stop()

	tracker := timing.NewTracker()
	coord := pipeline.NewCoordinator(log, tracker, pipeline.Options{
		TargetWidth:  cfg.Target.Width,
		TargetHeight: cfg.Target.Height,
		Extended:     cfg.Metrics.Extended,
	})

	return runBatch(mgr, coord, tracker, newRenderer(cfg), stdout, log, paths)
}

func newRenderer(cfg config.Config) views.Renderer {
	p := views.Preview{On: cfg.Preview.On, Off: cfg.Preview.Off}
	if cfg.Output.Format == config.OutputJSON {
		return views.NewJSONRenderer(p)
	}
	return views.NewTextRenderer(p)
}

type stopper interface {
	Done() <-chan struct{}
}

type timingSummary interface {
	GetTimings(operation string) []time.Duration
	GetAverageTime(operation string) time.Duration
}

// runBatch processes paths in order. A signal stops the batch between
// inputs; an input already started always completes.
func runBatch(stop stopper, proc pipeline.FileProcessor, timings timingSummary, r views.Renderer, out io.Writer, log logger.Logger, paths []string) error {
	_, text := r.(*views.TextRenderer)
	failed := 0

	for i, path := range paths {
		select {
		case <-stop.Done():
			log.Warning("CLI", "batch interrupted", map[string]interface{}{
				"processed": i,
				"remaining": len(paths) - i,
			})
			return ErrInterrupted
		default:
		}

		res, err := proc.ProcessFile(path)
		if err != nil {
			log.Error("CLI", err, map[string]interface{}{"source": path})
			failed++
			continue
		}

		if text && len(paths) > 1 {
			if i > 0 {
				fmt.Fprintln(out)
			}
			fmt.Fprintf(out, "==> %s <==\n", path)
		}
		if err := r.Render(out, res); err != nil {
			return fmt.Errorf("failed to write report: %w", err)
		}
	}

	if len(paths) > 1 {
		log.Info("CLI", "batch complete", map[string]interface{}{
			"inputs":     len(paths),
			"processed":  len(timings.GetTimings(pipeline.TimedOperation)),
			"failed":     failed,
			"average_ms": timing.Millis(timings.GetAverageTime(pipeline.TimedOperation)),
		})
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d inputs failed", failed, len(paths))
	}
	return nil
}
