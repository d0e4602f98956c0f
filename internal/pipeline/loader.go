package pipeline

import (
	"fmt"
	"io"
	"os"

	"micro-otsu/internal/models"
	"micro-otsu/internal/pgm"
)

type gridLoader struct {
	logger        Logger
	width, height int
	open          func(path string) (io.ReadCloser, error)
}

func openFile(path string) (io.ReadCloser, error) {
	return os.Open(path)
}

// loadFile opens path for the duration of a single decode. The handle is
// released on every return path.
func (l *gridLoader) loadFile(path string, decode func(io.Reader) error) (err error) {
	f, err := l.open(path)
	if err != nil {
		return fmt.Errorf("failed to open input: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to close input: %w", cerr)
		}
	}()

	return decode(f)
}

func (l *gridLoader) load(name string, r io.Reader) (*models.ReducedGrid, pgm.Header, error) {
	d, err := pgm.NewDownsampler(r, l.width, l.height)
	if err != nil {
		return nil, pgm.Header{}, fmt.Errorf("failed to decode %s: %w", name, err)
	}
	header := d.Header()

	grid, err := d.Run()
	if err != nil {
		return nil, header, fmt.Errorf("failed to decode %s: %w", name, err)
	}

	colStride, rowStride := d.Strides()
	l.logger.Debug("GridLoader", "grid decoded", map[string]interface{}{
		"source":      name,
		"source_size": fmt.Sprintf("%dx%d", header.Width, header.Height),
		"maxval":      header.MaxVal,
		"grid_maxval": grid.MaxVal(),
		"grid_size":   fmt.Sprintf("%dx%d", grid.Width(), grid.Height()),
		"strides":     fmt.Sprintf("%dx%d", colStride, rowStride),
		"tokens_read": d.Consumed(),
	})

	return grid, header, nil
}
