package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"micro-otsu/internal/logger"
	"micro-otsu/internal/pipeline"
	"micro-otsu/internal/timing"
	"micro-otsu/internal/views"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "micro-otsu.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	cmd := NewRootCmd(&stdout, &stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func TestRootTextReport(t *testing.T) {
	cfg := writeConfig(t, "log:\n  level: disabled\n")

	out, _, err := execute(t, "--config", cfg, "-W", "4", "-H", "4", filepath.Join("testdata", "bimodal.pgm"))
	require.NoError(t, err)

	assert.Contains(t, out, "Image size: 4 x 4\n")
	assert.Contains(t, out, "Computed Otsu threshold: 199\n")
	assert.Contains(t, out, "Execution time (ms): ")
	assert.Contains(t, out, "Binarized 4x4 image preview:\n....\n....\n####\n####\n")
	assert.True(t, strings.HasSuffix(out, "PSNR (compared to threshold 128 binarization): inf\n"))
}

func TestRootJSONReportFromConfigFile(t *testing.T) {
	cfg := writeConfig(t, `
target:
  width: 2
  height: 2
output:
  format: json
log:
  level: disabled
metrics:
  extended: true
`)

	out, _, err := execute(t, "--config", cfg, filepath.Join("testdata", "bimodal.pgm"))
	require.NoError(t, err)

	var rep views.Report
	require.NoError(t, json.Unmarshal([]byte(out), &rep))
	assert.Equal(t, 2, rep.Width)
	assert.Equal(t, 4, rep.SourceWidth)
	assert.Equal(t, 199, rep.Threshold)
	assert.Equal(t, []string{"..", "##"}, rep.Preview)
	assert.True(t, rep.PSNRInfinite)
	require.NotNil(t, rep.Extended)
}

func TestRootReportsFailures(t *testing.T) {
	cfg := writeConfig(t, "log:\n  format: json\n")

	_, stderr, err := execute(t, "--config", cfg, "-W", "4", "-H", "4",
		filepath.Join("testdata", "missing.pgm"),
		filepath.Join("testdata", "bimodal.pgm"),
	)
	require.EqualError(t, err, "1 of 2 inputs failed")
	assert.Contains(t, stderr, `"source":"testdata/missing.pgm"`)
}

func TestRootConfigFilePreviewAndQuietLevel(t *testing.T) {
	cfg := writeConfig(t, `
log:
  level: off
preview:
  foreground: "@"
  background: "-"
`)

	out, stderr, err := execute(t, "--config", cfg, "-W", "4", "-H", "4",
		filepath.Join("testdata", "bimodal.pgm"),
		filepath.Join("testdata", "missing.pgm"),
	)
	require.EqualError(t, err, "1 of 2 inputs failed")
	assert.Contains(t, out, "----\n----\n@@@@\n@@@@\n")
	assert.Empty(t, stderr)
}

func TestRootFlagsOverrideConfigPreview(t *testing.T) {
	cfg := writeConfig(t, "log:\n  level: disabled\npreview:\n  foreground: \"@\"\n")

	out, _, err := execute(t, "--config", cfg, "-W", "2", "-H", "2", "--on", "X", "--off", "o",
		filepath.Join("testdata", "bimodal.pgm"))
	require.NoError(t, err)
	assert.Contains(t, out, "oo\nXX\n")
}

func TestRootRejectsInvalidConfig(t *testing.T) {
	cfg := writeConfig(t, "log:\n  level: disabled\n")

	_, _, err := execute(t, "--config", cfg, "--width", "0", filepath.Join("testdata", "bimodal.pgm"))
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "target.width")
}

func TestRootRequiresInput(t *testing.T) {
	_, _, err := execute(t)
	assert.Error(t, err)
}

func TestVersion(t *testing.T) {
	out, _, err := execute(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "micro-otsu dev\n", out)
}

func TestRunBatchLogsSummary(t *testing.T) {
	var logs bytes.Buffer
	log := logger.New(&logs, logger.FormatJSON, zerolog.InfoLevel)
	tracker := timing.NewTracker()
	coord := pipeline.NewCoordinator(logger.Nop{}, tracker, pipeline.Options{TargetWidth: 2, TargetHeight: 2})
	stop := closedStopper{ch: make(chan struct{})}
	path := filepath.Join("testdata", "bimodal.pgm")

	var out bytes.Buffer
	err := runBatch(stop, coord, tracker, views.NewTextRenderer(views.Preview{On: "#", Off: "."}), &out, log, []string{path, path})
	require.NoError(t, err)
	assert.Equal(t, 2, strings.Count(out.String(), "==> "+path+" <=="))

	var summary map[string]interface{}
	lines := strings.Split(strings.TrimSpace(logs.String()), "\n")
	require.NoError(t, json.Unmarshal([]byte(lines[len(lines)-1]), &summary))
	assert.Equal(t, "batch complete", summary["message"])
	assert.Equal(t, float64(2), summary["inputs"])
	assert.Equal(t, float64(2), summary["processed"])
	assert.Equal(t, float64(0), summary["failed"])
}

type closedStopper struct{ ch chan struct{} }

func (s closedStopper) Done() <-chan struct{} { return s.ch }

type countingProcessor struct {
	calls int
	err   error
}

func (p *countingProcessor) ProcessFile(path string) (*pipeline.Result, error) {
	p.calls++
	return nil, p.err
}

func (p *countingProcessor) Process(name string, r io.Reader) (*pipeline.Result, error) {
	return nil, p.err
}

func TestRunBatchStopsBetweenFiles(t *testing.T) {
	stop := closedStopper{ch: make(chan struct{})}
	close(stop.ch)
	proc := &countingProcessor{}

	err := runBatch(stop, proc, timing.NewTracker(), views.NewTextRenderer(views.Preview{On: "#", Off: "."}), io.Discard, logger.Nop{}, []string{"a.pgm", "b.pgm"})
	assert.True(t, errors.Is(err, ErrInterrupted))
	assert.Zero(t, proc.calls)
}

func TestRunBatchContinuesAfterFailure(t *testing.T) {
	stop := closedStopper{ch: make(chan struct{})}
	proc := &countingProcessor{err: errors.New("bad input")}

	err := runBatch(stop, proc, timing.NewTracker(), views.NewTextRenderer(views.Preview{On: "#", Off: "."}), io.Discard, logger.Nop{}, []string{"a.pgm", "b.pgm", "c.pgm"})
	assert.EqualError(t, err, "3 of 3 inputs failed")
	assert.Equal(t, 3, proc.calls)
}
