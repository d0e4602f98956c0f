package timing

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func TestTrackerMeasuresWithClock(t *testing.T) {
	clock := &fakeClock{now: time.Unix(1000, 0)}
	tr := NewTrackerWithClock(clock.Now)

	ctx := tr.StartTiming(context.Background(), "pipeline")
	clock.Advance(42 * time.Millisecond)
	got := tr.EndTiming(ctx)

	assert.Equal(t, 42*time.Millisecond, got)
	assert.Equal(t, []time.Duration{42 * time.Millisecond}, tr.GetTimings("pipeline"))
}

func TestTrackerAverage(t *testing.T) {
	clock := &fakeClock{now: time.Unix(0, 0)}
	tr := NewTrackerWithClock(clock.Now)

	for _, d := range []time.Duration{10, 20, 30} {
		ctx := tr.StartTiming(context.Background(), "decode")
		clock.Advance(d * time.Millisecond)
		tr.EndTiming(ctx)
	}

	assert.Equal(t, 20*time.Millisecond, tr.GetAverageTime("decode"))
	require.Len(t, tr.GetTimings("decode"), 3)

	assert.Nil(t, tr.GetTimings("encode"))
	assert.Zero(t, tr.GetAverageTime("encode"))
}

func TestEndTimingWithoutStart(t *testing.T) {
	tr := NewTracker()
	assert.Zero(t, tr.EndTiming(context.Background()))
}

func TestStartTimingKeepsParentValues(t *testing.T) {
	type key struct{}
	parent := context.WithValue(context.Background(), key{}, "v")

	ctx := NewTracker().StartTiming(parent, "op")
	assert.Equal(t, "v", ctx.Value(key{}))
}

func TestMillisTruncates(t *testing.T) {
	assert.Equal(t, int64(0), Millis(999*time.Microsecond))
	assert.Equal(t, int64(3), Millis(3900*time.Microsecond))
}
