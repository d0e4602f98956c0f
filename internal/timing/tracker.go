// Package timing records wall-clock durations of named pipeline operations.
package timing

import (
	"context"
	"sync"
	"time"
)

type timingKey struct{}

// Clock returns the current time. Tests substitute a fake.
type Clock func() time.Time

type TimingInfo struct {
	Operation string
	StartTime time.Time
}

type Tracker struct {
	timings map[string][]time.Duration
	mu      sync.RWMutex
	now     Clock
}

func NewTracker() *Tracker {
	return NewTrackerWithClock(time.Now)
}

func NewTrackerWithClock(now Clock) *Tracker {
	if now == nil {
		now = time.Now
	}
	return &Tracker{
		timings: make(map[string][]time.Duration),
		now:     now,
	}
}

// StartTiming stamps operation's start on a child of parent.
func (tt *Tracker) StartTiming(parent context.Context, operation string) context.Context {
	if parent == nil {
		parent = context.Background()
	}
	return context.WithValue(parent, timingKey{}, TimingInfo{
		Operation: operation,
		StartTime: tt.now(),
	})
}

// EndTiming records and returns the time elapsed since the matching
// StartTiming. A context without a start stamp yields zero.
func (tt *Tracker) EndTiming(ctx context.Context) time.Duration {
	info, ok := ctx.Value(timingKey{}).(TimingInfo)
	if !ok {
		return 0
	}

	duration := tt.now().Sub(info.StartTime)

	tt.mu.Lock()
	tt.timings[info.Operation] = append(tt.timings[info.Operation], duration)
	tt.mu.Unlock()

	return duration
}

func (tt *Tracker) GetTimings(operation string) []time.Duration {
	tt.mu.RLock()
	defer tt.mu.RUnlock()

	timings := tt.timings[operation]
	if timings == nil {
		return nil
	}

	result := make([]time.Duration, len(timings))
	copy(result, timings)
	return result
}

func (tt *Tracker) GetAverageTime(operation string) time.Duration {
	timings := tt.GetTimings(operation)
	if len(timings) == 0 {
		return 0
	}

	var total time.Duration
	for _, duration := range timings {
		total += duration
	}

	return total / time.Duration(len(timings))
}

// Millis renders d as whole milliseconds, truncating toward zero.
func Millis(d time.Duration) int64 {
	return d.Milliseconds()
}
