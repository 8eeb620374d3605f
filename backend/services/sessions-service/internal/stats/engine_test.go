package stats

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap/zaptest"
)

func newTestEngine(t *testing.T, now time.Time) *Engine {
	return NewEngine(zaptest.NewLogger(t), WithClock(func() time.Time { return now }))
}

func TestEngineCountsStartedWithoutSweep(t *testing.T) {
	e := newTestEngine(t, base)
	const n = 37
	for i := 0; i < n; i++ {
		e.RecordStarted(base.Add(-time.Duration(i) * time.Second))
	}
	assert.Equal(t, n, e.Summary().StartedCount)
}

func TestEngineScenarios(t *testing.T) {
	now := base
	cutoff := now.Add(-Window)

	tests := []struct {
		name    string
		started []time.Time
		stopped []time.Time
		sweep   bool
		want    Summary
	}{
		{
			name:    "started now is counted",
			started: []time.Time{now},
			want:    Summary{StartedCount: 1, StoppedCount: 0, TotalCount: 1},
		},
		{
			name:    "expired stop is evicted",
			stopped: []time.Time{now.Add(-61 * time.Second)},
			sweep:   true,
			want:    Summary{},
		},
		{
			name:    "only the fresh start survives",
			started: []time.Time{now.Add(-61 * time.Second), now},
			sweep:   true,
			want:    Summary{StartedCount: 1, TotalCount: 1},
		},
		{
			name:    "fresh entry survives a sweep",
			started: []time.Time{now},
			stopped: []time.Time{now},
			sweep:   true,
			want:    Summary{StartedCount: 1, StoppedCount: 1, TotalCount: 2},
		},
		{
			name:    "summary alone does not evict",
			started: []time.Time{now.Add(-10 * time.Minute)},
			want:    Summary{StartedCount: 1, TotalCount: 1},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newTestEngine(t, now)
			for _, ts := range tt.started {
				e.RecordStarted(ts)
			}
			for _, ts := range tt.stopped {
				e.RecordStopped(ts)
			}
			if tt.sweep {
				e.SweepBefore(cutoff)
			}
			assert.Equal(t, tt.want, e.Summary())
		})
	}
}

func TestEngineSweepUsesClockMinusWindow(t *testing.T) {
	e := newTestEngine(t, base)
	e.RecordStarted(base.Add(-Window - time.Millisecond))
	e.RecordStarted(base.Add(-Window))
	e.RecordStopped(base.Add(-2 * Window))

	res := e.Sweep()

	assert.Equal(t, base.Add(-Window), res.Cutoff)
	assert.Equal(t, 1, res.StartedEvicted)
	assert.Equal(t, 1, res.StoppedEvicted)
	assert.Equal(t, Summary{StartedCount: 1, TotalCount: 1}, e.Summary())
}

func TestEngineSweepIsIdempotent(t *testing.T) {
	e := newTestEngine(t, base)
	for i := 0; i < 10; i++ {
		e.RecordStarted(base.Add(-time.Duration(i*10) * time.Second))
		e.RecordStopped(base.Add(-time.Duration(i*10) * time.Second))
	}

	e.Sweep()
	first := e.Summary()
	res := e.Sweep()
	second := e.Summary()

	assert.Equal(t, first, second)
	assert.Zero(t, res.StartedEvicted)
	assert.Zero(t, res.StoppedEvicted)
}

func TestEngineMonotonicEviction(t *testing.T) {
	e := newTestEngine(t, base)
	cutoff := base.Add(-Window)
	for i := 5; i > 0; i-- {
		e.RecordStopped(cutoff.Add(-time.Duration(i) * time.Second))
	}
	e.SweepBefore(cutoff)
	assert.Equal(t, 0, e.Summary().StoppedCount)

	for i := 5; i > 0; i-- {
		e.RecordStopped(cutoff.Add(-time.Duration(i) * time.Second))
	}
	e.RecordStopped(base)
	e.SweepBefore(cutoff)
	assert.Equal(t, 1, e.Summary().StoppedCount)
}

func TestEngineConcurrentRecordsAreNotLost(t *testing.T) {
	e := newTestEngine(t, base)
	const workers = 200

	var wg sync.WaitGroup
	start := make(chan struct{})
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			e.RecordStarted(time.Now())
		}()
	}
	close(start)
	wg.Wait()

	assert.Equal(t, workers, e.Summary().StartedCount)
	assert.Equal(t, workers, e.Summary().TotalCount)
}

func TestEngineRecordZeroTimePanics(t *testing.T) {
	e := newTestEngine(t, base)
	assert.Panics(t, func() { e.RecordStarted(time.Time{}) })
	assert.Panics(t, func() { e.RecordStopped(time.Time{}) })
}
