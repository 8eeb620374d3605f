package stats

import (
	"time"

	"go.uber.org/zap"
)

// Window is the trailing interval counted by the summary.
const Window = time.Minute

// Kind identifies which event window an entry belongs to.
type Kind string

const (
	KindStarted Kind = "started"
	KindStopped Kind = "stopped"
)

// Summary is the rolling count reported to clients.
type Summary struct {
	StartedCount int `json:"startedCount"`
	StoppedCount int `json:"stoppedCount"`
	TotalCount   int `json:"totalCount"`
}

// SweepResult describes one eviction pass.
type SweepResult struct {
	Cutoff         time.Time
	StartedEvicted int
	StoppedEvicted int
	Duration       time.Duration
}

// Engine counts started and stopped session events over the trailing Window.
// Recording and summary never wait for a sweep to finish; the two windows are independent.
type Engine struct {
	started *EventWindow
	stopped *EventWindow
	now     func() time.Time
	logger  *zap.Logger
}

// Option customises an Engine.
type Option func(*Engine)

// WithClock overrides the wall clock used by Sweep.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		e.now = now
	}
}

// NewEngine builds an engine with empty windows.
func NewEngine(logger *zap.Logger, opts ...Option) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	e := &Engine{
		started: NewEventWindow(),
		stopped: NewEventWindow(),
		now:     time.Now,
		logger:  logger,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// RecordStarted counts a session start at t. A zero t panics.
func (e *Engine) RecordStarted(t time.Time) {
	e.started.Insert(t)
}

// RecordStopped counts a session stop at t. A zero t panics.
func (e *Engine) RecordStopped(t time.Time) {
	e.stopped.Insert(t)
}

// Summary reads both window sizes without evicting. Between sweeps the counts
// may include entries that expired less than one sweep interval ago.
func (e *Engine) Summary() Summary {
	started := e.started.Size()
	stopped := e.stopped.Size()
	return Summary{
		StartedCount: started,
		StoppedCount: stopped,
		TotalCount:   started + stopped,
	}
}

// Sweep evicts everything older than now minus Window from both windows.
func (e *Engine) Sweep() SweepResult {
	return e.SweepBefore(e.now().Add(-Window))
}

// SweepBefore evicts everything strictly older than cutoff from both windows.
func (e *Engine) SweepBefore(cutoff time.Time) SweepResult {
	begin := time.Now()
	res := SweepResult{
		Cutoff:         cutoff,
		StartedEvicted: e.started.EvictOlderThan(cutoff),
		StoppedEvicted: e.stopped.EvictOlderThan(cutoff),
	}
	res.Duration = time.Since(begin)

	if res.StartedEvicted > 0 || res.StoppedEvicted > 0 {
		e.logger.Debug("stats sweep evicted expired events",
			zap.Time("cutoff", cutoff),
			zap.Int("started_evicted", res.StartedEvicted),
			zap.Int("stopped_evicted", res.StoppedEvicted),
			zap.Duration("duration", res.Duration),
		)
	}
	return res
}
