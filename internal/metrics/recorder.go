package metrics

import "time"

// OutcomeLabel enumerates route collection outcomes for counters.
type OutcomeLabel string

const (
	OutcomeSuccess  OutcomeLabel = "success"
	OutcomeFailed   OutcomeLabel = "failed"
	OutcomeCanceled OutcomeLabel = "canceled"
)

// Recorder defines observability hooks for route collection. Implementations
// may forward to Prometheus, OpenTelemetry, etc.
type Recorder interface {
	ObservePageQuery(d time.Duration, success bool)
	ObserveCollectionDuration(d time.Duration)
	SetRoutesCollected(n int)
	IncCollectionOutcome(outcome OutcomeLabel)
}

// NoopRecorder is a Recorder that does nothing (default when metrics not configured).
type NoopRecorder struct{}

func (NoopRecorder) ObservePageQuery(time.Duration, bool)    {}
func (NoopRecorder) ObserveCollectionDuration(time.Duration) {}
func (NoopRecorder) SetRoutesCollected(int)                  {}
func (NoopRecorder) IncCollectionOutcome(OutcomeLabel)       {}
