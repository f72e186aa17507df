package metrics

import (
	"sync"
	"time"
)

// testRecorder counts calls; used to verify Recorder wiring from other tests in this package.
type testRecorder struct {
	mu          sync.Mutex
	pageQueries map[bool]int
	durations   int
	routes      int
	outcomes    map[OutcomeLabel]int
}

func newTestRecorder() *testRecorder {
	return &testRecorder{pageQueries: map[bool]int{}, outcomes: map[OutcomeLabel]int{}}
}

func (t *testRecorder) ObservePageQuery(_ time.Duration, success bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.pageQueries[success]++
}

func (t *testRecorder) ObserveCollectionDuration(time.Duration) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.durations++
}

func (t *testRecorder) SetRoutesCollected(n int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.routes = n
}

func (t *testRecorder) IncCollectionOutcome(outcome OutcomeLabel) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.outcomes[outcome]++
}

var (
	_ Recorder = (*testRecorder)(nil)
	_ Recorder = NoopRecorder{}
	_ Recorder = (*PrometheusRecorder)(nil)
)
