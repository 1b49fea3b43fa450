// Package metrics provides a minimal instrumentation surface with a no-op
// default and an optional Prometheus-backed implementation enabled via env.
package metrics

import (
	"sync"
	"time"

	"github.com/caseworks/entitygraph/internal/util"
)

// Recorder defines the metrics surface used across the engine.
type Recorder interface {
	IncResolutionTotal(outcome string)
	IncScreeningTotal(hits int)
	ObserveBatchRun(seconds float64, comparisons, matches int)
}

type noopRecorder struct{}

func (n *noopRecorder) IncResolutionTotal(string)         {}
func (n *noopRecorder) IncScreeningTotal(int)             {}
func (n *noopRecorder) ObserveBatchRun(float64, int, int) {}

var (
	recMu    sync.RWMutex
	recorder Recorder = &noopRecorder{}
)

// Default returns the current recorder.
func Default() Recorder {
	recMu.RLock()
	defer recMu.RUnlock()
	return recorder
}

// SetRecorder swaps the global recorder implementation.
func SetRecorder(r Recorder) {
	recMu.Lock()
	defer recMu.Unlock()
	recorder = r
}

// TimeBatch returns a closure that records a batch deduplication run when
// invoked with its final counters.
func TimeBatch() func(comparisons, matches int) {
	start := time.Now()
	return func(comparisons, matches int) {
		Default().ObserveBatchRun(time.Since(start).Seconds(), comparisons, matches)
	}
}

// InitFromEnv installs the Prometheus recorder and starts its scrape
// endpoint when METRICS_PROMETHEUS=true. METRICS_ADDR overrides the
// default listen address of :9090.
func InitFromEnv() {
	if !util.GetEnvBool("METRICS_PROMETHEUS", false) {
		return
	}
	addr := util.GetEnvString("METRICS_ADDR", ":9090")
	enablePrometheus(addr)
}
