package metrics

import (
	"net/http"

	"github.com/caseworks/entitygraph/pkg/logger"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type promRecorder struct {
	resolutions *prometheus.CounterVec
	screenHits  prometheus.Counter
	screenRuns  prometheus.Counter
	batchSecs   prometheus.Histogram
	comparisons prometheus.Counter
	matches     prometheus.Counter
}

func newPromRecorder() *promRecorder {
	return &promRecorder{
		resolutions: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "entitygraph_resolutions_total",
			Help: "Entity resolution calls by outcome (matched/created).",
		}, []string{"outcome"}),
		screenRuns: promauto.NewCounter(prometheus.CounterOpts{
			Name: "entitygraph_screenings_total",
			Help: "Screening calls against the reference list.",
		}),
		screenHits: promauto.NewCounter(prometheus.CounterOpts{
			Name: "entitygraph_screening_hits_total",
			Help: "Screening hits at or above the possible tier.",
		}),
		batchSecs: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "entitygraph_batch_dedupe_seconds",
			Help:    "Wall time of batch deduplication runs.",
			Buckets: prometheus.ExponentialBuckets(0.01, 4, 8),
		}),
		comparisons: promauto.NewCounter(prometheus.CounterOpts{
			Name: "entitygraph_batch_comparisons_total",
			Help: "Candidate pairs considered by batch deduplication.",
		}),
		matches: promauto.NewCounter(prometheus.CounterOpts{
			Name: "entitygraph_batch_matches_total",
			Help: "Pairs retained above threshold by batch deduplication.",
		}),
	}
}

func (p *promRecorder) IncResolutionTotal(outcome string) {
	p.resolutions.WithLabelValues(outcome).Inc()
}

func (p *promRecorder) IncScreeningTotal(hits int) {
	p.screenRuns.Inc()
	p.screenHits.Add(float64(hits))
}

func (p *promRecorder) ObserveBatchRun(seconds float64, comparisons, matches int) {
	p.batchSecs.Observe(seconds)
	p.comparisons.Add(float64(comparisons))
	p.matches.Add(float64(matches))
}

func enablePrometheus(addr string) {
	SetRecorder(newPromRecorder())

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	go func() {
		logger.Info("[Metrics] Prometheus endpoint listening", "addr", addr)
		if err := http.ListenAndServe(addr, mux); err != nil {
			logger.Error("[Metrics] Scrape endpoint stopped", "err", err)
		}
	}()
}
