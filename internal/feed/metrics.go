package feed

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	loadsCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "stableops",
		Subsystem: "feed",
		Name:      "loads_total",
		Help:      "Number of feed loads grouped by outcome (ready, partial).",
	}, []string{"result"})

	sourceFailureCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "stableops",
		Subsystem: "feed",
		Name:      "source_failures_total",
		Help:      "Number of fetch failures per feed source.",
	}, []string{"source"})

	loadDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "stableops",
		Subsystem: "feed",
		Name:      "load_duration_seconds",
		Help:      "Time spent fetching and merging both feed sources.",
		Buckets:   prometheus.ExponentialBuckets(0.005, 2, 12),
	})
)

func init() {
	prometheus.MustRegister(loadsCounter, sourceFailureCounter, loadDuration)
}

func recordLoad(result string, started time.Time) {
	loadsCounter.WithLabelValues(result).Inc()
	loadDuration.Observe(time.Since(started).Seconds())
}

func recordSourceFailure(source string) {
	sourceFailureCounter.WithLabelValues(source).Inc()
}
