package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	activityPersistGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "stableops",
		Subsystem: "persistence",
		Name:      "last_activity_persisted_timestamp_seconds",
		Help:      "Unix timestamp of the most recent activity persisted to Postgres.",
	})
	routinePersistGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "stableops",
		Subsystem: "persistence",
		Name:      "last_routine_persisted_timestamp_seconds",
		Help:      "Unix timestamp of the most recent routine instance written to Postgres.",
	})
)

func init() {
	prometheus.MustRegister(activityPersistGauge, routinePersistGauge)
}

// RecordActivityPersisted updates the activity persistence watermark gauge.
func RecordActivityPersisted(ts time.Time) {
	if ts.IsZero() {
		return
	}
	activityPersistGauge.Set(float64(ts.Unix()))
}

// RecordRoutinePersisted updates the routine persistence watermark gauge.
func RecordRoutinePersisted(ts time.Time) {
	if ts.IsZero() {
		return
	}
	routinePersistGauge.Set(float64(ts.Unix()))
}
