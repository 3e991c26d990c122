package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	log "github.com/sirupsen/logrus"
)

var (
	EventsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "portools",
			Subsystem: "stream",
			Name:      "events_total",
			Help:      "Change events received, by operation and outcome",
		},
		[]string{"operation", "outcome"},
	)

	ViewWriteFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "portools",
			Subsystem: "stream",
			Name:      "view_write_failures_total",
			Help:      "Derived views that could not be computed or persisted",
		},
		[]string{"view"},
	)

	CheckpointFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "portools",
			Subsystem: "stream",
			Name:      "checkpoint_failures_total",
			Help:      "Resume token writes that failed",
		},
	)

	PipelineState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "portools",
			Subsystem: "stream",
			Name:      "state",
			Help:      "1 for the state the pipeline is currently in, 0 otherwise",
		},
		[]string{"consumer", "state"},
	)

	StageDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "portools",
			Subsystem: "stream",
			Name:      "stage_duration_seconds",
			Help:      "Time spent per pipeline stage",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
		},
		[]string{"stage"},
	)

	UploadsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "portools",
			Subsystem: "api",
			Name:      "portfolio_uploads_total",
			Help:      "Portfolio uploads by response status",
		},
		[]string{"status"},
	)
)

// TrackTime records how long stage took since start. Use with defer.
func TrackTime(stage string, start time.Time) {
	elapsed := time.Since(start)
	StageDuration.WithLabelValues(stage).Observe(elapsed.Seconds())
	log.Debugf("%s took %d ms", stage, elapsed.Milliseconds())
}
