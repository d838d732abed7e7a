// Package metrics exposes Prometheus collectors for table runs.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder receives run and per-file outcomes.
type Recorder interface {
	RunFinished(outcome string, duration time.Duration)
	FileProcessed(status string)
	FilesExcluded(n int)
	FrequencyMismatches(n int)
}

// Run outcomes.
const (
	OutcomeSuccess     = "success"
	OutcomeNoData      = "no_data"
	OutcomeEmptyResult = "empty_result"
	OutcomeConfigError = "config_error"
)

// File statuses.
const (
	FileOK          = "ok"
	FileParseError  = "parse_error"
	FileConfigError = "config_error"
)

// Prometheus implements Recorder with counters and a duration histogram.
type Prometheus struct {
	runs        *prometheus.CounterVec
	files       *prometheus.CounterVec
	excluded    prometheus.Counter
	mismatches  prometheus.Counter
	runDuration prometheus.Histogram
}

// NewPrometheus registers the collectors on reg.
func NewPrometheus(reg prometheus.Registerer) *Prometheus {
	auto := promauto.With(reg)
	return &Prometheus{
		runs: auto.NewCounterVec(prometheus.CounterOpts{
			Namespace: "sparam",
			Name:      "runs_total",
			Help:      "Table runs by outcome",
		}, []string{"outcome"}),
		files: auto.NewCounterVec(prometheus.CounterOpts{
			Namespace: "sparam",
			Name:      "files_total",
			Help:      "Measurement files processed by status",
		}, []string{"status"}),
		excluded: auto.NewCounter(prometheus.CounterOpts{
			Namespace: "sparam",
			Name:      "files_excluded_total",
			Help:      "Files left out of a table for a frequency point count mismatch",
		}),
		mismatches: auto.NewCounter(prometheus.CounterOpts{
			Namespace: "sparam",
			Name:      "frequency_mismatches_total",
			Help:      "Files whose frequency grid differed from the reference grid",
		}),
		runDuration: auto.NewHistogram(prometheus.HistogramOpts{
			Namespace: "sparam",
			Name:      "run_duration_seconds",
			Help:      "Wall time of a table run",
			Buckets:   prometheus.DefBuckets,
		}),
	}
}

func (p *Prometheus) RunFinished(outcome string, duration time.Duration) {
	p.runs.WithLabelValues(outcome).Inc()
	p.runDuration.Observe(duration.Seconds())
}

func (p *Prometheus) FileProcessed(status string) {
	p.files.WithLabelValues(status).Inc()
}

func (p *Prometheus) FilesExcluded(n int) {
	p.excluded.Add(float64(n))
}

func (p *Prometheus) FrequencyMismatches(n int) {
	p.mismatches.Add(float64(n))
}

// Noop discards everything.
type Noop struct{}

func (Noop) RunFinished(string, time.Duration) {}
func (Noop) FileProcessed(string)              {}
func (Noop) FilesExcluded(int)                 {}
func (Noop) FrequencyMismatches(int)           {}
