package metrics

import (
	"errors"
	"strings"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/animus-labs/evergreen-matrix/internal/execution/matrix"
)

const namespace = "matrixgen"

// Recorder keeps generation counters on a private registry so a batch run can
// write them to a node_exporter textfile.
type Recorder struct {
	registry   *prometheus.Registry
	candidates *prometheus.CounterVec
	accepted   *prometheus.CounterVec
	rejected   *prometheus.CounterVec
	documentSz prometheus.Gauge
	lastRun    prometheus.Gauge
}

func NewRecorder() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		candidates: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "candidates_total",
			Help:      "Matrix cells enumerated per task family.",
		}, []string{"family"}),
		accepted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tasks_total",
			Help:      "Tasks that survived filtering per task family.",
		}, []string{"family"}),
		rejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rejected_total",
			Help:      "Disallowed candidates per task family and first failing rule.",
		}, []string{"family", "rule"}),
		documentSz: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "document_bytes",
			Help:      "Size of the last rendered configuration document.",
		}),
		lastRun: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_run_timestamp_seconds",
			Help:      "Unix time of the last successful generation.",
		}),
	}
	r.registry.MustRegister(r.candidates, r.accepted, r.rejected, r.documentSz, r.lastRun)
	return r
}

func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

func (r *Recorder) ObserveStats(stats ...matrix.Stats) {
	for _, s := range stats {
		family := string(s.Family)
		r.candidates.WithLabelValues(family).Add(float64(s.Candidates))
		r.accepted.WithLabelValues(family).Add(float64(s.Accepted))
		for rule, n := range s.Rejected {
			r.rejected.WithLabelValues(family, rule).Add(float64(n))
		}
	}
}

func (r *Recorder) ObserveDocument(size int) {
	r.documentSz.Set(float64(size))
	r.lastRun.SetToCurrentTime()
}

// WriteTextfile writes every metric in text exposition format to path.
func (r *Recorder) WriteTextfile(path string) error {
	path = strings.TrimSpace(path)
	if path == "" {
		return errors.New("metrics textfile path is required")
	}
	return prometheus.WriteToTextfile(path, r.registry)
}
