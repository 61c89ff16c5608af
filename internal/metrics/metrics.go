package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "stakescope"

// Reject reasons reported by RecordRejected.
const (
	ReasonNotDecodable = "not_decodable"
	ReasonUnknownPlan  = "unknown_plan"
)

// Recorder holds the pipeline collectors on its own registry.
type Recorder struct {
	registry *prometheus.Registry

	pages         *prometheus.CounterVec
	records       prometheus.Counter
	decoded       prometheus.Counter
	rejected      *prometheus.CounterVec
	fetchFailures prometheus.Counter
	runs          *prometheus.CounterVec
	runDuration   prometheus.Histogram
	notStaked     prometheus.Gauge
}

// NewRecorder registers every collector on a fresh registry.
func NewRecorder() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		pages: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "pages_total",
			Help:      "Log pages requested, by outcome.",
		}, []string{"outcome"}),
		records: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "records_fetched_total",
			Help:      "Raw log records received.",
		}),
		decoded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_decoded_total",
			Help:      "Stake events decoded with a known plan.",
		}),
		rejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_rejected_total",
			Help:      "Log records dropped during decoding, by reason.",
		}, []string{"reason"}),
		fetchFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fetch_failures_total",
			Help:      "Runs whose pagination ended on a failure.",
		}),
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "runs_total",
			Help:      "Pipeline runs, by result.",
		}, []string{"result"}),
		runDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "run_duration_seconds",
			Help:      "Wall time of a pipeline run.",
			Buckets:   prometheus.ExponentialBuckets(0.25, 2, 10),
		}),
		notStaked: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "wallets_not_staked",
			Help:      "Wallet-set members with no stake in the last run.",
		}),
	}

	r.registry.MustRegister(
		r.pages,
		r.records,
		r.decoded,
		r.rejected,
		r.fetchFailures,
		r.runs,
		r.runDuration,
		r.notStaked,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return r
}

// Handler serves the registry in the Prometheus text format.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}

// ObservePage matches indexer.PageObserver.
func (r *Recorder) ObservePage(page, records int, err error) {
	if r == nil {
		return
	}
	if err != nil {
		r.pages.WithLabelValues("error").Inc()
		return
	}
	r.pages.WithLabelValues("ok").Inc()
	r.records.Add(float64(records))
}

// RecordDecoded counts one successfully decoded stake.
func (r *Recorder) RecordDecoded() {
	if r == nil {
		return
	}
	r.decoded.Inc()
}

// RecordRejected counts one dropped record.
func (r *Recorder) RecordRejected(reason string) {
	if r == nil {
		return
	}
	r.rejected.WithLabelValues(reason).Inc()
}

// RecordRun records the outcome of a finished run.
func (r *Recorder) RecordRun(elapsed time.Duration, partial bool, notStaked int, err error) {
	if r == nil {
		return
	}
	r.runDuration.Observe(elapsed.Seconds())
	switch {
	case err != nil:
		r.runs.WithLabelValues("error").Inc()
		return
	case partial:
		r.runs.WithLabelValues("partial").Inc()
		r.fetchFailures.Inc()
	default:
		r.runs.WithLabelValues("complete").Inc()
	}
	r.notStaked.Set(float64(notStaked))
}
