package timeline

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/grafana/tracetiming/pkg/util"
)

type metrics struct {
	threads    *prometheus.CounterVec
	intervals  *prometheus.CounterVec
	violations prometheus.Counter
	duration   *prometheus.HistogramVec
	cache      *prometheus.CounterVec
}

func newMetrics(reg prometheus.Registerer) *metrics {
	m := &metrics{
		threads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "tracetiming_threads_processed_total",
			Help: "Total number of trace threads processed.",
		}, []string{"mode", "status"}),
		intervals: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "tracetiming_intervals_total",
			Help: "Total number of intervals paired, by completeness.",
		}, []string{"complete"}),
		violations: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "tracetiming_nesting_violations_total",
			Help: "Total number of threads rejected because their intervals do not nest.",
		}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "tracetiming_thread_processing_duration_seconds",
			Help:    "Time spent processing a single thread.",
			Buckets: prometheus.ExponentialBuckets(0.0001, 4, 10),
		}, []string{"mode"}),
		cache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "tracetiming_cache_requests_total",
			Help: "Total number of thread result cache lookups.",
		}, []string{"result"}),
	}

	m.threads = util.RegisterOrGet(reg, m.threads)
	m.intervals = util.RegisterOrGet(reg, m.intervals)
	m.violations = util.RegisterOrGet(reg, m.violations)
	m.duration = util.RegisterOrGet(reg, m.duration)
	m.cache = util.RegisterOrGet(reg, m.cache)
	return m
}
