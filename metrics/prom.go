package metrics

import (
	"errors"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// PromRecorder records schedule refreshes and queries in Prometheus metrics.
type PromRecorder struct {
	refreshes *prometheus.CounterVec
	latency   prometheus.Histogram
	queries   *prometheus.CounterVec
}

// NewPromRecorder registers metrics on the default Prometheus registerer.
func NewPromRecorder() (*PromRecorder, error) {
	return NewPromRecorderWithRegistry(prometheus.DefaultRegisterer)
}

// NewPromRecorderWithRegistry registers metrics on the provided registerer.
// A nil registerer defaults to the global Prometheus registerer.
func NewPromRecorderWithRegistry(reg prometheus.Registerer) (*PromRecorder, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	refreshes := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "schedule_refreshes_total",
		Help: "Schedule document refreshes by result",
	}, []string{"success"})
	latency := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "schedule_refresh_duration_seconds",
		Help:    "Time to download and parse the schedule document",
		Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
	})
	queries := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "schedule_queries_total",
		Help: "Schedule queries by outcome",
	}, []string{"outcome"})

	var err error
	if refreshes, err = register(reg, refreshes); err != nil {
		return nil, err
	}
	if latency, err = register(reg, latency); err != nil {
		return nil, err
	}
	if queries, err = register(reg, queries); err != nil {
		return nil, err
	}
	return &PromRecorder{refreshes: refreshes, latency: latency, queries: queries}, nil
}

// register returns the already registered collector when one exists.
func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		return c, err
	}
	return c, nil
}

// ObserveRefresh counts a refresh attempt and records its duration.
func (r *PromRecorder) ObserveRefresh(ok bool, d time.Duration) {
	r.refreshes.WithLabelValues(strconv.FormatBool(ok)).Inc()
	r.latency.Observe(d.Seconds())
}

// ObserveQuery counts a schedule query by outcome.
func (r *PromRecorder) ObserveQuery(outcome string) {
	r.queries.WithLabelValues(outcome).Inc()
}
