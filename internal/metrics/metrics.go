// Package metrics exposes Prometheus instruments for grouping runs.
package metrics

import (
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	OutcomeSuccess = "success"
	OutcomeCycle   = "cycle"
	OutcomeInvalid = "invalid"
	OutcomeError   = "error"

	KindAggregate  = "aggregate"
	KindStandalone = "standalone"
)

// Recorder groups the instruments of one process. A nil *Recorder records
// nothing.
type Recorder struct {
	runs     *prometheus.CounterVec
	units    *prometheus.CounterVec
	duration prometheus.Histogram
	assets   prometheus.Histogram
}

// New creates the instruments and registers them with reg. Instruments that
// reg already holds are reused.
func New(reg prometheus.Registerer) (*Recorder, error) {
	var (
		r   Recorder
		err error
	)
	r.runs, err = register(reg, prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bundlegrid_runs_total",
			Help: "Number of grouping runs by outcome.",
		},
		[]string{"outcome"},
	))
	if err != nil {
		return nil, err
	}
	r.units, err = register(reg, prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bundlegrid_units_total",
			Help: "Number of delivery units produced, by kind.",
		},
		[]string{"kind"},
	))
	if err != nil {
		return nil, err
	}
	r.duration, err = register(reg, prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "bundlegrid_run_duration_seconds",
			Help:    "Time taken to compute a plan.",
			Buckets: prometheus.DefBuckets,
		},
	))
	if err != nil {
		return nil, err
	}
	r.assets, err = register(reg, prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "bundlegrid_run_assets",
			Help:    "Number of assets in the working set of a run.",
			Buckets: prometheus.ExponentialBuckets(1, 4, 8),
		},
	))
	if err != nil {
		return nil, err
	}
	return &r, nil
}

func register[T prometheus.Collector](reg prometheus.Registerer, c T) (T, error) {
	if err := reg.Register(c); err != nil {
		var already prometheus.AlreadyRegisteredError
		if errors.As(err, &already) {
			if existing, ok := already.ExistingCollector.(T); ok {
				return existing, nil
			}
		}
		var zero T
		return zero, fmt.Errorf("metrics: register: %w", err)
	}
	return c, nil
}

// ObserveRun records one finished run.
func (r *Recorder) ObserveRun(outcome string, took time.Duration, assets int) {
	if r == nil {
		return
	}
	r.runs.WithLabelValues(outcome).Inc()
	r.duration.Observe(took.Seconds())
	r.assets.Observe(float64(assets))
}

// ObserveUnits records the units of a successful run.
func (r *Recorder) ObserveUnits(aggregates, standalone int) {
	if r == nil {
		return
	}
	r.units.WithLabelValues(KindAggregate).Add(float64(aggregates))
	r.units.WithLabelValues(KindStandalone).Add(float64(standalone))
}
