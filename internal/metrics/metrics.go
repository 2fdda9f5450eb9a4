// Package metrics counts store operations and exports them in the
// Prometheus text format for the node_exporter textfile collector.
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	pmerrors "github.com/systmms/passmng/internal/errors"
)

// Result label values.
const (
	ResultSuccess = "success"
	ResultError   = "error"
)

// Recorder records operation outcomes on a private registry.
type Recorder struct {
	registry *prometheus.Registry

	operationsTotal   *prometheus.CounterVec
	operationDuration *prometheus.HistogramVec
}

// New creates a Recorder with its own registry.
func New() *Recorder {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Recorder{
		registry: reg,
		operationsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "passmng_operations_total",
				Help: "Total number of store operations by outcome",
			},
			[]string{"operation", "result"},
		),
		operationDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "passmng_operation_duration_seconds",
				Help:    "Duration of store operations in seconds",
				Buckets: []float64{0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
			},
			[]string{"operation"},
		),
	}
}

// Registry exposes the underlying registry.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// Observe records one operation that started at start and ended with err.
func (r *Recorder) Observe(operation string, start time.Time, err error) {
	result := ResultSuccess
	if err != nil {
		result = ResultError
	}
	r.operationsTotal.WithLabelValues(operation, result).Inc()
	r.operationDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
}

// Track starts timing operation; call the returned func with the outcome.
func (r *Recorder) Track(operation string) func(err error) {
	start := time.Now()
	return func(err error) {
		r.Observe(operation, start, err)
	}
}

// WriteTextfile writes the registry to path. The write goes through a temp
// file and a rename, so a scraper never sees a partial file.
func (r *Recorder) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return fmt.Errorf("%w: write metrics to %s: %v", pmerrors.ErrIO, path, err)
	}
	return nil
}
