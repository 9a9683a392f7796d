package logging

import (
	"errors"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

const metricsNamespace = "logsink"

// Metrics holds the sink counters. A nil *Metrics is valid and records nothing.
type Metrics struct {
	records     *prometheus.CounterVec
	rotations   *prometheus.CounterVec
	writeErrors *prometheus.CounterVec
}

// NewMetrics creates the counters and registers them on reg. Registering on a
// registry that already holds them reuses the existing collectors.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	records := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: metricsNamespace,
		Name:      "records_total",
		Help:      "Log records written, by sink and level.",
	}, []string{"sink", "level"})
	rotations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: metricsNamespace,
		Name:      "rotations_total",
		Help:      "Completed log file rotations, by sink.",
	}, []string{"sink"})
	writeErrors := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: metricsNamespace,
		Name:      "write_errors_total",
		Help:      "Log records that failed to reach at least one destination, by sink.",
	}, []string{"sink"})

	m := &Metrics{}
	var err error
	if m.records, err = registerCounterVec(reg, records); err != nil {
		return nil, err
	}
	if m.rotations, err = registerCounterVec(reg, rotations); err != nil {
		return nil, err
	}
	if m.writeErrors, err = registerCounterVec(reg, writeErrors); err != nil {
		return nil, err
	}
	return m, nil
}

func registerCounterVec(reg prometheus.Registerer, cv *prometheus.CounterVec) (*prometheus.CounterVec, error) {
	if reg == nil {
		return cv, nil
	}
	if err := reg.Register(cv); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(*prometheus.CounterVec); ok {
				return existing, nil
			}
		}
		return nil, fmt.Errorf("register logsink metrics: %w", err)
	}
	return cv, nil
}

func (m *Metrics) observeRecord(sink string, level Level, err error) {
	if m == nil {
		return
	}
	m.records.WithLabelValues(sink, level.String()).Inc()
	if err != nil {
		m.writeErrors.WithLabelValues(sink).Inc()
	}
}

func (m *Metrics) observeRotation(sink string) {
	if m == nil {
		return
	}
	m.rotations.WithLabelValues(sink).Inc()
}
