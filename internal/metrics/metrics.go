package metrics

import (
	"errors"
	"fmt"

	"github.com/demon-soldier/sanctuary-poll/internal/domain/entity"
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "sanctuary_poll"

// Metrics exports trigger and delivery counters to Prometheus.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	checks     *prometheus.CounterVec
	deliveries *prometheus.CounterVec
}

// New registers the bot metrics on reg, reusing collectors that already exist.
func New(reg prometheus.Registerer) (*Metrics, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	m := &Metrics{
		checks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "daily_checks_total",
			Help:      "Daily schedule checks, labelled by whether the weekly poll fired.",
		}, []string{"result"}),
		deliveries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "deliveries_total",
			Help:      "Poll deliveries per platform and outcome.",
		}, []string{"platform", "status"}),
	}

	var err error
	if m.checks, err = register(reg, m.checks); err != nil {
		return nil, err
	}
	if m.deliveries, err = register(reg, m.deliveries); err != nil {
		return nil, err
	}
	return m, nil
}

func register(reg prometheus.Registerer, c *prometheus.CounterVec) (*prometheus.CounterVec, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(*prometheus.CounterVec); ok {
				return existing, nil
			}
		}
		return nil, fmt.Errorf("register metric: %w", err)
	}
	return c, nil
}

func (m *Metrics) RecordCheck(fired bool) {
	if m == nil {
		return
	}
	result := "waiting"
	if fired {
		result = "fired"
	}
	m.checks.WithLabelValues(result).Inc()
}

func (m *Metrics) RecordDelivery(d entity.Delivery) {
	if m == nil {
		return
	}
	m.deliveries.WithLabelValues(string(d.Destination.Platform), string(d.Status)).Inc()
}
