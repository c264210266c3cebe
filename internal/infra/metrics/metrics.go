package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics счётчики исходов посещений и уведомлений.
type Metrics struct {
	outcomes      *prometheus.CounterVec
	notifications *prometheus.CounterVec
}

// MustNew регистрирует коллекторы в reg (nil = DefaultRegisterer).
// Повторная регистрация в том же реестре паникует.
func MustNew(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	m := &Metrics{
		outcomes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "fitclub",
				Subsystem: "attendance",
				Name:      "outcomes_total",
				Help:      "Attendance operations by operation and outcome.",
			},
			[]string{"operation", "outcome"},
		),
		notifications: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "fitclub",
				Name:      "notifications_total",
				Help:      "Low balance notifications by delivery result.",
			},
			[]string{"result"},
		),
	}
	reg.MustRegister(m.outcomes, m.notifications)
	return m
}

func (m *Metrics) ObserveOutcome(operation, outcome string) {
	m.outcomes.WithLabelValues(operation, outcome).Inc()
}

func (m *Metrics) ObserveNotification(result string) {
	m.notifications.WithLabelValues(result).Inc()
}
