// Package analytics is the event funnel sink: discrete named events with
// optional numeric measures, formatted to the structured log and counted in
// Prometheus. The event taxonomy is owned by the emitters.
package analytics

import (
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Sink logs and counts analytics events.
type Sink struct {
	logger *slog.Logger
	events *prometheus.CounterVec
}

// NewSink creates a sink registering its counters with reg.
func NewSink(logger *slog.Logger, reg prometheus.Registerer) *Sink {
	if logger == nil {
		logger = slog.Default()
	}

	return &Sink{
		logger: logger,
		events: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "description_publisher_events_total",
			Help: "Count of analytics events by name.",
		}, []string{"event"}),
	}
}

// Event records one named event. Measures are optional and attached to the
// log record as attributes.
func (s *Sink) Event(name string, measures map[string]float64) {
	s.events.WithLabelValues(name).Inc()

	attrs := make([]any, 0, 2+2*len(measures))
	attrs = append(attrs, "event", name)
	for key, value := range measures {
		attrs = append(attrs, key, value)
	}
	s.logger.Info("analytics event", attrs...)
}
