package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// ConsumerMetrics records Pub/Sub message handling outcomes.
type ConsumerMetrics struct {
	duration *prometheus.HistogramVec
	handled  *prometheus.CounterVec
}

// NewConsumerMetrics registers the consumer metrics on the provided registerer.
func NewConsumerMetrics(reg prometheus.Registerer) *ConsumerMetrics {
	if reg == nil {
		return &ConsumerMetrics{}
	}
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "consumer_handle_duration_seconds",
		Help:    "Duration of message handling in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"consumer"})
	handled := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "consumer_messages_total",
		Help: "Messages handled, labeled by outcome.",
	}, []string{"consumer", "outcome"})
	reg.MustRegister(duration, handled)
	return &ConsumerMetrics{
		duration: duration,
		handled:  handled,
	}
}

// ObserveHandle records how long the named consumer spent on one message.
func (c *ConsumerMetrics) ObserveHandle(consumer string, duration time.Duration) {
	if c == nil || c.duration == nil {
		return
	}
	c.duration.WithLabelValues(normalizeLabel(consumer)).Observe(duration.Seconds())
}

// IncOutcome increments the message counter for the named consumer and outcome.
func (c *ConsumerMetrics) IncOutcome(consumer, outcome string) {
	if c == nil || c.handled == nil {
		return
	}
	c.handled.WithLabelValues(normalizeLabel(consumer), normalizeLabel(outcome)).Inc()
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
