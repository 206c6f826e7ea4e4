// Package metrics exports monitor activity as Prometheus metrics.
//
// A Metrics value subscribes to a monitor's wildcard topic and records every
// published event:
//
//   - vissense_events_total{topic} - events published, per topic
//   - vissense_samples_total{state} - samples taken, per resulting state
//   - vissense_visible_percentage{monitor} - last sampled percentage
//   - vissense_monitors_started - monitors currently started
//
// Attach monitors before starting them so the started gauge stays balanced.
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/vissense/vissense-go/pkg/monitor"
	"github.com/vissense/vissense-go/pkg/pubsub"
)

var (
	globalMetrics *Metrics
	metricsOnce   sync.Once
)

// Metrics holds Prometheus metrics for visibility monitors.
type Metrics struct {
	EventsTotal       *prometheus.CounterVec
	SamplesTotal      *prometheus.CounterVec
	VisiblePercentage *prometheus.GaugeVec
	MonitorsStarted   prometheus.Gauge
}

// NewMetrics returns the process-wide metrics registered with the default
// registry. Registration happens once; later calls return the same value.
func NewMetrics() *Metrics {
	metricsOnce.Do(func() {
		globalMetrics = NewMetricsWith(prometheus.DefaultRegisterer)
	})
	return globalMetrics
}

// NewMetricsWith creates metrics registered with reg. A nil reg creates
// unregistered metrics.
func NewMetricsWith(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		EventsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "vissense_events_total",
				Help: "Total number of monitor events published",
			},
			[]string{"topic"},
		),

		SamplesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "vissense_samples_total",
				Help: "Total number of visibility samples by resulting state",
			},
			[]string{"state"}, // "hidden", "visible", "fullyvisible"
		),

		VisiblePercentage: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "vissense_visible_percentage",
				Help: "Visible fraction of the monitored element at the last sample",
			},
			[]string{"monitor"},
		),

		MonitorsStarted: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "vissense_monitors_started",
				Help: "Number of monitors currently started",
			},
		),
	}
}

// Observe records one monitor event.
func (m *Metrics) Observe(ev monitor.Event) {
	m.EventsTotal.WithLabelValues(ev.Topic.String()).Inc()

	switch ev.Topic {
	case monitor.TopicUpdate:
		if ev.State == nil {
			return
		}
		m.SamplesTotal.WithLabelValues(ev.State.Code.String()).Inc()
		if ev.Monitor != nil {
			m.VisiblePercentage.WithLabelValues(ev.Monitor.ID()).Set(ev.Percentage)
		}
	case monitor.TopicStart:
		m.MonitorsStarted.Inc()
	case monitor.TopicStop:
		m.MonitorsStarted.Dec()
	}
}

// Attach subscribes to every topic of mon. The returned unregister also
// drops the monitor's percentage series.
func (m *Metrics) Attach(mon *monitor.Monitor) pubsub.Unregister {
	off := mon.On(monitor.TopicAny, m.Observe)
	id := mon.ID()
	return func() bool {
		if !off() {
			return false
		}
		m.VisiblePercentage.DeleteLabelValues(id)
		return true
	}
}
