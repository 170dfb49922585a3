// Package metrics implements the counters and gauges every session and
// event loop may be bound to. Exporting them over HTTP is left to an
// external collaborator; this package only maintains the values using
// prometheus/client_golang collectors.
package metrics

import "github.com/prometheus/client_golang/prometheus"

// SessionMetrics is the set of counters/gauges one session binds to:
// messages_sent, messages_received, heartbeats_sent, heartbeats_received,
// rejects, disconnects as counters; state, seq numbers, queue depth as
// gauges.
type SessionMetrics struct {
	MessagesSent       prometheus.Counter
	MessagesReceived   prometheus.Counter
	HeartbeatsSent     prometheus.Counter
	HeartbeatsReceived prometheus.Counter
	Rejects            prometheus.Counter
	Disconnects        prometheus.Counter

	State       prometheus.Gauge
	OutboundSeq prometheus.Gauge
	InboundSeq  prometheus.Gauge
	QueueDepth  prometheus.Gauge
}

// Registry creates and registers SessionMetrics per session id, using one
// prometheus.Registry per process so the core never assumes the global
// default registry belongs to it (the admin/export collaborator decides
// where these ultimately get served from).
type Registry struct {
	reg *prometheus.Registry
}

// NewRegistry returns an empty metrics registry.
func NewRegistry() *Registry {
	return &Registry{reg: prometheus.NewRegistry()}
}

// Prometheus exposes the underlying *prometheus.Registry so the admin
// collaborator can wire its own HTTP export without this package knowing
// about HTTP at all.
func (r *Registry) Prometheus() *prometheus.Registry { return r.reg }

// ForSession creates and registers a SessionMetrics for the given session
// id. Calling it twice for the same id panics, matching
// prometheus.Registry's own duplicate-registration behavior, since a
// session id must be unique for the metrics to mean anything.
func (r *Registry) ForSession(sessionID string) *SessionMetrics {
	labels := prometheus.Labels{"session": sessionID}
	m := &SessionMetrics{
		MessagesSent: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "xconnect_messages_sent_total", ConstLabels: labels,
		}),
		MessagesReceived: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "xconnect_messages_received_total", ConstLabels: labels,
		}),
		HeartbeatsSent: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "xconnect_heartbeats_sent_total", ConstLabels: labels,
		}),
		HeartbeatsReceived: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "xconnect_heartbeats_received_total", ConstLabels: labels,
		}),
		Rejects: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "xconnect_rejects_total", ConstLabels: labels,
		}),
		Disconnects: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "xconnect_disconnects_total", ConstLabels: labels,
		}),
		State: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "xconnect_session_state", ConstLabels: labels,
		}),
		OutboundSeq: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "xconnect_outbound_seq", ConstLabels: labels,
		}),
		InboundSeq: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "xconnect_inbound_seq", ConstLabels: labels,
		}),
		QueueDepth: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "xconnect_queue_depth", ConstLabels: labels,
		}),
	}
	r.reg.MustRegister(
		m.MessagesSent, m.MessagesReceived, m.HeartbeatsSent, m.HeartbeatsReceived,
		m.Rejects, m.Disconnects, m.State, m.OutboundSeq, m.InboundSeq, m.QueueDepth,
	)
	return m
}
