package transport

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics counts frame traffic. A nil *Metrics records nothing.
type Metrics struct {
	framesSent     prometheus.Counter
	framesReceived prometheus.Counter
	bytesSent      prometheus.Counter
	bytesReceived  prometheus.Counter
	framesRejected prometheus.Counter
	dialRetries    prometheus.Counter
}

// NewMetrics registers the transport collectors with reg, or with
// prometheus.DefaultRegisterer when reg is nil.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)
	counter := func(name, help string) prometheus.Counter {
		return factory.NewCounter(prometheus.CounterOpts{
			Namespace: "uvif",
			Subsystem: "transport",
			Name:      name,
			Help:      help,
		})
	}
	return &Metrics{
		framesSent:     counter("frames_sent_total", "Frames written to peers"),
		framesReceived: counter("frames_received_total", "Frames read from peers"),
		bytesSent:      counter("payload_bytes_sent_total", "Payload bytes written to peers"),
		bytesReceived:  counter("payload_bytes_received_total", "Payload bytes read from peers"),
		framesRejected: counter("frames_rejected_total", "Frames refused for exceeding the size bound"),
		dialRetries:    counter("dial_retries_total", "Failed dial attempts that were retried"),
	}
}

func (m *Metrics) sent(n int) {
	if m == nil {
		return
	}
	m.framesSent.Inc()
	m.bytesSent.Add(float64(n))
}

func (m *Metrics) received(n int) {
	if m == nil {
		return
	}
	m.framesReceived.Inc()
	m.bytesReceived.Add(float64(n))
}

func (m *Metrics) rejected() {
	if m == nil {
		return
	}
	m.framesRejected.Inc()
}

func (m *Metrics) retried() {
	if m == nil {
		return
	}
	m.dialRetries.Inc()
}
