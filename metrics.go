package h2mux

import "github.com/prometheus/client_golang/prometheus"

// Metrics bundles the Prometheus collectors this multiplexer reports.
//
// Grounded on Cloudflare's h2mux/activestreammap.go, which registers a
// process-wide `ActiveStreams` gauge alongside its stream map. Unlike
// that package, instances here are per-Mux (not a package-level
// singleton) and registration is left to the caller via Register, so a
// process hosting multiple Mux instances can label them distinctly.
type Metrics struct {
	ActiveStreams         prometheus.Gauge
	BufferedOutboundBytes prometheus.Gauge
	RSTStreamSent         prometheus.Counter
}

// NewMetrics builds a Metrics under the given namespace, with the
// subsystem fixed to "h2mux".
func NewMetrics(namespace string) *Metrics {
	return &Metrics{
		ActiveStreams: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "h2mux",
			Name:      "active_streams",
			Help:      "Number of streams currently tracked by the multiplexer.",
		}),
		BufferedOutboundBytes: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "h2mux",
			Name:      "buffered_outbound_bytes",
			Help:      "Outbound DATA bytes queued in child streams but not yet flushed.",
		}),
		RSTStreamSent: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "h2mux",
			Name:      "rst_stream_sent_total",
			Help:      "Total RST_STREAM frames emitted by the multiplexer.",
		}),
	}
}

// Register registers every collector with reg. A nil Metrics is a no-op,
// mirroring the donor's nil-checked optional-callback style (conn.go's
// onDisconnect).
func (m *Metrics) Register(reg prometheus.Registerer) error {
	if m == nil {
		return nil
	}
	for _, c := range []prometheus.Collector{m.ActiveStreams, m.BufferedOutboundBytes, m.RSTStreamSent} {
		if err := reg.Register(c); err != nil {
			return err
		}
	}
	return nil
}

func (m *Metrics) incStreams() {
	if m != nil {
		m.ActiveStreams.Inc()
	}
}

func (m *Metrics) decStreams() {
	if m != nil {
		m.ActiveStreams.Dec()
	}
}

func (m *Metrics) addBuffered(delta int) {
	if m != nil {
		m.BufferedOutboundBytes.Add(float64(delta))
	}
}

func (m *Metrics) incRST() {
	if m != nil {
		m.RSTStreamSent.Inc()
	}
}
