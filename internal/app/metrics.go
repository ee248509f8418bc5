package app

import (
	"io"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
	"go.uber.org/multierr"

	"rtcports/internal/types"
)

const (
	resultOK    = "ok"
	resultError = "error"
)

// Metrics counts port operations. Each service gets its own registry. A nil
// *Metrics records nothing.
type Metrics struct {
	registry    *prometheus.Registry
	connects    *prometheus.CounterVec
	disconnects *prometheus.CounterVec
	parses      prometheus.Counter
}

func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		connects: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rtcports_connect_total",
				Help: "Connect attempts by source port kind and result",
			},
			[]string{"kind", "result"},
		),
		disconnects: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rtcports_disconnect_total",
				Help: "Disconnect attempts by result",
			},
			[]string{"result"},
		),
		parses: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "rtcports_port_parse_total",
			Help: "Ports built by the port factory from a remote profile",
		}),
	}
	m.registry.MustRegister(m.connects, m.disconnects, m.parses)
	return m
}

func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

func resultLabel(err error) string {
	if err != nil {
		return resultError
	}
	return resultOK
}

func (m *Metrics) observeConnect(kind types.PortKind, err error) {
	if m == nil {
		return
	}
	m.connects.WithLabelValues(string(kind), resultLabel(err)).Inc()
}

func (m *Metrics) observeDisconnect(err error) {
	if m == nil {
		return
	}
	m.disconnects.WithLabelValues(resultLabel(err)).Inc()
}

func (m *Metrics) observeParse() {
	if m == nil {
		return
	}
	m.parses.Inc()
}

// WriteText writes every metric in the Prometheus text format.
func (m *Metrics) WriteText(w io.Writer) error {
	if m == nil {
		return nil
	}
	families, err := m.registry.Gather()
	if err != nil {
		return err
	}
	var errs error
	for _, family := range families {
		if _, err := expfmt.MetricFamilyToText(w, family); err != nil {
			errs = multierr.Append(errs, err)
		}
	}
	return errs
}
