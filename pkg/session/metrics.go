package session

import (
	"github.com/ha1tch/automata/pkg/automaton"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics counts session activity. A nil *Metrics records nothing.
type Metrics struct {
	edits       *prometheus.CounterVec
	simulations *prometheus.CounterVec
	diagnostics *prometheus.GaugeVec
}

// NewMetrics creates the session collectors and registers them on reg.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		edits: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "automata",
				Subsystem: "session",
				Name:      "edits_total",
				Help:      "Total number of applied automaton mutations",
			},
			[]string{"op"},
		),
		simulations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "automata",
				Name:      "simulations_total",
				Help:      "Total number of test-string runs",
			},
			[]string{"result"},
		),
		diagnostics: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: "automata",
				Name:      "diagnostics",
				Help:      "Diagnostics reported by the last validation",
			},
			[]string{"severity"},
		),
	}

	for _, c := range []prometheus.Collector{m.edits, m.simulations, m.diagnostics} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *Metrics) recordEdit(op automaton.Op) {
	if m == nil {
		return
	}
	m.edits.WithLabelValues(string(op)).Inc()
}

func (m *Metrics) recordSimulation(res automaton.Result) {
	if m == nil {
		return
	}
	result := "rejected"
	if res.Accepted {
		result = "accepted"
	}
	m.simulations.WithLabelValues(result).Inc()
}

func (m *Metrics) recordDiagnostics(diags []automaton.Diagnostic) {
	if m == nil {
		return
	}
	var errs, warns int
	for _, d := range diags {
		switch d.Severity {
		case automaton.SeverityError:
			errs++
		case automaton.SeverityWarning:
			warns++
		}
	}
	m.diagnostics.WithLabelValues(automaton.SeverityError.String()).Set(float64(errs))
	m.diagnostics.WithLabelValues(automaton.SeverityWarning.String()).Set(float64(warns))
}
