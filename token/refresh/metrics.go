package refresh

import "github.com/prometheus/client_golang/prometheus"

const (
	resultOK      = "ok"
	resultInvalid = "invalid"
	resultTheft   = "theft"
)

// Metrics counts family creation and rotation outcomes.
type Metrics struct {
	FamiliesCreated prometheus.Counter
	Rotations       *prometheus.CounterVec
}

// NewMetrics registers the counters with reg. A nil reg leaves them unregistered.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		FamiliesCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "token_families_created_total",
			Help: "Refresh token families created by a successful code exchange.",
		}),
		Rotations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "refresh_rotations_total",
			Help: "Refresh token rotation attempts by result.",
		}, []string{"result"}),
	}
	if reg != nil {
		reg.MustRegister(m.FamiliesCreated, m.Rotations)
	}
	return m
}
