package rws

import "github.com/prometheus/client_golang/prometheus"

const defaultNamespace = "rws"

// Metrics exposes the reconnect cycle of a Socket to prometheus. A nil
// *Metrics records nothing.
type Metrics struct {
	AttemptsTotal         prometheus.Counter
	Attempt               prometheus.Gauge
	ReconnectsTotal       prometheus.Counter
	GiveUpsTotal          prometheus.Counter
	DisconnectsTotal      prometheus.Counter
	TransportsOpenedTotal prometheus.Counter
}

// NewMetrics creates the socket metrics under namespace (default "rws") and
// registers them with reg when it is not nil.
func NewMetrics(reg prometheus.Registerer, namespace string) *Metrics {
	if namespace == "" {
		namespace = defaultNamespace
	}

	m := &Metrics{
		AttemptsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reconnect_attempts_total",
			Help:      "Total number of reconnect attempts",
		}),
		Attempt: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "reconnect_attempt",
			Help:      "Attempt number of the current retry episode, 0 when connected or idle",
		}),
		ReconnectsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reconnects_total",
			Help:      "Total number of successful reconnects",
		}),
		GiveUpsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "give_ups_total",
			Help:      "Total number of retry episodes abandoned after the time budget elapsed",
		}),
		DisconnectsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "disconnects_total",
			Help:      "Total number of unexpected disconnects",
		}),
		TransportsOpenedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "transports_opened_total",
			Help:      "Total number of transports opened, including the initial one",
		}),
	}

	if reg != nil {
		reg.MustRegister(
			m.AttemptsTotal,
			m.Attempt,
			m.ReconnectsTotal,
			m.GiveUpsTotal,
			m.DisconnectsTotal,
			m.TransportsOpenedTotal,
		)
	}

	return m
}

func (m *Metrics) attempt(n int) {
	if m == nil {
		return
	}
	m.AttemptsTotal.Inc()
	m.Attempt.Set(float64(n))
}

func (m *Metrics) resetAttempt() {
	if m == nil {
		return
	}
	m.Attempt.Set(0)
}

func (m *Metrics) reconnected() {
	if m == nil {
		return
	}
	m.ReconnectsTotal.Inc()
}

func (m *Metrics) gaveUp() {
	if m == nil {
		return
	}
	m.GiveUpsTotal.Inc()
}

func (m *Metrics) disconnected() {
	if m == nil {
		return
	}
	m.DisconnectsTotal.Inc()
}

func (m *Metrics) transportOpened() {
	if m == nil {
		return
	}
	m.TransportsOpenedTotal.Inc()
}
