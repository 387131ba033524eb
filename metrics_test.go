package rws

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_GiveUp(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg, "")
	factory := newFakeFactory(firstOpenThen(Closed))
	_, clk := newTestSocket(t, factory, WithMetrics(m))

	factory.get(0).drop()
	clk.AdvanceTo(20 * ms)
	assert.Equal(t, 2.0, testutil.ToFloat64(m.Attempt))

	clk.AdvanceTo(25 * ms)
	assert.Equal(t, 2.0, testutil.ToFloat64(m.AttemptsTotal))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.Attempt))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.GiveUpsTotal))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.DisconnectsTotal))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.ReconnectsTotal))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.TransportsOpenedTotal))

	families, err := reg.Gather()
	require.NoError(t, err)
	names := make([]string, 0, len(families))
	for _, f := range families {
		names = append(names, f.GetName())
	}
	assert.Contains(t, names, "rws_reconnect_attempts_total")
	assert.Contains(t, names, "rws_give_ups_total")
}

func TestMetrics_Reconnect(t *testing.T) {
	m := NewMetrics(nil, "test")
	factory := newFakeFactory(func(int) ConnState { return Open })
	_, clk := newTestSocket(t, factory, WithMetrics(m))

	factory.get(0).drop()
	clk.AdvanceTo(10 * ms)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.AttemptsTotal))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ReconnectsTotal))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.Attempt))
}

func TestMetrics_NilIsSafe(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.attempt(1)
		m.resetAttempt()
		m.reconnected()
		m.gaveUp()
		m.disconnected()
		m.transportOpened()
	})
}
