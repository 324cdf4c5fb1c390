package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWorkflowMetrics_Registers(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewWorkflowMetrics(reg)

	m.PollAttempts.WithLabelValues(OutcomeNotReady).Inc()
	m.PollAttempts.WithLabelValues(OutcomeNotReady).Inc()
	m.Resolutions.Inc()

	assert.Equal(t, 2.0, testutil.ToFloat64(m.PollAttempts.WithLabelValues(OutcomeNotReady)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Resolutions))

	families, err := reg.Gather()
	require.NoError(t, err)
	names := make([]string, 0, len(families))
	for _, f := range families {
		names = append(names, f.GetName())
	}
	assert.Contains(t, names, "meeting_transcriber_poll_attempts_total")
	assert.Contains(t, names, "meeting_transcriber_transcripts_resolved_total")
}

func TestNewWorkflowMetrics_Unregistered(t *testing.T) {
	assert.NotPanics(t, func() {
		NewWorkflowMetrics(nil)
		NewWorkflowMetrics(nil)
	})
}

func TestNewBrokerMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewBrokerMetrics(reg)
	m.Issued.WithLabelValues("success").Inc()

	assert.Equal(t, 1, testutil.CollectAndCount(m.Issued))
	assert.Panics(t, func() { NewBrokerMetrics(reg) }, "double registration is a programming error")
}
