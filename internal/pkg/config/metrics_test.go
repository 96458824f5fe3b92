package config

import (
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfigMetrics_Registration(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewConfigMetrics(reg, "refresher_test")

	assert.Equal(t, "refresher_test", m.Component())

	m.RecordLoadTimestamp()
	m.RecordValidationError("max_notes")
	m.RecordFallback("max_notes", "default")
	m.SetFallbackActive("any", true)

	families, err := reg.Gather()
	require.NoError(t, err)

	names := make([]string, 0, len(families))
	for _, f := range families {
		names = append(names, f.GetName())
	}
	assert.ElementsMatch(t, []string{
		"refresher_test_config_load_timestamp",
		"refresher_test_config_validation_errors_total",
		"refresher_test_config_fallbacks_total",
		"refresher_test_config_fallback_active",
	}, names)
}

func TestNewConfigMetrics_DuplicatePanics(t *testing.T) {
	reg := prometheus.NewRegistry()
	NewConfigMetrics(reg, "dup")

	assert.Panics(t, func() { NewConfigMetrics(reg, "dup") })
}

func TestConfigMetrics_Counters(t *testing.T) {
	m := NewConfigMetrics(prometheus.NewRegistry(), "counters")

	m.RecordValidationError("timezone")
	m.RecordValidationError("timezone")
	m.RecordFallback("cron_schedule", "default")

	assert.Equal(t, float64(2), testutil.ToFloat64(m.ValidationErrorsTotal.WithLabelValues("timezone")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.FallbacksTotal.WithLabelValues("cron_schedule")))
}

func TestConfigMetrics_FallbackActiveToggle(t *testing.T) {
	m := NewConfigMetrics(prometheus.NewRegistry(), "toggle")

	m.SetFallbackActive("any", true)
	assert.Equal(t, float64(1), testutil.ToFloat64(m.FallbackActive))

	m.SetFallbackActive("any", false)
	assert.Equal(t, float64(0), testutil.ToFloat64(m.FallbackActive))
}

func TestConfigMetrics_ConcurrentAccess(t *testing.T) {
	m := NewConfigMetrics(prometheus.NewRegistry(), "concurrent")

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			m.RecordValidationError("field")
			m.RecordFallback("field", "default")
		}()
	}
	wg.Wait()

	assert.Equal(t, float64(20), testutil.ToFloat64(m.ValidationErrorsTotal.WithLabelValues("field")))
	assert.Equal(t, float64(20), testutil.ToFloat64(m.FallbacksTotal.WithLabelValues("field")))
}
