package prometheus

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/simheat/internal/infrastructure/monitoring/logging"
)

func newTestCollector(t *testing.T) MetricsCollector {
	t.Helper()
	c, err := NewMetricsCollector(CollectorConfig{
		Namespace: "test",
		Subsystem: "unit",
	}, logging.NewNopLogger())
	require.NoError(t, err)
	return c
}

func scrapeMetrics(t *testing.T, collector MetricsCollector) string {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	w := httptest.NewRecorder()
	collector.Handler().ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	return w.Body.String()
}

// metricValue sums the samples of a counter, gauge or histogram (sample
// count) whose labels include every pair in want.
func metricValue(t *testing.T, collector MetricsCollector, name string, want map[string]string) float64 {
	t.Helper()
	families, err := collector.Gatherer().Gather()
	require.NoError(t, err)

	var total float64
	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
		for _, m := range mf.GetMetric() {
			if !labelsMatch(m.GetLabel(), want) {
				continue
			}
			switch {
			case m.Counter != nil:
				total += m.GetCounter().GetValue()
			case m.Gauge != nil:
				total += m.GetGauge().GetValue()
			case m.Histogram != nil:
				total += float64(m.GetHistogram().GetSampleCount())
			}
		}
	}
	return total
}

func labelsMatch(pairs []*dto.LabelPair, want map[string]string) bool {
	got := make(map[string]string, len(pairs))
	for _, p := range pairs {
		got[p.GetName()] = p.GetValue()
	}
	for k, v := range want {
		if got[k] != v {
			return false
		}
	}
	return true
}

func TestNewMetricsCollector_EmptyNamespace(t *testing.T) {
	t.Parallel()
	_, err := NewMetricsCollector(CollectorConfig{Subsystem: "unit"}, nil)
	assert.Error(t, err)
}

func TestNewMetricsCollector_WithProcessMetrics(t *testing.T) {
	t.Parallel()
	c, err := NewMetricsCollector(CollectorConfig{
		Namespace:            "test",
		EnableProcessMetrics: true,
		EnableGoMetrics:      true,
	}, logging.NewNopLogger())
	require.NoError(t, err)
	output := scrapeMetrics(t, c)
	assert.Contains(t, output, "go_goroutines")
}

func TestRegisterCounter_WithLabels(t *testing.T) {
	t.Parallel()
	c := newTestCollector(t)
	c.RegisterCounter("renders", "Renders", "format").WithLabelValues("png").Add(5)

	assert.Equal(t, 5.0, metricValue(t, c, "test_unit_renders", map[string]string{"format": "png"}))
	assert.Contains(t, scrapeMetrics(t, c), `test_unit_renders{format="png"} 5`)
}

func TestRegisterCounter_DuplicateSharesVector(t *testing.T) {
	t.Parallel()
	c := newTestCollector(t)
	c.RegisterCounter("dup_counter", "help").WithLabelValues().Inc()
	c.RegisterCounter("dup_counter", "help").WithLabelValues().Inc()

	assert.Equal(t, 2.0, metricValue(t, c, "test_unit_dup_counter", nil))
}

func TestRegisterGauge(t *testing.T) {
	t.Parallel()
	c := newTestCollector(t)
	g := c.RegisterGauge("in_flight", "In flight").WithLabelValues()
	g.Set(10)
	g.Inc()
	g.Dec()
	g.Dec()

	assert.Equal(t, 9.0, metricValue(t, c, "test_unit_in_flight", nil))
}

func TestRegisterHistogram_DefaultBuckets(t *testing.T) {
	t.Parallel()
	c := newTestCollector(t)
	c.RegisterHistogram("latency", "Latency", nil).WithLabelValues().Observe(0.1)

	assert.Contains(t, scrapeMetrics(t, c), "test_unit_latency_bucket")
	assert.Equal(t, 1.0, metricValue(t, c, "test_unit_latency", nil))
}

func TestTimer_ObserveDuration(t *testing.T) {
	t.Parallel()
	c := newTestCollector(t)
	timer := NewTimer(c.RegisterHistogram("timer", "Timer", nil).WithLabelValues())
	time.Sleep(5 * time.Millisecond)
	d := timer.ObserveDuration()

	assert.GreaterOrEqual(t, d, 5*time.Millisecond)
	assert.Equal(t, 1.0, metricValue(t, c, "test_unit_timer", nil))
}

func TestTimer_NilHistogram(t *testing.T) {
	t.Parallel()
	assert.NotPanics(t, func() { NewTimer(nil).ObserveDuration() })
}

func TestConcurrentRegistration(t *testing.T) {
	t.Parallel()
	c := newTestCollector(t)
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.RegisterCounter("concurrent", "help", "id").WithLabelValues("1").Inc()
		}()
	}
	wg.Wait()

	assert.Equal(t, 50.0, metricValue(t, c, "test_unit_concurrent", map[string]string{"id": "1"}))
}

func TestTypeConflictFallsBackToNoop(t *testing.T) {
	t.Parallel()
	c := newTestCollector(t)
	c.RegisterCounter("conflict", "help").WithLabelValues().Inc()

	g := c.RegisterGauge("conflict", "help")
	assert.NotPanics(t, func() { g.WithLabelValues().Set(10) })

	assert.Contains(t, scrapeMetrics(t, c), "# TYPE test_unit_conflict counter")
}

//Personal.AI order the ending
