package prometheus

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/turtacn/simheat/pkg/errors"
)

func newTestAppMetrics(t *testing.T) (*AppMetrics, MetricsCollector) {
	t.Helper()
	c := newTestCollector(t)
	return NewAppMetrics(c), c
}

func TestNewAppMetrics_AllRegistered(t *testing.T) {
	t.Parallel()
	m, _ := newTestAppMetrics(t)
	require.NotNil(t, m)

	assert.NotNil(t, m.HTTPRequestsTotal)
	assert.NotNil(t, m.ReportsParsedTotal)
	assert.NotNil(t, m.HeatmapsRenderedTotal)
	assert.NotNil(t, m.CacheHitsTotal)
	assert.NotNil(t, m.ErrorsTotal)
}

func TestNewAppMetrics_Idempotent(t *testing.T) {
	t.Parallel()
	c := newTestCollector(t)
	assert.NotPanics(t, func() {
		NewAppMetrics(c)
		NewAppMetrics(c)
	})
}

func TestRecordReportParse(t *testing.T) {
	t.Parallel()
	m, c := newTestAppMetrics(t)

	RecordReportParse(m, "similarity", 12, 3*time.Millisecond, nil)
	RecordReportParse(m, "similarity", 0, time.Millisecond, errors.New("boom"))

	assert.Equal(t, 1.0, metricValue(t, c, "test_unit_reports_parsed_total", map[string]string{"kind": "similarity", "status": "success"}))
	assert.Equal(t, 1.0, metricValue(t, c, "test_unit_reports_parsed_total", map[string]string{"kind": "similarity", "status": "failure"}))
	assert.Equal(t, 1.0, metricValue(t, c, "test_unit_matrix_atoms", map[string]string{"kind": "similarity"}))
}

func TestRecordRender(t *testing.T) {
	t.Parallel()
	m, c := newTestAppMetrics(t)

	RecordRender(m, "png", 4096, 20*time.Millisecond, nil)
	RecordRender(m, "svg", 0, time.Millisecond, errors.New("encode"))

	assert.Equal(t, 1.0, metricValue(t, c, "test_unit_heatmaps_rendered_total", map[string]string{"format": "png", "status": "success"}))
	assert.Equal(t, 1.0, metricValue(t, c, "test_unit_heatmaps_rendered_total", map[string]string{"format": "svg", "status": "failure"}))
	assert.Equal(t, 1.0, metricValue(t, c, "test_unit_heatmap_bytes", nil))
}

func TestRecordCacheAccess(t *testing.T) {
	t.Parallel()
	m, c := newTestAppMetrics(t)

	RecordCacheAccess(m, "reports", true)
	RecordCacheAccess(m, "reports", true)
	RecordCacheAccess(m, "reports", false)

	assert.Equal(t, 2.0, metricValue(t, c, "test_unit_cache_hits_total", map[string]string{"cache": "reports"}))
	assert.Equal(t, 1.0, metricValue(t, c, "test_unit_cache_misses_total", map[string]string{"cache": "reports"}))
}

func TestRecordMissingCells_SkipsZero(t *testing.T) {
	t.Parallel()
	m, c := newTestAppMetrics(t)

	RecordMissingCells(m, "co1121", 0)
	RecordMissingCells(m, "co1121", 3)

	assert.Equal(t, 3.0, metricValue(t, c, "test_unit_missing_cells_total", map[string]string{"dataset": "co1121"}))
}

func TestRecordError_UsesAppErrorCode(t *testing.T) {
	t.Parallel()
	m, c := newTestAppMetrics(t)

	RecordError(m, "plotting", apperrors.New(apperrors.ErrCodeLabelCountMismatch, "labels"))
	RecordError(m, "plotting", errors.New("plain"))
	RecordError(m, "plotting", nil)

	assert.Equal(t, 1.0, metricValue(t, c, "test_unit_errors_total", map[string]string{"code": string(apperrors.ErrCodeLabelCountMismatch)}))
	assert.Equal(t, 1.0, metricValue(t, c, "test_unit_errors_total", map[string]string{"code": string(apperrors.CodeUnknown)}))
}

func TestRecordHelpers_NilMetrics(t *testing.T) {
	t.Parallel()
	assert.NotPanics(t, func() {
		RecordHTTPRequest(nil, "GET", "/", 200, time.Millisecond)
		RecordReportParse(nil, "pattern", 1, time.Millisecond, nil)
		RecordRender(nil, "png", 1, time.Millisecond, nil)
		RecordMissingCells(nil, "x", 1)
		RecordCacheAccess(nil, "reports", true)
		RecordUpload(nil, nil)
		RecordEvent(nil, "t", nil)
		RecordWatchTrigger(nil, "x")
		RecordError(nil, "c", errors.New("e"))
	})
}

func TestRecordHTTPRequest(t *testing.T) {
	t.Parallel()
	m, c := newTestAppMetrics(t)

	RecordHTTPRequest(m, "POST", "/api/v1/heatmaps", 201, 10*time.Millisecond)

	assert.Equal(t, 1.0, metricValue(t, c, "test_unit_http_requests_total", map[string]string{"method": "POST", "status_code": "201"}))
}

//Personal.AI order the ending
