package prometheus

import (
	"strconv"
	"time"

	apperrors "github.com/turtacn/simheat/pkg/errors"
)

// AppMetrics holds all application metrics.
type AppMetrics struct {
	// HTTP layer
	HTTPRequestsTotal   CounterVec
	HTTPRequestDuration HistogramVec
	HTTPActiveRequests  GaugeVec

	// Report parsing
	ReportsParsedTotal  CounterVec
	ReportParseDuration HistogramVec
	MatrixAtoms         HistogramVec
	MissingCellsTotal   CounterVec

	// Rendering
	HeatmapsRenderedTotal CounterVec
	RenderDuration        HistogramVec
	HeatmapBytes          HistogramVec

	// Infrastructure
	CacheHitsTotal       CounterVec
	CacheMissesTotal     CounterVec
	ArtifactUploadsTotal CounterVec
	EventsPublishedTotal CounterVec
	WatchTriggersTotal   CounterVec
	ErrorsTotal          CounterVec
}

var (
	DefaultHTTPDurationBuckets   = []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10}
	DefaultRenderDurationBuckets = []float64{.01, .05, .1, .25, .5, 1, 2.5, 5, 10, 30}
	DefaultAtomBuckets           = []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000}
	DefaultSizeBuckets           = []float64{1e3, 1e4, 1e5, 1e6, 1e7, 1e8}
)

// NewAppMetrics registers all metrics and returns the AppMetrics struct.
func NewAppMetrics(collector MetricsCollector) *AppMetrics {
	m := &AppMetrics{}

	m.HTTPRequestsTotal = collector.RegisterCounter("http_requests_total", "Total HTTP requests", "method", "path", "status_code")
	m.HTTPRequestDuration = collector.RegisterHistogram("http_request_duration_seconds", "HTTP request duration", DefaultHTTPDurationBuckets, "method", "path")
	m.HTTPActiveRequests = collector.RegisterGauge("http_active_requests", "Active HTTP requests", "method")

	m.ReportsParsedTotal = collector.RegisterCounter("reports_parsed_total", "Reports parsed", "kind", "status")
	m.ReportParseDuration = collector.RegisterHistogram("report_parse_duration_seconds", "Report parse duration", DefaultHTTPDurationBuckets, "kind")
	m.MatrixAtoms = collector.RegisterHistogram("matrix_atoms", "Atom count of parsed reports", DefaultAtomBuckets, "kind")
	m.MissingCellsTotal = collector.RegisterCounter("missing_cells_total", "Similarity cells reported as missing", "dataset")

	m.HeatmapsRenderedTotal = collector.RegisterCounter("heatmaps_rendered_total", "Heatmaps rendered", "format", "status")
	m.RenderDuration = collector.RegisterHistogram("render_duration_seconds", "Heatmap render and encode duration", DefaultRenderDurationBuckets, "format")
	m.HeatmapBytes = collector.RegisterHistogram("heatmap_bytes", "Encoded heatmap size", DefaultSizeBuckets, "format")

	m.CacheHitsTotal = collector.RegisterCounter("cache_hits_total", "Cache hits", "cache")
	m.CacheMissesTotal = collector.RegisterCounter("cache_misses_total", "Cache misses", "cache")
	m.ArtifactUploadsTotal = collector.RegisterCounter("artifact_uploads_total", "Heatmap uploads to object storage", "status")
	m.EventsPublishedTotal = collector.RegisterCounter("events_published_total", "Render events published", "topic", "status")
	m.WatchTriggersTotal = collector.RegisterCounter("watch_triggers_total", "Re-renders triggered by file changes", "dataset")
	m.ErrorsTotal = collector.RegisterCounter("errors_total", "Total errors", "component", "code")

	return m
}

func status(err error) string {
	if err != nil {
		return "failure"
	}
	return "success"
}

// The Record helpers accept a nil *AppMetrics so callers can run without
// metrics configured.

func RecordHTTPRequest(m *AppMetrics, method, path string, statusCode int, duration time.Duration) {
	if m == nil {
		return
	}
	m.HTTPRequestsTotal.WithLabelValues(method, path, strconv.Itoa(statusCode)).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

func RecordReportParse(m *AppMetrics, kind string, atoms int, duration time.Duration, err error) {
	if m == nil {
		return
	}
	m.ReportsParsedTotal.WithLabelValues(kind, status(err)).Inc()
	m.ReportParseDuration.WithLabelValues(kind).Observe(duration.Seconds())
	if err == nil {
		m.MatrixAtoms.WithLabelValues(kind).Observe(float64(atoms))
	}
}

func RecordRender(m *AppMetrics, format string, bytes int, duration time.Duration, err error) {
	if m == nil {
		return
	}
	m.HeatmapsRenderedTotal.WithLabelValues(format, status(err)).Inc()
	m.RenderDuration.WithLabelValues(format).Observe(duration.Seconds())
	if err == nil {
		m.HeatmapBytes.WithLabelValues(format).Observe(float64(bytes))
	}
}

func RecordMissingCells(m *AppMetrics, dataset string, missing int) {
	if m == nil || missing == 0 {
		return
	}
	m.MissingCellsTotal.WithLabelValues(dataset).Add(float64(missing))
}

func RecordCacheAccess(m *AppMetrics, cache string, hit bool) {
	if m == nil {
		return
	}
	if hit {
		m.CacheHitsTotal.WithLabelValues(cache).Inc()
	} else {
		m.CacheMissesTotal.WithLabelValues(cache).Inc()
	}
}

func RecordUpload(m *AppMetrics, err error) {
	if m == nil {
		return
	}
	m.ArtifactUploadsTotal.WithLabelValues(status(err)).Inc()
}

func RecordEvent(m *AppMetrics, topic string, err error) {
	if m == nil {
		return
	}
	m.EventsPublishedTotal.WithLabelValues(topic, status(err)).Inc()
}

func RecordWatchTrigger(m *AppMetrics, dataset string) {
	if m == nil {
		return
	}
	m.WatchTriggersTotal.WithLabelValues(dataset).Inc()
}

// RecordError counts err under its application error code.
func RecordError(m *AppMetrics, component string, err error) {
	if m == nil || err == nil {
		return
	}
	m.ErrorsTotal.WithLabelValues(component, apperrors.GetCode(err).String()).Inc()
}

//Personal.AI order the ending
