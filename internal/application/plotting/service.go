// Package plotting provides the application-level service that turns a pair
// of analysis reports into an annotated heatmap. It sits between the CLI and
// HTTP interfaces and the report and heatmap domain packages, and drives the
// optional cache, artifact storage and event backends.
package plotting

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/turtacn/simheat/internal/config"
	"github.com/turtacn/simheat/internal/domain/heatmap"
	"github.com/turtacn/simheat/internal/domain/report"
	"github.com/turtacn/simheat/internal/infrastructure/messaging/kafka"
	"github.com/turtacn/simheat/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/simheat/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/simheat/internal/infrastructure/storage/minio"
	"github.com/turtacn/simheat/pkg/errors"
)

// symmetryEpsilon is the tolerance used when reporting whether a matrix is
// symmetric.
const symmetryEpsilon = 1e-9

// Service defines the plotting operations used by the interfaces layer.
type Service interface {
	RenderDataset(ctx context.Context, ds Dataset) (*Result, error)
	RenderAll(ctx context.Context, datasets []Dataset) ([]*Result, error)
	RenderReports(ctx context.Context, req *RenderRequest) ([]byte, error)
	InspectSimilarity(ctx context.Context, path string) (*SimilaritySummary, error)
	InspectPattern(ctx context.Context, path string) (*PatternSummary, error)
}

// ReportCache memoises parsed reports by content.
type ReportCache interface {
	Similarity(ctx context.Context, content []byte, parse func() (*report.SimilarityMatrix, error)) (*report.SimilarityMatrix, bool, error)
	Patterns(ctx context.Context, content []byte, parse func() (*report.AtomLabelSet, error)) (*report.AtomLabelSet, bool, error)
}

// ArtifactStore keeps a copy of every rendered image.
type ArtifactStore interface {
	Upload(ctx context.Context, a *minio.Artifact) (*minio.UploadResult, error)
}

// EventPublisher announces finished renders.
type EventPublisher interface {
	PublishRendered(ctx context.Context, payload kafka.HeatmapRenderedPayload) error
}

// Dependencies are the collaborators of the service. Only Logger is
// required; nil backends are skipped.
type Dependencies struct {
	Cache   ReportCache
	Store   ArtifactStore
	Events  EventPublisher
	Metrics *prometheus.AppMetrics
	Logger  logging.Logger
}

// Dataset names one similarity/pattern report pair and where its heatmap goes.
type Dataset struct {
	Name           string  `json:"name"`
	SimilarityPath string  `json:"similarity"`
	PatternPath    string  `json:"pattern"`
	FigureSize     float64 `json:"figure_size"`
	DPI            float64 `json:"dpi"`
	Output         string  `json:"output"`
	Title          string  `json:"title,omitempty"`
}

// RenderRequest is an in-memory render of uploaded report contents.
type RenderRequest struct {
	Name       string
	Similarity []byte
	Pattern    []byte
	Format     heatmap.Format
	FigureSize float64
	DPI        float64
	Title      string
	// Rotation overrides the x tick label rotation when set.
	Rotation *float64
}

// Result describes one rendered dataset.
type Result struct {
	Dataset   string         `json:"dataset"`
	Output    string         `json:"output"`
	Format    heatmap.Format `json:"format"`
	Atoms     int            `json:"atoms"`
	Bytes     int            `json:"bytes"`
	Missing   int            `json:"missing"`
	Symmetric bool           `json:"symmetric"`
	ObjectKey string         `json:"object_key,omitempty"`
	URL       string         `json:"url,omitempty"`
	Duration  time.Duration  `json:"duration"`
}

// SimilaritySummary describes a parsed similarity report.
type SimilaritySummary struct {
	Path      string                   `json:"path"`
	Atoms     int                      `json:"atoms"`
	Missing   int                      `json:"missing"`
	Min       float64                  `json:"min"`
	Max       float64                  `json:"max"`
	Symmetric bool                     `json:"symmetric"`
	Matrix    *report.SimilarityMatrix `json:"matrix"`
}

// PatternSummary describes a parsed pattern report.
type PatternSummary struct {
	Path      string               `json:"path"`
	Atoms     int                  `json:"atoms"`
	Labels    *report.AtomLabelSet `json:"labels"`
	Abundance []report.NameCount   `json:"abundance"`
}

// serviceImpl implements the Service interface.
type serviceImpl struct {
	parser   *report.Parser
	renderer *heatmap.Renderer
	format   heatmap.Format
	dpi      float64

	cache   ReportCache
	store   ArtifactStore
	events  EventPublisher
	metrics *prometheus.AppMetrics
	logger  logging.Logger
}

// NewService builds the plotting service from the render and report sections
// of cfg.
func NewService(cfg *config.Config, deps Dependencies) (Service, error) {
	if cfg == nil {
		return nil, errors.New(errors.ErrCodeConfigInvalid, "config is required")
	}
	parser, err := report.NewParser(LayoutFromConfig(cfg.Report))
	if err != nil {
		return nil, err
	}
	style, err := StyleFromConfig(cfg.Render)
	if err != nil {
		return nil, err
	}
	renderer, err := heatmap.NewRenderer(style)
	if err != nil {
		return nil, err
	}
	format, err := heatmap.ParseFormat(cfg.Render.Format)
	if err != nil {
		return nil, err
	}
	logger := deps.Logger
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &serviceImpl{
		parser:   parser,
		renderer: renderer,
		format:   format,
		dpi:      cfg.Render.DPI,
		cache:    deps.Cache,
		store:    deps.Store,
		events:   deps.Events,
		metrics:  deps.Metrics,
		logger:   logger.Named("plotting"),
	}, nil
}

// RenderDataset reads both reports of ds, renders the heatmap and writes it
// to ds.Output. The output extension selects the image format.
func (s *serviceImpl) RenderDataset(ctx context.Context, ds Dataset) (*Result, error) {
	start := time.Now()
	log := s.logger.With(logging.String("dataset", ds.Name))

	res, err := s.renderDataset(ctx, ds, log, start)
	if err != nil {
		prometheus.RecordError(s.metrics, "plotting", err)
		log.Error("Render failed", logging.Err(err), logging.Code(err))
		return nil, err
	}
	log.Info("Heatmap rendered",
		logging.String("output", res.Output),
		logging.Int("atoms", res.Atoms),
		logging.Int("bytes", res.Bytes),
		logging.Duration("duration", res.Duration))
	return res, nil
}

func (s *serviceImpl) renderDataset(ctx context.Context, ds Dataset, log logging.Logger, start time.Time) (*Result, error) {
	if err := validateDataset(ds); err != nil {
		return nil, err
	}
	format, err := heatmap.FormatFromPath(ds.Output)
	if err != nil {
		return nil, err
	}
	dpi := ds.DPI
	if dpi == 0 {
		dpi = s.dpi
	}

	simContent, err := readReport(ds.SimilarityPath, "similarity")
	if err != nil {
		return nil, err
	}
	patContent, err := readReport(ds.PatternPath, "pattern")
	if err != nil {
		return nil, err
	}
	m, labels, err := s.load(ctx, ds.Name, simContent, patContent)
	if err != nil {
		return nil, err
	}
	prometheus.RecordMissingCells(s.metrics, ds.Name, m.Missing())
	if m.Missing() > 0 {
		log.Debug("Similarity report has missing scores", logging.Int("missing", m.Missing()))
	}

	data, err := s.draw(m, labels.Names(), ds.FigureSize, dpi, ds.Title, format, nil)
	if err != nil {
		return nil, err
	}
	if err := writeOutput(ds.Output, data); err != nil {
		return nil, err
	}

	res := &Result{
		Dataset:   ds.Name,
		Output:    ds.Output,
		Format:    format,
		Atoms:     m.Size(),
		Bytes:     len(data),
		Missing:   m.Missing(),
		Symmetric: m.IsSymmetric(symmetryEpsilon),
	}

	if s.store != nil {
		up, err := s.store.Upload(ctx, &minio.Artifact{
			Dataset:     ds.Name,
			Format:      string(format),
			ContentType: format.ContentType(),
			Data:        data,
			Metadata: map[string]string{
				"atoms":  strconv.Itoa(res.Atoms),
				"source": filepath.Base(ds.SimilarityPath),
			},
		})
		prometheus.RecordUpload(s.metrics, err)
		if err != nil {
			return nil, err
		}
		res.ObjectKey = up.ObjectKey
		res.URL = up.URL
	}

	res.Duration = time.Since(start)
	s.publish(ctx, res, log)
	return res, nil
}

// publish announces res; a failed publish is logged but does not fail the
// render, since the image is already on disk.
func (s *serviceImpl) publish(ctx context.Context, res *Result, log logging.Logger) {
	if s.events == nil {
		return
	}
	err := s.events.PublishRendered(ctx, kafka.HeatmapRenderedPayload{
		Dataset:    res.Dataset,
		Output:     res.Output,
		Format:     string(res.Format),
		Atoms:      res.Atoms,
		Bytes:      res.Bytes,
		Missing:    res.Missing,
		Symmetric:  res.Symmetric,
		ObjectKey:  res.ObjectKey,
		URL:        res.URL,
		DurationMs: res.Duration.Milliseconds(),
		RenderedAt: time.Now().UTC(),
	})
	prometheus.RecordEvent(s.metrics, kafka.TopicHeatmapRendered, err)
	if err != nil {
		log.Warn("Render event not published", logging.Err(err))
	}
}

// RenderAll renders datasets in order and stops at the first failure. The
// results of the datasets rendered before the failure are returned with it.
func (s *serviceImpl) RenderAll(ctx context.Context, datasets []Dataset) ([]*Result, error) {
	results := make([]*Result, 0, len(datasets))
	for _, ds := range datasets {
		if err := ctx.Err(); err != nil {
			return results, errors.Wrap(err, errors.ErrCodeTimeout, "batch cancelled")
		}
		res, err := s.RenderDataset(ctx, ds)
		if err != nil {
			return results, err
		}
		results = append(results, res)
	}
	return results, nil
}

// RenderReports renders uploaded report contents and returns the encoded
// image without touching the filesystem.
func (s *serviceImpl) RenderReports(ctx context.Context, req *RenderRequest) ([]byte, error) {
	if req == nil || len(req.Similarity) == 0 || len(req.Pattern) == 0 {
		return nil, errors.New(errors.ErrCodeBadRequest, "similarity and pattern reports are required")
	}
	if !(req.FigureSize > 0) {
		return nil, errors.Newf(errors.ErrCodeFigureInvalid, "figure size must be positive, got %g", req.FigureSize)
	}
	format := req.Format
	if format == "" {
		format = s.format
	}
	dpi := req.DPI
	if dpi == 0 {
		dpi = s.dpi
	}

	start := time.Now()
	m, labels, err := s.load(ctx, req.Name, req.Similarity, req.Pattern)
	if err != nil {
		prometheus.RecordError(s.metrics, "plotting", err)
		return nil, err
	}
	var opts []heatmap.Option
	if req.Rotation != nil {
		opts = append(opts, heatmap.WithLabelRotation(*req.Rotation))
	}
	data, err := s.draw(m, labels.Names(), req.FigureSize, dpi, req.Title, format, opts)
	if err != nil {
		prometheus.RecordError(s.metrics, "plotting", err)
		return nil, err
	}
	s.logger.Debug("Uploaded reports rendered",
		logging.Int("atoms", m.Size()),
		logging.String("format", string(format)),
		logging.Duration("duration", time.Since(start)))
	return data, nil
}

// InspectSimilarity parses a similarity report and summarises it.
func (s *serviceImpl) InspectSimilarity(ctx context.Context, path string) (*SimilaritySummary, error) {
	content, err := readReport(path, "similarity")
	if err != nil {
		return nil, err
	}
	m, err := s.similarity(ctx, content)
	if err != nil {
		return nil, err
	}
	return &SimilaritySummary{
		Path:      path,
		Atoms:     m.Size(),
		Missing:   m.Missing(),
		Min:       m.Min(),
		Max:       m.Max(),
		Symmetric: m.IsSymmetric(symmetryEpsilon),
		Matrix:    m,
	}, nil
}

// InspectPattern parses a pattern report and summarises it.
func (s *serviceImpl) InspectPattern(ctx context.Context, path string) (*PatternSummary, error) {
	content, err := readReport(path, "pattern")
	if err != nil {
		return nil, err
	}
	set, err := s.patterns(ctx, content)
	if err != nil {
		return nil, err
	}
	return &PatternSummary{
		Path:      path,
		Atoms:     set.Len(),
		Labels:    set,
		Abundance: set.Abundance(),
	}, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Internal helpers
// ─────────────────────────────────────────────────────────────────────────────

// load parses both reports and checks that there is one label per row.
func (s *serviceImpl) load(ctx context.Context, name string, simContent, patContent []byte) (*report.SimilarityMatrix, *report.AtomLabelSet, error) {
	m, err := s.similarity(ctx, simContent)
	if err != nil {
		return nil, nil, err
	}
	labels, err := s.patterns(ctx, patContent)
	if err != nil {
		return nil, nil, err
	}
	if labels.Len() != m.Size() {
		return nil, nil, errors.Newf(errors.ErrCodeLabelCountMismatch,
			"pattern report lists %d atoms but the similarity matrix is %d×%d", labels.Len(), m.Size(), m.Size()).
			WithDetail(name)
	}
	return m, labels, nil
}

func (s *serviceImpl) similarity(ctx context.Context, content []byte) (*report.SimilarityMatrix, error) {
	parse := func() (*report.SimilarityMatrix, error) {
		start := time.Now()
		m, err := s.parser.ParseSimilarity(bytes.NewReader(content))
		atoms := 0
		if m != nil {
			atoms = m.Size()
		}
		prometheus.RecordReportParse(s.metrics, "similarity", atoms, time.Since(start), err)
		return m, err
	}
	if s.cache == nil {
		return parse()
	}
	m, hit, err := s.cache.Similarity(ctx, content, parse)
	if err != nil {
		return nil, err
	}
	prometheus.RecordCacheAccess(s.metrics, "similarity", hit)
	return m, nil
}

func (s *serviceImpl) patterns(ctx context.Context, content []byte) (*report.AtomLabelSet, error) {
	parse := func() (*report.AtomLabelSet, error) {
		start := time.Now()
		set, err := s.parser.ParsePattern(bytes.NewReader(content))
		atoms := 0
		if set != nil {
			atoms = set.Len()
		}
		prometheus.RecordReportParse(s.metrics, "pattern", atoms, time.Since(start), err)
		return set, err
	}
	if s.cache == nil {
		return parse()
	}
	set, hit, err := s.cache.Patterns(ctx, content, parse)
	if err != nil {
		return nil, err
	}
	prometheus.RecordCacheAccess(s.metrics, "pattern", hit)
	return set, nil
}

// draw renders m into a square figure and encodes it.
func (s *serviceImpl) draw(m *report.SimilarityMatrix, labels []string, size, dpi float64, title string, format heatmap.Format, opts []heatmap.Option) ([]byte, error) {
	start := time.Now()
	fig, err := heatmap.NewFigure(size, size, dpi)
	if err != nil {
		return nil, err
	}
	fig.Title = title
	if err := s.renderer.Render(fig, m, labels, opts...); err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	err = fig.Encode(&buf, format)
	prometheus.RecordRender(s.metrics, string(format), buf.Len(), time.Since(start), err)
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func validateDataset(ds Dataset) error {
	switch {
	case ds.Name == "":
		return errors.New(errors.ErrCodeValidation, "dataset name is required")
	case ds.SimilarityPath == "" || ds.PatternPath == "":
		return errors.New(errors.ErrCodeValidation, "similarity and pattern paths are required").WithDetail(ds.Name)
	case ds.Output == "":
		return errors.New(errors.ErrCodeValidation, "output path is required").WithDetail(ds.Name)
	case !(ds.FigureSize > 0):
		return errors.Newf(errors.ErrCodeFigureInvalid, "figure size must be positive, got %g", ds.FigureSize).WithDetail(ds.Name)
	}
	return nil
}

func readReport(path, kind string) ([]byte, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrCodeReportReadFailed, "read %s report", kind).WithDetail(path)
	}
	return content, nil
}

// writeOutput creates path (and its directory) and writes data to it. The
// close error is reported when the write itself succeeded.
func writeOutput(path string, data []byte) (err error) {
	if dir := filepath.Dir(path); dir != "." {
		if mkErr := os.MkdirAll(dir, 0o755); mkErr != nil {
			return errors.Wrap(mkErr, errors.ErrCodeOutputWriteFailed, "create output directory").WithDetail(dir)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeOutputWriteFailed, "create output").WithDetail(path)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = errors.Wrap(cerr, errors.ErrCodeOutputWriteFailed, "close output").WithDetail(path)
		}
	}()
	if _, err := f.Write(data); err != nil {
		return errors.Wrap(err, errors.ErrCodeOutputWriteFailed, "write output").WithDetail(path)
	}
	return nil
}

//Personal.AI order the ending
