package plotting

import (
	"github.com/turtacn/simheat/internal/config"
	"github.com/turtacn/simheat/internal/domain/heatmap"
	"github.com/turtacn/simheat/internal/domain/report"
	"github.com/turtacn/simheat/pkg/errors"
)

// LayoutFromConfig converts the report section into a parser layout.
func LayoutFromConfig(rc config.ReportConfig) report.Layout {
	return report.Layout{
		HeaderLines:    rc.HeaderLines,
		SimilaritySkip: rc.SimilaritySkip,
		PatternSkip:    rc.PatternSkip,
		ScoreOffset:    rc.ScoreOffset,
		MissingMarker:  rc.MissingMarker,
		NameStart:      rc.NameStart,
		MaxAtoms:       rc.MaxAtoms,
	}
}

// StyleFromConfig converts the render section into a heatmap style.
func StyleFromConfig(rc config.RenderConfig) (heatmap.Style, error) {
	style := heatmap.DefaultStyle()
	style.Palette = rc.Palette
	style.VMin = rc.VMin
	style.Threshold = rc.Threshold
	style.ValueFormat = rc.ValueFormat
	style.AnnotationSize = rc.AnnotationSize
	style.TickSize = rc.TickSize
	style.XLabelRotation = rc.LabelRotation

	grid, err := heatmap.ParseHexColor(rc.GridLine.Color)
	if err != nil {
		return style, err
	}
	style.GridLine = heatmap.LineStyle{
		Color:  grid,
		Width:  rc.GridLine.Width,
		Dashes: append([]float64(nil), rc.GridLine.Dashes...),
	}
	return style, nil
}

// DatasetFromConfig resolves a configured dataset; a zero dpi falls back to
// the render dpi.
func DatasetFromConfig(ds config.DatasetConfig, rc config.RenderConfig) Dataset {
	dpi := ds.DPI
	if dpi == 0 {
		dpi = rc.DPI
	}
	return Dataset{
		Name:           ds.Name,
		SimilarityPath: ds.Similarity,
		PatternPath:    ds.Pattern,
		FigureSize:     ds.FigureSize,
		DPI:            dpi,
		Output:         ds.Output,
		Title:          ds.Title,
	}
}

// DatasetsFromConfig resolves every configured dataset in order.
func DatasetsFromConfig(cfg *config.Config) []Dataset {
	out := make([]Dataset, 0, len(cfg.Datasets))
	for _, ds := range cfg.Datasets {
		out = append(out, DatasetFromConfig(ds, cfg.Render))
	}
	return out
}

// SelectDatasets returns the named datasets, or all of them when names is
// empty. An unknown name is PLT_008.
func SelectDatasets(cfg *config.Config, names []string) ([]Dataset, error) {
	if len(names) == 0 {
		return DatasetsFromConfig(cfg), nil
	}
	out := make([]Dataset, 0, len(names))
	for _, name := range names {
		ds, ok := cfg.Dataset(name)
		if !ok {
			return nil, errors.Newf(errors.ErrCodeDatasetNotFound, "dataset %q is not configured", name)
		}
		out = append(out, DatasetFromConfig(ds, cfg.Render))
	}
	return out, nil
}

//Personal.AI order the ending
