package heatmap

import (
	"image/color"
	"io"
	"math"
	"path/filepath"
	"strings"

	"github.com/turtacn/simheat/pkg/errors"
)

// Format is an output encoding.
type Format string

const (
	FormatPNG Format = "png"
	FormatSVG Format = "svg"
)

// ParseFormat accepts "png" or "svg" in any case.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimPrefix(s, "."))) {
	case FormatPNG:
		return FormatPNG, nil
	case FormatSVG:
		return FormatSVG, nil
	}
	return "", errors.Newf(errors.ErrCodeFormatUnsupported, "unsupported output format %q", s)
}

// FormatFromPath derives the format from a file extension.
func FormatFromPath(path string) (Format, error) {
	return ParseFormat(filepath.Ext(path))
}

// ContentType returns the MIME type of the format.
func (f Format) ContentType() string {
	if f == FormatSVG {
		return "image/svg+xml"
	}
	return "image/png"
}

// maxPixels bounds each side of a figure.
const maxPixels = 16384

// Annotation is a text label centred on a cell.
type Annotation struct {
	Row, Col int
	Text     string
	Style    TextStyle
}

// Line is a horizontal or vertical stroke in data coordinates: At is the
// fixed coordinate, From and To the span.
type Line struct {
	At, From, To float64
	Style        LineStyle
}

// Figure is a Surface that keeps a display list and encodes it as an image.
// Sizes are in inches; DPI converts them (and point sizes) to pixels.
type Figure struct {
	Width, Height float64
	DPI           float64
	Background    color.Color
	Title         string
	TitleSize     float64

	rows, cols  int
	cells       []color.Color
	annotations []Annotation
	hlines      []Line
	vlines      []Line
	xticks      []Tick
	yticks      []Tick
	xtickStyle  TickStyle
	ytickStyle  TickStyle
}

// NewFigure returns an empty figure of width×height inches at dpi.
func NewFigure(width, height, dpi float64) (*Figure, error) {
	if !(width > 0) || !(height > 0) || !(dpi > 0) {
		return nil, errors.Newf(errors.ErrCodeFigureInvalid,
			"figure size and dpi must be positive, got %gx%g@%g", width, height, dpi)
	}
	if width*dpi > maxPixels || height*dpi > maxPixels {
		return nil, errors.Newf(errors.ErrCodeFigureInvalid,
			"figure %gx%g@%g exceeds %d pixels per side", width, height, dpi, maxPixels)
	}
	return &Figure{Width: width, Height: height, DPI: dpi, Background: color.White, TitleSize: 12}, nil
}

// PixelSize returns the encoded image size.
func (f *Figure) PixelSize() (int, int) {
	return int(math.Round(f.Width * f.DPI)), int(math.Round(f.Height * f.DPI))
}

// ─────────────────────────────────────────────────────────────────────────────
// Surface implementation
// ─────────────────────────────────────────────────────────────────────────────

// SetShape sizes the cell grid and clears everything drawn so far.
func (f *Figure) SetShape(rows, cols int) {
	f.rows, f.cols = rows, cols
	f.cells = make([]color.Color, rows*cols)
	f.annotations = f.annotations[:0]
	f.hlines, f.vlines = f.hlines[:0], f.vlines[:0]
	f.xticks, f.yticks = nil, nil
}

// Cell fills one cell. Coordinates outside the grid are ignored.
func (f *Figure) Cell(row, col int, fill color.Color) {
	if row < 0 || row >= f.rows || col < 0 || col >= f.cols {
		return
	}
	f.cells[row*f.cols+col] = fill
}

// Annotate centres text on a cell.
func (f *Figure) Annotate(row, col int, text string, style TextStyle) {
	f.annotations = append(f.annotations, Annotation{Row: row, Col: col, Text: text, Style: style})
}

// HLine records a horizontal stroke at data row coordinate y from x0 to x1.
func (f *Figure) HLine(y, x0, x1 float64, style LineStyle) {
	f.hlines = append(f.hlines, Line{At: y, From: x0, To: x1, Style: style})
}

// VLine records a vertical stroke at data column coordinate x from y0 to y1.
func (f *Figure) VLine(x, y0, y1 float64, style LineStyle) {
	f.vlines = append(f.vlines, Line{At: x, From: y0, To: y1, Style: style})
}

// XTicks replaces the x-axis ticks and their label style.
func (f *Figure) XTicks(ticks []Tick, style TickStyle) {
	f.xticks = append([]Tick(nil), ticks...)
	f.xtickStyle = style
}

// YTicks replaces the y-axis ticks and their label style.
func (f *Figure) YTicks(ticks []Tick, style TickStyle) {
	f.yticks = append([]Tick(nil), ticks...)
	f.ytickStyle = style
}

// ─────────────────────────────────────────────────────────────────────────────
// Introspection
// ─────────────────────────────────────────────────────────────────────────────

// Shape returns the grid set by SetShape.
func (f *Figure) Shape() (rows, cols int) { return f.rows, f.cols }

// CellColor returns the fill of a cell, or nil.
func (f *Figure) CellColor(row, col int) color.Color {
	if row < 0 || row >= f.rows || col < 0 || col >= f.cols {
		return nil
	}
	return f.cells[row*f.cols+col]
}

// Annotations returns the cell annotations in drawing order.
func (f *Figure) Annotations() []Annotation { return append([]Annotation(nil), f.annotations...) }

// HLines returns the horizontal separators.
func (f *Figure) HLines() []Line { return append([]Line(nil), f.hlines...) }

// VLines returns the vertical separators.
func (f *Figure) VLines() []Line { return append([]Line(nil), f.vlines...) }

// XTickLabels returns the x-axis tick labels.
func (f *Figure) XTickLabels() []string { return tickLabels(f.xticks) }

// YTickLabels returns the y-axis tick labels.
func (f *Figure) YTickLabels() []string { return tickLabels(f.yticks) }

// XTickStyle returns the style passed with the x ticks.
func (f *Figure) XTickStyle() TickStyle { return f.xtickStyle }

// YTickStyle returns the style passed with the y ticks.
func (f *Figure) YTickStyle() TickStyle { return f.ytickStyle }

func tickLabels(ticks []Tick) []string {
	out := make([]string, len(ticks))
	for i, t := range ticks {
		out[i] = t.Label
	}
	return out
}

// Encode writes the figure in the given format.
func (f *Figure) Encode(w io.Writer, format Format) error {
	switch format {
	case FormatPNG:
		return f.EncodePNG(w)
	case FormatSVG:
		return f.EncodeSVG(w)
	}
	return errors.Newf(errors.ErrCodeFormatUnsupported, "unsupported output format %q", format)
}

// ─────────────────────────────────────────────────────────────────────────────
// Layout
// ─────────────────────────────────────────────────────────────────────────────

const (
	tickLength  = 3.5 // points
	tickPad     = 3.5 // points
	outerMargin = 8   // points
	spineWidth  = 0.8 // points
)

// layout maps data coordinates to pixels. The axes box is square cells,
// centred in the space left after reserving room for the tick labels.
type layout struct {
	ppt           float64
	width, height int
	ax, ay        float64
	aw, ah        float64
	cw, ch        float64
}

func (l layout) x(dataX float64) float64 { return l.ax + (dataX+0.5)*l.cw }
func (l layout) y(dataY float64) float64 { return l.ay + (dataY+0.5)*l.ch }
func (l layout) px(points float64) float64 {
	return points * l.ppt
}

// rotatedBox returns the bounding box size of a w×h box rotated by deg.
func rotatedBox(w, h, deg float64) (float64, float64) {
	rad := deg * math.Pi / 180
	c, s := math.Abs(math.Cos(rad)), math.Abs(math.Sin(rad))
	return w*c + h*s, w*s + h*c
}

func (f *Figure) layout(fc *faceCache) (layout, error) {
	w, h := f.PixelSize()
	l := layout{ppt: f.DPI / 72, width: w, height: h}
	if f.rows == 0 || f.cols == 0 {
		return l, errors.New(errors.ErrCodeMatrixEmpty, "figure has nothing to draw")
	}

	var xLabelH, yLabelW float64
	for _, t := range f.xticks {
		e, err := fc.measure(f.xtickStyle.Size, t.Label)
		if err != nil {
			return l, err
		}
		_, bh := rotatedBox(e.width, e.height(), f.xtickStyle.Rotation)
		xLabelH = math.Max(xLabelH, bh)
	}
	for _, t := range f.yticks {
		e, err := fc.measure(f.ytickStyle.Size, t.Label)
		if err != nil {
			return l, err
		}
		bw, _ := rotatedBox(e.width, e.height(), f.ytickStyle.Rotation)
		yLabelW = math.Max(yLabelW, bw)
	}
	var titleH float64
	if f.Title != "" {
		e, err := fc.measure(f.TitleSize, f.Title)
		if err != nil {
			return l, err
		}
		titleH = e.height() + l.px(tickPad)
	}

	margin := l.px(outerMargin)
	left := margin + yLabelW
	bottom := margin + xLabelH
	if len(f.yticks) > 0 {
		left += l.px(tickLength + tickPad)
	}
	if len(f.xticks) > 0 {
		bottom += l.px(tickLength + tickPad)
	}
	top := margin + titleH
	right := margin

	availW := float64(w) - left - right
	availH := float64(h) - top - bottom
	if availW <= 0 || availH <= 0 {
		return l, errors.Newf(errors.ErrCodeFigureInvalid,
			"tick labels leave no room for a %dx%d grid in a %dx%d px figure", f.rows, f.cols, w, h)
	}
	cell := math.Min(availW/float64(f.cols), availH/float64(f.rows))
	l.cw, l.ch = cell, cell
	l.aw, l.ah = cell*float64(f.cols), cell*float64(f.rows)
	l.ax = left + (availW-l.aw)/2
	l.ay = top + (availH-l.ah)/2
	return l, nil
}

//Personal.AI order the ending
