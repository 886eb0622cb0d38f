package heatmap

import (
	"fmt"
	"image/color"

	"github.com/turtacn/simheat/pkg/errors"
)

// Matrix is the read-only view of a square score table the renderer needs.
type Matrix interface {
	Size() int
	At(row, col int) (float64, error)
	Max() float64
	Min() float64
}

// Style holds the rendering parameters.
type Style struct {
	Palette        string
	VMin           float64
	Threshold      float64
	ValueFormat    string
	AnnotationSize float64
	TickSize       float64
	XLabelRotation float64
	YLabelRotation float64
	DarkText       color.Color
	LightText      color.Color
	GridLine       LineStyle
}

// DefaultStyle returns the stock heatmap look.
func DefaultStyle() Style {
	return Style{
		Palette:        DefaultPalette,
		VMin:           0,
		Threshold:      10,
		ValueFormat:    "%.1f",
		AnnotationSize: 5,
		TickSize:       7,
		XLabelRotation: 90,
		YLabelRotation: 0,
		DarkText:       color.Black,
		LightText:      color.White,
		GridLine: LineStyle{
			Color:  color.Black,
			Width:  1,
			Dashes: []float64{3.7, 1.6},
		},
	}
}

// Option adjusts a Style.
type Option func(*Style)

// WithLabelRotation sets the x tick label rotation in degrees.
func WithLabelRotation(deg float64) Option {
	return func(s *Style) { s.XLabelRotation = deg }
}

// WithPalette selects a named palette.
func WithPalette(name string) Option {
	return func(s *Style) { s.Palette = name }
}

// WithThreshold sets the value at and above which annotations use light text.
func WithThreshold(v float64) Option {
	return func(s *Style) { s.Threshold = v }
}

// WithValueFormat sets the fmt verb used for annotations.
func WithValueFormat(format string) Option {
	return func(s *Style) { s.ValueFormat = format }
}

// Renderer draws heatmaps with a fixed Style.
type Renderer struct {
	style   Style
	palette *Palette
}

// NewRenderer validates style and resolves its palette.
func NewRenderer(style Style) (*Renderer, error) {
	p, err := LookupPalette(style.Palette)
	if err != nil {
		return nil, err
	}
	if style.ValueFormat == "" {
		style.ValueFormat = "%.1f"
	}
	if style.AnnotationSize <= 0 || style.TickSize <= 0 {
		return nil, errors.New(errors.ErrCodeValidation, "font sizes must be positive")
	}
	if style.DarkText == nil {
		style.DarkText = color.Black
	}
	if style.LightText == nil {
		style.LightText = color.White
	}
	if style.GridLine.Color == nil {
		style.GridLine.Color = color.Black
	}
	return &Renderer{style: style, palette: p}, nil
}

// Style returns the renderer's style.
func (r *Renderer) Style() Style { return r.style }

// Render draws m onto s: one coloured and annotated cell per entry, dashed
// separators between rows and columns, and one labelled tick per index on
// both axes. labels must hold one entry per row.
func (r *Renderer) Render(s Surface, m Matrix, labels []string, opts ...Option) error {
	style := r.style
	palette := r.palette
	for _, opt := range opts {
		opt(&style)
	}
	if style.Palette != r.style.Palette {
		p, err := LookupPalette(style.Palette)
		if err != nil {
			return err
		}
		palette = p
	}

	if m == nil || m.Size() == 0 {
		return errors.New(errors.ErrCodeMatrixEmpty, "nothing to render")
	}
	n := m.Size()
	if len(labels) != n {
		return errors.Newf(errors.ErrCodeLabelCountMismatch,
			"%d labels for a %d×%d matrix", len(labels), n, n)
	}

	rng := Range{Min: style.VMin, FixMin: true}.Fit(m.Min(), m.Max())

	s.SetShape(n, n)
	for row := 0; row < n; row++ {
		for col := 0; col < n; col++ {
			v, err := m.At(row, col)
			if err != nil {
				return err
			}
			s.Cell(row, col, palette.At(rng.ClipNorm(v)))

			text := style.DarkText
			if v >= style.Threshold {
				text = style.LightText
			}
			s.Annotate(row, col, fmt.Sprintf(style.ValueFormat, v), TextStyle{Color: text, Size: style.AnnotationSize})
		}
	}

	lo, hi := -0.5, float64(n)-0.5
	for k := 1; k < n; k++ {
		edge := float64(k) - 0.5
		s.HLine(edge, lo, hi, style.GridLine)
		s.VLine(edge, lo, hi, style.GridLine)
	}

	ticks := make([]Tick, n)
	for i, label := range labels {
		ticks[i] = Tick{Pos: float64(i), Label: label}
	}
	s.XTicks(ticks, TickStyle{Size: style.TickSize, Rotation: style.XLabelRotation, Color: color.Black})
	s.YTicks(ticks, TickStyle{Size: style.TickSize, Rotation: style.YLabelRotation, Color: color.Black})
	return nil
}

//Personal.AI order the ending
