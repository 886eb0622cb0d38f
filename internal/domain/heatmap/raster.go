package heatmap

import (
	"image"
	"image/color"
	"image/png"
	"io"
	"math"

	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/math/f64"
	"golang.org/x/image/math/fixed"

	"github.com/turtacn/simheat/pkg/errors"
)

type hAlign int

const (
	alignLeft hAlign = iota
	alignCenter
	alignRight
)

type vAlign int

const (
	alignTop vAlign = iota
	alignMiddle
	alignBottom
)

// EncodePNG rasterises the figure and writes it as PNG.
func (f *Figure) EncodePNG(w io.Writer) error {
	img, err := f.Rasterize()
	if err != nil {
		return err
	}
	if err := png.Encode(w, img); err != nil {
		return errors.Wrap(err, errors.ErrCodeEncodeFailed, "encode png")
	}
	return nil
}

// Rasterize draws the display list into a new RGBA image.
func (f *Figure) Rasterize() (*image.RGBA, error) {
	fc := newFaceCache(f.DPI)
	defer fc.close()

	l, err := f.layout(fc)
	if err != nil {
		return nil, err
	}
	dst := image.NewRGBA(image.Rect(0, 0, l.width, l.height))
	bg := f.Background
	if bg == nil {
		bg = color.White
	}
	draw.Draw(dst, dst.Bounds(), image.NewUniform(bg), image.Point{}, draw.Src)

	for row := 0; row < f.rows; row++ {
		for col := 0; col < f.cols; col++ {
			c := f.cells[row*f.cols+col]
			if c == nil {
				continue
			}
			r := image.Rect(
				round(l.ax+float64(col)*l.cw), round(l.ay+float64(row)*l.ch),
				round(l.ax+float64(col+1)*l.cw), round(l.ay+float64(row+1)*l.ch),
			)
			draw.Draw(dst, r, image.NewUniform(c), image.Point{}, draw.Src)
		}
	}

	for _, a := range f.annotations {
		face, err := fc.face(a.Style.Size)
		if err != nil {
			return nil, err
		}
		drawText(dst, face, a.Text, a.Style.Color, l.x(float64(a.Col)), l.y(float64(a.Row)), alignCenter, alignMiddle, 0)
	}

	for _, ln := range f.hlines {
		strokeAxisLine(dst, true, l.y(ln.At), l.x(ln.From), l.x(ln.To), ln.Style, l.ppt)
	}
	for _, ln := range f.vlines {
		strokeAxisLine(dst, false, l.x(ln.At), l.y(ln.From), l.y(ln.To), ln.Style, l.ppt)
	}

	spine := LineStyle{Color: color.Black, Width: spineWidth}
	strokeAxisLine(dst, true, l.ay, l.ax, l.ax+l.aw, spine, l.ppt)
	strokeAxisLine(dst, true, l.ay+l.ah, l.ax, l.ax+l.aw, spine, l.ppt)
	strokeAxisLine(dst, false, l.ax, l.ay, l.ay+l.ah, spine, l.ppt)
	strokeAxisLine(dst, false, l.ax+l.aw, l.ay, l.ay+l.ah, spine, l.ppt)

	tick := LineStyle{Color: color.Black, Width: spineWidth}
	if len(f.xticks) > 0 {
		face, err := fc.face(f.xtickStyle.Size)
		if err != nil {
			return nil, err
		}
		base := l.ay + l.ah
		for _, t := range f.xticks {
			x := l.x(t.Pos)
			strokeAxisLine(dst, false, x, base, base+l.px(tickLength), tick, l.ppt)
			drawText(dst, face, t.Label, tickColor(f.xtickStyle), x, base+l.px(tickLength+tickPad),
				alignCenter, alignTop, f.xtickStyle.Rotation)
		}
	}
	if len(f.yticks) > 0 {
		face, err := fc.face(f.ytickStyle.Size)
		if err != nil {
			return nil, err
		}
		for _, t := range f.yticks {
			y := l.y(t.Pos)
			strokeAxisLine(dst, true, y, l.ax-l.px(tickLength), l.ax, tick, l.ppt)
			drawText(dst, face, t.Label, tickColor(f.ytickStyle), l.ax-l.px(tickLength+tickPad), y,
				alignRight, alignMiddle, f.ytickStyle.Rotation)
		}
	}

	if f.Title != "" {
		face, err := fc.face(f.TitleSize)
		if err != nil {
			return nil, err
		}
		drawText(dst, face, f.Title, color.Black, l.ax+l.aw/2, l.ay-l.px(tickPad), alignCenter, alignBottom, 0)
	}
	return dst, nil
}

func tickColor(s TickStyle) color.Color {
	if s.Color == nil {
		return color.Black
	}
	return s.Color
}

func round(v float64) int { return int(math.Round(v)) }

// strokeAxisLine draws a horizontal (or vertical) line at the fixed pixel
// coordinate at, between from and to. Dash lengths scale with the line width.
func strokeAxisLine(dst draw.Image, horizontal bool, at, from, to float64, style LineStyle, ppt float64) {
	if from > to {
		from, to = to, from
	}
	c := style.Color
	if c == nil {
		c = color.Black
	}
	width := style.Width
	if width <= 0 {
		width = 1
	}
	thick := math.Max(1, width*ppt)
	src := image.NewUniform(c)

	span := func(a, b float64) {
		var r image.Rectangle
		lo, hi := round(at-thick/2), round(at-thick/2)+int(math.Max(1, math.Round(thick)))
		if horizontal {
			r = image.Rect(round(a), lo, round(b), hi)
		} else {
			r = image.Rect(lo, round(a), hi, round(b))
		}
		draw.Draw(dst, r, src, image.Point{}, draw.Over)
	}

	if len(style.Dashes) == 0 {
		span(from, to)
		return
	}
	pattern := make([]float64, len(style.Dashes))
	var period float64
	for i, d := range style.Dashes {
		pattern[i] = math.Max(0, d*width*ppt)
		period += pattern[i]
	}
	if period <= 0 {
		span(from, to)
		return
	}
	pos, i := from, 0
	for pos < to {
		end := math.Min(pos+pattern[i%len(pattern)], to)
		if i%2 == 0 {
			span(pos, end)
		}
		pos = end
		i++
	}
}

// drawText renders s so that its (rotated) bounding box is aligned to (x, y).
// rotation is counter-clockwise in degrees.
func drawText(dst draw.Image, face font.Face, s string, c color.Color, x, y float64, ha hAlign, va vAlign, rotation float64) {
	if s == "" {
		return
	}
	if c == nil {
		c = color.Black
	}
	metrics := face.Metrics()
	w := font.MeasureString(face, s).Ceil()
	asc, desc := metrics.Ascent.Ceil(), metrics.Descent.Ceil()
	h := asc + desc
	if w <= 0 || h <= 0 {
		return
	}

	tmp := image.NewRGBA(image.Rect(0, 0, w, h))
	d := font.Drawer{Dst: tmp, Src: image.NewUniform(c), Face: face, Dot: fixed.P(0, asc)}
	d.DrawString(s)

	rad := rotation * math.Pi / 180
	cos, sin := math.Cos(rad), math.Sin(rad)
	quarter := math.Mod(rotation, 90) == 0
	if quarter {
		cos, sin = math.Round(cos), math.Round(sin)
	}

	// Source (u, v) maps to (u*cos + v*sin, -u*sin + v*cos) before translation.
	fw, fh := float64(w), float64(h)
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, p := range [][2]float64{{0, 0}, {fw, 0}, {0, fh}, {fw, fh}} {
		px := p[0]*cos + p[1]*sin
		py := -p[0]*sin + p[1]*cos
		minX, maxX = math.Min(minX, px), math.Max(maxX, px)
		minY, maxY = math.Min(minY, py), math.Max(maxY, py)
	}
	bw, bh := maxX-minX, maxY-minY

	left := x
	switch ha {
	case alignCenter:
		left = x - bw/2
	case alignRight:
		left = x - bw
	}
	top := y
	switch va {
	case alignMiddle:
		top = y - bh/2
	case alignBottom:
		top = y - bh
	}
	tx, ty := left-minX, top-minY

	if rotation == 0 {
		at := image.Pt(round(tx), round(ty))
		draw.Draw(dst, tmp.Bounds().Add(at), tmp, image.Point{}, draw.Over)
		return
	}
	s2d := f64.Aff3{cos, sin, math.Round(tx), -sin, cos, math.Round(ty)}
	if quarter {
		draw.NearestNeighbor.Transform(dst, s2d, tmp, tmp.Bounds(), draw.Over, nil)
		return
	}
	draw.BiLinear.Transform(dst, s2d, tmp, tmp.Bounds(), draw.Over, nil)
}

//Personal.AI order the ending
