package heatmap

import (
	"bufio"
	"fmt"
	"image/color"
	"io"
	"strings"

	svg "github.com/ajstarks/svgo/float"

	"github.com/turtacn/simheat/pkg/errors"
)

const svgFontFamily = "Go, DejaVu Sans, sans-serif"

// EncodeSVG writes the figure as an SVG document sized in pixels.
func (f *Figure) EncodeSVG(w io.Writer) error {
	fc := newFaceCache(f.DPI)
	defer fc.close()

	l, err := f.layout(fc)
	if err != nil {
		return err
	}

	// bufio keeps the first write error and Flush reports it.
	bw := bufio.NewWriter(w)
	canvas := svg.New(bw)
	canvas.Startraw(
		fmt.Sprintf(`width="%d" height="%d"`, l.width, l.height),
		fmt.Sprintf(`viewBox="0 0 %d %d"`, l.width, l.height),
		attr("font-family", svgFontFamily),
	)
	bg := f.Background
	if bg == nil {
		bg = color.White
	}
	canvas.Rect(0, 0, float64(l.width), float64(l.height), attr("fill", HexColor(bg)))

	canvas.Group(attr("id", "cells"), attr("shape-rendering", "crispEdges"))
	for row := 0; row < f.rows; row++ {
		for col := 0; col < f.cols; col++ {
			c := f.cells[row*f.cols+col]
			if c == nil {
				continue
			}
			canvas.Rect(l.ax+float64(col)*l.cw, l.ay+float64(row)*l.ch, l.cw, l.ch, attr("fill", HexColor(c)))
		}
	}
	canvas.Gend()

	canvas.Group(attr("id", "annotations"), attr("text-anchor", "middle"), attr("dominant-baseline", "central"))
	for _, a := range f.annotations {
		canvas.Text(l.x(float64(a.Col)), l.y(float64(a.Row)), a.Text,
			attr("font-size", num(l.px(a.Style.Size))),
			attr("fill", HexColor(textColor(a.Style.Color))))
	}
	canvas.Gend()

	canvas.Gid("grid")
	for _, ln := range f.hlines {
		svgLine(canvas, l.x(ln.From), l.y(ln.At), l.x(ln.To), l.y(ln.At), ln.Style, l.ppt)
	}
	for _, ln := range f.vlines {
		svgLine(canvas, l.x(ln.At), l.y(ln.From), l.x(ln.At), l.y(ln.To), ln.Style, l.ppt)
	}
	canvas.Gend()
	canvas.Rect(l.ax, l.ay, l.aw, l.ah,
		attr("id", "frame"), attr("fill", "none"), attr("stroke", "#000000"),
		attr("stroke-width", num(l.px(spineWidth))))

	tick := LineStyle{Color: color.Black, Width: spineWidth}
	canvas.Gid("xticks")
	base := l.ay + l.ah
	for _, t := range f.xticks {
		x := l.x(t.Pos)
		svgLine(canvas, x, base, x, base+l.px(tickLength), tick, l.ppt)
		svgTickLabel(canvas, t.Label, x, base+l.px(tickLength+tickPad), f.xtickStyle, l, true)
	}
	canvas.Gend()
	canvas.Gid("yticks")
	for _, t := range f.yticks {
		y := l.y(t.Pos)
		svgLine(canvas, l.ax-l.px(tickLength), y, l.ax, y, tick, l.ppt)
		svgTickLabel(canvas, t.Label, l.ax-l.px(tickLength+tickPad), y, f.ytickStyle, l, false)
	}
	canvas.Gend()
	if f.Title != "" {
		canvas.Text(l.ax+l.aw/2, l.ay-l.px(tickPad), f.Title,
			attr("font-size", num(l.px(f.TitleSize))), attr("text-anchor", "middle"))
	}
	canvas.End()

	if err := bw.Flush(); err != nil {
		return errors.Wrap(err, errors.ErrCodeEncodeFailed, "encode svg")
	}
	return nil
}

func svgLine(canvas *svg.SVG, x0, y0, x1, y1 float64, style LineStyle, ppt float64) {
	width := style.Width
	if width <= 0 {
		width = 1
	}
	attrs := []string{
		attr("stroke", HexColor(textColor(style.Color))),
		attr("stroke-width", num(width*ppt)),
	}
	if len(style.Dashes) > 0 {
		parts := make([]string, len(style.Dashes))
		for i, d := range style.Dashes {
			parts[i] = num(d * width * ppt)
		}
		attrs = append(attrs, attr("stroke-dasharray", strings.Join(parts, " ")))
	}
	canvas.Line(x0, y0, x1, y1, attrs...)
}

// svgTickLabel anchors x labels by their top edge and y labels by their right
// edge. A rotated x label reads upwards and ends at the anchor.
func svgTickLabel(canvas *svg.SVG, label string, x, y float64, style TickStyle, l layout, xAxis bool) {
	anchor, baseline := "end", "central"
	if xAxis {
		anchor, baseline = "middle", "hanging"
		if style.Rotation != 0 {
			anchor, baseline = "end", "central"
		}
	}
	attrs := []string{
		attr("font-size", num(l.px(style.Size))),
		attr("fill", HexColor(tickColor(style))),
		attr("text-anchor", anchor),
		attr("dominant-baseline", baseline),
	}
	if style.Rotation != 0 {
		attrs = append(attrs, attr("transform", fmt.Sprintf("rotate(%.2f %.2f %.2f)", -style.Rotation, x, y)))
	}
	canvas.Text(x, y, label, attrs...)
}

// attr formats one name="value" pair. Values here are numbers, colors and
// fixed keywords, so they need no escaping.
func attr(name, value string) string {
	return name + `="` + value + `"`
}

func num(v float64) string {
	return fmt.Sprintf("%.2f", v)
}

func textColor(c color.Color) color.Color {
	if c == nil {
		return color.Black
	}
	return c
}

//Personal.AI order the ending
