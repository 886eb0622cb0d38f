// Package heatmap renders a square score matrix as an annotated heatmap. The
// Renderer issues drawing calls against a Surface; Figure is the Surface used
// by the tool and encodes its display list as PNG or SVG.
package heatmap

import (
	"fmt"
	"image/color"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/turtacn/simheat/pkg/errors"
)

// Palette is a sequential colormap defined by evenly spaced stops.
type Palette struct {
	Name  string
	stops []color.RGBA
}

// DefaultPalette is light-to-dark magenta.
const DefaultPalette = "RdPu"

// ColorBrewer 9-class sequential schemes.
var palettes = map[string][]string{
	"RdPu":    {"fff7f3", "fde0dd", "fcc5c0", "fa9fb5", "f768a1", "dd3497", "ae017e", "7a0177", "49006a"},
	"Blues":   {"f7fbff", "deebf7", "c6dbef", "9ecae1", "6baed6", "4292c6", "2171b5", "08519c", "08306b"},
	"Greens":  {"f7fcf5", "e5f5e0", "c7e9c0", "a1d99b", "74c476", "41ab5d", "238b45", "006d2c", "00441b"},
	"Greys":   {"ffffff", "f0f0f0", "d9d9d9", "bdbdbd", "969696", "737373", "525252", "252525", "000000"},
	"Purples": {"fcfbfd", "efedf5", "dadaeb", "bcbddc", "9e9ac8", "807dba", "6a51a3", "54278f", "3f007d"},
}

// PaletteNames lists the recognised palette names in sorted order.
func PaletteNames() []string {
	names := make([]string, 0, len(palettes))
	for name := range palettes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// LookupPalette returns the named palette. Names are case-sensitive.
func LookupPalette(name string) (*Palette, error) {
	hexes, ok := palettes[name]
	if !ok {
		return nil, errors.Newf(errors.ErrCodePaletteUnknown, "unknown palette %q", name).
			WithDetail("available: " + strings.Join(PaletteNames(), ", "))
	}
	p := &Palette{Name: name, stops: make([]color.RGBA, len(hexes))}
	for i, h := range hexes {
		c, err := ParseHexColor(h)
		if err != nil {
			return nil, err
		}
		p.stops[i] = c
	}
	return p, nil
}

// At maps t in [0,1] to a colour by linear interpolation between stops.
// Values outside the interval are clamped; NaN maps to the first stop.
func (p *Palette) At(t float64) color.RGBA {
	if math.IsNaN(t) || t <= 0 {
		return p.stops[0]
	}
	last := len(p.stops) - 1
	if t >= 1 {
		return p.stops[last]
	}
	pos := t * float64(last)
	i := int(pos)
	frac := pos - float64(i)
	a, b := p.stops[i], p.stops[i+1]
	mix := func(x, y uint8) uint8 {
		return uint8(math.Round(float64(x) + (float64(y)-float64(x))*frac))
	}
	return color.RGBA{R: mix(a.R, b.R), G: mix(a.G, b.G), B: mix(a.B, b.B), A: 0xff}
}

// ParseHexColor parses "#rrggbb", "rrggbb" or "#rgb".
func ParseHexColor(s string) (color.RGBA, error) {
	h := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(h) == 3 {
		h = string([]byte{h[0], h[0], h[1], h[1], h[2], h[2]})
	}
	if len(h) != 6 {
		return color.RGBA{}, errors.Newf(errors.ErrCodeValidation, "invalid colour %q", s)
	}
	v, err := strconv.ParseUint(h, 16, 32)
	if err != nil {
		return color.RGBA{}, errors.Wrapf(err, errors.ErrCodeValidation, "invalid colour %q", s)
	}
	return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 0xff}, nil
}

// HexColor formats c as "#rrggbb".
func HexColor(c color.Color) string {
	r, g, b, _ := c.RGBA()
	return fmt.Sprintf("#%02x%02x%02x", r>>8, g>>8, b>>8)
}

// Range is the colour scale domain. An unfixed bound follows the data.
type Range struct {
	Min, Max       float64
	FixMin, FixMax bool
}

// Fit sets the unfixed bounds from the data extremes. A degenerate range is
// widened so that normalisation stays finite.
func (r Range) Fit(dataMin, dataMax float64) Range {
	if !r.FixMin {
		r.Min = dataMin
	}
	if !r.FixMax {
		r.Max = dataMax
	}
	if !(r.Max > r.Min) {
		r.Max = r.Min + 1
	}
	return r
}

// ClipNorm clips v into the range and normalises it to [0,1].
func (r Range) ClipNorm(v float64) float64 {
	switch {
	case v <= r.Min:
		return 0
	case v >= r.Max:
		return 1
	}
	return (v - r.Min) / (r.Max - r.Min)
}

//Personal.AI order the ending
