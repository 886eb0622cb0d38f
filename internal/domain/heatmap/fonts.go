package heatmap

import (
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"

	"github.com/turtacn/simheat/pkg/errors"
)

var (
	regularOnce sync.Once
	regularFont *opentype.Font
	regularErr  error
)

func goRegular() (*opentype.Font, error) {
	regularOnce.Do(func() {
		regularFont, regularErr = opentype.Parse(goregular.TTF)
	})
	return regularFont, regularErr
}

// faceCache holds one face per point size at a fixed DPI. Not safe for
// concurrent use; each encode owns its cache.
type faceCache struct {
	dpi   float64
	faces map[float64]font.Face
}

func newFaceCache(dpi float64) *faceCache {
	return &faceCache{dpi: dpi, faces: make(map[float64]font.Face)}
}

func (c *faceCache) face(size float64) (font.Face, error) {
	if f, ok := c.faces[size]; ok {
		return f, nil
	}
	ttf, err := goRegular()
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeEncodeFailed, "parse embedded font")
	}
	f, err := opentype.NewFace(ttf, &opentype.FaceOptions{
		Size:    size,
		DPI:     c.dpi,
		Hinting: font.HintingNone,
	})
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrCodeEncodeFailed, "create %.1fpt face", size)
	}
	c.faces[size] = f
	return f, nil
}

// textExtent is the unrotated size of a string in pixels.
type textExtent struct {
	width, ascent, descent float64
}

func (e textExtent) height() float64 { return e.ascent + e.descent }

func (c *faceCache) measure(size float64, s string) (textExtent, error) {
	f, err := c.face(size)
	if err != nil {
		return textExtent{}, err
	}
	m := f.Metrics()
	return textExtent{
		width:   fromFixed(font.MeasureString(f, s)),
		ascent:  fromFixed(m.Ascent),
		descent: fromFixed(m.Descent),
	}, nil
}

func (c *faceCache) close() {
	for size, f := range c.faces {
		_ = f.Close()
		delete(c.faces, size)
	}
}

func fromFixed(v fixed.Int26_6) float64 {
	return float64(v) / 64
}

//Personal.AI order the ending
