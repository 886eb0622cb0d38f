package heatmap

import (
	"image/color"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/simheat/pkg/errors"
)

func TestLookupPalette(t *testing.T) {
	t.Parallel()

	for _, name := range PaletteNames() {
		p, err := LookupPalette(name)
		require.NoError(t, err, name)
		assert.Equal(t, name, p.Name)
	}

	_, err := LookupPalette("rdpu")
	assert.True(t, errors.IsCode(err, errors.ErrCodePaletteUnknown))
	assert.Contains(t, err.Error(), "RdPu")
}

func TestPalette_At(t *testing.T) {
	t.Parallel()

	p, err := LookupPalette("RdPu")
	require.NoError(t, err)

	assert.Equal(t, color.RGBA{0xff, 0xf7, 0xf3, 0xff}, p.At(0))
	assert.Equal(t, color.RGBA{0x49, 0x00, 0x6a, 0xff}, p.At(1))
	assert.Equal(t, color.RGBA{0xf7, 0x68, 0xa1, 0xff}, p.At(0.5))
	assert.Equal(t, p.At(0), p.At(-3))
	assert.Equal(t, p.At(1), p.At(7))
	assert.Equal(t, p.At(0), p.At(math.NaN()))

	// halfway between the first two stops
	mid := p.At(1.0 / 16)
	assert.Equal(t, uint8(0xfe), mid.R)
	assert.Equal(t, uint8(0xec), mid.G)
}

func TestParseHexColor(t *testing.T) {
	t.Parallel()

	c, err := ParseHexColor("#dd3497")
	require.NoError(t, err)
	assert.Equal(t, color.RGBA{0xdd, 0x34, 0x97, 0xff}, c)

	c, err = ParseHexColor("fff")
	require.NoError(t, err)
	assert.Equal(t, color.RGBA{0xff, 0xff, 0xff, 0xff}, c)

	for _, bad := range []string{"", "#12", "zzzzzz", "#1234567"} {
		_, err := ParseHexColor(bad)
		assert.Error(t, err, bad)
	}
	assert.Equal(t, "#dd3497", HexColor(color.RGBA{0xdd, 0x34, 0x97, 0xff}))
}

func TestRange(t *testing.T) {
	t.Parallel()

	r := Range{Min: 0, FixMin: true}.Fit(2, 8)
	assert.Equal(t, 0.0, r.Min)
	assert.Equal(t, 8.0, r.Max)
	assert.Equal(t, 0.5, r.ClipNorm(4))
	assert.Equal(t, 0.0, r.ClipNorm(-1))
	assert.Equal(t, 1.0, r.ClipNorm(100))

	flat := Range{Min: 0, FixMin: true}.Fit(0, 0)
	assert.Equal(t, 1.0, flat.Max)
	assert.Equal(t, 0.0, flat.ClipNorm(0))

	free := Range{}.Fit(2, 8)
	assert.Equal(t, 2.0, free.Min)
}

//Personal.AI order the ending
