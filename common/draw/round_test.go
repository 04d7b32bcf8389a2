package draw

import (
	"image"
	"image/color"
	"image/draw"
	"testing"

	"github.com/stretchr/testify/assert"
)

func solid(w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), image.NewUniform(color.NRGBA{0xE0, 0x15, 0x63, 0xFF}), image.Point{}, draw.Src)
	return img
}

func TestRoundCorners(t *testing.T) {
	img := solid(40, 20)
	RoundCorners(img, 3)

	for _, p := range []image.Point{{0, 0}, {39, 0}, {0, 19}, {39, 19}} {
		assert.Equal(t, uint8(0), img.NRGBAAt(p.X, p.Y).A, "corner %v", p)
	}
	for _, p := range []image.Point{{2, 2}, {3, 0}, {0, 3}, {20, 10}, {37, 17}} {
		assert.Equal(t, uint8(0xFF), img.NRGBAAt(p.X, p.Y).A, "inside %v", p)
	}

	edge := img.NRGBAAt(1, 0)
	assert.True(t, edge.A > 0 && edge.A < 0xFF, "edge pixel is partly covered, got alpha %d", edge.A)
	assert.Equal(t, edge, img.NRGBAAt(38, 19), "corners are symmetric")
	assert.Equal(t, uint8(0xE0), edge.R, "color is untouched")
}

func TestRoundCornersClamps(t *testing.T) {
	img := solid(4, 4)
	RoundCorners(img, 10)
	assert.Less(t, img.NRGBAAt(0, 0).A, uint8(0xFF), "radius clamped to 2 still rounds")
	assert.Equal(t, uint8(0xFF), img.NRGBAAt(1, 1).A)

	untouched := solid(4, 4)
	RoundCorners(untouched, 0)
	assert.Equal(t, solid(4, 4), untouched)
}

func TestFade(t *testing.T) {
	img := solid(1, 1)
	Fade(img, 0, 0, 0.5)
	assert.Equal(t, color.NRGBA{0xE0, 0x15, 0x63, 0x80}, img.NRGBAAt(0, 0))
}
