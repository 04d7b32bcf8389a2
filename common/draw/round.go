package draw

import (
	"image"
)

// coverageSamples is the per-axis supersampling used to antialias corners.
const coverageSamples = 4

// RoundCorners makes the corners of img transparent outside quarter circles of radius r. Edge pixels keep the
// share of their alpha that lies inside the curve. r is clamped to half the shorter side.
func RoundCorners(img *image.NRGBA, r int) {
	b := img.Bounds()
	if r > b.Dx()/2 {
		r = b.Dx() / 2
	}
	if r > b.Dy()/2 {
		r = b.Dy() / 2
	}
	if r <= 0 {
		return
	}

	for y := 0; y < r; y++ {
		for x := 0; x < r; x++ {
			c := coverage(x, y, r)
			if c == 1 {
				continue
			}
			Fade(img, b.Min.X+x, b.Min.Y+y, c)
			Fade(img, b.Max.X-1-x, b.Min.Y+y, c)
			Fade(img, b.Min.X+x, b.Max.Y-1-y, c)
			Fade(img, b.Max.X-1-x, b.Max.Y-1-y, c)
		}
	}
}

// coverage is the fraction of pixel (x, y) inside the circle of radius r centered on (r, r).
func coverage(x, y, r int) float64 {
	inside := 0
	rr := float64(r * r)
	for sy := 0; sy < coverageSamples; sy++ {
		for sx := 0; sx < coverageSamples; sx++ {
			dx := float64(x) + (float64(sx)+0.5)/coverageSamples - float64(r)
			dy := float64(y) + (float64(sy)+0.5)/coverageSamples - float64(r)
			if dx*dx+dy*dy <= rr {
				inside++
			}
		}
	}
	return float64(inside) / (coverageSamples * coverageSamples)
}

// Fade scales the alpha of the pixel at (x, y) by f, which must be within [0, 1].
func Fade(img *image.NRGBA, x, y int, f float64) {
	c := img.NRGBAAt(x, y)
	c.A = uint8(float64(c.A)*f + 0.5)
	img.SetNRGBA(x, y, c)
}
