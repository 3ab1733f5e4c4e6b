package vision

import (
	"image"
	"image/color"
	"image/draw"
)

// HSV range selecting white/near-white pixels after the saturation
// boost, on the 0..255 scale: low saturation, high value.
const (
	saturationScale = 1.5
	maxSaturation   = 40
	minValue        = 210
)

// Crop copies the boxed region of src into a fresh image anchored at
// the origin.
func Crop(src *image.RGBA, b Box) *image.RGBA {
	r := b.Rect()
	out := image.NewRGBA(image.Rect(0, 0, r.Dx(), r.Dy()))
	draw.Draw(out, out.Bounds(), src, r.Min, draw.Src)
	return out
}

// IsolateWhiteText suppresses colored background clutter in a crop of
// bright text on a colored backdrop. Saturation is boosted so colored
// pixels fall outside the low-saturation/high-value white range, the
// crop is masked to that range, and the surviving pixels are reduced
// to a single luminance channel for the recognizer.
func IsolateWhiteText(src *image.RGBA) *image.Gray {
	bounds := src.Bounds()
	out := image.NewGray(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))

	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			c := src.RGBAAt(x, y)
			sat, val := saturationValue(c)

			boosted := sat * saturationScale
			if boosted > 255 {
				boosted = 255
			}
			if boosted > maxSaturation || val < minValue {
				continue
			}

			// Rec. 601 luma of the surviving pixel.
			lum := 0.299*float64(c.R) + 0.587*float64(c.G) + 0.114*float64(c.B)
			out.SetGray(x-bounds.Min.X, y-bounds.Min.Y, color.Gray{Y: uint8(lum + 0.5)})
		}
	}
	return out
}

// saturationValue returns the HSV saturation and value of c on the
// 0..255 scale.
func saturationValue(c color.RGBA) (sat, val float64) {
	max := c.R
	if c.G > max {
		max = c.G
	}
	if c.B > max {
		max = c.B
	}
	min := c.R
	if c.G < min {
		min = c.G
	}
	if c.B < min {
		min = c.B
	}

	val = float64(max)
	if max == 0 {
		return 0, 0
	}
	sat = float64(max-min) / float64(max) * 255
	return sat, val
}
