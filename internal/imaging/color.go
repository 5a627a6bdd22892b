package imaging

import (
	"fmt"
	"image"
	"image/color"
	"math"

	colorful "github.com/lucasb-eyer/go-colorful"
)

// RGBColor represents an RGB color with 8-bit components.
type RGBColor struct {
	R uint8 `json:"r"` // Red component (0-255)
	G uint8 `json:"g"` // Green component (0-255)
	B uint8 `json:"b"` // Blue component (0-255)
}

// HSLColor represents a color in HSL (Hue, Saturation, Lightness) color space.
type HSLColor struct {
	H int `json:"h"` // Hue: 0-360 degrees (0=red, 120=green, 240=blue)
	S int `json:"s"` // Saturation: 0-100 percent (0=gray, 100=vivid)
	L int `json:"l"` // Lightness: 0-100 percent (0=black, 50=normal, 100=white)
}

// ColorResult contains a color value in several representations.
type ColorResult struct {
	Hex string   `json:"hex"` // Hex format "#rrggbb"
	RGB RGBColor `json:"rgb"`
	HSL HSLColor `json:"hsl"`

	// Lightness is the CIE L*a*b* lightness in the range 0-1. It tracks
	// perceived brightness better than HSL lightness.
	Lightness float64 `json:"lightness"`

	// Coverage is the mean alpha of the sampled pixels, 0-1.
	Coverage float64 `json:"coverage"`
}

// maxColorSamples bounds how many pixels AverageColor reads per image.
const maxColorSamples = 64 * 64

// AverageColor returns the alpha-weighted mean color of img.
//
// Large images are sampled on a regular grid of at most maxColorSamples
// points. A fully transparent image averages to black with zero coverage.
func AverageColor(img image.Image) ColorResult {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w == 0 || h == 0 {
		return newColorResult(colorful.Color{}, 0)
	}

	step := 1
	if w*h > maxColorSamples {
		step = int(math.Ceil(math.Sqrt(float64(w*h) / maxColorSamples)))
	}

	var r, g, b, a, n float64
	for y := bounds.Min.Y; y < bounds.Max.Y; y += step {
		for x := bounds.Min.X; x < bounds.Max.X; x += step {
			c := color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
			alpha := float64(c.A) / 255
			r += float64(c.R) / 255 * alpha
			g += float64(c.G) / 255 * alpha
			b += float64(c.B) / 255 * alpha
			a += alpha
			n++
		}
	}

	if a == 0 {
		return newColorResult(colorful.Color{}, 0)
	}
	return newColorResult(colorful.Color{R: r / a, G: g / a, B: b / a}.Clamped(), a/n)
}

func newColorResult(c colorful.Color, coverage float64) ColorResult {
	r8, g8, b8 := c.RGB255()
	h, s, l := c.Hsl()
	lightness, _, _ := c.Lab()

	return ColorResult{
		Hex: c.Hex(),
		RGB: RGBColor{R: r8, G: g8, B: b8},
		HSL: HSLColor{
			H: int(math.Round(h)),
			S: int(math.Round(s * 100)),
			L: int(math.Round(l * 100)),
		},
		Lightness: lightness,
		Coverage:  coverage,
	}
}

var (
	lightBackdrop = colorful.Color{R: 0xF5 / 255.0, G: 0xF5 / 255.0, B: 0xF5 / 255.0}
	darkBackdrop  = colorful.Color{R: 0x1E / 255.0, G: 0x1E / 255.0, B: 0x1E / 255.0}
)

// BackdropFor picks a neutral background that contrasts with the image's
// average color: light behind dark content, dark behind light content.
func BackdropFor(avg ColorResult) color.NRGBA {
	c := lightBackdrop
	if avg.Lightness >= 0.5 {
		c = darkBackdrop
	}
	r, g, b := c.RGB255()
	return color.NRGBA{R: r, G: g, B: b, A: 0xff}
}

// HasTransparency reports whether any pixel of img is not fully opaque.
func HasTransparency(img image.Image) bool {
	if o, ok := img.(interface{ Opaque() bool }); ok {
		return !o.Opaque()
	}
	bounds := img.Bounds()
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			if _, _, _, a := img.At(x, y).RGBA(); a != 0xffff {
				return true
			}
		}
	}
	return false
}

func hexColor(c color.NRGBA) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}
