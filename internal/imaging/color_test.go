package imaging

import (
	"image"
	"image/color"
	"testing"
)

func TestAverageColor(t *testing.T) {
	t.Run("solid red", func(t *testing.T) {
		avg := AverageColor(createTestImage(20, 20, color.RGBA{255, 0, 0, 255}))
		if avg.Hex != "#ff0000" {
			t.Errorf("expected #ff0000, got %s", avg.Hex)
		}
		if avg.RGB != (RGBColor{R: 255}) {
			t.Errorf("unexpected RGB %+v", avg.RGB)
		}
		if avg.HSL.H != 0 || avg.HSL.S != 100 || avg.HSL.L != 50 {
			t.Errorf("unexpected HSL %+v", avg.HSL)
		}
		if avg.Coverage != 1 {
			t.Errorf("expected full coverage, got %f", avg.Coverage)
		}
	})

	t.Run("alpha weighted", func(t *testing.T) {
		img := image.NewNRGBA(image.Rect(0, 0, 2, 1))
		img.SetNRGBA(0, 0, color.NRGBA{255, 255, 255, 255})
		img.SetNRGBA(1, 0, color.NRGBA{0, 0, 0, 0})

		avg := AverageColor(img)
		if avg.Hex != "#ffffff" {
			t.Errorf("transparent pixels must not darken the average, got %s", avg.Hex)
		}
		if avg.Coverage != 0.5 {
			t.Errorf("expected coverage 0.5, got %f", avg.Coverage)
		}
	})

	t.Run("large image sampled", func(t *testing.T) {
		avg := AverageColor(createTestImage(1000, 1000, color.RGBA{0, 0, 255, 255}))
		if avg.Hex != "#0000ff" {
			t.Errorf("expected #0000ff, got %s", avg.Hex)
		}
	})

	t.Run("lightness orders black and white", func(t *testing.T) {
		black := AverageColor(createTestImage(4, 4, color.Black))
		white := AverageColor(createTestImage(4, 4, color.White))
		if black.Lightness >= 0.5 || white.Lightness < 0.5 {
			t.Errorf("unexpected lightness black=%f white=%f", black.Lightness, white.Lightness)
		}
	})
}

func TestHasTransparency(t *testing.T) {
	if HasTransparency(createTestImage(4, 4, color.White)) {
		t.Error("opaque image reported transparent")
	}
	if !HasTransparency(image.NewNRGBA(image.Rect(0, 0, 4, 4))) {
		t.Error("transparent image reported opaque")
	}
}
