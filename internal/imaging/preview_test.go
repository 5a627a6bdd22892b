package imaging

import (
	"bytes"
	"encoding/base64"
	"image"
	"image/color"
	"image/png"
	"testing"
)

func TestRenderPreview(t *testing.T) {
	tests := []struct {
		name         string
		w, h         int
		wantW, wantH int
	}{
		{"small stays", 100, 50, 100, 50},
		{"wide shrinks", 1000, 500, 500, 250},
		{"tall shrinks", 200, 800, 125, 500},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := RenderPreview(createTestImage(tt.w, tt.h, color.RGBA{0, 0, 255, 255}), 500, 500)
			if err != nil {
				t.Fatalf("RenderPreview failed: %v", err)
			}
			if result.Width != tt.wantW || result.Height != tt.wantH {
				t.Errorf("expected %dx%d, got %dx%d", tt.wantW, tt.wantH, result.Width, result.Height)
			}
			if result.MimeType != "image/png" {
				t.Errorf("expected image/png, got %s", result.MimeType)
			}
			if result.Backdrop != "" {
				t.Errorf("opaque image should not get a backdrop, got %s", result.Backdrop)
			}

			raw, err := base64.StdEncoding.DecodeString(result.ImageBase64)
			if err != nil {
				t.Fatalf("invalid base64: %v", err)
			}
			cfg, err := png.DecodeConfig(bytes.NewReader(raw))
			if err != nil {
				t.Fatalf("invalid png: %v", err)
			}
			if cfg.Width != tt.wantW || cfg.Height != tt.wantH {
				t.Errorf("encoded png is %dx%d", cfg.Width, cfg.Height)
			}
		})
	}
}

func TestRenderPreviewBackdrop(t *testing.T) {
	tests := []struct {
		name     string
		fill     color.NRGBA
		backdrop string
	}{
		{"dark content on light", color.NRGBA{0, 0, 0, 128}, "#f5f5f5"},
		{"light content on dark", color.NRGBA{255, 255, 255, 128}, "#1e1e1e"},
		{"fully transparent", color.NRGBA{}, "#f5f5f5"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			img := image.NewNRGBA(image.Rect(0, 0, 10, 10))
			for i := 0; i < len(img.Pix); i += 4 {
				img.Pix[i], img.Pix[i+1], img.Pix[i+2], img.Pix[i+3] = tt.fill.R, tt.fill.G, tt.fill.B, tt.fill.A
			}

			result, err := RenderPreview(img, 500, 500)
			if err != nil {
				t.Fatalf("RenderPreview failed: %v", err)
			}
			if result.Backdrop != tt.backdrop {
				t.Errorf("expected backdrop %s, got %s", tt.backdrop, result.Backdrop)
			}
			if _, _, _, a := result.Image.At(5, 5).RGBA(); a != 0xffff {
				t.Errorf("composited preview should be opaque, alpha %d", a)
			}
		})
	}
}

func TestRenderPreviewInvalid(t *testing.T) {
	if _, err := RenderPreview(createTestImage(10, 10, color.White), 0, 500); err == nil {
		t.Error("expected error for zero bound")
	}
	if _, err := RenderPreview(image.NewRGBA(image.Rect(0, 0, 0, 0)), 500, 500); err == nil {
		t.Error("expected error for empty image")
	}
}
