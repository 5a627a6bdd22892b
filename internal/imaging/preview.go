package imaging

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/png"

	"github.com/anthonynsimon/bild/blend"
	"github.com/disintegration/imaging"
)

// PreviewResult contains a rendered preview ready to hand to a client.
type PreviewResult struct {
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	ImageBase64 string `json:"image_base64"`
	MimeType    string `json:"mime_type"`

	// AverageColor is the alpha-weighted mean color of the source.
	AverageColor ColorResult `json:"average_color"`

	// Backdrop is the hex color composited behind transparent pixels, empty
	// when the image is opaque.
	Backdrop string `json:"backdrop,omitempty"`

	// Image is the rendered bitmap. Not serialized.
	Image image.Image `json:"-"`
}

// RenderPreview fits img into maxWidth x maxHeight without ever enlarging it,
// places transparent images on a contrasting backdrop and encodes the result
// as PNG.
func RenderPreview(img image.Image, maxWidth, maxHeight int) (*PreviewResult, error) {
	if maxWidth <= 0 || maxHeight <= 0 {
		return nil, fmt.Errorf("invalid preview bounds %dx%d", maxWidth, maxHeight)
	}
	if img.Bounds().Empty() {
		return nil, fmt.Errorf("cannot preview an empty image: %w", ErrDecode)
	}

	fitted := imaging.Fit(img, maxWidth, maxHeight, imaging.Lanczos)
	avg := AverageColor(fitted)

	var out image.Image = fitted
	backdrop := ""
	if HasTransparency(fitted) {
		bg := BackdropFor(avg)
		canvas := imaging.New(fitted.Bounds().Dx(), fitted.Bounds().Dy(), bg)
		out = blend.Normal(canvas, fitted)
		backdrop = hexColor(bg)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, out); err != nil {
		return nil, fmt.Errorf("failed to encode preview image: %w", err)
	}

	return &PreviewResult{
		Width:        out.Bounds().Dx(),
		Height:       out.Bounds().Dy(),
		ImageBase64:  base64.StdEncoding.EncodeToString(buf.Bytes()),
		MimeType:     "image/png",
		AverageColor: avg,
		Backdrop:     backdrop,
		Image:        out,
	}, nil
}

// EncodePNG encodes img as PNG bytes.
func EncodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("failed to encode png: %w", err)
	}
	return buf.Bytes(), nil
}
