package imaging

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"  // Register GIF format decoder
	_ "image/jpeg" // Register JPEG format decoder
	_ "image/png"  // Register PNG format decoder

	"github.com/disintegration/imaging"
	"github.com/gabriel-vasile/mimetype"
	_ "golang.org/x/image/bmp"  // Register BMP format decoder
	_ "golang.org/x/image/tiff" // Register TIFF format decoder
	_ "golang.org/x/image/webp" // Register WebP format decoder

	"github.com/ironsheep/image-preview-mcp/internal/reference"
)

const mimeSVG = "image/svg+xml"

// ImageInfo contains metadata about a decoded image.
type ImageInfo struct {
	// Width is the decoded width in pixels. For SVG sources this is the
	// rasterized width, not the document's intrinsic width.
	Width int `json:"width"`

	// Height is the decoded height in pixels.
	Height int `json:"height"`

	// Format is the container detected from the bytes: "png", "jpeg", "gif",
	// "ico", "bmp", "tiff", "webp" or "svg".
	Format string `json:"format"`

	// MimeType is the sniffed media type of the source bytes.
	MimeType string `json:"mime_type"`

	// ColorDepth indicates the bit depth per channel: "8-bit" or "16-bit".
	ColorDepth string `json:"color_depth"`

	// HasAlpha indicates whether the decoded image carries an alpha channel.
	HasAlpha bool `json:"has_alpha"`

	// FileSizeBytes is the length of the source encoding in bytes.
	FileSizeBytes int64 `json:"file_size_bytes"`
}

// DecodedImage pairs a raster bitmap with its metadata.
type DecodedImage struct {
	Image image.Image
	Info  ImageInfo
}

// Decoder turns encoded bytes into a DecodedImage. The zero value rasterizes
// SVG into DefaultSVGBox.
type Decoder struct {
	// SVGBox is the side of the square box SVG documents are scaled to fit.
	SVGBox int
}

// Decode decodes data. SVG is rasterized when the hint says so or when the
// bytes sniff as SVG; everything else goes through the registered raster
// codecs.
//
// Errors wrap ErrEmpty for zero-length input and ErrDecode otherwise.
func (d Decoder) Decode(data []byte, hint reference.Format) (*DecodedImage, error) {
	if len(data) == 0 {
		return nil, ErrEmpty
	}

	mime := mimetype.Detect(data)
	if hint == reference.FormatSVG || mime.Is(mimeSVG) {
		box := d.SVGBox
		if box <= 0 {
			box = DefaultSVGBox
		}
		img, err := RasterizeSVG(data, box)
		if err != nil {
			return nil, err
		}
		return newDecodedImage(img, "svg", mimeSVG, len(data)), nil
	}

	return DecodeRaster(data)
}

// DecodeRaster decodes a raster container, applying EXIF orientation.
func DecodeRaster(data []byte) (*DecodedImage, error) {
	if len(data) == 0 {
		return nil, ErrEmpty
	}

	_, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to read image header: %w", errors.Join(ErrDecode, err))
	}

	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s image: %w", format, errors.Join(ErrDecode, err))
	}

	return newDecodedImage(img, format, mimetype.Detect(data).String(), len(data)), nil
}

func newDecodedImage(img image.Image, format, mime string, size int) *DecodedImage {
	bounds := img.Bounds()

	// Check for alpha channel
	hasAlpha := false
	colorDepth := "8-bit"
	switch img.(type) {
	case *image.RGBA, *image.NRGBA, *image.Paletted:
		hasAlpha = true
	case *image.RGBA64, *image.NRGBA64:
		hasAlpha = true
		colorDepth = "16-bit"
	case *image.Gray16:
		colorDepth = "16-bit"
	}

	return &DecodedImage{
		Image: img,
		Info: ImageInfo{
			Width:         bounds.Dx(),
			Height:        bounds.Dy(),
			Format:        format,
			MimeType:      mime,
			ColorDepth:    colorDepth,
			HasAlpha:      hasAlpha,
			FileSizeBytes: int64(size),
		},
	}
}
