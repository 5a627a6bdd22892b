package reference

import "strings"

// Format is the closed set of image encodings the preview pipeline recognizes.
// The zero value is FormatUnknown.
type Format int

const (
	FormatUnknown Format = iota
	FormatGIF
	FormatPNG
	FormatJPG
	FormatICO
	FormatSVG
)

var formatNames = map[Format]string{
	FormatUnknown: "Unknown",
	FormatGIF:     "GIF",
	FormatPNG:     "PNG",
	FormatJPG:     "JPG",
	FormatICO:     "ICO",
	FormatSVG:     "SVG",
}

func (f Format) String() string {
	if name, ok := formatNames[f]; ok {
		return name
	}
	return formatNames[FormatUnknown]
}

// MarshalText encodes the format by name so JSON output reads "PNG", not 2.
func (f Format) MarshalText() ([]byte, error) {
	return []byte(f.String()), nil
}

// Classify maps a file extension or data URI subtype to a Format.
//
// Matching is case-insensitive and tolerates a leading dot. Aliases:
//   - "jpeg" -> JPG
//   - "icon", "x-icon", "vnd.microsoft.icon" -> ICO
//   - "svg+xml" -> SVG
//
// Anything else, including raster formats such as bmp or tiff that decode fine
// but have no dedicated enumerator, is FormatUnknown.
func Classify(ext string) Format {
	switch strings.ToLower(strings.TrimPrefix(strings.TrimSpace(ext), ".")) {
	case "gif":
		return FormatGIF
	case "png":
		return FormatPNG
	case "jpg", "jpeg":
		return FormatJPG
	case "ico", "icon", "x-icon", "vnd.microsoft.icon":
		return FormatICO
	case "svg", "svg+xml":
		return FormatSVG
	default:
		return FormatUnknown
	}
}
