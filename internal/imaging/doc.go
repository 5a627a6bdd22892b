// Package imaging fetches and decodes the bytes behind an image reference.
//
// Sources are local files, HTTP(S) URLs and base64 data URI payloads
// (Fetcher, DecodeBase64). Decoding covers the standard library containers,
// BMP, TIFF and WebP from golang.org/x/image, and ICO through a decoder
// registered with the image package. SVG documents are rasterized with oksvg
// so they fit a square box (DefaultSVGBox, 500 pixels), then round-tripped
// through PNG.
//
// # Previews
//
// RenderPreview shrinks a decoded image to fit a bounding box, never
// enlarging it, and composites transparent images onto a backdrop chosen to
// contrast with the image's average color.
//
// # Error Handling
//
// Failures wrap one of three sentinels so callers can classify them with
// errors.Is:
//   - ErrFetch: the file or URL could not be read, or exceeded the size limit
//   - ErrEmpty: the source held zero bytes
//   - ErrDecode: the bytes are not a readable image
//
// # Thread Safety
//
// Fetcher, Decoder and the package functions hold no mutable state and are
// safe for concurrent use.
package imaging
