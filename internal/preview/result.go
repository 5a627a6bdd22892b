package preview

import (
	"fmt"

	"github.com/ironsheep/image-preview-mcp/internal/imaging"
	"github.com/ironsheep/image-preview-mcp/internal/reference"
)

// Result is the outcome of running the pipeline on one reference. A Result
// is built once and never modified.
type Result struct {
	// Reference is the match that started the lookup.
	Reference reference.Reference `json:"reference"`

	// Locator is the absolute path, URL or base64 payload the image was
	// read from. Empty when resolution failed.
	Locator string `json:"locator,omitempty"`

	// SizeBytes is the length of the fetched encoding. Zero before a
	// successful fetch.
	SizeBytes int64 `json:"size_bytes"`

	// Image is the decoded bitmap, nil when any stage failed.
	Image *imaging.DecodedImage `json:"-"`

	// Err records why the lookup stopped short, nil on success.
	Err error `json:"-"`
}

// Resolved reports whether a locator was found.
func (r *Result) Resolved() bool {
	return r.Locator != ""
}

// Decoded reports whether the image was fetched and decoded.
func (r *Result) Decoded() bool {
	return r.Image != nil
}

// Summary is the one-line label shown beside a preview, e.g. "640x480 (12 kB)".
func (r *Result) Summary() string {
	if r.Image == nil {
		return NotResolvedMessage
	}
	return fmt.Sprintf("%dx%d (%s)", r.Image.Info.Width, r.Image.Info.Height, imaging.SizeLabel(r.SizeBytes))
}
