//go:build !cgo

package ocr

import "image"

// ExtractText always fails with ErrUnavailable in builds without cgo.
func ExtractText(image.Image, Options) (*OCRResult, error) {
	return nil, ErrUnavailable
}
