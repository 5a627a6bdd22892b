// Package ocr extracts text from a decoded image preview using Tesseract.
//
// This package wraps the Tesseract OCR engine (via gosseract/v2). It is only
// functional in cgo builds; without cgo ExtractText returns ErrUnavailable and
// callers carry on without text.
//
// # Prerequisites
//
// Tesseract and the language data for each requested language must be
// installed on the system:
//   - Ubuntu/Debian: apt-get install tesseract-ocr tesseract-ocr-eng
//   - macOS: brew install tesseract
//
// Options.TessdataDir points Tesseract at a non-standard data directory.
//
// # Languages
//
// The default language is English ("eng"). Other languages use their
// Tesseract codes ("deu", "fra", "chi_sim", ...), and several can be combined
// with "+" ("eng+deu").
package ocr
