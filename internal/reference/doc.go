// Package reference locates image references inside a single line of source text.
//
// A reference is any lexical mention of an image that the preview pipeline knows
// how to fetch: a base64 data URI, a WPF pack component URI, an http(s), ftp or
// protocol-relative URL, or a plain file path. Each syntax is recognized by one
// strategy. The strategy set is closed and ordered by specificity:
//
//	Base64 -> Pack -> HTTP -> File
//
// Data URIs and pack URIs are unambiguous, while bare file paths are the most
// permissive pattern and must be tried last so they never shadow the others.
//
// # Offsets
//
// Span offsets and cursor positions are measured in Unicode code points of the
// line, not bytes. A span is half-open: [Start, Start+Length).
//
// # Thread Safety
//
// A Finder is immutable after construction. Default returns a process-wide
// Finder built once from the static extension set; it is safe for concurrent
// use by any number of goroutines. Matching never fails: the absence of a
// reference under the cursor is reported with ok == false, not an error.
package reference
