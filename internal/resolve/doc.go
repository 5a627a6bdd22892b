// Package resolve turns a matched image reference into an absolute locator:
// a filesystem path or URL that the fetch stage can read.
//
// Each reference kind has its own rules:
//
//   - Base64: the payload is its own locator.
//   - HTTP: protocol-relative tokens get an "http:" scheme; the result must
//     parse as an absolute URL with a host.
//   - Pack: the component path is joined to the owning project's root.
//   - File: tried relative to the source document, then the project root, then
//     through the project's own file lookup, and finally by a bounded
//     depth-first search of the project tree that never enters excluded
//     directories such as node_modules.
//
// Project information comes from a ProjectLocator supplied by the caller.
// Panics raised by the locator are recovered and logged; resolution reports
// failure through errors wrapping ErrNotFound, ErrInvalidURL or ErrNoProject
// and never panics itself.
package resolve
