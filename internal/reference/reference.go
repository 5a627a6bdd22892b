package reference

// Span is a half-open range [Start, Start+Length) of code points within a line.
type Span struct {
	Start  int `json:"start"`
	Length int `json:"length"`
}

// End returns the exclusive end offset of the span.
func (s Span) End() int {
	return s.Start + s.Length
}

// Contains reports whether pos falls inside the span.
func (s Span) Contains(pos int) bool {
	return s.Start <= pos && pos < s.End()
}

// Overlaps reports whether the two spans share at least one position.
func (s Span) Overlaps(o Span) bool {
	return s.Start < o.End() && o.Start < s.End()
}

// Reference is an unresolved mention of an image found in a line of text.
//
// A Reference is immutable. Resolution and decoding produce new values that
// embed it rather than filling in fields after the fact.
type Reference struct {
	// Kind is the strategy that recognized the reference.
	Kind Kind `json:"resolver"`

	// Span covers the whole matched token, including any pack URI prefix.
	Span Span `json:"span"`

	// Token is the captured image part of the match: the payload of a data
	// URI, the path after ";component/", or the URL or path itself. Quote and
	// bracket delimiters are never part of it.
	Token string `json:"token"`

	// Format is derived from the matched extension or data URI subtype.
	Format Format `json:"format"`

	// SourcePath is the absolute path of the document containing the
	// reference. Empty for in-memory text.
	SourcePath string `json:"source_path,omitempty"`
}
