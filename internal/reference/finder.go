package reference

import (
	"sort"
	"strings"
	"sync"
)

// Finder runs the ordered strategy table against lines of text.
type Finder struct {
	strategies []*Strategy
	extensions []string
}

// Option configures a Finder.
type Option func(*finderOptions)

type finderOptions struct {
	extra   []string
	sources []ExtensionSource
}

// WithExtensions adds extensions to the static set.
func WithExtensions(exts ...string) Option {
	return func(o *finderOptions) {
		o.extra = append(o.extra, exts...)
	}
}

// WithExtensionSource consults src once during construction. An error or panic
// from src is ignored and the Finder falls back to the remaining sets.
func WithExtensionSource(src ExtensionSource) Option {
	return func(o *finderOptions) {
		if src != nil {
			o.sources = append(o.sources, src)
		}
	}
}

// NewFinder builds a Finder over StaticExtensions plus any configured extras.
func NewFinder(opts ...Option) *Finder {
	var o finderOptions
	for _, opt := range opts {
		opt(&o)
	}

	lists := [][]string{StaticExtensions, o.extra}
	for _, src := range o.sources {
		if exts, ok := discover(src); ok {
			lists = append(lists, exts)
		}
	}

	exts := normalizeExtensions(lists...)
	return &Finder{
		strategies: newStrategies(exts),
		extensions: exts,
	}
}

func discover(src ExtensionSource) (exts []string, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			exts, ok = nil, false
		}
	}()
	exts, err := src()
	if err != nil {
		return nil, false
	}
	return exts, true
}

var defaultFinder = sync.OnceValue(func() *Finder { return NewFinder() })

// Default returns the shared Finder over the static extension set.
func Default() *Finder {
	return defaultFinder()
}

// Strategies returns the strategy table in priority order.
func (f *Finder) Strategies() []*Strategy {
	out := make([]*Strategy, len(f.strategies))
	copy(out, f.strategies)
	return out
}

// Extensions returns the supported extension set, longest first.
func (f *Finder) Extensions() []string {
	out := make([]string, len(f.extensions))
	copy(out, f.extensions)
	return out
}

// Find returns the reference whose span contains cursor. Strategies are tried
// in priority order and the first one with a containing span wins.
func (f *Finder) Find(line string, cursor int, sourcePath string) (Reference, bool) {
	if cursor < 0 || line == "" {
		return Reference{}, false
	}
	lower := strings.ToLower(line)
	for _, s := range f.strategies {
		if !s.canApplyLower(lower) {
			continue
		}
		for _, m := range s.FindMatches(line) {
			if m.Span.Start > cursor {
				break
			}
			if m.Span.Contains(cursor) {
				return s.reference(m, sourcePath), true
			}
		}
	}
	return Reference{}, false
}

// FindAll returns every reference on the line ordered by start offset. A match
// that overlaps one from a higher-priority strategy is dropped, so a URL is
// never also reported as a file path.
func (f *Finder) FindAll(line, sourcePath string) []Reference {
	if line == "" {
		return nil
	}
	lower := strings.ToLower(line)
	var refs []Reference
	for _, s := range f.strategies {
		if !s.canApplyLower(lower) {
			continue
		}
	next:
		for _, m := range s.FindMatches(line) {
			for _, r := range refs {
				if r.Span.Overlaps(m.Span) {
					continue next
				}
			}
			refs = append(refs, s.reference(m, sourcePath))
		}
	}
	sort.SliceStable(refs, func(i, j int) bool {
		return refs[i].Span.Start < refs[j].Span.Start
	})
	return refs
}
