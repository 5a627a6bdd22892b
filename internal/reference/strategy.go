package reference

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// Kind names one of the four reference strategies.
type Kind int

const (
	KindBase64 Kind = iota
	KindPack
	KindHTTP
	KindFile
)

func (k Kind) String() string {
	switch k {
	case KindBase64:
		return "Base64"
	case KindPack:
		return "Pack"
	case KindHTTP:
		return "HTTP"
	case KindFile:
		return "File"
	default:
		return "Unknown"
	}
}

// MarshalText encodes the kind by name.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// Match is a single regex hit produced by a strategy.
type Match struct {
	// Span covers the whole match in code points.
	Span Span

	// Token is the "image" capture group, whitespace-trimmed.
	Token string

	// Ext is the "ext" capture group: a file extension or data URI subtype.
	Ext string
}

// Strategy recognizes one reference syntax. Each strategy owns a compiled
// pattern with two named groups, "image" and "ext", and a cheap substring
// pre-filter that avoids running the pattern on lines that cannot match.
type Strategy struct {
	kind    Kind
	pattern *regexp.Regexp
	applies func(lower string) bool
}

// Kind returns the strategy's tag.
func (s *Strategy) Kind() Kind {
	return s.kind
}

// CanApply reports whether the line could contain a match for this strategy.
func (s *Strategy) CanApply(line string) bool {
	return s.canApplyLower(strings.ToLower(line))
}

func (s *Strategy) canApplyLower(lower string) bool {
	if s.applies == nil {
		return true
	}
	return s.applies(lower)
}

// FindMatches returns every match in the line, left to right.
func (s *Strategy) FindMatches(line string) []Match {
	locs := s.pattern.FindAllStringSubmatchIndex(line, -1)
	if len(locs) == 0 {
		return nil
	}

	image := 2 * s.pattern.SubexpIndex("image")
	ext := 2 * s.pattern.SubexpIndex("ext")
	offsets := newRuneOffsets(line)

	matches := make([]Match, 0, len(locs))
	for _, loc := range locs {
		m := Match{
			Span: Span{
				Start:  offsets.at(loc[0]),
				Length: offsets.at(loc[1]) - offsets.at(loc[0]),
			},
		}
		if loc[image] >= 0 {
			m.Token = strings.TrimSpace(line[loc[image]:loc[image+1]])
		}
		if loc[ext] >= 0 {
			m.Ext = line[loc[ext]:loc[ext+1]]
		}
		matches = append(matches, m)
	}
	return matches
}

func (s *Strategy) reference(m Match, sourcePath string) Reference {
	return Reference{
		Kind:       s.kind,
		Span:       m.Span,
		Token:      m.Token,
		Format:     Classify(m.Ext),
		SourcePath: sourcePath,
	}
}

// newStrategies builds the ordered strategy table for an extension set.
func newStrategies(exts []string) []*Strategy {
	alt := extensionAlternation(exts)

	dotted := make([]string, len(exts))
	for i, ext := range exts {
		dotted[i] = "." + ext
	}
	hasExtension := func(lower string) bool {
		for _, d := range dotted {
			if strings.Contains(lower, d) {
				return true
			}
		}
		return false
	}

	return []*Strategy{
		{
			kind:    KindBase64,
			pattern: regexp.MustCompile(`(?i)data:image/(?P<ext>[^;,\s"']+);base64,(?P<image>[^\s"'()<>\[\]=]+=*)`),
			applies: func(lower string) bool { return strings.Contains(lower, "data:image/") },
		},
		{
			kind:    KindPack,
			pattern: regexp.MustCompile(`(?i)(?:pack://application:[^/\s"']+)?/[\w.]+;component/(?P<image>[^\s"'<>()\[\]]+\.(?P<ext>` + alt + `))\b`),
			applies: func(lower string) bool { return strings.Contains(lower, ";component/") },
		},
		{
			kind:    KindHTTP,
			pattern: regexp.MustCompile(`(?i)(?P<image>(?:(?:https?|ftp):)?//[\w\-.~@]+(?::\d+)?(?:[/\\][\w/\-?=%.\\~+@&]*)?\.(?P<ext>` + alt + `))\b`),
			applies: func(lower string) bool { return strings.Contains(lower, "//") && hasExtension(lower) },
		},
		{
			kind:    KindFile,
			pattern: regexp.MustCompile(`(?i)(?P<image>(?:[a-z]:[\\/.]+)?[\p{L}\p{N}_.\\\-/%~]+\.(?P<ext>` + alt + `))\b`),
		},
	}
}

// runeOffsets converts byte offsets to code point offsets for one line.
type runeOffsets struct {
	line  string
	ascii bool
}

func newRuneOffsets(line string) runeOffsets {
	return runeOffsets{line: line, ascii: utf8.RuneCountInString(line) == len(line)}
}

func (r runeOffsets) at(byteOffset int) int {
	if r.ascii {
		return byteOffset
	}
	return utf8.RuneCountInString(r.line[:byteOffset])
}
