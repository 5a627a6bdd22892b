package reference

import (
	"regexp"
	"sort"
	"strings"
)

// StaticExtensions is the built-in set of file extensions a File, HTTP or Pack
// reference may end in. The set only ever grows: removing an entry would stop
// previews that users already rely on.
var StaticExtensions = []string{"png", "gif", "ico", "jpg", "jpeg", "svg", "tif", "tiff", "bmp", "wmp"}

var validExtension = regexp.MustCompile(`^[a-z0-9]+$`)

// ExtensionSource reports additional extensions at startup, for example the
// codecs installed on the host. Its failure never blocks matching.
type ExtensionSource func() ([]string, error)

// normalizeExtensions lowercases, strips dots, drops invalid and duplicate
// entries, and orders the result longest first so alternations prefer "tiff"
// over "tif".
func normalizeExtensions(lists ...[]string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, list := range lists {
		for _, ext := range list {
			ext = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(ext), "."))
			if !validExtension.MatchString(ext) || seen[ext] {
				continue
			}
			seen[ext] = true
			out = append(out, ext)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if len(out[i]) != len(out[j]) {
			return len(out[i]) > len(out[j])
		}
		return out[i] < out[j]
	})
	return out
}

func extensionAlternation(exts []string) string {
	quoted := make([]string, len(exts))
	for i, ext := range exts {
		quoted[i] = regexp.QuoteMeta(ext)
	}
	return strings.Join(quoted, "|")
}
