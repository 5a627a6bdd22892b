package imaging

import humanize "github.com/dustin/go-humanize"

// SizeLabel renders a byte count for display, e.g. "1.5 kB".
func SizeLabel(n int64) string {
	if n < 0 {
		n = 0
	}
	return humanize.Bytes(uint64(n))
}
