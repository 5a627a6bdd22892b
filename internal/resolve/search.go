package resolve

import (
	"context"
	"os"
	"path/filepath"
	"strings"
)

// Search walks root depth-first looking for a file whose name equals the last
// element of pattern and whose path ends with pattern. Files in a directory
// are checked before its subdirectories, both in name order. Directories named
// in opts.ExcludeDirs are never entered and symlinked directories are not
// followed.
func Search(ctx context.Context, root, pattern string, opts SearchOptions) (string, bool, error) {
	pattern = strings.Trim(filepath.ToSlash(pattern), "/")
	if root == "" || pattern == "" {
		return "", false, nil
	}
	if opts.MaxDepth <= 0 {
		opts.MaxDepth = DefaultMaxDepth
	}

	s := searcher{
		ctx:     ctx,
		name:    pathBase(pattern),
		suffix:  "/" + strings.ToLower(pattern),
		exclude: make(map[string]bool, len(opts.ExcludeDirs)),
		depth:   opts.MaxDepth,
	}
	for _, dir := range opts.ExcludeDirs {
		s.exclude[strings.ToLower(dir)] = true
	}
	return s.walk(root, 0)
}

type searcher struct {
	ctx     context.Context
	name    string
	suffix  string
	exclude map[string]bool
	depth   int
}

func (s *searcher) walk(dir string, depth int) (string, bool, error) {
	if err := s.ctx.Err(); err != nil {
		return "", false, err
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		// Unreadable directories are skipped, not fatal.
		return "", false, nil
	}

	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(e.Name(), s.name) {
			continue
		}
		path := filepath.Join(dir, e.Name())
		if strings.HasSuffix(strings.ToLower(filepath.ToSlash(path)), s.suffix) && isFile(path) {
			return path, true, nil
		}
	}

	if depth >= s.depth {
		return "", false, nil
	}
	for _, e := range entries {
		if !e.IsDir() || s.exclude[strings.ToLower(e.Name())] {
			continue
		}
		if path, ok, err := s.walk(filepath.Join(dir, e.Name()), depth+1); err != nil || ok {
			return path, ok, err
		}
	}
	return "", false, nil
}

func pathBase(slashPath string) string {
	if i := strings.LastIndex(slashPath, "/"); i >= 0 {
		return slashPath[i+1:]
	}
	return slashPath
}
