package resolve

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"github.com/ironsheep/image-preview-mcp/internal/reference"
)

var (
	// ErrNotFound means no candidate path exists on disk.
	ErrNotFound = errors.New("image file not found")

	// ErrInvalidURL means the token does not form an absolute URL.
	ErrInvalidURL = errors.New("invalid image URL")

	// ErrNoProject means a project root was required but unavailable.
	ErrNoProject = errors.New("project root unavailable")
)

// ProjectLocator supplies project context for a source document.
type ProjectLocator interface {
	// ProjectRoot returns the absolute root directory of the project owning
	// sourcePath.
	ProjectRoot(sourcePath string) (string, bool)

	// FindProjectFile performs a project-aware lookup of name, a relative
	// path or bare filename.
	FindProjectFile(sourcePath, name string) (string, bool)
}

// SearchOptions bounds the recursive file search.
type SearchOptions struct {
	// MaxDepth limits how many directory levels below the root are visited.
	// Zero or negative means DefaultMaxDepth.
	MaxDepth int

	// ExcludeDirs lists directory names that are never entered.
	ExcludeDirs []string
}

const DefaultMaxDepth = 12

// DefaultSearchOptions excludes the node_modules dependency cache.
func DefaultSearchOptions() SearchOptions {
	return SearchOptions{
		MaxDepth:    DefaultMaxDepth,
		ExcludeDirs: []string{"node_modules"},
	}
}

// Resolver maps references to locators.
type Resolver struct {
	projects ProjectLocator
	search   SearchOptions
	log      *zap.Logger
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithSearchOptions replaces the default search bounds.
func WithSearchOptions(opts SearchOptions) Option {
	return func(r *Resolver) {
		r.search = opts
	}
}

// WithLogger sets the logger used for recovered collaborator failures.
func WithLogger(log *zap.Logger) Option {
	return func(r *Resolver) {
		if log != nil {
			r.log = log
		}
	}
}

// New creates a Resolver. projects may be nil, in which case no project root
// is ever available.
func New(projects ProjectLocator, opts ...Option) *Resolver {
	r := &Resolver{
		projects: projects,
		search:   DefaultSearchOptions(),
		log:      zap.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve returns the absolute locator for ref.
func (r *Resolver) Resolve(ctx context.Context, ref reference.Reference) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	switch ref.Kind {
	case reference.KindBase64:
		if ref.Token == "" {
			return "", fmt.Errorf("empty data URI payload: %w", ErrNotFound)
		}
		return ref.Token, nil
	case reference.KindHTTP:
		return ResolveURL(ref.Token)
	case reference.KindPack:
		return r.ResolvePack(ctx, ref.Token, ref.SourcePath)
	case reference.KindFile:
		return r.ResolveFile(ctx, ref.Token, ref.SourcePath)
	default:
		return "", fmt.Errorf("unknown reference kind %v: %w", ref.Kind, ErrNotFound)
	}
}

// ResolveURL normalizes an HTTP reference token into an absolute URL.
func ResolveURL(token string) (string, error) {
	raw := strings.ReplaceAll(trimToken(token), `\`, "/")
	if strings.HasPrefix(raw, "//") {
		raw = "http:" + raw
	}

	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("failed to parse %q: %w", raw, ErrInvalidURL)
	}
	if !u.IsAbs() || u.Host == "" {
		return "", fmt.Errorf("%q is not an absolute URL: %w", raw, ErrInvalidURL)
	}
	return u.String(), nil
}

// ResolvePack joins a pack component path to the project root.
func (r *Resolver) ResolvePack(ctx context.Context, token, sourcePath string) (string, error) {
	rel := strings.TrimLeft(cleanPath(token), "/")

	root, ok := r.projectRoot(sourcePath)
	if !ok {
		return "", fmt.Errorf("failed to resolve pack path %q: %w", token, ErrNoProject)
	}

	if candidate := filepath.Join(root, filepath.FromSlash(rel)); isFile(candidate) {
		return candidate, nil
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if found, ok := r.findProjectFile(sourcePath, rel); ok {
		return found, nil
	}
	return "", fmt.Errorf("pack path %q not under %s: %w", token, root, ErrNotFound)
}

var volumeMarker = regexp.MustCompile(`^[a-zA-Z]:`)

// ResolveFile finds a file reference on disk.
func (r *Resolver) ResolveFile(ctx context.Context, token, sourcePath string) (string, error) {
	path := cleanPath(token)
	if path == "" {
		return "", fmt.Errorf("empty file reference: %w", ErrNotFound)
	}
	sourceDir := ""
	if sourcePath != "" {
		sourceDir = filepath.Dir(sourcePath)
	}

	if volumeMarker.MatchString(path) {
		candidate := filepath.FromSlash(path)
		if !filepath.IsAbs(candidate) && sourceDir != "" {
			candidate = filepath.Join(sourceDir, candidate)
		}
		if isFile(candidate) {
			return candidate, nil
		}
		return "", fmt.Errorf("file %q: %w", token, ErrNotFound)
	}

	if filepath.IsAbs(filepath.FromSlash(path)) && isFile(filepath.FromSlash(path)) {
		return filepath.Clean(filepath.FromSlash(path)), nil
	}

	rootFirst := strings.HasPrefix(path, "~/")
	rel := strings.TrimLeft(strings.TrimPrefix(path, "~"), "/")

	root, hasRoot := r.projectRoot(sourcePath)

	var bases []string
	if rootFirst {
		bases = []string{root, sourceDir}
	} else {
		bases = []string{sourceDir, root}
	}
	for _, base := range bases {
		if base == "" || (base == root && !hasRoot) {
			continue
		}
		if candidate := filepath.Join(base, filepath.FromSlash(rel)); isFile(candidate) {
			return candidate, nil
		}
	}

	if err := ctx.Err(); err != nil {
		return "", err
	}
	if found, ok := r.findProjectFile(sourcePath, rel); ok {
		return found, nil
	}

	if hasRoot {
		pattern := strings.TrimLeft(rel, "./")
		found, ok, err := Search(ctx, root, pattern, r.search)
		if err != nil {
			return "", err
		}
		if ok {
			return found, nil
		}
	}
	return "", fmt.Errorf("file %q: %w", token, ErrNotFound)
}

// projectRoot calls the collaborator, converting a panic into "no root".
func (r *Resolver) projectRoot(sourcePath string) (root string, ok bool) {
	if r.projects == nil || sourcePath == "" {
		return "", false
	}
	defer func() {
		if rec := recover(); rec != nil {
			r.log.Warn("project root lookup panicked",
				zap.String("source_path", sourcePath),
				zap.Any("panic", rec))
			root, ok = "", false
		}
	}()
	root, ok = r.projects.ProjectRoot(sourcePath)
	return root, ok && root != ""
}

func (r *Resolver) findProjectFile(sourcePath, name string) (path string, ok bool) {
	if r.projects == nil || name == "" {
		return "", false
	}
	defer func() {
		if rec := recover(); rec != nil {
			r.log.Warn("project file lookup panicked",
				zap.String("source_path", sourcePath),
				zap.String("name", name),
				zap.Any("panic", rec))
			path, ok = "", false
		}
	}()
	path, ok = r.projects.FindProjectFile(sourcePath, name)
	return path, ok && isFile(path)
}

// trimToken strips the quote and tilde residue a lexical match may carry.
func trimToken(token string) string {
	return strings.Trim(strings.TrimSpace(token), `'"`)
}

// cleanPath trims, percent-decodes and converts separators to slashes.
func cleanPath(token string) string {
	path := trimToken(token)
	if decoded, err := url.PathUnescape(path); err == nil {
		path = decoded
	}
	return strings.ReplaceAll(path, `\`, "/")
}

func isFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
