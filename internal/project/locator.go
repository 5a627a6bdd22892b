// Package project discovers the project that owns a source document.
//
// A project root is the nearest ancestor directory of the document that holds
// one of a set of marker entries (.git, go.mod, package.json, *.csproj, ...).
// Asset directories below the root are consulted when a reference names a
// file that is not where the document says it is.
package project

import (
	"os"
	"path/filepath"
	"strings"
)

// DefaultMarkers identify a project root. Entries containing glob
// metacharacters are matched with filepath.Glob.
var DefaultMarkers = []string{
	".git", "go.mod", "package.json",
	"*.sln", "*.csproj", "*.vbproj", "*.fsproj",
}

// DefaultAssetDirs are searched, relative to the root, by FindProjectFile.
var DefaultAssetDirs = []string{
	"assets", "images", "img", "static", "public", "wwwroot", "Resources", "resources",
}

// Locator finds project roots by walking up from a source document.
type Locator struct {
	markers   []string
	assetDirs []string
}

// NewLocator creates a Locator. Empty slices select the defaults.
func NewLocator(markers, assetDirs []string) *Locator {
	if len(markers) == 0 {
		markers = DefaultMarkers
	}
	if len(assetDirs) == 0 {
		assetDirs = DefaultAssetDirs
	}
	return &Locator{markers: markers, assetDirs: assetDirs}
}

// ProjectRoot returns the nearest ancestor of sourcePath containing a marker.
func (l *Locator) ProjectRoot(sourcePath string) (string, bool) {
	if sourcePath == "" {
		return "", false
	}
	abs, err := filepath.Abs(sourcePath)
	if err != nil {
		return "", false
	}

	dir := abs
	if info, err := os.Stat(abs); err != nil || !info.IsDir() {
		dir = filepath.Dir(abs)
	}

	for {
		if l.hasMarker(dir) {
			return dir, true
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", false
		}
		dir = parent
	}
}

func (l *Locator) hasMarker(dir string) bool {
	for _, marker := range l.markers {
		if strings.ContainsAny(marker, "*?[") {
			if matches, err := filepath.Glob(filepath.Join(dir, marker)); err == nil && len(matches) > 0 {
				return true
			}
			continue
		}
		if _, err := os.Stat(filepath.Join(dir, marker)); err == nil {
			return true
		}
	}
	return false
}

// FindProjectFile looks for name inside the project's asset directories, first
// by its full relative path and then by its base name.
func (l *Locator) FindProjectFile(sourcePath, name string) (string, bool) {
	root, ok := l.ProjectRoot(sourcePath)
	if !ok || name == "" {
		return "", false
	}

	rel := filepath.FromSlash(strings.TrimLeft(filepath.ToSlash(name), "./"))
	base := filepath.Base(rel)

	for _, dir := range l.assetDirs {
		for _, candidate := range []string{
			filepath.Join(root, dir, rel),
			filepath.Join(root, dir, base),
		} {
			if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
				return candidate, true
			}
		}
	}
	return "", false
}
