// Package config loads image-preview settings from YAML.
package config

import (
	"errors"
	"fmt"
	"time"
)

// Config represents the application configuration.
type Config struct {
	LogLevel   string        `yaml:"log_level"`
	Preview    PreviewConfig `yaml:"preview"`
	HTTP       HTTPConfig    `yaml:"http"`
	Search     SearchConfig  `yaml:"search"`
	Project    ProjectConfig `yaml:"project"`
	Extensions []string      `yaml:"extensions,omitempty"` // added to the built-in set
	OCR        OCRConfig     `yaml:"ocr"`
}

// PreviewConfig bounds rendered previews.
type PreviewConfig struct {
	MaxWidth  int `yaml:"max_width"`
	MaxHeight int `yaml:"max_height"`
	SVGBox    int `yaml:"svg_box"`
}

// HTTPConfig controls remote fetches.
type HTTPConfig struct {
	Timeout   time.Duration `yaml:"timeout"`
	MaxBytes  int64         `yaml:"max_bytes"`
	UserAgent string        `yaml:"user_agent"`
}

// SearchConfig controls the recursive project search used as a last resort
// for file references.
type SearchConfig struct {
	MaxDepth    int      `yaml:"max_depth"`
	ExcludeDirs []string `yaml:"exclude_dirs"`
}

// ProjectConfig controls project root discovery.
type ProjectConfig struct {
	Markers   []string `yaml:"markers"`
	AssetDirs []string `yaml:"asset_dirs"`
}

// OCRConfig configures text extraction.
type OCRConfig struct {
	Language    string `yaml:"language"`
	TessdataDir string `yaml:"tessdata_dir,omitempty"`
}

// DefaultUserAgent identifies remote fetches.
const DefaultUserAgent = "image-preview-mcp"

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		LogLevel: "info",
		Preview: PreviewConfig{
			MaxWidth:  500,
			MaxHeight: 500,
			SVGBox:    500,
		},
		HTTP: HTTPConfig{
			Timeout:   30 * time.Second,
			MaxBytes:  20 << 20,
			UserAgent: DefaultUserAgent,
		},
		Search: SearchConfig{
			MaxDepth:    12,
			ExcludeDirs: []string{"node_modules"},
		},
		Project: ProjectConfig{
			Markers:   []string{".git", "go.mod", "package.json", "*.sln", "*.csproj", "*.vbproj", "*.fsproj"},
			AssetDirs: []string{"assets", "images", "img", "static", "public", "wwwroot", "Resources", "resources"},
		},
		OCR: OCRConfig{
			Language: "eng",
		},
	}
}

// Validate checks the configuration for values the pipeline cannot use.
func (c *Config) Validate() error {
	var errs []error
	if c.Preview.MaxWidth <= 0 || c.Preview.MaxHeight <= 0 {
		errs = append(errs, fmt.Errorf("preview size must be positive, got %dx%d", c.Preview.MaxWidth, c.Preview.MaxHeight))
	}
	if c.Preview.SVGBox <= 0 {
		errs = append(errs, fmt.Errorf("svg_box must be positive, got %d", c.Preview.SVGBox))
	}
	if c.HTTP.Timeout < 0 {
		errs = append(errs, fmt.Errorf("http timeout must not be negative, got %s", c.HTTP.Timeout))
	}
	if c.HTTP.MaxBytes < 0 {
		errs = append(errs, fmt.Errorf("http max_bytes must not be negative, got %d", c.HTTP.MaxBytes))
	}
	if c.Search.MaxDepth < 0 {
		errs = append(errs, fmt.Errorf("search max_depth must not be negative, got %d", c.Search.MaxDepth))
	}
	switch c.LogLevel {
	case "", "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("unknown log_level %q", c.LogLevel))
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %w", errors.Join(errs...))
	}
	return nil
}
