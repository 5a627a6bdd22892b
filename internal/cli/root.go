// Package cli implements the image-preview command line.
package cli

import (
	"fmt"
	"net/http"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ironsheep/image-preview-mcp/internal/config"
	"github.com/ironsheep/image-preview-mcp/internal/imaging"
	"github.com/ironsheep/image-preview-mcp/internal/logging"
	"github.com/ironsheep/image-preview-mcp/internal/preview"
	"github.com/ironsheep/image-preview-mcp/internal/project"
	"github.com/ironsheep/image-preview-mcp/internal/reference"
	"github.com/ironsheep/image-preview-mcp/internal/resolve"
)

var (
	version   = "dev"
	buildTime = "unknown"
	gitCommit = "unknown"
)

// Global flags
var (
	configPath string
	logLevel   string
)

var rootCmd = &cobra.Command{
	Use:   "image-preview",
	Short: "Find, resolve and preview image references in source text",
	Long: `image-preview finds image references in a line of text (file paths,
http(s) and protocol-relative URLs, pack:// component URIs and base64 data
URIs), resolves them against the document's project and decodes them.

Run without a subcommand it serves the MCP protocol on stdin/stdout.`,
	SilenceUsage: true,
	Args:         cobra.NoArgs,
	RunE:         runServe,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default $IMAGE_PREVIEW_CONFIG or ~/.image-preview/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: debug, info, warn, error")
}

// SetVersion sets the version reported by the version command and the MCP
// handshake.
func SetVersion(v string) {
	version = v
}

// SetBuildInfo records build metadata shown by the version command.
func SetBuildInfo(builtAt, commit string) {
	buildTime = builtAt
	gitCommit = commit
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// app is the wiring shared by every subcommand.
type app struct {
	cfg    *config.Config
	log    *zap.Logger
	engine *preview.Engine
}

func loadConfig() (*config.Config, error) {
	var loader *config.Loader
	if configPath != "" {
		loader = config.NewLoaderWithPath(configPath)
	} else {
		var err error
		if loader, err = config.NewLoader(); err != nil {
			return nil, err
		}
	}

	cfg, err := loader.Load()
	if err != nil {
		return nil, err
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}
	return cfg, nil
}

func setup() (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	log, err := logging.New(cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	return &app{cfg: cfg, log: log, engine: newEngine(cfg, log)}, nil
}

// newEngine builds the preview pipeline from cfg.
func newEngine(cfg *config.Config, log *zap.Logger) *preview.Engine {
	finder := reference.NewFinder(reference.WithExtensions(cfg.Extensions...))

	locator := project.NewLocator(cfg.Project.Markers, cfg.Project.AssetDirs)
	resolver := resolve.New(locator,
		resolve.WithSearchOptions(resolve.SearchOptions{
			MaxDepth:    cfg.Search.MaxDepth,
			ExcludeDirs: cfg.Search.ExcludeDirs,
		}),
		resolve.WithLogger(log),
	)

	timeout := cfg.HTTP.Timeout
	if timeout == 0 {
		timeout = imaging.DefaultTimeout
	}
	userAgent := cfg.HTTP.UserAgent
	if userAgent == config.DefaultUserAgent {
		userAgent = fmt.Sprintf("%s/%s", config.DefaultUserAgent, version)
	}
	fetcher := imaging.NewFetcher(
		imaging.WithHTTPClient(&http.Client{Timeout: timeout}),
		imaging.WithMaxBytes(cfg.HTTP.MaxBytes),
		imaging.WithUserAgent(userAgent),
	)

	return preview.New(
		preview.WithFinder(finder),
		preview.WithResolver(resolver),
		preview.WithFetcher(fetcher),
		preview.WithDecoder(imaging.Decoder{SVGBox: cfg.Preview.SVGBox}),
		preview.WithLogger(log),
	)
}
