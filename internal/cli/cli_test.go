package cli

import (
	"bytes"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ironsheep/image-preview-mcp/internal/config"
	"github.com/ironsheep/image-preview-mcp/internal/preview"
)

// run executes the root command with args and a config path that does not
// exist, so defaults apply regardless of the host's home directory.
func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	t.Setenv(config.EnvLogLevel, "")

	configPath, logLevel, previewOutput, scanFindOnly = "", "", "", false
	t.Cleanup(func() {
		configPath, logLevel, previewOutput, scanFindOnly = "", "", "", false
	})

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&bytes.Buffer{})
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetArgs(append(args, "--config", filepath.Join(t.TempDir(), "none.yaml"), "--log-level", "error"))

	err := rootCmd.Execute()
	return out.String(), err
}

func writePNG(t *testing.T, path string, w, h int) {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i], img.Pix[i+3] = 0x80, 0xff
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))
}

// createProject writes root/go.mod, root/docs/img/logo.png (4x3) and a
// markdown file referencing it on line 2.
func createProject(t *testing.T) (root, doc string) {
	t.Helper()
	root = t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "go.mod"), []byte("module example\n"), 0o644))
	writePNG(t, filepath.Join(root, "docs", "img", "logo.png"), 4, 3)
	doc = filepath.Join(root, "docs", "readme.md")
	content := "# Title\n![logo](img/logo.png) and ![gone](img/gone.gif)\nplain\n"
	require.NoError(t, os.WriteFile(doc, []byte(content), 0o644))
	return root, doc
}

func TestParsePosition(t *testing.T) {
	tests := []struct {
		in      string
		want    position
		wantErr bool
	}{
		{"12:5", position{12, 5}, false},
		{"3", position{3, 1}, false},
		{"0:1", position{}, true},
		{"2:0", position{}, true},
		{"a:b", position{}, true},
		{"", position{}, true},
	}
	for _, tt := range tests {
		got, err := parsePosition(tt.in)
		if tt.wantErr {
			assert.Error(t, err, tt.in)
			continue
		}
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got)
	}
	assert.Equal(t, 4, position{Line: 1, Column: 5}.cursor())
}

func TestReadLine(t *testing.T) {
	path := filepath.Join(t.TempDir(), "f.txt")
	require.NoError(t, os.WriteFile(path, []byte("one\r\ntwo\nthree"), 0o644))

	line, err := readLine(path, 1)
	require.NoError(t, err)
	assert.Equal(t, "one", line)

	line, err = readLine(path, 3)
	require.NoError(t, err)
	assert.Equal(t, "three", line)

	_, err = readLine(path, 4)
	assert.Error(t, err)
}

func TestShorten(t *testing.T) {
	assert.Equal(t, "short.png", shorten("short.png"))
	long := strings.Repeat("é", 100)
	got := shorten(long)
	assert.Len(t, []rune(got), maxTokenWidth)
	assert.True(t, strings.HasSuffix(got, "..."))
}

func TestNewEngineFromConfig(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Extensions = []string{"jfif"}

	engine := newEngine(cfg, zap.NewNop())
	assert.Contains(t, engine.Finder().Extensions(), "jfif")

	ref, ok := engine.Find("photo.jfif", 2, "")
	require.True(t, ok)
	assert.Equal(t, "photo.jfif", ref.Token)
}

func TestFindCommand(t *testing.T) {
	_, doc := createProject(t)

	out, err := run(t, "", "find", doc, "2:10")
	require.NoError(t, err)
	assert.Contains(t, out, `"token": "img/logo.png"`)
	assert.Contains(t, out, `"resolver": "File"`)

	_, err = run(t, "", "find", doc, "3:2")
	assert.ErrorContains(t, err, "no image reference")

	_, err = run(t, "", "find", doc, "nope")
	assert.Error(t, err)
}

func TestPreviewCommand(t *testing.T) {
	root, doc := createProject(t)
	outPath := filepath.Join(t.TempDir(), "out.png")

	out, err := run(t, "", "preview", doc, "2:10", "-o", outPath)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "4x3 ("), out)
	assert.Contains(t, out, filepath.Join(root, "docs", "img", "logo.png"))

	f, err := os.Open(outPath)
	require.NoError(t, err)
	defer f.Close()
	cfg, err := png.DecodeConfig(f)
	require.NoError(t, err)
	assert.Equal(t, 4, cfg.Width)
	assert.Equal(t, 3, cfg.Height)
}

func TestPreviewCommandUnresolved(t *testing.T) {
	_, doc := createProject(t)

	out, err := run(t, "", "preview", doc, "2:40")
	require.ErrorIs(t, err, preview.ErrUnresolved)
	assert.Contains(t, out, preview.NotResolvedMessage)
}

func TestScanCommand(t *testing.T) {
	_, doc := createProject(t)

	out, err := run(t, "", "scan", doc)
	require.NoError(t, err)
	assert.Contains(t, out, "2:9")
	assert.Contains(t, out, "4x3 (")
	assert.Contains(t, out, preview.NotResolvedMessage)
	assert.Contains(t, out, "2 image reference(s)")

	out, err = run(t, "", "scan", "--find-only", doc)
	require.NoError(t, err)
	assert.Contains(t, out, "img/gone.gif")
	assert.NotContains(t, out, "4x3")
}

func TestVersionCommand(t *testing.T) {
	old := version
	t.Cleanup(func() { version = old })
	SetVersion("1.2.3")

	out, err := run(t, "", "version")
	require.NoError(t, err)
	assert.Contains(t, out, "image-preview-mcp 1.2.3")
}

func TestServeCommand(t *testing.T) {
	out, err := run(t, `{"jsonrpc":"2.0","id":7,"method":"ping"}`+"\n", "serve")
	require.NoError(t, err)
	assert.Contains(t, out, `"id":7`)
}

func TestLoadConfigLogLevelFlag(t *testing.T) {
	t.Setenv(config.EnvLogLevel, "")
	configPath = filepath.Join(t.TempDir(), "none.yaml")
	logLevel = "debug"
	t.Cleanup(func() { configPath, logLevel = "", "" })

	cfg, err := loadConfig()
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.LogLevel)
}
