package preview

import (
	"bytes"
	"context"
	"encoding/base64"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ironsheep/image-preview-mcp/internal/imaging"
	"github.com/ironsheep/image-preview-mcp/internal/reference"
	"github.com/ironsheep/image-preview-mcp/internal/resolve"
)

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for i := range img.Pix {
		img.Pix[i] = 0xff
	}
	img.Set(0, 0, color.RGBA{255, 0, 0, 255})
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func writeFile(t *testing.T, data []byte, parts ...string) string {
	t.Helper()
	path := filepath.Join(parts...)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

// newProject lays out a project with a go.mod marker and a markdown source.
func newProject(t *testing.T) (root, source string) {
	t.Helper()
	root = t.TempDir()
	writeFile(t, []byte("module example\n"), root, "go.mod")
	source = writeFile(t, []byte("# docs\n"), root, "docs", "readme.md")
	return root, source
}

func TestLookupFileRoundTrip(t *testing.T) {
	root, source := newProject(t)
	data := pngBytes(t, 8, 4)
	writeFile(t, data, root, "docs", "img", "logo.png")

	res, err := New().Lookup(context.Background(), "![logo](img/logo.png)", 10, source)
	require.NoError(t, err)
	require.NotNil(t, res)

	assert.Equal(t, reference.KindFile, res.Reference.Kind)
	assert.Equal(t, filepath.Join(root, "docs", "img", "logo.png"), res.Locator)
	assert.Equal(t, int64(len(data)), res.SizeBytes)
	require.True(t, res.Decoded())
	assert.Equal(t, 8, res.Image.Info.Width)
	assert.Equal(t, 4, res.Image.Info.Height)
	assert.Equal(t, "8x4 ("+imaging.SizeLabel(int64(len(data)))+")", res.Summary())
}

func TestLookupBase64(t *testing.T) {
	data := pngBytes(t, 3, 2)
	line := `<img src="data:image/png;base64,` + base64.StdEncoding.EncodeToString(data) + `">`

	res, err := New().Lookup(context.Background(), line, 20, "")
	require.NoError(t, err)
	assert.Equal(t, reference.KindBase64, res.Reference.Kind)
	assert.Equal(t, int64(len(data)), res.SizeBytes)
	assert.Equal(t, 3, res.Image.Info.Width)
}

func TestLookupMalformedBase64(t *testing.T) {
	line := `<img src="data:image/png;base64,@@@@not*base64">`

	res, err := New().Lookup(context.Background(), line, 20, "")
	require.ErrorIs(t, err, ErrDecode)
	require.NotNil(t, res, "the match itself is still reported")
	assert.Equal(t, reference.KindBase64, res.Reference.Kind)
	assert.False(t, res.Decoded())
	assert.ErrorIs(t, res.Err, ErrDecode)
	assert.Equal(t, NotResolvedMessage, res.Summary())
}

func TestLookupCorruptImage(t *testing.T) {
	line := `data:image/png;base64,` + base64.StdEncoding.EncodeToString([]byte("not a png"))
	res, err := New().Lookup(context.Background(), line, 5, "")
	require.ErrorIs(t, err, ErrDecode)
	assert.Equal(t, int64(9), res.SizeBytes)
	assert.Nil(t, res.Image)
}

func TestLookupNoMatch(t *testing.T) {
	res, err := New().Lookup(context.Background(), "nothing to see here", 3, "")
	assert.ErrorIs(t, err, ErrNoMatch)
	assert.Nil(t, res)
}

func TestLookupUnresolved(t *testing.T) {
	_, source := newProject(t)

	res, err := New().Lookup(context.Background(), "missing.png", 0, source)
	require.ErrorIs(t, err, ErrUnresolved)
	assert.ErrorIs(t, err, resolve.ErrNotFound)
	require.NotNil(t, res)
	assert.False(t, res.Resolved())
	assert.Equal(t, "missing.png", res.Reference.Token)
}

func TestLookupHTTP(t *testing.T) {
	data := pngBytes(t, 5, 5)
	mux := http.NewServeMux()
	mux.HandleFunc("/img/a.png", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write(data)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	engine := New(WithFetcher(imaging.NewFetcher(imaging.WithHTTPClient(srv.Client()))))

	line := `<img src="` + srv.URL + `/img/a.png">`
	res, err := engine.Lookup(context.Background(), line, 15, "")
	require.NoError(t, err)
	assert.Equal(t, reference.KindHTTP, res.Reference.Kind)
	assert.Equal(t, srv.URL+"/img/a.png", res.Locator)
	assert.Equal(t, int64(len(data)), res.SizeBytes)

	line = `<img src="` + srv.URL + `/img/gone.png">`
	res, err = engine.Lookup(context.Background(), line, 15, "")
	require.ErrorIs(t, err, ErrFetch)
	assert.True(t, res.Resolved())
	assert.False(t, res.Decoded())
}

func TestLookupSVG(t *testing.T) {
	root, source := newProject(t)
	svg := `<svg xmlns="http://www.w3.org/2000/svg" width="1000" height="500"><rect width="1000" height="500" fill="blue"/></svg>`
	writeFile(t, []byte(svg), root, "assets", "banner.svg")

	res, err := New().Lookup(context.Background(), `src="/assets/banner.svg"`, 8, source)
	require.NoError(t, err)
	assert.Equal(t, reference.FormatSVG, res.Reference.Format)
	assert.Equal(t, 500, res.Image.Info.Width)
	assert.Equal(t, 250, res.Image.Info.Height)
	assert.Equal(t, int64(len(svg)), res.SizeBytes)
}

func TestLookupCancelled(t *testing.T) {
	_, source := newProject(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New().Lookup(ctx, "logo.png", 0, source)
	assert.ErrorIs(t, err, context.Canceled)
	assert.NotErrorIs(t, err, ErrUnresolved)
}

func TestLookupAll(t *testing.T) {
	root, source := newProject(t)
	writeFile(t, pngBytes(t, 2, 2), root, "docs", "a.png")

	results, err := New(WithConcurrency(1)).LookupAll(context.Background(), "a.png then b.gif", source)
	require.NoError(t, err)
	require.Len(t, results, 2)

	assert.Equal(t, "a.png", results[0].Reference.Token)
	assert.True(t, results[0].Decoded())
	assert.NoError(t, results[0].Err)

	assert.Equal(t, "b.gif", results[1].Reference.Token)
	assert.ErrorIs(t, results[1].Err, ErrUnresolved)

	results, err = New().LookupAll(context.Background(), "no images", source)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestResolveAndFetchSteps(t *testing.T) {
	root, source := newProject(t)
	data := pngBytes(t, 6, 6)
	want := writeFile(t, data, root, "docs", "pic.png")

	engine := New()
	ref, ok := engine.Find("see pic.png", 5, source)
	require.True(t, ok)

	locator, err := engine.Resolve(context.Background(), ref)
	require.NoError(t, err)
	assert.Equal(t, want, locator)

	res, err := engine.Fetch(context.Background(), ref, locator)
	require.NoError(t, err)
	assert.Equal(t, ref, res.Reference)
	assert.Equal(t, int64(len(data)), res.SizeBytes)
}
