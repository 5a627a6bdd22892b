package imaging

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"
)

var (
	// ErrFetch means the source bytes could not be retrieved.
	ErrFetch = errors.New("failed to fetch image")

	// ErrDecode means the bytes are not a readable image.
	ErrDecode = errors.New("failed to decode image")

	// ErrEmpty means the source produced zero bytes.
	ErrEmpty = errors.New("image source is empty")
)

const (
	DefaultMaxBytes = 20 << 20
	DefaultTimeout  = 30 * time.Second
)

// Fetcher reads image bytes from disk or over HTTP.
type Fetcher struct {
	client    *http.Client
	maxBytes  int64
	userAgent string
}

// FetcherOption configures a Fetcher.
type FetcherOption func(*Fetcher)

// WithHTTPClient replaces the default client.
func WithHTTPClient(c *http.Client) FetcherOption {
	return func(f *Fetcher) {
		if c != nil {
			f.client = c
		}
	}
}

// WithMaxBytes caps how many bytes a single fetch may return.
func WithMaxBytes(n int64) FetcherOption {
	return func(f *Fetcher) {
		if n > 0 {
			f.maxBytes = n
		}
	}
}

// WithUserAgent sets the User-Agent header sent with HTTP requests.
func WithUserAgent(ua string) FetcherOption {
	return func(f *Fetcher) {
		f.userAgent = ua
	}
}

// NewFetcher creates a Fetcher with a DefaultTimeout client and a
// DefaultMaxBytes limit.
func NewFetcher(opts ...FetcherOption) *Fetcher {
	f := &Fetcher{
		client:   &http.Client{Timeout: DefaultTimeout},
		maxBytes: DefaultMaxBytes,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// ReadFile reads a local image file.
func (f *Fetcher) ReadFile(ctx context.Context, path string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open image: %w", errors.Join(ErrFetch, err))
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to stat file: %w", errors.Join(ErrFetch, err))
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%s is a directory: %w", path, ErrFetch)
	}
	if info.Size() > f.maxBytes {
		return nil, fmt.Errorf("%s is %d bytes, limit is %d: %w", path, info.Size(), f.maxBytes, ErrFetch)
	}

	return f.readAll(file, path)
}

// Get downloads an http or https URL. Non-2xx responses are fetch failures.
func (f *Fetcher) Get(ctx context.Context, rawURL string) ([]byte, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse url: %w", errors.Join(ErrFetch, err))
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("unsupported scheme %q: %w", u.Scheme, ErrFetch)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", errors.Join(ErrFetch, err))
	}
	if f.userAgent != "" {
		req.Header.Set("User-Agent", f.userAgent)
	}
	req.Header.Set("Accept", "image/*,*/*;q=0.8")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to download image: %w", errors.Join(ErrFetch, err))
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("failed to download image: HTTP %d: %w", resp.StatusCode, ErrFetch)
	}
	if resp.ContentLength > f.maxBytes {
		return nil, fmt.Errorf("response is %d bytes, limit is %d: %w", resp.ContentLength, f.maxBytes, ErrFetch)
	}

	return f.readAll(resp.Body, rawURL)
}

func (f *Fetcher) readAll(r io.Reader, name string) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, f.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", name, errors.Join(ErrFetch, err))
	}
	if int64(len(data)) > f.maxBytes {
		return nil, fmt.Errorf("%s exceeds %d bytes: %w", name, f.maxBytes, ErrFetch)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("%s: %w", name, ErrEmpty)
	}
	return data, nil
}

// DecodeBase64 decodes a data URI payload. Whitespace is ignored and missing
// padding is tolerated.
func DecodeBase64(payload string) ([]byte, error) {
	payload = strings.Join(strings.Fields(payload), "")
	if payload == "" {
		return nil, ErrEmpty
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		var rawErr error
		data, rawErr = base64.RawStdEncoding.DecodeString(strings.TrimRight(payload, "="))
		if rawErr != nil {
			return nil, fmt.Errorf("invalid base64 payload: %w", errors.Join(ErrDecode, err))
		}
	}
	if len(data) == 0 {
		return nil, ErrEmpty
	}
	return data, nil
}
