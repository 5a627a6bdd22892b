package preview

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/ironsheep/image-preview-mcp/internal/imaging"
	"github.com/ironsheep/image-preview-mcp/internal/project"
	"github.com/ironsheep/image-preview-mcp/internal/reference"
	"github.com/ironsheep/image-preview-mcp/internal/resolve"
)

// DefaultConcurrency bounds LookupAll fan-out.
const DefaultConcurrency = 4

// Engine wires the finder, resolver, fetcher and decoder together.
type Engine struct {
	finder      *reference.Finder
	resolver    *resolve.Resolver
	fetcher     *imaging.Fetcher
	decoder     imaging.Decoder
	log         *zap.Logger
	concurrency int
}

// Option configures an Engine.
type Option func(*Engine)

func WithFinder(f *reference.Finder) Option {
	return func(e *Engine) { e.finder = f }
}

func WithResolver(r *resolve.Resolver) Option {
	return func(e *Engine) { e.resolver = r }
}

func WithFetcher(f *imaging.Fetcher) Option {
	return func(e *Engine) { e.fetcher = f }
}

func WithDecoder(d imaging.Decoder) Option {
	return func(e *Engine) { e.decoder = d }
}

func WithLogger(log *zap.Logger) Option {
	return func(e *Engine) {
		if log != nil {
			e.log = log
		}
	}
}

// WithConcurrency bounds how many references LookupAll processes at once.
func WithConcurrency(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.concurrency = n
		}
	}
}

// New creates an Engine. Unset components default to the shared Finder, a
// resolver over marker-based project discovery, and a default Fetcher.
func New(opts ...Option) *Engine {
	e := &Engine{
		log:         zap.NewNop(),
		concurrency: DefaultConcurrency,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.finder == nil {
		e.finder = reference.Default()
	}
	if e.resolver == nil {
		e.resolver = resolve.New(project.NewLocator(nil, nil), resolve.WithLogger(e.log))
	}
	if e.fetcher == nil {
		e.fetcher = imaging.NewFetcher()
	}
	return e
}

// Finder returns the engine's reference finder.
func (e *Engine) Finder() *reference.Finder {
	return e.finder
}

// Find returns the reference under cursor, if any.
func (e *Engine) Find(line string, cursor int, sourcePath string) (reference.Reference, bool) {
	return e.finder.Find(line, cursor, sourcePath)
}

// Resolve maps ref to its locator. Errors wrap ErrUnresolved.
func (e *Engine) Resolve(ctx context.Context, ref reference.Reference) (locator string, err error) {
	defer func() {
		if r := recover(); r != nil {
			locator, err = "", fmt.Errorf("%w: resolver panicked: %v", ErrUnresolved, r)
		}
	}()

	locator, err = e.resolver.Resolve(ctx, ref)
	if err != nil {
		return "", classify(ErrUnresolved, err)
	}
	return locator, nil
}

// Fetch reads and decodes the bytes behind locator. Errors wrap ErrFetch or
// ErrDecode; a returned Result always carries ref and locator.
func (e *Engine) Fetch(ctx context.Context, ref reference.Reference, locator string) (res *Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: fetch panicked: %v", ErrFetch, r)
			res = &Result{Reference: ref, Locator: locator, Err: err}
		}
	}()

	data, err := e.read(ctx, ref, locator)
	if err != nil {
		return &Result{Reference: ref, Locator: locator, Err: err}, err
	}

	decoded, err := e.decoder.Decode(data, ref.Format)
	if err != nil {
		err = classify(ErrDecode, err)
		return &Result{Reference: ref, Locator: locator, SizeBytes: int64(len(data)), Err: err}, err
	}

	return &Result{
		Reference: ref,
		Locator:   locator,
		SizeBytes: int64(len(data)),
		Image:     decoded,
	}, nil
}

func (e *Engine) read(ctx context.Context, ref reference.Reference, locator string) ([]byte, error) {
	switch ref.Kind {
	case reference.KindBase64:
		data, err := imaging.DecodeBase64(locator)
		if err != nil {
			return nil, classify(ErrDecode, err)
		}
		return data, nil
	case reference.KindHTTP:
		data, err := e.fetcher.Get(ctx, locator)
		if err != nil {
			return nil, e.fetchError(err)
		}
		return data, nil
	case reference.KindFile, reference.KindPack:
		data, err := e.fetcher.ReadFile(ctx, locator)
		if err != nil {
			return nil, e.fetchError(err)
		}
		return data, nil
	default:
		return nil, fmt.Errorf("%w: unknown reference kind %v", ErrFetch, ref.Kind)
	}
}

// fetchError maps an empty source to a decode failure and everything else
// to a fetch failure.
func (e *Engine) fetchError(err error) error {
	if errors.Is(err, imaging.ErrEmpty) {
		return classify(ErrDecode, err)
	}
	return classify(ErrFetch, err)
}

// FetchAndDecode resolves ref and fetches it.
func (e *Engine) FetchAndDecode(ctx context.Context, ref reference.Reference) (*Result, error) {
	locator, err := e.Resolve(ctx, ref)
	if err != nil {
		return &Result{Reference: ref, Err: err}, err
	}
	return e.Fetch(ctx, ref, locator)
}

// Lookup finds the reference under cursor and runs it through the pipeline.
//
// With no reference it returns nil and ErrNoMatch. Otherwise the Result is
// always non-nil, even when err reports a later failure.
func (e *Engine) Lookup(ctx context.Context, line string, cursor int, sourcePath string) (*Result, error) {
	ref, ok := e.Find(line, cursor, sourcePath)
	if !ok {
		return nil, ErrNoMatch
	}

	res, err := e.FetchAndDecode(ctx, ref)
	e.logResult(res, err)
	return res, err
}

// LookupAll runs every reference on the line through the pipeline
// concurrently. Results are in line order; per-reference failures are
// recorded in Result.Err. Only cancellation of ctx is returned as an error.
func (e *Engine) LookupAll(ctx context.Context, line, sourcePath string) ([]*Result, error) {
	refs := e.finder.FindAll(line, sourcePath)
	results := make([]*Result, len(refs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.concurrency)
	for i, ref := range refs {
		g.Go(func() error {
			res, err := e.FetchAndDecode(gctx, ref)
			e.logResult(res, err)
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return results, err
	}
	return results, ctx.Err()
}

func (e *Engine) logResult(res *Result, err error) {
	if res == nil {
		return
	}
	fields := []zap.Field{
		zap.Stringer("resolver", res.Reference.Kind),
		zap.Stringer("format", res.Reference.Format),
		zap.String("locator", truncate(res.Locator, 120)),
	}
	if err != nil {
		e.log.Debug("image preview failed", append(fields, zap.Error(err))...)
		return
	}
	e.log.Debug("image preview decoded", append(fields,
		zap.Int64("size_bytes", res.SizeBytes),
		zap.Int("width", res.Image.Info.Width),
		zap.Int("height", res.Image.Info.Height))...)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
