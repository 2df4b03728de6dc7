package ingestion

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/jonathan/advert-optimiser/internal/fetch"
)

// Renderer returns the HTML of a page after scripts have run
type Renderer func(ctx context.Context, url string) (string, error)

// Options configures URL ingestion
type Options struct {
	UseBrowser     bool            // Retry short pages in a headless browser
	BrowserTimeout time.Duration   // Zero uses fetch.DefaultBrowserTimeout
	Renderer       Renderer        // Overrides the headless browser
	Cache          fetch.PageCache // Optional page cache
	CacheTTL       time.Duration   // How long cached pages are reused; zero uses the fetch default
	Fetch          *fetch.Options
	Logger         *zap.Logger
}

// Extractor turns any Source into advert text
type Extractor struct {
	opts     Options
	fetcher  *fetch.CachedFetcher
	renderer Renderer
	logger   *zap.Logger
}

// NewExtractor creates an extractor. opts may be nil.
func NewExtractor(opts *Options) *Extractor {
	var o Options
	if opts != nil {
		o = *opts
	}
	logger := o.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	e := &Extractor{
		opts: o,
		fetcher: fetch.NewCachedFetcher(o.Cache, &fetch.CachedFetcherConfig{
			CacheTTL: o.CacheTTL,
			Options:  o.Fetch,
			Logger:   logger,
		}),
		renderer: o.Renderer,
		logger:   logger,
	}
	if e.renderer == nil {
		e.renderer = func(ctx context.Context, url string) (string, error) {
			return fetch.WithBrowser(ctx, url, o.BrowserTimeout, logger)
		}
	}
	return e
}

// Extract reads the highest-precedence source: upload, then pasted text, then URL
func (e *Extractor) Extract(ctx context.Context, src Source) (string, *Metadata, error) {
	kind, ok := src.Kind()
	if !ok {
		return "", nil, ErrSourceMissing
	}

	e.logger.Debug("extracting advert text", zap.String("source", string(kind)))
	switch kind {
	case SourceUpload:
		return FromUpload(src.Filename, src.Data)
	case SourcePaste:
		return FromText(src.Text)
	default:
		return e.FromURL(ctx, src.URL)
	}
}
