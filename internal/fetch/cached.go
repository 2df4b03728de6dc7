package fetch

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/jonathan/advert-optimiser/internal/db"
)

// PageCache stores fetched pages between requests. *db.DB implements it.
type PageCache interface {
	GetFreshPage(ctx context.Context, url string, maxAge time.Duration) (*db.FetchedPage, error)
	SavePage(ctx context.Context, page *db.FetchedPage) error
	RecordFailedFetch(ctx context.Context, url string, httpStatus int, errorMsg string) error
}

// CachedFetcher fetches advert pages, serving fresh copies from a PageCache when one is configured.
type CachedFetcher struct {
	cache    PageCache
	options  *Options
	cacheTTL time.Duration
	logger   *zap.Logger
}

// CachedFetcherConfig holds configuration for the cached fetcher.
type CachedFetcherConfig struct {
	CacheTTL time.Duration
	Options  *Options
	Logger   *zap.Logger
}

// NewCachedFetcher creates a fetcher. cache may be nil to disable caching.
func NewCachedFetcher(cache PageCache, config *CachedFetcherConfig) *CachedFetcher {
	if config == nil {
		config = &CachedFetcherConfig{}
	}
	f := &CachedFetcher{
		cache:    cache,
		options:  config.Options,
		cacheTTL: config.CacheTTL,
		logger:   config.Logger,
	}
	if f.options == nil {
		f.options = DefaultOptions()
	}
	if f.cacheTTL == 0 {
		f.cacheTTL = db.DefaultPageCacheTTL
	}
	if f.logger == nil {
		f.logger = zap.NewNop()
	}
	return f
}

// CachedResult extends Result with cache metadata.
type CachedResult struct {
	*Result
	Platform  Platform
	FromCache bool
}

// Fetch retrieves a URL and extracts its advert text.
// Cache failures are logged and never fail the fetch.
func (f *CachedFetcher) Fetch(ctx context.Context, urlStr string) (*CachedResult, error) {
	platform := DetectPlatform(urlStr)

	if f.cache != nil {
		cached, err := f.cache.GetFreshPage(ctx, urlStr, f.cacheTTL)
		if err != nil {
			f.logger.Warn("page cache lookup failed", zap.String("url", urlStr), zap.Error(err))
		} else if cached != nil {
			f.logger.Debug("serving page from cache", zap.String("url", urlStr))
			return &CachedResult{
				Result: &Result{
					URL:        cached.URL,
					HTML:       derefString(cached.RawHTML),
					Text:       derefString(cached.ParsedText),
					StatusCode: derefInt(cached.HTTPStatus),
				},
				Platform:  platform,
				FromCache: true,
			}, nil
		}
	}

	result, err := URL(ctx, urlStr, f.options)
	if err != nil {
		if f.cache != nil {
			statusCode := 0
			var fetchErr *Error
			if errors.As(err, &fetchErr) {
				statusCode = fetchErr.StatusCode
			}
			if cacheErr := f.cache.RecordFailedFetch(ctx, urlStr, statusCode, err.Error()); cacheErr != nil {
				f.logger.Warn("failed to record fetch failure", zap.String("url", urlStr), zap.Error(cacheErr))
			}
		}
		return nil, err
	}

	text, err := ExtractAdvertText(result.HTML, platform)
	if err != nil {
		return nil, &Error{URL: urlStr, Message: "failed to extract text", Cause: err}
	}
	result.Text = text

	if f.cache != nil {
		page := &db.FetchedPage{
			URL:         urlStr,
			Platform:    string(platform),
			RawHTML:     &result.HTML,
			ParsedText:  &result.Text,
			HTTPStatus:  &result.StatusCode,
			FetchStatus: db.FetchStatusSuccess,
		}
		if err := f.cache.SavePage(ctx, page); err != nil {
			f.logger.Warn("failed to cache page", zap.String("url", urlStr), zap.Error(err))
		}
	}

	return &CachedResult{Result: result, Platform: platform}, nil
}

func derefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func derefInt(i *int) int {
	if i == nil {
		return 0
	}
	return *i
}
