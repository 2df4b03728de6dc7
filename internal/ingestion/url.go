package ingestion

import (
	"context"

	"go.uber.org/zap"

	"github.com/jonathan/advert-optimiser/internal/fetch"
)

// FromURL fetches a web page and returns its advert text
func FromURL(ctx context.Context, rawURL string, opts *Options) (string, *Metadata, error) {
	return NewExtractor(opts).FromURL(ctx, rawURL)
}

// FromURL fetches a web page and returns its advert text.
// A scheme-less URL is fetched over https. When browser rendering is enabled and the
// plain HTTP text is too short, the page is rendered headlessly and the longer text wins.
func (e *Extractor) FromURL(ctx context.Context, rawURL string) (string, *Metadata, error) {
	urlStr := fetch.NormalizeURL(rawURL)
	if urlStr == "" {
		return "", nil, &ExtractionError{Source: SourceURL, Message: "no URL supplied", Cause: ErrSourceMissing}
	}

	result, err := e.fetcher.Fetch(ctx, urlStr)
	if err != nil {
		return "", nil, &ExtractionError{Source: SourceURL, Message: "could not fetch " + urlStr, Cause: err}
	}
	e.logger.Debug("fetched advert page",
		zap.String("url", urlStr),
		zap.String("platform", string(result.Platform)),
		zap.Bool("from_cache", result.FromCache),
		zap.Int("chars", len(result.Text)),
	)

	text := result.Text
	rendered := false
	if e.opts.UseBrowser && !result.FromCache && fetch.ShouldUseBrowser(text) {
		text, rendered = e.render(ctx, urlStr, result.Platform, text)
	}

	cleaned := CleanText(text)
	if cleaned == "" {
		return "", nil, &ExtractionError{Source: SourceURL, Message: "no text found at " + urlStr}
	}

	metadata := NewMetadata(SourceURL, cleaned)
	metadata.URL = urlStr
	metadata.Platform = string(result.Platform)
	metadata.FromCache = result.FromCache
	metadata.Rendered = rendered
	return cleaned, metadata, nil
}

// render retries a page in the headless browser, keeping the HTTP text when rendering fails or adds nothing
func (e *Extractor) render(ctx context.Context, urlStr string, platform fetch.Platform, httpText string) (string, bool) {
	e.logger.Debug("content too short, rendering in browser",
		zap.String("url", urlStr), zap.Int("chars", len(httpText)))

	html, err := e.renderer(ctx, urlStr)
	if err != nil {
		e.logger.Warn("browser rendering failed, using HTTP content", zap.String("url", urlStr), zap.Error(err))
		return httpText, false
	}

	text, err := fetch.ExtractAdvertText(html, platform)
	if err != nil || len(text) <= len(httpText) {
		return httpText, false
	}
	return text, true
}
