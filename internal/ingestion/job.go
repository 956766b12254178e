package ingestion

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jonathan/resume-review/internal/fetch"
)

// DefaultBrowserTimeout bounds a headless browser render
const DefaultBrowserTimeout = 30 * time.Second

var (
	// ErrHTTPRequestFailed is returned when HTTP request fails
	ErrHTTPRequestFailed = fmt.Errorf("HTTP request failed")
	// ErrNoContent is returned when a page yields no usable text
	ErrNoContent = fmt.Errorf("no content extracted")
)

// FetchJobDescription fetches a job posting and returns its cleaned text.
// Platform-specific selectors are applied for known job boards. When useBrowser
// is set, pages that render client-side are re-fetched in a headless browser.
func FetchJobDescription(ctx context.Context, urlStr string, useBrowser bool) (string, *Metadata, error) {
	var renderer fetch.Renderer
	if useBrowser {
		renderer = fetch.BrowserRenderer(DefaultBrowserTimeout)
	}
	return fetchJobDescription(ctx, urlStr, renderer)
}

func fetchJobDescription(ctx context.Context, urlStr string, renderer fetch.Renderer) (string, *Metadata, error) {
	platform := fetch.DetectPlatform(urlStr)
	slog.Debug("fetching job description", "url", urlStr, "platform", platform)

	page, err := fetch.FetchPage(ctx, urlStr, fetch.PageOptions{
		Selectors: fetch.PlatformContentSelectors(platform),
		Noise:     fetch.PlatformNoiseSelectors(platform),
		Browser:   renderer,
	})
	if err != nil {
		return "", nil, fmt.Errorf("%w: %w", ErrHTTPRequestFailed, err)
	}

	cleanedText := CleanText(page.Text)
	if cleanedText == "" {
		return "", nil, &Error{Source: urlStr, Message: "job description", Cause: ErrNoContent}
	}
	slog.Debug("job description extracted", "url", urlStr, "chars", len(cleanedText), "rendered", page.Rendered)

	metadata := newMetadata(SourceURL, cleanedText)
	metadata.URL = urlStr
	metadata.Platform = string(platform)
	metadata.Rendered = page.Rendered
	return cleanedText, metadata, nil
}
