package fetch

import (
	"context"
	"log/slog"
)

// PageOptions configure Page
type PageOptions struct {
	Fetch     *Options
	Selectors []string
	Noise     []string
	// Browser, when set, re-renders pages whose static HTML yields too little text.
	Browser Renderer
}

// Page is a fetched and text-extracted document
type Page struct {
	URL      string
	HTML     string
	Text     string
	Rendered bool
}

// FetchPage retrieves a URL and extracts its main text, falling back to a
// browser render when the static HTML looks like a JavaScript shell. A failed
// render keeps the static result.
func FetchPage(ctx context.Context, urlStr string, opts PageOptions) (*Page, error) {
	selectors := opts.Selectors
	if len(selectors) == 0 {
		selectors = PlatformContentSelectors(DetectPlatform(urlStr))
	}

	result, err := URL(ctx, urlStr, opts.Fetch)
	if err != nil {
		return nil, err
	}

	text, err := ExtractMainText(result.HTML, selectors, opts.Noise...)
	if err != nil {
		return nil, &Error{URL: urlStr, Message: "content extraction failed", Cause: err}
	}

	page := &Page{URL: urlStr, HTML: result.HTML, Text: text}
	if opts.Browser == nil || !ShouldUseBrowser(text) {
		return page, nil
	}

	slog.Debug("content too short, rendering in browser", "url", urlStr, "chars", len(text))
	html, err := opts.Browser(ctx, urlStr)
	if err != nil {
		slog.Warn("browser rendering failed, using static content", "url", urlStr, "error", err)
		return page, nil
	}
	rendered, err := ExtractMainText(html, selectors, opts.Noise...)
	if err != nil {
		slog.Warn("browser content extraction failed", "url", urlStr, "error", err)
		return page, nil
	}

	return &Page{URL: urlStr, HTML: html, Text: rendered, Rendered: true}, nil
}
