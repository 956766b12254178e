package fetch

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/chromedp/chromedp"
)

// MinContentLength is the shortest extracted text accepted from static HTML.
// Anything shorter is treated as a client-rendered shell.
const MinContentLength = 500

// settleDelay gives client-side frameworks time to populate the page
const settleDelay = 2 * time.Second

// Renderer returns the HTML of url after scripts have run.
type Renderer func(ctx context.Context, url string) (string, error)

// ShouldUseBrowser reports whether text is too thin to be the real page.
func ShouldUseBrowser(text string) bool {
	return len(strings.TrimSpace(text)) < MinContentLength
}

var browserFlags = append(chromedp.DefaultExecAllocatorOptions[:],
	chromedp.Flag("headless", true),
	chromedp.Flag("disable-gpu", true),
	chromedp.Flag("no-sandbox", true),
	chromedp.Flag("disable-dev-shm-usage", true),
	chromedp.UserAgent(DefaultUserAgent),
)

// BrowserRenderer returns a Renderer that drives a local headless Chrome.
// Each call starts and tears down its own browser and gives up after timeout.
func BrowserRenderer(timeout time.Duration) Renderer {
	return func(ctx context.Context, url string) (string, error) {
		start := time.Now()

		allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, browserFlags...)
		defer cancelAlloc()
		tabCtx, cancelTab := chromedp.NewContext(allocCtx)
		defer cancelTab()
		tabCtx, cancelTimeout := context.WithTimeout(tabCtx, timeout)
		defer cancelTimeout()

		var html string
		err := chromedp.Run(tabCtx,
			chromedp.Navigate(url),
			chromedp.WaitReady("body"),
			chromedp.Sleep(settleDelay),
			dismissConsent(),
			// Lazy sections such as LinkedIn's experience list load on scroll
			chromedp.Evaluate(`window.scrollTo(0, document.body.scrollHeight)`, nil),
			chromedp.Sleep(settleDelay/2),
			chromedp.OuterHTML("html", &html),
		)
		if err != nil {
			return "", fmt.Errorf("rendering %s: %w", url, err)
		}

		slog.Debug("rendered page in browser", "url", url, "bytes", len(html), "elapsed", time.Since(start))
		return html, nil
	}
}

// dismissConsent clicks a visible cookie "accept" button if the page has one
func dismissConsent() chromedp.Action {
	return chromedp.ActionFunc(func(ctx context.Context) error {
		_ = chromedp.Click(`button[id*="accept"], button[class*="accept"]`, chromedp.NodeVisible, chromedp.AtLeast(0)).Do(ctx)
		return nil
	})
}
