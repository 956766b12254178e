// Package fetch downloads job postings and public profile pages and reduces
// their HTML to readable text.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

const (
	// DefaultTimeout bounds a single HTTP attempt.
	DefaultTimeout = 30 * time.Second
	// DefaultUserAgent identifies requests to job boards.
	DefaultUserAgent = "Mozilla/5.0 (compatible; ResumeReview/1.0)"
	// DefaultMaxBodyBytes caps how much of a response body is read.
	DefaultMaxBodyBytes = 5 << 20
	// DefaultRetries is how many extra attempts a throttled or failing host gets.
	DefaultRetries = 1
	// DefaultBackoff is the wait before the first retry; it doubles per attempt.
	DefaultBackoff = 200 * time.Millisecond

	maxRetryWait = 10 * time.Second
)

// ErrLoginWall is returned when a request is redirected to a sign-in page
// instead of the requested content.
var ErrLoginWall = errors.New("page requires sign-in")

// Result is the raw response of a fetch. URL is the final address after
// redirects.
type Result struct {
	URL         string
	HTML        string
	ContentType string
	StatusCode  int
}

// Error describes a failed fetch. StatusCode is zero when no response arrived.
type Error struct {
	URL        string
	StatusCode int
	Message    string
	Cause      error
}

func (e *Error) Error() string {
	msg := "fetch " + e.URL + ": " + e.Message
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// retryable reports whether another attempt could succeed
func (e *Error) retryable() bool {
	if errors.Is(e.Cause, ErrLoginWall) || errors.Is(e.Cause, context.Canceled) || errors.Is(e.Cause, context.DeadlineExceeded) {
		return false
	}
	return e.StatusCode == 0 || e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= 500
}

// Options tune a fetch. The zero value uses the package defaults; set
// Retries to a negative number to disable retrying.
type Options struct {
	Client       *http.Client
	Timeout      time.Duration
	UserAgent    string
	Headers      map[string]string
	MaxBodyBytes int64
	Retries      int
	Backoff      time.Duration
}

func (o *Options) withDefaults() Options {
	var out Options
	if o != nil {
		out = *o
	}
	if out.Timeout <= 0 {
		out.Timeout = DefaultTimeout
	}
	if out.Client == nil {
		out.Client = &http.Client{Timeout: out.Timeout}
	}
	if out.UserAgent == "" {
		out.UserAgent = DefaultUserAgent
	}
	if out.MaxBodyBytes <= 0 {
		out.MaxBodyBytes = DefaultMaxBodyBytes
	}
	switch {
	case out.Retries < 0:
		out.Retries = 0
	case out.Retries == 0:
		out.Retries = DefaultRetries
	}
	if out.Backoff <= 0 {
		out.Backoff = DefaultBackoff
	}
	return out
}

// URL downloads rawURL. Throttling (429) and server errors are retried with
// exponential backoff, honoring Retry-After when the host sends one. On a
// non-200 response the Result is returned alongside the error.
func URL(ctx context.Context, rawURL string, opts *Options) (*Result, error) {
	target, err := url.Parse(rawURL)
	if err != nil || (target.Scheme != "http" && target.Scheme != "https") || target.Host == "" {
		return nil, &Error{URL: rawURL, Message: "invalid URL", Cause: err}
	}
	o := opts.withDefaults()

	for attempt := 0; ; attempt++ {
		result, wait, ferr := get(ctx, rawURL, o)
		if ferr == nil {
			return result, nil
		}
		if attempt >= o.Retries || !ferr.retryable() {
			return result, ferr
		}
		if wait <= 0 {
			wait = o.Backoff << attempt
		}
		timer := time.NewTimer(min(wait, maxRetryWait))
		select {
		case <-ctx.Done():
			timer.Stop()
			return result, &Error{URL: rawURL, Message: "canceled while waiting to retry", Cause: ctx.Err()}
		case <-timer.C:
		}
	}
}

// get performs one attempt, returning the server's Retry-After hint if any
func get(ctx context.Context, rawURL string, o Options) (*Result, time.Duration, *Error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, 0, &Error{URL: rawURL, Message: "building request", Cause: err}
	}
	req.Header.Set("User-Agent", o.UserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")
	for k, v := range o.Headers {
		req.Header.Set(k, v)
	}

	resp, err := o.Client.Do(req)
	if err != nil {
		return nil, 0, &Error{URL: rawURL, Message: "request failed", Cause: err}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.Request != nil && isLoginWall(req.URL, resp.Request.URL) {
		return nil, 0, &Error{URL: rawURL, StatusCode: resp.StatusCode, Message: "redirected to " + resp.Request.URL.Path, Cause: ErrLoginWall}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, o.MaxBodyBytes))
	if err != nil {
		return nil, 0, &Error{URL: rawURL, StatusCode: resp.StatusCode, Message: "reading body", Cause: err}
	}

	result := &Result{
		URL:         rawURL,
		HTML:        string(body),
		ContentType: resp.Header.Get("Content-Type"),
		StatusCode:  resp.StatusCode,
	}
	if resp.Request != nil && resp.Request.URL != nil {
		result.URL = resp.Request.URL.String()
	}
	if resp.StatusCode != http.StatusOK {
		return result, retryAfter(resp.Header.Get("Retry-After")), &Error{
			URL:        rawURL,
			StatusCode: resp.StatusCode,
			Message:    "HTTP status " + strconv.Itoa(resp.StatusCode),
		}
	}
	return result, 0, nil
}

// loginPaths are where LinkedIn and most job boards send anonymous visitors
var loginPaths = []string{"/authwall", "/login", "/signin", "/uas/login", "/checkpoint"}

// isLoginWall reports whether a request for from ended at a sign-in page
func isLoginWall(from, to *url.URL) bool {
	if to == nil || from.String() == to.String() {
		return false
	}
	p := strings.ToLower(to.Path)
	for _, prefix := range loginPaths {
		if p == prefix || strings.HasPrefix(p, prefix+"/") {
			return true
		}
	}
	return false
}

// retryAfter parses a Retry-After header given in seconds or as an HTTP date
func retryAfter(v string) time.Duration {
	if v == "" {
		return 0
	}
	if secs, err := strconv.Atoi(v); err == nil && secs >= 0 {
		return time.Duration(secs) * time.Second
	}
	if at, err := http.ParseTime(v); err == nil {
		return time.Until(at)
	}
	return 0
}

// boilerplate is removed from every page before content selection
const boilerplate = "nav, footer, header, script, style, noscript, svg, iframe, template, " +
	".ad, .ads, .advertisement, .sidebar, .cookie-banner, .popup"

// blockElements break lines when a page is flattened to text
var blockElements = map[string]bool{
	"address": true, "article": true, "aside": true, "blockquote": true, "br": true,
	"dd": true, "div": true, "dl": true, "dt": true, "h1": true, "h2": true, "h3": true,
	"h4": true, "h5": true, "h6": true, "hr": true, "li": true, "ol": true, "p": true,
	"pre": true, "section": true, "table": true, "td": true, "th": true, "tr": true, "ul": true,
}

// ExtractMainText strips boilerplate and the given noise selectors from html,
// then returns the text of the first element matching one of selectors (or
// the body). Block elements become line breaks, so list items and paragraphs
// stay on separate lines.
func ExtractMainText(html string, selectors []string, noise ...string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", fmt.Errorf("parsing HTML: %w", err)
	}

	doc.Find(boilerplate).Remove()
	if len(noise) > 0 {
		doc.Find(strings.Join(noise, ", ")).Remove()
	}

	root := doc.Find("body")
	for _, sel := range selectors {
		if found := doc.Find(sel); found.Length() > 0 {
			root = found.First()
			break
		}
	}

	var sb strings.Builder
	flatten(root, &sb)
	return cleanWhitespace(sb.String()), nil
}

func flatten(sel *goquery.Selection, sb *strings.Builder) {
	sel.Contents().Each(func(_ int, node *goquery.Selection) {
		name := goquery.NodeName(node)
		if name == "#text" {
			sb.WriteString(node.Text())
			return
		}
		block := blockElements[name]
		if block {
			sb.WriteByte('\n')
		}
		flatten(node, sb)
		if block {
			sb.WriteByte('\n')
		}
	})
}

// cleanWhitespace collapses runs of spaces and drops blank lines
func cleanWhitespace(text string) string {
	var lines []string
	for _, line := range strings.Split(text, "\n") {
		if fields := strings.Fields(line); len(fields) > 0 {
			lines = append(lines, strings.Join(fields, " "))
		}
	}
	return strings.Join(lines, "\n")
}
