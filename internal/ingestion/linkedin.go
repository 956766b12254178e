package ingestion

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/jonathan/resume-review/internal/fetch"
	"github.com/jonathan/resume-review/internal/types"
)

// Selectors for the logged-out public profile layout
const (
	publicItemSelector     = "li.experience-item, li.experience-group-position"
	publicTitleSelector    = ".experience-item__title, h3"
	publicCompanySelector  = ".experience-item__subtitle, h4"
	publicGroupSelector    = "li.experience-group"
	publicGroupCompany     = ".experience-group-header__company"
	publicDateSelector     = ".date-range"
	publicDescriptionMore  = ".show-more-less-text__text--more"
	publicDescriptionLess  = ".show-more-less-text__text--less"
	publicDescriptionBlock = ".experience-item__description, .experience-group-position__description"
)

// Selectors for a saved copy of the logged-in profile page
const (
	savedSectionSelector = "section:has(#experience)"
	savedItemSelector    = "li.artdeco-list__item"
	savedTextSelector    = "span[aria-hidden='true']"
)

var (
	dateRangePattern = regexp.MustCompile(`(?i)^((jan|feb|mar|apr|may|jun|jul|aug|sep|oct|nov|dec)[a-z]*\.?\s+)?\d{4}(\s*[-–—]|\s*$|\s+·)`)
	dateSeparator    = regexp.MustCompile(`\s+[-–—]\s+|\s*[–—]\s*`)
	locationSuffix   = regexp.MustCompile(`(?i)(remote|hybrid|on-site|onsite)$`)
)

// ParseLinkedInHTML extracts work-history roles from a LinkedIn profile page.
// Both the public layout and a saved logged-in page are understood. Bullets
// are returned as found, including scraping artifacts such as skill summaries.
func ParseLinkedInHTML(html string) (*types.RoleSet, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, &Error{Source: "linkedin", Message: "failed to parse HTML", Cause: err}
	}

	roles := parsePublicLayout(doc)
	if len(roles) == 0 {
		roles = parseSavedLayout(doc)
	}
	if len(roles) == 0 {
		return nil, &Error{Source: "linkedin", Message: "no experience entries found"}
	}
	return &types.RoleSet{Roles: roles}, nil
}

func parsePublicLayout(doc *goquery.Document) []types.Role {
	var roles []types.Role
	doc.Find(publicItemSelector).Each(func(_ int, item *goquery.Selection) {
		if item.Is(publicGroupSelector) {
			return
		}
		role := types.Role{
			Title: firstText(item, publicTitleSelector),
		}
		if group := item.Closest(publicGroupSelector); group.Length() > 0 {
			role.Company = firstText(group, publicGroupCompany)
		} else {
			role.Company = firstText(item, publicCompanySelector)
		}
		role.StartDate, role.EndDate = publicDates(item.Find(publicDateSelector).First())
		role.Bullets = publicBullets(item)
		if role.Title != "" {
			roles = append(roles, role)
		}
	})
	return roles
}

func publicDates(sel *goquery.Selection) (string, string) {
	times := sel.Find("time")
	switch {
	case times.Length() >= 2:
		return collapse(times.Eq(0).Text()), collapse(times.Eq(1).Text())
	case times.Length() == 1 && strings.Contains(strings.ToLower(sel.Text()), "present"):
		return collapse(times.Eq(0).Text()), "Present"
	default:
		return splitDateRange(sel.Text())
	}
}

func publicBullets(item *goquery.Selection) []string {
	desc := item.Find(publicDescriptionMore).First()
	if desc.Length() == 0 {
		desc = item.Find(publicDescriptionLess).First()
	}
	if desc.Length() == 0 {
		desc = item.Find(publicDescriptionBlock).First()
	}
	if desc.Length() == 0 {
		return nil
	}
	return descriptionLines(desc)
}

func parseSavedLayout(doc *goquery.Document) []types.Role {
	var roles []types.Role
	doc.Find(savedSectionSelector).First().Find(savedItemSelector).Each(func(_ int, item *goquery.Selection) {
		// Nested lists hold sub-components already covered by their parent item
		if item.ParentsFiltered(savedItemSelector).Length() > 0 {
			return
		}
		lines := savedLines(item)
		if len(lines) < 2 {
			return
		}

		role := types.Role{Title: lines[0]}
		company, _, _ := strings.Cut(lines[1], " · ")
		role.Company = strings.TrimSpace(company)

		rest := lines[2:]
		if len(rest) > 0 && dateRangePattern.MatchString(rest[0]) {
			role.StartDate, role.EndDate = splitDateRange(rest[0])
			rest = rest[1:]
		}
		if len(rest) > 0 && looksLikeLocation(rest[0]) {
			rest = rest[1:]
		}
		for _, line := range rest {
			role.Bullets = append(role.Bullets, splitLines(line)...)
		}
		roles = append(roles, role)
	})
	return roles
}

// savedLines returns the visible text runs of an item in document order.
// LinkedIn repeats each run for screen readers, so consecutive duplicates are dropped.
func savedLines(item *goquery.Selection) []string {
	var lines []string
	item.Find(savedTextSelector).Each(func(_ int, span *goquery.Selection) {
		// Only the innermost spans carry text
		if span.Find(savedTextSelector).Length() > 0 {
			return
		}
		span.Find("br").ReplaceWithHtml("\n")
		text := strings.TrimSpace(span.Text())
		if text == "" || (len(lines) > 0 && lines[len(lines)-1] == text) {
			return
		}
		lines = append(lines, text)
	})
	return lines
}

func descriptionLines(desc *goquery.Selection) []string {
	if items := desc.Find("li"); items.Length() > 0 {
		var lines []string
		items.Each(func(_ int, li *goquery.Selection) {
			if text := bulletText(collapse(li.Text())); text != "" {
				lines = append(lines, text)
			}
		})
		return lines
	}
	desc.Find("br").ReplaceWithHtml("\n")
	desc.Find("p").Each(func(_ int, p *goquery.Selection) {
		p.AppendHtml("\n")
	})
	return splitLines(desc.Text())
}

func splitLines(text string) []string {
	text = strings.ReplaceAll(text, " • ", "\n• ")
	var lines []string
	for _, line := range strings.Split(text, "\n") {
		if cleaned := bulletText(collapse(line)); cleaned != "" {
			lines = append(lines, cleaned)
		}
	}
	return lines
}

// splitDateRange splits "Jan 2020 - Present · 3 yrs" into its two ends
func splitDateRange(text string) (string, string) {
	text, _, _ = strings.Cut(collapse(text), " · ")
	parts := dateSeparator.Split(text, 2)
	start := strings.TrimSpace(parts[0])
	if len(parts) == 1 {
		return start, ""
	}
	return start, strings.TrimSpace(parts[1])
}

func looksLikeLocation(line string) bool {
	if locationSuffix.MatchString(line) {
		return true
	}
	return strings.Contains(line, ", ") && len(strings.Fields(line)) <= 6 && !strings.HasSuffix(line, ".")
}

func firstText(sel *goquery.Selection, selector string) string {
	return collapse(sel.Find(selector).First().Text())
}

func collapse(s string) string {
	return strings.TrimSpace(spaceRun.ReplaceAllString(s, " "))
}

// FetchLinkedIn downloads a public profile page and parses its experience
// section. When useBrowser is set, JavaScript shells are rendered in a
// headless browser first.
func FetchLinkedIn(ctx context.Context, urlStr string, useBrowser bool) (*types.RoleSet, error) {
	var renderer fetch.Renderer
	if useBrowser {
		renderer = fetch.BrowserRenderer(DefaultBrowserTimeout)
	}
	return fetchLinkedIn(ctx, urlStr, renderer)
}

func fetchLinkedIn(ctx context.Context, urlStr string, renderer fetch.Renderer) (*types.RoleSet, error) {
	if platform := fetch.DetectPlatform(urlStr); platform != fetch.PlatformLinkedIn {
		slog.Warn("url does not look like a LinkedIn profile", "url", urlStr, "platform", platform)
	}

	page, err := fetch.FetchPage(ctx, urlStr, fetch.PageOptions{
		Selectors: fetch.PlatformContentSelectors(fetch.PlatformLinkedIn),
		Noise:     fetch.PlatformNoiseSelectors(fetch.PlatformLinkedIn),
		Browser:   renderer,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrHTTPRequestFailed, err)
	}

	set, err := ParseLinkedInHTML(page.HTML)
	if err != nil {
		return nil, err
	}
	slog.Debug("parsed LinkedIn profile", "url", urlStr, "roles", len(set.Roles), "rendered", page.Rendered)
	return set, nil
}
