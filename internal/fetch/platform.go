package fetch

import (
	"net/url"
	"strings"
)

// Platform names a job board or profile host with known page structure.
type Platform string

const (
	PlatformGreenhouse Platform = "greenhouse"
	PlatformLever      Platform = "lever"
	PlatformWorkday    Platform = "workday"
	PlatformAshby      Platform = "ashby"
	PlatformLinkedIn   Platform = "linkedin"
	PlatformUnknown    Platform = "unknown"
)

// site describes where a platform keeps its content and what to strip
type site struct {
	platform Platform
	// domains match the host itself or any subdomain
	domains []string
	content []string
	noise   []string
}

var sites = []site{
	{
		platform: PlatformGreenhouse,
		domains:  []string{"greenhouse.io"},
		content:  []string{".job__description.body", ".job__description", ".job-description__content", "#content", ".job-post-container"},
		noise:    []string{".application--wrapper", ".voluntary-self-id", ".voluntary-self-id-wrapper", "#usa_self_id_section", ".post-apply"},
	},
	{
		platform: PlatformLever,
		domains:  []string{"lever.co"},
		content:  []string{".posting-page", ".section-wrapper.page-full-width", ".posting-description", ".content"},
		noise:    []string{".apply-section", ".lever-application-form", ".posting-apply"},
	},
	{
		platform: PlatformWorkday,
		domains:  []string{"workday.com", "myworkdayjobs.com"},
		content:  []string{"[data-automation-id='jobDescription']", ".gwt-HTML", ".job-description"},
		noise:    []string{"[data-automation-id='applyButton']", ".application-section"},
	},
	{
		platform: PlatformAshby,
		domains:  []string{"ashbyhq.com"},
		content:  []string{"[class*='_descriptionText']", "[class*='_description_']", "main"},
		noise:    []string{"[class*='_applicationForm']", "[class*='_navContainer']"},
	},
	{
		platform: PlatformLinkedIn,
		domains:  []string{"linkedin.com"},
		content:  []string{"#experience", "section.experience", "[data-section='experience']", ".experience-section", "main"},
		noise:    []string{".join-form", ".sign-in-modal", ".top-card-layout__cta-container", "aside"},
	},
}

// genericContent is tried on hosts with no profile, most specific first
var genericContent = []string{
	".job-description", "#job-description", ".job-content", "#job-content",
	".posting-content", ".job-details", "[data-testid='job-description']",
	"main", "article", ".content", "#content", ".main-content", "#main-content",
}

// sharedNoise covers application forms, legal notices and share widgets
var sharedNoise = []string{
	"form", "#application-form", ".application-form", ".application--container",
	".apply-button-container", "[data-testid='application-form']",
	".voluntary-disclosure", ".eeo-statement", ".eeo-section", "[data-testid='eeo']",
	".legal-disclosure", ".self-identification",
	".social-share", ".share-buttons", ".social-links",
	".cookie-consent", ".gdpr-notice",
}

func lookup(p Platform) *site {
	for i := range sites {
		if sites[i].platform == p {
			return &sites[i]
		}
	}
	return nil
}

// DetectPlatform identifies the platform hosting rawURL from its host name.
func DetectPlatform(rawURL string) Platform {
	u, err := url.Parse(rawURL)
	if err != nil {
		return PlatformUnknown
	}
	host := strings.ToLower(u.Hostname())
	for _, s := range sites {
		for _, d := range s.domains {
			if host == d || strings.HasSuffix(host, "."+d) {
				return s.platform
			}
		}
	}
	return PlatformUnknown
}

// PlatformContentSelectors returns where p keeps its main content, falling
// back to generic job-posting selectors.
func PlatformContentSelectors(p Platform) []string {
	if s := lookup(p); s != nil {
		return append([]string(nil), s.content...)
	}
	return append([]string(nil), genericContent...)
}

// PlatformNoiseSelectors returns the elements to strip from p's pages.
func PlatformNoiseSelectors(p Platform) []string {
	out := append([]string(nil), sharedNoise...)
	if s := lookup(p); s != nil {
		out = append(out, s.noise...)
	}
	return out
}
