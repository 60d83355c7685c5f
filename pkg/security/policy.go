package security

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// Config configures a Policy.
type Config struct {
	// AllowedImageDomains restricts absolute image URLs to these hosts and
	// their subdomains. Empty allows any http(s) host.
	AllowedImageDomains []string

	// AllowDataImages permits raster data:image/* URLs for image sources.
	AllowDataImages bool
}

// ImageOptions adjusts a single ValidateImageSrc call.
type ImageOptions struct {
	// AllowData permits raster data:image/* URLs even when the policy does not.
	AllowData bool

	// Domains, when non-empty, replaces the policy's allowed image domains.
	Domains []string
}

// Policy is the default security collaborator.
type Policy struct {
	imageDomains []string
	dataImages   bool
	html         *bluemonday.Policy
}

var defaultPolicy = New(Config{})

// Default returns the shared policy with an empty configuration.
func Default() *Policy {
	return defaultPolicy
}

// New builds a Policy from cfg.
func New(cfg Config) *Policy {
	domains := make([]string, 0, len(cfg.AllowedImageDomains))
	for _, d := range cfg.AllowedImageDomains {
		if d = strings.ToLower(strings.TrimSpace(d)); d != "" {
			domains = append(domains, d)
		}
	}

	html := bluemonday.UGCPolicy()
	html.RequireNoReferrerOnLinks(true)
	html.AddTargetBlankToFullyQualifiedLinks(true)

	return &Policy{
		imageDomains: domains,
		dataImages:   cfg.AllowDataImages,
		html:         html,
	}
}

var attrNamePattern = regexp.MustCompile(`^[a-zA-Z_:][-a-zA-Z0-9_:.]*$`)

// ValidAttributeName reports whether name may be rendered as an attribute.
// Inline event handlers (on*) are refused; actions are bound separately.
func (p *Policy) ValidAttributeName(name string) bool {
	if len(name) > 64 || !attrNamePattern.MatchString(name) {
		return false
	}
	lower := strings.ToLower(name)
	if strings.HasPrefix(lower, "on") {
		return false
	}
	switch lower {
	case "srcdoc", "formaction":
		return false
	}
	return true
}

// urlAttributes are attributes whose values are navigated to or fetched.
var urlAttributes = map[string]bool{
	"href":       true,
	"src":        true,
	"action":     true,
	"poster":     true,
	"cite":       true,
	"xlink:href": true,
}

// IsURLAttribute reports whether values of name must pass ValidateURL.
func IsURLAttribute(name string) bool {
	return urlAttributes[strings.ToLower(name)]
}

var safeLinkSchemes = map[string]bool{
	"http":   true,
	"https":  true,
	"mailto": true,
	"tel":    true,
}

// ValidateURL checks a link-like URL. Relative references and fragments are
// allowed; absolute URLs must use http, https, mailto or tel.
func (p *Policy) ValidateURL(raw string) (string, bool) {
	u, ok := parseURL(raw)
	if !ok {
		return "", false
	}
	if u.Scheme == "" {
		return strings.TrimSpace(raw), true
	}
	if !safeLinkSchemes[strings.ToLower(u.Scheme)] {
		return "", false
	}
	return u.String(), true
}

var dataImagePattern = regexp.MustCompile(`^data:image/(png|jpeg|jpg|gif|webp|avif);base64,[a-zA-Z0-9+/]+=*$`)

// ValidateImageSrc checks an image source. It returns the cleaned URL and
// true, or "" and false when the URL must not be rendered.
func (p *Policy) ValidateImageSrc(raw string, opts ImageOptions) (string, bool) {
	trimmed := strings.TrimSpace(raw)
	if strings.HasPrefix(strings.ToLower(trimmed), "data:") {
		if !(p.dataImages || opts.AllowData) {
			return "", false
		}
		if !dataImagePattern.MatchString(trimmed) {
			return "", false
		}
		return trimmed, true
	}

	u, ok := parseURL(trimmed)
	if !ok {
		return "", false
	}
	if u.Scheme == "" && u.Host == "" {
		return trimmed, true
	}

	scheme := strings.ToLower(u.Scheme)
	if scheme != "https" && scheme != "http" && scheme != "" {
		return "", false
	}

	domains := p.imageDomains
	if len(opts.Domains) > 0 {
		domains = opts.Domains
	}
	if len(domains) > 0 && !hostAllowed(u.Hostname(), domains) {
		return "", false
	}
	return u.String(), true
}

// SanitizeHTML cleans untrusted markup (for example rendered markdown) with
// a user-generated-content policy.
func (p *Policy) SanitizeHTML(raw string) string {
	return p.html.Sanitize(raw)
}

func hostAllowed(host string, domains []string) bool {
	host = strings.ToLower(host)
	for _, d := range domains {
		d = strings.ToLower(d)
		if host == d || strings.HasSuffix(host, "."+d) {
			return true
		}
	}
	return false
}

// parseURL rejects control characters and whitespace-obfuscated schemes
// before parsing.
func parseURL(raw string) (*url.URL, bool) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil, false
	}
	for _, r := range trimmed {
		if r < 0x20 || r == 0x7f || r == '\\' {
			return nil, false
		}
	}
	u, err := url.Parse(trimmed)
	if err != nil {
		return nil, false
	}
	return u, true
}
