package verify

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

var (
	ipv4Pattern     = regexp.MustCompile(`^(\d{1,3}\.){3}\d{1,3}$`)
	ipv6Pattern     = regexp.MustCompile(`^([0-9a-fA-F]{0,4}:){2,7}[0-9a-fA-F]{0,4}$`)
	hostnamePattern = regexp.MustCompile(`^[a-zA-Z0-9.-]+$`)
	private172      = regexp.MustCompile(`^172\.(1[6-9]|2[0-9]|3[0-1])\.`)
)

// maxURLLength is the point past which a URL is flagged as suspiciously long.
const maxURLLength = 2000

// URLValidator validates URL syntax, protocol, and hostname shape. It is
// a pure function of its input and performs no network I/O.
type URLValidator struct {
	Heuristics Heuristics
}

// NewURLValidator returns a validator with the given heuristics, falling
// back to the defaults when the keyword list is empty.
func NewURLValidator(h Heuristics) *URLValidator {
	if len(h.SuspiciousKeywords) == 0 {
		h = DefaultHeuristics()
	}
	return &URLValidator{Heuristics: h}
}

// Validate checks the structure of rawURL. Malformed input is reported
// inline in the result, never returned as an error.
func (v *URLValidator) Validate(rawURL string) URLValidationResult {
	result := URLValidationResult{
		URL:      rawURL,
		Errors:   []string{},
		Warnings: []string{},
	}

	parsed, err := url.Parse(rawURL)
	if err != nil || parsed.Scheme == "" || strings.Contains(parsed.Scheme, ".") {
		result.Errors = append(result.Errors, "Invalid URL format")
		return result
	}

	protocol := parsed.Scheme
	result.Protocol = protocol
	if protocol != "http" && protocol != "https" {
		result.Errors = append(result.Errors,
			fmt.Sprintf("Invalid protocol: %s. Only HTTP and HTTPS are allowed", protocol))
	}
	if protocol == "http" {
		result.Warnings = append(result.Warnings, "Consider using HTTPS for better security")
	}

	// Hostnames are case-insensitive; normalize once so the policy
	// checks below cannot be bypassed with mixed case.
	hostname := strings.ToLower(parsed.Hostname())
	result.Hostname = hostname
	if hostname == "" {
		result.Errors = append(result.Errors, "Missing hostname")
	} else {
		if ipv4Pattern.MatchString(hostname) || ipv6Pattern.MatchString(hostname) {
			result.Warnings = append(result.Warnings, "URL uses IP address instead of domain name")
		}

		if isPrivateHostname(hostname) {
			result.Errors = append(result.Errors,
				"URLs pointing to localhost or private networks are not allowed")
		}

		if !hostnamePattern.MatchString(hostname) {
			result.Errors = append(result.Errors, "Domain contains invalid characters")
		}
	}

	domain, tld, subdomain := splitDomain(hostname)
	result.Domain = domain
	result.TLD = tld
	result.Subdomain = subdomain

	if len(tld) < 2 {
		result.Errors = append(result.Errors, "Invalid or missing top-level domain (TLD)")
	}

	if strings.Contains(rawURL, "@") {
		result.Warnings = append(result.Warnings,
			"URL contains @ symbol, which may be used for phishing")
	}

	if subdomain != "" && len(strings.Split(subdomain, ".")) > 3 {
		result.Warnings = append(result.Warnings, "URL has many subdomains, verify authenticity")
	}

	if found := v.suspiciousKeywords(rawURL, domain); len(found) > 0 {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("URL contains suspicious keywords: %s", strings.Join(found, ", ")))
	}

	if len(rawURL) > maxURLLength {
		result.Warnings = append(result.Warnings,
			"URL is extremely long, which may indicate malicious intent")
	}

	if hasNonASCII(hostname) {
		result.Warnings = append(result.Warnings,
			"Domain contains non-ASCII characters (possible homograph attack)")
	}

	result.IsValid = len(result.Errors) == 0
	return result
}

// suspiciousKeywords returns keywords present in the URL but absent from
// the registrable domain itself. A keyword inside the domain is the
// owner's own branding, not an impersonation signal.
func (v *URLValidator) suspiciousKeywords(rawURL, domain string) []string {
	urlLower := strings.ToLower(rawURL)
	domainLower := strings.ToLower(domain)

	var found []string
	for _, kw := range v.Heuristics.SuspiciousKeywords {
		if strings.Contains(urlLower, kw) && !strings.Contains(domainLower, kw) {
			found = append(found, kw)
		}
	}
	return found
}

// splitDomain derives registrable domain, TLD, and subdomain by simple
// right-to-left label segmentation. It deliberately does not consult the
// public suffix list; co.uk style TLDs are treated as domain labels,
// matching the scoring heuristics tuned against this segmentation.
func splitDomain(hostname string) (domain, tld, subdomain string) {
	if hostname == "" {
		return "", "", ""
	}
	parts := strings.Split(hostname, ".")
	if len(parts) < 2 {
		return hostname, "", ""
	}
	tld = parts[len(parts)-1]
	domain = parts[len(parts)-2] + "." + tld
	if len(parts) > 2 {
		subdomain = strings.Join(parts[:len(parts)-2], ".")
	}
	return domain, tld, subdomain
}

// isPrivateHostname reports whether the hostname targets localhost, a
// private network, or a .local name. These are never acceptable targets
// for a public redirect.
func isPrivateHostname(hostname string) bool {
	switch {
	case hostname == "localhost",
		hostname == "127.0.0.1",
		hostname == "::1",
		strings.HasSuffix(hostname, ".local"),
		strings.HasPrefix(hostname, "192.168."),
		strings.HasPrefix(hostname, "10."),
		private172.MatchString(hostname):
		return true
	}
	return false
}

func hasNonASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] > 0x7F {
			return true
		}
	}
	return false
}

// IsValidURLFormat is a quick syntactic gate used at the HTTP boundary
// before running the full pipeline.
func IsValidURLFormat(rawURL string) bool {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	return (parsed.Scheme == "http" || parsed.Scheme == "https") && parsed.Hostname() != ""
}

// ExtractHostname pulls the bare hostname out of a URL for DNS lookups.
// Returns an empty string when the URL cannot be parsed.
func ExtractHostname(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return parsed.Hostname()
}
