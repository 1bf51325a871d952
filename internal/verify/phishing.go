package verify

import (
	"fmt"
	"net/url"
	"strings"
)

// PhishingDetector scores a URL against typosquatting, homograph, and
// keyword-density heuristics. It is purely computational: no network
// I/O, deterministic for a given input and configuration.
type PhishingDetector struct {
	Heuristics Heuristics
}

// NewPhishingDetector returns a detector using h, falling back to the
// built-in lists when h carries no brand names.
func NewPhishingDetector(h Heuristics) *PhishingDetector {
	if len(h.BrandNames) == 0 {
		h = DefaultHeuristics()
	}
	return &PhishingDetector{Heuristics: h}
}

// Detect computes the suspicion score for rawURL. Every heuristic that
// fires is reported as a human-readable reason or warning so verdicts
// can be audited.
func (p *PhishingDetector) Detect(rawURL string) PhishingCheckResult {
	result := PhishingCheckResult{
		URL:      rawURL,
		Reasons:  []string{},
		Warnings: []string{},
	}

	parsed, err := url.Parse(rawURL)
	if err != nil || parsed.Hostname() == "" {
		result.Reasons = append(result.Reasons, "Invalid URL format")
		return result
	}

	urlLower := strings.ToLower(rawURL)
	hostname := strings.ToLower(parsed.Hostname())
	domain, _, subdomain := splitDomain(hostname)
	result.Domain = domain

	w := p.Heuristics.Weights
	score := 0

	if hasNonASCII(hostname) {
		score += w.Homograph
		result.Reasons = append(result.Reasons,
			"Domain contains non-ASCII characters (possible homograph attack)")
	}

	var keywords []string
	for _, kw := range p.Heuristics.PhishingKeywords {
		if strings.Contains(urlLower, kw) {
			keywords = append(keywords, kw)
		}
	}
	switch {
	case len(keywords) >= 2:
		score += w.MultiKeyword
		result.Reasons = append(result.Reasons,
			fmt.Sprintf("Contains multiple phishing keywords: %s", strings.Join(keywords, ", ")))
	case len(keywords) == 1:
		score += w.SingleKeyword
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("Contains phishing keyword: %s", keywords[0]))
	}

	for _, brand := range p.Heuristics.BrandNames {
		if strings.Contains(domain, brand) && domain != brand+".com" {
			similarity := stringSimilarity(domain, brand+".com")
			if similarity > p.Heuristics.SimilarityThreshold {
				score += w.Typosquat
				result.Reasons = append(result.Reasons,
					fmt.Sprintf("Domain closely resembles legitimate brand: %s (similarity: %.0f%%)",
						brand, similarity*100))
			}
		}

		// Classic subdomain spoofing: paypal.evil.tld
		if strings.Contains(subdomain, brand) {
			score += w.BrandInSubdomain
			result.Reasons = append(result.Reasons,
				fmt.Sprintf("Legitimate brand name in subdomain: %s", brand))
		}
	}

	if tld := lastLabel(domain); tld != "" {
		for _, suspicious := range p.Heuristics.SuspiciousTLDs {
			if "."+tld == suspicious {
				score += w.SuspiciousTLD
				result.Reasons = append(result.Reasons,
					fmt.Sprintf("Uses suspicious TLD: .%s", tld))
				break
			}
		}
	}

	if depth := subdomainDepth(subdomain); depth > 3 {
		score += w.DeepSubdomain
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("Excessive subdomains (%d levels)", depth))
	}

	if ipv4Pattern.MatchString(hostname) {
		score += w.IPHostname
		result.Reasons = append(result.Reasons, "Uses IP address instead of domain name")
	}

	if strings.Contains(rawURL, "@") {
		score += w.AtSymbol
		result.Reasons = append(result.Reasons,
			"Contains @ symbol (possible credential injection)")
	}

	if hyphens := strings.Count(domain, "-"); hyphens > 2 {
		score += w.ExcessiveHyphens
		result.Reasons = append(result.Reasons,
			fmt.Sprintf("Excessive hyphens in domain (%d)", hyphens))
	}

	if strings.ContainsAny(domain, "0123456789") && len(keywords) > 0 {
		score += w.DigitsWithKeyword
		result.Warnings = append(result.Warnings,
			"Domain contains numbers along with sensitive keywords")
	}

	if len(domain) > 30 {
		score += w.LongDomain
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("Unusually long domain name (%d characters)", len(domain)))
	}

	for _, shortener := range p.Heuristics.ShortenerDomains {
		if strings.Contains(hostname, shortener) {
			score += w.Shortener
			result.Warnings = append(result.Warnings,
				"URL uses a URL shortener (destination unknown)")
			break
		}
	}

	if score > 100 {
		score = 100
	}
	result.SuspicionScore = score
	result.IsPhishing = score >= 50
	return result
}

func lastLabel(domain string) string {
	parts := strings.Split(domain, ".")
	if len(parts) == 0 {
		return ""
	}
	return parts[len(parts)-1]
}

func subdomainDepth(subdomain string) int {
	if subdomain == "" {
		return 0
	}
	depth := 0
	for _, label := range strings.Split(subdomain, ".") {
		if label != "" {
			depth++
		}
	}
	return depth
}

// stringSimilarity is normalized Levenshtein similarity:
// (maxLen - distance) / maxLen, in [0,1].
func stringSimilarity(a, b string) float64 {
	longer, shorter := a, b
	if len(b) > len(a) {
		longer, shorter = b, a
	}
	if len(longer) == 0 {
		return 1.0
	}
	distance := levenshtein(longer, shorter)
	return float64(len(longer)-distance) / float64(len(longer))
}

// levenshtein computes edit distance with a two-row rolling matrix.
func levenshtein(a, b string) int {
	if a == b {
		return 0
	}
	prev := make([]int, len(a)+1)
	curr := make([]int, len(a)+1)
	for j := 0; j <= len(a); j++ {
		prev[j] = j
	}

	for i := 1; i <= len(b); i++ {
		curr[0] = i
		for j := 1; j <= len(a); j++ {
			cost := 1
			if b[i-1] == a[j-1] {
				cost = 0
			}
			curr[j] = min3(
				prev[j-1]+cost, // substitution
				curr[j-1]+1,    // insertion
				prev[j]+1,      // deletion
			)
		}
		prev, curr = curr, prev
	}
	return prev[len(a)]
}

func min3(a, b, c int) int {
	m := a
	if b < m {
		m = b
	}
	if c < m {
		m = c
	}
	return m
}
