package verify

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"golang.org/x/time/rate"
)

// ReputationProvider is an external threat-intelligence feed: given a
// URL, return the list of known threat matches (empty when clean).
// Implementations must honor the context deadline.
type ReputationProvider interface {
	Name() string
	Lookup(ctx context.Context, rawURL string) ([]ThreatMatch, error)
}

// ThreatChecker queries one or more reputation providers and runs the
// local suspicious-pattern heuristics as a supplementary signal.
// Provider outages are soft failures: they become warnings so the
// missing signal stays visible, and never clear or crash the pipeline.
type ThreatChecker struct {
	Providers []ReputationProvider
	Timeout   time.Duration

	// Limiter paces outbound provider calls so a burst of verifications
	// does not exhaust a provider quota. Nil disables pacing.
	Limiter *rate.Limiter
}

// Check consults every configured provider for rawURL.
func (t *ThreatChecker) Check(ctx context.Context, rawURL string) MalwareCheckResult {
	start := time.Now()
	result := MalwareCheckResult{
		IsSafe:    true,
		URL:       rawURL,
		Threats:   []ThreatMatch{},
		CheckedBy: []string{},
		Errors:    []string{},
		Warnings:  []string{},
	}

	for _, provider := range t.Providers {
		if t.Limiter != nil {
			if err := t.Limiter.Wait(ctx); err != nil {
				result.Warnings = append(result.Warnings,
					fmt.Sprintf("%s: lookup cancelled before dispatch", provider.Name()))
				continue
			}
		}

		lookupCtx, cancel := context.WithTimeout(ctx, t.timeout())
		matches, err := provider.Lookup(lookupCtx, rawURL)
		cancel()

		if err != nil {
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("%s unavailable: %v", provider.Name(), err))
			continue
		}

		result.CheckedBy = append(result.CheckedBy, provider.Name())
		result.Threats = append(result.Threats, matches...)
	}

	if len(result.Threats) > 0 {
		result.IsSafe = false
	}

	result.CheckTime = time.Since(start).Milliseconds()
	return result
}

func (t *ThreatChecker) timeout() time.Duration {
	if t.Timeout > 0 {
		return t.Timeout
	}
	return 10 * time.Second
}

// suspiciousPatterns are cheap local regexes usable even when every
// external provider is down. Each entry pairs a pattern with the
// message reported when it matches.
var suspiciousPatterns = []struct {
	pattern *regexp.Regexp
	message string
}{
	{
		regexp.MustCompile(`(?i)\.(exe|scr|bat|cmd|pif|msi|jar|vbs)([?#]|$)`),
		"URL points directly to an executable file",
	},
	{
		regexp.MustCompile(`(?i)\.(pdf|doc|docx|jpg|png)\.(exe|scr|zip|rar)([?#]|$)`),
		"URL uses a deceptive double file extension",
	},
	{
		regexp.MustCompile(`(?i)[?&](url|redirect|next|goto|dest|continue)=https?(%3a|:)`),
		"URL embeds a redirect to another destination",
	},
	{
		regexp.MustCompile(`(?i)(%[0-9a-f]{2}){10,}`),
		"URL contains a long percent-encoded sequence",
	},
	{
		regexp.MustCompile(`(?i)^(javascript|data|vbscript):`),
		"URL uses a script or data scheme",
	},
	{
		regexp.MustCompile(`https?://[^/]*@`),
		"URL hides its real host behind userinfo",
	},
}

// CheckSuspiciousPatterns runs the local pattern heuristics against
// rawURL. Pure and network-free; cheap enough to run unconditionally as
// a supplementary signal even when providers answer.
func CheckSuspiciousPatterns(rawURL string) (suspicious bool, patterns []string) {
	patterns = []string{}
	for _, entry := range suspiciousPatterns {
		if entry.pattern.MatchString(rawURL) {
			patterns = append(patterns, entry.message)
		}
	}
	return len(patterns) > 0, patterns
}
