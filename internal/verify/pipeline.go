package verify

import (
	"context"
	"fmt"
	"math"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// DefaultVerifyTimeout bounds a whole Verify call unless the caller
// supplies its own budget.
const DefaultVerifyTimeout = 10 * time.Second

// Verifier runs the five checks concurrently, aggregates them into a
// risk score and verdict, and memoizes verdicts in its cache. It owns
// the cache exclusively; no other component mutates it.
type Verifier struct {
	urlValidator *URLValidator
	dns          *DNSChecker
	ssl          *SSLChecker
	phishing     *PhishingDetector
	malware      *ThreatChecker
	cache        *Cache
	weights      ScoreWeights
	timeout      time.Duration
	logger       *zap.Logger
}

// VerifierConfig wires a Verifier. Zero-value fields fall back to
// defaults; a nil Cache gets a fresh one with the default TTL.
type VerifierConfig struct {
	Heuristics Heuristics
	Weights    ScoreWeights
	Timeout    time.Duration
	CacheTTL   time.Duration
	Cache      *Cache
	DNS        *DNSChecker
	SSL        *SSLChecker
	Malware    *ThreatChecker
	Logger     *zap.Logger
}

// NewVerifier builds the pipeline from cfg.
func NewVerifier(cfg VerifierConfig) *Verifier {
	heuristics := cfg.Heuristics
	if len(heuristics.BrandNames) == 0 {
		heuristics = DefaultHeuristics()
	}

	weights := cfg.Weights
	if weights == (ScoreWeights{}) {
		weights = DefaultScoreWeights()
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultVerifyTimeout
	}

	cache := cfg.Cache
	if cache == nil {
		cache = NewCache(cfg.CacheTTL)
	}

	dns := cfg.DNS
	if dns == nil {
		dns = &DNSChecker{Timeout: timeout}
	}
	ssl := cfg.SSL
	if ssl == nil {
		ssl = &SSLChecker{Timeout: timeout}
	}
	malware := cfg.Malware
	if malware == nil {
		malware = &ThreatChecker{Timeout: timeout}
	}

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Verifier{
		urlValidator: NewURLValidator(heuristics),
		dns:          dns,
		ssl:          ssl,
		phishing:     NewPhishingDetector(heuristics),
		malware:      malware,
		cache:        cache,
		weights:      weights,
		timeout:      timeout,
		logger:       logger,
	}
}

// Verify runs the pipeline for rawURL. It always returns a complete
// verdict: checker failures are captured inside the per-check results,
// and an unparsable URL yields a verdict whose URL validation carries
// the error while the network checks are neutrally skipped.
func (v *Verifier) Verify(ctx context.Context, rawURL string, opts Options) Verdict {
	start := time.Now()

	if !opts.SkipCache {
		if cached, ok := v.cache.Get(rawURL); ok {
			cached.Metadata.Cached = true
			v.logger.Debug("verification cache hit", zap.String("url", rawURL))
			return cached
		}
	}

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = v.timeout
	}
	checkCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	// A URL that cannot yield a hostname still produces a verdict: the
	// structural validation reports the failure and the network checks
	// degrade to neutral skipped results.
	hostname := ExtractHostname(rawURL)

	var checks Checks
	g, gCtx := errgroup.WithContext(checkCtx)

	g.Go(func() error {
		checks.URLValidation = v.urlValidator.Validate(rawURL)
		return nil
	})
	g.Go(func() error {
		if opts.SkipDNS || hostname == "" {
			checks.DNSCheck = SkippedDNSResult(hostname)
			return nil
		}
		checks.DNSCheck = v.dns.Check(gCtx, hostname)
		return nil
	})
	g.Go(func() error {
		if opts.SkipSSL || hostname == "" {
			checks.SSLCheck = SkippedSSLResult(rawURL)
			return nil
		}
		checks.SSLCheck = v.ssl.Check(gCtx, rawURL)
		return nil
	})
	g.Go(func() error {
		if opts.SkipPhishing {
			checks.PhishingCheck = SkippedPhishingResult(rawURL)
			return nil
		}
		checks.PhishingCheck = v.phishing.Detect(rawURL)
		return nil
	})
	g.Go(func() error {
		if opts.SkipMalware {
			checks.MalwareCheck = SkippedMalwareResult(rawURL)
			return nil
		}
		checks.MalwareCheck = v.malware.Check(gCtx, rawURL)
		return nil
	})

	// Checkers never return errors; Wait is purely the join-all barrier.
	_ = g.Wait()

	riskScore := CalculateRiskScore(checks, v.weights)
	overallRisk := RiskLevelFor(riskScore)

	totalErrors := len(checks.URLValidation.Errors) +
		len(checks.DNSCheck.Errors) +
		len(checks.SSLCheck.Errors) +
		len(checks.MalwareCheck.Errors)

	totalWarnings := len(checks.URLValidation.Warnings) +
		len(checks.DNSCheck.Warnings) +
		len(checks.SSLCheck.Warnings) +
		len(checks.PhishingCheck.Warnings) +
		len(checks.MalwareCheck.Warnings)

	criticalIssues := buildCriticalIssues(rawURL, checks)
	recommendations := buildRecommendations(checks)

	isVerified := totalErrors == 0 && len(criticalIssues) == 0 && riskScore < 50

	verdict := Verdict{
		URL:         rawURL,
		IsVerified:  isVerified,
		OverallRisk: overallRisk,
		RiskScore:   riskScore,
		Checks:      checks,
		Summary: Summary{
			TotalErrors:     totalErrors,
			TotalWarnings:   totalWarnings,
			CriticalIssues:  criticalIssues,
			Recommendations: recommendations,
		},
		Metadata: Metadata{
			VerifiedAt:     time.Now().UTC(),
			TotalCheckTime: time.Since(start).Milliseconds(),
			Cached:         false,
		},
	}

	v.cache.Set(rawURL, verdict)

	v.logger.Info("url verified",
		zap.String("url", rawURL),
		zap.Int("risk_score", riskScore),
		zap.String("overall_risk", string(overallRisk)),
		zap.Bool("verified", isVerified),
		zap.Int64("check_time_ms", verdict.Metadata.TotalCheckTime),
	)

	return verdict
}

// FlushCache drops all cached verdicts.
func (v *Verifier) FlushCache() {
	v.cache.FlushAll()
}

// CacheStats exposes cache activity for the operational surface.
func (v *Verifier) CacheStats() CacheStats {
	return v.cache.Stats()
}

// CalculateRiskScore aggregates the five check results into a 0-100
// score using the configured weights.
func CalculateRiskScore(checks Checks, w ScoreWeights) int {
	score := 0.0

	if !checks.URLValidation.IsValid {
		score += float64(w.URLInvalid)
	}
	if !checks.DNSCheck.IsValid {
		score += float64(w.DNSInvalid)
	}
	if !checks.SSLCheck.IsValid {
		score += float64(w.SSLInvalid)
	}

	score += float64(checks.PhishingCheck.SuspicionScore) * w.PhishingScale

	if !checks.MalwareCheck.IsSafe {
		score += float64(w.MalwareUnsafe)
	}

	totalWarnings := len(checks.URLValidation.Warnings) +
		len(checks.DNSCheck.Warnings) +
		len(checks.SSLCheck.Warnings) +
		len(checks.PhishingCheck.Warnings) +
		len(checks.MalwareCheck.Warnings)
	if totalWarnings > w.WarningCap {
		totalWarnings = w.WarningCap
	}
	score += float64(totalWarnings)

	rounded := int(math.Round(score))
	if rounded > 100 {
		rounded = 100
	}
	if rounded < 0 {
		rounded = 0
	}
	return rounded
}

// RiskLevelFor maps a 0-100 score onto the five risk bands. The bands
// partition [0,100] with no gaps or overlaps.
func RiskLevelFor(score int) RiskLevel {
	switch {
	case score >= 80:
		return RiskCritical
	case score >= 60:
		return RiskHigh
	case score >= 40:
		return RiskMedium
	case score >= 20:
		return RiskLow
	default:
		return RiskSafe
	}
}

func buildCriticalIssues(rawURL string, checks Checks) []string {
	issues := []string{}

	if !checks.URLValidation.IsValid {
		issues = append(issues, "URL format is invalid")
	}
	if !checks.DNSCheck.IsValid {
		issues = append(issues, "Domain does not exist or has DNS issues")
	}
	if checks.PhishingCheck.IsPhishing {
		issues = append(issues,
			fmt.Sprintf("Potential phishing detected (%d%% confidence)",
				checks.PhishingCheck.SuspicionScore))
	}
	if !checks.MalwareCheck.IsSafe {
		for _, threat := range checks.MalwareCheck.Threats {
			issues = append(issues, fmt.Sprintf("%s: %s", threat.ThreatType, threat.Description))
		}
	}

	if suspicious, patterns := CheckSuspiciousPatterns(rawURL); suspicious {
		issues = append(issues, patterns...)
	}

	return issues
}

func buildRecommendations(checks Checks) []string {
	recommendations := []string{}

	if checks.URLValidation.Protocol == "http" {
		recommendations = append(recommendations, "Upgrade to HTTPS for better security")
	}

	if !checks.DNSCheck.HasMXRecord && checks.DNSCheck.HasARecord {
		recommendations = append(recommendations,
			"Domain has no email records - may be newly registered")
	}

	if days := checks.SSLCheck.DaysUntilExpiration; days != nil && *days < soonExpiryDays {
		recommendations = append(recommendations,
			"SSL certificate expiring soon - verify site legitimacy")
	}

	if checks.PhishingCheck.SuspicionScore > 30 {
		recommendations = append(recommendations,
			"URL shows signs of phishing - verify authenticity before sharing")
	}

	if len(checks.PhishingCheck.Reasons) > 0 {
		recommendations = append(recommendations,
			"Manual review recommended due to suspicious patterns")
	}

	if len(checks.MalwareCheck.Threats) > 0 {
		recommendations = append(recommendations,
			"DO NOT SHARE - URL flagged as malicious by security providers")
	}

	if len(recommendations) == 0 {
		recommendations = append(recommendations,
			"URL passed all security checks - safe to share")
	}

	return recommendations
}
