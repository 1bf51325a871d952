package verify

import (
	"context"
	"strings"
	"testing"
	"time"
)

// skipNetwork disables every check that would leave the process.
var skipNetwork = Options{SkipDNS: true, SkipSSL: true, SkipMalware: true}

func cleanChecks() Checks {
	return Checks{
		URLValidation: URLValidationResult{IsValid: true},
		DNSCheck:      DNSCheckResult{IsValid: true},
		SSLCheck:      SSLCheckResult{IsValid: true},
		PhishingCheck: PhishingCheckResult{},
		MalwareCheck:  MalwareCheckResult{IsSafe: true},
	}
}

func TestVerifier_CleanURL(t *testing.T) {
	v := NewVerifier(VerifierConfig{})

	verdict := v.Verify(context.Background(), "https://example.com/about", skipNetwork)
	if !verdict.IsVerified {
		t.Fatalf("expected verified verdict, got score=%d critical=%v",
			verdict.RiskScore, verdict.Summary.CriticalIssues)
	}
	if verdict.OverallRisk != RiskSafe {
		t.Errorf("expected safe, got %q (score %d)", verdict.OverallRisk, verdict.RiskScore)
	}
	if verdict.Summary.TotalErrors != 0 {
		t.Errorf("expected no errors, got %d", verdict.Summary.TotalErrors)
	}
	if verdict.Metadata.Cached {
		t.Error("first verification must not be marked cached")
	}
}

func TestVerifier_SkippedChecksAreNeutral(t *testing.T) {
	v := NewVerifier(VerifierConfig{})

	verdict := v.Verify(context.Background(), "https://example.com/", skipNetwork)

	for name, check := range map[string]struct {
		valid    bool
		errors   []string
		warnings []string
	}{
		"dns":     {verdict.Checks.DNSCheck.IsValid, verdict.Checks.DNSCheck.Errors, verdict.Checks.DNSCheck.Warnings},
		"ssl":     {verdict.Checks.SSLCheck.IsValid, verdict.Checks.SSLCheck.Errors, verdict.Checks.SSLCheck.Warnings},
		"malware": {verdict.Checks.MalwareCheck.IsSafe, verdict.Checks.MalwareCheck.Errors, verdict.Checks.MalwareCheck.Warnings},
	} {
		if !check.valid {
			t.Errorf("%s: skipped check must stay neutral", name)
		}
		if len(check.errors) != 0 {
			t.Errorf("%s: skipped check must carry no errors, got %v", name, check.errors)
		}
		if len(check.warnings) != 1 || check.warnings[0] != skippedWarning {
			t.Errorf("%s: expected single %q warning, got %v", name, skippedWarning, check.warnings)
		}
	}
}

func TestVerifier_PhishingURL(t *testing.T) {
	v := NewVerifier(VerifierConfig{})

	verdict := v.Verify(context.Background(), "http://paypa1-secure-login.tk/account/verify", skipNetwork)
	if !verdict.Checks.PhishingCheck.IsPhishing {
		t.Fatalf("expected phishing detection, score=%d reasons=%v",
			verdict.Checks.PhishingCheck.SuspicionScore, verdict.Checks.PhishingCheck.Reasons)
	}
	if verdict.IsVerified {
		t.Error("phishing verdict must not be verified")
	}
	if !containsSubstring(verdict.Summary.CriticalIssues, "Potential phishing detected") {
		t.Errorf("expected phishing critical issue, got %v", verdict.Summary.CriticalIssues)
	}
	if verdict.Checks.PhishingCheck.SuspicionScore != 60 {
		t.Errorf("expected suspicion score 60, got %d", verdict.Checks.PhishingCheck.SuspicionScore)
	}
	// With the network checks skipped the aggregate is deterministic:
	// 60*0.30 phishing + 6 warnings (http, keywords, digits, 3 skips) = 24.
	if verdict.RiskScore != 24 {
		t.Errorf("expected risk score 24, got %d", verdict.RiskScore)
	}
	if verdict.OverallRisk != RiskLow {
		t.Errorf("expected low band, got %q (score %d)", verdict.OverallRisk, verdict.RiskScore)
	}
}

func TestVerifier_UnparsableURLStillYieldsVerdict(t *testing.T) {
	v := NewVerifier(VerifierConfig{})

	verdict := v.Verify(context.Background(), "not a url", Options{SkipMalware: true})
	if verdict.IsVerified {
		t.Fatal("invalid URL must not be verified")
	}
	if !containsSubstring(verdict.Summary.CriticalIssues, "URL format is invalid") {
		t.Errorf("expected invalid-format critical issue, got %v", verdict.Summary.CriticalIssues)
	}
	// No hostname: network checks degrade to neutral skips instead of failing.
	if !verdict.Checks.DNSCheck.IsValid || !verdict.Checks.SSLCheck.IsValid {
		t.Error("network checks must be neutrally skipped without a hostname")
	}
}

func TestVerifier_CacheRoundTrip(t *testing.T) {
	v := NewVerifier(VerifierConfig{})
	const target = "https://example.com/cache-me"

	first := v.Verify(context.Background(), target, skipNetwork)
	if first.Metadata.Cached {
		t.Fatal("first pass must not be cached")
	}

	second := v.Verify(context.Background(), target, skipNetwork)
	if !second.Metadata.Cached {
		t.Fatal("second pass must come from the cache")
	}
	if second.RiskScore != first.RiskScore || second.OverallRisk != first.OverallRisk {
		t.Errorf("cached verdict diverged: %d/%s vs %d/%s",
			first.RiskScore, first.OverallRisk, second.RiskScore, second.OverallRisk)
	}

	skip := skipNetwork
	skip.SkipCache = true
	third := v.Verify(context.Background(), target, skip)
	if third.Metadata.Cached {
		t.Error("SkipCache must bypass the cache")
	}

	v.FlushCache()
	fourth := v.Verify(context.Background(), target, skipNetwork)
	if fourth.Metadata.Cached {
		t.Error("flushed cache must force a fresh verification")
	}
}

func TestVerifier_CacheStats(t *testing.T) {
	v := NewVerifier(VerifierConfig{})

	v.Verify(context.Background(), "https://example.com/a", skipNetwork)
	v.Verify(context.Background(), "https://example.com/a", skipNetwork)

	stats := v.CacheStats()
	if stats.Hits != 1 {
		t.Errorf("expected 1 hit, got %d", stats.Hits)
	}
	if stats.Keys != 1 {
		t.Errorf("expected 1 key, got %d", stats.Keys)
	}
}

func TestVerifier_TimeoutOptionIsBounded(t *testing.T) {
	v := NewVerifier(VerifierConfig{Timeout: 50 * time.Millisecond})

	start := time.Now()
	v.Verify(context.Background(), "https://example.com/", skipNetwork)
	if elapsed := time.Since(start); elapsed > 5*time.Second {
		t.Errorf("verification took %v with all network checks skipped", elapsed)
	}
}

func TestCalculateRiskScore(t *testing.T) {
	w := DefaultScoreWeights()

	testCases := []struct {
		name   string
		mutate func(*Checks)
		want   int
	}{
		{"all clean", func(c *Checks) {}, 0},
		{"url invalid", func(c *Checks) { c.URLValidation.IsValid = false }, 25},
		{"dns invalid", func(c *Checks) { c.DNSCheck.IsValid = false }, 20},
		{"ssl invalid", func(c *Checks) { c.SSLCheck.IsValid = false }, 15},
		{"malware unsafe", func(c *Checks) { c.MalwareCheck.IsSafe = false }, 30},
		{"phishing scaled", func(c *Checks) { c.PhishingCheck.SuspicionScore = 60 }, 18},
		{"phishing rounded", func(c *Checks) { c.PhishingCheck.SuspicionScore = 55 }, 17}, // 16.5 rounds up
		{
			"warnings capped",
			func(c *Checks) { c.URLValidation.Warnings = make([]string, 14) },
			10,
		},
		{
			"everything clamps to 100",
			func(c *Checks) {
				c.URLValidation.IsValid = false
				c.DNSCheck.IsValid = false
				c.SSLCheck.IsValid = false
				c.MalwareCheck.IsSafe = false
				c.PhishingCheck.SuspicionScore = 100
				c.DNSCheck.Warnings = make([]string, 20)
			},
			100,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			checks := cleanChecks()
			tc.mutate(&checks)
			if got := CalculateRiskScore(checks, w); got != tc.want {
				t.Errorf("score = %d, want %d", got, tc.want)
			}
		})
	}
}

func TestCalculateRiskScore_Monotonic(t *testing.T) {
	w := DefaultScoreWeights()
	checks := cleanChecks()
	prev := CalculateRiskScore(checks, w)

	steps := []func(*Checks){
		func(c *Checks) { c.PhishingCheck.SuspicionScore = 40 },
		func(c *Checks) { c.SSLCheck.IsValid = false },
		func(c *Checks) { c.DNSCheck.IsValid = false },
		func(c *Checks) { c.MalwareCheck.IsSafe = false },
		func(c *Checks) { c.URLValidation.IsValid = false },
	}
	for i, step := range steps {
		step(&checks)
		score := CalculateRiskScore(checks, w)
		if score < prev {
			t.Fatalf("step %d decreased score: %d -> %d", i, prev, score)
		}
		prev = score
	}
}

func TestRiskLevelFor(t *testing.T) {
	testCases := []struct {
		score int
		want  RiskLevel
	}{
		{0, RiskSafe},
		{19, RiskSafe},
		{20, RiskLow},
		{39, RiskLow},
		{40, RiskMedium},
		{59, RiskMedium},
		{60, RiskHigh},
		{79, RiskHigh},
		{80, RiskCritical},
		{100, RiskCritical},
	}
	for _, tc := range testCases {
		if got := RiskLevelFor(tc.score); got != tc.want {
			t.Errorf("RiskLevelFor(%d) = %q, want %q", tc.score, got, tc.want)
		}
	}

	// Every score in range maps to some band.
	for score := 0; score <= 100; score++ {
		switch RiskLevelFor(score) {
		case RiskSafe, RiskLow, RiskMedium, RiskHigh, RiskCritical:
		default:
			t.Fatalf("score %d fell outside all bands", score)
		}
	}
}

func TestBuildRecommendations(t *testing.T) {
	clean := cleanChecks()
	recs := buildRecommendations(clean)
	if len(recs) != 1 || !strings.Contains(recs[0], "safe to share") {
		t.Errorf("expected fallback recommendation, got %v", recs)
	}

	flagged := cleanChecks()
	flagged.MalwareCheck.IsSafe = false
	flagged.MalwareCheck.Threats = []ThreatMatch{{ThreatType: "MALWARE"}}
	recs = buildRecommendations(flagged)
	if !containsSubstring(recs, "DO NOT SHARE") {
		t.Errorf("expected do-not-share recommendation, got %v", recs)
	}

	httpOnly := cleanChecks()
	httpOnly.URLValidation.Protocol = "http"
	recs = buildRecommendations(httpOnly)
	if !containsSubstring(recs, "Upgrade to HTTPS") {
		t.Errorf("expected HTTPS upgrade recommendation, got %v", recs)
	}
}

func TestBuildCriticalIssues_SuspiciousPattern(t *testing.T) {
	checks := cleanChecks()
	issues := buildCriticalIssues("https://example.com/setup.exe", checks)
	if !containsSubstring(issues, "executable file") {
		t.Errorf("expected pattern-based critical issue, got %v", issues)
	}
}
