package cmd

import (
	"net/http"
	"os"
	"time"

	"github.com/spf13/viper"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/modnislabs/linkverify/internal/shared/constants"
	"github.com/modnislabs/linkverify/internal/verify"
)

// loadHeuristics returns the built-in heuristic lists with any overrides
// from the config file applied. Lists replace wholesale; weights merge
// key by key so a config can retune a single rule.
func loadHeuristics() verify.Heuristics {
	h := verify.DefaultHeuristics()

	if v := viper.GetStringSlice("heuristics.suspicious_keywords"); len(v) > 0 {
		h.SuspiciousKeywords = v
	}
	if v := viper.GetStringSlice("heuristics.brand_names"); len(v) > 0 {
		h.BrandNames = v
	}
	if v := viper.GetStringSlice("heuristics.suspicious_tlds"); len(v) > 0 {
		h.SuspiciousTLDs = v
	}
	if v := viper.GetStringSlice("heuristics.phishing_keywords"); len(v) > 0 {
		h.PhishingKeywords = v
	}
	if v := viper.GetStringSlice("heuristics.shortener_domains"); len(v) > 0 {
		h.ShortenerDomains = v
	}
	if viper.IsSet("heuristics.similarity_threshold") {
		h.SimilarityThreshold = viper.GetFloat64("heuristics.similarity_threshold")
	}

	overrideInt := func(key string, target *int) {
		if viper.IsSet(key) {
			*target = viper.GetInt(key)
		}
	}
	overrideInt("heuristics.weights.homograph", &h.Weights.Homograph)
	overrideInt("heuristics.weights.multi_keyword", &h.Weights.MultiKeyword)
	overrideInt("heuristics.weights.single_keyword", &h.Weights.SingleKeyword)
	overrideInt("heuristics.weights.typosquat", &h.Weights.Typosquat)
	overrideInt("heuristics.weights.brand_in_subdomain", &h.Weights.BrandInSubdomain)
	overrideInt("heuristics.weights.suspicious_tld", &h.Weights.SuspiciousTLD)
	overrideInt("heuristics.weights.deep_subdomain", &h.Weights.DeepSubdomain)
	overrideInt("heuristics.weights.ip_hostname", &h.Weights.IPHostname)
	overrideInt("heuristics.weights.at_symbol", &h.Weights.AtSymbol)
	overrideInt("heuristics.weights.excessive_hyphens", &h.Weights.ExcessiveHyphens)
	overrideInt("heuristics.weights.digits_with_keyword", &h.Weights.DigitsWithKeyword)
	overrideInt("heuristics.weights.long_domain", &h.Weights.LongDomain)
	overrideInt("heuristics.weights.shortener", &h.Weights.Shortener)

	return h
}

func loadScoreWeights() verify.ScoreWeights {
	w := verify.DefaultScoreWeights()
	if viper.IsSet("scoring.url_invalid") {
		w.URLInvalid = viper.GetInt("scoring.url_invalid")
	}
	if viper.IsSet("scoring.dns_invalid") {
		w.DNSInvalid = viper.GetInt("scoring.dns_invalid")
	}
	if viper.IsSet("scoring.ssl_invalid") {
		w.SSLInvalid = viper.GetInt("scoring.ssl_invalid")
	}
	if viper.IsSet("scoring.phishing_scale") {
		w.PhishingScale = viper.GetFloat64("scoring.phishing_scale")
	}
	if viper.IsSet("scoring.malware_unsafe") {
		w.MalwareUnsafe = viper.GetInt("scoring.malware_unsafe")
	}
	if viper.IsSet("scoring.warning_cap") {
		w.WarningCap = viper.GetInt("scoring.warning_cap")
	}
	return w
}

// buildVerifier assembles the pipeline from config and environment.
func buildVerifier(zlog *zap.Logger) *verify.Verifier {
	timeout := constants.DefaultVerifyTimeout
	if viper.IsSet("verify.timeout_seconds") {
		timeout = time.Duration(viper.GetInt("verify.timeout_seconds")) * time.Second
	}

	cacheTTL := constants.DefaultCacheTTL
	if viper.IsSet("cache.ttl_minutes") {
		cacheTTL = time.Duration(viper.GetInt("cache.ttl_minutes")) * time.Minute
	}

	var providers []verify.ReputationProvider
	if key := os.Getenv("SAFE_BROWSING_API_KEY"); key != "" {
		providers = append(providers, &verify.SafeBrowsingProvider{
			APIKey: key,
			Client: &http.Client{Timeout: timeout},
		})
	}

	return verify.NewVerifier(verify.VerifierConfig{
		Heuristics: loadHeuristics(),
		Weights:    loadScoreWeights(),
		Timeout:    timeout,
		CacheTTL:   cacheTTL,
		DNS: &verify.DNSChecker{
			Timeout:     constants.DefaultDNSTimeout,
			Nameservers: viper.GetStringSlice("dns.nameservers"),
		},
		SSL: &verify.SSLChecker{Timeout: constants.DefaultTLSTimeout},
		Malware: &verify.ThreatChecker{
			Providers: providers,
			Timeout:   timeout,
			Limiter:   rate.NewLimiter(rate.Limit(10), 10),
		},
		Logger: zlog,
	})
}
