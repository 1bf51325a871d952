package verify

// Heuristics bundles the static lists and score weights driving the URL
// structure and phishing checks. The defaults reproduce the production
// tuning; operators can override individual lists or weights through the
// config file without recompiling.
type Heuristics struct {
	// SuspiciousKeywords trigger a structural warning when present in the
	// URL but absent from the registrable domain itself.
	SuspiciousKeywords []string

	// BrandNames are well-known brands that phishers impersonate.
	BrandNames []string

	// SuspiciousTLDs are TLDs (with leading dot) disproportionately used
	// for phishing, mostly free registries and confusable extensions.
	SuspiciousTLDs []string

	// PhishingKeywords feed the keyword-density scoring.
	PhishingKeywords []string

	// ShortenerDomains are known URL shorteners; the destination behind
	// them is opaque, which earns a small penalty.
	ShortenerDomains []string

	// SimilarityThreshold is the normalized Levenshtein similarity above
	// which a brand-adjacent domain counts as typosquatting.
	SimilarityThreshold float64

	Weights PhishingWeights
}

// PhishingWeights are the additive score contributions of each phishing
// heuristic. The total is capped at 100.
type PhishingWeights struct {
	Homograph         int // non-ASCII bytes in hostname
	MultiKeyword      int // two or more phishing keywords in the URL
	SingleKeyword     int // exactly one phishing keyword (warning only)
	Typosquat         int // brand-adjacent domain above similarity threshold
	BrandInSubdomain  int // brand name in subdomain, e.g. paypal.evil.tld
	SuspiciousTLD     int
	DeepSubdomain     int // more than 3 subdomain labels (warning)
	IPHostname        int // bare IPv4 literal as hostname
	AtSymbol          int // @ anywhere in the URL
	ExcessiveHyphens  int // more than 2 hyphens in the domain
	DigitsWithKeyword int // digits in domain combined with a keyword hit (warning)
	LongDomain        int // domain longer than 30 chars (warning)
	Shortener         int // known URL shortener (warning)
}

// ScoreWeights are the verdict-level risk score contributions.
type ScoreWeights struct {
	URLInvalid    int     // URL structure validation failed
	DNSInvalid    int     // DNS resolution failed
	SSLInvalid    int     // TLS check failed
	PhishingScale float64 // multiplier applied to the 0-100 suspicion score
	MalwareUnsafe int     // flat penalty for any positive threat match
	WarningCap    int     // warnings count 1 point each up to this cap
}

// DefaultHeuristics returns the built-in lists and tuning.
func DefaultHeuristics() Heuristics {
	return Heuristics{
		SuspiciousKeywords: []string{
			"login", "signin", "verify", "account", "update", "secure",
			"banking", "paypal", "amazon", "apple", "microsoft", "google",
		},
		BrandNames: []string{
			"google", "facebook", "amazon", "apple", "microsoft", "paypal",
			"netflix", "instagram", "twitter", "linkedin", "github", "dropbox",
			"yahoo", "outlook", "live", "office", "adobe", "spotify", "ebay",
			"walmart", "target", "bestbuy", "chase", "bankofamerica", "wellsfargo",
		},
		SuspiciousTLDs: []string{
			".tk", ".ml", ".ga", ".cf", ".gq",
			".zip", ".mov", ".exe",
		},
		PhishingKeywords: []string{
			"verify", "account", "update", "confirm", "login", "signin",
			"secure", "banking", "suspended", "locked", "unusual", "activity",
			"validate", "restore", "recover", "wallet", "payment", "billing",
			"invoice",
		},
		ShortenerDomains: []string{
			"bit.ly", "tinyurl", "goo.gl", "ow.ly", "t.co",
			"short.link", "tiny.cc", "cutt.ly", "rebrand.ly",
		},
		SimilarityThreshold: 0.7,
		Weights: PhishingWeights{
			Homograph:         30,
			MultiKeyword:      25,
			SingleKeyword:     10,
			Typosquat:         35,
			BrandInSubdomain:  40,
			SuspiciousTLD:     20,
			DeepSubdomain:     15,
			IPHostname:        30,
			AtSymbol:          35,
			ExcessiveHyphens:  20,
			DigitsWithKeyword: 15,
			LongDomain:        10,
			Shortener:         5,
		},
	}
}

// DefaultScoreWeights returns the verdict-level tuning.
func DefaultScoreWeights() ScoreWeights {
	return ScoreWeights{
		URLInvalid:    25,
		DNSInvalid:    20,
		SSLInvalid:    15,
		PhishingScale: 0.30,
		MalwareUnsafe: 30,
		WarningCap:    10,
	}
}
