package verify

import "time"

// URLValidationResult captures the structural validation of a raw URL.
// IsValid is true exactly when Errors is empty; Warnings never block.
type URLValidationResult struct {
	IsValid   bool     `json:"isValid"`
	URL       string   `json:"url"`
	Protocol  string   `json:"protocol"`
	Domain    string   `json:"domain"`
	Hostname  string   `json:"hostname"`
	TLD       string   `json:"tld,omitempty"`
	Subdomain string   `json:"subdomain,omitempty"`
	Errors    []string `json:"errors"`
	Warnings  []string `json:"warnings"`
}

// MXRecord is a single mail-exchanger record.
type MXRecord struct {
	Exchange string `json:"exchange"`
	Priority uint16 `json:"priority"`
}

// DNSCheckResult captures resolution results across record types.
type DNSCheckResult struct {
	IsValid        bool       `json:"isValid"`
	Hostname       string     `json:"hostname"`
	HasARecord     bool       `json:"hasARecord"`
	HasAAAARecord  bool       `json:"hasAAAARecord"`
	HasMXRecord    bool       `json:"hasMxRecord"`
	HasCNAMERecord bool       `json:"hasCnameRecord"`
	ARecords       []string   `json:"aRecords"`
	AAAARecords    []string   `json:"aaaaRecords"`
	MXRecords      []MXRecord `json:"mxRecords"`
	CNAMERecords   []string   `json:"cnameRecords"`
	Errors         []string   `json:"errors"`
	Warnings       []string   `json:"warnings"`
	ResolutionTime int64      `json:"resolutionTime"` // milliseconds
}

// FailureKind distinguishes why a TLS handshake did not produce a usable
// certificate. The aggregate scoring treats all kinds the same, but callers
// auditing a verdict need to tell a timeout apart from a bad certificate.
type FailureKind string

const (
	FailureNone        FailureKind = ""
	FailureTimeout     FailureKind = "timeout"
	FailureCertInvalid FailureKind = "certificate_invalid"
	FailureConnRefused FailureKind = "connection_refused"
	FailureOther       FailureKind = "other"
)

// SSLCheckResult captures TLS handshake and certificate inspection results.
// Non-HTTPS URLs short-circuit with IsValid=true and a "not encrypted"
// warning; no network call is made for them.
type SSLCheckResult struct {
	IsValid             bool        `json:"isValid"`
	URL                 string      `json:"url"`
	HasValidCertificate bool        `json:"hasValidCertificate"`
	CertificateIssuer   string      `json:"certificateIssuer,omitempty"`
	CertificateSubject  string      `json:"certificateSubject,omitempty"`
	ValidFrom           *time.Time  `json:"validFrom,omitempty"`
	ValidTo             *time.Time  `json:"validTo,omitempty"`
	DaysUntilExpiration *int        `json:"daysUntilExpiration,omitempty"`
	Protocol            string      `json:"protocol,omitempty"`
	Cipher              string      `json:"cipher,omitempty"`
	FailureKind         FailureKind `json:"failureKind,omitempty"`
	Errors              []string    `json:"errors"`
	Warnings            []string    `json:"warnings"`
	CheckTime           int64       `json:"checkTime"` // milliseconds
}

// PhishingCheckResult carries the additive suspicion score and the
// human-readable reasons for every heuristic that fired.
type PhishingCheckResult struct {
	IsPhishing     bool     `json:"isPhishing"`
	SuspicionScore int      `json:"suspicionScore"` // 0-100
	URL            string   `json:"url"`
	Domain         string   `json:"domain"`
	Reasons        []string `json:"reasons"`
	Warnings       []string `json:"warnings"`
}

// ThreatMatch is a single positive hit from a reputation provider.
type ThreatMatch struct {
	ThreatType  string `json:"threatType"`
	Description string `json:"description"`
	Source      string `json:"source"`
}

// MalwareCheckResult aggregates reputation-provider lookups. Provider
// outages degrade to warnings; IsSafe stays true unless a provider
// returns a positive match.
type MalwareCheckResult struct {
	IsSafe    bool          `json:"isSafe"`
	URL       string        `json:"url"`
	Threats   []ThreatMatch `json:"threats"`
	CheckedBy []string      `json:"checkedBy"`
	Errors    []string      `json:"errors"`
	Warnings  []string      `json:"warnings"`
	CheckTime int64         `json:"checkTime"` // milliseconds
}

// RiskLevel is the categorical verdict derived from the risk score.
type RiskLevel string

const (
	RiskSafe     RiskLevel = "safe"
	RiskLow      RiskLevel = "low"
	RiskMedium   RiskLevel = "medium"
	RiskHigh     RiskLevel = "high"
	RiskCritical RiskLevel = "critical"
)

// Checks groups the five individual check results inside a verdict.
// Skipped checks are present with a neutral result, never omitted.
type Checks struct {
	URLValidation URLValidationResult `json:"urlValidation"`
	DNSCheck      DNSCheckResult      `json:"dnsCheck"`
	SSLCheck      SSLCheckResult      `json:"sslCheck"`
	PhishingCheck PhishingCheckResult `json:"phishingCheck"`
	MalwareCheck  MalwareCheckResult  `json:"malwareCheck"`
}

// Summary rolls error/warning counts and the actionable output up.
type Summary struct {
	TotalErrors     int      `json:"totalErrors"`
	TotalWarnings   int      `json:"totalWarnings"`
	CriticalIssues  []string `json:"criticalIssues"`
	Recommendations []string `json:"recommendations"`
}

// Metadata records when and how the verification happened.
type Metadata struct {
	VerifiedAt     time.Time `json:"verifiedAt"`
	TotalCheckTime int64     `json:"totalCheckTime"` // milliseconds
	Cached         bool      `json:"cached"`
}

// Verdict is the complete output of one verification pass over a URL.
// It is never mutated after construction; cached copies are returned
// with Metadata.Cached set to true.
type Verdict struct {
	URL         string    `json:"url"`
	IsVerified  bool      `json:"isVerified"`
	OverallRisk RiskLevel `json:"overallRisk"`
	RiskScore   int       `json:"riskScore"`
	Checks      Checks    `json:"checks"`
	Summary     Summary   `json:"summary"`
	Metadata    Metadata  `json:"metadata"`
}

// Options control a single Verify call. The zero value runs everything
// with the default timeout.
type Options struct {
	SkipCache    bool
	SkipDNS      bool
	SkipSSL      bool
	SkipMalware  bool
	SkipPhishing bool
	Timeout      time.Duration
}

const skippedWarning = "check skipped"

// SkippedDNSResult is the neutral stand-in used when the DNS check is
// disabled or no hostname could be extracted from the URL.
func SkippedDNSResult(hostname string) DNSCheckResult {
	return DNSCheckResult{
		IsValid:      true,
		Hostname:     hostname,
		ARecords:     []string{},
		AAAARecords:  []string{},
		MXRecords:    []MXRecord{},
		CNAMERecords: []string{},
		Errors:       []string{},
		Warnings:     []string{skippedWarning},
	}
}

// SkippedSSLResult is the neutral stand-in for a disabled TLS check.
func SkippedSSLResult(url string) SSLCheckResult {
	return SSLCheckResult{
		IsValid:  true,
		URL:      url,
		Errors:   []string{},
		Warnings: []string{skippedWarning},
	}
}

// SkippedPhishingResult is the neutral stand-in for a disabled phishing check.
func SkippedPhishingResult(url string) PhishingCheckResult {
	return PhishingCheckResult{
		IsPhishing: false,
		URL:        url,
		Reasons:    []string{},
		Warnings:   []string{skippedWarning},
	}
}

// SkippedMalwareResult is the neutral stand-in for a disabled threat check.
func SkippedMalwareResult(url string) MalwareCheckResult {
	return MalwareCheckResult{
		IsSafe:    true,
		URL:       url,
		Threats:   []ThreatMatch{},
		CheckedBy: []string{},
		Errors:    []string{},
		Warnings:  []string{skippedWarning},
	}
}
