package verify

import (
	"strings"
	"testing"
)

func TestURLValidator_ValidURL(t *testing.T) {
	v := NewURLValidator(DefaultHeuristics())

	result := v.Validate("https://example.com/page")
	if !result.IsValid {
		t.Fatalf("expected valid, got errors: %v", result.Errors)
	}
	if result.Protocol != "https" {
		t.Errorf("expected protocol https, got %q", result.Protocol)
	}
	if result.Hostname != "example.com" {
		t.Errorf("expected hostname example.com, got %q", result.Hostname)
	}
	if result.Domain != "example.com" {
		t.Errorf("expected domain example.com, got %q", result.Domain)
	}
	if result.TLD != "com" {
		t.Errorf("expected tld com, got %q", result.TLD)
	}
	if len(result.Warnings) != 0 {
		t.Errorf("expected no warnings, got %v", result.Warnings)
	}
}

func TestURLValidator_InvalidFormat(t *testing.T) {
	v := NewURLValidator(DefaultHeuristics())

	for _, input := range []string{"not a url at all", "example.com", "://missing"} {
		result := v.Validate(input)
		if result.IsValid {
			t.Errorf("expected %q to be invalid", input)
		}
		if len(result.Errors) == 0 || result.Errors[0] != "Invalid URL format" {
			t.Errorf("expected 'Invalid URL format' for %q, got %v", input, result.Errors)
		}
	}
}

func TestURLValidator_Errors(t *testing.T) {
	v := NewURLValidator(DefaultHeuristics())

	testCases := []struct {
		name     string
		input    string
		errPart  string
	}{
		{"ftp protocol", "ftp://example.com/file", "Invalid protocol"},
		{"localhost", "http://localhost/admin", "localhost or private networks"},
		{"loopback ip", "http://127.0.0.1:8080/", "localhost or private networks"},
		{"rfc1918 192.168", "https://192.168.1.1/router", "localhost or private networks"},
		{"rfc1918 10.x", "https://10.0.0.5/", "localhost or private networks"},
		{"rfc1918 172.16-31", "https://172.20.0.1/", "localhost or private networks"},
		{"dot local", "http://printer.local/", "localhost or private networks"},
		{"dot local uppercase", "http://printer.LOCAL/", "localhost or private networks"},
		{"localhost mixed case", "http://LocalHost/admin", "localhost or private networks"},
		{"invalid characters", "https://exa_mple.com/", "invalid characters"},
		{"missing tld", "https://singlelabel/", "top-level domain"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			result := v.Validate(tc.input)
			if result.IsValid {
				t.Fatalf("expected invalid result for %q", tc.input)
			}
			found := false
			for _, e := range result.Errors {
				if strings.Contains(e, tc.errPart) {
					found = true
					break
				}
			}
			if !found {
				t.Errorf("expected error containing %q, got %v", tc.errPart, result.Errors)
			}
		})
	}
}

func TestURLValidator_Warnings(t *testing.T) {
	v := NewURLValidator(DefaultHeuristics())

	testCases := []struct {
		name     string
		input    string
		warnPart string
	}{
		{"plain http", "http://example.com/", "Consider using HTTPS"},
		{"ipv4 literal", "https://8.8.8.8/dns", "IP address instead of domain"},
		{"at symbol", "https://example.com/login@attacker", "@ symbol"},
		{"many subdomains", "https://a.b.c.d.example.com/", "many subdomains"},
		{"suspicious keyword", "https://example.com/login", "suspicious keywords"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			result := v.Validate(tc.input)
			found := false
			for _, w := range result.Warnings {
				if strings.Contains(w, tc.warnPart) {
					found = true
					break
				}
			}
			if !found {
				t.Errorf("expected warning containing %q, got %v", tc.warnPart, result.Warnings)
			}
		})
	}
}

func TestURLValidator_HostnameCaseNormalized(t *testing.T) {
	v := NewURLValidator(DefaultHeuristics())

	result := v.Validate("https://EXAMPLE.Com/page")
	if !result.IsValid {
		t.Fatalf("expected valid, got errors: %v", result.Errors)
	}
	if result.Hostname != "example.com" {
		t.Errorf("expected lowercased hostname, got %q", result.Hostname)
	}
	if result.Domain != "example.com" || result.TLD != "com" {
		t.Errorf("expected lowercased domain/tld, got %q/%q", result.Domain, result.TLD)
	}
}

func TestURLValidator_KeywordInDomainIsNotFlagged(t *testing.T) {
	v := NewURLValidator(DefaultHeuristics())

	// The keyword is the domain owner's own branding here.
	result := v.Validate("https://login.com/")
	for _, w := range result.Warnings {
		if strings.Contains(w, "suspicious keywords") {
			t.Errorf("keyword inside the domain should not warn, got %v", result.Warnings)
		}
	}
}

func TestURLValidator_LongURL(t *testing.T) {
	v := NewURLValidator(DefaultHeuristics())

	long := "https://example.com/?q=" + strings.Repeat("a", maxURLLength)
	result := v.Validate(long)
	found := false
	for _, w := range result.Warnings {
		if strings.Contains(w, "extremely long") {
			found = true
		}
	}
	if !found {
		t.Errorf("expected long-URL warning, got %v", result.Warnings)
	}
}

func TestSplitDomain(t *testing.T) {
	testCases := []struct {
		hostname  string
		domain    string
		tld       string
		subdomain string
	}{
		{"example.com", "example.com", "com", ""},
		{"www.example.com", "example.com", "com", "www"},
		{"a.b.c.example.com", "example.com", "com", "a.b.c"},
		{"singlelabel", "singlelabel", "", ""},
		{"", "", "", ""},
	}

	for _, tc := range testCases {
		domain, tld, subdomain := splitDomain(tc.hostname)
		if domain != tc.domain || tld != tc.tld || subdomain != tc.subdomain {
			t.Errorf("splitDomain(%q) = (%q, %q, %q), want (%q, %q, %q)",
				tc.hostname, domain, tld, subdomain, tc.domain, tc.tld, tc.subdomain)
		}
	}
}

func TestIsValidURLFormat(t *testing.T) {
	valid := []string{"https://example.com", "http://example.com/path?q=1"}
	invalid := []string{"", "example.com", "ftp://example.com", "https://"}

	for _, u := range valid {
		if !IsValidURLFormat(u) {
			t.Errorf("expected %q to be valid", u)
		}
	}
	for _, u := range invalid {
		if IsValidURLFormat(u) {
			t.Errorf("expected %q to be invalid", u)
		}
	}
}

func TestExtractHostname(t *testing.T) {
	if host := ExtractHostname("https://sub.example.com:8443/path"); host != "sub.example.com" {
		t.Errorf("expected sub.example.com, got %q", host)
	}
	if host := ExtractHostname("%%%"); host != "" {
		t.Errorf("expected empty hostname for garbage input, got %q", host)
	}
}
