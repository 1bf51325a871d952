// Package domaininfo provides WHOIS-based registration intelligence for
// domains surfaced by the verification pipeline. Registration age is a
// useful human signal when a verdict recommends manual review: very
// young domains carrying brand-adjacent names are a strong phishing
// tell, but too noisy to fold into the automated score.
package domaininfo

import (
	"fmt"
	"strings"
	"time"

	"github.com/likexian/whois"
	whoisparser "github.com/likexian/whois-parser"

	sharederrors "github.com/modnislabs/linkverify/internal/shared/errors"
)

// Info summarizes a domain registration.
type Info struct {
	Domain      string     `json:"domain"`
	Registrar   string     `json:"registrar,omitempty"`
	CreatedAt   *time.Time `json:"createdAt,omitempty"`
	UpdatedAt   *time.Time `json:"updatedAt,omitempty"`
	ExpiresAt   *time.Time `json:"expiresAt,omitempty"`
	AgeDays     int        `json:"ageDays"`
	NameServers []string   `json:"nameServers,omitempty"`
	Statuses    []string   `json:"statuses,omitempty"`
}

// lookupFunc is swapped in tests.
var lookupFunc = whois.Whois

// Registrars publish timestamps in several formats; try the common ones.
var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02",
	"02-Jan-2006",
	"2006.01.02",
}

// Lookup queries WHOIS for domain and parses the registration record.
// Subdomains fall back to their parent domain, since registries only
// hold records for registrable names.
func Lookup(domain string) (*Info, error) {
	domain = strings.TrimSpace(strings.ToLower(domain))
	if domain == "" {
		return nil, sharederrors.ErrMissingDomain
	}

	raw, err := lookupFunc(domain)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", sharederrors.ErrWhoisLookup, err)
	}

	parsed, err := whoisparser.Parse(raw)
	if err != nil || parsed.Domain == nil {
		parts := strings.Split(domain, ".")
		if len(parts) > 2 {
			return Lookup(strings.Join(parts[1:], "."))
		}
		return nil, fmt.Errorf("%w: no parseable record for %s", sharederrors.ErrWhoisLookup, domain)
	}

	info := &Info{Domain: domain}
	if parsed.Registrar != nil {
		info.Registrar = parsed.Registrar.Name
	}
	info.NameServers = parsed.Domain.NameServers
	info.Statuses = parsed.Domain.Status

	if t := parseDate(parsed.Domain.CreatedDate); t != nil {
		info.CreatedAt = t
		info.AgeDays = int(time.Since(*t).Hours() / 24)
	}
	info.UpdatedAt = parseDate(parsed.Domain.UpdatedDate)
	info.ExpiresAt = parseDate(parsed.Domain.ExpirationDate)

	return info, nil
}

func parseDate(s string) *time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return &t
		}
	}
	return nil
}
