package verify

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/netip"
	"time"
)

// maxARecordsBeforeWarning flags hosts answering with an unusually wide
// A record set. Usually a CDN, occasionally fast-flux; either way worth
// a human look rather than a block.
const maxARecordsBeforeWarning = 10

// DNSChecker resolves A, AAAA, MX, and CNAME records for a hostname.
// Each record type is looked up independently so one failure does not
// abort the others.
type DNSChecker struct {
	Timeout     time.Duration
	Nameservers []string // optional custom nameservers (host:port)
}

// Check resolves all record types for hostname and applies the private
// range and record-presence policies. Infrastructure hiccups degrade to
// warnings; only definitive negatives become errors.
func (d *DNSChecker) Check(ctx context.Context, hostname string) DNSCheckResult {
	start := time.Now()
	result := DNSCheckResult{
		Hostname:     hostname,
		ARecords:     []string{},
		AAAARecords:  []string{},
		MXRecords:    []MXRecord{},
		CNAMERecords: []string{},
		Errors:       []string{},
		Warnings:     []string{},
	}

	resolver := d.resolver()

	// A records (IPv4)
	if ips, err := d.lookupIP(ctx, resolver, "ip4", hostname); err != nil {
		if !isNotFound(err) {
			result.Warnings = append(result.Warnings, "Could not resolve A records")
		}
	} else {
		result.ARecords = ips
	}

	// AAAA records (IPv6) - optional, absence is not even a warning
	if ips, err := d.lookupIP(ctx, resolver, "ip6", hostname); err != nil {
		if !isNotFound(err) {
			result.Warnings = append(result.Warnings, "Could not resolve IPv6 records")
		}
	} else {
		result.AAAARecords = ips
	}

	// MX records - optional for non-mail domains
	lookupCtx, cancel := d.lookupContext(ctx)
	if mx, err := resolver.LookupMX(lookupCtx, hostname); err != nil {
		if !isNotFound(err) {
			result.Warnings = append(result.Warnings, "Could not resolve MX records")
		}
	} else {
		for _, record := range mx {
			result.MXRecords = append(result.MXRecords, MXRecord{
				Exchange: record.Host,
				Priority: record.Pref,
			})
		}
	}
	cancel()

	// CNAME - optional
	lookupCtx, cancel = d.lookupContext(ctx)
	if cname, err := resolver.LookupCNAME(lookupCtx, hostname); err != nil {
		if !isNotFound(err) {
			result.Warnings = append(result.Warnings, "Could not resolve CNAME records")
		}
	} else if cname != "" && cname != hostname && cname != hostname+"." {
		result.CNAMERecords = append(result.CNAMERecords, cname)
	}
	cancel()

	result.HasARecord = len(result.ARecords) > 0
	result.HasAAAARecord = len(result.AAAARecords) > 0
	result.HasMXRecord = len(result.MXRecords) > 0
	result.HasCNAMERecord = len(result.CNAMERecords) > 0

	if !result.HasARecord && !result.HasAAAARecord && !result.HasCNAMERecord {
		result.Errors = append(result.Errors, "No valid DNS records found for this domain")
	}

	for _, ip := range result.ARecords {
		if reason := reservedRangeReason(ip); reason != "" {
			result.Errors = append(result.Errors,
				fmt.Sprintf("Domain resolves to %s IP address: %s", reason, ip))
		}
	}

	if !result.HasMXRecord && result.HasARecord {
		result.Warnings = append(result.Warnings,
			"Domain has no email (MX) records, may be newly registered")
	}

	if len(result.ARecords) > maxARecordsBeforeWarning {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("Domain has %d A records, verify legitimacy", len(result.ARecords)))
	}

	result.IsValid = len(result.Errors) == 0
	result.ResolutionTime = time.Since(start).Milliseconds()
	return result
}

// Exists is a quick existence probe: does the hostname resolve to any
// address at all?
func (d *DNSChecker) Exists(ctx context.Context, hostname string) bool {
	resolver := d.resolver()
	if ips, err := d.lookupIP(ctx, resolver, "ip4", hostname); err == nil && len(ips) > 0 {
		return true
	}
	ips, err := d.lookupIP(ctx, resolver, "ip6", hostname)
	return err == nil && len(ips) > 0
}

func (d *DNSChecker) resolver() *net.Resolver {
	resolver := &net.Resolver{PreferGo: true}
	if len(d.Nameservers) > 0 {
		dialer := &net.Dialer{Timeout: d.timeout()}
		nameserver := d.Nameservers[0]
		resolver.Dial = func(ctx context.Context, network, address string) (net.Conn, error) {
			return dialer.DialContext(ctx, network, nameserver)
		}
	}
	return resolver
}

func (d *DNSChecker) lookupIP(ctx context.Context, resolver *net.Resolver, network, hostname string) ([]string, error) {
	lookupCtx, cancel := d.lookupContext(ctx)
	defer cancel()

	ips, err := resolver.LookupIP(lookupCtx, network, hostname)
	if err != nil {
		return nil, err
	}
	addrs := make([]string, 0, len(ips))
	for _, ip := range ips {
		addrs = append(addrs, ip.String())
	}
	return addrs, nil
}

func (d *DNSChecker) lookupContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, d.timeout())
}

func (d *DNSChecker) timeout() time.Duration {
	if d.Timeout > 0 {
		return d.Timeout
	}
	return 10 * time.Second
}

// isNotFound reports whether a DNS error means "the name/record does not
// exist" as opposed to an infrastructure failure. Absence is handled by
// the record-presence policy; everything else surfaces as a warning.
func isNotFound(err error) bool {
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return dnsErr.IsNotFound
	}
	return false
}

// reservedRangeReason returns a human-readable reason when ip falls in a
// range that should never back a public redirect target, or "" when the
// address is globally routable.
func reservedRangeReason(ip string) string {
	addr, err := netip.ParseAddr(ip)
	if err != nil {
		return "unparseable"
	}
	switch {
	case addr.IsLoopback():
		return "Loopback"
	case addr.IsPrivate():
		return "Private network"
	case addr.IsLinkLocalUnicast():
		return "Link-local"
	case addr.IsMulticast():
		return "Multicast"
	case addr.IsUnspecified():
		return "Reserved (current network)"
	case addr.Is4() && addr.As4()[0] >= 240:
		return "Reserved"
	}
	return ""
}
