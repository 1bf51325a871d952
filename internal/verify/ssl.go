package verify

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"net"
	"net/url"
	"strings"
	"syscall"
	"time"
)

// SSLChecker performs a TLS handshake against port 443 of a URL's host
// and inspects the presented certificate. Non-HTTPS URLs short-circuit
// without any network call: an unencrypted link is a warning, not a
// failure of the link itself.
type SSLChecker struct {
	Timeout time.Duration

	// DialTLS overrides the handshake for tests. When nil a real
	// tls.Dialer is used.
	DialTLS func(ctx context.Context, addr string) (*tls.ConnectionState, error)
}

// soonExpiryDays is the warning window before certificate expiration.
const soonExpiryDays = 30

// Check inspects the TLS configuration of rawURL.
func (s *SSLChecker) Check(ctx context.Context, rawURL string) SSLCheckResult {
	start := time.Now()
	result := SSLCheckResult{
		URL:      rawURL,
		Errors:   []string{},
		Warnings: []string{},
	}

	if !strings.HasPrefix(strings.ToLower(rawURL), "https://") {
		result.IsValid = true
		result.Warnings = append(result.Warnings,
			"URL uses HTTP instead of HTTPS - not encrypted")
		result.CheckTime = time.Since(start).Milliseconds()
		return result
	}

	parsed, err := url.Parse(rawURL)
	if err != nil || parsed.Hostname() == "" {
		result.Errors = append(result.Errors, "SSL check failed: cannot parse URL")
		result.FailureKind = FailureOther
		result.CheckTime = time.Since(start).Milliseconds()
		return result
	}

	port := parsed.Port()
	if port == "" {
		port = "443"
	}
	addr := net.JoinHostPort(parsed.Hostname(), port)

	state, err := s.handshake(ctx, addr)
	if err != nil {
		kind, msg := classifyHandshakeError(err)
		result.FailureKind = kind
		result.Errors = append(result.Errors, msg)
		if kind == FailureTimeout || kind == FailureConnRefused {
			// Transient infrastructure failure, not a statement about the
			// certificate. Surface the missing signal to the caller.
			result.Warnings = append(result.Warnings,
				"TLS check could not complete; certificate status unknown")
		}
		result.CheckTime = time.Since(start).Milliseconds()
		return result
	}

	result.HasValidCertificate = true
	result.Protocol = tlsProtocolName(state.Version)
	result.Cipher = tls.CipherSuiteName(state.CipherSuite)

	if len(state.PeerCertificates) > 0 {
		cert := state.PeerCertificates[0]
		validFrom := cert.NotBefore
		validTo := cert.NotAfter
		result.CertificateIssuer = cert.Issuer.CommonName
		result.CertificateSubject = cert.Subject.CommonName
		result.ValidFrom = &validFrom
		result.ValidTo = &validTo

		days := int(time.Until(validTo).Hours() / 24)
		result.DaysUntilExpiration = &days

		if days < 0 {
			result.Errors = append(result.Errors, "SSL certificate has expired")
		} else if days < soonExpiryDays {
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("SSL certificate expires in %d days", days))
		}

		if cert.Issuer.CommonName != "" && cert.Issuer.CommonName == cert.Subject.CommonName {
			result.Warnings = append(result.Warnings, "SSL certificate is self-signed")
		}
	}

	if result.Protocol == "TLSv1.0" || result.Protocol == "TLSv1.1" {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("Outdated TLS protocol: %s", result.Protocol))
	}

	cipherUpper := strings.ToUpper(result.Cipher)
	if strings.Contains(cipherUpper, "RC4") ||
		strings.Contains(cipherUpper, "DES") ||
		strings.Contains(cipherUpper, "MD5") {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("Weak cipher suite: %s", result.Cipher))
	}

	result.IsValid = len(result.Errors) == 0
	result.CheckTime = time.Since(start).Milliseconds()
	return result
}

func (s *SSLChecker) handshake(ctx context.Context, addr string) (*tls.ConnectionState, error) {
	if s.DialTLS != nil {
		return s.DialTLS(ctx, addr)
	}

	dialCtx, cancel := context.WithTimeout(ctx, s.timeout())
	defer cancel()

	dialer := &tls.Dialer{
		NetDialer: &net.Dialer{Timeout: s.timeout()},
	}
	conn, err := dialer.DialContext(dialCtx, "tcp", addr)
	if err != nil {
		return nil, err
	}
	defer func() { _ = conn.Close() }()

	state := conn.(*tls.Conn).ConnectionState()
	return &state, nil
}

func (s *SSLChecker) timeout() time.Duration {
	if s.Timeout > 0 {
		return s.Timeout
	}
	return 10 * time.Second
}

// classifyHandshakeError separates certificate problems from transport
// problems. The risk aggregation treats both as an invalid TLS check,
// but auditors need the distinction.
func classifyHandshakeError(err error) (FailureKind, string) {
	var certInvalid x509.CertificateInvalidError
	var unknownAuthority x509.UnknownAuthorityError
	var hostnameErr x509.HostnameError
	var verifyErr *tls.CertificateVerificationError

	switch {
	case errors.As(err, &certInvalid),
		errors.As(err, &unknownAuthority),
		errors.As(err, &hostnameErr),
		errors.As(err, &verifyErr):
		return FailureCertInvalid, "SSL certificate is invalid or has expired"
	case errors.Is(err, context.DeadlineExceeded), isTimeout(err):
		return FailureTimeout, "SSL check timed out"
	case errors.Is(err, syscall.ECONNREFUSED):
		return FailureConnRefused, "SSL check failed: connection refused"
	}
	return FailureOther, fmt.Sprintf("SSL check failed: %v", err)
}

func isTimeout(err error) bool {
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

func tlsProtocolName(version uint16) string {
	switch version {
	case tls.VersionTLS10:
		return "TLSv1.0"
	case tls.VersionTLS11:
		return "TLSv1.1"
	case tls.VersionTLS12:
		return "TLSv1.2"
	case tls.VersionTLS13:
		return "TLSv1.3"
	default:
		return fmt.Sprintf("unknown (0x%04x)", version)
	}
}
