package constants

import "time"

const (
	// DefaultVerifyTimeout bounds one full verification pass.
	DefaultVerifyTimeout = 10 * time.Second
	// DefaultTLSTimeout bounds the TLS handshake inside the SSL check.
	DefaultTLSTimeout = 10 * time.Second
	// DefaultDNSTimeout bounds each individual DNS lookup.
	DefaultDNSTimeout = 10 * time.Second
	// DefaultCacheTTL is how long a verdict is reused before re-verification.
	DefaultCacheTTL = time.Hour
)

const (
	// DefaultAPIAddr is where the verification API listens.
	DefaultAPIAddr = ":8080"
	// DefaultRateLimit is requests per second per client IP (0 disables).
	DefaultRateLimit = 10
	// DefaultRateBurst is the per-IP burst allowance.
	DefaultRateBurst = 20
	// DefaultShutdownTimeout bounds graceful API shutdown.
	DefaultShutdownTimeout = 10 * time.Second
)
