package errors

import "errors"

// Boundary errors. The verification core itself reports outcomes through
// result values; these sentinels exist for the HTTP and CLI layers that
// translate verdicts into rejections.
var (
	ErrMissingURL       = errors.New("url parameter is required")
	ErrInvalidURLFormat = errors.New("invalid URL format")
	ErrRiskRejected     = errors.New("url rejected: risk too high")

	ErrMissingDomain = errors.New("domain is required")
	ErrWhoisLookup   = errors.New("whois lookup failed")
)
