// Package api exposes the verification pipeline over HTTP. The server
// is the only layer that translates verdicts into rejections: a
// critical-risk verdict becomes a 403, everything else returns the
// structured verdict for the caller to act on.
package api

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/modnislabs/linkverify/internal/api/middleware"
	sharederrors "github.com/modnislabs/linkverify/internal/shared/errors"
	"github.com/modnislabs/linkverify/internal/verify"
)

// VerifyService runs the verification pipeline.
type VerifyService interface {
	Verify(ctx context.Context, url string, opts verify.Options) verify.Verdict
	CacheStats() verify.CacheStats
	FlushCache()
}

// Config wires the server's collaborators and policy knobs.
type Config struct {
	Verifier    VerifyService
	AuthToken   string   // optional; empty disables auth
	CORSOrigins []string // allowed CORS origins (empty = allow all)
	RateLimit   int      // requests per second per IP (0 = disabled)
	RateBurst   int      // burst size for the rate limiter
	Logger      *zap.Logger
}

// Server is the HTTP surface over the verification pipeline.
type Server struct {
	cfg      Config
	mux      *http.ServeMux
	limiters *rateLimiterMap
}

// NewServer builds the server and registers its routes.
func NewServer(cfg Config) *Server {
	srv := &Server{
		cfg:      cfg,
		mux:      http.NewServeMux(),
		limiters: newRateLimiterMap(),
	}
	srv.routes()
	return srv
}

// Close stops the background limiter cleanup. Safe to call more than
// once.
func (s *Server) Close() {
	s.limiters.stop()
}

// ServeHTTP applies the middleware chain: RequestID -> Logging -> RateLimit -> CORS -> Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	handler := middleware.RequestID(s.withLogging(s.withRateLimit(s.withCORS(s.mux))))
	handler.ServeHTTP(w, r)
}

func (s *Server) routes() {
	s.mux.Handle("/api/v1/verify", s.withAuth(http.HandlerFunc(s.handleVerify)))
	s.mux.Handle("/api/v1/cache/stats", s.withAuth(http.HandlerFunc(s.handleCacheStats)))
	s.mux.Handle("/api/v1/cache", s.withAuth(http.HandlerFunc(s.handleCacheFlush)))
	s.mux.Handle("/api/v1/health", http.HandlerFunc(s.handleHealth))
	s.mux.Handle("/api/v1/ready", http.HandlerFunc(s.handleReady))
}

type verifyResponse struct {
	Success      bool           `json:"success"`
	Verification verify.Verdict `json:"verification"`
}

type rejectResponse struct {
	Success        bool     `json:"success"`
	Error          string   `json:"error"`
	OverallRisk    string   `json:"overallRisk"`
	RiskScore      int      `json:"riskScore"`
	CriticalIssues []string `json:"criticalIssues"`
}

func (s *Server) handleVerify(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.methodNotAllowed(w, r)
		return
	}

	query := r.URL.Query()
	rawURL := query.Get("url")
	if rawURL == "" {
		s.writeError(w, r, http.StatusBadRequest, sharederrors.ErrMissingURL)
		return
	}
	if !verify.IsValidURLFormat(rawURL) {
		s.writeError(w, r, http.StatusBadRequest, sharederrors.ErrInvalidURLFormat)
		return
	}

	opts := verify.Options{
		SkipCache:    queryBool(query.Get("skip_cache")),
		SkipDNS:      queryBool(query.Get("skip_dns")),
		SkipSSL:      queryBool(query.Get("skip_ssl")),
		SkipMalware:  queryBool(query.Get("skip_malware")),
		SkipPhishing: queryBool(query.Get("skip_phishing")),
	}
	if timeoutMs := query.Get("timeout_ms"); timeoutMs != "" {
		if parsed, err := strconv.Atoi(timeoutMs); err == nil && parsed > 0 {
			opts.Timeout = time.Duration(parsed) * time.Millisecond
		}
	}

	verdict := s.cfg.Verifier.Verify(r.Context(), rawURL, opts)

	// Critical risk is always rejected. High risk is rejected for
	// unauthenticated callers; operators with a token get the verdict
	// back to make their own call.
	rejected := verdict.OverallRisk == verify.RiskCritical ||
		(verdict.OverallRisk == verify.RiskHigh && !s.authenticated(r))
	if rejected {
		writeJSON(w, http.StatusForbidden, rejectResponse{
			Success:        false,
			Error:          sharederrors.ErrRiskRejected.Error(),
			OverallRisk:    string(verdict.OverallRisk),
			RiskScore:      verdict.RiskScore,
			CriticalIssues: verdict.Summary.CriticalIssues,
		})
		return
	}

	writeJSON(w, http.StatusOK, verifyResponse{Success: true, Verification: verdict})
}

func (s *Server) handleCacheStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.methodNotAllowed(w, r)
		return
	}
	writeJSON(w, http.StatusOK, s.cfg.Verifier.CacheStats())
}

func (s *Server) handleCacheFlush(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodDelete {
		s.methodNotAllowed(w, r)
		return
	}
	s.cfg.Verifier.FlushCache()
	writeJSON(w, http.StatusOK, map[string]string{"status": "flushed"})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.methodNotAllowed(w, r)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.methodNotAllowed(w, r)
		return
	}
	if s.cfg.Verifier == nil {
		s.writeError(w, r, http.StatusServiceUnavailable, errors.New("verifier not configured"))
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

// authenticated reports whether the request carried the configured
// token. With no token configured, every caller counts as
// unauthenticated for risk-policy purposes.
func (s *Server) authenticated(r *http.Request) bool {
	if s.cfg.AuthToken == "" {
		return false
	}
	token := r.Header.Get("X-Auth-Token")
	return subtle.ConstantTimeCompare([]byte(token), []byte(s.cfg.AuthToken)) == 1
}

func (s *Server) withAuth(next http.Handler) http.Handler {
	if s.cfg.AuthToken == "" {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Verification itself stays open; only cache administration
		// requires the token.
		if strings.HasPrefix(r.URL.Path, "/api/v1/cache") && !s.authenticated(r) {
			s.writeError(w, r, http.StatusUnauthorized, errors.New("unauthorized"))
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) withRateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.cfg.RateLimit <= 0 {
			next.ServeHTTP(w, r)
			return
		}

		clientIP := clientAddr(r)
		limiter := s.limiters.getLimiter(clientIP, s.cfg.RateLimit, s.cfg.RateBurst)
		if !limiter.Allow() {
			if s.cfg.Logger != nil {
				s.requestLogger(r).Warn("rate_limit_exceeded", zap.String("client_ip", clientIP))
			}
			s.writeError(w, r, http.StatusTooManyRequests, errors.New("rate limit exceeded"))
			return
		}

		next.ServeHTTP(w, r)
	})
}

// clientAddr extracts the client IP, honoring the first hop of
// X-Forwarded-For for proxied requests.
func clientAddr(r *http.Request) string {
	clientIP := r.RemoteAddr
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		if idx := strings.Index(forwarded, ","); idx > 0 {
			clientIP = strings.TrimSpace(forwarded[:idx])
		} else {
			clientIP = strings.TrimSpace(forwarded)
		}
	}
	if idx := strings.LastIndex(clientIP, ":"); idx > 0 {
		clientIP = clientIP[:idx]
	}
	return clientIP
}

func (s *Server) withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")

		allowOrigin := "*"
		if len(s.cfg.CORSOrigins) > 0 {
			allowOrigin = ""
			for _, allowed := range s.cfg.CORSOrigins {
				if allowed == origin {
					allowOrigin = origin
					break
				}
			}
		}

		if allowOrigin != "" {
			w.Header().Set("Access-Control-Allow-Origin", allowOrigin)
			w.Header().Set("Access-Control-Allow-Methods", "GET, DELETE, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, X-Auth-Token")
			w.Header().Set("Access-Control-Max-Age", "3600")
		}

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		lrw := &loggingResponseWriter{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(lrw, r)

		if s.cfg.Logger != nil {
			s.cfg.Logger.Info("http_request",
				zap.String("request_id", middleware.GetRequestID(r.Context())),
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.String("remote_addr", r.RemoteAddr),
				zap.Int("status", lrw.statusCode),
				zap.Duration("duration", time.Since(start)),
				zap.Int64("bytes", lrw.bytesWritten),
			)
		}
	})
}

// loggingResponseWriter captures status code and bytes written.
type loggingResponseWriter struct {
	http.ResponseWriter
	statusCode   int
	bytesWritten int64
}

func (lrw *loggingResponseWriter) WriteHeader(code int) {
	lrw.statusCode = code
	lrw.ResponseWriter.WriteHeader(code)
}

func (lrw *loggingResponseWriter) Write(b []byte) (int, error) {
	n, err := lrw.ResponseWriter.Write(b)
	lrw.bytesWritten += int64(n)
	return n, err
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, status int, err error) {
	msg := err.Error()
	if status >= 500 {
		if s.cfg.Logger != nil {
			s.requestLogger(r).Error("internal_server_error",
				zap.Error(err),
				zap.Int("status", status),
			)
		}
		msg = "internal server error"
	}
	writeJSON(w, status, map[string]string{"error": msg})
}

func (s *Server) requestLogger(r *http.Request) *zap.Logger {
	if s.cfg.Logger == nil {
		return zap.NewNop()
	}
	return s.cfg.Logger.With(
		zap.String("request_id", middleware.GetRequestID(r.Context())),
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
	)
}

func (s *Server) methodNotAllowed(w http.ResponseWriter, r *http.Request) {
	s.writeError(w, r, http.StatusMethodNotAllowed, errors.New("method not allowed"))
}

func queryBool(v string) bool {
	return v == "1" || strings.EqualFold(v, "true")
}

// rateLimiterMap manages per-IP rate limiters with automatic cleanup.
type rateLimiterMap struct {
	mu       sync.RWMutex
	limiters map[string]*ipLimiter
	done     chan struct{}
	stopOnce sync.Once
}

type ipLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

func newRateLimiterMap() *rateLimiterMap {
	m := &rateLimiterMap{
		limiters: make(map[string]*ipLimiter),
		done:     make(chan struct{}),
	}
	go m.cleanupLoop()
	return m
}

func (m *rateLimiterMap) stop() {
	m.stopOnce.Do(func() { close(m.done) })
}

func (m *rateLimiterMap) getLimiter(ip string, rps, burst int) *rate.Limiter {
	m.mu.Lock()
	defer m.mu.Unlock()

	limiter, exists := m.limiters[ip]
	if !exists {
		limiter = &ipLimiter{
			limiter:  rate.NewLimiter(rate.Limit(rps), burst),
			lastSeen: time.Now(),
		}
		m.limiters[ip] = limiter
	} else {
		limiter.lastSeen = time.Now()
	}

	return limiter.limiter
}

// cleanupLoop removes limiters idle for more than 5 minutes until the
// map is stopped.
func (m *rateLimiterMap) cleanupLoop() {
	ticker := time.NewTicker(1 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-m.done:
			return
		case <-ticker.C:
			m.removeIdle(5 * time.Minute)
		}
	}
}

func (m *rateLimiterMap) removeIdle(idle time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for ip, limiter := range m.limiters {
		if time.Since(limiter.lastSeen) > idle {
			delete(m.limiters, ip)
		}
	}
}
