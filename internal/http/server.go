// Package http exposes the billing ledger as a JSON API.
package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"rentledger/internal/analysis"
	"rentledger/internal/cache"
	"rentledger/internal/core"
	applog "rentledger/internal/log"
	"rentledger/internal/services"
)

type Server struct {
	http.Server
	svc         *services.BillingService
	analyzer    analysis.Analyzer
	rateLimiter *rateLimiter
	metrics     *securityMetrics
	httpLog     *applog.HTTPLogger

	// Period summaries and AI commentary are cheap to recompute but hit
	// on every dashboard refresh, so both get a small TTL cache.
	summaryCache  *cache.LRUCache[core.PeriodSummary]
	analysisCache *cache.LRUCache[string]

	cacheManager *cache.Manager
	shutdownOnce sync.Once
}

// NewServer configures routes and middleware, returning a ready-to-run
// http.Server.
func NewServer(addr string, svc *services.BillingService, analyzer analysis.Analyzer) *Server {
	mux := http.NewServeMux()
	logger := applog.New(applog.DefaultConfig()).WithComponent(applog.ComponentHTTP)

	s := &Server{
		Server: http.Server{
			Addr:    addr,
			Handler: applog.Middleware(logger)(mux),
		},
		svc:           svc,
		analyzer:      analyzer,
		httpLog:       applog.NewHTTPLogger(logger),
		rateLimiter:   newRateLimiter(),
		metrics:       &securityMetrics{},
		summaryCache:  cache.NewLRUCache[core.PeriodSummary](100, 5*time.Minute),
		analysisCache: cache.NewLRUCache[string](20, 10*time.Minute),
		cacheManager:  cache.NewManager(),
	}
	s.cacheManager.Register(s.summaryCache)
	s.cacheManager.Register(s.analysisCache)
	s.cacheManager.StartCleanup(10 * time.Minute)

	mux.HandleFunc("/healthz", handleHealth)
	mux.HandleFunc("/readyz", handleReady)

	mux.HandleFunc("/auth/admin", s.withSecurityHeaders(s.handleVerifyAdminPIN))
	mux.HandleFunc("/auth/room", s.withSecurityHeaders(s.handleVerifyRoomPIN))

	mux.HandleFunc("/rooms", s.withSecurityHeaders(s.handleRooms))
	mux.HandleFunc("/settings", s.withSecurityHeaders(s.handleSettings))

	mux.HandleFunc("/periods/open", s.withSecurityHeaders(s.handleOpenPeriod))
	mux.HandleFunc("/readings", s.withSecurityHeaders(s.handleReadings))
	mux.HandleFunc("/readings/meter", s.withSecurityHeaders(s.handleSetMeter))
	mux.HandleFunc("/readings/fees", s.withSecurityHeaders(s.handleSetFees))
	mux.HandleFunc("/readings/paid", s.withSecurityHeaders(s.handleSetPaid))
	mux.HandleFunc("/readings/receipt", s.withSecurityHeaders(s.handleSetReceipt))

	mux.HandleFunc("/summary", s.withSecurityHeaders(s.handleSummary))
	mux.HandleFunc("/export/csv", s.withSecurityHeaders(s.handleExportCSV))
	mux.HandleFunc("/analyze", s.withSecurityHeaders(s.handleAnalyze))

	return s
}

// Shutdown gracefully shuts down the server and cleanup routines.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error

	s.shutdownOnce.Do(func() {
		if s.cacheManager != nil {
			s.cacheManager.Stop()
		}
		if s.rateLimiter != nil {
			s.rateLimiter.stop()
		}
		shutdownErr = s.Server.Shutdown(ctx)
	})

	return shutdownErr
}

// withSecurityHeaders adds security headers, rate limiting, and request
// logging to responses.
func (s *Server) withSecurityHeaders(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		clientIP := extractClientIP(r)
		requestID := generateRequestID()

		ctx := context.WithValue(r.Context(), requestIDKey, requestID)
		reqLog := applog.FromContext(ctx).With(applog.FieldRequestID, requestID)
		ctx = context.WithValue(ctx, applog.LoggerContextKey, reqLog)
		r = r.WithContext(ctx)

		s.httpLog.LogStart(ctx, r, clientIP)

		if detectSuspiciousRequest(r, s.metrics) {
			reqLog.WarnContext(ctx, "Suspicious request pattern",
				"client_ip", clientIP, "method", r.Method, "url", r.URL.Path)
		}

		if r.Method == http.MethodPost && !s.rateLimiter.allow(clientIP, s.metrics) {
			reqLog.WarnContext(ctx, "Rate limit exceeded", "client_ip", clientIP, "method", r.Method, "url", r.URL.Path)
			w.Header().Set("Retry-After", "60")
			http.Error(w, "Rate limit exceeded. Please try again later.", http.StatusTooManyRequests)
			return
		}

		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Content-Security-Policy", "default-src 'none'")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next(rw, r)

		s.httpLog.LogEnd(ctx, r, rw.statusCode, time.Since(start).Milliseconds(), clientIP)
	}
}

// responseWriter wraps http.ResponseWriter to capture the status code.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func handleReady(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}
