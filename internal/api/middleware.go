package api

import (
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/signalsfoundry/satti-simulator/internal/logging"
)

// publicPaths are reachable without credentials.
var publicPaths = map[string]bool{
	"/":       true,
	"/health": true,
}

func isPublic(path string) bool {
	return publicPaths[path] || strings.HasPrefix(path, "/static/")
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

func (w *statusWriter) Flush() {
	if f, ok := w.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func (s *Server) logMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx, requestID := logging.EnsureRequestID(r.Context())
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()

		next.ServeHTTP(sw, r.WithContext(ctx))

		s.log.Info(ctx, "http request",
			logging.String("request_id", requestID),
			logging.String("method", r.Method),
			logging.String("path", r.URL.Path),
			logging.Int("status", sw.status),
			logging.Duration("duration", time.Since(start)),
		)
	})
}

func (s *Server) corsMiddleware(next http.Handler) http.Handler {
	allowed := make(map[string]bool, len(s.allowedOrigins))
	for _, origin := range s.allowedOrigins {
		allowed[origin] = true
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if origin != "" && allowed[origin] {
			h := w.Header()
			h.Set("Access-Control-Allow-Origin", origin)
			h.Set("Access-Control-Allow-Methods", "GET, POST, PATCH, DELETE, OPTIONS")
			h.Set("Access-Control-Allow-Headers", "Content-Type, Authorization, x-api-key")
			h.Add("Vary", "Origin")
		}
		// Only a preflight is answered here; a plain OPTIONS request goes
		// through to the application.
		if r.Method == http.MethodOptions && origin != "" && r.Header.Get("Access-Control-Request-Method") != "" {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if isPublic(r.URL.Path) {
			next.ServeHTTP(w, r)
			return
		}
		// Browser download links cannot attach custom headers, so the
		// download routes also accept an api_key query parameter.
		allowQuery := strings.HasPrefix(r.URL.Path, "/downloads/")
		if err := s.auth.Authenticate(r, allowQuery); err != nil {
			writeError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// ipLimiter hands out one token-bucket limiter per client address.
type ipLimiter struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	limit    rate.Limit
	burst    int
}

func newIPLimiter(perMinute int) *ipLimiter {
	return &ipLimiter{
		limiters: make(map[string]*rate.Limiter),
		limit:    rate.Limit(float64(perMinute) / 60.0),
		burst:    perMinute,
	}
}

func (l *ipLimiter) allow(addr string) bool {
	host, _, err := net.SplitHostPort(addr)
	if err != nil {
		host = addr
	}
	l.mu.Lock()
	lim, ok := l.limiters[host]
	if !ok {
		lim = rate.NewLimiter(l.limit, l.burst)
		l.limiters[host] = lim
	}
	l.mu.Unlock()
	return lim.Allow()
}

func (s *Server) rateLimitMiddleware(next http.Handler) http.Handler {
	if s.limiter == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !s.limiter.allow(r.RemoteAddr) {
			writeError(w, http.StatusTooManyRequests, "Too Many Requests")
			return
		}
		next.ServeHTTP(w, r)
	})
}
