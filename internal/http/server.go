package http

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"hisab/internal/cache"
	"hisab/internal/core"
	"hisab/internal/feed"
	applog "hisab/internal/log"
	"hisab/internal/services"
	"hisab/internal/ws"
)

// Server exposes the ledger over a JSON API plus a websocket stream
// that mirrors the snapshot feed to the presentation layer.
type Server struct {
	http.Server

	svc *services.LedgerService
	hub *ws.Hub

	upgrader    websocket.Upgrader
	rateLimiter *rateLimiter

	// Month views are derived data; cache them per YYYY-MM and drop
	// everything whenever the collection changes.
	monthCache   *cache.LRUCache[core.MonthView]
	cacheManager *cache.Manager

	cancelFeed   func()
	shutdownOnce sync.Once
}

// NewServer configures routes and wires the snapshot feed into the
// cache and the websocket hub.
func NewServer(addr string, svc *services.LedgerService, f *feed.Feed, hub *ws.Hub) *Server {
	mux := http.NewServeMux()

	s := &Server{
		Server: http.Server{
			Addr:    addr,
			Handler: mux,
		},
		svc: svc,
		hub: hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
		rateLimiter:  newRateLimiter(),
		monthCache:   cache.NewLRUCache[core.MonthView](100, 5*time.Minute),
		cacheManager: cache.NewManager(),
	}

	s.cacheManager.Register(s.monthCache)
	s.cacheManager.StartCleanup(10 * time.Minute)

	if f != nil {
		s.cancelFeed = f.Subscribe(s.onSnapshot, s.onFeedError)
	}

	mux.HandleFunc("/healthz", handleHealth)
	mux.HandleFunc("/readyz", handleReady)
	mux.HandleFunc("/transactions", s.withMiddleware(s.handleTransactions))
	mux.HandleFunc("/transactions/", s.withMiddleware(s.handleTransactionByID))
	mux.HandleFunc("/stats", s.withMiddleware(s.handleStats))
	mux.HandleFunc("/months/", s.withMiddleware(s.handleMonthView))
	mux.HandleFunc("/ws", s.handleWebsocket)

	return s
}

// onSnapshot reacts to every collection change: cached month views are
// stale, and connected websocket clients get the fresh state pushed.
func (s *Server) onSnapshot(txs []core.Transaction) {
	s.monthCache.Clear()

	if s.hub == nil {
		return
	}
	s.hub.Broadcast(snapshotFrame{
		Type:         "snapshot",
		Stats:        toStatsJSON(core.GlobalStats(txs)),
		Transactions: toTransactionListJSON(core.SortChronological(txs)),
	})
}

func (s *Server) onFeedError(err error) {
	slog.Error("Snapshot feed failed", "error", err)
	if s.hub != nil {
		s.hub.Broadcast(errorFrame{Type: "error", Message: "snapshot feed failed"})
	}
}

// Shutdown stops the cache sweeper, releases the feed subscription and
// then shuts down the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error

	s.shutdownOnce.Do(func() {
		s.cacheManager.Stop()
		if s.cancelFeed != nil {
			s.cancelFeed()
		}
		if s.rateLimiter != nil {
			s.rateLimiter.stop()
		}
		shutdownErr = s.Server.Shutdown(ctx)
	})

	return shutdownErr
}

// withMiddleware adds request logging, rate limiting of writes,
// security headers and a request id.
func (s *Server) withMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		clientIP := r.Header.Get("X-Forwarded-For")
		if clientIP == "" {
			clientIP = r.Header.Get("X-Real-IP")
		}
		if clientIP == "" {
			clientIP = r.RemoteAddr
		}

		requestID := generateRequestID()
		ctx := context.WithValue(r.Context(), requestIDKey{}, requestID)
		r = r.WithContext(ctx)

		slog.InfoContext(ctx, "Request started",
			applog.FieldRequestID, requestID,
			applog.FieldMethod, r.Method,
			applog.FieldPath, r.URL.Path,
			applog.FieldClientIP, clientIP)

		if isWrite(r.Method) && !s.rateLimiter.allow(clientIP) {
			slog.WarnContext(ctx, "Rate limit exceeded",
				applog.FieldClientIP, clientIP,
				applog.FieldMethod, r.Method,
				applog.FieldPath, r.URL.Path)
			w.Header().Set("Retry-After", "60")
			writeError(w, http.StatusTooManyRequests, "rate limit exceeded, try again later")
			return
		}

		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next(rw, r)

		duration := time.Since(start)
		slog.InfoContext(ctx, "Request completed",
			applog.FieldRequestID, requestID,
			applog.FieldMethod, r.Method,
			applog.FieldPath, r.URL.Path,
			applog.FieldStatusCode, rw.statusCode,
			applog.FieldDuration, duration.Milliseconds())
	}
}

type requestIDKey struct{}

func isWrite(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodDelete:
		return true
	}
	return false
}

// responseWriter wraps http.ResponseWriter to capture the status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// generateRequestID creates a unique request ID for tracing
func generateRequestID() string {
	bytes := make([]byte, 8)
	if _, err := rand.Read(bytes); err != nil {
		return fmt.Sprintf("req_%d", time.Now().UnixNano())
	}
	return "req_" + hex.EncodeToString(bytes)
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func handleReady(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}
