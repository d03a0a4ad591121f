// Package http exposes the ledger engine as a JSON API: windowed ledger
// reports, calendar month buckets, dashboard metrics, CSV export and the
// entry/budget write endpoints.
package http

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"bilancio/internal/cache"
	"bilancio/internal/dashboard"
	"bilancio/internal/ledger"
	"bilancio/internal/log"
	"bilancio/internal/middleware/ratelimit"
	"bilancio/internal/middleware/security"
	"bilancio/internal/services"
	"bilancio/internal/storage"
)

type Server struct {
	httpServer *http.Server
	store      storage.Store
	entries    *services.EntryService
	logger     *log.Logger

	// Read-side memoization keyed by the request query. Any write clears
	// both caches.
	reportCache  *cache.LRUCache[ledger.Report]
	metricsCache *cache.LRUCache[dashboard.Metrics]
	cacheManager *cache.Manager
	limiter      *ratelimit.Limiter
}

type Options struct {
	Port      string
	CacheSize int
	CacheTTL  time.Duration

	// Requests per minute per client, 0 disables rate limiting.
	RateLimit int
}

func NewServer(opts Options, store storage.Store, entries *services.EntryService, logger *log.Logger) *Server {
	s := &Server{
		store:        store,
		entries:      entries,
		logger:       logger.WithComponent(log.ComponentHTTP),
		reportCache:  cache.NewLRUCache[ledger.Report](opts.CacheSize, opts.CacheTTL),
		metricsCache: cache.NewLRUCache[dashboard.Metrics](opts.CacheSize, opts.CacheTTL),
		cacheManager: cache.NewManager(),
	}
	s.cacheManager.Register(s.reportCache)
	s.cacheManager.Register(s.metricsCache)
	s.cacheManager.StartCleanup(opts.CacheTTL)

	mux := http.NewServeMux()
	s.routes(mux)

	var handler http.Handler = mux
	if opts.RateLimit > 0 {
		resolver := security.NewResolver()
		s.limiter = ratelimit.NewLimiter(ratelimit.Config{RequestsPerMinute: opts.RateLimit})
		handler = s.limiter.Middleware(resolver.ClientIP)(handler)
	}
	handler = security.Headers(handler)

	s.httpServer = &http.Server{
		Addr:         ":" + opts.Port,
		Handler:      log.Middleware(logger)(handler),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return s
}

func (s *Server) routes(mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", s.handleHealth)

	mux.HandleFunc("GET /api/ledger", s.handleLedger)
	mux.HandleFunc("GET /api/ledger/series", s.handleLedgerSeries)
	mux.HandleFunc("GET /api/ledger/export.csv", s.handleLedgerExport)
	mux.HandleFunc("GET /api/calendar", s.handleCalendar)
	mux.HandleFunc("GET /api/dashboard", s.handleDashboard)

	mux.HandleFunc("POST /api/entries", s.handleCreateOneOff)
	mux.HandleFunc("PUT /api/entries/{id}", s.handleUpdateOneOff)
	mux.HandleFunc("DELETE /api/entries/{id}", s.handleDeleteEntry)

	mux.HandleFunc("POST /api/templates", s.handleCreateTemplate)
	mux.HandleFunc("PUT /api/templates/{id}", s.handleUpdateTemplate)

	mux.HandleFunc("GET /api/budgets", s.handleListBudgets)
	mux.HandleFunc("POST /api/budgets", s.handleCreateBudget)
	mux.HandleFunc("PUT /api/budgets/{id}", s.handleUpdateBudget)
	mux.HandleFunc("DELETE /api/budgets/{id}", s.handleDeleteBudget)

	mux.HandleFunc("GET /api/settings", s.handleGetSettings)
	mux.HandleFunc("PUT /api/settings", s.handlePutSettings)
}

// Handler returns the root handler, for tests.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

func (s *Server) Start() error {
	s.logger.Info("HTTP server listening", "addr", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("listen and serve: %w", err)
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.cacheManager.Stop()
	if s.limiter != nil {
		s.limiter.Stop()
	}
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) invalidate() {
	s.reportCache.Clear()
	s.metricsCache.Clear()
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
