package server

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"
	"go.uber.org/zap"

	"rewardledger/internal/ingest"
	"rewardledger/internal/storage"
)

// Config holds the HTTP surface settings.
type Config struct {
	// WebhookSecret is the shared bearer token the webhook source sends.
	WebhookSecret string
	// RateLimit caps webhook requests per client IP per minute. Zero
	// disables the pre-check.
	RateLimit int
}

// Server exposes the ingestion webhook and the ledger read endpoints.
// The store handle is injected; there are no package-level singletons.
type Server struct {
	cfg        Config
	controller *ingest.Controller
	store      storage.Store
	metrics    http.Handler
	logger     *zap.Logger
}

// New builds a Server. metricsHandler may be nil to omit /metrics.
func New(cfg Config, controller *ingest.Controller, store storage.Store, metricsHandler http.Handler, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{
		cfg:        cfg,
		controller: controller,
		store:      store,
		metrics:    metricsHandler,
		logger:     logger,
	}
}

// Routes assembles the chi router.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(s.logRequests)

	r.Get("/healthz", s.handleHealth)
	if s.metrics != nil {
		r.Handle("/metrics", s.metrics)
	}

	r.Group(func(r chi.Router) {
		if s.cfg.RateLimit > 0 {
			r.Use(httprate.LimitByIP(s.cfg.RateLimit, time.Minute))
		}
		r.Post("/webhooks/rewards", s.handleWebhook)
	})

	r.Route("/api/rewards", func(r chi.Router) {
		r.Get("/history", s.handleHistory)
		r.Post("/summary", s.handleSummary)
		r.Get("/export", s.handleExport)
	})

	return r
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Info("http request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("elapsed", time.Since(start)),
			zap.String("request_id", chimiddleware.GetReqID(r.Context())),
		)
	})
}
