// Package web provides the HTTP server and handlers for the table forms.
package web

import (
	"context"
	"embed"
	"encoding/json"
	"io/fs"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/JonMunkholm/tableform/internal/config"
	"github.com/JonMunkholm/tableform/internal/core"
	mw "github.com/JonMunkholm/tableform/internal/web/middleware"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

//go:embed static
var staticFiles embed.FS

// Server is the HTTP server for the table forms.
type Server struct {
	service *core.Service
	cfg     *config.Config
	router  *chi.Mux
	server  *http.Server
	limiter *rateLimiter
}

// NewServer creates a new Server instance.
func NewServer(service *core.Service, cfg *config.Config) *Server {
	s := &Server{
		service: service,
		cfg:     cfg,
		router:  chi.NewRouter(),
	}
	if cfg.Rate.Enabled {
		s.limiter = newRateLimiter(cfg.Rate.RequestsPerMinute, cfg.Rate.Burst)
	}
	s.setupMiddleware()
	s.setupRoutes()

	s.server = &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      s.router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}
	return s
}

// setupMiddleware configures middleware for all routes.
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(mw.TrustedRealIP(s.cfg.Security.TrustedProxies))
	s.router.Use(mw.Logger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Compress(5))
	if t := s.cfg.Server.RequestTimeout; t > 0 {
		s.router.Use(middleware.Timeout(t))
	}

	// Security hardening
	s.router.Use(securityHeaders(s.cfg.Security.EnableCSP, s.cfg.Server.HTMXScriptURL))
	s.router.Use(requestMeta)
}

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() {
	staticFS, err := fs.Sub(staticFiles, "static")
	if err != nil {
		panic(err)
	}
	s.router.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.FS(staticFS))))

	// Pages
	s.router.Get("/", s.handleIndex)
	s.router.Get("/healthz", s.handleHealth)

	s.router.Route("/forms/{form}", func(r chi.Router) {
		r.Get("/", s.handleOpenForm)
		r.Get("/s/{session}", s.handleSessionPage)

		// Every session action posts the whole form.
		r.Group(func(r chi.Router) {
			if s.limiter != nil {
				r.Use(s.limiter.middleware)
			}
			r.Post("/s/{session}/rows", s.sessionAction(s.addRow))
			r.Post("/s/{session}/rows/{row}/edit", s.sessionAction(s.editRow))
			r.Post("/s/{session}/rows/{row}/cancel", s.sessionAction(s.cancelRow))
			r.Post("/s/{session}/rows/{row}/delete", s.sessionAction(s.deleteRow))
			r.Post("/s/{session}/rows/{row}/toggle/{key}", s.sessionAction(s.toggleValue))
			r.Post("/s/{session}/rows/{row}/input/{key}", s.sessionAction(s.setValue))
			r.Post("/s/{session}/submit", s.sessionAction(s.submit))
			r.Post("/s/{session}/close", s.handleCloseSession)
		})
	})

	// API routes
	s.router.Route("/api", func(r chi.Router) {
		r.Use(mw.APIKeyAuth(&s.cfg.Security))
		if s.limiter != nil {
			r.Use(s.limiter.middleware)
		}

		r.Get("/forms", s.handleListForms)
		r.Get("/forms/"+core.DistriVersionsKey+"/versions", s.handleVersions)
		r.Get("/forms/{form}", s.handleGetForm)
		r.Get("/forms/{form}/value", s.handleStoredValue)
		r.Get("/forms/{form}/s/{session}", s.handleSessionJSON)

		r.Get("/audit", s.handleAuditLog)
	})
}

// Start begins listening for HTTP requests.
func (s *Server) Start() error {
	slog.Info("starting server", "addr", s.server.Addr)
	return s.server.ListenAndServe()
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.limiter != nil {
		s.limiter.Stop()
	}
	return s.server.Shutdown(ctx)
}

// Close stops the background work of a server that was never started.
func (s *Server) Close() {
	if s.limiter != nil {
		s.limiter.Stop()
	}
}

// Router returns the underlying chi router for testing.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// securityHeaders adds security headers to all responses. An htmx script
// served from another origin is added to script-src.
func securityHeaders(enableCSP bool, htmxSrc string) func(http.Handler) http.Handler {
	scriptSrc := "'self'"
	if u, err := url.Parse(htmxSrc); err == nil && u.Scheme != "" && u.Host != "" {
		scriptSrc += " " + u.Scheme + "://" + u.Host
	}
	csp := "default-src 'self'; script-src " + scriptSrc + "; style-src 'self' 'unsafe-inline'; img-src 'self' data:; form-action 'self'; frame-ancestors 'none'"

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("X-Content-Type-Options", "nosniff")
			w.Header().Set("X-Frame-Options", "DENY")
			w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
			if enableCSP {
				w.Header().Set("Content-Security-Policy", csp)
			}
			next.ServeHTTP(w, r)
		})
	}
}

// handleHealth reports whether the storage backend is reachable.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	status := http.StatusOK
	body := map[string]any{
		"status":       "ok",
		"sessions":     s.service.SessionCount(),
		"submits":      s.service.ActiveSubmits(),
		"submit_slots": s.service.SubmitSlots(),
	}
	if err := s.service.Ping(ctx); err != nil {
		status = http.StatusServiceUnavailable
		body["status"] = "unavailable"
		body["error"] = core.MapError(err).Message
	}
	writeJSONStatus(w, status, body)
}

// writeJSON encodes v as JSON and writes it to w.
// Logs encoding errors since headers are already sent.
func writeJSON(w http.ResponseWriter, v any) {
	writeJSONStatus(w, http.StatusOK, v)
}

func writeJSONStatus(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("json encode error", "error", err)
	}
}
