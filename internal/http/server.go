package http

import (
	"context"
	"errors"
	"html/template"
	"io/fs"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/goccy/go-json"

	"lexdash/internal/auth"
	applog "lexdash/internal/log"
	"lexdash/internal/middleware/ratelimit"
	"lexdash/internal/middleware/security"
	"lexdash/internal/services"
	appweb "lexdash/web"
)

// Config wires a Server.
type Config struct {
	Addr     string
	Practice *services.PracticeService
	Tokens   auth.UserResolver
	Logger   *applog.Logger

	// WriteRateLimit caps write requests per user per minute.
	WriteRateLimit int
	// TrustedProxies are extra CIDRs whose forwarding headers are trusted.
	TrustedProxies []string
	// SecureCookies marks the session cookie Secure.
	SecureCookies bool
}

type Server struct {
	http.Server
	practice *services.PracticeService
	tokens   auth.UserResolver
	logger   *applog.Logger
	pages    map[string]*template.Template
	limiter  *ratelimit.Limiter
	clientIP *security.ClientIPResolver

	secureCookies bool
	shutdownOnce  sync.Once
}

// NewServer parses the embedded templates and configures the routes.
func NewServer(cfg Config) (*Server, error) {
	if cfg.Practice == nil || cfg.Tokens == nil {
		return nil, errors.New("http: practice service and token resolver are required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = applog.Default(applog.ComponentHTTP)
	}

	pages, err := parsePages(appweb.TemplatesFS)
	if err != nil {
		return nil, err
	}

	clientIP, err := security.NewClientIPResolver(cfg.TrustedProxies...)
	if err != nil {
		return nil, err
	}

	s := &Server{
		practice:      cfg.Practice,
		tokens:        cfg.Tokens,
		logger:        logger.WithComponent(applog.ComponentHTTP),
		pages:         pages,
		limiter:       ratelimit.NewLimiter(ratelimit.Config{RequestsPerMinute: cfg.WriteRateLimit}),
		clientIP:      clientIP,
		secureCookies: cfg.SecureCookies,
	}
	s.Server = http.Server{
		Addr:              cfg.Addr,
		Handler:           s.routes(logger),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	return s, nil
}

func (s *Server) routes(logger *applog.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(applog.Middleware(logger))
	r.Use(applog.RequestIDMiddleware(func(r *http.Request) string {
		return middleware.GetReqID(r.Context())
	}))
	r.Use(applog.RequestLogger(s.clientIP.ClientIP))
	r.Use(middleware.Recoverer)
	r.Use(security.NewHeadersMiddleware(security.DefaultHeadersConfig()).Middleware)

	r.Get("/healthz", handleHealth)
	r.Get("/readyz", s.handleReady)

	if sub, err := fs.Sub(appweb.StaticFS, "static"); err == nil {
		static := http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
		r.With(security.StaticAssetMiddleware(3600)).Handle("/static/*", static)
	} else {
		s.logger.Warn("Failed to mount embedded static FS", applog.FieldError, err)
	}

	byIP := func(r *http.Request) string { return "ip:" + s.clientIP.ClientIP(r) }
	r.Get("/login", s.handleLoginPage)
	r.With(s.limiter.Middleware(byIP, s.onRateLimit)).Post("/login", s.handleLogin)
	r.Post("/logout", s.handleLogout)

	r.Group(func(r chi.Router) {
		r.Use(auth.Middleware(s.tokens, http.HandlerFunc(redirectToLogin)))
		r.Use(security.NoStore)

		r.Get("/", s.handleDashboardPage)
		r.Get("/billing", s.handleBillingPage)
		r.Get("/calendar", s.handleCalendarPage)
		r.Get("/clients", s.handleClientsPage)
		r.Get("/processes", s.handleProcessesPage)
		r.Get("/services", s.handleServicesPage)
		r.Get("/settings", s.handleSettingsPage)
	})

	r.Route("/api", func(r chi.Router) {
		r.Use(auth.Middleware(s.tokens, http.HandlerFunc(apiUnauthorized)))
		r.Use(security.NoStore)
		r.Use(s.limiter.Middleware(ratelimit.WritesOnly(currentUser), s.onRateLimit))

		r.Get("/dashboard", s.apiDashboard)
		r.Get("/billing", s.apiBilling)
		r.Get("/calendar", s.apiCalendar)
		r.Get("/upcoming", s.apiUpcoming)
		r.Get("/profile", s.apiGetProfile)
		r.Put("/profile", s.apiSaveProfile)

		r.Route("/clients", func(r chi.Router) {
			r.Get("/", s.apiListClients)
			r.Post("/", s.apiCreateClient)
			r.Get("/{id}", s.apiGetClient)
			r.Put("/{id}", s.apiUpdateClient)
			r.Delete("/{id}", s.apiDeleteClient)
		})
		r.Route("/processes", func(r chi.Router) {
			r.Get("/", s.apiListProcesses)
			r.Post("/", s.apiCreateProcess)
			r.Get("/{id}", s.apiGetProcess)
			r.Put("/{id}", s.apiUpdateProcess)
			r.Delete("/{id}", s.apiDeleteProcess)
			r.Post("/{id}/conclude", s.apiConcludeProcess)
		})
		r.Route("/services", func(r chi.Router) {
			r.Get("/", s.apiListServices)
			r.Post("/", s.apiCreateService)
			r.Get("/{id}", s.apiGetService)
			r.Put("/{id}", s.apiUpdateService)
			r.Delete("/{id}", s.apiDeleteService)
		})
		r.Route("/invoices", func(r chi.Router) {
			r.Get("/", s.apiListInvoices)
			r.Post("/", s.apiCreateInvoice)
			r.Get("/{id}", s.apiGetInvoice)
			r.Put("/{id}", s.apiUpdateInvoice)
			r.Delete("/{id}", s.apiDeleteInvoice)
			r.Post("/{id}/pay", s.apiPayInvoice)
			r.Put("/{id}/status", s.apiSetInvoiceStatus)
		})
	})

	return r
}

// Shutdown stops the rate limiter and drains the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.limiter.Stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

// currentUser is the authenticated user; empty outside auth.Middleware.
func currentUser(r *http.Request) string {
	userID, _ := auth.UserFromContext(r.Context())
	return userID
}

func (s *Server) onRateLimit(w http.ResponseWriter, r *http.Request) {
	applog.FromContext(r.Context()).WithComponent(applog.ComponentRateLimit).
		WarnContext(r.Context(), "Rate limit exceeded", applog.FieldPath, r.URL.Path)

	const msg = "Muitas requisições. Tente novamente em instantes."
	if isHTMX(r) {
		ErrorResponse(http.StatusTooManyRequests, msg).Write(w)
		return
	}
	writeJSON(w, http.StatusTooManyRequests, apiError{Error: msg})
}

func apiUnauthorized(w http.ResponseWriter, r *http.Request) {
	if isHTMX(r) {
		NewHTMXResponse().Status(http.StatusUnauthorized).Redirect("/login").Write(w)
		return
	}
	writeJSON(w, http.StatusUnauthorized, apiError{Error: "Não autenticado."})
}

func redirectToLogin(w http.ResponseWriter, r *http.Request) {
	if isHTMX(r) {
		NewHTMXResponse().Status(http.StatusUnauthorized).Redirect("/login").Write(w)
		return
	}
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// handleReady checks that the database answers.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := s.practice.Ping(ctx); err != nil {
		s.logger.WarnContext(r.Context(), "Readiness check failed", applog.FieldError, err)
		http.Error(w, "database unavailable", http.StatusServiceUnavailable)
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	body, err := json.Marshal(v)
	if err != nil {
		http.Error(w, "encode response", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}
