package http

import (
	"net/http"
	"time"

	"lexdash/internal/auth"
	"lexdash/internal/core"
	applog "lexdash/internal/log"
	"lexdash/internal/services"
)

const sessionMaxAge = 30 * 24 * time.Hour

func (s *Server) handleDashboardPage(w http.ResponseWriter, r *http.Request) {
	v := s.practice.Dashboard(r.Context(), currentUser(r))
	s.render(w, r, http.StatusOK, "dashboard", page{Title: "Painel", Active: "dashboard", Warnings: v.Warnings, View: v})
}

func (s *Server) handleBillingPage(w http.ResponseWriter, r *http.Request) {
	v := s.practice.Billing(r.Context(), currentUser(r), invoiceFilter(r.URL.Query()))
	s.render(w, r, http.StatusOK, "billing", page{Title: "Faturamento", Active: "billing", Warnings: v.Warnings, View: v})
}

func (s *Server) handleCalendarPage(w http.ResponseWriter, r *http.Request) {
	year, month := ParseMonthParams(r.URL.Query(), s.practice.Today())
	v := s.practice.Calendar(r.Context(), currentUser(r), year, month)

	prev := time.Date(year, month-1, 1, 0, 0, 0, 0, time.UTC)
	next := time.Date(year, month+1, 1, 0, 0, 0, 0, time.UTC)
	s.render(w, r, http.StatusOK, "calendar", page{
		Title:    "Calendário",
		Active:   "calendar",
		Warnings: v.Warnings,
		View: struct {
			Calendar   services.CalendarView
			Prev, Next time.Time
		}{v, prev, next},
	})
}

func (s *Server) handleClientsPage(w http.ResponseWriter, r *http.Request) {
	v := s.practice.ClientsPage(r.Context(), currentUser(r), clientFilter(r.URL.Query()))
	s.render(w, r, http.StatusOK, "clients", page{Title: "Clientes", Active: "clients", Warnings: v.Warnings, View: v})
}

func (s *Server) handleProcessesPage(w http.ResponseWriter, r *http.Request) {
	v := s.practice.ProcessesPage(r.Context(), currentUser(r), processFilter(r.URL.Query()))
	s.render(w, r, http.StatusOK, "processes", page{Title: "Processos", Active: "processes", Warnings: v.Warnings, View: v})
}

func (s *Server) handleServicesPage(w http.ResponseWriter, r *http.Request) {
	v := s.practice.ServicesPage(r.Context(), currentUser(r), serviceFilter(r.URL.Query()))
	s.render(w, r, http.StatusOK, "services", page{Title: "Serviços", Active: "services", Warnings: v.Warnings, View: v})
}

func (s *Server) handleSettingsPage(w http.ResponseWriter, r *http.Request) {
	data := page{Title: "Configurações", Active: "settings"}
	profile, err := s.practice.LoadProfile(r.Context(), currentUser(r))
	if err != nil {
		applog.FromContext(r.Context()).ErrorContext(r.Context(), "Profile load failed", applog.FieldError, err)
		profile = core.Profile{Settings: core.DefaultSettings()}
		data.Warnings = []string{"Não foi possível carregar o perfil."}
	}
	data.View = profile
	s.render(w, r, http.StatusOK, "settings", data)
}

func (s *Server) handleLoginPage(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, http.StatusOK, "login", page{Title: "Entrar"})
}

// handleLogin exchanges an API token for the session cookie.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		s.render(w, r, http.StatusBadRequest, "login", page{Title: "Entrar", Error: "Formato da requisição inválido."})
		return
	}
	token := sanitizeInput(r.PostForm.Get("token"))

	userID, err := s.tokens.ResolveUser(r.Context(), token)
	if err != nil || userID == "" {
		applog.FromContext(r.Context()).WithComponent(applog.ComponentAuth).
			WarnContext(r.Context(), "Login rejected", applog.FieldClientIP, s.clientIP.ClientIP(r))
		s.render(w, r, http.StatusUnauthorized, "login", page{Title: "Entrar", Error: "Token inválido ou expirado."})
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     auth.CookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(sessionMaxAge / time.Second),
		HttpOnly: true,
		Secure:   s.secureCookies || r.TLS != nil,
		SameSite: http.SameSiteLaxMode,
	})
	applog.FromContext(r.Context()).WithComponent(applog.ComponentAuth).
		InfoContext(r.Context(), "Login succeeded", applog.FieldUserID, userID)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     auth.CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   s.secureCookies || r.TLS != nil,
		SameSite: http.SameSiteLaxMode,
	})
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}
