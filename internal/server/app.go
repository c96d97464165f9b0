package server

import (
	"embed"
	"encoding/base64"
	"fmt"
	"html/template"
	"net/http"
	"strings"
	"time"

	"github.com/hnrobert/equidash/internal/analytics"
	"github.com/hnrobert/equidash/internal/auth"
	"github.com/hnrobert/equidash/internal/config"
	"github.com/hnrobert/equidash/internal/credstore"
	"github.com/hnrobert/equidash/internal/logger"
)

//go:embed templates/*.html
var templatesFS embed.FS

type App struct {
	cfg        config.Config
	secret     []byte
	pages      map[string]*template.Template
	store      *credstore.Store
	auth       *auth.Authenticator
	disclosure template.HTML
	now        func() time.Time
}

type ViewData struct {
	Title     string
	Authed    bool
	Email     string
	Admin     bool
	HideNav   bool
	Flash     string
	FlashKind string // ok|err|""

	// login
	Disclosure template.HTML
	EmailInput string
	Agreed     bool

	// dashboard
	LoginTime string

	// admin
	Summary analytics.Summary
}

func newApp(cfg config.Config) (*App, error) {
	secretText := cfg.JWTSecret
	if secretText == "" {
		// Generate ephemeral secret if not configured.
		s, err := auth.NewRandomSecretB64(32)
		if err != nil {
			return nil, err
		}
		secretText = s
		logger.Warn("no jwt_secret configured; sessions will not survive a restart")
	}
	secretRaw, err := base64.RawURLEncoding.DecodeString(secretText)
	if err != nil {
		// Fallback: accept raw string.
		secretRaw = []byte(secretText)
	}
	if len(secretRaw) < 16 {
		return nil, fmt.Errorf("jwt_secret too short: need at least 16 bytes")
	}

	disclosure, err := RenderMarkdown(cfg.Disclosure)
	if err != nil {
		return nil, fmt.Errorf("render disclosure: %w", err)
	}

	base := template.New("layout.html").Funcs(template.FuncMap{
		"intentClass": func(i analytics.Intent) string { return strings.ToLower(string(i)) },
	})
	pages := map[string]*template.Template{}
	for _, page := range []string{"login", "dashboard", "admin_analytics", "error"} {
		t, err := base.Clone()
		if err != nil {
			return nil, err
		}
		// Each page file overrides the title/content blocks of the layout.
		if _, err := t.ParseFS(templatesFS, "templates/layout.html", "templates/"+page+".html"); err != nil {
			return nil, err
		}
		pages[page] = t
	}

	store := credstore.NewStore(cfg.UsersFile)
	if _, err := store.Load(); err != nil {
		// Not fatal at startup: the file may be provisioned later. Every
		// request re-reads it and fails loudly until it is valid.
		logger.Error("credential store %s: %v", cfg.UsersFile, err)
	}

	return &App{
		cfg:        cfg,
		secret:     secretRaw,
		pages:      pages,
		store:      store,
		auth:       auth.New(store),
		disclosure: disclosure,
		now:        time.Now,
	}, nil
}

func (a *App) routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/login", a.handleLogin)
	mux.HandleFunc("/logout", a.requireAuth(a.handleLogout))

	mux.HandleFunc("/", a.requireAuth(a.handleDashboard))
	mux.HandleFunc("/admin/analytics", a.requireAdmin(a.handleAdminAnalytics))
	mux.HandleFunc("/api/admin/analytics", a.requireAdmin(a.handleAPIAdminAnalytics))

	mux.HandleFunc("/api/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("{\"ok\":true}\n"))
	})

	return a.withAuthContext(mux)
}

func (a *App) issueCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     a.cfg.Cookie.Name,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   a.cfg.Cookie.Secure,
		MaxAge:   int(a.cfg.SessionTTL.Seconds()),
	})
}

func (a *App) clearCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     a.cfg.Cookie.Name,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   a.cfg.Cookie.Secure,
		MaxAge:   -1,
	})
}
