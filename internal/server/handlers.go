package server

import (
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"strings"

	"github.com/hnrobert/equidash/internal/analytics"
	"github.com/hnrobert/equidash/internal/auth"
	"github.com/hnrobert/equidash/internal/credstore"
	"github.com/hnrobert/equidash/internal/logger"
)

func remoteIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err == nil && host != "" {
		return host
	}
	return r.RemoteAddr
}

func (a *App) loginData(r *http.Request) *ViewData {
	data := a.baseData(r)
	data.HideNav = true
	data.Disclosure = a.disclosure
	return data
}

func (a *App) handleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodGet || r.Method == http.MethodHead {
		if _, ok := sessionFrom(r); ok {
			http.Redirect(w, r, "/", http.StatusSeeOther)
			return
		}
		a.renderPage(w, "login", a.loginData(r))
		return
	}
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	_ = r.ParseForm()
	email := r.Form.Get("email")
	password := r.Form.Get("password")
	agreed := r.Form.Get("agree") != ""

	data := a.loginData(r)
	data.Flash, data.FlashKind = "", "err"
	data.EmailInput = strings.TrimSpace(email)
	data.Agreed = agreed

	if !agreed {
		data.Flash = "Please accept the disclosure to continue."
		a.renderStatus(w, http.StatusBadRequest, "login", data)
		return
	}
	if strings.TrimSpace(email) == "" || strings.TrimSpace(password) == "" {
		data.Flash = "Email and password are required."
		a.renderStatus(w, http.StatusBadRequest, "login", data)
		return
	}

	res, err := a.auth.Authenticate(email, password, auth.NewSessionID(), a.now())
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			logger.Info("Failed login attempt for %s from %s", data.EmailInput, remoteIP(r))
			data.Flash = auth.HumanAuthError(err)
			a.renderStatus(w, http.StatusUnauthorized, "login", data)
			return
		}
		logger.Error("Login for %s from %s aborted: %v", data.EmailInput, remoteIP(r), err)
		a.renderError(w, http.StatusInternalServerError, auth.HumanAuthError(err))
		return
	}
	tok, err := auth.SignSession(a.secret, res.Session(), a.cfg.SessionTTL)
	if err != nil {
		data.Flash = "Failed to create session."
		a.renderStatus(w, http.StatusInternalServerError, "login", data)
		return
	}
	logger.Info("User %s (%s) logged in from %s", res.Email, res.Role, remoteIP(r))
	a.issueCookie(w, tok)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (a *App) handleLogout(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	s, _ := sessionFrom(r)
	logger.Info("User %s logged out from %s", s.Email, remoteIP(r))
	a.clearCookie(w)
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

func (a *App) handleDashboard(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	a.renderPage(w, "dashboard", a.baseData(r))
}

func (a *App) handleAdminAnalytics(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	data := a.baseData(r)
	sum, err := analytics.Load(a.store, a.cfg.Analytics)
	if err != nil {
		logger.Error("Analytics unavailable: %v", err)
		data.Flash = auth.HumanAuthError(err)
		data.FlashKind = "err"
		a.renderStatus(w, http.StatusInternalServerError, "admin_analytics", data)
		return
	}
	data.Summary = sum
	a.renderPage(w, "admin_analytics", data)
}

func (a *App) handleAPIAdminAnalytics(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	sum, err := analytics.Load(a.store, a.cfg.Analytics)
	if err != nil {
		logger.Error("Analytics unavailable: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, sum)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Warn("writeJSON: %v", err)
	}
}

func (a *App) baseData(r *http.Request) *ViewData {
	data := &ViewData{Title: a.cfg.Title}
	if s, ok := sessionFrom(r); ok {
		data.Authed = true
		data.Email = s.Email
		data.Admin = s.Admin()
		data.LoginTime = s.LoginTime.In(a.now().Location()).Format(credstore.TimeLayout)
	}
	if msg, ok := notices[r.URL.Query().Get("notice")]; ok {
		data.Flash = msg
		data.FlashKind = "err"
	}
	if msg, ok := notices[authNoticeFrom(r)]; ok {
		data.Flash = msg
		data.FlashKind = "err"
	}
	return data
}

func (a *App) renderError(w http.ResponseWriter, status int, msg string) {
	a.renderStatus(w, status, "error", &ViewData{Title: a.cfg.Title, HideNav: true, Flash: msg, FlashKind: "err"})
}

func (a *App) renderPage(w http.ResponseWriter, page string, data *ViewData) {
	a.renderStatus(w, http.StatusOK, page, data)
}

func (a *App) renderStatus(w http.ResponseWriter, status int, page string, data *ViewData) {
	t := a.pages[page]
	if t == nil {
		http.Error(w, "template not found", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := t.ExecuteTemplate(w, "layout", data); err != nil {
		logger.Error("renderPage template execution failed for %s: %v", page, err)
	}
}
