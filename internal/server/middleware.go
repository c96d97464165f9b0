package server

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/hnrobert/equidash/internal/auth"
	"github.com/hnrobert/equidash/internal/logger"
)

type ctxKey string

const (
	ctxSession    ctxKey = "session"
	ctxAuthNotice ctxKey = "auth_notice"
)

// Notices travel as short codes so a crafted link cannot put its own text
// on the login page.
const (
	noticeSuperseded = "superseded"
	noticeRevoked    = "revoked"
)

var notices = map[string]string{
	noticeSuperseded: auth.HumanAuthError(auth.ErrSessionSuperseded),
	noticeRevoked:    auth.HumanAuthError(auth.ErrSessionRevoked),
}

func noticeCode(err error) string {
	if errors.Is(err, auth.ErrSessionSuperseded) {
		return noticeSuperseded
	}
	return noticeRevoked
}

// withAuthContext resolves the session cookie and checks it against the
// credential store. Superseded or revoked sessions are dropped; an
// unreadable store stops the request.
func (a *App) withAuthContext(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess, ok := a.readSession(r)
		if !ok {
			next.ServeHTTP(w, r)
			return
		}
		ctx := r.Context()
		err := a.auth.Verify(sess, a.now(), a.cfg.TouchInterval)
		switch {
		case err == nil:
			ctx = context.WithValue(ctx, ctxSession, sess)
		case errors.Is(err, auth.ErrSessionSuperseded), errors.Is(err, auth.ErrSessionRevoked):
			logger.Info("Dropping session %s for %s from %s: %v", sess.SessionID, sess.Email, remoteIP(r), err)
			a.clearCookie(w)
			ctx = context.WithValue(ctx, ctxAuthNotice, noticeCode(err))
		default:
			logger.Error("Session check failed for %s: %v", sess.Email, err)
			a.renderError(w, http.StatusInternalServerError, auth.HumanAuthError(err))
			return
		}
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (a *App) readSession(r *http.Request) (auth.Session, bool) {
	// Prefer cookie.
	if c, err := r.Cookie(a.cfg.Cookie.Name); err == nil && c.Value != "" {
		if s, err := auth.ParseSession(a.secret, c.Value); err == nil {
			return s, true
		}
	}
	// Fallback: Authorization: Bearer <token>
	authz := r.Header.Get("Authorization")
	if authz != "" {
		parts := strings.SplitN(authz, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
			if s, err := auth.ParseSession(a.secret, strings.TrimSpace(parts[1])); err == nil {
				return s, true
			}
		}
	}
	return auth.Session{}, false
}

func sessionFrom(r *http.Request) (auth.Session, bool) {
	s, ok := r.Context().Value(ctxSession).(auth.Session)
	return s, ok
}

func authNoticeFrom(r *http.Request) string {
	s, _ := r.Context().Value(ctxAuthNotice).(string)
	return s
}

func (a *App) requireAuth(h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, ok := sessionFrom(r); !ok {
			target := "/login"
			if n := authNoticeFrom(r); n != "" {
				target += "?notice=" + url.QueryEscape(n)
			}
			http.Redirect(w, r, target, http.StatusSeeOther)
			return
		}
		h(w, r)
	}
}

func (a *App) requireAdmin(h http.HandlerFunc) http.HandlerFunc {
	return a.requireAuth(func(w http.ResponseWriter, r *http.Request) {
		if s, _ := sessionFrom(r); !s.Admin() {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}
		h(w, r)
	})
}
