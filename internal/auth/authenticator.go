package auth

import (
	"crypto/subtle"
	"errors"
	"time"

	"github.com/hnrobert/equidash/internal/credstore"
	"github.com/hnrobert/equidash/internal/logger"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrSessionSuperseded  = errors.New("session superseded by a newer login")
	ErrSessionRevoked     = errors.New("session revoked")
)

// failureReason is logged only. Callers always get ErrInvalidCredentials.
type failureReason string

const (
	reasonEmptyInput    failureReason = "empty email or password"
	reasonUnknownEmail  failureReason = "unknown email"
	reasonWrongPassword failureReason = "wrong password"
	reasonInactive      failureReason = "inactive account"
)

type Result struct {
	Email     string
	Role      string
	SessionID string
	LoginTime time.Time
}

func (r Result) Session() Session {
	return Session{Email: r.Email, Role: r.Role, SessionID: r.SessionID, LoginTime: r.LoginTime}
}

type Authenticator struct {
	store *credstore.Store
}

func New(store *credstore.Store) *Authenticator {
	return &Authenticator{store: store}
}

// Authenticate matches email, password and is_active == TRUE against a
// freshly loaded store. On success it records the login and rewrites the
// store. An empty sessionID is replaced by a new random one.
func (a *Authenticator) Authenticate(email, password, sessionID string, now time.Time) (Result, error) {
	emailClean := credstore.NormalizeEmail(email)
	passwordClean := credstore.NormalizePassword(password)
	if sessionID == "" {
		sessionID = NewSessionID()
	}

	var (
		res    Result
		reason failureReason
	)
	err := a.store.Update(func(t *credstore.Table) error {
		rec, why := match(t, emailClean, passwordClean)
		if rec == nil {
			reason = why
			return ErrInvalidCredentials
		}
		stamp := now.Format(credstore.TimeLayout)
		rec.LoginCount++
		rec.LastLogin = stamp
		rec.ActiveSessionID = sessionID
		rec.SessionLastSeen = stamp
		res = Result{Email: rec.Email, Role: rec.Role, SessionID: sessionID, LoginTime: now}
		logger.Info("auth: %s logged in (role %s, login #%d)", rec.Email, rec.Role, rec.LoginCount)
		return nil
	})
	if errors.Is(err, ErrInvalidCredentials) {
		logger.Info("auth: rejected login for %q: %s", emailClean, reason)
		return Result{}, ErrInvalidCredentials
	}
	if err != nil {
		logger.Error("auth: credential store unavailable: %v", err)
		return Result{}, err
	}
	return res, nil
}

func match(t *credstore.Table, email, password string) (*credstore.Record, failureReason) {
	if email == "" || password == "" {
		return nil, reasonEmptyInput
	}
	rec := t.Find(email)
	if rec == nil {
		return nil, reasonUnknownEmail
	}
	if subtle.ConstantTimeCompare([]byte(rec.Password), []byte(password)) != 1 {
		return nil, reasonWrongPassword
	}
	if !rec.Active() {
		return nil, reasonInactive
	}
	return rec, ""
}

// Verify checks that s is still the active session of an active account
// with an unchanged role.
// When the stored session_last_seen is older than touchEvery it is
// refreshed to now; touchEvery <= 0 disables refreshing.
func (a *Authenticator) Verify(s Session, now time.Time, touchEvery time.Duration) error {
	t, err := a.store.Load()
	if err != nil {
		return err
	}
	rec := t.Find(s.Email)
	if err := checkSession(rec, s); err != nil {
		return err
	}
	if touchEvery <= 0 {
		return nil
	}
	if last, err := time.ParseInLocation(credstore.TimeLayout, rec.SessionLastSeen, now.Location()); err == nil && now.Sub(last) < touchEvery {
		return nil
	}
	return a.store.Update(func(t *credstore.Table) error {
		rec := t.Find(s.Email)
		if err := checkSession(rec, s); err != nil {
			return err
		}
		rec.SessionLastSeen = now.Format(credstore.TimeLayout)
		return nil
	})
}

func checkSession(rec *credstore.Record, s Session) error {
	// A role change invalidates the role carried by the cookie.
	if rec == nil || !rec.Active() || rec.Role != s.Role {
		return ErrSessionRevoked
	}
	if s.SessionID == "" || rec.ActiveSessionID != s.SessionID {
		return ErrSessionSuperseded
	}
	return nil
}

// HumanAuthError maps an error to the message shown on the login page.
func HumanAuthError(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrInvalidCredentials):
		return "Invalid credentials."
	case errors.Is(err, ErrSessionSuperseded):
		return "You were signed out because this account logged in elsewhere."
	case errors.Is(err, ErrSessionRevoked):
		return "Your session is no longer valid. Please sign in again."
	case errors.Is(err, credstore.ErrStoreMissing), errors.Is(err, credstore.ErrSchema):
		return "The user directory is unavailable. Please contact an administrator."
	default:
		return "Authentication is temporarily unavailable. Please try again later."
	}
}
