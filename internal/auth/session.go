package auth

import (
	"time"

	"github.com/google/uuid"

	"github.com/hnrobert/equidash/internal/credstore"
)

// Session is the identity handed to presentation code after a login.
type Session struct {
	Email     string
	Role      string
	SessionID string
	LoginTime time.Time
}

func (s Session) Admin() bool { return s.Role == credstore.RoleAdmin }

// NewSessionID returns a random UUIDv4 string.
func NewSessionID() string {
	return uuid.NewString()
}
