package auth

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	DefaultCookieName = "equidash_session"
	DefaultIssuer     = "equidash"
)

type Claims struct {
	Email     string           `json:"email"`
	Role      string           `json:"role"`
	SessionID string           `json:"sid"`
	LoginAt   *jwt.NumericDate `json:"login_at"`
	jwt.RegisteredClaims
}

func NewRandomSecretB64(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

func SignSession(secret []byte, s Session, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		Email:     s.Email,
		Role:      s.Role,
		SessionID: s.SessionID,
		LoginAt:   jwt.NewNumericDate(s.LoginTime),
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    DefaultIssuer,
			Subject:   s.Email,
			ID:        s.SessionID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return tok.SignedString(secret)
}

func ParseSession(secret []byte, tokenString string) (Session, error) {
	parsed, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return secret, nil
	}, jwt.WithLeeway(30*time.Second), jwt.WithIssuer(DefaultIssuer))
	if err != nil {
		return Session{}, err
	}
	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid || claims.Email == "" {
		return Session{}, errors.New("invalid token")
	}
	s := Session{Email: claims.Email, Role: claims.Role, SessionID: claims.SessionID}
	if claims.LoginAt != nil {
		s.LoginTime = claims.LoginAt.Time
	}
	return s, nil
}
