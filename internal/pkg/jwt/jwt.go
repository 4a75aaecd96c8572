package jwt

import (
	"errors"
	"fmt"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
)

const devSecret = "embracing-dev-secret-change-me"

var ErrInvalidToken = errors.New("invalid token")

// Claims is the session token payload.
type Claims struct {
	UserID    string `json:"uid"`
	SessionID string `json:"sid"`
	jwtlib.RegisteredClaims
}

// Signer signs and verifies HS256 session tokens with one secret.
type Signer struct {
	secret []byte
}

// NewSigner returns a Signer for secret. An empty secret falls back to a
// development-only value; production configs are rejected earlier.
func NewSigner(secret string) *Signer {
	if secret == "" {
		secret = devSecret
	}
	return &Signer{secret: []byte(secret)}
}

// Sign creates a token for userID bound to sessionID.
func (s *Signer) Sign(userID, sessionID string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID:    userID,
		SessionID: sessionID,
		RegisteredClaims: jwtlib.RegisteredClaims{
			ExpiresAt: jwtlib.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwtlib.NewNumericDate(now),
		},
	}
	token := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// Parse validates a token string and returns the claims.
func (s *Signer) Parse(tokenStr string) (*Claims, error) {
	token, err := jwtlib.ParseWithClaims(tokenStr, &Claims{}, func(t *jwtlib.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwtlib.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.UserID == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
