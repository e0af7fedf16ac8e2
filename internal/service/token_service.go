package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

// --- Error Definitions ---
var (
	ErrInvalidToken    = errors.New("invalid or expired token")
	ErrTokenGeneration = errors.New("failed to generate authentication token")
)

// TokenService issues and verifies signed, time-limited identity tokens.
// Tokens are stateless; there is no server-side session table and no
// refresh mechanism, an expired token requires a fresh login.
type TokenService interface {
	Issue(userID string) (string, error)
	Verify(token string) (string, error)
}

// tokenClaims defines the structure of the JWT payload.
type tokenClaims struct {
	UserID string `json:"uid"`
	jwt.RegisteredClaims
}

type tokenService struct {
	secret     string
	expiration time.Duration
}

// NewTokenService creates a TokenService signing with the given shared
// secret. An empty secret is a deployment misconfiguration, not a runtime
// condition, and panics.
func NewTokenService(secret string, expiration time.Duration) TokenService {
	if secret == "" {
		panic("JWT secret cannot be empty")
	}
	if expiration <= 0 {
		expiration = 7 * 24 * time.Hour
	}
	return &tokenService{
		secret:     secret,
		expiration: expiration,
	}
}

// Issue produces a signed token encoding the user identifier with an
// absolute expiry relative to now.
func (s *tokenService) Issue(userID string) (string, error) {
	now := time.Now()
	claims := &tokenClaims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			ExpiresAt: jwt.NewNumericDate(now.Add(s.expiration)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    "fittrack",
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.secret))
	if err != nil {
		return "", ErrTokenGeneration
	}
	return signed, nil
}

// Verify validates signature and expiry and returns the encoded user
// identifier. Malformed tokens, bad signatures, and expired tokens all
// collapse to ErrInvalidToken; callers never see parser internals.
func (s *tokenService) Verify(tokenString string) (string, error) {
	claims := &tokenClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.secret), nil
	})
	if err != nil || !token.Valid || claims.UserID == "" {
		return "", ErrInvalidToken
	}
	return claims.UserID, nil
}
