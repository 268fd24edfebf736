// Package jwt provides the identity token codec. A token embeds the user
// snapshot as it existed at issuance time; protected handlers trust the
// snapshot and never re-fetch the user, so role changes apply on the next
// login.
package jwt

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims carries the user snapshot inside a signed token.
type Claims struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	Role     int    `json:"user_role"`
	jwt.RegisteredClaims
}

// Config holds token manager configuration.
type Config struct {
	Secret      string
	Issuer      string
	TokenExpiry time.Duration // default 24h
}

// Manager signs and verifies identity tokens with HS256.
type Manager struct {
	secret      []byte
	issuer      string
	tokenExpiry time.Duration
}

// NewManager creates a token manager.
func NewManager(cfg *Config) *Manager {
	expiry := cfg.TokenExpiry
	if expiry == 0 {
		expiry = 24 * time.Hour
	}
	return &Manager{
		secret:      []byte(cfg.Secret),
		issuer:      cfg.Issuer,
		tokenExpiry: expiry,
	}
}

// Generate issues a signed token embedding the given user snapshot.
func (m *Manager) Generate(userID, username string, role int) (string, error) {
	now := time.Now()
	claims := &Claims{
		UserID:   userID,
		Username: username,
		Role:     role,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    m.issuer,
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.tokenExpiry)),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("jwt: failed to sign token: %w", err)
	}
	return signed, nil
}

// Validate parses and verifies a token, returning the embedded snapshot.
func (m *Manager) Validate(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("jwt: unexpected signing method %v", token.Header["alg"])
		}
		return m.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("jwt: invalid token: %w", err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("jwt: invalid token claims")
	}
	return claims, nil
}

// Expiry returns the configured token lifetime.
func (m *Manager) Expiry() time.Duration {
	return m.tokenExpiry
}
