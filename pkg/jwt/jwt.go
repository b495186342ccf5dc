package jwt

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

type TokenType string

const (
	// TokenTypeService authenticates the chat front-end against the API.
	TokenTypeService TokenType = "service"
	// TokenTypeWebhook authenticates payment-provider callbacks.
	TokenTypeWebhook TokenType = "webhook"
)

// Claims extends jwt.RegisteredClaims with custom fields.
type Claims struct {
	jwt.RegisteredClaims
	TokenType TokenType `json:"token_type"`
}

type Manager struct {
	signingKey []byte
	issuer     string
}

func NewManager(signingKey string, issuer string) *Manager {
	return &Manager{
		signingKey: []byte(signingKey),
		issuer:     issuer,
	}
}

// Generate creates a signed token of the given type for a subject. A zero ttl
// produces a token without an expiry, used for long-lived service tokens
// issued out of band.
func (m *Manager) Generate(tokenType TokenType, subject string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:   m.issuer,
			Subject:  subject,
			IssuedAt: jwt.NewNumericDate(now),
			ID:       uuid.New().String(),
		},
		TokenType: tokenType,
	}
	if ttl > 0 {
		claims.ExpiresAt = jwt.NewNumericDate(now.Add(ttl))
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.signingKey)
}

// Validate parses and verifies a token, returning its claims.
func (m *Manager) Validate(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return m.signingKey, nil
	}, jwt.WithIssuer(m.issuer))
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token claims")
	}
	return claims, nil
}
