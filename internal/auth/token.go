// Package auth verifies the bearer tokens presented to the manual trigger
// endpoints. Tokens are HS256 JWTs whose subject is the caller's uid.
package auth

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/pkg/errors"
	"net/http"
	"strings"
	"time"
)

const (
	issuer       = "warden"
	minSecretLen = 32
)

var (
	ErrNoCredentials      = errors.New("no credentials provided")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrExpiredCredentials = errors.New("credentials expired")
)

type (
	Subject struct {
		UID       string
		ExpiresAt time.Time
	}

	TokenManager struct {
		secret []byte
		ttl    time.Duration
	}
)

func NewTokenManager(secret string, ttl time.Duration) (*TokenManager, error) {
	if len(secret) < minSecretLen {
		return nil, errors.Errorf("token secret must be at least %d characters", minSecretLen)
	}
	if ttl <= 0 {
		return nil, errors.New("token ttl must be positive")
	}
	return &TokenManager{secret: []byte(secret), ttl: ttl}, nil
}

// Issue signs a token for uid. It backs the issue-token command used to hand
// operators their credentials.
func (m *TokenManager) Issue(uid string) (string, error) {
	if uid == "" {
		return "", errors.New("uid is required")
	}

	now := time.Now()
	claims := jwt.RegisteredClaims{
		Issuer:    issuer,
		Subject:   uid,
		IssuedAt:  jwt.NewNumericDate(now),
		NotBefore: jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", errors.Wrap(err, "failed to sign token")
	}
	return signed, nil
}

func (m *TokenManager) Verify(token string) (*Subject, error) {
	if token == "" {
		return nil, ErrNoCredentials
	}

	claims := &jwt.RegisteredClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		return m.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired())
	if errors.Is(err, jwt.ErrTokenExpired) {
		return nil, ErrExpiredCredentials
	}
	if err != nil || !parsed.Valid {
		return nil, ErrInvalidCredentials
	}

	if claims.Subject == "" {
		return nil, ErrInvalidCredentials
	}
	return &Subject{UID: claims.Subject, ExpiresAt: claims.ExpiresAt.Time}, nil
}

// ExtractBearer returns the token of an "Authorization: Bearer" header, or an
// empty string.
func ExtractBearer(r *http.Request) string {
	header := r.Header.Get("Authorization")
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}
