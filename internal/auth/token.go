package auth

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"github.com/abhinav/feedback-service/internal/config"
)

// Verification failures callers must be able to tell apart: a stale credential
// (expired) produces a different user-facing message than a bad one.
var (
	ErrTokenMalformed   = errors.New("token malformed")
	ErrSignatureInvalid = errors.New("token signature invalid")
	ErrTokenExpired     = errors.New("token expired")
)

const defaultTokenTTL = 10 * time.Hour

// Claims is the JWT payload carried by issued tokens. Subject holds the
// username; IssuedAt and ExpiresAt bound the validity window.
type Claims struct {
	jwt.RegisteredClaims
}

// ResolveSigningKey establishes the process-wide signing key exactly once at
// startup. A configured secret is preferred (base64 accepted, raw bytes
// otherwise); with no secret a fresh random key is generated, which
// invalidates every token issued by a previous process.
func ResolveSigningKey(cfg config.AuthConfig, logger *zap.Logger) ([]byte, error) {
	if cfg.JWTSecret != "" {
		if decoded, err := base64.StdEncoding.DecodeString(cfg.JWTSecret); err == nil && len(decoded) >= 32 {
			return decoded, nil
		}
		return []byte(cfg.JWTSecret), nil
	}

	key := make([]byte, 32)
	if _, err := rand.Read(key); err != nil {
		return nil, err
	}
	logger.Warn("AUTH_JWT_SECRET not configured; generated a fresh signing key, previously issued tokens are no longer valid")
	return key, nil
}

// TokenManager issues and verifies signed tokens. The key never changes for
// the lifetime of the process.
type TokenManager struct {
	key []byte
	ttl time.Duration
}

// NewTokenManager builds a manager around the resolved signing key.
func NewTokenManager(key []byte, ttl time.Duration) *TokenManager {
	if ttl <= 0 {
		ttl = defaultTokenTTL
	}
	return &TokenManager{key: key, ttl: ttl}
}

// TTL reports the configured validity window.
func (tm *TokenManager) TTL() time.Duration {
	return tm.ttl
}

// Issue signs a token whose subject is the given username, valid from now
// until now plus the validity window.
func (tm *TokenManager) Issue(username string) (string, time.Time, error) {
	now := time.Now()
	expiresAt := now.Add(tm.ttl)
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   username,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(tm.key)
	if err != nil {
		return "", time.Time{}, err
	}
	return tokenString, expiresAt, nil
}

// Verify parses and validates a token, returning its claims. Failures are one
// of ErrTokenMalformed, ErrSignatureInvalid or ErrTokenExpired.
func (tm *TokenManager) Verify(tokenStr string) (*Claims, error) {
	parsed, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrSignatureInvalid
		}
		return tm.key, nil
	}, jwt.WithExpirationRequired())
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, ErrTokenExpired
		case errors.Is(err, jwt.ErrTokenSignatureInvalid), errors.Is(err, ErrSignatureInvalid):
			return nil, ErrSignatureInvalid
		default:
			return nil, ErrTokenMalformed
		}
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid || claims.Subject == "" || claims.ExpiresAt == nil {
		return nil, ErrTokenMalformed
	}
	return claims, nil
}
