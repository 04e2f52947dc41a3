// Package auth issues and verifies the bearer tokens that authenticate every
// RPC, and hashes account passwords (§4.8).
package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/ocx/syncx/internal/apperr"
)

// Issuer is the fixed claims issuer stamped into every token.
const Issuer = "SyncxServer"

// TokenIssuer verifies and signs tokens with HMAC-SHA512, matching spec.md §4.8.
type TokenIssuer struct {
	secret []byte
	ttl    time.Duration
}

// NewTokenIssuer builds an issuer from the configured JWT secret and TTL.
func NewTokenIssuer(secret string, ttl time.Duration) *TokenIssuer {
	return &TokenIssuer{secret: []byte(secret), ttl: ttl}
}

// Issue mints a bearer token whose subject is uid, claims {sub, iss, exp}.
func (i *TokenIssuer) Issue(uid string) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   uid,
		Issuer:    Issuer,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(i.ttl)),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS512, claims)
	signed, err := token.SignedString(i.secret)
	if err != nil {
		return "", fmt.Errorf("auth: sign token: %w", err)
	}
	return signed, nil
}

// Verify checks signature, issuer, and expiry, and returns the subject
// (account id) on success. Any failure is reported as apperr.Unauthenticated
// per spec.md §7 — implementation detail is never leaked to the caller.
func (i *TokenIssuer) Verify(tokenStr string) (string, error) {
	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return i.secret, nil
	})
	if err != nil || !token.Valid {
		return "", fmt.Errorf("%w: %v", apperr.Unauthenticated, err)
	}
	if claims.Issuer != Issuer {
		return "", fmt.Errorf("%w: unexpected issuer %q", apperr.Unauthenticated, claims.Issuer)
	}
	if claims.Subject == "" {
		return "", fmt.Errorf("%w: missing subject", apperr.Unauthenticated)
	}
	return claims.Subject, nil
}
