// Package security verifies identity provider tokens.
package security

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	errEmptySecret  = errors.New("security: empty jwt secret")
	errEmptyToken   = errors.New("security: empty token")
	errMissingSub   = errors.New("security: token has no subject")
	errInvalidToken = errors.New("security: invalid token")
)

// UserClaims are the claims read from an identity provider token.
type UserClaims struct {
	Email string `json:"email,omitempty"`
	jwt.RegisteredClaims
}

// VerifyOptions restricts accepted tokens beyond the signature.
type VerifyOptions struct {
	Issuer   string
	Audience string
	Leeway   time.Duration
}

// ParseUserToken verifies an HS256 token and returns its claims. The
// subject is required; issuer and audience are checked when configured.
func ParseUserToken(secret, token string, opts VerifyOptions) (*UserClaims, error) {
	if strings.TrimSpace(secret) == "" {
		return nil, errEmptySecret
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, errEmptyToken
	}

	parserOpts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	}
	if opts.Issuer != "" {
		parserOpts = append(parserOpts, jwt.WithIssuer(opts.Issuer))
	}
	if opts.Audience != "" {
		parserOpts = append(parserOpts, jwt.WithAudience(opts.Audience))
	}
	if opts.Leeway > 0 {
		parserOpts = append(parserOpts, jwt.WithLeeway(opts.Leeway))
	}

	claims := &UserClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return []byte(secret), nil
	}, parserOpts...)
	if err != nil {
		return nil, fmt.Errorf("security: parse token: %w", err)
	}
	if !parsed.Valid {
		return nil, errInvalidToken
	}
	if strings.TrimSpace(claims.Subject) == "" {
		return nil, errMissingSub
	}
	return claims, nil
}

// IssueUserToken signs a token for subject. It backs local tooling and tests;
// production tokens come from the identity provider.
func IssueUserToken(secret, subject, email string, ttl time.Duration, opts VerifyOptions) (string, error) {
	if strings.TrimSpace(secret) == "" {
		return "", errEmptySecret
	}
	now := time.Now().UTC()
	claims := UserClaims{
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			Issuer:    opts.Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	if opts.Audience != "" {
		claims.Audience = jwt.ClaimStrings{opts.Audience}
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}
