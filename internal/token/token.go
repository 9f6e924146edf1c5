// Package token issues and verifies the signed, time-limited tokens used by
// the platform: account activation tokens, password reset tokens and session
// tokens. Each purpose has its own signing secret so that a leaked or rotated
// key for one purpose cannot forge tokens for another.
package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Verification errors. Callers that surface these to clients collapse both
// into a uniform "link expired, try again" message; the distinction exists
// for logging.
var (
	// ErrTokenExpired indicates a well-formed token past its expiry.
	ErrTokenExpired = errors.New("token has expired")

	// ErrTokenInvalid indicates a malformed token or signature mismatch.
	ErrTokenInvalid = errors.New("token is invalid")
)

// Claims is the payload carried inside a signed token.
// Session and reset tokens reference a user by ID; activation tokens carry
// the provisional signup (name, email, plaintext password) so that no
// account record exists until the link is followed.
type Claims struct {
	UserID   int64  `json:"uid,omitempty"`
	Name     string `json:"name,omitempty"`
	Email    string `json:"email,omitempty"`
	Password string `json:"password,omitempty"`
	jwt.RegisteredClaims
}

// Issuer issues and verifies tokens for a single purpose.
// All tokens are HS256 signed and expire at issued-at + TTL.
type Issuer struct {
	secret []byte
	ttl    time.Duration
}

// NewIssuer creates an Issuer with the given secret and token lifetime.
func NewIssuer(secret string, ttl time.Duration) *Issuer {
	return &Issuer{secret: []byte(secret), ttl: ttl}
}

// TTL returns the configured token lifetime.
func (i *Issuer) TTL() time.Duration {
	return i.ttl
}

// Issue signs the claims with this issuer's secret.
// Expiry is normalized to issued-at + TTL regardless of purpose.
func (i *Issuer) Issue(claims Claims) (string, error) {
	now := time.Now()
	claims.RegisteredClaims = jwt.RegisteredClaims{
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(i.ttl)),
		ID:        uuid.NewString(),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, &claims).SignedString(i.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// IssueSubject issues a token referencing a user by ID
// (the session and reset token shape).
func (i *Issuer) IssueSubject(userID int64) (string, error) {
	return i.Issue(Claims{UserID: userID})
}

// Verify parses and validates a token.
// Returns ErrTokenExpired for a stale token and ErrTokenInvalid for anything
// malformed or signed with a different secret.
func (i *Issuer) Verify(tokenString string) (*Claims, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return i.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrTokenInvalid
	}
	return claims, nil
}

// Service bundles the three purpose-scoped issuers used by the auth flows.
type Service struct {
	// Activation issues the short-lived tokens carried in account
	// activation emails.
	Activation *Issuer

	// Reset issues the short-lived, single-use password reset tokens.
	// Single use is enforced by cross-checking the stored value on the
	// user record, not by the token itself.
	Reset *Issuer

	// Session issues the bearer tokens presented on authenticated requests.
	Session *Issuer
}

// Config holds the per-purpose secrets and lifetimes.
type Config struct {
	ActivationSecret string
	ActivationTTL    time.Duration
	ResetSecret      string
	ResetTTL         time.Duration
	SessionSecret    string
	SessionTTL       time.Duration
}

// NewService creates a Service from configuration.
func NewService(cfg Config) *Service {
	return &Service{
		Activation: NewIssuer(cfg.ActivationSecret, cfg.ActivationTTL),
		Reset:      NewIssuer(cfg.ResetSecret, cfg.ResetTTL),
		Session:    NewIssuer(cfg.SessionSecret, cfg.SessionTTL),
	}
}
