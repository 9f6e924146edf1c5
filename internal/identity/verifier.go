// Package identity verifies third-party identity assertions for federated
// login. The cryptographic verification itself is delegated to the provider's
// library; this package adapts the result into a small, typed contract.
package identity

import (
	"context"
	"errors"
)

// Verification errors. An unverified email is deliberately distinct from a
// failed verification: the first is a well-formed assertion for an account
// the provider has not confirmed, the second is a forged or stale assertion.
var (
	// ErrInvalidAssertion indicates the assertion could not be verified.
	ErrInvalidAssertion = errors.New("identity assertion could not be verified")

	// ErrEmailNotVerified indicates a valid assertion whose email address
	// the provider has not verified. Such identities must never create or
	// log into an account.
	ErrEmailNotVerified = errors.New("identity email is not verified")

	// ErrVerifierDisabled indicates federated login is not configured.
	ErrVerifierDisabled = errors.New("federated login is not configured")
)

// Identity is the verified subset of a third-party assertion.
type Identity struct {
	// Email is the asserted email address.
	Email string

	// Name is the asserted display name.
	Name string

	// Subject is the provider's opaque per-user identifier.
	Subject string

	// EmailVerified reports whether the provider has verified Email.
	EmailVerified bool
}

// Verifier validates a third-party identity assertion.
type Verifier interface {
	// Verify validates the raw assertion and extracts the identity.
	// Returns ErrInvalidAssertion if verification fails; a successful
	// return with EmailVerified=false is the caller's problem to reject.
	Verify(ctx context.Context, assertion string) (*Identity, error)
}

// Disabled is a Verifier for deployments without a configured provider.
type Disabled struct{}

// Verify always fails with ErrVerifierDisabled.
func (Disabled) Verify(ctx context.Context, assertion string) (*Identity, error) {
	return nil, ErrVerifierDisabled
}
