// Package crypto provides credential primitives for the Bronte blog platform:
// salt generation, password digests and random identifier generation.
package crypto

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"golang.org/x/crypto/pbkdf2"
)

const (
	// saltBytes is the number of random bytes in a salt (hex encoded to 32 chars).
	saltBytes = 16

	// digestIterations is the PBKDF2 iteration count.
	// Changing this invalidates every stored digest; there is no migration
	// path, accounts would need a password reset.
	digestIterations = 4096

	// digestKeyLength is the derived key length in bytes.
	digestKeyLength = 32
)

// MakeSalt generates a new high-entropy per-user salt.
// Salts are generated once at account creation and never changed.
func MakeSalt() (string, error) {
	buf := make([]byte, saltBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate salt: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

// DigestPassword derives the one-way salted digest of a plaintext password.
// The result is a deterministic function of (plaintext, salt): the same pair
// always yields the same digest, which is how signin verification works.
// Empty plaintext or salt digests to the empty string, a sentinel that can
// never equal a stored digest, so accounts cannot authenticate with an
// empty password.
func DigestPassword(plaintext, salt string) string {
	if plaintext == "" || salt == "" {
		return ""
	}
	key := pbkdf2.Key([]byte(plaintext), []byte(salt), digestIterations, digestKeyLength, sha256.New)
	return hex.EncodeToString(key)
}

// Authenticate verifies a plaintext candidate against a stored digest.
// Returns true only when the digest derived from (plaintext, salt) equals
// the stored value. Always false when the stored digest is empty
// (federated-only accounts carry no password credential).
func Authenticate(plaintext, salt, storedDigest string) bool {
	if storedDigest == "" {
		return false
	}
	candidate := DigestPassword(plaintext, salt)
	if candidate == "" {
		return false
	}
	return hmac.Equal([]byte(candidate), []byte(storedDigest))
}

// Credential is the salt and digest pair persisted on a user record.
type Credential struct {
	Salt   string
	Digest string
}

// CreateCredential derives a fresh credential for a plaintext password.
// This is the single, explicit entry point for credential derivation,
// called at signup and at password reset.
func CreateCredential(plaintext string) (Credential, error) {
	salt, err := MakeSalt()
	if err != nil {
		return Credential{}, err
	}
	return Credential{
		Salt:   salt,
		Digest: DigestPassword(plaintext, salt),
	}, nil
}
