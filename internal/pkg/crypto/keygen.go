package crypto

import (
	"crypto/rand"
	"fmt"
)

// usernameChars contains the characters used in generated usernames
// (lowercase alphanumeric, matching the username column constraint).
const usernameChars = "abcdefghijklmnopqrstuvwxyz0123456789"

// UsernameLength is the length of generated usernames.
// Well under the 32 character column limit.
const UsernameLength = 12

// GenerateUsername generates a random unique-enough username for accounts
// created by signup or federated provisioning.
func GenerateUsername() (string, error) {
	return generateRandomString(UsernameLength, usernameChars)
}

// generateRandomString generates a random string of the specified length
// using characters from the provided character set.
func generateRandomString(length int, charset string) (string, error) {
	result := make([]byte, length)
	charsetLen := len(charset)

	randomBytes := make([]byte, length)
	if _, err := rand.Read(randomBytes); err != nil {
		return "", fmt.Errorf("failed to generate random bytes: %w", err)
	}

	for i := 0; i < length; i++ {
		result[i] = charset[int(randomBytes[i])%charsetLen]
	}

	return string(result), nil
}
