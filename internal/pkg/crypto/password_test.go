package crypto

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDigestPassword_Deterministic(t *testing.T) {
	salt, err := MakeSalt()
	require.NoError(t, err)

	first := DigestPassword("correct horse battery staple", salt)
	second := DigestPassword("correct horse battery staple", salt)

	require.NotEmpty(t, first)
	require.Equal(t, first, second)
}

func TestDigestPassword_EmptyInputsYieldSentinel(t *testing.T) {
	salt, err := MakeSalt()
	require.NoError(t, err)

	require.Empty(t, DigestPassword("", salt))
	require.Empty(t, DigestPassword("secret", ""))
}

func TestAuthenticate(t *testing.T) {
	cred, err := CreateCredential("hunter22")
	require.NoError(t, err)

	tests := []struct {
		name      string
		plaintext string
		salt      string
		stored    string
		want      bool
	}{
		{"exact pair", "hunter22", cred.Salt, cred.Digest, true},
		{"wrong password", "hunter23", cred.Salt, cred.Digest, false},
		{"empty password", "", cred.Salt, cred.Digest, false},
		{"empty stored digest", "hunter22", cred.Salt, "", false},
		{"empty password against empty digest", "", cred.Salt, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, Authenticate(tt.plaintext, tt.salt, tt.stored))
		})
	}
}

// Changing the salt without re-deriving the digest must invalidate the
// credential for the original password.
func TestAuthenticate_SaltChangeInvalidatesDigest(t *testing.T) {
	cred, err := CreateCredential("original-password")
	require.NoError(t, err)

	otherSalt, err := MakeSalt()
	require.NoError(t, err)
	require.NotEqual(t, cred.Salt, otherSalt)

	require.True(t, Authenticate("original-password", cred.Salt, cred.Digest))
	require.False(t, Authenticate("original-password", otherSalt, cred.Digest))
}

func TestMakeSalt_Unique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 64; i++ {
		salt, err := MakeSalt()
		require.NoError(t, err)
		require.Len(t, salt, saltBytes*2)
		require.False(t, seen[salt], "duplicate salt generated")
		seen[salt] = true
	}
}

func TestGenerateUsername(t *testing.T) {
	username, err := GenerateUsername()
	require.NoError(t, err)
	require.Len(t, username, UsernameLength)
	for _, c := range username {
		require.Contains(t, usernameChars, string(c))
	}
}
