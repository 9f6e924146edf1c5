package token

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestIssuer_RoundTrip(t *testing.T) {
	issuer := NewIssuer("test-secret", 10*time.Minute)

	signed, err := issuer.Issue(Claims{
		Name:     "Jane Doe",
		Email:    "jane@example.com",
		Password: "hunter22",
	})
	require.NoError(t, err)

	claims, err := issuer.Verify(signed)
	require.NoError(t, err)
	require.Equal(t, "Jane Doe", claims.Name)
	require.Equal(t, "jane@example.com", claims.Email)
	require.Equal(t, "hunter22", claims.Password)
	require.NotEmpty(t, claims.ID)
}

func TestIssuer_SubjectRoundTrip(t *testing.T) {
	issuer := NewIssuer("test-secret", time.Hour)

	signed, err := issuer.IssueSubject(42)
	require.NoError(t, err)

	claims, err := issuer.Verify(signed)
	require.NoError(t, err)
	require.Equal(t, int64(42), claims.UserID)
}

// A token issued under one secret must fail verification under another;
// this is what keeps the activation, reset and session key spaces separate.
func TestIssuer_WrongSecret(t *testing.T) {
	issuerA := NewIssuer("secret-a", 10*time.Minute)
	issuerB := NewIssuer("secret-b", 10*time.Minute)

	signed, err := issuerA.IssueSubject(7)
	require.NoError(t, err)

	_, err = issuerB.Verify(signed)
	require.ErrorIs(t, err, ErrTokenInvalid)
}

func TestIssuer_Expired(t *testing.T) {
	issuer := NewIssuer("test-secret", -time.Minute)

	signed, err := issuer.IssueSubject(7)
	require.NoError(t, err)

	_, err = issuer.Verify(signed)
	require.ErrorIs(t, err, ErrTokenExpired)
}

func TestIssuer_Garbage(t *testing.T) {
	issuer := NewIssuer("test-secret", time.Minute)

	for _, tok := range []string{"", "not-a-token", "a.b.c"} {
		_, err := issuer.Verify(tok)
		require.ErrorIs(t, err, ErrTokenInvalid)
	}
}

func TestService_PurposeIsolation(t *testing.T) {
	svc := NewService(Config{
		ActivationSecret: "activation-secret",
		ActivationTTL:    10 * time.Minute,
		ResetSecret:      "reset-secret",
		ResetTTL:         10 * time.Minute,
		SessionSecret:    "session-secret",
		SessionTTL:       24 * time.Hour,
	})

	session, err := svc.Session.IssueSubject(1)
	require.NoError(t, err)

	// A session token must not pass as a reset or activation token.
	_, err = svc.Reset.Verify(session)
	require.ErrorIs(t, err, ErrTokenInvalid)
	_, err = svc.Activation.Verify(session)
	require.ErrorIs(t, err, ErrTokenInvalid)

	_, err = svc.Session.Verify(session)
	require.NoError(t, err)
}
