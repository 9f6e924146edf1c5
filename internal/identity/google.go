package identity

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"google.golang.org/api/idtoken"
)

// GoogleVerifier validates Google-issued ID tokens against a client ID.
type GoogleVerifier struct {
	clientID string
	logger   zerolog.Logger
}

// NewGoogleVerifier creates a GoogleVerifier for the given OAuth client ID.
func NewGoogleVerifier(clientID string, logger zerolog.Logger) *GoogleVerifier {
	return &GoogleVerifier{
		clientID: clientID,
		logger:   logger.With().Str("component", "google_verifier").Logger(),
	}
}

// Verify validates a Google ID token and extracts the identity claims.
func (v *GoogleVerifier) Verify(ctx context.Context, assertion string) (*Identity, error) {
	payload, err := idtoken.Validate(ctx, assertion, v.clientID)
	if err != nil {
		v.logger.Debug().Err(err).Msg("id token validation failed")
		return nil, fmt.Errorf("%w: %v", ErrInvalidAssertion, err)
	}

	email, _ := payload.Claims["email"].(string)
	name, _ := payload.Claims["name"].(string)
	verified, _ := payload.Claims["email_verified"].(bool)

	return &Identity{
		Email:         email,
		Name:          name,
		Subject:       payload.Subject,
		EmailVerified: verified,
	}, nil
}

// Ensure GoogleVerifier implements Verifier.
var _ Verifier = (*GoogleVerifier)(nil)
