package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/prn-tf/bronte-blog/internal/domain"
	"github.com/prn-tf/bronte-blog/internal/identity"
	"github.com/prn-tf/bronte-blog/internal/mail"
	"github.com/prn-tf/bronte-blog/internal/pkg/crypto"
	"github.com/prn-tf/bronte-blog/internal/repository"
	"github.com/prn-tf/bronte-blog/internal/token"
)

// AuthService handles signup, activation, signin and credential recovery.
type AuthService struct {
	userRepo  repository.UserRepository
	tokens    *token.Service
	verifier  identity.Verifier
	mailer    *mail.Mailer
	clientURL string
	logger    zerolog.Logger
}

// NewAuthService creates a new AuthService.
func NewAuthService(
	userRepo repository.UserRepository,
	tokens *token.Service,
	verifier identity.Verifier,
	mailer *mail.Mailer,
	clientURL string,
	logger zerolog.Logger,
) *AuthService {
	return &AuthService{
		userRepo:  userRepo,
		tokens:    tokens,
		verifier:  verifier,
		mailer:    mailer,
		clientURL: clientURL,
		logger:    logger.With().Str("service", "auth").Logger(),
	}
}

// =============================================================================
// Input/Output Structs
// =============================================================================

// PreSignupInput contains the data for a signup request.
type PreSignupInput struct {
	Name     string
	Email    string
	Password string
}

// PreSignupOutput contains the result of a signup request.
type PreSignupOutput struct {
	// Email is the normalized address the activation link was sent to.
	Email string
}

// ActivateInput contains the activation token from the emailed link.
type ActivateInput struct {
	Token string
}

// ActivateOutput contains the newly created account.
type ActivateOutput struct {
	User *domain.User
}

// SignupInput contains the data for direct account creation.
type SignupInput struct {
	Name     string
	Email    string
	Password string
}

// SigninInput contains password signin credentials.
type SigninInput struct {
	Email    string
	Password string
}

// SigninOutput contains the session token and the signed-in user.
// Returned by password signin, activation and federated login alike.
type SigninOutput struct {
	Token string
	User  *domain.User
}

// ForgotPasswordInput contains the email requesting a reset link.
type ForgotPasswordInput struct {
	Email string
}

// ForgotPasswordOutput contains the address the reset link was sent to.
type ForgotPasswordOutput struct {
	Email string
}

// ResetPasswordInput contains the reset token and the replacement password.
type ResetPasswordInput struct {
	Token       string
	NewPassword string
}

// GoogleLoginInput contains the raw ID token from the client.
type GoogleLoginInput struct {
	Assertion string
}

// =============================================================================
// Service Methods
// =============================================================================

// PreSignup validates a signup request and emails an activation link.
// No account record is created until the link is followed; the provisional
// signup travels inside the signed activation token.
func (s *AuthService) PreSignup(ctx context.Context, input PreSignupInput) (*PreSignupOutput, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))

	taken, err := s.userRepo.ExistsByEmail(ctx, email)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to check email existence")
		return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
	}
	if taken {
		return nil, ErrEmailTaken
	}

	activationToken, err := s.tokens.Activation.Issue(token.Claims{
		Name:     input.Name,
		Email:    email,
		Password: input.Password,
	})
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to issue activation token")
		return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
	}

	s.mailer.DispatchActivationLink(email, activationToken)
	s.logger.Info().Str("email", email).Msg("activation link dispatched")

	return &PreSignupOutput{Email: email}, nil
}

// Activate consumes an activation token and creates the account it carries,
// then signs the new user in. An expired or forged token gets ErrLinkExpired;
// an email claimed since the link was issued gets ErrEmailTaken.
func (s *AuthService) Activate(ctx context.Context, input ActivateInput) (*SigninOutput, error) {
	claims, err := s.tokens.Activation.Verify(input.Token)
	if err != nil {
		s.logger.Debug().Err(err).Msg("activation token rejected")
		return nil, ErrLinkExpired
	}

	user, err := s.provisionUser(ctx, claims.Name, claims.Email, claims.Password, false)
	if err != nil {
		return nil, err
	}

	s.logger.Info().Int64("user_id", user.ID).Str("username", user.Username).Msg("account activated")

	return s.startSession(user)
}

// Signup creates an account directly, skipping the email activation step,
// and signs the new user in.
func (s *AuthService) Signup(ctx context.Context, input SignupInput) (*SigninOutput, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))

	user, err := s.provisionUser(ctx, input.Name, email, input.Password, false)
	if err != nil {
		return nil, err
	}

	s.logger.Info().Int64("user_id", user.ID).Str("username", user.Username).Msg("account created")

	return s.startSession(user)
}

// Signin authenticates an email/password pair and issues a session token.
func (s *AuthService) Signin(ctx context.Context, input SigninInput) (*SigninOutput, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))

	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, ErrEmailNotRegistered
		}
		s.logger.Error().Err(err).Msg("failed to load user for signin")
		return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
	}

	if !user.CanPasswordLogin() {
		return nil, ErrFederatedAccount
	}

	if !crypto.Authenticate(input.Password, user.Salt, user.HashedPassword) {
		return nil, ErrBadCredentials
	}

	s.logger.Info().Int64("user_id", user.ID).Msg("signin")

	return s.startSession(user)
}

// ForgotPassword issues a reset token, stores it on the account and emails
// the reset link. The stored copy is what makes the link single-use.
func (s *AuthService) ForgotPassword(ctx context.Context, input ForgotPasswordInput) (*ForgotPasswordOutput, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))

	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, ErrEmailNotRegistered
		}
		s.logger.Error().Err(err).Msg("failed to load user for password reset")
		return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
	}

	resetToken, err := s.tokens.Reset.IssueSubject(user.ID)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to issue reset token")
		return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
	}

	if err := s.userRepo.SetResetToken(ctx, user.ID, resetToken); err != nil {
		s.logger.Error().Err(err).Int64("user_id", user.ID).Msg("failed to store reset token")
		return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
	}

	s.mailer.DispatchResetLink(email, resetToken)
	s.logger.Info().Int64("user_id", user.ID).Msg("reset link dispatched")

	return &ForgotPasswordOutput{Email: email}, nil
}

// ResetPassword consumes a reset token and replaces the account credential.
// The swap happens in a single conditional update keyed on the stored token,
// so a replayed or superseded link fails with ErrLinkExpired.
func (s *AuthService) ResetPassword(ctx context.Context, input ResetPasswordInput) error {
	if _, err := s.tokens.Reset.Verify(input.Token); err != nil {
		s.logger.Debug().Err(err).Msg("reset token rejected")
		return ErrLinkExpired
	}

	cred, err := crypto.CreateCredential(input.NewPassword)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to derive credential")
		return fmt.Errorf("%w: %v", ErrInternalError, err)
	}

	if err := s.userRepo.ConsumeResetToken(ctx, input.Token, cred.Salt, cred.Digest); err != nil {
		if errors.Is(err, domain.ErrResetTokenMismatch) {
			return ErrLinkExpired
		}
		s.logger.Error().Err(err).Msg("failed to consume reset token")
		return fmt.Errorf("%w: %v", ErrInternalError, err)
	}

	s.logger.Info().Msg("password reset completed")
	return nil
}

// GoogleLogin verifies a Google ID token, provisions an account on first
// login and issues a session token. Identities whose email the provider has
// not verified never create or enter an account.
func (s *AuthService) GoogleLogin(ctx context.Context, input GoogleLoginInput) (*SigninOutput, error) {
	id, err := s.verifier.Verify(ctx, input.Assertion)
	if err != nil {
		s.logger.Debug().Err(err).Msg("federated assertion rejected")
		return nil, err
	}

	if !id.EmailVerified {
		return nil, identity.ErrEmailNotVerified
	}

	email := strings.ToLower(id.Email)
	user, err := s.userRepo.GetByEmail(ctx, email)
	if err == nil {
		s.logger.Info().Int64("user_id", user.ID).Msg("federated signin")
		return s.startSession(user)
	}
	if !errors.Is(err, domain.ErrUserNotFound) {
		s.logger.Error().Err(err).Msg("failed to load user for federated login")
		return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
	}

	user, err = s.provisionUser(ctx, id.Name, email, "", true)
	if err != nil {
		return nil, err
	}

	s.logger.Info().Int64("user_id", user.ID).Str("subject", id.Subject).Msg("federated account provisioned")

	return s.startSession(user)
}

// provisionUser creates an account with a generated username. Federated
// accounts carry no password credential and cannot password-login.
func (s *AuthService) provisionUser(ctx context.Context, name, email, password string, federated bool) (*domain.User, error) {
	username, err := crypto.GenerateUsername()
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to generate username")
		return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
	}

	var cred crypto.Credential
	if !federated {
		cred, err = crypto.CreateCredential(password)
		if err != nil {
			s.logger.Error().Err(err).Msg("failed to derive credential")
			return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
		}
	}

	profile := fmt.Sprintf("%s/profile/%s", s.clientURL, username)
	user := domain.NewUser(username, name, email, profile, cred.Salt, cred.Digest)
	user.Federated = federated

	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, domain.ErrUserAlreadyExists) {
			return nil, ErrEmailTaken
		}
		s.logger.Error().Err(err).Msg("failed to create user")
		return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
	}

	return user, nil
}

// startSession issues a session token for the user.
func (s *AuthService) startSession(user *domain.User) (*SigninOutput, error) {
	sessionToken, err := s.tokens.Session.IssueSubject(user.ID)
	if err != nil {
		s.logger.Error().Err(err).Int64("user_id", user.ID).Msg("failed to issue session token")
		return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
	}

	return &SigninOutput{
		Token: sessionToken,
		User:  user.PublicView(),
	}, nil
}

// SessionTTL exposes the configured session lifetime for cookie expiry.
func (s *AuthService) SessionTTL() time.Duration {
	return s.tokens.Session.TTL()
}
