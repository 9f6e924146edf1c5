package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/prn-tf/bronte-blog/internal/domain"
	"github.com/prn-tf/bronte-blog/internal/mail"
	"github.com/prn-tf/bronte-blog/internal/repository"
)

// ContactService relays contact form submissions by email.
type ContactService struct {
	userRepo repository.UserRepository
	mailer   *mail.Mailer
	logger   zerolog.Logger
}

// NewContactService creates a new ContactService.
func NewContactService(
	userRepo repository.UserRepository,
	mailer *mail.Mailer,
	logger zerolog.Logger,
) *ContactService {
	return &ContactService{
		userRepo: userRepo,
		mailer:   mailer,
		logger:   logger.With().Str("service", "contact").Logger(),
	}
}

// ContactInput contains a contact form submission.
type ContactInput struct {
	Name    string
	Email   string
	Message string
}

// ContactSite relays a message to the site administrator.
func (s *ContactService) ContactSite(ctx context.Context, input ContactInput) error {
	if strings.TrimSpace(input.Message) == "" {
		return ErrMessageRequired
	}

	s.mailer.DispatchContactForm(input.Name, input.Email, input.Message)
	s.logger.Info().Str("from", input.Email).Msg("contact form relayed")
	return nil
}

// ContactAuthor relays a reader message to a post author, addressed by the
// author's username.
func (s *ContactService) ContactAuthor(ctx context.Context, authorUsername string, input ContactInput) error {
	if strings.TrimSpace(input.Message) == "" {
		return ErrMessageRequired
	}

	author, err := s.userRepo.GetByUsername(ctx, strings.ToLower(authorUsername))
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return domain.ErrUserNotFound
		}
		s.logger.Error().Err(err).Str("username", authorUsername).Msg("failed to load author for contact")
		return fmt.Errorf("%w: %v", ErrInternalError, err)
	}

	s.mailer.DispatchAuthorContact(author.Email, input.Name, input.Email, input.Message)
	s.logger.Info().Str("from", input.Email).Str("to_username", author.Username).Msg("author contact relayed")
	return nil
}
