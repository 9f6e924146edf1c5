package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/prn-tf/bronte-blog/internal/domain"
	"github.com/prn-tf/bronte-blog/internal/pkg/crypto"
	"github.com/prn-tf/bronte-blog/internal/repository"
)

// UserService handles profile operations.
type UserService struct {
	userRepo repository.UserRepository
	blogRepo repository.BlogRepository
	logger   zerolog.Logger
}

// NewUserService creates a new UserService.
func NewUserService(
	userRepo repository.UserRepository,
	blogRepo repository.BlogRepository,
	logger zerolog.Logger,
) *UserService {
	return &UserService{
		userRepo: userRepo,
		blogRepo: blogRepo,
		logger:   logger.With().Str("service", "user").Logger(),
	}
}

// =============================================================================
// Input/Output Structs
// =============================================================================

// PublicProfileOutput contains a public profile and the user's posts.
type PublicProfileOutput struct {
	User  *domain.User
	Blogs []*domain.Blog
}

// UpdateProfileInput contains the editable profile fields.
// Email and role are immutable through this path. A nil Password leaves the
// credential untouched; a nil Photo leaves the stored photo untouched.
type UpdateProfileInput struct {
	UserID           int64
	Name             string
	About            string
	Password         *string
	Photo            []byte
	PhotoContentType string
}

// =============================================================================
// Service Methods
// =============================================================================

// GetPrivateProfile returns the caller's own profile.
func (s *UserService) GetPrivateProfile(ctx context.Context, userID int64) (*domain.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrUserNotFound
		}
		s.logger.Error().Err(err).Int64("user_id", userID).Msg("failed to load profile")
		return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
	}
	return user.PublicView(), nil
}

// GetPublicProfile returns a user's public profile and their posts.
func (s *UserService) GetPublicProfile(ctx context.Context, username string) (*PublicProfileOutput, error) {
	user, err := s.userRepo.GetByUsername(ctx, strings.ToLower(username))
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrUserNotFound
		}
		s.logger.Error().Err(err).Str("username", username).Msg("failed to load public profile")
		return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
	}

	blogs, err := s.blogRepo.ListByAuthor(ctx, user.ID)
	if err != nil {
		s.logger.Error().Err(err).Int64("user_id", user.ID).Msg("failed to list user blogs")
		return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
	}

	return &PublicProfileOutput{
		User:  user.PublicView(),
		Blogs: blogs,
	}, nil
}

// UpdateProfile applies the editable profile fields. Email and role never
// change here regardless of what the client sends.
func (s *UserService) UpdateProfile(ctx context.Context, input UpdateProfileInput) (*domain.User, error) {
	if strings.TrimSpace(input.Name) == "" {
		return nil, ErrNameRequired
	}
	if len(input.Photo) > domain.PhotoMaxBytes {
		return nil, ErrPhotoTooLarge
	}

	user, err := s.userRepo.GetByID(ctx, input.UserID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrUserNotFound
		}
		s.logger.Error().Err(err).Int64("user_id", input.UserID).Msg("failed to load user for update")
		return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
	}

	user.Name = input.Name
	user.About = input.About

	if input.Password != nil {
		if len(*input.Password) < 6 {
			return nil, ErrPasswordTooShort
		}
		cred, err := crypto.CreateCredential(*input.Password)
		if err != nil {
			s.logger.Error().Err(err).Msg("failed to derive credential")
			return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
		}
		user.Salt = cred.Salt
		user.HashedPassword = cred.Digest
		user.Federated = false
	}

	if input.Photo != nil {
		user.Photo = input.Photo
		user.PhotoContentType = input.PhotoContentType
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		s.logger.Error().Err(err).Int64("user_id", user.ID).Msg("failed to update profile")
		return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
	}

	s.logger.Info().Int64("user_id", user.ID).Msg("profile updated")

	return user.PublicView(), nil
}

// GetPhoto returns a user's profile photo blob and content type.
func (s *UserService) GetPhoto(ctx context.Context, username string) ([]byte, string, error) {
	user, err := s.userRepo.GetByUsername(ctx, strings.ToLower(username))
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, "", domain.ErrUserNotFound
		}
		s.logger.Error().Err(err).Str("username", username).Msg("failed to load user photo")
		return nil, "", fmt.Errorf("%w: %v", ErrInternalError, err)
	}

	if len(user.Photo) == 0 {
		return nil, "", domain.ErrUserNotFound
	}

	return user.Photo, user.PhotoContentType, nil
}

// ListUsers returns all users with pagination. Admin tooling only.
func (s *UserService) ListUsers(ctx context.Context, opts repository.ListOptions) (*repository.ListResult[domain.User], error) {
	result, err := s.userRepo.List(ctx, opts)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to list users")
		return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
	}

	for i, u := range result.Items {
		result.Items[i] = u.PublicView()
	}

	return result, nil
}
