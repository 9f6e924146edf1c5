package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog"

	"github.com/prn-tf/bronte-blog/internal/domain"
	"github.com/prn-tf/bronte-blog/internal/repository"
)

// TagService handles tag operations.
type TagService struct {
	tagRepo  repository.TagRepository
	blogRepo repository.BlogRepository
	logger   zerolog.Logger
}

// NewTagService creates a new TagService.
func NewTagService(
	tagRepo repository.TagRepository,
	blogRepo repository.BlogRepository,
	logger zerolog.Logger,
) *TagService {
	return &TagService{
		tagRepo:  tagRepo,
		blogRepo: blogRepo,
		logger:   logger.With().Str("service", "tag").Logger(),
	}
}

// TagWithBlogsOutput contains a tag and the posts carrying it.
type TagWithBlogsOutput struct {
	Tag   *domain.Tag
	Blogs []*domain.Blog
}

// CreateTag creates a tag, deriving the slug from the name.
func (s *TagService) CreateTag(ctx context.Context, name string) (*domain.Tag, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrNameRequired
	}
	if utf8.RuneCountInString(name) > domain.TaxonomyNameMaxLength {
		return nil, fmt.Errorf("name must be at most %d characters", domain.TaxonomyNameMaxLength)
	}

	now := time.Now().UTC()
	tag := &domain.Tag{
		Name:      name,
		Slug:      Slugify(name),
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.tagRepo.Create(ctx, tag); err != nil {
		if errors.Is(err, domain.ErrTagAlreadyExists) {
			return nil, domain.ErrTagAlreadyExists
		}
		s.logger.Error().Err(err).Str("slug", tag.Slug).Msg("failed to create tag")
		return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
	}

	s.logger.Info().Int64("tag_id", tag.ID).Str("slug", tag.Slug).Msg("tag created")

	return tag, nil
}

// ListTags returns all tags.
func (s *TagService) ListTags(ctx context.Context) ([]*domain.Tag, error) {
	tags, err := s.tagRepo.List(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to list tags")
		return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
	}
	return tags, nil
}

// GetTag returns a tag and the posts carrying it.
func (s *TagService) GetTag(ctx context.Context, slug string) (*TagWithBlogsOutput, error) {
	tag, err := s.tagRepo.GetBySlug(ctx, strings.ToLower(slug))
	if err != nil {
		if errors.Is(err, domain.ErrTagNotFound) {
			return nil, domain.ErrTagNotFound
		}
		s.logger.Error().Err(err).Str("slug", slug).Msg("failed to get tag")
		return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
	}

	blogs, err := s.blogRepo.ListByTag(ctx, tag.ID)
	if err != nil {
		s.logger.Error().Err(err).Str("slug", slug).Msg("failed to list tag blogs")
		return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
	}

	return &TagWithBlogsOutput{
		Tag:   tag,
		Blogs: blogs,
	}, nil
}

// DeleteTag removes a tag by slug. The join rows cascade.
func (s *TagService) DeleteTag(ctx context.Context, slug string) error {
	slug = strings.ToLower(slug)
	if err := s.tagRepo.DeleteBySlug(ctx, slug); err != nil {
		if errors.Is(err, domain.ErrTagNotFound) {
			return domain.ErrTagNotFound
		}
		s.logger.Error().Err(err).Str("slug", slug).Msg("failed to delete tag")
		return fmt.Errorf("%w: %v", ErrInternalError, err)
	}

	s.logger.Info().Str("slug", slug).Msg("tag deleted")
	return nil
}
