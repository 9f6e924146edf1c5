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

// CategoryService handles category operations.
type CategoryService struct {
	categoryRepo repository.CategoryRepository
	blogRepo     repository.BlogRepository
	logger       zerolog.Logger
}

// NewCategoryService creates a new CategoryService.
func NewCategoryService(
	categoryRepo repository.CategoryRepository,
	blogRepo repository.BlogRepository,
	logger zerolog.Logger,
) *CategoryService {
	return &CategoryService{
		categoryRepo: categoryRepo,
		blogRepo:     blogRepo,
		logger:       logger.With().Str("service", "category").Logger(),
	}
}

// CategoryWithBlogsOutput contains a category and the posts filed under it.
type CategoryWithBlogsOutput struct {
	Category *domain.Category
	Blogs    []*domain.Blog
}

// CreateCategory creates a category, deriving the slug from the name.
func (s *CategoryService) CreateCategory(ctx context.Context, name string) (*domain.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrNameRequired
	}
	if utf8.RuneCountInString(name) > domain.TaxonomyNameMaxLength {
		return nil, fmt.Errorf("name must be at most %d characters", domain.TaxonomyNameMaxLength)
	}

	now := time.Now().UTC()
	category := &domain.Category{
		Name:      name,
		Slug:      Slugify(name),
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.categoryRepo.Create(ctx, category); err != nil {
		if errors.Is(err, domain.ErrCategoryAlreadyExists) {
			return nil, domain.ErrCategoryAlreadyExists
		}
		s.logger.Error().Err(err).Str("slug", category.Slug).Msg("failed to create category")
		return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
	}

	s.logger.Info().Int64("category_id", category.ID).Str("slug", category.Slug).Msg("category created")

	return category, nil
}

// ListCategories returns all categories.
func (s *CategoryService) ListCategories(ctx context.Context) ([]*domain.Category, error) {
	categories, err := s.categoryRepo.List(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to list categories")
		return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
	}
	return categories, nil
}

// GetCategory returns a category and the posts filed under it.
func (s *CategoryService) GetCategory(ctx context.Context, slug string) (*CategoryWithBlogsOutput, error) {
	category, err := s.categoryRepo.GetBySlug(ctx, strings.ToLower(slug))
	if err != nil {
		if errors.Is(err, domain.ErrCategoryNotFound) {
			return nil, domain.ErrCategoryNotFound
		}
		s.logger.Error().Err(err).Str("slug", slug).Msg("failed to get category")
		return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
	}

	blogs, err := s.blogRepo.ListByCategory(ctx, category.ID)
	if err != nil {
		s.logger.Error().Err(err).Str("slug", slug).Msg("failed to list category blogs")
		return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
	}

	return &CategoryWithBlogsOutput{
		Category: category,
		Blogs:    blogs,
	}, nil
}

// DeleteCategory removes a category by slug. Posts keep their other
// categories; the join rows cascade.
func (s *CategoryService) DeleteCategory(ctx context.Context, slug string) error {
	slug = strings.ToLower(slug)
	if err := s.categoryRepo.DeleteBySlug(ctx, slug); err != nil {
		if errors.Is(err, domain.ErrCategoryNotFound) {
			return domain.ErrCategoryNotFound
		}
		s.logger.Error().Err(err).Str("slug", slug).Msg("failed to delete category")
		return fmt.Errorf("%w: %v", ErrInternalError, err)
	}

	s.logger.Info().Str("slug", slug).Msg("category deleted")
	return nil
}
