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

// DefaultRelatedLimit is the number of related posts returned when the
// client doesn't ask for a specific count.
const DefaultRelatedLimit = 3

// BlogService handles blog post operations.
type BlogService struct {
	blogRepo     repository.BlogRepository
	categoryRepo repository.CategoryRepository
	tagRepo      repository.TagRepository
	siteName     string
	logger       zerolog.Logger
}

// NewBlogService creates a new BlogService.
func NewBlogService(
	blogRepo repository.BlogRepository,
	categoryRepo repository.CategoryRepository,
	tagRepo repository.TagRepository,
	siteName string,
	logger zerolog.Logger,
) *BlogService {
	return &BlogService{
		blogRepo:     blogRepo,
		categoryRepo: categoryRepo,
		tagRepo:      tagRepo,
		siteName:     siteName,
		logger:       logger.With().Str("service", "blog").Logger(),
	}
}

// =============================================================================
// Input/Output Structs
// =============================================================================

// CreateBlogInput contains the data needed to publish a post.
type CreateBlogInput struct {
	AuthorID         int64
	Title            string
	Body             string
	CategoryIDs      []int64
	TagIDs           []int64
	Photo            []byte
	PhotoContentType string
}

// UpdateBlogInput contains the data needed to edit a post.
// The slug identifies the post and is preserved across the update so
// existing links stay valid. A nil Photo leaves the stored photo untouched.
type UpdateBlogInput struct {
	Slug             string
	Title            string
	Body             string
	CategoryIDs      []int64
	TagIDs           []int64
	Photo            []byte
	PhotoContentType string
}

// ListBlogsInput contains pagination parameters for the combined listing.
type ListBlogsInput struct {
	Limit int
	Skip  int
}

// ListBlogsOutput is the combined listing: a page of posts plus the full
// category and tag indexes, which clients render as filter menus.
type ListBlogsOutput struct {
	Blogs      []*domain.Blog
	Categories []*domain.Category
	Tags       []*domain.Tag
	Size       int64
}

// RelatedBlogsInput contains the parameters for a related-posts lookup.
type RelatedBlogsInput struct {
	Slug  string
	Limit int
}

// =============================================================================
// Service Methods
// =============================================================================

// validateContent checks the title, body, associations and photo limits
// shared by create and update.
func (s *BlogService) validateContent(title, body string, categoryIDs, tagIDs []int64, photo []byte) error {
	titleLen := utf8.RuneCountInString(strings.TrimSpace(title))
	if titleLen < domain.BlogTitleMinLength || titleLen > domain.BlogTitleMaxLength {
		return ErrTitleLength
	}
	if utf8.RuneCountInString(body) < domain.BlogBodyMinLength {
		return ErrBodyTooShort
	}
	if len(categoryIDs) == 0 {
		return ErrNoCategories
	}
	if len(tagIDs) == 0 {
		return ErrNoTags
	}
	if len(photo) > domain.PhotoMaxBytes {
		return ErrPhotoTooLarge
	}
	return nil
}

// resolveTaxonomies loads and verifies the referenced categories and tags.
func (s *BlogService) resolveTaxonomies(ctx context.Context, categoryIDs, tagIDs []int64) ([]*domain.Category, []*domain.Tag, error) {
	categories, err := s.categoryRepo.GetByIDs(ctx, categoryIDs)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to load categories")
		return nil, nil, fmt.Errorf("%w: %v", ErrInternalError, err)
	}
	if len(categories) != len(categoryIDs) {
		return nil, nil, domain.ErrCategoryNotFound
	}

	tags, err := s.tagRepo.GetByIDs(ctx, tagIDs)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to load tags")
		return nil, nil, fmt.Errorf("%w: %v", ErrInternalError, err)
	}
	if len(tags) != len(tagIDs) {
		return nil, nil, domain.ErrTagNotFound
	}

	return categories, tags, nil
}

// derive fills the generated fields: excerpt, meta title and meta
// description, all recomputed from the current title and body.
func (s *BlogService) derive(blog *domain.Blog) {
	blog.Excerpt = SmartTrim(blog.Body, domain.BlogExcerptMaxLength, " ", " ...")
	blog.MetaTitle = fmt.Sprintf("%s | %s", blog.Title, s.siteName)
	blog.MetaDescription = Truncate(StripHTML(blog.Body), domain.BlogMetaDescriptionLength)
}

// CreateBlog validates and publishes a new post. The slug is derived from
// the title once, at creation.
func (s *BlogService) CreateBlog(ctx context.Context, input CreateBlogInput) (*domain.Blog, error) {
	if err := s.validateContent(input.Title, input.Body, input.CategoryIDs, input.TagIDs, input.Photo); err != nil {
		return nil, err
	}

	categories, tags, err := s.resolveTaxonomies(ctx, input.CategoryIDs, input.TagIDs)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	blog := &domain.Blog{
		Title:            strings.TrimSpace(input.Title),
		Slug:             Slugify(input.Title),
		Body:             input.Body,
		Photo:            input.Photo,
		PhotoContentType: input.PhotoContentType,
		PostedByID:       input.AuthorID,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	s.derive(blog)

	if err := s.blogRepo.Create(ctx, blog, input.CategoryIDs, input.TagIDs); err != nil {
		if errors.Is(err, domain.ErrBlogAlreadyExists) {
			return nil, domain.ErrBlogAlreadyExists
		}
		s.logger.Error().Err(err).Str("slug", blog.Slug).Msg("failed to create blog")
		return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
	}

	blog.Categories = categories
	blog.Tags = tags
	blog.Photo = nil
	blog.PhotoContentType = ""

	s.logger.Info().Int64("blog_id", blog.ID).Str("slug", blog.Slug).Int64("author_id", input.AuthorID).Msg("blog published")

	return blog, nil
}

// GetBlog retrieves a post by slug.
func (s *BlogService) GetBlog(ctx context.Context, slug string) (*domain.Blog, error) {
	blog, err := s.blogRepo.GetBySlug(ctx, strings.ToLower(slug))
	if err != nil {
		if errors.Is(err, domain.ErrBlogNotFound) {
			return nil, domain.ErrBlogNotFound
		}
		s.logger.Error().Err(err).Str("slug", slug).Msg("failed to get blog")
		return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
	}
	return blog, nil
}

// GetPhoto retrieves a post's cover photo blob and content type.
func (s *BlogService) GetPhoto(ctx context.Context, slug string) ([]byte, string, error) {
	photo, contentType, err := s.blogRepo.GetPhotoBySlug(ctx, strings.ToLower(slug))
	if err != nil {
		if errors.Is(err, domain.ErrBlogNotFound) {
			return nil, "", domain.ErrBlogNotFound
		}
		s.logger.Error().Err(err).Str("slug", slug).Msg("failed to get blog photo")
		return nil, "", fmt.Errorf("%w: %v", ErrInternalError, err)
	}
	if len(photo) == 0 {
		return nil, "", domain.ErrBlogNotFound
	}
	return photo, contentType, nil
}

// ListBlogs returns all posts, newest first.
func (s *BlogService) ListBlogs(ctx context.Context) ([]*domain.Blog, error) {
	blogs, err := s.blogRepo.List(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to list blogs")
		return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
	}
	return blogs, nil
}

// ListBlogsWithTaxonomies returns a page of posts together with every
// category and tag.
func (s *BlogService) ListBlogsWithTaxonomies(ctx context.Context, input ListBlogsInput) (*ListBlogsOutput, error) {
	limit := input.Limit
	if limit <= 0 {
		limit = 10
	}

	page, err := s.blogRepo.ListPaginated(ctx, repository.ListOptions{Offset: input.Skip, Limit: limit})
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to list blogs")
		return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
	}

	categories, err := s.categoryRepo.List(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to list categories")
		return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
	}

	tags, err := s.tagRepo.List(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to list tags")
		return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
	}

	return &ListBlogsOutput{
		Blogs:      page.Items,
		Categories: categories,
		Tags:       tags,
		Size:       page.Total,
	}, nil
}

// ListRelated returns posts sharing a category with the named post.
func (s *BlogService) ListRelated(ctx context.Context, input RelatedBlogsInput) ([]*domain.Blog, error) {
	limit := input.Limit
	if limit <= 0 {
		limit = DefaultRelatedLimit
	}

	blog, err := s.GetBlog(ctx, input.Slug)
	if err != nil {
		return nil, err
	}

	related, err := s.blogRepo.ListRelated(ctx, blog.ID, blog.CategoryIDs(), limit)
	if err != nil {
		s.logger.Error().Err(err).Str("slug", input.Slug).Msg("failed to list related blogs")
		return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
	}
	return related, nil
}

// Search returns posts whose title or body matches the query.
// An empty query returns no results.
func (s *BlogService) Search(ctx context.Context, query string) ([]*domain.Blog, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, nil
	}

	blogs, err := s.blogRepo.Search(ctx, query)
	if err != nil {
		s.logger.Error().Err(err).Str("query", query).Msg("search failed")
		return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
	}
	return blogs, nil
}

// ListByCategory returns the posts in a category.
func (s *BlogService) ListByCategory(ctx context.Context, categoryID int64) ([]*domain.Blog, error) {
	blogs, err := s.blogRepo.ListByCategory(ctx, categoryID)
	if err != nil {
		s.logger.Error().Err(err).Int64("category_id", categoryID).Msg("failed to list blogs by category")
		return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
	}
	return blogs, nil
}

// ListByTag returns the posts carrying a tag.
func (s *BlogService) ListByTag(ctx context.Context, tagID int64) ([]*domain.Blog, error) {
	blogs, err := s.blogRepo.ListByTag(ctx, tagID)
	if err != nil {
		s.logger.Error().Err(err).Int64("tag_id", tagID).Msg("failed to list blogs by tag")
		return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
	}
	return blogs, nil
}

// UpdateBlog validates and applies an edit. The slug never changes; the
// generated fields are recomputed from the new title and body.
func (s *BlogService) UpdateBlog(ctx context.Context, input UpdateBlogInput) (*domain.Blog, error) {
	if err := s.validateContent(input.Title, input.Body, input.CategoryIDs, input.TagIDs, input.Photo); err != nil {
		return nil, err
	}

	categories, tags, err := s.resolveTaxonomies(ctx, input.CategoryIDs, input.TagIDs)
	if err != nil {
		return nil, err
	}

	blog, err := s.GetBlog(ctx, input.Slug)
	if err != nil {
		return nil, err
	}

	blog.Title = strings.TrimSpace(input.Title)
	blog.Body = input.Body
	blog.Photo = input.Photo
	if input.Photo != nil {
		blog.PhotoContentType = input.PhotoContentType
	}
	s.derive(blog)

	if err := s.blogRepo.Update(ctx, blog, input.CategoryIDs, input.TagIDs); err != nil {
		if errors.Is(err, domain.ErrBlogNotFound) {
			return nil, domain.ErrBlogNotFound
		}
		s.logger.Error().Err(err).Str("slug", blog.Slug).Msg("failed to update blog")
		return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
	}

	blog.Categories = categories
	blog.Tags = tags
	blog.Photo = nil

	s.logger.Info().Int64("blog_id", blog.ID).Str("slug", blog.Slug).Msg("blog updated")

	return blog, nil
}

// DeleteBlog removes a post by slug.
func (s *BlogService) DeleteBlog(ctx context.Context, slug string) error {
	slug = strings.ToLower(slug)
	if err := s.blogRepo.DeleteBySlug(ctx, slug); err != nil {
		if errors.Is(err, domain.ErrBlogNotFound) {
			return domain.ErrBlogNotFound
		}
		s.logger.Error().Err(err).Str("slug", slug).Msg("failed to delete blog")
		return fmt.Errorf("%w: %v", ErrInternalError, err)
	}

	s.logger.Info().Str("slug", slug).Msg("blog deleted")
	return nil
}
