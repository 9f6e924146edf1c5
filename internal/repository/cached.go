package repository

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/prn-tf/bronte-blog/internal/domain"
)

// =============================================================================
// Cached Blog Repository
// =============================================================================

// CachedBlogRepository wraps a BlogRepository with a read-through cache for
// the hot read paths: single posts by slug and the listings. Writes always go
// to the underlying repository and invalidate every blog key, so a stale
// entry can outlive a write by at most one in-flight read.
type CachedBlogRepository struct {
	inner  BlogRepository
	cache  Cache
	ttl    time.Duration
	keys   CacheKey
	logger zerolog.Logger
}

// NewCachedBlogRepository creates a caching decorator around inner.
func NewCachedBlogRepository(inner BlogRepository, cache Cache, ttl time.Duration, logger zerolog.Logger) *CachedBlogRepository {
	return &CachedBlogRepository{
		inner:  inner,
		cache:  cache,
		ttl:    ttl,
		logger: logger.With().Str("component", "blog_cache").Logger(),
	}
}

// getCached loads a cached JSON value into dst, returning false on miss or
// any cache failure. Cache errors degrade to a repository read, never to a
// request failure.
func (r *CachedBlogRepository) getCached(ctx context.Context, key string, dst any) bool {
	data, err := r.cache.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, ErrCacheMiss) {
			r.logger.Warn().Err(err).Str("key", key).Msg("cache read failed")
		}
		return false
	}
	if err := json.Unmarshal(data, dst); err != nil {
		r.logger.Warn().Err(err).Str("key", key).Msg("cache entry corrupt, evicting")
		_ = r.cache.Delete(ctx, key)
		return false
	}
	return true
}

// setCached stores a JSON value, logging and swallowing failures.
func (r *CachedBlogRepository) setCached(ctx context.Context, key string, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		return
	}
	if err := r.cache.Set(ctx, key, data, r.ttl); err != nil {
		r.logger.Warn().Err(err).Str("key", key).Msg("cache write failed")
	}
}

// invalidate drops every blog cache entry.
func (r *CachedBlogRepository) invalidate(ctx context.Context) {
	if err := r.cache.DeleteByPrefix(ctx, r.keys.BlogPrefix()); err != nil {
		r.logger.Warn().Err(err).Msg("cache invalidation failed")
	}
}

// GetBySlug retrieves a blog post by slug, consulting the cache first.
func (r *CachedBlogRepository) GetBySlug(ctx context.Context, slug string) (*domain.Blog, error) {
	key := r.keys.Blog(slug)
	var cached domain.Blog
	if r.getCached(ctx, key, &cached) {
		return &cached, nil
	}

	blog, err := r.inner.GetBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	r.setCached(ctx, key, blog)
	return blog, nil
}

// List returns all posts, consulting the cache first.
func (r *CachedBlogRepository) List(ctx context.Context) ([]*domain.Blog, error) {
	key := r.keys.BlogList()
	var cached []*domain.Blog
	if r.getCached(ctx, key, &cached) {
		return cached, nil
	}

	blogs, err := r.inner.List(ctx)
	if err != nil {
		return nil, err
	}
	r.setCached(ctx, key, blogs)
	return blogs, nil
}

// ListPaginated returns a page of posts, consulting the cache first.
func (r *CachedBlogRepository) ListPaginated(ctx context.Context, opts ListOptions) (*ListResult[domain.Blog], error) {
	key := r.keys.BlogPage(opts.Offset, opts.Limit)
	var cached ListResult[domain.Blog]
	if r.getCached(ctx, key, &cached) {
		return &cached, nil
	}

	page, err := r.inner.ListPaginated(ctx, opts)
	if err != nil {
		return nil, err
	}
	r.setCached(ctx, key, page)
	return page, nil
}

// GetPhotoBySlug passes through; photo blobs are too large to cache.
func (r *CachedBlogRepository) GetPhotoBySlug(ctx context.Context, slug string) ([]byte, string, error) {
	return r.inner.GetPhotoBySlug(ctx, slug)
}

// ListByAuthor passes through to the underlying repository.
func (r *CachedBlogRepository) ListByAuthor(ctx context.Context, userID int64) ([]*domain.Blog, error) {
	return r.inner.ListByAuthor(ctx, userID)
}

// ListByCategory passes through to the underlying repository.
func (r *CachedBlogRepository) ListByCategory(ctx context.Context, categoryID int64) ([]*domain.Blog, error) {
	return r.inner.ListByCategory(ctx, categoryID)
}

// ListByTag passes through to the underlying repository.
func (r *CachedBlogRepository) ListByTag(ctx context.Context, tagID int64) ([]*domain.Blog, error) {
	return r.inner.ListByTag(ctx, tagID)
}

// ListRelated passes through to the underlying repository.
func (r *CachedBlogRepository) ListRelated(ctx context.Context, blogID int64, categoryIDs []int64, limit int) ([]*domain.Blog, error) {
	return r.inner.ListRelated(ctx, blogID, categoryIDs, limit)
}

// Search passes through; query shapes are too varied to cache usefully.
func (r *CachedBlogRepository) Search(ctx context.Context, query string) ([]*domain.Blog, error) {
	return r.inner.Search(ctx, query)
}

// Create writes through and invalidates the blog cache.
func (r *CachedBlogRepository) Create(ctx context.Context, blog *domain.Blog, categoryIDs, tagIDs []int64) error {
	if err := r.inner.Create(ctx, blog, categoryIDs, tagIDs); err != nil {
		return err
	}
	r.invalidate(ctx)
	return nil
}

// Update writes through and invalidates the blog cache.
func (r *CachedBlogRepository) Update(ctx context.Context, blog *domain.Blog, categoryIDs, tagIDs []int64) error {
	if err := r.inner.Update(ctx, blog, categoryIDs, tagIDs); err != nil {
		return err
	}
	r.invalidate(ctx)
	return nil
}

// DeleteBySlug writes through and invalidates the blog cache.
func (r *CachedBlogRepository) DeleteBySlug(ctx context.Context, slug string) error {
	if err := r.inner.DeleteBySlug(ctx, slug); err != nil {
		return err
	}
	r.invalidate(ctx)
	return nil
}

// Ensure CachedBlogRepository implements BlogRepository.
var _ BlogRepository = (*CachedBlogRepository)(nil)
