// Package repository defines data access interfaces for the Bronte blog
// platform. These interfaces abstract database operations, allowing for
// different implementations (PostgreSQL, SQLite, in-memory for testing)
// while keeping the service layer clean.
package repository

import (
	"context"

	"github.com/prn-tf/bronte-blog/internal/domain"
)

// =============================================================================
// User Repository
// =============================================================================

// UserRepository defines the interface for user data access.
type UserRepository interface {
	// Create creates a new user and fills in the generated ID.
	Create(ctx context.Context, user *domain.User) error

	// GetByID retrieves a user by ID.
	GetByID(ctx context.Context, id int64) (*domain.User, error)

	// GetByUsername retrieves a user by username.
	GetByUsername(ctx context.Context, username string) (*domain.User, error)

	// GetByEmail retrieves a user by email.
	GetByEmail(ctx context.Context, email string) (*domain.User, error)

	// Update updates an existing user.
	Update(ctx context.Context, user *domain.User) error

	// ExistsByUsername checks if a user with the given username exists.
	ExistsByUsername(ctx context.Context, username string) (bool, error)

	// ExistsByEmail checks if a user with the given email exists.
	ExistsByEmail(ctx context.Context, email string) (bool, error)

	// SetResetToken stores the outstanding password reset token for a user,
	// replacing any previous one.
	SetResetToken(ctx context.Context, userID int64, token string) error

	// ConsumeResetToken atomically replaces the credential of the user whose
	// stored reset token equals token, clears the token and clears the
	// federated flag (the account now holds a password credential). Returns
	// domain.ErrResetTokenMismatch if no user holds that exact token -
	// either it was never issued, or it was already consumed.
	ConsumeResetToken(ctx context.Context, token, newSalt, newDigest string) error

	// List returns all users with pagination.
	List(ctx context.Context, opts ListOptions) (*ListResult[domain.User], error)
}

// =============================================================================
// Blog Repository
// =============================================================================

// BlogRepository defines the interface for blog post data access.
type BlogRepository interface {
	// Create creates a new blog post with its category and tag associations.
	Create(ctx context.Context, blog *domain.Blog, categoryIDs, tagIDs []int64) error

	// GetBySlug retrieves a blog post by slug, with author, categories and
	// tags populated. The photo blob is not loaded.
	GetBySlug(ctx context.Context, slug string) (*domain.Blog, error)

	// GetPhotoBySlug retrieves only the photo blob and content type for a post.
	GetPhotoBySlug(ctx context.Context, slug string) ([]byte, string, error)

	// List returns all blog posts, newest first, without bodies or photos.
	List(ctx context.Context) ([]*domain.Blog, error)

	// ListPaginated returns a page of blog posts, newest first, along with
	// the total count.
	ListPaginated(ctx context.Context, opts ListOptions) (*ListResult[domain.Blog], error)

	// ListByAuthor returns all posts by the given user, newest first.
	ListByAuthor(ctx context.Context, userID int64) ([]*domain.Blog, error)

	// ListByCategory returns all posts in the given category, newest first.
	ListByCategory(ctx context.Context, categoryID int64) ([]*domain.Blog, error)

	// ListByTag returns all posts carrying the given tag, newest first.
	ListByTag(ctx context.Context, tagID int64) ([]*domain.Blog, error)

	// ListRelated returns up to limit posts that share a category with the
	// given post, excluding the post itself.
	ListRelated(ctx context.Context, blogID int64, categoryIDs []int64, limit int) ([]*domain.Blog, error)

	// Search returns posts whose title or body matches the query.
	Search(ctx context.Context, query string) ([]*domain.Blog, error)

	// Update updates an existing post and replaces its category and tag
	// associations.
	Update(ctx context.Context, blog *domain.Blog, categoryIDs, tagIDs []int64) error

	// DeleteBySlug deletes a post by slug.
	DeleteBySlug(ctx context.Context, slug string) error
}

// =============================================================================
// Taxonomy Repositories
// =============================================================================

// CategoryRepository defines the interface for category data access.
type CategoryRepository interface {
	// Create creates a new category and fills in the generated ID.
	Create(ctx context.Context, category *domain.Category) error

	// GetBySlug retrieves a category by slug.
	GetBySlug(ctx context.Context, slug string) (*domain.Category, error)

	// GetByIDs retrieves categories by their IDs.
	GetByIDs(ctx context.Context, ids []int64) ([]*domain.Category, error)

	// List returns all categories, newest first.
	List(ctx context.Context) ([]*domain.Category, error)

	// DeleteBySlug deletes a category by slug.
	DeleteBySlug(ctx context.Context, slug string) error
}

// TagRepository defines the interface for tag data access.
type TagRepository interface {
	// Create creates a new tag and fills in the generated ID.
	Create(ctx context.Context, tag *domain.Tag) error

	// GetBySlug retrieves a tag by slug.
	GetBySlug(ctx context.Context, slug string) (*domain.Tag, error)

	// GetByIDs retrieves tags by their IDs.
	GetByIDs(ctx context.Context, ids []int64) ([]*domain.Tag, error)

	// List returns all tags, newest first.
	List(ctx context.Context) ([]*domain.Tag, error)

	// DeleteBySlug deletes a tag by slug.
	DeleteBySlug(ctx context.Context, slug string) error
}

// =============================================================================
// Common Types
// =============================================================================

// ListOptions contains common pagination options.
type ListOptions struct {
	// Offset is the number of records to skip.
	Offset int

	// Limit is the maximum number of records to return.
	Limit int
}

// ListResult is a generic paginated list result.
type ListResult[T any] struct {
	// Items is the list of items.
	Items []*T

	// Total is the total number of items (without pagination).
	Total int64

	// Offset is the current offset.
	Offset int

	// Limit is the current limit.
	Limit int
}
