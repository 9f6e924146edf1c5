package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/prn-tf/bronte-blog/internal/domain"
	"github.com/prn-tf/bronte-blog/internal/repository"
)

// blogRepository implements repository.BlogRepository for PostgreSQL.
type blogRepository struct {
	db *DB
}

// NewBlogRepository creates a new PostgreSQL blog repository.
func NewBlogRepository(db *DB) repository.BlogRepository {
	return &blogRepository{db: db}
}

// blogSummaryColumns are the listing columns: everything except the body and
// the photo blob, plus the author projection.
const blogSummaryColumns = `b.id, b.title, b.slug, b.excerpt, b.meta_title, b.meta_description,
	b.posted_by, b.created_at, b.updated_at, u.id, u.username, u.name, u.profile`

// scanBlogSummary scans a listing row with the author join.
func scanBlogSummary(row pgScanner) (*domain.Blog, error) {
	blog := &domain.Blog{PostedBy: &domain.Author{}}
	err := row.Scan(
		&blog.ID,
		&blog.Title,
		&blog.Slug,
		&blog.Excerpt,
		&blog.MetaTitle,
		&blog.MetaDescription,
		&blog.PostedByID,
		&blog.CreatedAt,
		&blog.UpdatedAt,
		&blog.PostedBy.ID,
		&blog.PostedBy.Username,
		&blog.PostedBy.Name,
		&blog.PostedBy.Profile,
	)
	if err != nil {
		return nil, err
	}
	return blog, nil
}

// Create creates a new blog post with its associations in one transaction.
func (r *blogRepository) Create(ctx context.Context, blog *domain.Blog, categoryIDs, tagIDs []int64) error {
	err := r.db.WithTx(ctx, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx, `
			INSERT INTO blogs (title, slug, body, excerpt, meta_title, meta_description,
				photo, photo_content_type, posted_by, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
			RETURNING id
		`,
			blog.Title,
			blog.Slug,
			blog.Body,
			blog.Excerpt,
			blog.MetaTitle,
			blog.MetaDescription,
			blog.Photo,
			blog.PhotoContentType,
			blog.PostedByID,
			blog.CreatedAt,
			blog.UpdatedAt,
		).Scan(&blog.ID)
		if err != nil {
			return err
		}

		return insertAssociations(ctx, tx, blog.ID, categoryIDs, tagIDs)
	})
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: %s", domain.ErrBlogAlreadyExists, blog.Slug)
		}
		return fmt.Errorf("failed to create blog: %w", err)
	}
	return nil
}

// insertAssociations inserts the category and tag join rows for a post.
func insertAssociations(ctx context.Context, tx pgx.Tx, blogID int64, categoryIDs, tagIDs []int64) error {
	for _, cid := range categoryIDs {
		if _, err := tx.Exec(ctx,
			`INSERT INTO blog_categories (blog_id, category_id) VALUES ($1, $2)`, blogID, cid); err != nil {
			return fmt.Errorf("failed to link category %d: %w", cid, err)
		}
	}
	for _, tid := range tagIDs {
		if _, err := tx.Exec(ctx,
			`INSERT INTO blog_tags (blog_id, tag_id) VALUES ($1, $2)`, blogID, tid); err != nil {
			return fmt.Errorf("failed to link tag %d: %w", tid, err)
		}
	}
	return nil
}

// GetBySlug retrieves a full blog post by slug, without the photo blob.
func (r *blogRepository) GetBySlug(ctx context.Context, slug string) (*domain.Blog, error) {
	query := `
		SELECT b.id, b.title, b.slug, b.body, b.excerpt, b.meta_title, b.meta_description,
			b.posted_by, b.created_at, b.updated_at, u.id, u.username, u.name, u.profile
		FROM blogs b
		JOIN users u ON u.id = b.posted_by
		WHERE b.slug = $1
	`

	blog := &domain.Blog{PostedBy: &domain.Author{}}
	err := r.db.Pool.QueryRow(ctx, query, slug).Scan(
		&blog.ID,
		&blog.Title,
		&blog.Slug,
		&blog.Body,
		&blog.Excerpt,
		&blog.MetaTitle,
		&blog.MetaDescription,
		&blog.PostedByID,
		&blog.CreatedAt,
		&blog.UpdatedAt,
		&blog.PostedBy.ID,
		&blog.PostedBy.Username,
		&blog.PostedBy.Name,
		&blog.PostedBy.Profile,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrBlogNotFound
		}
		return nil, fmt.Errorf("failed to get blog by slug: %w", err)
	}

	if err := r.loadTaxonomies(ctx, []*domain.Blog{blog}); err != nil {
		return nil, err
	}

	return blog, nil
}

// GetPhotoBySlug retrieves only the photo blob and content type for a post.
func (r *blogRepository) GetPhotoBySlug(ctx context.Context, slug string) ([]byte, string, error) {
	var photo []byte
	var contentType string
	err := r.db.Pool.QueryRow(ctx,
		`SELECT photo, photo_content_type FROM blogs WHERE slug = $1`, slug).Scan(&photo, &contentType)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, "", domain.ErrBlogNotFound
		}
		return nil, "", fmt.Errorf("failed to get blog photo: %w", err)
	}
	return photo, contentType, nil
}

// queryBlogs runs a summary query and loads taxonomies for the result.
func (r *blogRepository) queryBlogs(ctx context.Context, query string, args ...any) ([]*domain.Blog, error) {
	rows, err := r.db.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list blogs: %w", err)
	}
	defer rows.Close()

	var blogs []*domain.Blog
	for rows.Next() {
		blog, err := scanBlogSummary(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan blog: %w", err)
		}
		blogs = append(blogs, blog)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating blogs: %w", err)
	}

	if err := r.loadTaxonomies(ctx, blogs); err != nil {
		return nil, err
	}

	return blogs, nil
}

// List returns all blog posts, newest first.
func (r *blogRepository) List(ctx context.Context) ([]*domain.Blog, error) {
	query := `
		SELECT ` + blogSummaryColumns + `
		FROM blogs b
		JOIN users u ON u.id = b.posted_by
		ORDER BY b.created_at DESC
	`
	return r.queryBlogs(ctx, query)
}

// ListPaginated returns a page of blog posts, newest first.
func (r *blogRepository) ListPaginated(ctx context.Context, opts repository.ListOptions) (*repository.ListResult[domain.Blog], error) {
	var total int64
	if err := r.db.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM blogs`).Scan(&total); err != nil {
		return nil, fmt.Errorf("failed to count blogs: %w", err)
	}

	query := `
		SELECT ` + blogSummaryColumns + `
		FROM blogs b
		JOIN users u ON u.id = b.posted_by
		ORDER BY b.created_at DESC
		LIMIT $1 OFFSET $2
	`
	blogs, err := r.queryBlogs(ctx, query, opts.Limit, opts.Offset)
	if err != nil {
		return nil, err
	}

	return &repository.ListResult[domain.Blog]{
		Items:  blogs,
		Total:  total,
		Offset: opts.Offset,
		Limit:  opts.Limit,
	}, nil
}

// ListByAuthor returns all posts by the given user, newest first.
func (r *blogRepository) ListByAuthor(ctx context.Context, userID int64) ([]*domain.Blog, error) {
	query := `
		SELECT ` + blogSummaryColumns + `
		FROM blogs b
		JOIN users u ON u.id = b.posted_by
		WHERE b.posted_by = $1
		ORDER BY b.created_at DESC
	`
	return r.queryBlogs(ctx, query, userID)
}

// ListByCategory returns all posts in the given category, newest first.
func (r *blogRepository) ListByCategory(ctx context.Context, categoryID int64) ([]*domain.Blog, error) {
	query := `
		SELECT ` + blogSummaryColumns + `
		FROM blogs b
		JOIN users u ON u.id = b.posted_by
		JOIN blog_categories bc ON bc.blog_id = b.id
		WHERE bc.category_id = $1
		ORDER BY b.created_at DESC
	`
	return r.queryBlogs(ctx, query, categoryID)
}

// ListByTag returns all posts carrying the given tag, newest first.
func (r *blogRepository) ListByTag(ctx context.Context, tagID int64) ([]*domain.Blog, error) {
	query := `
		SELECT ` + blogSummaryColumns + `
		FROM blogs b
		JOIN users u ON u.id = b.posted_by
		JOIN blog_tags bt ON bt.blog_id = b.id
		WHERE bt.tag_id = $1
		ORDER BY b.created_at DESC
	`
	return r.queryBlogs(ctx, query, tagID)
}

// ListRelated returns up to limit posts sharing a category with the given
// post, excluding the post itself.
func (r *blogRepository) ListRelated(ctx context.Context, blogID int64, categoryIDs []int64, limit int) ([]*domain.Blog, error) {
	if len(categoryIDs) == 0 {
		return nil, nil
	}

	query := `
		SELECT DISTINCT ` + blogSummaryColumns + `
		FROM blogs b
		JOIN users u ON u.id = b.posted_by
		JOIN blog_categories bc ON bc.blog_id = b.id
		WHERE bc.category_id = ANY($1) AND b.id != $2
		ORDER BY b.created_at DESC
		LIMIT $3
	`
	return r.queryBlogs(ctx, query, categoryIDs, blogID, limit)
}

// Search returns posts whose title or body matches the query.
func (r *blogRepository) Search(ctx context.Context, search string) ([]*domain.Blog, error) {
	pattern := "%" + search + "%"
	query := `
		SELECT ` + blogSummaryColumns + `
		FROM blogs b
		JOIN users u ON u.id = b.posted_by
		WHERE b.title ILIKE $1 OR b.body ILIKE $1
		ORDER BY b.created_at DESC
	`
	return r.queryBlogs(ctx, query, pattern)
}

// Update updates a post and replaces its associations in one transaction.
// A nil photo leaves the stored photo untouched.
func (r *blogRepository) Update(ctx context.Context, blog *domain.Blog, categoryIDs, tagIDs []int64) error {
	blog.UpdatedAt = time.Now().UTC()

	err := r.db.WithTx(ctx, func(tx pgx.Tx) error {
		var rowsAffected int64
		if blog.Photo != nil {
			result, err := tx.Exec(ctx, `
				UPDATE blogs
				SET title = $1, body = $2, excerpt = $3, meta_title = $4, meta_description = $5,
					photo = $6, photo_content_type = $7, updated_at = $8
				WHERE id = $9
			`,
				blog.Title, blog.Body, blog.Excerpt, blog.MetaTitle, blog.MetaDescription,
				blog.Photo, blog.PhotoContentType, blog.UpdatedAt, blog.ID,
			)
			if err != nil {
				return err
			}
			rowsAffected = result.RowsAffected()
		} else {
			result, err := tx.Exec(ctx, `
				UPDATE blogs
				SET title = $1, body = $2, excerpt = $3, meta_title = $4, meta_description = $5,
					updated_at = $6
				WHERE id = $7
			`,
				blog.Title, blog.Body, blog.Excerpt, blog.MetaTitle, blog.MetaDescription,
				blog.UpdatedAt, blog.ID,
			)
			if err != nil {
				return err
			}
			rowsAffected = result.RowsAffected()
		}

		if rowsAffected == 0 {
			return domain.ErrBlogNotFound
		}

		if _, err := tx.Exec(ctx, `DELETE FROM blog_categories WHERE blog_id = $1`, blog.ID); err != nil {
			return fmt.Errorf("failed to clear categories: %w", err)
		}
		if _, err := tx.Exec(ctx, `DELETE FROM blog_tags WHERE blog_id = $1`, blog.ID); err != nil {
			return fmt.Errorf("failed to clear tags: %w", err)
		}

		return insertAssociations(ctx, tx, blog.ID, categoryIDs, tagIDs)
	})
	if err != nil {
		if errors.Is(err, domain.ErrBlogNotFound) {
			return err
		}
		return fmt.Errorf("failed to update blog: %w", err)
	}
	return nil
}

// DeleteBySlug deletes a post by slug. Join rows cascade.
func (r *blogRepository) DeleteBySlug(ctx context.Context, slug string) error {
	result, err := r.db.Pool.Exec(ctx, `DELETE FROM blogs WHERE slug = $1`, slug)
	if err != nil {
		return fmt.Errorf("failed to delete blog: %w", err)
	}

	if result.RowsAffected() == 0 {
		return domain.ErrBlogNotFound
	}

	return nil
}

// loadTaxonomies populates Categories and Tags for the given posts with two
// batch queries instead of one pair per post.
func (r *blogRepository) loadTaxonomies(ctx context.Context, blogs []*domain.Blog) error {
	if len(blogs) == 0 {
		return nil
	}

	byID := make(map[int64]*domain.Blog, len(blogs))
	ids := make([]int64, 0, len(blogs))
	for _, b := range blogs {
		byID[b.ID] = b
		ids = append(ids, b.ID)
	}

	catQuery := `
		SELECT bc.blog_id, c.id, c.name, c.slug, c.created_at, c.updated_at
		FROM blog_categories bc
		JOIN categories c ON c.id = bc.category_id
		WHERE bc.blog_id = ANY($1)
		ORDER BY c.name
	`
	rows, err := r.db.Pool.Query(ctx, catQuery, ids)
	if err != nil {
		return fmt.Errorf("failed to load categories: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var blogID int64
		cat := &domain.Category{}
		if err := rows.Scan(&blogID, &cat.ID, &cat.Name, &cat.Slug, &cat.CreatedAt, &cat.UpdatedAt); err != nil {
			return fmt.Errorf("failed to scan category: %w", err)
		}
		if b := byID[blogID]; b != nil {
			b.Categories = append(b.Categories, cat)
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("error iterating categories: %w", err)
	}

	tagQuery := `
		SELECT bt.blog_id, t.id, t.name, t.slug, t.created_at, t.updated_at
		FROM blog_tags bt
		JOIN tags t ON t.id = bt.tag_id
		WHERE bt.blog_id = ANY($1)
		ORDER BY t.name
	`
	tagRows, err := r.db.Pool.Query(ctx, tagQuery, ids)
	if err != nil {
		return fmt.Errorf("failed to load tags: %w", err)
	}
	defer tagRows.Close()

	for tagRows.Next() {
		var blogID int64
		tag := &domain.Tag{}
		if err := tagRows.Scan(&blogID, &tag.ID, &tag.Name, &tag.Slug, &tag.CreatedAt, &tag.UpdatedAt); err != nil {
			return fmt.Errorf("failed to scan tag: %w", err)
		}
		if b := byID[blogID]; b != nil {
			b.Tags = append(b.Tags, tag)
		}
	}
	if err := tagRows.Err(); err != nil {
		return fmt.Errorf("error iterating tags: %w", err)
	}

	return nil
}

// Ensure blogRepository implements repository.BlogRepository.
var _ repository.BlogRepository = (*blogRepository)(nil)
