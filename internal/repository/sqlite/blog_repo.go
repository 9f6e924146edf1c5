package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/prn-tf/bronte-blog/internal/domain"
	"github.com/prn-tf/bronte-blog/internal/repository"
)

// blogRepository implements repository.BlogRepository for SQLite.
type blogRepository struct {
	db *DB
}

// NewBlogRepository creates a new SQLite blog repository.
func NewBlogRepository(db *DB) repository.BlogRepository {
	return &blogRepository{db: db}
}

// blogSummaryColumns are the listing columns: everything except the body and
// the photo blob, plus the author projection.
const blogSummaryColumns = `b.id, b.title, b.slug, b.excerpt, b.meta_title, b.meta_description,
	b.posted_by, b.created_at, b.updated_at, u.id, u.username, u.name, u.profile`

// scanBlogSummary scans a listing row with the author join.
func scanBlogSummary(row rowScanner) (*domain.Blog, error) {
	blog := &domain.Blog{PostedBy: &domain.Author{}}
	var createdAt, updatedAt string

	err := row.Scan(
		&blog.ID,
		&blog.Title,
		&blog.Slug,
		&blog.Excerpt,
		&blog.MetaTitle,
		&blog.MetaDescription,
		&blog.PostedByID,
		&createdAt,
		&updatedAt,
		&blog.PostedBy.ID,
		&blog.PostedBy.Username,
		&blog.PostedBy.Name,
		&blog.PostedBy.Profile,
	)
	if err != nil {
		return nil, err
	}

	blog.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	blog.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)

	return blog, nil
}

// Create creates a new blog post with its associations in one transaction.
func (r *blogRepository) Create(ctx context.Context, blog *domain.Blog, categoryIDs, tagIDs []int64) error {
	err := r.db.WithTx(ctx, func(tx *sql.Tx) error {
		result, err := tx.ExecContext(ctx, `
			INSERT INTO blogs (title, slug, body, excerpt, meta_title, meta_description,
				photo, photo_content_type, posted_by, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
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
			blog.CreatedAt.Format(time.RFC3339),
			blog.UpdatedAt.Format(time.RFC3339),
		)
		if err != nil {
			return err
		}

		id, err := result.LastInsertId()
		if err != nil {
			return fmt.Errorf("failed to get last insert ID: %w", err)
		}
		blog.ID = id

		return insertAssociations(ctx, tx, id, categoryIDs, tagIDs)
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
func insertAssociations(ctx context.Context, tx *sql.Tx, blogID int64, categoryIDs, tagIDs []int64) error {
	for _, cid := range categoryIDs {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO blog_categories (blog_id, category_id) VALUES (?, ?)`, blogID, cid); err != nil {
			return fmt.Errorf("failed to link category %d: %w", cid, err)
		}
	}
	for _, tid := range tagIDs {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO blog_tags (blog_id, tag_id) VALUES (?, ?)`, blogID, tid); err != nil {
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
		WHERE b.slug = ?
	`

	blog := &domain.Blog{PostedBy: &domain.Author{}}
	var createdAt, updatedAt string
	err := r.db.QueryRowContext(ctx, query, slug).Scan(
		&blog.ID,
		&blog.Title,
		&blog.Slug,
		&blog.Body,
		&blog.Excerpt,
		&blog.MetaTitle,
		&blog.MetaDescription,
		&blog.PostedByID,
		&createdAt,
		&updatedAt,
		&blog.PostedBy.ID,
		&blog.PostedBy.Username,
		&blog.PostedBy.Name,
		&blog.PostedBy.Profile,
	)
	if err != nil {
		if isNoRows(err) {
			return nil, domain.ErrBlogNotFound
		}
		return nil, fmt.Errorf("failed to get blog by slug: %w", err)
	}

	blog.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	blog.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)

	if err := r.loadTaxonomies(ctx, []*domain.Blog{blog}); err != nil {
		return nil, err
	}

	return blog, nil
}

// GetPhotoBySlug retrieves only the photo blob and content type for a post.
func (r *blogRepository) GetPhotoBySlug(ctx context.Context, slug string) ([]byte, string, error) {
	var photo []byte
	var contentType string
	err := r.db.QueryRowContext(ctx,
		`SELECT photo, photo_content_type FROM blogs WHERE slug = ?`, slug).Scan(&photo, &contentType)
	if err != nil {
		if isNoRows(err) {
			return nil, "", domain.ErrBlogNotFound
		}
		return nil, "", fmt.Errorf("failed to get blog photo: %w", err)
	}
	return photo, contentType, nil
}

// queryBlogs runs a summary query and loads taxonomies for the result.
func (r *blogRepository) queryBlogs(ctx context.Context, query string, args ...interface{}) ([]*domain.Blog, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
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
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM blogs`).Scan(&total); err != nil {
		return nil, fmt.Errorf("failed to count blogs: %w", err)
	}

	query := `
		SELECT ` + blogSummaryColumns + `
		FROM blogs b
		JOIN users u ON u.id = b.posted_by
		ORDER BY b.created_at DESC
		LIMIT ? OFFSET ?
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
		WHERE b.posted_by = ?
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
		WHERE bc.category_id = ?
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
		WHERE bt.tag_id = ?
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
		WHERE bc.category_id IN (` + placeholders(len(categoryIDs)) + `) AND b.id != ?
		ORDER BY b.created_at DESC
		LIMIT ?
	`

	args := make([]interface{}, 0, len(categoryIDs)+2)
	for _, id := range categoryIDs {
		args = append(args, id)
	}
	args = append(args, blogID, limit)

	return r.queryBlogs(ctx, query, args...)
}

// Search returns posts whose title or body matches the query.
func (r *blogRepository) Search(ctx context.Context, search string) ([]*domain.Blog, error) {
	pattern := "%" + search + "%"
	query := `
		SELECT ` + blogSummaryColumns + `
		FROM blogs b
		JOIN users u ON u.id = b.posted_by
		WHERE b.title LIKE ? OR b.body LIKE ?
		ORDER BY b.created_at DESC
	`
	return r.queryBlogs(ctx, query, pattern, pattern)
}

// Update updates a post and replaces its associations in one transaction.
// A nil photo leaves the stored photo untouched.
func (r *blogRepository) Update(ctx context.Context, blog *domain.Blog, categoryIDs, tagIDs []int64) error {
	blog.UpdatedAt = time.Now().UTC()

	err := r.db.WithTx(ctx, func(tx *sql.Tx) error {
		var result sql.Result
		var err error
		if blog.Photo != nil {
			result, err = tx.ExecContext(ctx, `
				UPDATE blogs
				SET title = ?, body = ?, excerpt = ?, meta_title = ?, meta_description = ?,
					photo = ?, photo_content_type = ?, updated_at = ?
				WHERE id = ?
			`,
				blog.Title, blog.Body, blog.Excerpt, blog.MetaTitle, blog.MetaDescription,
				blog.Photo, blog.PhotoContentType, blog.UpdatedAt.Format(time.RFC3339), blog.ID,
			)
		} else {
			result, err = tx.ExecContext(ctx, `
				UPDATE blogs
				SET title = ?, body = ?, excerpt = ?, meta_title = ?, meta_description = ?,
					updated_at = ?
				WHERE id = ?
			`,
				blog.Title, blog.Body, blog.Excerpt, blog.MetaTitle, blog.MetaDescription,
				blog.UpdatedAt.Format(time.RFC3339), blog.ID,
			)
		}
		if err != nil {
			return err
		}

		rowsAffected, _ := result.RowsAffected()
		if rowsAffected == 0 {
			return domain.ErrBlogNotFound
		}

		if _, err := tx.ExecContext(ctx, `DELETE FROM blog_categories WHERE blog_id = ?`, blog.ID); err != nil {
			return fmt.Errorf("failed to clear categories: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM blog_tags WHERE blog_id = ?`, blog.ID); err != nil {
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
	result, err := r.db.ExecContext(ctx, `DELETE FROM blogs WHERE slug = ?`, slug)
	if err != nil {
		return fmt.Errorf("failed to delete blog: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
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
	args := make([]interface{}, 0, len(blogs))
	for _, b := range blogs {
		byID[b.ID] = b
		args = append(args, b.ID)
	}
	in := placeholders(len(blogs))

	catQuery := `
		SELECT bc.blog_id, c.id, c.name, c.slug, c.created_at, c.updated_at
		FROM blog_categories bc
		JOIN categories c ON c.id = bc.category_id
		WHERE bc.blog_id IN (` + in + `)
		ORDER BY c.name
	`
	rows, err := r.db.QueryContext(ctx, catQuery, args...)
	if err != nil {
		return fmt.Errorf("failed to load categories: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var blogID int64
		var createdAt, updatedAt string
		cat := &domain.Category{}
		if err := rows.Scan(&blogID, &cat.ID, &cat.Name, &cat.Slug, &createdAt, &updatedAt); err != nil {
			return fmt.Errorf("failed to scan category: %w", err)
		}
		cat.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		cat.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)
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
		WHERE bt.blog_id IN (` + in + `)
		ORDER BY t.name
	`
	tagRows, err := r.db.QueryContext(ctx, tagQuery, args...)
	if err != nil {
		return fmt.Errorf("failed to load tags: %w", err)
	}
	defer tagRows.Close()

	for tagRows.Next() {
		var blogID int64
		var createdAt, updatedAt string
		tag := &domain.Tag{}
		if err := tagRows.Scan(&blogID, &tag.ID, &tag.Name, &tag.Slug, &createdAt, &updatedAt); err != nil {
			return fmt.Errorf("failed to scan tag: %w", err)
		}
		tag.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		tag.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)
		if b := byID[blogID]; b != nil {
			b.Tags = append(b.Tags, tag)
		}
	}
	if err := tagRows.Err(); err != nil {
		return fmt.Errorf("error iterating tags: %w", err)
	}

	return nil
}

// placeholders returns n comma-separated ? placeholders.
func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}

// Ensure blogRepository implements repository.BlogRepository.
var _ repository.BlogRepository = (*blogRepository)(nil)
