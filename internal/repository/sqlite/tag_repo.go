package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/prn-tf/bronte-blog/internal/domain"
	"github.com/prn-tf/bronte-blog/internal/repository"
)

// tagRepository implements repository.TagRepository for SQLite.
type tagRepository struct {
	db *DB
}

// NewTagRepository creates a new SQLite tag repository.
func NewTagRepository(db *DB) repository.TagRepository {
	return &tagRepository{db: db}
}

func scanTag(row rowScanner) (*domain.Tag, error) {
	tag := &domain.Tag{}
	var createdAt, updatedAt string
	if err := row.Scan(&tag.ID, &tag.Name, &tag.Slug, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	tag.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	tag.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)
	return tag, nil
}

// Create creates a new tag.
func (r *tagRepository) Create(ctx context.Context, tag *domain.Tag) error {
	result, err := r.db.ExecContext(ctx,
		`INSERT INTO tags (name, slug, created_at, updated_at) VALUES (?, ?, ?, ?)`,
		tag.Name,
		tag.Slug,
		tag.CreatedAt.Format(time.RFC3339),
		tag.UpdatedAt.Format(time.RFC3339),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: %s", domain.ErrTagAlreadyExists, tag.Slug)
		}
		return fmt.Errorf("failed to create tag: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert ID: %w", err)
	}
	tag.ID = id

	return nil
}

// GetBySlug retrieves a tag by slug.
func (r *tagRepository) GetBySlug(ctx context.Context, slug string) (*domain.Tag, error) {
	tag, err := scanTag(r.db.QueryRowContext(ctx,
		`SELECT id, name, slug, created_at, updated_at FROM tags WHERE slug = ?`, slug))
	if err != nil {
		if isNoRows(err) {
			return nil, domain.ErrTagNotFound
		}
		return nil, fmt.Errorf("failed to get tag by slug: %w", err)
	}
	return tag, nil
}

// GetByIDs retrieves tags by their IDs.
func (r *tagRepository) GetByIDs(ctx context.Context, ids []int64) ([]*domain.Tag, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	args := make([]interface{}, len(ids))
	for i, id := range ids {
		args[i] = id
	}

	query := `SELECT id, name, slug, created_at, updated_at FROM tags
		WHERE id IN (` + placeholders(len(ids)) + `) ORDER BY name`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get tags by IDs: %w", err)
	}
	defer rows.Close()

	var tags []*domain.Tag
	for rows.Next() {
		tag, err := scanTag(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan tag: %w", err)
		}
		tags = append(tags, tag)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating tags: %w", err)
	}
	return tags, nil
}

// List returns all tags, newest first.
func (r *tagRepository) List(ctx context.Context) ([]*domain.Tag, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, slug, created_at, updated_at FROM tags ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list tags: %w", err)
	}
	defer rows.Close()

	var tags []*domain.Tag
	for rows.Next() {
		tag, err := scanTag(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan tag: %w", err)
		}
		tags = append(tags, tag)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating tags: %w", err)
	}
	return tags, nil
}

// DeleteBySlug deletes a tag by slug.
func (r *tagRepository) DeleteBySlug(ctx context.Context, slug string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM tags WHERE slug = ?`, slug)
	if err != nil {
		return fmt.Errorf("failed to delete tag: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return domain.ErrTagNotFound
	}

	return nil
}

// Ensure tagRepository implements repository.TagRepository.
var _ repository.TagRepository = (*tagRepository)(nil)
