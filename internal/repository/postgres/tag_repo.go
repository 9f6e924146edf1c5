package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/prn-tf/bronte-blog/internal/domain"
	"github.com/prn-tf/bronte-blog/internal/repository"
)

// tagRepository implements repository.TagRepository for PostgreSQL.
type tagRepository struct {
	db *DB
}

// NewTagRepository creates a new PostgreSQL tag repository.
func NewTagRepository(db *DB) repository.TagRepository {
	return &tagRepository{db: db}
}

func scanTag(row pgScanner) (*domain.Tag, error) {
	tag := &domain.Tag{}
	if err := row.Scan(&tag.ID, &tag.Name, &tag.Slug, &tag.CreatedAt, &tag.UpdatedAt); err != nil {
		return nil, err
	}
	return tag, nil
}

// Create creates a new tag.
func (r *tagRepository) Create(ctx context.Context, tag *domain.Tag) error {
	err := r.db.Pool.QueryRow(ctx,
		`INSERT INTO tags (name, slug, created_at, updated_at) VALUES ($1, $2, $3, $4) RETURNING id`,
		tag.Name, tag.Slug, tag.CreatedAt, tag.UpdatedAt,
	).Scan(&tag.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: %s", domain.ErrTagAlreadyExists, tag.Slug)
		}
		return fmt.Errorf("failed to create tag: %w", err)
	}
	return nil
}

// GetBySlug retrieves a tag by slug.
func (r *tagRepository) GetBySlug(ctx context.Context, slug string) (*domain.Tag, error) {
	tag, err := scanTag(r.db.Pool.QueryRow(ctx,
		`SELECT id, name, slug, created_at, updated_at FROM tags WHERE slug = $1`, slug))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
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

	rows, err := r.db.Pool.Query(ctx,
		`SELECT id, name, slug, created_at, updated_at FROM tags WHERE id = ANY($1) ORDER BY name`, ids)
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
	rows, err := r.db.Pool.Query(ctx,
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
	result, err := r.db.Pool.Exec(ctx, `DELETE FROM tags WHERE slug = $1`, slug)
	if err != nil {
		return fmt.Errorf("failed to delete tag: %w", err)
	}

	if result.RowsAffected() == 0 {
		return domain.ErrTagNotFound
	}

	return nil
}

// Ensure tagRepository implements repository.TagRepository.
var _ repository.TagRepository = (*tagRepository)(nil)
