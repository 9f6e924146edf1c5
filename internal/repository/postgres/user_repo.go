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

// userRepository implements repository.UserRepository for PostgreSQL.
type userRepository struct {
	db *DB
}

// NewUserRepository creates a new PostgreSQL user repository.
func NewUserRepository(db *DB) repository.UserRepository {
	return &userRepository{db: db}
}

const userColumns = `id, username, name, email, profile, hashed_password, salt, about, role,
	photo, photo_content_type, reset_password_link, federated, created_at, updated_at`

// pgScanner abstracts pgx.Row and pgx.Rows for the shared scan helper.
type pgScanner interface {
	Scan(dest ...any) error
}

// scanUser scans a full user row.
func scanUser(row pgScanner) (*domain.User, error) {
	user := &domain.User{}
	var role int
	err := row.Scan(
		&user.ID,
		&user.Username,
		&user.Name,
		&user.Email,
		&user.Profile,
		&user.HashedPassword,
		&user.Salt,
		&user.About,
		&role,
		&user.Photo,
		&user.PhotoContentType,
		&user.ResetPasswordLink,
		&user.Federated,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	user.Role = domain.Role(role)
	return user, nil
}

// Create creates a new user.
func (r *userRepository) Create(ctx context.Context, user *domain.User) error {
	query := `
		INSERT INTO users (username, name, email, profile, hashed_password, salt, about, role,
			photo, photo_content_type, reset_password_link, federated, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		RETURNING id
	`

	err := r.db.Pool.QueryRow(ctx, query,
		user.Username,
		user.Name,
		user.Email,
		user.Profile,
		user.HashedPassword,
		user.Salt,
		user.About,
		int(user.Role),
		user.Photo,
		user.PhotoContentType,
		user.ResetPasswordLink,
		user.Federated,
		user.CreatedAt,
		user.UpdatedAt,
	).Scan(&user.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: username or email already exists", domain.ErrUserAlreadyExists)
		}
		return fmt.Errorf("failed to create user: %w", err)
	}

	return nil
}

// GetByID retrieves a user by ID.
func (r *userRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`

	user, err := scanUser(r.db.Pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user by ID: %w", err)
	}
	return user, nil
}

// GetByUsername retrieves a user by username.
func (r *userRepository) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE username = $1`

	user, err := scanUser(r.db.Pool.QueryRow(ctx, query, username))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user by username: %w", err)
	}
	return user, nil
}

// GetByEmail retrieves a user by email.
func (r *userRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`

	user, err := scanUser(r.db.Pool.QueryRow(ctx, query, email))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}
	return user, nil
}

// Update updates an existing user.
func (r *userRepository) Update(ctx context.Context, user *domain.User) error {
	user.UpdatedAt = time.Now().UTC()

	query := `
		UPDATE users
		SET username = $1, name = $2, email = $3, profile = $4, hashed_password = $5, salt = $6,
			about = $7, role = $8, photo = $9, photo_content_type = $10, reset_password_link = $11,
			federated = $12, updated_at = $13
		WHERE id = $14
	`

	result, err := r.db.Pool.Exec(ctx, query,
		user.Username,
		user.Name,
		user.Email,
		user.Profile,
		user.HashedPassword,
		user.Salt,
		user.About,
		int(user.Role),
		user.Photo,
		user.PhotoContentType,
		user.ResetPasswordLink,
		user.Federated,
		user.UpdatedAt,
		user.ID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: username or email already exists", domain.ErrUserAlreadyExists)
		}
		return fmt.Errorf("failed to update user: %w", err)
	}

	if result.RowsAffected() == 0 {
		return domain.ErrUserNotFound
	}

	return nil
}

// ExistsByUsername checks if a user with the given username exists.
func (r *userRepository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	var exists bool
	err := r.db.Pool.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM users WHERE username = $1)`, username).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check username existence: %w", err)
	}
	return exists, nil
}

// ExistsByEmail checks if a user with the given email exists.
func (r *userRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var exists bool
	err := r.db.Pool.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM users WHERE email = $1)`, email).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check email existence: %w", err)
	}
	return exists, nil
}

// SetResetToken stores the outstanding reset token for a user.
func (r *userRepository) SetResetToken(ctx context.Context, userID int64, token string) error {
	result, err := r.db.Pool.Exec(ctx,
		`UPDATE users SET reset_password_link = $1, updated_at = $2 WHERE id = $3`,
		token, time.Now().UTC(), userID)
	if err != nil {
		return fmt.Errorf("failed to set reset token: %w", err)
	}

	if result.RowsAffected() == 0 {
		return domain.ErrUserNotFound
	}

	return nil
}

// ConsumeResetToken atomically replaces the credential of the user holding
// the given reset token and clears the token. The WHERE clause is the
// single-use guard: two concurrent resets with the same token race on it and
// exactly one sees an affected row. Setting a password also clears the
// federated flag, so the account can password-login from now on.
func (r *userRepository) ConsumeResetToken(ctx context.Context, token, newSalt, newDigest string) error {
	query := `
		UPDATE users
		SET hashed_password = $1, salt = $2, reset_password_link = '', federated = FALSE, updated_at = $3
		WHERE reset_password_link = $4 AND reset_password_link != ''
	`

	result, err := r.db.Pool.Exec(ctx, query, newDigest, newSalt, time.Now().UTC(), token)
	if err != nil {
		return fmt.Errorf("failed to consume reset token: %w", err)
	}

	if result.RowsAffected() == 0 {
		return domain.ErrResetTokenMismatch
	}

	return nil
}

// List returns all users with pagination.
func (r *userRepository) List(ctx context.Context, opts repository.ListOptions) (*repository.ListResult[domain.User], error) {
	var total int64
	if err := r.db.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM users`).Scan(&total); err != nil {
		return nil, fmt.Errorf("failed to count users: %w", err)
	}

	query := `SELECT ` + userColumns + ` FROM users ORDER BY created_at DESC LIMIT $1 OFFSET $2`

	rows, err := r.db.Pool.Query(ctx, query, opts.Limit, opts.Offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	var users []*domain.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating users: %w", err)
	}

	return &repository.ListResult[domain.User]{
		Items:  users,
		Total:  total,
		Offset: opts.Offset,
		Limit:  opts.Limit,
	}, nil
}

// Ensure userRepository implements repository.UserRepository.
var _ repository.UserRepository = (*userRepository)(nil)
