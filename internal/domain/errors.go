package domain

import "errors"

// Domain errors shared across repositories and services.
var (
	// User errors
	ErrUserNotFound      = errors.New("user not found")
	ErrUserAlreadyExists = errors.New("user already exists")
	ErrEmailTaken        = errors.New("email is taken")

	// Reset token errors
	ErrResetTokenMismatch = errors.New("reset token does not match stored value")

	// Blog errors
	ErrBlogNotFound      = errors.New("blog not found")
	ErrBlogAlreadyExists = errors.New("blog with this slug already exists")

	// Taxonomy errors
	ErrCategoryNotFound      = errors.New("category not found")
	ErrCategoryAlreadyExists = errors.New("category already exists")
	ErrTagNotFound           = errors.New("tag not found")
	ErrTagAlreadyExists      = errors.New("tag already exists")
)
