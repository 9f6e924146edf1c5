package domain

import "time"

// TaxonomyNameMaxLength is the maximum length for category and tag names.
const TaxonomyNameMaxLength = 50

// Category groups related blog posts.
type Category struct {
	// ID is the unique identifier (auto-generated).
	ID int64 `json:"_id"`

	// Name is the display name (at most 50 characters).
	Name string `json:"name"`

	// Slug is the unique, URL-safe identifier derived from the name.
	Slug string `json:"slug"`

	// CreatedAt is the timestamp when the category was created.
	CreatedAt time.Time `json:"created"`

	// UpdatedAt is the timestamp when the category was last updated.
	UpdatedAt time.Time `json:"modified"`
}

// Tag labels blog posts for discovery.
type Tag struct {
	// ID is the unique identifier (auto-generated).
	ID int64 `json:"_id"`

	// Name is the display name (at most 50 characters).
	Name string `json:"name"`

	// Slug is the unique, URL-safe identifier derived from the name.
	Slug string `json:"slug"`

	// CreatedAt is the timestamp when the tag was created.
	CreatedAt time.Time `json:"created"`

	// UpdatedAt is the timestamp when the tag was last updated.
	UpdatedAt time.Time `json:"modified"`
}
