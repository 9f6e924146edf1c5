package domain

import "time"

// Blog size and validation limits.
const (
	// BlogTitleMinLength is the minimum title length.
	BlogTitleMinLength = 3

	// BlogTitleMaxLength is the maximum title length.
	BlogTitleMaxLength = 160

	// BlogBodyMinLength is the minimum body length.
	BlogBodyMinLength = 200

	// BlogExcerptMaxLength is the maximum excerpt length.
	BlogExcerptMaxLength = 320

	// BlogMetaDescriptionLength is the length of the generated meta description.
	BlogMetaDescriptionLength = 160

	// PhotoMaxBytes is the maximum accepted photo size (1MB).
	PhotoMaxBytes = 1_000_000
)

// Blog represents a published post.
type Blog struct {
	// ID is the unique identifier for the post (auto-generated).
	ID int64 `json:"_id"`

	// Title is the post title (3-160 characters).
	Title string `json:"title"`

	// Slug is the unique, URL-safe identifier derived from the title.
	// It is preserved across updates so existing links stay valid.
	Slug string `json:"slug"`

	// Body is the post content (HTML, at least 200 characters).
	Body string `json:"body,omitempty"`

	// Excerpt is the trimmed preview shown in listings.
	Excerpt string `json:"excerpt,omitempty"`

	// MetaTitle is the SEO page title ("{title} | {site name}").
	MetaTitle string `json:"mtitle,omitempty"`

	// MetaDescription is the SEO description (HTML stripped, first 160 chars).
	MetaDescription string `json:"mdesc,omitempty"`

	// Photo is the optional cover image blob (at most 1MB).
	Photo []byte `json:"-"`

	// PhotoContentType is the MIME type of Photo.
	PhotoContentType string `json:"-"`

	// PostedByID is the ID of the authoring user. Serialized so the owner
	// survives cache round-trips; the ownership guard depends on it.
	PostedByID int64 `json:"postedById"`

	// PostedBy is the author projection, populated on reads.
	PostedBy *Author `json:"postedBy,omitempty"`

	// Categories are the categories the post belongs to (at least one).
	Categories []*Category `json:"categories,omitempty"`

	// Tags are the tags attached to the post (at least one).
	Tags []*Tag `json:"tags,omitempty"`

	// CreatedAt is the timestamp when the post was created.
	CreatedAt time.Time `json:"created"`

	// UpdatedAt is the timestamp when the post was last updated.
	UpdatedAt time.Time `json:"modified"`
}

// CategoryIDs returns the IDs of the associated categories.
func (b *Blog) CategoryIDs() []int64 {
	ids := make([]int64, 0, len(b.Categories))
	for _, c := range b.Categories {
		ids = append(ids, c.ID)
	}
	return ids
}

// OwnedBy reports whether the post was authored by the given user.
func (b *Blog) OwnedBy(userID int64) bool {
	return b.PostedByID == userID
}
