package auth

import (
	"context"

	"github.com/prn-tf/bronte-blog/internal/domain"
)

// Context keys are unexported struct types so no other package can collide
// with them.
type (
	userIDCtxKey  struct{}
	profileCtxKey struct{}
	blogCtxKey    struct{}
)

// WithUserID returns a context carrying the authenticated user's ID.
func WithUserID(ctx context.Context, userID int64) context.Context {
	return context.WithValue(ctx, userIDCtxKey{}, userID)
}

// UserIDFromContext retrieves the authenticated user's ID.
func UserIDFromContext(ctx context.Context) (int64, bool) {
	id, ok := ctx.Value(userIDCtxKey{}).(int64)
	return id, ok
}

// WithProfile returns a context carrying the authenticated user's record.
func WithProfile(ctx context.Context, user *domain.User) context.Context {
	return context.WithValue(ctx, profileCtxKey{}, user)
}

// ProfileFromContext retrieves the authenticated user's record.
func ProfileFromContext(ctx context.Context) (*domain.User, bool) {
	user, ok := ctx.Value(profileCtxKey{}).(*domain.User)
	return user, ok
}

// WithBlog returns a context carrying the blog post resolved from the URL.
func WithBlog(ctx context.Context, blog *domain.Blog) context.Context {
	return context.WithValue(ctx, blogCtxKey{}, blog)
}

// BlogFromContext retrieves the blog post resolved from the URL.
func BlogFromContext(ctx context.Context) (*domain.Blog, bool) {
	blog, ok := ctx.Value(blogCtxKey{}).(*domain.Blog)
	return blog, ok
}
