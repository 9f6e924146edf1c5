// Package auth provides the session-token middleware chain for the blog
// platform: signin verification, profile resolution, role checks and
// per-post ownership checks.
package auth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/prn-tf/bronte-blog/internal/domain"
	"github.com/prn-tf/bronte-blog/internal/token"
)

// UserStore is the slice of the user repository the middleware needs.
type UserStore interface {
	GetByID(ctx context.Context, id int64) (*domain.User, error)
}

// BlogStore is the slice of the blog repository the middleware needs.
type BlogStore interface {
	GetBySlug(ctx context.Context, slug string) (*domain.Blog, error)
}

// Middleware holds the dependencies for the auth middleware chain.
type Middleware struct {
	sessions   *token.Issuer
	users      UserStore
	blogs      BlogStore
	cookieName string
	logger     zerolog.Logger
}

// NewMiddleware creates the middleware chain.
func NewMiddleware(sessions *token.Issuer, users UserStore, blogs BlogStore, cookieName string, logger zerolog.Logger) *Middleware {
	return &Middleware{
		sessions:   sessions,
		users:      users,
		blogs:      blogs,
		cookieName: cookieName,
		logger:     logger.With().Str("component", "auth").Logger(),
	}
}

// extractToken pulls the session token from the cookie or, failing that,
// a bearer Authorization header.
func (m *Middleware) extractToken(r *http.Request) string {
	if cookie, err := r.Cookie(m.cookieName); err == nil && cookie.Value != "" {
		return cookie.Value
	}

	header := r.Header.Get("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}

	return ""
}

// RequireSignin verifies the session token and stores the caller's user ID
// in the request context. Requests without a valid token get 401.
func (m *Middleware) RequireSignin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tokenString := m.extractToken(r)
		if tokenString == "" {
			writeAuthError(w, http.StatusUnauthorized, ErrNoToken)
			return
		}

		claims, err := m.sessions.Verify(tokenString)
		if err != nil {
			m.logger.Debug().Err(err).Str("path", r.URL.Path).Msg("session verification failed")
			writeAuthError(w, http.StatusUnauthorized, ErrInvalidToken)
			return
		}

		next.ServeHTTP(w, r.WithContext(WithUserID(r.Context(), claims.UserID)))
	})
}

// ResolveProfile loads the caller's user record and stores it in the request
// context. Must run after RequireSignin. A valid token for a deleted account
// gets 401.
func (m *Middleware) ResolveProfile(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID, ok := UserIDFromContext(r.Context())
		if !ok {
			writeAuthError(w, http.StatusUnauthorized, ErrNoToken)
			return
		}

		user, err := m.users.GetByID(r.Context(), userID)
		if err != nil {
			if errors.Is(err, domain.ErrUserNotFound) {
				writeAuthError(w, http.StatusUnauthorized, ErrUserGone)
				return
			}
			m.logger.Error().Err(err).Int64("user_id", userID).Msg("failed to load profile")
			writeAuthError(w, http.StatusInternalServerError, errors.New("internal server error"))
			return
		}

		next.ServeHTTP(w, r.WithContext(WithProfile(r.Context(), user)))
	})
}

// RequireAdmin rejects callers without the administrator role.
// Must run after ResolveProfile.
func (m *Middleware) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := ProfileFromContext(r.Context())
		if !ok {
			writeAuthError(w, http.StatusUnauthorized, ErrNoToken)
			return
		}

		if !user.IsAdmin() {
			writeAuthError(w, http.StatusForbidden, ErrAdminOnly)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// RequireBlogOwnership resolves the post named by the slug URL parameter,
// stores it in the request context and rejects callers who did not author
// it. Must run after RequireSignin.
func (m *Middleware) RequireBlogOwnership(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID, ok := UserIDFromContext(r.Context())
		if !ok {
			writeAuthError(w, http.StatusUnauthorized, ErrNoToken)
			return
		}

		slug := strings.ToLower(chi.URLParam(r, "slug"))
		blog, err := m.blogs.GetBySlug(r.Context(), slug)
		if err != nil {
			if errors.Is(err, domain.ErrBlogNotFound) {
				writeAuthError(w, http.StatusNotFound, domain.ErrBlogNotFound)
				return
			}
			m.logger.Error().Err(err).Str("slug", slug).Msg("failed to load blog for ownership check")
			writeAuthError(w, http.StatusInternalServerError, errors.New("internal server error"))
			return
		}

		if !blog.OwnedBy(userID) {
			writeAuthError(w, http.StatusForbidden, ErrNotOwner)
			return
		}

		next.ServeHTTP(w, r.WithContext(WithBlog(r.Context(), blog)))
	})
}

// writeAuthError writes a JSON error response.
func writeAuthError(w http.ResponseWriter, status int, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
}
