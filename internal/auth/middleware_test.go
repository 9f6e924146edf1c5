package auth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/prn-tf/bronte-blog/internal/domain"
	"github.com/prn-tf/bronte-blog/internal/token"
)

// mockUserStore is a hand-rolled UserStore for testing.
type mockUserStore struct {
	users map[int64]*domain.User
	err   error
}

func (m *mockUserStore) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	if m.err != nil {
		return nil, m.err
	}
	user, ok := m.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return user, nil
}

// mockBlogStore is a hand-rolled BlogStore for testing.
type mockBlogStore struct {
	blogs map[string]*domain.Blog
	err   error
}

func (m *mockBlogStore) GetBySlug(ctx context.Context, slug string) (*domain.Blog, error) {
	if m.err != nil {
		return nil, m.err
	}
	blog, ok := m.blogs[slug]
	if !ok {
		return nil, domain.ErrBlogNotFound
	}
	return blog, nil
}

func newTestMiddleware(users *mockUserStore, blogs *mockBlogStore) (*Middleware, *token.Issuer) {
	issuer := token.NewIssuer("test-session-secret", time.Hour)
	if users == nil {
		users = &mockUserStore{users: map[int64]*domain.User{}}
	}
	if blogs == nil {
		blogs = &mockBlogStore{blogs: map[string]*domain.Blog{}}
	}
	return NewMiddleware(issuer, users, blogs, "token", zerolog.Nop()), issuer
}

func TestRequireSignin_NoToken(t *testing.T) {
	m, _ := newTestMiddleware(nil, nil)

	handler := m.RequireSignin(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not be called")
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireSignin_InvalidToken(t *testing.T) {
	m, _ := newTestMiddleware(nil, nil)

	handler := m.RequireSignin(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not be called")
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: "token", Value: "garbage"})
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireSignin_CookieToken(t *testing.T) {
	m, issuer := newTestMiddleware(nil, nil)

	tokenString, err := issuer.IssueSubject(42)
	require.NoError(t, err)

	var gotID int64
	handler := m.RequireSignin(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := UserIDFromContext(r.Context())
		require.True(t, ok)
		gotID = id
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: "token", Value: tokenString})
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, int64(42), gotID)
}

func TestRequireSignin_BearerToken(t *testing.T) {
	m, issuer := newTestMiddleware(nil, nil)

	tokenString, err := issuer.IssueSubject(7)
	require.NoError(t, err)

	handler := m.RequireSignin(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := UserIDFromContext(r.Context())
		require.True(t, ok)
		require.Equal(t, int64(7), id)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+tokenString)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
}

func TestResolveProfile(t *testing.T) {
	users := &mockUserStore{users: map[int64]*domain.User{
		1: {ID: 1, Username: "alice", Role: domain.RoleStandard},
	}}
	m, issuer := newTestMiddleware(users, nil)

	tests := []struct {
		name       string
		userID     int64
		wantStatus int
	}{
		{name: "existing user", userID: 1, wantStatus: http.StatusOK},
		{name: "deleted account", userID: 99, wantStatus: http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tokenString, err := issuer.IssueSubject(tt.userID)
			require.NoError(t, err)

			handler := m.RequireSignin(m.ResolveProfile(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				user, ok := ProfileFromContext(r.Context())
				require.True(t, ok)
				require.Equal(t, tt.userID, user.ID)
			})))

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.AddCookie(&http.Cookie{Name: "token", Value: tokenString})
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			require.Equal(t, tt.wantStatus, rec.Code)
		})
	}
}

func TestRequireAdmin(t *testing.T) {
	tests := []struct {
		name       string
		role       domain.Role
		wantStatus int
	}{
		{name: "standard user denied", role: domain.RoleStandard, wantStatus: http.StatusForbidden},
		{name: "admin allowed", role: domain.RoleAdministrator, wantStatus: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, _ := newTestMiddleware(nil, nil)

			handler := m.RequireAdmin(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			ctx := WithProfile(req.Context(), &domain.User{ID: 1, Role: tt.role})
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req.WithContext(ctx))

			require.Equal(t, tt.wantStatus, rec.Code)
		})
	}
}

func TestRequireBlogOwnership(t *testing.T) {
	blogs := &mockBlogStore{blogs: map[string]*domain.Blog{
		"my-post": {ID: 10, Slug: "my-post", PostedByID: 1},
	}}

	tests := []struct {
		name       string
		userID     int64
		slug       string
		wantStatus int
	}{
		{name: "owner allowed", userID: 1, slug: "my-post", wantStatus: http.StatusOK},
		{name: "non-owner denied", userID: 2, slug: "my-post", wantStatus: http.StatusForbidden},
		{name: "unknown slug", userID: 1, slug: "nope", wantStatus: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, _ := newTestMiddleware(nil, blogs)

			router := chi.NewRouter()
			router.With(m.RequireBlogOwnership).Put("/blog/{slug}", func(w http.ResponseWriter, r *http.Request) {
				blog, ok := BlogFromContext(r.Context())
				require.True(t, ok)
				require.Equal(t, tt.slug, blog.Slug)
			})

			req := httptest.NewRequest(http.MethodPut, "/blog/"+tt.slug, nil)
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req.WithContext(WithUserID(req.Context(), tt.userID)))

			require.Equal(t, tt.wantStatus, rec.Code)
		})
	}
}

func TestRequireBlogOwnership_LookupError(t *testing.T) {
	blogs := &mockBlogStore{err: errors.New("connection refused")}
	m, _ := newTestMiddleware(nil, blogs)

	router := chi.NewRouter()
	router.With(m.RequireBlogOwnership).Put("/blog/{slug}", func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not be called")
	})

	req := httptest.NewRequest(http.MethodPut, "/blog/my-post", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req.WithContext(WithUserID(req.Context(), 1)))

	require.Equal(t, http.StatusInternalServerError, rec.Code)
}
