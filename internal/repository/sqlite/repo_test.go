package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/prn-tf/bronte-blog/internal/config"
	"github.com/prn-tf/bronte-blog/internal/domain"
	"github.com/prn-tf/bronte-blog/internal/repository"
)

// newTestDB opens an in-memory database with the full schema applied.
// The pure Go driver needs no test harness beyond this.
func newTestDB(t *testing.T) *DB {
	t.Helper()

	ctx := context.Background()
	db, err := NewDB(ctx, config.DatabaseConfig{
		Driver:          "sqlite",
		Path:            ":memory:",
		JournalMode:     "MEMORY",
		BusyTimeout:     5000,
		CacheSize:       -2000,
		SynchronousMode: "NORMAL",
	}, zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, db.Migrate(ctx))
	return db
}

func seedAccount(t *testing.T, users repository.UserRepository, username, email string) *domain.User {
	t.Helper()
	user := domain.NewUser(username, "Test User", email, "http://localhost:3000/profile/"+username, "salt", "digest")
	require.NoError(t, users.Create(context.Background(), user))
	return user
}

// =============================================================================
// User Repository
// =============================================================================

func TestUserRepository_CreateAndGet(t *testing.T) {
	db := newTestDB(t)
	users := NewUserRepository(db)
	ctx := context.Background()

	user := seedAccount(t, users, "emily", "emily@example.com")
	require.NotZero(t, user.ID)

	byID, err := users.GetByID(ctx, user.ID)
	require.NoError(t, err)
	require.Equal(t, "emily", byID.Username)
	require.Equal(t, "emily@example.com", byID.Email)
	require.Equal(t, domain.RoleStandard, byID.Role)
	require.False(t, byID.Federated)

	byEmail, err := users.GetByEmail(ctx, "emily@example.com")
	require.NoError(t, err)
	require.Equal(t, user.ID, byEmail.ID)

	byUsername, err := users.GetByUsername(ctx, "emily")
	require.NoError(t, err)
	require.Equal(t, user.ID, byUsername.ID)

	_, err = users.GetByUsername(ctx, "nobody")
	require.ErrorIs(t, err, domain.ErrUserNotFound)
}

func TestUserRepository_DuplicateEmail(t *testing.T) {
	db := newTestDB(t)
	users := NewUserRepository(db)

	seedAccount(t, users, "emily", "emily@example.com")

	dup := domain.NewUser("other", "Other", "emily@example.com", "p", "s", "d")
	err := users.Create(context.Background(), dup)
	require.ErrorIs(t, err, domain.ErrUserAlreadyExists)
}

func TestUserRepository_Update(t *testing.T) {
	db := newTestDB(t)
	users := NewUserRepository(db)
	ctx := context.Background()

	user := seedAccount(t, users, "emily", "emily@example.com")
	user.Name = "Emily Updated"
	user.About = "Writes about the moors."
	user.Role = domain.RoleAdministrator
	require.NoError(t, users.Update(ctx, user))

	got, err := users.GetByID(ctx, user.ID)
	require.NoError(t, err)
	require.Equal(t, "Emily Updated", got.Name)
	require.Equal(t, "Writes about the moors.", got.About)
	require.True(t, got.IsAdmin())

	missing := domain.NewUser("ghost", "Ghost", "ghost@example.com", "p", "s", "d")
	missing.ID = 9999
	require.ErrorIs(t, users.Update(ctx, missing), domain.ErrUserNotFound)
}

func TestUserRepository_Exists(t *testing.T) {
	db := newTestDB(t)
	users := NewUserRepository(db)
	ctx := context.Background()

	seedAccount(t, users, "emily", "emily@example.com")

	ok, err := users.ExistsByEmail(ctx, "emily@example.com")
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = users.ExistsByEmail(ctx, "nobody@example.com")
	require.NoError(t, err)
	require.False(t, ok)

	ok, err = users.ExistsByUsername(ctx, "emily")
	require.NoError(t, err)
	require.True(t, ok)
}

func TestUserRepository_ConsumeResetToken(t *testing.T) {
	db := newTestDB(t)
	users := NewUserRepository(db)
	ctx := context.Background()

	user := seedAccount(t, users, "emily", "emily@example.com")
	user.Federated = true
	require.NoError(t, users.Update(ctx, user))
	require.NoError(t, users.SetResetToken(ctx, user.ID, "reset-token"))

	require.NoError(t, users.ConsumeResetToken(ctx, "reset-token", "newsalt", "newdigest"))

	got, err := users.GetByID(ctx, user.ID)
	require.NoError(t, err)
	require.Equal(t, "newsalt", got.Salt)
	require.Equal(t, "newdigest", got.HashedPassword)
	require.Empty(t, got.ResetPasswordLink)
	require.False(t, got.Federated)

	// Consumed tokens cannot be replayed.
	err = users.ConsumeResetToken(ctx, "reset-token", "s2", "d2")
	require.ErrorIs(t, err, domain.ErrResetTokenMismatch)

	// An empty token never matches cleared rows.
	err = users.ConsumeResetToken(ctx, "", "s3", "d3")
	require.ErrorIs(t, err, domain.ErrResetTokenMismatch)
}

func TestUserRepository_List(t *testing.T) {
	db := newTestDB(t)
	users := NewUserRepository(db)

	seedAccount(t, users, "emily", "emily@example.com")
	seedAccount(t, users, "anne", "anne@example.com")
	seedAccount(t, users, "charlotte", "charlotte@example.com")

	result, err := users.List(context.Background(), repository.ListOptions{Limit: 2})
	require.NoError(t, err)
	require.Equal(t, int64(3), result.Total)
	require.Len(t, result.Items, 2)
}

// =============================================================================
// Blog Repository
// =============================================================================

type blogFixture struct {
	db         *DB
	users      repository.UserRepository
	blogs      repository.BlogRepository
	categories repository.CategoryRepository
	tags       repository.TagRepository
	author     *domain.User
	catID      int64
	tagID      int64
}

func newBlogFixture(t *testing.T) *blogFixture {
	t.Helper()

	db := newTestDB(t)
	f := &blogFixture{
		db:         db,
		users:      NewUserRepository(db),
		blogs:      NewBlogRepository(db),
		categories: NewCategoryRepository(db),
		tags:       NewTagRepository(db),
	}
	f.author = seedAccount(t, f.users, "emily", "emily@example.com")

	ctx := context.Background()
	now := time.Now().UTC()
	cat := &domain.Category{Name: "Engineering", Slug: "engineering", CreatedAt: now, UpdatedAt: now}
	require.NoError(t, f.categories.Create(ctx, cat))
	f.catID = cat.ID

	tag := &domain.Tag{Name: "Go", Slug: "go", CreatedAt: now, UpdatedAt: now}
	require.NoError(t, f.tags.Create(ctx, tag))
	f.tagID = tag.ID

	return f
}

func (f *blogFixture) newBlog(title, slug string) *domain.Blog {
	now := time.Now().UTC()
	return &domain.Blog{
		Title:           title,
		Slug:            slug,
		Body:            "<p>A long enough body for the post under test.</p>",
		Excerpt:         "A long enough body ...",
		MetaTitle:       title + " | Bronte",
		MetaDescription: "A long enough body for the post under test.",
		PostedByID:      f.author.ID,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
}

func TestBlogRepository_CreateAndGet(t *testing.T) {
	f := newBlogFixture(t)
	ctx := context.Background()

	blog := f.newBlog("Writing Repositories", "writing-repositories")
	require.NoError(t, f.blogs.Create(ctx, blog, []int64{f.catID}, []int64{f.tagID}))
	require.NotZero(t, blog.ID)

	got, err := f.blogs.GetBySlug(ctx, "writing-repositories")
	require.NoError(t, err)
	require.Equal(t, "Writing Repositories", got.Title)
	require.Equal(t, f.author.ID, got.PostedByID)
	require.Equal(t, "emily", got.PostedBy.Username)
	require.Len(t, got.Categories, 1)
	require.Equal(t, "engineering", got.Categories[0].Slug)
	require.Len(t, got.Tags, 1)
	require.Equal(t, "go", got.Tags[0].Slug)

	_, err = f.blogs.GetBySlug(ctx, "missing")
	require.ErrorIs(t, err, domain.ErrBlogNotFound)
}

func TestBlogRepository_DuplicateSlug(t *testing.T) {
	f := newBlogFixture(t)
	ctx := context.Background()

	first := f.newBlog("Writing Repositories", "writing-repositories")
	require.NoError(t, f.blogs.Create(ctx, first, []int64{f.catID}, []int64{f.tagID}))

	second := f.newBlog("Writing Repositories!", "writing-repositories")
	err := f.blogs.Create(ctx, second, []int64{f.catID}, []int64{f.tagID})
	require.ErrorIs(t, err, domain.ErrBlogAlreadyExists)
}

func TestBlogRepository_Photo(t *testing.T) {
	f := newBlogFixture(t)
	ctx := context.Background()

	blog := f.newBlog("With Cover", "with-cover")
	blog.Photo = []byte{0xFF, 0xD8, 0xFF}
	blog.PhotoContentType = "image/jpeg"
	require.NoError(t, f.blogs.Create(ctx, blog, []int64{f.catID}, []int64{f.tagID}))

	photo, contentType, err := f.blogs.GetPhotoBySlug(ctx, "with-cover")
	require.NoError(t, err)
	require.Equal(t, []byte{0xFF, 0xD8, 0xFF}, photo)
	require.Equal(t, "image/jpeg", contentType)

	_, _, err = f.blogs.GetPhotoBySlug(ctx, "missing")
	require.ErrorIs(t, err, domain.ErrBlogNotFound)
}

func TestBlogRepository_Update(t *testing.T) {
	f := newBlogFixture(t)
	ctx := context.Background()

	blog := f.newBlog("Original Title", "original-title")
	blog.Photo = []byte{0x01}
	blog.PhotoContentType = "image/png"
	require.NoError(t, f.blogs.Create(ctx, blog, []int64{f.catID}, []int64{f.tagID}))

	now := time.Now().UTC()
	other := &domain.Tag{Name: "SQLite", Slug: "sqlite", CreatedAt: now, UpdatedAt: now}
	require.NoError(t, f.tags.Create(ctx, other))

	blog.Title = "Renamed Title"
	blog.Photo = nil
	require.NoError(t, f.blogs.Update(ctx, blog, []int64{f.catID}, []int64{other.ID}))

	got, err := f.blogs.GetBySlug(ctx, "original-title")
	require.NoError(t, err)
	require.Equal(t, "Renamed Title", got.Title)
	require.Len(t, got.Tags, 1)
	require.Equal(t, "sqlite", got.Tags[0].Slug)

	// A nil photo on update leaves the stored blob alone.
	photo, _, err := f.blogs.GetPhotoBySlug(ctx, "original-title")
	require.NoError(t, err)
	require.Equal(t, []byte{0x01}, photo)

	missing := f.newBlog("Ghost", "ghost")
	missing.ID = 9999
	require.ErrorIs(t, f.blogs.Update(ctx, missing, nil, nil), domain.ErrBlogNotFound)
}

func TestBlogRepository_Listings(t *testing.T) {
	f := newBlogFixture(t)
	ctx := context.Background()

	now := time.Now().UTC()
	other := &domain.Category{Name: "Essays", Slug: "essays", CreatedAt: now, UpdatedAt: now}
	require.NoError(t, f.categories.Create(ctx, other))

	first := f.newBlog("First Post", "first-post")
	require.NoError(t, f.blogs.Create(ctx, first, []int64{f.catID}, []int64{f.tagID}))
	second := f.newBlog("Second Post", "second-post")
	require.NoError(t, f.blogs.Create(ctx, second, []int64{f.catID, other.ID}, []int64{f.tagID}))
	third := f.newBlog("Third Post", "third-post")
	require.NoError(t, f.blogs.Create(ctx, third, []int64{other.ID}, []int64{f.tagID}))

	all, err := f.blogs.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)

	page, err := f.blogs.ListPaginated(ctx, repository.ListOptions{Limit: 2})
	require.NoError(t, err)
	require.Equal(t, int64(3), page.Total)
	require.Len(t, page.Items, 2)

	byAuthor, err := f.blogs.ListByAuthor(ctx, f.author.ID)
	require.NoError(t, err)
	require.Len(t, byAuthor, 3)

	byCategory, err := f.blogs.ListByCategory(ctx, other.ID)
	require.NoError(t, err)
	require.Len(t, byCategory, 2)

	byTag, err := f.blogs.ListByTag(ctx, f.tagID)
	require.NoError(t, err)
	require.Len(t, byTag, 3)

	related, err := f.blogs.ListRelated(ctx, second.ID, []int64{f.catID, other.ID}, 5)
	require.NoError(t, err)
	require.Len(t, related, 2)
	for _, b := range related {
		require.NotEqual(t, second.ID, b.ID)
	}

	hits, err := f.blogs.Search(ctx, "Second")
	require.NoError(t, err)
	require.Len(t, hits, 1)
	require.Equal(t, "second-post", hits[0].Slug)
}

func TestBlogRepository_Delete(t *testing.T) {
	f := newBlogFixture(t)
	ctx := context.Background()

	blog := f.newBlog("Doomed", "doomed")
	require.NoError(t, f.blogs.Create(ctx, blog, []int64{f.catID}, []int64{f.tagID}))

	require.NoError(t, f.blogs.DeleteBySlug(ctx, "doomed"))
	require.ErrorIs(t, f.blogs.DeleteBySlug(ctx, "doomed"), domain.ErrBlogNotFound)

	_, err := f.blogs.GetBySlug(ctx, "doomed")
	require.ErrorIs(t, err, domain.ErrBlogNotFound)
}

// =============================================================================
// Taxonomy Repositories
// =============================================================================

func TestCategoryRepository_CRUD(t *testing.T) {
	db := newTestDB(t)
	categories := NewCategoryRepository(db)
	ctx := context.Background()

	now := time.Now().UTC()
	cat := &domain.Category{Name: "Engineering", Slug: "engineering", CreatedAt: now, UpdatedAt: now}
	require.NoError(t, categories.Create(ctx, cat))
	require.NotZero(t, cat.ID)

	dup := &domain.Category{Name: "Engineering 2", Slug: "engineering", CreatedAt: now, UpdatedAt: now}
	require.ErrorIs(t, categories.Create(ctx, dup), domain.ErrCategoryAlreadyExists)

	got, err := categories.GetBySlug(ctx, "engineering")
	require.NoError(t, err)
	require.Equal(t, "Engineering", got.Name)

	byIDs, err := categories.GetByIDs(ctx, []int64{cat.ID, 9999})
	require.NoError(t, err)
	require.Len(t, byIDs, 1)

	all, err := categories.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)

	require.NoError(t, categories.DeleteBySlug(ctx, "engineering"))
	require.ErrorIs(t, categories.DeleteBySlug(ctx, "engineering"), domain.ErrCategoryNotFound)
}

func TestTagRepository_CRUD(t *testing.T) {
	db := newTestDB(t)
	tags := NewTagRepository(db)
	ctx := context.Background()

	now := time.Now().UTC()
	tag := &domain.Tag{Name: "Go", Slug: "go", CreatedAt: now, UpdatedAt: now}
	require.NoError(t, tags.Create(ctx, tag))
	require.NotZero(t, tag.ID)

	dup := &domain.Tag{Name: "Golang", Slug: "go", CreatedAt: now, UpdatedAt: now}
	require.ErrorIs(t, tags.Create(ctx, dup), domain.ErrTagAlreadyExists)

	got, err := tags.GetBySlug(ctx, "go")
	require.NoError(t, err)
	require.Equal(t, "Go", got.Name)

	_, err = tags.GetBySlug(ctx, "missing")
	require.ErrorIs(t, err, domain.ErrTagNotFound)

	require.NoError(t, tags.DeleteBySlug(ctx, "go"))
	require.ErrorIs(t, tags.DeleteBySlug(ctx, "go"), domain.ErrTagNotFound)
}
