package service

import (
	"context"
	"strings"
	"time"

	"github.com/prn-tf/bronte-blog/internal/domain"
	"github.com/prn-tf/bronte-blog/internal/mail"
	"github.com/prn-tf/bronte-blog/internal/repository"
)

// =============================================================================
// Mock User Repository
// =============================================================================

// MockUserRepository is a mock implementation of repository.UserRepository.
type MockUserRepository struct {
	users     map[int64]*domain.User
	nextID    int64
	createErr error
	getErr    error
}

func NewMockUserRepository() *MockUserRepository {
	return &MockUserRepository{
		users:  make(map[int64]*domain.User),
		nextID: 1,
	}
}

func (m *MockUserRepository) Create(ctx context.Context, user *domain.User) error {
	if m.createErr != nil {
		return m.createErr
	}
	for _, u := range m.users {
		if u.Email == user.Email || u.Username == user.Username {
			return domain.ErrUserAlreadyExists
		}
	}
	user.ID = m.nextID
	m.nextID++
	m.users[user.ID] = user
	return nil
}

func (m *MockUserRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	if u, exists := m.users[id]; exists {
		return u, nil
	}
	return nil, domain.ErrUserNotFound
}

func (m *MockUserRepository) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	for _, u := range m.users {
		if u.Username == username {
			return u, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	for _, u := range m.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (m *MockUserRepository) Update(ctx context.Context, user *domain.User) error {
	if _, exists := m.users[user.ID]; !exists {
		return domain.ErrUserNotFound
	}
	user.UpdatedAt = time.Now().UTC()
	m.users[user.ID] = user
	return nil
}

func (m *MockUserRepository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	for _, u := range m.users {
		if u.Username == username {
			return true, nil
		}
	}
	return false, nil
}

func (m *MockUserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	for _, u := range m.users {
		if u.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func (m *MockUserRepository) SetResetToken(ctx context.Context, userID int64, token string) error {
	u, exists := m.users[userID]
	if !exists {
		return domain.ErrUserNotFound
	}
	u.ResetPasswordLink = token
	return nil
}

func (m *MockUserRepository) ConsumeResetToken(ctx context.Context, token, newSalt, newDigest string) error {
	if token == "" {
		return domain.ErrResetTokenMismatch
	}
	for _, u := range m.users {
		if u.ResetPasswordLink == token {
			u.HashedPassword = newDigest
			u.Salt = newSalt
			u.ResetPasswordLink = ""
			u.Federated = false
			return nil
		}
	}
	return domain.ErrResetTokenMismatch
}

func (m *MockUserRepository) List(ctx context.Context, opts repository.ListOptions) (*repository.ListResult[domain.User], error) {
	var users []*domain.User
	for _, u := range m.users {
		users = append(users, u)
	}
	return &repository.ListResult[domain.User]{
		Items:  users,
		Total:  int64(len(users)),
		Offset: opts.Offset,
		Limit:  opts.Limit,
	}, nil
}

var _ repository.UserRepository = (*MockUserRepository)(nil)

// =============================================================================
// Mock Blog Repository
// =============================================================================

// MockBlogRepository is a mock implementation of repository.BlogRepository.
type MockBlogRepository struct {
	blogs      map[string]*domain.Blog
	categories map[int64][]int64 // blogID -> category IDs
	tags       map[int64][]int64 // blogID -> tag IDs
	nextID     int64
	createErr  error
}

func NewMockBlogRepository() *MockBlogRepository {
	return &MockBlogRepository{
		blogs:      make(map[string]*domain.Blog),
		categories: make(map[int64][]int64),
		tags:       make(map[int64][]int64),
		nextID:     1,
	}
}

func (m *MockBlogRepository) Create(ctx context.Context, blog *domain.Blog, categoryIDs, tagIDs []int64) error {
	if m.createErr != nil {
		return m.createErr
	}
	if _, exists := m.blogs[blog.Slug]; exists {
		return domain.ErrBlogAlreadyExists
	}
	blog.ID = m.nextID
	m.nextID++
	stored := *blog
	m.blogs[blog.Slug] = &stored
	m.categories[blog.ID] = categoryIDs
	m.tags[blog.ID] = tagIDs
	return nil
}

func (m *MockBlogRepository) GetBySlug(ctx context.Context, slug string) (*domain.Blog, error) {
	if b, exists := m.blogs[slug]; exists {
		return b, nil
	}
	return nil, domain.ErrBlogNotFound
}

func (m *MockBlogRepository) GetPhotoBySlug(ctx context.Context, slug string) ([]byte, string, error) {
	if b, exists := m.blogs[slug]; exists {
		return b.Photo, b.PhotoContentType, nil
	}
	return nil, "", domain.ErrBlogNotFound
}

func (m *MockBlogRepository) List(ctx context.Context) ([]*domain.Blog, error) {
	var blogs []*domain.Blog
	for _, b := range m.blogs {
		blogs = append(blogs, b)
	}
	return blogs, nil
}

func (m *MockBlogRepository) ListPaginated(ctx context.Context, opts repository.ListOptions) (*repository.ListResult[domain.Blog], error) {
	blogs, _ := m.List(ctx)
	return &repository.ListResult[domain.Blog]{
		Items:  blogs,
		Total:  int64(len(blogs)),
		Offset: opts.Offset,
		Limit:  opts.Limit,
	}, nil
}

func (m *MockBlogRepository) ListByAuthor(ctx context.Context, userID int64) ([]*domain.Blog, error) {
	var blogs []*domain.Blog
	for _, b := range m.blogs {
		if b.PostedByID == userID {
			blogs = append(blogs, b)
		}
	}
	return blogs, nil
}

func (m *MockBlogRepository) ListByCategory(ctx context.Context, categoryID int64) ([]*domain.Blog, error) {
	var blogs []*domain.Blog
	for _, b := range m.blogs {
		for _, cid := range m.categories[b.ID] {
			if cid == categoryID {
				blogs = append(blogs, b)
				break
			}
		}
	}
	return blogs, nil
}

func (m *MockBlogRepository) ListByTag(ctx context.Context, tagID int64) ([]*domain.Blog, error) {
	var blogs []*domain.Blog
	for _, b := range m.blogs {
		for _, tid := range m.tags[b.ID] {
			if tid == tagID {
				blogs = append(blogs, b)
				break
			}
		}
	}
	return blogs, nil
}

func (m *MockBlogRepository) ListRelated(ctx context.Context, blogID int64, categoryIDs []int64, limit int) ([]*domain.Blog, error) {
	wanted := make(map[int64]bool)
	for _, id := range categoryIDs {
		wanted[id] = true
	}
	var blogs []*domain.Blog
	for _, b := range m.blogs {
		if b.ID == blogID {
			continue
		}
		for _, cid := range m.categories[b.ID] {
			if wanted[cid] {
				blogs = append(blogs, b)
				break
			}
		}
		if len(blogs) >= limit {
			break
		}
	}
	return blogs, nil
}

func (m *MockBlogRepository) Search(ctx context.Context, query string) ([]*domain.Blog, error) {
	q := strings.ToLower(query)
	var blogs []*domain.Blog
	for _, b := range m.blogs {
		if strings.Contains(strings.ToLower(b.Title), q) || strings.Contains(strings.ToLower(b.Body), q) {
			blogs = append(blogs, b)
		}
	}
	return blogs, nil
}

func (m *MockBlogRepository) Update(ctx context.Context, blog *domain.Blog, categoryIDs, tagIDs []int64) error {
	if _, exists := m.blogs[blog.Slug]; !exists {
		return domain.ErrBlogNotFound
	}
	stored := *blog
	m.blogs[blog.Slug] = &stored
	m.categories[blog.ID] = categoryIDs
	m.tags[blog.ID] = tagIDs
	return nil
}

func (m *MockBlogRepository) DeleteBySlug(ctx context.Context, slug string) error {
	b, exists := m.blogs[slug]
	if !exists {
		return domain.ErrBlogNotFound
	}
	delete(m.blogs, slug)
	delete(m.categories, b.ID)
	delete(m.tags, b.ID)
	return nil
}

var _ repository.BlogRepository = (*MockBlogRepository)(nil)

// =============================================================================
// Mock Taxonomy Repositories
// =============================================================================

// MockCategoryRepository is a mock implementation of repository.CategoryRepository.
type MockCategoryRepository struct {
	categories map[int64]*domain.Category
	nextID     int64
}

func NewMockCategoryRepository() *MockCategoryRepository {
	return &MockCategoryRepository{
		categories: make(map[int64]*domain.Category),
		nextID:     1,
	}
}

func (m *MockCategoryRepository) Create(ctx context.Context, category *domain.Category) error {
	for _, c := range m.categories {
		if c.Slug == category.Slug {
			return domain.ErrCategoryAlreadyExists
		}
	}
	category.ID = m.nextID
	m.nextID++
	m.categories[category.ID] = category
	return nil
}

func (m *MockCategoryRepository) GetBySlug(ctx context.Context, slug string) (*domain.Category, error) {
	for _, c := range m.categories {
		if c.Slug == slug {
			return c, nil
		}
	}
	return nil, domain.ErrCategoryNotFound
}

func (m *MockCategoryRepository) GetByIDs(ctx context.Context, ids []int64) ([]*domain.Category, error) {
	var result []*domain.Category
	for _, id := range ids {
		if c, exists := m.categories[id]; exists {
			result = append(result, c)
		}
	}
	return result, nil
}

func (m *MockCategoryRepository) List(ctx context.Context) ([]*domain.Category, error) {
	var result []*domain.Category
	for _, c := range m.categories {
		result = append(result, c)
	}
	return result, nil
}

func (m *MockCategoryRepository) DeleteBySlug(ctx context.Context, slug string) error {
	for id, c := range m.categories {
		if c.Slug == slug {
			delete(m.categories, id)
			return nil
		}
	}
	return domain.ErrCategoryNotFound
}

var _ repository.CategoryRepository = (*MockCategoryRepository)(nil)

// MockTagRepository is a mock implementation of repository.TagRepository.
type MockTagRepository struct {
	tags   map[int64]*domain.Tag
	nextID int64
}

func NewMockTagRepository() *MockTagRepository {
	return &MockTagRepository{
		tags:   make(map[int64]*domain.Tag),
		nextID: 1,
	}
}

func (m *MockTagRepository) Create(ctx context.Context, tag *domain.Tag) error {
	for _, t := range m.tags {
		if t.Slug == tag.Slug {
			return domain.ErrTagAlreadyExists
		}
	}
	tag.ID = m.nextID
	m.nextID++
	m.tags[tag.ID] = tag
	return nil
}

func (m *MockTagRepository) GetBySlug(ctx context.Context, slug string) (*domain.Tag, error) {
	for _, t := range m.tags {
		if t.Slug == slug {
			return t, nil
		}
	}
	return nil, domain.ErrTagNotFound
}

func (m *MockTagRepository) GetByIDs(ctx context.Context, ids []int64) ([]*domain.Tag, error) {
	var result []*domain.Tag
	for _, id := range ids {
		if t, exists := m.tags[id]; exists {
			result = append(result, t)
		}
	}
	return result, nil
}

func (m *MockTagRepository) List(ctx context.Context) ([]*domain.Tag, error) {
	var result []*domain.Tag
	for _, t := range m.tags {
		result = append(result, t)
	}
	return result, nil
}

func (m *MockTagRepository) DeleteBySlug(ctx context.Context, slug string) error {
	for id, t := range m.tags {
		if t.Slug == slug {
			delete(m.tags, id)
			return nil
		}
	}
	return domain.ErrTagNotFound
}

var _ repository.TagRepository = (*MockTagRepository)(nil)

// =============================================================================
// Capture Sender
// =============================================================================

// captureSender records dispatched mail on a channel so tests can wait for
// the background delivery goroutine.
type captureSender struct {
	messages chan mail.Message
}

func newCaptureSender() *captureSender {
	return &captureSender{messages: make(chan mail.Message, 8)}
}

func (s *captureSender) Send(ctx context.Context, msg mail.Message) error {
	s.messages <- msg
	return nil
}

// wait blocks until a message arrives or the timeout elapses.
func (s *captureSender) wait(timeout time.Duration) (mail.Message, bool) {
	select {
	case msg := <-s.messages:
		return msg, true
	case <-time.After(timeout):
		return mail.Message{}, false
	}
}

var _ mail.Sender = (*captureSender)(nil)
