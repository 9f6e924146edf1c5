package service

import (
	"context"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/prn-tf/bronte-blog/internal/domain"
)

func TestCategoryService_CreateCategory(t *testing.T) {
	svc := NewCategoryService(NewMockCategoryRepository(), NewMockBlogRepository(), zerolog.Nop())

	category, err := svc.CreateCategory(context.Background(), "Web Development")
	require.NoError(t, err)
	require.Equal(t, "Web Development", category.Name)
	require.Equal(t, "web-development", category.Slug)
	require.NotZero(t, category.ID)

	// Same name slugs to the same value.
	_, err = svc.CreateCategory(context.Background(), "Web development")
	require.ErrorIs(t, err, domain.ErrCategoryAlreadyExists)

	_, err = svc.CreateCategory(context.Background(), "  ")
	require.ErrorIs(t, err, ErrNameRequired)

	_, err = svc.CreateCategory(context.Background(), strings.Repeat("x", domain.TaxonomyNameMaxLength+1))
	require.Error(t, err)
}

func TestCategoryService_GetCategory(t *testing.T) {
	categories := NewMockCategoryRepository()
	blogs := NewMockBlogRepository()
	svc := NewCategoryService(categories, blogs, zerolog.Nop())

	created, err := svc.CreateCategory(context.Background(), "Databases")
	require.NoError(t, err)

	post := &domain.Blog{Title: "Indexes", Slug: "indexes", Body: validBody, PostedByID: 1}
	require.NoError(t, blogs.Create(context.Background(), post, []int64{created.ID}, []int64{1}))

	out, err := svc.GetCategory(context.Background(), "Databases")
	require.NoError(t, err)
	require.Equal(t, created.ID, out.Category.ID)
	require.Len(t, out.Blogs, 1)

	_, err = svc.GetCategory(context.Background(), "missing")
	require.ErrorIs(t, err, domain.ErrCategoryNotFound)
}

func TestCategoryService_DeleteCategory(t *testing.T) {
	svc := NewCategoryService(NewMockCategoryRepository(), NewMockBlogRepository(), zerolog.Nop())

	_, err := svc.CreateCategory(context.Background(), "Ephemeral")
	require.NoError(t, err)

	require.NoError(t, svc.DeleteCategory(context.Background(), "ephemeral"))
	require.ErrorIs(t, svc.DeleteCategory(context.Background(), "ephemeral"), domain.ErrCategoryNotFound)
}

func TestTagService_CreateTag(t *testing.T) {
	svc := NewTagService(NewMockTagRepository(), NewMockBlogRepository(), zerolog.Nop())

	tag, err := svc.CreateTag(context.Background(), "Go Modules")
	require.NoError(t, err)
	require.Equal(t, "go-modules", tag.Slug)

	_, err = svc.CreateTag(context.Background(), "go modules")
	require.ErrorIs(t, err, domain.ErrTagAlreadyExists)

	_, err = svc.CreateTag(context.Background(), "")
	require.ErrorIs(t, err, ErrNameRequired)
}

func TestTagService_GetTag(t *testing.T) {
	tags := NewMockTagRepository()
	blogs := NewMockBlogRepository()
	svc := NewTagService(tags, blogs, zerolog.Nop())

	created, err := svc.CreateTag(context.Background(), "Testing")
	require.NoError(t, err)

	post := &domain.Blog{Title: "Table Tests", Slug: "table-tests", Body: validBody, PostedByID: 1}
	require.NoError(t, blogs.Create(context.Background(), post, []int64{1}, []int64{created.ID}))

	out, err := svc.GetTag(context.Background(), "testing")
	require.NoError(t, err)
	require.Equal(t, created.ID, out.Tag.ID)
	require.Len(t, out.Blogs, 1)

	_, err = svc.GetTag(context.Background(), "missing")
	require.ErrorIs(t, err, domain.ErrTagNotFound)
}

func TestTagService_DeleteTag(t *testing.T) {
	svc := NewTagService(NewMockTagRepository(), NewMockBlogRepository(), zerolog.Nop())

	_, err := svc.CreateTag(context.Background(), "Fleeting")
	require.NoError(t, err)

	require.NoError(t, svc.DeleteTag(context.Background(), "fleeting"))
	require.ErrorIs(t, svc.DeleteTag(context.Background(), "fleeting"), domain.ErrTagNotFound)
}
