package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/prn-tf/bronte-blog/internal/auth"
	"github.com/prn-tf/bronte-blog/internal/domain"
	"github.com/prn-tf/bronte-blog/internal/service"
)

// maxBlogFormMemory bounds the in-memory portion of a multipart parse.
const maxBlogFormMemory = 2 << 20

// BlogHandler handles blog post requests.
type BlogHandler struct {
	blogService *service.BlogService
	logger      zerolog.Logger
}

// NewBlogHandler creates a new BlogHandler.
func NewBlogHandler(blogService *service.BlogService, logger zerolog.Logger) *BlogHandler {
	return &BlogHandler{
		blogService: blogService,
		logger:      logger.With().Str("handler", "blog").Logger(),
	}
}

// RegisterRoutes registers the blog routes. Admin routes can touch any post;
// the /user routes are limited to posts the caller authored.
func (h *BlogHandler) RegisterRoutes(r chi.Router, mw *auth.Middleware) {
	// Public reads
	r.Get("/blogs", h.handleList)
	r.Post("/blogs-categories-tags", h.handleListWithTaxonomies)
	r.Get("/blog/{slug}", h.handleGet)
	r.Get("/blog/photo/{slug}", h.handlePhoto)
	r.Post("/blogs/related", h.handleRelated)
	r.Get("/blogs/search", h.handleSearch)

	// Admin writes
	r.Group(func(g chi.Router) {
		g.Use(mw.RequireSignin, mw.ResolveProfile, mw.RequireAdmin)
		g.Post("/blog", h.handleCreate)
		g.Put("/blog/{slug}", h.handleUpdate)
		g.Delete("/blog/{slug}", h.handleDelete)
	})

	// Author writes
	r.Group(func(g chi.Router) {
		g.Use(mw.RequireSignin, mw.ResolveProfile)
		g.Post("/user/blog", h.handleCreate)
		g.With(mw.RequireBlogOwnership).Put("/user/blog/{slug}", h.handleUpdate)
		g.With(mw.RequireBlogOwnership).Delete("/user/blog/{slug}", h.handleDelete)
	})
}

// =============================================================================
// Handlers
// =============================================================================

func (h *BlogHandler) handleCreate(w http.ResponseWriter, r *http.Request) {
	profile, ok := auth.ProfileFromContext(r.Context())
	if !ok {
		writeError(w, service.ErrInternalError)
		return
	}

	form, ok := h.parseBlogForm(w, r)
	if !ok {
		return
	}

	blog, err := h.blogService.CreateBlog(r.Context(), service.CreateBlogInput{
		AuthorID:         profile.ID,
		Title:            form.title,
		Body:             form.body,
		CategoryIDs:      form.categoryIDs,
		TagIDs:           form.tagIDs,
		Photo:            form.photo,
		PhotoContentType: form.photoContentType,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	blog.PostedBy = profile.AuthorView()
	writeJSON(w, http.StatusCreated, blog)
}

func (h *BlogHandler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	slug := strings.ToLower(chi.URLParam(r, "slug"))

	form, ok := h.parseBlogForm(w, r)
	if !ok {
		return
	}

	blog, err := h.blogService.UpdateBlog(r.Context(), service.UpdateBlogInput{
		Slug:             slug,
		Title:            form.title,
		Body:             form.body,
		CategoryIDs:      form.categoryIDs,
		TagIDs:           form.tagIDs,
		Photo:            form.photo,
		PhotoContentType: form.photoContentType,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, blog)
}

func (h *BlogHandler) handleDelete(w http.ResponseWriter, r *http.Request) {
	slug := strings.ToLower(chi.URLParam(r, "slug"))

	if err := h.blogService.DeleteBlog(r.Context(), slug); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Blog deleted successfully"})
}

func (h *BlogHandler) handleGet(w http.ResponseWriter, r *http.Request) {
	blog, err := h.blogService.GetBlog(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, blog)
}

func (h *BlogHandler) handlePhoto(w http.ResponseWriter, r *http.Request) {
	photo, contentType, err := h.blogService.GetPhoto(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		writeError(w, err)
		return
	}

	if contentType == "" {
		contentType = "application/octet-stream"
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Length", strconv.Itoa(len(photo)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(photo)
}

func (h *BlogHandler) handleList(w http.ResponseWriter, r *http.Request) {
	blogs, err := h.blogService.ListBlogs(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, blogs)
}

func (h *BlogHandler) handleListWithTaxonomies(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Limit int `json:"limit"`
		Skip  int `json:"skip"`
	}
	if r.Body != nil {
		// An empty body means defaults, not an error.
		_ = json.NewDecoder(r.Body).Decode(&req)
	}

	out, err := h.blogService.ListBlogsWithTaxonomies(r.Context(), service.ListBlogsInput{
		Limit: req.Limit,
		Skip:  req.Skip,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"blogs":      emptyIfNil(out.Blogs),
		"categories": out.Categories,
		"tags":       out.Tags,
		"size":       out.Size,
	})
}

func (h *BlogHandler) handleRelated(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Slug  string `json:"slug"`
		Limit int    `json:"limit"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Slug == "" {
		writeValidationError(w, "slug is required")
		return
	}

	blogs, err := h.blogService.ListRelated(r.Context(), service.RelatedBlogsInput{
		Slug:  req.Slug,
		Limit: req.Limit,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, emptyIfNil(blogs))
}

func (h *BlogHandler) handleSearch(w http.ResponseWriter, r *http.Request) {
	blogs, err := h.blogService.Search(r.Context(), r.URL.Query().Get("search"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, emptyIfNil(blogs))
}

// =============================================================================
// Form Parsing
// =============================================================================

type blogForm struct {
	title            string
	body             string
	categoryIDs      []int64
	tagIDs           []int64
	photo            []byte
	photoContentType string
}

// parseBlogForm reads a multipart blog submission: title, body,
// comma-separated categories and tags, and an optional photo file.
// Writes the error response itself on failure.
func (h *BlogHandler) parseBlogForm(w http.ResponseWriter, r *http.Request) (*blogForm, bool) {
	if err := r.ParseMultipartForm(maxBlogFormMemory); err != nil {
		writeValidationError(w, "could not parse form data")
		return nil, false
	}

	form := &blogForm{
		title: r.FormValue("title"),
		body:  r.FormValue("body"),
	}

	var err error
	if form.categoryIDs, err = parseIDList(r.FormValue("categories")); err != nil {
		writeValidationError(w, "categories must be a comma-separated list of ids")
		return nil, false
	}
	if form.tagIDs, err = parseIDList(r.FormValue("tags")); err != nil {
		writeValidationError(w, "tags must be a comma-separated list of ids")
		return nil, false
	}

	file, header, err := r.FormFile("photo")
	if err == nil {
		defer file.Close()
		form.photo, err = io.ReadAll(io.LimitReader(file, domain.PhotoMaxBytes+1))
		if err != nil {
			writeValidationError(w, "could not read photo")
			return nil, false
		}
		form.photoContentType = header.Header.Get("Content-Type")
	} else if !errors.Is(err, http.ErrMissingFile) {
		writeValidationError(w, "could not read photo")
		return nil, false
	}

	return form, true
}

// parseIDList parses a comma-separated list of numeric IDs.
func parseIDList(raw string) ([]int64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}

	parts := strings.Split(raw, ",")
	ids := make([]int64, 0, len(parts))
	for _, part := range parts {
		id, err := strconv.ParseInt(strings.TrimSpace(part), 10, 64)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// emptyIfNil keeps empty list responses as [] instead of null.
func emptyIfNil(blogs []*domain.Blog) []*domain.Blog {
	if blogs == nil {
		return []*domain.Blog{}
	}
	return blogs
}
