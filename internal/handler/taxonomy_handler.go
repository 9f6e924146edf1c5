package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/prn-tf/bronte-blog/internal/auth"
	"github.com/prn-tf/bronte-blog/internal/service"
)

// TaxonomyHandler handles category and tag requests.
type TaxonomyHandler struct {
	categoryService *service.CategoryService
	tagService      *service.TagService
	validate        *validator.Validate
	logger          zerolog.Logger
}

// NewTaxonomyHandler creates a new TaxonomyHandler.
func NewTaxonomyHandler(
	categoryService *service.CategoryService,
	tagService *service.TagService,
	validate *validator.Validate,
	logger zerolog.Logger,
) *TaxonomyHandler {
	return &TaxonomyHandler{
		categoryService: categoryService,
		tagService:      tagService,
		validate:        validate,
		logger:          logger.With().Str("handler", "taxonomy").Logger(),
	}
}

// RegisterRoutes registers the taxonomy routes. Reads are public; creating
// and deleting is admin only.
func (h *TaxonomyHandler) RegisterRoutes(r chi.Router, mw *auth.Middleware) {
	r.Get("/categories", h.handleListCategories)
	r.Get("/category/{slug}", h.handleGetCategory)
	r.Get("/tags", h.handleListTags)
	r.Get("/tag/{slug}", h.handleGetTag)

	r.Group(func(g chi.Router) {
		g.Use(mw.RequireSignin, mw.ResolveProfile, mw.RequireAdmin)
		g.Post("/category", h.handleCreateCategory)
		g.Delete("/category/{slug}", h.handleDeleteCategory)
		g.Post("/tag", h.handleCreateTag)
		g.Delete("/tag/{slug}", h.handleDeleteTag)
	})
}

type createTaxonomyRequest struct {
	Name string `json:"name" validate:"required,max=50"`
}

// =============================================================================
// Category Handlers
// =============================================================================

func (h *TaxonomyHandler) handleCreateCategory(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decodeName(w, r)
	if !ok {
		return
	}

	category, err := h.categoryService.CreateCategory(r.Context(), req.Name)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, category)
}

func (h *TaxonomyHandler) handleListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.categoryService.ListCategories(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, categories)
}

func (h *TaxonomyHandler) handleGetCategory(w http.ResponseWriter, r *http.Request) {
	out, err := h.categoryService.GetCategory(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"category": out.Category,
		"blogs":    emptyIfNil(out.Blogs),
	})
}

func (h *TaxonomyHandler) handleDeleteCategory(w http.ResponseWriter, r *http.Request) {
	if err := h.categoryService.DeleteCategory(r.Context(), chi.URLParam(r, "slug")); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Category deleted successfully"})
}

// =============================================================================
// Tag Handlers
// =============================================================================

func (h *TaxonomyHandler) handleCreateTag(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decodeName(w, r)
	if !ok {
		return
	}

	tag, err := h.tagService.CreateTag(r.Context(), req.Name)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, tag)
}

func (h *TaxonomyHandler) handleListTags(w http.ResponseWriter, r *http.Request) {
	tags, err := h.tagService.ListTags(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, tags)
}

func (h *TaxonomyHandler) handleGetTag(w http.ResponseWriter, r *http.Request) {
	out, err := h.tagService.GetTag(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"tag":   out.Tag,
		"blogs": emptyIfNil(out.Blogs),
	})
}

func (h *TaxonomyHandler) handleDeleteTag(w http.ResponseWriter, r *http.Request) {
	if err := h.tagService.DeleteTag(r.Context(), chi.URLParam(r, "slug")); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Tag deleted successfully"})
}

func (h *TaxonomyHandler) decodeName(w http.ResponseWriter, r *http.Request) (*createTaxonomyRequest, bool) {
	var req createTaxonomyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeValidationError(w, "invalid request body")
		return nil, false
	}
	if err := h.validate.Struct(&req); err != nil {
		writeValidationError(w, validationMessage(err))
		return nil, false
	}
	return &req, true
}
