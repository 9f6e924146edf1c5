package handler

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/prn-tf/bronte-blog/internal/auth"
	"github.com/prn-tf/bronte-blog/internal/domain"
	"github.com/prn-tf/bronte-blog/internal/repository"
	"github.com/prn-tf/bronte-blog/internal/service"
)

// UserHandler handles profile requests.
type UserHandler struct {
	userService *service.UserService
	logger      zerolog.Logger
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(userService *service.UserService, logger zerolog.Logger) *UserHandler {
	return &UserHandler{
		userService: userService,
		logger:      logger.With().Str("handler", "user").Logger(),
	}
}

// RegisterRoutes registers the user routes.
func (h *UserHandler) RegisterRoutes(r chi.Router, mw *auth.Middleware) {
	// Public profile reads
	r.Get("/user/{username}", h.handlePublicProfile)
	r.Get("/user/photo/{username}", h.handlePhoto)
	r.Get("/{username}/blogs", h.handleAuthorBlogs)

	// Caller's own profile
	r.Group(func(g chi.Router) {
		g.Use(mw.RequireSignin, mw.ResolveProfile)
		g.Get("/user/profile", h.handlePrivateProfile)
		g.Put("/user/update", h.handleUpdateProfile)
	})

	// Admin tooling
	r.Group(func(g chi.Router) {
		g.Use(mw.RequireSignin, mw.ResolveProfile, mw.RequireAdmin)
		g.Get("/users", h.handleList)
	})
}

// =============================================================================
// Handlers
// =============================================================================

func (h *UserHandler) handlePrivateProfile(w http.ResponseWriter, r *http.Request) {
	profile, ok := auth.ProfileFromContext(r.Context())
	if !ok {
		writeError(w, service.ErrInternalError)
		return
	}

	user, err := h.userService.GetPrivateProfile(r.Context(), profile.ID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, user)
}

func (h *UserHandler) handlePublicProfile(w http.ResponseWriter, r *http.Request) {
	out, err := h.userService.GetPublicProfile(r.Context(), chi.URLParam(r, "username"))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"user":  out.User,
		"blogs": emptyIfNil(out.Blogs),
	})
}

func (h *UserHandler) handleAuthorBlogs(w http.ResponseWriter, r *http.Request) {
	out, err := h.userService.GetPublicProfile(r.Context(), chi.URLParam(r, "username"))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, emptyIfNil(out.Blogs))
}

func (h *UserHandler) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	profile, ok := auth.ProfileFromContext(r.Context())
	if !ok {
		writeError(w, service.ErrInternalError)
		return
	}

	if err := r.ParseMultipartForm(maxBlogFormMemory); err != nil {
		writeValidationError(w, "could not parse form data")
		return
	}

	input := service.UpdateProfileInput{
		UserID: profile.ID,
		Name:   r.FormValue("name"),
		About:  r.FormValue("about"),
	}

	// An empty password field means "leave the credential alone".
	if password := r.FormValue("password"); password != "" {
		input.Password = &password
	}

	file, header, err := r.FormFile("photo")
	if err == nil {
		defer file.Close()
		input.Photo, err = io.ReadAll(io.LimitReader(file, domain.PhotoMaxBytes+1))
		if err != nil {
			writeValidationError(w, "could not read photo")
			return
		}
		input.PhotoContentType = header.Header.Get("Content-Type")
	} else if !errors.Is(err, http.ErrMissingFile) {
		writeValidationError(w, "could not read photo")
		return
	}

	user, err := h.userService.UpdateProfile(r.Context(), input)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, user)
}

func (h *UserHandler) handlePhoto(w http.ResponseWriter, r *http.Request) {
	photo, contentType, err := h.userService.GetPhoto(r.Context(), chi.URLParam(r, "username"))
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

func (h *UserHandler) handleList(w http.ResponseWriter, r *http.Request) {
	offset, _ := strconv.Atoi(r.URL.Query().Get("skip"))
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if limit <= 0 {
		limit = 50
	}

	result, err := h.userService.ListUsers(r.Context(), repository.ListOptions{Offset: offset, Limit: limit})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"users": result.Items,
		"size":  result.Total,
	})
}
