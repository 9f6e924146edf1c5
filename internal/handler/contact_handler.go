package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/prn-tf/bronte-blog/internal/service"
)

// ContactHandler handles contact form requests.
type ContactHandler struct {
	contactService *service.ContactService
	validate       *validator.Validate
	logger         zerolog.Logger
}

// NewContactHandler creates a new ContactHandler.
func NewContactHandler(contactService *service.ContactService, validate *validator.Validate, logger zerolog.Logger) *ContactHandler {
	return &ContactHandler{
		contactService: contactService,
		validate:       validate,
		logger:         logger.With().Str("handler", "contact").Logger(),
	}
}

// RegisterRoutes registers the contact routes.
func (h *ContactHandler) RegisterRoutes(r chi.Router) {
	r.Post("/contact", h.handleContactSite)
	r.Post("/contact/{username}", h.handleContactAuthor)
}

type contactRequest struct {
	Name    string `json:"name" validate:"required"`
	Email   string `json:"email" validate:"required,email"`
	Message string `json:"message" validate:"required"`
}

func (h *ContactHandler) handleContactSite(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decode(w, r)
	if !ok {
		return
	}

	err := h.contactService.ContactSite(r.Context(), service.ContactInput{
		Name:    req.Name,
		Email:   req.Email,
		Message: req.Message,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Thank you for contacting us"})
}

func (h *ContactHandler) handleContactAuthor(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decode(w, r)
	if !ok {
		return
	}

	err := h.contactService.ContactAuthor(r.Context(), chi.URLParam(r, "username"), service.ContactInput{
		Name:    req.Name,
		Email:   req.Email,
		Message: req.Message,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Your message has been sent to the author"})
}

func (h *ContactHandler) decode(w http.ResponseWriter, r *http.Request) (*contactRequest, bool) {
	var req contactRequest
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
