// Package handler provides the HTTP handlers for the Bronte blog API.
package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/prn-tf/bronte-blog/internal/domain"
	"github.com/prn-tf/bronte-blog/internal/identity"
	"github.com/prn-tf/bronte-blog/internal/service"
)

// errorResponse is the uniform error envelope.
type errorResponse struct {
	Error string `json:"error"`
}

// writeJSON writes a JSON response with the given status.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		_ = json.NewEncoder(w).Encode(v)
	}
}

// writeError maps a service error to an HTTP status and the error envelope.
func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, statusForError(err), errorResponse{Error: err.Error()})
}

// writeValidationError reports a malformed or invalid request body.
func writeValidationError(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: msg})
}

// validationMessage flattens validator errors into one client-facing line.
func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return "invalid request"
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		field := strings.ToLower(fe.Field())
		switch fe.Tag() {
		case "required":
			msgs = append(msgs, field+" is required")
		case "email":
			msgs = append(msgs, field+" must be a valid email address")
		case "min":
			msgs = append(msgs, fmt.Sprintf("%s must be at least %s characters", field, fe.Param()))
		case "max":
			msgs = append(msgs, fmt.Sprintf("%s must be at most %s characters", field, fe.Param()))
		default:
			msgs = append(msgs, field+" is invalid")
		}
	}
	return strings.Join(msgs, ", ")
}

// statusForError maps domain and service errors to HTTP status codes.
func statusForError(err error) int {
	switch {
	case errors.Is(err, domain.ErrUserNotFound),
		errors.Is(err, domain.ErrBlogNotFound),
		errors.Is(err, domain.ErrCategoryNotFound),
		errors.Is(err, domain.ErrTagNotFound):
		return http.StatusNotFound

	case errors.Is(err, domain.ErrBlogAlreadyExists),
		errors.Is(err, domain.ErrCategoryAlreadyExists),
		errors.Is(err, domain.ErrTagAlreadyExists),
		errors.Is(err, service.ErrEmailTaken),
		errors.Is(err, service.ErrEmailNotRegistered),
		errors.Is(err, service.ErrBadCredentials),
		errors.Is(err, service.ErrFederatedAccount):
		return http.StatusBadRequest

	case errors.Is(err, service.ErrLinkExpired),
		errors.Is(err, identity.ErrInvalidAssertion),
		errors.Is(err, identity.ErrEmailNotVerified),
		errors.Is(err, identity.ErrVerifierDisabled):
		return http.StatusUnauthorized

	case errors.Is(err, service.ErrTitleLength),
		errors.Is(err, service.ErrBodyTooShort),
		errors.Is(err, service.ErrNoCategories),
		errors.Is(err, service.ErrNoTags),
		errors.Is(err, service.ErrPhotoTooLarge),
		errors.Is(err, service.ErrNameRequired),
		errors.Is(err, service.ErrPasswordTooShort),
		errors.Is(err, service.ErrMessageRequired):
		return http.StatusUnprocessableEntity

	default:
		return http.StatusInternalServerError
	}
}
