package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/prn-tf/bronte-blog/internal/service"
)

// AuthHandler handles signup, activation, signin and credential recovery.
type AuthHandler struct {
	authService *service.AuthService
	validate    *validator.Validate
	cookieName  string
	logger      zerolog.Logger
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService *service.AuthService, validate *validator.Validate, cookieName string, logger zerolog.Logger) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		validate:    validate,
		cookieName:  cookieName,
		logger:      logger.With().Str("handler", "auth").Logger(),
	}
}

// RegisterRoutes registers the auth routes.
func (h *AuthHandler) RegisterRoutes(r chi.Router) {
	r.Post("/auth/pre-signup", h.handlePreSignup)
	r.Post("/auth/signup", h.handleSignup)
	r.Post("/auth/account-activation", h.handleActivate)
	r.Post("/auth/signin", h.handleSignin)
	r.Get("/auth/signout", h.handleSignout)
	r.Post("/auth/google-login", h.handleGoogleLogin)
	r.Put("/auth/forgot-password", h.handleForgotPassword)
	r.Put("/auth/reset-password", h.handleResetPassword)
}

// =============================================================================
// Request Structs
// =============================================================================

type preSignupRequest struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

type activateRequest struct {
	Token string `json:"token" validate:"required"`
}

type signinRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type forgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type resetPasswordRequest struct {
	Token       string `json:"resetPasswordLink" validate:"required"`
	NewPassword string `json:"newPassword" validate:"required,min=6"`
}

type googleLoginRequest struct {
	IDToken string `json:"idToken" validate:"required"`
}

// =============================================================================
// Handlers
// =============================================================================

func (h *AuthHandler) handlePreSignup(w http.ResponseWriter, r *http.Request) {
	var req preSignupRequest
	if !h.decode(w, r, &req) {
		return
	}

	out, err := h.authService.PreSignup(r.Context(), service.PreSignupInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]string{
		"message": "Email has been sent to " + out.Email + ". Follow the instruction to activate your account",
	})
}

func (h *AuthHandler) handleSignup(w http.ResponseWriter, r *http.Request) {
	var req preSignupRequest
	if !h.decode(w, r, &req) {
		return
	}

	out, err := h.authService.Signup(r.Context(), service.SignupInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	h.setSessionCookie(w, r, out.Token)
	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"token": out.Token,
		"user":  out.User,
	})
}

func (h *AuthHandler) handleActivate(w http.ResponseWriter, r *http.Request) {
	var req activateRequest
	if !h.decode(w, r, &req) {
		return
	}

	out, err := h.authService.Activate(r.Context(), service.ActivateInput{Token: req.Token})
	if err != nil {
		writeError(w, err)
		return
	}

	h.setSessionCookie(w, r, out.Token)
	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"token": out.Token,
		"user":  out.User,
	})
}

func (h *AuthHandler) handleSignin(w http.ResponseWriter, r *http.Request) {
	var req signinRequest
	if !h.decode(w, r, &req) {
		return
	}

	out, err := h.authService.Signin(r.Context(), service.SigninInput{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	h.setSessionCookie(w, r, out.Token)
	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"token": out.Token,
		"user":  out.User,
	})
}

func (h *AuthHandler) handleSignout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     h.cookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		MaxAge:   -1,
	})
	writeJSON(w, http.StatusCreated, map[string]string{"message": "Signout success"})
}

func (h *AuthHandler) handleGoogleLogin(w http.ResponseWriter, r *http.Request) {
	var req googleLoginRequest
	if !h.decode(w, r, &req) {
		return
	}

	out, err := h.authService.GoogleLogin(r.Context(), service.GoogleLoginInput{Assertion: req.IDToken})
	if err != nil {
		writeError(w, err)
		return
	}

	h.setSessionCookie(w, r, out.Token)
	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"token": out.Token,
		"user":  out.User,
	})
}

func (h *AuthHandler) handleForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req forgotPasswordRequest
	if !h.decode(w, r, &req) {
		return
	}

	out, err := h.authService.ForgotPassword(r.Context(), service.ForgotPasswordInput{Email: req.Email})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]string{
		"message": "Email has been sent to " + out.Email + ". Follow the instruction to reset your password",
	})
}

func (h *AuthHandler) handleResetPassword(w http.ResponseWriter, r *http.Request) {
	var req resetPasswordRequest
	if !h.decode(w, r, &req) {
		return
	}

	err := h.authService.ResetPassword(r.Context(), service.ResetPasswordInput{
		Token:       req.Token,
		NewPassword: req.NewPassword,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]string{
		"message": "Great! Now you can login with your new password",
	})
}

// =============================================================================
// Helpers
// =============================================================================

// decode parses and validates the request body, writing the error response
// itself on failure.
func (h *AuthHandler) decode(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeValidationError(w, "invalid request body")
		return false
	}
	if err := h.validate.Struct(v); err != nil {
		writeValidationError(w, validationMessage(err))
		return false
	}
	return true
}

// setSessionCookie attaches the session token as an HTTP-only cookie. The
// token is also echoed in the JSON body for clients that prefer the
// Authorization header.
func (h *AuthHandler) setSessionCookie(w http.ResponseWriter, r *http.Request, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     h.cookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteStrictMode,
		MaxAge:   int(h.authService.SessionTTL() / time.Second),
	})
}
