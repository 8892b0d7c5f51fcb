package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
)

// LoginRequest is the request body for /auth/login.
type LoginRequest struct {
	APIKey string `json:"api_key" validate:"required"`
	Client string `json:"client,omitempty" validate:"omitempty,max=64"`
}

// LoginResponse is the response body for /auth/login.
type LoginResponse struct {
	Client    string    `json:"client"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// AuthHandler handles authentication-related HTTP requests.
type AuthHandler struct {
	authService *AuthService
	jwtService  *JWTService
	validator   *validator.Validate
}

// NewAuthHandler creates a new AuthHandler with the given dependencies.
func NewAuthHandler(authService *AuthService, jwtService *JWTService) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		jwtService:  jwtService,
		validator:   validator.New(),
	}
}

// Login exchanges an API key for a bearer token.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if err := h.validator.Struct(req); err != nil {
		verr := asValidationError(err)
		http.Error(w, verr.Error(), HTTPStatus(verr))
		return
	}

	if err := h.authService.Authenticate(req.APIKey); err != nil {
		http.Error(w, err.Error(), HTTPStatus(err))
		return
	}

	client := req.Client
	if client == "" {
		client = "api"
	}

	token, err := h.jwtService.GenerateToken(client)
	if err != nil {
		http.Error(w, "Failed to generate token", http.StatusInternalServerError)
		return
	}

	response := LoginResponse{
		Client:    client,
		Token:     token,
		ExpiresAt: time.Now().Add(h.jwtService.config.TokenTTL),
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(response); err != nil {
		// Log error but response already sent
		return
	}
}

// asValidationError converts a validator error into the API error type,
// reporting the first failing field.
func asValidationError(err error) *ErrValidation {
	if validationErrors, ok := err.(validator.ValidationErrors); ok && len(validationErrors) > 0 {
		ve := validationErrors[0]
		return &ErrValidation{Field: ve.Field(), Message: ve.Tag()}
	}
	return &ErrValidation{Field: "request", Message: "invalid"}
}
