package apiserver

import (
	"encoding/json"
	"net/http"

	"matchflix/internal/errs"
	"matchflix/internal/models"
	"matchflix/internal/services"
)

// AuthHandler handles registration and login requests.
type AuthHandler struct {
	authService services.AuthService
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService services.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// RegisterPayload defines the expected JSON body for registration.
type RegisterPayload struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

// LoginPayload defines the expected JSON body for login.
type LoginPayload struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResponse is the body returned by both register and login.
type AuthResponse struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

// RegisterHandler handles POST /api/auth/register
func (h *AuthHandler) RegisterHandler(w http.ResponseWriter, r *http.Request) {
	var payload RegisterPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		errs.ReturnError(w, r, errs.Errorf(errs.EINVALID, "invalid request body"))
		return
	}
	defer r.Body.Close()

	user, token, err := h.authService.Register(r.Context(), payload.Email, payload.Password, payload.Name)
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	writeJSONResponse(w, http.StatusCreated, &AuthResponse{Token: token, User: user})
}

// LoginHandler handles POST /api/auth/login
func (h *AuthHandler) LoginHandler(w http.ResponseWriter, r *http.Request) {
	var payload LoginPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		errs.ReturnError(w, r, errs.Errorf(errs.EINVALID, "invalid request body"))
		return
	}
	defer r.Body.Close()

	user, token, err := h.authService.Login(r.Context(), payload.Email, payload.Password)
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, &AuthResponse{Token: token, User: user})
}
