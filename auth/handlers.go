package auth

import (
	"net/http"

	"github.com/user/storefront-go/apperror"
)

// Handlers wraps the Service to provide HTTP handlers.
type Handlers struct {
	service *Service
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(service *Service) *Handlers {
	return &Handlers{service: service}
}

// HandleRegister godoc
// @Summary Register a user
// @Description Creates an account. On a fresh install the first account may become admin.
// @Tags Users
// @Accept json
// @Produce json
// @Param registerBody body auth.RegisterRequest true "Registration details"
// @Success 201 {object} auth.RegisterResponse
// @Failure 400 {object} apperror.ErrorResponse "Missing fields or email already registered"
// @Failure 500 {object} apperror.ErrorResponse
// @Router /users/register [post]
func (h *Handlers) HandleRegister() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req RegisterRequest
		if err := DecodeJSON(r, &req); err != nil {
			WriteError(w, r, err)
			return
		}

		user, err := h.service.Register(r.Context(), req.Email, req.Password)
		if err != nil {
			WriteError(w, r, err)
			return
		}

		WriteJSON(w, http.StatusCreated, RegisterResponse{ID: user.ID, Email: user.Email})
	}
}

// HandleLogin godoc
// @Summary Log in
// @Description Exchanges email and password for a bearer token valid for one hour.
// @Tags Users
// @Accept json
// @Produce json
// @Param loginBody body auth.LoginRequest true "Credentials"
// @Success 200 {object} auth.LoginResponse
// @Failure 400 {object} apperror.ErrorResponse
// @Failure 401 {object} apperror.ErrorResponse "Invalid email or password"
// @Router /users/login [post]
func (h *Handlers) HandleLogin() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req LoginRequest
		if err := DecodeJSON(r, &req); err != nil {
			WriteError(w, r, err)
			return
		}

		res, err := h.service.Login(r.Context(), req.Email, req.Password)
		if err != nil {
			WriteError(w, r, err)
			return
		}

		WriteJSON(w, http.StatusOK, LoginResponse{
			Message:   "Login successful!",
			Token:     res.Token,
			ExpiresAt: res.ExpiresAt,
		})
	}
}

// HandleMe godoc
// @Summary Current identity
// @Description Returns the identity asserted by the bearer token.
// @Tags Users
// @Produce json
// @Success 200 {object} auth.MeResponse
// @Failure 401 {object} apperror.ErrorResponse
// @Failure 403 {object} apperror.ErrorResponse
// @Security BearerAuth
// @Router /users/me [get]
func (h *Handlers) HandleMe() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := ClaimsFromContext(r.Context())
		if !ok {
			WriteError(w, r, apperror.NewInternalError("identity missing from request context", nil))
			return
		}
		WriteJSON(w, http.StatusOK, MeResponse{ID: claims.UserID, Email: claims.Email, IsAdmin: claims.IsAdmin})
	}
}
