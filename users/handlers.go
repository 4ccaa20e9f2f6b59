package users

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/user/storefront-go/apperror"
	"github.com/user/storefront-go/auth"
)

// Handlers exposes the admin user endpoints. Both routes sit behind
// auth.Authenticate and auth.RequireAdmin.
type Handlers struct {
	service *Service
}

// NewHandlers creates new Handlers.
func NewHandlers(service *Service) *Handlers {
	return &Handlers{service: service}
}

// HandleListUsers godoc
// @Summary List users
// @Description Lists every account without password hashes. Admin only.
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Success 200 {array} users.UserSummary
// @Failure 401 {object} apperror.ErrorResponse
// @Failure 403 {object} apperror.ErrorResponse
// @Router /admin/users [get]
func (h *Handlers) HandleListUsers() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		users, err := h.service.ListUsers(r.Context())
		if err != nil {
			auth.WriteError(w, r, err)
			return
		}
		auth.WriteJSON(w, http.StatusOK, users)
	}
}

// HandleDeleteUser godoc
// @Summary Delete a user
// @Description Deletes an account. Admins cannot delete themselves.
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Success 204 "Deleted"
// @Failure 400 {object} apperror.ErrorResponse "Self-delete"
// @Failure 403 {object} apperror.ErrorResponse
// @Failure 404 {object} apperror.ErrorResponse
// @Router /admin/users/{id} [delete]
func (h *Handlers) HandleDeleteUser() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		callerID, ok := auth.UserIDFromContext(r.Context())
		if !ok {
			auth.WriteError(w, r, apperror.NewInternalError("identity missing from request context", nil))
			return
		}

		targetID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
		if err != nil {
			auth.WriteError(w, r, apperror.NewNotFoundError("User not found.", err))
			return
		}

		if err := h.service.DeleteUser(r.Context(), callerID, targetID); err != nil {
			auth.WriteError(w, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
