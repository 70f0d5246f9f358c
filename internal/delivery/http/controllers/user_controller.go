package controllers

import (
	"log/slog"
	"net/http"
	"strings"

	"letsassist/internal/delivery/http/helpers"
	"letsassist/internal/delivery/http/middleware"
	"letsassist/internal/domain"
)

// UpdateProfileRequest is the request body for PATCH /auth/me. All fields are
// optional; absent fields keep their current value.
type UpdateProfileRequest struct {
	Email    *string `json:"email"`
	Name     *string `json:"name"`
	LastName *string `json:"last_name"`
}

// Validate implements Validator.
func (u UpdateProfileRequest) Validate() []string {
	var errs []string
	if u.Email != nil {
		email := strings.TrimSpace(strings.ToLower(*u.Email))
		if email == "" {
			errs = append(errs, "email must not be empty")
		} else if !emailRegex.MatchString(email) {
			errs = append(errs, "invalid email format")
		}
	}
	if u.Email == nil && u.Name == nil && u.LastName == nil {
		errs = append(errs, "no fields to update")
	}
	return errs
}

// ProfileSuccessResponse is the success response envelope for the profile endpoints (200).
type ProfileSuccessResponse struct {
	Data  *domain.User      `json:"data"`
	Error *helpers.APIError `json:"error"`
}

type UserController struct {
	Logger  *slog.Logger
	Service domain.UserService
}

func NewUserController(logger *slog.Logger, svc domain.UserService) *UserController {
	return &UserController{
		Logger:  logger,
		Service: svc,
	}
}

// GetMe godoc
// @Summary Get the authenticated user's profile
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} controllers.ProfileSuccessResponse "data contains the user"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /auth/me [get]
func (c *UserController) GetMe(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	user, err := c.Service.GetByID(r.Context(), userID)
	if err != nil {
		writeDomainError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, user)
}

// UpdateMe godoc
// @Summary Update the authenticated user's profile
// @Description Partially update e-mail, name, or last name. Absent fields are left unchanged.
// @Tags auth
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body UpdateProfileRequest true "Fields to update"
// @Success 200 {object} controllers.ProfileSuccessResponse "data contains the updated user"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict (email already taken)"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /auth/me [patch]
func (c *UserController) UpdateMe(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	var req UpdateProfileRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	user, err := c.Service.GetByID(r.Context(), userID)
	if err != nil {
		writeDomainError(c.Logger, w, r, err)
		return
	}
	if req.Email != nil {
		user.Email = strings.TrimSpace(strings.ToLower(*req.Email))
	}
	if req.Name != nil {
		user.Name = *req.Name
	}
	if req.LastName != nil {
		user.LastName = *req.LastName
	}
	if err := c.Service.Update(r.Context(), user); err != nil {
		writeDomainError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, user)
}
