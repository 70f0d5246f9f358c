package controllers

import (
	"log/slog"
	"net/http"
	"strings"

	"letsassist/internal/delivery/http/helpers"
	"letsassist/internal/delivery/http/middleware"
	"letsassist/internal/domain"
)

// CreateSignupRequest is the request body for POST /projects/{projectID}/signups.
// slot_key is "oneTime" for one-time projects, "<date>-<index>" for multi-day
// slots, or the role name for same-day multi-area projects.
type CreateSignupRequest struct {
	SlotKey string `json:"slot_key"`
}

// Validate implements Validator.
func (c CreateSignupRequest) Validate() []string {
	if strings.TrimSpace(c.SlotKey) == "" {
		return []string{"slot_key is required"}
	}
	return nil
}

// CreateSignupSuccessResponse is the success response envelope for POST /projects/{projectID}/signups (201).
type CreateSignupSuccessResponse struct {
	Data  *domain.Signup    `json:"data"`
	Error *helpers.APIError `json:"error"`
}

// ListProjectSignupsResponse is the data payload for GET /projects/{projectID}/signups (200).
type ListProjectSignupsResponse struct {
	Items []*domain.SignupWithUser `json:"items"`
}

// ListMySignupsResponse is the data payload for GET /signups (200).
type ListMySignupsResponse struct {
	Items []*domain.SignupWithProject `json:"items"`
}

// CancelSignupResponse is the response body for DELETE /signups/{signupID}.
type CancelSignupResponse struct {
	Status string `json:"status"`
}

type SignupController struct {
	Logger  *slog.Logger
	Service domain.SignupService
}

func NewSignupController(logger *slog.Logger, svc domain.SignupService) *SignupController {
	return &SignupController{
		Logger:  logger,
		Service: svc,
	}
}

// CreateSignup godoc
// @Summary Sign up for a project slot
// @Description Register the authenticated user for one slot of an upcoming project. The response carries the check-in code, which is also emailed to the volunteer.
// @Tags signups
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param projectID path string true "Project ID (UUID)"
// @Param body body CreateSignupRequest true "Slot to sign up for"
// @Success 201 {object} controllers.CreateSignupSuccessResponse "data contains the signup with its check-in code"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found (project or slot)"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict (slot full or already signed up), locked (project started or cancelled)"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /projects/{projectID}/signups [post]
func (c *SignupController) CreateSignup(w http.ResponseWriter, r *http.Request) {
	projectID := r.PathValue("projectID")
	if projectID == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing projectID")
		return
	}
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	var req CreateSignupRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	signup, err := c.Service.SignupForSlot(r.Context(), projectID, strings.TrimSpace(req.SlotKey), userID)
	if err != nil {
		writeDomainError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, signup)
}

// ListProjectSignups godoc
// @Summary List a project's signups
// @Description Returns all signups for the project with volunteer names and emails. Only the project creator or an admin/staff member of the owning organization may list.
// @Tags signups
// @Produce json
// @Security BearerAuth
// @Param projectID path string true "Project ID (UUID)"
// @Success 200 {object} helpers.APIResponse "data contains items"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /projects/{projectID}/signups [get]
func (c *SignupController) ListProjectSignups(w http.ResponseWriter, r *http.Request) {
	projectID := r.PathValue("projectID")
	if projectID == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing projectID")
		return
	}
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	list, err := c.Service.ListProjectSignups(r.Context(), projectID, userID)
	if err != nil {
		writeDomainError(c.Logger, w, r, err)
		return
	}
	if list == nil {
		list = []*domain.SignupWithUser{}
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, ListProjectSignupsResponse{Items: list})
}

// ListMySignups godoc
// @Summary List the authenticated user's signups
// @Description Returns the caller's signups, newest first, each paired with its project. Signups whose project has been deleted are omitted.
// @Tags signups
// @Produce json
// @Security BearerAuth
// @Success 200 {object} helpers.APIResponse "data contains items"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /signups [get]
func (c *SignupController) ListMySignups(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	list, err := c.Service.ListMySignups(r.Context(), userID)
	if err != nil {
		writeDomainError(c.Logger, w, r, err)
		return
	}
	if list == nil {
		list = []*domain.SignupWithProject{}
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, ListMySignupsResponse{Items: list})
}

// CancelSignup godoc
// @Summary Cancel a signup
// @Description Remove the authenticated user's own signup. Other users' signups resolve as not found.
// @Tags signups
// @Produce json
// @Security BearerAuth
// @Param signupID path string true "Signup ID (UUID)"
// @Success 200 {object} helpers.APIResponse "data contains status: cancelled"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /signups/{signupID} [delete]
func (c *SignupController) CancelSignup(w http.ResponseWriter, r *http.Request) {
	signupID := r.PathValue("signupID")
	if signupID == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing signupID")
		return
	}
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	if err := c.Service.CancelSignup(r.Context(), signupID, userID); err != nil {
		writeDomainError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, CancelSignupResponse{Status: "cancelled"})
}
