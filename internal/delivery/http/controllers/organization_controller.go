package controllers

import (
	"log/slog"
	"net/http"
	"strings"

	"letsassist/internal/delivery/http/helpers"
	"letsassist/internal/delivery/http/middleware"
	"letsassist/internal/domain"
)

// CreateOrganizationRequest is the request body for POST /organizations.
type CreateOrganizationRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Validate implements Validator.
func (c CreateOrganizationRequest) Validate() []string {
	if strings.TrimSpace(c.Name) == "" {
		return []string{"name is required"}
	}
	return nil
}

// AddMemberRequest is the request body for POST /organizations/{orgID}/members.
type AddMemberRequest struct {
	Email string `json:"email"`
	Role  string `json:"role"`
}

// Validate implements Validator.
func (a AddMemberRequest) Validate() []string {
	var errs []string
	email := strings.TrimSpace(strings.ToLower(a.Email))
	if email == "" {
		errs = append(errs, "email is required")
	} else if !emailRegex.MatchString(email) {
		errs = append(errs, "invalid email format")
	}
	if !domain.ValidMembershipRole(domain.MembershipRole(a.Role)) {
		errs = append(errs, "role must be \"admin\", \"staff\", or \"member\"")
	}
	return errs
}

// UpdateMemberRoleRequest is the request body for PATCH /organizations/{orgID}/members/{userID}.
type UpdateMemberRoleRequest struct {
	Role string `json:"role"`
}

// Validate implements Validator.
func (u UpdateMemberRoleRequest) Validate() []string {
	if !domain.ValidMembershipRole(domain.MembershipRole(u.Role)) {
		return []string{"role must be \"admin\", \"staff\", or \"member\""}
	}
	return nil
}

// CreateOrganizationSuccessResponse is the success response envelope for POST /organizations (201).
type CreateOrganizationSuccessResponse struct {
	Data  *domain.Organization `json:"data"`
	Error *helpers.APIError    `json:"error"`
}

// AddMemberSuccessResponse is the success response envelope for POST /organizations/{orgID}/members (201).
type AddMemberSuccessResponse struct {
	Data  *domain.OrganizationMember `json:"data"`
	Error *helpers.APIError          `json:"error"`
}

// ListMembersResponse is the data payload for GET /organizations/{orgID}/members (200).
type ListMembersResponse struct {
	Items []*domain.OrganizationMember `json:"items"`
}

// MemberStatusResponse is the response body for member role updates and removals.
type MemberStatusResponse struct {
	Status string `json:"status"`
}

type OrganizationController struct {
	Logger  *slog.Logger
	Service domain.OrganizationService
}

func NewOrganizationController(logger *slog.Logger, svc domain.OrganizationService) *OrganizationController {
	return &OrganizationController{
		Logger:  logger,
		Service: svc,
	}
}

// CreateOrganization godoc
// @Summary Create an organization
// @Description Create an organization. The authenticated user becomes an admin member.
// @Tags organizations
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body CreateOrganizationRequest true "Organization data"
// @Success 201 {object} controllers.CreateOrganizationSuccessResponse "data contains the created organization"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /organizations [post]
func (c *OrganizationController) CreateOrganization(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	var req CreateOrganizationRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	org, err := c.Service.CreateOrganization(r.Context(), strings.TrimSpace(req.Name), req.Description, userID)
	if err != nil {
		writeDomainError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, org)
}

// GetOrganization godoc
// @Summary Get an organization by ID
// @Tags organizations
// @Produce json
// @Param orgID path string true "Organization ID (UUID)"
// @Success 200 {object} controllers.CreateOrganizationSuccessResponse "data contains the organization"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /organizations/{orgID} [get]
func (c *OrganizationController) GetOrganization(w http.ResponseWriter, r *http.Request) {
	orgID := r.PathValue("orgID")
	if orgID == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing orgID")
		return
	}
	org, err := c.Service.GetOrganization(r.Context(), orgID)
	if err != nil {
		writeDomainError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, org)
}

// AddMember godoc
// @Summary Add a member to an organization
// @Description Add the user with the given email as a member with the given role. Caller must be an admin of the organization.
// @Tags organizations
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param orgID path string true "Organization ID (UUID)"
// @Param body body AddMemberRequest true "Member email and role"
// @Success 201 {object} controllers.AddMemberSuccessResponse "data contains the added member"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden (not an admin)"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found (organization or user)"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict (already a member)"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /organizations/{orgID}/members [post]
func (c *OrganizationController) AddMember(w http.ResponseWriter, r *http.Request) {
	orgID := r.PathValue("orgID")
	if orgID == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing orgID")
		return
	}
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	var req AddMemberRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	member, err := c.Service.AddMemberByEmail(r.Context(), orgID, req.Email, domain.MembershipRole(req.Role), userID)
	if err != nil {
		writeDomainError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, member)
}

// UpdateMemberRole godoc
// @Summary Change a member's role
// @Description Change the role of an existing member. Caller must be an admin and may not change their own role.
// @Tags organizations
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param orgID path string true "Organization ID (UUID)"
// @Param userID path string true "Member's user ID (UUID)"
// @Param body body UpdateMemberRoleRequest true "New role"
// @Success 200 {object} helpers.APIResponse "data contains status: updated"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request (including self role change)"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden (not an admin)"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /organizations/{orgID}/members/{userID} [patch]
func (c *OrganizationController) UpdateMemberRole(w http.ResponseWriter, r *http.Request) {
	orgID := r.PathValue("orgID")
	memberID := r.PathValue("userID")
	if orgID == "" || memberID == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing orgID or userID")
		return
	}
	callerID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	var req UpdateMemberRoleRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	if err := c.Service.UpdateMemberRole(r.Context(), orgID, memberID, domain.MembershipRole(req.Role), callerID); err != nil {
		writeDomainError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, MemberStatusResponse{Status: "updated"})
}

// RemoveMember godoc
// @Summary Remove a member from an organization
// @Description Remove a member. Caller must be an admin and may not remove themselves.
// @Tags organizations
// @Produce json
// @Security BearerAuth
// @Param orgID path string true "Organization ID (UUID)"
// @Param userID path string true "Member's user ID (UUID)"
// @Success 200 {object} helpers.APIResponse "data contains status: removed"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request (including self removal)"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden (not an admin)"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /organizations/{orgID}/members/{userID} [delete]
func (c *OrganizationController) RemoveMember(w http.ResponseWriter, r *http.Request) {
	orgID := r.PathValue("orgID")
	memberID := r.PathValue("userID")
	if orgID == "" || memberID == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing orgID or userID")
		return
	}
	callerID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	if err := c.Service.RemoveMember(r.Context(), orgID, memberID, callerID); err != nil {
		writeDomainError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, MemberStatusResponse{Status: "removed"})
}

// ListMembers godoc
// @Summary List an organization's members
// @Description Returns the members with names, emails, and roles. Caller must hold any membership in the organization.
// @Tags organizations
// @Produce json
// @Security BearerAuth
// @Param orgID path string true "Organization ID (UUID)"
// @Success 200 {object} helpers.APIResponse "data contains items"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden (not a member)"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /organizations/{orgID}/members [get]
func (c *OrganizationController) ListMembers(w http.ResponseWriter, r *http.Request) {
	orgID := r.PathValue("orgID")
	if orgID == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing orgID")
		return
	}
	callerID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	list, err := c.Service.ListMembers(r.Context(), orgID, callerID)
	if err != nil {
		writeDomainError(c.Logger, w, r, err)
		return
	}
	if list == nil {
		list = []*domain.OrganizationMember{}
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, ListMembersResponse{Items: list})
}
