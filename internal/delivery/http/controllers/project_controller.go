package controllers

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	ics "github.com/arran4/golang-ical"

	"letsassist/internal/delivery/http/helpers"
	"letsassist/internal/delivery/http/middleware"
	"letsassist/internal/domain"
)

// CreateProjectRequest is the request body for POST /projects. Exactly one
// schedule variant must be populated, matching event_type.
type CreateProjectRequest struct {
	Title          string          `json:"title"`
	Description    string          `json:"description"`
	Location       string          `json:"location"`
	EventType      string          `json:"event_type"`
	Schedule       domain.Schedule `json:"schedule"`
	IsPrivate      bool            `json:"is_private"`
	OrganizationID *string         `json:"organization_id"`
}

// Validate implements Validator. Schedule timing rules are checked by the service.
func (c CreateProjectRequest) Validate() []string {
	var errs []string
	if strings.TrimSpace(c.Title) == "" {
		errs = append(errs, "title is required")
	}
	switch domain.EventType(c.EventType) {
	case domain.EventOneTime, domain.EventMultiDay, domain.EventSameDayMultiArea:
	default:
		errs = append(errs, "event_type must be \"oneTime\", \"multiDay\", or \"sameDayMultiArea\"")
	}
	if c.OrganizationID != nil && strings.TrimSpace(*c.OrganizationID) == "" {
		errs = append(errs, "organization_id must not be empty")
	}
	return errs
}

// UpdateProjectRequest is the request body for PATCH /projects/{projectID}.
// Schedules and privacy are immutable after creation; only the descriptive
// fields can change.
type UpdateProjectRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Location    *string `json:"location"`
}

// Validate implements Validator.
func (u UpdateProjectRequest) Validate() []string {
	var errs []string
	if u.Title != nil && strings.TrimSpace(*u.Title) == "" {
		errs = append(errs, "title must not be empty")
	}
	if u.Title == nil && u.Description == nil && u.Location == nil {
		errs = append(errs, "no fields to update")
	}
	return errs
}

// CancelProjectRequest is the request body for POST /projects/{projectID}/cancel.
type CancelProjectRequest struct {
	Reason string `json:"reason"`
}

// Validate implements Validator.
func (c CancelProjectRequest) Validate() []string {
	if strings.TrimSpace(c.Reason) == "" {
		return []string{"reason is required"}
	}
	return nil
}

// ListProjectsResponse is the data payload for GET /projects (200).
type ListProjectsResponse struct {
	Items      []*domain.ProjectWithTiming `json:"items"`
	Pagination helpers.PaginationMeta      `json:"pagination"`
}

// CreateProjectSuccessResponse is the success response envelope for POST /projects (201).
type CreateProjectSuccessResponse struct {
	Data  *domain.Project   `json:"data"`
	Error *helpers.APIError `json:"error"`
}

// GetProjectSuccessResponse is the success response envelope for GET /projects/{projectID} (200).
type GetProjectSuccessResponse struct {
	Data  *domain.ProjectWithTiming `json:"data"`
	Error *helpers.APIError         `json:"error"`
}

// ListProjectsSuccessResponse is the success response envelope for GET /projects (200).
type ListProjectsSuccessResponse struct {
	Data  ListProjectsResponse `json:"data"`
	Error *helpers.APIError    `json:"error"`
}

// DeleteProjectResponse is the response body for DELETE /projects/{projectID}.
type DeleteProjectResponse struct {
	Status string `json:"status"`
}

type ProjectController struct {
	Logger  *slog.Logger
	Service domain.ProjectService
}

func NewProjectController(logger *slog.Logger, svc domain.ProjectService) *ProjectController {
	return &ProjectController{
		Logger:  logger,
		Service: svc,
	}
}

// CreateProject godoc
// @Summary Create a project
// @Description Create a volunteering project. event_type selects which schedule variant must be populated. Passing organization_id requires an admin or staff role in that organization; omitting it creates a personal project.
// @Tags projects
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body CreateProjectRequest true "Project data"
// @Success 201 {object} controllers.CreateProjectSuccessResponse "data contains the created project"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden (not staff of the organization)"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /projects [post]
func (c *ProjectController) CreateProject(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	var req CreateProjectRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	now := time.Now()
	project := domain.NewProject(
		strings.TrimSpace(req.Title),
		req.Description,
		req.Location,
		domain.EventType(req.EventType),
		req.Schedule,
		req.IsPrivate,
		req.OrganizationID,
		userID,
		now,
		now,
	)
	created, err := c.Service.CreateProject(r.Context(), project, userID)
	if err != nil {
		writeDomainError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, created)
}

// ListProjects godoc
// @Summary List visible projects
// @Description Returns projects visible to the caller, newest first. Anonymous callers see public projects only; authenticated callers additionally see private projects of organizations they belong to and their own. The optional status filter matches the derived status at request time.
// @Tags projects
// @Produce json
// @Param status query string false "Filter by derived status: upcoming, in-progress, completed, or cancelled"
// @Param page query int false "Page number (default 1)"
// @Param page_size query int false "Page size (default 20, max 100)"
// @Success 200 {object} controllers.ListProjectsSuccessResponse "data contains items and pagination"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /projects [get]
func (c *ProjectController) ListProjects(w http.ResponseWriter, r *http.Request) {
	callerID, _ := middleware.UserIDFromContext(r.Context())
	status := domain.ProjectStatus(strings.TrimSpace(r.URL.Query().Get("status")))
	switch status {
	case "", domain.StatusUpcoming, domain.StatusInProgress, domain.StatusCompleted, domain.StatusCancelled:
	default:
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "invalid status filter")
		return
	}
	params := helpers.ParsePagination(r)
	list, total, err := c.Service.ListProjects(r.Context(), callerID, status, params)
	if err != nil {
		writeDomainError(c.Logger, w, r, err)
		return
	}
	if list == nil {
		list = []*domain.ProjectWithTiming{}
	}
	meta := helpers.NewPaginationMeta(params.Page, params.PageSize, total)
	helpers.WriteJSONSuccess(w, http.StatusOK, ListProjectsResponse{Items: list, Pagination: meta})
}

// GetProject godoc
// @Summary Get a project by ID
// @Description Returns the project with its derived status and start/end instants. Private projects resolve as not found for callers outside the owning organization.
// @Tags projects
// @Produce json
// @Param projectID path string true "Project ID (UUID)"
// @Success 200 {object} controllers.GetProjectSuccessResponse "data contains the project with timing"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /projects/{projectID} [get]
func (c *ProjectController) GetProject(w http.ResponseWriter, r *http.Request) {
	projectID := r.PathValue("projectID")
	if projectID == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing projectID")
		return
	}
	callerID, _ := middleware.UserIDFromContext(r.Context())
	project, err := c.Service.GetProject(r.Context(), projectID, callerID)
	if err != nil {
		writeDomainError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, project)
}

// UpdateProject godoc
// @Summary Update a project's details
// @Description Partially update title, description, or location. Only the creator or an admin/staff member of the owning organization may update. Schedules are immutable.
// @Tags projects
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param projectID path string true "Project ID (UUID)"
// @Param body body UpdateProjectRequest true "Fields to update"
// @Success 200 {object} controllers.CreateProjectSuccessResponse "data contains the updated project"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /projects/{projectID} [patch]
func (c *ProjectController) UpdateProject(w http.ResponseWriter, r *http.Request) {
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
	var req UpdateProjectRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	project, err := c.Service.UpdateProject(r.Context(), projectID, userID, req.Title, req.Description, req.Location)
	if err != nil {
		writeDomainError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, project)
}

// CancelProject godoc
// @Summary Cancel a project
// @Description Cancel a project with a reason. Allowed until the project's start instant; volunteers with signups are notified by email. Cancelled is terminal.
// @Tags projects
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param projectID path string true "Project ID (UUID)"
// @Param body body CancelProjectRequest true "Cancellation reason"
// @Success 200 {object} controllers.CreateProjectSuccessResponse "data contains the cancelled project"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: locked (already started, completed, or cancelled)"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /projects/{projectID}/cancel [post]
func (c *ProjectController) CancelProject(w http.ResponseWriter, r *http.Request) {
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
	var req CancelProjectRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	project, err := c.Service.CancelProject(r.Context(), projectID, userID, strings.TrimSpace(req.Reason))
	if err != nil {
		writeDomainError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, project)
}

// DeleteProject godoc
// @Summary Delete a project
// @Description Permanently delete a project and its signups. Active projects cannot be deleted inside the 24 hour window before start (48 hours for organization projects); cancelled projects can be deleted once outside that window.
// @Tags projects
// @Produce json
// @Security BearerAuth
// @Param projectID path string true "Project ID (UUID)"
// @Success 200 {object} helpers.APIResponse "data contains status: deleted"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: locked (inside the pre-start window)"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /projects/{projectID} [delete]
func (c *ProjectController) DeleteProject(w http.ResponseWriter, r *http.Request) {
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
	if err := c.Service.DeleteProject(r.Context(), projectID, userID); err != nil {
		writeDomainError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, DeleteProjectResponse{Status: "deleted"})
}

// ProjectCalendar godoc
// @Summary Export a project's schedule as iCalendar
// @Description Returns a text/calendar feed with one VEVENT per schedule entry: the single occurrence, each multi-day slot, or each named role. Visibility rules match GET /projects/{projectID}.
// @Tags projects
// @Produce text/calendar
// @Param projectID path string true "Project ID (UUID)"
// @Success 200 {string} string "iCalendar document"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /projects/{projectID}/calendar.ics [get]
func (c *ProjectController) ProjectCalendar(w http.ResponseWriter, r *http.Request) {
	projectID := r.PathValue("projectID")
	if projectID == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing projectID")
		return
	}
	callerID, _ := middleware.UserIDFromContext(r.Context())
	project, err := c.Service.GetProject(r.Context(), projectID, callerID)
	if err != nil {
		writeDomainError(c.Logger, w, r, err)
		return
	}
	occurrences, err := project.Occurrences()
	if err != nil {
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, err.Error())
		return
	}

	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId("-//letsassist//projects//EN")
	for i, occ := range occurrences {
		event := cal.AddEvent(fmt.Sprintf("%s-%d@letsassist", project.ID, i))
		event.SetDtStampTime(project.CreatedAt)
		event.SetStartAt(occ.Start)
		event.SetEndAt(occ.End)
		summary := project.Title
		if occ.Name != "" {
			summary = project.Title + " (" + occ.Name + ")"
		}
		event.SetSummary(summary)
		if project.Location != "" {
			event.SetLocation(project.Location)
		}
		if project.Description != "" {
			event.SetDescription(project.Description)
		}
		if project.DerivedStatus == domain.StatusCancelled {
			event.SetStatus(ics.ObjectStatusCancelled)
		}
	}

	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", "attachment; filename=\"project-"+project.ID+".ics\"")
	w.WriteHeader(http.StatusOK)
	_ = cal.SerializeTo(w)
}
