package domain

import (
	"context"
	"errors"
	"time"
)

// Sentinel errors shared across project operations.
var (
	ErrNotFound     = errors.New("not found")
	ErrForbidden    = errors.New("forbidden")
	ErrInvalidInput = errors.New("invalid input")
	// ErrProjectLocked is returned when a cancel or delete request falls
	// outside the project's permitted time window.
	ErrProjectLocked = errors.New("project cannot be modified in its current time window")
)

// Project is a volunteering project with exactly one populated schedule
// variant selected by EventType. Status is partially derived: every value
// except cancelled is recomputed from the schedule and the wall clock on
// read; cancelled, once set, is terminal and never overridden.
type Project struct {
	ID                 string        `json:"id"`
	Title              string        `json:"title"`
	Description        string        `json:"description"`
	Location           string        `json:"location"`
	EventType          EventType     `json:"event_type"`
	Schedule           Schedule      `json:"schedule"`
	Status             ProjectStatus `json:"status"`
	IsPrivate          bool          `json:"is_private"`
	OrganizationID     *string       `json:"organization_id,omitempty"`
	CreatorID          string        `json:"creator_id"`
	CancelledAt        *time.Time    `json:"cancelled_at,omitempty"`
	CancellationReason *string       `json:"cancellation_reason,omitempty"`
	CreatedAt          time.Time     `json:"created_at"`
	UpdatedAt          time.Time     `json:"updated_at"`
}

// NewProject returns a new Project. ID is typically set by the repository on create.
func NewProject(title, description, location string, eventType EventType, schedule Schedule, isPrivate bool, organizationID *string, creatorID string, createdAt, updatedAt time.Time) *Project {
	return &Project{
		Title:          title,
		Description:    description,
		Location:       location,
		EventType:      eventType,
		Schedule:       schedule,
		Status:         StatusUpcoming,
		IsPrivate:      isPrivate,
		OrganizationID: organizationID,
		CreatorID:      creatorID,
		CreatedAt:      createdAt,
		UpdatedAt:      updatedAt,
	}
}

// ProjectFilter narrows project list queries.
type ProjectFilter struct {
	OrganizationID *string
	CreatorID      *string
}

// ProjectRepository defines the interface for project storage.
type ProjectRepository interface {
	Create(ctx context.Context, p *Project) error
	GetByID(ctx context.Context, id string) (*Project, error)
	// List returns all projects matching the filter, newest first. Status
	// filtering and visibility are applied by the service because both
	// derive from the schedule payload and the caller's memberships.
	List(ctx context.Context, filter ProjectFilter) ([]*Project, error)
	UpdateDetails(ctx context.Context, id string, title, description, location *string) (*Project, error)
	// MarkCancelled sets the sticky cancelled status with timestamp and reason.
	MarkCancelled(ctx context.Context, id string, at time.Time, reason string) (*Project, error)
	Delete(ctx context.Context, id string) error
}

// ProjectWithTiming bundles a project with its derived temporal facts for
// API responses. DerivedStatus reflects the wall clock at read time.
type ProjectWithTiming struct {
	*Project
	DerivedStatus ProjectStatus `json:"derived_status"`
	StatusText    string        `json:"status_text"`
	StartsAt      time.Time     `json:"starts_at"`
	EndsAt        time.Time     `json:"ends_at"`
}

// ProjectService defines the business logic for managing projects.
type ProjectService interface {
	CreateProject(ctx context.Context, p *Project, creatorID string) (*Project, error)
	GetProject(ctx context.Context, projectID, callerID string) (*ProjectWithTiming, error)
	// ListProjects returns visible projects, optionally filtered by derived
	// status, with in-memory pagination over the filtered set.
	ListProjects(ctx context.Context, callerID string, status ProjectStatus, params PaginationParams) ([]*ProjectWithTiming, int, error)
	UpdateProject(ctx context.Context, projectID, callerID string, title, description, location *string) (*Project, error)
	CancelProject(ctx context.Context, projectID, callerID, reason string) (*Project, error)
	DeleteProject(ctx context.Context, projectID, callerID string) error
}
