package domain

import (
	"context"
	"errors"
	"time"
)

// Sentinel errors for signup operations.
var (
	ErrSlotFull        = errors.New("slot is full")
	ErrAlreadySignedUp = errors.New("already signed up for this slot")
	ErrUnknownSlot     = errors.New("unknown schedule slot")
)

// Signup is a volunteer's registration for one slot of a project, addressed
// by the slot key (see Schedule.SlotKeys). CheckInCode is presented at the
// event for attendance confirmation.
// swagger:model Signup
type Signup struct {
	ID          string     `json:"id"`
	ProjectID   string     `json:"project_id"`
	UserID      string     `json:"user_id"`
	SlotKey     string     `json:"slot_key"`
	CheckInCode string     `json:"check_in_code"`
	RemindedAt  *time.Time `json:"reminded_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// NewSignup returns a new Signup. ID is typically set by the repository on create.
func NewSignup(projectID, userID, slotKey, checkInCode string, createdAt, updatedAt time.Time) *Signup {
	return &Signup{
		ProjectID:   projectID,
		UserID:      userID,
		SlotKey:     slotKey,
		CheckInCode: checkInCode,
		CreatedAt:   createdAt,
		UpdatedAt:   updatedAt,
	}
}

// SignupWithUser joins a signup with volunteer details for manager listings
// and reminder delivery.
type SignupWithUser struct {
	*Signup
	Name     string `json:"name"`
	LastName string `json:"last_name"`
	Email    string `json:"email"`
}

// SignupWithProject joins a signup with its project for volunteer-facing lists.
type SignupWithProject struct {
	Signup  *Signup  `json:"signup"`
	Project *Project `json:"project"`
}

// SignupRepository defines storage operations for project signups.
type SignupRepository interface {
	Create(ctx context.Context, s *Signup) error
	GetByID(ctx context.Context, id string) (*Signup, error)
	// Exists reports whether the user already holds a signup for the slot.
	Exists(ctx context.Context, projectID, userID, slotKey string) (bool, error)
	// CountBySlot returns the number of signups holding the slot, for capacity checks.
	CountBySlot(ctx context.Context, projectID, slotKey string) (int, error)
	ListByProjectID(ctx context.Context, projectID string) ([]*SignupWithUser, error)
	ListByUserID(ctx context.Context, userID string) ([]*Signup, error)
	ListUnremindedByProjectID(ctx context.Context, projectID string) ([]*SignupWithUser, error)
	MarkReminded(ctx context.Context, id string, at time.Time) error
	Delete(ctx context.Context, id string) error
}

// SignupService defines the business logic for volunteer signups.
type SignupService interface {
	// SignupForSlot registers the caller for the slot. The project must be
	// visible to the caller, not cancelled, and not yet started; the slot
	// must exist, have free capacity, and not already hold the caller.
	SignupForSlot(ctx context.Context, projectID, slotKey, userID string) (*Signup, error)
	// CancelSignup removes the caller's own signup.
	CancelSignup(ctx context.Context, signupID, userID string) error
	// ListProjectSignups lists a project's signups. Caller must manage the project.
	ListProjectSignups(ctx context.Context, projectID, callerID string) ([]*SignupWithUser, error)
	// ListMySignups lists the caller's signups with their projects.
	ListMySignups(ctx context.Context, userID string) ([]*SignupWithProject, error)
}
