package domain

import (
	"context"
	"errors"
	"time"
)

// ErrAlreadyMember is returned when adding a user who is already a member of the organization.
var ErrAlreadyMember = errors.New("already a member")

// MembershipRole is a user's role within an organization.
type MembershipRole string

const (
	RoleAdmin  MembershipRole = "admin"
	RoleStaff  MembershipRole = "staff"
	RoleMember MembershipRole = "member"
)

// ValidMembershipRole reports whether role is one of admin, staff, or member.
func ValidMembershipRole(role MembershipRole) bool {
	return role == RoleAdmin || role == RoleStaff || role == RoleMember
}

// Organization represents a group that owns projects and manages members.
type Organization struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// NewOrganization returns a new Organization. ID is typically set by the repository on create.
func NewOrganization(name, description string, createdAt, updatedAt time.Time) *Organization {
	return &Organization{
		Name:        name,
		Description: description,
		CreatedAt:   createdAt,
		UpdatedAt:   updatedAt,
	}
}

// OrganizationMembership is the caller-side view of a membership, used by
// the project visibility and management predicates.
type OrganizationMembership struct {
	OrganizationID string         `json:"organization_id"`
	Role           MembershipRole `json:"role"`
}

// OrganizationMember is a membership row joined with user details for listings.
// swagger:model OrganizationMember
type OrganizationMember struct {
	OrganizationID string         `json:"organization_id"`
	UserID         string         `json:"user_id"`
	Role           MembershipRole `json:"role"`
	Name           string         `json:"name"`
	LastName       string         `json:"last_name"`
	Email          string         `json:"email"`
}

// OrganizationRepository defines the interface for organization and membership storage.
type OrganizationRepository interface {
	Create(ctx context.Context, org *Organization) error
	GetByID(ctx context.Context, id string) (*Organization, error)
	AddMember(ctx context.Context, orgID, userID string, role MembershipRole) error
	UpdateMemberRole(ctx context.Context, orgID, userID string, role MembershipRole) error
	RemoveMember(ctx context.Context, orgID, userID string) error
	ListMembers(ctx context.Context, orgID string) ([]*OrganizationMember, error)
	// ListMembershipsByUserID returns every membership of the user, feeding
	// the visibility and management predicates.
	ListMembershipsByUserID(ctx context.Context, userID string) ([]OrganizationMembership, error)
}

// OrganizationService defines the business logic for organizations.
type OrganizationService interface {
	// CreateOrganization creates the organization and makes the creator an admin member.
	CreateOrganization(ctx context.Context, name, description, creatorID string) (*Organization, error)
	GetOrganization(ctx context.Context, orgID string) (*Organization, error)
	// AddMemberByEmail adds the user with the given email. Caller must be an admin.
	AddMemberByEmail(ctx context.Context, orgID, email string, role MembershipRole, callerID string) (*OrganizationMember, error)
	// UpdateMemberRole changes a member's role. Caller must be an admin.
	UpdateMemberRole(ctx context.Context, orgID, userID string, role MembershipRole, callerID string) error
	// RemoveMember removes a member. Caller must be an admin; admins may not remove themselves.
	RemoveMember(ctx context.Context, orgID, userID, callerID string) error
	// ListMembers lists members. Caller must hold any membership in the organization.
	ListMembers(ctx context.Context, orgID, callerID string) ([]*OrganizationMember, error)
}
