package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"letsassist/internal/domain"
)

type organizationService struct {
	orgRepo        domain.OrganizationRepository
	userRepo       domain.UserRepository
	contextTimeout time.Duration
}

// NewOrganizationService creates an OrganizationService.
func NewOrganizationService(orgRepo domain.OrganizationRepository, userRepo domain.UserRepository, timeout time.Duration) domain.OrganizationService {
	return &organizationService{
		orgRepo:        orgRepo,
		userRepo:       userRepo,
		contextTimeout: timeout,
	}
}

func (s *organizationService) CreateOrganization(ctx context.Context, name, description, creatorID string) (*domain.Organization, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: organization name is required", domain.ErrInvalidInput)
	}
	if creatorID == "" {
		return nil, domain.ErrForbidden
	}

	now := time.Now()
	org := domain.NewOrganization(name, strings.TrimSpace(description), now, now)
	if err := s.orgRepo.Create(ctx, org); err != nil {
		return nil, fmt.Errorf("create organization: %w", err)
	}
	if err := s.orgRepo.AddMember(ctx, org.ID, creatorID, domain.RoleAdmin); err != nil {
		return nil, fmt.Errorf("add creator as admin: %w", err)
	}
	return org, nil
}

func (s *organizationService) GetOrganization(ctx context.Context, orgID string) (*domain.Organization, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	org, err := s.orgRepo.GetByID(ctx, orgID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get organization: %w", err)
	}
	return org, nil
}

// callerRole returns the caller's role in the org, or "" when not a member.
func (s *organizationService) callerRole(ctx context.Context, orgID, callerID string) (domain.MembershipRole, error) {
	memberships, err := s.orgRepo.ListMembershipsByUserID(ctx, callerID)
	if err != nil {
		return "", fmt.Errorf("list memberships: %w", err)
	}
	for _, m := range memberships {
		if m.OrganizationID == orgID {
			return m.Role, nil
		}
	}
	return "", nil
}

func (s *organizationService) requireAdmin(ctx context.Context, orgID, callerID string) error {
	if callerID == "" {
		return domain.ErrForbidden
	}
	role, err := s.callerRole(ctx, orgID, callerID)
	if err != nil {
		return err
	}
	if role != domain.RoleAdmin {
		return domain.ErrForbidden
	}
	return nil
}

func (s *organizationService) AddMemberByEmail(ctx context.Context, orgID, email string, role domain.MembershipRole, callerID string) (*domain.OrganizationMember, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if _, err := s.orgRepo.GetByID(ctx, orgID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get organization: %w", err)
	}
	if err := s.requireAdmin(ctx, orgID, callerID); err != nil {
		return nil, err
	}
	if !domain.ValidMembershipRole(role) {
		return nil, fmt.Errorf("%w: unknown role %q", domain.ErrInvalidInput, role)
	}

	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" {
		return nil, domain.ErrInvalidInput
	}
	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) || errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("get user by email: %w", err)
	}
	if user == nil {
		return nil, domain.ErrUserNotFound
	}

	if err := s.orgRepo.AddMember(ctx, orgID, user.ID, role); err != nil {
		if errors.Is(err, domain.ErrAlreadyMember) {
			return nil, domain.ErrAlreadyMember
		}
		return nil, fmt.Errorf("add member: %w", err)
	}
	return &domain.OrganizationMember{
		OrganizationID: orgID,
		UserID:         user.ID,
		Role:           role,
		Name:           user.Name,
		LastName:       user.LastName,
		Email:          user.Email,
	}, nil
}

func (s *organizationService) UpdateMemberRole(ctx context.Context, orgID, userID string, role domain.MembershipRole, callerID string) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if err := s.requireAdmin(ctx, orgID, callerID); err != nil {
		return err
	}
	if !domain.ValidMembershipRole(role) {
		return fmt.Errorf("%w: unknown role %q", domain.ErrInvalidInput, role)
	}
	if userID == callerID {
		// An admin may not change their own role; another admin must do it.
		return domain.ErrInvalidInput
	}
	if err := s.orgRepo.UpdateMemberRole(ctx, orgID, userID, role); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("update member role: %w", err)
	}
	return nil
}

func (s *organizationService) RemoveMember(ctx context.Context, orgID, userID, callerID string) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if err := s.requireAdmin(ctx, orgID, callerID); err != nil {
		return err
	}
	if userID == callerID {
		return domain.ErrInvalidInput
	}
	if err := s.orgRepo.RemoveMember(ctx, orgID, userID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("remove member: %w", err)
	}
	return nil
}

func (s *organizationService) ListMembers(ctx context.Context, orgID, callerID string) ([]*domain.OrganizationMember, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if callerID == "" {
		return nil, domain.ErrForbidden
	}
	role, err := s.callerRole(ctx, orgID, callerID)
	if err != nil {
		return nil, err
	}
	if role == "" {
		return nil, domain.ErrForbidden
	}
	members, err := s.orgRepo.ListMembers(ctx, orgID)
	if err != nil {
		return nil, fmt.Errorf("list members: %w", err)
	}
	if members == nil {
		members = []*domain.OrganizationMember{}
	}
	return members, nil
}
