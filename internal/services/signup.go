package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"letsassist/internal/domain"
)

type signupService struct {
	signupRepo     domain.SignupRepository
	projectRepo    domain.ProjectRepository
	orgRepo        domain.OrganizationRepository
	userRepo       domain.UserRepository
	emailService   domain.EmailService
	contextTimeout time.Duration
	now            func() time.Time
}

// NewSignupService creates a SignupService.
func NewSignupService(signupRepo domain.SignupRepository,
	projectRepo domain.ProjectRepository,
	orgRepo domain.OrganizationRepository,
	userRepo domain.UserRepository,
	emailService domain.EmailService,
	timeout time.Duration,
	now func() time.Time,
) domain.SignupService {
	return &signupService{
		signupRepo:     signupRepo,
		projectRepo:    projectRepo,
		orgRepo:        orgRepo,
		userRepo:       userRepo,
		emailService:   emailService,
		contextTimeout: timeout,
		now:            now,
	}
}

func (s *signupService) SignupForSlot(ctx context.Context, projectID, slotKey, userID string) (*domain.Signup, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if userID == "" {
		return nil, domain.ErrForbidden
	}

	p, err := s.projectRepo.GetByID(ctx, projectID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get project: %w", err)
	}

	memberships, err := s.orgRepo.ListMembershipsByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list memberships: %w", err)
	}
	if !p.VisibleTo(userID, memberships) {
		return nil, domain.ErrNotFound
	}

	now := s.now()
	status, err := p.StatusAt(now)
	if err != nil {
		return nil, fmt.Errorf("derive status: %w", err)
	}
	if status != domain.StatusUpcoming {
		return nil, domain.ErrProjectLocked
	}

	slot, ok := p.Schedule.SlotByKey(p.EventType, slotKey)
	if !ok {
		return nil, domain.ErrUnknownSlot
	}

	exists, err := s.signupRepo.Exists(ctx, projectID, userID, slotKey)
	if err != nil {
		return nil, fmt.Errorf("check existing signup: %w", err)
	}
	if exists {
		return nil, domain.ErrAlreadySignedUp
	}

	count, err := s.signupRepo.CountBySlot(ctx, projectID, slotKey)
	if err != nil {
		return nil, fmt.Errorf("count slot signups: %w", err)
	}
	if count >= slot.Volunteers {
		return nil, domain.ErrSlotFull
	}

	signup := domain.NewSignup(projectID, userID, slotKey, uuid.NewString(), now, now)
	if err := s.signupRepo.Create(ctx, signup); err != nil {
		return nil, fmt.Errorf("create signup: %w", err)
	}

	s.sendConfirmation(ctx, p, signup, userID)
	return signup, nil
}

// sendConfirmation emails the volunteer; failures do not undo the signup.
func (s *signupService) sendConfirmation(ctx context.Context, p *domain.Project, signup *domain.Signup, userID string) {
	if s.emailService == nil {
		return
	}
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil || user == nil {
		return
	}
	start, err := p.StartDateTime()
	if err != nil {
		return
	}
	data := &domain.SignupConfirmationEmailData{
		Email:        user.Email,
		FirstName:    user.Name,
		ProjectTitle: p.Title,
		Location:     p.Location,
		SlotKey:      signup.SlotKey,
		StartsAt:     start,
		CheckInCode:  signup.CheckInCode,
	}
	_ = s.emailService.SendSignupConfirmation(ctx, data)
}

func (s *signupService) CancelSignup(ctx context.Context, signupID, userID string) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	signup, err := s.signupRepo.GetByID(ctx, signupID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("get signup: %w", err)
	}
	if signup.UserID != userID {
		return domain.ErrForbidden
	}
	if err := s.signupRepo.Delete(ctx, signupID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("delete signup: %w", err)
	}
	return nil
}

func (s *signupService) ListProjectSignups(ctx context.Context, projectID, callerID string) ([]*domain.SignupWithUser, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	p, err := s.projectRepo.GetByID(ctx, projectID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get project: %w", err)
	}
	memberships, err := s.orgRepo.ListMembershipsByUserID(ctx, callerID)
	if err != nil {
		return nil, fmt.Errorf("list memberships: %w", err)
	}
	if !p.ManageableBy(callerID, memberships) {
		return nil, domain.ErrForbidden
	}
	signups, err := s.signupRepo.ListByProjectID(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("list signups: %w", err)
	}
	if signups == nil {
		signups = []*domain.SignupWithUser{}
	}
	return signups, nil
}

func (s *signupService) ListMySignups(ctx context.Context, userID string) ([]*domain.SignupWithProject, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	signups, err := s.signupRepo.ListByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list signups: %w", err)
	}
	out := make([]*domain.SignupWithProject, 0, len(signups))
	for _, su := range signups {
		p, err := s.projectRepo.GetByID(ctx, su.ProjectID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				continue
			}
			return nil, fmt.Errorf("get project: %w", err)
		}
		out = append(out, &domain.SignupWithProject{Signup: su, Project: p})
	}
	return out, nil
}
