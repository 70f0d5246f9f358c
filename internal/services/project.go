package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"letsassist/internal/domain"
)

type projectService struct {
	projectRepo    domain.ProjectRepository
	orgRepo        domain.OrganizationRepository
	signupRepo     domain.SignupRepository
	emailService   domain.EmailService
	contextTimeout time.Duration
	now            func() time.Time
}

// NewProjectService creates a ProjectService. The now function supplies the
// current instant for status derivation and eligibility checks; pass
// time.Now in production.
func NewProjectService(projectRepo domain.ProjectRepository,
	orgRepo domain.OrganizationRepository,
	signupRepo domain.SignupRepository,
	emailService domain.EmailService,
	timeout time.Duration,
	now func() time.Time,
) domain.ProjectService {
	return &projectService{
		projectRepo:    projectRepo,
		orgRepo:        orgRepo,
		signupRepo:     signupRepo,
		emailService:   emailService,
		contextTimeout: timeout,
		now:            now,
	}
}

func (s *projectService) CreateProject(ctx context.Context, p *domain.Project, creatorID string) (*domain.Project, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if creatorID == "" {
		return nil, fmt.Errorf("project creator is required")
	}
	p.CreatorID = creatorID

	if err := validateSchedule(p); err != nil {
		return nil, err
	}

	if p.OrganizationID != nil {
		memberships, err := s.orgRepo.ListMembershipsByUserID(ctx, creatorID)
		if err != nil {
			return nil, fmt.Errorf("list memberships: %w", err)
		}
		if !orgRoleAtLeastStaff(memberships, *p.OrganizationID) {
			return nil, domain.ErrForbidden
		}
	}

	now := s.now()
	p.Status = domain.StatusUpcoming
	p.CreatedAt = now
	p.UpdatedAt = now
	if err := s.projectRepo.Create(ctx, p); err != nil {
		return nil, fmt.Errorf("create project: %w", err)
	}
	return p, nil
}

// orgRoleAtLeastStaff reports whether memberships grant admin or staff on the org.
func orgRoleAtLeastStaff(memberships []domain.OrganizationMembership, orgID string) bool {
	for _, m := range memberships {
		if m.OrganizationID == orgID && (m.Role == domain.RoleAdmin || m.Role == domain.RoleStaff) {
			return true
		}
	}
	return false
}

// validateSchedule enforces the creation-time invariants the timing engine
// assumes: exactly one variant matching event_type, end strictly after start
// for every slot, non-empty days and roles, and overall bounds containing
// every role window for sameDayMultiArea.
func validateSchedule(p *domain.Project) error {
	switch p.EventType {
	case domain.EventOneTime:
		if p.Schedule.OneTime == nil || p.Schedule.MultiDay != nil || p.Schedule.SameDayMultiArea != nil {
			return fmt.Errorf("%w: oneTime schedule required", domain.ErrInvalidInput)
		}
		return validateSlot(p.Schedule.OneTime.ScheduleSlot)
	case domain.EventMultiDay:
		if len(p.Schedule.MultiDay) == 0 || p.Schedule.OneTime != nil || p.Schedule.SameDayMultiArea != nil {
			return fmt.Errorf("%w: multiDay schedule required", domain.ErrInvalidInput)
		}
		for _, day := range p.Schedule.MultiDay {
			if len(day.Slots) == 0 {
				return fmt.Errorf("%w: day %s has no slots", domain.ErrInvalidInput, day.Date)
			}
			if _, err := time.Parse("2006-01-02", day.Date); err != nil {
				return fmt.Errorf("%w: invalid date %q", domain.ErrInvalidInput, day.Date)
			}
			for _, slot := range day.Slots {
				if err := validateSlot(slot); err != nil {
					return err
				}
			}
		}
		return nil
	case domain.EventSameDayMultiArea:
		sched := p.Schedule.SameDayMultiArea
		if sched == nil || len(sched.Roles) == 0 || p.Schedule.OneTime != nil || p.Schedule.MultiDay != nil {
			return fmt.Errorf("%w: sameDayMultiArea schedule with roles required", domain.ErrInvalidInput)
		}
		overallStart, err := domain.ClockMinutes(sched.OverallStart)
		if err != nil {
			return fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
		}
		overallEnd, err := domain.ClockMinutes(sched.OverallEnd)
		if err != nil {
			return fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
		}
		if overallEnd <= overallStart {
			return fmt.Errorf("%w: overallEnd must be after overallStart", domain.ErrInvalidInput)
		}
		seen := make(map[string]struct{}, len(sched.Roles))
		for _, role := range sched.Roles {
			if role.Name == "" {
				return fmt.Errorf("%w: role name is required", domain.ErrInvalidInput)
			}
			if _, dup := seen[role.Name]; dup {
				return fmt.Errorf("%w: duplicate role name %q", domain.ErrInvalidInput, role.Name)
			}
			seen[role.Name] = struct{}{}
			if err := validateSlot(role.ScheduleSlot); err != nil {
				return err
			}
			roleStart, _ := domain.ClockMinutes(role.StartTime)
			roleEnd, _ := domain.ClockMinutes(role.EndTime)
			if roleStart < overallStart || roleEnd > overallEnd {
				return fmt.Errorf("%w: role %q outside overall bounds", domain.ErrInvalidInput, role.Name)
			}
		}
		return nil
	default:
		return fmt.Errorf("%w: %q", domain.ErrInvalidEventType, p.EventType)
	}
}

func validateSlot(slot domain.ScheduleSlot) error {
	start, err := domain.ClockMinutes(slot.StartTime)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}
	end, err := domain.ClockMinutes(slot.EndTime)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}
	if end <= start {
		return fmt.Errorf("%w: slot end %s must be after start %s", domain.ErrInvalidInput, slot.EndTime, slot.StartTime)
	}
	if slot.Volunteers < 1 {
		return fmt.Errorf("%w: slot capacity must be positive", domain.ErrInvalidInput)
	}
	return nil
}

func (s *projectService) withTiming(p *domain.Project, now time.Time) (*domain.ProjectWithTiming, error) {
	status, err := p.StatusAt(now)
	if err != nil {
		return nil, fmt.Errorf("derive status: %w", err)
	}
	start, err := p.StartDateTime()
	if err != nil {
		return nil, fmt.Errorf("derive start: %w", err)
	}
	end, err := p.EndDateTime()
	if err != nil {
		return nil, fmt.Errorf("derive end: %w", err)
	}
	return &domain.ProjectWithTiming{
		Project:       p,
		DerivedStatus: status,
		StatusText:    domain.FormatStatusText(status),
		StartsAt:      start,
		EndsAt:        end,
	}, nil
}

// memberships loads the caller's org memberships; anonymous callers have none.
func (s *projectService) memberships(ctx context.Context, callerID string) ([]domain.OrganizationMembership, error) {
	if callerID == "" {
		return nil, nil
	}
	memberships, err := s.orgRepo.ListMembershipsByUserID(ctx, callerID)
	if err != nil {
		return nil, fmt.Errorf("list memberships: %w", err)
	}
	return memberships, nil
}

func (s *projectService) GetProject(ctx context.Context, projectID, callerID string) (*domain.ProjectWithTiming, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	p, err := s.projectRepo.GetByID(ctx, projectID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get project: %w", err)
	}
	memberships, err := s.memberships(ctx, callerID)
	if err != nil {
		return nil, err
	}
	// Hidden projects are reported as missing, not forbidden.
	if !p.VisibleTo(callerID, memberships) {
		return nil, domain.ErrNotFound
	}
	return s.withTiming(p, s.now())
}

func (s *projectService) ListProjects(ctx context.Context, callerID string, status domain.ProjectStatus, params domain.PaginationParams) ([]*domain.ProjectWithTiming, int, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	projects, err := s.projectRepo.List(ctx, domain.ProjectFilter{})
	if err != nil {
		return nil, 0, fmt.Errorf("list projects: %w", err)
	}
	memberships, err := s.memberships(ctx, callerID)
	if err != nil {
		return nil, 0, err
	}

	now := s.now()
	visible := make([]*domain.ProjectWithTiming, 0, len(projects))
	for _, p := range projects {
		if !p.VisibleTo(callerID, memberships) {
			continue
		}
		pt, err := s.withTiming(p, now)
		if err != nil {
			// A single corrupt row must not take down the whole listing.
			continue
		}
		if status != "" && pt.DerivedStatus != status {
			continue
		}
		visible = append(visible, pt)
	}

	total := len(visible)
	start, end := params.Window(total)
	return visible[start:end], total, nil
}

// loadManaged fetches a project and verifies the caller may mutate it.
func (s *projectService) loadManaged(ctx context.Context, projectID, callerID string) (*domain.Project, error) {
	p, err := s.projectRepo.GetByID(ctx, projectID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get project: %w", err)
	}
	memberships, err := s.memberships(ctx, callerID)
	if err != nil {
		return nil, err
	}
	if !p.ManageableBy(callerID, memberships) {
		return nil, domain.ErrForbidden
	}
	return p, nil
}

func (s *projectService) UpdateProject(ctx context.Context, projectID, callerID string, title, description, location *string) (*domain.Project, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if _, err := s.loadManaged(ctx, projectID, callerID); err != nil {
		return nil, err
	}
	updated, err := s.projectRepo.UpdateDetails(ctx, projectID, title, description, location)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("update project: %w", err)
	}
	return updated, nil
}

func (s *projectService) CancelProject(ctx context.Context, projectID, callerID, reason string) (*domain.Project, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	p, err := s.loadManaged(ctx, projectID, callerID)
	if err != nil {
		return nil, err
	}
	now := s.now()
	ok, err := p.CanCancelAt(now)
	if err != nil {
		return nil, fmt.Errorf("cancel eligibility: %w", err)
	}
	if !ok {
		return nil, domain.ErrProjectLocked
	}
	cancelled, err := s.projectRepo.MarkCancelled(ctx, projectID, now, reason)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("mark cancelled: %w", err)
	}
	s.notifyCancellation(ctx, cancelled, reason)
	return cancelled, nil
}

// notifyCancellation emails every signed-up volunteer. Delivery failures are
// not fatal to the cancellation itself.
func (s *projectService) notifyCancellation(ctx context.Context, p *domain.Project, reason string) {
	if s.emailService == nil || s.signupRepo == nil {
		return
	}
	signups, err := s.signupRepo.ListByProjectID(ctx, p.ID)
	if err != nil {
		return
	}
	for _, su := range signups {
		data := &domain.ProjectCancelledEmailData{
			Email:        su.Email,
			FirstName:    su.Name,
			ProjectTitle: p.Title,
			Reason:       reason,
		}
		_ = s.emailService.SendProjectCancelled(ctx, data)
	}
}

func (s *projectService) DeleteProject(ctx context.Context, projectID, callerID string) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	p, err := s.loadManaged(ctx, projectID, callerID)
	if err != nil {
		return err
	}
	ok, err := p.CanDeleteAt(s.now())
	if err != nil {
		return fmt.Errorf("delete eligibility: %w", err)
	}
	if !ok {
		return domain.ErrProjectLocked
	}
	if err := s.projectRepo.Delete(ctx, projectID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("delete project: %w", err)
	}
	return nil
}
