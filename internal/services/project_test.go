package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"letsassist/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeProjectRepo is an in-memory ProjectRepository for tests.
type fakeProjectRepo struct {
	byID      map[string]*domain.Project
	nextID    int
	createErr error
}

func newFakeProjectRepo() *fakeProjectRepo {
	return &fakeProjectRepo{byID: make(map[string]*domain.Project), nextID: 1}
}

func (f *fakeProjectRepo) Create(ctx context.Context, p *domain.Project) error {
	if f.createErr != nil {
		return f.createErr
	}
	p.ID = fmt.Sprintf("proj-%d", f.nextID)
	f.nextID++
	f.byID[p.ID] = p
	return nil
}

func (f *fakeProjectRepo) GetByID(ctx context.Context, id string) (*domain.Project, error) {
	if p, ok := f.byID[id]; ok {
		return p, nil
	}
	return nil, domain.ErrNotFound
}

func (f *fakeProjectRepo) List(ctx context.Context, filter domain.ProjectFilter) ([]*domain.Project, error) {
	var out []*domain.Project
	for _, p := range f.byID {
		if filter.OrganizationID != nil {
			if p.OrganizationID == nil || *p.OrganizationID != *filter.OrganizationID {
				continue
			}
		}
		if filter.CreatorID != nil && p.CreatorID != *filter.CreatorID {
			continue
		}
		out = append(out, p)
	}
	// Sort by CreatedAt DESC to match repo
	for i := 0; i < len(out); i++ {
		for j := i + 1; j < len(out); j++ {
			if out[j].CreatedAt.After(out[i].CreatedAt) {
				out[i], out[j] = out[j], out[i]
			}
		}
	}
	return out, nil
}

func (f *fakeProjectRepo) UpdateDetails(ctx context.Context, id string, title, description, location *string) (*domain.Project, error) {
	p, ok := f.byID[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	if title != nil {
		p.Title = *title
	}
	if description != nil {
		p.Description = *description
	}
	if location != nil {
		p.Location = *location
	}
	return p, nil
}

func (f *fakeProjectRepo) MarkCancelled(ctx context.Context, id string, at time.Time, reason string) (*domain.Project, error) {
	p, ok := f.byID[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	p.Status = domain.StatusCancelled
	p.CancelledAt = &at
	p.CancellationReason = &reason
	return p, nil
}

func (f *fakeProjectRepo) Delete(ctx context.Context, id string) error {
	if _, ok := f.byID[id]; !ok {
		return domain.ErrNotFound
	}
	delete(f.byID, id)
	return nil
}

// fakeOrgRepo is an in-memory OrganizationRepository for tests.
type fakeOrgRepo struct {
	orgs    map[string]*domain.Organization
	members map[string][]*domain.OrganizationMember // orgID -> members
	nextID  int
}

func newFakeOrgRepo() *fakeOrgRepo {
	return &fakeOrgRepo{
		orgs:    make(map[string]*domain.Organization),
		members: make(map[string][]*domain.OrganizationMember),
		nextID:  1,
	}
}

func (f *fakeOrgRepo) Create(ctx context.Context, org *domain.Organization) error {
	org.ID = fmt.Sprintf("org-%d", f.nextID)
	f.nextID++
	f.orgs[org.ID] = org
	return nil
}

func (f *fakeOrgRepo) GetByID(ctx context.Context, id string) (*domain.Organization, error) {
	if org, ok := f.orgs[id]; ok {
		return org, nil
	}
	return nil, domain.ErrNotFound
}

func (f *fakeOrgRepo) AddMember(ctx context.Context, orgID, userID string, role domain.MembershipRole) error {
	for _, m := range f.members[orgID] {
		if m.UserID == userID {
			return domain.ErrAlreadyMember
		}
	}
	f.members[orgID] = append(f.members[orgID], &domain.OrganizationMember{
		OrganizationID: orgID,
		UserID:         userID,
		Role:           role,
	})
	return nil
}

func (f *fakeOrgRepo) UpdateMemberRole(ctx context.Context, orgID, userID string, role domain.MembershipRole) error {
	for _, m := range f.members[orgID] {
		if m.UserID == userID {
			m.Role = role
			return nil
		}
	}
	return domain.ErrNotFound
}

func (f *fakeOrgRepo) RemoveMember(ctx context.Context, orgID, userID string) error {
	list := f.members[orgID]
	for i, m := range list {
		if m.UserID == userID {
			f.members[orgID] = append(list[:i], list[i+1:]...)
			return nil
		}
	}
	return domain.ErrNotFound
}

func (f *fakeOrgRepo) ListMembers(ctx context.Context, orgID string) ([]*domain.OrganizationMember, error) {
	out := f.members[orgID]
	if out == nil {
		return []*domain.OrganizationMember{}, nil
	}
	return out, nil
}

func (f *fakeOrgRepo) ListMembershipsByUserID(ctx context.Context, userID string) ([]domain.OrganizationMembership, error) {
	var out []domain.OrganizationMembership
	for orgID, members := range f.members {
		for _, m := range members {
			if m.UserID == userID {
				out = append(out, domain.OrganizationMembership{OrganizationID: orgID, Role: m.Role})
			}
		}
	}
	return out, nil
}

// fakeSignupRepo is an in-memory SignupRepository for tests.
type fakeSignupRepo struct {
	signups   []*domain.SignupWithUser
	nextID    int
	createErr error
}

func newFakeSignupRepo() *fakeSignupRepo {
	return &fakeSignupRepo{nextID: 1}
}

func (f *fakeSignupRepo) Create(ctx context.Context, s *domain.Signup) error {
	if f.createErr != nil {
		return f.createErr
	}
	s.ID = fmt.Sprintf("su-%d", f.nextID)
	f.nextID++
	f.signups = append(f.signups, &domain.SignupWithUser{Signup: s})
	return nil
}

func (f *fakeSignupRepo) GetByID(ctx context.Context, id string) (*domain.Signup, error) {
	for _, su := range f.signups {
		if su.ID == id {
			return su.Signup, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (f *fakeSignupRepo) Exists(ctx context.Context, projectID, userID, slotKey string) (bool, error) {
	for _, su := range f.signups {
		if su.ProjectID == projectID && su.UserID == userID && su.SlotKey == slotKey {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeSignupRepo) CountBySlot(ctx context.Context, projectID, slotKey string) (int, error) {
	count := 0
	for _, su := range f.signups {
		if su.ProjectID == projectID && su.SlotKey == slotKey {
			count++
		}
	}
	return count, nil
}

func (f *fakeSignupRepo) ListByProjectID(ctx context.Context, projectID string) ([]*domain.SignupWithUser, error) {
	var out []*domain.SignupWithUser
	for _, su := range f.signups {
		if su.ProjectID == projectID {
			out = append(out, su)
		}
	}
	return out, nil
}

func (f *fakeSignupRepo) ListByUserID(ctx context.Context, userID string) ([]*domain.Signup, error) {
	var out []*domain.Signup
	for _, su := range f.signups {
		if su.UserID == userID {
			out = append(out, su.Signup)
		}
	}
	return out, nil
}

func (f *fakeSignupRepo) ListUnremindedByProjectID(ctx context.Context, projectID string) ([]*domain.SignupWithUser, error) {
	var out []*domain.SignupWithUser
	for _, su := range f.signups {
		if su.ProjectID == projectID && su.RemindedAt == nil {
			out = append(out, su)
		}
	}
	return out, nil
}

func (f *fakeSignupRepo) MarkReminded(ctx context.Context, id string, at time.Time) error {
	for _, su := range f.signups {
		if su.ID == id {
			su.RemindedAt = &at
			return nil
		}
	}
	return domain.ErrNotFound
}

func (f *fakeSignupRepo) Delete(ctx context.Context, id string) error {
	for i, su := range f.signups {
		if su.ID == id {
			f.signups = append(f.signups[:i], f.signups[i+1:]...)
			return nil
		}
	}
	return domain.ErrNotFound
}

// fakeUserRepo is an in-memory UserRepository for tests.
type fakeUserRepo struct {
	byEmail   map[string]*domain.User
	nextID    int
	createErr error
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{byEmail: make(map[string]*domain.User), nextID: 1}
}

func (f *fakeUserRepo) addUser(email, id, name, lastName string) *domain.User {
	email = strings.TrimSpace(strings.ToLower(email))
	u := &domain.User{ID: id, Email: email, Name: name, LastName: lastName}
	f.byEmail[email] = u
	return u
}

func (f *fakeUserRepo) Create(ctx context.Context, user *domain.User) error {
	if f.createErr != nil {
		return f.createErr
	}
	if _, exists := f.byEmail[user.Email]; exists {
		return domain.ErrDuplicateEmail
	}
	user.ID = fmt.Sprintf("user-%d", f.nextID)
	f.nextID++
	f.byEmail[user.Email] = user
	return nil
}

func (f *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if u, ok := f.byEmail[email]; ok {
		return u, nil
	}
	return nil, domain.ErrUserNotFound
}

func (f *fakeUserRepo) GetByID(ctx context.Context, id string) (*domain.User, error) {
	for _, u := range f.byEmail {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (f *fakeUserRepo) Update(ctx context.Context, user *domain.User) error {
	for _, u := range f.byEmail {
		if u.ID == user.ID {
			*u = *user
			return nil
		}
	}
	return domain.ErrUserNotFound
}

// fakeEmailService records every send; never fails unless err is set.
type fakeEmailService struct {
	err              error
	welcomes         []*domain.WelcomeMessageEmailData
	loginCodes       []*domain.LoginCodeEmailData
	confirmations    []*domain.SignupConfirmationEmailData
	cancellations    []*domain.ProjectCancelledEmailData
	reminders        []*domain.ProjectReminderEmailData
}

func newFakeEmailService() *fakeEmailService { return &fakeEmailService{} }

func (f *fakeEmailService) SendWelcomeMessage(ctx context.Context, data *domain.WelcomeMessageEmailData) error {
	if f.err != nil {
		return f.err
	}
	f.welcomes = append(f.welcomes, data)
	return nil
}

func (f *fakeEmailService) SendLoginCode(ctx context.Context, data *domain.LoginCodeEmailData) error {
	if f.err != nil {
		return f.err
	}
	f.loginCodes = append(f.loginCodes, data)
	return nil
}

func (f *fakeEmailService) SendSignupConfirmation(ctx context.Context, data *domain.SignupConfirmationEmailData) error {
	if f.err != nil {
		return f.err
	}
	f.confirmations = append(f.confirmations, data)
	return nil
}

func (f *fakeEmailService) SendProjectCancelled(ctx context.Context, data *domain.ProjectCancelledEmailData) error {
	if f.err != nil {
		return f.err
	}
	f.cancellations = append(f.cancellations, data)
	return nil
}

func (f *fakeEmailService) SendProjectReminder(ctx context.Context, data *domain.ProjectReminderEmailData) error {
	if f.err != nil {
		return f.err
	}
	f.reminders = append(f.reminders, data)
	return nil
}

// oneTimeSchedule builds a single-slot schedule on the given local date.
func oneTimeSchedule(date, start, end string, volunteers int) domain.Schedule {
	return domain.Schedule{
		OneTime: &domain.OneTimeSchedule{
			Date: date,
			ScheduleSlot: domain.ScheduleSlot{
				StartTime:  start,
				EndTime:    end,
				Volunteers: volunteers,
			},
		},
	}
}

func fixedNow(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

const testTimeout = 5 * time.Second

func TestProjectService_CreateProject(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 6, 1, 12, 0, 0, 0, time.Local)

	orgID := "org-1"

	tests := []struct {
		name      string
		setup     func(*fakeProjectRepo, *fakeOrgRepo)
		project   *domain.Project
		creatorID string
		wantErr   error
		anyErr    bool
		assert    func(t *testing.T, repo *fakeProjectRepo, p *domain.Project)
	}{
		{
			name: "success personal project",
			project: &domain.Project{
				Title:     "Park Cleanup",
				EventType: domain.EventOneTime,
				Schedule:  oneTimeSchedule("2026-06-10", "09:00", "12:00", 5),
			},
			creatorID: "user-1",
			assert: func(t *testing.T, repo *fakeProjectRepo, p *domain.Project) {
				require.NotEmpty(t, p.ID)
				assert.Equal(t, domain.StatusUpcoming, p.Status)
				assert.Equal(t, "user-1", p.CreatorID)
				assert.False(t, p.CreatedAt.IsZero())
				_, ok := repo.byID[p.ID]
				require.True(t, ok)
			},
		},
		{
			name: "success org project by staff",
			setup: func(_ *fakeProjectRepo, or *fakeOrgRepo) {
				or.orgs[orgID] = &domain.Organization{ID: orgID, Name: "Helpers"}
				_ = or.AddMember(ctx, orgID, "user-1", domain.RoleStaff)
			},
			project: &domain.Project{
				Title:          "Food Drive",
				EventType:      domain.EventOneTime,
				Schedule:       oneTimeSchedule("2026-06-12", "10:00", "14:00", 3),
				OrganizationID: &orgID,
			},
			creatorID: "user-1",
			assert: func(t *testing.T, repo *fakeProjectRepo, p *domain.Project) {
				require.NotEmpty(t, p.ID)
			},
		},
		{
			name: "forbidden org project by plain member",
			setup: func(_ *fakeProjectRepo, or *fakeOrgRepo) {
				or.orgs[orgID] = &domain.Organization{ID: orgID, Name: "Helpers"}
				_ = or.AddMember(ctx, orgID, "user-1", domain.RoleMember)
			},
			project: &domain.Project{
				Title:          "Food Drive",
				EventType:      domain.EventOneTime,
				Schedule:       oneTimeSchedule("2026-06-12", "10:00", "14:00", 3),
				OrganizationID: &orgID,
			},
			creatorID: "user-1",
			wantErr:   domain.ErrForbidden,
		},
		{
			name: "missing creator",
			project: &domain.Project{
				Title:     "Park Cleanup",
				EventType: domain.EventOneTime,
				Schedule:  oneTimeSchedule("2026-06-10", "09:00", "12:00", 5),
			},
			creatorID: "",
			anyErr:    true,
		},
		{
			name: "unknown event type",
			project: &domain.Project{
				Title:     "Park Cleanup",
				EventType: "weekly",
				Schedule:  oneTimeSchedule("2026-06-10", "09:00", "12:00", 5),
			},
			creatorID: "user-1",
			wantErr:   domain.ErrInvalidEventType,
		},
		{
			name: "slot end not after start",
			project: &domain.Project{
				Title:     "Park Cleanup",
				EventType: domain.EventOneTime,
				Schedule:  oneTimeSchedule("2026-06-10", "12:00", "12:00", 5),
			},
			creatorID: "user-1",
			wantErr:   domain.ErrInvalidInput,
		},
		{
			name: "zero capacity slot",
			project: &domain.Project{
				Title:     "Park Cleanup",
				EventType: domain.EventOneTime,
				Schedule:  oneTimeSchedule("2026-06-10", "09:00", "12:00", 0),
			},
			creatorID: "user-1",
			wantErr:   domain.ErrInvalidInput,
		},
		{
			name: "multiDay with empty days",
			project: &domain.Project{
				Title:     "Festival",
				EventType: domain.EventMultiDay,
				Schedule:  domain.Schedule{MultiDay: []domain.ProjectDay{}},
			},
			creatorID: "user-1",
			wantErr:   domain.ErrInvalidInput,
		},
		{
			name: "sameDayMultiArea role outside overall bounds",
			project: &domain.Project{
				Title:     "Marathon",
				EventType: domain.EventSameDayMultiArea,
				Schedule: domain.Schedule{
					SameDayMultiArea: &domain.MultiAreaSchedule{
						Date:         "2026-06-20",
						OverallStart: "08:00",
						OverallEnd:   "16:00",
						Roles: []domain.ProjectRole{
							{Name: "Water Station", ScheduleSlot: domain.ScheduleSlot{StartTime: "07:00", EndTime: "12:00", Volunteers: 4}},
						},
					},
				},
			},
			creatorID: "user-1",
			wantErr:   domain.ErrInvalidInput,
		},
		{
			name: "duplicate role names",
			project: &domain.Project{
				Title:     "Marathon",
				EventType: domain.EventSameDayMultiArea,
				Schedule: domain.Schedule{
					SameDayMultiArea: &domain.MultiAreaSchedule{
						Date:         "2026-06-20",
						OverallStart: "08:00",
						OverallEnd:   "16:00",
						Roles: []domain.ProjectRole{
							{Name: "Greeter", ScheduleSlot: domain.ScheduleSlot{StartTime: "08:00", EndTime: "12:00", Volunteers: 2}},
							{Name: "Greeter", ScheduleSlot: domain.ScheduleSlot{StartTime: "12:00", EndTime: "16:00", Volunteers: 2}},
						},
					},
				},
			},
			creatorID: "user-1",
			wantErr:   domain.ErrInvalidInput,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			projectRepo := newFakeProjectRepo()
			orgRepo := newFakeOrgRepo()
			if tt.setup != nil {
				tt.setup(projectRepo, orgRepo)
			}
			svc := NewProjectService(projectRepo, orgRepo, newFakeSignupRepo(), newFakeEmailService(), testTimeout, fixedNow(now))
			got, err := svc.CreateProject(ctx, tt.project, tt.creatorID)
			if tt.wantErr != nil {
				require.Error(t, err)
				require.True(t, errors.Is(err, tt.wantErr), "got %v", err)
				return
			}
			if tt.anyErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.NotNil(t, got)
			if tt.assert != nil {
				tt.assert(t, projectRepo, got)
			}
		})
	}
}

func TestProjectService_GetProject_Visibility(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 6, 1, 12, 0, 0, 0, time.Local)
	orgID := "org-1"

	projectRepo := newFakeProjectRepo()
	orgRepo := newFakeOrgRepo()
	orgRepo.orgs[orgID] = &domain.Organization{ID: orgID, Name: "Helpers"}
	_ = orgRepo.AddMember(ctx, orgID, "member-1", domain.RoleMember)

	public := &domain.Project{
		Title:     "Public Cleanup",
		EventType: domain.EventOneTime,
		Schedule:  oneTimeSchedule("2026-06-10", "09:00", "12:00", 5),
		CreatorID: "creator-1",
	}
	require.NoError(t, projectRepo.Create(ctx, public))

	private := &domain.Project{
		Title:          "Private Drive",
		EventType:      domain.EventOneTime,
		Schedule:       oneTimeSchedule("2026-06-11", "09:00", "12:00", 5),
		IsPrivate:      true,
		OrganizationID: &orgID,
		CreatorID:      "creator-1",
	}
	require.NoError(t, projectRepo.Create(ctx, private))

	svc := NewProjectService(projectRepo, orgRepo, newFakeSignupRepo(), newFakeEmailService(), testTimeout, fixedNow(now))

	t.Run("public visible to anonymous", func(t *testing.T) {
		got, err := svc.GetProject(ctx, public.ID, "")
		require.NoError(t, err)
		assert.Equal(t, domain.StatusUpcoming, got.DerivedStatus)
		assert.Equal(t, "Upcoming", got.StatusText)
		assert.Equal(t, time.Date(2026, 6, 10, 9, 0, 0, 0, time.Local), got.StartsAt)
		assert.Equal(t, time.Date(2026, 6, 10, 12, 0, 0, 0, time.Local), got.EndsAt)
	})

	t.Run("private hidden from anonymous as not found", func(t *testing.T) {
		_, err := svc.GetProject(ctx, private.ID, "")
		require.True(t, errors.Is(err, domain.ErrNotFound))
	})

	t.Run("private hidden from non-member", func(t *testing.T) {
		_, err := svc.GetProject(ctx, private.ID, "stranger-1")
		require.True(t, errors.Is(err, domain.ErrNotFound))
	})

	t.Run("private visible to org member of any role", func(t *testing.T) {
		got, err := svc.GetProject(ctx, private.ID, "member-1")
		require.NoError(t, err)
		assert.Equal(t, "Private Drive", got.Title)
	})

	t.Run("private visible to creator", func(t *testing.T) {
		got, err := svc.GetProject(ctx, private.ID, "creator-1")
		require.NoError(t, err)
		assert.Equal(t, "Private Drive", got.Title)
	})

	t.Run("missing project", func(t *testing.T) {
		_, err := svc.GetProject(ctx, "proj-missing", "creator-1")
		require.True(t, errors.Is(err, domain.ErrNotFound))
	})
}

func TestProjectService_ListProjects(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 6, 10, 10, 0, 0, 0, time.Local)
	orgID := "org-1"

	projectRepo := newFakeProjectRepo()
	orgRepo := newFakeOrgRepo()
	orgRepo.orgs[orgID] = &domain.Organization{ID: orgID, Name: "Helpers"}
	_ = orgRepo.AddMember(ctx, orgID, "member-1", domain.RoleMember)

	mk := func(title, date string, private bool, created time.Time) *domain.Project {
		p := &domain.Project{
			Title:     title,
			EventType: domain.EventOneTime,
			Schedule:  oneTimeSchedule(date, "09:00", "12:00", 5),
			IsPrivate: private,
			CreatorID: "creator-1",
			CreatedAt: created,
		}
		if private {
			p.OrganizationID = &orgID
		}
		require.NoError(t, projectRepo.Create(ctx, p))
		return p
	}

	base := time.Date(2026, 5, 1, 0, 0, 0, 0, time.Local)
	mk("Running Today", "2026-06-10", false, base)          // in-progress at now
	mk("Future Public", "2026-07-01", false, base.Add(time.Hour))
	mk("Past Public", "2026-05-20", false, base.Add(2*time.Hour))
	mk("Private Future", "2026-07-02", true, base.Add(3*time.Hour))

	svc := NewProjectService(projectRepo, orgRepo, newFakeSignupRepo(), newFakeEmailService(), testTimeout, fixedNow(now))
	params := domain.PaginationParams{Page: 1, PageSize: 10}

	t.Run("anonymous sees only public", func(t *testing.T) {
		got, total, err := svc.ListProjects(ctx, "", "", params)
		require.NoError(t, err)
		assert.Equal(t, 3, total)
		assert.Len(t, got, 3)
	})

	t.Run("org member also sees private", func(t *testing.T) {
		_, total, err := svc.ListProjects(ctx, "member-1", "", params)
		require.NoError(t, err)
		assert.Equal(t, 4, total)
	})

	t.Run("status filter applies to derived status", func(t *testing.T) {
		got, total, err := svc.ListProjects(ctx, "", domain.StatusInProgress, params)
		require.NoError(t, err)
		require.Equal(t, 1, total)
		assert.Equal(t, "Running Today", got[0].Title)

		got, total, err = svc.ListProjects(ctx, "", domain.StatusCompleted, params)
		require.NoError(t, err)
		require.Equal(t, 1, total)
		assert.Equal(t, "Past Public", got[0].Title)
	})

	t.Run("pagination slices the visible set", func(t *testing.T) {
		page1, total, err := svc.ListProjects(ctx, "", "", domain.PaginationParams{Page: 1, PageSize: 2})
		require.NoError(t, err)
		assert.Equal(t, 3, total)
		assert.Len(t, page1, 2)

		page2, total, err := svc.ListProjects(ctx, "", "", domain.PaginationParams{Page: 2, PageSize: 2})
		require.NoError(t, err)
		assert.Equal(t, 3, total)
		assert.Len(t, page2, 1)

		page3, total, err := svc.ListProjects(ctx, "", "", domain.PaginationParams{Page: 3, PageSize: 2})
		require.NoError(t, err)
		assert.Equal(t, 3, total)
		assert.Len(t, page3, 0)
	})
}

func TestProjectService_UpdateProject(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 6, 1, 12, 0, 0, 0, time.Local)
	orgID := "org-1"

	newTitle := "Renamed"
	newDesc := "New description"

	setup := func() (*fakeProjectRepo, *fakeOrgRepo, *domain.Project) {
		projectRepo := newFakeProjectRepo()
		orgRepo := newFakeOrgRepo()
		orgRepo.orgs[orgID] = &domain.Organization{ID: orgID, Name: "Helpers"}
		_ = orgRepo.AddMember(ctx, orgID, "admin-1", domain.RoleAdmin)
		_ = orgRepo.AddMember(ctx, orgID, "member-1", domain.RoleMember)
		p := &domain.Project{
			Title:          "Org Project",
			EventType:      domain.EventOneTime,
			Schedule:       oneTimeSchedule("2026-06-10", "09:00", "12:00", 5),
			OrganizationID: &orgID,
			CreatorID:      "creator-1",
		}
		require.NoError(t, projectRepo.Create(ctx, p))
		return projectRepo, orgRepo, p
	}

	t.Run("creator may update", func(t *testing.T) {
		projectRepo, orgRepo, p := setup()
		svc := NewProjectService(projectRepo, orgRepo, newFakeSignupRepo(), newFakeEmailService(), testTimeout, fixedNow(now))
		got, err := svc.UpdateProject(ctx, p.ID, "creator-1", &newTitle, &newDesc, nil)
		require.NoError(t, err)
		assert.Equal(t, "Renamed", got.Title)
		assert.Equal(t, "New description", got.Description)
	})

	t.Run("org admin may update", func(t *testing.T) {
		projectRepo, orgRepo, p := setup()
		svc := NewProjectService(projectRepo, orgRepo, newFakeSignupRepo(), newFakeEmailService(), testTimeout, fixedNow(now))
		_, err := svc.UpdateProject(ctx, p.ID, "admin-1", &newTitle, nil, nil)
		require.NoError(t, err)
	})

	t.Run("plain member may not update", func(t *testing.T) {
		projectRepo, orgRepo, p := setup()
		svc := NewProjectService(projectRepo, orgRepo, newFakeSignupRepo(), newFakeEmailService(), testTimeout, fixedNow(now))
		_, err := svc.UpdateProject(ctx, p.ID, "member-1", &newTitle, nil, nil)
		require.True(t, errors.Is(err, domain.ErrForbidden))
	})

	t.Run("stranger may not update", func(t *testing.T) {
		projectRepo, orgRepo, p := setup()
		svc := NewProjectService(projectRepo, orgRepo, newFakeSignupRepo(), newFakeEmailService(), testTimeout, fixedNow(now))
		_, err := svc.UpdateProject(ctx, p.ID, "stranger-1", &newTitle, nil, nil)
		require.True(t, errors.Is(err, domain.ErrForbidden))
	})
}

func TestProjectService_CancelProject(t *testing.T) {
	ctx := context.Background()

	mkProject := func(repo *fakeProjectRepo, date string) *domain.Project {
		p := &domain.Project{
			Title:     "Cleanup",
			EventType: domain.EventOneTime,
			Schedule:  oneTimeSchedule(date, "09:00", "12:00", 5),
			CreatorID: "creator-1",
		}
		require.NoError(t, repo.Create(ctx, p))
		return p
	}

	t.Run("cancel before start succeeds and notifies volunteers", func(t *testing.T) {
		projectRepo := newFakeProjectRepo()
		signupRepo := newFakeSignupRepo()
		emails := newFakeEmailService()
		p := mkProject(projectRepo, "2026-06-10")

		signupRepo.signups = append(signupRepo.signups,
			&domain.SignupWithUser{
				Signup: &domain.Signup{ID: "su-1", ProjectID: p.ID, UserID: "vol-1", SlotKey: "oneTime"},
				Name:   "Ava", Email: "ava@example.com",
			},
			&domain.SignupWithUser{
				Signup: &domain.Signup{ID: "su-2", ProjectID: p.ID, UserID: "vol-2", SlotKey: "oneTime"},
				Name:   "Ben", Email: "ben@example.com",
			},
		)

		now := time.Date(2026, 6, 9, 12, 0, 0, 0, time.Local)
		svc := NewProjectService(projectRepo, newFakeOrgRepo(), signupRepo, emails, testTimeout, fixedNow(now))
		got, err := svc.CancelProject(ctx, p.ID, "creator-1", "rain")
		require.NoError(t, err)
		assert.Equal(t, domain.StatusCancelled, got.Status)
		require.NotNil(t, got.CancelledAt)
		assert.True(t, got.CancelledAt.Equal(now))
		require.NotNil(t, got.CancellationReason)
		assert.Equal(t, "rain", *got.CancellationReason)
		require.Len(t, emails.cancellations, 2)
		assert.Equal(t, "rain", emails.cancellations[0].Reason)
	})

	t.Run("cancel at exact start instant still allowed", func(t *testing.T) {
		projectRepo := newFakeProjectRepo()
		p := mkProject(projectRepo, "2026-06-10")
		now := time.Date(2026, 6, 10, 9, 0, 0, 0, time.Local)
		svc := NewProjectService(projectRepo, newFakeOrgRepo(), newFakeSignupRepo(), newFakeEmailService(), testTimeout, fixedNow(now))
		_, err := svc.CancelProject(ctx, p.ID, "creator-1", "")
		require.NoError(t, err)
	})

	t.Run("cancel after start is locked", func(t *testing.T) {
		projectRepo := newFakeProjectRepo()
		p := mkProject(projectRepo, "2026-06-10")
		now := time.Date(2026, 6, 10, 9, 0, 1, 0, time.Local)
		svc := NewProjectService(projectRepo, newFakeOrgRepo(), newFakeSignupRepo(), newFakeEmailService(), testTimeout, fixedNow(now))
		_, err := svc.CancelProject(ctx, p.ID, "creator-1", "")
		require.True(t, errors.Is(err, domain.ErrProjectLocked))
	})

	t.Run("cancel already cancelled is locked", func(t *testing.T) {
		projectRepo := newFakeProjectRepo()
		p := mkProject(projectRepo, "2026-06-10")
		p.Status = domain.StatusCancelled
		now := time.Date(2026, 6, 1, 9, 0, 0, 0, time.Local)
		svc := NewProjectService(projectRepo, newFakeOrgRepo(), newFakeSignupRepo(), newFakeEmailService(), testTimeout, fixedNow(now))
		_, err := svc.CancelProject(ctx, p.ID, "creator-1", "")
		require.True(t, errors.Is(err, domain.ErrProjectLocked))
	})

	t.Run("non-manager is forbidden", func(t *testing.T) {
		projectRepo := newFakeProjectRepo()
		p := mkProject(projectRepo, "2026-06-10")
		now := time.Date(2026, 6, 1, 9, 0, 0, 0, time.Local)
		svc := NewProjectService(projectRepo, newFakeOrgRepo(), newFakeSignupRepo(), newFakeEmailService(), testTimeout, fixedNow(now))
		_, err := svc.CancelProject(ctx, p.ID, "stranger-1", "")
		require.True(t, errors.Is(err, domain.ErrForbidden))
	})
}

func TestProjectService_DeleteProject(t *testing.T) {
	ctx := context.Background()

	mkProject := func(repo *fakeProjectRepo, date string, cancelled bool) *domain.Project {
		p := &domain.Project{
			Title:     "Cleanup",
			EventType: domain.EventOneTime,
			Schedule:  oneTimeSchedule(date, "09:00", "12:00", 5),
			CreatorID: "creator-1",
		}
		if cancelled {
			p.Status = domain.StatusCancelled
		}
		require.NoError(t, repo.Create(ctx, p))
		return p
	}

	start := time.Date(2026, 6, 10, 9, 0, 0, 0, time.Local)
	end := time.Date(2026, 6, 10, 12, 0, 0, 0, time.Local)

	tests := []struct {
		name       string
		cancelled  bool
		now        time.Time
		wantLocked bool
	}{
		{"active 25h before start deletes", false, start.Add(-25 * time.Hour), false},
		{"active 23h before start is locked", false, start.Add(-23 * time.Hour), true},
		{"active 47h after end is locked", false, end.Add(47 * time.Hour), true},
		{"active 49h after end deletes", false, end.Add(49 * time.Hour), false},
		{"cancelled 49h after end deletes", true, end.Add(49 * time.Hour), false},
		{"cancelled 30h before start deletes", true, start.Add(-30 * time.Hour), false},
		{"cancelled 10h before start is locked", true, start.Add(-10 * time.Hour), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			projectRepo := newFakeProjectRepo()
			p := mkProject(projectRepo, "2026-06-10", tt.cancelled)
			svc := NewProjectService(projectRepo, newFakeOrgRepo(), newFakeSignupRepo(), newFakeEmailService(), testTimeout, fixedNow(tt.now))
			err := svc.DeleteProject(ctx, p.ID, "creator-1")
			if tt.wantLocked {
				require.True(t, errors.Is(err, domain.ErrProjectLocked), "got %v", err)
				_, getErr := projectRepo.GetByID(ctx, p.ID)
				require.NoError(t, getErr)
				return
			}
			require.NoError(t, err)
			_, getErr := projectRepo.GetByID(ctx, p.ID)
			require.True(t, errors.Is(getErr, domain.ErrNotFound))
		})
	}

	t.Run("non-manager is forbidden", func(t *testing.T) {
		projectRepo := newFakeProjectRepo()
		p := mkProject(projectRepo, "2026-06-10", false)
		svc := NewProjectService(projectRepo, newFakeOrgRepo(), newFakeSignupRepo(), newFakeEmailService(), testTimeout, fixedNow(start.Add(-48*time.Hour)))
		err := svc.DeleteProject(ctx, p.ID, "stranger-1")
		require.True(t, errors.Is(err, domain.ErrForbidden))
	})
}
