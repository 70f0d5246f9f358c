package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"letsassist/internal/domain"
)

// reminderWindow is how far ahead of a project's start the reminder email goes out.
const reminderWindow = 24 * time.Hour

// ReminderScheduler emails volunteers a reminder once their project's start
// falls within the next 24 hours. Each signup is reminded at most once,
// tracked through the signup's reminded_at column.
type ReminderScheduler struct {
	logger      *slog.Logger
	projectRepo domain.ProjectRepository
	signupRepo  domain.SignupRepository
	email       domain.EmailService
	now         func() time.Time
	cron        *cron.Cron
}

func NewReminderScheduler(
	logger *slog.Logger,
	projectRepo domain.ProjectRepository,
	signupRepo domain.SignupRepository,
	email domain.EmailService,
) *ReminderScheduler {
	return &ReminderScheduler{
		logger:      logger,
		projectRepo: projectRepo,
		signupRepo:  signupRepo,
		email:       email,
		now:         time.Now,
	}
}

// Start launches the hourly reminder job. It returns immediately; the job
// runs on the cron's own goroutine until Stop is called.
func (s *ReminderScheduler) Start() error {
	c := cron.New()
	_, err := c.AddFunc("@hourly", func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()
		if err := s.Run(ctx); err != nil {
			s.logger.Error("reminder run failed", "err", err)
		}
	})
	if err != nil {
		return fmt.Errorf("failed to schedule reminder job: %w", err)
	}
	c.Start()
	s.cron = c
	s.logger.Info("reminder scheduler started", "interval", "hourly")
	return nil
}

// Stop halts the cron and waits for a running job to finish.
func (s *ReminderScheduler) Stop() {
	if s.cron != nil {
		<-s.cron.Stop().Done()
	}
}

// Run performs one reminder sweep. Send failures are logged per signup and
// do not mark the signup reminded, so the next sweep retries it.
func (s *ReminderScheduler) Run(ctx context.Context) error {
	now := s.now()
	projects, err := s.projectRepo.List(ctx, domain.ProjectFilter{})
	if err != nil {
		return fmt.Errorf("failed to list projects: %w", err)
	}

	reminded := 0
	for _, project := range projects {
		status, err := project.StatusAt(now)
		if err != nil {
			s.logger.Warn("skipping project with bad schedule", "project_id", project.ID, "err", err)
			continue
		}
		if status != domain.StatusUpcoming {
			continue
		}
		start, err := project.StartDateTime()
		if err != nil {
			continue
		}
		if !start.After(now) || start.After(now.Add(reminderWindow)) {
			continue
		}

		signups, err := s.signupRepo.ListUnremindedByProjectID(ctx, project.ID)
		if err != nil {
			s.logger.Error("failed to list unreminded signups", "project_id", project.ID, "err", err)
			continue
		}
		for _, signup := range signups {
			data := &domain.ProjectReminderEmailData{
				Email:        signup.Email,
				FirstName:    signup.Name,
				ProjectTitle: project.Title,
				Location:     project.Location,
				StartsAt:     start,
				CheckInCode:  signup.CheckInCode,
			}
			if err := s.email.SendProjectReminder(ctx, data); err != nil {
				s.logger.Error("failed to send reminder", "signup_id", signup.ID, "err", err)
				continue
			}
			if err := s.signupRepo.MarkReminded(ctx, signup.ID, now); err != nil {
				s.logger.Error("failed to mark signup reminded", "signup_id", signup.ID, "err", err)
				continue
			}
			reminded++
		}
	}

	if reminded > 0 {
		s.logger.Info("sent project reminders", "count", reminded)
	}
	return nil
}
