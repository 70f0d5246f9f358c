package services

import (
	"context"
	"fmt"

	"letsassist/internal/domain"
)

type emailService struct {
	mailer   domain.Mailer
	renderer domain.EmailTemplateRenderer
}

// NewEmailService creates an EmailService that renders named templates and
// hands them to the mailer.
func NewEmailService(mailer domain.Mailer, renderer domain.EmailTemplateRenderer) domain.EmailService {
	return &emailService{mailer: mailer, renderer: renderer}
}

func (s *emailService) send(templateName, to string, data any) error {
	subject, html, text, err := s.renderer.Render(templateName, data)
	if err != nil {
		return fmt.Errorf("failed to render %s email: %w", templateName, err)
	}
	if err := s.mailer.Send(to, subject, html, text); err != nil {
		return fmt.Errorf("failed to send %s email: %w", templateName, err)
	}
	return nil
}

func (s *emailService) SendWelcomeMessage(_ context.Context, data *domain.WelcomeMessageEmailData) error {
	return s.send("welcome_message", data.Email, data)
}

func (s *emailService) SendLoginCode(_ context.Context, data *domain.LoginCodeEmailData) error {
	return s.send("login_code", data.Email, data)
}

func (s *emailService) SendSignupConfirmation(_ context.Context, data *domain.SignupConfirmationEmailData) error {
	return s.send("signup_confirmation", data.Email, data)
}

func (s *emailService) SendProjectCancelled(_ context.Context, data *domain.ProjectCancelledEmailData) error {
	return s.send("project_cancelled", data.Email, data)
}

func (s *emailService) SendProjectReminder(_ context.Context, data *domain.ProjectReminderEmailData) error {
	return s.send("project_reminder", data.Email, data)
}
