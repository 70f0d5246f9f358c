package domain

import (
	"context"
	"time"
)

// Mailer defines the contract for sending emails (infrastructure port).
type Mailer interface {
	Send(to, subject, html, text string) error
}

// EmailTemplateRenderer renders email content from a named template with the given data.
type EmailTemplateRenderer interface {
	Render(templateName string, data any) (subject, htmlBody, textBody string, err error)
}

// WelcomeMessageEmailData holds data for the welcome email.
type WelcomeMessageEmailData struct {
	Email     string
	FirstName string
}

// LoginCodeEmailData holds data for the passwordless login code email.
type LoginCodeEmailData struct {
	Email            string
	Code             string
	ExpiresInMinutes int
}

// SignupConfirmationEmailData holds data for the signup confirmation email.
type SignupConfirmationEmailData struct {
	Email        string
	FirstName    string
	ProjectTitle string
	Location     string
	SlotKey      string
	StartsAt     time.Time
	CheckInCode  string
}

// ProjectCancelledEmailData holds data for the cancellation notice sent to
// every signed-up volunteer.
type ProjectCancelledEmailData struct {
	Email        string
	FirstName    string
	ProjectTitle string
	Reason       string
}

// ProjectReminderEmailData holds data for the upcoming-project reminder email.
type ProjectReminderEmailData struct {
	Email        string
	FirstName    string
	ProjectTitle string
	Location     string
	StartsAt     time.Time
	CheckInCode  string
}

// EmailService defines the contract for sending domain-level emails.
type EmailService interface {
	SendWelcomeMessage(ctx context.Context, data *WelcomeMessageEmailData) error
	SendLoginCode(ctx context.Context, data *LoginCodeEmailData) error
	SendSignupConfirmation(ctx context.Context, data *SignupConfirmationEmailData) error
	SendProjectCancelled(ctx context.Context, data *ProjectCancelledEmailData) error
	SendProjectReminder(ctx context.Context, data *ProjectReminderEmailData) error
}
