package http

import (
	"log/slog"
	"net/http"

	httpSwagger "github.com/swaggo/http-swagger"

	"letsassist/internal/delivery/http/controllers"
	"letsassist/internal/delivery/http/middleware"
	"letsassist/internal/domain"
)

// NewRouter initializes the HTTP router with all application routes.
// Read-only project routes accept anonymous callers; everything else
// requires a Bearer token.
func NewRouter(
	logger *slog.Logger,
	verifier domain.TokenVerifier,
	authController *controllers.AuthController,
	userController *controllers.UserController,
	projectController *controllers.ProjectController,
	signupController *controllers.SignupController,
	orgController *controllers.OrganizationController,
) *http.ServeMux {
	mux := http.NewServeMux()

	auth := middleware.RequireAuth(verifier, logger)
	optional := middleware.OptionalAuth(verifier, logger)

	// Auth
	mux.HandleFunc("POST /auth/signup", authController.SignUp)
	mux.HandleFunc("POST /auth/login", authController.Login)
	mux.HandleFunc("POST /auth/login-code", authController.RequestLoginCode)
	mux.HandleFunc("POST /auth/login-code/verify", authController.VerifyLoginCode)
	mux.HandleFunc("GET /auth/me", auth(userController.GetMe))
	mux.HandleFunc("PATCH /auth/me", auth(userController.UpdateMe))

	// Projects
	mux.HandleFunc("POST /projects", auth(projectController.CreateProject))
	mux.HandleFunc("GET /projects", optional(projectController.ListProjects))
	mux.HandleFunc("GET /projects/{projectID}", optional(projectController.GetProject))
	mux.HandleFunc("PATCH /projects/{projectID}", auth(projectController.UpdateProject))
	mux.HandleFunc("POST /projects/{projectID}/cancel", auth(projectController.CancelProject))
	mux.HandleFunc("DELETE /projects/{projectID}", auth(projectController.DeleteProject))
	mux.HandleFunc("GET /projects/{projectID}/calendar.ics", optional(projectController.ProjectCalendar))

	// Signups
	mux.HandleFunc("POST /projects/{projectID}/signups", auth(signupController.CreateSignup))
	mux.HandleFunc("GET /projects/{projectID}/signups", auth(signupController.ListProjectSignups))
	mux.HandleFunc("GET /signups", auth(signupController.ListMySignups))
	mux.HandleFunc("DELETE /signups/{signupID}", auth(signupController.CancelSignup))

	// Organizations
	mux.HandleFunc("POST /organizations", auth(orgController.CreateOrganization))
	mux.HandleFunc("GET /organizations/{orgID}", orgController.GetOrganization)
	mux.HandleFunc("GET /organizations/{orgID}/members", auth(orgController.ListMembers))
	mux.HandleFunc("POST /organizations/{orgID}/members", auth(orgController.AddMember))
	mux.HandleFunc("PATCH /organizations/{orgID}/members/{userID}", auth(orgController.UpdateMemberRole))
	mux.HandleFunc("DELETE /organizations/{orgID}/members/{userID}", auth(orgController.RemoveMember))

	// Swagger
	mux.Handle("/swagger/", httpSwagger.WrapHandler)

	return mux
}
