package controllers

import (
	"errors"
	"log/slog"
	"net/http"
	"regexp"
	"strings"

	"letsassist/internal/delivery/http/helpers"
	"letsassist/internal/domain"
)

// emailRegex matches a simple email format (local@domain with at least one dot in domain).
var emailRegex = regexp.MustCompile(`^[^@]+@[^@]+\.[^@]+$`)

// loginCodeRegex matches a six digit one-time login code.
var loginCodeRegex = regexp.MustCompile(`^[0-9]{6}$`)

// SignUpRequest is the request body for POST /auth/signup
type SignUpRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
	LastName string `json:"last_name"`
}

// Validate implements Validator.
func (s SignUpRequest) Validate() []string {
	var errs []string
	email := strings.TrimSpace(strings.ToLower(s.Email))
	if email == "" {
		errs = append(errs, "email is required")
	} else if !emailRegex.MatchString(email) {
		errs = append(errs, "invalid email format")
	}
	if s.Password == "" {
		errs = append(errs, "password is required")
	} else if len(s.Password) < 8 {
		errs = append(errs, "password must be at least 8 characters")
	}
	if strings.TrimSpace(s.Name) == "" {
		errs = append(errs, "name is required")
	}
	return errs
}

// LoginRequest is the request body for POST /auth/login
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Validate implements Validator.
func (l LoginRequest) Validate() []string {
	var errs []string
	if strings.TrimSpace(l.Email) == "" {
		errs = append(errs, "email is required")
	}
	if l.Password == "" {
		errs = append(errs, "password is required")
	}
	return errs
}

// RequestLoginCodeRequest is the request body for POST /auth/login-code
type RequestLoginCodeRequest struct {
	Email string `json:"email"`
}

// Validate implements Validator.
func (r RequestLoginCodeRequest) Validate() []string {
	email := strings.TrimSpace(strings.ToLower(r.Email))
	if email == "" {
		return []string{"email is required"}
	}
	if !emailRegex.MatchString(email) {
		return []string{"invalid email format"}
	}
	return nil
}

// VerifyLoginCodeRequest is the request body for POST /auth/login-code/verify
type VerifyLoginCodeRequest struct {
	Email string `json:"email"`
	Code  string `json:"code"`
}

// Validate implements Validator.
func (v VerifyLoginCodeRequest) Validate() []string {
	var errs []string
	email := strings.TrimSpace(strings.ToLower(v.Email))
	if email == "" {
		errs = append(errs, "email is required")
	} else if !emailRegex.MatchString(email) {
		errs = append(errs, "invalid email format")
	}
	if !loginCodeRegex.MatchString(strings.TrimSpace(v.Code)) {
		errs = append(errs, "code must be 6 digits")
	}
	return errs
}

// LoginResponse is the response body for the login endpoints.
type LoginResponse struct {
	Token     string       `json:"token"`
	TokenType string       `json:"token_type"`
	User      *domain.User `json:"user"`
}

// RequestLoginCodeResponse is the response body for POST /auth/login-code.
type RequestLoginCodeResponse struct {
	Status string `json:"status"`
}

// SignUpSuccessResponse is the success response envelope for POST /auth/signup (201).
type SignUpSuccessResponse struct {
	Data  *domain.User      `json:"data"`
	Error *helpers.APIError `json:"error"`
}

// LoginSuccessResponse is the success response envelope for the login endpoints (200).
type LoginSuccessResponse struct {
	Data  LoginResponse     `json:"data"`
	Error *helpers.APIError `json:"error"`
}

type AuthController struct {
	Logger      *slog.Logger
	AuthService domain.AuthService
	UserService domain.UserService
}

func NewAuthController(logger *slog.Logger, authSvc domain.AuthService, userSvc domain.UserService) *AuthController {
	return &AuthController{
		Logger:      logger,
		AuthService: authSvc,
		UserService: userSvc,
	}
}

// SignUp godoc
// @Summary Sign up a new user
// @Description Create a new user with email, password, and name. The password is stored hashed; a welcome email is sent on success.
// @Tags auth
// @Accept json
// @Produce json
// @Param body body SignUpRequest true "Sign-up data"
// @Success 201 {object} controllers.SignUpSuccessResponse "data contains the created user"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict (email already registered)"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /auth/signup [post]
func (c *AuthController) SignUp(w http.ResponseWriter, r *http.Request) {
	var req SignUpRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	user, err := c.AuthService.SignUp(r.Context(), req.Email, req.Password, req.Name, req.LastName)
	if err != nil {
		writeDomainError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, user)
}

// Login godoc
// @Summary Log in with email and password
// @Description Authenticate with email and password. Returns a JWT and the user profile. Accounts created through login codes have no password and must use the passwordless flow.
// @Tags auth
// @Accept json
// @Produce json
// @Param body body LoginRequest true "Login credentials"
// @Success 200 {object} controllers.LoginSuccessResponse "data contains token, token_type, and user"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /auth/login [post]
func (c *AuthController) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	token, user, err := c.AuthService.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		// Credential failures all surface as the same code so the
		// response does not reveal whether the account exists.
		if errors.Is(err, domain.ErrForbidden) || errors.Is(err, domain.ErrUserNotFound) {
			helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "invalid credentials")
			return
		}
		writeDomainError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, LoginResponse{Token: token, TokenType: "Bearer", User: user})
}

// RequestLoginCode godoc
// @Summary Request a one-time login code
// @Description Email a six digit login code to the given address. Always returns 200 for a well-formed email so the endpoint cannot be used to probe for accounts.
// @Tags auth
// @Accept json
// @Produce json
// @Param body body RequestLoginCodeRequest true "Target email"
// @Success 200 {object} helpers.APIResponse "data contains status: sent"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /auth/login-code [post]
func (c *AuthController) RequestLoginCode(w http.ResponseWriter, r *http.Request) {
	var req RequestLoginCodeRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	if err := c.UserService.RequestLoginCode(r.Context(), req.Email); err != nil {
		writeDomainError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, RequestLoginCodeResponse{Status: "sent"})
}

// VerifyLoginCode godoc
// @Summary Verify a one-time login code
// @Description Exchange an emailed login code for a JWT. Creates the account on first login. Codes are single use and expire after 15 minutes.
// @Tags auth
// @Accept json
// @Produce json
// @Param body body VerifyLoginCodeRequest true "Email and code"
// @Success 200 {object} controllers.LoginSuccessResponse "data contains token, token_type, and user"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /auth/login-code/verify [post]
func (c *AuthController) VerifyLoginCode(w http.ResponseWriter, r *http.Request) {
	var req VerifyLoginCodeRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	token, user, err := c.UserService.VerifyLoginCode(r.Context(), req.Email, strings.TrimSpace(req.Code))
	if err != nil {
		if strings.Contains(err.Error(), "invalid or expired code") {
			helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "invalid or expired code")
			return
		}
		writeDomainError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, LoginResponse{Token: token, TokenType: "Bearer", User: user})
}
