package handlers

import (
	"errors"
	"time"

	"storedir/internal/middleware"
	"storedir/internal/models"
	"storedir/internal/services"
	"storedir/internal/web"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// LoginRequest represents the login form.
type LoginRequest struct {
	Email    string `form:"email" json:"email" validate:"required,email"`
	Password string `form:"password" json:"password" validate:"required"`
}

// RegisterRequest represents the registration form.
type RegisterRequest struct {
	Name            string `form:"name" validate:"required"`
	Email           string `form:"email" validate:"required,email"`
	Password        string `form:"password" validate:"required"`
	PasswordConfirm string `form:"password-confirm" validate:"required,eqfield=Password"`
}

// AccountRequest represents the account form.
type AccountRequest struct {
	Name  string `form:"name" validate:"required"`
	Email string `form:"email" validate:"required,email"`
}

// ForgotRequest represents the forgotten password form.
type ForgotRequest struct {
	Email string `form:"email" validate:"required,email"`
}

// ResetRequest represents the password reset form.
type ResetRequest struct {
	Password        string `form:"password" validate:"required"`
	PasswordConfirm string `form:"password-confirm"`
}

var registerMessages = messages{
	"Name":                     "You must supply a name!",
	"Email":                    "That email is not valid!",
	"Password":                 "Password cannot be blank!",
	"PasswordConfirm.required": "Confirmed password cannot be blank!",
	"PasswordConfirm.eqfield":  "Oops! Passwords do not match!",
}

var accountMessages = messages{
	"Name":  "You must supply a name!",
	"Email": "That email is not valid!",
}

// AuthHandler handles login, registration and account management.
type AuthHandler struct {
	authService *services.AuthService
	view        *Renderer
	requireAuth fiber.Handler
	validate    *validator.Validate
	logger      *zap.Logger
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService *services.AuthService, view *Renderer, requireAuth fiber.Handler, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		view:        view,
		requireAuth: requireAuth,
		validate:    validator.New(),
		logger:      logger,
	}
}

// RegisterRoutes registers the authentication routes with the Fiber app.
func (h *AuthHandler) RegisterRoutes(router fiber.Router) {
	router.Get("/login", h.HandleLoginForm)
	router.Post("/login", h.HandleLogin)
	router.Get("/register", h.HandleRegisterForm)
	router.Post("/register", h.HandleRegister)
	router.Get("/logout", h.HandleLogout)
	router.Get("/account", h.requireAuth, h.HandleAccountForm)
	router.Post("/account", h.requireAuth, h.HandleUpdateAccount)
	router.Post("/account/forgot", h.HandleForgot)
	router.Get("/account/reset/:token", h.HandleResetForm)
	router.Post("/account/reset/:token", h.HandleReset)
}

// HandleLoginForm renders the login form.
func (h *AuthHandler) HandleLoginForm(c *fiber.Ctx) error {
	return h.view.Render(c, "login", fiber.Map{"Title": "Login"})
}

// HandleLogin checks the credentials and sets the session token.
func (h *AuthHandler) HandleLogin(c *fiber.Ctx) error {
	var req LoginRequest
	if err := c.BodyParser(&req); err != nil || h.validate.Struct(req) != nil {
		return h.view.Redirect(c, "/login", web.FlashError, "Failed Login!")
	}

	token, err := h.authService.LoginUser(c.UserContext(), req.Email, req.Password)
	if err != nil {
		if !errors.Is(err, services.ErrInvalidCredentials) {
			return err
		}
		h.logger.Info("failed login", zap.String("email", req.Email))
		return h.view.Redirect(c, "/login", web.FlashError, "Failed Login!")
	}

	h.setToken(c, token)
	return h.view.Redirect(c, "/", web.FlashSuccess, "You are now logged in!")
}

// HandleRegisterForm renders the registration form.
func (h *AuthHandler) HandleRegisterForm(c *fiber.Ctx) error {
	return h.view.Render(c, "register", fiber.Map{"Title": "Register"})
}

// HandleRegister validates the form, creates the account and logs the user in.
func (h *AuthHandler) HandleRegister(c *fiber.Ctx) error {
	var req RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid form submission")
	}

	rerender := func(errs ...string) error {
		c.Status(fiber.StatusUnprocessableEntity)
		return h.view.Render(c, "register", fiber.Map{
			"Title": "Register",
			"Body":  req,
		}, web.Flashes{web.FlashError: errs})
	}

	if errs := formErrors(h.validate, req, registerMessages); len(errs) > 0 {
		return rerender(errs...)
	}

	user, err := h.authService.RegisterUser(c.UserContext(), req.Name, req.Email, req.Password)
	if errors.Is(err, services.ErrEmailTaken) {
		return rerender("A user with the given email is already registered")
	}
	if err != nil {
		return err
	}

	if err := h.login(c, user); err != nil {
		return err
	}
	return h.view.Redirect(c, "/", web.FlashSuccess, "You are now logged in!")
}

// HandleLogout clears the session token.
func (h *AuthHandler) HandleLogout(c *fiber.Ctx) error {
	c.ClearCookie(middleware.TokenCookie)
	web.SetUser(c, nil)
	return h.view.Redirect(c, "/", web.FlashSuccess, "You are now logged out!")
}

// HandleAccountForm renders the account form.
func (h *AuthHandler) HandleAccountForm(c *fiber.Ctx) error {
	return h.view.Render(c, "account", fiber.Map{"Title": "Edit Your Account"})
}

// HandleUpdateAccount saves the user's name and email.
func (h *AuthHandler) HandleUpdateAccount(c *fiber.Ctx) error {
	var req AccountRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid form submission")
	}
	if errs := formErrors(h.validate, req, accountMessages); len(errs) > 0 {
		h.view.Flash(c, web.FlashError, errs...)
		return c.Redirect("/account")
	}

	_, err := h.authService.UpdateAccount(c.UserContext(), web.CurrentUser(c), req.Name, req.Email)
	if errors.Is(err, services.ErrEmailTaken) {
		return h.view.Redirect(c, "/account", web.FlashError, "That email is already in use.")
	}
	if err != nil {
		return err
	}
	return h.view.Redirect(c, "/account", web.FlashSuccess, "Account successfully updated!")
}

// HandleForgot starts a password reset and mails the link.
func (h *AuthHandler) HandleForgot(c *fiber.Ctx) error {
	var req ForgotRequest
	if err := c.BodyParser(&req); err != nil || h.validate.Struct(req) != nil {
		return h.view.Redirect(c, "/login", web.FlashError, "That email is not valid!")
	}

	err := h.authService.Forgot(c.UserContext(), req.Email, c.Hostname())
	if errors.Is(err, services.ErrNoAccount) {
		return h.view.Redirect(c, "/login", web.FlashError, "No account with that email exists.")
	}
	if err != nil {
		return err
	}
	return h.view.Redirect(c, "/login", web.FlashSuccess, "You have been emailed a password reset link.")
}

// HandleResetForm renders the reset form for a valid token.
func (h *AuthHandler) HandleResetForm(c *fiber.Ctx) error {
	_, err := h.authService.UserForResetToken(c.UserContext(), c.Params("token"))
	if errors.Is(err, services.ErrInvalidResetToken) {
		return h.view.Redirect(c, "/login", web.FlashError, "Password reset is invalid or has expired.")
	}
	if err != nil {
		return err
	}
	return h.view.Render(c, "reset", fiber.Map{
		"Title": "Reset your Password",
		"Token": c.Params("token"),
	})
}

// HandleReset sets the new password and logs the user in.
func (h *AuthHandler) HandleReset(c *fiber.Ctx) error {
	token := c.Params("token")
	var req ResetRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid form submission")
	}

	user, err := h.authService.ResetPassword(c.UserContext(), token, req.Password, req.PasswordConfirm)
	switch {
	case errors.Is(err, services.ErrPasswordMismatch):
		return h.view.Redirect(c, "/account/reset/"+token, web.FlashError, "Passwords do not match!")
	case errors.Is(err, services.ErrInvalidResetToken):
		return h.view.Redirect(c, "/login", web.FlashError, "Password reset is invalid or has expired.")
	case err != nil:
		return err
	}

	if err := h.login(c, user); err != nil {
		return err
	}
	return h.view.Redirect(c, "/", web.FlashSuccess, "Nice! Your password has been reset! You are now logged in!")
}

func (h *AuthHandler) login(c *fiber.Ctx, user *models.User) error {
	token, err := h.authService.IssueToken(user)
	if err != nil {
		return err
	}
	h.setToken(c, token)
	return nil
}

func (h *AuthHandler) setToken(c *fiber.Ctx, token string) {
	c.Cookie(&fiber.Cookie{
		Name:     middleware.TokenCookie,
		Value:    token,
		Path:     "/",
		Expires:  time.Now().Add(h.authService.TokenTTL()),
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}
