package middleware

import (
	"errors"
	"strings"

	"storedir/internal/services"
	"storedir/internal/web"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// TokenCookie is the cookie carrying the session token.
const TokenCookie = "token"

// LoadUser resolves the user from the token cookie or a Bearer header.
// Requests without a valid token continue anonymously.
func LoadUser(authService *services.AuthService, logger *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		rc := web.FromCtx(c)
		tokenString := tokenFromRequest(c)
		if tokenString == "" {
			return c.Next()
		}

		user, err := authService.CurrentUser(c.UserContext(), tokenString)
		if err != nil {
			logger.Debug("ignoring invalid session token", zap.Error(err))
			c.ClearCookie(TokenCookie)
			return c.Next()
		}
		rc.User = user
		return c.Next()
	}
}

// AuthRequired rejects anonymous requests. Pages redirect to the login form
// with a flash message, API requests get a 401.
func AuthRequired(flash *web.Flash) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if web.CurrentUser(c) != nil {
			return c.Next()
		}
		if strings.HasPrefix(c.Path(), "/api/") {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "You must be logged in to do that.",
			})
		}
		err := flash.Add(c, web.FlashError, "Oops! You must be logged in to do that.")
		if err != nil && !errors.Is(err, web.ErrCorruptFlashes) {
			return err
		}
		return c.Redirect("/login")
	}
}

func tokenFromRequest(c *fiber.Ctx) string {
	if token := c.Cookies(TokenCookie); token != "" {
		return token
	}
	parts := strings.SplitN(c.Get(fiber.HeaderAuthorization), " ", 2)
	if len(parts) == 2 && parts[0] == "Bearer" {
		return strings.TrimSpace(parts[1])
	}
	return ""
}
