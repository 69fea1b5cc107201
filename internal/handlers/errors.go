package handlers

import (
	"errors"
	"net/http"
	"strings"

	"storedir/internal/repositories"
	"storedir/internal/services"
	"storedir/internal/uploads"
	"storedir/internal/web"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// NotOwnerMessage is shown when a user edits a store they did not create.
const NotOwnerMessage = "You must own a store in order to edit it!"

// ErrorHandler turns handler errors into an error page, or JSON under /api.
func ErrorHandler(logger *zap.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		code := fiber.StatusInternalServerError
		var (
			fe       *fiber.Error
			rejected *uploads.RejectedError
		)
		switch {
		case errors.Is(err, services.ErrNotOwner):
			code = fiber.StatusForbidden
		case errors.Is(err, repositories.ErrNotFound):
			code = fiber.StatusNotFound
		case errors.As(err, &rejected):
			code = fiber.StatusBadRequest
		case errors.As(err, &fe):
			code = fe.Code
		}

		message := err.Error()
		switch {
		case code >= fiber.StatusInternalServerError:
			logger.Error("request failed",
				zap.String("method", c.Method()),
				zap.String("path", c.Path()),
				zap.Error(err),
			)
			message = "Something went wrong."
		case errors.Is(err, services.ErrNotOwner):
			message = NotOwnerMessage
		case code == fiber.StatusNotFound && !errors.As(err, &fe):
			message = "Not found."
		}

		if strings.HasPrefix(c.Path(), "/api/") {
			return c.Status(code).JSON(fiber.Map{"message": message})
		}

		c.Status(code)
		renderErr := c.Render("error", fiber.Map{
			"Title":   http.StatusText(code),
			"Status":  code,
			"Message": message,
			"User":    web.CurrentUser(c),
			"Flashes": web.Flashes{},
			"Path":    c.Path(),
		}, Layout)
		if renderErr != nil {
			logger.Error("failed to render error page", zap.Error(renderErr))
			return c.Status(code).SendString(message)
		}
		return nil
	}
}
