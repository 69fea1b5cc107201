// Package web holds request scoped state shared by middleware, handlers and views.
package web

import (
	"storedir/internal/models"

	"github.com/gofiber/fiber/v2"
)

const localsKey = "request_context"

// RequestContext is the per-request state resolved by middleware.
type RequestContext struct {
	User    *models.User
	Flashes Flashes
}

// FromCtx returns the request context, creating an empty one if needed.
func FromCtx(c *fiber.Ctx) *RequestContext {
	if rc, ok := c.Locals(localsKey).(*RequestContext); ok {
		return rc
	}
	rc := &RequestContext{}
	c.Locals(localsKey, rc)
	return rc
}

// SetUser records the authenticated user for the request.
func SetUser(c *fiber.Ctx, user *models.User) {
	FromCtx(c).User = user
}

// CurrentUser returns the authenticated user or nil.
func CurrentUser(c *fiber.Ctx) *models.User {
	return FromCtx(c).User
}
