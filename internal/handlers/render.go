package handlers

import (
	"storedir/internal/web"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Layout wraps every rendered page.
const Layout = "layouts/main"

// Renderer renders views with the request context and pending flashes.
type Renderer struct {
	flash  *web.Flash
	logger *zap.Logger
}

// NewRenderer creates a new Renderer.
func NewRenderer(flash *web.Flash, logger *zap.Logger) *Renderer {
	return &Renderer{flash: flash, logger: logger}
}

// Render renders view inside the main layout. Extra messages are shown
// alongside the flashes queued by earlier requests.
func (r *Renderer) Render(c *fiber.Ctx, view string, data fiber.Map, extra ...web.Flashes) error {
	rc := web.FromCtx(c)
	flashes, err := r.flash.Pop(c)
	if err != nil {
		r.logger.Warn("failed to read flashes", zap.Error(err))
		flashes = web.Flashes{}
	}
	for _, e := range extra {
		for kind, msgs := range e {
			flashes[kind] = append(flashes[kind], msgs...)
		}
	}
	rc.Flashes = flashes

	bind := fiber.Map{
		"User":    rc.User,
		"Flashes": rc.Flashes,
		"Path":    c.Path(),
	}
	for k, v := range data {
		bind[k] = v
	}
	return c.Render(view, bind, Layout)
}

// Flash queues messages for the next rendered page.
func (r *Renderer) Flash(c *fiber.Ctx, kind string, messages ...string) {
	if err := r.flash.Add(c, kind, messages...); err != nil {
		r.logger.Warn("failed to store flash", zap.String("kind", kind), zap.Error(err))
	}
}

// Redirect queues a flash message and redirects to location.
func (r *Renderer) Redirect(c *fiber.Ctx, location, kind, message string) error {
	r.Flash(c, kind, message)
	return c.Redirect(location)
}
