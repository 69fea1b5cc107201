package handlers

import (
	"strconv"
	"strings"

	"storedir/internal/services"
	"storedir/internal/web"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// ReviewRequest represents the review form.
type ReviewRequest struct {
	Text   string `form:"text" validate:"required"`
	Rating int    `form:"rating" validate:"required,min=1,max=5"`
}

var reviewMessages = messages{
	"Text":   "Your review needs some text!",
	"Rating": "You must rate the store from 1 to 5 stars!",
}

// ReviewHandler handles store reviews.
type ReviewHandler struct {
	reviews     *services.ReviewService
	view        *Renderer
	requireAuth fiber.Handler
	validate    *validator.Validate
}

// NewReviewHandler creates a new ReviewHandler.
func NewReviewHandler(reviews *services.ReviewService, view *Renderer, requireAuth fiber.Handler) *ReviewHandler {
	return &ReviewHandler{reviews: reviews, view: view, requireAuth: requireAuth, validate: validator.New()}
}

// RegisterRoutes registers the review routes.
func (h *ReviewHandler) RegisterRoutes(router fiber.Router) {
	router.Post("/reviews/:id", h.requireAuth, h.HandleAdd)
}

// HandleAdd saves a review and returns to the store page.
func (h *ReviewHandler) HandleAdd(c *fiber.Ctx) error {
	var req ReviewRequest
	if err := c.BodyParser(&req); err != nil {
		// An unparsable rating is reported like a missing one.
		req.Text = c.FormValue("text")
		req.Rating, _ = strconv.Atoi(c.FormValue("rating"))
	}
	req.Text = strings.TrimSpace(req.Text)
	if errs := formErrors(h.validate, req, reviewMessages); len(errs) > 0 {
		h.view.Flash(c, web.FlashError, errs...)
		return c.RedirectBack("/stores")
	}

	store, err := h.reviews.AddReview(c.UserContext(), web.CurrentUser(c), c.Params("id"), req.Text, req.Rating)
	if err != nil {
		return err
	}
	return h.view.Redirect(c, "/store/"+store.Slug, web.FlashSuccess, "Review Saved!")
}
