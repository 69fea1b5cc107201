package handlers

import (
	"strconv"

	"storedir/internal/services"
	"storedir/internal/web"

	"github.com/gofiber/fiber/v2"
)

// APIHandler serves the JSON endpoints used by the search box, map and heart buttons.
type APIHandler struct {
	stores      *services.StoreService
	hearts      *services.HeartService
	requireAuth fiber.Handler
}

// NewAPIHandler creates a new APIHandler.
func NewAPIHandler(stores *services.StoreService, hearts *services.HeartService, requireAuth fiber.Handler) *APIHandler {
	return &APIHandler{stores: stores, hearts: hearts, requireAuth: requireAuth}
}

// RegisterRoutes registers the API routes under router.
func (h *APIHandler) RegisterRoutes(router fiber.Router) {
	router.Get("/search", h.HandleSearch)
	router.Get("/stores/near", h.HandleNear)
	router.Post("/stores/:id/heart", h.requireAuth, h.HandleHeart)
}

// HandleSearch returns the best text matches for ?q=.
func (h *APIHandler) HandleSearch(c *fiber.Ctx) error {
	results, err := h.stores.Search(c.UserContext(), c.Query("q"))
	if err != nil {
		return err
	}
	return c.JSON(results)
}

// HandleNear returns the stores near ?lng=&lat=.
func (h *APIHandler) HandleNear(c *fiber.Ctx) error {
	lng, errLng := strconv.ParseFloat(c.Query("lng"), 64)
	lat, errLat := strconv.ParseFloat(c.Query("lat"), 64)
	if errLng != nil || errLat != nil || lng < -180 || lng > 180 || lat < -90 || lat > 90 {
		return fiber.NewError(fiber.StatusBadRequest, "lng and lat must be valid coordinates")
	}

	stores, err := h.stores.Near(c.UserContext(), lng, lat)
	if err != nil {
		return err
	}
	return c.JSON(stores)
}

// HandleHeart toggles the store in the user's hearts and returns the user.
func (h *APIHandler) HandleHeart(c *fiber.Ctx) error {
	user, err := h.hearts.Toggle(c.UserContext(), web.CurrentUser(c), c.Params("id"))
	if err != nil {
		return err
	}
	web.SetUser(c, user)
	return c.JSON(user)
}
