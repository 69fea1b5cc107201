package handlers

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"storedir/internal/repositories"
	"storedir/internal/services"
	"storedir/internal/uploads"
	"storedir/internal/web"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// TagChoices are the tags offered on the store form.
var TagChoices = []string{"Wifi", "Open Late", "Family Friendly", "Vegetarian", "Licensed"}

// StoreForm is the submitted store form.
type StoreForm struct {
	Name        string   `form:"name" validate:"required"`
	Description string   `form:"description"`
	Tags        []string `form:"tags"`
	Address     string   `form:"address" validate:"required"`
	Lng         string   `form:"lng" validate:"required,longitude"`
	Lat         string   `form:"lat" validate:"required,latitude"`
}

var storeMessages = messages{
	"Name":    "You must supply a name!",
	"Address": "You must supply an address!",
	"Lng":     "You must supply valid coordinates!",
	"Lat":     "You must supply valid coordinates!",
}

// StoreHandler handles the store pages.
type StoreHandler struct {
	stores      *services.StoreService
	uploads     *uploads.Processor
	view        *Renderer
	requireAuth fiber.Handler
	validate    *validator.Validate
}

// NewStoreHandler creates a new StoreHandler.
func NewStoreHandler(stores *services.StoreService, processor *uploads.Processor, view *Renderer, requireAuth fiber.Handler) *StoreHandler {
	return &StoreHandler{
		stores:      stores,
		uploads:     processor,
		view:        view,
		requireAuth: requireAuth,
		validate:    validator.New(),
	}
}

// RegisterRoutes registers the store routes.
func (h *StoreHandler) RegisterRoutes(router fiber.Router) {
	router.Get("/", h.HandleList)
	router.Get("/stores", h.HandleList)
	router.Get("/stores/page/:page", h.HandleList)
	router.Get("/stores/:id/edit", h.requireAuth, h.HandleEditForm)
	router.Get("/add", h.requireAuth, h.HandleAddForm)
	router.Post("/add", h.requireAuth, h.HandleCreate)
	router.Post("/add/:id", h.requireAuth, h.HandleUpdate)
	router.Get("/store/:slug", h.HandleShow)
	router.Get("/tags", h.HandleTags)
	router.Get("/tags/:tag", h.HandleTags)
	router.Get("/map", h.HandleMap)
	router.Get("/hearts", h.requireAuth, h.HandleHearts)
	router.Get("/top", h.HandleTop)
}

// HandleList renders one page of the listing.
func (h *StoreHandler) HandleList(c *fiber.Ctx) error {
	page, err := h.stores.ListPage(c.UserContext(), services.ParsePage(c.Params("page")))
	if err != nil {
		return err
	}
	if page.Redirect > 0 {
		msg := fmt.Sprintf("You asked for page %d but that doesn't exist. I put you on page %d.", page.Page, page.Redirect)
		return h.view.Redirect(c, fmt.Sprintf("/stores/page/%d", page.Redirect), web.FlashInfo, msg)
	}
	return h.view.Render(c, "stores", fiber.Map{
		"Title":    "Stores",
		"Stores":   page.Stores,
		"Page":     page.Page,
		"Pages":    page.Pages,
		"Count":    page.Count,
		"PrevPage": page.Page - 1,
		"NextPage": nextPage(page),
	})
}

func nextPage(p *services.StorePage) int {
	if p.Page < p.Pages {
		return p.Page + 1
	}
	return 0
}

// HandleAddForm renders an empty store form.
func (h *StoreHandler) HandleAddForm(c *fiber.Ctx) error {
	return h.view.Render(c, "edit_store", fiber.Map{
		"Title":      "Add Store",
		"Action":     "/add",
		"TagChoices": TagChoices,
	})
}

// HandleEditForm renders the form for a store the user owns.
func (h *StoreHandler) HandleEditForm(c *fiber.Ctx) error {
	store, err := h.stores.GetStoreForEdit(c.UserContext(), c.Params("id"), web.CurrentUser(c))
	if err != nil {
		return err
	}
	return h.view.Render(c, "edit_store", fiber.Map{
		"Title":      "Edit " + store.Name,
		"Action":     "/add/" + store.ID,
		"Store":      store,
		"TagChoices": TagChoices,
	})
}

// HandleCreate saves a new store with its optional photo.
func (h *StoreHandler) HandleCreate(c *fiber.Ctx) error {
	in, ok, err := h.parseStoreForm(c)
	if err != nil {
		return err
	}
	if !ok {
		return c.Redirect("/add")
	}

	store, err := h.stores.CreateStore(c.UserContext(), web.CurrentUser(c), in)
	if err != nil {
		h.discardPhoto(in.Photo)
		return err
	}
	msg := fmt.Sprintf("Successfully created %s! Care to leave a review?", store.Name)
	return h.view.Redirect(c, "/store/"+store.Slug, web.FlashSuccess, msg)
}

// HandleUpdate saves changes to a store the user owns.
func (h *StoreHandler) HandleUpdate(c *fiber.Ctx) error {
	id := c.Params("id")
	editURL := "/stores/" + id + "/edit"

	if _, err := h.stores.GetStoreForEdit(c.UserContext(), id, web.CurrentUser(c)); err != nil {
		return err
	}
	in, ok, err := h.parseStoreForm(c)
	if err != nil {
		return err
	}
	if !ok {
		return c.Redirect(editURL)
	}

	store, err := h.stores.UpdateStore(c.UserContext(), id, web.CurrentUser(c), in)
	if err != nil {
		h.discardPhoto(in.Photo)
		return err
	}
	return h.view.Redirect(c, editURL, web.FlashSuccess, fmt.Sprintf("Successfully updated %s.", store.Name))
}

// parseStoreForm reads and validates the form and stores the photo. It returns
// false after flashing the problems when the submission was invalid.
func (h *StoreHandler) parseStoreForm(c *fiber.Ctx) (services.StoreInput, bool, error) {
	var form StoreForm
	if err := c.BodyParser(&form); err != nil {
		return services.StoreInput{}, false, fiber.NewError(fiber.StatusBadRequest, "Invalid form submission")
	}
	form.trim()
	if errs := formErrors(h.validate, form, storeMessages); len(errs) > 0 {
		h.view.Flash(c, web.FlashError, errs...)
		return services.StoreInput{}, false, nil
	}

	photo, err := h.storePhoto(c)
	if err != nil {
		var rejected *uploads.RejectedError
		if errors.As(err, &rejected) {
			h.view.Flash(c, web.FlashError, rejected.Error())
			return services.StoreInput{}, false, nil
		}
		return services.StoreInput{}, false, err
	}

	lng, _ := strconv.ParseFloat(form.Lng, 64)
	lat, _ := strconv.ParseFloat(form.Lat, 64)
	return services.StoreInput{
		Name:        form.Name,
		Description: form.Description,
		Tags:        form.Tags,
		Address:     form.Address,
		Lng:         lng,
		Lat:         lat,
		Photo:       photo,
	}, true, nil
}

func (f *StoreForm) trim() {
	f.Name = strings.TrimSpace(f.Name)
	f.Description = strings.TrimSpace(f.Description)
	f.Address = strings.TrimSpace(f.Address)
	f.Lng = strings.TrimSpace(f.Lng)
	f.Lat = strings.TrimSpace(f.Lat)
}

// discardPhoto removes a photo stored for a submission that was not saved.
func (h *StoreHandler) discardPhoto(name string) {
	if err := h.uploads.Remove(name); err != nil {
		h.view.logger.Warn("failed to remove unsaved photo", zap.String("photo", name), zap.Error(err))
	}
}

func (h *StoreHandler) storePhoto(c *fiber.Ctx) (string, error) {
	form, err := c.MultipartForm()
	if err != nil {
		// Not a multipart submission, so there is no photo.
		return "", nil
	}
	files := form.File["photo"]
	if len(files) == 0 {
		return "", nil
	}
	return h.uploads.Process(files[0])
}

// HandleShow renders a store with its reviews.
func (h *StoreHandler) HandleShow(c *fiber.Ctx) error {
	store, err := h.stores.GetStoreBySlug(c.UserContext(), c.Params("slug"))
	if errors.Is(err, repositories.ErrNotFound) {
		return h.view.Redirect(c, "/stores", web.FlashInfo, "Sorry, we couldn't find that store.")
	}
	if err != nil {
		return err
	}
	return h.view.Render(c, "store", fiber.Map{
		"Title": store.Name,
		"Store": store,
	})
}

// HandleTags renders the tag histogram and the stores carrying the selected tag.
func (h *StoreHandler) HandleTags(c *fiber.Ctx) error {
	tag := c.Params("tag")
	tags, stores, err := h.stores.StoresByTag(c.UserContext(), tag)
	if err != nil {
		return err
	}
	return h.view.Render(c, "tag", fiber.Map{
		"Title":  "Tags",
		"Tag":    tag,
		"Tags":   tags,
		"Stores": stores,
	})
}

// HandleMap renders the map page; markers are loaded from the near API.
func (h *StoreHandler) HandleMap(c *fiber.Ctx) error {
	return h.view.Render(c, "map", fiber.Map{"Title": "Map"})
}

// HandleHearts renders the stores the user has hearted.
func (h *StoreHandler) HandleHearts(c *fiber.Ctx) error {
	stores, err := h.stores.HeartedStores(c.UserContext(), web.CurrentUser(c))
	if err != nil {
		return err
	}
	return h.view.Render(c, "stores", fiber.Map{
		"Title":  "Hearted Stores",
		"Stores": stores,
	})
}

// HandleTop renders the best rated stores.
func (h *StoreHandler) HandleTop(c *fiber.Ctx) error {
	stores, err := h.stores.TopStores(c.UserContext())
	if err != nil {
		return err
	}
	return h.view.Render(c, "top_stores", fiber.Map{
		"Title":  "Top Stores!",
		"Stores": stores,
	})
}

