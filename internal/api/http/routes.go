package httpapi

import (
	"context"
	"errors"
	"log"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/i474232898/cityweather/internal/screen"
	"github.com/i474232898/cityweather/internal/store"
	"github.com/i474232898/cityweather/internal/weather"
)

var validate = validator.New()

// Deps are the collaborators the HTTP handlers need.
type Deps struct {
	Service *weather.Service
	Screens *store.MemoryStore
	Icons   screen.IconLoader

	// BaseContext bounds the lifetime of every screen's run loop.
	BaseContext context.Context
}

// RegisterRoutes wires the HTTP handlers into the Fiber app.
func RegisterRoutes(app *fiber.App, deps Deps) {
	if deps.BaseContext == nil {
		deps.BaseContext = context.Background()
	}
	h := &handlers{deps: deps}

	v1 := app.Group("/api/v1")

	v1.Get("/weather", h.currentWeather)

	v1.Post("/screens", h.createScreen)
	v1.Get("/screens/:id", h.getScreen)
	v1.Post("/screens/:id/query", h.submitQuery)
	v1.Get("/screens/:id/icon", h.screenIcon)
	v1.Delete("/screens/:id", h.deleteScreen)
}

type handlers struct {
	deps Deps
}

// weatherQuery holds query parameters for the one-shot weather endpoint.
// A blank city means the default city.
type weatherQuery struct {
	City string `validate:"max=100"`
}

// queryRequest is the body of a screen query submission.
type queryRequest struct {
	Query string `json:"query" validate:"max=100"`
}

func (h *handlers) currentWeather(c *fiber.Ctx) error {
	q := weatherQuery{City: c.Query("city")}
	if err := validate.Struct(q); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	report, err := h.deps.Service.Fetch(c.UserContext(), q.City)
	if err != nil {
		if errors.Is(err, weather.ErrFetch) {
			return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
				"error":   true,
				"kind":    weather.KindOf(err),
				"message": err.Error(),
			})
		}
		return fiber.NewError(fiber.StatusInternalServerError, "weather provider is not available")
	}

	return c.JSON(fiber.Map{
		"report":  report,
		"display": weather.Render(report),
	})
}

func (h *handlers) createScreen(c *fiber.Ctx) error {
	sc := screen.New(uuid.NewString(), h.deps.Service, h.deps.Icons, screen.Options{
		DefaultCity: h.deps.Service.DefaultCity(),
	})
	if err := h.deps.Screens.Save(sc); err != nil {
		if errors.Is(err, store.ErrFull) {
			return fiber.NewError(fiber.StatusServiceUnavailable, err.Error())
		}
		return fiber.NewError(fiber.StatusInternalServerError, "failed to open screen")
	}

	go sc.Run(h.deps.BaseContext)

	// A new screen starts out showing the default city.
	if _, err := sc.Submit(c.UserContext(), ""); err != nil {
		log.Printf("ERROR: screen %s: initial query failed: %v", sc.ID(), err)
		_, _ = h.deps.Screens.Delete(sc.ID())
		sc.Close()
		return fiber.NewError(fiber.StatusInternalServerError, "failed to open screen")
	}

	log.Printf("INFO: opened screen %s", sc.ID())
	return c.Status(fiber.StatusCreated).JSON(sc.View())
}

func (h *handlers) getScreen(c *fiber.Ctx) error {
	sc, err := h.lookup(c)
	if err != nil {
		return err
	}
	return c.JSON(sc.View())
}

func (h *handlers) submitQuery(c *fiber.Ctx) error {
	sc, err := h.lookup(c)
	if err != nil {
		return err
	}

	var req queryRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if err := validate.Struct(req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	gen, err := sc.Submit(c.UserContext(), req.Query)
	if err != nil {
		if errors.Is(err, screen.ErrClosed) {
			return fiber.NewError(fiber.StatusGone, "screen is closed")
		}
		return fiber.NewError(fiber.StatusInternalServerError, "failed to submit query")
	}

	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{
		"id":         sc.ID(),
		"generation": gen,
	})
}

func (h *handlers) screenIcon(c *fiber.Ctx) error {
	sc, err := h.lookup(c)
	if err != nil {
		return err
	}

	_, data, ok := sc.Icon()
	if !ok {
		return fiber.NewError(fiber.StatusNotFound, "no icon loaded yet")
	}
	c.Set(fiber.HeaderContentType, "image/png")
	return c.Send(data)
}

func (h *handlers) deleteScreen(c *fiber.Ctx) error {
	if err := validate.Var(c.Params("id"), "required,uuid"); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid screen id")
	}

	sc, err := h.deps.Screens.Delete(c.Params("id"))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return fiber.NewError(fiber.StatusNotFound, err.Error())
		}
		return fiber.NewError(fiber.StatusInternalServerError, "failed to close screen")
	}
	sc.Close()

	log.Printf("INFO: closed screen %s", sc.ID())
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *handlers) lookup(c *fiber.Ctx) (*screen.Screen, error) {
	id := c.Params("id")
	if err := validate.Var(id, "required,uuid"); err != nil {
		return nil, fiber.NewError(fiber.StatusBadRequest, "invalid screen id")
	}

	sc, err := h.deps.Screens.Get(id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, fiber.NewError(fiber.StatusNotFound, err.Error())
		}
		return nil, fiber.NewError(fiber.StatusInternalServerError, "failed to load screen")
	}
	return sc, nil
}
