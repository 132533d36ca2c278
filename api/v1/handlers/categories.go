package handlers

import (
	"murphy/internal/apperr"

	"github.com/gofiber/fiber/v2"
)

type CategoryHandle struct {
	store LawStore
}

func RegisterCategories(categories fiber.Router, d Deps) {
	handler := CategoryHandle{store: d.Store}

	categories.Get("/", handler.List)
}

func (h *CategoryHandle) List(c *fiber.Ctx) error {
	cats, err := h.store.ListCategories(c.UserContext())
	if err != nil {
		return apperr.Persistence(err, "Failed to load categories")
	}
	return c.JSON(fiber.Map{"data": cats})
}
