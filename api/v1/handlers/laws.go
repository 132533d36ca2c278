package handlers

import (
	"murphy/internal/apperr"
	"murphy/internal/models"
	"murphy/internal/ranking"
	"murphy/internal/store"

	"github.com/gofiber/fiber/v2"
	"github.com/pkg/errors"
)

type LawHandle struct {
	store LawStore
}

// lawView is a law with its derived score.
type lawView struct {
	*models.Law
	Score int64 `json:"score"`
}

func viewOf(l *models.Law) lawView {
	return lawView{Law: l, Score: l.Score()}
}

func viewsOf(laws []models.Law) []lawView {
	out := make([]lawView, 0, len(laws))
	for i := range laws {
		out = append(out, viewOf(&laws[i]))
	}
	return out
}

func RegisterLaws(laws fiber.Router, d Deps) {
	handler := LawHandle{store: d.Store}

	laws.Get("/", handler.List)
	laws.Get("/:id", handler.Get)
}

// List 分页列出已发布条目
func (h *LawHandle) List(c *fiber.Ctx) error {
	order, ok := ranking.ParseOrder(c.Query("sort"), c.Query("order"))
	if !ok {
		return apperr.InvalidArgument("Invalid sort. Use score, trending or recent with asc or desc")
	}
	limit, err := queryInt(c, "limit", defaultPageSize, 1, maxPageSize)
	if err != nil {
		return err
	}
	offset, err := queryInt(c, "offset", 0, 0, 1<<31-1)
	if err != nil {
		return err
	}
	categoryID, err := queryInt[int64](c, "category_id", 0, 0, 1<<62)
	if err != nil {
		return err
	}

	laws, total, err := h.store.ListLaws(c.UserContext(), store.ListQuery{
		Order:      order,
		Limit:      limit,
		Offset:     offset,
		Search:     c.Query("q"),
		CategoryID: categoryID,
	})
	if err != nil {
		return apperr.Persistence(err, "Failed to load laws")
	}

	return c.JSON(fiber.Map{
		"data":   viewsOf(laws),
		"total":  total,
		"limit":  limit,
		"offset": offset,
	})
}

// Get 获取单条
func (h *LawHandle) Get(c *fiber.Ctx) error {
	id, err := lawID(c)
	if err != nil {
		return err
	}
	law, err := h.store.GetPublishedLaw(c.UserContext(), id)
	if errors.Is(err, store.ErrNotFound) {
		return apperr.NotFound("Law not found")
	}
	if err != nil {
		return apperr.Persistence(err, "Failed to load law")
	}
	return c.JSON(viewOf(law))
}
