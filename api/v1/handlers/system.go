package handlers

import (
	"bytes"
	"crypto/subtle"
	"runtime"
	"runtime/pprof"

	"murphy/internal/apperr"
	"murphy/internal/models"
	"murphy/internal/store"

	"github.com/gofiber/fiber/v2"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

type SystemHandle struct {
	store LawStore
	key   string
}

func RegisterSystem(system fiber.Router, d Deps) {
	handler := SystemHandle{store: d.Store, key: d.SystemKey}

	system.Use(handler.Verify)

	system.Get("/info", handler.GetServerInfo)
	system.Post("/clean", handler.TriggerGC)
	system.Post("/stack", handler.GetStackInfo)

	system.Get("/laws/review", handler.ReviewQueue)
	system.Post("/laws/:id/publish", handler.Moderate(models.LawStatusPublished))
	system.Post("/laws/:id/reject", handler.Moderate(models.LawStatusRejected))
}

// GetServerInfo 获取服务器信息
func (s *SystemHandle) GetServerInfo(ctx *fiber.Ctx) error {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	serverInfo := map[string]interface{}{
		"go_version":  runtime.Version(),
		"cpu_num":     runtime.NumCPU(),
		"goroutines":  runtime.NumGoroutine(),
		"mem_alloc":   m.Alloc,
		"heap_alloc":  m.HeapAlloc,
		"total_alloc": m.TotalAlloc,
		"sys":         m.Sys,
	}

	return ctx.JSON(fiber.Map{
		"code": "200",
		"data": serverInfo,
	})
}

// TriggerGC 垃圾主动回收
func (s *SystemHandle) TriggerGC(ctx *fiber.Ctx) error {
	runtime.GC()

	return ctx.JSON(fiber.Map{
		"code":    "200",
		"message": "ok",
	})
}

// GetStackInfo 获取堆栈信息
func (s *SystemHandle) GetStackInfo(ctx *fiber.Ctx) error {
	var buf bytes.Buffer
	if err := pprof.Lookup("goroutine").WriteTo(&buf, 1); err != nil {
		return err
	}

	return ctx.JSON(fiber.Map{
		"code": "200",
		"data": buf.String(),
	})
}

// ReviewQueue 待审核列表
func (s *SystemHandle) ReviewQueue(ctx *fiber.Ctx) error {
	limit, err := queryInt(ctx, "limit", maxPageSize, 1, 500)
	if err != nil {
		return err
	}
	laws, err := s.store.ListReviewQueue(ctx.UserContext(), limit)
	if err != nil {
		return apperr.Persistence(err, "Failed to load review queue")
	}
	return ctx.JSON(fiber.Map{"data": viewsOf(laws)})
}

// Moderate 审核通过 / 拒绝
func (s *SystemHandle) Moderate(status models.LawStatus) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		id, err := lawID(ctx)
		if err != nil {
			return err
		}
		law, err := s.store.SetStatus(ctx.UserContext(), id, status)
		if errors.Is(err, store.ErrNotFound) {
			return apperr.NotFound("Law not found")
		}
		if err != nil {
			return apperr.Persistence(err, "Failed to update law")
		}
		log.Info().Int64("law_id", id).Str("status", string(status)).Msg("law moderated")
		return ctx.JSON(viewOf(law))
	}
}

// Verify 顶针身份
func (s *SystemHandle) Verify(c *fiber.Ctx) error {
	if s.key == "" {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "APP_SYSTEM_KEY is not set",
		})
	}

	requestKey := c.Query("key")
	if requestKey == "" || subtle.ConstantTimeCompare([]byte(requestKey), []byte(s.key)) != 1 {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "invalid key",
		})
	}

	return c.Next()
}

type HealthHandle struct {
	store LawStore
}

func RegisterHealth(router fiber.Router, d Deps) {
	handler := HealthHandle{store: d.Store}

	router.Get("/health", handler.Check)
}

func (h *HealthHandle) Check(c *fiber.Ctx) error {
	if err := h.store.Ping(c.UserContext()); err != nil {
		log.Error().Err(err).Msg("health check failed")
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "unavailable"})
	}
	return c.JSON(fiber.Map{"status": "ok"})
}
