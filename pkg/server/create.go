package server

import (
	"strconv"
	"time"

	"murphy/internal/apperr"

	"github.com/goccy/go-json"
	"github.com/gofiber/contrib/fiberzerolog"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/rs/zerolog/log"
)

type Options struct {
	AllowOrigins string
	// AccessLog turns on fiberzerolog; tests leave it off.
	AccessLog bool
}

func NewFiber(opts Options) *fiber.App {
	app := fiber.New(fiber.Config{
		JSONEncoder:  json.Marshal,
		JSONDecoder:  json.Unmarshal,
		Network:      "tcp4",
		ServerHeader: "Murphy",
		ErrorHandler: ErrorHandler,
		//Prefork:      true,
	})

	app.Use(recover.New())

	if opts.AccessLog {
		app.Use(fiberzerolog.New(fiberzerolog.Config{
			Logger: &log.Logger,
		}))
	}

	origins := opts.AllowOrigins
	if origins == "" {
		origins = "*"
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowCredentials: false,
		AllowMethods:     "GET, POST, DELETE, PUT, OPTIONS",
		AllowHeaders:     "authorization, content-type, access-control-allow-origin, origin, x-request-id, x-device-id",
		ExposeHeaders:    "Retry-After",
		MaxAge:           864000,
	}))

	return app
}

// ErrorHandler turns returned errors into {"error": "..."} responses.
func ErrorHandler(c *fiber.Ctx, err error) error {
	if fe, ok := err.(*fiber.Error); ok {
		return c.Status(fe.Code).JSON(fiber.Map{"error": fe.Message})
	}

	e, ok := apperr.From(err)
	if !ok {
		log.Error().Stack().Err(err).Str("path", c.Path()).Msg("unhandled error")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Internal server error"})
	}

	switch e.Kind {
	case apperr.KindInvalidArgument:
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": e.Message})
	case apperr.KindNotFound:
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": e.Message})
	case apperr.KindRateLimited:
		c.Set(fiber.HeaderRetryAfter, strconv.Itoa(apperr.RetryAfter(e.ResetTime, time.Now())))
		return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
			"error":      e.Message,
			"reset_time": e.ResetTime.UTC().Format(time.RFC3339),
		})
	default:
		log.Error().Stack().Err(err).Str("path", c.Path()).Msg("request failed")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": e.Message})
	}
}
