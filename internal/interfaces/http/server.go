package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jhoicas/umbrella-client/pkg/logger"
)

// ServerDeps lo necesario para armar la app del sandbox.
type ServerDeps struct {
	Name     string
	Logger   *logger.Logger
	Registry *prometheus.Registry // nil = sin /metrics
	Router   RouterDeps
}

// NewApp construye la app Fiber: métricas, log de requests, recover, /health, /metrics y rutas.
func NewApp(deps ServerDeps) *fiber.App {
	log := deps.Logger
	if log == nil {
		log = logger.Nop()
	}
	app := fiber.New(fiber.Config{
		AppName:               deps.Name,
		ReadTimeout:           time.Second * 10,
		WriteTimeout:          time.Second * 10,
		IdleTimeout:           time.Second * 60,
		BodyLimit:             8 << 20,
		ErrorHandler:          ErrorHandler,
		DisableStartupMessage: true,
	})

	if deps.Registry != nil {
		app.Use(NewHTTPMetrics(deps.Registry).Middleware())
	}
	app.Use(RequestLogger(log.Named("http")))
	app.Use(recover.New())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": deps.Name})
	})
	if deps.Registry != nil {
		app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(deps.Registry, promhttp.HandlerOpts{})))
	}

	Router(app, deps.Router)
	return app
}
