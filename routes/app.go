package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"go.uber.org/zap"

	"github.com/meinhoongagan/clinic-app/controllers"
	"github.com/meinhoongagan/clinic-app/middleware"
)

// NewApp builds the fiber application with the shared middleware stack and all routes.
func NewApp(h *controllers.Controller, log *zap.Logger, auth fiber.Handler) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      "clinic-app",
		ErrorHandler: middleware.ErrorHandler(log),
		BodyLimit:    10 * 1024 * 1024,
	})

	app.Use(requestid.New())
	app.Use(middleware.RequestLogger(log.Named("http")))
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
	}))

	Setup(app, h, auth)
	return app
}
