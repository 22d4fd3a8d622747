package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/meinhoongagan/clinic-app/controllers"
)

// Setup mounts every route group. auth is the bearer-token middleware.
func Setup(app *fiber.App, h *controllers.Controller, auth fiber.Handler) {
	app.Get("/", func(c *fiber.Ctx) error {
		return c.SendString("Clinic API")
	})

	SetupAuthRoutes(app, h, auth)
	SetupAppointmentRoutes(app, h, auth)
	SetupMedicalRecordRoutes(app, h, auth)
	SetupInventoryRoutes(app, h, auth)
	SetupCatalogRoutes(app, h, auth)
	SetupStaffRoutes(app, h, auth)
	SetupReportRoutes(app, h, auth)
}
