package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/meinhoongagan/clinic-app/controllers"
	"github.com/meinhoongagan/clinic-app/middleware"
	"github.com/meinhoongagan/clinic-app/models"
)

func SetupReportRoutes(app *fiber.App, h *controllers.Controller, auth fiber.Handler) {
	reports := app.Group("/reports", auth, middleware.RequirePermission(models.ResourceReports, models.ActionRead))
	reports.Get("/revenue-detail", h.GetRevenueDetail)
	reports.Get("/revenue-detail/export", h.ExportRevenueDetail)
}
