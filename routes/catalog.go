package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/meinhoongagan/clinic-app/controllers"
	"github.com/meinhoongagan/clinic-app/middleware"
	"github.com/meinhoongagan/clinic-app/models"
)

func SetupCatalogRoutes(app *fiber.App, h *controllers.Controller, auth fiber.Handler) {
	spec := func(action models.Action) fiber.Handler {
		return middleware.RequirePermission(models.ResourceSpecialties, action)
	}
	specialties := app.Group("/specialties", auth)
	specialties.Get("/", spec(models.ActionList), h.ListSpecialties)
	specialties.Post("/", spec(models.ActionCreate), h.CreateSpecialty)
	specialties.Put("/:id", spec(models.ActionUpdate), h.UpdateSpecialty)
	specialties.Delete("/:id", spec(models.ActionDelete), h.DeleteSpecialty)

	fee := func(action models.Action) fiber.Handler {
		return middleware.RequirePermission(models.ResourceExaminationFees, action)
	}
	fees := app.Group("/examination-fees", auth)
	fees.Get("/", fee(models.ActionList), h.ListExaminationFees)
	fees.Post("/", fee(models.ActionCreate), h.CreateExaminationFee)
	fees.Put("/:id", fee(models.ActionUpdate), h.UpdateExaminationFee)
	fees.Delete("/:id", fee(models.ActionDelete), h.DeleteExaminationFee)
}
