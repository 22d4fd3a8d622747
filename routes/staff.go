package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/meinhoongagan/clinic-app/controllers"
	"github.com/meinhoongagan/clinic-app/middleware"
	"github.com/meinhoongagan/clinic-app/models"
)

// SetupStaffRoutes covers doctors, receptionists, admins and patient profiles.
func SetupStaffRoutes(app *fiber.App, h *controllers.Controller, auth fiber.Handler) {
	staffCreate := middleware.RequirePermission(models.ResourceStaff, models.ActionCreate)
	staffUpdate := middleware.RequirePermission(models.ResourceStaff, models.ActionUpdate)

	doc := func(action models.Action) fiber.Handler {
		return middleware.RequirePermission(models.ResourceDoctors, action)
	}
	doctors := app.Group("/doctors", auth)
	doctors.Get("/", doc(models.ActionList), h.ListDoctors)
	doctors.Get("/:id", doc(models.ActionRead), h.GetDoctor)
	doctors.Post("/", doc(models.ActionCreate), h.CreateDoctor)
	doctors.Put("/:id", doc(models.ActionUpdate), h.UpdateDoctor)
	doctors.Put("/:id/employment", staffUpdate, h.SetDoctorEmployment)

	receptionists := app.Group("/receptionists", auth)
	receptionists.Post("/", staffCreate, h.CreateReceptionist)
	receptionists.Put("/:id/employment", staffUpdate, h.SetReceptionistEmployment)

	admins := app.Group("/admins", auth)
	admins.Post("/", staffCreate, h.CreateAdmin)

	pat := func(action models.Action) fiber.Handler {
		return middleware.RequirePermission(models.ResourcePatients, action)
	}
	patients := app.Group("/patients", auth)
	patients.Get("/", pat(models.ActionList), h.ListPatients)
	patients.Get("/:id", pat(models.ActionRead), h.GetPatient)
	patients.Put("/:id", pat(models.ActionUpdate), h.UpdatePatient)
}
