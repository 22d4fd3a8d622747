package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/meinhoongagan/clinic-app/controllers"
	"github.com/meinhoongagan/clinic-app/middleware"
	"github.com/meinhoongagan/clinic-app/models"
)

func SetupMedicalRecordRoutes(app *fiber.App, h *controllers.Controller, auth fiber.Handler) {
	can := func(action models.Action) fiber.Handler {
		return middleware.RequirePermission(models.ResourceMedicalRecords, action)
	}

	records := app.Group("/medical-records", auth)
	records.Post("/", can(models.ActionCreate), h.CreateMedicalRecord)
	records.Get("/appointment/:appointmentId", can(models.ActionRead), h.GetMedicalRecordByAppointment)
	records.Get("/patient/:patientId", can(models.ActionRead), h.GetMedicalRecordsByPatient)
	records.Get("/:id", can(models.ActionRead), h.GetMedicalRecord)
	records.Put("/:id", can(models.ActionUpdate), h.UpdateMedicalRecord)
	records.Post("/:id/dispense", can(models.ActionDispense), h.DispensePrescription)
}
