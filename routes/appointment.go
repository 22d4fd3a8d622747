package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/meinhoongagan/clinic-app/controllers"
	"github.com/meinhoongagan/clinic-app/middleware"
	"github.com/meinhoongagan/clinic-app/models"
)

// SetupAppointmentRoutes configures all appointment related routes
func SetupAppointmentRoutes(app *fiber.App, h *controllers.Controller, auth fiber.Handler) {
	can := func(action models.Action) fiber.Handler {
		return middleware.RequirePermission(models.ResourceAppointments, action)
	}

	appointment := app.Group("/appointments", auth)
	appointment.Post("/", can(models.ActionCreate), h.CreateAppointment)
	appointment.Get("/", can(models.ActionList), h.GetAllAppointments)
	appointment.Get("/date/:date", can(models.ActionList), h.GetAppointmentsByDate)
	appointment.Get("/patient/:patientId", can(models.ActionRead), h.GetAppointmentsByPatient)
	appointment.Get("/doctor/me", middleware.RequireRole(models.RoleDoctor), h.GetMyDoctorAppointments)
	appointment.Get("/report/income", middleware.RequirePermission(models.ResourceReports, models.ActionRead), h.GetIncomeReport)
	appointment.Get("/:id", can(models.ActionRead), h.GetAppointment)
	appointment.Put("/:id", can(models.ActionUpdate), h.UpdateAppointment)
	appointment.Put("/:id/check-in", can(models.ActionCheckIn), h.CheckInAppointment)
	appointment.Put("/:id/cancel", can(models.ActionCancel), h.CancelAppointment)
	appointment.Put("/:id/complete", can(models.ActionComplete), h.CompleteAppointment)
}
