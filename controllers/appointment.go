package controllers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/meinhoongagan/clinic-app/middleware"
	"github.com/meinhoongagan/clinic-app/services"
	"github.com/meinhoongagan/clinic-app/utils"
)

// GetAllAppointments godoc
// @Summary Get all appointments
// @Description Lists every appointment after bringing overdue ones up to date
// @Tags appointments
// @Produce json
// @Success 200 {array} models.Appointment
// @Failure 500 {object} utils.ErrorResponse
// @Router /appointments [get]
func (h *Controller) GetAllAppointments(c *fiber.Ctx) error {
	list, err := h.svc.Appointments.List(c.UserContext())
	if err != nil {
		return utils.SendError(c, err)
	}
	return utils.SendData(c, fiber.StatusOK, "", list)
}

// GetAppointmentsByDate godoc
// @Summary Get appointments on a calendar date
// @Tags appointments
// @Produce json
// @Param date path string true "Date (YYYY-MM-DD)"
// @Success 200 {array} models.Appointment
// @Failure 400 {object} utils.ErrorResponse
// @Router /appointments/date/{date} [get]
func (h *Controller) GetAppointmentsByDate(c *fiber.Ctx) error {
	list, err := h.svc.Appointments.ListByDate(c.UserContext(), c.Params("date"))
	if err != nil {
		return utils.SendError(c, err)
	}
	return utils.SendData(c, fiber.StatusOK, "", list)
}

// GetAppointmentsByPatient godoc
// @Summary Get a patient's appointments
// @Tags appointments
// @Produce json
// @Param patientId path int true "Patient ID"
// @Success 200 {array} models.Appointment
// @Failure 403 {object} utils.ErrorResponse
// @Router /appointments/patient/{patientId} [get]
func (h *Controller) GetAppointmentsByPatient(c *fiber.Ctx) error {
	patientID, err := paramID(c, "patientId")
	if err != nil {
		return utils.SendError(c, err)
	}
	list, err := h.svc.Appointments.ListByPatient(c.UserContext(), middleware.Actor(c), patientID)
	if err != nil {
		return utils.SendError(c, err)
	}
	return utils.SendData(c, fiber.StatusOK, "", list)
}

func (h *Controller) GetMyDoctorAppointments(c *fiber.Ctx) error {
	list, err := h.svc.Appointments.ListForDoctor(c.UserContext(), middleware.Actor(c))
	if err != nil {
		return utils.SendError(c, err)
	}
	return utils.SendData(c, fiber.StatusOK, "", list)
}

// GetAppointment godoc
// @Summary Get an appointment by ID
// @Tags appointments
// @Produce json
// @Param id path int true "Appointment ID"
// @Success 200 {object} models.Appointment
// @Failure 404 {object} utils.ErrorResponse
// @Router /appointments/{id} [get]
func (h *Controller) GetAppointment(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return utils.SendError(c, err)
	}
	a, err := h.svc.Appointments.Get(c.UserContext(), id)
	if err != nil {
		return utils.SendError(c, err)
	}
	return utils.SendData(c, fiber.StatusOK, "", a)
}

// CreateAppointment godoc
// @Summary Book an appointment
// @Description Patients book for themselves; front desk books for any patient
// @Tags appointments
// @Accept json
// @Produce json
// @Param appointment body services.CreateAppointmentInput true "Appointment"
// @Success 201 {object} models.Appointment
// @Failure 400 {object} utils.ErrorResponse
// @Failure 404 {object} utils.ErrorResponse
// @Router /appointments [post]
func (h *Controller) CreateAppointment(c *fiber.Ctx) error {
	var in services.CreateAppointmentInput
	if err := parseBody(c, &in); err != nil {
		return utils.SendError(c, err)
	}
	a, err := h.svc.Appointments.Create(c.UserContext(), middleware.Actor(c), in)
	if err != nil {
		return utils.SendError(c, err)
	}
	return utils.SendData(c, fiber.StatusCreated, "Đặt lịch hẹn thành công", a)
}

// UpdateAppointment godoc
// @Summary Update an appointment
// @Tags appointments
// @Accept json
// @Produce json
// @Param id path int true "Appointment ID"
// @Param appointment body services.UpdateAppointmentInput true "Changes"
// @Success 200 {object} models.Appointment
// @Failure 400 {object} utils.ErrorResponse
// @Failure 403 {object} utils.ErrorResponse
// @Router /appointments/{id} [put]
func (h *Controller) UpdateAppointment(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return utils.SendError(c, err)
	}
	var in services.UpdateAppointmentInput
	if err := parseBody(c, &in); err != nil {
		return utils.SendError(c, err)
	}
	a, err := h.svc.Appointments.Update(c.UserContext(), middleware.Actor(c), id, in)
	if err != nil {
		return utils.SendError(c, err)
	}
	return utils.SendData(c, fiber.StatusOK, "Cập nhật lịch hẹn thành công", a)
}

func (h *Controller) CheckInAppointment(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return utils.SendError(c, err)
	}
	var in struct {
		ExaminationFeeID *uint `json:"examination_fee_id"`
	}
	if len(c.Body()) > 0 {
		if err := parseBody(c, &in); err != nil {
			return utils.SendError(c, err)
		}
	}
	a, err := h.svc.Appointments.CheckIn(c.UserContext(), middleware.Actor(c), id, in.ExaminationFeeID)
	if err != nil {
		return utils.SendError(c, err)
	}
	return utils.SendData(c, fiber.StatusOK, "Tiếp nhận bệnh nhân thành công", a)
}

// CancelAppointment godoc
// @Summary Cancel an appointment
// @Description Patients must cancel at least 12 hours ahead
// @Tags appointments
// @Accept json
// @Produce json
// @Param id path int true "Appointment ID"
// @Success 200 {object} models.Appointment
// @Failure 400 {object} utils.ErrorResponse
// @Router /appointments/{id}/cancel [put]
func (h *Controller) CancelAppointment(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return utils.SendError(c, err)
	}
	var in struct {
		Reason string `json:"reason"`
	}
	if len(c.Body()) > 0 {
		if err := parseBody(c, &in); err != nil {
			return utils.SendError(c, err)
		}
	}
	a, err := h.svc.Appointments.Cancel(c.UserContext(), middleware.Actor(c), id, in.Reason)
	if err != nil {
		return utils.SendError(c, err)
	}
	return utils.SendData(c, fiber.StatusOK, "Hủy lịch hẹn thành công", a)
}

func (h *Controller) CompleteAppointment(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return utils.SendError(c, err)
	}
	var in struct {
		Notes string `json:"notes"`
	}
	if len(c.Body()) > 0 {
		if err := parseBody(c, &in); err != nil {
			return utils.SendError(c, err)
		}
	}
	a, err := h.svc.Appointments.Complete(c.UserContext(), middleware.Actor(c), id, in.Notes)
	if err != nil {
		return utils.SendError(c, err)
	}
	return utils.SendData(c, fiber.StatusOK, "Hoàn thành lịch hẹn", a)
}
