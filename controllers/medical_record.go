package controllers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/meinhoongagan/clinic-app/middleware"
	"github.com/meinhoongagan/clinic-app/services"
	"github.com/meinhoongagan/clinic-app/utils"
)

// CreateMedicalRecord godoc
// @Summary Write the medical record for an appointment
// @Tags medical-records
// @Accept json
// @Produce json
// @Param record body services.CreateRecordInput true "Record"
// @Success 201 {object} models.MedicalRecord
// @Failure 400 {object} utils.ErrorResponse
// @Router /medical-records [post]
func (h *Controller) CreateMedicalRecord(c *fiber.Ctx) error {
	var in services.CreateRecordInput
	if err := parseBody(c, &in); err != nil {
		return utils.SendError(c, err)
	}
	r, err := h.svc.Records.Create(c.UserContext(), middleware.Actor(c), in)
	if err != nil {
		return utils.SendError(c, err)
	}
	return utils.SendData(c, fiber.StatusCreated, "Tạo bệnh án thành công", r)
}

func (h *Controller) UpdateMedicalRecord(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return utils.SendError(c, err)
	}
	var in services.UpdateRecordInput
	if err := parseBody(c, &in); err != nil {
		return utils.SendError(c, err)
	}
	r, err := h.svc.Records.Update(c.UserContext(), middleware.Actor(c), id, in)
	if err != nil {
		return utils.SendError(c, err)
	}
	return utils.SendData(c, fiber.StatusOK, "Cập nhật bệnh án thành công", r)
}

func (h *Controller) GetMedicalRecord(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return utils.SendError(c, err)
	}
	r, err := h.svc.Records.Get(c.UserContext(), middleware.Actor(c), id)
	if err != nil {
		return utils.SendError(c, err)
	}
	return utils.SendData(c, fiber.StatusOK, "", r)
}

func (h *Controller) GetMedicalRecordByAppointment(c *fiber.Ctx) error {
	id, err := paramID(c, "appointmentId")
	if err != nil {
		return utils.SendError(c, err)
	}
	r, err := h.svc.Records.GetByAppointment(c.UserContext(), middleware.Actor(c), id)
	if err != nil {
		return utils.SendError(c, err)
	}
	return utils.SendData(c, fiber.StatusOK, "", r)
}

func (h *Controller) GetMedicalRecordsByPatient(c *fiber.Ctx) error {
	id, err := paramID(c, "patientId")
	if err != nil {
		return utils.SendError(c, err)
	}
	list, err := h.svc.Records.ListByPatient(c.UserContext(), middleware.Actor(c), id)
	if err != nil {
		return utils.SendError(c, err)
	}
	return utils.SendData(c, fiber.StatusOK, "", list)
}

// DispensePrescription godoc
// @Summary Dispense a record's prescription
// @Description Deducts stock for every prescribed line or none of them
// @Tags medical-records
// @Produce json
// @Param id path int true "Medical record ID"
// @Success 200 {object} models.MedicalRecord
// @Failure 400 {object} utils.ErrorResponse "Shortages are listed in details"
// @Router /medical-records/{id}/dispense [post]
func (h *Controller) DispensePrescription(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return utils.SendError(c, err)
	}
	r, err := h.svc.Records.Dispense(c.UserContext(), middleware.Actor(c), id)
	if err != nil {
		return utils.SendError(c, err)
	}
	return utils.SendData(c, fiber.StatusOK, "Phát thuốc thành công", r)
}
