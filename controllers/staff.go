package controllers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/meinhoongagan/clinic-app/middleware"
	"github.com/meinhoongagan/clinic-app/services"
	"github.com/meinhoongagan/clinic-app/utils"
)

type employmentInput struct {
	EmploymentStatus *bool `json:"employment_status"`
}

func (in employmentInput) value() (bool, error) {
	if in.EmploymentStatus == nil {
		return false, utils.Validation("Vui lòng cung cấp trạng thái làm việc")
	}
	return *in.EmploymentStatus, nil
}

// ListDoctors returns all doctors, or only bookable ones with ?bookable=true.
func (h *Controller) ListDoctors(c *fiber.Ctx) error {
	list, err := h.svc.Accounts.ListDoctors(c.UserContext(), c.QueryBool("bookable", false))
	if err != nil {
		return utils.SendError(c, err)
	}
	return utils.SendData(c, fiber.StatusOK, "", list)
}

func (h *Controller) GetDoctor(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return utils.SendError(c, err)
	}
	d, err := h.svc.Accounts.GetDoctor(c.UserContext(), id)
	if err != nil {
		return utils.SendError(c, err)
	}
	return utils.SendData(c, fiber.StatusOK, "", d)
}

func (h *Controller) CreateDoctor(c *fiber.Ctx) error {
	var in services.DoctorInput
	if err := parseBody(c, &in); err != nil {
		return utils.SendError(c, err)
	}
	d, err := h.svc.Accounts.CreateDoctor(c.UserContext(), in)
	if err != nil {
		return utils.SendError(c, err)
	}
	return utils.SendData(c, fiber.StatusCreated, "Thêm bác sĩ thành công", d)
}

func (h *Controller) UpdateDoctor(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return utils.SendError(c, err)
	}
	var in services.DoctorPatch
	if err := parseBody(c, &in); err != nil {
		return utils.SendError(c, err)
	}
	d, err := h.svc.Accounts.UpdateDoctor(c.UserContext(), id, in)
	if err != nil {
		return utils.SendError(c, err)
	}
	return utils.SendData(c, fiber.StatusOK, "Cập nhật bác sĩ thành công", d)
}

func (h *Controller) SetDoctorEmployment(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return utils.SendError(c, err)
	}
	var in employmentInput
	if err := parseBody(c, &in); err != nil {
		return utils.SendError(c, err)
	}
	employed, err := in.value()
	if err != nil {
		return utils.SendError(c, err)
	}
	d, err := h.svc.Accounts.SetDoctorEmployment(c.UserContext(), id, employed)
	if err != nil {
		return utils.SendError(c, err)
	}
	return utils.SendData(c, fiber.StatusOK, "Cập nhật trạng thái làm việc thành công", d)
}

func (h *Controller) CreateReceptionist(c *fiber.Ctx) error {
	var in services.ProfileInput
	if err := parseBody(c, &in); err != nil {
		return utils.SendError(c, err)
	}
	r, err := h.svc.Accounts.CreateReceptionist(c.UserContext(), in)
	if err != nil {
		return utils.SendError(c, err)
	}
	return utils.SendData(c, fiber.StatusCreated, "Thêm lễ tân thành công", r)
}

func (h *Controller) SetReceptionistEmployment(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return utils.SendError(c, err)
	}
	var in employmentInput
	if err := parseBody(c, &in); err != nil {
		return utils.SendError(c, err)
	}
	employed, err := in.value()
	if err != nil {
		return utils.SendError(c, err)
	}
	r, err := h.svc.Accounts.SetReceptionistEmployment(c.UserContext(), id, employed)
	if err != nil {
		return utils.SendError(c, err)
	}
	return utils.SendData(c, fiber.StatusOK, "Cập nhật trạng thái làm việc thành công", r)
}

func (h *Controller) CreateAdmin(c *fiber.Ctx) error {
	var in services.ProfileInput
	if err := parseBody(c, &in); err != nil {
		return utils.SendError(c, err)
	}
	a, err := h.svc.Accounts.CreateAdmin(c.UserContext(), in)
	if err != nil {
		return utils.SendError(c, err)
	}
	return utils.SendData(c, fiber.StatusCreated, "Thêm quản trị viên thành công", a)
}

func (h *Controller) ListPatients(c *fiber.Ctx) error {
	list, err := h.svc.Accounts.ListPatients(c.UserContext())
	if err != nil {
		return utils.SendError(c, err)
	}
	return utils.SendData(c, fiber.StatusOK, "", list)
}

func (h *Controller) GetPatient(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return utils.SendError(c, err)
	}
	p, err := h.svc.Accounts.GetPatient(c.UserContext(), middleware.Actor(c), id)
	if err != nil {
		return utils.SendError(c, err)
	}
	return utils.SendData(c, fiber.StatusOK, "", p)
}

func (h *Controller) UpdatePatient(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return utils.SendError(c, err)
	}
	var in services.PatientPatch
	if err := parseBody(c, &in); err != nil {
		return utils.SendError(c, err)
	}
	p, err := h.svc.Accounts.UpdatePatient(c.UserContext(), middleware.Actor(c), id, in)
	if err != nil {
		return utils.SendError(c, err)
	}
	return utils.SendData(c, fiber.StatusOK, "Cập nhật hồ sơ bệnh nhân thành công", p)
}
