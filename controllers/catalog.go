package controllers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/meinhoongagan/clinic-app/services"
	"github.com/meinhoongagan/clinic-app/utils"
)

// ListSpecialties godoc
// @Summary List specialties
// @Tags specialties
// @Produce json
// @Param active query bool false "Only active specialties"
// @Success 200 {array} models.Specialty
// @Router /specialties [get]
func (h *Controller) ListSpecialties(c *fiber.Ctx) error {
	list, err := h.svc.Catalog.ListSpecialties(c.UserContext(), activeOnly(c))
	if err != nil {
		return utils.SendError(c, err)
	}
	return utils.SendData(c, fiber.StatusOK, "", list)
}

func (h *Controller) CreateSpecialty(c *fiber.Ctx) error {
	var in services.SpecialtyInput
	if err := parseBody(c, &in); err != nil {
		return utils.SendError(c, err)
	}
	s, err := h.svc.Catalog.CreateSpecialty(c.UserContext(), in)
	if err != nil {
		return utils.SendError(c, err)
	}
	return utils.SendData(c, fiber.StatusCreated, "Thêm chuyên khoa thành công", s)
}

func (h *Controller) UpdateSpecialty(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return utils.SendError(c, err)
	}
	var in services.SpecialtyPatch
	if err := parseBody(c, &in); err != nil {
		return utils.SendError(c, err)
	}
	s, err := h.svc.Catalog.UpdateSpecialty(c.UserContext(), id, in)
	if err != nil {
		return utils.SendError(c, err)
	}
	return utils.SendData(c, fiber.StatusOK, "Cập nhật chuyên khoa thành công", s)
}

func (h *Controller) DeleteSpecialty(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return utils.SendError(c, err)
	}
	s, err := h.svc.Catalog.DeactivateSpecialty(c.UserContext(), id)
	if err != nil {
		return utils.SendError(c, err)
	}
	return utils.SendData(c, fiber.StatusOK, "Đã ngừng hoạt động chuyên khoa", s)
}

// ListExaminationFees godoc
// @Summary List examination fees
// @Tags examination-fees
// @Produce json
// @Param active query bool false "Only active fees"
// @Success 200 {array} models.ExaminationFee
// @Router /examination-fees [get]
func (h *Controller) ListExaminationFees(c *fiber.Ctx) error {
	list, err := h.svc.Catalog.ListFees(c.UserContext(), activeOnly(c))
	if err != nil {
		return utils.SendError(c, err)
	}
	return utils.SendData(c, fiber.StatusOK, "", list)
}

func (h *Controller) CreateExaminationFee(c *fiber.Ctx) error {
	var in services.FeeInput
	if err := parseBody(c, &in); err != nil {
		return utils.SendError(c, err)
	}
	f, err := h.svc.Catalog.CreateFee(c.UserContext(), in)
	if err != nil {
		return utils.SendError(c, err)
	}
	return utils.SendData(c, fiber.StatusCreated, "Thêm phí khám thành công", f)
}

func (h *Controller) UpdateExaminationFee(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return utils.SendError(c, err)
	}
	var in services.FeePatch
	if err := parseBody(c, &in); err != nil {
		return utils.SendError(c, err)
	}
	f, err := h.svc.Catalog.UpdateFee(c.UserContext(), id, in)
	if err != nil {
		return utils.SendError(c, err)
	}
	return utils.SendData(c, fiber.StatusOK, "Cập nhật phí khám thành công", f)
}

func (h *Controller) DeleteExaminationFee(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return utils.SendError(c, err)
	}
	f, err := h.svc.Catalog.DeactivateFee(c.UserContext(), id)
	if err != nil {
		return utils.SendError(c, err)
	}
	return utils.SendData(c, fiber.StatusOK, "Đã ngừng áp dụng phí khám", f)
}
