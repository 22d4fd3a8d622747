package controllers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/meinhoongagan/clinic-app/services"
	"github.com/meinhoongagan/clinic-app/utils"
)

func (h *Controller) ListMedicines(c *fiber.Ctx) error {
	list, err := h.svc.Inventory.ListMedicines(c.UserContext(), activeOnly(c))
	if err != nil {
		return utils.SendError(c, err)
	}
	return utils.SendData(c, fiber.StatusOK, "", list)
}

// LowStockMedicines lists active medicines at or below ?threshold= (default 10).
func (h *Controller) LowStockMedicines(c *fiber.Ctx) error {
	threshold := c.QueryInt("threshold", services.DefaultLowStockThreshold)
	list, err := h.svc.Inventory.LowStock(c.UserContext(), threshold)
	if err != nil {
		return utils.SendError(c, err)
	}
	return utils.SendData(c, fiber.StatusOK, "", list)
}

func (h *Controller) GetMedicine(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return utils.SendError(c, err)
	}
	m, err := h.svc.Inventory.GetMedicine(c.UserContext(), id)
	if err != nil {
		return utils.SendError(c, err)
	}
	return utils.SendData(c, fiber.StatusOK, "", m)
}

func (h *Controller) CreateMedicine(c *fiber.Ctx) error {
	var in services.MedicineInput
	if err := parseBody(c, &in); err != nil {
		return utils.SendError(c, err)
	}
	m, err := h.svc.Inventory.CreateMedicine(c.UserContext(), in)
	if err != nil {
		return utils.SendError(c, err)
	}
	return utils.SendData(c, fiber.StatusCreated, "Thêm thuốc thành công", m)
}

func (h *Controller) UpdateMedicine(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return utils.SendError(c, err)
	}
	var in services.MedicinePatch
	if err := parseBody(c, &in); err != nil {
		return utils.SendError(c, err)
	}
	m, err := h.svc.Inventory.UpdateMedicine(c.UserContext(), id, in)
	if err != nil {
		return utils.SendError(c, err)
	}
	return utils.SendData(c, fiber.StatusOK, "Cập nhật thuốc thành công", m)
}

func (h *Controller) DeleteMedicine(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return utils.SendError(c, err)
	}
	m, err := h.svc.Inventory.DeactivateMedicine(c.UserContext(), id)
	if err != nil {
		return utils.SendError(c, err)
	}
	return utils.SendData(c, fiber.StatusOK, "Đã ngừng kinh doanh thuốc", m)
}

func (h *Controller) RestockMedicine(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return utils.SendError(c, err)
	}
	var in struct {
		Quantity int `json:"quantity"`
	}
	if err := parseBody(c, &in); err != nil {
		return utils.SendError(c, err)
	}
	m, err := h.svc.Inventory.Restock(c.UserContext(), id, in.Quantity)
	if err != nil {
		return utils.SendError(c, err)
	}
	return utils.SendData(c, fiber.StatusOK, "Nhập kho thành công", m)
}

func (h *Controller) ListSuppliers(c *fiber.Ctx) error {
	list, err := h.svc.Inventory.ListSuppliers(c.UserContext(), activeOnly(c))
	if err != nil {
		return utils.SendError(c, err)
	}
	return utils.SendData(c, fiber.StatusOK, "", list)
}

func (h *Controller) GetSupplier(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return utils.SendError(c, err)
	}
	s, err := h.svc.Inventory.GetSupplier(c.UserContext(), id)
	if err != nil {
		return utils.SendError(c, err)
	}
	return utils.SendData(c, fiber.StatusOK, "", s)
}

func (h *Controller) CreateSupplier(c *fiber.Ctx) error {
	var in services.SupplierInput
	if err := parseBody(c, &in); err != nil {
		return utils.SendError(c, err)
	}
	s, err := h.svc.Inventory.CreateSupplier(c.UserContext(), in)
	if err != nil {
		return utils.SendError(c, err)
	}
	return utils.SendData(c, fiber.StatusCreated, "Thêm nhà cung cấp thành công", s)
}

// UpdateSupplier reports how many medicines were switched off when the supplier was deactivated.
func (h *Controller) UpdateSupplier(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return utils.SendError(c, err)
	}
	var in services.SupplierPatch
	if err := parseBody(c, &in); err != nil {
		return utils.SendError(c, err)
	}
	s, n, err := h.svc.Inventory.UpdateSupplier(c.UserContext(), id, in)
	if err != nil {
		return utils.SendError(c, err)
	}
	return utils.SendData(c, fiber.StatusOK, "Cập nhật nhà cung cấp thành công", fiber.Map{
		"supplier":              s,
		"medicines_deactivated": n,
	})
}

func (h *Controller) DeleteSupplier(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return utils.SendError(c, err)
	}
	s, n, err := h.svc.Inventory.DeactivateSupplier(c.UserContext(), id)
	if err != nil {
		return utils.SendError(c, err)
	}
	return utils.SendData(c, fiber.StatusOK, "Đã ngừng hợp tác với nhà cung cấp", fiber.Map{
		"supplier":              s,
		"medicines_deactivated": n,
	})
}
