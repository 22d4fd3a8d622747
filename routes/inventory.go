package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/meinhoongagan/clinic-app/controllers"
	"github.com/meinhoongagan/clinic-app/middleware"
	"github.com/meinhoongagan/clinic-app/models"
)

func SetupInventoryRoutes(app *fiber.App, h *controllers.Controller, auth fiber.Handler) {
	med := func(action models.Action) fiber.Handler {
		return middleware.RequirePermission(models.ResourceMedicines, action)
	}
	medicines := app.Group("/medicines", auth)
	medicines.Get("/", med(models.ActionList), h.ListMedicines)
	medicines.Get("/low-stock", med(models.ActionList), h.LowStockMedicines)
	medicines.Get("/:id", med(models.ActionRead), h.GetMedicine)
	medicines.Post("/", med(models.ActionCreate), h.CreateMedicine)
	medicines.Put("/:id", med(models.ActionUpdate), h.UpdateMedicine)
	medicines.Post("/:id/restock", med(models.ActionUpdate), h.RestockMedicine)
	medicines.Delete("/:id", med(models.ActionDelete), h.DeleteMedicine)

	sup := func(action models.Action) fiber.Handler {
		return middleware.RequirePermission(models.ResourceSuppliers, action)
	}
	suppliers := app.Group("/suppliers", auth)
	suppliers.Get("/", sup(models.ActionList), h.ListSuppliers)
	suppliers.Get("/:id", sup(models.ActionRead), h.GetSupplier)
	suppliers.Post("/", sup(models.ActionCreate), h.CreateSupplier)
	suppliers.Put("/:id", sup(models.ActionUpdate), h.UpdateSupplier)
	suppliers.Delete("/:id", sup(models.ActionDelete), h.DeleteSupplier)
}
