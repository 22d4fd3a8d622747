package controllers

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/meinhoongagan/clinic-app/services"
	"github.com/meinhoongagan/clinic-app/utils"
)

// Controller holds the HTTP handlers. Every handler delegates to a service and renders
// the result with utils.SendData or utils.SendError.
type Controller struct {
	svc *services.Services
	log *zap.Logger
}

func New(svc *services.Services, log *zap.Logger) *Controller {
	return &Controller{svc: svc, log: log.Named("http")}
}

func paramID(c *fiber.Ctx, name string) (uint, error) {
	id, err := c.ParamsInt(name)
	if err != nil || id <= 0 {
		return 0, utils.Validation("Mã %s không hợp lệ", c.Params(name))
	}
	return uint(id), nil
}

func parseBody(c *fiber.Ctx, out any) error {
	if err := c.BodyParser(out); err != nil {
		return &utils.AppError{
			Kind:    utils.KindValidation,
			Message: "Không đọc được dữ liệu gửi lên",
			Details: []string{err.Error()},
		}
	}
	return nil
}

func activeOnly(c *fiber.Ctx) bool {
	return c.QueryBool("active", false)
}
