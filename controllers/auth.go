package controllers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/meinhoongagan/clinic-app/middleware"
	"github.com/meinhoongagan/clinic-app/services"
	"github.com/meinhoongagan/clinic-app/utils"
)

// Register godoc
// @Summary Register a patient account
// @Tags auth
// @Accept json
// @Produce json
// @Param body body services.ProfileInput true "Profile"
// @Success 201 {object} models.Patient
// @Failure 400 {object} utils.ErrorResponse
// @Router /auth/register [post]
func (h *Controller) Register(c *fiber.Ctx) error {
	var in services.ProfileInput
	if err := parseBody(c, &in); err != nil {
		return utils.SendError(c, err)
	}
	patient, err := h.svc.Accounts.Register(c.UserContext(), in)
	if err != nil {
		return utils.SendError(c, err)
	}
	return utils.SendData(c, fiber.StatusCreated, "Đăng ký thành công", patient)
}

// Login godoc
// @Summary Exchange credentials for a bearer token
// @Tags auth
// @Accept json
// @Produce json
// @Success 200 {object} services.Session
// @Failure 401 {object} utils.ErrorResponse
// @Router /auth/login [post]
func (h *Controller) Login(c *fiber.Ctx) error {
	type LoginInput struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}

	var in LoginInput
	if err := parseBody(c, &in); err != nil {
		return utils.SendError(c, err)
	}
	session, err := h.svc.Accounts.Login(c.UserContext(), in.Username, in.Password)
	if err != nil {
		return utils.SendError(c, err)
	}
	return utils.SendData(c, fiber.StatusOK, "Đăng nhập thành công", session)
}

// Logout revokes the token used for this request.
func (h *Controller) Logout(c *fiber.Ctx) error {
	jti, exp := middleware.Token(c)
	if err := h.svc.Accounts.Logout(c.UserContext(), jti, exp); err != nil {
		return utils.SendError(c, err)
	}
	return utils.SendData(c, fiber.StatusOK, "Đăng xuất thành công", nil)
}

func (h *Controller) Me(c *fiber.Ctx) error {
	u, err := h.svc.Accounts.Me(c.UserContext(), middleware.Actor(c).UserID)
	if err != nil {
		return utils.SendError(c, err)
	}
	return utils.SendData(c, fiber.StatusOK, "", u)
}

// UploadAvatar expects a multipart form with an "avatar" file.
func (h *Controller) UploadAvatar(c *fiber.Ctx) error {
	header, err := c.FormFile("avatar")
	if err != nil {
		return utils.SendError(c, utils.Validation("Vui lòng chọn ảnh đại diện"))
	}
	file, err := header.Open()
	if err != nil {
		return utils.SendError(c, err)
	}
	defer file.Close()

	u, err := h.svc.Accounts.UploadAvatar(c.UserContext(), middleware.Actor(c).UserID, file)
	if err != nil {
		return utils.SendError(c, err)
	}
	return utils.SendData(c, fiber.StatusOK, "Cập nhật ảnh đại diện thành công", u)
}
