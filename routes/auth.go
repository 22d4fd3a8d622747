package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/meinhoongagan/clinic-app/controllers"
)

func SetupAuthRoutes(app *fiber.App, h *controllers.Controller, auth fiber.Handler) {
	authGroup := app.Group("/auth")
	authGroup.Post("/register", h.Register)
	authGroup.Post("/login", h.Login)
	authGroup.Post("/logout", auth, h.Logout)
	authGroup.Get("/me", auth, h.Me)

	users := app.Group("/users", auth)
	users.Post("/me/avatar", h.UploadAvatar)
}
