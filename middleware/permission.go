package middleware

import (
	"github.com/gofiber/fiber/v2"

	"github.com/meinhoongagan/clinic-app/models"
	"github.com/meinhoongagan/clinic-app/utils"
)

// RequirePermission rejects callers whose role is not granted action on resource.
// Ownership rules are enforced again by the service once the resource is loaded.
func RequirePermission(resource models.Resource, action models.Action) fiber.Handler {
	perm, ok := models.Permissions[resource][action]
	if !ok {
		panic("no permission defined for " + string(resource) + ":" + string(action))
	}
	return func(c *fiber.Ctx) error {
		if !perm.Allows(Actor(c).Role) {
			return utils.SendError(c, utils.Forbidden("Bạn không có quyền thực hiện thao tác này"))
		}
		return c.Next()
	}
}

// RequireRole admits only the listed roles.
func RequireRole(roles ...models.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		role := Actor(c).Role
		for _, r := range roles {
			if r == role {
				return c.Next()
			}
		}
		return utils.SendError(c, utils.Forbidden("Bạn không có quyền thực hiện thao tác này"))
	}
}
