package middleware

import (
	"github.com/gofiber/fiber/v2"
)

// RequireAdmin ensures that only users with "admin" role can access admin routes.
// It must run after Gate.RequireAuth.
func RequireAdmin(c *fiber.Ctx) error {
	user, ok := CurrentUser(c)
	if !ok || !user.IsAdmin() {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"message": "Admin access required"})
	}
	return c.Next()
}
