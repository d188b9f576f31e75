package middleware

import (
	"log"

	"ilbmart/internal/session"

	"github.com/gofiber/fiber/v2"
)

// SessionRequired rejects requests while no customer is logged in. The
// token's subject, when it has one, is stored in Locals("user_id").
func SessionRequired(sess *session.Session) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := sess.Token()
		if token == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message":     "Login required",
				"redirect_to": "/login",
			})
		}

		claims, err := session.DecodeClaims(token)
		if err != nil {
			log.Printf("Session token is not a JWT, continuing without claims: %v", err)
		} else {
			c.Locals("user_id", session.Subject(claims))
		}

		return c.Next()
	}
}
