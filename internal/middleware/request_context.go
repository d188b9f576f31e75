package middleware

import (
	"ilbmart/pkg/restclient"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/requestid"
)

// RequestContext carries the request id assigned by the requestid
// middleware into the user context, so backend calls made while serving the
// request send the same X-Request-ID. It must run after requestid.New().
func RequestContext() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, _ := c.Locals(requestid.ConfigDefault.ContextKey).(string)
		if id == "" {
			id = c.GetRespHeader(fiber.HeaderXRequestID)
		}
		if id != "" {
			c.SetUserContext(restclient.WithRequestID(c.UserContext(), id))
		}
		return c.Next()
	}
}
