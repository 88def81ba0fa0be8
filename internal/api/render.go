package api

import "github.com/gofiber/fiber/v2"

// Render writes the envelope with the HTTP status its code maps to.
func Render(c *fiber.Ctx, env Envelope) error {
	return c.Status(HTTPStatus(env.Code)).JSON(env)
}
