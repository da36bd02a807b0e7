package handler

import (
	_ "embed"

	"github.com/gofiber/fiber/v2"
)

//go:embed static/index.html
var indexHTML []byte

// Index handles GET / with the static landing page.
func Index(c *fiber.Ctx) error {
	c.Type("html")
	return c.Status(fiber.StatusOK).Send(indexHTML)
}
