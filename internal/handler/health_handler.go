package handler

import (
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"
)

func RegisterHealthRoutes(app fiber.Router, clinicName string) {
	app.Get("/", RootHandler(clinicName))
	app.Get("/livez", LivezHandler())
}

// RootHandler answers with a fixed plain-text confirmation.
func RootHandler(clinicName string) fiber.Handler {
	name := strings.TrimSpace(clinicName)
	if name == "" {
		name = "Dentasoft"
	}
	message := fmt.Sprintf("%s APIs funcionando", name)

	return func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusOK).SendString(message)
	}
}

func LivezHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{
			"status": "ok",
		})
	}
}
