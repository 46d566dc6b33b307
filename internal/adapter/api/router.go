package api

import (
	"os"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
)

func SetupRouter(app *fiber.App, handler *MenuHandler) {
	app.Use(logger.New())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{
			"status":  "healthy",
			"version": os.Getenv("APP_VERSION"),
		})
	})

	v1 := app.Group("/v1")
	v1.Post("/menu", handler.HandleGenerate)
	v1.Post("/menu/prompt", handler.HandlePromptPreview)
	v1.Get("/models", handler.HandleModels)
	v1.Get("/search", handler.HandleSearch)
}
