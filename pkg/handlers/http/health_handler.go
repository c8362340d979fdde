package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

type healthHandler struct {
	logger *logrus.Logger
}

func NewHealthHandler(logger *logrus.Logger) Handler {
	return &healthHandler{
		logger: logger,
	}
}

func (h *healthHandler) Handle(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"message": "healthy",
	})
}
