package http

import (
	"github.com/corsgate/corsgate/pkg/version"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

type versionHandler struct {
	logger *logrus.Logger
}

func NewVersionHandler(logger *logrus.Logger) Handler {
	return &versionHandler{
		logger: logger,
	}
}

func (h *versionHandler) Handle(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(version.GetInfo())
}
