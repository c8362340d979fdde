package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

// faultHandler fails without producing any response. It exists to exercise
// the middleware's fallback path end to end.
type faultHandler struct {
	logger *logrus.Logger
}

func NewFaultHandler(logger *logrus.Logger) Handler {
	return &faultHandler{
		logger: logger,
	}
}

func (h *faultHandler) Handle(c *fiber.Ctx) error {
	panic("endpoint failure")
}
