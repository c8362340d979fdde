package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

// httpFaultHandler fails with a recognized HTTP-status error, the kind the
// error layer converts into a well-formed response before the fallback path
// would apply.
type httpFaultHandler struct {
	logger *logrus.Logger
}

func NewHTTPFaultHandler(logger *logrus.Logger) Handler {
	return &httpFaultHandler{
		logger: logger,
	}
}

func (h *httpFaultHandler) Handle(c *fiber.Ctx) error {
	return fiber.NewError(fiber.StatusNotFound, "resource not found")
}
