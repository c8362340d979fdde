package middleware

import (
	"time"

	"github.com/corsgate/corsgate/pkg/common"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type traceMiddleware struct{}

// NewTraceMiddleware tags every request with a trace id and records the
// request start time for the metrics middleware.
func NewTraceMiddleware() Middleware {
	return &traceMiddleware{}
}

func (m *traceMiddleware) Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		traceID := uuid.New().String()
		c.Locals(common.TraceIdKey, traceID)
		c.Locals(common.LatencyKey, time.Now())
		c.Set(common.RequestIdHeader, traceID)
		return c.Next()
	}
}
