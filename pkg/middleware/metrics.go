package middleware

import (
	"strconv"
	"time"

	"github.com/corsgate/corsgate/pkg/common"
	"github.com/corsgate/corsgate/pkg/infra/prometheus"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

type metricsMiddleware struct {
	logger *logrus.Logger
}

func NewMetricsMiddleware(logger *logrus.Logger) Middleware {
	return &metricsMiddleware{logger: logger}
}

func (m *metricsMiddleware) Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		startTime, ok := c.Locals(common.LatencyKey).(time.Time)
		if !ok {
			m.logger.Debug("start time not found in context")
			startTime = time.Now()
		}

		err := c.Next()

		elapsed := time.Since(startTime)
		status := c.Response().StatusCode()

		prometheus.RequestTotal.WithLabelValues(c.Method(), strconv.Itoa(status)).Inc()
		prometheus.RequestLatency.WithLabelValues(c.Method()).Observe(float64(elapsed.Milliseconds()))

		return err
	}
}
