package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"github.com/corsgate/corsgate/pkg/cors"
	"github.com/corsgate/corsgate/pkg/infra/prometheus"
	"github.com/corsgate/corsgate/pkg/stream"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

type corsMiddleware struct {
	policy *cors.Policy
	logger *logrus.Logger
}

// NewCORSMiddleware guarantees the resolved CORS headers on every response
// to a request carrying an Origin header, including error responses
// synthesized after a downstream fault. Preflight requests are answered
// without invoking any route handler.
func NewCORSMiddleware(policy *cors.Policy, logger *logrus.Logger) Middleware {
	return &corsMiddleware{
		policy: policy,
		logger: logger,
	}
}

func (m *corsMiddleware) Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		origin := c.Get(fiber.HeaderOrigin)
		if origin == "" {
			return c.Next()
		}

		if resp := m.policy.Preflight(c.Method(), c.Get(cors.HeaderRequestMethod), origin); resp != nil {
			prometheus.PreflightTotal.Inc()
			for _, h := range resp.Headers {
				c.Set(h.Name, h.Value)
			}
			c.Status(resp.Status)
			return nil
		}

		resolved := m.policy.Resolve(origin)
		interceptor := cors.NewInterceptor(&fiberEmitter{c: c}, resolved, m.logger)

		interceptor.Drive(c.UserContext(), func(ctx context.Context, emit stream.Emitter) error {
			err := c.Next()

			var fiberErr *fiber.Error
			if errors.As(err, &fiberErr) {
				// Recognized HTTP-status error: render it as a normal
				// response so the interceptor injects headers the same way
				// it does for a handler-produced response.
				return emitJSON(emit, fiberErr.Code, fiber.Map{"message": fiberErr.Message})
			}
			if err != nil {
				return err
			}

			body := append([]byte(nil), c.Response().Body()...)
			if emitErr := emit.Emit(stream.StartEvent{
				Status:  c.Response().StatusCode(),
				Headers: responseHeaders(c),
			}); emitErr != nil {
				return emitErr
			}
			return emit.Emit(stream.BodyEvent{Bytes: body, More: false})
		})

		if interceptor.Faulted() {
			prometheus.FallbackResponseTotal.Inc()
		}
		return nil
	}
}

// fiberEmitter is the transport side of the response channel: it writes
// events back into the buffered fiber response.
type fiberEmitter struct {
	c *fiber.Ctx
}

func (e *fiberEmitter) Emit(event stream.Event) error {
	switch ev := event.(type) {
	case stream.StartEvent:
		e.c.Response().ResetBody()
		e.c.Status(ev.Status)
		seen := make(map[string]bool, len(ev.Headers))
		for _, h := range ev.Headers {
			key := strings.ToLower(h.Name)
			if seen[key] {
				e.c.Response().Header.Add(h.Name, h.Value)
			} else {
				e.c.Response().Header.Set(h.Name, h.Value)
				seen[key] = true
			}
		}
	case stream.BodyEvent:
		e.c.Response().AppendBody(ev.Bytes)
	}
	return nil
}

func emitJSON(emit stream.Emitter, status int, payload interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	if err := emit.Emit(stream.StartEvent{
		Status: status,
		Headers: []stream.Header{
			{Name: fiber.HeaderContentType, Value: fiber.MIMEApplicationJSON},
		},
	}); err != nil {
		return err
	}
	return emit.Emit(stream.BodyEvent{Bytes: body, More: false})
}

func responseHeaders(c *fiber.Ctx) []stream.Header {
	var headers []stream.Header
	c.Response().Header.VisitAll(func(key, value []byte) {
		headers = append(headers, stream.Header{Name: string(key), Value: string(value)})
	})
	return headers
}
