package http

import "github.com/gofiber/fiber/v2"

// Dependency resolves a value a handler needs before it runs.
type Dependency func(c *fiber.Ctx) (string, error)

// WithDependency runs dep ahead of next. A dependency failure prevents next
// from running at all.
func WithDependency(dep Dependency, next fiber.Handler) fiber.Handler {
	return func(c *fiber.Ctx) error {
		value, err := dep(c)
		if err != nil {
			return err
		}
		c.Locals("dependency", value)
		return next(c)
	}
}

// BrokenDependency fails unrecoverably before the handler body runs.
func BrokenDependency(_ *fiber.Ctx) (string, error) {
	panic("dependency failure before handler")
}

// BrokenHTTPDependency fails with a recognized HTTP-status error before the
// handler body runs.
func BrokenHTTPDependency(_ *fiber.Ctx) (string, error) {
	return "", fiber.NewError(fiber.StatusNotFound, "dependency resource not found")
}
