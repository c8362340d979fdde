package router

import (
	handlers "github.com/corsgate/corsgate/pkg/handlers/http"
	"github.com/corsgate/corsgate/pkg/middleware"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

type appRouter struct {
	middlewareTransport *middleware.Transport
	handlerTransport    *handlers.HandlerTransport
}

func NewAppRouter(
	middlewareTransport *middleware.Transport,
	handlerTransport *handlers.HandlerTransport,
) ServerRouter {
	return &appRouter{
		middlewareTransport: middlewareTransport,
		handlerTransport:    handlerTransport,
	}
}

func (r *appRouter) BuildRoutes(router *fiber.App) error {
	// recover sits innermost so a handler panic surfaces as an error to the
	// CORS middleware (fault path) or, for non-CORS requests, to the
	// application error handler.
	router.Use(
		r.middlewareTransport.TraceMiddleware.Middleware(),
		r.middlewareTransport.MetricsMiddleware.Middleware(),
		r.middlewareTransport.CORSMiddleware.Middleware(),
		recover.New(),
	)

	router.Get("/health", r.handlerTransport.HealthHandler.Handle)
	router.Get("/version", r.handlerTransport.VersionHandler.Handle)

	// Failure endpoints exercising the header guarantee under every
	// downstream error shape.
	router.Get("/exception", r.handlerTransport.FaultHandler.Handle)
	router.Get("/exception/http", r.handlerTransport.HTTPFaultHandler.Handle)
	router.Get("/exception/depend",
		handlers.WithDependency(handlers.BrokenDependency, r.handlerTransport.HealthHandler.Handle))
	router.Get("/exception/http/depend",
		handlers.WithDependency(handlers.BrokenHTTPDependency, r.handlerTransport.HealthHandler.Handle))

	return nil
}
