package server_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/corsgate/corsgate/pkg/config"
	"github.com/corsgate/corsgate/pkg/cors"
	handlers "github.com/corsgate/corsgate/pkg/handlers/http"
	"github.com/corsgate/corsgate/pkg/middleware"
	"github.com/corsgate/corsgate/pkg/server"
	"github.com/corsgate/corsgate/pkg/server/router"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valyala/fastjson"
)

const testOrigin = "https://google.com"

func newTestServer(t *testing.T) *fiber.App {
	t.Helper()

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	cfg := &config.Config{
		Server: config.ServerConfig{Port: 8080, MetricsPort: 9090},
		CORS: cors.Config{
			AllowedOrigins: []string{"*"},
			AllowedMethods: []string{"GET", "POST", "OPTIONS"},
			AllowedHeaders: []string{"Content-Type"},
		},
	}

	policy, err := cors.NewPolicy(cfg.CORS)
	require.NoError(t, err)

	middlewareTransport := &middleware.Transport{
		TraceMiddleware:   middleware.NewTraceMiddleware(),
		MetricsMiddleware: middleware.NewMetricsMiddleware(logger),
		CORSMiddleware:    middleware.NewCORSMiddleware(policy, logger),
	}

	handlerTransport := &handlers.HandlerTransport{
		HealthHandler:    handlers.NewHealthHandler(logger),
		VersionHandler:   handlers.NewVersionHandler(logger),
		FaultHandler:     handlers.NewFaultHandler(logger),
		HTTPFaultHandler: handlers.NewHTTPFaultHandler(logger),
	}

	return server.NewBaseServer(cfg, logger).
		WithRouters(router.NewAppRouter(middlewareTransport, handlerTransport)).
		App()
}

func doRequest(t *testing.T, app *fiber.App, method, path string, headers map[string]string) (*http.Response, []byte) {
	t.Helper()

	req := httptest.NewRequest(method, path, nil)
	for name, value := range headers {
		req.Header.Set(name, value)
	}

	resp, err := app.Test(req)
	require.NoError(t, err)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, body
}

func message(t *testing.T, body []byte) string {
	t.Helper()
	value, err := fastjson.ParseBytes(body)
	require.NoError(t, err)
	return string(value.GetStringBytes("message"))
}

func TestServer_HealthWithOrigin(t *testing.T) {
	app := newTestServer(t)

	resp, body := doRequest(t, app, http.MethodGet, "/health", map[string]string{
		fiber.HeaderOrigin: testOrigin,
	})

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "*", resp.Header.Get(cors.HeaderAllowOrigin))
	assert.Equal(t, "healthy", message(t, body))
}

func TestServer_GenericFaultKeepsHeaderGuarantee(t *testing.T) {
	app := newTestServer(t)

	resp, body := doRequest(t, app, http.MethodGet, "/exception", map[string]string{
		fiber.HeaderOrigin: testOrigin,
	})

	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.Equal(t, "*", resp.Header.Get(cors.HeaderAllowOrigin))
	assert.Equal(t, "Internal Server Error", message(t, body))
}

func TestServer_HTTPErrorKeepsStatusAndHeaders(t *testing.T) {
	app := newTestServer(t)

	resp, body := doRequest(t, app, http.MethodGet, "/exception/http", map[string]string{
		fiber.HeaderOrigin: testOrigin,
	})

	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "*", resp.Header.Get(cors.HeaderAllowOrigin))
	assert.Equal(t, "resource not found", message(t, body))
}

func TestServer_DependencyFaultKeepsHeaderGuarantee(t *testing.T) {
	app := newTestServer(t)

	resp, body := doRequest(t, app, http.MethodGet, "/exception/depend", map[string]string{
		fiber.HeaderOrigin: testOrigin,
	})

	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.Equal(t, "*", resp.Header.Get(cors.HeaderAllowOrigin))
	assert.Equal(t, "Internal Server Error", message(t, body))
}

func TestServer_HTTPDependencyFaultKeepsStatusAndHeaders(t *testing.T) {
	app := newTestServer(t)

	resp, body := doRequest(t, app, http.MethodGet, "/exception/http/depend", map[string]string{
		fiber.HeaderOrigin: testOrigin,
	})

	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "*", resp.Header.Get(cors.HeaderAllowOrigin))
	assert.Equal(t, "dependency resource not found", message(t, body))
}

func TestServer_PreflightNeverReachesHandlers(t *testing.T) {
	app := newTestServer(t)

	resp, body := doRequest(t, app, http.MethodOptions, "/health", map[string]string{
		fiber.HeaderOrigin:       testOrigin,
		cors.HeaderRequestMethod: http.MethodGet,
	})

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Empty(t, body)
	assert.Equal(t, "*", resp.Header.Get(cors.HeaderAllowOrigin))
	assert.NotEmpty(t, resp.Header.Get(cors.HeaderMaxAge))
}

func TestServer_ErrorWithoutOriginUsesErrorHandler(t *testing.T) {
	app := newTestServer(t)

	resp, body := doRequest(t, app, http.MethodGet, "/exception/http", nil)

	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Empty(t, resp.Header.Get(cors.HeaderAllowOrigin))
	assert.Equal(t, "resource not found", message(t, body))
}

func TestServer_Version(t *testing.T) {
	app := newTestServer(t)

	resp, body := doRequest(t, app, http.MethodGet, "/version", nil)

	assert.Equal(t, http.StatusOK, resp.StatusCode)

	value, err := fastjson.ParseBytes(body)
	require.NoError(t, err)
	assert.Equal(t, "CORSGate", string(value.GetStringBytes("app_name")))
}
