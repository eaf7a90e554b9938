// Package router wires HTTP routes to their handlers and middleware.
package router

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/ImSudipBiswas/swiftcart/internal/handler"
)

// RegisterRoutes registers routes that need no dependencies: currently just
// the health check used by load balancers.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// ErrorHandler converts any error a handler lets escape into the unified
// {"message": ...} envelope, so one bad request can never crash the process
// or leak a bare stack trace. echo.HTTPError codes are preserved; everything
// else becomes a 500 carrying the error's message.
func ErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	code := http.StatusInternalServerError
	message := err.Error()
	if he, ok := err.(*echo.HTTPError); ok {
		code = he.Code
		if s, ok := he.Message.(string); ok {
			message = s
		}
	}
	_ = c.JSON(code, echo.Map{"message": message})
}
