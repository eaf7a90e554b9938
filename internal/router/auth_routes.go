package router

import (
	"github.com/labstack/echo/v4"

	"github.com/ImSudipBiswas/swiftcart/internal/handler"
)

// RegisterAuth mounts the authentication endpoints under /api/auth/v1.
// The rate limiter guards all of them; sign-out additionally requires an
// authenticated session.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, rateLimit, authenticate echo.MiddlewareFunc) {
	g := e.Group("/api/auth/v1", rateLimit)

	g.POST("/sign-up", a.SignUp)
	g.POST("/verify-email/:token", a.VerifyEmail)
	g.POST("/sign-in", a.SignIn)
	g.POST("/sign-out", a.SignOut, authenticate)
}
