package router

import (
	"github.com/labstack/echo/v4"

	"github.com/ImSudipBiswas/swiftcart/internal/handler"
)

// RegisterUser mounts the profile endpoints under /api/user/v1. Every route
// requires a live session.
func RegisterUser(e *echo.Echo, u *handler.UserHandler, authenticate echo.MiddlewareFunc) {
	g := e.Group("/api/user/v1", authenticate)

	g.GET("/current", u.Current)
	g.GET("", u.List)
	g.PATCH("", u.Update)
	g.DELETE("", u.Delete)

	g.POST("/avatar", u.AddAvatar)
	g.PATCH("/avatar", u.UpdateAvatar)
	g.DELETE("/avatar", u.DeleteAvatar)

	// Registered after /current and /avatar so the param route cannot
	// shadow them.
	g.GET("/:id", u.GetByID)
}
