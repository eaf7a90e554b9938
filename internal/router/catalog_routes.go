package router

import (
	"github.com/labstack/echo/v4"

	"github.com/ImSudipBiswas/swiftcart/internal/handler"
)

// RegisterCatalog mounts the category, color and size endpoints. Reads are
// public and go through the response cache; writes require an authenticated
// admin.
func RegisterCatalog(
	e *echo.Echo,
	cat *handler.CategoryHandler,
	col *handler.ColorHandler,
	siz *handler.SizeHandler,
	cache, authenticate, requireAdmin echo.MiddlewareFunc,
) {
	admin := []echo.MiddlewareFunc{authenticate, requireAdmin}

	cg := e.Group("/api/category/v1")
	cg.GET("", cat.List, cache)
	cg.GET("/:id", cat.GetByID, cache)
	cg.POST("", cat.Create, admin...)
	cg.PATCH("/:id", cat.Update, admin...)
	cg.PATCH("/:id/image", cat.UpdateImage, admin...)
	cg.DELETE("/:id", cat.Delete, admin...)

	clg := e.Group("/api/color/v1")
	clg.GET("", col.List, cache)
	clg.GET("/:id", col.GetByID, cache)
	clg.POST("", col.Create, admin...)
	clg.PATCH("/:id", col.Update, admin...)
	clg.DELETE("/:id", col.Delete, admin...)

	sg := e.Group("/api/size/v1")
	sg.GET("", siz.List, cache)
	sg.GET("/:id", siz.GetByID, cache)
	sg.POST("", siz.Create, admin...)
	sg.PATCH("/:id", siz.Update, admin...)
	sg.DELETE("/:id", siz.Delete, admin...)
}
