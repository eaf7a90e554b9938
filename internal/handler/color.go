package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/ImSudipBiswas/swiftcart/internal/model"
	"github.com/ImSudipBiswas/swiftcart/internal/repository"
	"github.com/ImSudipBiswas/swiftcart/internal/utils"
	"github.com/ImSudipBiswas/swiftcart/internal/validation"
)

// ColorHandler serves the color endpoints: public reads, admin writes.
type ColorHandler struct {
	Colors     ColorStore
	Categories CategoryStore
}

func NewColorHandler(colors ColorStore, categories CategoryStore) *ColorHandler {
	return &ColorHandler{Colors: colors, Categories: categories}
}

type colorReq struct {
	Name       string `json:"name"`
	Hex        string `json:"hex"`
	CategoryID string `json:"categoryId"`
}

func bindColorInput(c echo.Context) (validation.ColorInput, []validation.FieldError) {
	var req colorReq
	if err := c.Bind(&req); err != nil {
		return validation.ColorInput{}, []validation.FieldError{{Path: "", Message: "Invalid request body"}}
	}
	in := validation.ColorInput{
		Name:       strings.TrimSpace(req.Name),
		Hex:        strings.TrimSpace(req.Hex),
		CategoryID: strings.TrimSpace(req.CategoryID),
	}
	return in, validation.Check(in)
}

// Create handles POST /api/color/v1. The same name or hex may exist in
// another category; only a collision inside the target category rejects.
func (h *ColorHandler) Create(c echo.Context) error {
	in, errs := bindColorInput(c)
	if errs != nil {
		return failValidation(c, errs)
	}

	ctx := c.Request().Context()
	_, err := h.Colors.FindConflict(ctx, in.CategoryID, in.Name, in.Hex)
	if err == nil {
		return fail(c, http.StatusBadRequest, "Color with provided name or hex already exists")
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return fail(c, http.StatusInternalServerError, "Failed to create color")
	}

	color := model.Color{Name: in.Name, Hex: in.Hex, CategoryID: in.CategoryID}
	if err := h.Colors.Create(ctx, &color); err != nil {
		return fail(c, http.StatusInternalServerError, "Failed to create color")
	}
	return c.JSON(http.StatusCreated, echo.Map{"message": "Color created successfully", "color": color})
}

// Update handles PATCH /api/color/v1/:id. Moving a color to another
// category is rejected outright; a conflict only counts when the colliding
// record is not the color being updated.
func (h *ColorHandler) Update(c echo.Context) error {
	in, errs := bindColorInput(c)
	if errs != nil {
		return failValidation(c, errs)
	}

	ctx := c.Request().Context()
	id := c.Param("id")
	existing, err := h.Colors.GetByID(ctx, id)
	if err != nil {
		return fail(c, http.StatusBadRequest, "Invalid ID")
	}
	if in.CategoryID != existing.CategoryID {
		return fail(c, http.StatusBadRequest, "Category cannot be changed")
	}
	conflict, err := h.Colors.FindConflict(ctx, in.CategoryID, in.Name, in.Hex)
	if err == nil && conflict.ID != id {
		return fail(c, http.StatusBadRequest, "Color with provided name or hex already exists")
	}
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return fail(c, http.StatusInternalServerError, "Failed to update color")
	}

	if err := h.Colors.Update(ctx, id, in.Name, in.Hex); err != nil {
		return fail(c, http.StatusInternalServerError, "Failed to update color")
	}
	color, err := h.Colors.GetByID(ctx, id)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "Failed to update color")
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Color updated successfully", "color": color})
}

// Delete handles DELETE /api/color/v1/:id.
func (h *ColorHandler) Delete(c echo.Context) error {
	ctx := c.Request().Context()
	id := c.Param("id")
	if _, err := h.Colors.GetByID(ctx, id); err != nil {
		return fail(c, http.StatusBadRequest, "Invalid ID")
	}
	if err := h.Colors.Delete(ctx, id); err != nil {
		return fail(c, http.StatusInternalServerError, "Failed to delete color")
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Color deleted successfully"})
}

// List handles GET /api/color/v1 with pagination, name/hex filter and
// optional owning-category expansion.
func (h *ColorHandler) List(c echo.Context) error {
	ctx := c.Request().Context()
	page := parsePage(c)
	q := c.QueryParam("q")
	includeCategory := c.QueryParam("includeCategory") == "true"

	count, err := h.Colors.Count(ctx, q)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "Failed to fetch colors")
	}
	colors, err := h.Colors.List(ctx, q, page.Offset(), page.Limit)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "Failed to fetch colors")
	}
	if includeCategory {
		if err := h.attachCategories(c, colors); err != nil {
			return fail(c, http.StatusInternalServerError, "Failed to fetch colors")
		}
	}

	meta := utils.NewPageMeta(page, count)
	return c.JSON(http.StatusOK, echo.Map{
		"message":       "Colors fetched successfully",
		"page":          meta.Page,
		"limit":         meta.Limit,
		"documentCount": meta.DocumentCount,
		"isNext":        meta.IsNext,
		"isPrevious":    meta.IsPrevious,
		"colors":        colors,
	})
}

// GetByID handles GET /api/color/v1/:id.
func (h *ColorHandler) GetByID(c echo.Context) error {
	ctx := c.Request().Context()
	color, err := h.Colors.GetByID(ctx, c.Param("id"))
	if err != nil {
		return fail(c, http.StatusBadRequest, "Invalid ID")
	}
	if c.QueryParam("includeCategory") == "true" {
		category, err := h.Categories.GetByID(ctx, color.CategoryID)
		if err != nil {
			return fail(c, http.StatusInternalServerError, "Failed to fetch color")
		}
		color.Category = &category
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Color fetched successfully", "color": color})
}

func (h *ColorHandler) attachCategories(c echo.Context, colors []model.Color) error {
	ctx := c.Request().Context()
	for i := range colors {
		category, err := h.Categories.GetByID(ctx, colors[i].CategoryID)
		if err != nil {
			return err
		}
		colors[i].Category = &category
	}
	return nil
}
