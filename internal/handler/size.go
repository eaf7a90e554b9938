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

// SizeHandler serves the size endpoints, mirroring the color rules with
// value in place of hex.
type SizeHandler struct {
	Sizes      SizeStore
	Categories CategoryStore
}

func NewSizeHandler(sizes SizeStore, categories CategoryStore) *SizeHandler {
	return &SizeHandler{Sizes: sizes, Categories: categories}
}

type sizeReq struct {
	Name       string `json:"name"`
	Value      string `json:"value"`
	CategoryID string `json:"categoryId"`
}

func bindSizeInput(c echo.Context) (validation.SizeInput, []validation.FieldError) {
	var req sizeReq
	if err := c.Bind(&req); err != nil {
		return validation.SizeInput{}, []validation.FieldError{{Path: "", Message: "Invalid request body"}}
	}
	in := validation.SizeInput{
		Name:       strings.TrimSpace(req.Name),
		Value:      strings.TrimSpace(req.Value),
		CategoryID: strings.TrimSpace(req.CategoryID),
	}
	return in, validation.Check(in)
}

// Create handles POST /api/size/v1.
func (h *SizeHandler) Create(c echo.Context) error {
	in, errs := bindSizeInput(c)
	if errs != nil {
		return failValidation(c, errs)
	}

	ctx := c.Request().Context()
	_, err := h.Sizes.FindConflict(ctx, in.CategoryID, in.Name, in.Value)
	if err == nil {
		return fail(c, http.StatusBadRequest, "Size with provided name or value already exists")
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return fail(c, http.StatusInternalServerError, "Failed to create size")
	}

	size := model.Size{Name: in.Name, Value: in.Value, CategoryID: in.CategoryID}
	if err := h.Sizes.Create(ctx, &size); err != nil {
		return fail(c, http.StatusInternalServerError, "Failed to create size")
	}
	return c.JSON(http.StatusCreated, echo.Map{"message": "Size created successfully", "size": size})
}

// Update handles PATCH /api/size/v1/:id.
func (h *SizeHandler) Update(c echo.Context) error {
	in, errs := bindSizeInput(c)
	if errs != nil {
		return failValidation(c, errs)
	}

	ctx := c.Request().Context()
	id := c.Param("id")
	existing, err := h.Sizes.GetByID(ctx, id)
	if err != nil {
		return fail(c, http.StatusBadRequest, "Invalid ID")
	}
	if in.CategoryID != existing.CategoryID {
		return fail(c, http.StatusBadRequest, "Category cannot be changed")
	}
	conflict, err := h.Sizes.FindConflict(ctx, in.CategoryID, in.Name, in.Value)
	if err == nil && conflict.ID != id {
		return fail(c, http.StatusBadRequest, "Size with provided name or value already exists")
	}
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return fail(c, http.StatusInternalServerError, "Failed to update size")
	}

	if err := h.Sizes.Update(ctx, id, in.Name, in.Value); err != nil {
		return fail(c, http.StatusInternalServerError, "Failed to update size")
	}
	size, err := h.Sizes.GetByID(ctx, id)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "Failed to update size")
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Size updated successfully", "size": size})
}

// Delete handles DELETE /api/size/v1/:id.
func (h *SizeHandler) Delete(c echo.Context) error {
	ctx := c.Request().Context()
	id := c.Param("id")
	if _, err := h.Sizes.GetByID(ctx, id); err != nil {
		return fail(c, http.StatusBadRequest, "Invalid ID")
	}
	if err := h.Sizes.Delete(ctx, id); err != nil {
		return fail(c, http.StatusInternalServerError, "Failed to delete size")
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Size deleted successfully"})
}

// List handles GET /api/size/v1.
func (h *SizeHandler) List(c echo.Context) error {
	ctx := c.Request().Context()
	page := parsePage(c)
	q := c.QueryParam("q")
	includeCategory := c.QueryParam("includeCategory") == "true"

	count, err := h.Sizes.Count(ctx, q)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "Failed to fetch sizes")
	}
	sizes, err := h.Sizes.List(ctx, q, page.Offset(), page.Limit)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "Failed to fetch sizes")
	}
	if includeCategory {
		for i := range sizes {
			category, err := h.Categories.GetByID(ctx, sizes[i].CategoryID)
			if err != nil {
				return fail(c, http.StatusInternalServerError, "Failed to fetch sizes")
			}
			sizes[i].Category = &category
		}
	}

	meta := utils.NewPageMeta(page, count)
	return c.JSON(http.StatusOK, echo.Map{
		"message":       "Sizes fetched successfully",
		"page":          meta.Page,
		"limit":         meta.Limit,
		"documentCount": meta.DocumentCount,
		"isNext":        meta.IsNext,
		"isPrevious":    meta.IsPrevious,
		"sizes":         sizes,
	})
}

// GetByID handles GET /api/size/v1/:id.
func (h *SizeHandler) GetByID(c echo.Context) error {
	ctx := c.Request().Context()
	size, err := h.Sizes.GetByID(ctx, c.Param("id"))
	if err != nil {
		return fail(c, http.StatusBadRequest, "Invalid ID")
	}
	if c.QueryParam("includeCategory") == "true" {
		category, err := h.Categories.GetByID(ctx, size.CategoryID)
		if err != nil {
			return fail(c, http.StatusInternalServerError, "Failed to fetch size")
		}
		size.Category = &category
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Size fetched successfully", "size": size})
}
