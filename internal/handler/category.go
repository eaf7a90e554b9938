package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/ImSudipBiswas/swiftcart/internal/media"
	"github.com/ImSudipBiswas/swiftcart/internal/model"
	"github.com/ImSudipBiswas/swiftcart/internal/repository"
	"github.com/ImSudipBiswas/swiftcart/internal/utils"
	"github.com/ImSudipBiswas/swiftcart/internal/validation"
)

// CategoryHandler serves the category endpoints. Reads are public; writes
// sit behind the admin gate.
type CategoryHandler struct {
	Categories CategoryStore
	Colors     ColorStore
	Sizes      SizeStore
	Media      media.Uploader
}

func NewCategoryHandler(categories CategoryStore, colors ColorStore, sizes SizeStore, uploader media.Uploader) *CategoryHandler {
	return &CategoryHandler{Categories: categories, Colors: colors, Sizes: sizes, Media: uploader}
}

type categoryReq struct {
	Name        string `json:"name" form:"name"`
	LabelText   string `json:"labelText" form:"labelText"`
	Description string `json:"description" form:"description"`
}

func bindCategoryInput(c echo.Context) (validation.CategoryInput, []validation.FieldError) {
	var req categoryReq
	if err := c.Bind(&req); err != nil {
		return validation.CategoryInput{}, []validation.FieldError{{Path: "", Message: "Invalid request body"}}
	}
	in := validation.CategoryInput{
		Name:        strings.TrimSpace(req.Name),
		LabelText:   strings.TrimSpace(req.LabelText),
		Description: strings.TrimSpace(req.Description),
	}
	return in, validation.Check(in)
}

// Create handles POST /api/category/v1 (multipart, image required).
func (h *CategoryHandler) Create(c echo.Context) error {
	in, errs := bindCategoryInput(c)
	if errs != nil {
		return failValidation(c, errs)
	}

	file, fh, ok := openFormFile(c)
	if !ok {
		return fail(c, http.StatusBadRequest, "Category image is required")
	}
	defer file.Close()

	ctx := c.Request().Context()
	_, err := h.Categories.GetByName(ctx, in.Name)
	if err == nil {
		return fail(c, http.StatusBadRequest, "Category with provided name already exists")
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return fail(c, http.StatusInternalServerError, "Failed to create category")
	}

	url, err := h.Media.Upload(ctx, file, fh.Filename, "categoryImage")
	if err != nil {
		return fail(c, http.StatusInternalServerError, "Failed to upload image")
	}

	category := model.Category{Name: in.Name, LabelText: in.LabelText, Image: url}
	if in.Description != "" {
		category.Description = &in.Description
	}
	if err := h.Categories.Create(ctx, &category); err != nil {
		return fail(c, http.StatusInternalServerError, "Failed to create category")
	}
	return c.JSON(http.StatusCreated, echo.Map{"message": "Category created successfully", "category": category})
}

// Update handles PATCH /api/category/v1/:id (text fields only). A name
// conflict counts only when the colliding record is a different category.
func (h *CategoryHandler) Update(c echo.Context) error {
	in, errs := bindCategoryInput(c)
	if errs != nil {
		return failValidation(c, errs)
	}

	ctx := c.Request().Context()
	id := c.Param("id")
	if _, err := h.Categories.GetByID(ctx, id); err != nil {
		return fail(c, http.StatusBadRequest, "Invalid ID")
	}
	conflict, err := h.Categories.GetByName(ctx, in.Name)
	if err == nil && conflict.ID != id {
		return fail(c, http.StatusBadRequest, "Category with provided name already exists")
	}
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return fail(c, http.StatusInternalServerError, "Failed to update category")
	}

	var desc *string
	if in.Description != "" {
		desc = &in.Description
	}
	if err := h.Categories.Update(ctx, id, in.Name, in.LabelText, desc); err != nil {
		return fail(c, http.StatusInternalServerError, "Failed to update category")
	}

	category, err := h.Categories.GetByID(ctx, id)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "Failed to update category")
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Category updated successfully", "category": category})
}

// UpdateImage handles PATCH /api/category/v1/:id/image (multipart). The
// replacement is uploaded before the previous asset is destroyed, so a failed
// upload never leaves the category pointing at a deleted image.
func (h *CategoryHandler) UpdateImage(c echo.Context) error {
	ctx := c.Request().Context()
	id := c.Param("id")
	existing, err := h.Categories.GetByID(ctx, id)
	if err != nil {
		return fail(c, http.StatusBadRequest, "Invalid ID")
	}

	file, fh, ok := openFormFile(c)
	if !ok {
		return fail(c, http.StatusBadRequest, "Category image is required")
	}
	defer file.Close()

	url, err := h.Media.Upload(ctx, file, fh.Filename, "categoryImage")
	if err != nil {
		return fail(c, http.StatusInternalServerError, "Failed to upload image")
	}
	if err := h.Media.Delete(ctx, existing.Image, "categoryImage"); err != nil {
		return fail(c, http.StatusInternalServerError, "Failed to delete existing image")
	}
	if err := h.Categories.UpdateImage(ctx, id, url); err != nil {
		return fail(c, http.StatusInternalServerError, "Failed to update category image")
	}

	category, err := h.Categories.GetByID(ctx, id)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "Failed to update category image")
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Category image updated successfully", "category": category})
}

// Delete handles DELETE /api/category/v1/:id; the hosted image goes first.
func (h *CategoryHandler) Delete(c echo.Context) error {
	ctx := c.Request().Context()
	id := c.Param("id")
	existing, err := h.Categories.GetByID(ctx, id)
	if err != nil {
		return fail(c, http.StatusBadRequest, "Invalid ID")
	}
	if err := h.Media.Delete(ctx, existing.Image, "categoryImage"); err != nil {
		return fail(c, http.StatusInternalServerError, "Failed to delete image")
	}
	if err := h.Categories.Delete(ctx, id); err != nil {
		return fail(c, http.StatusInternalServerError, "Failed to delete category")
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Category deleted successfully"})
}

// List handles GET /api/category/v1 with pagination, substring filter and
// optional relation expansion.
func (h *CategoryHandler) List(c echo.Context) error {
	ctx := c.Request().Context()
	page := parsePage(c)
	q := c.QueryParam("q")
	includeColors := c.QueryParam("includeColors") == "true"
	includeSizes := c.QueryParam("includeSizes") == "true"

	count, err := h.Categories.Count(ctx, q)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "Failed to fetch categories")
	}
	categories, err := h.Categories.List(ctx, q, page.Offset(), page.Limit)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "Failed to fetch categories")
	}

	for i := range categories {
		if includeColors {
			colors, err := h.Colors.ListByCategory(ctx, categories[i].ID)
			if err != nil {
				return fail(c, http.StatusInternalServerError, "Failed to fetch categories")
			}
			categories[i].Colors = colors
		}
		if includeSizes {
			sizes, err := h.Sizes.ListByCategory(ctx, categories[i].ID)
			if err != nil {
				return fail(c, http.StatusInternalServerError, "Failed to fetch categories")
			}
			categories[i].Sizes = sizes
		}
	}

	meta := utils.NewPageMeta(page, count)
	return c.JSON(http.StatusOK, echo.Map{
		"message":       "Categories fetched successfully",
		"page":          meta.Page,
		"limit":         meta.Limit,
		"documentCount": meta.DocumentCount,
		"isNext":        meta.IsNext,
		"isPrevious":    meta.IsPrevious,
		"categories":    categories,
	})
}

// GetByID handles GET /api/category/v1/:id with optional expansion.
func (h *CategoryHandler) GetByID(c echo.Context) error {
	ctx := c.Request().Context()
	category, err := h.Categories.GetByID(ctx, c.Param("id"))
	if err != nil {
		return fail(c, http.StatusBadRequest, "Invalid ID")
	}

	if c.QueryParam("includeColors") == "true" {
		colors, err := h.Colors.ListByCategory(ctx, category.ID)
		if err != nil {
			return fail(c, http.StatusInternalServerError, "Failed to fetch category")
		}
		category.Colors = colors
	}
	if c.QueryParam("includeSizes") == "true" {
		sizes, err := h.Sizes.ListByCategory(ctx, category.ID)
		if err != nil {
			return fail(c, http.StatusInternalServerError, "Failed to fetch category")
		}
		category.Sizes = sizes
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Category fetched", "category": category})
}
