package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/ImSudipBiswas/swiftcart/internal/config"
	"github.com/ImSudipBiswas/swiftcart/internal/media"
	"github.com/ImSudipBiswas/swiftcart/internal/middleware"
	"github.com/ImSudipBiswas/swiftcart/internal/repository"
	"github.com/ImSudipBiswas/swiftcart/internal/utils"
	"github.com/ImSudipBiswas/swiftcart/internal/validation"
)

// UserHandler serves the profile endpoints. All of them sit behind the
// session-refresh middleware.
type UserHandler struct {
	Cfg   config.Config
	Users UserStore
	Media media.Uploader
}

func NewUserHandler(cfg config.Config, users UserStore, uploader media.Uploader) *UserHandler {
	return &UserHandler{Cfg: cfg, Users: users, Media: uploader}
}

type updateUserReq struct {
	Name     string `json:"name"`
	Username string `json:"username"`
}

// Current handles GET /api/user/v1/current.
func (h *UserHandler) Current(c echo.Context) error {
	ident, _ := middleware.CurrentIdentity(c)
	user, err := h.Users.GetByID(c.Request().Context(), ident.ID)
	if err != nil {
		return fail(c, http.StatusBadRequest, "User not found")
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Current profile fetched successfully", "user": viewOf(user)})
}

// GetByID handles GET /api/user/v1/:id.
func (h *UserHandler) GetByID(c echo.Context) error {
	user, err := h.Users.GetByID(c.Request().Context(), c.Param("id"))
	if err != nil {
		return fail(c, http.StatusBadRequest, "User not found")
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "User profile fetched successfully", "user": viewOf(user)})
}

// List handles GET /api/user/v1 with pagination and a name filter.
func (h *UserHandler) List(c echo.Context) error {
	ctx := c.Request().Context()
	page := parsePage(c)
	q := c.QueryParam("q")

	count, err := h.Users.Count(ctx, q)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "Failed to fetch users")
	}
	users, err := h.Users.List(ctx, q, page.Offset(), page.Limit)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "Failed to fetch users")
	}

	views := make([]userView, 0, len(users))
	for _, u := range users {
		views = append(views, viewOf(u))
	}
	meta := utils.NewPageMeta(page, count)
	return c.JSON(http.StatusOK, echo.Map{
		"message":       "User profiles fetched successfully",
		"page":          meta.Page,
		"limit":         meta.Limit,
		"documentCount": meta.DocumentCount,
		"isNext":        meta.IsNext,
		"isPrevious":    meta.IsPrevious,
		"users":         views,
	})
}

// Update handles PATCH /api/user/v1 (name + username). A username collision
// with another account is rejected; colliding with yourself is fine.
func (h *UserHandler) Update(c echo.Context) error {
	ident, _ := middleware.CurrentIdentity(c)

	var req updateUserReq
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "Invalid request body")
	}
	in := validation.UpdateUserInput{
		Name:     strings.TrimSpace(req.Name),
		Username: strings.ToLower(strings.TrimSpace(req.Username)),
	}
	if errs := validation.Check(in); errs != nil {
		return failValidation(c, errs)
	}

	ctx := c.Request().Context()
	taken, err := h.Users.GetByUsername(ctx, in.Username)
	if err == nil && taken.ID != ident.ID {
		return fail(c, http.StatusBadRequest, "Username is already taken")
	}
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return fail(c, http.StatusInternalServerError, "Failed to update profile")
	}
	if err := h.Users.UpdateProfile(ctx, ident.ID, in.Name, in.Username); err != nil {
		return fail(c, http.StatusInternalServerError, "Failed to update profile")
	}

	user, err := h.Users.GetByID(ctx, ident.ID)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "Failed to update profile")
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Profile updated successfully", "user": viewOf(user)})
}

// AddAvatar handles POST /api/user/v1/avatar.
func (h *UserHandler) AddAvatar(c echo.Context) error {
	ident, _ := middleware.CurrentIdentity(c)

	file, fh, ok := openFormFile(c)
	if !ok {
		return fail(c, http.StatusBadRequest, "Image is required")
	}
	defer file.Close()

	ctx := c.Request().Context()
	url, err := h.Media.Upload(ctx, file, fh.Filename, "profileImage")
	if err != nil {
		return fail(c, http.StatusInternalServerError, "Image upload failed")
	}
	if err := h.Users.UpdateImage(ctx, ident.ID, &url); err != nil {
		return fail(c, http.StatusInternalServerError, "Failed to save profile image")
	}

	user, err := h.Users.GetByID(ctx, ident.ID)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "Failed to save profile image")
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Profile image added successfully", "user": viewOf(user)})
}

// UpdateAvatar handles PATCH /api/user/v1/avatar: upload the replacement
// first, then discard the previous asset.
func (h *UserHandler) UpdateAvatar(c echo.Context) error {
	ident, _ := middleware.CurrentIdentity(c)

	file, fh, ok := openFormFile(c)
	if !ok {
		return fail(c, http.StatusBadRequest, "Image is required")
	}
	defer file.Close()

	ctx := c.Request().Context()
	url, err := h.Media.Upload(ctx, file, fh.Filename, "profileImage")
	if err != nil {
		return fail(c, http.StatusInternalServerError, "Image upload failed")
	}

	user, err := h.Users.GetByID(ctx, ident.ID)
	if err != nil {
		return fail(c, http.StatusBadRequest, "User not found")
	}
	if user.Image != nil {
		if err := h.Media.Delete(ctx, *user.Image, "profileImage"); err != nil {
			return fail(c, http.StatusInternalServerError, "Failed to delete previous image")
		}
	}

	if err := h.Users.UpdateImage(ctx, ident.ID, &url); err != nil {
		return fail(c, http.StatusInternalServerError, "Failed to save profile image")
	}
	user, err = h.Users.GetByID(ctx, ident.ID)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "Failed to save profile image")
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Profile image updated successfully", "user": viewOf(user)})
}

// DeleteAvatar handles DELETE /api/user/v1/avatar.
func (h *UserHandler) DeleteAvatar(c echo.Context) error {
	ident, _ := middleware.CurrentIdentity(c)

	ctx := c.Request().Context()
	user, err := h.Users.GetByID(ctx, ident.ID)
	if err != nil || user.Image == nil {
		return fail(c, http.StatusBadRequest, "Profile image not found")
	}
	if err := h.Media.Delete(ctx, *user.Image, "profileImage"); err != nil {
		return fail(c, http.StatusInternalServerError, "Failed to delete profile image")
	}
	if err := h.Users.UpdateImage(ctx, ident.ID, nil); err != nil {
		return fail(c, http.StatusInternalServerError, "Failed to delete profile image")
	}

	user, err = h.Users.GetByID(ctx, ident.ID)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "Failed to delete profile image")
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Profile image deleted successfully", "user": viewOf(user)})
}

// Delete handles DELETE /api/user/v1: remove the account, its hosted avatar
// and the session cookies.
func (h *UserHandler) Delete(c echo.Context) error {
	ident, _ := middleware.CurrentIdentity(c)

	ctx := c.Request().Context()
	user, err := h.Users.GetByID(ctx, ident.ID)
	if err != nil {
		return fail(c, http.StatusBadRequest, "User not found")
	}
	if user.Image != nil {
		if err := h.Media.Delete(ctx, *user.Image, "profileImage"); err != nil {
			return fail(c, http.StatusInternalServerError, "Failed to delete account")
		}
	}
	if err := h.Users.Delete(ctx, ident.ID); err != nil {
		return fail(c, http.StatusInternalServerError, "Failed to delete account")
	}

	middleware.ClearSessionCookies(c, h.Cfg.Production())
	return c.JSON(http.StatusOK, echo.Map{"message": "User deleted successfully"})
}
