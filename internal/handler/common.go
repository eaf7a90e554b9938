// Package handler implements the HTTP endpoints. Handlers depend on small
// store interfaces (satisfied by the repository types) so they can be
// exercised against in-memory fakes in tests.
//
// Response envelope: successes are {"message": ..., <payload>}, failures are
// {"message": ...} everywhere. Validation failures put the field-error list
// in the message.
package handler

import (
	"context"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/ImSudipBiswas/swiftcart/internal/model"
	"github.com/ImSudipBiswas/swiftcart/internal/queue"
	"github.com/ImSudipBiswas/swiftcart/internal/utils"
	"github.com/ImSudipBiswas/swiftcart/internal/validation"
)

// UserStore is the persistence surface of the auth and user endpoints.
type UserStore interface {
	Create(ctx context.Context, u *model.User) error
	GetByID(ctx context.Context, id string) (model.User, error)
	GetByEmail(ctx context.Context, email string) (model.User, error)
	GetByUsername(ctx context.Context, username string) (model.User, error)
	FindByEmailOrUsername(ctx context.Context, email, username string) (model.User, error)
	Delete(ctx context.Context, id string) error
	UpdateProfile(ctx context.Context, id, name, username string) error
	UpdateImage(ctx context.Context, id string, image *string) error
	SaveRefreshToken(ctx context.Context, id, refreshToken string) error
	ClearRefreshToken(ctx context.Context, id string) error
	MarkEmailVerified(ctx context.Context, id, refreshToken string, at time.Time) error
	Count(ctx context.Context, q string) (int, error)
	List(ctx context.Context, q string, offset, limit int) ([]model.User, error)
}

// CategoryStore is the persistence surface of the category endpoints.
type CategoryStore interface {
	Create(ctx context.Context, c *model.Category) error
	GetByID(ctx context.Context, id string) (model.Category, error)
	GetByName(ctx context.Context, name string) (model.Category, error)
	Update(ctx context.Context, id, name, labelText string, description *string) error
	UpdateImage(ctx context.Context, id, image string) error
	Delete(ctx context.Context, id string) error
	Count(ctx context.Context, q string) (int, error)
	List(ctx context.Context, q string, offset, limit int) ([]model.Category, error)
}

// ColorStore is the persistence surface of the color endpoints.
type ColorStore interface {
	Create(ctx context.Context, c *model.Color) error
	GetByID(ctx context.Context, id string) (model.Color, error)
	FindConflict(ctx context.Context, categoryID, name, hex string) (model.Color, error)
	Update(ctx context.Context, id, name, hex string) error
	Delete(ctx context.Context, id string) error
	ListByCategory(ctx context.Context, categoryID string) ([]model.Color, error)
	Count(ctx context.Context, q string) (int, error)
	List(ctx context.Context, q string, offset, limit int) ([]model.Color, error)
}

// SizeStore is the persistence surface of the size endpoints.
type SizeStore interface {
	Create(ctx context.Context, s *model.Size) error
	GetByID(ctx context.Context, id string) (model.Size, error)
	FindConflict(ctx context.Context, categoryID, name, value string) (model.Size, error)
	Update(ctx context.Context, id, name, value string) error
	Delete(ctx context.Context, id string) error
	ListByCategory(ctx context.Context, categoryID string) ([]model.Size, error)
	Count(ctx context.Context, q string) (int, error)
	List(ctx context.Context, q string, offset, limit int) ([]model.Size, error)
}

// MailPublisher enqueues verification emails for asynchronous delivery.
type MailPublisher interface {
	PublishVerificationMail(ctx context.Context, ev queue.VerificationMailEvent) error
}

// userView is the sanitized user shape returned by the API; password hash,
// tokens and verification bookkeeping never leave the server.
type userView struct {
	ID       string     `json:"id"`
	Name     string     `json:"name"`
	Username string     `json:"username"`
	Email    string     `json:"email"`
	Image    *string    `json:"image"`
	Role     model.Role `json:"role"`
}

func viewOf(u model.User) userView {
	return userView{ID: u.ID, Name: u.Name, Username: u.Username, Email: u.Email, Image: u.Image, Role: u.Role}
}

func fail(c echo.Context, status int, message string) error {
	return c.JSON(status, echo.Map{"message": message})
}

func failValidation(c echo.Context, errs []validation.FieldError) error {
	return c.JSON(http.StatusBadRequest, echo.Map{"message": errs})
}

func parsePage(c echo.Context) utils.Page {
	return utils.ParsePage(c.QueryParam("page"), c.QueryParam("limit"))
}

// openFormFile opens the uploaded "image" part of a multipart request.
// ok is false when the part is absent.
func openFormFile(c echo.Context) (io.ReadCloser, *multipart.FileHeader, bool) {
	fh, err := c.FormFile("image")
	if err != nil || fh == nil {
		return nil, nil, false
	}
	f, err := fh.Open()
	if err != nil {
		return nil, nil, false
	}
	return f, fh, true
}
