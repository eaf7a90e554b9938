package handler

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/ImSudipBiswas/swiftcart/internal/config"
	"github.com/ImSudipBiswas/swiftcart/internal/media"
	"github.com/ImSudipBiswas/swiftcart/internal/middleware"
	"github.com/ImSudipBiswas/swiftcart/internal/model"
	"github.com/ImSudipBiswas/swiftcart/internal/queue"
	"github.com/ImSudipBiswas/swiftcart/internal/repository"
	"github.com/ImSudipBiswas/swiftcart/internal/token"
	"github.com/ImSudipBiswas/swiftcart/internal/utils"
	"github.com/ImSudipBiswas/swiftcart/internal/validation"
)

// AuthHandler bundles dependencies for the sign-up / verify / sign-in /
// sign-out endpoints.
type AuthHandler struct {
	Cfg   config.Config
	Users UserStore
	Codec *token.Codec
	Media media.Uploader
	Mail  MailPublisher
}

func NewAuthHandler(cfg config.Config, users UserStore, codec *token.Codec, uploader media.Uploader, mail MailPublisher) *AuthHandler {
	return &AuthHandler{Cfg: cfg, Users: users, Codec: codec, Media: uploader, Mail: mail}
}

type signInReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// SignUp handles POST /api/auth/v1/sign-up (multipart). It creates an
// unverified account and mails a verification link; no session is issued
// until the email is confirmed.
func (h *AuthHandler) SignUp(c echo.Context) error {
	in := validation.SignUpInput{
		Name:     strings.TrimSpace(c.FormValue("name")),
		Username: strings.ToLower(strings.TrimSpace(c.FormValue("username"))),
		Email:    strings.ToLower(strings.TrimSpace(c.FormValue("email"))),
		Password: c.FormValue("password"),
	}
	if errs := validation.Check(in); errs != nil {
		return failValidation(c, errs)
	}

	role := model.RoleUser
	if raw := strings.ToUpper(strings.TrimSpace(c.FormValue("role"))); raw != "" {
		parsed, ok := model.ParseRole(raw)
		if !ok {
			return failValidation(c, []validation.FieldError{{Path: "role", Message: "Invalid role"}})
		}
		role = parsed
	}

	ctx := c.Request().Context()

	// An unverified account is a reservation, not an identity: a verified
	// match blocks the sign-up, an unverified match is discarded so the
	// flow can restart.
	existing, err := h.Users.FindByEmailOrUsername(ctx, in.Email, in.Username)
	switch {
	case err == nil:
		if existing.EmailVerified {
			return fail(c, http.StatusBadRequest, "Email or username is already taken")
		}
		if err := h.Users.Delete(ctx, existing.ID); err != nil {
			return fail(c, http.StatusInternalServerError, "Failed to create user")
		}
	case !errors.Is(err, repository.ErrNotFound):
		return fail(c, http.StatusInternalServerError, "Failed to create user")
	}

	hash, err := utils.HashPassword(in.Password, h.Cfg.BcryptCost)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "Failed to generate tokens")
	}
	verificationToken, err := h.Codec.Issue(token.KindEmailVerification, token.Claims{Email: in.Email})
	if err != nil {
		return fail(c, http.StatusInternalServerError, "Failed to generate tokens")
	}

	var image *string
	if file, fh, ok := openFormFile(c); ok {
		defer file.Close()
		url, err := h.Media.Upload(ctx, file, fh.Filename, "profileImage")
		if err != nil {
			return fail(c, http.StatusInternalServerError, "Failed to upload profile image")
		}
		image = &url
	}

	user := model.User{
		Name:                   in.Name,
		Username:               in.Username,
		Email:                  in.Email,
		PasswordHash:           hash,
		Role:                   role,
		Image:                  image,
		EmailVerificationToken: &verificationToken,
	}
	if err := h.Users.Create(ctx, &user); err != nil {
		return fail(c, http.StatusInternalServerError, "Failed to create user")
	}

	audience := "store"
	if role == model.RoleAdmin {
		audience = "dashboard"
	}
	ev := queue.VerificationMailEvent{
		Email:       in.Email,
		Token:       verificationToken,
		Audience:    audience,
		RequestedAt: time.Now().UTC().Format(time.RFC3339),
	}
	if err := h.Mail.PublishVerificationMail(ctx, ev); err != nil {
		return fail(c, http.StatusInternalServerError, "Failed to send verification mail")
	}

	return c.JSON(http.StatusCreated, echo.Map{"message": "Please check your email to continue"})
}

// VerifyEmail handles POST /api/auth/v1/verify-email/:token. A valid token
// activates the account and starts the first session.
func (h *AuthHandler) VerifyEmail(c echo.Context) error {
	raw := c.Param("token")
	claims := h.Codec.Decode(token.KindEmailVerification, raw)
	if claims == nil || claims.Email == "" {
		return fail(c, http.StatusBadRequest, "Invalid token")
	}

	ctx := c.Request().Context()
	user, err := h.Users.GetByEmail(ctx, claims.Email)
	if err != nil {
		return fail(c, http.StatusBadRequest, "Invalid token")
	}
	if user.EmailVerified {
		return fail(c, http.StatusBadRequest, "Email is already verified")
	}

	refresh, err := h.Codec.Issue(token.KindRefresh, token.Claims{UserID: user.ID})
	if err != nil {
		return fail(c, http.StatusInternalServerError, "Failed to generate tokens")
	}
	access, err := h.Codec.Issue(token.KindAccess, token.Claims{UserID: user.ID, Role: user.Role})
	if err != nil {
		return fail(c, http.StatusInternalServerError, "Failed to generate tokens")
	}

	if err := h.Users.MarkEmailVerified(ctx, user.ID, refresh, time.Now().UTC()); err != nil {
		return fail(c, http.StatusInternalServerError, "Failed to verify email")
	}

	middleware.SetSessionCookies(c, h.Codec, access, refresh, h.Cfg.Production())
	return c.JSON(http.StatusOK, echo.Map{"message": "Signup successful"})
}

// SignIn handles POST /api/auth/v1/sign-in. Unknown and unverified emails
// share one generic response so the endpoint does not reveal which.
func (h *AuthHandler) SignIn(c echo.Context) error {
	var req signInReq
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "Invalid request body")
	}
	in := validation.SignInInput{
		Email:    strings.ToLower(strings.TrimSpace(req.Email)),
		Password: req.Password,
	}
	if errs := validation.Check(in); errs != nil {
		return failValidation(c, errs)
	}

	ctx := c.Request().Context()
	user, err := h.Users.GetByEmail(ctx, in.Email)
	if err != nil || !user.EmailVerified {
		return fail(c, http.StatusNotFound, "User doesn't exist")
	}
	if !utils.VerifyPassword(user.PasswordHash, in.Password) {
		return fail(c, http.StatusBadRequest, "Invalid credentials")
	}

	refresh, err := h.Codec.Issue(token.KindRefresh, token.Claims{UserID: user.ID})
	if err != nil {
		return fail(c, http.StatusInternalServerError, "Failed to generate tokens")
	}
	access, err := h.Codec.Issue(token.KindAccess, token.Claims{UserID: user.ID, Role: user.Role})
	if err != nil {
		return fail(c, http.StatusInternalServerError, "Failed to generate tokens")
	}
	if err := h.Users.SaveRefreshToken(ctx, user.ID, refresh); err != nil {
		return fail(c, http.StatusInternalServerError, "Failed to sign in")
	}

	middleware.SetSessionCookies(c, h.Codec, access, refresh, h.Cfg.Production())
	return c.JSON(http.StatusOK, echo.Map{"message": "Signed in successfully"})
}

// SignOut handles POST /api/auth/v1/sign-out (authenticated). It drops the
// stored refresh token and expires both cookies.
func (h *AuthHandler) SignOut(c echo.Context) error {
	ident, ok := middleware.CurrentIdentity(c)
	if !ok {
		return fail(c, http.StatusUnauthorized, "Unauthorized")
	}
	if err := h.Users.ClearRefreshToken(c.Request().Context(), ident.ID); err != nil {
		return fail(c, http.StatusInternalServerError, "Failed to sign out")
	}
	middleware.ClearSessionCookies(c, h.Cfg.Production())
	return c.JSON(http.StatusOK, echo.Map{"message": "Signed out successfully"})
}
