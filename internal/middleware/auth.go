// Package middleware provides the request-processing chain shared by all
// authenticated routes: cookie-based session refresh, the admin gate, and
// the Redis-backed cache and rate limiter.
package middleware

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/ImSudipBiswas/swiftcart/internal/model"
	"github.com/ImSudipBiswas/swiftcart/internal/token"
)

// Cookie names shared with the dashboard and storefront clients.
const (
	RefreshCookie = "refresh-token"
	AccessCookie  = "access-token"
)

const identityKey = "auth.identity"

// Identity is the authenticated caller attached to the request context by
// Authenticate. Handlers read it through CurrentIdentity instead of poking
// loose values out of the context.
type Identity struct {
	ID   string
	Role model.Role
}

// SessionStore is the user lookup/persistence surface the refresh middleware
// needs. *repository.UserRepo satisfies it.
type SessionStore interface {
	GetByID(ctx context.Context, id string) (model.User, error)
	SaveRefreshToken(ctx context.Context, id, refreshToken string) error
}

// CurrentIdentity returns the caller attached by Authenticate.
func CurrentIdentity(c echo.Context) (Identity, bool) {
	id, ok := c.Get(identityKey).(Identity)
	return id, ok
}

// SetIdentity attaches the caller to the request context. Authenticate calls
// it after a successful refresh; handler tests call it to skip the middleware.
func SetIdentity(c echo.Context, ident Identity) {
	c.Set(identityKey, ident)
}

// Authenticate validates the refresh cookie on every request and silently
// reissues the session pair when the access cookie is missing, invalid or
// bound to a different user. Every failure in the chain is a 401; nothing
// here distinguishes why, by design.
//
// Unlike a pure cookie rewrite, a silent rotation also persists the new
// refresh token, so the stored value and the cookie can never drift apart.
func Authenticate(codec *token.Codec, store SessionStore, secure bool) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			refreshCookie, err := c.Cookie(RefreshCookie)
			if err != nil || refreshCookie.Value == "" {
				return unauthorized(c)
			}

			refreshClaims := codec.Decode(token.KindRefresh, refreshCookie.Value)
			if refreshClaims == nil || refreshClaims.UserID == "" {
				return unauthorized(c)
			}

			ctx := c.Request().Context()
			user, err := store.GetByID(ctx, refreshClaims.UserID)
			if err != nil {
				return unauthorized(c)
			}

			accessValid := false
			if accessCookie, err := c.Cookie(AccessCookie); err == nil {
				if cl := codec.Decode(token.KindAccess, accessCookie.Value); cl != nil && cl.UserID == user.ID {
					accessValid = true
				}
			}

			if !accessValid {
				newAccess, err := codec.Issue(token.KindAccess, token.Claims{UserID: user.ID, Role: user.Role})
				if err != nil {
					return unauthorized(c)
				}
				newRefresh, err := codec.Issue(token.KindRefresh, token.Claims{UserID: user.ID})
				if err != nil {
					return unauthorized(c)
				}
				if err := store.SaveRefreshToken(ctx, user.ID, newRefresh); err != nil {
					return unauthorized(c)
				}
				SetSessionCookies(c, codec, newAccess, newRefresh, secure)
			}

			SetIdentity(c, Identity{ID: user.ID, Role: user.Role})
			return next(c)
		}
	}
}

// RequireAdmin rejects callers whose role is not ADMIN. It assumes
// Authenticate already ran and never appears on a route without it.
func RequireAdmin() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ident, ok := CurrentIdentity(c)
			if !ok || ident.Role != model.RoleAdmin {
				return c.JSON(http.StatusForbidden, echo.Map{"message": "Access denied"})
			}
			return next(c)
		}
	}
}

// SetSessionCookies writes both session cookies with max-ages matching the
// token lifetimes. Cookies are httpOnly always and Secure in production.
func SetSessionCookies(c echo.Context, codec *token.Codec, access, refresh string, secure bool) {
	c.SetCookie(sessionCookie(AccessCookie, access, codec.TTL(token.KindAccess), secure))
	c.SetCookie(sessionCookie(RefreshCookie, refresh, codec.TTL(token.KindRefresh), secure))
}

// ClearSessionCookies expires both session cookies.
func ClearSessionCookies(c echo.Context, secure bool) {
	c.SetCookie(sessionCookie(AccessCookie, "", -time.Second, secure))
	c.SetCookie(sessionCookie(RefreshCookie, "", -time.Second, secure))
}

func sessionCookie(name, value string, ttl time.Duration, secure bool) *http.Cookie {
	maxAge := int(ttl / time.Second)
	if value == "" {
		maxAge = -1
	}
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}
}

func unauthorized(c echo.Context) error {
	return c.JSON(http.StatusUnauthorized, echo.Map{"message": "Unauthorized"})
}
