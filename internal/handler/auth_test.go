package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"golang.org/x/crypto/bcrypt"

	"github.com/ImSudipBiswas/swiftcart/internal/config"
	"github.com/ImSudipBiswas/swiftcart/internal/middleware"
	"github.com/ImSudipBiswas/swiftcart/internal/model"
	"github.com/ImSudipBiswas/swiftcart/internal/token"
	"github.com/ImSudipBiswas/swiftcart/internal/utils"
)

func testCodec() *token.Codec {
	return &token.Codec{
		Access:            token.KindConfig{Secret: "access-secret", TTL: 15 * time.Minute},
		Refresh:           token.KindConfig{Secret: "refresh-secret", TTL: 7 * 24 * time.Hour},
		EmailVerification: token.KindConfig{Secret: "email-secret", TTL: 24 * time.Hour},
	}
}

func newAuthFixture() (*AuthHandler, *memUserStore, *stubMail, *stubUploader) {
	users := &memUserStore{}
	mail := &stubMail{}
	uploader := &stubUploader{}
	cfg := config.Config{BcryptCost: bcrypt.MinCost}
	return NewAuthHandler(cfg, users, testCodec(), uploader, mail), users, mail, uploader
}

func postForm(t *testing.T, path string, form url.Values) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func postJSON(t *testing.T, path, body string) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func message(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Message any `json:"message"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decoding %q: %v", rec.Body.String(), err)
	}
	if s, ok := body.Message.(string); ok {
		return s
	}
	raw, _ := json.Marshal(body.Message)
	return string(raw)
}

func signUpForm() url.Values {
	return url.Values{
		"name":     {"Jane Doe"},
		"username": {"Jane"},
		"email":    {"Jane@Example.com"},
		"password": {"secret1"},
	}
}

func TestSignUp(t *testing.T) {
	h, users, mail, _ := newAuthFixture()

	c, rec := postForm(t, "/api/auth/v1/sign-up", signUpForm())
	if err := h.SignUp(c); err != nil {
		t.Fatalf("SignUp: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d body = %s", rec.Code, rec.Body.String())
	}
	if got := message(t, rec); got != "Please check your email to continue" {
		t.Errorf("message = %q", got)
	}

	if len(users.users) != 1 {
		t.Fatalf("users stored = %d, want 1", len(users.users))
	}
	u := users.users[0]
	if u.Email != "jane@example.com" || u.Username != "jane" {
		t.Errorf("email/username not lowercased: %q %q", u.Email, u.Username)
	}
	if u.EmailVerified {
		t.Error("fresh account must start unverified")
	}
	if u.Role != model.RoleUser {
		t.Errorf("default role = %q, want USER", u.Role)
	}
	if u.EmailVerificationToken == nil {
		t.Fatal("verification token not stored")
	}

	if len(mail.events) != 1 {
		t.Fatalf("mail events = %d, want 1", len(mail.events))
	}
	ev := mail.events[0]
	if ev.Email != "jane@example.com" || ev.Token != *u.EmailVerificationToken {
		t.Errorf("event = %+v", ev)
	}
	if ev.Audience != "store" {
		t.Errorf("audience = %q, want store for USER sign-ups", ev.Audience)
	}
}

func TestSignUpAdminAudience(t *testing.T) {
	h, _, mail, _ := newAuthFixture()

	form := signUpForm()
	form.Set("role", "admin")
	c, rec := postForm(t, "/api/auth/v1/sign-up", form)
	if err := h.SignUp(c); err != nil {
		t.Fatalf("SignUp: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d body = %s", rec.Code, rec.Body.String())
	}
	if mail.events[0].Audience != "dashboard" {
		t.Errorf("audience = %q, want dashboard for ADMIN sign-ups", mail.events[0].Audience)
	}
}

func TestSignUpInvalidRole(t *testing.T) {
	h, users, _, _ := newAuthFixture()

	form := signUpForm()
	form.Set("role", "SUPERUSER")
	c, rec := postForm(t, "/api/auth/v1/sign-up", form)
	if err := h.SignUp(c); err != nil {
		t.Fatalf("SignUp: %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
	if len(users.users) != 0 {
		t.Error("user created despite invalid role")
	}
}

func TestSignUpTakenByVerifiedAccount(t *testing.T) {
	h, users, mail, _ := newAuthFixture()
	users.users = append(users.users, model.User{
		ID: "u1", Username: "jane", Email: "jane@example.com", EmailVerified: true,
	})

	c, rec := postForm(t, "/api/auth/v1/sign-up", signUpForm())
	if err := h.SignUp(c); err != nil {
		t.Fatalf("SignUp: %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
	if got := message(t, rec); got != "Email or username is already taken" {
		t.Errorf("message = %q", got)
	}
	if len(users.users) != 1 || len(mail.events) != 0 {
		t.Error("verified account must block the sign-up entirely")
	}
}

func TestSignUpReplacesUnverifiedAccount(t *testing.T) {
	h, users, mail, _ := newAuthFixture()
	stale := "stale-token"
	users.users = append(users.users, model.User{
		ID: "u1", Username: "jane", Email: "jane@example.com",
		EmailVerified: false, EmailVerificationToken: &stale,
	})

	c, rec := postForm(t, "/api/auth/v1/sign-up", signUpForm())
	if err := h.SignUp(c); err != nil {
		t.Fatalf("SignUp: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d body = %s", rec.Code, rec.Body.String())
	}
	if len(users.users) != 1 {
		t.Fatalf("users stored = %d, want the stale row replaced", len(users.users))
	}
	if users.users[0].ID == "u1" {
		t.Error("stale unverified account not replaced")
	}
	if len(mail.events) != 1 {
		t.Error("verification mail not re-sent")
	}
}

func TestSignUpPublishFailure(t *testing.T) {
	h, users, mail, _ := newAuthFixture()
	mail.publishErr = errors.New("broker unreachable")

	c, rec := postForm(t, "/api/auth/v1/sign-up", signUpForm())
	if err := h.SignUp(c); err != nil {
		t.Fatalf("SignUp: %v", err)
	}
	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", rec.Code)
	}
	if got := message(t, rec); got != "Failed to send verification mail" {
		t.Errorf("message = %q", got)
	}
	// The row is not rolled back; a later sign-up attempt replaces the
	// unverified reservation.
	if len(users.users) != 1 {
		t.Errorf("users stored = %d, want the unverified row kept", len(users.users))
	}
}

func TestSignUpLookupFailure(t *testing.T) {
	h, users, mail, _ := newAuthFixture()
	users.findErr = errors.New("connection reset")

	c, rec := postForm(t, "/api/auth/v1/sign-up", signUpForm())
	if err := h.SignUp(c); err != nil {
		t.Fatalf("SignUp: %v", err)
	}
	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", rec.Code)
	}
	if got := message(t, rec); got != "Failed to create user" {
		t.Errorf("message = %q", got)
	}
	if len(users.users) != 0 || len(mail.events) != 0 {
		t.Error("a failing duplicate check must not create a user or send mail")
	}
}

func TestVerifyEmail(t *testing.T) {
	h, users, _, _ := newAuthFixture()
	verification, _ := h.Codec.Issue(token.KindEmailVerification, token.Claims{Email: "jane@example.com"})
	users.users = append(users.users, model.User{
		ID: "u1", Email: "jane@example.com", Role: model.RoleUser,
		EmailVerificationToken: &verification,
	})

	c, rec := postJSON(t, "/api/auth/v1/verify-email/x", "")
	c.SetParamNames("token")
	c.SetParamValues(verification)
	if err := h.VerifyEmail(c); err != nil {
		t.Fatalf("VerifyEmail: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d body = %s", rec.Code, rec.Body.String())
	}
	if got := message(t, rec); got != "Signup successful" {
		t.Errorf("message = %q", got)
	}

	u := users.users[0]
	if !u.EmailVerified || u.EmailVerifiedAt == nil {
		t.Error("account not marked verified")
	}
	if u.EmailVerificationToken != nil {
		t.Error("verification token must be consumed")
	}
	if u.RefreshToken == nil {
		t.Fatal("first session refresh token not persisted")
	}

	cookies := map[string]*http.Cookie{}
	for _, ck := range rec.Result().Cookies() {
		cookies[ck.Name] = ck
	}
	rc, ok := cookies[middleware.RefreshCookie]
	if !ok {
		t.Fatal("refresh cookie not set")
	}
	if rc.Value != *u.RefreshToken {
		t.Error("refresh cookie and persisted token diverge")
	}
	if _, ok := cookies[middleware.AccessCookie]; !ok {
		t.Error("access cookie not set")
	}
}

func TestVerifyEmailRejections(t *testing.T) {
	h, users, _, _ := newAuthFixture()
	users.users = append(users.users, model.User{
		ID: "u1", Email: "done@example.com", EmailVerified: true,
	})

	orphan, _ := h.Codec.Issue(token.KindEmailVerification, token.Claims{Email: "nobody@example.com"})
	alreadyVerified, _ := h.Codec.Issue(token.KindEmailVerification, token.Claims{Email: "done@example.com"})

	tests := []struct {
		name    string
		raw     string
		wantMsg string
	}{
		{"garbage token", "not-a-jwt", "Invalid token"},
		{"token for unknown email", orphan, "Invalid token"},
		{"already verified", alreadyVerified, "Email is already verified"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, rec := postJSON(t, "/api/auth/v1/verify-email/x", "")
			c.SetParamNames("token")
			c.SetParamValues(tt.raw)
			if err := h.VerifyEmail(c); err != nil {
				t.Fatalf("VerifyEmail: %v", err)
			}
			if rec.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", rec.Code)
			}
			if got := message(t, rec); got != tt.wantMsg {
				t.Errorf("message = %q, want %q", got, tt.wantMsg)
			}
		})
	}
}

func TestSignIn(t *testing.T) {
	h, users, _, _ := newAuthFixture()
	hash, _ := utils.HashPassword("secret1", bcrypt.MinCost)
	users.users = append(users.users,
		model.User{ID: "u1", Email: "jane@example.com", PasswordHash: hash, Role: model.RoleUser, EmailVerified: true},
		model.User{ID: "u2", Email: "pending@example.com", PasswordHash: hash, EmailVerified: false},
	)

	t.Run("unknown email", func(t *testing.T) {
		c, rec := postJSON(t, "/api/auth/v1/sign-in", `{"email":"ghost@example.com","password":"secret1"}`)
		if err := h.SignIn(c); err != nil {
			t.Fatalf("SignIn: %v", err)
		}
		if rec.Code != http.StatusNotFound {
			t.Errorf("status = %d, want 404", rec.Code)
		}
		if got := message(t, rec); got != "User doesn't exist" {
			t.Errorf("message = %q", got)
		}
	})

	t.Run("unverified email gets the same generic miss", func(t *testing.T) {
		c, rec := postJSON(t, "/api/auth/v1/sign-in", `{"email":"pending@example.com","password":"secret1"}`)
		if err := h.SignIn(c); err != nil {
			t.Fatalf("SignIn: %v", err)
		}
		if rec.Code != http.StatusNotFound {
			t.Errorf("status = %d, want 404", rec.Code)
		}
		if got := message(t, rec); got != "User doesn't exist" {
			t.Errorf("message = %q", got)
		}
	})

	t.Run("wrong password", func(t *testing.T) {
		c, rec := postJSON(t, "/api/auth/v1/sign-in", `{"email":"jane@example.com","password":"wrong-pass"}`)
		if err := h.SignIn(c); err != nil {
			t.Fatalf("SignIn: %v", err)
		}
		if rec.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", rec.Code)
		}
		if got := message(t, rec); got != "Invalid credentials" {
			t.Errorf("message = %q", got)
		}
	})

	t.Run("success", func(t *testing.T) {
		c, rec := postJSON(t, "/api/auth/v1/sign-in", `{"email":"Jane@Example.com","password":"secret1"}`)
		if err := h.SignIn(c); err != nil {
			t.Fatalf("SignIn: %v", err)
		}
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d body = %s", rec.Code, rec.Body.String())
		}

		u, _ := users.GetByID(context.Background(), "u1")
		if u.RefreshToken == nil {
			t.Fatal("refresh token not persisted on sign-in")
		}

		cookies := map[string]*http.Cookie{}
		for _, ck := range rec.Result().Cookies() {
			cookies[ck.Name] = ck
		}
		ac := cookies[middleware.AccessCookie]
		rc := cookies[middleware.RefreshCookie]
		if ac == nil || rc == nil {
			t.Fatal("session cookies not set")
		}
		if ac.MaxAge != 900 || rc.MaxAge != 604800 {
			t.Errorf("cookie max-ages = %d/%d, want 900/604800", ac.MaxAge, rc.MaxAge)
		}
		if !ac.HttpOnly || !rc.HttpOnly {
			t.Error("session cookies must be httpOnly")
		}
		if rc.Value != *u.RefreshToken {
			t.Error("refresh cookie and persisted token diverge")
		}
	})
}

func TestSignOut(t *testing.T) {
	h, users, _, _ := newAuthFixture()
	tok := "live-refresh"
	users.users = append(users.users, model.User{ID: "u1", RefreshToken: &tok})

	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/api/auth/v1/sign-out", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	middleware.SetIdentity(c, middleware.Identity{ID: "u1", Role: model.RoleUser})

	if err := h.SignOut(c); err != nil {
		t.Fatalf("SignOut: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d body = %s", rec.Code, rec.Body.String())
	}
	if users.users[0].RefreshToken != nil {
		t.Error("stored refresh token not cleared")
	}
	for _, ck := range rec.Result().Cookies() {
		if ck.MaxAge != -1 {
			t.Errorf("cookie %s max-age = %d, want -1", ck.Name, ck.MaxAge)
		}
	}
}
