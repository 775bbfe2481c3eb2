package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/vidstream/vidstream/internal/config"
	"github.com/vidstream/vidstream/internal/respond"
	"github.com/vidstream/vidstream/internal/session"
	"github.com/vidstream/vidstream/internal/user"
)

func setupAuthApp(t *testing.T, accessTTL time.Duration) (*fiber.App, *session.Issuer, user.User) {
	t.Helper()

	issuer := session.NewIssuer(config.Config{
		AccessTokenSecret:  "access-secret",
		AccessTokenTTL:     accessTTL,
		RefreshTokenSecret: "refresh-secret",
		RefreshTokenTTL:    time.Hour,
	})

	repo := user.NewMemoryRepository()
	hash, err := user.HashPassword("p@ss1")
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	u := user.User{
		ID:           uuid.New(),
		Username:     "alice",
		Email:        "a@x.com",
		FullName:     "Alice A",
		PasswordHash: hash,
		AvatarURL:    "memory://avatar",
	}
	if err := repo.Create(context.Background(), u); err != nil {
		t.Fatalf("seed user: %v", err)
	}

	app := fiber.New(fiber.Config{ErrorHandler: respond.ErrorHandler})
	app.Get("/protected", Authenticate(issuer, repo), func(c *fiber.Ctx) error {
		profile, ok := user.CurrentProfile(c)
		if !ok {
			t.Fatalf("identity missing after resolver")
		}
		return c.JSON(fiber.Map{"username": profile.Username})
	})

	return app, issuer, u
}

func TestAuthenticateWithCookie(t *testing.T) {
	app, issuer, u := setupAuthApp(t, time.Minute)

	token, err := issuer.IssueAccess(u.ID)
	if err != nil {
		t.Fatalf("issue access: %v", err)
	}

	req := httptest.NewRequest(fiber.MethodGet, "/protected", nil)
	req.AddCookie(&http.Cookie{Name: session.AccessTokenCookie, Value: token})

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
}

func TestAuthenticateWithBearerHeader(t *testing.T) {
	app, issuer, u := setupAuthApp(t, time.Minute)

	token, err := issuer.IssueAccess(u.ID)
	if err != nil {
		t.Fatalf("issue access: %v", err)
	}

	req := httptest.NewRequest(fiber.MethodGet, "/protected", nil)
	req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
}

func TestAuthenticateMissingToken(t *testing.T) {
	app, _, _ := setupAuthApp(t, time.Minute)

	resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/protected", nil))
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.StatusCode)
	}
}

func TestAuthenticateRejectsExpiredAndMalformedAlike(t *testing.T) {
	app, issuer, u := setupAuthApp(t, -time.Minute)

	expired, err := issuer.IssueAccess(u.ID)
	if err != nil {
		t.Fatalf("issue access: %v", err)
	}

	for name, token := range map[string]string{"expired": expired, "malformed": "garbage"} {
		req := httptest.NewRequest(fiber.MethodGet, "/protected", nil)
		req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
		resp, err := app.Test(req)
		if err != nil {
			t.Fatalf("%s: app.Test: %v", name, err)
		}
		if resp.StatusCode != http.StatusUnauthorized {
			t.Fatalf("%s: expected 401, got %d", name, resp.StatusCode)
		}
	}
}

func TestAuthenticateRejectsRefreshTokenAsAccess(t *testing.T) {
	app, issuer, u := setupAuthApp(t, time.Minute)

	refresh, err := issuer.IssueRefresh(u.ID)
	if err != nil {
		t.Fatalf("issue refresh: %v", err)
	}

	req := httptest.NewRequest(fiber.MethodGet, "/protected", nil)
	req.Header.Set(fiber.HeaderAuthorization, "Bearer "+refresh)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.StatusCode)
	}
}

func TestAuthenticateRejectsDeletedUser(t *testing.T) {
	app, issuer, _ := setupAuthApp(t, time.Minute)

	token, err := issuer.IssueAccess(uuid.New())
	if err != nil {
		t.Fatalf("issue access: %v", err)
	}

	req := httptest.NewRequest(fiber.MethodGet, "/protected", nil)
	req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.StatusCode)
	}
}
