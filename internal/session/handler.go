package session

import (
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/vidstream/vidstream/internal/apperr"
	"github.com/vidstream/vidstream/internal/respond"
	"github.com/vidstream/vidstream/internal/user"
)

// Cookie channels for the two credentials. Both are HTTP-only and secure:
// page scripts cannot read them and they ride only encrypted transport.
const (
	AccessTokenCookie  = "accessToken"
	RefreshTokenCookie = "refreshToken"
)

// Handler exposes session endpoints: login, refresh, logout and password
// change.
type Handler struct {
	svc    *Service
	issuer *Issuer
}

// NewHandler constructs a session HTTP handler.
func NewHandler(svc *Service, issuer *Issuer) *Handler {
	return &Handler{svc: svc, issuer: issuer}
}

type loginRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login verifies credentials, sets the token cookies and returns the
// redacted user plus both tokens in the body for non-cookie clients.
func (h *Handler) Login(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return apperr.New(apperr.Validation, "invalid request body")
	}

	profile, pair, err := h.svc.Login(c.UserContext(), LoginInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		return err
	}

	h.setTokenCookies(c, pair)
	return respond.JSON(c, http.StatusOK, fiber.Map{
		"user":         profile,
		"accessToken":  pair.AccessToken,
		"refreshToken": pair.RefreshToken,
	}, "user logged in successfully")
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

// Refresh rotates the refresh token. The incoming token is read from the
// cookie channel, falling back to the request body.
func (h *Handler) Refresh(c *fiber.Ctx) error {
	presented := c.Cookies(RefreshTokenCookie)
	if presented == "" {
		var req refreshRequest
		if err := c.BodyParser(&req); err == nil {
			presented = req.RefreshToken
		}
	}
	if presented == "" {
		return apperr.New(apperr.Unauthorized, "refresh token is required")
	}

	pair, err := h.svc.Refresh(c.UserContext(), presented)
	if err != nil {
		return err
	}

	h.setTokenCookies(c, pair)
	return respond.JSON(c, http.StatusOK, pair, "access token refreshed")
}

// Logout invalidates the server-side session and expires both cookies.
func (h *Handler) Logout(c *fiber.Ctx) error {
	profile, ok := user.CurrentProfile(c)
	if !ok {
		return apperr.New(apperr.Unauthorized, "authentication required")
	}

	if err := h.svc.Logout(c.UserContext(), profile.ID); err != nil {
		return err
	}

	clearCookie(c, AccessTokenCookie)
	clearCookie(c, RefreshTokenCookie)
	return respond.JSON(c, http.StatusOK, nil, "user logged out")
}

type changePasswordRequest struct {
	OldPassword string `json:"oldPassword"`
	NewPassword string `json:"newPassword"`
}

// ChangePassword rotates the authenticated user's password.
func (h *Handler) ChangePassword(c *fiber.Ctx) error {
	profile, ok := user.CurrentProfile(c)
	if !ok {
		return apperr.New(apperr.Unauthorized, "authentication required")
	}

	var req changePasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return apperr.New(apperr.Validation, "invalid request body")
	}

	if err := h.svc.ChangePassword(c.UserContext(), profile.ID, req.OldPassword, req.NewPassword); err != nil {
		return err
	}
	return respond.JSON(c, http.StatusOK, nil, "password changed successfully")
}

func (h *Handler) setTokenCookies(c *fiber.Ctx, pair TokenPair) {
	setCookie(c, AccessTokenCookie, pair.AccessToken, h.issuer.AccessTTL())
	setCookie(c, RefreshTokenCookie, pair.RefreshToken, h.issuer.RefreshTTL())
}

func setCookie(c *fiber.Ctx, name, value string, ttl time.Duration) {
	c.Cookie(&fiber.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		Expires:  time.Now().Add(ttl),
		HTTPOnly: true,
		Secure:   true,
		SameSite: fiber.CookieSameSiteStrictMode,
	})
}

func clearCookie(c *fiber.Ctx, name string) {
	c.Cookie(&fiber.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		Expires:  time.Now().Add(-time.Hour),
		HTTPOnly: true,
		Secure:   true,
		SameSite: fiber.CookieSameSiteStrictMode,
	})
}
