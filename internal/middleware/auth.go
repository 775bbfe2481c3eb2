package middleware

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/vidstream/vidstream/internal/apperr"
	"github.com/vidstream/vidstream/internal/session"
	"github.com/vidstream/vidstream/internal/user"
)

// One message for every resolver failure. Expired and malformed tokens must
// be indistinguishable to the caller.
const msgUnauthorized = "invalid or missing access token"

// Authenticate is the per-request identity resolver: it pulls the access
// token from the cookie or the Authorization header, verifies it, loads the
// subject's redacted profile and exposes it to downstream handlers. Any
// failure short-circuits with 401 before the protected operation runs.
func Authenticate(issuer *session.Issuer, repo user.Repository) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := c.Cookies(session.AccessTokenCookie)
		if token == "" {
			token = bearerToken(c.Get(fiber.HeaderAuthorization))
		}
		if token == "" {
			return apperr.New(apperr.Unauthorized, msgUnauthorized)
		}

		subject, err := issuer.Verify(token, session.KindAccess)
		if err != nil {
			return apperr.New(apperr.Unauthorized, msgUnauthorized)
		}

		u, err := repo.FindByID(c.UserContext(), subject)
		if errors.Is(err, user.ErrNotFound) {
			return apperr.New(apperr.Unauthorized, msgUnauthorized)
		}
		if err != nil {
			return apperr.Wrap(apperr.Internal, "could not load user", err)
		}

		c.Locals(user.LocalsKey, u.Profile())
		return c.Next()
	}
}

func bearerToken(header string) string {
	const prefix = "bearer "
	if len(header) > len(prefix) && strings.EqualFold(header[:len(prefix)], prefix) {
		return strings.TrimSpace(header[len(prefix):])
	}
	return ""
}
