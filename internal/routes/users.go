package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/vidstream/vidstream/internal/session"
	"github.com/vidstream/vidstream/internal/user"
)

// RegisterUserRoutes wires account and session endpoints. Registration,
// login and refresh are public; everything else sits behind the identity
// resolver.
func RegisterUserRoutes(r fiber.Router, users *user.Handler, sessions *session.Handler, authenticate fiber.Handler) {
	group := r.Group("/users")

	group.Post("/register", users.Register)
	group.Post("/login", sessions.Login)
	group.Post("/refresh-token", sessions.Refresh)

	group.Post("/logout", authenticate, sessions.Logout)
	group.Post("/change-password", authenticate, sessions.ChangePassword)
	group.Get("/current-user", authenticate, users.CurrentUser)
	group.Patch("/avatar", authenticate, users.UpdateAvatar)
	group.Patch("/cover-image", authenticate, users.UpdateCoverImage)
}
