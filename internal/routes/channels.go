package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/vidstream/vidstream/internal/channel"
)

// RegisterChannelRoutes wires the channel read path and subscription
// endpoints, all behind the identity resolver.
func RegisterChannelRoutes(r fiber.Router, channels *channel.Handler, authenticate fiber.Handler) {
	group := r.Group("/channels", authenticate)

	group.Get("/:username", channels.Profile)
	group.Post("/:username/subscribe", channels.Subscribe)
	group.Delete("/:username/subscribe", channels.Unsubscribe)
}
