package channel

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/vidstream/vidstream/internal/apperr"
	"github.com/vidstream/vidstream/internal/respond"
	"github.com/vidstream/vidstream/internal/user"
)

// Handler exposes channel endpoints.
type Handler struct {
	service *Service
}

// NewHandler constructs a channel HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Profile returns the channel page for the username in the path.
func (h *Handler) Profile(c *fiber.Ctx) error {
	viewer, ok := user.CurrentProfile(c)
	if !ok {
		return apperr.New(apperr.Unauthorized, "authentication required")
	}
	profile, err := h.service.Profile(c.UserContext(), c.Params("username"), viewer.ID)
	if err != nil {
		return err
	}
	return respond.JSON(c, http.StatusOK, profile, "channel profile fetched")
}

// Subscribe subscribes the viewer to the channel in the path.
func (h *Handler) Subscribe(c *fiber.Ctx) error {
	viewer, ok := user.CurrentProfile(c)
	if !ok {
		return apperr.New(apperr.Unauthorized, "authentication required")
	}
	if err := h.service.Subscribe(c.UserContext(), viewer.ID, c.Params("username")); err != nil {
		return err
	}
	return respond.JSON(c, http.StatusOK, nil, "subscribed")
}

// Unsubscribe removes the viewer's subscription to the channel in the path.
func (h *Handler) Unsubscribe(c *fiber.Ctx) error {
	viewer, ok := user.CurrentProfile(c)
	if !ok {
		return apperr.New(apperr.Unauthorized, "authentication required")
	}
	if err := h.service.Unsubscribe(c.UserContext(), viewer.ID, c.Params("username")); err != nil {
		return err
	}
	return respond.JSON(c, http.StatusOK, nil, "unsubscribed")
}
