package user

import (
	"context"
	"mime/multipart"
	"net/http"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/vidstream/vidstream/internal/apperr"
	"github.com/vidstream/vidstream/internal/respond"
)

// LocalsKey is where the identity resolver stashes the authenticated
// profile for downstream handlers.
const LocalsKey = "currentUser"

// CurrentProfile returns the authenticated profile resolved for this
// request, if any.
func CurrentProfile(c *fiber.Ctx) (Profile, bool) {
	p, ok := c.Locals(LocalsKey).(Profile)
	return p, ok
}

// Handler exposes account endpoints.
type Handler struct {
	service *Service
}

// NewHandler constructs a user HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Register handles account creation from a multipart form carrying the
// profile fields plus an avatar file and an optional cover image.
func (h *Handler) Register(c *fiber.Ctx) error {
	in := RegisterInput{
		Username: c.FormValue("username"),
		Email:    c.FormValue("email"),
		FullName: c.FormValue("fullName"),
		Password: c.FormValue("password"),
	}

	avatar, closeAvatar, err := formUpload(c, "avatar")
	if err != nil {
		return err
	}
	if avatar != nil {
		defer closeAvatar()
		in.Avatar = avatar
	}

	cover, closeCover, err := formUpload(c, "coverImage")
	if err != nil {
		return err
	}
	if cover != nil {
		defer closeCover()
		in.CoverImage = cover
	}

	profile, err := h.service.Register(c.UserContext(), in)
	if err != nil {
		return err
	}
	return respond.JSON(c, http.StatusCreated, profile, "user registered successfully")
}

// CurrentUser returns the identity resolved for this request.
func (h *Handler) CurrentUser(c *fiber.Ctx) error {
	profile, ok := CurrentProfile(c)
	if !ok {
		return apperr.New(apperr.Unauthorized, "authentication required")
	}
	return respond.JSON(c, http.StatusOK, profile, "current user fetched")
}

// UpdateAvatar replaces the authenticated user's avatar.
func (h *Handler) UpdateAvatar(c *fiber.Ctx) error {
	return h.updateImage(c, "avatar", h.service.UpdateAvatar)
}

// UpdateCoverImage replaces the authenticated user's cover image.
func (h *Handler) UpdateCoverImage(c *fiber.Ctx) error {
	return h.updateImage(c, "coverImage", h.service.UpdateCoverImage)
}

func (h *Handler) updateImage(c *fiber.Ctx, field string, update func(context.Context, uuid.UUID, *Upload) (Profile, error)) error {
	profile, ok := CurrentProfile(c)
	if !ok {
		return apperr.New(apperr.Unauthorized, "authentication required")
	}

	file, closeFile, err := formUpload(c, field)
	if err != nil {
		return err
	}
	if file == nil {
		return apperr.New(apperr.Validation, field+" file is required")
	}
	defer closeFile()

	updated, err := update(c.UserContext(), profile.ID, file)
	if err != nil {
		return err
	}
	return respond.JSON(c, http.StatusOK, updated, field+" updated successfully")
}

// formUpload opens the named multipart file if present. A missing file is
// not an error here; required-ness is decided by the service.
func formUpload(c *fiber.Ctx, field string) (*Upload, func(), error) {
	header, err := c.FormFile(field)
	if err != nil {
		return nil, nil, nil
	}
	f, err := header.Open()
	if err != nil {
		return nil, nil, apperr.Wrap(apperr.Validation, "could not read "+field+" file", err)
	}
	return &Upload{
		Filename:    header.Filename,
		ContentType: contentType(header),
		Size:        header.Size,
		Reader:      f,
	}, func() { f.Close() }, nil
}

func contentType(header *multipart.FileHeader) string {
	if ct := header.Header.Get(fiber.HeaderContentType); ct != "" {
		return ct
	}
	return fiber.MIMEOctetStream
}
