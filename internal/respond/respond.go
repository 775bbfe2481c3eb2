package respond

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/vidstream/vidstream/internal/apperr"
)

// Envelope is the uniform response shape for every API operation.
type Envelope struct {
	StatusCode int    `json:"statusCode"`
	Data       any    `json:"data"`
	Message    string `json:"message"`
	Success    bool   `json:"success"`
}

// JSON writes a success envelope with the given status, payload and message.
func JSON(c *fiber.Ctx, status int, data any, message string) error {
	return c.Status(status).JSON(Envelope{
		StatusCode: status,
		Data:       data,
		Message:    message,
		Success:    status < 400,
	})
}

// ErrorHandler converts errors bubbling out of handlers into the envelope.
// Application errors keep their kind's status and message; fiber errors keep
// their status; everything else is reported as an internal error without
// leaking the underlying cause.
func ErrorHandler(c *fiber.Ctx, err error) error {
	var appErr *apperr.Error
	if errors.As(err, &appErr) {
		return JSON(c, apperr.HTTPStatus(appErr.Kind), nil, appErr.Message)
	}

	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		return JSON(c, fiberErr.Code, nil, fiberErr.Message)
	}

	return JSON(c, fiber.StatusInternalServerError, nil, "internal server error")
}
