package server

import (
	"log/slog"

	"ripple/internal/middleware"
	"ripple/internal/models"

	"github.com/gofiber/fiber/v2"
)

// respondServiceError maps a service-layer error onto the standard JSON
// error envelope with the status derived from its error code. Internal
// errors are logged with their cause; the client only sees the generic
// message.
func (s *Server) respondServiceError(c *fiber.Ctx, err error) error {
	status := models.StatusForError(err)
	if status == fiber.StatusInternalServerError {
		middleware.Logger.ErrorContext(c.UserContext(), "internal error",
			slog.String("method", c.Method()),
			slog.String("path", c.Path()),
			slog.String("error", err.Error()),
		)
	}
	return models.RespondWithError(c, status, err)
}
