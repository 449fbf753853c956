package server

import (
	"time"

	"github.com/Rana718/transit-studio/internal/logging"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

const requestIDHeader = "X-Request-ID"

// requestLogger tags every request with an id and logs its outcome.
func requestLogger() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		requestID := c.Get(requestIDHeader)
		if requestID == "" {
			requestID = uuid.New().String()
		}
		c.Set(requestIDHeader, requestID)
		ctx := logging.WithRequestID(c.UserContext(), requestID)
		c.SetUserContext(ctx)

		err := c.Next()

		status := c.Response().StatusCode()
		attrs := []any{
			"method", c.Method(),
			"path", c.Path(),
			"status", status,
			"duration", time.Since(start),
		}
		if status >= fiber.StatusInternalServerError {
			logging.ErrorContext(ctx, "request failed", attrs...)
		} else {
			logging.InfoContext(ctx, "request", attrs...)
		}
		return err
	}
}
