package server

import (
	"errors"

	"github.com/Rana718/transit-studio/internal/database"
	"github.com/Rana718/transit-studio/internal/types"
	"github.com/gofiber/fiber/v2"
)

func jsonError(c *fiber.Ctx, status int, detail string) error {
	return c.Status(status).JSON(types.ErrorResponse{Detail: detail})
}

// statusFor maps service errors onto HTTP statuses.
func statusFor(err error) int {
	switch {
	case errors.Is(err, database.ErrNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, database.ErrInvalidIdentifier),
		errors.Is(err, database.ErrNoPrimaryKey),
		errors.Is(err, errEmptyPayload):
		return fiber.StatusBadRequest
	default:
		return fiber.StatusInternalServerError
	}
}

func failure(c *fiber.Ctx, err error) error {
	return jsonError(c, statusFor(err), err.Error())
}
