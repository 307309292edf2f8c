package handlers

import (
	"errors"
	"log"

	"github.com/gofiber/fiber/v2"

	"github.com/example/kolzo/internal/config"
	"github.com/example/kolzo/internal/services"
)

// ErrorHandler renders every error as the standard response envelope.
// Business errors keep their status and message; anything unexpected becomes
// a 500 with a generic message outside development mode.
func ErrorHandler(cfg *config.Config) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		var fe *fiber.Error
		if errors.As(err, &fe) {
			return c.Status(fe.Code).JSON(fiber.Map{
				"success": false,
				"message": fe.Message,
			})
		}

		log.Printf("[HTTP] %s %s failed: %v", c.Method(), c.Path(), err)

		message := "internal server error"
		if cfg.Development() {
			message = err.Error()
		}

		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": message,
		})
	}
}

// serviceError translates order-service sentinel errors into HTTP errors.
func serviceError(err error) error {
	switch {
	case errors.Is(err, services.ErrValidation),
		errors.Is(err, services.ErrProductInactive),
		errors.Is(err, services.ErrInsufficientStock),
		errors.Is(err, services.ErrAlreadyCancelled),
		errors.Is(err, services.ErrCancellationClosed),
		errors.Is(err, services.ErrInvalidOrderStatus):
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	case errors.Is(err, services.ErrProductsUnavailable),
		errors.Is(err, services.ErrOrderNotFound):
		return fiber.NewError(fiber.StatusNotFound, err.Error())
	case errors.Is(err, services.ErrNotOrderOwner):
		return fiber.NewError(fiber.StatusForbidden, err.Error())
	}
	return err
}

func validationError(c *fiber.Ctx, errs []string) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"success": false,
		"message": "validation failed",
		"errors":  errs,
	})
}
