package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/hirelane/hirelane-backend/internal/service"
)

// currentUserID reads the user id the auth middleware stored on the
// request context. On failure the response is already written and the
// handler should return nil.
func currentUserID(c *fiber.Ctx) (uint, bool) {
	userIDRaw := c.Locals("userID")
	if userIDRaw == nil {
		_ = c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"success": false,
			"error":   "User not authenticated",
		})
		return 0, false
	}

	userID, ok := userIDRaw.(uint)
	if !ok {
		_ = c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "Invalid user ID format",
		})
		return 0, false
	}

	return userID, true
}

// statusForError maps service errors to HTTP statuses. Insufficient
// credits is 402 so the frontend can prompt a purchase; integrity
// violations are 409; unknown sessions 404; provider trouble 502.
func statusForError(err error) int {
	switch {
	case errors.Is(err, service.ErrInsufficientCredits):
		return fiber.StatusPaymentRequired
	case errors.Is(err, service.ErrPurchaseNotFound), errors.Is(err, service.ErrCreditNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, service.ErrCreditNotClaimed), errors.Is(err, service.ErrCreditAlreadyBound):
		return fiber.StatusConflict
	case errors.Is(err, service.ErrCheckoutProvider):
		return fiber.StatusBadGateway
	default:
		return fiber.StatusInternalServerError
	}
}
