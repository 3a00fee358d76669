package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/hirelane/hirelane-backend/internal/models"
	"github.com/hirelane/hirelane-backend/internal/service"
	"github.com/hirelane/hirelane-backend/pkg/utils"
)

type CreditHandler struct {
	creditService  *service.CreditService
	historyService *service.HistoryService
	validator      *utils.Validator
}

func NewCreditHandler(creditService *service.CreditService, historyService *service.HistoryService, validator *utils.Validator) *CreditHandler {
	return &CreditHandler{
		creditService:  creditService,
		historyService: historyService,
		validator:      validator,
	}
}

func (h *CreditHandler) ClaimCredit(c *fiber.Ctx) error {
	userID, ok := currentUserID(c)
	if !ok {
		return nil
	}

	var req models.ClaimCreditRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse("Invalid request body"))
	}
	if err := h.validator.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse(err.Error()))
	}

	creditType := models.CreditType(req.Type)
	if !models.ValidCreditType(creditType) {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse("Unknown credit type"))
	}

	credit, err := h.creditService.ClaimForJob(userID, creditType, req.JobID)
	if err != nil {
		return c.Status(statusForError(err)).JSON(models.ErrorResponse(err.Error()))
	}

	return c.JSON(models.SuccessResponse(credit, "Credit claimed"))
}

func (h *CreditHandler) ListCredits(c *fiber.Ctx) error {
	userID, ok := currentUserID(c)
	if !ok {
		return nil
	}

	credits, err := h.historyService.ListCredits(userID)
	if err != nil {
		return c.Status(statusForError(err)).JSON(models.ErrorResponse(err.Error()))
	}

	return c.JSON(models.SuccessResponse(credits, ""))
}

func (h *CreditHandler) GetStats(c *fiber.Ctx) error {
	userID, ok := currentUserID(c)
	if !ok {
		return nil
	}

	stats, err := h.historyService.GetStats(userID)
	if err != nil {
		return c.Status(statusForError(err)).JSON(models.ErrorResponse(err.Error()))
	}

	return c.JSON(models.SuccessResponse(stats, ""))
}

// GetHistory bundles purchases, credits and stats for the billing page.
func (h *CreditHandler) GetHistory(c *fiber.Ctx) error {
	userID, ok := currentUserID(c)
	if !ok {
		return nil
	}

	purchases, err := h.historyService.ListPurchases(userID)
	if err != nil {
		return c.Status(statusForError(err)).JSON(models.ErrorResponse(err.Error()))
	}
	credits, err := h.historyService.ListCredits(userID)
	if err != nil {
		return c.Status(statusForError(err)).JSON(models.ErrorResponse(err.Error()))
	}
	stats, err := h.historyService.GetStats(userID)
	if err != nil {
		return c.Status(statusForError(err)).JSON(models.ErrorResponse(err.Error()))
	}

	return c.JSON(models.SuccessResponse(fiber.Map{
		"purchases": purchases,
		"credits":   credits,
		"stats":     stats,
	}, ""))
}

// NormalizeCreditTypes is the admin-only bulk conversion of legacy typed
// credits into universal ones.
func (h *CreditHandler) NormalizeCreditTypes(c *fiber.Ctx) error {
	var req struct {
		UserID *uint `json:"user_id"`
	}
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse("Invalid request body"))
		}
	}

	converted, err := h.creditService.NormalizeCreditTypes(req.UserID)
	if err != nil {
		return c.Status(statusForError(err)).JSON(models.ErrorResponse(err.Error()))
	}

	return c.JSON(models.SuccessResponse(fiber.Map{"converted": converted}, "Credit types normalized"))
}
