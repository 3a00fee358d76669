package handler

import (
	"encoding/json"

	"github.com/gofiber/fiber/v2"
	"github.com/hirelane/hirelane-backend/internal/catalog"
	"github.com/hirelane/hirelane-backend/internal/models"
	"github.com/hirelane/hirelane-backend/internal/service"
	"github.com/hirelane/hirelane-backend/pkg/utils"
	"github.com/stripe/stripe-go/v74"
	"github.com/stripe/stripe-go/v74/webhook"
	"go.uber.org/zap"
)

type PurchaseHandler struct {
	checkoutService    *service.CheckoutService
	fulfillmentService *service.FulfillmentService
	historyService     *service.HistoryService
	validator          *utils.Validator
	webhookSecret      string
	logger             *zap.Logger
}

func NewPurchaseHandler(
	checkoutService *service.CheckoutService,
	fulfillmentService *service.FulfillmentService,
	historyService *service.HistoryService,
	validator *utils.Validator,
	webhookSecret string,
	logger *zap.Logger,
) *PurchaseHandler {
	return &PurchaseHandler{
		checkoutService:    checkoutService,
		fulfillmentService: fulfillmentService,
		historyService:     historyService,
		validator:          validator,
		webhookSecret:      webhookSecret,
		logger:             logger,
	}
}

func (h *PurchaseHandler) CreateCheckout(c *fiber.Ctx) error {
	userID, ok := currentUserID(c)
	if !ok {
		return nil
	}

	var req models.CreateCheckoutRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse("Invalid request body"))
	}
	if err := h.validator.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse(err.Error()))
	}

	session, err := h.checkoutService.StartCheckout(c.Context(), userID, req.Tier, req.Addons)
	if err != nil {
		if service.IsValidationError(err) {
			return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse(err.Error()))
		}
		return c.Status(statusForError(err)).JSON(models.ErrorResponse(err.Error()))
	}

	return c.JSON(models.SuccessResponse(session, "Checkout session created"))
}

func (h *PurchaseHandler) HandleStripeWebhook(c *fiber.Ctx) error {
	payload := c.Body()
	signatureHeader := c.Get("Stripe-Signature")

	event, err := webhook.ConstructEventWithOptions(payload, signatureHeader, h.webhookSecret,
		webhook.ConstructEventOptions{
			IgnoreAPIVersionMismatch: true,
		})
	if err != nil {
		h.logger.Warn("webhook signature rejected", zap.Error(err))
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse("Invalid webhook signature"))
	}

	var outcome service.FulfillmentOutcome
	switch event.Type {
	case "checkout.session.completed":
		outcome = service.OutcomeSuccess
	case "checkout.session.expired", "checkout.session.async_payment_failed":
		outcome = service.OutcomeFailure
	default:
		return c.SendStatus(fiber.StatusOK)
	}

	var session stripe.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &session); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse("Malformed event payload"))
	}

	buyerEmail := session.CustomerEmail
	if session.CustomerDetails != nil && session.CustomerDetails.Email != "" {
		buyerEmail = session.CustomerDetails.Email
	}

	if _, err := h.fulfillmentService.Fulfill(session.ID, outcome, buyerEmail); err != nil {
		return c.Status(statusForError(err)).JSON(models.ErrorResponse(err.Error()))
	}

	return c.SendStatus(fiber.StatusOK)
}

func (h *PurchaseHandler) GetPackages(c *fiber.Ctx) error {
	return c.JSON(models.SuccessResponse(catalog.Packages(), ""))
}

func (h *PurchaseHandler) GetPurchaseHistory(c *fiber.Ctx) error {
	userID, ok := currentUserID(c)
	if !ok {
		return nil
	}

	purchases, err := h.historyService.ListPurchases(userID)
	if err != nil {
		return c.Status(statusForError(err)).JSON(models.ErrorResponse(err.Error()))
	}

	return c.JSON(models.SuccessResponse(purchases, ""))
}
