package service

import (
	"errors"
	"time"

	"github.com/hirelane/hirelane-backend/internal/models"
	"github.com/hirelane/hirelane-backend/internal/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type FulfillmentOutcome string

const (
	OutcomeSuccess FulfillmentOutcome = "success"
	OutcomeFailure FulfillmentOutcome = "failure"
)

// ReceiptSender delivers the post-purchase receipt. Nil disables receipts.
type ReceiptSender interface {
	SendPurchaseReceipt(email string, purchase *models.Purchase) error
}

type FulfillmentService struct {
	db       *gorm.DB
	receipts ReceiptSender
	logger   *zap.Logger
}

func NewFulfillmentService(db *gorm.DB, receipts ReceiptSender, logger *zap.Logger) *FulfillmentService {
	return &FulfillmentService{
		db:       db,
		receipts: receipts,
		logger:   logger,
	}
}

// Fulfill processes a payment notification for the session. Safe under
// at-least-once delivery: the pending -> completed transition is a
// conditional update, and only the call that wins it creates credits.
// Credit creation happens in the same transaction, so partial issuance is
// never observable. Replays return AlreadyProcessed instead of an error.
func (s *FulfillmentService) Fulfill(sessionID string, outcome FulfillmentOutcome, buyerEmail string) (*models.FulfillmentResult, error) {
	var result models.FulfillmentResult

	err := s.db.Transaction(func(tx *gorm.DB) error {
		purchaseRepo := repository.NewPurchaseRepository(tx)
		creditRepo := repository.NewCreditRepository(tx)

		purchase, err := purchaseRepo.GetBySessionID(sessionID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrPurchaseNotFound
		}
		if err != nil {
			return err
		}

		if outcome == OutcomeFailure {
			changed, err := purchaseRepo.FailIfPending(purchase.ID)
			if err != nil {
				return err
			}
			purchase, err = purchaseRepo.GetByID(purchase.ID)
			if err != nil {
				return err
			}
			result = models.FulfillmentResult{
				Purchase:         purchase,
				AlreadyProcessed: !changed,
			}
			return nil
		}

		now := time.Now().UTC()
		won, err := purchaseRepo.CompleteIfPending(purchase.ID, now)
		if err != nil {
			return err
		}
		purchase, err = purchaseRepo.GetByID(purchase.ID)
		if err != nil {
			return err
		}
		if !won {
			result = models.FulfillmentResult{
				Purchase:         purchase,
				AlreadyProcessed: true,
			}
			return nil
		}

		credits := buildCredits(purchase)
		if err := creditRepo.CreateBatch(credits); err != nil {
			return err
		}

		result = models.FulfillmentResult{
			Purchase:      purchase,
			CreditsIssued: len(credits),
		}
		return nil
	})
	if errors.Is(err, ErrPurchaseNotFound) {
		s.logger.Error("fulfillment for unknown session",
			zap.String("session_id", sessionID),
		)
		return nil, err
	}
	if err != nil {
		return nil, err
	}

	if result.AlreadyProcessed {
		s.logger.Debug("fulfillment replayed",
			zap.String("session_id", sessionID),
			zap.Uint("purchase_id", result.Purchase.ID),
			zap.String("status", string(result.Purchase.Status)),
		)
		return &result, nil
	}

	s.logger.Info("purchase fulfilled",
		zap.String("session_id", sessionID),
		zap.Uint("purchase_id", result.Purchase.ID),
		zap.Uint("user_id", result.Purchase.UserID),
		zap.String("outcome", string(outcome)),
		zap.Int("credits_issued", result.CreditsIssued),
	)

	// Receipt goes out after the transaction committed; a delivery
	// failure must not undo fulfillment.
	if outcome == OutcomeSuccess && s.receipts != nil && buyerEmail != "" {
		if err := s.receipts.SendPurchaseReceipt(buyerEmail, result.Purchase); err != nil {
			s.logger.Warn("receipt email failed",
				zap.Uint("purchase_id", result.Purchase.ID),
				zap.Error(err),
			)
		}
	}

	return &result, nil
}

// buildCredits expands the grant captured on the purchase into credit
// rows. Every credit inherits the purchase-level expiry horizon.
func buildCredits(purchase *models.Purchase) []models.Credit {
	expiresAt := purchase.ExpiresAt
	credits := make([]models.Credit, 0, purchase.TotalCredits())
	appendType := func(creditType models.CreditType, count int) {
		for i := 0; i < count; i++ {
			credits = append(credits, models.Credit{
				PurchaseID: purchase.ID,
				UserID:     purchase.UserID,
				Type:       creditType,
				ExpiresAt:  &expiresAt,
			})
		}
	}
	appendType(models.CreditTypeJobPost, purchase.JobPostCredits)
	appendType(models.CreditTypeFeaturedPost, purchase.FeaturedPostCredits)
	appendType(models.CreditTypeSocialGraphic, purchase.SocialGraphicCredits)
	appendType(models.CreditTypeRepost, purchase.RepostCredits)
	return credits
}
