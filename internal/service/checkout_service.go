package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/hirelane/hirelane-backend/internal/catalog"
	"github.com/hirelane/hirelane-backend/internal/models"
	"github.com/hirelane/hirelane-backend/internal/repository"
	"github.com/hirelane/hirelane-backend/pkg/payment"
	"go.uber.org/zap"
)

type CheckoutService struct {
	provider        payment.CheckoutProvider
	purchaseRepo    *repository.PurchaseRepository
	logger          *zap.Logger
	creditTTL       time.Duration
	providerTimeout time.Duration
}

func NewCheckoutService(provider payment.CheckoutProvider, purchaseRepo *repository.PurchaseRepository, logger *zap.Logger, creditTTL time.Duration) *CheckoutService {
	return &CheckoutService{
		provider:        provider,
		purchaseRepo:    purchaseRepo,
		logger:          logger,
		creditTTL:       creditTTL,
		providerTimeout: 15 * time.Second,
	}
}

// StartCheckout resolves the catalog bundle, opens a provider session and
// persists the pending purchase. The provider call happens before any row
// is written: on provider failure nothing is left behind, and once the
// caller has a redirect URL the purchase row already exists for the
// fulfillment notification to find.
func (s *CheckoutService) StartCheckout(ctx context.Context, userID uint, tier string, addons []string) (*models.CheckoutSession, error) {
	bundle, err := catalog.ResolveBundle(catalog.Tier(tier), addons)
	if err != nil {
		return nil, err
	}

	description := fmt.Sprintf("Job posting package %q", tier)
	if len(addons) > 0 {
		description = fmt.Sprintf("%s + %s", description, strings.Join(addons, ", "))
	}

	ctx, cancel := context.WithTimeout(ctx, s.providerTimeout)
	defer cancel()

	session, err := s.provider.CreateSession(ctx, payment.CreateSessionInput{
		AmountCents: bundle.PriceCents,
		Description: description,
		Metadata: map[string]string{
			"user_id": strconv.FormatUint(uint64(userID), 10),
			"tier":    tier,
		},
	})
	if err != nil {
		s.logger.Warn("checkout session creation failed",
			zap.Uint("user_id", userID),
			zap.String("tier", tier),
			zap.Error(err),
		)
		return nil, fmt.Errorf("%w: %v", ErrCheckoutProvider, err)
	}

	now := time.Now().UTC()
	purchase := &models.Purchase{
		UserID:               userID,
		StripeSessionID:      session.ID,
		Tier:                 tier,
		Addons:               strings.Join(addons, ","),
		AmountCents:          bundle.PriceCents,
		Status:               models.PurchaseStatusPending,
		JobPostCredits:       bundle.Grant.JobPost,
		FeaturedPostCredits:  bundle.Grant.FeaturedPost,
		SocialGraphicCredits: bundle.Grant.SocialGraphic,
		RepostCredits:        bundle.Grant.Repost,
		ExpiresAt:            now.Add(s.creditTTL),
	}

	if err := s.purchaseRepo.Create(purchase); err != nil {
		return nil, err
	}

	s.logger.Info("checkout started",
		zap.Uint("user_id", userID),
		zap.Uint("purchase_id", purchase.ID),
		zap.String("tier", tier),
		zap.Int64("amount_cents", bundle.PriceCents),
	)

	return &models.CheckoutSession{
		PurchaseID:  purchase.ID,
		SessionID:   session.ID,
		RedirectURL: session.URL,
	}, nil
}

// IsValidationError reports whether err is a catalog input error the
// handler should answer with a 400.
func IsValidationError(err error) bool {
	return errors.Is(err, catalog.ErrUnknownTier) || errors.Is(err, catalog.ErrUnknownAddon)
}
