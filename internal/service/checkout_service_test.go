package service

import (
	"context"
	"errors"
	"testing"

	"github.com/hirelane/hirelane-backend/internal/catalog"
	"github.com/hirelane/hirelane-backend/internal/models"
	"github.com/hirelane/hirelane-backend/internal/repository"
)

func TestStartCheckoutPersistsPendingPurchase(test *testing.T) {
	test.Parallel()
	db := newTestDB(test)
	checkout := newCheckoutService(db, &stubProvider{})

	session, err := checkout.StartCheckout(context.Background(), 7, "standard", []string{"repost"})
	if err != nil {
		test.Fatalf("start checkout: %v", err)
	}
	if session.RedirectURL == "" || session.SessionID == "" {
		test.Fatalf("incomplete session: %+v", session)
	}

	purchase, err := repository.NewPurchaseRepository(db).GetBySessionID(session.SessionID)
	if err != nil {
		test.Fatalf("load purchase: %v", err)
	}
	if purchase.Status != models.PurchaseStatusPending {
		test.Fatalf("expected pending purchase, got %s", purchase.Status)
	}
	if purchase.UserID != 7 || purchase.Tier != "standard" {
		test.Fatalf("unexpected purchase: %+v", purchase)
	}
	// standard: 3 job posts + 1 featured; repost addon adds one repost
	if purchase.JobPostCredits != 3 || purchase.FeaturedPostCredits != 1 || purchase.RepostCredits != 1 {
		test.Fatalf("grant not captured: %+v", purchase)
	}
	if purchase.AmountCents != 9900+1500 {
		test.Fatalf("expected amount %d, got %d", 9900+1500, purchase.AmountCents)
	}
	if !purchase.ExpiresAt.After(purchase.CreatedAt) {
		test.Fatalf("expiry horizon not set: %+v", purchase)
	}
}

func TestStartCheckoutUnknownTier(test *testing.T) {
	test.Parallel()
	db := newTestDB(test)
	checkout := newCheckoutService(db, &stubProvider{})

	_, err := checkout.StartCheckout(context.Background(), 7, "platinum", nil)
	mustErrorIs(test, err, catalog.ErrUnknownTier)
	if !IsValidationError(err) {
		test.Fatalf("unknown tier should be a validation error")
	}

	var count int64
	db.Model(&models.Purchase{}).Count(&count)
	if count != 0 {
		test.Fatalf("validation failure must not create purchases, found %d", count)
	}
}

func TestStartCheckoutProviderFailureLeavesNoRow(test *testing.T) {
	test.Parallel()
	db := newTestDB(test)
	checkout := newCheckoutService(db, &stubProvider{err: errors.New("stripe down")})

	_, err := checkout.StartCheckout(context.Background(), 7, "starter", nil)
	mustErrorIs(test, err, ErrCheckoutProvider)

	var count int64
	db.Model(&models.Purchase{}).Count(&count)
	if count != 0 {
		test.Fatalf("provider failure must be all-or-nothing, found %d purchases", count)
	}
}
