package service

import (
	"context"
	"sync"
	"testing"

	"github.com/hirelane/hirelane-backend/internal/models"
)

func TestFulfillSuccessIssuesCapturedGrant(test *testing.T) {
	test.Parallel()
	db := newTestDB(test)

	purchase := fulfillPurchase(test, db, 1, "pro", nil)

	if purchase.Status != models.PurchaseStatusCompleted {
		test.Fatalf("expected completed, got %s", purchase.Status)
	}
	if purchase.CompletedAt == nil {
		test.Fatalf("completed_at not set")
	}

	var credits []models.Credit
	if err := db.Where("purchase_id = ?", purchase.ID).Find(&credits).Error; err != nil {
		test.Fatalf("load credits: %v", err)
	}
	if len(credits) != purchase.TotalCredits() {
		test.Fatalf("expected %d credits, got %d", purchase.TotalCredits(), len(credits))
	}

	byType := map[models.CreditType]int{}
	for _, credit := range credits {
		byType[credit.Type]++
		if credit.IsUsed {
			test.Fatalf("fresh credit already used: %+v", credit)
		}
		if credit.ExpiresAt == nil || !credit.ExpiresAt.Equal(purchase.ExpiresAt) {
			test.Fatalf("credit expiry should inherit the purchase horizon: %+v", credit)
		}
	}
	if byType[models.CreditTypeJobPost] != 10 || byType[models.CreditTypeFeaturedPost] != 3 ||
		byType[models.CreditTypeSocialGraphic] != 3 || byType[models.CreditTypeRepost] != 5 {
		test.Fatalf("unexpected grant distribution: %v", byType)
	}
}

func TestFulfillReplayIsIdempotent(test *testing.T) {
	test.Parallel()
	db := newTestDB(test)
	purchase := fulfillPurchase(test, db, 2, "starter", nil)

	result, err := newFulfillmentService(db, nil).Fulfill(purchase.StripeSessionID, OutcomeSuccess, "")
	if err != nil {
		test.Fatalf("replayed fulfill: %v", err)
	}
	if !result.AlreadyProcessed {
		test.Fatalf("replay should report already processed")
	}
	if result.CreditsIssued != 0 {
		test.Fatalf("replay issued %d credits", result.CreditsIssued)
	}
	if got := countCredits(test, db, 2); got != 1 {
		test.Fatalf("starter grant is one credit, found %d after replay", got)
	}
}

func TestFulfillConcurrentDeliveryIssuesOnce(test *testing.T) {
	test.Parallel()
	db := newTestDB(test)
	checkout := newCheckoutService(db, &stubProvider{})
	session, err := checkout.StartCheckout(context.Background(), 3, "standard", nil)
	if err != nil {
		test.Fatalf("start checkout: %v", err)
	}

	fulfillment := newFulfillmentService(db, nil)
	const deliveries = 5
	var wg sync.WaitGroup
	issued := make(chan int, deliveries)
	for i := 0; i < deliveries; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			result, err := fulfillment.Fulfill(session.SessionID, OutcomeSuccess, "")
			if err != nil {
				test.Errorf("concurrent fulfill: %v", err)
				return
			}
			issued <- result.CreditsIssued
		}()
	}
	wg.Wait()
	close(issued)

	winners := 0
	for count := range issued {
		if count > 0 {
			winners++
		}
	}
	if winners != 1 {
		test.Fatalf("expected exactly one delivery to issue credits, got %d", winners)
	}
	// standard grants 3 job posts + 1 featured
	if got := countCredits(test, db, 3); got != 4 {
		test.Fatalf("expected 4 credits, found %d", got)
	}
}

func TestFulfillFailureCreatesNoCredits(test *testing.T) {
	test.Parallel()
	db := newTestDB(test)
	checkout := newCheckoutService(db, &stubProvider{})
	session, err := checkout.StartCheckout(context.Background(), 4, "starter", nil)
	if err != nil {
		test.Fatalf("start checkout: %v", err)
	}

	result, err := newFulfillmentService(db, nil).Fulfill(session.SessionID, OutcomeFailure, "")
	if err != nil {
		test.Fatalf("fulfill failure: %v", err)
	}
	if result.Purchase.Status != models.PurchaseStatusFailed {
		test.Fatalf("expected failed status, got %s", result.Purchase.Status)
	}
	if got := countCredits(test, db, 4); got != 0 {
		test.Fatalf("failed purchase must not issue credits, found %d", got)
	}

	// A late success notification for a failed session stays a no-op.
	late, err := newFulfillmentService(db, nil).Fulfill(session.SessionID, OutcomeSuccess, "")
	if err != nil {
		test.Fatalf("late success: %v", err)
	}
	if !late.AlreadyProcessed {
		test.Fatalf("terminal purchase should report already processed")
	}
	if got := countCredits(test, db, 4); got != 0 {
		test.Fatalf("late success must not issue credits, found %d", got)
	}
}

func TestFulfillUsesGrantCapturedAtCheckout(test *testing.T) {
	test.Parallel()
	db := newTestDB(test)
	checkout := newCheckoutService(db, &stubProvider{})
	session, err := checkout.StartCheckout(context.Background(), 6, "starter", nil)
	if err != nil {
		test.Fatalf("start checkout: %v", err)
	}

	// Simulate a catalog change between checkout and fulfillment: the
	// grant stored on the purchase row is what counts, not a re-resolve.
	if err := db.Model(&models.Purchase{}).
		Where("stripe_session_id = ?", session.SessionID).
		Update("job_post_credits", 2).Error; err != nil {
		test.Fatalf("rewrite grant: %v", err)
	}

	result, err := newFulfillmentService(db, nil).Fulfill(session.SessionID, OutcomeSuccess, "")
	if err != nil {
		test.Fatalf("fulfill: %v", err)
	}
	if result.CreditsIssued != 2 {
		test.Fatalf("expected the captured grant of 2 credits, issued %d", result.CreditsIssued)
	}
}

func TestFulfillUnknownSession(test *testing.T) {
	test.Parallel()
	db := newTestDB(test)
	_, err := newFulfillmentService(db, nil).Fulfill("cs_missing", OutcomeSuccess, "")
	mustErrorIs(test, err, ErrPurchaseNotFound)
}

func TestFulfillSendsReceiptOnce(test *testing.T) {
	test.Parallel()
	db := newTestDB(test)
	checkout := newCheckoutService(db, &stubProvider{})
	session, err := checkout.StartCheckout(context.Background(), 5, "starter", nil)
	if err != nil {
		test.Fatalf("start checkout: %v", err)
	}

	receipts := &stubReceipts{}
	fulfillment := newFulfillmentService(db, receipts)
	if _, err := fulfillment.Fulfill(session.SessionID, OutcomeSuccess, "buyer@example.com"); err != nil {
		test.Fatalf("fulfill: %v", err)
	}
	if _, err := fulfillment.Fulfill(session.SessionID, OutcomeSuccess, "buyer@example.com"); err != nil {
		test.Fatalf("replay: %v", err)
	}
	if len(receipts.sent) != 1 {
		test.Fatalf("expected one receipt, sent %d", len(receipts.sent))
	}
}
