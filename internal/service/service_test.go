package service

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/hirelane/hirelane-backend/internal/models"
	"github.com/hirelane/hirelane-backend/internal/repository"
	"github.com/hirelane/hirelane-backend/pkg/database"
	"github.com/hirelane/hirelane-backend/pkg/payment"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(test *testing.T) *gorm.DB {
	test.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		test.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		test.Fatalf("unwrap sql.DB: %v", err)
	}
	// One connection keeps the in-memory database shared across
	// goroutines in concurrency tests.
	sqlDB.SetMaxOpenConns(1)
	if err := database.Migrate(db); err != nil {
		test.Fatalf("migrate: %v", err)
	}
	return db
}

// sessionCounter keeps stub session ids unique across all tests; purchases
// carry a unique constraint on the session id.
var sessionCounter int64

type stubProvider struct {
	err error
}

func (p *stubProvider) CreateSession(ctx context.Context, input payment.CreateSessionInput) (*payment.Session, error) {
	if p.err != nil {
		return nil, p.err
	}
	n := atomic.AddInt64(&sessionCounter, 1)
	return &payment.Session{
		ID:  fmt.Sprintf("cs_test_%d", n),
		URL: fmt.Sprintf("https://checkout.stripe.test/%d", n),
	}, nil
}

type stubReceipts struct {
	sent []string
	err  error
}

func (r *stubReceipts) SendPurchaseReceipt(address string, purchase *models.Purchase) error {
	if r.err != nil {
		return r.err
	}
	r.sent = append(r.sent, address)
	return nil
}

func newCheckoutService(db *gorm.DB, provider payment.CheckoutProvider) *CheckoutService {
	return NewCheckoutService(provider, repository.NewPurchaseRepository(db), zap.NewNop(), 90*24*time.Hour)
}

func newFulfillmentService(db *gorm.DB, receipts ReceiptSender) *FulfillmentService {
	return NewFulfillmentService(db, receipts, zap.NewNop())
}

func newCreditService(db *gorm.DB) *CreditService {
	return NewCreditService(repository.NewCreditRepository(db), zap.NewNop())
}

func newHistoryService(db *gorm.DB) *HistoryService {
	return NewHistoryService(repository.NewPurchaseRepository(db), repository.NewCreditRepository(db))
}

// fulfillPurchase runs a checkout and its success notification, returning
// the completed purchase.
func fulfillPurchase(test *testing.T, db *gorm.DB, userID uint, tier string, addons []string) *models.Purchase {
	test.Helper()
	session, err := newCheckoutService(db, &stubProvider{}).StartCheckout(context.Background(), userID, tier, addons)
	if err != nil {
		test.Fatalf("start checkout: %v", err)
	}
	result, err := newFulfillmentService(db, nil).Fulfill(session.SessionID, OutcomeSuccess, "")
	if err != nil {
		test.Fatalf("fulfill: %v", err)
	}
	if result.AlreadyProcessed {
		test.Fatalf("fresh fulfillment reported as already processed")
	}
	return result.Purchase
}

func seedCredit(test *testing.T, db *gorm.DB, credit models.Credit) models.Credit {
	test.Helper()
	if err := db.Create(&credit).Error; err != nil {
		test.Fatalf("seed credit: %v", err)
	}
	return credit
}

func countCredits(test *testing.T, db *gorm.DB, userID uint) int64 {
	test.Helper()
	var count int64
	if err := db.Model(&models.Credit{}).Where("user_id = ?", userID).Count(&count).Error; err != nil {
		test.Fatalf("count credits: %v", err)
	}
	return count
}

func timePtr(value time.Time) *time.Time {
	return &value
}

func mustErrorIs(test *testing.T, err, target error) {
	test.Helper()
	if !errors.Is(err, target) {
		test.Fatalf("expected %v, got %v", target, err)
	}
}
