package service

import (
	"time"

	"github.com/hirelane/hirelane-backend/internal/models"
	"github.com/hirelane/hirelane-backend/internal/repository"
)

// expiringSoonWindow bounds the "expiring soon" set shown on the dashboard.
const expiringSoonWindow = 14 * 24 * time.Hour

// HistoryService answers read-only reporting queries over purchases and
// credits. It applies the same expiry rule as claiming, so an "available"
// count shown here never promises more than ClaimCredit would grant.
type HistoryService struct {
	purchaseRepo *repository.PurchaseRepository
	creditRepo   *repository.CreditRepository
}

func NewHistoryService(purchaseRepo *repository.PurchaseRepository, creditRepo *repository.CreditRepository) *HistoryService {
	return &HistoryService{
		purchaseRepo: purchaseRepo,
		creditRepo:   creditRepo,
	}
}

func (s *HistoryService) ListCredits(userID uint) ([]models.Credit, error) {
	return s.creditRepo.ListByUser(userID)
}

func (s *HistoryService) ListPurchases(userID uint) ([]models.Purchase, error) {
	return s.purchaseRepo.GetUserPurchaseHistory(userID)
}

func (s *HistoryService) GetStats(userID uint) (*models.CreditStats, error) {
	now := time.Now().UTC()

	earned, err := s.creditRepo.CountByUser(userID)
	if err != nil {
		return nil, err
	}
	used, err := s.creditRepo.CountUsed(userID)
	if err != nil {
		return nil, err
	}
	expired, err := s.creditRepo.CountExpiredUnused(userID, now)
	if err != nil {
		return nil, err
	}
	available, err := s.creditRepo.CountAvailable(userID, now)
	if err != nil {
		return nil, err
	}
	byType, err := s.creditRepo.CountAvailableByType(userID, now)
	if err != nil {
		return nil, err
	}
	totalSpend, err := s.purchaseRepo.SumCompletedSpend(userID)
	if err != nil {
		return nil, err
	}
	expiringSoon, err := s.creditRepo.ListExpiringSoon(userID, now, expiringSoonWindow)
	if err != nil {
		return nil, err
	}

	availableByType := make(map[models.CreditType]int64, len(byType))
	for _, tc := range byType {
		availableByType[tc.Type] = tc.Count
	}

	return &models.CreditStats{
		Earned:          earned,
		Used:            used,
		Expired:         expired,
		Available:       available,
		AvailableByType: availableByType,
		TotalSpendCents: totalSpend,
		ExpiringSoon:    expiringSoon,
	}, nil
}
