package repository

import (
	"time"

	"github.com/hirelane/hirelane-backend/internal/models"
	"gorm.io/gorm"
)

type PurchaseRepository struct {
	db *gorm.DB
}

func NewPurchaseRepository(db *gorm.DB) *PurchaseRepository {
	return &PurchaseRepository{
		db: db,
	}
}

func (r *PurchaseRepository) Create(purchase *models.Purchase) error {
	return r.db.Create(purchase).Error
}

func (r *PurchaseRepository) GetByID(id uint) (*models.Purchase, error) {
	var purchase models.Purchase
	err := r.db.First(&purchase, id).Error
	return &purchase, err
}

func (r *PurchaseRepository) GetBySessionID(sessionID string) (*models.Purchase, error) {
	var purchase models.Purchase
	err := r.db.Where("stripe_session_id = ?", sessionID).First(&purchase).Error
	return &purchase, err
}

// CompleteIfPending flips the purchase to completed only when it is still
// pending. The returned bool is true for the single caller that wins the
// transition; concurrent or repeated fulfillment attempts see false.
func (r *PurchaseRepository) CompleteIfPending(id uint, completedAt time.Time) (bool, error) {
	result := r.db.Model(&models.Purchase{}).
		Where("id = ? AND status = ?", id, models.PurchaseStatusPending).
		Updates(map[string]interface{}{
			"status":       models.PurchaseStatusCompleted,
			"completed_at": completedAt,
		})
	return result.RowsAffected == 1, result.Error
}

// FailIfPending marks the purchase failed unless it already reached a
// terminal status.
func (r *PurchaseRepository) FailIfPending(id uint) (bool, error) {
	result := r.db.Model(&models.Purchase{}).
		Where("id = ? AND status = ?", id, models.PurchaseStatusPending).
		Update("status", models.PurchaseStatusFailed)
	return result.RowsAffected == 1, result.Error
}

func (r *PurchaseRepository) GetUserPurchaseHistory(userID uint) ([]models.Purchase, error) {
	var purchases []models.Purchase
	err := r.db.Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&purchases).Error
	return purchases, err
}

func (r *PurchaseRepository) SumCompletedSpend(userID uint) (int64, error) {
	var total int64
	err := r.db.Model(&models.Purchase{}).
		Where("user_id = ? AND status = ?", userID, models.PurchaseStatusCompleted).
		Select("COALESCE(SUM(amount_cents), 0)").
		Scan(&total).Error
	return total, err
}
