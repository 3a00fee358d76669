package repository

import (
	"errors"
	"time"

	"github.com/hirelane/hirelane-backend/internal/models"
	"gorm.io/gorm"
)

type CreditRepository struct {
	db *gorm.DB
}

func NewCreditRepository(db *gorm.DB) *CreditRepository {
	return &CreditRepository{
		db: db,
	}
}

func (r *CreditRepository) CreateBatch(credits []models.Credit) error {
	if len(credits) == 0 {
		return nil
	}
	return r.db.Create(&credits).Error
}

func (r *CreditRepository) GetByID(id string) (*models.Credit, error) {
	var credit models.Credit
	err := r.db.Where("id = ?", id).First(&credit).Error
	return &credit, err
}

// claimable scopes the query to credits a claim may legally take:
// unused and not past expiry at the given time.
func (r *CreditRepository) claimable(userID uint, now time.Time) *gorm.DB {
	return r.db.Model(&models.Credit{}).
		Where("user_id = ? AND is_used = ?", userID, false).
		Where("expires_at IS NULL OR expires_at > ?", now)
}

// FindClaimCandidate returns the best claimable credit for the requested
// type: soonest expiry first so expiring credits are not wasted, oldest
// first among equals. An exact type match is preferred; universal credits
// are only offered once the exact type is exhausted.
func (r *CreditRepository) FindClaimCandidate(userID uint, creditType models.CreditType, now time.Time) (*models.Credit, error) {
	var credit models.Credit
	err := r.claimable(userID, now).
		Where("type = ?", creditType).
		Order("expires_at IS NULL, expires_at ASC, created_at ASC").
		First(&credit).Error
	if err == nil || creditType == models.CreditTypeUniversal {
		return &credit, err
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	err = r.claimable(userID, now).
		Where("type = ?", models.CreditTypeUniversal).
		Order("expires_at IS NULL, expires_at ASC, created_at ASC").
		First(&credit).Error
	return &credit, err
}

// MarkUsed is the claim's compare-and-set: it flips is_used on the row
// only if the row is still unused. A false return means another claimer
// got there first and the caller must pick a new candidate.
func (r *CreditRepository) MarkUsed(id string, usedAt time.Time) (bool, error) {
	result := r.db.Model(&models.Credit{}).
		Where("id = ? AND is_used = ?", id, false).
		Updates(map[string]interface{}{
			"is_used": true,
			"used_at": usedAt,
		})
	return result.RowsAffected == 1, result.Error
}

// BindToJob records which job a used credit funded. The condition mirrors
// the invariant: binding requires a used credit that is not yet bound.
func (r *CreditRepository) BindToJob(id string, jobID uint) (bool, error) {
	result := r.db.Model(&models.Credit{}).
		Where("id = ? AND is_used = ? AND used_for_job_id IS NULL", id, true).
		Update("used_for_job_id", jobID)
	return result.RowsAffected == 1, result.Error
}

func (r *CreditRepository) ListByUser(userID uint) ([]models.Credit, error) {
	var credits []models.Credit
	err := r.db.Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&credits).Error
	return credits, err
}

func (r *CreditRepository) CountByUser(userID uint) (int64, error) {
	var count int64
	err := r.db.Model(&models.Credit{}).
		Where("user_id = ?", userID).
		Count(&count).Error
	return count, err
}

func (r *CreditRepository) CountUsed(userID uint) (int64, error) {
	var count int64
	err := r.db.Model(&models.Credit{}).
		Where("user_id = ? AND is_used = ?", userID, true).
		Count(&count).Error
	return count, err
}

func (r *CreditRepository) CountExpiredUnused(userID uint, now time.Time) (int64, error) {
	var count int64
	err := r.db.Model(&models.Credit{}).
		Where("user_id = ? AND is_used = ? AND expires_at IS NOT NULL AND expires_at <= ?", userID, false, now).
		Count(&count).Error
	return count, err
}

func (r *CreditRepository) CountAvailable(userID uint, now time.Time) (int64, error) {
	var count int64
	err := r.claimable(userID, now).Count(&count).Error
	return count, err
}

type TypeCount struct {
	Type  models.CreditType
	Count int64
}

func (r *CreditRepository) CountAvailableByType(userID uint, now time.Time) ([]TypeCount, error) {
	var counts []TypeCount
	err := r.claimable(userID, now).
		Select("type, COUNT(*) AS count").
		Group("type").
		Scan(&counts).Error
	return counts, err
}

// ListExpiringSoon returns claimable credits whose expiry falls within the
// given window, soonest first.
func (r *CreditRepository) ListExpiringSoon(userID uint, now time.Time, within time.Duration) ([]models.Credit, error) {
	var credits []models.Credit
	err := r.claimable(userID, now).
		Where("expires_at IS NOT NULL AND expires_at <= ?", now.Add(within)).
		Order("expires_at ASC").
		Find(&credits).Error
	return credits, err
}

// NormalizeTypes rewrites unused credits of any specific type to the
// universal type. Used credits are never touched so consumption history
// keeps the type that was actually spent. Running it again converts
// nothing, which makes the migration safe to repeat.
func (r *CreditRepository) NormalizeTypes(userID *uint) (int64, error) {
	query := r.db.Model(&models.Credit{}).
		Where("is_used = ? AND type <> ?", false, models.CreditTypeUniversal)
	if userID != nil {
		query = query.Where("user_id = ?", *userID)
	}
	result := query.Update("type", models.CreditTypeUniversal)
	return result.RowsAffected, result.Error
}

// CountExpiredUnusedAll is the sweep's reporting query across all users.
func (r *CreditRepository) CountExpiredUnusedAll(now time.Time) (int64, error) {
	var count int64
	err := r.db.Model(&models.Credit{}).
		Where("is_used = ? AND expires_at IS NOT NULL AND expires_at <= ?", false, now).
		Count(&count).Error
	return count, err
}
