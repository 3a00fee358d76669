package models

import "time"

type PurchaseStatus string

const (
	PurchaseStatusPending   PurchaseStatus = "pending"
	PurchaseStatusCompleted PurchaseStatus = "completed"
	PurchaseStatusFailed    PurchaseStatus = "failed"
)

// Purchase tracks one checkout from session creation to fulfillment.
// The credit counts are captured at checkout time so later catalog
// changes never alter what an already-paid purchase grants.
type Purchase struct {
	ID                   uint           `json:"id" gorm:"primaryKey"`
	UserID               uint           `json:"user_id" gorm:"not null;index"`
	StripeSessionID      string         `json:"stripe_session_id" gorm:"unique;not null"`
	Tier                 string         `json:"tier" gorm:"not null"`
	Addons               string         `json:"addons"`
	AmountCents          int64          `json:"amount_cents" gorm:"not null"`
	Status               PurchaseStatus `json:"status" gorm:"not null;default:'pending'"`
	JobPostCredits       int            `json:"job_post_credits" gorm:"not null"`
	FeaturedPostCredits  int            `json:"featured_post_credits" gorm:"not null"`
	SocialGraphicCredits int            `json:"social_graphic_credits" gorm:"not null"`
	RepostCredits        int            `json:"repost_credits" gorm:"not null"`
	CompletedAt          *time.Time     `json:"completed_at,omitempty"`
	ExpiresAt            time.Time      `json:"expires_at" gorm:"not null"`
	CreatedAt            time.Time      `json:"created_at"`
	UpdatedAt            time.Time      `json:"updated_at"`
}

// TotalCredits is the number of credit rows fulfillment will create.
func (p *Purchase) TotalCredits() int {
	return p.JobPostCredits + p.FeaturedPostCredits + p.SocialGraphicCredits + p.RepostCredits
}
