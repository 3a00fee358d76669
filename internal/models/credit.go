package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CreditType string

const (
	CreditTypeJobPost       CreditType = "job_post"
	CreditTypeFeaturedPost  CreditType = "featured_post"
	CreditTypeSocialGraphic CreditType = "social_graphic"
	CreditTypeRepost        CreditType = "repost"
	// CreditTypeUniversal satisfies a claim for any other type.
	CreditTypeUniversal CreditType = "universal"
)

// ValidCreditType reports whether t is a claimable credit type.
func ValidCreditType(t CreditType) bool {
	switch t {
	case CreditTypeJobPost, CreditTypeFeaturedPost, CreditTypeSocialGraphic, CreditTypeRepost, CreditTypeUniversal:
		return true
	}
	return false
}

// Credit is a single-use entitlement issued by a completed purchase.
// IsUsed only ever goes false -> true; UsedForJobID is set once, after
// the credit is used, and never reassigned.
type Credit struct {
	ID           string     `json:"id" gorm:"type:uuid;primaryKey"`
	PurchaseID   uint       `json:"purchase_id" gorm:"not null;index"`
	UserID       uint       `json:"user_id" gorm:"not null;index:idx_credits_claim,priority:1"`
	Type         CreditType `json:"type" gorm:"not null;index:idx_credits_claim,priority:2"`
	IsUsed       bool       `json:"is_used" gorm:"not null;default:false;index:idx_credits_claim,priority:3"`
	UsedAt       *time.Time `json:"used_at,omitempty"`
	UsedForJobID *uint      `json:"used_for_job_id,omitempty"`
	ExpiresAt    *time.Time `json:"expires_at,omitempty" gorm:"index:idx_credits_claim,priority:4"`
	CreatedAt    time.Time  `json:"created_at"`
}

func (c *Credit) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return nil
}

// Expired reports whether the credit is past its expiry at the given time.
func (c *Credit) Expired(now time.Time) bool {
	return c.ExpiresAt != nil && !c.ExpiresAt.After(now)
}
