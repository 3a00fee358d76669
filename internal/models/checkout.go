package models

import "time"

type CreateCheckoutRequest struct {
	Tier   string   `json:"tier" validate:"required"`
	Addons []string `json:"addons" validate:"dive,required"`
}

type CheckoutSession struct {
	PurchaseID  uint   `json:"purchase_id"`
	SessionID   string `json:"session_id"`
	RedirectURL string `json:"redirect_url"`
}

type ClaimCreditRequest struct {
	Type  string `json:"type" validate:"required"`
	JobID uint   `json:"job_id" validate:"required"`
}

// FulfillmentResult reports what a fulfillment call did. AlreadyProcessed
// is true when the purchase had reached a terminal status before the call,
// which is the normal outcome for redelivered payment notifications.
type FulfillmentResult struct {
	Purchase         *Purchase `json:"purchase"`
	AlreadyProcessed bool      `json:"already_processed"`
	CreditsIssued    int       `json:"credits_issued"`
}

// CreditStats is the per-user aggregate shown on the billing dashboard.
// Available uses the same expiry rule as claiming, so the displayed count
// never overstates what a claim would actually find.
type CreditStats struct {
	Earned          int64                `json:"earned"`
	Used            int64                `json:"used"`
	Expired         int64                `json:"expired"`
	Available       int64                `json:"available"`
	AvailableByType map[CreditType]int64 `json:"available_by_type"`
	TotalSpendCents int64                `json:"total_spend_cents"`
	ExpiringSoon    []Credit             `json:"expiring_soon"`
}

// SweepReport summarizes one expiration sweep pass. The sweep only
// reports; expiry itself is evaluated against the clock at read time.
type SweepReport struct {
	ExpiredUnused int64     `json:"expired_unused"`
	RanAt         time.Time `json:"ran_at"`
}
