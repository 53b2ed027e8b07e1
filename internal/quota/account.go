// Package quota tracks per-user upload allowances and premium upgrades.
package quota

import (
	"context"
	"time"
)

// Plan is a subscription tier.
type Plan string

const (
	PlanFree    Plan = "free"
	PlanPremium Plan = "premium"
)

// Account is the persisted quota state of one user.
type Account struct {
	ID           string     `json:"id"`
	UserID       string     `json:"user_id"`
	Plan         Plan       `json:"plan"`
	UploadCount  int        `json:"upload_count"`
	CreatedAt    time.Time  `json:"created_at"`
	LastUploadAt *time.Time `json:"last_upload_at,omitempty"`
	UpgradedAt   *time.Time `json:"upgraded_at,omitempty"`
	PremiumUntil *time.Time `json:"premium_until,omitempty"`
	PaymentID    string     `json:"payment_id,omitempty"`
	OrderID      string     `json:"order_id,omitempty"`
}

// EffectivePlan returns the plan in force at now. Premium past its expiry
// counts as free.
func (a *Account) EffectivePlan(now time.Time) Plan {
	if a.Plan == PlanPremium && (a.PremiumUntil == nil || now.Before(*a.PremiumUntil)) {
		return PlanPremium
	}
	return PlanFree
}

// Gate is the upload permission check consumed by the session.
type Gate interface {
	CanUpload(ctx context.Context, userID string) (bool, error)
	RecordUpload(ctx context.Context, userID string) error
}
