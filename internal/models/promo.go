package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Виды промокодов
const (
	PromoKindDiscount = "discount"
	PromoKindTrial    = "trial"
	PromoKindCredit   = "credit"
)

// PromoCode - промокод на скидку, пробный период или пополнение кошелька.
type PromoCode struct {
	ID        uuid.UUID       `db:"id" json:"id"`
	Code      string          `db:"code" json:"code"`
	Kind      string          `db:"kind" json:"kind"`
	Value     decimal.Decimal `db:"value" json:"value"`
	TrialDays int             `db:"trial_days" json:"trial_days"`
	MaxUses   int             `db:"max_uses" json:"max_uses"`
	UsedCount int             `db:"used_count" json:"used_count"`
	IsActive  bool            `db:"is_active" json:"is_active"`
	ExpiresAt *time.Time      `db:"expires_at" json:"expires_at,omitempty"`
	CreatedAt time.Time       `db:"created_at" json:"created_at"`
}

// IsRedeemableAt проверяет активность, срок и лимит использований.
func (p *PromoCode) IsRedeemableAt(now time.Time) bool {
	if !p.IsActive {
		return false
	}
	if p.ExpiresAt != nil && !now.Before(*p.ExpiresAt) {
		return false
	}
	return p.MaxUses <= 0 || p.UsedCount < p.MaxUses
}

// PromoCodeUsage фиксирует применение промокода пользователем.
type PromoCodeUsage struct {
	ID          uuid.UUID `db:"id" json:"id"`
	PromoCodeID uuid.UUID `db:"promo_code_id" json:"promo_code_id"`
	UserID      uuid.UUID `db:"user_id" json:"user_id"`
	UsedAt      time.Time `db:"used_at" json:"used_at"`
}

// SubscriptionPlan - платный тариф.
type SubscriptionPlan struct {
	Code                  string          `json:"code"`
	Price                 decimal.Decimal `json:"price"`
	DurationDays          int             `json:"duration_days"`
	MaxActiveReservations int             `json:"max_active_reservations"`
}
