package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
)

// Campaign описывает рекламную кампанию спонсора с escrow бюджетом.
type Campaign struct {
	ID             uuid.UUID       `db:"id" json:"id"`
	SponsorID      uuid.UUID       `db:"sponsor_id" json:"sponsor_id"`
	Title          string          `db:"title" json:"title"`
	Description    string          `db:"description" json:"description"`
	Category       string          `db:"category" json:"category"`
	Tier           int             `db:"tier" json:"tier"`
	PayAmount      decimal.Decimal `db:"pay_amount" json:"pay_amount"`
	ContentTypes   pq.StringArray  `db:"content_types" json:"content_types"`
	TotalSpots     int             `db:"total_spots" json:"total_spots"`
	SpotsRemaining int             `db:"spots_remaining" json:"spots_remaining"`
	TotalBudget    decimal.Decimal `db:"total_budget" json:"total_budget"`
	ReleasedAmount decimal.Decimal `db:"released_amount" json:"released_amount"`
	RefundedAmount decimal.Decimal `db:"refunded_amount" json:"refunded_amount"`
	EscrowStatus   string          `db:"escrow_status" json:"escrow_status"`
	IsApproved     bool            `db:"is_approved" json:"is_approved"`
	Status         string          `db:"status" json:"status"`
	CoverPath      *string         `db:"cover_path" json:"cover_path,omitempty"`
	Deadline       *time.Time      `db:"deadline" json:"deadline,omitempty"`
	CreatedAt      time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time       `db:"updated_at" json:"updated_at"`
}

// HeldAmount возвращает сумму, которая всё ещё удерживается в escrow.
func (c *Campaign) HeldAmount() decimal.Decimal {
	return c.TotalBudget.Sub(c.ReleasedAmount).Sub(c.RefundedAmount)
}

// AllowsContentType проверяет, разрешён ли формат контента в кампании.
func (c *Campaign) AllowsContentType(contentType string) bool {
	for _, ct := range c.ContentTypes {
		if ct == contentType {
			return true
		}
	}
	return false
}

// IsOpenAt сообщает, принимает ли кампания новые бронирования.
func (c *Campaign) IsOpenAt(now time.Time) bool {
	if !c.IsApproved || c.Status != CampaignStatusActive || c.SpotsRemaining <= 0 {
		return false
	}
	return c.Deadline == nil || now.Before(*c.Deadline)
}

// CampaignFilter параметры выборки ленты кампаний.
type CampaignFilter struct {
	MaxTier  int
	Category string
	Limit    int
	Offset   int
	Now      time.Time
}
