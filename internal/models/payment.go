package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Типы транзакций
const (
	TransactionTypeDeposit            = "deposit"
	TransactionTypeCampaignPayment    = "campaign_payment"
	TransactionTypeEarning            = "earning"
	TransactionTypeRefund             = "refund"
	TransactionTypeWithdrawal         = "withdrawal"
	TransactionTypeWithdrawalReversal = "withdrawal_reversal"
	TransactionTypeSubscription       = "subscription"
	TransactionTypePromoCredit        = "promo_credit"
)

// Направление движения средств
const (
	DirectionCredit = "credit"
	DirectionDebit  = "debit"
)

// Transaction - строка журнала движения денег. Никогда не изменяется.
type Transaction struct {
	ID            uuid.UUID       `db:"id" json:"id"`
	UserID        uuid.UUID       `db:"user_id" json:"user_id"`
	CampaignID    *uuid.UUID      `db:"campaign_id" json:"campaign_id,omitempty"`
	ReservationID *uuid.UUID      `db:"reservation_id" json:"reservation_id,omitempty"`
	Type          string          `db:"type" json:"type"`
	Direction     string          `db:"direction" json:"direction"`
	Amount        decimal.Decimal `db:"amount" json:"amount"`
	Tax           decimal.Decimal `db:"tax" json:"tax"`
	Net           decimal.Decimal `db:"net" json:"net"`
	Description   string          `db:"description" json:"description"`
	Reference     *string         `db:"reference" json:"reference,omitempty"`
	CreatedAt     time.Time       `db:"created_at" json:"created_at"`
}

// LedgerEntry - данные для добавления строки в журнал.
type LedgerEntry struct {
	UserID        uuid.UUID
	CampaignID    *uuid.UUID
	ReservationID *uuid.UUID
	Type          string
	Direction     string
	Amount        decimal.Decimal
	Tax           decimal.Decimal
	Description   string
	Reference     *string
}

// Net возвращает сумму после удержаний.
func (e LedgerEntry) Net() decimal.Decimal {
	return e.Amount.Sub(e.Tax)
}

// Wallet - сводка кошелька спонсора.
type Wallet struct {
	UserID         uuid.UUID       `json:"user_id"`
	Balance        decimal.Decimal `json:"balance"`
	EscrowHeld     decimal.Decimal `json:"escrow_held"`
	TotalReleased  decimal.Decimal `json:"total_released"`
	TotalRefunded  decimal.Decimal `json:"total_refunded"`
	ActiveCampaign int             `json:"active_campaigns"`
	Transactions   []Transaction   `json:"transactions"`
}

// EscrowTotals - агрегаты escrow по кампаниям спонсора или всей площадки.
type EscrowTotals struct {
	Held      decimal.Decimal `db:"held" json:"held"`
	Released  decimal.Decimal `db:"released" json:"released"`
	Refunded  decimal.Decimal `db:"refunded" json:"refunded"`
	Campaigns int             `db:"campaigns" json:"campaigns"`
}
