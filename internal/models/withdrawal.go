package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	WithdrawalStatusPending   = "pending"
	WithdrawalStatusProcessed = "processed"
	WithdrawalStatusRejected  = "rejected"
)

// BankAccount - реквизиты для выплат.
type BankAccount struct {
	ID            uuid.UUID `db:"id" json:"id"`
	UserID        uuid.UUID `db:"user_id" json:"user_id"`
	AccountHolder string    `db:"account_holder" json:"account_holder"`
	AccountNumber string    `db:"account_number" json:"-"`
	AccountLast4  string    `db:"account_last4" json:"account_last4"`
	IFSC          string    `db:"ifsc" json:"ifsc"`
	BankName      string    `db:"bank_name" json:"bank_name"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
}

// WithdrawalRequest - заявка на выплату, сумма списывается при создании.
type WithdrawalRequest struct {
	ID              uuid.UUID       `db:"id" json:"id"`
	UserID          uuid.UUID       `db:"user_id" json:"user_id"`
	BankAccountID   uuid.UUID       `db:"bank_account_id" json:"bank_account_id"`
	Amount          decimal.Decimal `db:"amount" json:"amount"`
	Status          string          `db:"status" json:"status"`
	UTR             *string         `db:"utr" json:"utr,omitempty"`
	RejectionReason *string         `db:"rejection_reason" json:"rejection_reason,omitempty"`
	CreatedAt       time.Time       `db:"created_at" json:"created_at"`
	ProcessedAt     *time.Time      `db:"processed_at" json:"processed_at,omitempty"`
}
