package dto

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type RegisterRequest struct {
	Email       string `json:"email" binding:"required"`
	Password    string `json:"password" binding:"required"`
	Username    string `json:"username"`
	Role        string `json:"role"`
	DisplayName string `json:"display_name"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

type UpdateProfileRequest struct {
	DisplayName string `json:"display_name" binding:"required"`
}

// SubmitInstagramRequest - привязка Instagram аккаунта креатором.
type SubmitInstagramRequest struct {
	Handle    string `json:"handle" binding:"required"`
	Followers int64  `json:"followers"`
}

// CreateCampaignRequest - новая кампания спонсора. Деньги принимаются строкой или числом.
type CreateCampaignRequest struct {
	Title        string          `json:"title" binding:"required"`
	Description  string          `json:"description" binding:"required"`
	Category     string          `json:"category" binding:"required"`
	Tier         int             `json:"tier" binding:"required"`
	PayAmount    decimal.Decimal `json:"pay_amount"`
	ContentTypes []string        `json:"content_types" binding:"required"`
	TotalSpots   int             `json:"total_spots" binding:"required"`
	Deadline     *time.Time      `json:"deadline"`
}

type RejectRequest struct {
	Reason string `json:"reason" binding:"required"`
}

type SubmitContentRequest struct {
	ContentType  string   `json:"content_type" binding:"required"`
	ContentLinks []string `json:"content_links" binding:"required"`
	Notes        string   `json:"notes"`
}

type ApproveSubmissionRequest struct {
	Note string `json:"note"`
}

// DepositRequest - подтверждение платежа, полученное клиентом от шлюза.
type DepositRequest struct {
	Receipt string `json:"receipt" binding:"required"`
}

type BankAccountRequest struct {
	AccountHolder string `json:"account_holder" binding:"required"`
	AccountNumber string `json:"account_number" binding:"required"`
	IFSC          string `json:"ifsc" binding:"required"`
	BankName      string `json:"bank_name" binding:"required"`
}

type WithdrawalRequest struct {
	BankAccountID uuid.UUID       `json:"bank_account_id" binding:"required"`
	Amount        decimal.Decimal `json:"amount"`
}

type ApproveWithdrawalRequest struct {
	UTR string `json:"utr" binding:"required"`
}

type PurchaseSubscriptionRequest struct {
	Plan      string `json:"plan" binding:"required"`
	PromoCode string `json:"promo_code"`
}

type ApplyPromoRequest struct {
	Code string `json:"code" binding:"required"`
}

type CreatePromoRequest struct {
	Code      string          `json:"code" binding:"required"`
	Kind      string          `json:"kind" binding:"required"`
	Value     decimal.Decimal `json:"value"`
	TrialDays int             `json:"trial_days"`
	MaxUses   int             `json:"max_uses"`
	ExpiresAt *time.Time      `json:"expires_at"`
}

type CategorySubscriptionRequest struct {
	Category string `json:"category" binding:"required"`
	Tier     int    `json:"tier" binding:"required"`
}

type SetActiveRequest struct {
	Active *bool `json:"active" binding:"required"`
}

// VerifyInstagramRequest - решение администратора по Instagram аккаунту.
type VerifyInstagramRequest struct {
	Approve   *bool `json:"approve" binding:"required"`
	Followers int64 `json:"followers"`
}
