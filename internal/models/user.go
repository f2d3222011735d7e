package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// User описывает участника площадки: креатора, спонсора или администратора.
type User struct {
	ID                    uuid.UUID       `db:"id" json:"id"`
	Email                 string          `db:"email" json:"email"`
	Username              string          `db:"username" json:"username"`
	PasswordHash          string          `db:"password_hash" json:"-"`
	Role                  string          `db:"role" json:"role"`
	DisplayName           string          `db:"display_name" json:"display_name"`
	IsActive              bool            `db:"is_active" json:"is_active"`
	InstagramHandle       *string         `db:"instagram_handle" json:"instagram_handle,omitempty"`
	InstagramStatus       string          `db:"instagram_status" json:"instagram_status"`
	FollowersCount        int64           `db:"followers_count" json:"followers_count"`
	Tier                  int             `db:"tier" json:"tier"`
	Balance               decimal.Decimal `db:"balance" json:"balance"`
	Stars                 int             `db:"stars" json:"stars"`
	SubscriptionPlan      string          `db:"subscription_plan" json:"subscription_plan"`
	SubscriptionExpiresAt *time.Time      `db:"subscription_expires_at" json:"subscription_expires_at,omitempty"`
	LastLoginAt           *time.Time      `db:"last_login_at" json:"last_login_at,omitempty"`
	DeletedAt             *time.Time      `db:"deleted_at" json:"-"`
	CreatedAt             time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt             time.Time       `db:"updated_at" json:"updated_at"`
}

// IsInstagramVerified сообщает, подтверждён ли Instagram аккаунт креатора.
func (u *User) IsInstagramVerified() bool {
	return u.InstagramStatus == InstagramStatusVerified
}

// EffectivePlan возвращает действующий тариф с учётом срока подписки.
func (u *User) EffectivePlan(now time.Time) string {
	if u.SubscriptionPlan == "" || u.SubscriptionPlan == PlanFree {
		return PlanFree
	}
	if u.SubscriptionExpiresAt == nil || !now.Before(*u.SubscriptionExpiresAt) {
		return PlanFree
	}
	return u.SubscriptionPlan
}

// Session представляет сохранённую сессию пользователя.
type Session struct {
	ID           uuid.UUID `db:"id" json:"id"`
	UserID       uuid.UUID `db:"user_id" json:"user_id"`
	RefreshToken string    `db:"refresh_token" json:"-"`
	UserAgent    *string   `db:"user_agent" json:"user_agent,omitempty"`
	IPAddress    *string   `db:"ip_address" json:"ip_address,omitempty"`
	ExpiresAt    time.Time `db:"expires_at" json:"expires_at"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// CategorySubscription - подписка креатора на группу (категория, тир).
type CategorySubscription struct {
	ID        uuid.UUID `db:"id" json:"id"`
	UserID    uuid.UUID `db:"user_id" json:"user_id"`
	Category  string    `db:"category" json:"category"`
	Tier      int       `db:"tier" json:"tier"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
