package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ignatzorin/mingree-backend/internal/config"
	"github.com/ignatzorin/mingree-backend/internal/domain/valueobject"
	"github.com/ignatzorin/mingree-backend/internal/logger"
	"github.com/ignatzorin/mingree-backend/internal/models"
	"github.com/ignatzorin/mingree-backend/internal/pkg/apperror"
	"github.com/ignatzorin/mingree-backend/internal/repository"
	"github.com/ignatzorin/mingree-backend/internal/validation"
)

const maxTrialDays = 365

// PromoRepository описывает промокоды и покупку подписки.
type PromoRepository interface {
	Create(ctx context.Context, p *models.PromoCode) error
	GetByCode(ctx context.Context, code string) (*models.PromoCode, error)
	List(ctx context.Context, limit, offset int) ([]models.PromoCode, error)
	Deactivate(ctx context.Context, id uuid.UUID) error
	RedeemCredit(ctx context.Context, code string, userID uuid.UUID, now time.Time) (*models.PromoCode, *models.Transaction, error)
	RedeemTrial(ctx context.Context, code string, userID uuid.UUID, now time.Time) (*models.PromoCode, *models.User, error)
	PurchaseSubscription(ctx context.Context, in repository.PurchaseInput) (*models.User, *models.Transaction, error)
}

// PromoApplyResult - итог применения промокода.
// Для discount кода заполняется только Price: скидка списывается при покупке.
type PromoApplyResult struct {
	Promo       *models.PromoCode   `json:"promo"`
	Transaction *models.Transaction `json:"transaction,omitempty"`
	User        *models.User        `json:"user,omitempty"`
	Price       *decimal.Decimal    `json:"price,omitempty"`
}

// PurchaseResult - итог покупки подписки.
type PurchaseResult struct {
	User        *models.User        `json:"user"`
	Transaction *models.Transaction `json:"transaction,omitempty"`
}

// CreatePromoInput - параметры нового промокода.
type CreatePromoInput struct {
	Code      string
	Kind      string
	Value     decimal.Decimal
	TrialDays int
	MaxUses   int
	ExpiresAt *time.Time
}

// SubscriptionService - тарифы, покупка подписки и промокоды.
type SubscriptionService struct {
	repo     PromoRepository
	users    UserReader
	notifier Notifier
	billing  config.BillingConfig
	now      func() time.Time
}

// NewSubscriptionService создаёт сервис подписок.
func NewSubscriptionService(repo PromoRepository, users UserReader, notifier Notifier, billing config.BillingConfig) *SubscriptionService {
	return &SubscriptionService{
		repo:     repo,
		users:    users,
		notifier: notifier,
		billing:  billing,
		now:      time.Now,
	}
}

// Plans возвращает доступные тарифы. free не продаётся и действует по умолчанию.
func (s *SubscriptionService) Plans() []models.SubscriptionPlan {
	return []models.SubscriptionPlan{
		{Code: models.PlanFree, Price: decimal.Zero, MaxActiveReservations: s.billing.FreeMaxActive},
		s.proPlan(),
	}
}

func (s *SubscriptionService) proPlan() models.SubscriptionPlan {
	return models.SubscriptionPlan{
		Code:                  models.PlanPro,
		Price:                 s.billing.ProPlanPrice,
		DurationDays:          s.billing.ProPlanDays,
		MaxActiveReservations: s.billing.ProMaxActive,
	}
}

// Purchase оплачивает тариф из кошелька, опционально со скидочным промокодом.
func (s *SubscriptionService) Purchase(ctx context.Context, userID uuid.UUID, planCode, promoCode string) (*PurchaseResult, error) {
	if strings.ToLower(strings.TrimSpace(planCode)) != models.PlanPro {
		return nil, apperror.Validation("неизвестный тариф")
	}
	promoCode = strings.ToUpper(strings.TrimSpace(promoCode))
	if promoCode != "" {
		if err := validation.ValidatePromoCode(promoCode); err != nil {
			return nil, err
		}
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !user.IsActive {
		return nil, apperror.ErrAccountDisabled
	}

	updated, payment, err := s.repo.PurchaseSubscription(ctx, repository.PurchaseInput{
		UserID:    userID,
		Plan:      s.proPlan(),
		PromoCode: promoCode,
		GST:       s.billing.GSTPercent,
		Now:       s.now(),
	})
	if err != nil {
		return nil, err
	}

	logger.L().WithFields(map[string]interface{}{
		"user_id":    userID,
		"plan":       models.PlanPro,
		"promo_code": promoCode,
		"expires_at": updated.SubscriptionExpiresAt,
	}).Info("subscription service: подписка оплачена")

	notify(s.notifier, userID, EventSubscriptionActive, map[string]interface{}{
		"plan":       models.PlanPro,
		"expires_at": updated.SubscriptionExpiresAt,
	})

	return &PurchaseResult{User: updated, Transaction: payment}, nil
}

// ApplyPromo применяет промокод. credit и trial погашаются сразу,
// discount только проверяется и возвращает цену pro со скидкой.
func (s *SubscriptionService) ApplyPromo(ctx context.Context, userID uuid.UUID, code string) (*PromoApplyResult, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if err := validation.ValidatePromoCode(code); err != nil {
		return nil, err
	}

	promo, err := s.repo.GetByCode(ctx, code)
	if err != nil {
		return nil, err
	}

	now := s.now()
	switch promo.Kind {
	case models.PromoKindCredit:
		redeemed, credit, err := s.repo.RedeemCredit(ctx, code, userID, now)
		if err != nil {
			return nil, err
		}
		notify(s.notifier, userID, EventPromoCredited, map[string]interface{}{
			"code":   redeemed.Code,
			"amount": credit.Amount,
		})
		return &PromoApplyResult{Promo: redeemed, Transaction: credit}, nil

	case models.PromoKindTrial:
		redeemed, user, err := s.repo.RedeemTrial(ctx, code, userID, now)
		if err != nil {
			return nil, err
		}
		notify(s.notifier, userID, EventSubscriptionActive, map[string]interface{}{
			"plan":       models.PlanPro,
			"expires_at": user.SubscriptionExpiresAt,
			"code":       redeemed.Code,
		})
		return &PromoApplyResult{Promo: redeemed, User: user}, nil

	case models.PromoKindDiscount:
		if !promo.IsRedeemableAt(now) {
			return nil, apperror.ErrPromoNotRedeemable
		}
		price := valueobject.Discount(s.billing.ProPlanPrice, promo.Value)
		return &PromoApplyResult{Promo: promo, Price: &price}, nil
	}

	return nil, apperror.ErrPromoNotRedeemable
}

// CreatePromo заводит промокод (админка).
func (s *SubscriptionService) CreatePromo(ctx context.Context, in CreatePromoInput) (*models.PromoCode, error) {
	code := strings.ToUpper(strings.TrimSpace(in.Code))
	if err := validation.ValidatePromoCode(code); err != nil {
		return nil, err
	}
	if in.MaxUses < 0 {
		return nil, apperror.Validation("max_uses не может быть отрицательным")
	}
	if in.ExpiresAt != nil && !in.ExpiresAt.After(s.now()) {
		return nil, apperror.Validation("срок действия должен быть в будущем")
	}

	p := &models.PromoCode{
		Code:      code,
		Kind:      in.Kind,
		MaxUses:   in.MaxUses,
		IsActive:  true,
		ExpiresAt: in.ExpiresAt,
	}

	switch in.Kind {
	case models.PromoKindDiscount:
		if !in.Value.IsPositive() || in.Value.GreaterThan(decimal.NewFromInt(100)) {
			return nil, apperror.Validation("скидка должна быть от 0 до 100 процентов")
		}
		p.Value = valueobject.Round(in.Value)
	case models.PromoKindCredit:
		amount, err := valueobject.NewAmount(in.Value)
		if err != nil {
			return nil, err
		}
		p.Value = amount
	case models.PromoKindTrial:
		if in.TrialDays <= 0 || in.TrialDays > maxTrialDays {
			return nil, apperror.Validation("trial_days должен быть от 1 до 365")
		}
		p.TrialDays = in.TrialDays
	default:
		return nil, apperror.Validation("неизвестный вид промокода")
	}

	if err := s.repo.Create(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// ListPromos возвращает промокоды (админка).
func (s *SubscriptionService) ListPromos(ctx context.Context, limit, offset int) ([]models.PromoCode, error) {
	limit, offset = normalizePage(limit, offset)
	return s.repo.List(ctx, limit, offset)
}

// DeactivatePromo выключает промокод.
func (s *SubscriptionService) DeactivatePromo(ctx context.Context, id uuid.UUID) error {
	return s.repo.Deactivate(ctx, id)
}
