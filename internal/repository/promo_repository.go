package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"github.com/ignatzorin/mingree-backend/internal/domain/valueobject"
	"github.com/ignatzorin/mingree-backend/internal/models"
	"github.com/ignatzorin/mingree-backend/internal/pkg/apperror"
	"github.com/ignatzorin/mingree-backend/internal/repository/common"
)

// PromoRepository хранит промокоды и проводит покупку подписки.
type PromoRepository struct {
	db *sqlx.DB
}

func NewPromoRepository(db *sqlx.DB) *PromoRepository {
	return &PromoRepository{db: db}
}

func (r *PromoRepository) Create(ctx context.Context, p *models.PromoCode) error {
	err := r.db.GetContext(ctx, p, `
		INSERT INTO promo_codes (code, kind, value, trial_days, max_uses, is_active, expires_at)
		VALUES (UPPER($1), $2, $3, $4, $5, TRUE, $6)
		RETURNING *
	`, p.Code, p.Kind, p.Value, p.TrialDays, p.MaxUses, p.ExpiresAt)
	if err != nil {
		if _, ok := common.UniqueViolation(err); ok {
			return apperror.ErrPromoCodeTaken
		}
		return fmt.Errorf("promo repository: create %w", err)
	}
	return nil
}

func (r *PromoRepository) GetByCode(ctx context.Context, code string) (*models.PromoCode, error) {
	var p models.PromoCode
	if err := r.db.GetContext(ctx, &p, `SELECT * FROM promo_codes WHERE code = $1`, strings.ToUpper(code)); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.ErrPromoCodeNotFound
		}
		return nil, fmt.Errorf("promo repository: get by code %w", err)
	}
	return &p, nil
}

func (r *PromoRepository) List(ctx context.Context, limit, offset int) ([]models.PromoCode, error) {
	list := []models.PromoCode{}
	if err := r.db.SelectContext(ctx, &list, `SELECT * FROM promo_codes ORDER BY created_at DESC LIMIT $1 OFFSET $2`, limit, offset); err != nil {
		return nil, fmt.Errorf("promo repository: list %w", err)
	}
	return list, nil
}

func (r *PromoRepository) Deactivate(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `UPDATE promo_codes SET is_active = FALSE WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("promo repository: deactivate %w", err)
	}
	return common.RowsAffectedOr(res, apperror.ErrPromoCodeNotFound)
}

// RedeemCredit применяет промокод вида credit: сумма зачисляется в кошелёк.
func (r *PromoRepository) RedeemCredit(ctx context.Context, code string, userID uuid.UUID, now time.Time) (*models.PromoCode, *models.Transaction, error) {
	var (
		promo  *models.PromoCode
		credit *models.Transaction
	)

	err := common.WithTransaction(ctx, r.db, func(tx *sqlx.Tx) error {
		var err error
		if promo, err = redeemPromo(ctx, tx, code, models.PromoKindCredit, userID, now); err != nil {
			return err
		}
		credit, err = creditWithLedger(ctx, tx, models.LedgerEntry{
			UserID:      userID,
			Type:        models.TransactionTypePromoCredit,
			Amount:      valueobject.Round(promo.Value),
			Tax:         decimal.Zero,
			Description: "Бонус по промокоду " + promo.Code,
		})
		return err
	})
	if err != nil {
		return nil, nil, err
	}

	return promo, credit, nil
}

// RedeemTrial применяет промокод вида trial: продлевает pro на trial_days дней.
func (r *PromoRepository) RedeemTrial(ctx context.Context, code string, userID uuid.UUID, now time.Time) (*models.PromoCode, *models.User, error) {
	var (
		promo *models.PromoCode
		user  *models.User
	)

	err := common.WithTransaction(ctx, r.db, func(tx *sqlx.Tx) error {
		var err error
		if promo, err = redeemPromo(ctx, tx, code, models.PromoKindTrial, userID, now); err != nil {
			return err
		}
		user, err = extendPlan(ctx, tx, userID, models.PlanPro, promo.TrialDays, now)
		return err
	})
	if err != nil {
		return nil, nil, err
	}

	return promo, user, nil
}

// PurchaseInput - параметры покупки подписки из кошелька.
type PurchaseInput struct {
	UserID    uuid.UUID
	Plan      models.SubscriptionPlan
	PromoCode string
	GST       decimal.Decimal
	Now       time.Time
}

// PurchaseSubscription списывает стоимость тарифа (со скидкой по промокоду) и продлевает подписку.
func (r *PromoRepository) PurchaseSubscription(ctx context.Context, in PurchaseInput) (*models.User, *models.Transaction, error) {
	var (
		user    *models.User
		payment *models.Transaction
	)

	err := common.WithTransaction(ctx, r.db, func(tx *sqlx.Tx) error {
		price := in.Plan.Price
		if in.PromoCode != "" {
			promo, err := redeemPromo(ctx, tx, in.PromoCode, models.PromoKindDiscount, in.UserID, in.Now)
			if err != nil {
				return err
			}
			price = valueobject.Discount(price, promo.Value)
		}

		if price.IsPositive() {
			charge := valueobject.SplitInclusive(price, in.GST)
			var err error
			payment, err = debitWithLedger(ctx, tx, models.LedgerEntry{
				UserID:      in.UserID,
				Type:        models.TransactionTypeSubscription,
				Amount:      charge.Amount,
				Tax:         charge.Tax,
				Description: fmt.Sprintf("Подписка %s на %d дней", in.Plan.Code, in.Plan.DurationDays),
			})
			if err != nil {
				return err
			}
		}

		var err error
		user, err = extendPlan(ctx, tx, in.UserID, in.Plan.Code, in.Plan.DurationDays, in.Now)
		return err
	})
	if err != nil {
		return nil, nil, err
	}

	return user, payment, nil
}

// redeemPromo блокирует промокод, проверяет вид и срок, фиксирует использование.
// Повторное применение тем же пользователем упирается в уникальный индекс.
func redeemPromo(ctx context.Context, tx *sqlx.Tx, code, kind string, userID uuid.UUID, now time.Time) (*models.PromoCode, error) {
	var p models.PromoCode
	if err := tx.GetContext(ctx, &p, `SELECT * FROM promo_codes WHERE code = $1 FOR UPDATE`, strings.ToUpper(code)); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.ErrPromoCodeNotFound
		}
		return nil, fmt.Errorf("promo repository: lock %w", err)
	}
	if p.Kind != kind || !p.IsRedeemableAt(now) {
		return nil, apperror.ErrPromoNotRedeemable
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO promo_code_usages (promo_code_id, user_id, used_at) VALUES ($1, $2, $3)
	`, p.ID, userID, now); err != nil {
		if _, ok := common.UniqueViolation(err); ok {
			return nil, apperror.ErrPromoAlreadyUsed
		}
		return nil, fmt.Errorf("promo repository: insert usage %w", err)
	}

	if _, err := tx.ExecContext(ctx, `UPDATE promo_codes SET used_count = used_count + 1 WHERE id = $1`, p.ID); err != nil {
		return nil, fmt.Errorf("promo repository: increment usage %w", err)
	}
	p.UsedCount++

	return &p, nil
}

// extendPlan продлевает тариф от max(now, текущий срок).
func extendPlan(ctx context.Context, tx *sqlx.Tx, userID uuid.UUID, plan string, days int, now time.Time) (*models.User, error) {
	var user models.User
	err := tx.GetContext(ctx, &user, `
		UPDATE users
		SET subscription_plan = $2,
			subscription_expires_at = GREATEST(COALESCE(subscription_expires_at, $4), $4) + make_interval(days => $3),
			updated_at = NOW()
		WHERE id = $1 AND deleted_at IS NULL
		RETURNING `+userColumns, userID, plan, days, now)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("promo repository: extend plan %w", err)
	}
	return &user, nil
}
