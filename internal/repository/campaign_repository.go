package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"github.com/ignatzorin/mingree-backend/internal/domain/valueobject"
	"github.com/ignatzorin/mingree-backend/internal/models"
	"github.com/ignatzorin/mingree-backend/internal/pkg/apperror"
	"github.com/ignatzorin/mingree-backend/internal/repository/common"
)

// CampaignRepository работает с кампаниями и их escrow.
type CampaignRepository struct {
	db *sqlx.DB
}

// NewCampaignRepository создаёт экземпляр репозитория.
func NewCampaignRepository(db *sqlx.DB) *CampaignRepository {
	return &CampaignRepository{db: db}
}

// Create сохраняет кампанию и в той же транзакции списывает со спонсора бюджет с комиссией.
func (r *CampaignRepository) Create(ctx context.Context, c *models.Campaign, funding valueobject.Breakdown) (*models.Transaction, error) {
	var payment *models.Transaction

	err := common.WithTransaction(ctx, r.db, func(tx *sqlx.Tx) error {
		err := tx.GetContext(ctx, c, `
			INSERT INTO campaigns (sponsor_id, title, description, category, tier, pay_amount, content_types,
				total_spots, spots_remaining, total_budget, deadline)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $8, $9, $10)
			RETURNING *
		`, c.SponsorID, c.Title, c.Description, c.Category, c.Tier, c.PayAmount, c.ContentTypes,
			c.TotalSpots, funding.Net, c.Deadline)
		if err != nil {
			return fmt.Errorf("campaign repository: create %w", err)
		}

		campaignID := c.ID
		payment, err = debitWithLedger(ctx, tx, models.LedgerEntry{
			UserID:      c.SponsorID,
			CampaignID:  &campaignID,
			Type:        models.TransactionTypeCampaignPayment,
			Amount:      funding.Amount,
			Tax:         funding.Tax,
			Description: "Оплата кампании «" + c.Title + "»",
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	return payment, nil
}

// GetByID возвращает кампанию по идентификатору.
func (r *CampaignRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Campaign, error) {
	return common.GetByID[models.Campaign](ctx, r.db, "campaigns", id, apperror.ErrCampaignNotFound)
}

// ListFeed возвращает ленту для креатора. Если у креатора есть подписки на категории,
// остаются только кампании из подписанных пар (категория, тир).
func (r *CampaignRepository) ListFeed(ctx context.Context, userID uuid.UUID, f models.CampaignFilter) ([]models.Campaign, error) {
	query := `
		SELECT c.* FROM campaigns c
		WHERE c.is_approved
		  AND c.status = 'active'
		  AND c.spots_remaining > 0
		  AND c.tier <= $2
		  AND (c.deadline IS NULL OR c.deadline > $3)
		  AND ($4 = '' OR c.category = $4)
		  AND (
			NOT EXISTS (SELECT 1 FROM category_subscriptions s WHERE s.user_id = $1)
			OR EXISTS (
				SELECT 1 FROM category_subscriptions s
				WHERE s.user_id = $1 AND s.category = c.category AND s.tier = c.tier
			)
		  )
		ORDER BY c.created_at DESC
		LIMIT $5 OFFSET $6
	`

	campaigns := []models.Campaign{}
	if err := r.db.SelectContext(ctx, &campaigns, query, userID, f.MaxTier, f.Now, f.Category, f.Limit, f.Offset); err != nil {
		return nil, fmt.Errorf("campaign repository: list feed %w", err)
	}
	return campaigns, nil
}

// ListBySponsor возвращает кампании спонсора.
func (r *CampaignRepository) ListBySponsor(ctx context.Context, sponsorID uuid.UUID, limit, offset int) ([]models.Campaign, error) {
	campaigns := []models.Campaign{}
	err := r.db.SelectContext(ctx, &campaigns, `
		SELECT * FROM campaigns WHERE sponsor_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`, sponsorID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("campaign repository: list by sponsor %w", err)
	}
	return campaigns, nil
}

// ListPending возвращает кампании, ожидающие модерации.
func (r *CampaignRepository) ListPending(ctx context.Context, limit, offset int) ([]models.Campaign, error) {
	campaigns := []models.Campaign{}
	err := r.db.SelectContext(ctx, &campaigns, `
		SELECT * FROM campaigns WHERE NOT is_approved AND status <> 'closed'
		ORDER BY created_at
		LIMIT $1 OFFSET $2
	`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("campaign repository: list pending %w", err)
	}
	return campaigns, nil
}

// UpdateStatus переводит кампанию из from в to. Закрытие идёт только через Close.
func (r *CampaignRepository) UpdateStatus(ctx context.Context, id uuid.UUID, from, to string) (*models.Campaign, error) {
	var c models.Campaign
	err := r.db.GetContext(ctx, &c, `
		UPDATE campaigns SET status = $3, updated_at = NOW()
		WHERE id = $1 AND status = $2
		RETURNING *
	`, id, from, to)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.New(apperror.ErrCodeConflict, "кампания не в статусе "+from)
		}
		return nil, fmt.Errorf("campaign repository: update status %w", err)
	}
	return &c, nil
}

// SetCover сохраняет путь к обложке.
func (r *CampaignRepository) SetCover(ctx context.Context, id uuid.UUID, path string) error {
	res, err := r.db.ExecContext(ctx, `UPDATE campaigns SET cover_path = $2, updated_at = NOW() WHERE id = $1`, id, path)
	if err != nil {
		return fmt.Errorf("campaign repository: set cover %w", err)
	}
	return common.RowsAffectedOr(res, apperror.ErrCampaignNotFound)
}

// Approve публикует кампанию после модерации.
func (r *CampaignRepository) Approve(ctx context.Context, id uuid.UUID) (*models.Campaign, error) {
	var c models.Campaign
	err := r.db.GetContext(ctx, &c, `
		UPDATE campaigns SET is_approved = TRUE, updated_at = NOW()
		WHERE id = $1 AND NOT is_approved AND status <> 'closed'
		RETURNING *
	`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, r.notFoundOr(ctx, id, apperror.ErrCampaignNotModerated)
		}
		return nil, fmt.Errorf("campaign repository: approve %w", err)
	}
	return &c, nil
}

// Reject отклоняет кампанию на модерации и возвращает спонсору весь escrow.
func (r *CampaignRepository) Reject(ctx context.Context, id uuid.UUID) (*models.Campaign, *models.Transaction, error) {
	return r.closeWithRefund(ctx, id, func(c *models.Campaign) error {
		if c.IsApproved || c.Status == models.CampaignStatusClosed {
			return apperror.ErrCampaignNotModerated
		}
		return nil
	}, "Возврат средств: кампания «%s» отклонена модерацией")
}

// Close закрывает кампанию и возвращает спонсору оплату незанятых мест.
func (r *CampaignRepository) Close(ctx context.Context, id uuid.UUID) (*models.Campaign, *models.Transaction, error) {
	return r.closeWithRefund(ctx, id, func(c *models.Campaign) error {
		if c.Status == models.CampaignStatusClosed {
			return apperror.ErrCampaignClosed
		}
		return nil
	}, "Возврат за незанятые места кампании «%s»")
}

func (r *CampaignRepository) closeWithRefund(ctx context.Context, id uuid.UUID, check func(*models.Campaign) error, description string) (*models.Campaign, *models.Transaction, error) {
	var (
		campaign *models.Campaign
		refund   *models.Transaction
	)

	err := common.WithTransaction(ctx, r.db, func(tx *sqlx.Tx) error {
		c, err := lockCampaign(ctx, tx, id)
		if err != nil {
			return err
		}
		if err := check(c); err != nil {
			return err
		}

		amount := valueobject.Round(c.PayAmount.Mul(decimal.NewFromInt(int64(c.SpotsRemaining))))
		if err := tx.GetContext(ctx, c, `
			UPDATE campaigns SET status = 'closed', spots_remaining = 0, updated_at = NOW()
			WHERE id = $1
			RETURNING *
		`, id); err != nil {
			return fmt.Errorf("campaign repository: close %w", err)
		}

		if amount.IsPositive() {
			refund, err = refundToSponsor(ctx, tx, c, nil, amount, fmt.Sprintf(description, c.Title))
			if err != nil {
				return err
			}
		}

		campaign = c
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	return campaign, refund, nil
}

// EscrowTotals возвращает агрегаты escrow. При sponsorID == nil считается по всей площадке.
func (r *CampaignRepository) EscrowTotals(ctx context.Context, sponsorID *uuid.UUID) (*models.EscrowTotals, error) {
	var totals models.EscrowTotals
	err := r.db.GetContext(ctx, &totals, `
		SELECT
			COALESCE(SUM(total_budget - released_amount - refunded_amount), 0) AS held,
			COALESCE(SUM(released_amount), 0) AS released,
			COALESCE(SUM(refunded_amount), 0) AS refunded,
			COUNT(*) FILTER (WHERE status <> 'closed') AS campaigns
		FROM campaigns
		WHERE $1::uuid IS NULL OR sponsor_id = $1
	`, sponsorID)
	if err != nil {
		return nil, fmt.Errorf("campaign repository: escrow totals %w", err)
	}
	return &totals, nil
}

func (r *CampaignRepository) notFoundOr(ctx context.Context, id uuid.UUID, conflict error) error {
	if _, err := r.GetByID(ctx, id); err != nil {
		return err
	}
	return conflict
}

// lockCampaign блокирует строку кампании до конца транзакции.
func lockCampaign(ctx context.Context, tx *sqlx.Tx, id uuid.UUID) (*models.Campaign, error) {
	return common.GetByIDForUpdate[models.Campaign](ctx, tx, "campaigns", id, apperror.ErrCampaignNotFound)
}

// moveEscrow применяет выплату или возврат к заблокированной кампании.
func moveEscrow(ctx context.Context, tx *sqlx.Tx, c *models.Campaign, release, refund decimal.Decimal) error {
	state := valueobject.EscrowState{Total: c.TotalBudget, Released: c.ReleasedAmount, Refunded: c.RefundedAmount}

	var err error
	if release.IsPositive() {
		if state, err = state.Release(release); err != nil {
			return err
		}
	}
	if refund.IsPositive() {
		if state, err = state.Refund(refund); err != nil {
			return err
		}
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE campaigns SET released_amount = $2, refunded_amount = $3, escrow_status = $4, updated_at = NOW()
		WHERE id = $1
	`, c.ID, state.Released, state.Refunded, state.Status())
	if err != nil {
		return fmt.Errorf("campaign repository: move escrow %w", err)
	}

	c.ReleasedAmount = state.Released
	c.RefundedAmount = state.Refunded
	c.EscrowStatus = state.Status()
	return nil
}

// refundToSponsor возвращает amount из escrow на баланс спонсора.
func refundToSponsor(ctx context.Context, tx *sqlx.Tx, c *models.Campaign, reservationID *uuid.UUID, amount decimal.Decimal, description string) (*models.Transaction, error) {
	if err := moveEscrow(ctx, tx, c, decimal.Zero, amount); err != nil {
		return nil, err
	}

	campaignID := c.ID
	return creditWithLedger(ctx, tx, models.LedgerEntry{
		UserID:        c.SponsorID,
		CampaignID:    &campaignID,
		ReservationID: reservationID,
		Type:          models.TransactionTypeRefund,
		Amount:        amount,
		Tax:           decimal.Zero,
		Description:   description,
	})
}
