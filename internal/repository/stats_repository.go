package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/ignatzorin/mingree-backend/internal/models"
)

// StatsRepository собирает сводку площадки для админки.
type StatsRepository struct {
	db *sqlx.DB
}

func NewStatsRepository(db *sqlx.DB) *StatsRepository {
	return &StatsRepository{db: db}
}

// Platform возвращает счётчики пользователей, кампаний и выплат.
func (r *StatsRepository) Platform(ctx context.Context) (*models.PlatformStats, error) {
	var stats models.PlatformStats
	err := r.db.GetContext(ctx, &stats, `
		SELECT
			(SELECT COUNT(*) FROM users WHERE role = 'creator' AND deleted_at IS NULL) AS creators,
			(SELECT COUNT(*) FROM users WHERE role = 'sponsor' AND deleted_at IS NULL) AS sponsors,
			(SELECT COUNT(*) FROM campaigns WHERE NOT is_approved AND status <> 'closed') AS pending_campaigns,
			(SELECT COUNT(*) FROM campaigns WHERE is_approved AND status = 'active') AS active_campaigns,
			(SELECT COUNT(*) FROM withdrawal_requests WHERE status = 'pending') AS pending_withdrawals,
			(SELECT COALESCE(SUM(amount), 0) FROM withdrawal_requests WHERE status = 'pending') AS pending_payouts
	`)
	if err != nil {
		return nil, fmt.Errorf("stats repository: platform %w", err)
	}
	return &stats, nil
}
