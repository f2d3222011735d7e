package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/ignatzorin/mingree-backend/internal/models"
	"github.com/ignatzorin/mingree-backend/internal/pkg/apperror"
	"github.com/ignatzorin/mingree-backend/internal/repository/common"
)

// CategorySubscriptionRepository хранит подписки креаторов на группы (категория, тир).
type CategorySubscriptionRepository struct {
	db *sqlx.DB
}

func NewCategorySubscriptionRepository(db *sqlx.DB) *CategorySubscriptionRepository {
	return &CategorySubscriptionRepository{db: db}
}

func (r *CategorySubscriptionRepository) Create(ctx context.Context, sub *models.CategorySubscription) error {
	err := r.db.GetContext(ctx, sub, `
		INSERT INTO category_subscriptions (user_id, category, tier)
		VALUES ($1, $2, $3)
		RETURNING *
	`, sub.UserID, sub.Category, sub.Tier)
	if err != nil {
		if _, ok := common.UniqueViolation(err); ok {
			return apperror.ErrAlreadySubscribed
		}
		return fmt.Errorf("category subscription repository: create %w", err)
	}
	return nil
}

func (r *CategorySubscriptionRepository) List(ctx context.Context, userID uuid.UUID) ([]models.CategorySubscription, error) {
	list := []models.CategorySubscription{}
	err := r.db.SelectContext(ctx, &list, `
		SELECT * FROM category_subscriptions WHERE user_id = $1 ORDER BY category, tier
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("category subscription repository: list %w", err)
	}
	return list, nil
}

func (r *CategorySubscriptionRepository) Delete(ctx context.Context, id, userID uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM category_subscriptions WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("category subscription repository: delete %w", err)
	}
	return common.RowsAffectedOr(res, apperror.New(apperror.ErrCodeNotFound, "подписка не найдена"))
}
