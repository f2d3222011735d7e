package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"github.com/ignatzorin/mingree-backend/internal/models"
	"github.com/ignatzorin/mingree-backend/internal/repository/common"
)

// WalletRepository - пополнения и история движения средств.
type WalletRepository struct {
	db *sqlx.DB
}

func NewWalletRepository(db *sqlx.DB) *WalletRepository {
	return &WalletRepository{db: db}
}

// Deposit зачисляет пополнение. reference платёжного шлюза уникален, повторный вызов
// возвращает apperror.ErrDuplicateReference и баланс не меняет.
func (r *WalletRepository) Deposit(ctx context.Context, userID uuid.UUID, amount decimal.Decimal, reference, description string) (*models.Transaction, error) {
	var t *models.Transaction

	err := common.WithTransaction(ctx, r.db, func(tx *sqlx.Tx) error {
		var err error
		t, err = creditWithLedger(ctx, tx, models.LedgerEntry{
			UserID:      userID,
			Type:        models.TransactionTypeDeposit,
			Amount:      amount,
			Tax:         decimal.Zero,
			Description: description,
			Reference:   &reference,
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	return t, nil
}

// ListTransactions возвращает журнал пользователя, новые записи первыми.
func (r *WalletRepository) ListTransactions(ctx context.Context, userID uuid.UUID, limit, offset int) ([]models.Transaction, error) {
	list := []models.Transaction{}
	err := r.db.SelectContext(ctx, &list, `
		SELECT `+transactionColumns+` FROM transactions
		WHERE user_id = $1
		ORDER BY created_at DESC, id
		LIMIT $2 OFFSET $3
	`, userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("wallet repository: list transactions %w", err)
	}
	return list, nil
}
