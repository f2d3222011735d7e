package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"github.com/ignatzorin/mingree-backend/internal/models"
	"github.com/ignatzorin/mingree-backend/internal/pkg/apperror"
	"github.com/ignatzorin/mingree-backend/internal/repository/common"
)

const transactionColumns = `id, user_id, campaign_id, reservation_id, type, direction, amount, tax, net, description, reference, created_at`

// appendLedger добавляет строку в журнал. Вызывается только внутри транзакции,
// которая меняет баланс или escrow.
func appendLedger(ctx context.Context, tx *sqlx.Tx, entry models.LedgerEntry) (*models.Transaction, error) {
	var t models.Transaction
	err := tx.GetContext(ctx, &t, `
		INSERT INTO transactions (user_id, campaign_id, reservation_id, type, direction, amount, tax, net, description, reference)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING `+transactionColumns,
		entry.UserID, entry.CampaignID, entry.ReservationID, entry.Type, entry.Direction,
		entry.Amount, entry.Tax, entry.Net(), entry.Description, entry.Reference,
	)
	if err != nil {
		if name, ok := common.UniqueViolation(err); ok && name == "transactions_reference_key" {
			return nil, apperror.ErrDuplicateReference
		}
		return nil, fmt.Errorf("ledger: append %s %w", entry.Type, err)
	}
	return &t, nil
}

// lockBalance блокирует строку пользователя и возвращает текущий баланс.
func lockBalance(ctx context.Context, tx *sqlx.Tx, userID uuid.UUID) (decimal.Decimal, error) {
	var balance decimal.Decimal
	err := tx.GetContext(ctx, &balance, `SELECT balance FROM users WHERE id = $1 AND deleted_at IS NULL FOR UPDATE`, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return decimal.Zero, apperror.ErrUserNotFound
		}
		return decimal.Zero, fmt.Errorf("ledger: lock balance %w", err)
	}
	return balance, nil
}

// debitBalance списывает сумму с блокировкой строки пользователя.
func debitBalance(ctx context.Context, tx *sqlx.Tx, userID uuid.UUID, amount decimal.Decimal) error {
	balance, err := lockBalance(ctx, tx, userID)
	if err != nil {
		return err
	}
	if balance.LessThan(amount) {
		return apperror.ErrInsufficientBalance
	}

	if _, err := tx.ExecContext(ctx, `UPDATE users SET balance = balance - $2, updated_at = NOW() WHERE id = $1`, userID, amount); err != nil {
		if _, ok := common.CheckViolation(err); ok {
			return apperror.ErrInsufficientBalance
		}
		return fmt.Errorf("ledger: debit balance %w", err)
	}
	return nil
}

// creditBalance зачисляет сумму на баланс пользователя.
func creditBalance(ctx context.Context, tx *sqlx.Tx, userID uuid.UUID, amount decimal.Decimal) error {
	res, err := tx.ExecContext(ctx, `UPDATE users SET balance = balance + $2, updated_at = NOW() WHERE id = $1`, userID, amount)
	if err != nil {
		return fmt.Errorf("ledger: credit balance %w", err)
	}
	return common.RowsAffectedOr(res, apperror.ErrUserNotFound)
}

// debitWithLedger списывает средства и пишет строку журнала в той же транзакции.
func debitWithLedger(ctx context.Context, tx *sqlx.Tx, entry models.LedgerEntry) (*models.Transaction, error) {
	entry.Direction = models.DirectionDebit
	if err := debitBalance(ctx, tx, entry.UserID, entry.Amount); err != nil {
		return nil, err
	}
	return appendLedger(ctx, tx, entry)
}

// creditWithLedger зачисляет Net строки журнала на баланс.
func creditWithLedger(ctx context.Context, tx *sqlx.Tx, entry models.LedgerEntry) (*models.Transaction, error) {
	entry.Direction = models.DirectionCredit
	if err := creditBalance(ctx, tx, entry.UserID, entry.Net()); err != nil {
		return nil, err
	}
	return appendLedger(ctx, tx, entry)
}
