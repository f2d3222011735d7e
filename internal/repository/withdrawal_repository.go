package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"github.com/ignatzorin/mingree-backend/internal/models"
	"github.com/ignatzorin/mingree-backend/internal/pkg/apperror"
	"github.com/ignatzorin/mingree-backend/internal/repository/common"
)

type WithdrawalRepository struct {
	db *sqlx.DB
}

func NewWithdrawalRepository(db *sqlx.DB) *WithdrawalRepository {
	return &WithdrawalRepository{db: db}
}

// CreateBankAccount сохраняет реквизиты. Повторное добавление того же счёта возвращает существующую запись.
func (r *WithdrawalRepository) CreateBankAccount(ctx context.Context, acc *models.BankAccount) error {
	err := r.db.GetContext(ctx, acc, `
		INSERT INTO bank_accounts (user_id, account_holder, account_number, account_last4, ifsc, bank_name)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (user_id, account_number, ifsc) DO UPDATE
		SET account_holder = EXCLUDED.account_holder, bank_name = EXCLUDED.bank_name
		RETURNING *
	`, acc.UserID, acc.AccountHolder, acc.AccountNumber, acc.AccountLast4, acc.IFSC, acc.BankName)
	if err != nil {
		return fmt.Errorf("withdrawal repository: create bank account %w", err)
	}
	return nil
}

func (r *WithdrawalRepository) ListBankAccounts(ctx context.Context, userID uuid.UUID) ([]models.BankAccount, error) {
	accounts := []models.BankAccount{}
	if err := r.db.SelectContext(ctx, &accounts, `SELECT * FROM bank_accounts WHERE user_id = $1 ORDER BY created_at DESC`, userID); err != nil {
		return nil, fmt.Errorf("withdrawal repository: list bank accounts %w", err)
	}
	return accounts, nil
}

// Create списывает сумму с баланса и создаёт заявку. Счёт должен принадлежать пользователю.
func (r *WithdrawalRepository) Create(ctx context.Context, userID, bankAccountID uuid.UUID, amount decimal.Decimal) (*models.WithdrawalRequest, error) {
	var w models.WithdrawalRequest

	err := common.WithTransaction(ctx, r.db, func(tx *sqlx.Tx) error {
		var acc models.BankAccount
		if err := tx.GetContext(ctx, &acc, `SELECT * FROM bank_accounts WHERE id = $1 AND user_id = $2`, bankAccountID, userID); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return apperror.ErrBankAccountNotFound
			}
			return fmt.Errorf("withdrawal repository: get bank account %w", err)
		}

		if _, err := debitWithLedger(ctx, tx, models.LedgerEntry{
			UserID:      userID,
			Type:        models.TransactionTypeWithdrawal,
			Amount:      amount,
			Tax:         decimal.Zero,
			Description: fmt.Sprintf("Вывод на счёт %s ****%s", acc.BankName, acc.AccountLast4),
		}); err != nil {
			return err
		}

		err := tx.GetContext(ctx, &w, `
			INSERT INTO withdrawal_requests (user_id, bank_account_id, amount)
			VALUES ($1, $2, $3)
			RETURNING *
		`, userID, bankAccountID, amount)
		if err != nil {
			return fmt.Errorf("withdrawal repository: create %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &w, nil
}

func (r *WithdrawalRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.WithdrawalRequest, error) {
	return common.GetByID[models.WithdrawalRequest](ctx, r.db, "withdrawal_requests", id, apperror.ErrWithdrawalNotFound)
}

func (r *WithdrawalRepository) ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]models.WithdrawalRequest, error) {
	list := []models.WithdrawalRequest{}
	err := r.db.SelectContext(ctx, &list, `
		SELECT * FROM withdrawal_requests WHERE user_id = $1
		ORDER BY created_at DESC LIMIT $2 OFFSET $3
	`, userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("withdrawal repository: list by user %w", err)
	}
	return list, nil
}

// ListPending - очередь заявок для администратора, старые первыми.
func (r *WithdrawalRepository) ListPending(ctx context.Context, limit, offset int) ([]models.WithdrawalRequest, error) {
	list := []models.WithdrawalRequest{}
	err := r.db.SelectContext(ctx, &list, `
		SELECT * FROM withdrawal_requests WHERE status = 'pending'
		ORDER BY created_at LIMIT $1 OFFSET $2
	`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("withdrawal repository: list pending %w", err)
	}
	return list, nil
}

// Approve отмечает заявку выплаченной с банковским UTR.
func (r *WithdrawalRepository) Approve(ctx context.Context, id uuid.UUID, utr string, now time.Time) (*models.WithdrawalRequest, error) {
	var w models.WithdrawalRequest
	err := r.db.GetContext(ctx, &w, `
		UPDATE withdrawal_requests SET status = 'processed', utr = $2, processed_at = $3
		WHERE id = $1 AND status = 'pending'
		RETURNING *
	`, id, utr, now)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, r.notPending(ctx, id)
		}
		if _, ok := common.UniqueViolation(err); ok {
			return nil, apperror.ErrDuplicateUTR
		}
		return nil, fmt.Errorf("withdrawal repository: approve %w", err)
	}
	return &w, nil
}

// Reject отклоняет заявку и возвращает сумму на баланс.
func (r *WithdrawalRepository) Reject(ctx context.Context, id uuid.UUID, reason string, now time.Time) (*models.WithdrawalRequest, error) {
	var w models.WithdrawalRequest

	err := common.WithTransaction(ctx, r.db, func(tx *sqlx.Tx) error {
		err := tx.GetContext(ctx, &w, `
			UPDATE withdrawal_requests SET status = 'rejected', rejection_reason = $2, processed_at = $3
			WHERE id = $1 AND status = 'pending'
			RETURNING *
		`, id, reason, now)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return r.notPending(ctx, id)
			}
			return fmt.Errorf("withdrawal repository: reject %w", err)
		}

		_, err = creditWithLedger(ctx, tx, models.LedgerEntry{
			UserID:      w.UserID,
			Type:        models.TransactionTypeWithdrawalReversal,
			Amount:      w.Amount,
			Tax:         decimal.Zero,
			Description: "Возврат отклонённой заявки на вывод",
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	return &w, nil
}

func (r *WithdrawalRepository) notPending(ctx context.Context, id uuid.UUID) error {
	if _, err := r.GetByID(ctx, id); err != nil {
		return err
	}
	return apperror.ErrWithdrawalProcessed
}
