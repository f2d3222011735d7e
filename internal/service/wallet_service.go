package service

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ignatzorin/mingree-backend/internal/domain/valueobject"
	"github.com/ignatzorin/mingree-backend/internal/logger"
	"github.com/ignatzorin/mingree-backend/internal/models"
	"github.com/ignatzorin/mingree-backend/internal/pkg/apperror"
	"github.com/ignatzorin/mingree-backend/internal/validation"
)

// walletRecentTransactions - сколько последних проводок показывать в сводке кошелька.
const walletRecentTransactions = 10

// WalletRepository описывает пополнения и журнал операций.
type WalletRepository interface {
	Deposit(ctx context.Context, userID uuid.UUID, amount decimal.Decimal, reference, description string) (*models.Transaction, error)
	ListTransactions(ctx context.Context, userID uuid.UUID, limit, offset int) ([]models.Transaction, error)
}

// EscrowReader возвращает агрегаты escrow по кампаниям.
type EscrowReader interface {
	EscrowTotals(ctx context.Context, sponsorID *uuid.UUID) (*models.EscrowTotals, error)
}

// WalletService - пополнение кошелька и сводка по средствам.
type WalletService struct {
	repo     WalletRepository
	escrow   EscrowReader
	users    UserReader
	notifier Notifier
	receipts *DepositReceipts
}

// NewWalletService создаёт сервис кошелька. receipts проверяет подтверждения платежей от шлюза.
func NewWalletService(repo WalletRepository, escrow EscrowReader, users UserReader, notifier Notifier, receipts *DepositReceipts) *WalletService {
	return &WalletService{repo: repo, escrow: escrow, users: users, notifier: notifier, receipts: receipts}
}

// ConfirmDeposit зачисляет пополнение по подписанному подтверждению шлюза.
// Подтверждение выписано на конкретного пользователя, чужое не принимается.
func (s *WalletService) ConfirmDeposit(ctx context.Context, userID uuid.UUID, receipt string) (*models.Transaction, error) {
	if s.receipts == nil {
		return nil, apperror.ErrInvalidReceipt
	}

	payer, claims, err := s.receipts.Parse(strings.TrimSpace(receipt))
	if err != nil {
		logger.L().WithError(err).WithField("user_id", userID).Warn("wallet service: подтверждение платежа отклонено")
		return nil, apperror.ErrInvalidReceipt
	}
	if payer != userID {
		logger.L().WithFields(map[string]interface{}{
			"user_id": userID,
			"payer":   payer,
		}).Warn("wallet service: подтверждение выписано на другого пользователя")
		return nil, apperror.ErrInvalidReceipt
	}

	return s.Deposit(ctx, userID, claims.Amount, claims.Reference)
}

// Deposit зачисляет платёж без проверки подтверждения: вызывается из ConfirmDeposit и демо-данных.
// reference делает операцию идемпотентной.
func (s *WalletService) Deposit(ctx context.Context, userID uuid.UUID, amount decimal.Decimal, reference string) (*models.Transaction, error) {
	amount, err := valueobject.NewAmount(amount)
	if err != nil {
		return nil, err
	}
	reference = strings.TrimSpace(reference)
	if err := validation.ValidateDepositReference(reference); err != nil {
		return nil, err
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !user.IsActive {
		return nil, apperror.ErrAccountDisabled
	}

	t, err := s.repo.Deposit(ctx, userID, amount, reference, "Пополнение кошелька")
	if err != nil {
		return nil, err
	}

	logger.L().WithFields(map[string]interface{}{
		"user_id":   userID,
		"amount":    amount.String(),
		"reference": reference,
	}).Info("wallet service: пополнение зачислено")

	notify(s.notifier, userID, EventDepositReceived, map[string]interface{}{
		"amount":         t.Amount,
		"transaction_id": t.ID,
	})

	return t, nil
}

// Summary возвращает кошелёк спонсора: баланс, escrow по кампаниям и последние проводки.
func (s *WalletService) Summary(ctx context.Context, actor Actor, sponsorID uuid.UUID) (*models.Wallet, error) {
	if !actor.owns(sponsorID) {
		return nil, apperror.ErrForbidden
	}

	user, err := s.users.GetByID(ctx, sponsorID)
	if err != nil {
		return nil, err
	}
	if user.Role != models.RoleSponsor {
		return nil, apperror.New(apperror.ErrCodeNotFound, "спонсор не найден")
	}

	totals, err := s.escrow.EscrowTotals(ctx, &sponsorID)
	if err != nil {
		return nil, err
	}

	recent, err := s.repo.ListTransactions(ctx, sponsorID, walletRecentTransactions, 0)
	if err != nil {
		return nil, err
	}

	return &models.Wallet{
		UserID:         sponsorID,
		Balance:        user.Balance,
		EscrowHeld:     totals.Held,
		TotalReleased:  totals.Released,
		TotalRefunded:  totals.Refunded,
		ActiveCampaign: totals.Campaigns,
		Transactions:   recent,
	}, nil
}

// Transactions возвращает журнал операций пользователя.
func (s *WalletService) Transactions(ctx context.Context, userID uuid.UUID, limit, offset int) ([]models.Transaction, error) {
	limit, offset = normalizePage(limit, offset)
	return s.repo.ListTransactions(ctx, userID, limit, offset)
}
