package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ignatzorin/mingree-backend/internal/domain/valueobject"
	"github.com/ignatzorin/mingree-backend/internal/logger"
	"github.com/ignatzorin/mingree-backend/internal/models"
	"github.com/ignatzorin/mingree-backend/internal/pkg/apperror"
	"github.com/ignatzorin/mingree-backend/internal/validation"
)

// WithdrawalRepository описывает хранилище реквизитов и заявок на вывод.
type WithdrawalRepository interface {
	CreateBankAccount(ctx context.Context, acc *models.BankAccount) error
	ListBankAccounts(ctx context.Context, userID uuid.UUID) ([]models.BankAccount, error)
	Create(ctx context.Context, userID, bankAccountID uuid.UUID, amount decimal.Decimal) (*models.WithdrawalRequest, error)
	ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]models.WithdrawalRequest, error)
	ListPending(ctx context.Context, limit, offset int) ([]models.WithdrawalRequest, error)
	Approve(ctx context.Context, id uuid.UUID, utr string, now time.Time) (*models.WithdrawalRequest, error)
	Reject(ctx context.Context, id uuid.UUID, reason string, now time.Time) (*models.WithdrawalRequest, error)
}

// BankAccountInput - реквизиты, которые вводит пользователь.
type BankAccountInput struct {
	AccountHolder string
	AccountNumber string
	IFSC          string
	BankName      string
}

// WithdrawalService - вывод средств на банковский счёт.
type WithdrawalService struct {
	repo          WithdrawalRepository
	users         UserReader
	notifier      Notifier
	minWithdrawal decimal.Decimal
	now           func() time.Time
}

// NewWithdrawalService создаёт сервис выводов.
func NewWithdrawalService(repo WithdrawalRepository, users UserReader, notifier Notifier, minWithdrawal decimal.Decimal) *WithdrawalService {
	return &WithdrawalService{
		repo:          repo,
		users:         users,
		notifier:      notifier,
		minWithdrawal: minWithdrawal,
		now:           time.Now,
	}
}

// AddBankAccount сохраняет реквизиты. Полный номер счёта наружу не отдаётся.
func (s *WithdrawalService) AddBankAccount(ctx context.Context, userID uuid.UUID, in BankAccountInput) (*models.BankAccount, error) {
	holder := strings.TrimSpace(in.AccountHolder)
	if err := validation.ValidateLength("владелец счёта", holder, 2, validation.MaxAccountHolderLength); err != nil {
		return nil, err
	}
	number := strings.ReplaceAll(strings.TrimSpace(in.AccountNumber), " ", "")
	if err := validation.ValidateAccountNumber(number); err != nil {
		return nil, err
	}
	ifsc := strings.ToUpper(strings.TrimSpace(in.IFSC))
	if err := validation.ValidateIFSC(ifsc); err != nil {
		return nil, err
	}
	bankName := strings.TrimSpace(in.BankName)
	if err := validation.ValidateLength("банк", bankName, 2, validation.MaxAccountHolderLength); err != nil {
		return nil, err
	}

	acc := &models.BankAccount{
		UserID:        userID,
		AccountHolder: holder,
		AccountNumber: number,
		AccountLast4:  number[len(number)-4:],
		IFSC:          ifsc,
		BankName:      bankName,
	}
	if err := s.repo.CreateBankAccount(ctx, acc); err != nil {
		return nil, err
	}
	return acc, nil
}

// ListBankAccounts возвращает реквизиты пользователя.
func (s *WithdrawalService) ListBankAccounts(ctx context.Context, userID uuid.UUID) ([]models.BankAccount, error) {
	return s.repo.ListBankAccounts(ctx, userID)
}

// Request создаёт заявку на вывод. Сумма списывается с баланса сразу.
func (s *WithdrawalService) Request(ctx context.Context, userID, bankAccountID uuid.UUID, amount decimal.Decimal) (*models.WithdrawalRequest, error) {
	amount, err := valueobject.NewAmount(amount)
	if err != nil {
		return nil, err
	}
	if amount.LessThan(s.minWithdrawal) {
		return nil, apperror.ErrMinWithdrawal
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !user.IsActive {
		return nil, apperror.ErrAccountDisabled
	}
	if user.Balance.LessThan(amount) {
		return nil, apperror.ErrInsufficientBalance
	}

	w, err := s.repo.Create(ctx, userID, bankAccountID, amount)
	if err != nil {
		return nil, err
	}

	logger.L().WithFields(map[string]interface{}{
		"user_id":       userID,
		"withdrawal_id": w.ID,
		"amount":        amount.String(),
	}).Info("withdrawal service: заявка на вывод создана")

	return w, nil
}

// ListMine возвращает заявки пользователя.
func (s *WithdrawalService) ListMine(ctx context.Context, userID uuid.UUID, limit, offset int) ([]models.WithdrawalRequest, error) {
	limit, offset = normalizePage(limit, offset)
	return s.repo.ListByUser(ctx, userID, limit, offset)
}

// ListPending - очередь заявок для администратора.
func (s *WithdrawalService) ListPending(ctx context.Context, limit, offset int) ([]models.WithdrawalRequest, error) {
	limit, offset = normalizePage(limit, offset)
	return s.repo.ListPending(ctx, limit, offset)
}

// Approve фиксирует выплату по банковскому UTR.
func (s *WithdrawalService) Approve(ctx context.Context, id uuid.UUID, utr string) (*models.WithdrawalRequest, error) {
	utr = strings.ToUpper(strings.TrimSpace(utr))
	if err := validation.ValidateUTR(utr); err != nil {
		return nil, err
	}

	w, err := s.repo.Approve(ctx, id, utr, s.now())
	if err != nil {
		return nil, err
	}

	notify(s.notifier, w.UserID, EventWithdrawalProcessed, map[string]interface{}{
		"withdrawal_id": w.ID,
		"amount":        w.Amount,
		"utr":           utr,
	})
	return w, nil
}

// Reject отклоняет заявку, сумма возвращается на баланс.
func (s *WithdrawalService) Reject(ctx context.Context, id uuid.UUID, reason string) (*models.WithdrawalRequest, error) {
	reason = strings.TrimSpace(reason)
	if err := validation.ValidateLength("причина", reason, 1, validation.MaxReasonLength); err != nil {
		return nil, err
	}

	w, err := s.repo.Reject(ctx, id, reason, s.now())
	if err != nil {
		return nil, err
	}

	notify(s.notifier, w.UserID, EventWithdrawalRejected, map[string]interface{}{
		"withdrawal_id": w.ID,
		"amount":        w.Amount,
		"reason":        reason,
	})
	return w, nil
}
