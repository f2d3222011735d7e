package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ignatzorin/mingree-backend/internal/dto"
	"github.com/ignatzorin/mingree-backend/internal/http/handlers/common"
	"github.com/ignatzorin/mingree-backend/internal/models"
	"github.com/ignatzorin/mingree-backend/internal/service"
)

// WithdrawalUseCase - реквизиты и заявки на вывод.
type WithdrawalUseCase interface {
	AddBankAccount(ctx context.Context, userID uuid.UUID, in service.BankAccountInput) (*models.BankAccount, error)
	ListBankAccounts(ctx context.Context, userID uuid.UUID) ([]models.BankAccount, error)
	Request(ctx context.Context, userID, bankAccountID uuid.UUID, amount decimal.Decimal) (*models.WithdrawalRequest, error)
	ListMine(ctx context.Context, userID uuid.UUID, limit, offset int) ([]models.WithdrawalRequest, error)
}

// WithdrawalHandler обслуживает /bank-accounts и /withdrawals.
type WithdrawalHandler struct {
	withdrawals WithdrawalUseCase
}

func NewWithdrawalHandler(withdrawals WithdrawalUseCase) *WithdrawalHandler {
	return &WithdrawalHandler{withdrawals: withdrawals}
}

// AddBankAccount обрабатывает POST /bank-accounts.
func (h *WithdrawalHandler) AddBankAccount(c *gin.Context) {
	userID, ok := common.MustUserID(c)
	if !ok {
		return
	}
	var req dto.BankAccountRequest
	if !common.BindJSON(c, &req) {
		return
	}

	acc, err := h.withdrawals.AddBankAccount(c.Request.Context(), userID, service.BankAccountInput{
		AccountHolder: req.AccountHolder,
		AccountNumber: req.AccountNumber,
		IFSC:          req.IFSC,
		BankName:      req.BankName,
	})
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	c.JSON(http.StatusCreated, acc)
}

// ListBankAccounts обрабатывает GET /bank-accounts.
func (h *WithdrawalHandler) ListBankAccounts(c *gin.Context) {
	userID, ok := common.MustUserID(c)
	if !ok {
		return
	}

	list, err := h.withdrawals.ListBankAccounts(c.Request.Context(), userID)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, list)
}

// Request обрабатывает POST /withdrawals.
func (h *WithdrawalHandler) Request(c *gin.Context) {
	userID, ok := common.MustUserID(c)
	if !ok {
		return
	}
	var req dto.WithdrawalRequest
	if !common.BindJSON(c, &req) {
		return
	}

	w, err := h.withdrawals.Request(c.Request.Context(), userID, req.BankAccountID, req.Amount)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	c.JSON(http.StatusCreated, w)
}

// ListMine обрабатывает GET /withdrawals.
func (h *WithdrawalHandler) ListMine(c *gin.Context) {
	userID, ok := common.MustUserID(c)
	if !ok {
		return
	}
	limit, offset := common.GetPagination(c)

	list, err := h.withdrawals.ListMine(c.Request.Context(), userID, limit, offset)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewListResponse(list, limit, offset))
}
