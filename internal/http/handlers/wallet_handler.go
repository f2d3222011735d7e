package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/ignatzorin/mingree-backend/internal/dto"
	"github.com/ignatzorin/mingree-backend/internal/http/handlers/common"
	"github.com/ignatzorin/mingree-backend/internal/models"
	"github.com/ignatzorin/mingree-backend/internal/service"
)

// WalletUseCase - кошелёк и журнал операций.
type WalletUseCase interface {
	ConfirmDeposit(ctx context.Context, userID uuid.UUID, receipt string) (*models.Transaction, error)
	Summary(ctx context.Context, actor service.Actor, sponsorID uuid.UUID) (*models.Wallet, error)
	Transactions(ctx context.Context, userID uuid.UUID, limit, offset int) ([]models.Transaction, error)
}

// WalletHandler обслуживает кошелёк.
type WalletHandler struct {
	wallet WalletUseCase
}

func NewWalletHandler(wallet WalletUseCase) *WalletHandler {
	return &WalletHandler{wallet: wallet}
}

// Summary обрабатывает GET /sponsors/:id/wallet.
func (h *WalletHandler) Summary(c *gin.Context) {
	actor, ok := common.CurrentActor(c)
	if !ok {
		return
	}
	sponsorID, ok := common.UUIDParam(c, "id")
	if !ok {
		return
	}

	wallet, err := h.wallet.Summary(c.Request.Context(), actor, sponsorID)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, wallet)
}

// Deposit обрабатывает POST /wallet/deposit. Клиент передаёт подписанное шлюзом подтверждение платежа.
func (h *WalletHandler) Deposit(c *gin.Context) {
	userID, ok := common.MustUserID(c)
	if !ok {
		return
	}
	var req dto.DepositRequest
	if !common.BindJSON(c, &req) {
		return
	}

	tx, err := h.wallet.ConfirmDeposit(c.Request.Context(), userID, req.Receipt)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	c.JSON(http.StatusCreated, tx)
}

// Transactions обрабатывает GET /wallet/transactions.
func (h *WalletHandler) Transactions(c *gin.Context) {
	userID, ok := common.MustUserID(c)
	if !ok {
		return
	}
	limit, offset := common.GetPagination(c)

	list, err := h.wallet.Transactions(c.Request.Context(), userID, limit, offset)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewListResponse(list, limit, offset))
}
