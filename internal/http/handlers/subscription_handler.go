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

// SubscriptionUseCase - тарифы и промокоды со стороны пользователя.
type SubscriptionUseCase interface {
	Plans() []models.SubscriptionPlan
	Purchase(ctx context.Context, userID uuid.UUID, planCode, promoCode string) (*service.PurchaseResult, error)
	ApplyPromo(ctx context.Context, userID uuid.UUID, code string) (*service.PromoApplyResult, error)
}

// SubscriptionHandler обслуживает /subscriptions и /promo-codes/apply.
type SubscriptionHandler struct {
	subscriptions SubscriptionUseCase
}

func NewSubscriptionHandler(subscriptions SubscriptionUseCase) *SubscriptionHandler {
	return &SubscriptionHandler{subscriptions: subscriptions}
}

// Plans обрабатывает GET /subscriptions/plans.
func (h *SubscriptionHandler) Plans(c *gin.Context) {
	c.JSON(http.StatusOK, h.subscriptions.Plans())
}

// Purchase обрабатывает POST /subscriptions/purchase.
func (h *SubscriptionHandler) Purchase(c *gin.Context) {
	userID, ok := common.MustUserID(c)
	if !ok {
		return
	}
	var req dto.PurchaseSubscriptionRequest
	if !common.BindJSON(c, &req) {
		return
	}

	result, err := h.subscriptions.Purchase(c.Request.Context(), userID, req.Plan, req.PromoCode)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// ApplyPromo обрабатывает POST /promo-codes/apply.
func (h *SubscriptionHandler) ApplyPromo(c *gin.Context) {
	userID, ok := common.MustUserID(c)
	if !ok {
		return
	}
	var req dto.ApplyPromoRequest
	if !common.BindJSON(c, &req) {
		return
	}

	result, err := h.subscriptions.ApplyPromo(c.Request.Context(), userID, req.Code)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}
